package client

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/fivetwenty-io/webflow/internal/constants"
	"github.com/fivetwenty-io/webflow/pkg/webflow"
)

// ItemFetcher loads every item of a collection.
type ItemFetcher func(ctx context.Context, collectionID string) ([]webflow.Item, error)

// ItemCreator creates one item in a collection.
type ItemCreator func(ctx context.Context, collectionID string, fields map[string]any) (webflow.Item, error)

// ItemIndexOptions configures an ItemIndex.
type ItemIndexOptions struct {
	// Backend optionally shares loaded collections between clients. Nil keeps
	// them in this index only.
	Backend webflow.Cache
	// Namespace prefixes backend keys.
	Namespace string
	Logger    webflow.Logger
}

// IndexStats counts index activity.
type IndexStats struct {
	Hits    int64 `json:"hits"    yaml:"hits"`
	Misses  int64 `json:"misses"  yaml:"misses"`
	Loads   int64 `json:"loads"   yaml:"loads"`
	Creates int64 `json:"creates" yaml:"creates"`
}

// ItemIndex answers name lookups over whole collections, creating items that
// do not exist yet.
//
// A collection is loaded once per index and then kept for the index's
// lifetime; only items created through the index are added afterwards, and
// nothing is re-read from the server. Lookups of one collection are
// serialized, so concurrent requests for the same missing name create it
// once. A failed load leaves no entry behind.
type ItemIndex struct {
	fetch     ItemFetcher
	create    ItemCreator
	backend   webflow.Cache
	namespace string
	logger    webflow.Logger

	mu      sync.Mutex
	entries map[string][]webflow.Item
	locks   map[string]*sync.Mutex

	hits    atomic.Int64
	misses  atomic.Int64
	loads   atomic.Int64
	creates atomic.Int64
}

// NewItemIndex creates an empty index.
func NewItemIndex(fetch ItemFetcher, create ItemCreator, opts *ItemIndexOptions) *ItemIndex {
	if opts == nil {
		opts = &ItemIndexOptions{}
	}

	namespace := opts.Namespace
	if namespace == "" {
		namespace = constants.DefaultCacheNamespace
	}

	logger := opts.Logger
	if logger == nil {
		logger = webflow.NopLogger{}
	}

	return &ItemIndex{
		fetch:     fetch,
		create:    create,
		backend:   opts.Backend,
		namespace: namespace,
		logger:    logger,
		entries:   make(map[string][]webflow.Item),
		locks:     make(map[string]*sync.Mutex),
	}
}

// CollectionKey is the index key holding every item of collectionID.
func CollectionKey(collectionID string) string {
	return fmt.Sprintf(constants.CollectionItemsKeyFormat, collectionID)
}

// FindOrCreate returns the first item of collectionID whose name matches
// fields["name"] under ASCII case folding. When none matches, the item is
// created from fields, remembered, and returned.
func (x *ItemIndex) FindOrCreate(ctx context.Context, collectionID string, fields map[string]any) (webflow.Item, error) {
	name, err := lookupName(fields)
	if err != nil {
		return nil, err
	}

	key := CollectionKey(collectionID)

	lock := x.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	items, err := x.load(ctx, key, collectionID)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if asciiEqualFold(item.Name(), name) {
			x.hits.Add(1)

			return maps.Clone(item), nil
		}
	}

	x.misses.Add(1)

	created, err := x.create(ctx, collectionID, fields)
	if err != nil {
		return nil, fmt.Errorf("finding or creating item %q: %w", name, err)
	}

	if created == nil {
		return nil, fmt.Errorf("finding or creating item %q: %w", name, webflow.ErrItemNotFound)
	}

	x.creates.Add(1)
	x.append(ctx, key, created)

	return maps.Clone(created), nil
}

// Forget drops the loaded items of collectionID so the next lookup reloads it.
func (x *ItemIndex) Forget(ctx context.Context, collectionID string) {
	key := CollectionKey(collectionID)

	lock := x.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	x.mu.Lock()
	delete(x.entries, key)
	x.mu.Unlock()

	if x.backend != nil {
		err := x.backend.Delete(ctx, x.backendKey(key))
		if err != nil {
			x.logger.Warn("item index backend delete failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}
}

// Len returns the number of items held for collectionID.
func (x *ItemIndex) Len(collectionID string) int {
	x.mu.Lock()
	defer x.mu.Unlock()

	return len(x.entries[CollectionKey(collectionID)])
}

// Stats returns a snapshot of the index counters.
func (x *ItemIndex) Stats() IndexStats {
	return IndexStats{
		Hits:    x.hits.Load(),
		Misses:  x.misses.Load(),
		Loads:   x.loads.Load(),
		Creates: x.creates.Load(),
	}
}

func (x *ItemIndex) keyLock(key string) *sync.Mutex {
	x.mu.Lock()
	defer x.mu.Unlock()

	lock, ok := x.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		x.locks[key] = lock
	}

	return lock
}

// load returns the items under key, reading the backend and then the API
// when the index has none yet. The caller holds the key lock.
func (x *ItemIndex) load(ctx context.Context, key, collectionID string) ([]webflow.Item, error) {
	x.mu.Lock()
	items, ok := x.entries[key]
	x.mu.Unlock()

	if ok {
		return items, nil
	}

	if items, ok = x.readBackend(ctx, key); !ok {
		var err error

		items, err = x.fetch(ctx, collectionID)
		if err != nil {
			return nil, fmt.Errorf("loading collection %s: %w", collectionID, err)
		}

		x.loads.Add(1)
		x.writeBackend(ctx, key, items)
	}

	x.mu.Lock()
	x.entries[key] = items
	x.mu.Unlock()

	return items, nil
}

func (x *ItemIndex) append(ctx context.Context, key string, item webflow.Item) {
	x.mu.Lock()
	items := append(x.entries[key], item)
	x.entries[key] = items
	x.mu.Unlock()

	x.writeBackend(ctx, key, items)
}

func (x *ItemIndex) backendKey(key string) string {
	return x.namespace + "." + key
}

func (x *ItemIndex) readBackend(ctx context.Context, key string) ([]webflow.Item, bool) {
	if x.backend == nil {
		return nil, false
	}

	entry, err := x.backend.Get(ctx, x.backendKey(key))
	if err != nil {
		return nil, false
	}

	var items []webflow.Item

	err = json.Unmarshal(entry.Data, &items)
	if err != nil {
		x.logger.Warn("item index backend entry unreadable", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})

		return nil, false
	}

	x.logger.Debug("item index loaded from backend", map[string]interface{}{
		"key":   key,
		"items": len(items),
	})

	return items, true
}

func (x *ItemIndex) writeBackend(ctx context.Context, key string, items []webflow.Item) {
	if x.backend == nil {
		return
	}

	data, err := json.Marshal(items)
	if err == nil {
		err = x.backend.Set(ctx, x.backendKey(key), &webflow.CacheEntry{Data: data})
	}

	if err != nil {
		x.logger.Warn("item index backend write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// lookupName extracts the required string name from fields.
func lookupName(fields map[string]any) (string, error) {
	value, ok := fields[webflow.FieldName]
	if !ok || value == nil {
		return "", &webflow.MissingArgumentError{Argument: webflow.FieldName}
	}

	name, ok := value.(string)
	if !ok {
		return "", &webflow.InvalidArgumentError{Argument: webflow.FieldName, Value: fmt.Sprint(value)}
	}

	return name, nil
}

// asciiEqualFold compares a and b ignoring the case of ASCII letters only.
// Other bytes, including multi-byte UTF-8 sequences, must match exactly.
func asciiEqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range len(a) {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}

	return true
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}

	return c
}
