package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/fivetwenty-io/webflow/pkg/webflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFetchFailed = errors.New("fetch failed")

func TestItemIndex_FindOrCreate_CreatesOnceThenServesFromMemory(t *testing.T) {
	t.Parallel()

	server := newFakeWebflow()
	server.seed("c1", 150, func(i int) string { return fmt.Sprintf("Existing %d", i) })

	client := newTestClient(t, server)
	ctx := context.Background()

	first, err := client.Items().FindOrCreateByName(ctx, "c1", map[string]any{"name": "Brand New", "slug": "brand-new"})
	require.NoError(t, err)
	assert.Equal(t, "created-1", first.ID())

	// Two page fetches to list 150 existing items, then one create.
	assert.Equal(t, 2, server.count("GET "))
	assert.Equal(t, 1, server.count("POST "))
	assert.Equal(t, map[string]any{"name": "Brand New", "slug": "brand-new", "_archived": false, "_draft": false}, server.bodies[0])

	second, err := client.Items().FindOrCreateByName(ctx, "c1", map[string]any{"name": "Brand New"})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// No further network traffic.
	assert.Len(t, server.requestLog(), 3)
	assert.Equal(t, 151, client.ItemIndex().Len("c1"))
	assert.Equal(t, IndexStats{Hits: 1, Misses: 1, Loads: 1, Creates: 1}, client.ItemIndex().Stats())
}

func TestItemIndex_FindOrCreate_CaseInsensitive(t *testing.T) {
	t.Parallel()

	server := newFakeWebflow()
	server.seed("c1", 1, func(int) string { return "Acme" })

	client := newTestClient(t, server)
	ctx := context.Background()

	for _, name := range []string{"ACME", "acme", "Acme", "aCmE"} {
		item, err := client.Items().FindOrCreateByName(ctx, "c1", map[string]any{"name": name})
		require.NoError(t, err, name)
		assert.Equal(t, "c1-item-0", item.ID())
	}

	assert.Equal(t, 0, server.count("POST "))
	assert.Equal(t, 1, server.count("GET "))
}

func TestItemIndex_FindOrCreate_FirstMatchWins(t *testing.T) {
	t.Parallel()

	server := newFakeWebflow()
	server.seed("c1", 3, func(i int) string { return []string{"Other", "Dup", "DUP"}[i] })

	client := newTestClient(t, server)

	item, err := client.Items().FindOrCreateByName(context.Background(), "c1", map[string]any{"name": "dup"})
	require.NoError(t, err)
	assert.Equal(t, "c1-item-1", item.ID())
}

func TestItemIndex_FindOrCreate_MissingName(t *testing.T) {
	t.Parallel()

	server := newFakeWebflow()
	client := newTestClient(t, server)

	for _, fields := range []map[string]any{nil, {}, {"slug": "acme"}, {"name": nil}} {
		item, err := client.Items().FindOrCreateByName(context.Background(), "c1", fields)
		require.ErrorIs(t, err, webflow.ErrMissingArgument)
		require.ErrorIs(t, err, webflow.ErrInvalidArgument)
		assert.Nil(t, item)
		assert.Equal(t, "argument 'name' is required but was not present", err.Error())
	}

	_, err := client.Items().FindOrCreateByName(context.Background(), "c1", map[string]any{"name": 42})
	require.ErrorIs(t, err, webflow.ErrInvalidArgument)
	require.NotErrorIs(t, err, webflow.ErrMissingArgument)

	assert.Empty(t, server.requestLog())
}

func TestItemIndex_FailedLoadIsNotCached(t *testing.T) {
	t.Parallel()

	server := newFakeWebflow()
	server.failListAt = 100
	server.seed("c1", 150, func(i int) string { return fmt.Sprint(i) })

	client := newTestClient(t, server)
	ctx := context.Background()

	_, err := client.Items().FindOrCreateByName(ctx, "c1", map[string]any{"name": "149"})
	require.Error(t, err)
	assert.True(t, webflow.IsAPIError(err))
	assert.Equal(t, 0, client.ItemIndex().Len("c1"))
	assert.Equal(t, 0, server.count("POST "))

	server.mu.Lock()
	server.failListAt = -1
	server.mu.Unlock()

	item, err := client.Items().FindOrCreateByName(ctx, "c1", map[string]any{"name": "149"})
	require.NoError(t, err)
	assert.Equal(t, "c1-item-149", item.ID())
	assert.Equal(t, 4, server.count("GET "))
}

func TestItemIndex_ConcurrentLookupsCreateOnce(t *testing.T) {
	t.Parallel()

	server := newFakeWebflow()
	server.seed("c1", 10, func(i int) string { return fmt.Sprint(i) })

	client := newTestClient(t, server)

	const workers = 16

	var wg sync.WaitGroup

	ids := make([]string, workers)
	errs := make([]error, workers)

	for i := range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			item, err := client.Items().FindOrCreateByName(context.Background(), "c1", map[string]any{"name": "Shared"})
			errs[i] = err

			if item != nil {
				ids[i] = item.ID()
			}
		}()
	}

	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		assert.Equal(t, "created-1", ids[i])
	}

	assert.Equal(t, 1, server.count("POST "))
	assert.Equal(t, 1, server.count("GET "))
}

func TestItemIndex_CollectionsAreIndependent(t *testing.T) {
	t.Parallel()

	server := newFakeWebflow()
	server.seed("c1", 1, func(int) string { return "Acme" })

	client := newTestClient(t, server)
	ctx := context.Background()

	_, err := client.Items().FindOrCreateByName(ctx, "c1", map[string]any{"name": "Acme"})
	require.NoError(t, err)

	item, err := client.Items().FindOrCreateByName(ctx, "c2", map[string]any{"name": "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "created-1", item.ID())
	assert.Equal(t, 2, server.count("GET "))
}

func TestItemIndex_Forget(t *testing.T) {
	t.Parallel()

	server := newFakeWebflow()
	server.seed("c1", 1, func(int) string { return "Acme" })

	client := newTestClient(t, server)
	ctx := context.Background()

	_, err := client.Items().FindOrCreateByName(ctx, "c1", map[string]any{"name": "Acme"})
	require.NoError(t, err)

	client.ItemIndex().Forget(ctx, "c1")
	assert.Equal(t, 0, client.ItemIndex().Len("c1"))

	_, err = client.Items().FindOrCreateByName(ctx, "c1", map[string]any{"name": "Acme"})
	require.NoError(t, err)
	assert.Equal(t, 2, server.count("GET "))
}

func TestItemIndex_ReturnedItemsAreCopies(t *testing.T) {
	t.Parallel()

	server := newFakeWebflow()
	server.seed("c1", 1, func(int) string { return "Acme" })

	client := newTestClient(t, server)
	ctx := context.Background()

	item, err := client.Items().FindOrCreateByName(ctx, "c1", map[string]any{"name": "Acme"})
	require.NoError(t, err)

	item["name"] = "Mutated"

	again, err := client.Items().FindOrCreateByName(ctx, "c1", map[string]any{"name": "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", again.Name())
}

func TestItemIndex_SharedBackendWarmsSecondClient(t *testing.T) {
	t.Parallel()

	server := newFakeWebflow()
	server.seed("c1", 1, func(int) string { return "Acme" })

	backend := webflow.NewMemoryCache(10)
	ctx := context.Background()

	withBackend := func(namespace string) func(*webflow.Config) {
		return func(config *webflow.Config) {
			config.Cache = &webflow.CacheConfig{Type: webflow.CacheTypeMemory, Namespace: namespace}
		}
	}

	first := newTestClient(t, server, withBackend("shared"))

	// Swap in the shared backend; the config-built one is private to each client.
	first.items.index.backend = backend

	_, err := first.Items().FindOrCreateByName(ctx, "c1", map[string]any{"name": "Beta"})
	require.NoError(t, err)
	assert.True(t, backend.Has(ctx, "shared.collection-c1-items"))

	second := newTestClient(t, server, withBackend("shared"))
	second.items.index.backend = backend

	item, err := second.Items().FindOrCreateByName(ctx, "c1", map[string]any{"name": "beta"})
	require.NoError(t, err)
	assert.Equal(t, "created-1", item.ID())

	assert.Equal(t, 1, server.count("GET "))
	assert.Equal(t, 1, server.count("POST "))
	assert.Equal(t, int64(0), second.ItemIndex().Stats().Loads)
}

func TestItemIndex_BackendFailuresAreNotFatal(t *testing.T) {
	t.Parallel()

	items := []webflow.Item{{"_id": "i1", "name": "Acme"}}
	fetches := 0

	index := NewItemIndex(
		func(context.Context, string) ([]webflow.Item, error) {
			fetches++

			return items, nil
		},
		func(context.Context, string, map[string]any) (webflow.Item, error) {
			return nil, errFetchFailed
		},
		&ItemIndexOptions{Backend: failingCache{}},
	)

	item, err := index.FindOrCreate(context.Background(), "c1", map[string]any{"name": "acme"})
	require.NoError(t, err)
	assert.Equal(t, "i1", item.ID())
	assert.Equal(t, 1, fetches)

	_, err = index.FindOrCreate(context.Background(), "c1", map[string]any{"name": "other"})
	require.ErrorIs(t, err, errFetchFailed)
	assert.Equal(t, 1, index.Len("c1"))
}

func TestItemIndex_FindOrCreate_EmptyCreateResponse(t *testing.T) {
	t.Parallel()

	index := NewItemIndex(
		func(context.Context, string) ([]webflow.Item, error) {
			return nil, nil
		},
		func(context.Context, string, map[string]any) (webflow.Item, error) {
			return nil, nil
		},
		nil,
	)

	item, err := index.FindOrCreate(context.Background(), "c1", map[string]any{"name": "Acme"})
	require.ErrorIs(t, err, webflow.ErrItemNotFound)
	assert.Nil(t, item)
	assert.Equal(t, 0, index.Len("c1"))
	assert.Equal(t, int64(0), index.Stats().Creates)
}

func TestASCIIEqualFold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b  string
		equal bool
	}{
		{"Acme", "ACME", true},
		{"acme co.", "ACME CO.", true},
		{"", "", true},
		{"Acme", "Acm", false},
		{"Straße", "STRASSE", false},
		{"Éclair", "éclair", false},
		{"Éclair", "Éclair", true},
		{"K", "K", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.equal, asciiEqualFold(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

// failingCache rejects every operation.
type failingCache struct{}

func (failingCache) Get(context.Context, string) (*webflow.CacheEntry, error) {
	return nil, errFetchFailed
}

func (failingCache) Set(context.Context, string, *webflow.CacheEntry) error {
	return errFetchFailed
}

func (failingCache) Delete(context.Context, string) error {
	return errFetchFailed
}

func (failingCache) Clear(context.Context) error {
	return errFetchFailed
}

func (failingCache) Has(context.Context, string) bool {
	return false
}
