package webflow

import (
	"context"
	"fmt"
)

// FetchAllItems fetches every page of a collection and returns the items in
// server page order.
//
// The first page is requested with the default offset and limit. Its limit and
// total decide how many more pages follow and at which offsets, regardless of
// what the caller might have asked for. Any failing page discards the partial
// result. Items added or removed between page fetches may show up as
// duplicates or gaps; nothing deduplicates them.
func FetchAllItems(ctx context.Context, lister ItemLister, collectionID string) ([]Item, error) {
	first, err := lister.List(ctx, collectionID, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching items page 0: %w", err)
	}

	items := append(make([]Item, 0, len(first.Items)), first.Items...)

	pages := first.Pages()

	for page := 1; page < pages; page++ {
		next, err := lister.List(ctx, collectionID, &ListOptions{
			Offset: first.Limit * page,
			Limit:  first.Limit,
		})
		if err != nil {
			return nil, fmt.Errorf("fetching items page %d: %w", page, err)
		}

		items = append(items, next.Items...)
	}

	return items, nil
}

// ItemIterator walks a collection one item at a time, fetching pages lazily.
// It follows the same offsets as FetchAllItems.
type ItemIterator struct {
	ctx          context.Context
	lister       ItemLister
	collectionID string

	current []Item
	index   int
	page    int
	pages   int
	limit   int
	started bool
	err     error
}

// NewItemIterator creates an iterator over the items of collectionID.
func NewItemIterator(ctx context.Context, lister ItemLister, collectionID string) *ItemIterator {
	return &ItemIterator{
		ctx:          ctx,
		lister:       lister,
		collectionID: collectionID,
	}
}

// HasNext returns true if there are more items to iterate. A fetch error ends
// the iteration and is reported by Next or Err.
func (it *ItemIterator) HasNext() bool {
	if it.err != nil {
		return false
	}

	for it.index >= len(it.current) {
		if it.started && it.page+1 >= it.pages {
			return false
		}

		if !it.fetchNext() {
			return false
		}
	}

	return true
}

// Next returns the next item.
func (it *ItemIterator) Next() (Item, error) {
	if !it.HasNext() {
		if it.err != nil {
			return nil, it.err
		}

		return nil, ErrNoMoreItems
	}

	item := it.current[it.index]
	it.index++

	return item, nil
}

// Err returns the error that stopped the iteration, if any.
func (it *ItemIterator) Err() error {
	return it.err
}

// All collects the remaining items.
func (it *ItemIterator) All() ([]Item, error) {
	var items []Item

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	if it.err != nil {
		return nil, it.err
	}

	return items, nil
}

// ForEach calls fn for each remaining item, stopping at the first error.
func (it *ItemIterator) ForEach(fn func(Item) error) error {
	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return it.err
}

func (it *ItemIterator) fetchNext() bool {
	var opts *ListOptions

	page := 0
	if it.started {
		page = it.page + 1
		opts = &ListOptions{Offset: it.limit * page, Limit: it.limit}
	}

	response, err := it.lister.List(it.ctx, it.collectionID, opts)
	if err != nil {
		it.err = fmt.Errorf("fetching items page %d: %w", page, err)

		return false
	}

	if !it.started {
		it.started = true
		it.limit = response.Limit
		it.pages = response.Pages()
	}

	it.page = page
	it.current = response.Items
	it.index = 0

	return true
}
