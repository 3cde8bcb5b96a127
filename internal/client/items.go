package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/fivetwenty-io/webflow/internal/constants"
	"github.com/fivetwenty-io/webflow/internal/http"
	"github.com/fivetwenty-io/webflow/pkg/webflow"
)

// ItemsClient implements webflow.ItemsClient.
type ItemsClient struct {
	httpClient *http.Client
	index      *ItemIndex
}

// NewItemsClient creates a new items client. The find-or-create index is
// owned by the returned client and lives as long as it does.
func NewItemsClient(httpClient *http.Client, indexOpts *ItemIndexOptions) *ItemsClient {
	client := &ItemsClient{
		httpClient: httpClient,
	}

	client.index = NewItemIndex(
		func(ctx context.Context, collectionID string) ([]webflow.Item, error) {
			return webflow.FetchAllItems(ctx, client, collectionID)
		},
		func(ctx context.Context, collectionID string, fields map[string]any) (webflow.Item, error) {
			return client.Create(ctx, collectionID, fields, false)
		},
		indexOpts,
	)

	return client
}

// Index returns the find-or-create index.
func (c *ItemsClient) Index() *ItemIndex {
	return c.index
}

// List implements webflow.ItemsClient.List. Offset and limit are always
// sent; zero options select offset 0 and limit 100.
func (c *ItemsClient) List(ctx context.Context, collectionID string, opts *webflow.ListOptions) (*webflow.ItemsPage, error) {
	offset := constants.DefaultItemsOffset
	limit := constants.DefaultItemsLimit

	if opts != nil {
		if opts.Offset > 0 {
			offset = opts.Offset
		}

		if opts.Limit > 0 {
			limit = opts.Limit
		}
	}

	query := url.Values{
		"offset": []string{strconv.Itoa(offset)},
		"limit":  []string{strconv.Itoa(limit)},
	}

	resp, err := c.httpClient.Get(ctx, itemsPath(collectionID), query)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	var page webflow.ItemsPage

	err = resp.Decode(&page)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	return &page, nil
}

// All implements webflow.ItemsClient.All.
func (c *ItemsClient) All(ctx context.Context, collectionID string) ([]webflow.Item, error) {
	return webflow.FetchAllItems(ctx, c, collectionID)
}

// Get implements webflow.ItemsClient.Get. The API wraps a single item in a
// page envelope; the item is unwrapped.
func (c *ItemsClient) Get(ctx context.Context, collectionID, itemID string) (webflow.Item, error) {
	resp, err := c.httpClient.Get(ctx, itemPath(collectionID, itemID), nil)
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}

	item, err := decodeItem(resp)
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}

	if item == nil {
		return nil, fmt.Errorf("getting item: %w: %s", webflow.ErrItemNotFound, itemID)
	}

	return item, nil
}

// Create implements webflow.ItemsClient.Create. fields are merged over
// webflow.ItemDefaults.
func (c *ItemsClient) Create(ctx context.Context, collectionID string, fields map[string]any, live bool) (webflow.Item, error) {
	item, err := c.write(ctx, "POST", itemsPath(collectionID), webflow.MergeDefaults(webflow.ItemDefaults(), fields), live)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return item, nil
}

// Update implements webflow.ItemsClient.Update. The item is replaced by
// fields merged over webflow.ItemDefaults.
func (c *ItemsClient) Update(ctx context.Context, collectionID, itemID string, fields map[string]any, live bool) (webflow.Item, error) {
	item, err := c.write(ctx, "PUT", itemPath(collectionID, itemID), webflow.MergeDefaults(webflow.ItemDefaults(), fields), live)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	return item, nil
}

// Patch implements webflow.ItemsClient.Patch. Only the given fields change,
// so no defaults are merged.
func (c *ItemsClient) Patch(ctx context.Context, collectionID, itemID string, fields map[string]any, live bool) (webflow.Item, error) {
	item, err := c.write(ctx, "PATCH", itemPath(collectionID, itemID), fields, live)
	if err != nil {
		return nil, fmt.Errorf("patching item: %w", err)
	}

	return item, nil
}

// Remove implements webflow.ItemsClient.Remove.
func (c *ItemsClient) Remove(ctx context.Context, collectionID, itemID string) (*webflow.DeleteResult, error) {
	resp, err := c.httpClient.Delete(ctx, itemPath(collectionID, itemID))
	if err != nil {
		return nil, fmt.Errorf("removing item: %w", err)
	}

	var result webflow.DeleteResult

	err = resp.Decode(&result)
	if err != nil {
		return nil, fmt.Errorf("removing item: %w", err)
	}

	return &result, nil
}

// FindOrCreateByName implements webflow.ItemsClient.FindOrCreateByName.
func (c *ItemsClient) FindOrCreateByName(ctx context.Context, collectionID string, fields map[string]any) (webflow.Item, error) {
	return c.index.FindOrCreate(ctx, collectionID, fields)
}

func (c *ItemsClient) write(ctx context.Context, method, path string, fields map[string]any, live bool) (webflow.Item, error) {
	if fields == nil {
		fields = map[string]any{}
	}

	req := &http.Request{
		Method: method,
		Path:   path,
		Body:   &webflow.ItemFields{Fields: fields},
	}

	if live {
		req.Query = url.Values{"live": []string{"true"}}
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	return decodeItem(resp)
}

// decodeItem accepts a bare item or a page envelope holding one. An empty
// envelope or a null body yields a nil item.
func decodeItem(resp *http.Response) (webflow.Item, error) {
	var raw json.RawMessage

	err := resp.Decode(&raw)
	if err != nil {
		return nil, err
	}

	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var envelope struct {
		Items *[]webflow.Item `json:"items"`
		Total *int            `json:"total"`
	}

	if json.Unmarshal(raw, &envelope) == nil && envelope.Items != nil && envelope.Total != nil {
		if len(*envelope.Items) == 0 {
			return nil, nil
		}

		return (*envelope.Items)[0], nil
	}

	var item webflow.Item

	err = json.Unmarshal(raw, &item)
	if err != nil {
		return nil, &webflow.MalformedResponseError{StatusCode: resp.StatusCode, Body: resp.Body, Err: err}
	}

	return item, nil
}

func itemsPath(collectionID string) string {
	return collectionPath(collectionID) + "/items"
}

func itemPath(collectionID, itemID string) string {
	return itemsPath(collectionID) + "/" + url.PathEscape(itemID)
}
