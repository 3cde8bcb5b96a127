package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/webflow/internal/http"
	"github.com/fivetwenty-io/webflow/pkg/webflow"
)

// CollectionsClient implements webflow.CollectionsClient.
type CollectionsClient struct {
	httpClient *http.Client
}

// NewCollectionsClient creates a new collections client.
func NewCollectionsClient(httpClient *http.Client) *CollectionsClient {
	return &CollectionsClient{
		httpClient: httpClient,
	}
}

// List implements webflow.CollectionsClient.List.
func (c *CollectionsClient) List(ctx context.Context, siteID string) ([]webflow.Collection, error) {
	resp, err := c.httpClient.Get(ctx, sitePath(siteID)+"/collections", nil)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	var collections []webflow.Collection

	err = resp.Decode(&collections)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	return collections, nil
}

// Get implements webflow.CollectionsClient.Get. The result includes the field schema.
func (c *CollectionsClient) Get(ctx context.Context, collectionID string) (*webflow.Collection, error) {
	resp, err := c.httpClient.Get(ctx, collectionPath(collectionID), nil)
	if err != nil {
		return nil, fmt.Errorf("getting collection: %w", err)
	}

	var collection webflow.Collection

	err = resp.Decode(&collection)
	if err != nil {
		return nil, fmt.Errorf("getting collection: %w", err)
	}

	return &collection, nil
}

func collectionPath(collectionID string) string {
	return "/collections/" + url.PathEscape(collectionID)
}
