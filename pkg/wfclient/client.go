package wfclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/webflow/internal/client"
	"github.com/fivetwenty-io/webflow/pkg/webflow"
)

// New creates a new Webflow API client.
func New(ctx context.Context, config *webflow.Config) (webflow.Client, error) {
	if config == nil {
		return nil, webflow.ErrConfigRequired
	}

	normalized := *config
	normalized.BaseURL = normalizeBaseURL(config.BaseURL)

	client, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return client, nil
}

// NewWithToken creates a client for token with every other setting at its default.
func NewWithToken(ctx context.Context, token string) (webflow.Client, error) {
	return New(ctx, &webflow.Config{Token: token})
}

// NewWithVersion creates a client for token that sends apiVersion as accept-version.
func NewWithVersion(ctx context.Context, token, apiVersion string) (webflow.Client, error) {
	return New(ctx, &webflow.Config{Token: token, APIVersion: apiVersion})
}

// Close releases resources held by a client built here, such as a cache
// backend connection. Other clients are left alone.
func Close(c webflow.Client) error {
	closer, ok := c.(interface{ Close() error })
	if !ok {
		return nil
	}

	return closer.Close()
}

// normalizeBaseURL trims a trailing slash and defaults the scheme to https.
// An empty value stays empty so the client default applies.
func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return ""
	}

	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	return baseURL
}
