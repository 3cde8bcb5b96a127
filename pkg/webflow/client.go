package webflow

import (
	"context"
	"time"
)

// SitesClient covers /sites and its sub-resources.
type SitesClient interface {
	List(ctx context.Context) ([]Site, error)
	Get(ctx context.Context, siteID string) (*Site, error)
	Domains(ctx context.Context, siteID string) ([]Domain, error)
	Publish(ctx context.Context, siteID string, domains []string) (*PublishResult, error)
}

// WebhooksClient covers /sites/{siteId}/webhooks.
type WebhooksClient interface {
	List(ctx context.Context, siteID string) ([]Webhook, error)
	Get(ctx context.Context, siteID, webhookID string) (*Webhook, error)
	Create(ctx context.Context, siteID string, request *WebhookCreateRequest) (*Webhook, error)
	Remove(ctx context.Context, siteID, webhookID string) (*DeleteResult, error)
}

// WebhookCreateRequest describes a webhook registration. Empty fields fall
// back to WebhookDefaults.
type WebhookCreateRequest struct {
	TriggerType TriggerType
	URL         string
	// Filter is optional; nil leaves the default empty filter.
	Filter any
}

// CollectionsClient covers collection schemas.
type CollectionsClient interface {
	List(ctx context.Context, siteID string) ([]Collection, error)
	Get(ctx context.Context, collectionID string) (*Collection, error)
}

// ItemLister fetches a single page of items. It is the only capability the
// pagination helpers need.
type ItemLister interface {
	List(ctx context.Context, collectionID string, opts *ListOptions) (*ItemsPage, error)
}

// ItemsClient covers collection items, including full enumeration and
// find-or-create by name.
type ItemsClient interface {
	ItemLister

	// All fetches every page of the collection and returns the items in
	// server page order.
	All(ctx context.Context, collectionID string) ([]Item, error)
	Get(ctx context.Context, collectionID, itemID string) (Item, error)
	Create(ctx context.Context, collectionID string, fields map[string]any, live bool) (Item, error)
	Update(ctx context.Context, collectionID, itemID string, fields map[string]any, live bool) (Item, error)
	Patch(ctx context.Context, collectionID, itemID string, fields map[string]any, live bool) (Item, error)
	Remove(ctx context.Context, collectionID, itemID string) (*DeleteResult, error)

	// FindOrCreateByName returns the first item whose name matches
	// fields["name"] case-insensitively, creating it when none exists.
	FindOrCreateByName(ctx context.Context, collectionID string, fields map[string]any) (Item, error)
}

// Client is the Webflow API client.
type Client interface {
	Info(ctx context.Context) (*Info, error)
	Sites() SitesClient
	Webhooks() WebhooksClient
	Collections() CollectionsClient
	Items() ItemsClient
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a Client.
//
// Only Token is required. Everything else has a default that reproduces the
// plain API contract: one request per call, no retries, no rate limiting, and
// an item index that lives only as long as the client.
type Config struct {
	// Token: site or workspace API token sent as a Bearer token. Required.
	Token string
	// APIVersion: value of the accept-version header. Defaults to "1.0.0".
	APIVersion string
	// BaseURL: API endpoint. Defaults to https://api.webflow.com.
	BaseURL string
	// UserAgent: overrides the default User-Agent header.
	UserAgent string

	// HTTPTimeout: per-request timeout of the underlying HTTP client.
	HTTPTimeout time.Duration
	// RetryMax: retries for 429, 5xx, and connection errors. 0 disables retries.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// RequestsPerMinute: client-side rate limit. 0 disables limiting.
	RequestsPerMinute int

	// Debug: enables request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer and the item index.
	Logger Logger

	// Cache: optional shared backend for the find-or-create item index.
	// Nil keeps the index in process memory only.
	Cache *CacheConfig

	// Interceptors: extra hooks run around every request.
	Interceptors *InterceptorChain
}
