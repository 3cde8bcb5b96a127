package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/webflow/internal/auth"
	"github.com/fivetwenty-io/webflow/internal/constants"
	"github.com/fivetwenty-io/webflow/internal/http"
	"github.com/fivetwenty-io/webflow/pkg/webflow"
)

// Client implements the webflow.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	baseURL      string
	logger       webflow.Logger
	cache        webflow.Cache

	// Resource clients
	sites       *SitesClient
	webhooks    *WebhooksClient
	collections *CollectionsClient
	items       *ItemsClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *webflow.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.APIVersion != "" {
		httpOpts = append(httpOpts, http.WithAPIVersion(config.APIVersion))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if chain := createInterceptorChain(config); chain != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(chain))
	}

	return httpOpts
}

// createInterceptorChain puts the rate limiter in front of the caller's interceptors.
func createInterceptorChain(config *webflow.Config) *webflow.InterceptorChain {
	if config.RequestsPerMinute <= 0 {
		return config.Interceptors
	}

	limiter := webflow.NewInterceptorChain()
	limiter.AddRequestInterceptor(webflow.RateLimitInterceptor(config.RequestsPerMinute))

	return limiter.Extend(config.Interceptors)
}

// New creates a new Webflow API client. The token is the only required setting.
func New(ctx context.Context, config *webflow.Config) (*Client, error) {
	if config == nil {
		return nil, webflow.ErrConfigRequired
	}

	if config.Token == "" {
		return nil, &webflow.ConfigurationError{Field: "token"}
	}

	return NewWithTokenManager(ctx, config, auth.NewStaticTokenManager(config.Token))
}

// NewWithTokenManager creates a new Webflow API client with a custom token manager.
func NewWithTokenManager(ctx context.Context, config *webflow.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config == nil {
		return nil, webflow.ErrConfigRequired
	}

	if tokenManager == nil {
		return nil, &webflow.ConfigurationError{Field: "token"}
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = constants.DefaultBaseURL
	}

	logger := config.Logger
	if logger == nil {
		logger = webflow.NopLogger{}
	}

	var cache webflow.Cache

	if config.Cache != nil {
		var err error

		cache, err = webflow.NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, fmt.Errorf("creating item index cache: %w", err)
		}
	}

	httpClient := http.NewClient(baseURL, tokenManager, createHTTPClientOptions(config)...)

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      baseURL,
		logger:       logger,
		cache:        cache,
	}

	client.initializeResourceClients(config)

	logger.Debug("webflow client initialized", map[string]interface{}{
		"base_url":    baseURL,
		"cache":       cache != nil,
		"retry_max":   config.RetryMax,
		"rate_limit":  config.RequestsPerMinute,
		"api_version": config.APIVersion,
	})

	return client, nil
}

func (c *Client) initializeResourceClients(config *webflow.Config) {
	namespace := constants.DefaultCacheNamespace
	if config.Cache != nil && config.Cache.Namespace != "" {
		namespace = config.Cache.Namespace
	}

	c.sites = NewSitesClient(c.httpClient)
	c.webhooks = NewWebhooksClient(c.httpClient)
	c.collections = NewCollectionsClient(c.httpClient)
	c.items = NewItemsClient(c.httpClient, &ItemIndexOptions{
		Backend:   c.cache,
		Namespace: namespace,
		Logger:    c.logger,
	})
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// BaseURL returns the API endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases the item index backend, if any.
func (c *Client) Close() error {
	switch cache := c.cache.(type) {
	case interface{ Close() error }:
		return cache.Close()
	case interface{ Close() }:
		cache.Close()
	}

	return nil
}

// Info implements webflow.Client.Info.
func (c *Client) Info(ctx context.Context) (*webflow.Info, error) {
	resp, err := c.httpClient.Get(ctx, "/info", nil)
	if err != nil {
		return nil, fmt.Errorf("getting info: %w", err)
	}

	var info webflow.Info

	err = resp.Decode(&info)
	if err != nil {
		return nil, fmt.Errorf("getting info: %w", err)
	}

	return &info, nil
}

// Sites implements webflow.Client.Sites.
func (c *Client) Sites() webflow.SitesClient {
	return c.sites
}

// Webhooks implements webflow.Client.Webhooks.
func (c *Client) Webhooks() webflow.WebhooksClient {
	return c.webhooks
}

// Collections implements webflow.Client.Collections.
func (c *Client) Collections() webflow.CollectionsClient {
	return c.collections
}

// Items implements webflow.Client.Items.
func (c *Client) Items() webflow.ItemsClient {
	return c.items
}

// ItemIndex exposes the find-or-create index for inspection and invalidation.
func (c *Client) ItemIndex() *ItemIndex {
	return c.items.index
}
