package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/webflow/internal/http"
	"github.com/fivetwenty-io/webflow/pkg/webflow"
)

// WebhooksClient implements webflow.WebhooksClient.
type WebhooksClient struct {
	httpClient *http.Client
}

// NewWebhooksClient creates a new webhooks client.
func NewWebhooksClient(httpClient *http.Client) *WebhooksClient {
	return &WebhooksClient{
		httpClient: httpClient,
	}
}

// List implements webflow.WebhooksClient.List.
func (c *WebhooksClient) List(ctx context.Context, siteID string) ([]webflow.Webhook, error) {
	resp, err := c.httpClient.Get(ctx, sitePath(siteID)+"/webhooks", nil)
	if err != nil {
		return nil, fmt.Errorf("listing webhooks: %w", err)
	}

	var webhooks []webflow.Webhook

	err = resp.Decode(&webhooks)
	if err != nil {
		return nil, fmt.Errorf("listing webhooks: %w", err)
	}

	return webhooks, nil
}

// Get implements webflow.WebhooksClient.Get.
func (c *WebhooksClient) Get(ctx context.Context, siteID, webhookID string) (*webflow.Webhook, error) {
	resp, err := c.httpClient.Get(ctx, webhookPath(siteID, webhookID), nil)
	if err != nil {
		return nil, fmt.Errorf("getting webhook: %w", err)
	}

	var webhook webflow.Webhook

	err = resp.Decode(&webhook)
	if err != nil {
		return nil, fmt.Errorf("getting webhook: %w", err)
	}

	return &webhook, nil
}

// Create implements webflow.WebhooksClient.Create. The request is merged over
// webflow.WebhookDefaults and the resulting trigger type is validated before
// anything is sent.
func (c *WebhooksClient) Create(ctx context.Context, siteID string, request *webflow.WebhookCreateRequest) (*webflow.Webhook, error) {
	body := webhookBody(request)

	triggerType, _ := body["triggerType"].(string)

	err := webflow.ValidateTriggerType(webflow.TriggerType(triggerType))
	if err != nil {
		return nil, fmt.Errorf("creating webhook: %w", err)
	}

	resp, err := c.httpClient.Post(ctx, sitePath(siteID)+"/webhooks", body)
	if err != nil {
		return nil, fmt.Errorf("creating webhook: %w", err)
	}

	var webhook webflow.Webhook

	err = resp.Decode(&webhook)
	if err != nil {
		return nil, fmt.Errorf("creating webhook: %w", err)
	}

	return &webhook, nil
}

// Remove implements webflow.WebhooksClient.Remove.
func (c *WebhooksClient) Remove(ctx context.Context, siteID, webhookID string) (*webflow.DeleteResult, error) {
	resp, err := c.httpClient.Delete(ctx, webhookPath(siteID, webhookID))
	if err != nil {
		return nil, fmt.Errorf("removing webhook: %w", err)
	}

	var result webflow.DeleteResult

	err = resp.Decode(&result)
	if err != nil {
		return nil, fmt.Errorf("removing webhook: %w", err)
	}

	return &result, nil
}

// webhookBody merges the set fields of request over the defaults. Zero
// fields are left to the defaults.
func webhookBody(request *webflow.WebhookCreateRequest) map[string]any {
	overrides := make(map[string]any)

	if request != nil {
		if request.TriggerType != "" {
			overrides["triggerType"] = string(request.TriggerType)
		}

		if request.URL != "" {
			overrides["url"] = request.URL
		}

		if request.Filter != nil {
			overrides["filter"] = request.Filter
		}
	}

	return webflow.MergeDefaults(webflow.WebhookDefaults(), overrides)
}

func webhookPath(siteID, webhookID string) string {
	return sitePath(siteID) + "/webhooks/" + url.PathEscape(webhookID)
}
