package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/webflow/internal/http"
	"github.com/fivetwenty-io/webflow/pkg/webflow"
)

// SitesClient implements webflow.SitesClient.
type SitesClient struct {
	httpClient *http.Client
}

// NewSitesClient creates a new sites client.
func NewSitesClient(httpClient *http.Client) *SitesClient {
	return &SitesClient{
		httpClient: httpClient,
	}
}

// List implements webflow.SitesClient.List.
func (c *SitesClient) List(ctx context.Context) ([]webflow.Site, error) {
	resp, err := c.httpClient.Get(ctx, "/sites", nil)
	if err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}

	var sites []webflow.Site

	err = resp.Decode(&sites)
	if err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}

	return sites, nil
}

// Get implements webflow.SitesClient.Get.
func (c *SitesClient) Get(ctx context.Context, siteID string) (*webflow.Site, error) {
	resp, err := c.httpClient.Get(ctx, sitePath(siteID), nil)
	if err != nil {
		return nil, fmt.Errorf("getting site: %w", err)
	}

	var site webflow.Site

	err = resp.Decode(&site)
	if err != nil {
		return nil, fmt.Errorf("getting site: %w", err)
	}

	return &site, nil
}

// Domains implements webflow.SitesClient.Domains.
func (c *SitesClient) Domains(ctx context.Context, siteID string) ([]webflow.Domain, error) {
	resp, err := c.httpClient.Get(ctx, sitePath(siteID)+"/domains", nil)
	if err != nil {
		return nil, fmt.Errorf("listing site domains: %w", err)
	}

	var domains []webflow.Domain

	err = resp.Decode(&domains)
	if err != nil {
		return nil, fmt.Errorf("listing site domains: %w", err)
	}

	return domains, nil
}

// Publish implements webflow.SitesClient.Publish. The domains are sent as
// {"domains": [...]}; nil publishes to no custom domain.
func (c *SitesClient) Publish(ctx context.Context, siteID string, domains []string) (*webflow.PublishResult, error) {
	if domains == nil {
		domains = []string{}
	}

	resp, err := c.httpClient.Post(ctx, sitePath(siteID)+"/publish", &webflow.PublishRequest{Domains: domains})
	if err != nil {
		return nil, fmt.Errorf("publishing site: %w", err)
	}

	var result webflow.PublishResult

	err = resp.Decode(&result)
	if err != nil {
		return nil, fmt.Errorf("publishing site: %w", err)
	}

	return &result, nil
}

func sitePath(siteID string) string {
	return "/sites/" + url.PathEscape(siteID)
}
