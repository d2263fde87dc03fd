package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// enrichmentTimeout bounds every outbound lookup. A downstream service that
// takes longer surfaces as a failure, never as a hung request.
const enrichmentTimeout = 5 * time.Second

// EnrichmentClient fetches product and user details from the downstream lookup
// services and relays their JSON bodies verbatim. Any non-2xx status, timeout,
// or connection error is a uniform enrichment failure.
type EnrichmentClient struct {
	productServiceURL string
	userServiceURL    string
	httpClient        *http.Client
	metrics           *OrderMetrics
}

func NewEnrichmentClient(productServiceURL string, userServiceURL string, metrics *OrderMetrics) *EnrichmentClient {
	return &EnrichmentClient{
		productServiceURL: productServiceURL,
		userServiceURL:    userServiceURL,
		httpClient:        &http.Client{Timeout: enrichmentTimeout},
		metrics:           metrics,
	}
}

// FetchProduct returns the product service's response body for the given
// product id.
func (c *EnrichmentClient) FetchProduct(ctx context.Context, productID interface{}) ([]byte, error) {
	body, err := c.fetch(ctx, fmt.Sprintf("%s/products/%v", c.productServiceURL, productID))
	c.metrics.EnrichmentCall("product", err)
	return body, err
}

// FetchUser returns the user service's response body for the given user id.
func (c *EnrichmentClient) FetchUser(ctx context.Context, userID interface{}) ([]byte, error) {
	body, err := c.fetch(ctx, fmt.Sprintf("%s/users/%v", c.userServiceURL, userID))
	c.metrics.EnrichmentCall("user", err)
	return body, err
}

func (c *EnrichmentClient) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}

	return body, nil
}
