// Package catalog is the HTTP client for the external catalog service.
// Approved price and category changes are pushed through it; the core never
// owns catalog data.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"storefront-core/config"
	"storefront-core/internal/core/domain"
	"storefront-core/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.CatalogService against the catalog's REST API.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewClient creates a catalog client from configuration.
func NewClient(cfg config.CatalogConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

// NewClientWithHTTP creates a catalog client with a custom HTTP client.
func NewClientWithHTTP(baseURL string, httpClient HTTPClient, log zerolog.Logger) *Client {
	return &Client{baseURL: baseURL, httpClient: httpClient, log: log}
}

type priceResponse struct {
	ProductID string          `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
}

// GetProductPrice fetches the current price of a product, used to snapshot
// payload_before at submission time.
func (c *Client) GetProductPrice(ctx context.Context, productID string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/internal/v1/products/%s/price", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("catalog get price: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return decimal.Zero, apperror.ErrNotFound("product " + productID)
	default:
		return decimal.Zero, fmt.Errorf("catalog get price: unexpected status %d", resp.StatusCode)
	}

	var pr priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return decimal.Zero, fmt.Errorf("decode catalog price: %w", err)
	}
	return pr.Price, nil
}

// SetProductPrice pushes an approved price change to the catalog.
func (c *Client) SetProductPrice(ctx context.Context, productID string, price decimal.Decimal) error {
	body, err := json.Marshal(map[string]any{"price": price})
	if err != nil {
		return fmt.Errorf("marshal price update: %w", err)
	}

	url := fmt.Sprintf("%s/internal/v1/products/%s/price", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, "set product price")
}

// CreateCategory pushes an approved category proposal to the catalog.
func (c *Client) CreateCategory(ctx context.Context, proposal domain.CategoryPayload) error {
	body, err := json.Marshal(proposal)
	if err != nil {
		return fmt.Errorf("marshal category proposal: %w", err)
	}

	url := c.baseURL + "/internal/v1/categories"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, "create category")
}

func (c *Client) do(req *http.Request, op string) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog %s: %w", op, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn().
			Str("op", op).
			Int("status", resp.StatusCode).
			Msg("catalog call failed")
		return fmt.Errorf("catalog %s: unexpected status %d", op, resp.StatusCode)
	}
	return nil
}
