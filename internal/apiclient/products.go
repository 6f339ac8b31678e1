package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"prodimport/internal/models"
)

// ListProducts fetches one page of products. Only non-empty filter fields
// are sent. Both the paginated envelope and a bare JSON array are accepted.
func (c *Client) ListProducts(ctx context.Context, page int, filter models.ProductFilter) (*models.ProductPage, error) {
	if page < 1 {
		page = 1
	}
	filter = filter.Trim()

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if filter.SKU != "" {
		q.Set("sku", filter.SKU)
	}
	if filter.Name != "" {
		q.Set("name", filter.Name)
	}
	if filter.Description != "" {
		q.Set("description", filter.Description)
	}
	if filter.Active != "" {
		q.Set("active", filter.Active)
	}

	var raw json.RawMessage
	if err := c.do(ctx, &request{method: http.MethodGet, path: "/products/", query: q}, &raw); err != nil {
		return nil, err
	}

	result, err := decodeProductPage(raw)
	if err != nil {
		return nil, fmt.Errorf("GET /products/: malformed response: %w", err)
	}
	result.Page = page
	return result, nil
}

func decodeProductPage(raw json.RawMessage) (*models.ProductPage, error) {
	raw = bytes.TrimSpace(raw)
	result := &models.ProductPage{}

	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &result.Results); err != nil {
			return nil, err
		}
	} else if len(raw) > 0 {
		var envelope struct {
			Results    []models.Product `json:"results"`
			Count      int              `json:"count"`
			TotalPages int              `json:"total_pages"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, err
		}
		result.Results = envelope.Results
		result.Count = envelope.Count
		result.TotalPages = envelope.TotalPages
	}

	if result.Results == nil {
		result.Results = []models.Product{}
	}
	result.TotalPages = totalPages(result.TotalPages, result.Count, len(result.Results))
	return result, nil
}

// totalPages applies total_pages, then ceil(count/page size), then 1.
func totalPages(reported, count, listed int) int {
	if reported > 0 {
		return reported
	}
	n := count
	if n <= 0 {
		n = listed
	}
	pages := (n + models.DefaultPageSize - 1) / models.DefaultPageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// GetProduct fetches a single product.
func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	req := &request{method: http.MethodGet, path: "/products/" + escapeID(id) + "/"}
	if err := c.do(ctx, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct creates a product.
func (c *Client) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	req, err := c.jsonRequest(http.MethodPost, "/products/", in)
	if err != nil {
		return nil, err
	}
	var p models.Product
	if err := c.do(ctx, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct patches a product with all editable fields.
func (c *Client) UpdateProduct(ctx context.Context, id string, in models.ProductInput) (*models.Product, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	req, err := c.jsonRequest(http.MethodPatch, "/products/"+escapeID(id)+"/", in)
	if err != nil {
		return nil, err
	}
	var p models.Product
	if err := c.do(ctx, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProduct deletes one product.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, &request{method: http.MethodDelete, path: "/products/" + escapeID(id) + "/"}, nil)
}

// DeleteAllProducts removes every product on the server.
func (c *Client) DeleteAllProducts(ctx context.Context) error {
	return c.do(ctx, &request{method: http.MethodDelete, path: "/products/"}, nil)
}
