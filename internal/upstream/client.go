package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nees-commerce/admin-gateway/internal/order"
)

var (
	ErrUnauthorized = errors.New("upstream: unauthorized")
	ErrForbidden    = errors.New("upstream: forbidden")
	ErrNotFound     = errors.New("upstream: not found")
)

// APIError carries a non-2xx upstream response that is not one of the
// sentinel cases.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream: %d %s", e.StatusCode, e.Message)
}

// Client talks to the storefront backend. Every method takes the
// caller's bearer token so the gateway never holds upstream
// credentials of its own.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Login forwards admin credentials and returns the raw upstream
// response body on success. The gateway mints its own session token
// from the profile inside.
func (c *Client) Login(ctx context.Context, email, password string) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	return c.roundTrip(ctx, http.MethodPost, "/admin/login", "", bytes.NewReader(body))
}

// ListOrders fetches every order, repairing whatever envelope shape
// the backend wraps the collection in.
func (c *Client) ListOrders(ctx context.Context, token string) ([]order.Order, error) {
	body, err := c.roundTrip(ctx, http.MethodGet, "/order/orders", token, nil)
	if err != nil {
		return nil, err
	}
	return DecodeList(body)
}

// GetOrder fetches a single order by id.
func (c *Client) GetOrder(ctx context.Context, token, id string) (*order.Order, error) {
	body, err := c.roundTrip(ctx, http.MethodGet, "/admin/orders/"+url.PathEscape(id), token, nil)
	if err != nil {
		return nil, err
	}
	return DecodeOrder(body)
}

// UpdateOrder sends a partial update for an order. The patch carries
// wire-format field names and values.
func (c *Client) UpdateOrder(ctx context.Context, token, id string, patch map[string]string) error {
	body, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	_, err = c.roundTrip(ctx, http.MethodPut, "/admin/orders/"+url.PathEscape(id), token, bytes.NewReader(body))
	return err
}

// Forward relays an arbitrary request to the upstream path and returns
// the raw response. Catalog and staff routes go through here.
func (c *Client) Forward(ctx context.Context, method, path, token string, body io.Reader) (json.RawMessage, error) {
	return c.roundTrip(ctx, method, path, token, body)
}

// GetJSON fetches a path and returns the raw body. Dashboard metrics
// are merged from several of these.
func (c *Client) GetJSON(ctx context.Context, token, path string) (json.RawMessage, error) {
	return c.roundTrip(ctx, http.MethodGet, path, token, nil)
}

func (c *Client) roundTrip(ctx context.Context, method, path, token string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("upstream response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return nil, ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

// errorMessage digs a human-readable message out of an upstream error
// body, falling back to the raw text.
func errorMessage(body []byte) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err == nil {
		for _, key := range []string{"message", "error", "msg"} {
			var s string
			if raw, ok := obj[key]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
				return s
			}
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	if s == "" {
		s = "request failed"
	}
	return s
}
