package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/NunnaRupaSri/terraform-sample/pkg/logging"
)

const maxErrorBody = 4 << 10

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// NewClientWithHTTP lets callers bring their own transport, e.g. httptest servers.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	c := NewClient(baseURL)
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// ListProducts returns every well-formed product the API sends. Malformed rows are
// logged and skipped; a null body reads as an empty catalog.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var raw []Product
	if err := c.do(ctx, "list products", http.MethodGet, "/api/products", nil, &raw); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(raw))
	for _, p := range raw {
		if err := p.Validate(); err != nil {
			logging.FromContext(ctx).Warn("product_skipped", "id", p.ID, "error", err)
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// CreateProduct reports success for any 2xx. The returned product is nil when the
// API did not echo a usable one back.
func (c *Client) CreateProduct(ctx context.Context, req ProductRequest) (*Product, error) {
	var created Product
	err := c.do(ctx, "create product", http.MethodPost, "/api/products", req, &created)
	return echoed(ctx, created, err)
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, req ProductRequest) (*Product, error) {
	var updated Product
	err := c.do(ctx, "update product", http.MethodPut, productPath(id), req, &updated)
	return echoed(ctx, updated, err)
}

func echoed(ctx context.Context, p Product, err error) (*Product, error) {
	switch {
	case err != nil && !errors.Is(err, ErrInvalidResponse):
		return nil, err
	case err != nil:
		logging.FromContext(ctx).Debug("product_body_ignored", "error", err)
		return nil, nil
	case p.Validate() != nil:
		return nil, nil
	}
	return &p, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, "delete product", http.MethodDelete, productPath(id), nil, nil)
}

func (c *Client) AdminLogin(ctx context.Context, username, password string) (*AdminLoginResponse, error) {
	var res AdminLoginResponse
	body := AdminLoginRequest{Username: username, Password: password}
	if err := c.do(ctx, "admin login", http.MethodPost, "/api/auth/admin-login", body, &res); err != nil {
		return nil, err
	}
	if err := res.Validate(); err != nil {
		return nil, fmt.Errorf("admin login: %w", err)
	}
	return &res, nil
}

func (c *Client) CustomerLogin(ctx context.Context, mobile string) (*CustomerLoginResponse, error) {
	var res CustomerLoginResponse
	body := CustomerLoginRequest{Mobile: mobile}
	if err := c.do(ctx, "customer login", http.MethodPost, "/api/auth/customer-login", body, &res); err != nil {
		return nil, err
	}
	if err := res.Validate(); err != nil {
		return nil, fmt.Errorf("customer login: %w", err)
	}
	return &res, nil
}

func productPath(id int64) string {
	return "/api/products/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: do request: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: op, Code: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}
	// an empty 2xx body leaves out untouched
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: %w: decode response: %v", op, ErrInvalidResponse, err)
	}
	return nil
}

func errorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
