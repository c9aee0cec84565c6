// Package client is a Go consumer of the listkeep HTTP API. All calls are
// context-aware; transient failures on safe requests are retried with
// exponential backoff.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"listkeep/internal/model"
)

// APIError is a non-2xx response from the server, carrying the message the
// server put in the body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Session holds the auth state for one logged-in account. It is an explicit
// value passed to each call rather than ambient client state, so one Client
// can drive several accounts.
type Session struct {
	Token string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMaxRetries sets how many times transient failures are retried.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

type Client struct {
	baseURL    string
	http       *http.Client
	maxRetries uint64
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		http:       &http.Client{Timeout: 15 * time.Second},
		maxRetries: 3,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) backoff() retry.Backoff {
	b := retry.NewExponential(100 * time.Millisecond)
	return retry.WithMaxRetries(c.maxRetries, b)
}

// doJSON performs one request and decodes a 2xx body into out (when out is
// non-nil). Non-2xx responses become *APIError. A 5xx or transport error is
// marked retryable for callers running under a backoff loop.
func (c *Client) doJSON(ctx context.Context, method, path string, session *Session, headers map[string]string, in, out any) error {
	var reader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != nil {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return retry.RetryableError(fmt.Errorf("request %s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return retry.RetryableError(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &msg) == nil {
			apiErr.Message = msg.Message
		}
		if resp.StatusCode >= 500 {
			return retry.RetryableError(apiErr)
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Register creates a new account and returns its session.
func (c *Client) Register(ctx context.Context, email, pwd string) (Session, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/register", nil, nil,
		map[string]string{"email": email, "pwd": pwd}, &out)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: out.Token}, nil
}

// Snapshot is the bootstrap state returned by Login.
type Snapshot struct {
	Products   []model.Product
	Categories []model.Category
}

// Login authenticates and returns the session plus the account's full
// product and category snapshot.
func (c *Client) Login(ctx context.Context, email, pwd string) (Session, Snapshot, error) {
	var out struct {
		Token      string           `json:"token"`
		Products   []model.Product  `json:"products"`
		Categories []model.Category `json:"categories"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/login", nil, nil,
		map[string]string{"email": email, "pwd": pwd}, &out)
	if err != nil {
		return Session{}, Snapshot{}, err
	}
	return Session{Token: out.Token}, Snapshot{Products: out.Products, Categories: out.Categories}, nil
}

// CheckAuth reports whether the session's token is still accepted.
func (c *Client) CheckAuth(ctx context.Context, s Session) error {
	return c.doJSON(ctx, http.MethodGet, "/auth/check", &s, nil, nil, nil)
}

// Categories pulls the account's category list, retrying transient failures.
func (c *Client) Categories(ctx context.Context, s Session) ([]model.Category, error) {
	var categories []model.Category
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		categories = nil
		return c.doJSON(ctx, http.MethodGet, "/auth/categories", &s, nil, nil, &categories)
	})
	return categories, err
}

// Products pulls the account's product list, retrying transient failures.
func (c *Client) Products(ctx context.Context, s Session) ([]model.Product, error) {
	var products []model.Product
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		products = nil
		return c.doJSON(ctx, http.MethodGet, "/auth/products", &s, nil, nil, &products)
	})
	return products, err
}

// ReplaceProducts pushes the complete product list. A fresh idempotency key
// is generated per call and held stable across retries, so a replay after a
// lost response is acknowledged rather than reapplied.
func (c *Client) ReplaceProducts(ctx context.Context, s Session, products []model.ProductInput) error {
	if products == nil {
		products = []model.ProductInput{}
	}
	key := uuid.NewString()
	headers := map[string]string{"X-Idempotency-Key": key}
	body := map[string]any{"products": products}

	return retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodPut, "/auth/products", &s, headers, body, nil)
	})
}

// Summary fetches the account's running balance.
func (c *Client) Summary(ctx context.Context, s Session) (model.Summary, error) {
	var summary model.Summary
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodGet, "/auth/pay", &s, nil, nil, &summary)
	})
	return summary, err
}

// Payments fetches the account's payment history, newest first.
func (c *Client) Payments(ctx context.Context, s Session) ([]model.Payment, error) {
	var payments []model.Payment
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		payments = nil
		return c.doJSON(ctx, http.MethodGet, "/auth/payments", &s, nil, nil, &payments)
	})
	return payments, err
}

// Pay records a settlement. Not retried automatically: a payment is not
// idempotent, so the caller decides whether to resubmit after a failure.
func (c *Client) Pay(ctx context.Context, s Session, amount float64, cardID string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/pay", &s, nil,
		map[string]any{"amount": amount, "card_id": cardID}, nil)
}

// Wipe clears all server data. Only works against deployments with test
// routes enabled.
func (c *Client) Wipe(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/test/wipe", nil, nil, nil, nil)
}
