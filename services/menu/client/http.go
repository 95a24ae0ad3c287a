// Package client is the admin-side half of the menu ordering protocol: an
// HTTP client for the menu API, the per-bucket OptimisticCache and the
// DragSession state machine that turns pick up / move / drop gestures into a
// single reorder call.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/ghuser/bizdir/pkg/auth"
)

const defaultTimeout = 10 * time.Second

// Item is a menu item as returned by the API.
type Item struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Bucket    string    `json:"bucket"`
	Order     int       `json:"order"`
	IsActive  bool      `json:"isActive"`
	Target    string    `json:"target"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateRequest is the body of POST /items. A nil IsActive lets the server
// default it to true.
type CreateRequest struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Bucket   string `json:"bucket"`
	IsActive *bool  `json:"isActive,omitempty"`
	Target   string `json:"target,omitempty"`
}

// UpdateRequest is the body of PUT /items/{id}. Nil fields are left unchanged.
type UpdateRequest struct {
	Name     *string `json:"name,omitempty"`
	URL      *string `json:"url,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
	Target   *string `json:"target,omitempty"`
}

type reorderRequest struct {
	Bucket     string      `json:"bucket"`
	OrderedIDs []uuid.UUID `json:"orderedIds"`
}

type moveRequest struct {
	Bucket string `json:"bucket"`
}

type bucketsResponse struct {
	Buckets []string `json:"buckets"`
}

// TransportError reports a request that never produced an API response:
// connection failures, timeouts and unreadable bodies.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-2xx response from the menu API.
type APIError struct {
	Status  int
	Message string
	Details map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("menu api: %d %s", e.Status, e.Message)
}

// IsValidation reports whether err is an API rejection of the request
// payload (HTTP 400).
func IsValidation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest
}

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSessionCookie sends value as the admin session cookie on every request.
func WithSessionCookie(value string) Option {
	return func(c *Client) { c.session = value }
}

// Client talks to the menu API mounted under baseURL (for example
// "http://localhost:8080/api").
type Client struct {
	baseURL string
	http    *http.Client
	session string
}

// New returns a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Buckets returns the valid bucket names.
func (c *Client) Buckets(ctx context.Context) ([]string, error) {
	var out bucketsResponse
	if err := c.do(ctx, "list buckets", http.MethodGet, "/buckets", nil, &out); err != nil {
		return nil, err
	}
	return out.Buckets, nil
}

// List returns the bucket's items ascending by order.
func (c *Client) List(ctx context.Context, bucket string) ([]Item, error) {
	var out []Item
	path := "/items?" + url.Values{"bucket": {bucket}}.Encode()
	if err := c.do(ctx, "list items", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one item.
func (c *Client) Get(ctx context.Context, id uuid.UUID) (Item, error) {
	var out Item
	err := c.do(ctx, "get item", http.MethodGet, "/items/"+id.String(), nil, &out)
	return out, err
}

// Create appends a new item to the tail of its bucket.
func (c *Client) Create(ctx context.Context, req CreateRequest) (Item, error) {
	var out Item
	err := c.do(ctx, "create item", http.MethodPost, "/items", req, &out)
	return out, err
}

// Update changes the non-order fields of an item.
func (c *Client) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (Item, error) {
	var out Item
	err := c.do(ctx, "update item", http.MethodPut, "/items/"+id.String(), req, &out)
	return out, err
}

// Delete removes an item.
func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, "delete item", http.MethodDelete, "/items/"+id.String(), nil, nil)
}

// Move re-inserts an item at the tail of another bucket.
func (c *Client) Move(ctx context.Context, id uuid.UUID, bucket string) (Item, error) {
	var out Item
	err := c.do(ctx, "move item", http.MethodPost, "/items/"+id.String()+"/move", moveRequest{Bucket: bucket}, &out)
	return out, err
}

// Reorder persists orderedIDs as the bucket's full order.
func (c *Client) Reorder(ctx context.Context, bucket string, orderedIDs []uuid.UUID) error {
	if orderedIDs == nil {
		orderedIDs = []uuid.UUID{}
	}
	body := reorderRequest{Bucket: bucket, OrderedIDs: orderedIDs}
	return c.do(ctx, "reorder", http.MethodPost, "/items/reorder", body, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionName, Value: c.session})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var e struct {
			Error   string            `json:"error"`
			Details map[string]string `json:"details"`
		}
		if json.Unmarshal(payload, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
			apiErr.Details = e.Details
		}
		return apiErr
	}

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}
