// Package client is the typed data layer for the inventory API. Reads go through a tag
// cache keyed by query; every write declares the tags it makes stale, and a resolved
// write drops those entries and wakes the matching Watch subscriptions.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fidellopezm03/inventory-admin/cmd/internal/cache"
)

type Client struct {
	baseURL string
	http    *http.Client
	store   cache.Store

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithStore replaces the default in-process cache.
func WithStore(s cache.Store) Option {
	return func(c *Client) { c.store = s }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		store:   cache.NewMemory(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Store() cache.Store { return c.store }

// Token is the session token sent with every request.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// APIError is a non-2xx answer. Message is the server's {message} text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Query is a cached read.
type Query struct {
	Key  string
	Path string
	Tags []cache.Tag
}

// Mutation is a write and the tags it invalidates once it succeeds.
type Mutation struct {
	Method      string
	Path        string
	Invalidates []cache.Tag
}

// payload is a prepared request body.
type payload struct {
	contentType string
	body        io.Reader
}

func jsonBody(v any) (*payload, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &payload{contentType: "application/json", body: bytes.NewReader(b)}, nil
}

func (c *Client) do(ctx context.Context, method, path string, p *payload) ([]byte, int, error) {
	var body io.Reader
	if p != nil {
		body = p.body
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if p != nil {
		req.Header.Set("Content-Type", p.contentType)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(b, &msg) == nil && msg.Message != "" {
			apiErr.Message = msg.Message
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, resp.StatusCode, apiErr
	}
	return b, resp.StatusCode, nil
}

// Fetch returns the cached result of q or loads it from the server and caches it. A
// load overtaken by an invalidation of q's tags is returned but not cached.
func Fetch[T any](ctx context.Context, c *Client, q Query) (T, error) {
	var out T
	b, ok, err := c.store.Get(ctx, q.Key)
	if err != nil || !ok {
		v, err := c.store.Version(ctx, q.Tags...)
		if err != nil {
			return out, err
		}
		b, _, err = c.do(ctx, http.MethodGet, q.Path, nil)
		if err != nil {
			return out, err
		}
		if err := c.store.Set(ctx, q.Key, b, v, q.Tags...); err != nil {
			return out, err
		}
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", q.Path, err)
	}
	return out, nil
}

func mutate[T any](ctx context.Context, c *Client, m Mutation, p *payload) (T, error) {
	var out T
	b, status, err := c.do(ctx, m.Method, m.Path, p)
	if err != nil {
		return out, err
	}
	if err := c.store.Invalidate(ctx, m.Invalidates...); err != nil {
		return out, err
	}
	if status == http.StatusNoContent || len(b) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", m.Path, err)
	}
	return out, nil
}

// Result is one delivery of a Watch subscription.
type Result[T any] struct {
	Value T
	Err   error
}

// Watch delivers the current result of q and a fresh one after every invalidation of
// its tags, until ctx is done.
func Watch[T any](ctx context.Context, c *Client, q Query) (<-chan Result[T], error) {
	events, err := c.store.Subscribe(ctx, q.Tags...)
	if err != nil {
		return nil, err
	}
	out := make(chan Result[T], 1)
	go func() {
		defer close(out)
		send := func() bool {
			v, err := Fetch[T](ctx, c, q)
			select {
			case out <- Result[T]{Value: v, Err: err}:
				return true
			case <-ctx.Done():
				return false
			}
		}
		if !send() {
			return
		}
		for range events {
			if !send() {
				return
			}
		}
	}()
	return out, nil
}
