// Package client is a Go client for the tagged cache HTTP API.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	taggedcache "github.com/huykn/tagged-cache"
	"github.com/huykn/tagged-cache/cache"
	"github.com/huykn/tagged-cache/types"
)

// Client talks to a tagged cache server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	codec      cache.Marshaller
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMarshaller sets the codec for request and response bodies. The server
// understands the JSON and MessagePack content types.
func WithMarshaller(m cache.Marshaller) Option {
	return func(c *Client) {
		c.codec = m
	}
}

// WithFormat selects the body codec by format name ("json" or "msgpack").
func WithFormat(format string) (Option, error) {
	m, err := cache.MarshallerFor(format)
	if err != nil {
		return nil, err
	}
	return WithMarshaller(m), nil
}

// WithMsgpack switches request and response bodies to MessagePack.
func WithMsgpack() Option {
	opt, _ := WithFormat("msgpack")
	return opt
}

// New creates a client for the server at baseURL, e.g. "http://127.0.0.1:5000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		codec:      cache.NewJSONMarshaller(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned for unexpected HTTP responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tagged cache: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("tagged cache: status %d: %s", e.StatusCode, e.Message)
}

// Put stores value and tags at key.
func (c *Client) Put(ctx context.Context, key, value string, tags []string) error {
	req := types.PutRequest{Key: key, Value: value, Tags: tags}
	return c.do(ctx, http.MethodPost, "/cache", req, http.StatusOK, nil)
}

// Get returns the entry at key, or taggedcache.ErrNotFound.
func (c *Client) Get(ctx context.Context, key string) (types.Entry, error) {
	var entry types.Entry
	err := c.do(ctx, http.MethodGet, "/cache/"+url.PathEscape(key), nil, http.StatusOK, &entry)
	return entry, err
}

// Delete removes the entry at key.
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.do(ctx, http.MethodDelete, "/cache/"+url.PathEscape(key), nil, http.StatusNoContent, nil)
}

// InvalidateByTags removes every entry carrying at least one of tags and
// returns how many were removed.
func (c *Client) InvalidateByTags(ctx context.Context, tags []string) (int, error) {
	var resp types.RevalidateResponse
	if err := c.do(ctx, http.MethodPost, "/cache/revalidate", types.RevalidateRequest{Tags: tags}, http.StatusOK, &resp); err != nil {
		return 0, err
	}
	return resp.Removed, nil
}

// Stats returns the server's cache statistics.
func (c *Client) Stats(ctx context.Context) (cache.Stats, error) {
	var stats cache.Stats
	err := c.do(ctx, http.MethodGet, "/stats", nil, http.StatusOK, &stats)
	return stats, err
}

// Health returns the server's health report.
func (c *Client) Health(ctx context.Context) (types.HealthResponse, error) {
	var health types.HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, http.StatusOK, &health)
	return health, err
}

func (c *Client) do(ctx context.Context, method, path string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		data, err := c.codec.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", c.codec.ContentType())
	}
	req.Header.Set("Accept", c.codec.ContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound && method == http.MethodGet && strings.HasPrefix(path, "/cache/") {
		return taggedcache.ErrNotFound
	}
	if resp.StatusCode != want {
		var e types.ErrorResponse
		_ = c.codec.Unmarshal(data, &e)
		return &StatusError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := c.codec.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
