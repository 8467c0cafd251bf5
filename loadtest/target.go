// Package loadtest drives simulated users against a cache target and reports
// throughput and latency.
package loadtest

import (
	"context"
	"errors"

	taggedcache "github.com/huykn/tagged-cache"
	"github.com/huykn/tagged-cache/cache"
	"github.com/huykn/tagged-cache/client"
)

// Target is a cache under load.
type Target interface {
	// Name identifies the target in reports.
	Name() string

	// Set stores value and tags at key.
	Set(ctx context.Context, key, value string, tags []string) error

	// Get reports whether key is present.
	Get(ctx context.Context, key string) (bool, error)

	// Invalidate removes every key stored under any of tags and returns how
	// many were removed.
	Invalidate(ctx context.Context, tags []string) (int, error)

	// Close releases the target's resources.
	Close() error
}

// HTTPTarget drives a tagged cache server through the HTTP client.
type HTTPTarget struct {
	client *client.Client
}

// NewHTTPTarget creates a target for the server at baseURL.
func NewHTTPTarget(baseURL string, opts ...client.Option) *HTTPTarget {
	return &HTTPTarget{client: client.New(baseURL, opts...)}
}

// Name returns "http".
func (t *HTTPTarget) Name() string { return "http" }

// Set stores an entry.
func (t *HTTPTarget) Set(ctx context.Context, key, value string, tags []string) error {
	return t.client.Put(ctx, key, value, tags)
}

// Get fetches an entry.
func (t *HTTPTarget) Get(ctx context.Context, key string) (bool, error) {
	_, err := t.client.Get(ctx, key)
	if errors.Is(err, taggedcache.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Invalidate revalidates tags.
func (t *HTTPTarget) Invalidate(ctx context.Context, tags []string) (int, error) {
	return t.client.InvalidateByTags(ctx, tags)
}

// Close is a no-op.
func (t *HTTPTarget) Close() error { return nil }

// CacheTarget drives an in-process cache directly, without a transport.
type CacheTarget struct {
	cache cache.Cache
}

// NewCacheTarget creates a target over c. Closing the target closes c.
func NewCacheTarget(c cache.Cache) *CacheTarget {
	return &CacheTarget{cache: c}
}

// Name returns "inproc".
func (t *CacheTarget) Name() string { return "inproc" }

// Set stores an entry.
func (t *CacheTarget) Set(ctx context.Context, key, value string, tags []string) error {
	return t.cache.Put(ctx, key, value, tags)
}

// Get looks up an entry.
func (t *CacheTarget) Get(ctx context.Context, key string) (bool, error) {
	_, found := t.cache.Get(ctx, key)
	return found, nil
}

// Invalidate removes entries by tag.
func (t *CacheTarget) Invalidate(ctx context.Context, tags []string) (int, error) {
	return t.cache.InvalidateByTags(ctx, tags)
}

// Close closes the cache.
func (t *CacheTarget) Close() error { return t.cache.Close() }
