package taggedcache

import (
	"errors"

	"github.com/huykn/tagged-cache/cache"
)

// ErrNotFound is returned when a key is not found in the cache.
var ErrNotFound = errors.New("key not found")

// ErrCacheClosed is returned when operations are performed on a closed cache.
var ErrCacheClosed = cache.ErrCacheClosed

// ErrInvalidConfig is returned when the cache configuration is invalid.
var ErrInvalidConfig = cache.ErrInvalidConfig
