package taggedcache

import (
	"github.com/huykn/tagged-cache/cache"
	"github.com/huykn/tagged-cache/types"
)

// Logger is an alias for cache.Logger.
type Logger = cache.Logger

// Marshaller is an alias for cache.Marshaller.
type Marshaller = cache.Marshaller

// Table is an alias for cache.Table.
type Table = cache.Table

// TableFactory is an alias for cache.TableFactory.
type TableFactory = cache.TableFactory

// Interner is an alias for cache.Interner.
type Interner = cache.Interner

// InternerFactory is an alias for cache.InternerFactory.
type InternerFactory = cache.InternerFactory

// InternerConfig is an alias for cache.InternerConfig.
type InternerConfig = cache.InternerConfig

// Entry is an alias for types.Entry.
type Entry = types.Entry

// InvalidationEvent is an alias for types.InvalidationEvent.
type InvalidationEvent = types.InvalidationEvent

// DefaultInternerConfig returns default tag interner configuration.
func DefaultInternerConfig() InternerConfig {
	return cache.DefaultInternerConfig()
}
