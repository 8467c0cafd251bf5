package taggedcache

import (
	"runtime"

	"github.com/huykn/tagged-cache/cache"
)

// Config configures a tagged cache instance.
type Config struct {
	// InstanceID identifies this instance in logs, stats and events.
	// If empty, a random UUID is generated.
	InstanceID string

	// TableType selects the entry table ("sharded" or "locked").
	TableType string

	// Shards is the shard count of the sharded table.
	Shards int

	// TableFactory creates the entry table.
	// If nil, a factory is chosen from TableType.
	TableFactory TableFactory

	// BatchSize is the number of keys removed between yields during an
	// invalidation.
	BatchSize int

	// ScanConcurrency bounds parallel segment scans during an invalidation.
	ScanConcurrency int

	// InternerType selects the tag interner ("lfu", "lru" or "none").
	InternerType string

	// InternerConfig configures the tag interner.
	InternerConfig InternerConfig

	// InternerFactory creates the tag interner.
	// If nil, a factory is chosen from InternerType.
	InternerFactory InternerFactory

	// Logger is the logger for debug logging.
	// If nil, defaults to no-op logger.
	Logger Logger

	// DebugMode enables debug logging.
	DebugMode bool

	// OnError is called when an error occurs in background operations.
	OnError func(error)

	// OnInvalidate is called after every completed tag invalidation.
	OnInvalidate func(event InvalidationEvent)
}

// New creates a new tagged cache instance.
// This is the root-level initialization function that allows users to import from the root package.
func New(cfg Config) (Cache, error) {
	opts := cache.Options{
		InstanceID:      cfg.InstanceID,
		TableType:       cfg.TableType,
		Shards:          cfg.Shards,
		TableFactory:    cfg.TableFactory,
		BatchSize:       cfg.BatchSize,
		ScanConcurrency: cfg.ScanConcurrency,
		InternerType:    cfg.InternerType,
		InternerConfig:  cfg.InternerConfig,
		InternerFactory: cfg.InternerFactory,
		Logger:          cfg.Logger,
		DebugMode:       cfg.DebugMode,
		OnError:         cfg.OnError,
		OnInvalidate:    cfg.OnInvalidate,
	}

	c, err := cache.New(opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		TableType:       cache.TableSharded,
		Shards:          256,
		BatchSize:       cache.DefaultBatchSize,
		ScanConcurrency: runtime.GOMAXPROCS(0),
		InternerType:    cache.InternerLFU,
		InternerConfig:  DefaultInternerConfig(),
		TableFactory:    nil, // Will default from TableType in New()
		InternerFactory: nil, // Will default from InternerType in New()
		Logger:          nil, // Will default to no-op in New()
		DebugMode:       false,
	}
}

// Cache is an alias for cache.Cache interface.
type Cache = cache.Cache

// Stats is an alias for cache.Stats.
type Stats = cache.Stats
