package cache

import (
	"runtime"
)

// Table implementation names accepted by Options.TableType.
const (
	TableSharded = "sharded"
	TableLocked  = "locked"
)

// Interner implementation names accepted by Options.InternerType.
const (
	InternerLFU  = "lfu"
	InternerLRU  = "lru"
	InternerNone = "none"
)

// DefaultBatchSize is the number of keys removed between yields during an
// invalidation.
const DefaultBatchSize = 100

// InternerConfig configures the tag interner.
type InternerConfig struct {
	// NumCounters is the number of counters for the interner (Ristretto only).
	// Recommended: 10 * MaxItems
	NumCounters int64

	// MaxCost is the maximum total number of interned tags (Ristretto only).
	MaxCost int64

	// BufferItems is the number of keys per Get buffer (Ristretto only).
	// Recommended: 64
	BufferItems int64

	// MaxSize is the maximum number of interned tag lists (LRU only).
	MaxSize int
}

// Options configures a TaggedCache instance.
type Options struct {
	// InstanceID identifies this cache instance in logs, stats and events.
	// If empty, a random UUID is generated.
	InstanceID string

	// TableType selects the entry table implementation ("sharded" or "locked").
	TableType string

	// Shards is the number of shards of the sharded table. Rounded up to a
	// power of two.
	Shards int

	// TableFactory creates the entry table.
	// If nil, a factory is chosen from TableType.
	TableFactory TableFactory

	// BatchSize is the number of keys removed per batch during invalidation.
	BatchSize int

	// ScanConcurrency bounds how many table segments are scanned in parallel
	// while planning an invalidation.
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

// DefaultOptions returns default cache options.
func DefaultOptions() Options {
	return Options{
		TableType:       TableSharded,
		Shards:          256,
		BatchSize:       DefaultBatchSize,
		ScanConcurrency: runtime.GOMAXPROCS(0),
		InternerType:    InternerLFU,
		InternerConfig:  DefaultInternerConfig(),
		TableFactory:    nil, // Will default from TableType in New()
		InternerFactory: nil, // Will default from InternerType in New()
		Logger:          nil, // Will default to no-op in New()
		DebugMode:       false,
	}
}

// DefaultInternerConfig returns default interner configuration.
func DefaultInternerConfig() InternerConfig {
	return InternerConfig{
		NumCounters: 1e5,
		MaxCost:     1 << 16,
		BufferItems: 64,
		MaxSize:     4096,
	}
}

// Validate validates the options.
func (o *Options) Validate() error {
	if o.TableFactory == nil {
		if o.TableType != TableSharded && o.TableType != TableLocked {
			return ErrInvalidConfig
		}
		if o.TableType == TableSharded && o.Shards <= 0 {
			return ErrInvalidConfig
		}
	}
	if o.BatchSize <= 0 {
		return ErrInvalidConfig
	}
	if o.ScanConcurrency <= 0 {
		return ErrInvalidConfig
	}
	if o.InternerFactory == nil {
		switch o.InternerType {
		case InternerLFU:
			if o.InternerConfig.NumCounters <= 0 || o.InternerConfig.MaxCost <= 0 {
				return ErrInvalidConfig
			}
		case InternerLRU:
			if o.InternerConfig.MaxSize <= 0 {
				return ErrInvalidConfig
			}
		case InternerNone:
		default:
			return ErrInvalidConfig
		}
	}
	return nil
}

// ErrInvalidConfig is returned when options are invalid.
var ErrInvalidConfig = NewError("invalid cache configuration")

// NewError creates a new error with the given message.
func NewError(msg string) error {
	return &cacheError{msg: msg}
}

type cacheError struct {
	msg string
}

func (e *cacheError) Error() string {
	return e.msg
}
