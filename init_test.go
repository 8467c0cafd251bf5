package taggedcache

import (
	"context"
	"errors"
	"testing"

	"github.com/huykn/tagged-cache/cache"
)

func TestNew(t *testing.T) {
	cfg := Config{
		InstanceID:      "test-instance",
		TableType:       "sharded",
		Shards:          32,
		BatchSize:       100,
		ScanConcurrency: 4,
		InternerType:    "lru",
		InternerConfig:  DefaultInternerConfig(),
	}

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	defer c.Close()

	if c == nil {
		t.Fatal("Cache should not be nil")
	}
}

func TestNewWithDefaults(t *testing.T) {
	c, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create cache with defaults: %v", err)
	}
	defer c.Close()

	if c.Stats().InstanceID == "" {
		t.Fatal("InstanceID should be generated")
	}
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TableType = "unknown"

	if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.TableType != "sharded" {
		t.Errorf("Expected TableType 'sharded', got %s", cfg.TableType)
	}

	if cfg.Shards != 256 {
		t.Errorf("Expected 256 shards, got %d", cfg.Shards)
	}

	if cfg.BatchSize != 100 {
		t.Errorf("Expected BatchSize 100, got %d", cfg.BatchSize)
	}

	if cfg.InternerType != "lfu" {
		t.Errorf("Expected InternerType 'lfu', got %s", cfg.InternerType)
	}

	if cfg.DebugMode {
		t.Error("Expected DebugMode to be false")
	}

	if cfg.TableFactory != nil {
		t.Error("Expected TableFactory to be nil (will default from TableType)")
	}

	if cfg.Logger != nil {
		t.Error("Expected Logger to be nil (will default to no-op)")
	}
}

func TestNewWithCustomLogger(t *testing.T) {
	cfg := DefaultConfig()
	logger := &testLogger{}
	cfg.Logger = logger
	cfg.DebugMode = true

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create cache with custom logger: %v", err)
	}
	defer c.Close()

	c.Put(context.Background(), "k", "v", []string{"t"})

	if logger.debugs == 0 {
		t.Fatal("Debug mode should log through the custom logger")
	}
}

func TestNewWithCustomTableFactory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TableFactory = cache.NewLockedTableFactory()

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create cache with custom table: %v", err)
	}
	defer c.Close()

	c.Put(context.Background(), "k", "v", nil)
	if c.Len() != 1 {
		t.Fatalf("Expected 1 entry, got %d", c.Len())
	}
}

func TestNewCacheOperations(t *testing.T) {
	c, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()

	if err := c.Put(ctx, "test:key", "test:value", []string{"group"}); err != nil {
		t.Fatalf("Failed to put value: %v", err)
	}

	entry, found := c.Get(ctx, "test:key")
	if !found {
		t.Fatal("Value should be found")
	}
	if entry.Value != "test:value" {
		t.Fatalf("Expected 'test:value', got %v", entry.Value)
	}

	removed, err := c.InvalidateByTags(ctx, []string{"group"})
	if err != nil {
		t.Fatalf("Failed to invalidate: %v", err)
	}
	if removed != 1 {
		t.Fatalf("Expected 1 removed, got %d", removed)
	}

	if _, found := c.Get(ctx, "test:key"); found {
		t.Fatal("Value should not be found after invalidation")
	}
}

// testLogger is a simple logger implementation for testing
type testLogger struct {
	debugs int
}

func (l *testLogger) Debug(msg string, args ...any) { l.debugs++ }
func (l *testLogger) Info(msg string, args ...any)  {}
func (l *testLogger) Warn(msg string, args ...any)  {}
func (l *testLogger) Error(msg string, args ...any) {}
