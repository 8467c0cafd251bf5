package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huykn/tagged-cache/cache"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr != "127.0.0.1:5000" {
		t.Errorf("Expected addr 127.0.0.1:5000, got %s", cfg.Server.Addr)
	}
	if cfg.Cache.BatchSize != cache.DefaultBatchSize {
		t.Errorf("Expected batch size %d, got %d", cache.DefaultBatchSize, cfg.Cache.BatchSize)
	}
	if cfg.Cache.Table != cache.TableSharded {
		t.Errorf("Expected sharded table, got %s", cfg.Cache.Table)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
server:
  addr: 0.0.0.0:8080
  read_timeout: 5s
  max_in_flight: 64
cache:
  table: locked
  batch_size: 25
  interner:
    type: lru
    max_size: 128
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != "0.0.0.0:8080" {
		t.Errorf("addr = %s", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("read timeout = %s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.MaxInFlight != 64 {
		t.Errorf("max in flight = %d", cfg.Server.MaxInFlight)
	}
	if cfg.Server.WriteTimeout != Default().Server.WriteTimeout {
		t.Errorf("unset write timeout should keep its default, got %s", cfg.Server.WriteTimeout)
	}
	if cfg.Cache.Table != cache.TableLocked || cfg.Cache.BatchSize != 25 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Cache.Interner.Type != cache.InternerLRU || cfg.Cache.Interner.MaxSize != 128 {
		t.Errorf("interner = %+v", cfg.Cache.Interner)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Loaded config should be valid: %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	if _, err := Load(writeFile(t, "cache:\n  batch_sise: 10\n")); err == nil {
		t.Error("expected error for unknown field")
	}

	if _, err := Load(writeFile(t, "server: [")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoad_EmptyPathAndFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg != Default() {
		t.Error("empty path should return defaults")
	}

	cfg, err = Load(writeFile(t, ""))
	if err != nil {
		t.Fatalf("Load(empty file) failed: %v", err)
	}
	if cfg != Default() {
		t.Error("empty file should return defaults")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TAGCACHE_ADDR", ":9000")
	t.Setenv("TAGCACHE_SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("TAGCACHE_SHARDS", "32")
	t.Setenv("TAGCACHE_DEBUG", "true")
	t.Setenv("TAGCACHE_INTERNER", "none")
	t.Setenv("TAGCACHE_LOG_FORMAT", "json")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %s", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 2*time.Second {
		t.Errorf("shutdown timeout = %s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Cache.Shards != 32 || !cfg.Cache.Debug {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Cache.Interner.Type != cache.InternerNone {
		t.Errorf("interner = %s", cfg.Cache.Interner.Type)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format = %s", cfg.Log.Format)
	}
}

func TestApplyEnv_ReportsAllErrors(t *testing.T) {
	t.Setenv("TAGCACHE_SHARDS", "many")
	t.Setenv("TAGCACHE_READ_TIMEOUT", "soon")

	cfg := Default()
	err := cfg.ApplyEnv()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, name := range []string{"TAGCACHE_SHARDS", "TAGCACHE_READ_TIMEOUT"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not mention %s", err, name)
		}
	}
	if cfg.Cache.Shards != Default().Cache.Shards {
		t.Error("invalid value must not overwrite the field")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{name: "empty addr", modify: func(c *Config) { c.Server.Addr = "" }},
		{name: "negative timeout", modify: func(c *Config) { c.Server.ReadTimeout = -time.Second }},
		{name: "negative limit", modify: func(c *Config) { c.Server.MaxInFlight = -1 }},
		{name: "bad level", modify: func(c *Config) { c.Log.Level = "verbose" }},
		{name: "bad format", modify: func(c *Config) { c.Log.Format = "xml" }},
		{name: "bad table", modify: func(c *Config) { c.Cache.Table = "btree" }},
		{name: "zero batch", modify: func(c *Config) { c.Cache.BatchSize = 0 }},
		{name: "bad interner", modify: func(c *Config) { c.Cache.Interner.Type = "arc" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)

			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestValidate_WrapsCacheError(t *testing.T) {
	cfg := Default()
	cfg.Cache.Shards = 0

	err := cfg.Validate()
	if !errors.Is(err, cache.ErrInvalidConfig) {
		t.Errorf("expected cache.ErrInvalidConfig in chain, got %v", err)
	}
}

func TestCacheOptions(t *testing.T) {
	cfg := Default()
	cfg.Cache.InstanceID = "node-1"
	cfg.Cache.Debug = true

	logger := cache.NewNoOpLogger()
	opts := cfg.CacheOptions(logger)

	if opts.InstanceID != "node-1" || !opts.DebugMode || opts.Logger != logger {
		t.Errorf("options = %+v", opts)
	}

	c, err := cache.New(opts)
	if err != nil {
		t.Fatalf("cache.New failed: %v", err)
	}
	defer c.Close()

	if c.InstanceID() != "node-1" {
		t.Errorf("instance = %s", c.InstanceID())
	}
}

func TestServerOptions(t *testing.T) {
	cfg := Default()
	cfg.Server.MaxBodyBytes = 42

	opts := cfg.ServerOptions()
	if opts.Addr != cfg.Server.Addr || opts.MaxBodyBytes != 42 {
		t.Errorf("options = %+v", opts)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf).Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}

	LogConfig{Level: "debug", Format: "json"}.NewLogger(&buf).Debug("shown", "k", "v")
	if !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Errorf("expected JSON output, got %q", buf.String())
	}

	buf.Reset()
	LogConfig{Level: "info", Format: "text"}.NewLogger(&buf).Info("plain")
	if !strings.Contains(buf.String(), "msg=plain") {
		t.Errorf("expected text output, got %q", buf.String())
	}
}
