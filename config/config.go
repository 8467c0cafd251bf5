// Package config loads the tag cache server configuration from a YAML file
// and TAGCACHE_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/huykn/tagged-cache/cache"
	"github.com/huykn/tagged-cache/server"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "TAGCACHE_"

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config is the whole server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Cache  CacheConfig  `yaml:"cache"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxInFlight     int64         `yaml:"max_in_flight"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// CacheConfig configures the tagged cache.
type CacheConfig struct {
	InstanceID      string         `yaml:"instance_id"`
	Table           string         `yaml:"table"`
	Shards          int            `yaml:"shards"`
	BatchSize       int            `yaml:"batch_size"`
	ScanConcurrency int            `yaml:"scan_concurrency"`
	Interner        InternerConfig `yaml:"interner"`
	Debug           bool           `yaml:"debug"`
}

// InternerConfig configures the tag interner.
type InternerConfig struct {
	Type        string `yaml:"type"`
	NumCounters int64  `yaml:"num_counters"`
	MaxCost     int64  `yaml:"max_cost"`
	BufferItems int64  `yaml:"buffer_items"`
	MaxSize     int    `yaml:"max_size"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	so := server.DefaultOptions()
	co := cache.DefaultOptions()

	return Config{
		Server: ServerConfig{
			Addr:            so.Addr,
			ReadTimeout:     so.ReadTimeout,
			WriteTimeout:    so.WriteTimeout,
			IdleTimeout:     so.IdleTimeout,
			ShutdownTimeout: so.ShutdownTimeout,
			MaxInFlight:     so.MaxInFlight,
			MaxBodyBytes:    so.MaxBodyBytes,
		},
		Cache: CacheConfig{
			Table:           co.TableType,
			Shards:          co.Shards,
			BatchSize:       co.BatchSize,
			ScanConcurrency: co.ScanConcurrency,
			Interner: InternerConfig{
				Type:        co.InternerType,
				NumCounters: co.InternerConfig.NumCounters,
				MaxCost:     co.InternerConfig.MaxCost,
				BufferItems: co.InternerConfig.BufferItems,
				MaxSize:     co.InternerConfig.MaxSize,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults. Unknown fields are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from TAGCACHE_* environment variables.
func (c *Config) ApplyEnv() error {
	e := envReader{}

	e.str("ADDR", &c.Server.Addr)
	e.duration("READ_TIMEOUT", &c.Server.ReadTimeout)
	e.duration("WRITE_TIMEOUT", &c.Server.WriteTimeout)
	e.duration("IDLE_TIMEOUT", &c.Server.IdleTimeout)
	e.duration("SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)
	e.num64("MAX_IN_FLIGHT", &c.Server.MaxInFlight)
	e.num64("MAX_BODY_BYTES", &c.Server.MaxBodyBytes)

	e.str("INSTANCE_ID", &c.Cache.InstanceID)
	e.str("TABLE", &c.Cache.Table)
	e.num("SHARDS", &c.Cache.Shards)
	e.num("BATCH_SIZE", &c.Cache.BatchSize)
	e.num("SCAN_CONCURRENCY", &c.Cache.ScanConcurrency)
	e.flag("DEBUG", &c.Cache.Debug)

	e.str("INTERNER", &c.Cache.Interner.Type)
	e.num64("INTERNER_NUM_COUNTERS", &c.Cache.Interner.NumCounters)
	e.num64("INTERNER_MAX_COST", &c.Cache.Interner.MaxCost)
	e.num64("INTERNER_BUFFER_ITEMS", &c.Cache.Interner.BufferItems)
	e.num("INTERNER_MAX_SIZE", &c.Cache.Interner.MaxSize)

	e.str("LOG_LEVEL", &c.Log.Level)
	e.str("LOG_FORMAT", &c.Log.Format)

	return errors.Join(e.errs...)
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required: %w", ErrInvalid)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.IdleTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server timeouts must not be negative: %w", ErrInvalid)
	}
	if c.Server.MaxInFlight < 0 || c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server limits must not be negative: %w", ErrInvalid)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format %q is not text or json: %w", c.Log.Format, ErrInvalid)
	}

	opts := c.CacheOptions(nil)
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("cache: %w: %w", err, ErrInvalid)
	}
	return nil
}

// CacheOptions converts the cache section to cache.Options.
func (c *Config) CacheOptions(logger cache.Logger) cache.Options {
	opts := cache.DefaultOptions()
	opts.InstanceID = c.Cache.InstanceID
	opts.TableType = c.Cache.Table
	opts.Shards = c.Cache.Shards
	opts.BatchSize = c.Cache.BatchSize
	opts.ScanConcurrency = c.Cache.ScanConcurrency
	opts.InternerType = c.Cache.Interner.Type
	opts.InternerConfig = cache.InternerConfig{
		NumCounters: c.Cache.Interner.NumCounters,
		MaxCost:     c.Cache.Interner.MaxCost,
		BufferItems: c.Cache.Interner.BufferItems,
		MaxSize:     c.Cache.Interner.MaxSize,
	}
	opts.Logger = logger
	opts.DebugMode = c.Cache.Debug
	return opts
}

// ServerOptions converts the server section to server.Options.
func (c *Config) ServerOptions() server.Options {
	return server.Options{
		Addr:            c.Server.Addr,
		ReadTimeout:     c.Server.ReadTimeout,
		WriteTimeout:    c.Server.WriteTimeout,
		IdleTimeout:     c.Server.IdleTimeout,
		ShutdownTimeout: c.Server.ShutdownTimeout,
		MaxInFlight:     c.Server.MaxInFlight,
		MaxBodyBytes:    c.Server.MaxBodyBytes,
	}
}

// NewLogger builds the process logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(l.Level)
	opts := &slog.HandlerOptions{Level: level}

	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel parses debug, info, warn or error. An empty level is info.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q: %w", level, ErrInvalid)
	}
}

// envReader collects parse errors so that ApplyEnv reports all of them.
type envReader struct {
	errs []error
}

func (e *envReader) lookup(name string) (string, bool) {
	return os.LookupEnv(EnvPrefix + name)
}

func (e *envReader) fail(name string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
}

func (e *envReader) str(name string, dst *string) {
	if v, ok := e.lookup(name); ok {
		*dst = v
	}
}

func (e *envReader) num(name string, dst *int) {
	if v, ok := e.lookup(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) num64(name string, dst *int64) {
	if v, ok := e.lookup(name); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) flag(name string, dst *bool) {
	if v, ok := e.lookup(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = b
	}
}

func (e *envReader) duration(name string, dst *time.Duration) {
	if v, ok := e.lookup(name); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = d
	}
}
