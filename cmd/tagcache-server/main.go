// Command tagcache-server serves a tagged cache over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	taggedcache "github.com/huykn/tagged-cache"
	"github.com/huykn/tagged-cache/cache"
	"github.com/huykn/tagged-cache/config"
	"github.com/huykn/tagged-cache/server"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	debug := flag.Bool("debug", false, "enable cache debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		info := taggedcache.GetVersionInfo()
		fmt.Printf("tagcache-server %s (%s)\n", info.Version, info.GoVersion)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read environment: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *debug {
		cfg.Cache.Debug = true
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := cfg.Log.NewLogger(os.Stdout)
	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// run serves until SIGINT or SIGTERM. Deferred cleanup runs before main exits.
func run(cfg config.Config, logger *slog.Logger) error {
	opts := cfg.CacheOptions(cache.NewSlogLogger(logger.With("component", "cache")))
	opts.OnError = func(err error) {
		logger.Error("cache error", "error", err)
	}

	c, err := cache.New(opts)
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}
	defer c.Close()

	logger.Info("cache ready",
		"instance", c.InstanceID(),
		"version", taggedcache.Version,
		"table", opts.TableType,
		"interner", opts.InternerType)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(c, logger, cfg.ServerOptions()).ListenAndServe(ctx)
}
