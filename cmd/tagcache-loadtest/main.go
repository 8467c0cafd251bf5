// Command tagcache-loadtest drives simulated users against a tagged cache
// server or a Redis baseline.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/huykn/tagged-cache/client"
	"github.com/huykn/tagged-cache/config"
	"github.com/huykn/tagged-cache/loadtest"
)

func main() {
	defaults := loadtest.DefaultConfig()

	target := flag.String("target", "http", "target to drive: http or redis")
	url := flag.String("url", "http://127.0.0.1:5000", "tagged cache base URL (http target)")
	format := flag.String("format", "json", "wire format for the http target: json or msgpack")
	redisAddr := flag.String("redis-addr", "localhost:6379", "Redis address (redis target)")
	redisPassword := flag.String("redis-password", "", "Redis password (redis target)")
	redisDB := flag.Int("redis-db", 0, "Redis database (redis target)")

	cfg := defaults
	flag.IntVar(&cfg.Users, "users", defaults.Users, "number of simulated users")
	flag.Float64Var(&cfg.SpawnRate, "spawn-rate", defaults.SpawnRate, "users started per second")
	flag.DurationVar(&cfg.Duration, "duration", defaults.Duration, "total run time")
	flag.DurationVar(&cfg.MinWait, "min-wait", defaults.MinWait, "minimum think time")
	flag.DurationVar(&cfg.MaxWait, "max-wait", defaults.MaxWait, "maximum think time")
	flag.Float64Var(&cfg.InvalidateRatio, "invalidate-ratio", defaults.InvalidateRatio, "fraction of requests that invalidate the user's tag")
	flag.Uint64Var(&cfg.Seed, "seed", defaults.Seed, "random seed")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger := config.LogConfig{Level: *logLevel, Format: "text"}.NewLogger(os.Stderr)
	if err := run(logger, *target, *url, *format, *redisAddr, *redisPassword, *redisDB, cfg); err != nil {
		logger.Error("load test failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, target, url, format, redisAddr, redisPassword string, redisDB int, cfg loadtest.Config) error {
	var t loadtest.Target
	switch target {
	case "http":
		withFormat, err := client.WithFormat(format)
		if err != nil {
			return err
		}
		t = loadtest.NewHTTPTarget(url, withFormat)
	case "redis":
		rt, err := loadtest.NewRedisTarget(redisAddr, redisPassword, redisDB)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		t = rt
	default:
		return fmt.Errorf("unknown target %q", target)
	}
	defer t.Close()

	runner, err := loadtest.NewRunner(t, cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	_, err = report.WriteTo(os.Stdout)
	return err
}
