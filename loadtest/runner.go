package loadtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// Config describes a load run.
type Config struct {
	// Users is the number of simulated users.
	Users int

	// SpawnRate is the number of users started per second.
	SpawnRate float64

	// Duration bounds the whole run, spawning included.
	Duration time.Duration

	// MinWait and MaxWait bound the think time between two requests of a user.
	MinWait time.Duration
	MaxWait time.Duration

	// InvalidateRatio is the fraction of requests that invalidate the user's
	// tag instead of reading or writing.
	InvalidateRatio float64

	// Value is stored by every set.
	Value string

	// Seed makes the request mix reproducible.
	Seed uint64

	// MaxSamples caps the number of latency samples kept for percentiles.
	MaxSamples int
}

// DefaultConfig returns a run of 1000 users spawned at 100/s, each waiting
// between one and three seconds between requests.
func DefaultConfig() Config {
	return Config{
		Users:      1000,
		SpawnRate:  100,
		Duration:   time.Minute,
		MinWait:    time.Second,
		MaxWait:    3 * time.Second,
		Value:      "myValue",
		Seed:       1,
		MaxSamples: 100_000,
	}
}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid load test configuration")

// Validate checks the run configuration.
func (c Config) Validate() error {
	switch {
	case c.Users <= 0:
		return fmt.Errorf("users must be positive: %w", ErrInvalidConfig)
	case c.SpawnRate <= 0:
		return fmt.Errorf("spawn rate must be positive: %w", ErrInvalidConfig)
	case c.Duration <= 0:
		return fmt.Errorf("duration must be positive: %w", ErrInvalidConfig)
	case c.MinWait < 0 || c.MaxWait < c.MinWait:
		return fmt.Errorf("wait range [%s, %s] is invalid: %w", c.MinWait, c.MaxWait, ErrInvalidConfig)
	case c.InvalidateRatio < 0 || c.InvalidateRatio > 1:
		return fmt.Errorf("invalidate ratio must be within [0, 1]: %w", ErrInvalidConfig)
	case c.MaxSamples <= 0:
		return fmt.Errorf("max samples must be positive: %w", ErrInvalidConfig)
	}
	return nil
}

// UserKey returns the key owned by user id.
func UserKey(id int) string {
	return "myKey-" + strconv.Itoa(id)
}

// UserTag returns the tag owned by user id.
func UserTag(id int) string {
	return "user-" + strconv.Itoa(id)
}

// SharedTag is carried by every entry written by a load run.
const SharedTag = "loadtest"

// Runner runs a load test against one target.
type Runner struct {
	target Target
	config Config
	logger *slog.Logger
}

// NewRunner creates a runner. A nil logger uses slog.Default().
func NewRunner(target Target, config Config, logger *slog.Logger) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{target: target, config: config, logger: logger}, nil
}

// Run spawns the users and drives them until the configured duration has
// elapsed or ctx is done. Request errors are counted, not returned.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.Duration)
	defer cancel()

	rec := newRecorder(r.config.MaxSamples, r.config.Seed)
	start := time.Now()

	r.logger.Info("load test started",
		"target", r.target.Name(),
		"users", r.config.Users,
		"spawn_rate", r.config.SpawnRate,
		"duration", r.config.Duration)

	interval := time.Duration(float64(time.Second) / r.config.SpawnRate)
	spawn := time.NewTicker(max(interval, time.Microsecond))
	defer spawn.Stop()

	var g errgroup.Group
	spawned := 0

spawning:
	for id := 1; id <= r.config.Users; id++ {
		g.Go(func() error {
			r.user(ctx, id, rec)
			return nil
		})
		spawned++

		if id == r.config.Users {
			break
		}
		select {
		case <-ctx.Done():
			break spawning
		case <-spawn.C:
		}
	}

	_ = g.Wait()

	report := rec.report(r.target.Name(), spawned, time.Since(start))
	r.logger.Info("load test finished",
		"target", report.Target,
		"ops", report.Ops,
		"errors", report.Errors,
		"rps", report.Throughput())
	return report, nil
}

// user is one simulated user: it owns one key and loops over requests until
// ctx is done.
func (r *Runner) user(ctx context.Context, id int, rec *recorder) {
	rng := rand.New(rand.NewPCG(r.config.Seed, uint64(id)))
	key := UserKey(id)
	tags := []string{UserTag(id), SharedTag}

	for ctx.Err() == nil {
		r.step(ctx, rng, key, tags, rec)

		wait := r.config.MinWait
		if spread := r.config.MaxWait - r.config.MinWait; spread > 0 {
			wait += time.Duration(rng.Int64N(int64(spread)))
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (r *Runner) step(ctx context.Context, rng *rand.Rand, key string, tags []string, rec *recorder) {
	start := time.Now()

	switch {
	case rng.Float64() < r.config.InvalidateRatio:
		removed, err := r.target.Invalidate(ctx, tags[:1])
		rec.invalidate(time.Since(start), removed, r.failed(ctx, "invalidate", key, err))
	case rng.IntN(2) == 0:
		err := r.target.Set(ctx, key, r.config.Value, tags)
		rec.set(time.Since(start), r.failed(ctx, "set", key, err))
	default:
		found, err := r.target.Get(ctx, key)
		rec.get(time.Since(start), found, r.failed(ctx, "get", key, err))
	}
}

// failed reports whether err counts as a request failure. Errors caused by
// the end of the run do not.
func (r *Runner) failed(ctx context.Context, op, key string, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	r.logger.Debug("request failed", "op", op, "key", key, "error", err)
	return true
}
