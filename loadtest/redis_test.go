package loadtest

import (
	"context"
	"testing"
	"time"
)

func setupRedisTarget(t *testing.T) *RedisTarget {
	t.Helper()

	target, err := NewRedisTarget("localhost:6379", "", 15)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := target.Flush(ctx); err != nil {
		target.Close()
		t.Fatalf("Failed to flush Redis: %v", err)
	}

	t.Cleanup(func() { target.Close() })
	return target
}

func TestRedisTarget_SetGet(t *testing.T) {
	target := setupRedisTarget(t)
	ctx := context.Background()

	if err := target.Set(ctx, "myKey-1", "myValue", []string{"user-1"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	found, err := target.Get(ctx, "myKey-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Error("expected key to be found")
	}

	found, err = target.Get(ctx, "myKey-missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("expected missing key")
	}
}

func TestRedisTarget_Invalidate(t *testing.T) {
	target := setupRedisTarget(t)
	ctx := context.Background()

	target.Set(ctx, "u1", "Alice", []string{"team-a"})
	target.Set(ctx, "u2", "Bob", []string{"team-a", "vip"})
	target.Set(ctx, "u3", "Carol", []string{"team-b"})

	removed, err := target.Invalidate(ctx, []string{"vip"})
	if err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	for key, want := range map[string]bool{"u1": true, "u2": false, "u3": true} {
		found, err := target.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", key, err)
		}
		if found != want {
			t.Errorf("Get(%s) found = %v, want %v", key, found, want)
		}
	}

	removed, err = target.Invalidate(ctx, nil)
	if err != nil || removed != 0 {
		t.Errorf("empty invalidation = (%d, %v), want (0, nil)", removed, err)
	}
}
