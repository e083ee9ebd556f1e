package cooldown

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(s.Close)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() {
		if err := rdb.Close(); err != nil {
			t.Fatalf("close redis: %v", err)
		}
	})
	return s, rdb
}

func TestCooldown_BlocksWithinWindow(t *testing.T) {
	s, rdb := newMiniRedis(t)
	c := New(rdb, "otp", time.Minute)
	ctx := context.Background()

	ok, err := c.Hit(ctx, "a@b.io")
	if err != nil {
		t.Fatalf("first hit: %v", err)
	}
	if !ok {
		t.Fatalf("expected first hit to pass")
	}

	ok, err = c.Hit(ctx, "A@B.io")
	if err != nil {
		t.Fatalf("second hit: %v", err)
	}
	if ok {
		t.Fatalf("expected second hit to be blocked")
	}

	s.FastForward(2 * time.Minute)
	ok, err = c.Hit(ctx, "a@b.io")
	if err != nil {
		t.Fatalf("third hit: %v", err)
	}
	if !ok {
		t.Fatalf("expected hit after window to pass")
	}
}

func TestCooldown_Reset(t *testing.T) {
	_, rdb := newMiniRedis(t)
	c := New(rdb, "otp", time.Minute)
	ctx := context.Background()

	if ok, _ := c.Hit(ctx, "a@b.io"); !ok {
		t.Fatalf("expected first hit to pass")
	}
	if err := c.Reset(ctx, "a@b.io"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if ok, _ := c.Hit(ctx, "a@b.io"); !ok {
		t.Fatalf("expected hit after reset to pass")
	}
}

func TestCooldown_DisabledNeverBlocks(t *testing.T) {
	var nilCooldown *Cooldown
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if ok, err := nilCooldown.Hit(ctx, "a@b.io"); err != nil || !ok {
			t.Fatalf("nil cooldown should pass, got ok=%v err=%v", ok, err)
		}
		if ok, err := New(nil, "otp", time.Minute).Hit(ctx, "a@b.io"); err != nil || !ok {
			t.Fatalf("cooldown without redis should pass, got ok=%v err=%v", ok, err)
		}
	}
}
