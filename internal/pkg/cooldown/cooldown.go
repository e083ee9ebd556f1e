// Package cooldown throttles repeated actions per key with redis SetNX.
package cooldown

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "joblink:cooldown:"

// Cooldown blocks an action for a key until window has passed since the
// last permitted one. A nil Cooldown, a nil client or a zero window never
// blocks.
type Cooldown struct {
	rdb    *redis.Client
	scope  string
	window time.Duration
}

// New returns a Cooldown for actions in scope, e.g. "otp".
func New(rdb *redis.Client, scope string, window time.Duration) *Cooldown {
	return &Cooldown{
		rdb:    rdb,
		scope:  scope,
		window: window,
	}
}

// Hit records an action for key. It reports false when the key is still
// cooling down from an earlier hit.
func (c *Cooldown) Hit(ctx context.Context, key string) (bool, error) {
	if c == nil || c.rdb == nil || c.window <= 0 || key == "" {
		return true, nil
	}
	ok, err := c.rdb.SetNX(ctx, c.redisKey(key), "1", c.window).Result()
	if err != nil {
		return false, fmt.Errorf("cooldown setnx: %w", err)
	}
	return ok, nil
}

// Reset clears the cooldown for key, e.g. after a failed delivery.
func (c *Cooldown) Reset(ctx context.Context, key string) error {
	if c == nil || c.rdb == nil || key == "" {
		return nil
	}
	if err := c.rdb.Del(ctx, c.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("cooldown del: %w", err)
	}
	return nil
}

func (c *Cooldown) redisKey(key string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(key)))
	return keyPrefix + c.scope + ":" + hex.EncodeToString(sum[:])
}
