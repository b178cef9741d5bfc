package utils

import (
	"context" // Context for Redis operations
	"strings" // Key normalization
	"time"    // Window durations

	"github.com/redis/go-redis/v9" // Redis client
)

// LoginThrottle counts failed logins per key in a fixed Redis window
type LoginThrottle struct {
	rdb         *redis.Client
	maxAttempts int64
	window      time.Duration
}

// NewLoginThrottle allows maxAttempts failures per key within window
func NewLoginThrottle(rdb *redis.Client, maxAttempts int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{rdb: rdb, maxAttempts: int64(maxAttempts), window: window}
}

// ThrottleKey builds the Redis key of an email
func ThrottleKey(email string) string {
	return "login:failures:" + strings.ToLower(strings.TrimSpace(email))
}

// Allowed reports whether another attempt may be made for email
func (t *LoginThrottle) Allowed(ctx context.Context, email string) (bool, error) {
	n, err := t.rdb.Get(ctx, ThrottleKey(email)).Int64()
	if err == redis.Nil {
		return true, nil // No failures recorded
	} else if err != nil {
		return false, err // Other Redis error
	}
	return n < t.maxAttempts, nil
}

// Fail records a failed attempt, starting the window on the first one
func (t *LoginThrottle) Fail(ctx context.Context, email string) error {
	key := ThrottleKey(email)
	pipe := t.rdb.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, t.window) // Window starts at the first failure
	_, err := pipe.Exec(ctx)
	return err
}

// Reset clears the failures of email after a successful login
func (t *LoginThrottle) Reset(ctx context.Context, email string) error {
	return t.rdb.Del(ctx, ThrottleKey(email)).Err() // Delete key from Redis
}
