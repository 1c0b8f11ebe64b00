package utils

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrTooManyAttempts = errors.New("too many login attempts, try again later")

// LoginAttempts counts failed logins per email in Redis. A nil client never blocks.
type LoginAttempts struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewLoginAttempts(client *redis.Client, limit int64, window time.Duration) *LoginAttempts {
	return &LoginAttempts{client: client, limit: limit, window: window}
}

func attemptsKey(email string) string {
	return "login_attempts:" + strings.ToLower(strings.TrimSpace(email))
}

// Check returns ErrTooManyAttempts once the failure count for email reached the limit.
// Redis errors fail open.
func (l *LoginAttempts) Check(ctx context.Context, email string) error {
	if l == nil || l.client == nil {
		return nil
	}
	count, err := l.client.Get(ctx, attemptsKey(email)).Int64()
	if err != nil {
		return nil
	}
	if count >= l.limit {
		return ErrTooManyAttempts
	}
	return nil
}

// Fail records one failed attempt; the window starts at the first failure
func (l *LoginAttempts) Fail(ctx context.Context, email string) {
	if l == nil || l.client == nil {
		return
	}
	key := attemptsKey(email)
	attempts, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return
	}
	if attempts == 1 {
		l.client.Expire(ctx, key, l.window)
	}
}

func (l *LoginAttempts) Reset(ctx context.Context, email string) {
	if l == nil || l.client == nil {
		return
	}
	l.client.Del(ctx, attemptsKey(email))
}
