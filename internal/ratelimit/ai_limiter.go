package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/recvlabs/recv/internal/config"
)

const keyAIUser = "ai:user:%s"

// AILimiter throttles AI endpoints per user. It is abuse protection on top
// of the credit quota, not part of it; disabled unless redis is configured.
type AILimiter struct {
	enabled bool
	bucket  *TokenBucket
	rate    float64
	burst   int
}

func NewAILimiter(cfg config.Config) (*AILimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.AIRate <= 0 || limitCfg.AIBurst <= 0 {
		return nil, errors.New("ai rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: limitCfg.RedisPassword,
		DB:       limitCfg.RedisDB,
	})

	return &AILimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    limitCfg.AIRate,
		burst:   limitCfg.AIBurst,
	}, nil
}

func (l *AILimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *AILimiter) Allow(ctx context.Context, userID string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyAIUser, userID), l.rate, l.burst)
}
