package repository

import (
	"context"
	"time"

	"renthub/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverRateLimiter consults the primary limiter and falls back to the
// secondary when the primary errors, so a redis outage degrades to
// per-instance limiting instead of failing requests.
type FailoverRateLimiter struct {
	primary   domain.RateLimiter
	secondary domain.RateLimiter
	logger    *zerolog.Logger
}

func NewFailoverRateLimiter(primary, secondary domain.RateLimiter, logger *zerolog.Logger) *FailoverRateLimiter {
	return &FailoverRateLimiter{primary: primary, secondary: secondary, logger: logger}
}

func (f *FailoverRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	allowed, err := f.primary.Allow(ctx, key, limit, window)
	if err == nil {
		return allowed, nil
	}

	f.logger.Warn().Err(err).Str("key", key).Msg("primary rate limiter failed, using fallback")
	return f.secondary.Allow(ctx, key, limit, window)
}
