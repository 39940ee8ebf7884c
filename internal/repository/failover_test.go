package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestFailoverRateLimiter(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	t.Run("PrimaryHealthy", func(t *testing.T) {
		primary := new(mockLimiter)
		secondary := new(mockLimiter)
		limiter := NewFailoverRateLimiter(primary, secondary, &logger)

		primary.On("Allow", ctx, "k", 5, time.Minute).Return(false, nil).Once()

		allowed, err := limiter.Allow(ctx, "k", 5, time.Minute)
		assert.NoError(t, err)
		assert.False(t, allowed)
		secondary.AssertNotCalled(t, "Allow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("PrimaryErrorFallsBack", func(t *testing.T) {
		primary := new(mockLimiter)
		secondary := new(mockLimiter)
		limiter := NewFailoverRateLimiter(primary, secondary, &logger)

		primary.On("Allow", ctx, "k", 5, time.Minute).Return(false, errors.New("redis down")).Once()
		secondary.On("Allow", ctx, "k", 5, time.Minute).Return(true, nil).Once()

		allowed, err := limiter.Allow(ctx, "k", 5, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		secondary.AssertExpectations(t)
	})
}
