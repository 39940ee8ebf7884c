package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryRateLimiter is a fixed-window in-process limiter. It backs the
// API when redis is disabled and serves as the failover target.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*windowEntry
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{windows: make(map[string]*windowEntry)}
}

type windowEntry struct {
	count     int
	expiresAt time.Time
}

// Allow reports whether the key may perform another request in the
// current window.
func (r *MemoryRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()

	entry, ok := r.windows[key]
	if !ok || now.After(entry.expiresAt) {
		r.windows[key] = &windowEntry{count: 1, expiresAt: now.Add(window)}
		return true, nil
	}

	if entry.count >= limit {
		return false, nil
	}
	entry.count++
	return true, nil
}
