package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is the contract shared by the in-memory and DynamoDB
// backed limiters.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// SlidingWindowLimiter implements sliding window rate limiting in
// process memory. Suitable for the long-lived API server; Lambda
// deployments need the distributed limiter instead.
type SlidingWindowLimiter struct {
	mu         sync.Mutex
	windows    map[string]*window
	limit      int
	windowSize time.Duration
}

type window struct {
	requests []time.Time
	mu       sync.Mutex
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter
func NewSlidingWindowLimiter(limit int, windowSize time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		windows:    make(map[string]*window),
		limit:      limit,
		windowSize: windowSize,
	}
}

// Allow checks if a request is allowed
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	w, exists := l.windows[key]
	if !exists {
		w = &window{}
		l.windows[key] = w
	}
	l.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-l.windowSize)

	kept := w.requests[:0]
	for _, reqTime := range w.requests {
		if reqTime.After(windowStart) {
			kept = append(kept, reqTime)
		}
	}
	w.requests = kept

	if len(w.requests) >= l.limit {
		return false, nil
	}

	w.requests = append(w.requests, now)
	return true, nil
}

// Reset resets the rate limit for a key
func (l *SlidingWindowLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.windows, key)
	return nil
}

// IPRateLimiter scopes a rate limiter to client IP keys
type IPRateLimiter struct {
	limiter RateLimiter
}

// NewIPRateLimiter creates an in-memory IP rate limiter
func NewIPRateLimiter(requestsPerMinute int) *IPRateLimiter {
	return NewIPRateLimiterBacked(NewSlidingWindowLimiter(requestsPerMinute, time.Minute))
}

// NewIPRateLimiterBacked creates an IP rate limiter over any backend
func NewIPRateLimiterBacked(limiter RateLimiter) *IPRateLimiter {
	return &IPRateLimiter{limiter: limiter}
}

// Allow checks if a request from an IP is allowed
func (l *IPRateLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	return l.limiter.Allow(ctx, "ip:"+ip)
}

// UserRateLimiter scopes a rate limiter to user id keys
type UserRateLimiter struct {
	limiter RateLimiter
}

// NewUserRateLimiter creates an in-memory user rate limiter
func NewUserRateLimiter(requestsPerMinute int) *UserRateLimiter {
	return NewUserRateLimiterBacked(NewSlidingWindowLimiter(requestsPerMinute, time.Minute))
}

// NewUserRateLimiterBacked creates a user rate limiter over any backend
func NewUserRateLimiterBacked(limiter RateLimiter) *UserRateLimiter {
	return &UserRateLimiter{limiter: limiter}
}

// Allow checks if a request from a user is allowed
func (l *UserRateLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	return l.limiter.Allow(ctx, "user:"+userID)
}
