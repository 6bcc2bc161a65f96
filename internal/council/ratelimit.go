package council

import (
	"context"
	"sync"
	"time"
)

// RateLimiter implements a token bucket rate limiter guarding one provider.
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// RateLimiterConfig configures a rate limiter.
type RateLimiterConfig struct {
	MaxTokens  float64
	RefillRate float64
}

// DefaultRateLimiterConfig returns default configuration.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		MaxTokens:  10,
		RefillRate: 1,
	}
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		tokens:     cfg.MaxTokens,
		maxTokens:  cfg.MaxTokens,
		refillRate: cfg.RefillRate,
		lastRefill: time.Now(),
	}
}

// Acquire blocks until a token is available or the context is cancelled.
func (r *RateLimiter) Acquire(ctx context.Context) error {
	for {
		r.mu.Lock()
		r.refill()

		if r.tokens >= 1 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}

		waitTime := time.Duration(float64(time.Second) / r.refillRate)
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

// TryAcquire attempts to acquire a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	if r.tokens >= 1 {
		r.tokens--
		return true
	}
	return false
}

func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.tokens += elapsed * r.refillRate
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
	r.lastRefill = now
}

// LimiterPool hands out a shared rate limiter per provider.
type LimiterPool struct {
	cfg      RateLimiterConfig
	limiters map[string]*RateLimiter
	mu       sync.Mutex
}

// NewLimiterPool creates a limiter pool with the given per-provider config.
func NewLimiterPool(cfg RateLimiterConfig) *LimiterPool {
	return &LimiterPool{
		cfg:      cfg,
		limiters: make(map[string]*RateLimiter),
	}
}

// Configure installs a provider-specific limiter, replacing any existing one.
func (p *LimiterPool) Configure(provider string, cfg RateLimiterConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.limiters[provider] = NewRateLimiter(cfg)
}

// Get returns the limiter for a provider, creating it on first use.
func (p *LimiterPool) Get(provider string) *RateLimiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.limiters[provider]; ok {
		return l
	}
	l := NewRateLimiter(p.cfg)
	p.limiters[provider] = l
	return l
}
