package auth

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hymnal/internal/config"
)

const (
	defaultMaxAttempts     = 5
	defaultRateLimitWindow = 15 * time.Minute
	defaultLockout         = 30 * time.Minute
	defaultSweepInterval   = 5 * time.Minute
)

type RateLimitConfig struct {
	MaxAttempts     int
	WindowDuration  time.Duration
	LockoutDuration time.Duration
	CleanupInterval time.Duration
}

// RateLimitConfigFrom builds the limiter settings from the auth config.
func RateLimitConfigFrom(cfg config.Auth) RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	}
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.WindowDuration <= 0 {
		c.WindowDuration = defaultRateLimitWindow
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = defaultLockout
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = defaultSweepInterval
	}
	return c
}

// failures tracks one IP+login pair inside the current window.
type failures struct {
	count       int
	windowStart time.Time
	lockedUntil time.Time
}

func (f *failures) lockedAt(now time.Time) (bool, time.Duration) {
	if f.lockedUntil.IsZero() || !now.Before(f.lockedUntil) {
		return false, 0
	}
	return true, f.lockedUntil.Sub(now)
}

func (f *failures) windowOver(now time.Time, window time.Duration) bool {
	return now.Sub(f.windowStart) > window
}

// RateLimiter throttles login attempts per IP+login pair. Once MaxAttempts
// failures land inside one window the pair is refused until the lockout ends.
type RateLimiter struct {
	cfg RateLimitConfig
	now func() time.Time

	mu       sync.RWMutex
	attempts map[string]*failures

	done     chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		cfg:      cfg.withDefaults(),
		now:      time.Now,
		attempts: make(map[string]*failures),
		done:     make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Stop ends the background sweep. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func attemptKey(ip, login string) string {
	return ip + "|" + strings.ToLower(login)
}

// Allow reports whether another attempt may be made and, when it may not,
// how long the caller should wait.
func (rl *RateLimiter) Allow(ip, login string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.RLock()
	defer rl.mu.RUnlock()

	f, ok := rl.attempts[attemptKey(ip, login)]
	if !ok {
		return true, 0
	}
	if locked, wait := f.lockedAt(now); locked {
		return false, wait
	}
	if f.windowOver(now, rl.cfg.WindowDuration) || f.count < rl.cfg.MaxAttempts {
		return true, 0
	}
	return false, rl.cfg.LockoutDuration
}

// RecordFailure counts a failed attempt. It reports whether the pair just
// became locked and for how long.
func (rl *RateLimiter) RecordFailure(ip, login string) (bool, time.Duration) {
	key := attemptKey(ip, login)
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	f, ok := rl.attempts[key]
	if !ok || f.windowOver(now, rl.cfg.WindowDuration) {
		f = &failures{windowStart: now}
		rl.attempts[key] = f
	}

	f.count++
	if f.count < rl.cfg.MaxAttempts {
		return false, 0
	}
	f.lockedUntil = now.Add(rl.cfg.LockoutDuration)
	return true, rl.cfg.LockoutDuration
}

// RecordSuccess forgets the pair's failures.
func (rl *RateLimiter) RecordSuccess(ip, login string) {
	rl.mu.Lock()
	delete(rl.attempts, attemptKey(ip, login))
	rl.mu.Unlock()
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// cleanup drops pairs whose window and lockout have both passed.
func (rl *RateLimiter) cleanup() {
	now := rl.now()
	keep := rl.cfg.WindowDuration + rl.cfg.LockoutDuration

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, f := range rl.attempts {
		if locked, _ := f.lockedAt(now); locked {
			continue
		}
		if f.windowOver(now, keep) {
			delete(rl.attempts, key)
		}
	}
}

// AbortTooManyAttempts writes the 429 response for a locked pair.
func AbortTooManyAttempts(c *gin.Context, retryAfter time.Duration) {
	wait := retryAfter.Round(time.Second)
	seconds := int(wait / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	c.Header("Retry-After", strconv.Itoa(seconds))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":       "too many login attempts",
		"retry_after": wait.String(),
	})
}
