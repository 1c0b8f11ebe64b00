// middleware/rate_limiter.go
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/lexora/lexora_backend/models"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type endpointLimit struct {
	limit rate.Limit
	burst int
}

// RateLimiter keeps one token bucket per client IP and blocks IPs that exhaust it
type RateLimiter struct {
	mu             sync.Mutex
	ips            map[string]*visitor
	blockedIPs     map[string]time.Time
	defaultLimit   endpointLimit
	blockDuration  time.Duration
	idleTimeout    time.Duration
	endpointLimits map[string]endpointLimit
	now            func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		ips:           make(map[string]*visitor),
		blockedIPs:    make(map[string]time.Time),
		defaultLimit:  endpointLimit{limit: rate.Every(100 * time.Millisecond), burst: 20},
		blockDuration: 5 * time.Minute,
		idleTimeout:   10 * time.Minute,
		endpointLimits: map[string]endpointLimit{
			// brute force protection
			"/api/auth/login":    {limit: rate.Every(2 * time.Second), burst: 5},
			"/api/auth/firebase": {limit: rate.Every(2 * time.Second), burst: 5},
			"/api/auth/signup":   {limit: rate.Every(500 * time.Millisecond), burst: 5},
			// one LLM call per request
			"/api/reports/insights": {limit: rate.Every(5 * time.Second), burst: 3},
		},
		now: time.Now,
	}
}

// SetEndpointLimit overrides the bucket for a route path
func (r *RateLimiter) SetEndpointLimit(path string, limit rate.Limit, burst int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpointLimits[path] = endpointLimit{limit: limit, burst: burst}
}

// RunCleanup drops expired blocks and idle buckets every interval until ctx is done
func (r *RateLimiter) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.cleanup()
		}
	}
}

func (r *RateLimiter) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for key, blockUntil := range r.blockedIPs {
		if now.After(blockUntil) {
			delete(r.blockedIPs, key)
			delete(r.ips, key)
		}
	}
	for key, v := range r.ips {
		if _, blocked := r.blockedIPs[key]; blocked {
			continue
		}
		if now.Sub(v.lastSeen) > r.idleTimeout {
			delete(r.ips, key)
		}
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			key := ip + "|" + c.Path()

			r.mu.Lock()
			if blockUntil, blocked := r.blockedIPs[key]; blocked {
				if r.now().Before(blockUntil) {
					r.mu.Unlock()
					return c.JSON(http.StatusTooManyRequests, models.Response{
						Status:  http.StatusTooManyRequests,
						Message: "Too many requests, retry after " + blockUntil.Format(time.RFC3339),
					})
				}
				delete(r.blockedIPs, key)
				delete(r.ips, key)
			}

			cfg, ok := r.endpointLimits[c.Path()]
			if !ok {
				cfg = r.defaultLimit
			}
			now := r.now()
			v, exists := r.ips[key]
			if !exists {
				v = &visitor{limiter: rate.NewLimiter(cfg.limit, cfg.burst)}
				r.ips[key] = v
			}
			v.lastSeen = now

			if !v.limiter.AllowN(now, 1) {
				blockUntil := now.Add(r.blockDuration)
				r.blockedIPs[key] = blockUntil
				r.mu.Unlock()
				return c.JSON(http.StatusTooManyRequests, models.Response{
					Status:  http.StatusTooManyRequests,
					Message: "Too many requests, retry after " + blockUntil.Format(time.RFC3339),
				})
			}
			r.mu.Unlock()

			return next(c)
		}
	}
}
