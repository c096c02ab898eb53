package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/allisson/erpnext-api-tester/internal/httputil"
)

const (
	limiterPruneInterval = 5 * time.Minute
	limiterIdleTimeout   = time.Hour
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiters keeps one token bucket per client IP.
type ipLimiters struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets map[string]*bucket
}

func newIPLimiters(rps float64, burst int) *ipLimiters {
	return &ipLimiters{limit: rate.Limit(rps), burst: burst, buckets: make(map[string]*bucket)}
}

func (l *ipLimiters) get(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = now
	return b.limiter
}

// prune forgets buckets not used since before and returns how many were dropped.
func (l *ipLimiters) prune(before time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	dropped := 0
	for ip, b := range l.buckets {
		if b.lastSeen.Before(before) {
			delete(l.buckets, ip)
			dropped++
		}
	}
	return dropped
}

func (l *ipLimiters) pruneEvery(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.prune(now.Add(-idle))
		}
	}
}

// RateLimitMiddleware applies a token bucket per client IP. Over-limit requests get
// 429 with Retry-After in whole seconds. Idle buckets are pruned until ctx is done.
func RateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	limiters := newIPLimiters(rps, burst)
	go limiters.pruneEvery(ctx, limiterPruneInterval, limiterIdleTimeout)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		// A reservation that cannot be satisfied (burst 0) is rejected without Retry-After.
		r := limiters.get(ip, now).ReserveN(now, 1)
		if r.OK() {
			delay := r.DelayFrom(now)
			if delay == 0 {
				c.Next()
				return
			}
			r.CancelAt(now)
			c.Header("Retry-After", strconv.Itoa(max(int(math.Ceil(delay.Seconds())), 1)))
		}

		logger.Debug("rate limit exceeded", slog.String("client_ip", ip))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, httputil.ErrorResponse{
			Error:   "rate_limit_exceeded",
			Message: "Too many requests, retry after the delay in Retry-After",
		})
	}
}
