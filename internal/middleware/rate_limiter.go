package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterConfig configures per-client rate limiting.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// ipLimiters holds one token bucket per client IP.
type ipLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	config   RateLimiterConfig
}

func newIPLimiters(config RateLimiterConfig) *ipLimiters {
	l := &ipLimiters{
		limiters: make(map[string]*rate.Limiter),
		config:   config,
	}
	go l.sweep()
	return l
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(l.config.RequestsPerSecond), l.config.Burst)
		l.limiters[ip] = limiter
	}
	return limiter
}

// sweep drops the whole map once it grows past a bound; buckets are cheap to
// rebuild and churn here only costs one burst per client.
func (l *ipLimiters) sweep() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		if len(l.limiters) > 1000 {
			l.limiters = make(map[string]*rate.Limiter)
		}
		l.mu.Unlock()
	}
}

// RateLimiterMiddleware rejects requests exceeding the per-IP budget with 429.
func RateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	limiters := newIPLimiters(config)

	return func(c *gin.Context) {
		limiter := limiters.get(c.ClientIP())
		if !limiter.Allow() {
			reservation := limiter.Reserve()
			retryAfter := reservation.DelayFrom(time.Now()).Seconds()
			reservation.Cancel()

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded. Please try again later.",
				"retry_after": retryAfter,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
