package mw

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipRateLimiter keeps one token bucket per client IP.
type ipRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	r       rate.Limit
	b       int
}

func (l *ipRateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[ip]
	if !ok {
		bucket = rate.NewLimiter(l.r, l.b)
		l.buckets[ip] = bucket
	}
	return bucket
}

// RateLimiter is a middleware for per-IP rate limiting.
func RateLimiter(r rate.Limit, burst int) gin.HandlerFunc {
	limiter := &ipRateLimiter{
		buckets: make(map[string]*rate.Limiter),
		r:       r,
		b:       burst,
	}
	return func(c *gin.Context) {
		if !limiter.limiter(c.ClientIP()).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
