package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/terraconstructs/sandaran/internal/apperr"
)

// DefaultLimiterCacheSize bounds the number of client addresses tracked.
const DefaultLimiterCacheSize = 4096

// RateLimiter throttles requests per client IP with a token bucket.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
	logger   logrus.FieldLogger
}

// NewRateLimiter allows perMinute requests per client per minute with a
// burst of the same size. perMinute <= 0 disables throttling.
func NewRateLimiter(perMinute, cacheSize int, logger logrus.FieldLogger) (*RateLimiter, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultLimiterCacheSize
	}
	cache, err := lru.New[string, *rate.Limiter](cacheSize)
	if err != nil {
		return nil, err
	}
	rl := &RateLimiter{limiters: cache, logger: logger, burst: perMinute}
	if perMinute > 0 {
		rl.limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return rl, nil
}

// Allow consumes one token for key.
func (rl *RateLimiter) Allow(key string) bool {
	if rl.burst <= 0 {
		return true
	}
	rl.mu.Lock()
	limiter, ok := rl.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters.Add(key, limiter)
	}
	rl.mu.Unlock()
	return limiter.Allow()
}

// Handler rejects requests over budget with 429.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.Allow(ip) {
			if rl.logger != nil {
				rl.logger.WithFields(logrus.Fields{"ip": ip, "path": r.URL.Path}).Warn("rate limit exceeded")
			}
			w.Header().Set("Retry-After", "60")
			apperr.Write(w, r, rl.logger, apperr.ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
