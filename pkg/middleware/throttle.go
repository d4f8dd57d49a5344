package middleware

import (
	"net/http"
	"sync"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// ThrottleConfig defines the configuration for the throttling middleware.
type ThrottleConfig struct {
	// Name identifies this throttle bucket. Buckets sharing a name share
	// their limiters.
	Name string

	// RPS is the steady request rate allowed per key. Requests beyond
	// the rate are delayed by the leaky bucket, smoothing bursts instead
	// of rejecting them.
	RPS int

	// KeyFunc extracts the throttle key from the request. Defaults to
	// the client IP.
	KeyFunc func(*http.Request) string
}

// Throttle creates a middleware that smooths request rates per key using a
// leaky-bucket limiter. Unlike the anti-replay middleware, it never
// rejects: excess requests wait for their slot.
func Throttle(config *ThrottleConfig, logger *zap.Logger) Middleware {
	if config == nil || config.RPS <= 0 {
		// Nothing to throttle.
		return func(next http.Handler) http.Handler { return next }
	}
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = func(r *http.Request) string {
			if ip := ClientIP(r); ip != "" {
				return ip
			}
			return r.RemoteAddr
		}
	}

	var (
		mu       sync.Mutex
		limiters sync.Map // map[string]ratelimit.Limiter
	)
	getLimiter := func(key string) ratelimit.Limiter {
		if limiter, ok := limiters.Load(key); ok {
			return limiter.(ratelimit.Limiter)
		}
		mu.Lock()
		defer mu.Unlock()
		if limiter, ok := limiters.Load(key); ok {
			return limiter.(ratelimit.Limiter)
		}
		limiter := ratelimit.New(config.RPS)
		limiters.Store(key, limiter)
		return limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := config.Name + ":" + keyFunc(r)
			limiter := getLimiter(key)

			// Take blocks until the leaky bucket grants a slot.
			limiter.Take()

			logger.Debug("Throttle slot granted",
				zap.String("key", key),
				zap.Int("rps", config.RPS),
			)
			next.ServeHTTP(w, r)
		})
	}
}
