package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ExecutionTimeConfig defines the configuration for the execution-time
// logging middleware.
type ExecutionTimeConfig struct {
	// Enabled toggles the middleware. A disabled config is pass-through.
	Enabled bool

	// SlowThreshold promotes requests slower than this duration from
	// debug to warn level. Zero disables the promotion.
	SlowThreshold time.Duration
}

// DefaultExecutionTimeConfig returns the default execution-time
// configuration: enabled, requests over one second logged as slow.
func DefaultExecutionTimeConfig() *ExecutionTimeConfig {
	return &ExecutionTimeConfig{
		Enabled:       true,
		SlowThreshold: time.Second,
	}
}

// ExecutionTime creates a middleware that logs the start of every request
// and its total execution time once the handler returns.
func ExecutionTime(config *ExecutionTimeConfig, logger *zap.Logger) Middleware {
	if config == nil {
		config = DefaultExecutionTimeConfig()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			logger.Debug("Executing request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			start := time.Now()

			next.ServeHTTP(w, r)

			duration := time.Since(start)
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", duration),
			}
			if id := GetRequestID(r); id != "" {
				fields = append(fields, zap.String("request_id", id))
			}
			if config.SlowThreshold > 0 && duration > config.SlowThreshold {
				logger.Warn("Slow request", fields...)
			} else {
				logger.Debug("Request finished", fields...)
			}
		})
	}
}
