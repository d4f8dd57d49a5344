package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// CORSConfig defines the cross-origin resource sharing headers injected
// into every response.
type CORSConfig struct {
	// Enabled toggles the middleware. A disabled config is pass-through.
	Enabled bool

	// AllowOrigin is the value of Access-Control-Allow-Origin.
	AllowOrigin string

	// AllowMethods is the value of Access-Control-Allow-Methods.
	AllowMethods string

	// AllowHeaders is the value of Access-Control-Allow-Headers.
	AllowHeaders string

	// AllowCredentials is the value of Access-Control-Allow-Credentials.
	AllowCredentials bool

	// MaxAge is how long a preflight result may be cached by the client.
	MaxAge time.Duration
}

// DefaultCORSConfig returns the default CORS configuration: any origin,
// the standard method set, the token and content-type headers, no
// credentials, and a one-day preflight cache.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		Enabled:          true,
		AllowOrigin:      "*",
		AllowMethods:     "GET, HEAD, POST, PUT, DELETE, PATCH, OPTIONS",
		AllowHeaders:     "X-Auth-Token, X-Auth-App-Token, X-Auth-User-Token, Content-Type",
		AllowCredentials: false,
		MaxAge:           24 * time.Hour,
	}
}

// CORS creates a middleware that injects CORS headers into every response
// and answers OPTIONS preflight requests directly.
func CORS(config *CORSConfig) Middleware {
	if config == nil {
		config = DefaultCORSConfig()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			if config.AllowOrigin != "" {
				h.Set("Access-Control-Allow-Origin", config.AllowOrigin)
			}
			if config.AllowMethods != "" {
				h.Set("Access-Control-Allow-Methods", config.AllowMethods)
			}
			if config.AllowHeaders != "" {
				h.Set("Access-Control-Allow-Headers", config.AllowHeaders)
			}
			h.Set("Access-Control-Allow-Credentials", strconv.FormatBool(config.AllowCredentials))
			if config.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", strconv.Itoa(int(config.MaxAge.Seconds())))
			}

			// Answer preflight requests without invoking the handler.
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
