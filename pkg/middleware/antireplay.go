package middleware

import (
	"bytes"
	"crypto/md5"
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Haixing-Hu/httpware/pkg/lock"
	"go.uber.org/zap"
)

// AntiReplayConfig defines the configuration for the anti-replay
// middleware.
type AntiReplayConfig struct {
	// Name is the logical identity of the protected operation, e.g.
	// "user.register". It is the leading component of the lock key, so
	// distinct operations sharing a store never collide.
	Name string

	// TTL is the length of the anti-replay window. A repeated request
	// with the same fingerprint within the window is rejected. Defaults
	// to 10 seconds.
	TTL time.Duration

	// Store is the lock store backing the window. Defaults to a new
	// in-process MemoryStore, which is only safe for single-instance
	// deployments.
	Store lock.Store

	// FailClosed rejects requests with 503 Service Unavailable when the
	// lock store fails. The default is to fail open: a store failure
	// lets the request through, trading duplicate suppression for
	// availability.
	FailClosed bool

	// KeyFunc overrides the request fingerprint. When nil, the
	// fingerprint is Name, HTTP method, path, and an MD5 digest of the
	// request body.
	KeyFunc func(r *http.Request, body []byte) string

	// OnRejected handles requests identified as replays. When nil, a
	// 429 Too Many Requests response is sent.
	OnRejected http.Handler
}

const defaultAntiReplayTTL = 10 * time.Second

// AntiReplay creates a middleware that suppresses duplicate execution of
// the same logical request within a time window. The request fingerprint
// is resolved to a key in the configured lock store with an atomic
// set-if-absent; the first request wins and later identical requests are
// rejected until the window expires.
func AntiReplay(config *AntiReplayConfig, logger *zap.Logger) Middleware {
	if config == nil {
		config = &AntiReplayConfig{}
	}
	ttl := config.TTL
	if ttl <= 0 {
		ttl = defaultAntiReplayTTL
	}
	store := config.Store
	if store == nil {
		store = lock.NewMemoryStore()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := drainBody(r, logger)

			var key string
			if config.KeyFunc != nil {
				key = config.KeyFunc(r, body)
			} else {
				key = replayKey(config.Name, r, body)
			}

			acquired, err := store.Acquire(r.Context(), key, ttl)
			if err != nil {
				if config.FailClosed {
					logger.Error("Lock store failure, rejecting request",
						zap.Error(err),
						zap.String("key", key),
					)
					http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
					return
				}
				// Fail open: a broken store must not block traffic.
				logger.Error("Lock store failure, allowing request",
					zap.Error(err),
					zap.String("key", key),
				)
				acquired = true
			}

			if !acquired {
				logger.Warn("Duplicate request rejected",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("key", key),
				)
				if config.OnRejected != nil {
					config.OnRejected.ServeHTTP(w, r)
				} else {
					http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				}
				return
			}

			logger.Debug("Anti-replay lock acquired",
				zap.String("key", key),
				zap.Duration("ttl", ttl),
			)
			next.ServeHTTP(w, r)
		})
	}
}

// drainBody reads the request body for fingerprinting and restores it so
// the handler can read it again. Read failures yield an empty fingerprint
// component rather than an error.
func drainBody(r *http.Request, logger *zap.Logger) []byte {
	if r.Body == nil {
		return nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("Failed to read request body for fingerprint",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		return nil
	}
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body
}

// replayKey builds the lock key from the operation name, the HTTP method,
// the request path with slashes folded to colons, and a base64-encoded MD5
// digest of the body. Empty bodies contribute no digest component.
func replayKey(name string, r *http.Request, body []byte) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString(":")
	b.WriteString(r.Method)
	b.WriteString(strings.ReplaceAll(r.URL.Path, "/", ":"))
	if len(body) > 0 {
		sum := md5.Sum(body)
		b.WriteString(":")
		b.WriteString(base64.StdEncoding.EncodeToString(sum[:]))
	}
	return b.String()
}
