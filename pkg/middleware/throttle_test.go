package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newThrottleTestLogger() *zap.Logger {
	core, _ := observer.New(zap.DebugLevel)
	return zap.New(core)
}

func TestThrottleNilConfigPassthrough(t *testing.T) {
	handler := Throttle(nil, newThrottleTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/test", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestThrottleAllowsTraffic(t *testing.T) {
	config := &ThrottleConfig{Name: "api", RPS: 1000}
	handler := Throttle(config, newThrottleTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("GET", "/test", nil))
		if rr.Code != http.StatusOK {
			t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
		}
	}
}

func TestThrottleSmoothsRate(t *testing.T) {
	config := &ThrottleConfig{Name: "api", RPS: 50}
	handler := Throttle(config, newThrottleTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// At 50 RPS the leaky bucket spaces requests 20ms apart, so a burst
	// of 4 takes at least ~60ms.
	start := time.Now()
	for i := 0; i < 4; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Expected burst to be smoothed over at least 40ms, took %v", elapsed)
	}
}

func TestThrottleKeyFunc(t *testing.T) {
	keys := make(map[string]int)
	config := &ThrottleConfig{
		Name: "api",
		RPS:  1000,
		KeyFunc: func(r *http.Request) string {
			key := r.Header.Get("X-Api-Key")
			keys[key]++
			return key
		},
	}
	handler := Throttle(config, newThrottleTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, key := range []string{"a", "b", "a"} {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Api-Key", key)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if keys["a"] != 2 || keys["b"] != 1 {
		t.Errorf("Expected key extractor to run per request, got %v", keys)
	}
}
