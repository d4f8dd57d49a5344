package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestChain tests the Chain function
func TestChain(t *testing.T) {
	var order []string
	middleware1 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "middleware1 before")
			next.ServeHTTP(w, r)
			order = append(order, "middleware1 after")
		})
	}
	middleware2 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "middleware2 before")
			next.ServeHTTP(w, r)
			order = append(order, "middleware2 after")
		})
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusOK)
	})

	chainedHandler := Chain(middleware1, middleware2)(handler)

	req := httptest.NewRequest("GET", "/test", nil)
	rr := httptest.NewRecorder()
	chainedHandler.ServeHTTP(rr, req)

	expected := []string{
		"middleware1 before",
		"middleware2 before",
		"handler",
		"middleware2 after",
		"middleware1 after",
	}
	if len(order) != len(expected) {
		t.Fatalf("Expected %d middleware calls, got %d", len(expected), len(order))
	}
	for i, v := range order {
		if v != expected[i] {
			t.Errorf("Expected %q at position %d, got %q", expected[i], i, v)
		}
	}
}

// TestRecovery tests the Recovery middleware
func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	logger := zap.New(core)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	recoveryHandler := Recovery(logger)(handler)

	req := httptest.NewRequest("GET", "/test", nil)
	rr := httptest.NewRecorder()
	recoveryHandler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status code %d, got %d", http.StatusInternalServerError, rr.Code)
	}

	found := false
	for _, log := range logs.All() {
		if log.Message == "Panic recovered" {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected 'Panic recovered' log message")
	}
}

// TestMaxBodySize tests the MaxBodySize middleware
func TestMaxBodySize(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	limitedHandler := MaxBodySize(8)(handler)

	req := httptest.NewRequest("POST", "/test", strings.NewReader("this body exceeds the limit"))
	rr := httptest.NewRecorder()
	limitedHandler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status code %d, got %d", http.StatusRequestEntityTooLarge, rr.Code)
	}

	req = httptest.NewRequest("POST", "/test", strings.NewReader("tiny"))
	rr = httptest.NewRecorder()
	limitedHandler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}
}
