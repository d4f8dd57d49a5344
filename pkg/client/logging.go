// Package client provides decorators for outgoing HTTP requests made
// through an http.Client.
package client

import (
	"bytes"
	"io"
	"net/http"

	"github.com/Haixing-Hu/httpware/pkg/buffer"
	"go.uber.org/zap"
)

// LoggingTransport is an http.RoundTripper that logs every outgoing
// request and its response at debug level. The response body is buffered
// before logging and restored, so callers can still read it in full.
type LoggingTransport struct {
	// Base performs the actual round trip. Defaults to
	// http.DefaultTransport.
	Base http.RoundTripper

	// Logger receives the request and response entries.
	Logger *zap.Logger

	// DefaultCharset decodes bodies whose messages declare no charset.
	// Defaults to utf-8.
	DefaultCharset string
}

// NewLoggingTransport creates a logging transport over base.
func NewLoggingTransport(base http.RoundTripper, logger *zap.Logger) *LoggingTransport {
	return &LoggingTransport{Base: base, Logger: logger}
}

// RoundTrip implements http.RoundTripper.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	charset := t.DefaultCharset
	if charset == "" {
		charset = "utf-8"
	}

	body := t.requestBody(req)
	t.Logger.Debug("Client request",
		zap.String("method", req.Method),
		zap.String("uri", req.URL.String()),
		zap.Any("headers", req.Header),
		zap.String("body", buffer.DecodeString(body, buffer.CharsetOf(req.Header.Get("Content-Type")), charset)),
	)

	resp, err := base.RoundTrip(req)
	if err != nil {
		t.Logger.Error("Client request failed",
			zap.Error(err),
			zap.String("method", req.Method),
			zap.String("uri", req.URL.String()),
		)
		return nil, err
	}

	// The log consumes the response body, so it is buffered and restored
	// for the caller.
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(respBody))

	t.Logger.Debug("Client response",
		zap.Int("status", resp.StatusCode),
		zap.String("status_text", resp.Status),
		zap.Any("headers", resp.Header),
		zap.String("body", buffer.DecodeString(respBody, buffer.CharsetOf(resp.Header.Get("Content-Type")), charset)),
	)
	return resp, nil
}

// requestBody captures the outgoing body without consuming it. Requests
// created with a replayable body use GetBody; otherwise the body is
// drained and restored.
func (t *LoggingTransport) requestBody(req *http.Request) []byte {
	if req.Body == nil {
		return nil
	}
	if req.GetBody != nil {
		rc, err := req.GetBody()
		if err == nil {
			body, err := io.ReadAll(rc)
			rc.Close()
			if err == nil {
				return body
			}
		}
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		t.Logger.Error("Failed to read outgoing request body", zap.Error(err))
		return nil
	}
	req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(body))
	return body
}
