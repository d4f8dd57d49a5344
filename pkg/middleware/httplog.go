package middleware

import (
	"net/http"

	"github.com/Haixing-Hu/httpware/pkg/buffer"
	"go.uber.org/zap"
)

// Placeholders logged instead of body content that is not worth printing.
const (
	multipartBodyPlaceholder = "<uploaded file content ignored>"
	downloadBodyPlaceholder  = "<file download content ignored>"
)

// HTTPLoggingConfig defines the configuration for the HTTP logging
// middleware.
type HTTPLoggingConfig struct {
	// Enabled toggles the middleware. A disabled config is pass-through
	// and does not buffer bodies.
	Enabled bool

	// PrintMultipartContent logs the raw body of multipart requests
	// instead of a placeholder.
	PrintMultipartContent bool

	// PrintTextFileDownloadContent logs the body of textual file-download
	// responses instead of a placeholder. Binary downloads are never
	// logged.
	PrintTextFileDownloadContent bool

	// DefaultCharset is used to decode bodies whose requests or responses
	// declare no charset, or an unknown one.
	DefaultCharset string
}

// DefaultHTTPLoggingConfig returns the default logging configuration:
// enabled, UTF-8 fallback, file content never printed.
func DefaultHTTPLoggingConfig() *HTTPLoggingConfig {
	return &HTTPLoggingConfig{
		Enabled:        true,
		DefaultCharset: "utf-8",
	}
}

// HTTPLogging creates a middleware that logs every request and response at
// debug level, including headers, parameters, and bodies. Both bodies are
// buffered through the buffer package so that downstream handlers and the
// client observe them unchanged.
func HTTPLogging(config *HTTPLoggingConfig, logger *zap.Logger) Middleware {
	if config == nil {
		config = DefaultHTTPLoggingConfig()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			req, err := buffer.NewRequest(r, config.DefaultCharset)
			if err != nil {
				// Buffering failures (typically malformed multipart
				// payloads) are logged and the request proceeds with
				// whatever was captured.
				logger.Error("Failed to buffer request",
					zap.Error(err),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
			}
			rec := buffer.NewResponseRecorder(w, config.DefaultCharset)

			logRequest(logger, config, req)
			next.ServeHTTP(rec, req.Request)
			logResponse(logger, config, rec)
		})
	}
}

func logRequest(logger *zap.Logger, config *HTTPLoggingConfig, req *buffer.Request) {
	r := req.Request
	remoteAddr := ClientIP(r)
	if remoteAddr == "" {
		remoteAddr = r.RemoteAddr
	}
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("uri", r.URL.RequestURI()),
		zap.String("remote_addr", remoteAddr),
		zap.String("content_type", r.Header.Get("Content-Type")),
		zap.Any("params", req.Params()),
		zap.Any("headers", r.Header),
	}
	if id := GetRequestID(r); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if buffer.IsMultipart(r) {
		logMultipart(logger, req)
		if config.PrintMultipartContent {
			fields = append(fields, zap.String("body", req.BodyString()))
		} else {
			fields = append(fields, zap.String("body", multipartBodyPlaceholder))
		}
	} else {
		fields = append(fields, zap.String("body", req.BodyString()))
	}
	logger.Debug("Request", fields...)
}

func logMultipart(logger *zap.Logger, req *buffer.Request) {
	form := req.MultipartForm
	if form == nil {
		return
	}
	for name, headers := range form.File {
		for _, header := range headers {
			logger.Debug("Request part",
				zap.String("name", name),
				zap.String("filename", header.Filename),
				zap.String("content_disposition", header.Header.Get("Content-Disposition")),
				zap.Int64("size", header.Size),
			)
		}
	}
}

func logResponse(logger *zap.Logger, config *HTTPLoggingConfig, rec *buffer.ResponseRecorder) {
	fields := []zap.Field{
		zap.Int("status", rec.Status()),
		zap.Any("headers", rec.Header()),
	}
	if rec.IsFileDownload() {
		if rec.IsBinary() || !config.PrintTextFileDownloadContent {
			fields = append(fields, zap.String("body", downloadBodyPlaceholder))
		} else {
			fields = append(fields, zap.String("body", rec.BodyString()))
		}
	} else {
		fields = append(fields, zap.String("body", rec.BodyString()))
	}
	logger.Debug("Response", fields...)
}
