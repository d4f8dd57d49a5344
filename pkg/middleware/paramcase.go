package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Haixing-Hu/httpware/pkg/buffer"
	"github.com/iancoleman/strcase"
	"go.uber.org/zap"
)

// ParamConversionConfig defines the configuration for the parameter name
// conversion middleware.
type ParamConversionConfig struct {
	// Converter maps an incoming parameter name to the name handlers
	// expect. Defaults to lowerCamel conversion, turning snake_case and
	// kebab-case parameters into their lowerCamel equivalents.
	Converter func(string) string

	// AllowOriginalName keeps the unconverted name available alongside
	// the converted one.
	AllowOriginalName bool
}

// DefaultParamConversionConfig returns the default conversion
// configuration: lowerCamel names, originals preserved.
func DefaultParamConversionConfig() *ParamConversionConfig {
	return &ParamConversionConfig{
		Converter:         strcase.ToLowerCamel,
		AllowOriginalName: true,
	}
}

// ParamNameConversion creates a middleware that rewrites the names of
// query and URL-encoded form parameters, so handlers can read them under a
// single naming convention regardless of the convention the client used.
func ParamNameConversion(config *ParamConversionConfig, logger *zap.Logger) Middleware {
	if config == nil {
		config = DefaultParamConversionConfig()
	}
	converter := config.Converter
	if converter == nil {
		converter = strcase.ToLowerCamel
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.RawQuery != "" {
				converted := convertNames(r.URL.Query(), converter, config.AllowOriginalName, logger)
				r.URL.RawQuery = converted.Encode()
			}
			if buffer.IsWWWForm(r) {
				if err := convertFormBody(r, converter, config.AllowOriginalName, logger); err != nil {
					logger.Error("Failed to convert form parameter names",
						zap.Error(err),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
					)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// convertFormBody rewrites the URL-encoded body in place, replacing
// r.Body with the re-encoded parameters.
func convertFormBody(r *http.Request, converter func(string) string, keepOriginal bool, logger *zap.Logger) error {
	if r.Body == nil {
		return nil
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	r.Body.Close()
	params, err := url.ParseQuery(string(raw))
	if err != nil {
		// Leave an unparsable body untouched for the handler to reject.
		r.Body = io.NopCloser(bytes.NewReader(raw))
		return err
	}
	encoded := convertNames(params, converter, keepOriginal, logger).Encode()
	r.Body = io.NopCloser(bytes.NewReader([]byte(encoded)))
	r.ContentLength = int64(len(encoded))
	r.Header.Set("Content-Length", strconv.Itoa(len(encoded)))
	return nil
}

func convertNames(params url.Values, converter func(string) string, keepOriginal bool, logger *zap.Logger) url.Values {
	converted := make(url.Values, len(params))
	for name, values := range params {
		target := converter(name)
		converted[target] = values
		if keepOriginal && target != name {
			converted[name] = values
		}
		if target != name {
			logger.Debug("Converted parameter name",
				zap.String("from", name),
				zap.String("to", target),
			)
		}
	}
	return converted
}
