package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/aryan0dhankhar/storefront/internal/pkg/apierror"
	"github.com/aryan0dhankhar/storefront/internal/pkg/response"
)

// ValidateJSONContentType middleware ensures POST/PUT requests have JSON content type
func ValidateJSONContentType(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Only validate POST, PUT, PATCH requests
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			// Bodyless actions such as publish carry no payload
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if !strings.Contains(contentType, "application/json") {
				log.Warn("invalid content type",
					slog.String("path", r.URL.Path),
					slog.String("content_type", contentType),
					slog.String("method", r.Method),
				)
				response.Error(w, &apierror.APIError{
					Code:       "unsupported_media_type",
					Message:    "Content-Type must be application/json",
					StatusCode: http.StatusUnsupportedMediaType,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// MaxBodyBytes bounds API request bodies
const MaxBodyBytes int64 = 1 << 20

// LimitBody caps request bodies at max bytes. Declared oversize bodies are
// refused up front; others fail on read with *http.MaxBytesError.
func LimitBody(max int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > max {
				response.Error(w, apierror.ErrPayloadTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, max)
			next.ServeHTTP(w, r)
		})
	}
}
