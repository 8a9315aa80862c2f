package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/aryan0dhankhar/storefront/internal/pkg/apierror"
	"github.com/aryan0dhankhar/storefront/internal/pkg/response"
)

// logError logs failures that map to a 5xx; client errors stay quiet
func logError(logger *slog.Logger, r *http.Request, err error) {
	if apierror.AsAPIError(err).StatusCode < http.StatusInternalServerError {
		return
	}
	logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("error", err.Error()),
	)
}

// badBody answers a body that failed to decode. Bodies cut off by the
// size limit get a 413 instead of the generic message.
func badBody(w http.ResponseWriter, err error, message string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(w, apierror.ErrPayloadTooLarge)
		return
	}
	response.BadRequest(w, message)
}

// validationDetails turns validator tags into per-field messages
func validationDetails(err error) map[string]string {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["body"] = err.Error()
		return fields
	}
	for _, fe := range verrs {
		name := toSnake(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[name] = "is required"
		case "max":
			fields[name] = "must be at most " + fe.Param() + " characters"
		case "gt":
			fields[name] = "must be greater than " + fe.Param()
		case "url":
			fields[name] = "must be a valid URL"
		default:
			fields[name] = "is invalid"
		}
	}
	return fields
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
