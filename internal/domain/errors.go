package domain

import (
	"errors"
	"fmt"

	"github.com/aryan0dhankhar/storefront/internal/content"
)

var (
	ErrInvalidFormat      = errors.New("subdomain format is invalid")
	ErrReserved           = errors.New("subdomain is reserved")
	ErrNamespaceExhausted = errors.New("no available subdomain")
	ErrQuotaExceeded      = errors.New("site quota exceeded")
	ErrUnauthorized       = errors.New("not the owner of this site")
	ErrNotFound           = errors.New("not found")
	ErrInvalidTemplate    = errors.New("template does not exist")
	ErrUserExists         = errors.New("email or username already registered")

	// ErrSubdomainTaken signals a unique violation on insert; callers retry
	ErrSubdomainTaken = errors.New("subdomain already taken")
)

// ValidationError carries the field errors that rejected a content write
type ValidationError struct {
	Fields content.FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("content validation failed: %s", e.Fields.Error())
}

// NotReadyError is returned when publishing a site whose content is incomplete
type NotReadyError struct {
	Report content.ValidationReport
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("site not ready to publish: %d missing fields, %d product errors",
		len(e.Report.MissingFields), len(e.Report.ProductErrors))
}
