// Package subdomain owns the shared subdomain namespace: format rules,
// reserved names, slug generation and host resolution.
package subdomain

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aryan0dhankhar/storefront/internal/domain"
)

const (
	MinLength = 3
	MaxLength = 63

	// FallbackSlug replaces names that cannot produce a valid subdomain
	FallbackSlug = "my-site"
)

// DefaultReserved are operational names that can never be claimed by a site
var DefaultReserved = []string{
	"www", "admin", "api", "mail", "ftp", "blog", "shop", "store", "app",
	"apps", "dashboard", "account", "accounts", "auth", "login", "logout",
	"register", "signup", "signin", "webmail", "cpanel", "host", "hosting",
	"support", "help", "docs", "documentation", "test", "dev", "development",
	"staging", "prod", "production", "secure", "ssl", "static", "assets",
	"media", "files", "img", "images", "js", "css", "cdn", "cache", "status",
	"monitor", "stats", "analytics", "api-docs", "admin-panel", "control-panel",
}

var (
	formatPattern  = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)
	// whitespace here is the Unicode set: \s alone is ASCII-only
	nonWordPattern = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s\v\p{Z}\x{1c}-\x{1f}\x{85}-]`)
	separatorRuns  = regexp.MustCompile(`[\s\v\p{Z}\x{1c}-\x{1f}\x{85}-]+`)
)

// Validator applies the format and reservation rules
type Validator struct {
	reserved map[string]struct{}
}

// NewValidator builds a validator; an empty list selects DefaultReserved
func NewValidator(reserved []string) *Validator {
	if len(reserved) == 0 {
		reserved = DefaultReserved
	}
	set := make(map[string]struct{}, len(reserved))
	for _, r := range reserved {
		set[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}
	return &Validator{reserved: set}
}

// IsReserved is a case-insensitive membership test
func (v *Validator) IsReserved(candidate string) bool {
	_, ok := v.reserved[strings.ToLower(candidate)]
	return ok
}

// IsValidFormat reports whether candidate may be used as a subdomain.
// Reserved names are not valid.
func (v *Validator) IsValidFormat(candidate string) bool {
	return v.Check(candidate) == nil
}

// Check is IsValidFormat with the reason attached
func (v *Validator) Check(candidate string) error {
	if len(candidate) < MinLength || len(candidate) > MaxLength {
		return domain.ErrInvalidFormat
	}
	if !formatPattern.MatchString(candidate) {
		return domain.ErrInvalidFormat
	}
	if v.IsReserved(candidate) {
		return domain.ErrReserved
	}
	return nil
}

// Slugify derives a subdomain candidate from a display name. The result is
// not guaranteed valid (accented letters survive); callers pass it through
// Directory.NextAvailable. Slugify(Slugify(x)) == Slugify(x).
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	if slug == "" {
		return FallbackSlug
	}

	slug = nonWordPattern.ReplaceAllString(slug, "")
	slug = separatorRuns.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return FallbackSlug
	}

	switch n := utf8.RuneCountInString(slug); {
	case n < MinLength:
		slug += "-site"
	case n > MaxLength:
		slug = strings.TrimRight(string([]rune(slug)[:MaxLength]), "-")
	}
	return slug
}
