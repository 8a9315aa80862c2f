package subdomain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/aryan0dhankhar/storefront/internal/domain"
	"github.com/aryan0dhankhar/storefront/internal/observability/metrics"
)

// MaxProbes bounds the candidates tried by NextAvailable
const MaxProbes = 100

// Directory is the uniqueness authority over the subdomain namespace.
// The UNIQUE constraint in storage stays the final arbiter; answers here
// are advisory under concurrent writers.
type Directory struct {
	sites     domain.SiteRepository
	validator *Validator
	logger    *slog.Logger
}

// NewDirectory creates a directory backed by the site repository
func NewDirectory(sites domain.SiteRepository, validator *Validator, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = NewValidator(nil)
	}
	return &Directory{sites: sites, validator: validator, logger: logger}
}

// Validator exposes the rules the directory applies
func (d *Directory) Validator() *Validator {
	return d.validator
}

// ResolveHost maps a request host to its published site. It returns
// (nil, nil) for the bare base domain, www, foreign hosts, and subdomains
// with no published site.
func (d *Directory) ResolveHost(ctx context.Context, host, baseDomain string) (*domain.Site, error) {
	label, ok := TenantLabel(host, baseDomain)
	if !ok {
		metrics.ObserveHostResolution("none")
		return nil, nil
	}

	published := domain.StatusPublished
	site, err := d.sites.FindBySubdomain(ctx, label, &published)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.ObserveHostResolution("none")
			return nil, nil
		}
		metrics.ObserveHostResolution("error")
		return nil, fmt.Errorf("failed to resolve host %q: %w", host, err)
	}
	metrics.ObserveHostResolution("hit")
	return site, nil
}

// TenantLabel extracts the label immediately preceding baseDomain.
// Ports are ignored on both sides.
func TenantLabel(host, baseDomain string) (string, bool) {
	host = strings.ToLower(stripPort(host))
	baseDomain = strings.ToLower(stripPort(baseDomain))
	if host == "" || baseDomain == "" || host == baseDomain {
		return "", false
	}

	prefix, found := strings.CutSuffix(host, "."+baseDomain)
	if !found || prefix == "" {
		return "", false
	}
	if i := strings.LastIndexByte(prefix, '.'); i >= 0 {
		prefix = prefix[i+1:]
	}
	if prefix == "" || prefix == "www" {
		return "", false
	}
	return prefix, true
}

func stripPort(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return strings.TrimSpace(hostport)
}

// IsAvailable reports whether candidate is well-formed and unused by any
// site, whatever its status
func (d *Directory) IsAvailable(ctx context.Context, candidate string) (bool, error) {
	if !d.validator.IsValidFormat(candidate) {
		return false, nil
	}
	_, err := d.sites.FindBySubdomain(ctx, candidate, nil)
	if errors.Is(err, domain.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check subdomain %q: %w", candidate, err)
	}
	return false, nil
}

// NextAvailable probes base, base-1, base-2, ... and returns the first free
// candidate. An invalid base is replaced by FallbackSlug. After MaxProbes
// candidates it gives up with domain.ErrNamespaceExhausted.
func (d *Directory) NextAvailable(ctx context.Context, base string) (string, error) {
	candidate, _, err := d.NextAvailableFrom(ctx, base, 0)
	return candidate, err
}

// NextAvailableFrom resumes probing at index start and also returns the
// index of the winning candidate. Writers that lose an insert race call it
// again with index+1 so the MaxProbes ceiling covers the retries too.
func (d *Directory) NextAvailableFrom(ctx context.Context, base string, start int) (string, int, error) {
	if !d.validator.IsValidFormat(base) {
		base = FallbackSlug
	}

	for n := start; n < MaxProbes; n++ {
		candidate := Candidate(base, n)
		ok, err := d.IsAvailable(ctx, candidate)
		if err != nil {
			return "", n, err
		}
		if ok {
			metrics.ObserveSlugProbes(n - start + 1)
			return candidate, n, nil
		}
	}

	d.logger.Warn("subdomain namespace exhausted",
		slog.String("base", base),
		slog.Int("probes", MaxProbes),
	)
	return "", MaxProbes, fmt.Errorf("%w for %q after %d probes", domain.ErrNamespaceExhausted, base, MaxProbes)
}

// Candidate returns the n-th probe for base: base itself, then base-n.
// base is shortened when the suffix would push it past MaxLength.
func Candidate(base string, n int) string {
	if n == 0 {
		return base
	}
	suffix := fmt.Sprintf("-%d", n)
	if len(base)+len(suffix) > MaxLength {
		base = strings.TrimRight(base[:MaxLength-len(suffix)], "-")
	}
	return base + suffix
}
