package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/storefront/internal/domain"
	redisinfra "github.com/aryan0dhankhar/storefront/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/storefront/internal/observability/metrics"
	"github.com/aryan0dhankhar/storefront/internal/reliability/circuitbreaker"
)

const (
	hostKeyPrefix = "site:host:"

	// tombstone marks a freshly evicted host. Fills use SET NX, so a
	// lookup that read the database before the write cannot put the old
	// row back while the tombstone lives.
	tombstone    = "-"
	tombstoneTTL = 10 * time.Second
)

// CachedSiteRepository serves published-site lookups by subdomain from
// Redis. Every write path drops the affected key. When Redis keeps failing
// the circuit breaker opens and lookups go straight to the wrapped
// repository.
type CachedSiteRepository struct {
	domain.SiteRepository
	redis   *redisinfra.Client
	breaker *circuitbreaker.CircuitBreaker
	ttl     time.Duration
	logger  *slog.Logger
}

// NewCachedSiteRepository wraps next with the Redis host cache
func NewCachedSiteRepository(
	next domain.SiteRepository,
	client *redisinfra.Client,
	breaker *circuitbreaker.CircuitBreaker,
	ttl time.Duration,
	logger *slog.Logger,
) *CachedSiteRepository {
	if logger == nil {
		logger = slog.Default()
	}
	if breaker == nil {
		breaker = circuitbreaker.NewCircuitBreaker(5, 2, 30*time.Second)
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedSiteRepository{
		SiteRepository: next,
		redis:          client,
		breaker:        breaker,
		ttl:            ttl,
		logger:         logger,
	}
}

func hostKey(subdomain string) string {
	return hostKeyPrefix + subdomain
}

// FindBySubdomain uses the cache only for published lookups
func (r *CachedSiteRepository) FindBySubdomain(ctx context.Context, subdomain string, status *domain.SiteStatus) (*domain.Site, error) {
	if status == nil || *status != domain.StatusPublished {
		return r.SiteRepository.FindBySubdomain(ctx, subdomain, status)
	}

	if !r.breaker.AllowRequest() {
		metrics.ObserveHostCache("bypass")
		return r.SiteRepository.FindBySubdomain(ctx, subdomain, status)
	}

	raw, err := r.redis.Get(ctx, hostKey(subdomain))
	switch {
	case err == nil && raw == tombstone:
		r.breaker.RecordSuccess()
		metrics.ObserveHostCache("miss")
	case err == nil:
		r.breaker.RecordSuccess()
		var site domain.Site
		if jsonErr := json.Unmarshal([]byte(raw), &site); jsonErr == nil {
			metrics.ObserveHostCache("hit")
			return &site, nil
		}
		r.logger.Warn("dropping undecodable host cache entry", slog.String("subdomain", subdomain))
		if err := r.redis.Delete(ctx, hostKey(subdomain)); err != nil {
			r.breaker.RecordFailure()
		}
	case errors.Is(err, redisinfra.ErrMiss):
		r.breaker.RecordSuccess()
		metrics.ObserveHostCache("miss")
	default:
		r.breaker.RecordFailure()
		metrics.ObserveHostCache("error")
		r.logger.Warn("host cache read failed", slog.String("error", err.Error()))
	}

	site, err := r.SiteRepository.FindBySubdomain(ctx, subdomain, status)
	if err != nil {
		return nil, err
	}
	r.store(ctx, site)
	return site, nil
}

// Update writes through and evicts the site's host entry
func (r *CachedSiteRepository) Update(ctx context.Context, site *domain.Site) error {
	if err := r.SiteRepository.Update(ctx, site); err != nil {
		return err
	}
	r.evict(ctx, site.Subdomain)
	return nil
}

// Delete removes the site and evicts its host entry
func (r *CachedSiteRepository) Delete(ctx context.Context, id string) error {
	site, err := r.SiteRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.SiteRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, site.Subdomain)
	return nil
}

func (r *CachedSiteRepository) store(ctx context.Context, site *domain.Site) {
	if !r.breaker.AllowRequest() {
		return
	}
	b, err := json.Marshal(site)
	if err != nil {
		return
	}
	stored, err := r.redis.SetNX(ctx, hostKey(site.Subdomain), b, r.ttl)
	if err != nil {
		r.breaker.RecordFailure()
		r.logger.Warn("host cache write failed", slog.String("error", err.Error()))
		return
	}
	r.breaker.RecordSuccess()
	if !stored {
		metrics.ObserveHostCache("fill_skipped")
	}
}

// evict replaces the entry with a tombstone. It runs even with the breaker
// open; a stale published entry must not outlive an unpublish.
func (r *CachedSiteRepository) evict(ctx context.Context, subdomain string) {
	if err := r.redis.Set(ctx, hostKey(subdomain), tombstone, tombstoneTTL); err != nil {
		r.breaker.RecordFailure()
		r.logger.Error("host cache eviction failed",
			slog.String("subdomain", subdomain),
			slog.String("error", err.Error()),
		)
	}
}
