package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/storefront/internal/domain"
	redisinfra "github.com/aryan0dhankhar/storefront/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/storefront/internal/reliability/circuitbreaker"
)

func setupHostCache(t *testing.T) (*miniredis.Miniredis, *MemorySiteRepository, *CachedSiteRepository) {
	mr := miniredis.RunT(t)
	client, err := redisinfra.NewClient(context.Background(), "redis://"+mr.Addr(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	inner := NewMemoryStore().Sites()
	breaker := circuitbreaker.NewCircuitBreaker(1, 1, time.Hour)
	return mr, inner, NewCachedSiteRepository(inner, client, breaker, time.Minute, nil)
}

func TestHostCache_MissThenHit(t *testing.T) {
	ctx := context.Background()
	mr, inner, repo := setupHostCache(t)

	site := &domain.Site{OwnerID: "o", Name: "Live", Subdomain: "live", Status: domain.StatusPublished}
	require.NoError(t, inner.Insert(ctx, site))

	published := domain.StatusPublished
	got, err := repo.FindBySubdomain(ctx, "live", &published)
	require.NoError(t, err)
	assert.Equal(t, site.ID, got.ID)
	assert.True(t, mr.Exists(hostKey("live")))

	// changed behind the cache's back: the cached copy is served
	site.Name = "Renamed"
	require.NoError(t, inner.Update(ctx, site))
	got, err = repo.FindBySubdomain(ctx, "live", &published)
	require.NoError(t, err)
	assert.Equal(t, "Live", got.Name)
}

func TestHostCache_UnpublishEvicts(t *testing.T) {
	ctx := context.Background()
	mr, inner, repo := setupHostCache(t)

	site := &domain.Site{OwnerID: "o", Name: "Live", Subdomain: "live", Status: domain.StatusPublished}
	require.NoError(t, inner.Insert(ctx, site))

	published := domain.StatusPublished
	_, err := repo.FindBySubdomain(ctx, "live", &published)
	require.NoError(t, err)

	site.Status = domain.StatusDraft
	require.NoError(t, repo.Update(ctx, site))
	got, err := mr.Get(hostKey("live"))
	require.NoError(t, err)
	assert.Equal(t, tombstone, got)
	assert.Equal(t, tombstoneTTL, mr.TTL(hostKey("live")))

	_, err = repo.FindBySubdomain(ctx, "live", &published)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// findHook runs a callback once between the database read and the cache fill
type findHook struct {
	*MemorySiteRepository
	afterRead func()
}

func (h *findHook) FindBySubdomain(ctx context.Context, subdomain string, status *domain.SiteStatus) (*domain.Site, error) {
	site, err := h.MemorySiteRepository.FindBySubdomain(ctx, subdomain, status)
	if fn := h.afterRead; fn != nil {
		h.afterRead = nil
		fn()
	}
	return site, err
}

func TestHostCache_UnpublishDuringFillIsNotCached(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client, err := redisinfra.NewClient(ctx, "redis://"+mr.Addr(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	inner := NewMemoryStore().Sites()
	hooked := &findHook{MemorySiteRepository: inner}
	repo := NewCachedSiteRepository(hooked, client, circuitbreaker.NewCircuitBreaker(1, 1, time.Hour), time.Minute, nil)

	site := &domain.Site{OwnerID: "o", Name: "Live", Subdomain: "live", Status: domain.StatusPublished}
	require.NoError(t, inner.Insert(ctx, site))

	hooked.afterRead = func() {
		draft := *site
		draft.Status = domain.StatusDraft
		require.NoError(t, repo.Update(ctx, &draft))
	}

	published := domain.StatusPublished
	_, err = repo.FindBySubdomain(ctx, "live", &published)
	require.NoError(t, err, "the in-flight lookup still sees its own read")

	raw, err := mr.Get(hostKey("live"))
	require.NoError(t, err)
	assert.Equal(t, tombstone, raw, "stale row must not replace the tombstone")

	_, err = repo.FindBySubdomain(ctx, "live", &published)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHostCache_FillAfterTombstoneExpires(t *testing.T) {
	ctx := context.Background()
	mr, inner, repo := setupHostCache(t)

	site := &domain.Site{OwnerID: "o", Name: "Live", Subdomain: "live", Status: domain.StatusDraft}
	require.NoError(t, inner.Insert(ctx, site))
	site.Status = domain.StatusPublished
	require.NoError(t, repo.Update(ctx, site))

	mr.FastForward(tombstoneTTL + time.Second)

	published := domain.StatusPublished
	got, err := repo.FindBySubdomain(ctx, "live", &published)
	require.NoError(t, err)
	assert.Equal(t, site.ID, got.ID)

	raw, err := mr.Get(hostKey("live"))
	require.NoError(t, err)
	assert.NotEqual(t, tombstone, raw)
}

func TestHostCache_DeleteEvicts(t *testing.T) {
	ctx := context.Background()
	mr, inner, repo := setupHostCache(t)

	site := &domain.Site{OwnerID: "o", Name: "Live", Subdomain: "live", Status: domain.StatusPublished}
	require.NoError(t, inner.Insert(ctx, site))
	published := domain.StatusPublished
	_, err := repo.FindBySubdomain(ctx, "live", &published)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, site.ID))
	raw, err := mr.Get(hostKey("live"))
	require.NoError(t, err)
	assert.Equal(t, tombstone, raw)
}

func TestHostCache_DraftLookupsBypassCache(t *testing.T) {
	ctx := context.Background()
	mr, inner, repo := setupHostCache(t)

	require.NoError(t, inner.Insert(ctx, &domain.Site{OwnerID: "o", Name: "W", Subdomain: "wip", Status: domain.StatusDraft}))
	_, err := repo.FindBySubdomain(ctx, "wip", nil)
	require.NoError(t, err)
	assert.False(t, mr.Exists(hostKey("wip")))
}

func TestHostCache_RedisDownFallsBack(t *testing.T) {
	ctx := context.Background()
	mr, inner, repo := setupHostCache(t)

	site := &domain.Site{OwnerID: "o", Name: "Live", Subdomain: "live", Status: domain.StatusPublished}
	require.NoError(t, inner.Insert(ctx, site))
	mr.Close()

	published := domain.StatusPublished
	for i := 0; i < 3; i++ {
		got, err := repo.FindBySubdomain(ctx, "live", &published)
		require.NoError(t, err)
		assert.Equal(t, site.ID, got.ID)
	}
	assert.Equal(t, circuitbreaker.StateOpen, repo.breaker.GetState())
}
