package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aryan0dhankhar/storefront/internal/domain"
	"github.com/aryan0dhankhar/storefront/pkg/cache"
)

const activeTemplatesKey = "templates:active"

// CachedTemplateRepository keeps template reads in process memory.
// Templates are reference data that only change through seeding.
type CachedTemplateRepository struct {
	next  domain.TemplateRepository
	lists *cache.Cache[[]*domain.Template]
	byID  *cache.Cache[*domain.Template]
	ttl   time.Duration
}

// NewCachedTemplateRepository wraps next with a TTL cache
func NewCachedTemplateRepository(next domain.TemplateRepository, ttl time.Duration) *CachedTemplateRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedTemplateRepository{
		next:  next,
		lists: cache.New[[]*domain.Template](),
		byID:  cache.New[*domain.Template](),
		ttl:   ttl,
	}
}

func (r *CachedTemplateRepository) ListActive(ctx context.Context) ([]*domain.Template, error) {
	return r.lists.GetOrLoad(activeTemplatesKey, r.ttl, func() ([]*domain.Template, error) {
		return r.next.ListActive(ctx)
	})
}

func (r *CachedTemplateRepository) GetByID(ctx context.Context, id int64) (*domain.Template, error) {
	return r.byID.GetOrLoad(fmt.Sprintf("template:%d", id), r.ttl, func() (*domain.Template, error) {
		return r.next.GetByID(ctx, id)
	})
}

// Upsert writes through and drops every cached entry
func (r *CachedTemplateRepository) Upsert(ctx context.Context, t *domain.Template) error {
	if err := r.next.Upsert(ctx, t); err != nil {
		return err
	}
	r.lists.Clear()
	r.byID.Clear()
	return nil
}
