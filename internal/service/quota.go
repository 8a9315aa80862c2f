package service

import (
	"context"
	"fmt"

	"github.com/aryan0dhankhar/storefront/internal/domain"
)

// QuotaOracle decides whether an owner may create another site
type QuotaOracle interface {
	CanCreateSite(ctx context.Context, owner *domain.User) (bool, error)
}

// RoleQuotaOracle limits sites per owner by role. Every site counts,
// whatever its status.
type RoleQuotaOracle struct {
	sites           domain.SiteRepository
	userLimit       int
	privilegedLimit int
}

// NewRoleQuotaOracle creates an oracle granting userLimit sites to
// domain.RoleUser and privilegedLimit to any other role
func NewRoleQuotaOracle(sites domain.SiteRepository, userLimit, privilegedLimit int) *RoleQuotaOracle {
	return &RoleQuotaOracle{sites: sites, userLimit: userLimit, privilegedLimit: privilegedLimit}
}

// Limit returns the site allowance for role
func (q *RoleQuotaOracle) Limit(role domain.Role) int {
	if role == domain.RoleUser || role == "" {
		return q.userLimit
	}
	return q.privilegedLimit
}

func (q *RoleQuotaOracle) CanCreateSite(ctx context.Context, owner *domain.User) (bool, error) {
	n, err := q.sites.CountByOwner(ctx, owner.ID)
	if err != nil {
		return false, fmt.Errorf("failed to count sites: %w", err)
	}
	return n < q.Limit(owner.Role), nil
}
