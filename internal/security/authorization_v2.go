package security

import (
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/storefront/internal/domain"
)

// OwnershipGuard checks resource-level access to sites. Only the owner may
// read privately or mutate a site; roles grant no bypass.
type OwnershipGuard struct {
	logger *slog.Logger
}

// NewOwnershipGuard creates a new ownership guard
func NewOwnershipGuard(logger *slog.Logger) *OwnershipGuard {
	if logger == nil {
		logger = slog.Default()
	}
	return &OwnershipGuard{logger: logger}
}

// ValidateSiteAccess returns domain.ErrUnauthorized unless actor owns site
func (g *OwnershipGuard) ValidateSiteAccess(actor *domain.User, site *domain.Site) error {
	if actor == nil || site == nil || actor.ID == "" || site.OwnerID != actor.ID {
		actorID := ""
		if actor != nil {
			actorID = actor.ID
		}
		siteID := ""
		if site != nil {
			siteID = site.ID
		}
		g.logger.Warn("site access denied",
			slog.String("user_id", actorID),
			slog.String("site_id", siteID),
		)
		return fmt.Errorf("%w: site %s", domain.ErrUnauthorized, siteID)
	}
	return nil
}
