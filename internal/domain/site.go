package domain

import (
	"context"
	"time"
)

// SiteStatus is the publication state of a site
type SiteStatus string

const (
	StatusDraft     SiteStatus = "draft"
	StatusPublished SiteStatus = "published"
	StatusArchived  SiteStatus = "archived"
)

// DefaultTemplateID is used for rendering when a site has no template
const DefaultTemplateID int64 = 1

// Site is one tenant micro-site served at <Subdomain>.<base domain>
type Site struct {
	ID         string // UUID
	OwnerID    string // UUID of the owning user
	Name       string
	Subdomain  string // Globally unique, whatever the status
	TemplateID *int64 // nil renders with DefaultTemplateID
	Status     SiteStatus
	Content    string // Serialized content document
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EffectiveTemplateID returns the template the site renders with
func (s *Site) EffectiveTemplateID() int64 {
	if s.TemplateID == nil {
		return DefaultTemplateID
	}
	return *s.TemplateID
}

// IsPublished reports whether the site is served publicly
func (s *Site) IsPublished() bool {
	return s.Status == StatusPublished
}

// URL returns the public address of the site
func (s *Site) URL(baseDomain string) string {
	return "https://" + s.Subdomain + "." + baseDomain
}

// SiteRepository defines data access for sites.
// Lookups return ErrNotFound when no row matches.
type SiteRepository interface {
	// FindBySubdomain matches any status when status is nil
	FindBySubdomain(ctx context.Context, subdomain string, status *SiteStatus) (*Site, error)
	GetByID(ctx context.Context, id string) (*Site, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	CountByStatus(ctx context.Context, status SiteStatus) (int, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Site, error)
	// Insert returns ErrSubdomainTaken when the subdomain is already used
	Insert(ctx context.Context, site *Site) error
	Update(ctx context.Context, site *Site) error
	// Delete removes the site and its activity entries
	Delete(ctx context.Context, id string) error
}
