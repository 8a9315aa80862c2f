package domain

import (
	"context"
	"time"
)

// Activity actions recorded against a site
const (
	ActionSiteCreated     = "site_created"
	ActionSiteDuplicated  = "site_duplicated"
	ActionSitePublished   = "site_published"
	ActionSiteUnpublished = "site_unpublished"
	ActionContentUpdated  = "content_updated"
	ActionStyleUpdated    = "style_updated"
	ActionTemplateUpdated = "template_updated"
	ActionSamplesAdded    = "sample_products_added"
	ActionDefaultsFilled  = "defaults_filled"
)

// ActivityEntry is an append-only record of a user action on a site
type ActivityEntry struct {
	ID        string // ULID
	UserID    string
	SiteID    string
	Action    string
	CreatedAt time.Time
}

// ActivityRepository defines data access for activity entries.
// Entries are removed together with their site.
type ActivityRepository interface {
	Record(ctx context.Context, entry *ActivityEntry) error
	ListBySite(ctx context.Context, siteID string, limit int) ([]*ActivityEntry, error)
}
