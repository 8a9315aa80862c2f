package domain

import (
	"context"
	"time"
)

// Template is read-only reference data describing a storefront layout
type Template struct {
	ID          int64
	Name        string
	Description string
	Category    string
	PreviewURL  string
	IsActive    bool
	CreatedAt   time.Time
}

// TemplateRepository defines data access for templates
type TemplateRepository interface {
	ListActive(ctx context.Context) ([]*Template, error)
	GetByID(ctx context.Context, id int64) (*Template, error)
	// Upsert is used by seeding; matches on name
	Upsert(ctx context.Context, t *Template) error
}
