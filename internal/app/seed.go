package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/storefront/internal/domain"
)

// DefaultTemplates is the starter catalogue
var DefaultTemplates = []domain.Template{
	{
		Name:        "Template Portfolio",
		Description: "Un template élégant pour présenter vos projets et votre parcours professionnel.",
		Category:    "Portfolio",
		PreviewURL:  "/static/img/templates/portfolio.jpg",
		IsActive:    true,
	},
	{
		Name:        "E-commerce Moderne",
		Description: "Template optimisé pour la vente en ligne avec un design moderne et responsive.",
		Category:    "E-commerce",
		PreviewURL:  "/static/img/templates/ecommerce.jpg",
		IsActive:    true,
	},
	{
		Name:        "Blog Minimaliste",
		Description: "Design épuré parfait pour les blogueurs et créateurs de contenu.",
		Category:    "Blog",
		PreviewURL:  "/static/img/templates/blog.jpg",
		IsActive:    true,
	},
}

// SeedTemplates upserts DefaultTemplates. Running it twice changes nothing.
func SeedTemplates(ctx context.Context, templates domain.TemplateRepository, log *slog.Logger) ([]*domain.Template, error) {
	out := make([]*domain.Template, 0, len(DefaultTemplates))
	for _, def := range DefaultTemplates {
		t := def
		if err := templates.Upsert(ctx, &t); err != nil {
			return nil, fmt.Errorf("failed to seed template %q: %w", t.Name, err)
		}
		out = append(out, &t)
	}
	log.Info("templates seeded", slog.Int("count", len(out)))
	return out, nil
}
