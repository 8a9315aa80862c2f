package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/storefront/internal/domain"
)

// PostgresTemplateRepository implements domain.TemplateRepository using PostgreSQL
type PostgresTemplateRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresTemplateRepository creates a new template repository
func NewPostgresTemplateRepository(db *sql.DB, logger *slog.Logger) *PostgresTemplateRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTemplateRepository{db: db, logger: logger}
}

const templateColumns = `id, name, description, category, preview_url, is_active, created_at`

func scanTemplate(row rowScanner) (*domain.Template, error) {
	t := &domain.Template{}
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Category, &t.PreviewURL, &t.IsActive, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

// ListActive returns active templates ordered by id
func (r *PostgresTemplateRepository) ListActive(ctx context.Context) ([]*domain.Template, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM templates
		WHERE is_active = TRUE
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var out []*domain.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetByID retrieves a template by ID, active or not
func (r *PostgresTemplateRepository) GetByID(ctx context.Context, id int64) (*domain.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE id = $1`
	t, err := scanTemplate(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}

// Upsert inserts a template or refreshes the one with the same name
func (r *PostgresTemplateRepository) Upsert(ctx context.Context, t *domain.Template) error {
	query := `
		INSERT INTO templates (name, description, category, preview_url, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE
		SET description = EXCLUDED.description,
		    category = EXCLUDED.category,
		    preview_url = EXCLUDED.preview_url,
		    is_active = EXCLUDED.is_active
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, t.Name, t.Description, t.Category, t.PreviewURL, t.IsActive).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert template %q: %w", t.Name, err)
	}
	return nil
}
