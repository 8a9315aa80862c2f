package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/aryan0dhankhar/storefront/internal/domain"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a UNIQUE constraint failure
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// PostgresSiteRepository implements domain.SiteRepository using PostgreSQL
type PostgresSiteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresSiteRepository creates a new site repository
func NewPostgresSiteRepository(db *sql.DB, logger *slog.Logger) *PostgresSiteRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSiteRepository{db: db, logger: logger}
}

const siteColumns = `id, owner_id, name, subdomain, template_id, status, content, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSite(row rowScanner) (*domain.Site, error) {
	s := &domain.Site{}
	var templateID sql.NullInt64
	var status string
	if err := row.Scan(
		&s.ID, &s.OwnerID, &s.Name, &s.Subdomain, &templateID, &status, &s.Content, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.Status = domain.SiteStatus(status)
	if templateID.Valid {
		id := templateID.Int64
		s.TemplateID = &id
	}
	return s, nil
}

func nullTemplateID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

// FindBySubdomain retrieves a site by subdomain, optionally filtered by status
func (r *PostgresSiteRepository) FindBySubdomain(ctx context.Context, subdomain string, status *domain.SiteStatus) (*domain.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites WHERE subdomain = $1`
	args := []any{subdomain}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, string(*status))
	}

	s, err := scanSite(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get site by subdomain: %w", err)
	}
	return s, nil
}

// GetByID retrieves a site by ID
func (r *PostgresSiteRepository) GetByID(ctx context.Context, id string) (*domain.Site, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	query := `SELECT ` + siteColumns + ` FROM sites WHERE id = $1`
	s, err := scanSite(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get site: %w", err)
	}
	return s, nil
}

// CountByOwner counts an owner's sites across all statuses
func (r *PostgresSiteRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sites WHERE owner_id = $1`, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count sites: %w", err)
	}
	return n, nil
}

// CountByStatus counts sites in one publication state
func (r *PostgresSiteRepository) CountByStatus(ctx context.Context, status domain.SiteStatus) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sites WHERE status = $1`, string(status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count sites by status: %w", err)
	}
	return n, nil
}

// ListByOwner returns an owner's sites, newest first
func (r *PostgresSiteRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Site, error) {
	query := `
		SELECT ` + siteColumns + `
		FROM sites
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var out []*domain.Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Insert creates a site. A taken subdomain yields domain.ErrSubdomainTaken.
func (r *PostgresSiteRepository) Insert(ctx context.Context, site *domain.Site) error {
	if site.ID == "" {
		site.ID = uuid.NewString()
	}
	query := `
		INSERT INTO sites (id, owner_id, name, subdomain, template_id, status, content)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		site.ID,
		site.OwnerID,
		site.Name,
		site.Subdomain,
		nullTemplateID(site.TemplateID),
		string(site.Status),
		site.Content,
	).Scan(&site.CreatedAt, &site.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Debug("subdomain insert conflict", slog.String("subdomain", site.Subdomain))
			return domain.ErrSubdomainTaken
		}
		return fmt.Errorf("failed to insert site: %w", err)
	}
	return nil
}

// Update overwrites the mutable columns of a site; last writer wins
func (r *PostgresSiteRepository) Update(ctx context.Context, site *domain.Site) error {
	query := `
		UPDATE sites
		SET name = $1, template_id = $2, status = $3, content = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		site.Name,
		nullTemplateID(site.TemplateID),
		string(site.Status),
		site.Content,
		site.ID,
	).Scan(&site.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to update site: %w", err)
	}
	return nil
}

// Delete removes a site together with its activity entries
func (r *PostgresSiteRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM activity_logs WHERE site_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete site activity: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM sites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit site deletion: %w", err)
	}
	return nil
}
