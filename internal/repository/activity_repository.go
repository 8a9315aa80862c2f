package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/storefront/internal/domain"
)

// PostgresActivityRepository implements domain.ActivityRepository using PostgreSQL
type PostgresActivityRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresActivityRepository creates a new activity repository
func NewPostgresActivityRepository(db *sql.DB, logger *slog.Logger) *PostgresActivityRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresActivityRepository{db: db, logger: logger}
}

// Record appends an activity entry
func (r *PostgresActivityRepository) Record(ctx context.Context, entry *domain.ActivityEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO activity_logs (id, user_id, site_id, action, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, entry.ID, entry.UserID, entry.SiteID, entry.Action, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// ListBySite returns a site's most recent entries first; limit <= 0 means all
func (r *PostgresActivityRepository) ListBySite(ctx context.Context, siteID string, limit int) ([]*domain.ActivityEntry, error) {
	query := `
		SELECT id, user_id, site_id, action, created_at
		FROM activity_logs
		WHERE site_id = $1
		ORDER BY id DESC
	`
	args := []any{siteID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var out []*domain.ActivityEntry
	for rows.Next() {
		e := &domain.ActivityEntry{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.SiteID, &e.Action, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ domain.ActivityRepository = (*PostgresActivityRepository)(nil)
