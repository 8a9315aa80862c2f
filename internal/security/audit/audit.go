package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"

	"github.com/aryan0dhankhar/storefront/internal/domain"
)

// Logger records user actions on sites. Entries are persisted through the
// activity repository and mirrored to the structured log.
type Logger struct {
	logger   *slog.Logger
	activity domain.ActivityRepository
}

// NewLogger creates an audit logger; a nil repository only logs
func NewLogger(logger *slog.Logger, activity domain.ActivityRepository) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger, activity: activity}
}

// Record persists an activity entry for siteID. Persistence failures are
// logged and never fail the action that triggered them.
func (al *Logger) Record(ctx context.Context, userID, siteID, action string) {
	entry := &domain.ActivityEntry{
		ID:        ulid.Make().String(),
		UserID:    userID,
		SiteID:    siteID,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}
	if al.activity != nil {
		if err := al.activity.Record(ctx, entry); err != nil {
			al.logger.Warn("failed to persist activity",
				slog.String("action", action),
				slog.String("site_id", siteID),
				slog.String("error", err.Error()),
			)
		}
	}
	al.LogAction(ctx, userID, action, "site", siteID, "success", "")
}

// LogAction writes an audit line without persisting it
func (al *Logger) LogAction(ctx context.Context, userID, action, resource, resourceID, status, details string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("user_id", userID),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", middleware.GetReqID(ctx)),
	)
}

// LogDeletion logs a site removal; the site's entries go with it
func (al *Logger) LogDeletion(ctx context.Context, userID, siteID string) {
	al.LogAction(ctx, userID, "site_deleted", "site", siteID, "success", "")
}

func (al *Logger) LogDenied(ctx context.Context, userID, resourceID, reason string) {
	al.LogAction(ctx, userID, "access_denied", "site", resourceID, "denied", reason)
}
