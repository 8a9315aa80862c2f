// Package worker runs background loops alongside the HTTP server.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/storefront/internal/domain"
	"github.com/aryan0dhankhar/storefront/internal/observability/metrics"
)

// StatsWorker periodically recounts published sites so the gauge survives
// restarts and writes made by other replicas
type StatsWorker struct {
	sites    domain.SiteRepository
	logger   *slog.Logger
	interval time.Duration
}

// NewStatsWorker creates a new stats worker
func NewStatsWorker(sites domain.SiteRepository, logger *slog.Logger, interval time.Duration) *StatsWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &StatsWorker{sites: sites, logger: logger, interval: interval}
}

// Start runs until ctx is cancelled. The first count happens immediately.
func (w *StatsWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("stats worker started", slog.Duration("interval", w.interval))
	_, _ = w.RefreshPublished(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stats worker stopped")
			return
		case <-ticker.C:
			_, _ = w.RefreshPublished(ctx)
		}
	}
}

// RefreshPublished overwrites the published-sites gauge with the stored count
func (w *StatsWorker) RefreshPublished(ctx context.Context) (int, error) {
	n, err := w.sites.CountByStatus(ctx, domain.StatusPublished)
	if err != nil {
		w.logger.Error("failed to count published sites", slog.String("error", err.Error()))
		return 0, err
	}
	metrics.SetPublishedSites(n)
	w.logger.Debug("published sites recounted", slog.Int("count", n))
	return n, nil
}
