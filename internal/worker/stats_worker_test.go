package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/storefront/internal/domain"
	"github.com/aryan0dhankhar/storefront/internal/repository"
)

type failingSites struct {
	domain.SiteRepository
}

func (failingSites) CountByStatus(context.Context, domain.SiteStatus) (int, error) {
	return 0, errors.New("database is down")
}

func TestRefreshPublished(t *testing.T) {
	ctx := context.Background()
	sites := repository.NewMemoryStore().Sites()
	for i, status := range []domain.SiteStatus{domain.StatusPublished, domain.StatusDraft, domain.StatusPublished, domain.StatusArchived} {
		sub := []string{"one", "two", "three", "four"}[i]
		require.NoError(t, sites.Insert(ctx, &domain.Site{OwnerID: "o", Name: sub, Subdomain: sub, Status: status}))
	}

	n, err := NewStatsWorker(sites, nil, time.Minute).RefreshPublished(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRefreshPublishedError(t *testing.T) {
	_, err := NewStatsWorker(failingSites{}, nil, 0).RefreshPublished(context.Background())
	assert.Error(t, err)
}

func TestStartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	w := NewStatsWorker(repository.NewMemoryStore().Sites(), nil, 10*time.Millisecond)

	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
