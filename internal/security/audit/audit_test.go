package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/storefront/internal/domain"
	"github.com/aryan0dhankhar/storefront/internal/repository"
)

func TestRecordPersistsEntry(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	site := &domain.Site{OwnerID: "u-1", Name: "Shop", Subdomain: "shop-a", Status: domain.StatusDraft}
	require.NoError(t, store.Sites().Insert(ctx, site))

	al := NewLogger(nil, store.Activity())
	al.Record(ctx, "u-1", site.ID, domain.ActionSiteCreated)
	al.Record(ctx, "u-1", site.ID, domain.ActionSitePublished)

	entries, err := store.Activity().ListBySite(ctx, site.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ActionSitePublished, entries[0].Action)
	assert.Len(t, entries[0].ID, 26)
	assert.Equal(t, "u-1", entries[1].UserID)
}

func TestRecordToleratesMissingSite(t *testing.T) {
	al := NewLogger(nil, repository.NewMemoryStore().Activity())
	assert.NotPanics(t, func() {
		al.Record(context.Background(), "u-1", "gone", domain.ActionContentUpdated)
	})
}
