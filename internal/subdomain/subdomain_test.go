package subdomain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/storefront/internal/domain"
	"github.com/aryan0dhankhar/storefront/internal/repository"
)

func TestIsValidFormat(t *testing.T) {
	v := NewValidator(nil)

	valid := []string{"abc", "my-shop", "a1b2", "shop-2024", strings.Repeat("a", 63)}
	for _, s := range valid {
		assert.True(t, v.IsValidFormat(s), s)
	}

	invalid := []string{"", "ab", strings.Repeat("a", 64), "-abc", "abc-", "ABC", "a_b", "a.b", "héllo"}
	for _, s := range invalid {
		assert.False(t, v.IsValidFormat(s), s)
	}
}

func TestReservedNames(t *testing.T) {
	v := NewValidator(nil)
	for _, r := range DefaultReserved {
		assert.False(t, v.IsValidFormat(r), r)
		assert.True(t, v.IsReserved(strings.ToUpper(r)), r)
	}
	assert.ErrorIs(t, v.Check("admin"), domain.ErrReserved)
	assert.ErrorIs(t, v.Check("a"), domain.ErrInvalidFormat)

	custom := NewValidator([]string{"Boutique"})
	assert.True(t, custom.IsReserved("boutique"))
	assert.True(t, custom.IsValidFormat("admin"))
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"":                    "my-site",
		"   ":                 "my-site",
		"!!!":                 "my-site",
		"My Shop":             "my-shop",
		"  Hello   World  ":   "hello-world",
		"Café & Co.":          "café-co",
		"a":                   "a-site",
		"--x--":               "x-site",
		"Ma boutique - Paris": "ma-boutique-paris",
		"under_score":         "under_score",
		"x\u00a0y":            "x-y",
		"Ma\vBoutique":        "ma-boutique",
		"shop\u2003paris":     "shop-paris",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}

	long := Slugify(strings.Repeat("ab ", 40))
	assert.LessOrEqual(t, len(long), MaxLength)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestSlugifyIsIdempotent(t *testing.T) {
	inputs := []string{
		"", "a", "My Shop", "Café & Co.", "x", "--", "Ma boutique <3",
		strings.Repeat("word ", 30), strings.Repeat("é", 70), "A-B", "  ok  ",
	}
	for _, in := range inputs {
		once := Slugify(in)
		assert.Equal(t, once, Slugify(once), "input %q", in)
	}
}

func TestTenantLabel(t *testing.T) {
	cases := []struct {
		host  string
		label string
		ok    bool
	}{
		{"boutique.miabesite.site", "boutique", true},
		{"boutique.miabesite.site:8080", "boutique", true},
		{"BOUTIQUE.miabesite.site", "boutique", true},
		{"a.b.miabesite.site", "b", true},
		{"miabesite.site", "", false},
		{"miabesite.site:443", "", false},
		{"www.miabesite.site", "", false},
		{"evilmiabesite.site", "", false},
		{"boutique.example.com", "", false},
	}
	for _, tc := range cases {
		label, ok := TenantLabel(tc.host, "miabesite.site")
		assert.Equal(t, tc.ok, ok, tc.host)
		assert.Equal(t, tc.label, label, tc.host)
	}

	label, ok := TenantLabel("shop1.localhost:5000", "localhost:5000")
	assert.True(t, ok)
	assert.Equal(t, "shop1", label)
}

func seed(t *testing.T, sites *repository.MemorySiteRepository, sub string, status domain.SiteStatus) *domain.Site {
	t.Helper()
	s := &domain.Site{OwnerID: "owner", Name: sub, Subdomain: sub, Status: status}
	require.NoError(t, sites.Insert(context.Background(), s))
	return s
}

func TestResolveHost(t *testing.T) {
	ctx := context.Background()
	sites := repository.NewMemoryStore().Sites()
	pub := seed(t, sites, "live", domain.StatusPublished)
	seed(t, sites, "wip", domain.StatusDraft)
	dir := NewDirectory(sites, nil, nil)

	got, err := dir.ResolveHost(ctx, "live.miabesite.site:5000", "miabesite.site")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, pub.ID, got.ID)

	got, err = dir.ResolveHost(ctx, "wip.miabesite.site", "miabesite.site")
	require.NoError(t, err)
	assert.Nil(t, got, "drafts are never served")

	got, err = dir.ResolveHost(ctx, "missing.miabesite.site", "miabesite.site")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = dir.ResolveHost(ctx, "www.miabesite.site", "miabesite.site")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIsAvailable(t *testing.T) {
	ctx := context.Background()
	sites := repository.NewMemoryStore().Sites()
	seed(t, sites, "taken", domain.StatusDraft)
	dir := NewDirectory(sites, nil, nil)

	ok, err := dir.IsAvailable(ctx, "taken")
	require.NoError(t, err)
	assert.False(t, ok, "drafts still own their subdomain")

	ok, err = dir.IsAvailable(ctx, "free-one")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = dir.IsAvailable(ctx, "api")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNextAvailable(t *testing.T) {
	ctx := context.Background()
	sites := repository.NewMemoryStore().Sites()
	dir := NewDirectory(sites, nil, nil)

	got, err := dir.NextAvailable(ctx, "shop")
	require.NoError(t, err)
	assert.Equal(t, "my-site", got, "reserved base falls back")

	seed(t, sites, "foo", domain.StatusDraft)
	seed(t, sites, "foo-1", domain.StatusPublished)
	seed(t, sites, "foo-2", domain.StatusArchived)
	got, err = dir.NextAvailable(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, "foo-3", got)

	got, idx, err := dir.NextAvailableFrom(ctx, "foo", 5)
	require.NoError(t, err)
	assert.Equal(t, "foo-5", got)
	assert.Equal(t, 5, idx)
}

func TestNextAvailableExhausted(t *testing.T) {
	ctx := context.Background()
	sites := repository.NewMemoryStore().Sites()
	for n := 0; n < MaxProbes; n++ {
		seed(t, sites, Candidate("full", n), domain.StatusDraft)
	}
	dir := NewDirectory(sites, nil, nil)

	// full-100 is free but lies beyond the probe ceiling
	_, err := dir.NextAvailable(ctx, "full")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNamespaceExhausted))
}

func TestCandidateStaysWithinMaxLength(t *testing.T) {
	base := strings.Repeat("a", MaxLength)
	assert.Equal(t, base, Candidate(base, 0))

	got := Candidate(base, 12)
	assert.Len(t, got, MaxLength)
	assert.True(t, strings.HasSuffix(got, "-12"))
	assert.True(t, NewValidator(nil).IsValidFormat(got))
}
