package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/storefront/internal/domain"
	"github.com/aryan0dhankhar/storefront/internal/repository"
	"github.com/aryan0dhankhar/storefront/internal/security"
	"github.com/aryan0dhankhar/storefront/internal/security/audit"
	"github.com/aryan0dhankhar/storefront/internal/security/auth"
	"github.com/aryan0dhankhar/storefront/internal/security/middleware"
	"github.com/aryan0dhankhar/storefront/internal/security/ratelimit"
	"github.com/aryan0dhankhar/storefront/internal/service"
	"github.com/aryan0dhankhar/storefront/internal/subdomain"
)

const testBaseDomain = "miabesite.site"

type testServer struct {
	handler http.Handler
	store   *repository.MemoryStore
	tokens  *auth.TokenManager
	alice   *domain.User
	bob     *domain.User
	admin   *domain.User
}

func newTestServer(t *testing.T, limiter *ratelimit.Limiter) *testServer {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()

	require.NoError(t, store.Templates().Upsert(ctx, &domain.Template{Name: "Boutique", Category: "ecommerce", IsActive: true}))

	ts := &testServer{store: store, tokens: auth.NewTokenManager("test-secret", "storefront")}
	for _, u := range []**domain.User{&ts.alice, &ts.bob, &ts.admin} {
		*u = &domain.User{Role: domain.RoleUser}
	}
	ts.alice.Email, ts.alice.Username = "alice@example.com", "alice"
	ts.bob.Email, ts.bob.Username = "bob@example.com", "bob"
	ts.admin.Email, ts.admin.Username, ts.admin.Role = "root@example.com", "root", domain.RoleAdmin
	for _, u := range []*domain.User{ts.alice, ts.bob, ts.admin} {
		require.NoError(t, store.Users().Create(ctx, u))
	}

	sites := store.Sites()
	dir := subdomain.NewDirectory(sites, nil, nil)
	auditLog := audit.NewLogger(nil, store.Activity())
	svc := service.NewSiteService(sites, store.Templates(), store.Users(), store.Activity(), dir,
		service.NewRoleQuotaOracle(sites, 3, 10), auditLog, nil)

	ts.handler = NewRouter(RouterDeps{
		Sites:      NewSiteHandler(svc, testBaseDomain, limiter, nil),
		Templates:  NewTemplateHandler(store.Templates(), nil),
		Subdomains: NewSubdomainHandler(svc, nil),
		Storefront: NewStorefrontHandler(dir, testBaseDomain, nil),
		Health:     NewHealthHandler(nil, nil, nil),
		Tokens:     ts.tokens,
		Authz:      security.NewAuthorizationService(nil),
		Audit:      auditLog,
	})
	return ts
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func (ts *testServer) do(t *testing.T, method, path string, user *domain.User, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		token, err := ts.tokens.GenerateToken(user, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func (ts *testServer) host(t *testing.T, host, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Host = host
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func readyContent() map[string]any {
	return map[string]any{
		"store_name":    "Fleurs de Lomé",
		"hero_title":    "Bienvenue",
		"hero_subtitle": "Bouquets frais",
		"contact_email": "contact@fleurs.example",
		"products": []map[string]any{
			{"id": 1, "name": "Rose", "price": 2500, "description": "Rouge", "in_stock": true},
		},
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, _ := ts.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = ts.do(t, http.MethodGet, "/readyz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "not configured")
}

func TestReadyReportsFailingDependency(t *testing.T) {
	h := NewHealthHandler(PingFunc(func(context.Context) error { return errors.New("connection refused") }), nil, nil)
	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "error: connection refused", resp.Checks["database"])
	assert.Equal(t, "not configured", resp.Checks["redis"])
}

func TestSitesRequireToken(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, env := ts.do(t, http.MethodGet, "/api/sites", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "unauthorized", env.Error.Code)
}

func TestCreateSiteEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, env := ts.do(t, http.MethodPost, "/api/sites", ts.alice, map[string]any{"name": "Ma Boutique", "template_id": 1})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	site := decodeData[SiteResponse](t, env)
	assert.Equal(t, "ma-boutique", site.Subdomain)
	assert.Equal(t, "https://ma-boutique.miabesite.site", site.URL)
	assert.Equal(t, "draft", site.Status)
	assert.Equal(t, int64(1), site.TemplateID)

	rec, env = ts.do(t, http.MethodGet, "/api/sites", ts.alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]SiteResponse](t, env), 1)

	rec, env = ts.do(t, http.MethodGet, "/api/sites", ts.bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[[]SiteResponse](t, env))
}

func TestCreateSiteBadRequests(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, env := ts.do(t, http.MethodPost, "/api/sites", ts.alice, map[string]any{"name": "Shop"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_error", env.Error.Code)
	assert.Contains(t, env.Error.Details, "template_id")

	rec, _ = ts.do(t, http.MethodPost, "/api/sites", ts.alice, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = ts.do(t, http.MethodPost, "/api/sites", ts.alice, map[string]any{"name": "Shop", "template_id": 42})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)

	req := httptest.NewRequest(http.MethodPost, "/api/sites", bytes.NewBufferString("name=Shop"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	token, err := ts.tokens.GenerateToken(ts.alice, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	ts.handler.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, recorder.Code)
}

func TestQuotaExceededEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	for i := 0; i < 3; i++ {
		rec, _ := ts.do(t, http.MethodPost, "/api/sites", ts.alice, map[string]any{"name": "Shop", "template_id": 1})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec, env := ts.do(t, http.MethodPost, "/api/sites", ts.alice, map[string]any{"name": "Shop", "template_id": 1})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	require.NotNil(t, env.Error)
}

func TestPublishAndServeStorefront(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, env := ts.do(t, http.MethodPost, "/api/sites", ts.alice, map[string]any{"name": "Fleurs", "template_id": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	site := decodeData[SiteResponse](t, env)
	base := "/api/sites/" + site.ID

	rec, env = ts.do(t, http.MethodPost, base+"/publish", ts.alice, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_ready", env.Error.Code)

	rec, _ = ts.host(t, "fleurs.miabesite.site", "/")
	assert.Equal(t, http.StatusNotFound, rec.Code, "drafts are not served")

	rec, env = ts.do(t, http.MethodPost, base+"/content", ts.alice, readyContent())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeData[ContentResponse](t, env).IsReady)

	rec, env = ts.do(t, http.MethodPost, base+"/publish", ts.alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "published", decodeData[SiteResponse](t, env).Status)

	rec, env = ts.host(t, "fleurs.miabesite.site:443", "/")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeData[StorefrontPage](t, env)
	assert.Equal(t, "Fleurs de Lomé", page.StoreName)
	assert.Equal(t, "fleurs", page.Subdomain)
	assert.Equal(t, int64(1), page.TemplateID)
	require.Len(t, page.Content.Products, 1)

	rec, env = ts.host(t, "fleurs.miabesite.site", "/product/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Rose", decodeData[ProductPage](t, env).Product.Name)

	rec, _ = ts.host(t, "fleurs.miabesite.site", "/product/99")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = ts.host(t, "fleurs.miabesite.site", "/product/rose")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = ts.host(t, "missing.miabesite.site", "/")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = ts.do(t, http.MethodPost, base+"/unpublish", ts.alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "draft", decodeData[SiteResponse](t, env).Status)
	rec, _ = ts.host(t, "fleurs.miabesite.site", "/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContentRejectsInvalidDocument(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, env := ts.do(t, http.MethodPost, "/api/sites", ts.alice, map[string]any{"name": "Shop", "template_id": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/sites/" + decodeData[SiteResponse](t, env).ID

	doc := readyContent()
	doc["products"] = []map[string]any{{"id": 1, "name": "Rose", "price": "gratuit", "description": "Rouge"}}
	rec, env = ts.do(t, http.MethodPost, base+"/content", ts.alice, doc)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_error", env.Error.Code)
	assert.Equal(t, "must be a number", env.Error.Details["products[0].price"])

	rec, _ = ts.do(t, http.MethodPost, base+"/content", ts.alice, "[]")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	mistyped := readyContent()
	mistyped["hero_title"] = 12
	mistyped["style"] = "rouge"
	rec, env = ts.do(t, http.MethodPost, base+"/content", ts.alice, mistyped)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_error", env.Error.Code)
	assert.Equal(t, "must be a string", env.Error.Details["hero_title"])
	assert.Equal(t, "must be an object", env.Error.Details["style"])

	rec, env = ts.do(t, http.MethodGet, base+"/validation", ts.alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report struct {
		IsReady bool `json:"is_ready"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.False(t, report.IsReady)
}

func TestContentKeepsUnknownKeys(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, env := ts.do(t, http.MethodPost, "/api/sites", ts.alice, map[string]any{"name": "Shop", "template_id": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/sites/" + decodeData[SiteResponse](t, env).ID

	doc := readyContent()
	doc["custom_banner"] = "Soldes"
	doc["meta"] = map[string]any{"views": 3}
	rec, _ = ts.do(t, http.MethodPost, base+"/content", ts.alice, doc)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = ts.do(t, http.MethodGet, base+"/content", ts.alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeData[map[string]any](t, env)
	assert.Equal(t, "Soldes", got["custom_banner"])
	assert.Equal(t, map[string]any{"views": float64(3)}, got["meta"])
	assert.Equal(t, "Fleurs de Lomé", got["store_name"])
}

func TestContentBodyLimit(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, env := ts.do(t, http.MethodPost, "/api/sites", ts.alice, map[string]any{"name": "Shop", "template_id": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	path := "/api/sites/" + decodeData[SiteResponse](t, env).ID + "/content"

	huge := readyContent()
	huge["about_description"] = strings.Repeat("x", int(middleware.MaxBodyBytes))
	rec, env = ts.do(t, http.MethodPost, path, ts.alice, huge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "payload_too_large", env.Error.Code)

	// no declared length: the cap trips while decoding
	body, err := json.Marshal(huge)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, io.MultiReader(bytes.NewReader(body)))
	req.Header.Set("Content-Type", "application/json")
	token, err := ts.tokens.GenerateToken(ts.alice, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	streamed := httptest.NewRecorder()
	ts.handler.ServeHTTP(streamed, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, streamed.Code)
}

func TestOtherOwnerIsForbidden(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, env := ts.do(t, http.MethodPost, "/api/sites", ts.alice, map[string]any{"name": "Shop", "template_id": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/sites/" + decodeData[SiteResponse](t, env).ID

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, base},
		{http.MethodGet, base + "/content"},
		{http.MethodPost, base + "/publish"},
		{http.MethodPost, base + "/duplicate"},
		{http.MethodDelete, base},
	} {
		rec, _ := ts.do(t, tc.method, tc.path, ts.bob, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", tc.method, tc.path)
	}

	rec, _ = ts.do(t, http.MethodGet, "/api/sites/00000000-0000-0000-0000-000000000000", ts.alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSiteLifecycleEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, env := ts.do(t, http.MethodPost, "/api/sites/quick", ts.alice, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	site := decodeData[SiteResponse](t, env)
	assert.Equal(t, "ma-boutique-alice", site.Subdomain)
	base := "/api/sites/" + site.ID

	rec, env = ts.do(t, http.MethodPost, base+"/style", ts.alice, map[string]string{"primary_color": "#ff0000"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = ts.do(t, http.MethodPost, base+"/sample-products", ts.alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = ts.do(t, http.MethodPost, base+"/fill-defaults", ts.alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = ts.do(t, http.MethodPost, base+"/template", ts.alice, map[string]any{"template_id": 1})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = ts.do(t, http.MethodGet, base+"/preview", ts.alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeData[StorefrontPage](t, env)
	assert.True(t, page.Preview)
	assert.Equal(t, site.Subdomain, page.Subdomain)

	rec, env = ts.do(t, http.MethodPost, base+"/duplicate", ts.alice, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	dup := decodeData[SiteResponse](t, env)
	assert.Equal(t, "ma-boutique-alice-copy", dup.Subdomain)
	assert.NotEqual(t, site.ID, dup.ID)

	rec, env = ts.do(t, http.MethodGet, base+"/activity", ts.alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeData[[]ActivityResponse](t, env))
	rec, _ = ts.do(t, http.MethodGet, base+"/activity?limit=0", ts.alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = ts.do(t, http.MethodDelete, base, ts.alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = ts.do(t, http.MethodGet, base, ts.alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContentRateLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(2, time.Minute, 2)
	defer limiter.Stop()
	ts := newTestServer(t, limiter)

	rec, env := ts.do(t, http.MethodPost, "/api/sites", ts.alice, map[string]any{"name": "Shop", "template_id": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	path := "/api/sites/" + decodeData[SiteResponse](t, env).ID + "/content"

	for i := 0; i < 2; i++ {
		rec, _ = ts.do(t, http.MethodGet, path, ts.alice, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, _ = ts.do(t, http.MethodGet, path, ts.alice, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// other routes and other owners are unaffected
	rec, _ = ts.do(t, http.MethodGet, "/api/sites", ts.alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = ts.do(t, http.MethodGet, path, ts.bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTemplateEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, env := ts.do(t, http.MethodGet, "/api/templates", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeData[[]TemplateResponse](t, env)
	require.Len(t, list, 1)
	assert.Equal(t, "Boutique", list[0].Name)

	body := map[string]any{"name": "Restaurant", "category": "food"}
	rec, _ = ts.do(t, http.MethodPost, "/api/templates", nil, body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = ts.do(t, http.MethodPost, "/api/templates", ts.alice, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = ts.do(t, http.MethodPost, "/api/templates", ts.admin, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(2), decodeData[TemplateResponse](t, env).ID)

	rec, _ = ts.do(t, http.MethodPost, "/api/templates", ts.admin, map[string]any{"category": "food"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubdomainCheckEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, _ := ts.do(t, http.MethodPost, "/api/sites", ts.alice, map[string]any{"name": "Fleurs", "template_id": 1})
	require.Equal(t, http.StatusCreated, rec.Code)

	cases := map[string]service.SubdomainCheck{
		"admin":    {Subdomain: "admin", Reason: "reserved"},
		"a":        {Subdomain: "a", Reason: "invalid"},
		"fleurs":   {Subdomain: "fleurs", Reason: "taken"},
		"new-shop": {Subdomain: "new-shop", Available: true},
	}
	for candidate, want := range cases {
		rec, env := ts.do(t, http.MethodGet, "/api/subdomains/check?subdomain="+candidate, ts.alice, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, want, decodeData[service.SubdomainCheck](t, env), candidate)
	}

	rec, _ = ts.do(t, http.MethodGet, "/api/subdomains/check", ts.alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/sites", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "template_id", toSnake("TemplateID"))
	assert.Equal(t, "preview_url", toSnake("PreviewURL"))
	assert.Equal(t, "name", toSnake("Name"))
}
