// Package handler exposes the site builder API and the public storefront
// over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aryan0dhankhar/storefront/internal/content"
	"github.com/aryan0dhankhar/storefront/internal/domain"
	"github.com/aryan0dhankhar/storefront/internal/pkg/response"
	"github.com/aryan0dhankhar/storefront/internal/security/middleware"
	"github.com/aryan0dhankhar/storefront/internal/security/ratelimit"
	"github.com/aryan0dhankhar/storefront/internal/service"
)

// SiteHandler handles the owner-facing site API
type SiteHandler struct {
	sites      *service.SiteService
	baseDomain string
	limiter    *ratelimit.Limiter
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewSiteHandler creates a new site handler. limiter bounds the content
// endpoints per owner; nil disables the bound.
func NewSiteHandler(sites *service.SiteService, baseDomain string, limiter *ratelimit.Limiter, logger *slog.Logger) *SiteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SiteHandler{
		sites:      sites,
		baseDomain: baseDomain,
		limiter:    limiter,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Routes returns a chi router with site routes. Callers must have
// authenticated the request.
func (h *SiteHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/quick", h.QuickCreate)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
		r.Post("/duplicate", h.Duplicate)
		r.Post("/publish", h.Publish)
		r.Post("/unpublish", h.Unpublish)
		r.Get("/validation", h.Validation)
		r.Get("/preview", h.Preview)
		r.Get("/activity", h.Activity)
		r.Post("/style", h.UpdateStyle)
		r.Post("/template", h.UpdateTemplate)
		r.Post("/sample-products", h.AddSampleProducts)
		r.Post("/fill-defaults", h.FillDefaults)

		r.Group(func(r chi.Router) {
			if h.limiter != nil {
				r.Use(middleware.RateLimitMiddleware(h.limiter, h.logger))
			}
			r.Get("/content", h.GetContent)
			r.Post("/content", h.SaveContent)
		})
	})

	return r
}

// SiteResponse is the API view of a site
type SiteResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Subdomain  string    `json:"subdomain"`
	URL        string    `json:"url"`
	Status     string    `json:"status"`
	TemplateID int64     `json:"template_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (h *SiteHandler) toSiteResponse(s *domain.Site) SiteResponse {
	return SiteResponse{
		ID:         s.ID,
		Name:       s.Name,
		Subdomain:  s.Subdomain,
		URL:        s.URL(h.baseDomain),
		Status:     string(s.Status),
		TemplateID: s.EffectiveTemplateID(),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// CreateSiteRequest is the HTTP request body for creating a site.
type CreateSiteRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	TemplateID int64  `json:"template_id" validate:"required,gt=0"`
}

// QuickCreateRequest is the HTTP request body for a quick store.
type QuickCreateRequest struct {
	Name string `json:"name" validate:"max=100"`
}

// UpdateTemplateRequest is the HTTP request body for a template change.
type UpdateTemplateRequest struct {
	TemplateID int64 `json:"template_id" validate:"required,gt=0"`
}

// List handles GET /api/sites
func (h *SiteHandler) List(w http.ResponseWriter, r *http.Request) {
	sites, err := h.sites.ListByOwner(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]SiteResponse, 0, len(sites))
	for _, s := range sites {
		out = append(out, h.toSiteResponse(s))
	}
	response.OK(w, out)
}

// Create handles POST /api/sites
func (h *SiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSiteRequest
	if !h.decode(w, r, &req) {
		return
	}
	site, err := h.sites.CreateSite(r.Context(), middleware.ActorFromContext(r.Context()), req.Name, req.TemplateID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, h.toSiteResponse(site))
}

// QuickCreate handles POST /api/sites/quick
func (h *SiteHandler) QuickCreate(w http.ResponseWriter, r *http.Request) {
	var req QuickCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		badBody(w, err, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.ValidationErrors(w, validationDetails(err))
		return
	}
	site, err := h.sites.QuickCreate(r.Context(), middleware.ActorFromContext(r.Context()), req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, h.toSiteResponse(site))
}

// Get handles GET /api/sites/{id}
func (h *SiteHandler) Get(w http.ResponseWriter, r *http.Request) {
	site, err := h.sites.Get(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, h.toSiteResponse(site))
}

// Delete handles DELETE /api/sites/{id}
func (h *SiteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sites.Delete(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	response.NoContent(w)
}

// Duplicate handles POST /api/sites/{id}/duplicate
func (h *SiteHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	site, err := h.sites.Duplicate(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, h.toSiteResponse(site))
}

// Publish handles POST /api/sites/{id}/publish
func (h *SiteHandler) Publish(w http.ResponseWriter, r *http.Request) {
	site, err := h.sites.Publish(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, h.toSiteResponse(site))
}

// Unpublish handles POST /api/sites/{id}/unpublish
func (h *SiteHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	site, err := h.sites.Unpublish(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, h.toSiteResponse(site))
}

// Validation handles GET /api/sites/{id}/validation
func (h *SiteHandler) Validation(w http.ResponseWriter, r *http.Request) {
	report, err := h.sites.Validate(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, report)
}

// Preview handles GET /api/sites/{id}/preview; drafts included
func (h *SiteHandler) Preview(w http.ResponseWriter, r *http.Request) {
	site, err := h.sites.Get(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page := newStorefrontPage(site, h.baseDomain)
	page.Preview = true
	response.OK(w, page)
}

// ActivityResponse is the API view of an activity entry
type ActivityResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// Activity handles GET /api/sites/{id}/activity?limit=
func (h *SiteHandler) Activity(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			response.ValidationErrors(w, map[string]string{"limit": "must be between 1 and 500"})
			return
		}
		limit = n
	}

	entries, err := h.sites.Activity(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]ActivityResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ActivityResponse{ID: e.ID, UserID: e.UserID, Action: e.Action, CreatedAt: e.CreatedAt})
	}
	response.OK(w, out)
}

// UpdateStyle handles POST /api/sites/{id}/style
func (h *SiteHandler) UpdateStyle(w http.ResponseWriter, r *http.Request) {
	var style content.Style
	if err := json.NewDecoder(r.Body).Decode(&style); err != nil || style == nil {
		badBody(w, err, "Invalid style object")
		return
	}
	if err := h.sites.UpdateStyle(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), style); err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, map[string]any{"style": style})
}

// UpdateTemplate handles POST /api/sites/{id}/template
func (h *SiteHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var req UpdateTemplateRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.sites.UpdateTemplate(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req.TemplateID); err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, map[string]any{"template_id": req.TemplateID})
}

// AddSampleProducts handles POST /api/sites/{id}/sample-products
func (h *SiteHandler) AddSampleProducts(w http.ResponseWriter, r *http.Request) {
	if err := h.sites.AddSampleProducts(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	response.NoContent(w)
}

// FillDefaults handles POST /api/sites/{id}/fill-defaults
func (h *SiteHandler) FillDefaults(w http.ResponseWriter, r *http.Request) {
	if err := h.sites.FillDefaults(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	response.NoContent(w)
}

// decode reads a JSON body into dst and runs its validate tags
func (h *SiteHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		badBody(w, err, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		response.ValidationErrors(w, validationDetails(err))
		return false
	}
	return true
}

func (h *SiteHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	logError(h.logger, r, err)
	response.Error(w, err)
}
