package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aryan0dhankhar/storefront/internal/content"
	"github.com/aryan0dhankhar/storefront/internal/pkg/response"
	"github.com/aryan0dhankhar/storefront/internal/security/middleware"
)

// ContentResponse is returned after a content save
type ContentResponse struct {
	IsReady bool `json:"is_ready"`
}

// GetContent handles GET /api/sites/{id}/content
func (h *SiteHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	site, err := h.sites.Get(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, content.Parse(site.Content))
}

// SaveContent handles POST /api/sites/{id}/content. Any JSON object
// decodes; mistyped fields come back itemized from strict validation
// before the document replaces the stored one.
func (h *SiteHandler) SaveContent(w http.ResponseWriter, r *http.Request) {
	var doc content.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		badBody(w, err, "Invalid content document")
		return
	}

	ready, err := h.sites.UpdateContent(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), doc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, ContentResponse{IsReady: ready})
}
