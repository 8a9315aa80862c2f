package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/storefront/internal/pkg/response"
	"github.com/aryan0dhankhar/storefront/internal/service"
)

// SubdomainHandler answers availability questions
type SubdomainHandler struct {
	sites  *service.SiteService
	logger *slog.Logger
}

// NewSubdomainHandler creates a new subdomain handler
func NewSubdomainHandler(sites *service.SiteService, logger *slog.Logger) *SubdomainHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubdomainHandler{sites: sites, logger: logger}
}

// Check handles GET /api/subdomains/check?subdomain=
func (h *SubdomainHandler) Check(w http.ResponseWriter, r *http.Request) {
	candidate := r.URL.Query().Get("subdomain")
	if candidate == "" {
		response.ValidationErrors(w, map[string]string{"subdomain": "is required"})
		return
	}

	check, err := h.sites.CheckSubdomain(r.Context(), candidate)
	if err != nil {
		logError(h.logger, r, err)
		response.Error(w, err)
		return
	}
	response.OK(w, check)
}
