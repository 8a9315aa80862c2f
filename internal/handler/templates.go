package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aryan0dhankhar/storefront/internal/domain"
	"github.com/aryan0dhankhar/storefront/internal/pkg/response"
)

// TemplateHandler serves the template catalogue
type TemplateHandler struct {
	templates domain.TemplateRepository
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templates domain.TemplateRepository, logger *slog.Logger) *TemplateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TemplateHandler{templates: templates, validate: validator.New(), logger: logger}
}

// TemplateResponse is the API view of a template
type TemplateResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PreviewURL  string `json:"preview_url"`
}

func toTemplateResponse(t *domain.Template) TemplateResponse {
	return TemplateResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Category:    t.Category,
		PreviewURL:  t.PreviewURL,
	}
}

// UpsertTemplateRequest is the HTTP request body for saving a template.
type UpsertTemplateRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Category    string `json:"category" validate:"max=50"`
	PreviewURL  string `json:"preview_url" validate:"omitempty,url"`
	IsActive    *bool  `json:"is_active"`
}

// List handles GET /api/templates
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.ListActive(r.Context())
	if err != nil {
		logError(h.logger, r, err)
		response.Error(w, err)
		return
	}
	out := make([]TemplateResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, toTemplateResponse(t))
	}
	response.OK(w, out)
}

// Upsert handles POST /api/templates; matches on name
func (h *TemplateHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badBody(w, err, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.ValidationErrors(w, validationDetails(err))
		return
	}

	t := &domain.Template{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		PreviewURL:  req.PreviewURL,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if err := h.templates.Upsert(r.Context(), t); err != nil {
		logError(h.logger, r, err)
		response.Error(w, err)
		return
	}

	h.logger.Info("template saved", slog.Int64("template_id", t.ID), slog.String("name", t.Name))
	response.OK(w, toTemplateResponse(t))
}
