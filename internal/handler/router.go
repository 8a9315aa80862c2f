package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/aryan0dhankhar/storefront/internal/observability/metrics"
	"github.com/aryan0dhankhar/storefront/internal/security"
	"github.com/aryan0dhankhar/storefront/internal/security/audit"
	"github.com/aryan0dhankhar/storefront/internal/security/auth"
	"github.com/aryan0dhankhar/storefront/internal/security/middleware"
)

// RouterDeps carries everything NewRouter mounts
type RouterDeps struct {
	Sites       *SiteHandler
	Templates   *TemplateHandler
	Subdomains  *SubdomainHandler
	Storefront  *StorefrontHandler
	Health      *HealthHandler
	Tokens      *auth.TokenManager
	Authz       *security.AuthorizationService
	Audit       *audit.Logger
	CORSOrigins []string
	// Metrics is mounted at /metrics when set
	Metrics http.Handler
	Logger  *slog.Logger
}

// NewRouter assembles the public API, the owner API and tenant-host
// dispatch into one handler.
func NewRouter(d RouterDeps) http.Handler {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimw.Recoverer)
	r.Use(metrics.HTTPMetricsMiddleware)
	r.Use(middleware.CORS(d.CORSOrigins))
	r.Use(d.Storefront.HostDispatch(d.Storefront.Routes()))

	r.Get("/healthz", d.Health.Health)
	r.Get("/readyz", d.Health.Ready)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.ValidateJSONContentType(log))
		r.Use(middleware.LimitBody(middleware.MaxBodyBytes))

		r.Get("/templates", d.Templates.List)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTMiddleware(d.Tokens, log))
			r.Use(middleware.AuditMiddleware(d.Audit))

			r.With(middleware.RequirePermission(d.Authz, security.PermManageTemplates)).
				Post("/templates", d.Templates.Upsert)
			r.Get("/subdomains/check", d.Subdomains.Check)
			r.Mount("/sites", d.Sites.Routes())
		})
	})

	return r
}
