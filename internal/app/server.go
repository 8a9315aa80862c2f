package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aryan0dhankhar/storefront/internal/handler"
	"github.com/aryan0dhankhar/storefront/internal/security"
	"github.com/aryan0dhankhar/storefront/internal/security/audit"
	"github.com/aryan0dhankhar/storefront/internal/security/auth"
	"github.com/aryan0dhankhar/storefront/internal/security/ratelimit"
	"github.com/aryan0dhankhar/storefront/internal/service"
	"github.com/aryan0dhankhar/storefront/internal/subdomain"
	"github.com/aryan0dhankhar/storefront/pkg/config"
)

// Server is the wired HTTP surface of one process
type Server struct {
	Handler  http.Handler
	Sites    *service.SiteService
	Accounts *service.AccountService

	limiter *ratelimit.Limiter
}

// NewServer builds services and routes on top of store
func NewServer(cfg *config.Config, store *Store, log *slog.Logger) *Server {
	directory := subdomain.NewDirectory(store.Sites, subdomain.NewValidator(cfg.Site.ReservedNames), log)
	quota := service.NewRoleQuotaOracle(store.Sites, cfg.Site.UserQuota, cfg.Site.PrivilegedQuota)
	auditLogger := audit.NewLogger(log, store.Activity)
	sites := service.NewSiteService(
		store.Sites,
		store.Templates,
		store.Users,
		store.Activity,
		directory,
		quota,
		auditLogger,
		log,
	)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	accounts := service.NewAccountService(store.Users, tokenManager, cfg.Auth.TokenTTL, log)
	limiter := ratelimit.NewLimiter(cfg.RateLimit.ContentPerMinute, time.Minute, cfg.RateLimit.Burst)

	var dbPinger, redisPinger handler.Pinger
	if store.DB != nil {
		dbPinger = handler.PingFunc(store.DB.Health)
	}
	if store.Redis != nil {
		redisPinger = store.Redis
	}

	router := handler.NewRouter(handler.RouterDeps{
		Sites:       handler.NewSiteHandler(sites, cfg.Site.BaseDomain, limiter, log),
		Templates:   handler.NewTemplateHandler(store.Templates, log),
		Subdomains:  handler.NewSubdomainHandler(sites, log),
		Storefront:  handler.NewStorefrontHandler(directory, cfg.Site.BaseDomain, log),
		Health:      handler.NewHealthHandler(dbPinger, redisPinger, log),
		Tokens:      tokenManager,
		Authz:       security.NewAuthorizationService(log),
		Audit:       auditLogger,
		CORSOrigins: cfg.Server.CORSAllowedOrigins,
		Metrics:     promhttp.Handler(),
		Logger:      log,
	})

	return &Server{
		Handler:  otelhttp.NewHandler(router, "storefront"),
		Sites:    sites,
		Accounts: accounts,
		limiter:  limiter,
	}
}

// Stop releases background resources held by the server
func (s *Server) Stop() {
	s.limiter.Stop()
}
