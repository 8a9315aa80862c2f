package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aryan0dhankhar/storefront/internal/content"
	"github.com/aryan0dhankhar/storefront/internal/domain"
	"github.com/aryan0dhankhar/storefront/internal/pkg/response"
	"github.com/aryan0dhankhar/storefront/internal/subdomain"
)

type tenantContextKey struct{}

// StorefrontPage is the render payload of a published site
type StorefrontPage struct {
	StoreName  string           `json:"store_name"`
	SiteName   string           `json:"site_name"`
	Subdomain  string           `json:"subdomain"`
	URL        string           `json:"url"`
	TemplateID int64            `json:"template_id"`
	Content    content.Document `json:"content"`
	Preview    bool             `json:"preview,omitempty"`
}

func newStorefrontPage(site *domain.Site, baseDomain string) StorefrontPage {
	doc := content.Parse(site.Content)
	storeName := doc.StoreName
	if storeName == "" {
		storeName = site.Name
	}
	return StorefrontPage{
		StoreName:  storeName,
		SiteName:   site.Name,
		Subdomain:  site.Subdomain,
		URL:        site.URL(baseDomain),
		TemplateID: site.EffectiveTemplateID(),
		Content:    doc,
	}
}

// ProductPage is the render payload of one product
type ProductPage struct {
	StoreName  string          `json:"store_name"`
	TemplateID int64           `json:"template_id"`
	Product    content.Product `json:"product"`
	Style      content.Style   `json:"style,omitempty"`
}

// StorefrontHandler serves published sites on their tenant hosts
type StorefrontHandler struct {
	directory  *subdomain.Directory
	baseDomain string
	logger     *slog.Logger
}

// NewStorefrontHandler creates a new storefront handler
func NewStorefrontHandler(directory *subdomain.Directory, baseDomain string, logger *slog.Logger) *StorefrontHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StorefrontHandler{directory: directory, baseDomain: baseDomain, logger: logger}
}

// Routes returns the tenant-host routes
func (h *StorefrontHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Home)
	r.Get("/product/{productID}", h.Product)
	return r
}

// HostDispatch sends requests addressed to a tenant host to tenant and
// everything else to next. Tenant requests whose host has no published
// site get a 404.
func (h *StorefrontHandler) HostDispatch(tenant http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := subdomain.TenantLabel(r.Host, h.baseDomain); !ok {
				next.ServeHTTP(w, r)
				return
			}

			site, err := h.directory.ResolveHost(r.Context(), r.Host, h.baseDomain)
			if err != nil {
				logError(h.logger, r, err)
				response.Error(w, err)
				return
			}
			if site == nil {
				response.NotFound(w, "Site")
				return
			}
			tenant.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tenantContextKey{}, site)))
		})
	}
}

func tenantFromContext(ctx context.Context) *domain.Site {
	site, _ := ctx.Value(tenantContextKey{}).(*domain.Site)
	return site
}

// Home handles GET / on a tenant host
func (h *StorefrontHandler) Home(w http.ResponseWriter, r *http.Request) {
	site := tenantFromContext(r.Context())
	if site == nil {
		response.NotFound(w, "Site")
		return
	}
	response.OK(w, newStorefrontPage(site, h.baseDomain))
}

// Product handles GET /product/{productID} on a tenant host
func (h *StorefrontHandler) Product(w http.ResponseWriter, r *http.Request) {
	site := tenantFromContext(r.Context())
	if site == nil {
		response.NotFound(w, "Site")
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil {
		response.NotFound(w, "Product")
		return
	}

	doc := content.Parse(site.Content)
	product, ok := doc.Product(id)
	if !ok {
		response.NotFound(w, "Product")
		return
	}

	storeName := doc.StoreName
	if storeName == "" {
		storeName = site.Name
	}
	response.OK(w, ProductPage{
		StoreName:  storeName,
		TemplateID: site.EffectiveTemplateID(),
		Product:    product,
		Style:      doc.Style,
	})
}
