package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aryan0dhankhar/storefront/internal/content"
	"github.com/aryan0dhankhar/storefront/internal/domain"
	"github.com/aryan0dhankhar/storefront/internal/observability/metrics"
	"github.com/aryan0dhankhar/storefront/internal/observability/tracing"
	"github.com/aryan0dhankhar/storefront/internal/security"
	"github.com/aryan0dhankhar/storefront/internal/security/audit"
	"github.com/aryan0dhankhar/storefront/internal/subdomain"
)

// copySuffix is appended to the name of a duplicated site
const copySuffix = " (Copie)"

// SiteService drives the lifecycle of sites: creation, content edits,
// publication and removal. Every operation on an existing site checks
// that the actor owns it before touching anything.
type SiteService struct {
	sites     domain.SiteRepository
	templates domain.TemplateRepository
	users     domain.UserRepository
	activity  domain.ActivityRepository
	directory *subdomain.Directory
	quota     QuotaOracle
	guard     *security.OwnershipGuard
	audit     *audit.Logger
	logger    *slog.Logger
}

// NewSiteService creates a new site service. users may be nil, in which
// case the actor passed to creating operations is trusted as-is.
func NewSiteService(
	sites domain.SiteRepository,
	templates domain.TemplateRepository,
	users domain.UserRepository,
	activity domain.ActivityRepository,
	directory *subdomain.Directory,
	quota QuotaOracle,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *SiteService {
	if logger == nil {
		logger = slog.Default()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger, activity)
	}
	return &SiteService{
		sites:     sites,
		templates: templates,
		users:     users,
		activity:  activity,
		directory: directory,
		quota:     quota,
		guard:     security.NewOwnershipGuard(logger),
		audit:     auditLog,
		logger:    logger,
	}
}

// Directory exposes the subdomain directory the service assigns from
func (s *SiteService) Directory() *subdomain.Directory {
	return s.directory
}

// CreateSite creates a draft site named name with the starter document.
// The subdomain is derived from the name.
func (s *SiteService) CreateSite(ctx context.Context, actor *domain.User, name string, templateID int64) (site *domain.Site, err error) {
	ctx, span := tracing.StartSpan(ctx, "SiteService.CreateSite", attribute.Int64("template_id", templateID))
	defer func() { s.finish(span, "create", err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ValidationError{Fields: content.FieldErrors{{Field: "name", Message: "required"}}}
	}

	owner, err := s.ownerWithQuota(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := s.requireTemplate(ctx, templateID); err != nil {
		return nil, err
	}

	tid := templateID
	site = &domain.Site{
		OwnerID:    owner.ID,
		Name:       name,
		TemplateID: &tid,
		Status:     domain.StatusDraft,
		Content:    content.Serialize(content.DefaultDocument(name)),
	}
	if err := s.insertWithSubdomain(ctx, site, subdomain.Slugify(name)); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, owner.ID, site.ID, domain.ActionSiteCreated)
	s.logger.Info("site created",
		slog.String("site_id", site.ID),
		slog.String("owner_id", owner.ID),
		slog.String("subdomain", site.Subdomain),
	)
	return site, nil
}

// QuickCreate creates a ready-to-edit store on the first active template,
// with the starter document and two sample products. An empty name
// becomes "Ma boutique <username>".
func (s *SiteService) QuickCreate(ctx context.Context, actor *domain.User, name string) (site *domain.Site, err error) {
	ctx, span := tracing.StartSpan(ctx, "SiteService.QuickCreate")
	defer func() { s.finish(span, "quick_create", err) }()

	owner, err := s.ownerWithQuota(ctx, actor)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "Ma boutique " + owner.Username
	}

	active, err := s.templates.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	if len(active) == 0 {
		return nil, domain.ErrInvalidTemplate
	}
	tid := active[0].ID

	doc := content.AppendSampleProducts(content.DefaultDocument(name), content.SampleProducts()[:2])
	site = &domain.Site{
		OwnerID:    owner.ID,
		Name:       name,
		TemplateID: &tid,
		Status:     domain.StatusDraft,
		Content:    content.Serialize(doc),
	}
	if err := s.insertWithSubdomain(ctx, site, subdomain.Slugify(name)); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, owner.ID, site.ID, domain.ActionSiteCreated)
	return site, nil
}

// Duplicate creates a draft copy of a site with a fresh subdomain derived
// from "<subdomain>-copy". The copy counts against the owner's quota.
func (s *SiteService) Duplicate(ctx context.Context, actor *domain.User, siteID string) (site *domain.Site, err error) {
	ctx, span := tracing.StartSpan(ctx, "SiteService.Duplicate", attribute.String("site_id", siteID))
	defer func() { s.finish(span, "duplicate", err) }()

	original, err := s.load(ctx, actor, siteID)
	if err != nil {
		return nil, err
	}
	owner, err := s.ownerWithQuota(ctx, actor)
	if err != nil {
		return nil, err
	}

	var tid *int64
	if original.TemplateID != nil {
		id := *original.TemplateID
		tid = &id
	}
	site = &domain.Site{
		OwnerID:    owner.ID,
		Name:       original.Name + copySuffix,
		TemplateID: tid,
		Status:     domain.StatusDraft,
		Content:    content.Serialize(content.Parse(original.Content).Clone()),
	}
	if err := s.insertWithSubdomain(ctx, site, original.Subdomain+"-copy"); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, owner.ID, site.ID, domain.ActionSiteDuplicated)
	s.logger.Info("site duplicated",
		slog.String("source_id", original.ID),
		slog.String("site_id", site.ID),
		slog.String("subdomain", site.Subdomain),
	)
	return site, nil
}

// Publish makes a site publicly resolvable. A document that is not ready
// yields *domain.NotReadyError carrying the readiness report. Publishing
// a published site is a no-op.
func (s *SiteService) Publish(ctx context.Context, actor *domain.User, siteID string) (site *domain.Site, err error) {
	ctx, span := tracing.StartSpan(ctx, "SiteService.Publish", attribute.String("site_id", siteID))
	defer func() { s.finish(span, "publish", err) }()

	site, err = s.load(ctx, actor, siteID)
	if err != nil {
		return nil, err
	}
	if site.IsPublished() {
		return site, nil
	}

	doc := content.Parse(site.Content)
	if !content.IsPublishReady(doc) {
		return nil, &domain.NotReadyError{Report: content.Report(doc)}
	}

	site.Status = domain.StatusPublished
	if err := s.sites.Update(ctx, site); err != nil {
		return nil, fmt.Errorf("failed to publish site: %w", err)
	}
	metrics.SitePublished()
	s.audit.Record(ctx, actor.ID, site.ID, domain.ActionSitePublished)
	return site, nil
}

// Unpublish returns a site to draft from any status
func (s *SiteService) Unpublish(ctx context.Context, actor *domain.User, siteID string) (site *domain.Site, err error) {
	ctx, span := tracing.StartSpan(ctx, "SiteService.Unpublish", attribute.String("site_id", siteID))
	defer func() { s.finish(span, "unpublish", err) }()

	site, err = s.load(ctx, actor, siteID)
	if err != nil {
		return nil, err
	}
	if site.Status == domain.StatusDraft {
		return site, nil
	}

	wasPublished := site.IsPublished()
	site.Status = domain.StatusDraft
	if err := s.sites.Update(ctx, site); err != nil {
		return nil, fmt.Errorf("failed to unpublish site: %w", err)
	}
	if wasPublished {
		metrics.SiteUnpublished()
	}
	s.audit.Record(ctx, actor.ID, site.ID, domain.ActionSiteUnpublished)
	return site, nil
}

// UpdateContent replaces the document after strict validation. Rejected
// documents leave the site untouched and yield *domain.ValidationError.
// It reports whether the stored document is ready to publish.
func (s *SiteService) UpdateContent(ctx context.Context, actor *domain.User, siteID string, doc content.Document) (ready bool, err error) {
	ctx, span := tracing.StartSpan(ctx, "SiteService.UpdateContent", attribute.String("site_id", siteID))
	defer func() { s.finish(span, "update_content", err) }()

	site, err := s.load(ctx, actor, siteID)
	if err != nil {
		return false, err
	}
	if fieldErrs := content.StrictValidate(doc); fieldErrs != nil {
		return false, &domain.ValidationError{Fields: fieldErrs}
	}

	site.Content = content.Serialize(doc)
	if err := s.sites.Update(ctx, site); err != nil {
		return false, fmt.Errorf("failed to save content: %w", err)
	}
	s.audit.Record(ctx, actor.ID, site.ID, domain.ActionContentUpdated)
	return content.IsPublishReady(doc), nil
}

// UpdateStyle replaces only the style block of the stored document
func (s *SiteService) UpdateStyle(ctx context.Context, actor *domain.User, siteID string, style content.Style) (err error) {
	ctx, span := tracing.StartSpan(ctx, "SiteService.UpdateStyle", attribute.String("site_id", siteID))
	defer func() { s.finish(span, "update_style", err) }()

	return s.mutateDocument(ctx, actor, siteID, domain.ActionStyleUpdated, func(_ *domain.Site, doc content.Document) content.Document {
		doc.Style = make(content.Style, len(style))
		for k, v := range style {
			doc.Style[k] = v
		}
		return doc
	})
}

// AddSampleProducts appends the sample catalogue with fresh product ids
func (s *SiteService) AddSampleProducts(ctx context.Context, actor *domain.User, siteID string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "SiteService.AddSampleProducts", attribute.String("site_id", siteID))
	defer func() { s.finish(span, "add_sample_products", err) }()

	return s.mutateDocument(ctx, actor, siteID, domain.ActionSamplesAdded, func(_ *domain.Site, doc content.Document) content.Document {
		return content.AppendSampleProducts(doc, content.SampleProducts())
	})
}

// FillDefaults overwrites the document with the starter document for the
// site's name
func (s *SiteService) FillDefaults(ctx context.Context, actor *domain.User, siteID string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "SiteService.FillDefaults", attribute.String("site_id", siteID))
	defer func() { s.finish(span, "fill_defaults", err) }()

	return s.mutateDocument(ctx, actor, siteID, domain.ActionDefaultsFilled, func(site *domain.Site, _ content.Document) content.Document {
		doc := content.DefaultDocument(site.Name)
		if len(doc.Products) == 0 {
			doc = content.AppendSampleProducts(doc, content.SampleProducts()[:2])
		}
		return doc
	})
}

// UpdateTemplate points a site at another existing template
func (s *SiteService) UpdateTemplate(ctx context.Context, actor *domain.User, siteID string, templateID int64) (err error) {
	ctx, span := tracing.StartSpan(ctx, "SiteService.UpdateTemplate", attribute.String("site_id", siteID))
	defer func() { s.finish(span, "update_template", err) }()

	site, err := s.load(ctx, actor, siteID)
	if err != nil {
		return err
	}
	if err := s.requireTemplate(ctx, templateID); err != nil {
		return err
	}

	tid := templateID
	site.TemplateID = &tid
	if err := s.sites.Update(ctx, site); err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	s.audit.Record(ctx, actor.ID, site.ID, domain.ActionTemplateUpdated)
	return nil
}

// Delete removes a site together with its activity entries
func (s *SiteService) Delete(ctx context.Context, actor *domain.User, siteID string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "SiteService.Delete", attribute.String("site_id", siteID))
	defer func() { s.finish(span, "delete", err) }()

	site, err := s.load(ctx, actor, siteID)
	if err != nil {
		return err
	}
	if err := s.sites.Delete(ctx, site.ID); err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}
	if site.IsPublished() {
		metrics.SiteUnpublished()
	}
	s.audit.LogDeletion(ctx, actor.ID, site.ID)
	return nil
}

// Get returns a site owned by actor
func (s *SiteService) Get(ctx context.Context, actor *domain.User, siteID string) (*domain.Site, error) {
	return s.load(ctx, actor, siteID)
}

// ListByOwner returns actor's sites, newest first
func (s *SiteService) ListByOwner(ctx context.Context, actor *domain.User) ([]*domain.Site, error) {
	if actor == nil || actor.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	sites, err := s.sites.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	return sites, nil
}

// Validate reports the publish readiness of a site's document
func (s *SiteService) Validate(ctx context.Context, actor *domain.User, siteID string) (content.ValidationReport, error) {
	site, err := s.load(ctx, actor, siteID)
	if err != nil {
		return content.ValidationReport{}, err
	}
	return content.Report(content.Parse(site.Content)), nil
}

// Activity lists the most recent entries recorded against a site
func (s *SiteService) Activity(ctx context.Context, actor *domain.User, siteID string, limit int) ([]*domain.ActivityEntry, error) {
	site, err := s.load(ctx, actor, siteID)
	if err != nil {
		return nil, err
	}
	entries, err := s.activity.ListBySite(ctx, site.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, nil
}

// SubdomainCheck is the answer to an availability query
type SubdomainCheck struct {
	Subdomain string `json:"subdomain"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// CheckSubdomain reports whether candidate could be claimed right now
func (s *SiteService) CheckSubdomain(ctx context.Context, candidate string) (SubdomainCheck, error) {
	candidate = strings.ToLower(strings.TrimSpace(candidate))
	res := SubdomainCheck{Subdomain: candidate}

	switch err := s.directory.Validator().Check(candidate); {
	case candidate == "":
		res.Reason = "empty"
		return res, nil
	case errors.Is(err, domain.ErrReserved):
		res.Reason = "reserved"
		return res, nil
	case err != nil:
		res.Reason = "invalid"
		return res, nil
	}

	ok, err := s.directory.IsAvailable(ctx, candidate)
	if err != nil {
		return res, err
	}
	res.Available = ok
	if !ok {
		res.Reason = "taken"
	}
	return res, nil
}

// load fetches a site and checks that actor owns it
func (s *SiteService) load(ctx context.Context, actor *domain.User, siteID string) (*domain.Site, error) {
	site, err := s.sites.GetByID(ctx, siteID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load site: %w", err)
	}
	if err := s.guard.ValidateSiteAccess(actor, site); err != nil {
		actorID := ""
		if actor != nil {
			actorID = actor.ID
		}
		s.audit.LogDenied(ctx, actorID, siteID, "not owner")
		return nil, err
	}
	return site, nil
}

// mutateDocument loads, rewrites and stores a site's document
func (s *SiteService) mutateDocument(
	ctx context.Context,
	actor *domain.User,
	siteID, action string,
	mutate func(*domain.Site, content.Document) content.Document,
) error {
	site, err := s.load(ctx, actor, siteID)
	if err != nil {
		return err
	}
	doc := mutate(site, content.Parse(site.Content))
	site.Content = content.Serialize(doc)
	if err := s.sites.Update(ctx, site); err != nil {
		return fmt.Errorf("failed to save content: %w", err)
	}
	s.audit.Record(ctx, actor.ID, site.ID, action)
	return nil
}

// ownerWithQuota resolves the stored owner record and checks its quota
func (s *SiteService) ownerWithQuota(ctx context.Context, actor *domain.User) (*domain.User, error) {
	if actor == nil || actor.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	owner := actor
	if s.users != nil {
		u, err := s.users.GetByID(ctx, actor.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrUnauthorized
			}
			return nil, fmt.Errorf("failed to load owner: %w", err)
		}
		owner = u
	}

	ok, err := s.quota.CanCreateSite(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Info("site quota reached",
			slog.String("owner_id", owner.ID),
			slog.String("role", string(owner.Role)),
		)
		return nil, domain.ErrQuotaExceeded
	}
	return owner, nil
}

func (s *SiteService) requireTemplate(ctx context.Context, templateID int64) error {
	if _, err := s.templates.GetByID(ctx, templateID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidTemplate
		}
		return fmt.Errorf("failed to load template: %w", err)
	}
	return nil
}

// insertWithSubdomain assigns the first free candidate for base and
// inserts the site. Losing an insert race to a concurrent writer resumes
// probing after the lost candidate, so retries share the probe ceiling.
func (s *SiteService) insertWithSubdomain(ctx context.Context, site *domain.Site, base string) error {
	start := 0
	for {
		candidate, idx, err := s.directory.NextAvailableFrom(ctx, base, start)
		if err != nil {
			return err
		}
		site.Subdomain = candidate
		err = s.sites.Insert(ctx, site)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrSubdomainTaken) {
			return fmt.Errorf("failed to insert site: %w", err)
		}
		s.logger.Debug("subdomain claimed concurrently, retrying",
			slog.String("subdomain", candidate),
			slog.Int("probe", idx),
		)
		start = idx + 1
	}
}

// finish ends the operation span and records its outcome
func (s *SiteService) finish(span trace.Span, op string, err error) {
	result := operationResult(err)
	metrics.ObserveSiteOperation(op, result)
	if result == "error" {
		s.logger.Error("site operation failed",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		tracing.EndSpan(span, err)
		return
	}
	span.SetAttributes(attribute.String("result", result))
	span.End()
}

// operationResult classifies err for metrics; expected refusals are not
// failures of the service
func operationResult(err error) string {
	var notReady *domain.NotReadyError
	var invalid *domain.ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &notReady):
		return "not_ready"
	case errors.As(err, &invalid):
		return "invalid"
	case errors.Is(err, domain.ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidTemplate):
		return "not_found"
	case errors.Is(err, domain.ErrNamespaceExhausted):
		return "exhausted"
	default:
		return "error"
	}
}
