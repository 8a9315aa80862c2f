package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/storefront/internal/domain"
)

// MemoryStore keeps every repository in process memory. It backs the
// "memory" database driver for local runs and the test suites. Records
// are copied on the way in and out so callers never share state.
type MemoryStore struct {
	mu        sync.RWMutex
	sites     map[string]*domain.Site
	users     map[string]*domain.User
	templates map[int64]*domain.Template
	activity  []*domain.ActivityEntry
	nextTmpl  int64
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sites:     map[string]*domain.Site{},
		users:     map[string]*domain.User{},
		templates: map[int64]*domain.Template{},
		nextTmpl:  1,
	}
}

// Sites returns the store's domain.SiteRepository
func (m *MemoryStore) Sites() *MemorySiteRepository { return &MemorySiteRepository{m} }

// Users returns the store's domain.UserRepository
func (m *MemoryStore) Users() *MemoryUserRepository { return &MemoryUserRepository{m} }

// Templates returns the store's domain.TemplateRepository
func (m *MemoryStore) Templates() *MemoryTemplateRepository { return &MemoryTemplateRepository{m} }

// Activity returns the store's domain.ActivityRepository
func (m *MemoryStore) Activity() *MemoryActivityRepository { return &MemoryActivityRepository{m} }

// MemorySiteRepository implements domain.SiteRepository in memory
type MemorySiteRepository struct{ m *MemoryStore }

func copySite(s *domain.Site) *domain.Site {
	c := *s
	if s.TemplateID != nil {
		id := *s.TemplateID
		c.TemplateID = &id
	}
	return &c
}

func (r *MemorySiteRepository) FindBySubdomain(_ context.Context, subdomain string, status *domain.SiteStatus) (*domain.Site, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, s := range r.m.sites {
		if s.Subdomain != subdomain {
			continue
		}
		if status != nil && s.Status != *status {
			return nil, domain.ErrNotFound
		}
		return copySite(s), nil
	}
	return nil, domain.ErrNotFound
}

func (r *MemorySiteRepository) GetByID(_ context.Context, id string) (*domain.Site, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	s, ok := r.m.sites[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copySite(s), nil
}

func (r *MemorySiteRepository) CountByOwner(_ context.Context, ownerID string) (int, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	n := 0
	for _, s := range r.m.sites {
		if s.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r *MemorySiteRepository) CountByStatus(_ context.Context, status domain.SiteStatus) (int, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	n := 0
	for _, s := range r.m.sites {
		if s.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *MemorySiteRepository) ListByOwner(_ context.Context, ownerID string) ([]*domain.Site, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []*domain.Site
	for _, s := range r.m.sites {
		if s.OwnerID == ownerID {
			out = append(out, copySite(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemorySiteRepository) Insert(_ context.Context, site *domain.Site) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, s := range r.m.sites {
		if s.Subdomain == site.Subdomain {
			return domain.ErrSubdomainTaken
		}
	}
	if site.ID == "" {
		site.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	site.CreatedAt = now
	site.UpdatedAt = now
	r.m.sites[site.ID] = copySite(site)
	return nil
}

func (r *MemorySiteRepository) Update(_ context.Context, site *domain.Site) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.sites[site.ID]; !ok {
		return domain.ErrNotFound
	}
	site.UpdatedAt = time.Now().UTC()
	r.m.sites[site.ID] = copySite(site)
	return nil
}

func (r *MemorySiteRepository) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.sites[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.m.sites, id)
	kept := r.m.activity[:0]
	for _, e := range r.m.activity {
		if e.SiteID != id {
			kept = append(kept, e)
		}
	}
	r.m.activity = kept
	return nil
}

// MemoryUserRepository implements domain.UserRepository in memory
type MemoryUserRepository struct{ m *MemoryStore }

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, user.Email) || u.Username == user.Username {
			return domain.ErrUserExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	c := *user
	r.m.users[user.ID] = &c
	return nil
}

func (r *MemoryUserRepository) find(match func(*domain.User) bool) (*domain.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, u := range r.m.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *MemoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	c := *user
	r.m.users[user.ID] = &c
	return nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]*domain.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]*domain.User, 0, len(r.m.users))
	for _, u := range r.m.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// MemoryTemplateRepository implements domain.TemplateRepository in memory
type MemoryTemplateRepository struct{ m *MemoryStore }

func (r *MemoryTemplateRepository) ListActive(_ context.Context) ([]*domain.Template, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []*domain.Template
	for _, t := range r.m.templates {
		if t.IsActive {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryTemplateRepository) GetByID(_ context.Context, id int64) (*domain.Template, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	t, ok := r.m.templates[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (r *MemoryTemplateRepository) Upsert(_ context.Context, t *domain.Template) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, existing := range r.m.templates {
		if existing.Name == t.Name {
			t.ID = id
			t.CreatedAt = existing.CreatedAt
			c := *t
			r.m.templates[id] = &c
			return nil
		}
	}
	if t.ID == 0 {
		t.ID = r.m.nextTmpl
	}
	if t.ID >= r.m.nextTmpl {
		r.m.nextTmpl = t.ID + 1
	}
	t.CreatedAt = time.Now().UTC()
	c := *t
	r.m.templates[t.ID] = &c
	return nil
}

// MemoryActivityRepository implements domain.ActivityRepository in memory
type MemoryActivityRepository struct{ m *MemoryStore }

func (r *MemoryActivityRepository) Record(_ context.Context, entry *domain.ActivityEntry) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.sites[entry.SiteID]; !ok {
		return domain.ErrNotFound
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	c := *entry
	r.m.activity = append(r.m.activity, &c)
	return nil
}

func (r *MemoryActivityRepository) ListBySite(_ context.Context, siteID string, limit int) ([]*domain.ActivityEntry, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []*domain.ActivityEntry
	for i := len(r.m.activity) - 1; i >= 0; i-- {
		e := r.m.activity[i]
		if e.SiteID != siteID {
			continue
		}
		c := *e
		out = append(out, &c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
