// Package app assembles the storage stack shared by the server and sitectl.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/storefront/internal/domain"
	"github.com/aryan0dhankhar/storefront/internal/featureflags"
	redisinfra "github.com/aryan0dhankhar/storefront/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/storefront/internal/reliability/circuitbreaker"
	"github.com/aryan0dhankhar/storefront/internal/reliability/retry"
	"github.com/aryan0dhankhar/storefront/internal/repository"
	"github.com/aryan0dhankhar/storefront/pkg/config"
	"github.com/aryan0dhankhar/storefront/pkg/database"
)

// Store is the set of repositories backing one process
type Store struct {
	Sites     domain.SiteRepository
	Users     domain.UserRepository
	Templates domain.TemplateRepository
	Activity  domain.ActivityRepository

	// DB is nil for the in-memory driver
	DB *database.ConnectionPool
	// Redis is nil when no URL is configured
	Redis *redisinfra.Client
}

// OpenStore connects to the configured backends. Connections are retried
// with backoff; Redis failures are logged and leave Redis disabled.
func OpenStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Store, error) {
	st := &Store{}

	switch cfg.Database.Driver {
	case "memory":
		mem := repository.NewMemoryStore()
		st.Sites, st.Users, st.Templates, st.Activity = mem.Sites(), mem.Users(), mem.Templates(), mem.Activity()
		log.Warn("using in-memory storage; data is lost on exit")
	default:
		pool, err := retry.Do(ctx, retry.DefaultConfig(), log, "connect postgres",
			func(ctx context.Context) (*database.ConnectionPool, error) {
				return database.NewConnectionPool(ctx, databaseConfig(cfg.Database), log)
			})
		if err != nil {
			return nil, err
		}
		st.DB = pool

		db := pool.GetDB()
		st.Sites = repository.NewPostgresSiteRepository(db, log)
		st.Users = repository.NewPostgresUserRepository(db, log)
		st.Templates = repository.NewPostgresTemplateRepository(db, log)
		st.Activity = repository.NewPostgresActivityRepository(db, log)
	}

	if cfg.Site.TemplateCacheTTL > 0 {
		st.Templates = repository.NewCachedTemplateRepository(st.Templates, cfg.Site.TemplateCacheTTL)
	}

	if cfg.Redis.URL != "" {
		client, err := retry.Do(ctx, retry.DefaultConfig(), log, "connect redis",
			func(ctx context.Context) (*redisinfra.Client, error) {
				return redisinfra.NewClient(ctx, cfg.Redis.URL, log)
			})
		if err != nil {
			log.Warn("redis unavailable; continuing without it", slog.String("error", err.Error()))
		} else {
			st.Redis = client
		}
	}

	if st.Redis != nil && (cfg.Site.HostCache || featureflags.Enabled(featureflags.HostCache)) {
		breaker := circuitbreaker.NewCircuitBreaker(5, 2, 30*time.Second)
		breaker.SetStateChangeCallback(func(from, to circuitbreaker.State) {
			log.Warn("host cache breaker changed state", slog.String("from", from.String()), slog.String("to", to.String()))
		})
		st.Sites = repository.NewCachedSiteRepository(st.Sites, st.Redis, breaker, cfg.Site.HostCacheTTL, log)
		log.Info("host cache enabled", slog.Duration("ttl", cfg.Site.HostCacheTTL))
	}

	return st, nil
}

// Migrate applies pending migrations; a no-op for the in-memory driver
func (s *Store) Migrate() error {
	if s.DB == nil {
		return nil
	}
	if err := s.DB.MigrateUp(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close releases every open connection
func (s *Store) Close() {
	if s.Redis != nil {
		s.Redis.Close()
	}
	if s.DB != nil {
		s.DB.Close()
	}
}

func databaseConfig(c config.DatabaseConfig) *database.Config {
	return &database.Config{
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Password,
		Database:        c.Database,
		SSLMode:         c.SSLMode,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}
