package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Environment string         `mapstructure:"environment"`
	LogLevel    string         `mapstructure:"log_level"`
	LogFormat   string         `mapstructure:"log_format"` // json or text
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Auth        AuthConfig     `mapstructure:"auth"`
	Site        SiteConfig     `mapstructure:"site"`
	RateLimit   RateLimit      `mapstructure:"rate_limit"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port               int           `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
}

// DatabaseConfig holds PostgreSQL configuration. Driver "memory" keeps
// everything in process for local runs.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig holds Redis configuration; an empty URL disables Redis
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// AuthConfig holds token settings
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// SiteConfig holds the namespace and quota rules
type SiteConfig struct {
	BaseDomain       string        `mapstructure:"base_domain"`
	ReservedNames    []string      `mapstructure:"reserved_names"`
	UserQuota        int           `mapstructure:"user_quota"`
	PrivilegedQuota  int           `mapstructure:"privileged_quota"`
	HostCache        bool          `mapstructure:"host_cache"`
	HostCacheTTL     time.Duration `mapstructure:"host_cache_ttl"`
	TemplateCacheTTL time.Duration `mapstructure:"template_cache_ttl"`
	StatsInterval    time.Duration `mapstructure:"stats_interval"`
}

// RateLimit bounds content writes per owner
type RateLimit struct {
	ContentPerMinute int `mapstructure:"content_per_minute"`
	Burst            int `mapstructure:"burst"`
}

// Load reads configuration from an optional config file and the
// environment. Environment keys use the STOREFRONT_ prefix with "."
// replaced by "_", e.g. STOREFRONT_SITE_BASE_DOMAIN.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/storefront")

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// AutomaticEnv delivers lists as one comma-separated string
	cfg.Site.ReservedNames = splitList(cfg.Site.ReservedNames)
	cfg.Server.CORSAllowedOrigins = splitList(cfg.Server.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	if c.Site.BaseDomain == "" {
		return fmt.Errorf("site.base_domain is required")
	}
	if c.Site.UserQuota < 0 || c.Site.PrivilegedQuota < 0 {
		return fmt.Errorf("site quotas must not be negative")
	}
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("invalid database.driver: %q", c.Database.Driver)
	}
	if c.Environment == "production" && (c.Auth.JWTSecret == "" || c.Auth.JWTSecret == defaultJWTSecret) {
		return fmt.Errorf("auth.jwt_secret must be set in production")
	}
	return nil
}

// IsDevelopment reports whether running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

const defaultJWTSecret = "change-me-in-production"

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.cors_allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "storefront")
	v.SetDefault("database.password", "dev")
	v.SetDefault("database.database", "storefront")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.url", "")

	v.SetDefault("auth.jwt_secret", defaultJWTSecret)
	v.SetDefault("auth.issuer", "storefront")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("site.base_domain", "miabesite.site")
	v.SetDefault("site.reserved_names", []string{})
	v.SetDefault("site.user_quota", 3)
	v.SetDefault("site.privileged_quota", 10)
	v.SetDefault("site.host_cache", false)
	v.SetDefault("site.host_cache_ttl", time.Minute)
	v.SetDefault("site.template_cache_ttl", 5*time.Minute)
	v.SetDefault("site.stats_interval", time.Minute)

	v.SetDefault("rate_limit.content_per_minute", 10)
	v.SetDefault("rate_limit.burst", 10)
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, p := range strings.Split(item, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}
