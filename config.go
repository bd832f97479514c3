package photocredit

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for a photocredit site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Photolog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Default post author for JSON-LD

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `yaml:"database_path"` // SQLite path (default "data/photocredit.db")
	StaticDir    string `yaml:"static_dir"`    // User static assets and uploads (default "public")

	AdminPassword string `yaml:"admin_password"` // Required for serve: admin login password
	SessionSecret string `yaml:"session_secret"` // Required for serve: session encryption secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	PostCacheTTL time.Duration `yaml:"post_cache_ttl"` // Post cache TTL (default 5min)
	Debug        bool          `yaml:"debug"`

	Fields FieldConfig `yaml:"fields"`
}

// FieldConfig holds the configured defaults of the attachment credit fields.
type FieldConfig struct {
	// AcquireLicensePageDefault is used when an image has no
	// acquire_license_page value of its own.
	AcquireLicensePageDefault string `yaml:"acquire_license_page_default"`
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Photolog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/photocredit.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
}

// applyEnvOverrides lets PHOTOCREDIT_* variables override file values.
func (c *SiteConfig) applyEnvOverrides() {
	strs := map[string]*string{
		"PHOTOCREDIT_SITE_NAME":        &c.Name,
		"PHOTOCREDIT_SITE_URL":         &c.URL,
		"PHOTOCREDIT_SITE_DESCRIPTION": &c.Description,
		"PHOTOCREDIT_SITE_AUTHOR":      &c.Author,
		"PHOTOCREDIT_ADDR":             &c.Addr,
		"PHOTOCREDIT_DATABASE_PATH":    &c.DatabasePath,
		"PHOTOCREDIT_STATIC_DIR":       &c.StaticDir,
		"PHOTOCREDIT_ADMIN_PASSWORD":   &c.AdminPassword,
		"PHOTOCREDIT_SESSION_SECRET":   &c.SessionSecret,
		"PHOTOCREDIT_ACQUIRE_PAGE":     &c.Fields.AcquireLicensePageDefault,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("PHOTOCREDIT_COOKIE_SECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.CookieSecure = b
		}
	}
	if v := os.Getenv("PHOTOCREDIT_POST_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PostCacheTTL = d
		}
	}
}

// LoadConfig reads a YAML config file, applies environment overrides and
// fills defaults. A missing file is not an error when path is empty or the
// file does not exist; the config then comes from the environment alone.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return SiteConfig{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return SiteConfig{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnvOverrides()
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets and uploads.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithLogger sets the structured logger (default: no-op).
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.Logger = l
		}
	}
}

// WithStore injects an already opened Store instead of opening
// Config.DatabasePath.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}
