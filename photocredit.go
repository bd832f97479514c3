// Package photocredit is a publishing engine for photo posts built with Go,
// Echo, and templ. Posts in configured categories or tags carry Schema.org
// ImageObject markup resolved from the photographer and Creative Commons
// license fields stored on their images.
//
// Users provide their own templ components via the ViewFuncs struct (or the
// defaults in the views package), and photocredit handles handler logic,
// middleware, credit resolution and database operations.
package photocredit

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/photocredit/credit"
)

// ViewFuncs holds the templ components the framework calls when rendering
// pages.
type ViewFuncs struct {
	Home           func(posts []Post, activeTag string, tags []credit.Term, page PageMeta) templ.Component
	Post           func(post Post, body templ.Component, related []Post, page PageMeta) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(d Dashboard) templ.Component
	AdminPostForm  func(post Post, csrfToken string) templ.Component
	AdminImages    func(images []Attachment, message string, csrfToken string) templ.Component
	AdminImageForm func(img Attachment, licenses []string, message string, csrfToken string) templ.Component
	AdminSettings  func(s credit.Settings, message string, csrfToken string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// Dashboard is what the admin dashboard shows.
type Dashboard struct {
	Posts     []Post
	Message   string
	Warning   string // set when image credit output is disabled
	CSRFToken string
}

// App is the central photocredit application. It wires together the store,
// cache, handlers, middleware, and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *PostCache
	Views  ViewFuncs
	Logger *zap.Logger

	loginLimiter  *LoginLimiter
	creditWarning string
	customRoutes  []func(*App)
	opened        bool
}

// New creates a new App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
		Logger: zap.NewNop(),
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Open initializes the store, cache and credit dependencies without starting
// the HTTP server. Start calls it; command-line tools call it directly.
func (a *App) Open() error {
	if a.opened {
		return nil
	}
	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("photocredit: init store: %w", err)
		}
		a.Store = store
	}
	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)
	a.checkCreditDependencies()
	a.opened = true
	return nil
}

// Start initializes the application, registers middleware and routes, and
// serves HTTP until the server is shut down.
func (a *App) Start() error {
	if a.Config.AdminPassword == "" {
		return errors.New("photocredit: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return errors.New("photocredit: SessionSecret is required")
	}
	if err := a.Open(); err != nil {
		return err
	}

	a.loginLimiter = NewLoginLimiter(5, time.Minute)
	defer a.loginLimiter.Stop()

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.Logger.Info("starting server",
		zap.String("addr", a.Config.Addr),
		zap.String("site_url", a.Config.URL),
		zap.Bool("image_credits", a.CreditsEnabled()))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.Config.StaticDir)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/", a.handleHome)
	e.GET("/blog/:slug/", a.handlePost)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/post/:slug/", a.handleAdminPost)
	e.POST("/admin/save/", a.handleAdminSave)
	e.DELETE("/admin/post/:slug/", a.handleAdminDelete)
	e.GET("/admin/images/", a.handleImageList)
	e.POST("/admin/images/upload/", a.handleImageUpload)
	e.GET("/admin/images/:id/", a.handleImageEdit)
	e.POST("/admin/images/:id/", a.handleImageSave)
	e.DELETE("/admin/images/:id/", a.handleImageDelete)
	e.GET("/admin/settings/", a.handleSettings)
	e.POST("/admin/settings/", a.handleSettingsSave)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			return err
		}
	}
	_ = a.Logger.Sync()
	return nil
}
