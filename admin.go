package photocredit

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/photocredit/credit"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return a.render(c, http.StatusOK, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminPost(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	post, err := a.Store.GetPostAny(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return a.render(c, http.StatusOK, a.Views.AdminPostForm(post, CsrfToken(c)))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	a.Logger.Warn("failed admin login", zap.String("remote_ip", ip))
	return a.render(c, http.StatusOK, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// postFromForm builds a Post from the admin editor form. The message is
// non-empty when the form is invalid.
func postFromForm(c echo.Context) (Post, string) {
	title := strings.TrimSpace(c.FormValue("title"))
	slug := strings.TrimSpace(c.FormValue("slug"))
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return Post{}, "Slug is required. Add a title or slug."
	}
	date := strings.TrimSpace(c.FormValue("date"))
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return Post{}, "Invalid date format. Use YYYY-MM-DD."
	}
	var featured int64
	if v := strings.TrimSpace(c.FormValue("featured_image")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 0 {
			return Post{}, "Featured image must be an image id."
		}
		featured = id
	}
	categories := TermsFromNames(SplitList(c.FormValue("categories")))
	tags := TermsFromNames(SplitList(c.FormValue("tags")))
	for _, t := range append(append([]credit.Term{}, categories...), tags...) {
		if t.Slug == "" {
			return Post{}, fmt.Sprintf("Category or tag %q needs at least one letter or digit.", t.Name)
		}
	}
	return Post{
		Slug:          slug,
		Title:         title,
		Date:          date,
		Author:        strings.TrimSpace(c.FormValue("author")),
		Categories:    categories,
		Tags:          tags,
		Summary:       c.FormValue("summary"),
		Content:       c.FormValue("content"),
		FeaturedImage: featured,
		Published:     c.FormValue("published") != "",
	}, ""
}

func (a *App) handleAdminSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	post, msg := postFromForm(c)
	if msg != "" {
		return a.renderAdminDashboard(c, msg)
	}
	if _, err := a.Store.GetPostAny(post.Slug); err == nil {
		post.Modified = time.Now().Format("2006-01-02")
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if err := a.Store.SavePost(post); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "saved")
}

func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Store.DeletePost(c.Param("slug")); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "deleted")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	posts, err := a.Store.ListAllPosts()
	if err != nil {
		return err
	}
	return a.render(c, http.StatusOK, a.Views.AdminDashboard(Dashboard{
		Posts:     posts,
		Message:   msg,
		Warning:   a.CreditWarning(),
		CSRFToken: CsrfToken(c),
	}))
}

func (a *App) handleSettings(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	settings, err := a.Store.LoadSettings()
	if err != nil {
		return err
	}
	return a.render(c, http.StatusOK, a.Views.AdminSettings(settings, c.QueryParam("msg"), CsrfToken(c)))
}

// settingsFromForm reads the credit settings form. The message is non-empty
// when the form is invalid.
func settingsFromForm(c echo.Context) (credit.Settings, string) {
	s := credit.Settings{
		TargetCategories:      SplitList(c.FormValue("target_categories")),
		TargetTags:            SplitList(c.FormValue("target_tags")),
		AutoGenerateCopyright: c.FormValue("auto_generate_copyright") != "",
		DefaultLicensePage:    strings.TrimSpace(c.FormValue("default_license_page")),
		IncludeSitemapData:    c.FormValue("include_sitemap_data") != "",
	}
	if s.DefaultLicensePage != "" && !credit.ValidURL(s.DefaultLicensePage) {
		return s, "Default license page must be an absolute URL."
	}
	return s, ""
}

func (a *App) handleSettingsSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	settings, msg := settingsFromForm(c)
	if msg != "" {
		return a.render(c, http.StatusUnprocessableEntity, a.Views.AdminSettings(settings, msg, CsrfToken(c)))
	}
	if err := a.Store.SaveSettings(settings); err != nil {
		return err
	}
	a.Logger.Info("credit settings saved",
		zap.Strings("target_categories", settings.TargetCategories),
		zap.Strings("target_tags", settings.TargetTags))
	return c.Redirect(http.StatusSeeOther, "/admin/settings/?msg=Settings+saved.")
}
