package photocredit

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/photocredit/credit"
)

// render writes a templ component as an HTML response with the given status.
func (a *App) render(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

func (a *App) handleHome(c echo.Context) error {
	tag := c.QueryParam("tag")
	posts, err := a.Cache.ListPosts(tag)
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	page := PageMeta{
		Title:       a.Config.Name,
		Description: a.Config.Description,
		URL:         BuildURL(a.Config.URL),
		OGType:      "website",
		JSONLD:      []string{WebsiteJSONLD(a.Config)},
	}
	return a.render(c, http.StatusOK, a.Views.Home(posts, tag, tags, page))
}

func (a *App) handlePost(c echo.Context) error {
	post, err := a.Cache.GetPost(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.render(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}

	rendered := a.RenderContent(post.Content)
	schemas, err := a.ImageSchemas(post, rendered, true)
	if err != nil {
		// The page still renders, only without image credits.
		a.Logger.Warn("resolve image credits", zap.String("slug", post.Slug), zap.Error(err))
		schemas = nil
	}
	page := a.postPage(post, schemas)
	return a.render(c, http.StatusOK, a.Views.Post(post, templ.Raw(rendered), FilterRelatedPosts(post, posts), page))
}

func (a *App) postPage(post Post, schemas []credit.ImageSchema) PageMeta {
	page := PageMeta{
		Title:       post.Title + " | " + a.Config.Name,
		Description: post.Summary,
		URL:         BuildURL(a.Config.URL, "blog", post.Slug),
		OGType:      "article",
		JSONLD:      []string{BlogPostingJSONLD(post, a.Config, schemas)},
		Meta:        credit.HeadMeta(schemas),
	}
	if images := credit.JSONLD(schemas); images != "" {
		page.JSONLD = append(page.JSONLD, images)
	}
	return page
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

// handleRobots serves robots.txt from the static directory, or a default
// that points crawlers at the sitemap.
func (a *App) handleRobots(c echo.Context) error {
	path := filepath.Join(a.Config.StaticDir, "robots.txt")
	if _, err := os.Stat(path); err == nil {
		return c.File(path)
	}
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Disallow: /admin/\n")
	b.WriteString("Sitemap: " + strings.TrimSuffix(BuildURL(a.Config.URL), "/") + "/sitemap.xml\n")
	return c.String(http.StatusOK, b.String())
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = a.render(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error",
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err))
		_ = a.render(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
