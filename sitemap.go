package photocredit

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/photocredit/credit"
)

const (
	sitemapNS      = "http://www.sitemaps.org/schemas/sitemap/0.9"
	sitemapImageNS = "http://www.google.com/schemas/sitemap-image/1.1"
)

type sitemapURLSet struct {
	XMLName  xml.Name     `xml:"urlset"`
	XMLNS    string       `xml:"xmlns,attr"`
	XMLNSImg string       `xml:"xmlns:image,attr,omitempty"`
	URLs     []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string         `xml:"loc"`
	LastMod string         `xml:"lastmod,omitempty"`
	Images  []sitemapImage `xml:"image:image"`
}

type sitemapImage struct {
	Loc     string `xml:"image:loc"`
	Caption string `xml:"image:caption,omitempty"`
	Title   string `xml:"image:title,omitempty"`
	License string `xml:"image:license,omitempty"`
}

// sitemapImageEntry converts a credited image to its sitemap element. The
// credit line is appended to the caption since the image extension has no
// element of its own for it.
func sitemapImageEntry(img credit.SitemapImage) sitemapImage {
	caption := img.Caption
	if img.Credit != "" {
		if caption != "" {
			caption += " "
		}
		caption += "(" + img.Credit + ")"
	}
	return sitemapImage{
		Loc:     img.Loc,
		Caption: caption,
		Title:   img.Title,
		License: img.License,
	}
}

func (a *App) buildSitemap(posts []Post) sitemapURLSet {
	base := a.Config.URL
	set := sitemapURLSet{
		XMLNS: sitemapNS,
		URLs:  []sitemapURL{{Loc: BuildURL(base)}},
	}

	settings, err := a.Store.LoadSettings()
	if err != nil {
		a.Logger.Warn("sitemap without image data", zap.Error(err))
		settings = credit.Settings{}
	}
	for _, p := range posts {
		u := sitemapURL{
			Loc:     BuildURL(base, "blog", p.Slug),
			LastMod: p.Date,
		}
		if p.Modified != "" {
			u.LastMod = p.Modified
		}
		for _, img := range a.SitemapImages(p, settings) {
			u.Images = append(u.Images, sitemapImageEntry(img))
		}
		if len(u.Images) > 0 {
			set.XMLNSImg = sitemapImageNS
		}
		set.URLs = append(set.URLs, u)
	}
	return set
}

func (a *App) renderSitemap(c echo.Context, posts []Post) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(a.buildSitemap(posts))
}
