package photocredit

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/photocredit/credit"
)

const mediaRSSNS = "http://search.yahoo.com/mrss/"

type rssXML struct {
	XMLName    xml.Name   `xml:"rss"`
	Version    string     `xml:"version,attr"`
	XMLNSMedia string     `xml:"xmlns:media,attr"`
	Channel    rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string     `xml:"title"`
	Link        string     `xml:"link"`
	Description string     `xml:"description"`
	PubDate     string     `xml:"pubDate"`
	GUID        string     `xml:"guid"`
	Media       []rssMedia `xml:"media:content"`
}

type rssMedia struct {
	URL       string           `xml:"url,attr"`
	Medium    string           `xml:"medium,attr"`
	Width     int              `xml:"width,attr,omitempty"`
	Height    int              `xml:"height,attr,omitempty"`
	Credit    *rssMediaCredit  `xml:"media:credit,omitempty"`
	Copyright string           `xml:"media:copyright,omitempty"`
	License   *rssMediaLicense `xml:"media:license,omitempty"`
}

type rssMediaCredit struct {
	Role string `xml:"role,attr"`
	Name string `xml:",chardata"`
}

type rssMediaLicense struct {
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr"`
	Name string `xml:",chardata"`
}

// feedMedia describes the credited images of a post for Media RSS. Like the
// sitemap, the feed is not a single-post view, so only the category and tag
// match is checked.
func (a *App) feedMedia(post Post, settings credit.Settings) []rssMedia {
	if !a.CreditsEnabled() || !credit.Matches(post.CreditContext(true), settings) {
		return nil
	}
	var out []rssMedia
	opts := a.buildOptions()
	for _, ic := range a.postCredits(post, a.RenderContent(post.Content)) {
		s, ok := credit.Build(ic, settings, opts)
		if !ok {
			continue
		}
		m := rssMedia{
			URL:       s.ContentURL,
			Medium:    "image",
			Width:     s.Width,
			Height:    s.Height,
			Copyright: s.CopyrightNotice,
		}
		if s.Creator != nil {
			m.Credit = &rssMediaCredit{Role: "photographer", Name: s.Creator.Name}
		}
		if s.LicenseURL != "" {
			m.License = &rssMediaLicense{Href: s.LicenseURL, Type: "text/html", Name: credit.FormatCCLicense(ic.License)}
		}
		out = append(out, m)
	}
	return out
}

func (a *App) buildFeed(posts []Post) rssXML {
	base := a.Config.URL
	settings, settingsErr := a.Store.LoadSettings()
	if settingsErr != nil {
		a.Logger.Warn("feed without media credits", zap.Error(settingsErr))
	}
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		pubDate := ""
		if t, err := time.Parse("2006-01-02", p.Date); err == nil {
			pubDate = t.Format(time.RFC1123Z)
		}
		postURL := BuildURL(base, "blog", p.Slug)
		item := rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: p.Summary,
			PubDate:     pubDate,
			GUID:        postURL,
		}
		if settingsErr == nil {
			item.Media = a.feedMedia(p, settings)
		}
		items = append(items, item)
	}
	return rssXML{
		Version:    "2.0",
		XMLNSMedia: mediaRSSNS,
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	}
}

func (a *App) renderRSS(c echo.Context, posts []Post) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(a.buildFeed(posts))
}
