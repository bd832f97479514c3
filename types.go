package photocredit

import (
	"time"

	"github.com/eringen/photocredit/credit"
)

// Post is the core content type stored in SQLite and rendered by templates.
type Post struct {
	Title         string
	Date          string
	Modified      string
	Author        string
	Categories    []credit.Term
	Tags          []credit.Term
	Summary       string
	Link          string
	Slug          string
	Content       string
	FeaturedImage int64
	Published     bool
}

// TermNames returns the names of terms in order.
func TermNames(terms []credit.Term) []string {
	names := make([]string, 0, len(terms))
	for _, t := range terms {
		names = append(names, t.Name)
	}
	return names
}

// CreditContext returns what the applicability filter needs to know about p.
func (p Post) CreditContext(singular bool) credit.PostContext {
	return credit.PostContext{
		Categories: p.Categories,
		Tags:       p.Tags,
		Singular:   singular,
	}
}

// Attachment is an uploaded image together with its credit fields.
type Attachment struct {
	ID           int64
	Filename     string
	OriginalName string
	Title        string
	AltText      string
	Caption      string
	Width        int
	Height       int
	Size         int
	Hash         uint64 // perceptual hash of the stored image
	UploadedAt   time.Time
	Fields       map[string]string
}

// Asset converts a into the read-only facts the credit engine consumes.
func (a Attachment) Asset(baseURL string) credit.Asset {
	return credit.Asset{
		ID:         a.ID,
		URL:        AttachmentURL(baseURL, a.Filename),
		Width:      a.Width,
		Height:     a.Height,
		Title:      a.Title,
		AltText:    a.AltText,
		Caption:    a.Caption,
		UploadedAt: a.UploadedAt,
	}
}

// PageMeta carries per-page OpenGraph, SEO and structured-data metadata into
// the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	JSONLD      []string
	Meta        []credit.MetaTag
}
