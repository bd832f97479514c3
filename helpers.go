package photocredit

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"unicode"

	"github.com/eringen/photocredit/credit"
)

// Slugify converts a title to a slug of lower-case letters and digits joined
// by hyphens. Letters outside ASCII are kept.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// AttachmentURL is the public URL of an uploaded file. Uploads are served
// from /public/uploads without a trailing slash.
func AttachmentURL(base, filename string) string {
	if filename == "" {
		return ""
	}
	return strings.TrimSuffix(BuildURL(base, "public", "uploads", filename), "/")
}

// SplitList splits a comma-separated form value into trimmed, non-empty items.
func SplitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// TermsFromNames builds terms from display names, deriving slugs.
func TermsFromNames(names []string) []credit.Term {
	var terms []credit.Term
	for _, n := range names {
		terms = append(terms, credit.Term{Name: n, Slug: Slugify(n)})
	}
	return terms
}

// FilterRelatedPosts finds posts that share at least one tag or category
// with current.
func FilterRelatedPosts(current Post, posts []Post) []Post {
	set := make(map[string]struct{})
	for _, t := range append(append([]credit.Term{}, current.Tags...), current.Categories...) {
		if s := normalizeTerm(t.Slug); s != "" {
			set[s] = struct{}{}
		}
	}
	var related []Post
	for _, p := range posts {
		if p.Slug == current.Slug {
			continue
		}
		for _, t := range append(append([]credit.Term{}, p.Tags...), p.Categories...) {
			if _, ok := set[normalizeTerm(t.Slug)]; ok {
				related = append(related, p)
				break
			}
		}
	}
	return related
}

func marshalJSONLD(data map[string]any) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// WebsiteJSONLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJSONLD(cfg SiteConfig) string {
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL),
		"description": cfg.Description,
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	return marshalJSONLD(data)
}

// BlogPostingJSONLD returns a JSON-LD string for a BlogPosting schema. The
// content URLs of credited images are listed under "image".
func BlogPostingJSONLD(post Post, cfg SiteConfig, images []credit.ImageSchema) string {
	postURL := BuildURL(cfg.URL, "blog", post.Slug)
	data := map[string]any{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   post.Summary,
		"datePublished": post.Date,
		"url":           postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if post.Modified != "" {
		data["dateModified"] = post.Modified
	}
	author := post.Author
	if author == "" {
		author = cfg.Author
	}
	if author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  author,
		}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	if keywords := TermNames(post.Tags); len(keywords) > 0 {
		data["keywords"] = strings.Join(keywords, ", ")
	}
	if len(images) > 0 {
		urls := make([]string, 0, len(images))
		for _, img := range images {
			urls = append(urls, img.ContentURL)
		}
		data["image"] = urls
	}
	return marshalJSONLD(data)
}
