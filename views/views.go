// Package views provides the default templ components for a photocredit
// site. Sites with their own design pass their own photocredit.ViewFuncs.
package views

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/photocredit"
	"github.com/eringen/photocredit/credit"
)

// New returns the default views for the site described by cfg.
func New(cfg photocredit.SiteConfig) photocredit.ViewFuncs {
	v := defaultViews{cfg: cfg}
	return photocredit.ViewFuncs{
		Home:           v.home,
		Post:           v.post,
		AdminLogin:     v.adminLogin,
		AdminDashboard: v.adminDashboard,
		AdminPostForm:  v.adminPostForm,
		AdminImages:    v.adminImages,
		AdminImageForm: v.adminImageForm,
		AdminSettings:  v.adminSettings,
		NotFound:       v.notFound,
		ServerError:    v.serverError,
	}
}

type defaultViews struct {
	cfg photocredit.SiteConfig
}

func (v defaultViews) layout(h *htmlWriter, page photocredit.PageMeta, body func()) {
	title := page.Title
	if title == "" {
		title = v.cfg.Name
	}
	h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"/>`)
	h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
	h.raw(`<title>`)
	h.text(title)
	h.raw(`</title>`)
	if page.Description != "" {
		h.raw(`<meta name="description"`)
		h.attr("content", page.Description)
		h.raw(`/>`)
	}
	if page.URL != "" {
		h.raw(`<link rel="canonical"`)
		h.attr("href", page.URL)
		h.raw(`/><meta property="og:url"`)
		h.attr("content", page.URL)
		h.raw(`/>`)
	}
	h.raw(`<meta property="og:title"`)
	h.attr("content", title)
	h.raw(`/>`)
	if page.OGType != "" {
		h.raw(`<meta property="og:type"`)
		h.attr("content", page.OGType)
		h.raw(`/>`)
	}
	for _, m := range page.Meta {
		metaTag(h, m)
	}
	for _, ld := range page.JSONLD {
		// JSON from encoding/json escapes <, > and &.
		h.raw(`<script type="application/ld+json">`, ld, `</script>`)
	}
	h.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml"/>`)
	h.raw(`<link rel="stylesheet" href="/public/styles.css"/></head><body><header><a href="/">`)
	h.text(v.cfg.Name)
	h.raw(`</a></header><main>`)
	body()
	h.raw(`</main></body></html>`)
}

func metaTag(h *htmlWriter, m credit.MetaTag) {
	if m.Rel != "" {
		h.raw(`<link`)
		h.attr("rel", m.Rel)
		h.attr("href", m.Content)
		h.raw(`/>`)
		return
	}
	h.raw(`<meta`)
	h.attr("name", m.Name)
	h.attr("property", m.Property)
	h.raw(` content="`, templ.EscapeString(m.Content), `"/>`)
}

func (v defaultViews) postList(h *htmlWriter, posts []photocredit.Post) {
	if len(posts) == 0 {
		h.raw(`<p class="empty">No posts yet.</p>`)
		return
	}
	h.raw(`<ul class="posts">`)
	for _, p := range posts {
		h.raw(`<li><a href="/blog/`, PathEscape(p.Slug), `/">`)
		h.text(p.Title)
		h.raw(`</a> <time`)
		h.attr("datetime", p.Date)
		h.raw(`>`)
		h.text(p.Date)
		h.raw(`</time>`)
		if p.Summary != "" {
			h.raw(`<p>`)
			h.text(p.Summary)
			h.raw(`</p>`)
		}
		h.raw(`</li>`)
	}
	h.raw(`</ul>`)
}

func (v defaultViews) home(posts []photocredit.Post, activeTag string, tags []credit.Term, page photocredit.PageMeta) templ.Component {
	return component(func(h *htmlWriter) {
		v.layout(h, page, func() {
			if len(tags) > 0 {
				h.raw(`<nav class="tags">`)
				for _, t := range tags {
					h.raw(`<a`)
					h.attr("class", TagClass(t.Slug == activeTag))
					h.raw(` href="/?tag=`, templ.EscapeString(PathEscape(t.Slug)), `">`)
					h.text(t.Name)
					h.raw(`</a>`)
				}
				h.raw(`</nav>`)
			}
			v.postList(h, posts)
		})
	})
}

func (v defaultViews) post(post photocredit.Post, body templ.Component, related []photocredit.Post, page photocredit.PageMeta) templ.Component {
	return component(func(h *htmlWriter) {
		v.layout(h, page, func() {
			h.raw(`<article><h1>`)
			h.text(post.Title)
			h.raw(`</h1><p class="meta"><time`)
			h.attr("datetime", post.Date)
			h.raw(`>`)
			h.text(post.Date)
			h.raw(`</time>`)
			for _, t := range post.Categories {
				h.raw(` <span class="category">`)
				h.text(t.Name)
				h.raw(`</span>`)
			}
			h.raw(`</p><div class="content">`)
			h.component(body)
			h.raw(`</div></article>`)
			if len(related) > 0 {
				h.raw(`<aside><h2>Related</h2>`)
				v.postList(h, related)
				h.raw(`</aside>`)
			}
		})
	})
}

func (v defaultViews) message(h *htmlWriter, class, msg string) {
	if msg == "" {
		return
	}
	h.raw(`<p class="`, class, `">`)
	h.text(msg)
	h.raw(`</p>`)
}

func csrfField(h *htmlWriter, token string) {
	h.raw(`<input type="hidden" name="_csrf"`)
	h.attr("value", token)
	h.raw(`/>`)
}

func (v defaultViews) adminPage(title string) photocredit.PageMeta {
	return photocredit.PageMeta{Title: title + " | " + v.cfg.Name}
}

func adminNav(h *htmlWriter, token string) {
	h.raw(`<nav class="admin"><a href="/admin/">Posts</a> <a href="/admin/images/">Images</a> <a href="/admin/settings/">Credit settings</a>`)
	h.raw(`<form method="post" action="/admin/logout/">`)
	csrfField(h, token)
	h.raw(`<button type="submit">Log out</button></form></nav>`)
}

func (v defaultViews) adminLogin(showError bool, csrfToken string) templ.Component {
	return component(func(h *htmlWriter) {
		v.layout(h, v.adminPage("Log in"), func() {
			if showError {
				v.message(h, "error", "Wrong password.")
			}
			h.raw(`<form method="post" action="/admin/login/">`)
			csrfField(h, csrfToken)
			h.raw(`<label>Password <input type="password" name="password" autofocus/></label><button type="submit">Log in</button></form>`)
		})
	})
}

func (v defaultViews) adminDashboard(d photocredit.Dashboard) templ.Component {
	return component(func(h *htmlWriter) {
		v.layout(h, v.adminPage("Admin"), func() {
			adminNav(h, d.CSRFToken)
			v.message(h, "warning", d.Warning)
			v.message(h, "notice", d.Message)
			h.raw(`<h2>New post</h2>`)
			v.postForm(h, photocredit.Post{Published: true}, d.CSRFToken)
			h.raw(`<h2>Posts</h2><table><tbody>`)
			for _, p := range d.Posts {
				h.raw(`<tr><td><a href="/admin/post/`, PathEscape(p.Slug), `/">`)
				h.text(p.Title)
				h.raw(`</a></td><td>`)
				h.text(p.Date)
				h.raw(`</td><td>`)
				if !p.Published {
					h.raw(`draft`)
				}
				h.raw(`</td></tr>`)
			}
			h.raw(`</tbody></table>`)
		})
	})
}

func (v defaultViews) postForm(h *htmlWriter, p photocredit.Post, token string) {
	h.raw(`<form method="post" action="/admin/save/" class="post-form">`)
	csrfField(h, token)
	input := func(label, name, value string) {
		h.raw(`<label>`, label, ` <input type="text"`)
		h.attr("name", name)
		h.attr("value", value)
		h.raw(`/></label>`)
	}
	input("Title", "title", p.Title)
	input("Slug", "slug", p.Slug)
	input("Date", "date", p.Date)
	input("Author", "author", p.Author)
	input("Categories", "categories", JoinTerms(p.Categories))
	input("Tags", "tags", JoinTerms(p.Tags))
	featured := ""
	if p.FeaturedImage > 0 {
		featured = itoa(p.FeaturedImage)
	}
	input("Featured image id", "featured_image", featured)
	h.raw(`<label>Summary <textarea name="summary">`)
	h.text(p.Summary)
	h.raw(`</textarea></label><label>Content <textarea name="content" rows="20">`)
	h.text(p.Content)
	h.raw(`</textarea></label><label><input type="checkbox" name="published" value="1"`)
	if p.Published {
		h.raw(` checked`)
	}
	h.raw(`/> Published</label><button type="submit">Save</button></form>`)
}

func (v defaultViews) adminPostForm(post photocredit.Post, csrfToken string) templ.Component {
	return component(func(h *htmlWriter) {
		v.layout(h, v.adminPage("Edit "+post.Title), func() {
			adminNav(h, csrfToken)
			v.postForm(h, post, csrfToken)
		})
	})
}

func (v defaultViews) adminImages(images []photocredit.Attachment, message, csrfToken string) templ.Component {
	return component(func(h *htmlWriter) {
		v.layout(h, v.adminPage("Images"), func() {
			adminNav(h, csrfToken)
			v.message(h, "notice", message)
			h.raw(`<form method="post" action="/admin/images/upload/" enctype="multipart/form-data">`)
			csrfField(h, csrfToken)
			h.raw(`<input type="file" name="image" accept="image/*"/><button type="submit">Upload</button></form>`)
			h.raw(`<ul class="images">`)
			for _, img := range images {
				id := itoa(img.ID)
				h.raw(`<li><a href="/admin/images/`, id, `/"><img`)
				h.attr("src", "/public/uploads/"+img.Filename)
				h.attr("alt", img.AltText)
				h.raw(` width="160"/></a> <code>![`)
				h.text(img.AltText)
				h.raw(`](media:`, id, `){}</code></li>`)
			}
			h.raw(`</ul>`)
		})
	})
}

var fieldLabels = map[string]string{
	credit.FieldPhotographer:        "Photographer",
	credit.FieldPhotographerWebsite: "Photographer website",
	credit.FieldLicense:             "CC license",
	credit.FieldLicenseURL:          "License link",
	credit.FieldAcquireLicensePage:  "Acquire license page",
	credit.FieldCopyrightNotice:     "Copyright notice",
}

func (v defaultViews) adminImageForm(img photocredit.Attachment, licenses []string, message, csrfToken string) templ.Component {
	return component(func(h *htmlWriter) {
		v.layout(h, v.adminPage("Image #"+itoa(img.ID)), func() {
			adminNav(h, csrfToken)
			v.message(h, "notice", message)
			h.raw(`<img`)
			h.attr("src", "/public/uploads/"+img.Filename)
			h.attr("alt", img.AltText)
			h.raw(` width="480"/><form method="post"`)
			h.attr("action", "/admin/images/"+itoa(img.ID)+"/")
			h.raw(`>`)
			csrfField(h, csrfToken)
			for _, f := range []struct{ label, name, value string }{
				{"Title", "title", img.Title},
				{"Alt text", "alt_text", img.AltText},
				{"Caption", "caption", img.Caption},
			} {
				h.raw(`<label>`, f.label, ` <input type="text"`)
				h.attr("name", f.name)
				h.attr("value", f.value)
				h.raw(`/></label>`)
			}
			h.raw(`<fieldset><legend>Credit</legend>`)
			for _, name := range credit.Fields {
				value := img.Fields[name]
				h.raw(`<label>`, fieldLabels[name], ` `)
				if name == credit.FieldLicense {
					h.raw(`<select name="`, name, `"><option value="">None</option>`)
					for _, l := range licenses {
						h.raw(`<option`)
						h.attr("value", l)
						if credit.NormalizeLicense(value) == l {
							h.raw(` selected`)
						}
						h.raw(`>`)
						h.text(l)
						h.raw(`</option>`)
					}
					h.raw(`</select></label>`)
					continue
				}
				h.raw(`<input type="text"`)
				h.attr("name", name)
				h.attr("value", value)
				h.raw(`/></label>`)
			}
			h.raw(`</fieldset><button type="submit">Save</button></form>`)
		})
	})
}

func (v defaultViews) adminSettings(s credit.Settings, message, csrfToken string) templ.Component {
	return component(func(h *htmlWriter) {
		v.layout(h, v.adminPage("Credit settings"), func() {
			adminNav(h, csrfToken)
			v.message(h, "notice", message)
			h.raw(`<form method="post" action="/admin/settings/">`)
			csrfField(h, csrfToken)
			text := func(label, name, value string) {
				h.raw(`<label>`, label, ` <input type="text"`)
				h.attr("name", name)
				h.attr("value", value)
				h.raw(`/></label>`)
			}
			check := func(label, name string, on bool) {
				h.raw(`<label><input type="checkbox" name="`, name, `" value="1"`)
				if on {
					h.raw(` checked`)
				}
				h.raw(`/> `, label, `</label>`)
			}
			text("Target categories", "target_categories", strings.Join(s.TargetCategories, ", "))
			text("Target tags", "target_tags", strings.Join(s.TargetTags, ", "))
			check("Generate copyright notice from credit line", "auto_generate_copyright", s.AutoGenerateCopyright)
			text("Default license page", "default_license_page", s.DefaultLicensePage)
			check("Add image credits to the sitemap", "include_sitemap_data", s.IncludeSitemapData)
			h.raw(`<button type="submit">Save</button></form>`)
		})
	})
}

func (v defaultViews) notFound() templ.Component {
	return component(func(h *htmlWriter) {
		v.layout(h, photocredit.PageMeta{Title: "Not found | " + v.cfg.Name}, func() {
			h.raw(`<h1>Not found</h1><p>The page you are looking for does not exist.</p>`)
		})
	})
}

func (v defaultViews) serverError() templ.Component {
	return component(func(h *htmlWriter) {
		v.layout(h, photocredit.PageMeta{Title: "Error | " + v.cfg.Name}, func() {
			h.raw(`<h1>Something went wrong</h1><p>Please try again later.</p>`)
		})
	})
}
