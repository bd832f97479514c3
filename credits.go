package photocredit

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/eringen/photocredit/credit"
	"github.com/eringen/photocredit/markdown"
)

const fieldStorageWarning = "Image credit output is disabled: the attachment field storage is not available. " +
	"Check the database schema (attachment_fields table) and restart."

// checkCreditDependencies disables credit output when the attachment field
// storage is missing. The admin dashboard shows the warning.
func (a *App) checkCreditDependencies() {
	if a.Store != nil && a.Store.FieldStorageReady() {
		a.creditWarning = ""
		return
	}
	a.creditWarning = fieldStorageWarning
	a.Logger.Warn("image credit output disabled", zap.String("reason", "attachment field storage unavailable"))
}

// CreditsEnabled reports whether image credit output is active.
func (a *App) CreditsEnabled() bool {
	return a.creditWarning == ""
}

// CreditWarning is the administrator notice shown while credits are disabled.
func (a *App) CreditWarning() string {
	return a.creditWarning
}

func (a *App) fieldReader() credit.FieldReader {
	return FieldAdapter{Store: a.Store, Logger: a.Logger}
}

func (a *App) resolveMedia(id int64) (markdown.Media, bool) {
	att, err := a.Store.GetAttachment(id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.Logger.Warn("resolve media", zap.Int64("attachment_id", id), zap.Error(err))
		}
		return markdown.Media{}, false
	}
	return markdown.Media{
		URL:    AttachmentURL(a.Config.URL, att.Filename),
		Width:  att.Width,
		Height: att.Height,
		Alt:    att.AltText,
	}, true
}

// RenderContent renders a post body to HTML, resolving media references
// against the attachment store.
func (a *App) RenderContent(content string) string {
	return markdown.Renderer{Media: a.resolveMedia}.HTML(content)
}

// postCredits loads the credit record of every image the post displays: the
// featured image first, then images embedded in rendered, in order.
func (a *App) postCredits(post Post, rendered string) []credit.ImageCredit {
	fr := a.fieldReader()
	var out []credit.ImageCredit
	for _, id := range credit.ExtractImageIDs(rendered, post.FeaturedImage) {
		att, err := a.Store.GetAttachment(id)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				a.Logger.Warn("load attachment", zap.Int64("attachment_id", id), zap.Error(err))
			}
			continue
		}
		ic := credit.LoadCredit(fr, att.Asset(a.Config.URL))
		a.autofillLicenseURL(&ic)
		out = append(out, ic)
	}
	return out
}

// autofillLicenseURL stores the catalog URL on an image whose license is set
// but whose license link is empty. The write happens once; a link that is
// already present is never overwritten.
func (a *App) autofillLicenseURL(ic *credit.ImageCredit) {
	u, ok := credit.PendingLicenseURL(*ic)
	if !ok {
		return
	}
	wrote, err := a.Store.SetFieldIfEmpty(ic.ID, credit.FieldLicenseURL, u)
	if err != nil {
		a.Logger.Warn("autofill license link", zap.Int64("attachment_id", ic.ID), zap.Error(err))
		return
	}
	if wrote {
		a.Logger.Info("license link filled from catalog",
			zap.Int64("attachment_id", ic.ID),
			zap.String("license", ic.License),
			zap.String("url", u))
	}
	ic.LicenseURL = u
}

func (a *App) buildOptions() credit.BuildOptions {
	return credit.BuildOptions{AcquirePageDefault: a.Config.Fields.AcquireLicensePageDefault}
}

// ImageSchemas resolves the ImageObject records for post. rendered is the
// post's HTML body. Nothing is returned when credits are disabled or the post
// is not applicable.
func (a *App) ImageSchemas(post Post, rendered string, singular bool) ([]credit.ImageSchema, error) {
	if !a.CreditsEnabled() {
		return nil, nil
	}
	settings, err := a.Store.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if !credit.IsApplicable(post.CreditContext(singular), settings) {
		return nil, nil
	}
	var schemas []credit.ImageSchema
	opts := a.buildOptions()
	for _, ic := range a.postCredits(post, rendered) {
		if s, ok := credit.Build(ic, settings, opts); ok {
			schemas = append(schemas, s)
		}
	}
	return schemas, nil
}

// SitemapImages returns the image sitemap entries of post. Entries are
// produced only when sitemap data is enabled and the post belongs to a
// target category or tag.
func (a *App) SitemapImages(post Post, settings credit.Settings) []credit.SitemapImage {
	if !a.CreditsEnabled() || !settings.IncludeSitemapData {
		return nil
	}
	if !credit.Matches(post.CreditContext(true), settings) {
		return nil
	}
	var images []credit.SitemapImage
	for _, ic := range a.postCredits(post, a.RenderContent(post.Content)) {
		if img, ok := credit.BuildSitemapImage(ic); ok {
			images = append(images, img)
		}
	}
	return images
}

// PostJSONLD returns the ImageObject JSON-LD of a post as it would appear on
// its single-post page. Unpublished posts are included.
func (a *App) PostJSONLD(slug string) (string, error) {
	post, err := a.Store.GetPostAny(slug)
	if err != nil {
		return "", fmt.Errorf("post %q: %w", slug, err)
	}
	schemas, err := a.ImageSchemas(post, a.RenderContent(post.Content), true)
	if err != nil {
		return "", err
	}
	return credit.JSONLD(schemas), nil
}
