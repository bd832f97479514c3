package credit

import (
	"encoding/json"
	"time"
)

// Person is the creator of an image.
type Person struct {
	Name string
	URL  string
}

// ImageSchema is the resolved credit record for one image. Empty fields are
// omitted from the JSON-LD output.
type ImageSchema struct {
	ID                 int64
	ContentURL         string
	Name               string
	Caption            string
	Creator            *Person
	LicenseURL         string
	UsageInfo          string
	CreditText         string
	AcquireLicensePage string
	CopyrightNotice    string
	Width              int
	Height             int
	UploadedAt         time.Time
}

// BuildOptions carries values that come from the field definitions rather
// than from the image or the settings record.
type BuildOptions struct {
	// AcquirePageDefault is the default value configured for the
	// acquire_license_page field.
	AcquirePageDefault string
}

// CreditText formats the visible credit line, "Photo by {photographer} /
// {license}". The license part is dropped when no license is set; without a
// photographer there is no credit line.
func CreditText(ic ImageCredit) string {
	if ic.Photographer == "" {
		return ""
	}
	text := "Photo by " + ic.Photographer
	if ic.License != "" {
		text += " / " + FormatCCLicense(ic.License)
	}
	return text
}

// ResolvedLicenseURL returns the license URL for ic: a well-formed explicit
// value wins over the catalog URL.
func ResolvedLicenseURL(ic ImageCredit) (string, bool) {
	if ic.License == "" {
		return "", false
	}
	if ValidURL(ic.LicenseURL) {
		return ic.LicenseURL, true
	}
	return LicenseURL(ic.License)
}

// PendingLicenseURL returns the catalog URL that should be stored on the
// license-link field: only when a license is selected, no link is set yet
// and the catalog knows the license.
func PendingLicenseURL(ic ImageCredit) (string, bool) {
	if ic.License == "" || ic.LicenseURL != "" {
		return "", false
	}
	return LicenseURL(ic.License)
}

// Build resolves ic into an ImageSchema. The boolean is false when the image
// has neither a photographer nor a license.
func Build(ic ImageCredit, s Settings, opts BuildOptions) (ImageSchema, bool) {
	if !ic.Creditable() {
		return ImageSchema{}, false
	}
	out := ImageSchema{
		ID:         ic.ID,
		ContentURL: ic.URL,
		Name:       ic.Title,
		Caption:    ic.AltText,
		UploadedAt: ic.UploadedAt,
	}
	if out.Caption == "" {
		out.Caption = ic.Caption
	}
	if ic.Photographer != "" {
		out.Creator = &Person{Name: ic.Photographer, URL: ic.PhotographerWebsite}
	}
	if ic.License != "" {
		out.LicenseURL, _ = ResolvedLicenseURL(ic)
		out.UsageInfo = UsageInfo(ic.License)
	}
	out.CreditText = CreditText(ic)
	out.AcquireLicensePage, _ = ResolveAcquireLicensePage(ic, opts.AcquirePageDefault, s)
	out.CopyrightNotice, _ = ResolveCopyrightNotice(ic, out.CreditText, s)
	if ic.Width > 0 && ic.Height > 0 {
		out.Width = ic.Width
		out.Height = ic.Height
	}
	return out, true
}

// JSONLD returns the schema.org ImageObject representation of s.
func (s ImageSchema) JSONLD() map[string]interface{} {
	data := map[string]interface{}{
		"@context":   "https://schema.org",
		"@type":      "ImageObject",
		"contentUrl": s.ContentURL,
		"url":        s.ContentURL,
	}
	if s.Name != "" {
		data["name"] = s.Name
	}
	if s.Caption != "" {
		data["caption"] = s.Caption
	}
	if s.Creator != nil {
		creator := map[string]string{
			"@type": "Person",
			"name":  s.Creator.Name,
		}
		if s.Creator.URL != "" {
			creator["url"] = s.Creator.URL
		}
		data["creator"] = creator
	}
	optional := map[string]string{
		"license":            s.LicenseURL,
		"usageInfo":          s.UsageInfo,
		"creditText":         s.CreditText,
		"acquireLicensePage": s.AcquireLicensePage,
		"copyrightNotice":    s.CopyrightNotice,
	}
	for k, v := range optional {
		if v != "" {
			data[k] = v
		}
	}
	if s.Width > 0 && s.Height > 0 {
		data["width"] = s.Width
		data["height"] = s.Height
	}
	if !s.UploadedAt.IsZero() {
		data["uploadDate"] = s.UploadedAt.UTC().Format(time.RFC3339)
	}
	return data
}

// JSONLD serializes schemas as a JSON array of ImageObject records. It
// returns the empty string when there is nothing to emit.
func JSONLD(schemas []ImageSchema) string {
	if len(schemas) == 0 {
		return ""
	}
	objects := make([]map[string]interface{}, 0, len(schemas))
	for _, s := range schemas {
		objects = append(objects, s.JSONLD())
	}
	b, err := json.Marshal(objects)
	if err != nil {
		return ""
	}
	return string(b)
}
