// Package credit resolves photographer credit and Creative Commons license
// data for media attachments into Schema.org ImageObject records.
//
// All functions in this package are pure: they take field values and
// settings as arguments and never perform I/O. Missing or malformed input
// results in omitted output, never an error.
package credit

import (
	"strings"
	"time"
)

// Field names stored on attachments.
const (
	FieldPhotographer        = "photographer"
	FieldPhotographerWebsite = "photographer_website"
	FieldLicense             = "cc_license"
	FieldLicenseURL          = "cc_license_link"
	FieldAcquireLicensePage  = "acquire_license_page"
	FieldCopyrightNotice     = "copyright_notice"
)

// Fields lists every credit field in the order the admin form shows them.
var Fields = []string{
	FieldPhotographer,
	FieldPhotographerWebsite,
	FieldLicense,
	FieldLicenseURL,
	FieldAcquireLicensePage,
	FieldCopyrightNotice,
}

// DefaultCategory is the target category used when settings name none.
const DefaultCategory = "photolog"

// FieldReader reads a single custom field of an entity. The boolean is false
// when the field is absent.
type FieldReader interface {
	Field(entityID int64, name string) (string, bool)
}

// Asset carries read-only facts about an uploaded image.
type Asset struct {
	ID         int64
	URL        string
	Width      int
	Height     int
	Title      string
	AltText    string
	Caption    string
	UploadedAt time.Time
}

// ImageCredit is an asset together with its credit fields.
type ImageCredit struct {
	Asset

	Photographer        string
	PhotographerWebsite string
	License             string
	LicenseURL          string
	AcquireLicensePage  string
	CopyrightNotice     string
}

// Creditable reports whether the credit carries a photographer or a license.
func (ic ImageCredit) Creditable() bool {
	return ic.Photographer != "" || ic.License != ""
}

// LoadCredit reads all credit fields of a through fr. Values are trimmed;
// whitespace-only values count as absent.
func LoadCredit(fr FieldReader, a Asset) ImageCredit {
	ic := ImageCredit{Asset: a}
	if fr == nil {
		return ic
	}
	get := func(name string) string {
		v, ok := fr.Field(a.ID, name)
		if !ok {
			return ""
		}
		return strings.TrimSpace(v)
	}
	ic.Photographer = get(FieldPhotographer)
	ic.PhotographerWebsite = get(FieldPhotographerWebsite)
	ic.License = get(FieldLicense)
	ic.LicenseURL = get(FieldLicenseURL)
	ic.AcquireLicensePage = get(FieldAcquireLicensePage)
	ic.CopyrightNotice = get(FieldCopyrightNotice)
	return ic
}

// Settings is the persisted configuration consulted by every resolver.
type Settings struct {
	TargetCategories      []string `json:"target_categories"`
	TargetTags            []string `json:"target_tags"`
	AutoGenerateCopyright bool     `json:"auto_generate_copyright"`
	DefaultLicensePage    string   `json:"default_license_page"`
	IncludeSitemapData    bool     `json:"include_sitemap_data"`
}

// DefaultSettings returns the settings record written on first use.
func DefaultSettings() Settings {
	return Settings{
		TargetCategories:      []string{DefaultCategory},
		TargetTags:            []string{},
		AutoGenerateCopyright: true,
		DefaultLicensePage:    "",
		IncludeSitemapData:    true,
	}
}

// Term is a category or tag assigned to a post.
type Term struct {
	Name string
	Slug string
	URL  string
}

// PostContext is what the applicability filter needs to know about a post.
type PostContext struct {
	Categories []Term
	Tags       []Term
	Singular   bool
}
