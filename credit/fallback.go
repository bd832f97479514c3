package credit

import (
	"net/url"
	"strings"
)

// ValidURL reports whether s parses as an absolute URL with a scheme and a
// host. Anything else is treated as absent by the resolvers.
func ValidURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// AcquireLicensePage returns the first well-formed URL among candidates.
func AcquireLicensePage(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if ValidURL(c) {
			return strings.TrimSpace(c), true
		}
	}
	return "", false
}

// ResolveAcquireLicensePage walks the acquisition-page chain: the image's own
// field, the field default, the settings default and finally the
// photographer's website.
func ResolveAcquireLicensePage(ic ImageCredit, fieldDefault string, s Settings) (string, bool) {
	return AcquireLicensePage(
		ic.AcquireLicensePage,
		fieldDefault,
		s.DefaultLicensePage,
		ic.PhotographerWebsite,
	)
}

// ResolveCopyrightNotice picks the copyright notice for an image. An explicit
// notice always wins. Otherwise, with automatic generation enabled, the
// credit text is used; without it, or when there is no credit text, the
// notice is "Photo by {photographer}".
func ResolveCopyrightNotice(ic ImageCredit, creditText string, s Settings) (string, bool) {
	if ic.CopyrightNotice != "" {
		return ic.CopyrightNotice, true
	}
	if s.AutoGenerateCopyright && creditText != "" {
		return creditText, true
	}
	if ic.Photographer != "" {
		return "Photo by " + ic.Photographer, true
	}
	return "", false
}
