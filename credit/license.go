package credit

import (
	"net/url"
	"regexp"
	"strings"
)

const ccVersionSuffix = " 4.0"

type licenseEntry struct {
	url   string
	usage string
}

// licenseCatalog maps the Creative Commons identifiers to their deeds.
var licenseCatalog = map[string]licenseEntry{
	"CC BY": {
		url:   "https://creativecommons.org/licenses/by/4.0/",
		usage: "CC BY 4.0 - Attribution required",
	},
	"CC BY-SA": {
		url:   "https://creativecommons.org/licenses/by-sa/4.0/",
		usage: "CC BY-SA 4.0 - Attribution required, share alike",
	},
	"CC BY-NC": {
		url:   "https://creativecommons.org/licenses/by-nc/4.0/",
		usage: "CC BY-NC 4.0 - Attribution required, non-commercial use only",
	},
	"CC BY-NC-SA": {
		url:   "https://creativecommons.org/licenses/by-nc-sa/4.0/",
		usage: "CC BY-NC-SA 4.0 - Attribution required, non-commercial use only, share alike",
	},
	"CC BY-ND": {
		url:   "https://creativecommons.org/licenses/by-nd/4.0/",
		usage: "CC BY-ND 4.0 - Attribution required, no derivatives",
	},
	"CC BY-NC-ND": {
		url:   "https://creativecommons.org/licenses/by-nc-nd/4.0/",
		usage: "CC BY-NC-ND 4.0 - Attribution required, non-commercial use only, no derivatives",
	},
	"CC0": {
		url:   "https://creativecommons.org/publicdomain/zero/1.0/",
		usage: "CC0 - Public Domain, no rights reserved",
	},
}

// Licenses lists the catalog identifiers in display order.
var Licenses = []string{
	"CC BY",
	"CC BY-SA",
	"CC BY-NC",
	"CC BY-NC-SA",
	"CC BY-ND",
	"CC BY-NC-ND",
	"CC0",
}

var parenSuffixRe = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// NormalizeLicense strips a trailing parenthetical label such as
// "(Attribution)" and surrounding whitespace.
func NormalizeLicense(id string) string {
	return strings.TrimSpace(parenSuffixRe.ReplaceAllString(id, ""))
}

// lookup resolves id to its catalog entry. Matching is case-sensitive and
// accepts the versioned form of each identifier.
func lookup(id string) (string, licenseEntry, bool) {
	key := NormalizeLicense(id)
	if e, ok := licenseCatalog[key]; ok {
		return key, e, true
	}
	for _, suffix := range []string{ccVersionSuffix, " 1.0"} {
		base, found := strings.CutSuffix(key, suffix)
		if !found {
			continue
		}
		if e, ok := licenseCatalog[base]; ok {
			return base, e, true
		}
	}
	return key, licenseEntry{}, false
}

// IsCC reports whether id names a Creative Commons license, known or not.
func IsCC(id string) bool {
	return strings.HasPrefix(NormalizeLicense(id), "CC")
}

// LicenseURL returns the canonical deed URL for a catalog license.
func LicenseURL(id string) (string, bool) {
	_, e, ok := lookup(id)
	if !ok {
		return "", false
	}
	return e.url, true
}

// UsageInfo returns a human-readable usage description. Identifiers outside
// the Creative Commons family pass through verbatim.
func UsageInfo(id string) string {
	key, e, ok := lookup(id)
	switch {
	case ok:
		return e.usage
	case key == "":
		return ""
	case strings.HasPrefix(key, "CC"):
		return key + " - Creative Commons license"
	default:
		return strings.TrimSpace(id)
	}
}

// FormatCCLicense returns id in display form: catalog licenses other than
// CC0 carry the " 4.0" version. Applying it twice changes nothing.
func FormatCCLicense(id string) string {
	base, _, ok := lookup(id)
	if !ok {
		return NormalizeLicense(id)
	}
	if base == "CC0" {
		return base
	}
	return base + ccVersionSuffix
}

// deedRef locates a deed by host and its first two path segments, e.g.
// creativecommons.org, "licenses", "by-sa".
type deedRef struct {
	host   string
	root   string
	family string
}

func parseDeed(rawURL string) (deedRef, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return deedRef{}, false
	}
	parts := strings.Split(strings.Trim(strings.ToLower(u.Path), "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return deedRef{}, false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return deedRef{host: host, root: parts[0], family: parts[1]}, true
}

// deedIndex maps the deed of every catalog URL back to its identifier.
var deedIndex = func() map[deedRef]string {
	idx := make(map[deedRef]string, len(licenseCatalog))
	for id, e := range licenseCatalog {
		if d, ok := parseDeed(e.url); ok {
			idx[d] = id
		}
	}
	return idx
}()

// IsCCLicenseURL reports whether rawURL points at a deed under one of the
// catalog's deed roots (licenses or public domain), including deeds outside
// the catalog such as the public domain mark.
func IsCCLicenseURL(rawURL string) bool {
	d, ok := parseDeed(rawURL)
	if !ok {
		return false
	}
	for ref := range deedIndex {
		if ref.host == d.host && ref.root == d.root {
			return true
		}
	}
	return false
}

// LicenseFromURL maps a deed URL back to its catalog identifier, e.g.
// .../licenses/by-sa/4.0/ to "CC BY-SA". The version is ignored.
func LicenseFromURL(rawURL string) (string, bool) {
	d, ok := parseDeed(rawURL)
	if !ok {
		return "", false
	}
	id, ok := deedIndex[d]
	return id, ok
}
