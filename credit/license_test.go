package credit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLicenseURLCatalog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id     string
		family string
	}{
		{"CC BY", "/licenses/by/4.0/"},
		{"CC BY-SA", "/licenses/by-sa/4.0/"},
		{"CC BY-NC", "/licenses/by-nc/4.0/"},
		{"CC BY-NC-SA", "/licenses/by-nc-sa/4.0/"},
		{"CC BY-ND", "/licenses/by-nd/4.0/"},
		{"CC BY-NC-ND", "/licenses/by-nc-nd/4.0/"},
		{"CC0", "/publicdomain/zero/1.0/"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			u, ok := LicenseURL(tt.id)
			assert.True(t, ok)
			assert.True(t, strings.HasSuffix(u, tt.family), "url %q", u)
			assert.True(t, IsCCLicenseURL(u))

			// The formatted form resolves to the same deed.
			formatted := FormatCCLicense(tt.id)
			u2, ok := LicenseURL(formatted)
			assert.True(t, ok)
			assert.Equal(t, u, u2)
			assert.Equal(t, formatted, FormatCCLicense(formatted))
		})
	}
}

func TestLicenseURLVariants(t *testing.T) {
	t.Parallel()

	u, ok := LicenseURL("CC BY-SA 4.0")
	assert.True(t, ok)
	assert.Equal(t, "https://creativecommons.org/licenses/by-sa/4.0/", u)

	u, ok = LicenseURL("CC BY (Attribution)")
	assert.True(t, ok)
	assert.Equal(t, "https://creativecommons.org/licenses/by/4.0/", u)

	u, ok = LicenseURL("CC0 1.0")
	assert.True(t, ok)
	assert.Equal(t, "https://creativecommons.org/publicdomain/zero/1.0/", u)

	_, ok = LicenseURL("cc by")
	assert.False(t, ok, "matching is case-sensitive")

	_, ok = LicenseURL("CC BY-XYZ")
	assert.False(t, ok)

	_, ok = LicenseURL("All rights reserved")
	assert.False(t, ok)
}

func TestUsageInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want string
	}{
		{"CC BY", "CC BY 4.0 - Attribution required"},
		{"CC0", "CC0 - Public Domain, no rights reserved"},
		{"CC BY-NC-ND (Attribution NonCommercial NoDerivs)", "CC BY-NC-ND 4.0 - Attribution required, non-commercial use only, no derivatives"},
		{"CC BY-XYZ", "CC BY-XYZ - Creative Commons license"},
		{"All rights reserved", "All rights reserved"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UsageInfo(tt.id), "UsageInfo(%q)", tt.id)
	}
}

func TestFormatCCLicense(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want string
	}{
		{"CC BY", "CC BY 4.0"},
		{"CC BY 4.0", "CC BY 4.0"},
		{"CC BY-NC-SA (NonCommercial ShareAlike)", "CC BY-NC-SA 4.0"},
		{"CC0", "CC0"},
		{"CC BY-XYZ", "CC BY-XYZ"},
		{"Editorial use only", "Editorial use only"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCCLicense(tt.id), "FormatCCLicense(%q)", tt.id)
	}
}

func TestIsCC(t *testing.T) {
	t.Parallel()

	assert.True(t, IsCC("CC BY"))
	assert.True(t, IsCC("CC BY-XYZ"))
	assert.False(t, IsCC("Public domain"))
	assert.False(t, IsCC(""))
}

func TestIsCCLicenseURL(t *testing.T) {
	t.Parallel()

	assert.True(t, IsCCLicenseURL("https://creativecommons.org/licenses/by/4.0/"))
	assert.True(t, IsCCLicenseURL("//creativecommons.org/publicdomain/mark/1.0/"))
	assert.False(t, IsCCLicenseURL("https://creativecommons.org/"))
	assert.False(t, IsCCLicenseURL(""))
	assert.True(t, IsCCLicenseURL("https://www.creativecommons.org/licenses/by-nc/4.0/deed.fr"))
	assert.False(t, IsCCLicenseURL("https://notcreativecommons.org/licenses/by/4.0/"))
	assert.False(t, IsCCLicenseURL("https://example.com/?ref=creativecommons.org/licenses/by/4.0/"))
	assert.False(t, IsCCLicenseURL("https://creativecommons.org/about/team/"))
}

func TestLicenseFromURL(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"https://creativecommons.org/licenses/by-sa/4.0/":     "CC BY-SA",
		"http://creativecommons.org/licenses/by-nc-nd/3.0/":   "CC BY-NC-ND",
		"https://creativecommons.org/publicdomain/zero/1.0/":  "CC0",
		"https://creativecommons.org/licenses/by/4.0/deed.de": "CC BY",
	}
	for in, want := range tests {
		got, ok := LicenseFromURL(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "https://creativecommons.org/", "https://creativecommons.org/licenses/sampling/1.0/", "https://example.com/license"} {
		_, ok := LicenseFromURL(in)
		assert.False(t, ok, in)
	}
}
