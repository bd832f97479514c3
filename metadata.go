package photocredit

import (
	"bytes"
	"strings"

	"github.com/bep/imagemeta"

	"github.com/eringen/photocredit/credit"
)

// embeddedCredit holds the credit values found in an uploaded file's EXIF,
// IPTC and XMP metadata.
type embeddedCredit struct {
	byline       string // IPTC By-line
	artist       string // EXIF Artist
	creator      string // XMP dc:creator
	iptcNotice   string
	exifNotice   string
	rights       string // XMP dc:rights
	licenseLinks []string
}

var wantedMetaTags = map[imagemeta.Source]map[string]bool{
	imagemeta.IPTC: {"Byline": true, "CopyrightNotice": true},
	imagemeta.EXIF: {"Artist": true, "Copyright": true},
	imagemeta.XMP: {
		"Creator":      true,
		"Rights":       true,
		"License":      true,
		"WebStatement": true,
		"UsageTerms":   true,
	},
}

// metaFormats are the decoded formats that can carry credit metadata.
var metaFormats = map[string]bool{"jpeg": true, "png": true, "webp": true}

// readEmbeddedCredit parses credit metadata from raw image bytes. format is
// the name reported by image.Decode. Unreadable metadata yields an empty
// result.
func readEmbeddedCredit(data []byte, format string) embeddedCredit {
	var ec embeddedCredit
	if !metaFormats[format] || len(data) == 0 {
		return ec
	}
	_, err := imagemeta.Decode(imagemeta.Options{
		R:       bytes.NewReader(data),
		Sources: imagemeta.EXIF | imagemeta.IPTC | imagemeta.XMP,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return wantedMetaTags[ti.Source][ti.Tag]
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			ec.set(ti.Source, ti.Tag, metaString(ti.Value))
			return nil
		},
	})
	if err != nil {
		return embeddedCredit{}
	}
	return ec
}

func (ec *embeddedCredit) set(src imagemeta.Source, tag, v string) {
	if v == "" {
		return
	}
	switch {
	case src == imagemeta.IPTC && tag == "Byline":
		ec.byline = v
	case src == imagemeta.IPTC && tag == "CopyrightNotice":
		ec.iptcNotice = v
	case src == imagemeta.EXIF && tag == "Artist":
		ec.artist = v
	case src == imagemeta.EXIF && tag == "Copyright":
		ec.exifNotice = v
	case src == imagemeta.XMP && tag == "Creator":
		ec.creator = v
	case src == imagemeta.XMP && tag == "Rights":
		ec.rights = v
	case src == imagemeta.XMP:
		ec.licenseLinks = append(ec.licenseLinks, v)
	}
}

// metaString flattens a tag value; XMP lists yield their first entry.
func metaString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []string:
		if len(val) > 0 {
			return strings.TrimSpace(val[0])
		}
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// fields maps the embedded metadata onto attachment credit fields. Only a
// Creative Commons deed URL is taken as the license.
func (ec embeddedCredit) fields() map[string]string {
	out := map[string]string{
		credit.FieldPhotographer:    firstNonEmpty(ec.byline, ec.artist, ec.creator),
		credit.FieldCopyrightNotice: firstNonEmpty(ec.iptcNotice, ec.exifNotice),
	}
	if out[credit.FieldCopyrightNotice] == "" && !credit.IsCCLicenseURL(ec.rights) {
		out[credit.FieldCopyrightNotice] = ec.rights
	}
	for _, link := range append(ec.licenseLinks, ec.rights) {
		if !credit.IsCCLicenseURL(link) {
			continue
		}
		if id, ok := credit.LicenseFromURL(link); ok {
			out[credit.FieldLicense] = id
			out[credit.FieldLicenseURL] = link
			break
		}
	}
	for k, v := range out {
		if v == "" {
			delete(out, k)
		}
	}
	return out
}
