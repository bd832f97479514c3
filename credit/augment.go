package credit

import "strconv"

// SitemapImage is one image entry attached to a post's sitemap URL.
type SitemapImage struct {
	Loc     string
	Caption string
	Title   string
	Credit  string
	License string
}

// BuildSitemapImage describes ic for the image sitemap. Images without a
// location are skipped; credit and license are included only when known.
func BuildSitemapImage(ic ImageCredit) (SitemapImage, bool) {
	if ic.URL == "" {
		return SitemapImage{}, false
	}
	img := SitemapImage{
		Loc:     ic.URL,
		Caption: ic.AltText,
		Title:   ic.Title,
	}
	if img.Caption == "" {
		img.Caption = ic.Caption
	}
	if img.Caption == "" {
		img.Caption = ic.Title
	}
	img.Credit = CreditText(ic)
	if u, ok := ResolvedLicenseURL(ic); ok {
		img.License = u
	}
	return img, true
}

// MetaTag is a head element produced from resolved credits. Rel tags render
// as <link>, the others as <meta>.
type MetaTag struct {
	Name     string
	Property string
	Rel      string
	Content  string
}

// HeadMeta derives page-level meta tags from the first resolved image.
func HeadMeta(schemas []ImageSchema) []MetaTag {
	if len(schemas) == 0 {
		return nil
	}
	s := schemas[0]
	tags := []MetaTag{{Property: "og:image", Content: s.ContentURL}}
	if s.Width > 0 && s.Height > 0 {
		tags = append(tags,
			MetaTag{Property: "og:image:width", Content: strconv.Itoa(s.Width)},
			MetaTag{Property: "og:image:height", Content: strconv.Itoa(s.Height)},
		)
	}
	if s.Caption != "" {
		tags = append(tags, MetaTag{Property: "og:image:alt", Content: s.Caption})
	}
	if s.CopyrightNotice != "" {
		tags = append(tags, MetaTag{Name: "copyright", Content: s.CopyrightNotice})
	}
	if s.LicenseURL != "" {
		tags = append(tags, MetaTag{Rel: "license", Content: s.LicenseURL})
	}
	return tags
}
