package credit

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestBuildSitemapImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ic   ImageCredit
		want SitemapImage
		ok   bool
	}{
		{
			name: "full credit",
			ic: ImageCredit{
				Asset:        Asset{URL: "https://example.com/a.jpg", Title: "Dunes", AltText: "Sand dunes at dusk"},
				Photographer: "Jane Doe",
				License:      "CC BY-ND",
			},
			want: SitemapImage{
				Loc:     "https://example.com/a.jpg",
				Caption: "Sand dunes at dusk",
				Title:   "Dunes",
				Credit:  "Photo by Jane Doe / CC BY-ND 4.0",
				License: "https://creativecommons.org/licenses/by-nd/4.0/",
			},
			ok: true,
		},
		{
			name: "no credit data",
			ic:   ImageCredit{Asset: Asset{URL: "https://example.com/b.jpg", Title: "Pier"}},
			want: SitemapImage{Loc: "https://example.com/b.jpg", Caption: "Pier", Title: "Pier"},
			ok:   true,
		},
		{
			name: "no location",
			ic:   ImageCredit{Photographer: "Jane"},
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BuildSitemapImage(tt.ic)
			assert.Equal(t, tt.ok, ok)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BuildSitemapImage mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHeadMeta(t *testing.T) {
	t.Parallel()

	assert.Nil(t, HeadMeta(nil))

	schemas := []ImageSchema{
		{
			ContentURL:      "https://example.com/a.jpg",
			Caption:         "Dunes",
			Width:           1200,
			Height:          800,
			CopyrightNotice: "Photo by Jane",
			LicenseURL:      "https://creativecommons.org/licenses/by/4.0/",
		},
		{ContentURL: "https://example.com/ignored.jpg"},
	}
	want := []MetaTag{
		{Property: "og:image", Content: "https://example.com/a.jpg"},
		{Property: "og:image:width", Content: "1200"},
		{Property: "og:image:height", Content: "800"},
		{Property: "og:image:alt", Content: "Dunes"},
		{Name: "copyright", Content: "Photo by Jane"},
		{Rel: "license", Content: "https://creativecommons.org/licenses/by/4.0/"},
	}
	if diff := cmp.Diff(want, HeadMeta(schemas)); diff != "" {
		t.Errorf("HeadMeta mismatch (-want +got):\n%s", diff)
	}
}
