package views

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/eringen/photocredit"
	"github.com/eringen/photocredit/credit"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	return b.String()
}

func TestPostHeadCarriesCredits(t *testing.T) {
	v := New(photocredit.SiteConfig{Name: "Photolog"})
	page := photocredit.PageMeta{
		Title:  "Dawn | Photolog",
		URL:    "https://example.com/blog/dawn/",
		JSONLD: []string{`[{"@type":"ImageObject"}]`},
		Meta: []credit.MetaTag{
			{Property: "og:image", Content: "https://example.com/public/uploads/dawn.jpg"},
			{Name: "copyright", Content: `© "Jane"`},
			{Rel: "license", Content: "https://creativecommons.org/licenses/by/4.0/"},
		},
	}
	out := render(t, v.Post(photocredit.Post{Title: "Dawn"}, templ.Raw(`<p>body</p>`), nil, page))

	for _, want := range []string{
		`<script type="application/ld+json">[{"@type":"ImageObject"}]</script>`,
		`<meta property="og:image" content="https://example.com/public/uploads/dawn.jpg"/>`,
		`<meta name="copyright" content="© &#34;Jane&#34;"/>`,
		`<link rel="license" href="https://creativecommons.org/licenses/by/4.0/"/>`,
		`<p>body</p>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s\n%s", want, out)
		}
	}
}

func TestHomeEscapesTitles(t *testing.T) {
	v := New(photocredit.SiteConfig{Name: "Photolog"})
	posts := []photocredit.Post{{Slug: "a", Title: "<b>Boats</b>", Date: "2024-03-02"}}
	out := render(t, v.Home(posts, "", nil, photocredit.PageMeta{}))
	if strings.Contains(out, "<b>Boats</b>") {
		t.Error("post title should be escaped")
	}
	if !strings.Contains(out, `<title>Photolog</title>`) {
		t.Errorf("missing fallback title:\n%s", out)
	}
}

func TestJoinTerms(t *testing.T) {
	got := JoinTerms([]credit.Term{{Name: "Sea"}, {Name: "Long Exposure"}})
	if got != "Sea, Long Exposure" {
		t.Errorf("JoinTerms = %q", got)
	}
}
