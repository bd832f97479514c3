package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func inline(s string) string {
	return Renderer{}.formatInline(s, new(int))
}

func TestFormatInlineEmphasis(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"__bold__", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"_italic_", "<em>italic</em>"},
		{"**bold *italic* text**", "<strong>bold <em>italic</em> text</strong>"},
		{"use `a*b*c` here", "use <code>a*b*c</code> here"},
	}
	for _, tt := range tests {
		if got := inline(tt.input); got != tt.expected {
			t.Errorf("formatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineLinkWithUnderscoresInURL(t *testing.T) {
	got := inline("[docs](https://example.com/some_page_name)")
	if !strings.Contains(got, `href="https://example.com/some_page_name"`) {
		t.Errorf("link href was mangled: %q", got)
	}
	if strings.Contains(got, "<em>") {
		t.Errorf("underscores in href became emphasis: %q", got)
	}
}

func TestFormatInlineLinkNewTab(t *testing.T) {
	got := inline("[site](https://example.com)^")
	if !strings.Contains(got, `target="_blank"`) {
		t.Errorf("expected target=_blank, got %q", got)
	}
}

func TestFormatInlineRejectsUnsafeURL(t *testing.T) {
	got := inline("[x](javascript:alert(1))")
	if strings.Contains(got, "href") {
		t.Errorf("unsafe link rendered: %q", got)
	}
}

func TestImagePlainURL(t *testing.T) {
	got := inline("![a cat](/public/uploads/cat.jpg){max-width:100%}")
	if !strings.Contains(got, `src="/public/uploads/cat.jpg"`) {
		t.Errorf("missing src: %q", got)
	}
	if strings.Contains(got, "wp-image-") || strings.Contains(got, "data-id") {
		t.Errorf("plain image got media markers: %q", got)
	}
	if !strings.Contains(got, `fetchpriority="high"`) {
		t.Errorf("first image should be high priority: %q", got)
	}
}

func TestImageMediaReference(t *testing.T) {
	r := Renderer{Media: func(id int64) (Media, bool) {
		if id != 42 {
			return Media{}, false
		}
		return Media{URL: "https://example.com/public/uploads/sunset.jpg", Width: 1200, Height: 800, Alt: "Sunset"}, true
	}}

	got := r.formatInline("![](media:42){}", new(int))
	for _, want := range []string{
		`class="wp-image-42"`,
		`data-id="42"`,
		`src="https://example.com/public/uploads/sunset.jpg"`,
		`width="1200"`,
		`height="800"`,
		`alt="Sunset"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("media image missing %s: %q", want, got)
		}
	}
}

func TestImageMediaReferenceUnknown(t *testing.T) {
	r := Renderer{Media: func(int64) (Media, bool) { return Media{}, false }}
	got := r.formatInline("![gone](media:7){}", new(int))
	if got != "gone" {
		t.Errorf("unresolved media = %q, want alt text", got)
	}
	if got := (Renderer{}).formatInline("![x](media:7){}", new(int)); got != "x" {
		t.Errorf("renderer without resolver = %q, want alt text", got)
	}
}

func TestImageExplicitSizeWins(t *testing.T) {
	r := Renderer{Media: func(int64) (Media, bool) {
		return Media{URL: "/public/uploads/a.jpg", Width: 10, Height: 10}, true
	}}
	got := r.formatInline("![a](media:3){|640|480}", new(int))
	if !strings.Contains(got, `width="640"`) || !strings.Contains(got, `height="480"`) {
		t.Errorf("explicit size ignored: %q", got)
	}
}

func TestHTMLBlocks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"headings", "# One\n## Two\n### Three", []string{"<h1>One</h1>", "<h2>Two</h2>", "<h3>Three</h3>"}},
		{"list", "- a\n- b", []string{"<ul><li>a</li><li>b</li></ul>"}},
		{"ordered", "1. a\n2. b\n\npara", []string{"<ol><li>a</li><li>b</li></ol>", "<p>para"}},
		{"quote", "> quoted", []string{"<blockquote>quoted</blockquote>"}},
		{"code", "```go\nx := 1\n```", []string{`<code class="language-go">`, "x := 1", "</code></pre></div>"}},
		{"code escapes", "```\n<b>\n```", []string{"&lt;b&gt;"}},
		{"table", "| a | b |\n|---|---|\n| 1 | 2 |", []string{"<thead><tr><th>a</th><th>b</th></tr></thead>", "<tbody><tr><td>1</td><td>2</td></tr></tbody></table>"}},
		{"rule", "a\n\n---", []string{"<p>a\n</p><hr/>"}},
	}
	for _, tt := range tests {
		got := Renderer{}.HTML(tt.input)
		for _, w := range tt.want {
			if !strings.Contains(got, w) {
				t.Errorf("%s: HTML(%q) = %q, missing %q", tt.name, tt.input, got, w)
			}
		}
	}
}

func TestHTMLSecondImageIsEager(t *testing.T) {
	got := Renderer{}.HTML("![a](/a.jpg){}\n\n![b](/b.jpg){}")
	if strings.Count(got, `fetchpriority="high"`) != 1 || !strings.Contains(got, `loading="eager"`) {
		t.Errorf("image priorities wrong: %q", got)
	}
}

func TestComponentRenders(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown("**hi**").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "<p><strong>hi</strong>\n</p>" {
		t.Errorf("Markdown component = %q", got)
	}
}
