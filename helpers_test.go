package photocredit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/photocredit/credit"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Harbour at Dawn":      "harbour-at-dawn",
		"  Spaces  ":           "spaces",
		"Porto, 2024!":         "porto-2024",
		"---":                  "",
		"Long   Exposure--Sea": "long-exposure-sea",
		"Фото":                 "фото",
		"Café Noir":            "café-noir",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func TestBuildURL(t *testing.T) {
	assert.Equal(t, "https://example.com/blog/post/", BuildURL("https://example.com", "blog", "post"))
	assert.Equal(t, "https://example.com/sub/blog/", BuildURL("https://example.com/sub/", "blog"))
	assert.Equal(t, "https://example.com", BuildURL("https://example.com"))
}

func TestAttachmentURL(t *testing.T) {
	assert.Equal(t, "https://example.com/public/uploads/dawn.jpg", AttachmentURL("https://example.com", "dawn.jpg"))
	assert.Empty(t, AttachmentURL("https://example.com", ""))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"photolog", "Travel"}, SplitList(" photolog, ,Travel ,"))
	assert.Nil(t, SplitList("  "))
}

func TestFilterRelatedPosts(t *testing.T) {
	current := Post{Slug: "a", Tags: TermsFromNames([]string{"Sea"})}
	posts := []Post{
		current,
		{Slug: "b", Tags: TermsFromNames([]string{"sea"})},
		{Slug: "c", Categories: TermsFromNames([]string{"Sea"})},
		{Slug: "d", Tags: TermsFromNames([]string{"Night"})},
	}
	var slugs []string
	for _, p := range FilterRelatedPosts(current, posts) {
		slugs = append(slugs, p.Slug)
	}
	assert.Equal(t, []string{"b", "c"}, slugs)
}

func TestBlogPostingJSONLD(t *testing.T) {
	cfg := SiteConfig{Name: "Photolog", URL: "https://example.com", Author: "Site Owner"}
	post := Post{
		Slug:     "dawn",
		Title:    "Dawn",
		Date:     "2024-03-02",
		Modified: "2024-03-05",
		Tags:     TermsFromNames([]string{"Sea", "Boats"}),
	}
	images := []credit.ImageSchema{{ContentURL: "https://example.com/public/uploads/dawn.jpg"}}

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(BlogPostingJSONLD(post, cfg, images)), &got))
	assert.Equal(t, "BlogPosting", got["@type"])
	assert.Equal(t, "https://example.com/blog/dawn/", got["url"])
	assert.Equal(t, "2024-03-05", got["dateModified"])
	assert.Equal(t, "Site Owner", got["author"].(map[string]any)["name"])
	assert.Equal(t, "Sea, Boats", got["keywords"])
	assert.Equal(t, []any{"https://example.com/public/uploads/dawn.jpg"}, got["image"])

	post.Author = "Ana"
	post.Modified = ""
	got = nil
	require.NoError(t, json.Unmarshal([]byte(BlogPostingJSONLD(post, cfg, nil)), &got))
	assert.Equal(t, "Ana", got["author"].(map[string]any)["name"])
	assert.NotContains(t, got, "dateModified")
	assert.NotContains(t, got, "image")
}
