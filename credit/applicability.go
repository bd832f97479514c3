package credit

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// IsApplicable reports whether a post view should carry image credit
// markup. Only singular views qualify. A post qualifies when it carries any
// target category or any target tag; with no target categories configured
// the built-in DefaultCategory is used.
func IsApplicable(post PostContext, s Settings) bool {
	if !post.Singular {
		return false
	}
	return Matches(post, s)
}

// Matches applies the category/tag test without the singular-view gate.
// Sitemap entries use it directly.
func Matches(post PostContext, s Settings) bool {
	categories := nonEmpty(s.TargetCategories)
	tags := nonEmpty(s.TargetTags)
	if len(categories) == 0 {
		categories = []string{DefaultCategory}
	}
	return MatchesTerms(post.Categories, categories) || MatchesTerms(post.Tags, tags)
}

// MatchesTerms reports whether any of targets names one of terms. Each
// target is tried as given, lower-cased and title-cased, against both the
// term name and its slug.
func MatchesTerms(terms []Term, targets []string) bool {
	for _, target := range targets {
		for _, v := range caseVariants(target) {
			for _, t := range terms {
				if t.Name == v || t.Slug == v {
					return true
				}
			}
		}
	}
	return false
}

func caseVariants(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	variants := []string{s}
	for _, v := range []string{strings.ToLower(s), cases.Title(language.Und).String(s)} {
		if v != variants[0] && (len(variants) < 2 || v != variants[1]) {
			variants = append(variants, v)
		}
	}
	return variants
}

func nonEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
