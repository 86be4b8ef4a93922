package service

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxSlugRunes    = 100
	maxExcerptRunes = 200
	fallbackSlug    = "post"
)

// Slugify lowercases the title and keeps ASCII letters, digits, CJK
// ideographs and dashes. Whitespace runs become a single dash.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', unicode.Is(unicode.Han, r):
			b.WriteRune(r)
			lastDash = false
		case r == '-' || unicode.IsSpace(r):
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if utf8.RuneCountInString(slug) > maxSlugRunes {
		slug = strings.TrimRight(string([]rune(slug)[:maxSlugRunes]), "-")
	}
	if slug == "" {
		return fallbackSlug
	}
	return slug
}

// Excerpt strips markdown punctuation and cuts the content to a preview.
func Excerpt(content string) string {
	cleaned := strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case '#', '*', '[', ']', '(', ')':
			return -1
		}
		return r
	}, content))

	if utf8.RuneCountInString(cleaned) <= maxExcerptRunes {
		return cleaned
	}
	return string([]rune(cleaned)[:maxExcerptRunes]) + "..."
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
