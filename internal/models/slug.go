package models

import (
	"strconv"
	"strings"
	"unicode"
)

const maxSlugLength = 80

// Slugify derives a URL slug from a title. Slugs never parse as integers,
// since single-item lookups treat numeric path segments as identifiers.
func Slugify(title, fallback string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(truncateRunes(slug, maxSlugLength), "-")
	}
	if slug == "" {
		return fallback
	}
	if _, err := strconv.ParseInt(slug, 10, 64); err == nil {
		return fallback + "-" + slug
	}
	return slug
}

// SlugCandidate returns the slug to try on the given attempt: the base slug
// first, then base-2, base-3 and so on.
func SlugCandidate(base string, attempt int) string {
	if attempt == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(attempt+1)
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Cut on a rune boundary.
	for n > 0 && !utf8RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// NormalizeTags lowercases, trims and de-duplicates tags, preserving order.
func NormalizeTags(tags []string) StringList {
	out := make(StringList, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
