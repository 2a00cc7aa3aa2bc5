package utils

import (
	"regexp"
	"strings"
)

const (
	slugMaxLength = 50
	slugFallback  = "store"
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9가-힣]+`)

// GenerateSlug turns a business or store name into a URL slug.
// Hangul is kept as-is, e.g. "아미한정식 & 카페" -> "아미한정식-카페".
func GenerateSlug(input string) string {
	slug := strings.ToLower(strings.TrimSpace(input))
	slug = slugInvalidChars.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if runes := []rune(slug); len(runes) > slugMaxLength {
		slug = strings.TrimRight(string(runes[:slugMaxLength]), "-")
	}
	if slug == "" {
		return slugFallback
	}
	return slug
}
