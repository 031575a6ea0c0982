package slug

import (
	"regexp"
	"strings"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

var accents = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
	"ü", "u", "ñ", "n", "à", "a", "è", "e", "ò", "o",
)

// Generate creates a URL-friendly slug from a category or product name.
// Spanish accents and ñ are folded to ASCII.
//
// Examples:
//   - "Calzado Niños" → "calzado-ninos"
//   - "Artesanía & Hogar" → "artesania-hogar"
func Generate(name string) string {
	s := accents.Replace(strings.ToLower(strings.TrimSpace(name)))
	s = slugRegexp.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Matches reports whether query names the same thing as slug, comparing both
// in slug form.
func Matches(slug, query string) bool {
	q := Generate(query)
	return q != "" && q == Generate(slug)
}
