package post

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify converts a title to a lowercase, hyphen-separated URL path.
// Accented letters are folded to their base letter.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(foldAccents(s)))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ValidSlug reports whether s can be used as a single URL path segment
// without escaping: non-empty, unreserved characters only (RFC 3986),
// and not a dot segment.
func ValidSlug(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '.', c == '_', c == '~':
		default:
			return false
		}
	}
	return true
}

// CanonicalSlug reports whether s is already in the form Slugify produces.
func CanonicalSlug(s string) bool {
	return s != "" && Slugify(s) == s
}

func routeKey(urlPath string) string {
	return strings.ToLower(urlPath)
}
