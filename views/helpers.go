package views

import (
	"fmt"
	"strings"
)

// StatusClass returns the CSS class for a count badge.
func StatusClass(problems, warnings int) string {
	switch {
	case problems > 0:
		return "badge badge-error"
	case warnings > 0:
		return "badge badge-warn"
	default:
		return "badge badge-ok"
	}
}

// Plural formats n with a singular or plural noun.
func Plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

// JoinTags formats a tag slice as a comma-separated string.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
