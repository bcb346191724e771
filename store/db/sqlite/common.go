package sqlite

import (
	"strings"
)

// placeholder mirrors the postgres driver; sqlite placeholders are not numbered.
func placeholder(int) string {
	return "?"
}

// placeholders returns n positional placeholders.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
