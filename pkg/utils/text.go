// Package utils provides shared utilities for text normalization and logging.
package utils

import "strings"

// NormalizeText strips non-ASCII characters, collapses runs of whitespace to
// single spaces, and trims leading/trailing whitespace. Recognized text is
// normalized this way before classification and extraction so that pattern
// matching sees a stable single-line form.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
