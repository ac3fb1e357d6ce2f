// Package classify detects the document category from acquired text.
package classify

import (
	"strings"

	"github.com/veridoc/veridoc/internal/models"
)

// MinTextChars is the text length below which no category is assigned.
const MinTextChars = 10

// Identity documents are checked before resume keywords so a resume that
// quotes an Aadhaar or PAN reference still classifies as the identity
// document it contains.
var resumeKeywords = []string{
	"education", "experience", "skills", "projects", "intern",
	"github", "linkedin", "bachelor", "engineer",
}

// Detect assigns a document category using ordered keyword rules; the first
// matching rule wins.
func Detect(text string) models.DocumentCategory {
	if len(text) < MinTextChars {
		return models.CategoryUnknown
	}
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, "income tax department", "permanent account number"):
		return models.CategoryPANCard
	case containsAny(lower, "aadhaar", "uidai"):
		return models.CategoryAadhaarCard
	case containsAny(lower, resumeKeywords...):
		return models.CategoryResume
	default:
		return models.CategoryUnknown
	}
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
