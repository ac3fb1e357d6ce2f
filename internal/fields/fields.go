// Package fields extracts structured key/value data per document category.
package fields

import (
	"github.com/veridoc/veridoc/internal/models"
)

// NotFound marks a field that the extractor looked for but could not locate.
const NotFound = "Not found"

// Extract dispatches to the category-specific extractor.
func Extract(category models.DocumentCategory, text string) models.StructuredFields {
	switch category {
	case models.CategoryPANCard:
		return extractPAN(text)
	case models.CategoryAadhaarCard:
		return extractAadhaar()
	case models.CategoryResume:
		return extractResume(text)
	default:
		return models.StructuredFields{"Document": "Unknown"}
	}
}

// Aadhaar parsing is not built yet; classification alone is reported.
func extractAadhaar() models.StructuredFields {
	return models.StructuredFields{
		"Document": "Aadhaar Card",
		"Note":     "Extraction module pending.",
	}
}
