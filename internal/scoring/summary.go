package scoring

import (
	"fmt"

	"github.com/veridoc/veridoc/internal/fields"
	"github.com/veridoc/veridoc/internal/models"
)

// GenerateSummary condenses one assessment into the analyst-facing overview.
func GenerateSummary(category models.DocumentCategory, structured models.StructuredFields, scores models.ConfidenceMap, text string) models.Summary {
	total := len(structured)
	filled := 0
	for _, v := range structured {
		if v != "" && v != fields.NotFound {
			filled++
		}
	}

	var pct float64
	if total > 0 {
		pct = float64(filled) / float64(total) * 100
	}

	summary := models.Summary{
		DocumentType:    category,
		FieldsExtracted: total,
		FilledFields:    filled,
		CompletenessPct: pct,
	}

	avg := AverageConfidence(scores)
	switch {
	case avg >= 80:
		summary.Confidence = models.TierHigh
	case avg >= 50:
		summary.Confidence = models.TierMedium
	default:
		summary.Confidence = models.TierLow
	}

	if category == models.CategoryResume {
		summary.DetectedSkills = fields.DetectSkills(text)
	}

	switch {
	case pct >= 80:
		summary.Note = fmt.Sprintf("Identified as %s with %d of %d expected details extracted.", category, filled, total)
	case pct >= 50:
		summary.Note = fmt.Sprintf("Identified as %s but only %d of %d expected details could be extracted.", category, filled, total)
	default:
		summary.Note = fmt.Sprintf("Identified as %s; most expected details could not be extracted.", category)
	}
	switch {
	case category == models.CategoryPANCard && structured["PAN Number"] == fields.NotFound:
		summary.Note += " The PAN number itself could not be read."
	case category == models.CategoryAadhaarCard:
		summary.Note += " Aadhaar support is currently limited to classification."
	}
	return summary
}
