package scoring

import (
	"regexp"
	"strings"

	"github.com/veridoc/veridoc/internal/fields"
	"github.com/veridoc/veridoc/internal/models"
)

var (
	idFormatRe   = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	dateFormatRe = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
)

// ConfidenceScores assigns 0..100 per extracted field. A located field starts
// at 60 and earns bonuses for appearing verbatim in the source text and for
// matching the expected format. Missing fields score 0.
func ConfidenceScores(structured models.StructuredFields, text string) models.ConfidenceMap {
	scores := make(models.ConfidenceMap, len(structured))
	for key, value := range structured {
		scores[key] = fieldConfidence(value, text)
	}
	return scores
}

func fieldConfidence(value, text string) int {
	if strings.TrimSpace(value) == "" || value == fields.NotFound {
		return 0
	}
	score := confidenceBase
	if strings.Contains(strings.ToLower(text), strings.ToLower(value)) {
		score += confidenceVerbatim
	}
	switch {
	case idFormatRe.MatchString(value):
		score += confidenceIDFormat
	case dateFormatRe.MatchString(value):
		score += confidenceDateFormat
	case strings.Contains(value, "@") && strings.Contains(value, "."):
		score += confidenceEmailFormat
	}
	if score > 100 {
		score = 100
	}
	return score
}

// AverageConfidence returns the integer mean of all field scores, 0 for an
// empty map.
func AverageConfidence(scores models.ConfidenceMap) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return sum / len(scores)
}
