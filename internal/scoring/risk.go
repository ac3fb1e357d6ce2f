package scoring

import (
	"regexp"
	"strings"

	"github.com/veridoc/veridoc/internal/fields"
	"github.com/veridoc/veridoc/internal/models"
)

// NoAnomalies is the sentinel entry reported when nothing is wrong.
const NoAnomalies = "None"

var (
	emailShapeRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phoneShapeRe = regexp.MustCompile(`^\d{10}$`)
)

// CompletenessScore returns the percentage of fields that were located,
// truncated to an integer. An empty field set scores 0.
func CompletenessScore(structured models.StructuredFields) int {
	if len(structured) == 0 {
		return 0
	}
	filled := 0
	for _, v := range structured {
		if strings.TrimSpace(v) != "" && v != fields.NotFound {
			filled++
		}
	}
	return filled * 100 / len(structured)
}

// DetectAnomalies lists located values whose shape is wrong. Absent or
// unmatched fields are not anomalies; incompleteness is already priced into
// the completeness score.
func DetectAnomalies(structured models.StructuredFields) []string {
	var anomalies []string

	shape := func(key string, re *regexp.Regexp, message string) {
		if v, ok := structured[key]; ok && v != "" && v != fields.NotFound && !re.MatchString(v) {
			anomalies = append(anomalies, message)
		}
	}
	shape("PAN Number", idFormatRe, "PAN number does not match the expected format")
	shape("Date of Birth", dateFormatRe, "Date of birth does not match DD/MM/YYYY")
	shape("Email", emailShapeRe, "Email address does not look valid")
	shape("Phone", phoneShapeRe, "Phone number is not a 10-digit number")
	return anomalies
}

// ClassifyRisk maps completeness and anomalies to a risk tier. Low risk
// requires both high completeness and a clean anomaly list.
func ClassifyRisk(category models.DocumentCategory, completeness int, anomalies []string) models.RiskAssessment {
	assessment := models.RiskAssessment{
		DocumentType: category,
		Completeness: completeness,
		Anomalies:    anomalies,
	}
	if len(anomalies) == 0 {
		assessment.Anomalies = []string{NoAnomalies}
	}

	switch {
	case completeness >= riskLowMinCompleteness && len(anomalies) == 0:
		assessment.RiskLevel = models.TierLow
		assessment.Reason = "Document is complete and readable with no anomalies."
	case completeness >= riskMedMinCompleteness:
		assessment.RiskLevel = models.TierMedium
		assessment.Reason = "Some expected details are missing or could not be verified."
	default:
		assessment.RiskLevel = models.TierHigh
		assessment.Reason = "Most expected details are missing or the document is unreadable."
	}
	return assessment
}
