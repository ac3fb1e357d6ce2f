package scoring

import (
	"fmt"
	"strings"

	"github.com/veridoc/veridoc/internal/fields"
	"github.com/veridoc/veridoc/internal/models"
)

// ComposeExplanation turns the scored layers into a plain-language account of
// the verdict. Reasons come in a fixed order: completeness commentary,
// category field commentary, anomaly echo, then the low-text caveat. The
// completeness narrative uses its own 90/60 scale, separate from the risk
// classifier's thresholds. Output is fully reproducible from the inputs.
func ComposeExplanation(risk models.RiskAssessment, fraud *models.FraudReport, structured models.StructuredFields, text string) models.Explanation {
	var reasons []string

	switch {
	case risk.Completeness >= 90:
		reasons = append(reasons, "Nearly all expected details were extracted from the document.")
	case risk.Completeness >= 60:
		reasons = append(reasons, "Most expected details were extracted, with some gaps.")
	default:
		reasons = append(reasons, "Many expected details could not be extracted.")
	}

	reasons = append(reasons, categoryCommentary(risk.DocumentType, structured)...)

	for _, a := range risk.Anomalies {
		if a != NoAnomalies {
			reasons = append(reasons, a)
		}
	}
	if fraud != nil && fraud.OverallRisk != models.TierLow {
		reasons = append(reasons, fraud.Note)
	}
	if len(strings.TrimSpace(text)) < 40 {
		reasons = append(reasons, "Very little text was readable, so this assessment rests on limited evidence.")
	}

	return models.Explanation{
		Headline:    fmt.Sprintf("Risk is %s because %s", risk.RiskLevel, sentenceFragment(reasons[0])),
		Reasons:     reasons,
		Suggestions: suggestions(risk, fraud, text),
	}
}

func categoryCommentary(category models.DocumentCategory, structured models.StructuredFields) []string {
	var out []string
	missing := func(key, message string) {
		if structured[key] == fields.NotFound {
			out = append(out, message)
		}
	}

	switch category {
	case models.CategoryPANCard:
		missing("Name", "The holder's name could not be located on the card.")
		missing("PAN Number", "The PAN number could not be located on the card.")
		missing("Date of Birth", "The date of birth could not be located on the card.")
		if len(out) == 0 {
			out = append(out, "Name, PAN number and date of birth were all located and well formed.")
		}
	case models.CategoryResume:
		missing("Name", "No candidate name was found.")
		missing("Email", "No email address was found.")
		missing("Phone", "No phone number was found.")
		missing("Skills", "No recognizable skills were listed.")
		if len(out) == 0 {
			out = append(out, "Contact details and skills were all located.")
		}
	case models.CategoryAadhaarCard:
		out = append(out, "Aadhaar field extraction is not yet supported; the assessment is based on classification and text quality only.")
	}
	return out
}

func suggestions(risk models.RiskAssessment, fraud *models.FraudReport, text string) []string {
	var out []string
	if len(strings.TrimSpace(text)) < 40 {
		out = append(out, "Rescan the document at a higher resolution with even lighting.")
	}
	if risk.RiskLevel != models.TierLow {
		out = append(out, "Ensure the full document is visible, uncropped and in focus.")
	}
	if fraud != nil && fraud.OverallRisk != models.TierLow {
		out = append(out, "Request the original physical document for manual verification.")
	}
	if len(out) == 0 {
		out = append(out, "No action needed.")
	}
	return out
}

// sentenceFragment lowercases the leading letter and drops the trailing
// period so a full sentence reads naturally after "because".
func sentenceFragment(s string) string {
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:] + "."
}
