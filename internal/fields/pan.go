package fields

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/veridoc/veridoc/internal/models"
)

var (
	panNumberRe = regexp.MustCompile(`\b[A-Z]{5}[0-9]{4}[A-Z]\b`)
	dobRe       = regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`)
)

// panKeywords are tokens that appear on the card itself and must not be
// mistaken for the holder's name.
var panKeywords = map[string]bool{
	"INCOME": true, "TAX": true, "DEPARTMENT": true, "GOVT": true,
	"GOVERNMENT": true, "INDIA": true, "PERMANENT": true, "ACCOUNT": true,
	"NUMBER": true, "CARD": true, "SIGNATURE": true, "PAN": true, "DOB": true,
}

func extractPAN(text string) models.StructuredFields {
	out := models.StructuredFields{
		"Name":          NotFound,
		"Date of Birth": NotFound,
		"PAN Number":    NotFound,
	}

	if m := panNumberRe.FindString(text); m != "" {
		out["PAN Number"] = m
	}
	if m := dobRe.FindString(text); m != "" {
		out["Date of Birth"] = m
	}
	if name := panHolderName(text); name != "" {
		out["Name"] = name
	}
	return out
}

// panHolderName picks the longest run of consecutive all-uppercase tokens
// that are not card boilerplate and not the PAN number itself.
func panHolderName(text string) string {
	var best, current []string
	for _, tok := range strings.Fields(text) {
		if isNameToken(tok) {
			current = append(current, tok)
			if len(current) > len(best) {
				best = append(best[:0:0], current...)
			}
			continue
		}
		current = current[:0]
	}
	return strings.Join(best, " ")
}

func isNameToken(tok string) bool {
	if len(tok) < 3 || panKeywords[tok] || panNumberRe.MatchString(tok) {
		return false
	}
	for _, r := range tok {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
