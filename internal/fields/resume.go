package fields

import (
	"regexp"
	"strings"

	"github.com/veridoc/veridoc/internal/models"
)

var (
	emailRe      = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRe      = regexp.MustCompile(`\b\d{10}\b`)
	// First run of two or three capitalized words. Merged text has no line
	// structure, so the leading name heuristic works on word runs.
	resumeNameRe = regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+){1,2}\b`)
)

var knownCities = []string{
	"Mumbai", "Delhi", "Bangalore", "Bengaluru", "Hyderabad", "Chennai",
	"Kolkata", "Pune", "Ahmedabad", "Jaipur", "Noida", "Gurgaon",
}

var educationMarkers = []string{
	"B.Tech", "B.E", "M.Tech", "MBA", "B.Sc", "M.Sc", "BCA", "MCA",
	"Ph.D", "Bachelor", "Master", "Diploma",
}

// skillKeywords is checked in order so detected skills come out in a stable,
// deliberate sequence rather than text order. "Golang" rather than "Go" keeps
// substring matching from firing on ordinary words.
var skillKeywords = []string{
	"Python", "Java", "C++", "Golang", "AWS", "Docker", "Kubernetes",
	"Terraform", "SQL", "Git", "Azure", "PowerBI", "Tableau",
}

func extractResume(text string) models.StructuredFields {
	out := models.StructuredFields{
		"Name":      NotFound,
		"Email":     NotFound,
		"Phone":     NotFound,
		"Location":  NotFound,
		"Education": NotFound,
		"Skills":    NotFound,
	}

	if m := resumeNameRe.FindString(text); m != "" {
		out["Name"] = m
	}
	if m := emailRe.FindString(text); m != "" {
		out["Email"] = m
	}
	if m := phoneRe.FindString(text); m != "" {
		out["Phone"] = m
	}
	lower := strings.ToLower(text)
	for _, city := range knownCities {
		if strings.Contains(lower, strings.ToLower(city)) {
			out["Location"] = city
			break
		}
	}
	if edu := educationLine(text); edu != "" {
		out["Education"] = edu
	}
	if skills := DetectSkills(text); len(skills) > 0 {
		out["Skills"] = strings.Join(skills, ", ")
	}
	return out
}

// educationLine returns the first education marker present in the text.
func educationLine(text string) string {
	for _, marker := range educationMarkers {
		if containsFold(text, marker) {
			return marker
		}
	}
	return ""
}

// DetectSkills returns the skill keywords present in text, in keyword order.
// Matching is a case-insensitive substring test; several skill names contain
// regex metacharacters, so pattern matching is deliberately avoided.
func DetectSkills(text string) []string {
	var skills []string
	for _, kw := range skillKeywords {
		if containsFold(text, kw) {
			skills = append(skills, kw)
		}
	}
	return skills
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
