// Package assistant answers analyst questions about the system with a fixed
// rule table. There is no language model behind it; answers are canned and
// the only dynamic lookup is the most recent assessment.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/veridoc/veridoc/internal/storage"
)

// Responder matches questions against keyword rules, first match wins.
type Responder struct {
	store  storage.Store
	logger *zap.Logger
}

// New returns a Responder. The store is used for the recent-risk lookup and
// for logging interactions; both degrade quietly when it fails.
func New(store storage.Store, logger *zap.Logger) *Responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Responder{store: store, logger: logger}
}

type rule struct {
	keywords []string
	answer   string
}

var rules = []rule{
	{[]string{"upload", "file"},
		"Upload a document through the upload endpoint or drop it into a watched folder. Supported formats are JPG, PNG and PDF."},
	{[]string{"pan"},
		"PAN cards are recognized by their wording and the extractor looks for the holder's name, date of birth and the 10-character PAN number."},
	{[]string{"aadhaar"},
		"Aadhaar cards are recognized, but detailed field extraction for them is still pending. Classification and risk scoring work today."},
	{[]string{"resume"},
		"Resumes yield name, email, phone, location and education, plus a list of detected skills in the summary."},
	{[]string{"improve", "accuracy"},
		"Scan documents flat, in focus and under even lighting. Higher resolution scans and searchable PDFs read much better."},
	{[]string{"explain", "why"},
		"Every assessment includes an explanation section listing the exact reasons behind its risk level and what to do next."},
	{[]string{"help"},
		"You can ask about risk, uploads, PAN cards, Aadhaar cards, resumes, accuracy, or why a document was scored the way it was."},
}

const fallbackAnswer = "I can answer questions about document risk, uploads and extraction. Try asking \"help\"."

// Respond answers question and logs the interaction.
func (r *Responder) Respond(ctx context.Context, question string) string {
	answer := r.answer(ctx, question)
	if err := r.store.SaveInteraction(ctx, question, answer); err != nil {
		r.logger.Warn("failed to log assistant interaction", zap.Error(err))
	}
	return answer
}

func (r *Responder) answer(ctx context.Context, question string) string {
	lower := strings.ToLower(question)

	if strings.Contains(lower, "risk") {
		return r.recentRisk(ctx)
	}
	for _, rl := range rules {
		for _, kw := range rl.keywords {
			if strings.Contains(lower, kw) {
				return rl.answer
			}
		}
	}
	return fallbackAnswer
}

func (r *Responder) recentRisk(ctx context.Context) string {
	entries, err := r.store.ListRecent(ctx, 1)
	if err != nil {
		r.logger.Warn("recent risk lookup failed", zap.Error(err))
		return "I could not reach the audit log just now. Try again shortly."
	}
	if len(entries) == 0 {
		return "No documents have been assessed yet. Upload one to see its risk level."
	}
	e := entries[0]
	return fmt.Sprintf("Your most recent document (%s) was classified as %s and assessed as %s risk.",
		e.FileName, e.DocumentType, e.RiskLevel)
}
