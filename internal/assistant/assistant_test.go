package assistant

import (
	"context"
	"strings"
	"testing"

	"github.com/veridoc/veridoc/internal/models"
	"github.com/veridoc/veridoc/internal/storage"
)

type fakeStore struct {
	storage.Store
	entries      []models.AuditEntry
	interactions int
}

func (f *fakeStore) ListRecent(_ context.Context, limit int) ([]models.AuditEntry, error) {
	if limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func (f *fakeStore) SaveInteraction(_ context.Context, _, _ string) error {
	f.interactions++
	return nil
}

func TestRespond_recentRisk(t *testing.T) {
	store := &fakeStore{entries: []models.AuditEntry{{
		FileName:     "card.png",
		DocumentType: models.CategoryPANCard,
		RiskLevel:    models.TierLow,
	}}}
	r := New(store, nil)

	got := r.Respond(context.Background(), "What is my document's risk?")
	if !strings.Contains(got, "card.png") || !strings.Contains(got, "Low") {
		t.Errorf("answer = %q", got)
	}
	if store.interactions != 1 {
		t.Errorf("interactions logged = %d, want 1", store.interactions)
	}
}

func TestRespond_riskWithoutHistory(t *testing.T) {
	r := New(&fakeStore{}, nil)
	got := r.Respond(context.Background(), "how risky is it?")
	if !strings.Contains(got, "No documents have been assessed") {
		t.Errorf("answer = %q", got)
	}
}

func TestRespond_ruleTable(t *testing.T) {
	r := New(&fakeStore{}, nil)
	tests := []struct {
		question string
		contains string
	}{
		{"How do I upload a document?", "Supported formats"},
		{"what do you extract from a pan card", "PAN number"},
		{"do you support aadhaar?", "pending"},
		{"what about my resume", "skills"},
		{"how can I improve results?", "even lighting"},
		{"explain the score", "explanation section"},
		{"help", "ask about"},
		{"what's the weather like", "Try asking"},
	}
	for _, tt := range tests {
		got := r.Respond(context.Background(), tt.question)
		if !strings.Contains(got, tt.contains) {
			t.Errorf("Respond(%q) = %q, want substring %q", tt.question, got, tt.contains)
		}
	}
}
