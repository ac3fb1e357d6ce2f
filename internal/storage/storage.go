// Package storage persists assessment audit rows and assistant interactions.
package storage

import (
	"context"

	"github.com/veridoc/veridoc/internal/models"
)

// Store is the persistence boundary used by the server and watcher.
type Store interface {
	// SaveAssessment appends one audit row for a completed assessment.
	SaveAssessment(ctx context.Context, record *models.AssessmentRecord) error
	// SaveInteraction appends one assistant question/answer pair.
	SaveInteraction(ctx context.Context, question, answer string) error
	// ListRecent returns up to limit audit entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]models.AuditEntry, error)
	// MetricsSummary aggregates the most recent audit rows.
	MetricsSummary(ctx context.Context) (*models.DashboardSummary, error)
	// Timeseries returns a continuous daily series covering the last days days.
	Timeseries(ctx context.Context, days int) (*models.Timeseries, error)
	Ping(ctx context.Context) error
	Close() error
}
