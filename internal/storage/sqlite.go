package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/veridoc/veridoc/internal/models"
	"github.com/veridoc/veridoc/internal/recordid"
)

// metricsWindow bounds how many recent rows feed the dashboard aggregates.
const metricsWindow = 200

// SQLite is the Store implementation backed by a local SQLite database.
type SQLite struct {
	db     *sql.DB
	logger *zap.Logger
}

// New opens (or creates) the audit database at dbPath.
func New(dbPath string, logger *zap.Logger) (*SQLite, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLite{db: db, logger: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_log (
		id            TEXT PRIMARY KEY,
		file_name     TEXT NOT NULL,
		document_type TEXT NOT NULL,
		risk_level    TEXT NOT NULL,
		completeness  REAL NOT NULL,
		summary_json  TEXT,
		risk_json     TEXT,
		created_at    TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_audit_created_at ON audit_log(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_audit_risk_level ON audit_log(risk_level);

	CREATE TABLE IF NOT EXISTS assistant_log (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		question   TEXT NOT NULL,
		answer     TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLite) SaveAssessment(ctx context.Context, record *models.AssessmentRecord) error {
	now := time.Now().UTC()

	var completeness float64
	if record.Summary != nil {
		completeness = record.Summary.CompletenessPct
	}
	riskLevel := models.TierUnknown
	if record.RiskAssessment != nil {
		riskLevel = record.RiskAssessment.RiskLevel
	}

	summaryJSON, err := json.Marshal(record.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	riskJSON, err := json.Marshal(record.RiskAssessment)
	if err != nil {
		return fmt.Errorf("failed to marshal risk assessment: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO audit_log
		(id, file_name, document_type, risk_level, completeness, summary_json, risk_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		recordid.RecordID(record.Filename, now),
		record.Filename,
		string(record.DocumentType),
		string(riskLevel),
		completeness,
		string(summaryJSON),
		string(riskJSON),
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}

	s.logger.Debug("assessment saved",
		zap.String("file", record.Filename),
		zap.String("risk", string(riskLevel)))
	return nil
}

func (s *SQLite) SaveInteraction(ctx context.Context, question, answer string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assistant_log (question, answer, created_at) VALUES (?, ?, ?)`,
		question, answer, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save interaction: %w", err)
	}
	return nil
}

func (s *SQLite) ListRecent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_name, document_type, risk_level, completeness, summary_json, risk_json, created_at
		FROM audit_log ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var (
			entry       models.AuditEntry
			docType     string
			riskLevel   string
			summaryJSON sql.NullString
			riskJSON    sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.FileName, &docType, &riskLevel,
			&entry.Completeness, &summaryJSON, &riskJSON, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		entry.DocumentType = models.DocumentCategory(docType)
		entry.RiskLevel = models.Tier(riskLevel)
		if summaryJSON.Valid && summaryJSON.String != "null" {
			var summary models.Summary
			if err := json.Unmarshal([]byte(summaryJSON.String), &summary); err == nil {
				entry.Summary = &summary
			}
		}
		if riskJSON.Valid && riskJSON.String != "null" {
			var risk models.RiskAssessment
			if err := json.Unmarshal([]byte(riskJSON.String), &risk); err == nil {
				entry.Risk = &risk
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *SQLite) MetricsSummary(ctx context.Context) (*models.DashboardSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document_type, risk_level, completeness, created_at
		FROM audit_log ORDER BY created_at DESC LIMIT ?`, metricsWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	summary := &models.DashboardSummary{
		RiskCounts: map[string]int{},
		DocCounts:  map[string]int{},
	}
	var totalCompleteness float64
	for rows.Next() {
		var (
			docType      string
			riskLevel    string
			completeness float64
			createdAt    time.Time
		)
		if err := rows.Scan(&docType, &riskLevel, &completeness, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan metrics row: %w", err)
		}
		summary.Uploads++
		summary.RiskCounts[riskLevel]++
		summary.DocCounts[docType]++
		totalCompleteness += completeness
		if createdAt.After(summary.LastUpdated) {
			summary.LastUpdated = createdAt
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if summary.Uploads > 0 {
		summary.AvgCompleteness = totalCompleteness / float64(summary.Uploads)
	}
	return summary, nil
}

func (s *SQLite) Timeseries(ctx context.Context, days int) (*models.Timeseries, error) {
	if days <= 0 {
		days = 7
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(days - 1))

	rows, err := s.db.QueryContext(ctx, `
		SELECT risk_level, created_at FROM audit_log WHERE created_at >= ?`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query timeseries: %w", err)
	}
	defer rows.Close()

	type bucket struct{ uploads, low, medium, high int }
	buckets := map[string]*bucket{}
	for rows.Next() {
		var (
			riskLevel string
			createdAt time.Time
		)
		if err := rows.Scan(&riskLevel, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan timeseries row: %w", err)
		}
		day := createdAt.UTC().Format("2006-01-02")
		b := buckets[day]
		if b == nil {
			b = &bucket{}
			buckets[day] = b
		}
		b.uploads++
		switch models.Tier(riskLevel) {
		case models.TierLow:
			b.low++
		case models.TierMedium:
			b.medium++
		case models.TierHigh:
			b.high++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// One slot per day even when nothing was uploaded.
	series := &models.Timeseries{
		Days:    make([]string, 0, days),
		Uploads: make([]int, 0, days),
		Low:     make([]int, 0, days),
		Medium:  make([]int, 0, days),
		High:    make([]int, 0, days),
	}
	for d := 0; d < days; d++ {
		day := since.AddDate(0, 0, d).Format("2006-01-02")
		series.Days = append(series.Days, day)
		b := buckets[day]
		if b == nil {
			b = &bucket{}
		}
		series.Uploads = append(series.Uploads, b.uploads)
		series.Low = append(series.Low, b.low)
		series.Medium = append(series.Medium, b.medium)
		series.High = append(series.High, b.high)
	}
	return series, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
