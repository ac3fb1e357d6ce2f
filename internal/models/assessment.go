package models

import "time"

// RiskAssessment is the completeness/anomaly verdict for one document.
// Anomalies holds ["None"] when no anomaly was detected.
type RiskAssessment struct {
	DocumentType DocumentCategory `json:"document_type"`
	Completeness int              `json:"completeness_pct"`
	Anomalies    []string         `json:"detected_anomalies"`
	RiskLevel    Tier             `json:"risk_level"`
	Reason       string           `json:"reason"`
}

// TamperReport is the deterministic image tamper heuristic result.
type TamperReport struct {
	FraudRisk  Tier     `json:"fraud_risk"`
	Confidence int      `json:"tampering_confidence_pct"`
	Anomalies  []string `json:"anomalies"`
	ImageHash  string   `json:"image_hash,omitempty"`
	Note       string   `json:"note,omitempty"`
}

// FraudReport combines the image authenticity channel and the text red-flag
// channel into one additive score. TamperAnalysis is set only for image input.
type FraudReport struct {
	Score          int           `json:"fraud_score"`
	OverallRisk    Tier          `json:"overall_fraud_risk"`
	Anomalies      []string      `json:"anomalies"`
	TextFlags      []string      `json:"text_flags,omitempty"`
	TamperAnalysis *TamperReport `json:"tamper_analysis,omitempty"`
	Note           string        `json:"note"`
}

// Explanation is the deterministic narrative derived from the other verdicts.
type Explanation struct {
	Headline    string   `json:"headline"`
	Reasons     []string `json:"reasons"`
	Suggestions []string `json:"suggestions"`
}

// Summary is the compact field-completeness overview shown alongside the
// full assessment.
type Summary struct {
	DocumentType    DocumentCategory `json:"document_type"`
	FieldsExtracted int              `json:"fields_extracted"`
	FilledFields    int              `json:"filled_fields"`
	CompletenessPct float64          `json:"completeness_pct"`
	Confidence      Tier             `json:"confidence"`
	DetectedSkills  []string         `json:"detected_skills,omitempty"`
	Note            string           `json:"note,omitempty"`
}

// AssessmentRecord is the full result of one pipeline invocation.
type AssessmentRecord struct {
	ID               string           `json:"id"`
	Filename         string           `json:"filename"`
	DocumentType     DocumentCategory `json:"document_type"`
	ExtractedText    string           `json:"extracted_text"`
	StructuredData   StructuredFields `json:"structured_data"`
	Summary          *Summary         `json:"summary"`
	RiskAssessment   *RiskAssessment  `json:"risk_assessment"`
	FraudDetection   *FraudReport     `json:"fraud_detection"`
	ConfidenceScores ConfidenceMap    `json:"confidence_scores"`
	Explanation      *Explanation     `json:"explanation"`
	ElapsedSec       float64          `json:"elapsed_sec"`
}

// AuditEntry is the persisted footprint of one processed document.
type AuditEntry struct {
	ID           string           `json:"id"`
	FileName     string           `json:"file_name"`
	DocumentType DocumentCategory `json:"document_type"`
	RiskLevel    Tier             `json:"risk_level"`
	Completeness float64          `json:"completeness_pct"`
	Summary      *Summary         `json:"summary,omitempty"`
	Risk         *RiskAssessment  `json:"risk_assessment,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// DashboardSummary aggregates recent audit entries for the dashboard.
type DashboardSummary struct {
	Uploads         int            `json:"uploads"`
	RiskCounts      map[string]int `json:"risk_counts"`
	DocCounts       map[string]int `json:"doc_counts"`
	AvgCompleteness float64        `json:"avg_completeness"`
	LastUpdated     time.Time      `json:"last_updated"`
}

// Timeseries holds daily upload counts and risk breakdown as parallel,
// continuous series (one slot per day, including zero days).
type Timeseries struct {
	Days    []string `json:"days"`
	Uploads []int    `json:"uploads"`
	Low     []int    `json:"low"`
	Medium  []int    `json:"medium"`
	High    []int    `json:"high"`
}
