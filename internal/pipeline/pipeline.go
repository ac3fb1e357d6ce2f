// Package pipeline runs the full assessment flow for one document: ingest,
// text acquisition, classification, field extraction, and the scoring layers.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/veridoc/veridoc/internal/classify"
	"github.com/veridoc/veridoc/internal/fields"
	"github.com/veridoc/veridoc/internal/ingest"
	"github.com/veridoc/veridoc/internal/models"
	"github.com/veridoc/veridoc/internal/scoring"
	"github.com/veridoc/veridoc/internal/textract"
	"github.com/veridoc/veridoc/pkg/utils"
)

// extractedTextLimit bounds the text echoed back in records so audit rows
// stay a reasonable size.
const extractedTextLimit = 4000

// Assessor runs assessments. Safe for concurrent use.
type Assessor struct {
	extractor *textract.Engine
	fraud     *scoring.FraudEngine
	logger    *zap.Logger
}

// New returns an Assessor wired to the given extraction and fraud engines.
func New(extractor *textract.Engine, fraud *scoring.FraudEngine, logger *zap.Logger) *Assessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assessor{extractor: extractor, fraud: fraud, logger: logger}
}

// Assess runs the full flow over one uploaded file. Unsupported formats and
// context cancellation are the only error returns; every other failure
// degrades into the record itself.
func (a *Assessor) Assess(ctx context.Context, content []byte, filename string) (record *models.AssessmentRecord, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("assessment panicked",
				zap.String("file", filename), zap.Any("panic", r))
			record = nil
			err = fmt.Errorf("internal error assessing %s", filename)
		}
	}()

	doc, err := ingest.Load(content, filename)
	if err != nil {
		return nil, err
	}

	extraction, err := a.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}
	text := extraction.MergedText

	record = &models.AssessmentRecord{
		ID:            uuid.NewString(),
		Filename:      filename,
		ExtractedText: utils.Truncate(text, extractedTextLimit),
	}

	if text == "" {
		a.degradedUnreadable(record)
		record.ElapsedSec = time.Since(start).Seconds()
		a.logger.Warn("assessment degraded, no text acquired", zap.String("file", filename))
		return record, nil
	}

	category := classify.Detect(text)
	structured := fields.Extract(category, text)
	scores := scoring.ConfidenceScores(structured, text)
	completeness := scoring.CompletenessScore(structured)
	anomalies := scoring.DetectAnomalies(structured)
	risk := scoring.ClassifyRisk(category, completeness, anomalies)
	fraudReport := a.fraud.Analyze(ctx, doc, text)

	summary := scoring.GenerateSummary(category, structured, scores, text)
	explanation := scoring.ComposeExplanation(risk, fraudReport, structured, text)

	record.DocumentType = category
	record.StructuredData = structured
	record.ConfidenceScores = scores
	record.RiskAssessment = &risk
	record.FraudDetection = fraudReport
	record.Summary = &summary
	record.Explanation = &explanation
	record.ElapsedSec = time.Since(start).Seconds()

	a.logger.Info("assessment complete",
		zap.String("file", filename),
		zap.String("type", string(category)),
		zap.String("risk", string(risk.RiskLevel)),
		zap.Int("completeness", completeness),
		zap.Float64("elapsed_sec", record.ElapsedSec))
	return record, nil
}

// degradedUnreadable fills the record for a file that produced no text at
// all. The document is treated as maximally risky rather than rejected.
func (a *Assessor) degradedUnreadable(record *models.AssessmentRecord) {
	record.DocumentType = models.CategoryUnknown
	record.StructuredData = models.StructuredFields{}
	record.ConfidenceScores = models.ConfidenceMap{}
	record.RiskAssessment = &models.RiskAssessment{
		DocumentType: models.CategoryUnknown,
		Completeness: 0,
		Anomalies:    []string{"Unreadable file"},
		RiskLevel:    models.TierHigh,
		Reason:       "No text could be read from the file.",
	}
	record.FraudDetection = &models.FraudReport{
		OverallRisk: models.TierUnknown,
		Note:        "Fraud signals could not be evaluated on an unreadable file.",
	}
	record.Summary = &models.Summary{
		DocumentType: models.CategoryUnknown,
		Confidence:   models.TierLow,
		Note:         "The file could not be read; no details were extracted.",
	}
	record.Explanation = &models.Explanation{
		Headline: "Risk is High because no text could be read from the file.",
		Reasons:  []string{"No text could be read from the file."},
		Suggestions: []string{
			"Rescan the document at a higher resolution with even lighting.",
			"Submit the document as a clear photo or searchable PDF.",
		},
	}
}
