package scoring

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"go.uber.org/zap"

	"github.com/veridoc/veridoc/internal/authenticity"
	"github.com/veridoc/veridoc/internal/models"
)

// suspiciousTerms in recognized text raise the fraud score once, however
// many of them match.
var suspiciousTerms = []string{
	"fake", "edited", "template", "duplicate", "tampered",
}

// FraudEngine combines text flags, pixel tamper analysis and the external
// authenticity verdict into one fraud score.
type FraudEngine struct {
	cfg    Config
	auth   authenticity.Client
	logger *zap.Logger
}

// NewFraudEngine builds a fraud engine. A nil auth client disables the
// external check.
func NewFraudEngine(cfg Config, auth authenticity.Client, logger *zap.Logger) *FraudEngine {
	if cfg.ManipulationScore == 0 {
		cfg.ManipulationScore = DefaultConfig().ManipulationScore
	}
	if auth == nil {
		auth = authenticity.Disabled{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FraudEngine{cfg: cfg, auth: auth, logger: logger}
}

// Analyze scores doc for fraud signals. It never fails; signals that cannot
// be computed are simply absent from the report.
func (f *FraudEngine) Analyze(ctx context.Context, doc *models.RawDocument, text string) *models.FraudReport {
	report := &models.FraudReport{}

	if flags := textFlags(text); len(flags) > 0 {
		report.TextFlags = flags
		report.Score += textFlagPenalty
		report.Anomalies = append(report.Anomalies, "Suspicious wording found in document text")
	}

	if doc.IsImage() {
		f.analyzeImage(ctx, doc, report)
	}
	if report.Score > 100 {
		report.Score = 100
	}

	switch {
	case report.Score >= fraudHighMin:
		report.OverallRisk = models.TierHigh
		report.Note = "Multiple strong fraud signals detected. Manual review required."
	case report.Score >= fraudMediumMin:
		report.OverallRisk = models.TierMedium
		report.Note = "Some fraud signals detected. Verification recommended."
	default:
		report.OverallRisk = models.TierLow
		report.Note = "No significant fraud signals detected."
	}
	return report
}

func (f *FraudEngine) analyzeImage(ctx context.Context, doc *models.RawDocument, report *models.FraudReport) {
	img, _, err := image.Decode(bytes.NewReader(doc.Content))
	if err != nil {
		f.logger.Warn("tamper analysis skipped, image undecodable",
			zap.String("file", doc.Filename), zap.Error(err))
	} else {
		report.TamperAnalysis = AnalyzeTamper(img)
		report.Anomalies = append(report.Anomalies, report.TamperAnalysis.Anomalies...)
	}

	verdict := f.auth.Check(ctx, doc.Content, doc.Filename)
	if verdict.Manipulated {
		report.Score += f.cfg.ManipulationScore
		report.Anomalies = append(report.Anomalies, verdict.Message)
	}
}

func textFlags(text string) []string {
	lower := strings.ToLower(text)
	var flags []string
	for _, term := range suspiciousTerms {
		if strings.Contains(lower, term) {
			flags = append(flags, term)
		}
	}
	return flags
}
