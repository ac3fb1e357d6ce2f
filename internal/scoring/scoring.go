// Package scoring implements the deterministic assessment layers: field
// confidence, document risk, fraud signals, tamper analysis, and the
// human-readable explanation and summary built from them.
package scoring

// Config carries the tunable scoring constants. Zero values fall back to the
// defaults at use sites via DefaultConfig.
type Config struct {
	// ManipulationScore is added to the fraud score when the external
	// authenticity service reports image manipulation.
	ManipulationScore int
}

// DefaultConfig returns the canonical scoring constants.
func DefaultConfig() Config {
	return Config{ManipulationScore: 50}
}

const (
	confidenceBase         = 60
	confidenceVerbatim     = 20
	confidenceIDFormat     = 15
	confidenceDateFormat   = 10
	confidenceEmailFormat  = 10
	riskLowMinCompleteness = 80
	riskMedMinCompleteness = 50
	fraudHighMin           = 70
	fraudMediumMin         = 40
	textFlagPenalty        = 40
)
