// Package models defines core data structures for documents, assessments, and audit entries.
package models

import "time"

// DocumentCategory is the closed set of document types the pipeline recognizes.
type DocumentCategory string

const (
	CategoryPANCard     DocumentCategory = "PAN Card"
	CategoryAadhaarCard DocumentCategory = "Aadhaar Card"
	CategoryResume      DocumentCategory = "Resume"
	CategoryUnknown     DocumentCategory = "Unknown"
)

// Tier is a three-level risk/fraud band, plus Unknown for degraded channels.
type Tier string

const (
	TierLow     Tier = "Low"
	TierMedium  Tier = "Medium"
	TierHigh    Tier = "High"
	TierUnknown Tier = "Unknown"
)

// RawDocument is a validated upload in page-addressable form. It is immutable
// once loaded and lives only for the duration of one pipeline invocation.
type RawDocument struct {
	Content   []byte
	Filename  string
	Extension string // lowercased, with leading dot
	PageCount int    // 1 for images; 0 when a PDF could not be opened
}

// IsImage reports whether the document is a raster image rather than a PDF.
func (d *RawDocument) IsImage() bool {
	switch d.Extension {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// ExtractionResult holds per-page recognized text in original page order.
// Pages[i] always holds page i's text regardless of worker completion order.
type ExtractionResult struct {
	Pages      []string
	MergedText string
	Elapsed    time.Duration
}

// StructuredFields maps field names to extracted values. Fields the extractor
// looked for but could not locate hold a not-found marker rather than being
// absent, so completeness can be computed against the expected field set.
type StructuredFields map[string]string

// ConfidenceMap maps field names to confidence scores in [0,100].
type ConfidenceMap map[string]int
