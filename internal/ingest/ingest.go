// Package ingest validates uploads and loads them into page-addressable form.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/veridoc/veridoc/internal/models"
)

// ErrUnsupportedFormat is returned for extensions outside the allow-list.
// It is the only validation failure that aborts an assessment.
var ErrUnsupportedFormat = errors.New("unsupported document format")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

// AllowedExtensions returns the upload allow-list, dot-prefixed and lowercased.
func AllowedExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".pdf"}
}

// Load validates the declared extension and wraps content as a RawDocument.
// For PDFs the page count is derived by opening the document; an unopenable
// PDF gets PageCount 0 and degrades later in text acquisition rather than
// failing here. Images always have PageCount 1.
func Load(content []byte, filename string) (*models.RawDocument, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	doc := &models.RawDocument{
		Content:   content,
		Filename:  filename,
		Extension: ext,
		PageCount: 1,
	}
	if ext == ".pdf" {
		doc.PageCount = pdfPageCount(content)
	}
	return doc, nil
}

func pdfPageCount(content []byte) int {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0
	}
	return r.NumPage()
}
