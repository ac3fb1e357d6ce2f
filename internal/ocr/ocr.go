// Package ocr provides the character recognition engine interface and its
// Tesseract implementation.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// ErrUnavailable is returned when no recognition engine is configured.
var ErrUnavailable = errors.New("ocr engine unavailable")

// Engine recognizes text from a single page image.
type Engine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// Tesseract recognizes text through the Tesseract C library.
//
// A fresh gosseract client is created per call. The client is not safe for
// concurrent use, and per-call construction lets page workers run in parallel
// without sharing state.
type Tesseract struct {
	Language string
}

// NewTesseract returns a Tesseract engine for the given language ("eng" when empty).
func NewTesseract(language string) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{Language: language}
}

// Recognize runs Tesseract over img and returns the raw recognized text.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode page image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.Language); err != nil {
		return "", fmt.Errorf("failed to set ocr language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set page image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognition failed: %w", err)
	}
	return text, nil
}

// Unavailable is an Engine that always fails. It stands in when Tesseract is
// not installed so the rest of the pipeline can degrade instead of crash.
type Unavailable struct{}

func (Unavailable) Recognize(context.Context, image.Image) (string, error) {
	return "", ErrUnavailable
}
