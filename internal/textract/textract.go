// Package textract acquires text from uploaded documents.
//
// PDFs are handled page by page with a bounded worker pool. Each page tries
// the embedded-text fast path first and falls back to rasterization plus OCR
// only when the embedded text is too short to be trustworthy. Images go
// straight to OCR after preprocessing, recognized in both polarities.
package textract

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/veridoc/veridoc/internal/models"
	"github.com/veridoc/veridoc/internal/ocr"
	"github.com/veridoc/veridoc/internal/preprocess"
	"github.com/veridoc/veridoc/pkg/utils"
)

// Engine turns raw documents into page-ordered text.
type Engine struct {
	ocr         ocr.Engine
	fastPathMin int
	rasterDPI   float64
	maxWorkers  int
	enhance     bool
	logger      *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithFastPathMinChars sets the embedded-text length above which a PDF page skips OCR.
func WithFastPathMinChars(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.fastPathMin = n
		}
	}
}

// WithRasterDPI sets the PDF rasterization resolution.
func WithRasterDPI(dpi float64) Option {
	return func(e *Engine) {
		if dpi > 0 {
			e.rasterDPI = dpi
		}
	}
}

// WithMaxWorkers caps the per-document page pool.
func WithMaxWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxWorkers = n
		}
	}
}

// WithEnhance enables the full preprocessing chain before OCR fallback.
func WithEnhance(enhance bool) Option {
	return func(e *Engine) { e.enhance = enhance }
}

// New returns an extraction engine backed by the given OCR engine.
func New(ocrEngine ocr.Engine, opts ...Option) *Engine {
	e := &Engine{
		ocr:         ocrEngine,
		fastPathMin: 80,
		rasterDPI:   200,
		maxWorkers:  4,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract acquires text from doc. Pages are returned in document order
// regardless of completion order. Per-page failures yield empty page text;
// the only error returned is context cancellation.
func (e *Engine) Extract(ctx context.Context, doc *models.RawDocument) (*models.ExtractionResult, error) {
	start := time.Now()

	var pages []string
	if doc.IsImage() {
		pages = []string{e.extractImage(ctx, doc)}
	} else {
		var err error
		pages, err = e.extractPDF(ctx, doc)
		if err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := utils.NormalizeText(strings.Join(pages, "\n"))
	e.logger.Debug("text acquired",
		zap.String("file", doc.Filename),
		zap.Int("pages", len(pages)),
		zap.Int("chars", len(merged)),
		zap.Duration("elapsed", time.Since(start)))

	return &models.ExtractionResult{
		Pages:      pages,
		MergedText: merged,
		Elapsed:    time.Since(start),
	}, nil
}

// pageSource yields one page at a time. Implementations need not be safe for
// concurrent use; extractPage serializes access per backend.
type pageSource interface {
	embeddedText(index int) string
	rasterize(index int, dpi float64) (image.Image, error)
}

func (e *Engine) extractPDF(ctx context.Context, doc *models.RawDocument) ([]string, error) {
	reader := newPDFReader(doc.Content)
	defer reader.close()

	pageCount := doc.PageCount
	if pageCount == 0 {
		pageCount = reader.pageCount()
	}
	if pageCount == 0 {
		e.logger.Warn("unreadable pdf, no pages extracted", zap.String("file", doc.Filename))
		return []string{""}, nil
	}
	return e.collectPages(ctx, reader, pageCount)
}

// collectPages runs the page pool. Results land in index-addressed slots so
// page order never depends on worker scheduling.
func (e *Engine) collectPages(ctx context.Context, src pageSource, pageCount int) ([]string, error) {
	pages := make([]string, pageCount)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.poolSize())

	for i := 0; i < pageCount; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pages[i] = e.extractPage(ctx, src, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

// extractPage acquires one page's text, preferring embedded text over OCR.
func (e *Engine) extractPage(ctx context.Context, src pageSource, index int) string {
	text := src.embeddedText(index)
	if len(utils.NormalizeText(text)) > e.fastPathMin {
		return utils.NormalizeText(text)
	}

	img, err := src.rasterize(index, e.rasterDPI)
	if err != nil {
		e.logger.Warn("page rasterization failed",
			zap.Int("page", index), zap.Error(err))
		return utils.NormalizeText(text)
	}

	recognized, err := e.ocr.Recognize(ctx, e.prepare(img))
	if err != nil {
		e.logger.Warn("page recognition failed",
			zap.Int("page", index), zap.Error(err))
		return utils.NormalizeText(text)
	}

	recognized = utils.NormalizeText(recognized)
	if embedded := utils.NormalizeText(text); len(embedded) > len(recognized) {
		return embedded
	}
	return recognized
}

// extractImage recognizes a single image in both polarities and keeps the
// longer result. ID cards photographed against dark backgrounds often
// recognize better inverted.
func (e *Engine) extractImage(ctx context.Context, doc *models.RawDocument) string {
	img, _, err := image.Decode(bytes.NewReader(doc.Content))
	if err != nil {
		e.logger.Warn("image decode failed",
			zap.String("file", doc.Filename), zap.Error(err))
		return ""
	}

	prepared := e.prepareGray(preprocess.Grayscale(img))

	normal, err := e.ocr.Recognize(ctx, prepared)
	if err != nil {
		e.logger.Warn("image recognition failed",
			zap.String("file", doc.Filename), zap.Error(err))
		normal = ""
	}
	inverted, err := e.ocr.Recognize(ctx, preprocess.Invert(prepared))
	if err != nil {
		inverted = ""
	}

	normal = utils.NormalizeText(normal)
	inverted = utils.NormalizeText(inverted)
	if len(inverted) > len(normal) {
		return inverted
	}
	return normal
}

func (e *Engine) prepare(img image.Image) image.Image {
	if e.enhance {
		return preprocess.Enhance(img)
	}
	return e.prepareGray(preprocess.Grayscale(img))
}

func (e *Engine) prepareGray(g *image.Gray) *image.Gray {
	return preprocess.Equalize(g)
}

func (e *Engine) poolSize() int {
	n := e.maxWorkers
	if cpus := runtime.NumCPU(); cpus < n {
		n = cpus
	}
	if n < 1 {
		n = 1
	}
	return n
}

// pdfReader wraps the two PDF backends behind one mutex each. Neither the
// embedded-text reader nor the MuPDF handle is safe for concurrent use.
type pdfReader struct {
	content []byte

	textMu   sync.Mutex
	textOnce sync.Once
	text     *pdf.Reader

	rasterMu   sync.Mutex
	rasterOnce sync.Once
	raster     *fitz.Document
}

func newPDFReader(content []byte) *pdfReader {
	return &pdfReader{content: content}
}

func (r *pdfReader) textReader() *pdf.Reader {
	r.textOnce.Do(func() {
		reader, err := pdf.NewReader(bytes.NewReader(r.content), int64(len(r.content)))
		if err == nil {
			r.text = reader
		}
	})
	return r.text
}

func (r *pdfReader) rasterDoc() *fitz.Document {
	r.rasterOnce.Do(func() {
		doc, err := fitz.NewFromMemory(r.content)
		if err == nil {
			r.raster = doc
		}
	})
	return r.raster
}

func (r *pdfReader) pageCount() int {
	r.rasterMu.Lock()
	defer r.rasterMu.Unlock()
	if doc := r.rasterDoc(); doc != nil {
		return doc.NumPage()
	}
	return 0
}

// embeddedText returns the embedded text layer of page index (0-based), or ""
// when the layer is absent or unreadable.
func (r *pdfReader) embeddedText(index int) string {
	r.textMu.Lock()
	defer r.textMu.Unlock()

	reader := r.textReader()
	if reader == nil || index >= reader.NumPage() {
		return ""
	}
	page := reader.Page(index + 1)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

func (r *pdfReader) rasterize(index int, dpi float64) (image.Image, error) {
	r.rasterMu.Lock()
	defer r.rasterMu.Unlock()

	doc := r.rasterDoc()
	if doc == nil {
		return nil, errPDFUnreadable
	}
	return doc.ImageDPI(index, dpi)
}

func (r *pdfReader) close() {
	r.rasterMu.Lock()
	defer r.rasterMu.Unlock()
	if r.raster != nil {
		r.raster.Close()
		r.raster = nil
	}
}

var errPDFUnreadable = pdfError("pdf content unreadable")

type pdfError string

func (e pdfError) Error() string { return string(e) }
