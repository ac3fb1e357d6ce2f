package textract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/veridoc/veridoc/internal/models"
	"github.com/veridoc/veridoc/internal/ocr"
)

// scriptedOCR returns its responses in call order.
type scriptedOCR struct {
	responses []string
	errs      []error
	calls     int
}

func (s *scriptedOCR) Recognize(_ context.Context, _ image.Image) (string, error) {
	i := s.calls
	s.calls++
	var text string
	if i < len(s.responses) {
		text = s.responses[i]
	}
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return text, err
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 12, 12))
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 20)})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func imageDoc(t *testing.T) *models.RawDocument {
	return &models.RawDocument{
		Content:   pngBytes(t),
		Filename:  "card.png",
		Extension: ".png",
		PageCount: 1,
	}
}

func TestExtract_imageKeepsLongerPolarity(t *testing.T) {
	stub := &scriptedOCR{responses: []string{"short", "PERMANENT ACCOUNT NUMBER CARD"}}
	e := New(stub)

	res, err := e.Extract(context.Background(), imageDoc(t))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if stub.calls != 2 {
		t.Errorf("ocr calls = %d, want 2 (both polarities)", stub.calls)
	}
	if res.MergedText != "PERMANENT ACCOUNT NUMBER CARD" {
		t.Errorf("merged = %q", res.MergedText)
	}
	if len(res.Pages) != 1 {
		t.Errorf("pages = %d", len(res.Pages))
	}
}

func TestExtract_imageOCRFailureDegrades(t *testing.T) {
	stub := &scriptedOCR{errs: []error{ocr.ErrUnavailable, ocr.ErrUnavailable}}
	e := New(stub)

	res, err := e.Extract(context.Background(), imageDoc(t))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.MergedText != "" {
		t.Errorf("merged = %q, want empty on total OCR failure", res.MergedText)
	}
}

func TestExtract_normalizesRecognizedText(t *testing.T) {
	stub := &scriptedOCR{responses: []string{"  Name:\tJOHN   DOE\nCafé ", ""}}
	e := New(stub)

	res, err := e.Extract(context.Background(), imageDoc(t))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.MergedText != "Name: JOHN DOE Caf" {
		t.Errorf("merged = %q", res.MergedText)
	}
}

func TestExtract_undecodableImage(t *testing.T) {
	e := New(&scriptedOCR{})
	doc := &models.RawDocument{Content: []byte("not an image"), Filename: "x.png", Extension: ".png", PageCount: 1}

	res, err := e.Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.MergedText != "" {
		t.Errorf("merged = %q, want empty", res.MergedText)
	}
}

func TestExtract_unreadablePDFDegrades(t *testing.T) {
	e := New(&scriptedOCR{})
	doc := &models.RawDocument{Content: []byte("junk"), Filename: "x.pdf", Extension: ".pdf", PageCount: 0}

	res, err := e.Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.MergedText != "" {
		t.Errorf("merged = %q, want empty for unreadable pdf", res.MergedText)
	}
}

// stubPageSource serves embedded page text, with later pages finishing
// sooner so completion order differs from page order.
type stubPageSource struct {
	pages []string
}

func (s *stubPageSource) embeddedText(index int) string {
	time.Sleep(time.Duration(len(s.pages)-1-index) * 3 * time.Millisecond)
	return s.pages[index]
}

func (s *stubPageSource) rasterize(int, float64) (image.Image, error) {
	return image.NewGray(image.Rect(0, 0, 4, 4)), nil
}

func TestCollectPages_orderIndependentOfCompletion(t *testing.T) {
	src := &stubPageSource{}
	for i := 0; i < 6; i++ {
		src.pages = append(src.pages, strings.Repeat(fmt.Sprintf("page %d content ", i), 8))
	}
	e := New(&scriptedOCR{}, WithMaxWorkers(6))

	pages, err := e.collectPages(context.Background(), src, len(src.pages))
	if err != nil {
		t.Fatalf("collectPages: %v", err)
	}
	if len(pages) != len(src.pages) {
		t.Fatalf("pages = %d, want %d", len(pages), len(src.pages))
	}
	for i, p := range pages {
		if !strings.HasPrefix(p, fmt.Sprintf("page %d ", i)) {
			t.Errorf("page %d = %q, not in document order", i, p)
		}
	}
}

func TestExtractPage_embeddedFastPath(t *testing.T) {
	long := strings.Repeat("a", 81)
	stub := &scriptedOCR{responses: []string{"ocr text"}}
	e := New(stub)

	got := e.extractPage(context.Background(), &stubPageSource{pages: []string{long}}, 0)
	if stub.calls != 0 {
		t.Errorf("ocr calls = %d, want 0 (embedded text long enough)", stub.calls)
	}
	if got != long {
		t.Errorf("page text = %q, want embedded text", got)
	}
}

func TestExtractPage_exactThresholdFallsBackToOCR(t *testing.T) {
	exact := strings.Repeat("a", 80)
	recognized := strings.Repeat("b", 100)
	stub := &scriptedOCR{responses: []string{recognized}}
	e := New(stub)

	got := e.extractPage(context.Background(), &stubPageSource{pages: []string{exact}}, 0)
	if stub.calls != 1 {
		t.Errorf("ocr calls = %d, want 1 (80 chars must not take the fast path)", stub.calls)
	}
	if got != recognized {
		t.Errorf("page text = %q, want recognized text", got)
	}
}

func TestExtract_cancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(&scriptedOCR{})
	if _, err := e.Extract(ctx, imageDoc(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
