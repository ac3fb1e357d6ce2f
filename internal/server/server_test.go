package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/veridoc/veridoc/internal/assistant"
	"github.com/veridoc/veridoc/internal/config"
	"github.com/veridoc/veridoc/internal/models"
	"github.com/veridoc/veridoc/internal/pipeline"
	"github.com/veridoc/veridoc/internal/scoring"
	"github.com/veridoc/veridoc/internal/textract"
)

type fixedOCR struct{ text string }

func (f fixedOCR) Recognize(context.Context, image.Image) (string, error) {
	return f.text, nil
}

type memStore struct {
	records []*models.AssessmentRecord
	pingErr error
}

func (m *memStore) SaveAssessment(_ context.Context, r *models.AssessmentRecord) error {
	m.records = append(m.records, r)
	return nil
}

func (m *memStore) SaveInteraction(context.Context, string, string) error { return nil }

func (m *memStore) ListRecent(_ context.Context, limit int) ([]models.AuditEntry, error) {
	entries := []models.AuditEntry{}
	for i := len(m.records) - 1; i >= 0 && len(entries) < limit; i-- {
		r := m.records[i]
		entries = append(entries, models.AuditEntry{
			ID:           r.ID,
			FileName:     r.Filename,
			DocumentType: r.DocumentType,
			RiskLevel:    r.RiskAssessment.RiskLevel,
			CreatedAt:    time.Now(),
		})
	}
	return entries, nil
}

func (m *memStore) MetricsSummary(context.Context) (*models.DashboardSummary, error) {
	return &models.DashboardSummary{
		Uploads:    len(m.records),
		RiskCounts: map[string]int{},
		DocCounts:  map[string]int{},
	}, nil
}

func (m *memStore) Timeseries(_ context.Context, days int) (*models.Timeseries, error) {
	return &models.Timeseries{
		Days:    make([]string, days),
		Uploads: make([]int, days),
		Low:     make([]int, days),
		Medium:  make([]int, days),
		High:    make([]int, days),
	}, nil
}

func (m *memStore) Ping(context.Context) error { return m.pingErr }
func (m *memStore) Close() error               { return nil }

func newTestServer(t *testing.T, store *memStore, ocrText string) http.Handler {
	t.Helper()
	extractor := textract.New(fixedOCR{text: ocrText})
	fraud := scoring.NewFraudEngine(scoring.DefaultConfig(), nil, nil)
	assessor := pipeline.New(extractor, fraud, nil)
	responder := assistant.New(store, nil)
	cfg := config.ServerConfig{Host: "localhost", Port: 0, MaxUploadBytes: 1 << 20}
	return New(cfg, assessor, store, responder, "test", nil).Router()
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 30)})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &memStore{}, "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["version"] != "test" {
		t.Errorf("body = %v", body)
	}
}

func TestUpload_panCard(t *testing.T) {
	store := &memStore{}
	text := "INCOME TAX DEPARTMENT Permanent Account Number ABCDE1234F RAHUL SHARMA 15/08/1992"
	h := newTestServer(t, store, text)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "card.png", testPNG(t)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var record models.AssessmentRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatal(err)
	}
	if record.DocumentType != models.CategoryPANCard {
		t.Errorf("type = %s, want PAN Card", record.DocumentType)
	}
	if record.RiskAssessment == nil || record.Explanation == nil {
		t.Error("record missing nested assessments")
	}
	if len(store.records) != 1 {
		t.Errorf("persisted records = %d, want 1", len(store.records))
	}
}

func TestUpload_unsupportedFormat(t *testing.T) {
	h := newTestServer(t, &memStore{}, "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "report.docx", []byte("data")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "error") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestUpload_missingFileField(t *testing.T) {
	h := newTestServer(t, &memStore{}, "")
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("no multipart"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAudit(t *testing.T) {
	store := &memStore{}
	h := newTestServer(t, store, "resume with experience and education and skills listed here")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "cv.png", testPNG(t)))
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit?limit=10", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("audit status = %d", rec.Code)
	}
	var body struct {
		Entries []models.AuditEntry `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Entries) != 1 {
		t.Errorf("entries = %d, want 1", len(body.Entries))
	}
}

func TestTimeseries_badDays(t *testing.T) {
	h := newTestServer(t, &memStore{}, "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/metrics/timeseries?days=zero", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMetricsSummary(t *testing.T) {
	h := newTestServer(t, &memStore{}, "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/metrics/summary", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAssistantQuery(t *testing.T) {
	h := newTestServer(t, &memStore{}, "")
	body := strings.NewReader(`{"question": "how do I upload?"}`)
	req := httptest.NewRequest(http.MethodPost, "/assistant/query", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp["answer"], "Supported formats") {
		t.Errorf("answer = %q", resp["answer"])
	}
}

func TestAssistantQuery_emptyQuestion(t *testing.T) {
	h := newTestServer(t, &memStore{}, "")
	req := httptest.NewRequest(http.MethodPost, "/assistant/query", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHealth_degraded(t *testing.T) {
	h := newTestServer(t, &memStore{pingErr: context.DeadlineExceeded}, "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
