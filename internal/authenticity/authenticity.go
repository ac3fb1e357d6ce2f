// Package authenticity calls an external image authenticity service and
// reports whether an image looks manipulated. Failures never abort an
// assessment; the caller treats an unavailable verdict as no signal.
package authenticity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

// Result is the service verdict for one image.
type Result struct {
	// Status is "clean", "manipulated", or "unavailable".
	Status      string
	Manipulated bool
	Message     string
}

// Client checks one image for manipulation.
type Client interface {
	Check(ctx context.Context, content []byte, filename string) *Result
}

// HTTPClient calls the hosted authenticity API with multipart uploads.
type HTTPClient struct {
	url    string
	user   string
	secret string
	http   *http.Client
	logger *zap.Logger
}

// NewFromEnv builds a client from AUTHENTICITY_API_USER and
// AUTHENTICITY_API_SECRET. Without credentials a Disabled client is returned.
func NewFromEnv(url string, timeout time.Duration, logger *zap.Logger) Client {
	user := os.Getenv("AUTHENTICITY_API_USER")
	secret := os.Getenv("AUTHENTICITY_API_SECRET")
	if user == "" || secret == "" {
		logger.Info("authenticity service disabled, no credentials configured")
		return Disabled{}
	}
	return &HTTPClient{
		url:    url,
		user:   user,
		secret: secret,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (c *HTTPClient) Check(ctx context.Context, content []byte, filename string) *Result {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("media", filename)
	if err == nil {
		_, err = part.Write(content)
	}
	if err == nil {
		err = writeFields(w, map[string]string{
			"models":     "properties,type",
			"api_user":   c.user,
			"api_secret": c.secret,
		})
	}
	if err == nil {
		err = w.Close()
	}
	if err != nil {
		return c.unavailable("failed to build request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return c.unavailable("failed to build request", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return c.unavailable("authenticity service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.unavailable(fmt.Sprintf("authenticity service returned %d", resp.StatusCode), nil)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return c.unavailable("failed to read response", err)
	}
	return parseVerdict(raw)
}

func (c *HTTPClient) unavailable(msg string, err error) *Result {
	c.logger.Warn("authenticity check skipped", zap.String("reason", msg), zap.Error(err))
	return &Result{Status: "unavailable", Message: msg}
}

type verdict struct {
	Status string `json:"status"`
	Type   struct {
		Photo        float64 `json:"photo"`
		Manipulation float64 `json:"manipulation"`
	} `json:"type"`
}

func parseVerdict(raw []byte) *Result {
	var v verdict
	if err := json.Unmarshal(raw, &v); err != nil || v.Status != "success" {
		return &Result{Status: "unavailable", Message: "unexpected response from authenticity service"}
	}
	if v.Type.Manipulation >= 0.5 {
		return &Result{
			Status:      "manipulated",
			Manipulated: true,
			Message:     "Image manipulation detected by the authenticity service",
		}
	}
	return &Result{Status: "clean"}
}

func writeFields(w *multipart.Writer, fields map[string]string) error {
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Disabled is the Client used when no credentials are configured.
type Disabled struct{}

func (Disabled) Check(context.Context, []byte, string) *Result {
	return &Result{Status: "unavailable", Message: "authenticity service not configured"}
}
