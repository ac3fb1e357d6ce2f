package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/veridoc/veridoc/internal/ingest"
)

// maxTimeseriesDays caps the timeseries query window.
const maxTimeseriesDays = 90

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"service": "veridoc",
		"message": "Document risk assessment service. POST a file to /upload.",
		"version": s.version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded", "version": s.version,
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok", "version": s.version,
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	record, err := s.assessor.Assess(r.Context(), content, header.Filename)
	if err != nil {
		if errors.Is(err, ingest.ErrUnsupportedFormat) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("assessment failed",
			zap.String("file", header.Filename), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "assessment failed")
		return
	}

	if err := s.store.SaveAssessment(r.Context(), record); err != nil {
		// The assessment succeeded; losing the audit row is logged but the
		// caller still gets their result.
		s.logger.Error("failed to persist audit row",
			zap.String("file", header.Filename), zap.Error(err))
	}

	respondJSON(w, http.StatusOK, record)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.store.ListRecent(r.Context(), limit)
	if err != nil {
		s.logger.Error("audit query failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to read audit log")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleMetricsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.MetricsSummary(r.Context())
	if err != nil {
		s.logger.Error("metrics query failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to compute metrics")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleTimeseries(w http.ResponseWriter, r *http.Request) {
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}
	if days > maxTimeseriesDays {
		days = maxTimeseriesDays
	}

	series, err := s.store.Timeseries(r.Context(), days)
	if err != nil {
		s.logger.Error("timeseries query failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to compute timeseries")
		return
	}
	respondJSON(w, http.StatusOK, series)
}

func (s *Server) handleAssistantQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		respondError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer := s.responder.Respond(r.Context(), req.Question)
	respondJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
