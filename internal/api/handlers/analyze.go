package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"smishguard/internal/analysis"
	"smishguard/internal/domain/models"
	"smishguard/pkg/logger"
)

// maxBatchSize caps how many messages a single batch request may carry
const maxBatchSize = 100

// AnalyzeHandler handles message analysis endpoints
type AnalyzeHandler struct {
	pipeline *analysis.Pipeline
	logger   *logger.Logger
}

// NewAnalyzeHandler creates a new AnalyzeHandler
func NewAnalyzeHandler(p *analysis.Pipeline, log *logger.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		pipeline: p,
		logger:   log.WithComponent("analyze-handler"),
	}
}

// AnalyzeRequest is the request body for message analysis
type AnalyzeRequest struct {
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Region    string    `json:"region,omitempty"`
}

// AnalyzeBatchRequest is the request body for batch analysis
type AnalyzeBatchRequest struct {
	Messages []AnalyzeRequest `json:"messages"`
}

// AnalyzeBatchResponse summarizes a batch run
type AnalyzeBatchResponse struct {
	Results        []models.AnalysisResult `json:"results"`
	TotalCount     int                     `json:"total_count"`
	CautionCount   int                     `json:"caution_count"`
	DangerousCount int                     `json:"dangerous_count"`
}

// Analyze handles POST /api/v1/messages/analyze
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Body == "" {
		http.Error(w, "Message body is required", http.StatusBadRequest)
		return
	}

	msg := models.Message{
		ID:        uuid.New(),
		Sender:    req.Sender,
		Body:      req.Body,
		Timestamp: req.Timestamp,
		Region:    req.Region,
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	result := h.pipeline.Analyze(r.Context(), msg)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// AnalyzeBatch handles POST /api/v1/messages/analyze/batch
func (h *AnalyzeHandler) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Messages) == 0 {
		http.Error(w, "At least one message is required", http.StatusBadRequest)
		return
	}
	if len(req.Messages) > maxBatchSize {
		http.Error(w, "Maximum 100 messages per batch", http.StatusBadRequest)
		return
	}

	resp := AnalyzeBatchResponse{
		Results:    make([]models.AnalysisResult, 0, len(req.Messages)),
		TotalCount: len(req.Messages),
	}

	for _, m := range req.Messages {
		msg := models.Message{
			ID:        uuid.New(),
			Sender:    m.Sender,
			Body:      m.Body,
			Timestamp: m.Timestamp,
			Region:    m.Region,
		}
		if msg.Timestamp.IsZero() {
			msg.Timestamp = time.Now()
		}

		result := h.pipeline.Analyze(r.Context(), msg)
		switch result.Verdict.Level {
		case models.VerdictCaution:
			resp.CautionCount++
		case models.VerdictDangerous:
			resp.DangerousCount++
		}
		resp.Results = append(resp.Results, result)
	}

	h.logger.Info().
		Int("total", resp.TotalCount).
		Int("caution", resp.CautionCount).
		Int("dangerous", resp.DangerousCount).
		Msg("batch analyzed")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// CheckURL handles POST /api/v1/messages/check-url. It runs the same
// pipeline over a body consisting of just the URL, so a caller can vet a
// single link without a surrounding message.
func (h *AnalyzeHandler) CheckURL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL    string `json:"url"`
		Region string `json:"region,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.URL == "" {
		http.Error(w, "URL is required", http.StatusBadRequest)
		return
	}

	msg := models.Message{
		ID:        uuid.New(),
		Body:      req.URL,
		Timestamp: time.Now(),
		Region:    req.Region,
	}

	result := h.pipeline.Analyze(r.Context(), msg)
	if len(result.Links) == 0 {
		http.Error(w, "Not a recognizable URL", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
