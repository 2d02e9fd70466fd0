package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/siteforge-io/design-engine/pkg/models"
	"github.com/siteforge-io/design-engine/pkg/services"
)

// RegisterSiteRequest for POST /api/sites
type RegisterSiteRequest struct {
	Domain   string `json:"domain"`
	Industry string `json:"industry,omitempty"`
}

// ExtractCandidateRequest for POST /api/sites/{sid}/candidates
type ExtractCandidateRequest struct {
	HTML string `json:"html"`
	CSS  string `json:"css,omitempty"`
	JS   string `json:"js,omitempty"`
}

// CandidateListResponse wraps a site's extracted candidates.
type CandidateListResponse struct {
	Candidates []*models.CandidateComponent `json:"candidates"`
	Total      int                          `json:"total"`
}

// GenerateInsightsRequest for POST /api/insights/generate
type GenerateInsightsRequest struct {
	SinceDays int `json:"since_days,omitempty"`
}

// InsightListResponse wraps insight results.
type InsightListResponse struct {
	Insights []*models.LearningInsight `json:"insights"`
	Total    int                       `json:"total"`
}

// ValidateInsightRequest for POST /api/insights/{iid}/validate
type ValidateInsightRequest struct {
	Status string `json:"status"`
}

// LearningHandler handles the learning loop's HTTP surface: sites,
// candidates, performance feedback and insights.
type LearningHandler struct {
	learning services.LearningService
	logger   *zap.Logger
}

// NewLearningHandler creates a new learning handler.
func NewLearningHandler(learning services.LearningService, logger *zap.Logger) *LearningHandler {
	return &LearningHandler{learning: learning, logger: logger}
}

// RegisterRoutes registers the learning handler's routes on the given mux.
func (h *LearningHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sites", h.RegisterSite)
	mux.HandleFunc("POST /api/sites/{sid}/candidates", h.ExtractCandidate)
	mux.HandleFunc("GET /api/sites/{sid}/candidates", h.ListCandidates)
	mux.HandleFunc("POST /api/candidates/{xid}/reject", h.RejectCandidate)
	mux.HandleFunc("POST /api/performance", h.RecordPerformance)
	mux.HandleFunc("POST /api/insights/generate", h.GenerateInsights)
	mux.HandleFunc("GET /api/insights", h.ListInsights)
	mux.HandleFunc("POST /api/insights/{iid}/validate", h.ValidateInsight)
}

// RegisterSite handles POST /api/sites
func (h *LearningHandler) RegisterSite(w http.ResponseWriter, r *http.Request) {
	var req RegisterSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	site := &models.OnboardingSite{Domain: req.Domain, Industry: req.Industry}
	if err := h.learning.RegisterSite(r.Context(), site); err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, site); err != nil {
		h.logger.Error("Failed to encode site response", zap.Error(err))
	}
}

// ExtractCandidate handles POST /api/sites/{sid}/candidates
func (h *LearningHandler) ExtractCandidate(w http.ResponseWriter, r *http.Request) {
	siteID, ok := ParseSiteID(w, r, h.logger)
	if !ok {
		return
	}

	var req ExtractCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	candidate, err := h.learning.ExtractCandidate(r.Context(), siteID, req.HTML, req.CSS, req.JS)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, candidate); err != nil {
		h.logger.Error("Failed to encode candidate response", zap.Error(err))
	}
}

// ListCandidates handles GET /api/sites/{sid}/candidates
func (h *LearningHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	siteID, ok := ParseSiteID(w, r, h.logger)
	if !ok {
		return
	}

	candidates, err := h.learning.ListCandidates(r.Context(), siteID)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	resp := CandidateListResponse{Candidates: candidates, Total: len(candidates)}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode candidates response", zap.Error(err))
	}
}

// RejectCandidate handles POST /api/candidates/{xid}/reject
func (h *LearningHandler) RejectCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseCandidateID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.learning.RejectCandidate(r.Context(), id); err != nil {
		RespondError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecordPerformance handles POST /api/performance
func (h *LearningHandler) RecordPerformance(w http.ResponseWriter, r *http.Request) {
	var rec models.PerformanceRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.learning.RecordPerformance(r.Context(), &rec); err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, &rec); err != nil {
		h.logger.Error("Failed to encode performance response", zap.Error(err))
	}
}

// GenerateInsights handles POST /api/insights/generate
func (h *LearningHandler) GenerateInsights(w http.ResponseWriter, r *http.Request) {
	var req GenerateInsightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.SinceDays <= 0 {
		req.SinceDays = 30
	}

	since := time.Now().AddDate(0, 0, -req.SinceDays)
	insights, err := h.learning.GenerateInsights(r.Context(), since)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	resp := InsightListResponse{Insights: insights, Total: len(insights)}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode insights response", zap.Error(err))
	}
}

// ListInsights handles GET /api/insights
func (h *LearningHandler) ListInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.learning.ListInsights(r.Context(),
		r.URL.Query().Get("status"), queryInt(r, "limit", 0))
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	resp := InsightListResponse{Insights: insights, Total: len(insights)}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode insights response", zap.Error(err))
	}
}

// ValidateInsight handles POST /api/insights/{iid}/validate
func (h *LearningHandler) ValidateInsight(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseInsightID(w, r, h.logger)
	if !ok {
		return
	}

	var req ValidateInsightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.learning.ValidateInsight(r.Context(), id, req.Status); err != nil {
		RespondError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
