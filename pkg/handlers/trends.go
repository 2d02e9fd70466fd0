package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/siteforge-io/design-engine/pkg/models"
	"github.com/siteforge-io/design-engine/pkg/services"
)

// TrendListResponse wraps trend analysis results.
type TrendListResponse struct {
	Trends []*models.TrendMetric `json:"trends"`
	Total  int                   `json:"total"`
}

// TrendHandler handles trend analysis HTTP requests.
type TrendHandler struct {
	trends services.TrendService
	logger *zap.Logger
}

// NewTrendHandler creates a new trend handler.
func NewTrendHandler(trends services.TrendService, logger *zap.Logger) *TrendHandler {
	return &TrendHandler{trends: trends, logger: logger}
}

// RegisterRoutes registers the trend handler's routes on the given mux.
func (h *TrendHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/trends", h.Analyze)
	mux.HandleFunc("GET /api/trends/breaking", h.Breaking)
	mux.HandleFunc("GET /api/trends/trajectory", h.Trajectory)
}

// Analyze handles GET /api/trends
func (h *TrendHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	window := time.Duration(queryInt(r, "window_days", 0)) * 24 * time.Hour

	trends, err := h.trends.AnalyzeTrends(r.Context(), window)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	resp := TrendListResponse{Trends: trends, Total: len(trends)}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode trends response", zap.Error(err))
	}
}

// Breaking handles GET /api/trends/breaking
func (h *TrendHandler) Breaking(w http.ResponseWriter, r *http.Request) {
	minGrowth := queryFloat(r, "min_growth", 50)

	trends, err := h.trends.DetectBreakingTrends(r.Context(), minGrowth)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	resp := TrendListResponse{Trends: trends, Total: len(trends)}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode breaking trends response", zap.Error(err))
	}
}

// Trajectory handles GET /api/trends/trajectory
func (h *TrendHandler) Trajectory(w http.ResponseWriter, r *http.Request) {
	trendID := r.URL.Query().Get("trend_id")
	if trendID == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_trend_id", "trend_id query parameter is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	trajectory, err := h.trends.PredictTrajectory(r.Context(), trendID)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, trajectory); err != nil {
		h.logger.Error("Failed to encode trajectory response", zap.Error(err))
	}
}
