package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/siteforge-io/design-engine/pkg/models"
	"github.com/siteforge-io/design-engine/pkg/services"
)

// SearchComponentsRequest for POST /api/components/search
type SearchComponentsRequest struct {
	Filters models.ComponentFilters `json:"filters"`
	Limit   int                     `json:"limit,omitempty"`
}

// TextSearchRequest for POST /api/components/search/text
type TextSearchRequest struct {
	Text    string                  `json:"text"`
	Filters models.ComponentFilters `json:"filters"`
	Limit   int                     `json:"limit,omitempty"`
}

// ComponentListResponse wraps component search results.
type ComponentListResponse struct {
	Components []*models.Component `json:"components"`
	Total      int                 `json:"total"`
}

// SimilarComponentsResponse for GET /api/components/{cid}/similar
type SimilarComponentsResponse struct {
	Similar []models.SimilarComponent `json:"similar"`
	Total   int                       `json:"total"`
}

// ComponentHandler handles catalog HTTP requests.
type ComponentHandler struct {
	catalog    services.CatalogService
	embeddings services.EmbeddingService
	logger     *zap.Logger
}

// NewComponentHandler creates a new component handler.
func NewComponentHandler(
	catalog services.CatalogService,
	embeddings services.EmbeddingService,
	logger *zap.Logger,
) *ComponentHandler {
	return &ComponentHandler{
		catalog:    catalog,
		embeddings: embeddings,
		logger:     logger,
	}
}

// RegisterRoutes registers the component handler's routes on the given mux.
func (h *ComponentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/components", h.Upsert)
	mux.HandleFunc("GET /api/components/top", h.TopPerforming)
	mux.HandleFunc("GET /api/components/{cid}", h.Get)
	mux.HandleFunc("GET /api/components/{cid}/similar", h.Similar)
	mux.HandleFunc("POST /api/components/search", h.Search)
	mux.HandleFunc("POST /api/components/search/text", h.TextSearch)
}

// Upsert handles POST /api/components
func (h *ComponentHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var c models.Component
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.catalog.UpsertComponent(r.Context(), &c); err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, &c); err != nil {
		h.logger.Error("Failed to encode component response", zap.Error(err))
	}
}

// Get handles GET /api/components/{cid}
func (h *ComponentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseComponentID(w, r, h.logger)
	if !ok {
		return
	}

	c, err := h.catalog.GetComponent(r.Context(), id)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, c); err != nil {
		h.logger.Error("Failed to encode component response", zap.Error(err))
	}
}

// Search handles POST /api/components/search
func (h *ComponentHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchComponentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	components, err := h.catalog.SearchComponents(r.Context(), req.Filters, req.Limit)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	resp := ComponentListResponse{Components: components, Total: len(components)}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode search response", zap.Error(err))
	}
}

// TopPerforming handles GET /api/components/top
func (h *ComponentHandler) TopPerforming(w http.ResponseWriter, r *http.Request) {
	components, err := h.catalog.TopPerforming(r.Context(), queryInt(r, "limit", 10))
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	resp := ComponentListResponse{Components: components, Total: len(components)}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode top components response", zap.Error(err))
	}
}

// Similar handles GET /api/components/{cid}/similar
func (h *ComponentHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseComponentID(w, r, h.logger)
	if !ok {
		return
	}

	k := queryInt(r, "k", 10)
	minSimilarity := queryFloat(r, "min_similarity", 0)

	similar, err := h.embeddings.SimilarToComponent(r.Context(), id, k, minSimilarity)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	resp := SimilarComponentsResponse{Similar: similar, Total: len(similar)}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode similar components response", zap.Error(err))
	}
}

// TextSearch handles POST /api/components/search/text
func (h *ComponentHandler) TextSearch(w http.ResponseWriter, r *http.Request) {
	var req TextSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.Text == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_text", "Search text is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	components, err := h.embeddings.SearchByText(r.Context(), req.Text, req.Filters, req.Limit)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	resp := ComponentListResponse{Components: components, Total: len(components)}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode text search response", zap.Error(err))
	}
}
