package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/siteforge-io/design-engine/pkg/models"
	"github.com/siteforge-io/design-engine/pkg/services"
)

// ExecuteTaskRequest for POST /api/tasks/execute
type ExecuteTaskRequest struct {
	models.TaskContext
	ExcludeProviders []string `json:"exclude_providers,omitempty"`
}

// ProviderListResponse for GET /api/providers
type ProviderListResponse struct {
	Providers []*models.LLMProvider `json:"providers"`
	Total     int                   `json:"total"`
}

// TaskHandler handles task execution and provider inspection requests.
type TaskHandler struct {
	executor services.TaskExecutor
	registry *services.ProviderRegistry
	logger   *zap.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(
	executor services.TaskExecutor,
	registry *services.ProviderRegistry,
	logger *zap.Logger,
) *TaskHandler {
	return &TaskHandler{
		executor: executor,
		registry: registry,
		logger:   logger,
	}
}

// RegisterRoutes registers the task handler's routes on the given mux.
func (h *TaskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/tasks/execute", h.Execute)
	mux.HandleFunc("GET /api/providers", h.ListProviders)
	mux.HandleFunc("POST /api/tasks/select-provider", h.SelectProvider)
}

// Execute handles POST /api/tasks/execute
func (h *TaskHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.executor.ExecuteExcluding(r.Context(), &req.TaskContext, req.ExcludeProviders)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode task result", zap.Error(err))
	}
}

// SelectProvider handles POST /api/tasks/select-provider
// Dry-run provider selection: returns which provider would run the task
// without invoking it.
func (h *TaskHandler) SelectProvider(w http.ResponseWriter, r *http.Request) {
	var req ExecuteTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	provider, err := h.registry.SelectExcluding(&req.TaskContext, req.ExcludeProviders)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, provider); err != nil {
		h.logger.Error("Failed to encode provider response", zap.Error(err))
	}
}

// ListProviders handles GET /api/providers
func (h *TaskHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers := h.registry.List()
	resp := ProviderListResponse{Providers: providers, Total: len(providers)}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode providers response", zap.Error(err))
	}
}
