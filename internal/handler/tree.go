package handler

import (
	"log/slog"
	"net/http"

	"slugtree/internal/domain/services"
	"slugtree/internal/httputil"
)

// TreeHandler handles HTTP requests for tree reads
type TreeHandler struct {
	treeService services.TreeService
	logger      *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(treeService services.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// GetTree returns the nested folder/document tree across all collections
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.treeService.GetTree(r.Context())
	if err != nil {
		h.logger.Error("failed to build tree", "error", err)
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

// HealthCheck reports liveness
func (h *TreeHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
