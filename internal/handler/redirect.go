package handler

import (
	"log/slog"
	"net/http"

	"slugtree/internal/domain/models"
	"slugtree/internal/domain/services"
	"slugtree/internal/httputil"
)

// RedirectHandler handles HTTP requests for the redirect map
type RedirectHandler struct {
	redirectService services.RedirectService
	logger          *slog.Logger
}

// NewRedirectHandler creates a new redirect handler
func NewRedirectHandler(redirectService services.RedirectService, logger *slog.Logger) *RedirectHandler {
	return &RedirectHandler{
		redirectService: redirectService,
		logger:          logger,
	}
}

// GetRedirects returns every old-URL to current-URL pair for a collection
func (h *RedirectHandler) GetRedirects(w http.ResponseWriter, r *http.Request) {
	collection := r.URL.Query().Get("collection")
	if collection == "" {
		httputil.RespondError(w, http.StatusBadRequest, "collection is required")
		return
	}

	redirects, err := h.redirectService.BuildRedirectMap(r.Context(), collection)
	if err != nil {
		handleError(w, err)
		return
	}

	if redirects == nil {
		redirects = []models.Redirect{}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"redirects": redirects,
		"count":     len(redirects),
	})
}
