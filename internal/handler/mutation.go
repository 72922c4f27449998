package handler

import (
	"log/slog"
	"net/http"

	"slugtree/internal/domain/services"
	"slugtree/internal/httputil"
)

// MutationHandler handles HTTP requests for tree mutations
type MutationHandler struct {
	mutationService services.MutationService
	logger          *slog.Logger
}

// NewMutationHandler creates a new mutation handler
func NewMutationHandler(mutationService services.MutationService, logger *slog.Logger) *MutationHandler {
	return &MutationHandler{
		mutationService: mutationService,
		logger:          logger,
	}
}

// Move relocates a folder or document to a new parent and/or index
func (h *MutationHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req services.MoveRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.mutationService.Move(r.Context(), &req); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Reorder reassigns sibling sort orders in one batch
func (h *MutationHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req services.ReorderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.mutationService.Reorder(r.Context(), &req); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Create constructs a new folder or document under a parent
func (h *MutationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.mutationService.Create(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"id":      result.ID,
		"type":    result.Type,
		"name":    result.Name,
	})
}

// Delete removes a folder or document. Parameters arrive as query values
// because DELETE bodies are unreliable across proxies.
func (h *MutationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := services.DeleteRequest{
		Type:           q.Get("type"),
		ID:             q.Get("id"),
		Collection:     q.Get("collection"),
		DeleteChildren: q.Get("deleteChildren") == "true",
	}

	if err := h.mutationService.Delete(r.Context(), &req); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Duplicate clones a document as a draft with a fresh slug
func (h *MutationHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("id")
	collection := q.Get("collection")
	if id == "" || collection == "" {
		httputil.RespondError(w, http.StatusBadRequest, "id and collection are required")
		return
	}

	result, err := h.mutationService.Duplicate(r.Context(), collection, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"id":      result.ID,
		"title":   result.Title,
	})
}

// SetStatus flips a document between draft and published
func (h *MutationHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req services.StatusRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.mutationService.SetStatus(r.Context(), &req); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Rename changes a display name, optionally regenerating slugs
func (h *MutationHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req services.RenameRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.mutationService.Rename(r.Context(), &req); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Regenerate forces a slug rebuild under a folder, or everywhere when the
// folderId query parameter is absent
func (h *MutationHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	var folderID *string
	if v := r.URL.Query().Get("folderId"); v != "" {
		folderID = &v
	}

	count, err := h.mutationService.Regenerate(r.Context(), folderID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   count,
	})
}

// Migrate backfills folder pathSegments and regenerates every slug
func (h *MutationHandler) Migrate(w http.ResponseWriter, r *http.Request) {
	result, err := h.mutationService.Migrate(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   result.Count,
		"folders": result.Folders,
	})
}

// RestoreSlug sets a document's slug back to a value from its history
func (h *MutationHandler) RestoreSlug(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID         string `json:"id"`
		Collection string `json:"collection"`
		Slug       string `json:"slug"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	restored, err := h.mutationService.RestoreSlug(r.Context(), req.Collection, req.ID, req.Slug)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"restoredSlug": restored,
	})
}

// EditSegment sets a folder's pathSegment or a document's pageSegment
func (h *MutationHandler) EditSegment(w http.ResponseWriter, r *http.Request) {
	var req services.SegmentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.mutationService.EditSegment(r.Context(), &req); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"success": true})
}
