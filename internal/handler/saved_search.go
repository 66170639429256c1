package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scoutdesk/scoutdesk/internal/auth"
	"github.com/scoutdesk/scoutdesk/internal/handler/dto"
	"github.com/scoutdesk/scoutdesk/internal/service"
)

// SavedSearchHandler handles the current user's saved searches.
type SavedSearchHandler struct {
	svc    *service.SavedSearchService
	logger *slog.Logger
}

// NewSavedSearchHandler creates a new SavedSearchHandler.
func NewSavedSearchHandler(svc *service.SavedSearchService, logger *slog.Logger) *SavedSearchHandler {
	return &SavedSearchHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/saved-searches.
func (h *SavedSearchHandler) List(w http.ResponseWriter, r *http.Request) {
	searches, err := h.svc.GetSavedSearches(r.Context(), auth.MustUserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searches)
}

// Create handles POST /api/saved-searches.
func (h *SavedSearchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSavedSearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	search, err := h.svc.CreateSavedSearch(r.Context(), auth.MustUserIDFromContext(r.Context()), service.CreateSavedSearchInput{
		Name:    req.Name,
		Query:   req.Query,
		Filters: req.Filters,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("saved_search_created",
		"saved_search_id", search.ID,
		"user_id", search.UserID,
	)

	writeJSON(w, http.StatusCreated, search)
}

// Delete handles DELETE /api/saved-searches/{id}.
func (h *SavedSearchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.DeleteSavedSearch(r.Context(), userID, id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("saved_search_deleted",
		"saved_search_id", id,
		"user_id", userID,
	)

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

// handleServiceError maps service errors to HTTP responses.
func (h *SavedSearchHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrSavedSearchNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "Saved search not found or unauthorized")
	case errors.Is(err, service.ErrNameRequired):
		writeError(w, http.StatusBadRequest, CodeValidation, "Name is required")
	case errors.Is(err, service.ErrNameTooLong):
		writeError(w, http.StatusBadRequest, CodeValidation, "Name is too long")
	default:
		writeInternalError(w, r, h.logger, err)
	}
}
