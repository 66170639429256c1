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

// ListHandler handles the current user's company lists.
type ListHandler struct {
	svc    *service.ListService
	logger *slog.Logger
}

// NewListHandler creates a new ListHandler.
func NewListHandler(svc *service.ListService, logger *slog.Logger) *ListHandler {
	return &ListHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/lists.
func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	lists, err := h.svc.GetLists(r.Context(), auth.MustUserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, lists)
}

// Create handles POST /api/lists.
func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateListRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	list, err := h.svc.CreateList(r.Context(), auth.MustUserIDFromContext(r.Context()), req.Name)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("list_created",
		"list_id", list.ID,
		"user_id", list.UserID,
	)

	writeJSON(w, http.StatusCreated, list)
}

// Add handles POST /api/lists/add.
func (h *ListHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.ListMembershipRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	list, err := h.svc.AddCompany(r.Context(), auth.MustUserIDFromContext(r.Context()), req.ListID, req.CompanyID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// Remove handles POST /api/lists/remove.
func (h *ListHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req dto.ListMembershipRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	list, err := h.svc.RemoveCompany(r.Context(), auth.MustUserIDFromContext(r.Context()), req.ListID, req.CompanyID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// Delete handles DELETE /api/lists/{id}.
func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.DeleteList(r.Context(), userID, id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("list_deleted",
		"list_id", id,
		"user_id", userID,
	)

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

// handleServiceError maps service errors to HTTP responses.
func (h *ListHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrListNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "List not found or unauthorized")
	case errors.Is(err, service.ErrCompanyNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "Company not found")
	case errors.Is(err, service.ErrNameRequired):
		writeError(w, http.StatusBadRequest, CodeValidation, "Name is required")
	case errors.Is(err, service.ErrNameTooLong):
		writeError(w, http.StatusBadRequest, CodeValidation, "Name is too long")
	case errors.Is(err, service.ErrCompanyIDRequired):
		writeError(w, http.StatusBadRequest, CodeValidation, "companyId is required")
	default:
		writeInternalError(w, r, h.logger, err)
	}
}
