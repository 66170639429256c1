package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/scoutdesk/scoutdesk/internal/handler/dto"
	"github.com/scoutdesk/scoutdesk/internal/model"
	"github.com/scoutdesk/scoutdesk/internal/service"
)

// CompanyHandler handles directory, detail, notes and enrichment requests.
type CompanyHandler struct {
	svc    *service.CompanyService
	logger *slog.Logger
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(svc *service.CompanyService, logger *slog.Logger) *CompanyHandler {
	return &CompanyHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/companies.
// Unparseable paging and unknown sort keys fall back to defaults.
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListCompanies(r.Context(), parseCompanyFilter(r.URL.Query()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Get handles GET /api/companies/{id}.
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	company, err := h.svc.GetCompany(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, company)
}

// Enrich handles POST /api/companies/{id}/enrich.
// The call blocks until scraping and generation finish.
func (h *CompanyHandler) Enrich(w http.ResponseWriter, r *http.Request) {
	company, err := h.svc.Enrich(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, company)
}

// AddNote handles POST /api/companies/{id}/notes.
func (h *CompanyHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req dto.AddNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	note, err := h.svc.AddNote(r.Context(), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("note_added",
		"note_id", note.ID,
		"company_id", note.CompanyID,
	)

	writeJSON(w, http.StatusCreated, note)
}

// handleServiceError maps service errors to HTTP responses.
func (h *CompanyHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrCompanyNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "Company not found")
	case errors.Is(err, service.ErrContentRequired):
		writeError(w, http.StatusBadRequest, CodeValidation, "Content is required")
	case errors.Is(err, service.ErrContentTooLong):
		writeError(w, http.StatusBadRequest, CodeValidation, "Content is too long")
	default:
		writeInternalError(w, r, h.logger, err)
	}
}

// parseCompanyFilter reads directory query parameters.
func parseCompanyFilter(q url.Values) model.CompanyFilter {
	return model.CompanyFilter{
		Search:    q.Get("search"),
		Industry:  q.Get("industry"),
		Stage:     q.Get("stage"),
		Page:      atoiOrZero(q.Get("page")),
		Limit:     atoiOrZero(q.Get("limit")),
		SortBy:    model.ParseSortField(q.Get("sortBy")),
		SortOrder: model.ParseSortOrder(q.Get("sortOrder")),
	}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
