package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/ledger-recon/internal/api/dto"
	"github.com/eshaffer321/ledger-recon/internal/domain/exceptions"
	"github.com/eshaffer321/ledger-recon/internal/domain/ledger"
	"github.com/eshaffer321/ledger-recon/internal/infrastructure/storage"
)

// RecordsHandler handles exception record requests.
type RecordsHandler struct {
	*Base
	ids    ledger.IDSource
	clock  ledger.Clock
	logger *slog.Logger
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(repo storage.Repository, ids ledger.IDSource, clock ledger.Clock, logger *slog.Logger) *RecordsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordsHandler{
		Base:   NewBase(repo),
		ids:    ids,
		clock:  clock,
		logger: logger,
	}
}

// List handles GET /api/records?status=&search=&entity=&vendor=
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := exceptions.Filter{
		Search: q.Get("search"),
		Entity: q.Get("entity"),
		Vendor: q.Get("vendor"),
	}
	if s := q.Get("status"); s != "" {
		status, err := exceptions.ParseStatus(s)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
			return
		}
		filter.Status = status
	}

	records, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list records", slog.Any("error", err))
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.NewRecordListResponse(records))
}

// Create handles POST /api/records. Missing IDs, statuses and timestamps
// are filled in; records with an existing ID replace it.
func (h *RecordsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.PutRecordsRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	now := h.clock.Now().UTC()
	for i := range req.Records {
		rec := &req.Records[i]
		if rec.ID == "" {
			rec.ID = "DB-" + h.ids.NewID()
		}
		if rec.Status == "" {
			rec.Status = exceptions.StatusIncomplete
		}
		status, err := exceptions.ParseStatus(string(rec.Status))
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
			return
		}
		rec.Status = status
		if rec.AddedAt.IsZero() {
			rec.AddedAt = now
		}
	}

	if err := h.repo.PutMany(r.Context(), req.Records); err != nil {
		h.logger.Error("failed to store records", slog.Any("error", err))
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusCreated, dto.PutRecordsResponse{Stored: len(req.Records)})
}

// Patch handles PATCH /api/records/{id}.
func (h *RecordsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.PatchRecordRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}
	if patch.Empty() {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("status or comments is required"))
		return
	}

	record, err := h.repo.UpdatePartial(r.Context(), id, patch)
	if errors.Is(err, storage.ErrNotFound) {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("record"))
		return
	}
	if err != nil {
		h.logger.Error("failed to update record", slog.String("id", id), slog.Any("error", err))
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, record)
}

// Delete handles DELETE /api/records/{id}.
func (h *RecordsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.repo.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("record"))
		return
	}
	if err != nil {
		h.logger.Error("failed to delete record", slog.String("id", id), slog.Any("error", err))
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/records.
func (h *RecordsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Clear(r.Context()); err != nil {
		h.logger.Error("failed to clear records", slog.Any("error", err))
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
