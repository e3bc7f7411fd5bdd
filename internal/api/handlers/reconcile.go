package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/eshaffer321/ledger-recon/internal/adapters/ingest"
	"github.com/eshaffer321/ledger-recon/internal/adapters/report"
	"github.com/eshaffer321/ledger-recon/internal/api/dto"
	"github.com/eshaffer321/ledger-recon/internal/application/service"
	"github.com/eshaffer321/ledger-recon/internal/domain/ledger"
)

// XLSXContentType is the media type of report downloads.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReconcileHandler runs reconciliations over uploaded ledgers.
type ReconcileHandler struct {
	*Base
	service *service.ReconcileService
	logger  *slog.Logger
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(svc *service.ReconcileService, logger *slog.Logger) *ReconcileHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileHandler{
		Base:    NewBase(nil),
		service: svc,
		logger:  logger,
	}
}

// Reconcile handles POST /api/reconcile.
//
// The body is either multipart with "erp" and "vendor" files (CSV or XLSX)
// or JSON {"erp": table, "vendor": table}. With ?push=true the unmatched ERP
// rows are filed as exception records. With ?format=xlsx the result is
// returned as a workbook instead of JSON.
func (h *ReconcileHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	erp, vendor, apiErr := h.readTables(w, r)
	if apiErr != nil {
		status := http.StatusBadRequest
		if apiErr.Code == dto.ErrCodeUnsupportedFormat {
			status = http.StatusUnsupportedMediaType
		}
		h.WriteError(w, status, *apiErr)
		return
	}

	result, err := h.service.Reconcile(r.Context(), erp, vendor)
	if err != nil {
		h.logger.Error("reconcile failed", slog.Any("error", err))
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.ReconcileResponse{Result: result}
	if ParseBoolParam(r, "push", false) {
		summary, err := h.service.PushExceptions(r.Context(), result)
		if errors.Is(err, service.ErrNoStore) {
			h.WriteError(w, http.StatusServiceUnavailable, dto.UnavailableError("exception store"))
			return
		}
		if err != nil {
			h.logger.Error("push exceptions failed", slog.Any("error", err))
			h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
			return
		}
		response.Push = &summary
	}

	if r.URL.Query().Get("format") == "xlsx" {
		w.Header().Set("Content-Type", XLSXContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="reconciliation.xlsx"`)
		if err := report.Write(w, result); err != nil {
			h.logger.Error("report export failed", slog.Any("error", err))
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, response)
}

func (h *ReconcileHandler) readTables(w http.ResponseWriter, r *http.Request) (ledger.Table, ledger.Table, *dto.APIError) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req dto.ReconcileRequest
		if err := DecodeJSON(w, r, &req); err != nil {
			apiErr := dto.BadRequestError(err.Error())
			return ledger.Table{}, ledger.Table{}, &apiErr
		}
		return req.ERP, req.Vendor, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		apiErr := dto.BadRequestError("invalid multipart form: " + err.Error())
		return ledger.Table{}, ledger.Table{}, &apiErr
	}

	erp, apiErr := readUpload(r, "erp")
	if apiErr != nil {
		return ledger.Table{}, ledger.Table{}, apiErr
	}
	vendor, apiErr := readUpload(r, "vendor")
	if apiErr != nil {
		return ledger.Table{}, ledger.Table{}, apiErr
	}
	return erp, vendor, nil
}

func readUpload(r *http.Request, field string) (ledger.Table, *dto.APIError) {
	file, header, err := r.FormFile(field)
	if err != nil {
		apiErr := dto.ValidationError(fmt.Sprintf("%s file is required", field))
		return ledger.Table{}, &apiErr
	}
	defer func() { _ = file.Close() }()

	table, err := ingest.Read(header.Filename, file)
	if errors.Is(err, ingest.ErrUnsupportedFormat) {
		apiErr := dto.UnsupportedFormatError(header.Filename)
		return ledger.Table{}, &apiErr
	}
	if err != nil {
		apiErr := dto.BadRequestError(err.Error())
		return ledger.Table{}, &apiErr
	}
	return table, nil
}
