package dto

import (
	"time"

	"github.com/eshaffer321/ledger-recon/internal/application/service"
	"github.com/eshaffer321/ledger-recon/internal/domain/exceptions"
	"github.com/eshaffer321/ledger-recon/internal/domain/ledger"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a healthy response stamped with the current time.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ReconcileResponse is returned by POST /api/reconcile.
type ReconcileResponse struct {
	*ledger.Result
	Push *service.PushSummary `json:"push,omitempty"`
}

// RecordListResponse is returned when listing exception records.
type RecordListResponse struct {
	Records []exceptions.Record `json:"records"`
	Count   int                 `json:"count"`
}

// NewRecordListResponse wraps records, never returning a null list.
func NewRecordListResponse(records []exceptions.Record) RecordListResponse {
	if records == nil {
		records = []exceptions.Record{}
	}
	return RecordListResponse{Records: records, Count: len(records)}
}

// PutRecordsResponse is returned by POST /api/records.
type PutRecordsResponse struct {
	Stored int `json:"stored"`
}
