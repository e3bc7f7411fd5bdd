package dto

import (
	"github.com/eshaffer321/ledger-recon/internal/domain/exceptions"
	"github.com/eshaffer321/ledger-recon/internal/domain/ledger"
)

// ReconcileRequest is the JSON body of POST /api/reconcile.
type ReconcileRequest struct {
	ERP    ledger.Table `json:"erp"`
	Vendor ledger.Table `json:"vendor"`
}

// PutRecordsRequest is the body of POST /api/records.
type PutRecordsRequest struct {
	Records []exceptions.Record `json:"records"`
}

// PatchRecordRequest is the body of PATCH /api/records/{id}.
type PatchRecordRequest struct {
	Status   *string `json:"status,omitempty"`
	Comments *string `json:"comments,omitempty"`
}

// ToPatch validates the request and converts it to a record patch.
func (p PatchRecordRequest) ToPatch() (exceptions.Patch, error) {
	var patch exceptions.Patch
	if p.Status != nil {
		status, err := exceptions.ParseStatus(*p.Status)
		if err != nil {
			return patch, err
		}
		patch.Status = &status
	}
	patch.Comments = p.Comments
	return patch, nil
}
