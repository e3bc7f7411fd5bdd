package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/eshaffer321/ledger-recon/internal/api"
	"github.com/eshaffer321/ledger-recon/internal/api/dto"
	"github.com/eshaffer321/ledger-recon/internal/api/handlers"
	"github.com/eshaffer321/ledger-recon/internal/application/service"
	"github.com/eshaffer321/ledger-recon/internal/domain/exceptions"
	"github.com/eshaffer321/ledger-recon/internal/domain/reconciler"
	"github.com/eshaffer321/ledger-recon/internal/infrastructure/identity"
	"github.com/eshaffer321/ledger-recon/internal/infrastructure/logging"
	"github.com/eshaffer321/ledger-recon/internal/infrastructure/storage"
)

var testNow = time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*api.Server, *storage.MockRepository) {
	t.Helper()
	repo := storage.NewMockRepository()
	logger := logging.Discard()

	engine, err := reconciler.New(reconciler.Options{IDs: identity.NewSequence("id")})
	require.NoError(t, err)

	ids := identity.NewSequence("rec")
	clock := identity.FixedClock{T: testNow}
	svc := service.NewReconcileService(engine, repo, ids, clock, logger)

	server := api.NewServer(api.DefaultConfig(), api.Deps{Service: svc, Repo: repo, IDs: ids, Clock: clock}, logger)
	return server, repo
}

func serve(server *api.Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

const reconcileBody = `{
	"erp": {"columns": ["Invoice", "Debit", "Vendor"], "rows": [
		{"Invoice": "INV-1", "Debit": 100, "Vendor": "Acme"},
		{"Invoice": "INV-2", "Debit": "40,00", "Vendor": "Acme"}
	]},
	"vendor": {"columns": ["Invoice", "Debit"], "rows": [
		{"Invoice": "INV-1", "Debit": 100.03}
	]}
}`

type reconcileResponse struct {
	Matches []struct {
		Status     string          `json:"status"`
		Difference decimal.Decimal `json:"difference"`
	} `json:"matches"`
	UnmatchedERP []struct {
		Invoice string          `json:"invoice"`
		Amount  decimal.Decimal `json:"amount"`
	} `json:"unmatched_erp"`
	UnmatchedVendor []json.RawMessage `json:"unmatched_vendor"`
	Push            *service.PushSummary `json:"push"`
}

func TestServer_HealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.HealthResponse
	err := json.NewDecoder(rec.Body).Decode(&response)
	require.NoError(t, err)
	assert.Equal(t, "ok", response.Status)
}

func TestServer_Reconcile(t *testing.T) {
	t.Run("JSON body returns the result", func(t *testing.T) {
		server, repo := newTestServer(t)

		rec := serve(server, jsonRequest(http.MethodPost, "/api/reconcile", reconcileBody))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp reconcileResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

		require.Len(t, resp.Matches, 1)
		assert.Equal(t, "Perfect Match", resp.Matches[0].Status)
		assert.True(t, decimal.RequireFromString("0.03").Equal(resp.Matches[0].Difference))
		require.Len(t, resp.UnmatchedERP, 1)
		assert.Equal(t, "INV-2", resp.UnmatchedERP[0].Invoice)
		assert.True(t, decimal.RequireFromString("40").Equal(resp.UnmatchedERP[0].Amount))
		assert.NotNil(t, resp.UnmatchedVendor)
		assert.Nil(t, resp.Push)
		assert.Equal(t, 0, repo.Len())
	})

	t.Run("exponent amounts keep their value", func(t *testing.T) {
		server, _ := newTestServer(t)
		body := `{
			"erp": {"columns": ["Invoice", "Debit"], "rows": [{"Invoice": "INV-9", "Debit": 1.5e2}]},
			"vendor": {"columns": ["Invoice", "Debit"], "rows": []}
		}`

		rec := serve(server, jsonRequest(http.MethodPost, "/api/reconcile", body))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp reconcileResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Len(t, resp.UnmatchedERP, 1)
		assert.True(t, decimal.NewFromInt(150).Equal(resp.UnmatchedERP[0].Amount))
	})

	t.Run("push files unmatched ERP rows once", func(t *testing.T) {
		server, repo := newTestServer(t)

		rec := serve(server, jsonRequest(http.MethodPost, "/api/reconcile?push=true", reconcileBody))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp reconcileResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.NotNil(t, resp.Push)
		assert.Equal(t, service.PushSummary{Added: 1}, *resp.Push)

		rec = serve(server, jsonRequest(http.MethodPost, "/api/reconcile?push=1", reconcileBody))
		require.Equal(t, http.StatusOK, rec.Code)
		resp = reconcileResponse{}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, service.PushSummary{Skipped: 1}, *resp.Push)

		assert.Equal(t, 1, repo.Len())
	})

	t.Run("multipart upload", func(t *testing.T) {
		server, _ := newTestServer(t)

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		erpPart, err := mw.CreateFormFile("erp", "erp.csv")
		require.NoError(t, err)
		_, _ = erpPart.Write([]byte("Invoice,Debit\nINV-1,100\nINV-2,50\n"))
		vendorPart, err := mw.CreateFormFile("vendor", "vendor.csv")
		require.NoError(t, err)
		_, _ = vendorPart.Write([]byte("Invoice,Debit\nINV-1,100\n"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rec := serve(server, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp reconcileResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp.Matches, 1)
		assert.Len(t, resp.UnmatchedERP, 1)
	})

	t.Run("multipart missing vendor file", func(t *testing.T) {
		server, _ := newTestServer(t)

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("erp", "erp.csv")
		require.NoError(t, err)
		_, _ = part.Write([]byte("Invoice,Debit\nINV-1,100\n"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rec := serve(server, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var apiErr dto.APIError
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
		assert.Equal(t, dto.ErrCodeValidation, apiErr.Code)
	})

	t.Run("multipart unsupported format", func(t *testing.T) {
		server, _ := newTestServer(t)

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		for _, field := range []string{"erp", "vendor"} {
			part, err := mw.CreateFormFile(field, field+".pdf")
			require.NoError(t, err)
			_, _ = part.Write([]byte("%PDF"))
		}
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rec := serve(server, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		server, _ := newTestServer(t)

		rec := serve(server, jsonRequest(http.MethodPost, "/api/reconcile", "{"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("xlsx report", func(t *testing.T) {
		server, _ := newTestServer(t)

		rec := serve(server, jsonRequest(http.MethodPost, "/api/reconcile?format=xlsx", reconcileBody))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, handlers.XLSXContentType, rec.Header().Get("Content-Type"))

		f, err := excelize.OpenReader(rec.Body)
		require.NoError(t, err)
		defer f.Close()
		assert.Contains(t, f.GetSheetList(), "Matches")
	})
}

func seedRecords(repo *storage.MockRepository) {
	_ = repo.PutMany(context.Background(), []exceptions.Record{
		{ID: "DB-a", Invoice: "INV-100", Amount: decimal.RequireFromString("60.5"), VendorName: "Widgets Ltd", Entity: "ACME Iberia", Status: exceptions.StatusIncomplete, AddedAt: testNow.Add(-2 * time.Hour)},
		{ID: "DB-b", Invoice: "CN-7", Amount: decimal.RequireFromString("1200"), VendorName: "Gadgets SA", Entity: "ACME France", Status: exceptions.StatusComplete, AddedAt: testNow.Add(-time.Hour)},
	})
}

func TestServer_Records(t *testing.T) {
	t.Run("list newest first", func(t *testing.T) {
		server, repo := newTestServer(t)
		seedRecords(repo)

		rec := serve(server, httptest.NewRequest(http.MethodGet, "/api/records", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.RecordListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Equal(t, 2, resp.Count)
		assert.Equal(t, "DB-b", resp.Records[0].ID)
		assert.Equal(t, "DB-a", resp.Records[1].ID)
	})

	t.Run("list filters", func(t *testing.T) {
		server, repo := newTestServer(t)
		seedRecords(repo)

		tests := []struct {
			query string
			want  []string
		}{
			{"status=incomplete", []string{"DB-a"}},
			{"status=Complete", []string{"DB-b"}},
			{"search=inv", []string{"DB-a"}},
			{"search=1200", []string{"DB-b"}},
			{"entity=acme*", []string{"DB-b", "DB-a"}},
			{"vendor=*ltd", []string{"DB-a"}},
			{"vendor=nobody", []string{}},
		}

		for _, tt := range tests {
			t.Run(tt.query, func(t *testing.T) {
				rec := serve(server, httptest.NewRequest(http.MethodGet, "/api/records?"+tt.query, nil))

				require.Equal(t, http.StatusOK, rec.Code)
				var resp dto.RecordListResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				ids := []string{}
				for _, r := range resp.Records {
					ids = append(ids, r.ID)
				}
				assert.Equal(t, tt.want, ids)
			})
		}
	})

	t.Run("list rejects unknown status", func(t *testing.T) {
		server, _ := newTestServer(t)

		rec := serve(server, httptest.NewRequest(http.MethodGet, "/api/records?status=archived", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create fills defaults", func(t *testing.T) {
		server, repo := newTestServer(t)

		rec := serve(server, jsonRequest(http.MethodPost, "/api/records",
			`{"records": [{"invoice": "INV-9", "amount": "12.50", "vendorName": "V", "entity": "E"}]}`))

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.Len(t, repo.LastPut, 1)
		stored := repo.LastPut[0]
		assert.Equal(t, "DB-rec-1", stored.ID)
		assert.Equal(t, exceptions.StatusIncomplete, stored.Status)
		assert.Equal(t, testNow, stored.AddedAt)
		assert.True(t, decimal.RequireFromString("12.5").Equal(stored.Amount))
	})

	t.Run("create rejects unknown status", func(t *testing.T) {
		server, repo := newTestServer(t)

		rec := serve(server, jsonRequest(http.MethodPost, "/api/records", `{"records": [{"invoice": "X", "status": "lost"}]}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, repo.PutManyCalled)
	})

	t.Run("patch status and comments", func(t *testing.T) {
		server, repo := newTestServer(t)
		seedRecords(repo)

		rec := serve(server, jsonRequest(http.MethodPatch, "/api/records/DB-a", `{"status": "Complete", "comments": "paid twice"}`))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got exceptions.Record
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, exceptions.StatusComplete, got.Status)
		assert.Equal(t, "paid twice", got.Comments)
		assert.Equal(t, "INV-100", got.Invoice)
	})

	t.Run("patch errors", func(t *testing.T) {
		server, repo := newTestServer(t)
		seedRecords(repo)

		rec := serve(server, jsonRequest(http.MethodPatch, "/api/records/missing", `{"comments": "x"}`))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = serve(server, jsonRequest(http.MethodPatch, "/api/records/DB-a", `{}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = serve(server, jsonRequest(http.MethodPatch, "/api/records/DB-a", `{"status": "done"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete one", func(t *testing.T) {
		server, repo := newTestServer(t)
		seedRecords(repo)

		rec := serve(server, httptest.NewRequest(http.MethodDelete, "/api/records/DB-a", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, 1, repo.Len())

		rec = serve(server, httptest.NewRequest(http.MethodDelete, "/api/records/DB-a", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("clear", func(t *testing.T) {
		server, repo := newTestServer(t)
		seedRecords(repo)

		rec := serve(server, httptest.NewRequest(http.MethodDelete, "/api/records", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, repo.ClearCalled)
		assert.Equal(t, 0, repo.Len())
	})

	t.Run("store errors return 500", func(t *testing.T) {
		server, repo := newTestServer(t)
		repo.GetAllErr = assert.AnError

		rec := serve(server, httptest.NewRequest(http.MethodGet, "/api/records", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var apiErr dto.APIError
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
		assert.Equal(t, dto.ErrCodeInternalError, apiErr.Code)
	})
}

func TestServer_WithoutStore(t *testing.T) {
	t.Run("records routes are unavailable", func(t *testing.T) {
		server := api.NewServer(api.DefaultConfig(), api.Deps{}, logging.Discard())

		rec := serve(server, httptest.NewRequest(http.MethodGet, "/api/records", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("push is unavailable", func(t *testing.T) {
		// Arrange
		logger := logging.Discard()
		engine, err := reconciler.New(reconciler.Options{IDs: identity.NewSequence("id")})
		require.NoError(t, err)
		svc := service.NewReconcileService(engine, nil, nil, nil, logger)
		server := api.NewServer(api.DefaultConfig(), api.Deps{Service: svc}, logger)

		// Act
		rec := serve(server, jsonRequest(http.MethodPost, "/api/reconcile?push=true", reconcileBody))

		// Assert
		require.Equal(t, http.StatusServiceUnavailable, rec.Code, rec.Body.String())
		var apiErr dto.APIError
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
		assert.Equal(t, dto.ErrCodeUnavailable, apiErr.Code)
		assert.Equal(t, "exception store is not configured", apiErr.Message)
	})

	t.Run("reconcile without push still works", func(t *testing.T) {
		logger := logging.Discard()
		engine, err := reconciler.New(reconciler.Options{IDs: identity.NewSequence("id")})
		require.NoError(t, err)
		svc := service.NewReconcileService(engine, nil, nil, nil, logger)
		server := api.NewServer(api.DefaultConfig(), api.Deps{Service: svc}, logger)

		rec := serve(server, jsonRequest(http.MethodPost, "/api/reconcile", reconcileBody))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
