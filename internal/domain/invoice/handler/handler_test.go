package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billfox/telco-invoices/internal/domain/invoice/parser"
	"github.com/billfox/telco-invoices/internal/domain/invoice/service"
)

type stubExtractor struct {
	result *service.ExtractResult
	err    error
	got    []byte
	mode   service.Mode
}

func (s *stubExtractor) Extract(_ context.Context, data []byte, mode service.Mode) (*service.ExtractResult, error) {
	s.got = data
	s.mode = mode
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func f64(v float64) *float64 { return &v }

func chargesResult() *service.ExtractResult {
	return &service.ExtractResult{
		JobID:    uuid.New(),
		Provider: "Telstra",
		Mode:     service.ModeCharges,
		Pages:    3,
		Charges: []parser.ChargeRow{
			{
				MobileNumber: "0400936296",
				PlanName:     "Business Mobile Plan Basic",
				SpendExclGST: f64(54.55),
				SpendInclGST: f64(60),
			},
		},
	}
}

func newTestHandler(stub *stubExtractor, maxBytes int64) http.Handler {
	h := NewInvoiceHandler(stub, slog.New(slog.NewTextHandler(io.Discard, nil)), maxBytes)
	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestExtract_JSON(t *testing.T) {
	stub := &stubExtractor{result: chargesResult()}
	mux := newTestHandler(stub, 1<<20)

	body, contentType := multipartBody(t, "file", "invoice.pdf", []byte("%PDF-1.4 fake"))
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices/extract", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, []byte("%PDF-1.4 fake"), stub.got)
	assert.Equal(t, service.ModeCharges, stub.mode)

	var got service.ExtractResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Charges, 1)
	assert.Equal(t, "0400936296", got.Charges[0].MobileNumber)
}

func TestExtract_ModeParam(t *testing.T) {
	stub := &stubExtractor{result: &service.ExtractResult{
		JobID:     uuid.New(),
		Provider:  "Telstra",
		Mode:      service.ModeSummary,
		Summaries: []parser.SummaryRow{{MobileNumber: "0400936296"}},
	}}
	mux := newTestHandler(stub, 1<<20)

	body, contentType := multipartBody(t, "file", "invoice.pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices/extract?mode=summary", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.ModeSummary, stub.mode)
}

func TestExtract_BadMode(t *testing.T) {
	mux := newTestHandler(&stubExtractor{result: chargesResult()}, 1<<20)

	body, contentType := multipartBody(t, "file", "invoice.pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices/extract?mode=detailed", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtract_BadFormat(t *testing.T) {
	mux := newTestHandler(&stubExtractor{result: chargesResult()}, 1<<20)

	body, contentType := multipartBody(t, "file", "invoice.pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices/extract?format=pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported format")
}

func TestExtract_MissingFilePart(t *testing.T) {
	mux := newTestHandler(&stubExtractor{result: chargesResult()}, 1<<20)

	body, contentType := multipartBody(t, "attachment", "invoice.pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices/extract", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"file"`)
}

func TestExtract_OversizedUpload(t *testing.T) {
	mux := newTestHandler(&stubExtractor{result: chargesResult()}, 256)

	body, contentType := multipartBody(t, "file", "invoice.pdf", bytes.Repeat([]byte("x"), 4096))
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices/extract", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "limit")
}

func TestExtract_UnreadablePDF(t *testing.T) {
	stub := &stubExtractor{err: service.ErrUnreadableDocument}
	mux := newTestHandler(stub, 1<<20)

	body, contentType := multipartBody(t, "file", "invoice.pdf", []byte("not a pdf"))
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices/extract", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestExtract_InternalError(t *testing.T) {
	stub := &stubExtractor{err: errors.New("boom")}
	mux := newTestHandler(stub, 1<<20)

	body, contentType := multipartBody(t, "file", "invoice.pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices/extract", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// Internal detail stays out of the response body.
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestExtract_CSVDownload(t *testing.T) {
	stub := &stubExtractor{result: chargesResult()}
	mux := newTestHandler(stub, 1<<20)

	body, contentType := multipartBody(t, "file", "invoice.pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices/extract?format=csv", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Mobile Number,Plan Name"))
	assert.Contains(t, rec.Body.String(), "0400936296")
}

func TestExtract_XLSXDownload(t *testing.T) {
	stub := &stubExtractor{result: chargesResult()}
	mux := newTestHandler(stub, 1<<20)

	body, contentType := multipartBody(t, "file", "invoice.pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices/extract?format=xlsx", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	// XLSX files are zip archives.
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestExtract_MethodNotAllowed(t *testing.T) {
	mux := newTestHandler(&stubExtractor{result: chargesResult()}, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/v1/invoices/extract", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
