// Package handler exposes invoice extraction over HTTP: multipart upload in,
// JSON, CSV, or XLSX out.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/billfox/telco-invoices/internal/domain/invoice/export"
	"github.com/billfox/telco-invoices/internal/domain/invoice/service"
)

var (
	extractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoice_extractions_total",
		Help: "Completed extractions by provider and mode.",
	}, []string{"provider", "mode"})

	extractionErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoice_extraction_errors_total",
		Help: "Rejected or failed extraction requests by reason.",
	}, []string{"reason"})

	extractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "invoice_extraction_duration_seconds",
		Help:    "End-to-end extraction request duration.",
		Buckets: prometheus.DefBuckets,
	})
)

// multipartMemory is the in-memory threshold for multipart parsing; larger
// uploads spill to temp files. The upload size cap is enforced separately by
// http.MaxBytesReader.
const multipartMemory = 10 << 20

// Extractor runs one extraction over an uploaded document.
type Extractor interface {
	Extract(ctx context.Context, data []byte, mode service.Mode) (*service.ExtractResult, error)
}

// InvoiceHandler handles the invoice extraction endpoints.
type InvoiceHandler struct {
	svc      Extractor
	logger   *slog.Logger
	maxBytes int64
}

// NewInvoiceHandler creates a new invoice handler. maxBytes caps the upload
// size; anything larger is rejected before extraction starts.
func NewInvoiceHandler(svc Extractor, logger *slog.Logger, maxBytes int64) *InvoiceHandler {
	return &InvoiceHandler{
		svc:      svc,
		logger:   logger,
		maxBytes: maxBytes,
	}
}

// Register mounts the handler's routes on the mux.
func (h *InvoiceHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/invoices/extract", h.Extract)
}

type errorResponse struct {
	Error string `json:"error"`
}

// Extract handles POST /v1/invoices/extract. The invoice PDF arrives as the
// "file" part of a multipart form; mode and format come from query params.
func (h *InvoiceHandler) Extract(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	defer func() { extractionDuration.Observe(time.Since(started).Seconds()) }()

	mode, err := service.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		h.reject(w, http.StatusBadRequest, "bad_mode", err.Error())
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	switch format {
	case "json", "csv", "xlsx":
	default:
		h.reject(w, http.StatusBadRequest, "bad_format", fmt.Sprintf("unsupported format %q", format))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.reject(w, http.StatusBadRequest, "too_large",
				fmt.Sprintf("upload exceeds the %d byte limit", h.maxBytes))
			return
		}
		h.reject(w, http.StatusBadRequest, "bad_multipart", "request is not a valid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.reject(w, http.StatusBadRequest, "missing_file", `multipart form must carry a "file" part`)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.reject(w, http.StatusBadRequest, "unreadable_upload", "could not read uploaded file")
		return
	}

	result, err := h.svc.Extract(r.Context(), data, mode)
	if err != nil {
		if errors.Is(err, service.ErrUnreadableDocument) {
			h.logger.Warn("rejected unreadable document", slog.Any("error", err))
			h.reject(w, http.StatusUnprocessableEntity, "unreadable_pdf", "uploaded file could not be read as a PDF")
			return
		}
		h.logger.Error("extraction failed", slog.Any("error", err))
		h.reject(w, http.StatusInternalServerError, "internal", "extraction failed")
		return
	}

	extractionsTotal.WithLabelValues(string(result.Provider), string(result.Mode)).Inc()

	switch format {
	case "json":
		h.writeJSON(w, http.StatusOK, result)
	case "csv":
		h.writeCSV(w, result)
	case "xlsx":
		h.writeXLSX(w, result)
	}
}

func (h *InvoiceHandler) writeCSV(w http.ResponseWriter, result *service.ExtractResult) {
	var (
		out []byte
		err error
	)
	if result.Mode == service.ModeSummary {
		out, err = export.SummariesCSV(result.Summaries)
	} else {
		out, err = export.ChargesCSV(result.Charges)
	}
	if err != nil {
		h.logger.Error("csv export failed", slog.Any("error", err))
		h.reject(w, http.StatusInternalServerError, "internal", "export failed")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="extraction-%s.csv"`, result.JobID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (h *InvoiceHandler) writeXLSX(w http.ResponseWriter, result *service.ExtractResult) {
	var (
		out []byte
		err error
	)
	if result.Mode == service.ModeSummary {
		out, err = export.SummariesXLSX(result.Summaries)
	} else {
		out, err = export.ChargesXLSX(result.Charges)
	}
	if err != nil {
		h.logger.Error("xlsx export failed", slog.Any("error", err))
		h.reject(w, http.StatusInternalServerError, "internal", "export failed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="extraction-%s.xlsx"`, result.JobID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (h *InvoiceHandler) reject(w http.ResponseWriter, status int, reason, msg string) {
	extractionErrorsTotal.WithLabelValues(reason).Inc()
	h.writeJSON(w, status, errorResponse{Error: msg})
}

func (h *InvoiceHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}
