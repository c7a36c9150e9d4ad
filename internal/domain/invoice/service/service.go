// Package service orchestrates invoice extraction: page extraction, carrier
// detection, per-carrier parsing, and final ordering of the result table.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/billfox/telco-invoices/internal/domain/invoice/parser"
	"github.com/billfox/telco-invoices/internal/domain/invoice/sniffer"
	"github.com/billfox/telco-invoices/pkg/money"
	"github.com/billfox/telco-invoices/pkg/pagesource"
)

var (
	// ErrUnreadableDocument marks uploads that could not be opened or read
	// as a PDF at all, as opposed to readable documents that simply yield
	// no rows.
	ErrUnreadableDocument = errors.New("document could not be read")

	ErrInvalidMode = errors.New("invalid extraction mode")
)

// Mode selects which result table an extraction produces.
type Mode string

const (
	// ModeCharges is the simple one-row-per-plan-line charge table.
	ModeCharges Mode = "charges"
	// ModeSummary is the detailed per-service usage and spend table.
	ModeSummary Mode = "summary"
)

// ParseMode validates a raw mode string, defaulting empty to ModeCharges.
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case "":
		return ModeCharges, nil
	case ModeCharges:
		return ModeCharges, nil
	case ModeSummary:
		return ModeSummary, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, raw)
}

// ExtractResult is one completed extraction. Exactly one of Charges or
// Summaries is populated depending on Mode; both may be empty when the
// document matched no rules, which is a valid outcome, not an error.
type ExtractResult struct {
	JobID     uuid.UUID           `json:"job_id"`
	Provider  sniffer.Carrier     `json:"provider"`
	Mode      Mode                `json:"mode"`
	Pages     int                 `json:"pages"`
	Warning   string              `json:"warning,omitempty"`
	Charges   []parser.ChargeRow  `json:"charges,omitempty"`
	Summaries []parser.SummaryRow `json:"summaries,omitempty"`
}

// InvoiceService runs extractions. Stateless apart from configuration, so a
// single instance serves concurrent requests.
type InvoiceService struct {
	logger         *slog.Logger
	knownCountries []string
}

func NewInvoiceService(logger *slog.Logger, knownCountries []string) *InvoiceService {
	return &InvoiceService{
		logger:         logger,
		knownCountries: knownCountries,
	}
}

// Extract reads a PDF document and runs the extraction pipeline on it.
func (s *InvoiceService) Extract(ctx context.Context, data []byte, mode Mode) (*ExtractResult, error) {
	pages, err := pagesource.FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	return s.ExtractPages(ctx, pages, mode)
}

// ExtractPages runs the pipeline on already-extracted pages.
func (s *InvoiceService) ExtractPages(ctx context.Context, pages []pagesource.Page, mode Mode) (*ExtractResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &ExtractResult{
		JobID:    uuid.New(),
		Mode:     mode,
		Pages:    len(pages),
		Provider: sniffer.Detect(pagesource.JoinText(pages)),
	}

	log := s.logger.With(
		slog.String("job_id", result.JobID.String()),
		slog.String("provider", string(result.Provider)),
		slog.String("mode", string(mode)),
		slog.Int("pages", result.Pages),
	)

	switch mode {
	case ModeCharges:
		s.extractCharges(log, pages, result)
	case ModeSummary:
		s.extractSummary(log, pages, result)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	return result, nil
}

func (s *InvoiceService) extractCharges(log *slog.Logger, pages []pagesource.Page, result *ExtractResult) {
	p, ok := parser.ForCarrier(result.Provider)
	if !ok {
		result.Charges = []parser.ChargeRow{}
		result.Warning = "unrecognised carrier template; no rows extracted"
		log.Warn("carrier not recognised")
		return
	}

	result.Charges = parser.FinalizeCharges(p.Parse(pages))
	if len(result.Charges) == 0 {
		// An empty table from a recognized carrier usually means the
		// invoice layout changed; surface it instead of a silent success.
		result.Warning = "no subscriber charges matched; the invoice layout may have changed"
		log.Warn("extraction produced no rows")
		return
	}
	log.Info("charges extracted",
		slog.Int("rows", len(result.Charges)),
		slog.String("total_incl", chargesTotal(result.Charges).Display()),
	)
}

func (s *InvoiceService) extractSummary(log *slog.Logger, pages []pagesource.Page, result *ExtractResult) {
	// The detailed layout only exists on Telstra enterprise invoices.
	if result.Provider != sniffer.CarrierTelstra {
		result.Summaries = []parser.SummaryRow{}
		result.Warning = "detailed summary is only available for Telstra invoices"
		log.Warn("summary requested for unsupported carrier")
		return
	}

	rows := parser.NewSummaryParser(s.knownCountries).Parse(pages)
	result.Summaries = parser.FinalizeSummaries(rows)
	if len(result.Summaries) == 0 {
		result.Warning = "no subscriber summaries matched; the invoice layout may have changed"
		log.Warn("extraction produced no rows")
		return
	}
	log.Info("summary extracted", slog.Int("rows", len(result.Summaries)))
}

func chargesTotal(rows []parser.ChargeRow) money.Amount {
	var total money.Amount
	for _, row := range rows {
		if row.SpendInclGST == nil {
			continue
		}
		if a, err := money.FromString(fmt.Sprintf("%.2f", *row.SpendInclGST)); err == nil {
			total = total.Add(a)
		}
	}
	return total
}
