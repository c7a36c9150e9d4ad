package main

import (
	"log/slog"

	"github.com/billfox/telco-invoices/internal/domain/invoice/handler"
	"github.com/billfox/telco-invoices/internal/domain/invoice/service"
	"github.com/billfox/telco-invoices/pkg/config"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	// Services
	InvoiceService *service.InvoiceService

	// Handlers
	InvoiceHandler *handler.InvoiceHandler
}

// NewDependencies wires the application graph.
func NewDependencies(cfg *config.Config, logger *slog.Logger) *Dependencies {
	invoiceSvc := service.NewInvoiceService(logger, cfg.Parser.KnownCountries)
	invoiceHandler := handler.NewInvoiceHandler(invoiceSvc, logger, cfg.Upload.MaxBytes)

	return &Dependencies{
		Config:         cfg,
		Logger:         logger,
		InvoiceService: invoiceSvc,
		InvoiceHandler: invoiceHandler,
	}
}
