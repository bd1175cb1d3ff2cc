package pipeline

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/huynhduongtien171003/amis-demo/internal/assemble"
	"github.com/huynhduongtien171003/amis-demo/internal/entity"
	"github.com/huynhduongtien171003/amis-demo/internal/extract"
	"github.com/huynhduongtien171003/amis-demo/internal/normalize"
	"github.com/huynhduongtien171003/amis-demo/internal/reconcile"
)

// Engine is the normalization & reconciliation pipeline: raw model text in,
// typed aggregate out. It is pure and stateless — no I/O, no shared mutable
// state — so one Engine value may serve any number of goroutines.
type Engine struct {
	logger  *slog.Logger
	invoice normalize.Schema
	order   normalize.Schema
}

// Option tweaks Engine construction.
type Option func(*Engine)

// WithInvoiceTolerance overrides the invoice reconciliation tolerance.
func WithInvoiceTolerance(tol decimal.Decimal) Option {
	return func(e *Engine) { e.invoice.Tolerance = tol }
}

// WithOrderTolerance overrides the order reconciliation tolerance.
func WithOrderTolerance(tol decimal.Decimal) Option {
	return func(e *Engine) { e.order.Tolerance = tol }
}

func NewEngine(logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		logger:  logger,
		invoice: normalize.InvoiceSchema(),
		order:   normalize.OrderSchema(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessInvoiceText runs the full pass over raw model output. The only
// fatal outcome is extraction failure (common.ErrNoPayload); every later
// anomaly degrades into review notes on the aggregate.
func (e *Engine) ProcessInvoiceText(raw string, elapsed time.Duration) (*entity.Invoice, error) {
	payload, err := extract.Payload(raw)
	if err != nil {
		e.logger.Warn("pipeline.invoice.extract_failed", "raw_bytes", len(raw))
		return nil, err
	}
	return e.ProcessInvoiceMap(payload, elapsed), nil
}

// ProcessInvoiceMap runs normalization onward for callers that already hold
// a parsed field map (e.g. a manually edited record being re-validated).
func (e *Engine) ProcessInvoiceMap(payload map[string]any, elapsed time.Duration) *entity.Invoice {
	start := time.Now()
	fields, warnings := e.invoice.Apply(payload)
	rep := reconcile.NewEngine(e.invoice.Tolerance, e.logger).Run(e.invoice, fields)
	inv := assemble.Invoice(fields, rep, warnings, elapsed, e.logger)

	e.logger.Info("pipeline.invoice.ok",
		"field_warnings", len(warnings),
		"reconcile_warnings", len(rep.Warnings),
		"needs_review", inv.NeedsReview,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return inv
}

// ProcessOrderText is the order-kind twin of ProcessInvoiceText.
func (e *Engine) ProcessOrderText(raw string, elapsed time.Duration) (*entity.Order, error) {
	payload, err := extract.Payload(raw)
	if err != nil {
		e.logger.Warn("pipeline.order.extract_failed", "raw_bytes", len(raw))
		return nil, err
	}
	return e.ProcessOrderMap(payload, elapsed), nil
}

// ProcessOrderMap runs normalization onward on a parsed order field map.
func (e *Engine) ProcessOrderMap(payload map[string]any, elapsed time.Duration) *entity.Order {
	start := time.Now()
	fields, warnings := e.order.Apply(payload)
	rep := reconcile.NewEngine(e.order.Tolerance, e.logger).Run(e.order, fields)
	ord := assemble.Order(fields, rep, warnings, elapsed, e.logger)

	e.logger.Info("pipeline.order.ok",
		"field_warnings", len(warnings),
		"reconcile_warnings", len(rep.Warnings),
		"needs_review", ord.NeedsReview,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return ord
}
