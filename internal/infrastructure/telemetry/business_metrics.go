// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks landed-cost vouchers, payable payments and settlements.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	voucherCreatedTotal      *Counter
	payablePaidTotal         *Counter
	payablePaidAmountFils    *Counter
	settlementCreatedTotal   *Counter
	settlementFinalizedTotal *Counter
	settlementSkippedTotal   *Counter
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	counters := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&bm.voucherCreatedTotal, "lcs_voucher_created_total", "Total number of landed cost vouchers created", "{vouchers}"},
		{&bm.payablePaidTotal, "lcs_payable_paid_total", "Total number of voucher payables paid", "{payables}"},
		{&bm.payablePaidAmountFils, "lcs_payable_paid_amount_total", "Total amount paid on voucher payables in fils", "{fils}"},
		{&bm.settlementCreatedTotal, "lcs_settlement_created_total", "Total number of settlements created", "{settlements}"},
		{&bm.settlementFinalizedTotal, "lcs_settlement_finalized_total", "Total number of settlements finalized", "{settlements}"},
		{&bm.settlementSkippedTotal, "lcs_settlement_skipped_voucher_total", "Vouchers skipped while finalizing settlements", "{vouchers}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	return bm, nil
}

// RecordVoucherCreated records a voucher creation.
func (bm *BusinessMetrics) RecordVoucherCreated(ctx context.Context) {
	bm.voucherCreatedTotal.Inc(ctx)
}

// RecordPayablePaid records one paid payable and its amount.
// The amount is converted to fils (1/1000 KWD).
func (bm *BusinessMetrics) RecordPayablePaid(ctx context.Context, category string, amountKwd decimal.Decimal) {
	bm.payablePaidTotal.Inc(ctx, AttrPayableCategory.String(category))
	fils := amountKwd.Mul(decimal.NewFromInt(1000)).Round(0).IntPart()
	bm.payablePaidAmountFils.Add(ctx, fils, AttrPayableCategory.String(category))
}

// RecordSettlementCreated records a settlement creation.
func (bm *BusinessMetrics) RecordSettlementCreated(ctx context.Context, category string) {
	bm.settlementCreatedTotal.Inc(ctx, AttrPayableCategory.String(category))
}

// RecordSettlementFinalized records a finalize and how many vouchers it skipped.
func (bm *BusinessMetrics) RecordSettlementFinalized(ctx context.Context, category string, skipped int) {
	bm.settlementFinalizedTotal.Inc(ctx, AttrPayableCategory.String(category))
	if skipped > 0 {
		bm.settlementSkippedTotal.Add(ctx, int64(skipped), AttrPayableCategory.String(category))
	}
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
