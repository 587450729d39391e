package services

import (
	"context"
	"fmt"

	"coachpay/internal/core"
	"coachpay/internal/metrics"
	"coachpay/internal/sheets"
)

// PaymentService computes monthly payments from the stored records.
type PaymentService struct {
	reader  sheets.RecordReader
	metrics *metrics.Manager
}

func NewPaymentService(reader sheets.RecordReader, m *metrics.Manager) *PaymentService {
	return &PaymentService{reader: reader, metrics: m}
}

// Compute returns one row per coach active in month. core.ErrNotFound is
// returned unwrapped when nothing was ever stored, core.ErrEmptyResult when
// the month has no records.
func (s *PaymentService) Compute(ctx context.Context, month core.Month) ([]core.PaymentSummary, error) {
	if !month.IsValid() {
		return nil, &core.ValidationError{Field: "month", Msg: "invalid month"}
	}
	records, err := s.reader.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	rows := core.ComputePayments(records, month)
	s.metrics.RecordPaymentRun(month.String(), len(rows))
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", month, core.ErrEmptyResult)
	}
	return rows, nil
}

// Months lists the months that have at least one record.
func (s *PaymentService) Months(ctx context.Context) ([]core.Month, error) {
	records, err := s.reader.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return core.AvailableMonths(records), nil
}
