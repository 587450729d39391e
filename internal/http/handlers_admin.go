package http

import (
	"context"
	"errors"
	"net/http"

	"coachpay/internal/core"
	applog "coachpay/internal/log"

	"github.com/shopspring/decimal"
)

type recordRow struct {
	core.TrainingRecord
	Pay decimal.Decimal
}

type adminData struct {
	Access  AccessLevel
	Info    string
	Records []recordRow
	Months  []core.Month
}

type paymentsData struct {
	Month core.Month
	Info  string
	Rows  []core.PaymentSummary
	Total decimal.Decimal
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := adminData{Access: AccessAdmin}

	records, err := s.records.List(ctx)
	switch {
	case errors.Is(err, core.ErrNotFound):
		data.Info = msgNoRecords
	case err != nil:
		applog.FromContext(ctx).Error("Failed to read records",
			applog.FieldOperation, applog.OpList,
			applog.FieldError, err)
		InternalServerError(msgReadError).Write(w)
		return
	default:
		for _, rec := range records {
			data.Records = append(data.Records, recordRow{TrainingRecord: rec, Pay: core.RecordPay(rec)})
		}
		data.Months = core.AvailableMonths(records)
		if len(data.Months) == 0 {
			data.Info = msgNoMonths
		}
	}
	s.render(w, r, http.StatusOK, "admin", data)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.records.Clear(ctx); err != nil {
		applog.FromContext(ctx).Error("Failed to clear records",
			applog.FieldOperation, applog.OpClear,
			applog.FieldError, err)
		InternalServerError(msgClearError).Write(w)
		return
	}
	applog.FromContext(ctx).Warn("Records cleared",
		applog.FieldOperation, applog.OpClear,
		applog.FieldClientIP, s.clientIP.ClientIP(r))

	if r.Header.Get("HX-Request") == "" {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	NewHTMXResponse().
		TriggerRecordsCleared().
		BodyHTML(`<div class="success" role="status">` + msgCleared + `</div>`).
		Write(w)
}

// computePayments runs the payment service and maps the informational
// outcomes to their messages. A non-nil error is unexpected.
func (s *Server) computePayments(ctx context.Context, month core.Month) (paymentsData, error) {
	data := paymentsData{Month: month}
	rows, err := s.payments.Compute(ctx, month)
	switch {
	case errors.Is(err, core.ErrNotFound):
		data.Info = msgNoRecords
	case errors.Is(err, core.ErrEmptyResult):
		data.Info = msgNoMonthRecords
	case err != nil:
		return data, err
	default:
		data.Rows = rows
		data.Total = core.GrandTotal(rows)
		applog.NewStructuredLogger(applog.FromContext(ctx)).
			LogPayments(ctx, month.String(), len(rows), data.Total.StringFixed(2))
	}
	return data, nil
}

func (s *Server) handlePayments(w http.ResponseWriter, r *http.Request) {
	month, ok := ParseMonthParam(r.URL.Query())
	if !ok {
		MessageResponse(http.StatusOK, MessageWarning, msgBadMonth).Write(w)
		return
	}
	data, err := s.computePayments(r.Context(), month)
	if err != nil {
		applog.FromContext(r.Context()).Error("Failed to compute payments",
			applog.FieldOperation, applog.OpCompute,
			applog.FieldMonth, month.String(),
			applog.FieldError, err)
		InternalServerError(msgReadError).Write(w)
		return
	}
	s.render(w, r, http.StatusOK, "payments", data)
}
