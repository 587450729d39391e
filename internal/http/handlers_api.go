package http

import (
	"errors"
	"net/http"
	"time"

	"coachpay/internal/core"
	applog "coachpay/internal/log"
)

type apiRecord struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Category  string    `json:"category"`
	Role      string    `json:"role"`
	Month     string    `json:"month"`
	Units     int       `json:"units"`
	HomeGames int       `json:"home_games"`
	AwayGames int       `json:"away_games"`
	Days      []int     `json:"days,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type apiPayment struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Units     int    `json:"units"`
	HomeGames int    `json:"home_games"`
	AwayGames int    `json:"away_games"`
	Total     string `json:"total"`
}

func (s *Server) handleAPIRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.records.List(r.Context())
	if errors.Is(err, core.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"records": []apiRecord{}})
		return
	}
	if err != nil {
		applog.FromContext(r.Context()).Error("Failed to read records", applog.FieldOperation, applog.OpList, applog.FieldError, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to read records")
		return
	}
	out := make([]apiRecord, len(records))
	for i, rec := range records {
		out[i] = apiRecord{
			ID:        rec.ID,
			FirstName: rec.FirstName,
			LastName:  rec.LastName,
			Category:  rec.Category.String(),
			Role:      rec.Role.String(),
			Month:     rec.Month.String(),
			Units:     rec.Units,
			HomeGames: rec.HomeGames,
			AwayGames: rec.AwayGames,
			Days:      rec.Days,
			CreatedAt: rec.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"records": out})
}

// handleAPIPayments answers 200 with an empty list for a month without
// records; only a missing or unknown month is a client error.
func (s *Server) handleAPIPayments(w http.ResponseWriter, r *http.Request) {
	month, ok := ParseMonthParam(r.URL.Query())
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "month must be a Spanish month name or 1-12")
		return
	}
	data, err := s.computePayments(r.Context(), month)
	if err != nil {
		applog.FromContext(r.Context()).Error("Failed to compute payments", applog.FieldOperation, applog.OpCompute, applog.FieldError, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to compute payments")
		return
	}
	rows := make([]apiPayment, len(data.Rows))
	for i, p := range data.Rows {
		rows[i] = apiPayment{
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Units:     p.Units,
			HomeGames: p.HomeGames,
			AwayGames: p.AwayGames,
			Total:     p.Total.StringFixed(2),
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"month":    month.String(),
		"payments": rows,
		"total":    core.GrandTotal(data.Rows).StringFixed(2),
	})
}

func (s *Server) handleAPIMonths(w http.ResponseWriter, r *http.Request) {
	months, err := s.payments.Months(r.Context())
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		applog.FromContext(r.Context()).Error("Failed to list months", applog.FieldOperation, applog.OpList, applog.FieldError, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to list months")
		return
	}
	names := make([]string, len(months))
	for i, m := range months {
		names[i] = m.String()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"months": names})
}
