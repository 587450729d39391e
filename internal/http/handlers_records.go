package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"coachpay/internal/core"
	applog "coachpay/internal/log"
)

func (s *Server) handleCreateRecords(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError(msgBadRequest).Write(w)
		return
	}
	ctx := r.Context()
	logger := applog.FromContext(ctx)
	sess := sessionFrom(ctx)

	sub, err := ParseSubmission(r.PostForm, sess)
	if err == nil {
		var records []core.TrainingRecord
		records, err = s.records.Submit(ctx, sub)
		if err == nil {
			if sess != nil {
				sess.ResetSelections()
			}
			NewHTMXResponse().
				TriggerRecordsCreated(len(records)).
				TriggerFormReset().
				BodyHTML(`<div class="success" role="status">` + msgSaved + `</div>`).
				Write(w)
			return
		}
	} else {
		s.metrics.RecordRejection()
	}

	if errors.Is(err, core.ErrValidation) {
		logger.Info("Submission rejected",
			applog.FieldOperation, applog.OpSubmit,
			applog.FieldError, err)
		UnprocessableEntityWarning(validationMessage(err)).Write(w)
		return
	}
	logger.Error("Failed to store submission",
		applog.FieldOperation, applog.OpSubmit,
		applog.FieldError, err)
	InternalServerError(msgSaveError).Write(w)
}

// handleBlocks renders the requested number of empty category blocks.
func (s *Server) handleBlocks(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.ResetSelections()
	n := ParseBlockCount(r.URL.Query())
	s.render(w, r, http.StatusOK, "blocks", s.newPageData(sess.Access(), n))
}

type calendarDay struct {
	Day      int
	Selected bool
}

type calendarData struct {
	Block    int
	Month    core.Month
	Year     int
	Leading  []struct{}
	Days     []calendarDay
	Selected int
}

// calendar lays out month as a Monday first grid with the block's
// selection marked.
func (s *Server) calendar(sess *Session, block int, month core.Month) calendarData {
	year := s.records.SeasonYear()
	sel := sess.Selection(block, month)
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	leading := (int(first.Weekday()) + 6) % 7

	data := calendarData{
		Block:   block,
		Month:   month,
		Year:    year,
		Leading: make([]struct{}, leading),
	}
	for d := 1; d <= month.DaysIn(year); d++ {
		on := sel.Has(d)
		if on {
			data.Selected++
		}
		data.Days = append(data.Days, calendarDay{Day: d, Selected: on})
	}
	return data
}

func parseBlockParam(v string) (int, error) {
	block, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || block < 0 || block >= MaxBlocks {
		return 0, fmt.Errorf("invalid block %q", v)
	}
	return block, nil
}

func (s *Server) monthOrCurrent(v string) core.Month {
	if m, ok := core.ParseMonth(v); ok {
		return m
	}
	return core.Month(s.now().Month())
}

func (s *Server) handleDays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	block, err := parseBlockParam(q.Get("block"))
	if err != nil {
		BadRequestError(msgBadRequest).Write(w)
		return
	}
	// The block's month select sends its own field name.
	v := q.Get(fieldMonth)
	if v == "" {
		v = q.Get(blockField(fieldMonth, block))
	}
	month := s.monthOrCurrent(v)
	s.render(w, r, http.StatusOK, "calendar", s.calendar(sessionFrom(r.Context()), block, month))
}

func (s *Server) handleToggleDay(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError(msgBadRequest).Write(w)
		return
	}
	block, err := parseBlockParam(r.PostForm.Get("block"))
	if err != nil {
		BadRequestError(msgBadRequest).Write(w)
		return
	}
	month := s.monthOrCurrent(r.PostForm.Get(fieldMonth))
	day, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("day")))
	if err != nil || day < 1 || day > month.DaysIn(s.records.SeasonYear()) {
		BadRequestError(msgBadRequest).Write(w)
		return
	}

	sess := sessionFrom(r.Context())
	sess.Selection(block, month).Toggle(day)
	s.render(w, r, http.StatusOK, "calendar", s.calendar(sess, block, month))
}
