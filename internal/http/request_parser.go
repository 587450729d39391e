// Package http provides HTTP server and handler implementations.
//
// This file turns form posts into core submissions.

package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"coachpay/internal/core"
)

// MaxBlocks bounds how many category blocks one form may carry.
const MaxBlocks = 20

// Form field names. Block fields carry a 0-based "_<n>" suffix.
const (
	fieldFirstName = "first_name"
	fieldLastName  = "last_name"
	fieldBlocks    = "blocks"
	fieldCategory  = "category"
	fieldRole      = "role"
	fieldMonth     = "month"
	fieldDays      = "days"
	fieldDates     = "dates"
	fieldHome      = "home"
	fieldAway      = "away"
)

func blockField(name string, i int) string {
	return name + "_" + strconv.Itoa(i)
}

// ParseBlockCount reads the number of blocks, clamped to [1, MaxBlocks].
// Missing or malformed values mean one block.
func ParseBlockCount(form url.Values) int {
	n, err := strconv.Atoi(strings.TrimSpace(form.Get(fieldBlocks)))
	if err != nil || n < 1 {
		return 1
	}
	if n > MaxBlocks {
		return MaxBlocks
	}
	return n
}

// ParseSubmission builds a submission from the posted form. Days of a block
// come from, in order of preference: an explicit "dates_<n>" list, the
// session's calendar selection for that block and month, the "days_<n>"
// count.
// Malformed numbers are reported as validation errors so the caller can
// answer 422 like any other rejected submission.
func ParseSubmission(form url.Values, sess *Session) (core.Submission, error) {
	sub := core.Submission{
		FirstName: sanitizeInput(form.Get(fieldFirstName)),
		LastName:  sanitizeInput(form.Get(fieldLastName)),
	}

	n := ParseBlockCount(form)
	for i := 0; i < n; i++ {
		block, err := parseBlock(form, i, sess)
		if err != nil {
			return core.Submission{}, err
		}
		sub.Blocks = append(sub.Blocks, block)
	}
	return sub, nil
}

func parseBlock(form url.Values, i int, sess *Session) (core.Block, error) {
	num := i + 1
	b := core.Block{
		Category: core.Category(sanitizeInput(form.Get(blockField(fieldCategory, i)))),
		Role:     core.Role(sanitizeInput(form.Get(blockField(fieldRole, i)))),
	}

	if v := sanitizeInput(form.Get(blockField(fieldMonth, i))); v != "" {
		m, ok := core.ParseMonth(v)
		if !ok {
			return b, &core.ValidationError{Field: "month", Block: num, Msg: fmt.Sprintf("unknown month %q", v)}
		}
		b.Month = m
	}

	var err error
	if b.HomeGames, err = parseCount(form.Get(blockField(fieldHome, i))); err != nil {
		return b, &core.ValidationError{Field: "games", Block: num, Msg: err.Error()}
	}
	if b.AwayGames, err = parseCount(form.Get(blockField(fieldAway, i))); err != nil {
		return b, &core.ValidationError{Field: "games", Block: num, Msg: err.Error()}
	}

	dates, err := parseDayList(form.Get(blockField(fieldDates, i)))
	if err != nil {
		return b, &core.ValidationError{Field: "days", Block: num, Msg: err.Error()}
	}
	switch {
	case len(dates) > 0:
		b.Days = core.PickedDays(dates...)
	case sess != nil && len(sess.Selection(i, b.Month).Days()) > 0:
		b.Days = sess.Selection(i, b.Month).Input()
	default:
		count, err := parseCount(form.Get(blockField(fieldDays, i)))
		if err != nil {
			return b, &core.ValidationError{Field: "units", Block: num, Msg: err.Error()}
		}
		b.Days = core.CountDays(count)
	}
	return b, nil
}

// parseCount reads a whole number. Empty means zero.
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return n, nil
}

// parseDayList reads days of month separated by commas or spaces.
func parseDayList(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	days := make([]int, 0, len(fields))
	for _, f := range fields {
		d, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid day %q", f)
		}
		days = append(days, d)
	}
	return days, nil
}

// ParseMonthParam reads the "month" query parameter. ok is false when it is
// missing or not a month.
func ParseMonthParam(query url.Values) (core.Month, bool) {
	v := strings.TrimSpace(query.Get(fieldMonth))
	if v == "" {
		return 0, false
	}
	return core.ParseMonth(v)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
