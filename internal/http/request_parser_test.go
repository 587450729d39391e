package http

import (
	"errors"
	"net/url"
	"testing"

	"coachpay/internal/core"
)

func TestParseBlockCount(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"", 1},
		{"abc", 1},
		{"0", 1},
		{"3", 3},
		{"500", MaxBlocks},
	}
	for _, tt := range tests {
		got := ParseBlockCount(url.Values{"blocks": {tt.value}})
		if got != tt.want {
			t.Errorf("ParseBlockCount(%q) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestParseSubmission(t *testing.T) {
	form := url.Values{
		"first_name": {"  José\x01 "},
		"last_name":  {"Muñoz"},
		"blocks":     {"2"},
		"category_0": {"escuela"},
		"role_0":     {"Principal"},
		"month_0":    {"Marzo"},
		"days_0":     {"4"},
		"home_0":     {"1"},
		"away_0":     {""},
		"category_1": {"junior masculino"},
		"role_1":     {"Ayudante"},
		"month_1":    {"3"},
		"dates_1":    {"14, 3 3"},
	}

	sub, err := ParseSubmission(form, nil)
	if err != nil {
		t.Fatalf("ParseSubmission() error = %v", err)
	}
	if sub.FirstName != "José" || sub.LastName != "Muñoz" {
		t.Fatalf("names not sanitized: %q %q", sub.FirstName, sub.LastName)
	}
	if len(sub.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(sub.Blocks))
	}
	b0 := sub.Blocks[0]
	if b0.Month != core.Marzo || b0.Days.Units() != 4 || b0.HomeGames != 1 || b0.AwayGames != 0 {
		t.Fatalf("unexpected first block: %+v", b0)
	}
	b1 := sub.Blocks[1]
	if b1.Month != core.Marzo || b1.Days.Units() != 2 || len(b1.Days.Dates) != 3 {
		t.Fatalf("unexpected second block: %+v", b1)
	}
}

func TestParseSubmissionUsesSessionSelection(t *testing.T) {
	sess := newSession()
	sess.Selection(0, core.Enero).Toggle(5)
	sess.Selection(0, core.Enero).Toggle(2)
	sess.Selection(0, core.Febrero).Toggle(9)

	form := url.Values{
		"first_name": {"Ana"},
		"last_name":  {"Lopez"},
		"category_0": {"escuela"},
		"role_0":     {"Principal"},
		"month_0":    {"Enero"},
		"days_0":     {"9"},
	}
	sub, err := ParseSubmission(form, sess)
	if err != nil {
		t.Fatalf("ParseSubmission() error = %v", err)
	}
	days := sub.Blocks[0].Days
	if days.Units() != 2 || days.Dates[0] != 2 || days.Dates[1] != 5 {
		t.Fatalf("calendar selection should win over the count, got %+v", days)
	}

	form.Set("month_0", "Marzo")
	sub, err = ParseSubmission(form, sess)
	if err != nil {
		t.Fatalf("ParseSubmission() error = %v", err)
	}
	if d := sub.Blocks[0].Days; d.Units() != 9 || len(d.Dates) != 0 {
		t.Fatalf("days picked under another month must not be used, got %+v", d)
	}
	form.Set("month_0", "Enero")

	form.Set("dates_0", "7")
	sub, err = ParseSubmission(form, sess)
	if err != nil {
		t.Fatalf("ParseSubmission() error = %v", err)
	}
	if sub.Blocks[0].Days.Units() != 1 {
		t.Fatalf("explicit dates should win over the selection, got %+v", sub.Blocks[0].Days)
	}
}

func TestParseSubmissionRejectsMalformedNumbers(t *testing.T) {
	base := func() url.Values {
		return url.Values{
			"first_name": {"Ana"},
			"last_name":  {"Lopez"},
			"category_0": {"escuela"},
			"role_0":     {"Principal"},
			"month_0":    {"Enero"},
			"days_0":     {"2"},
		}
	}
	tests := []struct {
		name  string
		key   string
		value string
		field string
	}{
		{"days not a number", "days_0", "two", "units"},
		{"home games not a number", "home_0", "1.5", "games"},
		{"away games not a number", "away_0", "x", "games"},
		{"unknown month", "month_0", "Brumario", "month"},
		{"bad date", "dates_0", "3,x", "days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := base()
			form.Set(tt.key, tt.value)
			_, err := ParseSubmission(form, nil)
			var ve *core.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field || ve.Block != 1 {
				t.Fatalf("expected validation error on %q, got %v", tt.field, err)
			}
			if !errors.Is(err, core.ErrValidation) {
				t.Fatalf("error should match core.ErrValidation")
			}
		})
	}
}

func TestParseMonthParam(t *testing.T) {
	if m, ok := ParseMonthParam(url.Values{"month": {"septiembre"}}); !ok || m != core.Septiembre {
		t.Fatalf("ParseMonthParam(septiembre) = %v, %v", m, ok)
	}
	if _, ok := ParseMonthParam(url.Values{}); ok {
		t.Fatal("missing month should not parse")
	}
	if _, ok := ParseMonthParam(url.Values{"month": {"13"}}); ok {
		t.Fatal("month 13 should not parse")
	}
}
