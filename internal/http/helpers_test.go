package http

import (
	"errors"
	"testing"

	"coachpay/internal/core"

	"github.com/shopspring/decimal"
)

func TestFormatEuros(t *testing.T) {
	tests := []struct {
		in   decimal.Decimal
		want string
	}{
		{decimal.NewFromInt(0), "0,00 €"},
		{decimal.NewFromInt(178), "178,00 €"},
		{decimal.RequireFromString("1234.5"), "1.234,50 €"},
		{decimal.RequireFromString("1234567.891"), "1.234.567,89 €"},
		{decimal.NewFromInt(-26), "-26,00 €"},
	}
	for _, tt := range tests {
		if got := formatEuros(tt.in); got != tt.want {
			t.Errorf("formatEuros(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidationMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{core.ErrEmptyFirstName, msgMissingName},
		{core.ErrNoBlocks, msgMissingDays},
		{&core.ValidationError{Field: "units", Block: 2}, "Categoría #2: debes introducir al menos un día entrenado."},
		{&core.ValidationError{Field: "days", Block: 1}, "Categoría #1: hay días que no existen en ese mes."},
		{errors.New("boom"), msgBadRequest},
	}
	for _, tt := range tests {
		if got := validationMessage(tt.err); got != tt.want {
			t.Errorf("validationMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestGateCheck(t *testing.T) {
	g := NewGate("cbcentrenador", "cbcadmin")
	tests := []struct {
		phrase string
		want   AccessLevel
	}{
		{"cbcentrenador", AccessOperator},
		{"cbcadmin", AccessAdmin},
		{"", AccessNone},
		{"CBCADMIN", AccessNone},
	}
	for _, tt := range tests {
		if got := g.Check(tt.phrase); got != tt.want {
			t.Errorf("Check(%q) = %v, want %v", tt.phrase, got, tt.want)
		}
	}
	if !AccessAdmin.IsOperator() || AccessOperator.IsAdmin() {
		t.Fatal("admin must imply operator, not the reverse")
	}
}
