package core

import (
	"strconv"
	"strings"
	"time"
)

// Month is the aggregation period. Zero is invalid.
type Month int

const (
	Enero Month = iota + 1
	Febrero
	Marzo
	Abril
	Mayo
	Junio
	Julio
	Agosto
	Septiembre
	Octubre
	Noviembre
	Diciembre
)

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// Months returns the twelve periods in calendar order.
func Months() []Month {
	out := make([]Month, 0, len(monthNames))
	for i := range monthNames {
		out = append(out, Month(i+1))
	}
	return out
}

func (m Month) IsValid() bool { return m >= Enero && m <= Diciembre }

func (m Month) String() string {
	if !m.IsValid() {
		return ""
	}
	return monthNames[m-1]
}

// DaysIn returns the number of days the month has in the given year.
func (m Month) DaysIn(year int) int {
	if !m.IsValid() {
		return 0
	}
	return time.Date(year, time.Month(m)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseMonth accepts a Spanish month name (any case, accents ignored) or a
// number between 1 and 12.
func ParseMonth(s string) (Month, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		m := Month(n)
		return m, m.IsValid()
	}
	key := foldKey(s)
	for i, name := range monthNames {
		if foldKey(name) == key {
			return Month(i + 1), true
		}
	}
	return 0, false
}
