// Package core holds the coaching record model and the stipend calculation.
//
// ComputePayments is a pure function of its inputs: it never touches storage
// and produces the same output for the same records and period.
package core

import "github.com/shopspring/decimal"

// Rate is the linear pay formula of a role, in euros.
type Rate struct {
	Unit decimal.Decimal // per day or session trained
	Home decimal.Decimal // per home game directed
	Away decimal.Decimal // per away game directed
}

var rates = map[Role]Rate{
	Principal: {Unit: decimal.NewFromInt(8), Home: decimal.NewFromInt(16), Away: decimal.NewFromInt(26)},
	Ayudante:  {Unit: decimal.NewFromInt(6), Home: decimal.NewFromInt(10), Away: decimal.Zero},
}

// RateFor returns the formula for role. Unknown roles pay nothing.
func RateFor(role Role) Rate {
	if r, ok := rates[role]; ok {
		return r
	}
	return Rate{Unit: decimal.Zero, Home: decimal.Zero, Away: decimal.Zero}
}

// Pay applies the rate to one record's units and games.
func (r Rate) Pay(units, home, away int) decimal.Decimal {
	return r.Unit.Mul(decimal.NewFromInt(int64(units))).
		Add(r.Home.Mul(decimal.NewFromInt(int64(home)))).
		Add(r.Away.Mul(decimal.NewFromInt(int64(away))))
}

// RecordPay is the amount a single record is worth under its own role.
func RecordPay(rec TrainingRecord) decimal.Decimal {
	return RateFor(rec.Role).Pay(rec.Units, rec.HomeGames, rec.AwayGames)
}

// PaymentSummary is one payee's total for a period.
type PaymentSummary struct {
	FirstName string
	LastName  string
	Units     int
	HomeGames int
	AwayGames int
	Total     decimal.Decimal
}

// ComputePayments filters records to period, groups them by person and sums
// each record's pay. The formula is applied per record so that a person with
// mixed roles in one month is paid each role's rate for its own units.
// Rows come out in first-seen order; the result is empty, never nil, when
// nothing matches.
func ComputePayments(records []TrainingRecord, period Month) []PaymentSummary {
	out := make([]PaymentSummary, 0)
	index := make(map[string]int)
	for _, rec := range records {
		if rec.Month != period {
			continue
		}
		key := rec.PersonKey()
		i, seen := index[key]
		if !seen {
			i = len(out)
			index[key] = i
			out = append(out, PaymentSummary{
				FirstName: rec.FirstName,
				LastName:  rec.LastName,
				Total:     decimal.Zero,
			})
		}
		s := &out[i]
		s.Units += rec.Units
		s.HomeGames += rec.HomeGames
		s.AwayGames += rec.AwayGames
		s.Total = s.Total.Add(RecordPay(rec))
	}
	for i := range out {
		out[i].Total = out[i].Total.Round(2)
	}
	return out
}

// AvailableMonths returns the valid months present in records, in calendar
// order.
func AvailableMonths(records []TrainingRecord) []Month {
	var present [13]bool
	for _, rec := range records {
		if rec.Month.IsValid() {
			present[rec.Month] = true
		}
	}
	var out []Month
	for _, m := range Months() {
		if present[m] {
			out = append(out, m)
		}
	}
	return out
}

// GrandTotal sums the totals of a payment table.
func GrandTotal(rows []PaymentSummary) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Total)
	}
	return total
}
