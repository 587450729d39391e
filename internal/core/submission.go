package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type (
	// DayInput is what the form collected for the trained days of a block:
	// either a plain count or an explicit list picked on a calendar.
	DayInput struct {
		Count int
		Dates []int
	}

	// Block is one category/role/month entry of a submission.
	Block struct {
		Category  Category
		Role      Role
		Month     Month
		Days      DayInput
		HomeGames int
		AwayGames int
	}

	// Submission is one form post: a person and one or more blocks.
	Submission struct {
		FirstName string
		LastName  string
		Blocks    []Block
	}
)

// CountDays builds a DayInput from a day count.
func CountDays(n int) DayInput { return DayInput{Count: n} }

// PickedDays builds a DayInput from explicit days of month.
func PickedDays(days ...int) DayInput { return DayInput{Dates: days} }

// Units reduces the input to the number of days trained.
func (d DayInput) Units() int {
	if len(d.Dates) > 0 {
		return len(d.sortedDates())
	}
	return d.Count
}

func (d DayInput) sortedDates() []int {
	seen := make(map[int]struct{}, len(d.Dates))
	out := make([]int, 0, len(d.Dates))
	for _, day := range d.Dates {
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	sort.Ints(out)
	return out
}

// Validate applies the submission rule: names present, at least one block,
// and every block known, non-negative and with at least one trained day.
// Days picked on a calendar must exist in the month of the given year.
func (s Submission) Validate(year int) error {
	if Normalize(s.FirstName) == "" {
		return ErrEmptyFirstName
	}
	if Normalize(s.LastName) == "" {
		return ErrEmptyLastName
	}
	if len(s.Blocks) == 0 {
		return ErrNoBlocks
	}
	for i, b := range s.Blocks {
		n := i + 1
		if _, ok := ParseCategory(string(b.Category)); !ok {
			return &ValidationError{Field: "category", Block: n, Msg: fmt.Sprintf("unknown category %q", b.Category)}
		}
		if _, ok := ParseRole(string(b.Role)); !ok {
			return &ValidationError{Field: "role", Block: n, Msg: fmt.Sprintf("unknown role %q", b.Role)}
		}
		if !b.Month.IsValid() {
			return &ValidationError{Field: "month", Block: n, Msg: "invalid month"}
		}
		if b.HomeGames < 0 || b.AwayGames < 0 {
			return &ValidationError{Field: "games", Block: n, Msg: "game counts cannot be negative"}
		}
		if b.Days.Count < 0 {
			return &ValidationError{Field: "units", Block: n, Msg: "days trained cannot be negative"}
		}
		last := b.Month.DaysIn(year)
		for _, d := range b.Days.Dates {
			if d < 1 || d > last {
				return &ValidationError{Field: "days", Block: n, Msg: fmt.Sprintf("day %d is not in %s", d, b.Month)}
			}
		}
		if b.Days.Units() < 1 {
			return &ValidationError{Field: "units", Block: n, Msg: "at least one trained day is required"}
		}
	}
	return nil
}

// Records expands a validated submission into normalized records stamped
// with createdAt. newID supplies record identifiers.
func (s Submission) Records(createdAt time.Time, newID func() string) []TrainingRecord {
	first := strings.Join(strings.Fields(Normalize(s.FirstName)), " ")
	last := strings.Join(strings.Fields(Normalize(s.LastName)), " ")
	out := make([]TrainingRecord, 0, len(s.Blocks))
	for _, b := range s.Blocks {
		cat, _ := ParseCategory(string(b.Category))
		role, _ := ParseRole(string(b.Role))
		var days []int
		if len(b.Days.Dates) > 0 {
			days = b.Days.sortedDates()
		}
		rec := TrainingRecord{
			FirstName: first,
			LastName:  last,
			Category:  cat,
			Role:      role,
			Month:     b.Month,
			Units:     b.Days.Units(),
			HomeGames: b.HomeGames,
			AwayGames: b.AwayGames,
			Days:      days,
			CreatedAt: createdAt,
		}
		if newID != nil {
			rec.ID = newID()
		}
		out = append(out, rec)
	}
	return out
}
