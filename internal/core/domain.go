package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Principal Role = "Principal"
	Ayudante  Role = "Ayudante"
)

type (
	// Role decides which pay formula applies to a record.
	Role string

	// Category is one of the club's team/age groups.
	Category string

	TrainingRecord struct {
		ID        string
		FirstName string
		LastName  string
		Category  Category
		Role      Role
		Month     Month // Period; the season year is implicit
		Units     int   // days or sessions trained
		HomeGames int
		AwayGames int
		Days      []int // optional explicit days of month, sorted
		CreatedAt time.Time
	}
)

// Categories lists the fixed category set in display order.
var Categories = []Category{
	"benjamin 1",
	"benjamin 2y3",
	"alevin femenino",
	"alevin masculino",
	"infantil femenino",
	"infantil masculino",
	"cadete femenino",
	"cadete masculino",
	"junior masculino",
	"senior masculino",
	"escuela",
}

// Roles lists the known roles in display order.
var Roles = []Role{Principal, Ayudante}

var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("no records stored yet")
	ErrEmptyResult = errors.New("no records for period")

	ErrEmptyFirstName = &ValidationError{Field: "first_name", Msg: "first name is required"}
	ErrEmptyLastName  = &ValidationError{Field: "last_name", Msg: "last name is required"}
	ErrNoBlocks       = &ValidationError{Field: "blocks", Msg: "at least one category block is required"}
)

// ValidationError reports a rejected submission. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Field string
	Block int // 1-based block index, 0 when not block specific
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Block > 0 {
		return fmt.Sprintf("block %d: %s", e.Block, e.Msg)
	}
	return e.Msg
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (r Role) String() string { return string(r) }

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case Principal, Ayudante:
		return true
	default:
		return false
	}
}

// ParseRole matches s against the known roles ignoring case and accents.
func ParseRole(s string) (Role, bool) {
	key := foldKey(s)
	for _, r := range Roles {
		if foldKey(string(r)) == key {
			return r, true
		}
	}
	return Role(Normalize(s)), false
}

func (c Category) String() string { return string(c) }

// IsValid reports whether c belongs to the fixed category set.
func (c Category) IsValid() bool {
	_, ok := ParseCategory(string(c))
	return ok
}

// ParseCategory matches s against the category set ignoring case and accents.
func ParseCategory(s string) (Category, bool) {
	key := foldKey(s)
	for _, c := range Categories {
		if foldKey(string(c)) == key {
			return c, true
		}
	}
	return Category(Normalize(s)), false
}

// PersonKey is the grouping key for a payee: normalized, case folded and
// whitespace collapsed first and last name.
func (r TrainingRecord) PersonKey() string {
	return foldKey(r.FirstName) + "|" + foldKey(r.LastName)
}

// Validate checks the invariants every persisted record must hold.
func (r TrainingRecord) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" {
		return ErrEmptyFirstName
	}
	if strings.TrimSpace(r.LastName) == "" {
		return ErrEmptyLastName
	}
	if r.Units < 0 {
		return &ValidationError{Field: "units", Msg: "units trained cannot be negative"}
	}
	if r.HomeGames < 0 || r.AwayGames < 0 {
		return &ValidationError{Field: "games", Msg: "game counts cannot be negative"}
	}
	if !r.Month.IsValid() {
		return &ValidationError{Field: "month", Msg: "invalid month"}
	}
	return nil
}
