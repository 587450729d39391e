package sheets

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"coachpay/internal/core"
)

// TimeLayout is how the submission timestamp is written in tabular stores.
const TimeLayout = "2006-01-02 15:04:05"

// Column headers of the record table, in column order.
const (
	ColFirstName = "Nombre"
	ColLastName  = "Apellidos"
	ColCategory  = "Categoria"
	ColRole      = "Rol"
	ColUnits     = "Horas entrenadas"
	ColHome      = "Partidos casa"
	ColAway      = "Partidos fuera"
	ColMonth     = "Mes"
	ColDays      = "Dias"
	ColCreatedAt = "Fecha registro"
	ColID        = "ID"
)

// RecordHeader is the fixed header row of the record table.
var RecordHeader = []string{
	ColFirstName, ColLastName, ColCategory, ColRole, ColUnits, ColHome, ColAway,
	ColMonth, ColDays, ColCreatedAt, ColID,
}

// PaymentHeader is the header row of an exported payment table.
var PaymentHeader = []string{"Nombre", "Apellidos", "Horas entrenadas", "Partidos casa", "Partidos fuera", "Total (€)"}

// EncodeRecord renders a record as a row matching RecordHeader.
func EncodeRecord(r core.TrainingRecord) []string {
	days := make([]string, len(r.Days))
	for i, d := range r.Days {
		days[i] = strconv.Itoa(d)
	}
	created := ""
	if !r.CreatedAt.IsZero() {
		created = r.CreatedAt.Format(TimeLayout)
	}
	return []string{
		r.FirstName,
		r.LastName,
		string(r.Category),
		string(r.Role),
		strconv.Itoa(r.Units),
		strconv.Itoa(r.HomeGames),
		strconv.Itoa(r.AwayGames),
		r.Month.String(),
		strings.Join(days, " "),
		created,
		r.ID,
	}
}

// EncodePayment renders a payment summary as a row matching PaymentHeader.
func EncodePayment(p core.PaymentSummary) []string {
	return []string{
		p.FirstName,
		p.LastName,
		strconv.Itoa(p.Units),
		strconv.Itoa(p.HomeGames),
		strconv.Itoa(p.AwayGames),
		p.Total.StringFixed(2),
	}
}

// Columns maps header names to their index. It tolerates reordered or
// missing optional columns, so tables written by older app versions
// (without Dias or ID) still decode.
type Columns map[string]int

// ParseHeader builds a column index from a header row.
func ParseHeader(header []string) (Columns, error) {
	cols := make(Columns, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{ColFirstName, ColLastName, ColRole, ColUnits, ColMonth} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("unexpected record header: missing %q; got headers=%v", required, header)
		}
	}
	return cols, nil
}

// IsCurrentHeader reports whether header is exactly RecordHeader.
func IsCurrentHeader(header []string) bool {
	if len(header) != len(RecordHeader) {
		return false
	}
	for i, h := range header {
		if strings.TrimSpace(h) != RecordHeader[i] {
			return false
		}
	}
	return true
}

// UpgradeTable re-encodes a table written under an older header (for
// example without Dias or ID) so its rows line up with RecordHeader. Rows
// that cannot be decoded fail the upgrade instead of being dropped.
func UpgradeTable(rows [][]string) ([][]string, error) {
	records, err := DecodeTable(rows)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("upgrade table: %w", err)
	}
	out := make([][]string, 0, len(records)+1)
	out = append(out, RecordHeader)
	for _, r := range records {
		out = append(out, EncodeRecord(r))
	}
	return out, nil
}

// IsHeader reports whether a row looks like the record header.
func IsHeader(row []string) bool {
	return len(row) > 0 && strings.TrimSpace(row[0]) == ColFirstName
}

func (c Columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// DecodeRecord parses a data row. Count cells may be empty (read as zero)
// or written as floats by spreadsheet tools ("3.0").
func (c Columns) DecodeRecord(row []string) (core.TrainingRecord, error) {
	var (
		r   core.TrainingRecord
		err error
	)
	r.FirstName = c.get(row, ColFirstName)
	r.LastName = c.get(row, ColLastName)
	r.Category = core.Category(c.get(row, ColCategory))
	r.Role = core.Role(c.get(row, ColRole))
	r.ID = c.get(row, ColID)

	month, ok := core.ParseMonth(c.get(row, ColMonth))
	if !ok {
		return r, fmt.Errorf("invalid month %q", c.get(row, ColMonth))
	}
	r.Month = month

	if r.Units, err = parseCount(c.get(row, ColUnits)); err != nil {
		return r, fmt.Errorf("column %s: %w", ColUnits, err)
	}
	if r.HomeGames, err = parseCount(c.get(row, ColHome)); err != nil {
		return r, fmt.Errorf("column %s: %w", ColHome, err)
	}
	if r.AwayGames, err = parseCount(c.get(row, ColAway)); err != nil {
		return r, fmt.Errorf("column %s: %w", ColAway, err)
	}
	for _, f := range strings.Fields(c.get(row, ColDays)) {
		d, err := strconv.Atoi(f)
		if err != nil {
			return r, fmt.Errorf("column %s: invalid day %q", ColDays, f)
		}
		r.Days = append(r.Days, d)
	}
	if v := c.get(row, ColCreatedAt); v != "" {
		t, err := time.ParseInLocation(TimeLayout, v, time.Local)
		if err != nil {
			return r, fmt.Errorf("column %s: %w", ColCreatedAt, err)
		}
		r.CreatedAt = t
	}
	return r, nil
}

// parseCount reads a non-negative whole number. Spreadsheet floats are
// accepted only when integral ("3.0", "3,0").
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if ferr != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("invalid number %q", s)
		}
		n = int(f)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %q", s)
	}
	return n, nil
}

// DecodeTable turns a full table (header first) into records. Empty tables
// and tables holding only a header yield core.ErrNotFound.
func DecodeTable(rows [][]string) ([]core.TrainingRecord, error) {
	if len(rows) == 0 {
		return nil, core.ErrNotFound
	}
	cols, err := ParseHeader(rows[0])
	if err != nil {
		return nil, err
	}
	out := make([]core.TrainingRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		r, err := cols.DecodeRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, core.ErrNotFound
	}
	return out, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
