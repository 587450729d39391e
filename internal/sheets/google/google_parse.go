package google

import (
	"fmt"
	"strings"

	"coachpay/internal/core"
	"coachpay/internal/sheets"
)

// parseValues converts a values matrix (as returned by the Sheets API) into
// records. The first row must be the record header.
func parseValues(values [][]interface{}) ([]core.TrainingRecord, error) {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = toStrings(v)
	}
	return sheets.DecodeTable(rows)
}

// recordValues builds the matrix for an append call, optionally prefixed by
// the header row.
func recordValues(records []core.TrainingRecord, withHeader bool) [][]interface{} {
	out := make([][]interface{}, 0, len(records)+1)
	if withHeader {
		out = append(out, toInterfaces(sheets.RecordHeader))
	}
	for _, r := range records {
		out = append(out, toInterfaces(sheets.EncodeRecord(r)))
	}
	return out
}

// upgradeValues re-encodes an existing table under the current header and
// appends records after it.
func upgradeValues(existing [][]interface{}, records []core.TrainingRecord) ([][]interface{}, error) {
	rows := make([][]string, len(existing))
	for i, v := range existing {
		rows[i] = toStrings(v)
	}
	table, err := sheets.UpgradeTable(rows)
	if err != nil {
		return nil, err
	}
	out := make([][]interface{}, 0, len(table)+len(records))
	for _, row := range table {
		out = append(out, toInterfaces(row))
	}
	return append(out, recordValues(records, false)...), nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func toInterfaces(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
