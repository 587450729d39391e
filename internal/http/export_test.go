package http

import (
	"bytes"
	"encoding/csv"
	"testing"

	"coachpay/internal/core"
	"coachpay/internal/sheets"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestWriteCSVRecords(t *testing.T) {
	records := []core.TrainingRecord{
		{ID: "a", FirstName: "Ana", LastName: "Lopez", Category: "escuela", Role: core.Principal, Month: core.Enero, Units: 3, Days: []int{1, 2, 3}},
	}
	body, err := WriteCSV(recordTable(records))
	if err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	decoded, err := sheets.DecodeTable(rows)
	if err != nil || len(decoded) != 1 || decoded[0].Units != 3 || len(decoded[0].Days) != 3 {
		t.Fatalf("DecodeTable() = %+v, %v", decoded, err)
	}
}

func TestWriteXLSXPayments(t *testing.T) {
	rows := []core.PaymentSummary{
		{FirstName: "Ana", LastName: "Lopez", Units: 15, HomeGames: 3, AwayGames: 1, Total: decimal.NewFromInt(178)},
	}
	body, err := WriteXLSX("Pagos Marzo", paymentTable(rows), paymentNumericCols)
	if err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetRows("Pagos Marzo")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(got) != 2 || got[0][5] != "Total (€)" || got[1][0] != "Ana" || got[1][5] != "178" {
		t.Fatalf("unexpected sheet contents: %v", got)
	}
	typ, err := f.GetCellType("Pagos Marzo", "C2")
	if err != nil || typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString {
		t.Fatalf("units cell should be numeric, got type %v (%v)", typ, err)
	}
}
