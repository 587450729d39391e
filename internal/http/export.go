package http

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"coachpay/internal/core"
	applog "coachpay/internal/log"
	"coachpay/internal/sheets"

	"github.com/xuri/excelize/v2"
)

const (
	recordsFileBase = "registros_entrenadores"
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func paymentsFileBase(month core.Month) string {
	return "pagos_" + month.String()
}

// recordTable is the records export: header plus one encoded row each.
func recordTable(records []core.TrainingRecord) [][]string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, sheets.RecordHeader)
	for _, rec := range records {
		rows = append(rows, sheets.EncodeRecord(rec))
	}
	return rows
}

// paymentTable is the payments export for one month.
func paymentTable(summaries []core.PaymentSummary) [][]string {
	rows := make([][]string, 0, len(summaries)+1)
	rows = append(rows, sheets.PaymentHeader)
	for _, p := range summaries {
		rows = append(rows, sheets.EncodePayment(p))
	}
	return rows
}

// WriteCSV renders a table as comma separated text.
func WriteCSV(table [][]string) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(table); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteXLSX renders a table as a workbook with one sheet. Cells in
// numericCols are written as numbers so spreadsheet formulas work.
func WriteXLSX(sheetName string, table [][]string, numericCols map[int]bool) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for i, row := range table {
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
			if i > 0 && numericCols[j] {
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					values[j] = n
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if len(table) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err == nil {
			last, _ := excelize.CoordinatesToCellName(len(table[0]), 1)
			_ = f.SetCellStyle(sheetName, "A1", last, style)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// Columns holding numbers in each table.
var (
	recordNumericCols  = map[int]bool{4: true, 5: true, 6: true}
	paymentNumericCols = map[int]bool{2: true, 3: true, 4: true, 5: true}
)

func sendFile(w http.ResponseWriter, name, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) exportRecords(w http.ResponseWriter, r *http.Request, xlsx bool) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)
	records, err := s.records.List(ctx)
	if errors.Is(err, core.ErrNotFound) {
		MessageResponse(http.StatusNotFound, MessageInfo, msgNoRecords).Write(w)
		return
	}
	if err != nil {
		logger.Error("Failed to read records for export", applog.FieldOperation, applog.OpExport, applog.FieldError, err)
		InternalServerError(msgReadError).Write(w)
		return
	}

	table := recordTable(records)
	var (
		body  []byte
		name  string
		ctype string
	)
	if xlsx {
		body, err = WriteXLSX("Registros", table, recordNumericCols)
		name, ctype = recordsFileBase+".xlsx", xlsxContentType
	} else {
		body, err = WriteCSV(table)
		name, ctype = recordsFileBase+".csv", csvContentType
	}
	if err != nil {
		logger.Error("Failed to render export", applog.FieldOperation, applog.OpExport, applog.FieldError, err)
		InternalServerError(msgReadError).Write(w)
		return
	}
	logger.Info("Records exported", applog.FieldOperation, applog.OpExport, applog.FieldRecords, len(records), applog.FieldFormat, ctype)
	sendFile(w, name, ctype, body)
}

func (s *Server) exportPayments(w http.ResponseWriter, r *http.Request, xlsx bool) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)
	month, ok := ParseMonthParam(r.URL.Query())
	if !ok {
		BadRequestError(msgBadMonth).Write(w)
		return
	}
	data, err := s.computePayments(ctx, month)
	if err != nil {
		logger.Error("Failed to compute payments for export", applog.FieldOperation, applog.OpExport, applog.FieldError, err)
		InternalServerError(msgReadError).Write(w)
		return
	}
	if data.Info != "" {
		MessageResponse(http.StatusNotFound, MessageInfo, data.Info).Write(w)
		return
	}

	table := paymentTable(data.Rows)
	var (
		body  []byte
		name  string
		ctype string
	)
	if xlsx {
		body, err = WriteXLSX("Pagos "+month.String(), table, paymentNumericCols)
		name, ctype = paymentsFileBase(month)+".xlsx", xlsxContentType
	} else {
		body, err = WriteCSV(table)
		name, ctype = paymentsFileBase(month)+".csv", csvContentType
	}
	if err != nil {
		logger.Error("Failed to render export", applog.FieldOperation, applog.OpExport, applog.FieldError, err)
		InternalServerError(msgReadError).Write(w)
		return
	}
	logger.Info("Payments exported", applog.FieldOperation, applog.OpExport, applog.FieldMonth, month.String(), applog.FieldRows, len(data.Rows))
	sendFile(w, name, ctype, body)
}

func (s *Server) handleExportRecordsCSV(w http.ResponseWriter, r *http.Request) {
	s.exportRecords(w, r, false)
}

func (s *Server) handleExportRecordsXLSX(w http.ResponseWriter, r *http.Request) {
	s.exportRecords(w, r, true)
}

func (s *Server) handleExportPaymentsCSV(w http.ResponseWriter, r *http.Request) {
	s.exportPayments(w, r, false)
}

func (s *Server) handleExportPaymentsXLSX(w http.ResponseWriter, r *http.Request) {
	s.exportPayments(w, r, true)
}
