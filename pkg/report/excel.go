package report

import (
	"fmt"
	"io"

	"spa-booking-be/pkg/revenue"

	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet  = "Summary"
	CashiersSheet = "Cashiers"

	// DirectLabel names the bucket of payments made on the gateway without a cashier.
	DirectLabel = "No cashier (gateway)"

	dateLayout = "2006-01-02 15:04"
)

type sheetWriter struct {
	file  *excelize.File
	sheet string
	row   int
}

func (w *sheetWriter) header(columns ...string) error {
	if err := w.write(toRow(columns)); err != nil {
		return err
	}
	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	start, _ := excelize.CoordinatesToCellName(1, w.row-1)
	end, _ := excelize.CoordinatesToCellName(len(columns), w.row-1)
	return w.file.SetCellStyle(w.sheet, start, end, style)
}

func (w *sheetWriter) write(values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, w.row)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.sheet, cell, v); err != nil {
			return err
		}
	}
	w.row++
	return nil
}

func toRow(cols []string) []interface{} {
	row := make([]interface{}, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	return row
}

// WriteCashierRevenue renders the report as an XLSX workbook into out.
func WriteCashierRevenue(out io.Writer, r revenue.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(CashiersSheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", CashiersSheet, err)
	}

	summary := &sheetWriter{file: f, sheet: SummarySheet, row: 1}
	if err := summary.header("Metric", "Value"); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"From", r.From.Format(dateLayout)},
		{"To", r.To.Format(dateLayout)},
		{"Total cash", r.TotalCash.Int64()},
		{"Total transfer", r.TotalTransfer.Int64()},
		{"Total collected", r.TotalCollected.Int64()},
		{"Invoices", r.CountInvoices},
	}
	for _, row := range rows {
		if err := summary.write(row); err != nil {
			return err
		}
	}

	cashiers := &sheetWriter{file: f, sheet: CashiersSheet, row: 1}
	if err := cashiers.header("Cashier", "Total", "Cash", "Transfer", "Invoices", "Share %"); err != nil {
		return err
	}
	for _, c := range r.Cashiers {
		label := DirectLabel
		if c.CashierId != nil {
			label = c.CashierId.String()
		}
		share, _ := c.Percentage.Float64()
		if err := cashiers.write([]interface{}{
			label, c.Total.Int64(), c.Cash.Int64(), c.Transfer.Int64(), c.Count, share,
		}); err != nil {
			return err
		}
	}

	return f.Write(out)
}
