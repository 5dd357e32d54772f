package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
)

// BreakdownCSVName is the download name of a month's breakdown export.
func BreakdownCSVName(month int) string {
	return fmt.Sprintf("monthly_summary_%d.csv", month)
}

// WriteBreakdownCSV writes a "Category,Amount" table of breakdown to w.
func WriteBreakdownCSV(w io.Writer, breakdown []CategoryAmount) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Category", "Amount"}); err != nil {
		return err
	}
	for _, row := range breakdown {
		if err := cw.Write([]string{row.Name, row.Value.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RenderMonthPDF writes a one-page statement of bucket to w.
func RenderMonthPDF(w io.Writer, bucket MonthBucket) error {
	period := time.Date(bucket.Year, time.Month(bucket.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")

	pdf := gofpdf.New("P", "mm", "A4", "")
	// Helvetica only covers cp1252; runes outside it are replaced rather than garbled.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Monthly Summary "+period, false)
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Monthly Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Period: "+period)
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)

	sumW := []float64{60, 60, 60}
	pdf.CellFormat(sumW[0], 10, "Income", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[1], 10, "Expense", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[2], 10, "Savings", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(sumW[0], 10, bucket.Income.StringFixed(2), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[1], 10, bucket.Expense.StringFixed(2), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[2], 10, bucket.Savings.StringFixed(2), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Spending by Category")
	pdf.Ln(8)

	colW := []float64{110, 70}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(245, 245, 245)
	pdf.CellFormat(colW[0], 8, "CATEGORY", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colW[1], 8, "AMOUNT", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if len(bucket.CategoryBreakdown) == 0 {
		pdf.CellFormat(colW[0]+colW[1], 8, "No expenses recorded", "1", 1, "C", false, 0, "")
	}
	for _, row := range bucket.CategoryBreakdown {
		if pdf.GetY() > 270 {
			pdf.AddPage()
		}
		pdf.CellFormat(colW[0], 8, tr(row.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[1], 8, row.Value.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
