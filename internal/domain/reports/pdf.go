package reports

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// RenderPDF writes the timesheet as an A4 PDF.
func RenderPDF(ts Timesheet, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Timesheet")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", ts.EmployeeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", ts.From.Format("2006-01-02"), ts.To.Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(35, 8, "Date", "1", 0, "", false, 0, "")
	pdf.CellFormat(30, 8, "Sessions", "1", 0, "", false, 0, "")
	pdf.CellFormat(35, 8, "Hours", "1", 0, "", false, 0, "")
	pdf.CellFormat(45, 8, "Invalid punches", "1", 1, "", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, day := range ts.Days {
		pdf.CellFormat(35, 8, day.Date, "1", 0, "", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%d", day.Sessions), "1", 0, "", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", day.WorkedHours), "1", 0, "", false, 0, "")
		pdf.CellFormat(45, 8, fmt.Sprintf("%d", day.InvalidPunches), "1", 1, "", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f hours", ts.TotalHours))
	if ts.InvalidPunches > 0 {
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("%d punches outside assigned geofence", ts.InvalidPunches))
	}

	return pdf.Output(w)
}
