// Package report renders graded submission reports as PDF documents.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/noah-isme/educonnect-api/internal/models"
)

// Data is everything printed on a submission report.
type Data struct {
	StudentName string
	PaperTitle  string
	GeneratedAt time.Time
	Grading     models.Grading
}

type rgb struct{ r, g, b int }

var (
	brandColor = rgb{59, 130, 246}
	passColor  = rgb{40, 167, 69}
	failColor  = rgb{220, 53, 69}
	gridColor  = rgb{128, 128, 128}
	headerFill = rgb{211, 211, 211}
)

// Render writes a single A4 page for the given report data.
func Render(w io.Writer, data Data) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("EduConnect report", true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(brandColor.r, brandColor.g, brandColor.b)
	pdf.CellFormat(0, 12, "EduConnect", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, tr("Report for Paper: "+data.PaperTitle), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetDrawColor(gridColor.r, gridColor.g, gridColor.b)
	pdf.SetFont("Helvetica", "", 11)
	info := [][2]string{
		{"Student Name", data.StudentName},
		{"Paper Name", data.PaperTitle},
		{"Generated On", data.GeneratedAt.Format("02-01-2006 15:04")},
	}
	for i, row := range info {
		fill := i == 0
		if fill {
			pdf.SetFillColor(headerFill.r, headerFill.g, headerFill.b)
		}
		pdf.CellFormat(53, 8, tr(row[0]), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(106, 8, tr(row[1]), "1", 1, "L", fill, 0, "")
	}
	pdf.Ln(8)

	g := data.Grading
	status := ""
	if g.ResultStatus != nil {
		status = *g.ResultStatus
	}
	results := [][2]string{
		{"Total Questions", formatInt(g.TotalQuestions)},
		{"Attempted", formatInt(g.Attempted)},
		{"Correct", formatInt(g.Correct)},
		{"Incorrect", formatInt(g.Incorrect)},
		{"Total Marks", formatFloat(g.TotalMarks)},
		{"Marks Obtained", formatFloat(g.ObtainedMarks)},
		{"Passing Marks", formatFloat(g.PassingMarks)},
		{"Status", status},
	}
	pdf.SetFont("Helvetica", "", 12)
	for _, row := range results {
		pdf.CellFormat(70, 8, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 8, row[1], "1", 1, "L", false, 0, "")
	}
	pdf.Ln(12)

	color := failColor
	if status == models.ResultPass {
		color = passColor
	}
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(color.r, color.g, color.b)
	pdf.CellFormat(0, 10, fmt.Sprintf("STATUS: %s", status), "", 1, "L", false, 0, "")

	return pdf.Output(w)
}

func formatInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
