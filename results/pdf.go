package results

import (
	_ "embed"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/vnkhanh/survey-platform/api"
)

// The core PDF fonts stop at cp1252; DejaVu also covers ą, ł, ś, ź, ż.
const fontFamily = "DejaVu"

//go:embed fonts/DejaVuSansCondensed.ttf
var fontRegular []byte

//go:embed fonts/DejaVuSansCondensed-Bold.ttf
var fontBold []byte

const (
	pageMargin = 10.0
	lineHeight = 6.0
	barHeight  = 3.0
)

// RenderPDF writes an A4 report: a header with the survey's totals, one
// block per question with a bar per choice, and a footer on every page.
func RenderPDF(w io.Writer, s api.Survey) error {
	sum := Summarize(s)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(sum.Title, true)
	pdf.AddUTF8FontFromBytes(fontFamily, "", fontRegular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", fontBold)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "", 9)
		pdf.SetTextColor(156, 163, 175)
		pdf.CellFormat(0, 10, fmt.Sprintf("Generated by Survey Platform  -  page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*pageMargin

	// header
	pdf.SetFont(fontFamily, "B", 20)
	pdf.SetTextColor(31, 41, 55)
	pdf.MultiCell(contentW, 9, sum.Title, "", "L", false)
	if s.Description != "" {
		pdf.SetFont(fontFamily, "", 11)
		pdf.SetTextColor(107, 114, 128)
		pdf.MultiCell(contentW, lineHeight, s.Description, "", "L", false)
	}
	pdf.SetFont(fontFamily, "", 9)
	pdf.SetTextColor(156, 163, 175)
	pdf.CellFormat(contentW, lineHeight,
		fmt.Sprintf("ID: %d | Total votes: %d | Access code: %s", sum.SurveyID, sum.Total, sum.AccessCode),
		"B", 1, "L", false, 0, "")
	pdf.Ln(4)

	labelW := contentW * 0.40
	trackW := contentW * 0.42
	countW := contentW - labelW - trackW - 3

	for i, q := range sum.Questions {
		pdf.SetFont(fontFamily, "B", 12)
		pdf.SetTextColor(55, 65, 81)
		pdf.MultiCell(contentW, 7, fmt.Sprintf("%d. %s (total votes: %d)", i+1, q.Text, q.Total), "", "L", false)

		pdf.SetFont(fontFamily, "", 10)
		for _, c := range q.Choices {
			x, y := pdf.GetX(), pdf.GetY()
			pdf.SetTextColor(75, 85, 99)
			pdf.CellFormat(labelW, lineHeight, c.Text, "", 0, "L", false, 0, "")

			barY := y + (lineHeight-barHeight)/2
			pdf.SetFillColor(229, 231, 235)
			pdf.Rect(x+labelW, barY, trackW, barHeight, "F")
			if c.Percent > 0 {
				pdf.SetFillColor(79, 70, 229)
				pdf.Rect(x+labelW, barY, trackW*float64(c.Percent)/100, barHeight, "F")
			}

			pdf.SetX(x + labelW + trackW + 3)
			pdf.SetTextColor(107, 114, 128)
			pdf.CellFormat(countW, lineHeight, fmt.Sprintf("%d votes (%d%%)", c.Votes, c.Percent), "", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}
