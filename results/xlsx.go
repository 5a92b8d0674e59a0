package results

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/vnkhanh/survey-platform/api"
)

const resultsSheet = "Results"

// RenderXLSX writes a workbook with one row per choice.
func RenderXLSX(w io.Writer, s api.Survey) (err error) {
	sum := Summarize(s)

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	rows := [][]interface{}{
		{"Survey", sum.Title},
		{"ID", sum.SurveyID},
		{"Access code", sum.AccessCode},
		{"Total votes", sum.Total},
		{},
		{"Question", "Choice", "Votes", "Percent"},
	}
	headerRow := len(rows)
	for _, q := range sum.Questions {
		for _, c := range q.Choices {
			rows = append(rows, []interface{}{q.Text, c.Text, c.Votes, float64(c.Percent) / 100})
		}
		rows = append(rows, []interface{}{q.Text, "Total", q.Total, ""})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(resultsSheet, cell, &r); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetCellStyle(resultsSheet, "A1", "A4", bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(resultsSheet, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("D%d", headerRow), bold); err != nil {
		return err
	}
	if len(rows) > headerRow {
		pct, err := f.NewStyle(&excelize.Style{NumFmt: 9})
		if err != nil {
			return fmt.Errorf("create style: %w", err)
		}
		if err := f.SetCellStyle(resultsSheet, fmt.Sprintf("D%d", headerRow+1), fmt.Sprintf("D%d", len(rows)), pct); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(resultsSheet, "A", "B", 40); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
