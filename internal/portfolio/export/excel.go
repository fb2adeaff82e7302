package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/telaris-erp/telaris-reports/internal/portfolio"
)

var facetSheets = map[portfolio.Facet]string{
	portfolio.FacetMotive:       "By Motive",
	portfolio.FacetCounterparty: "By Counterparty",
	portfolio.FacetDetail:       "Detail",
}

// WriteWorkbook renders one sheet per facet plus a KPI sheet.
func WriteWorkbook(w io.Writer, views []portfolio.FacetView, summary portfolio.KPISummary) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, view := range views {
		sheet := facetSheets[view.Facet]
		if sheet == "" {
			sheet = string(view.Facet)
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := writeFacetSheet(f, sheet, view); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet("KPI"); err != nil {
		return err
	}
	if err := writeKPISheet(f, summary); err != nil {
		return err
	}
	return f.Write(w)
}

func writeFacetSheet(f *excelize.File, sheet string, view portfolio.FacetView) error {
	schema := view.Facet.Schema()
	header := append([]string{}, facetHeaders[view.Facet]...)
	header = append(header, "Local", "Functional", "Alternate", "Participation %", "Pending %")
	for col, title := range header {
		if err := setCell(f, sheet, col+1, 1, title); err != nil {
			return err
		}
	}
	for i, row := range view.Rows {
		col := 1
		for level, field := range schema {
			// Repeated parent labels are blanked out, mirroring the merged
			// cells of the rendered table.
			value := ""
			if row.ShowLevel[level] {
				value = row.Values[field]
			}
			if err := setCell(f, sheet, col, i+2, value); err != nil {
				return err
			}
			col++
		}
		for _, v := range []float64{
			row.AmountLocal, row.AmountFunctional, row.AmountAlternate,
			row.Participation * 100, row.PendingPct * 100,
		} {
			if err := setCell(f, sheet, col, i+2, v); err != nil {
				return err
			}
			col++
		}
	}
	totalsRow := len(view.Rows) + 2
	if err := setCell(f, sheet, 1, totalsRow, "Total"); err != nil {
		return err
	}
	col := len(schema) + 1
	for _, v := range []float64{view.Totals.AmountLocal, view.Totals.AmountFunctional, view.Totals.AmountAlternate} {
		if err := setCell(f, sheet, col, totalsRow, v); err != nil {
			return err
		}
		col++
	}
	return nil
}

func writeKPISheet(f *excelize.File, summary portfolio.KPISummary) error {
	rows := []struct {
		label string
		value interface{}
	}{
		{"Documents", summary.Count},
		{"Total Functional", summary.AmountFunctional},
		{"Overdue", summary.Overdue},
		{"Within Term", summary.WithinTerm},
		{"No Due Date", summary.NoDueDate},
	}
	for _, bucket := range summary.Weeks {
		rows = append(rows, struct {
			label string
			value interface{}
		}{bucket.Label, bucket.Amount})
	}
	for i, row := range rows {
		if err := setCell(f, "KPI", 1, i+1, row.label); err != nil {
			return err
		}
		if err := setCell(f, "KPI", 2, i+1, row.value); err != nil {
			return err
		}
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("export: cell %d,%d: %w", col, row, err)
	}
	return f.SetCellValue(sheet, cell, value)
}
