// Package export serialises portfolio views for spreadsheet consumers.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/telaris-erp/telaris-reports/internal/portfolio"
)

var facetHeaders = map[portfolio.Facet][]string{
	portfolio.FacetMotive:       {"Series", "Responsible", "Service", "Currency"},
	portfolio.FacetCounterparty: {"Counterparty", "Currency"},
	portfolio.FacetDetail: {
		"Due Date", "Issue Date", "Counterparty Code", "Counterparty",
		"Series", "Number", "Type", "Description", "Exchange Rate",
	},
}

// WriteFacetCSV emits a facet's ordered aggregate rows followed by a totals
// line.
func WriteFacetCSV(w io.Writer, view portfolio.FacetView) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	schema := view.Facet.Schema()
	header := append([]string{}, facetHeaders[view.Facet]...)
	header = append(header, "Local", "Functional", "Alternate", "Participation %", "Pending %")
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range view.Rows {
		record := make([]string, 0, len(header))
		for _, field := range schema {
			record = append(record, row.Values[field])
		}
		record = append(record,
			formatFloat(row.AmountLocal),
			formatFloat(row.AmountFunctional),
			formatFloat(row.AmountAlternate),
			formatFloat(row.Participation*100),
			formatFloat(row.PendingPct*100),
		)
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	totals := make([]string, len(schema))
	if len(totals) > 0 {
		totals[0] = "Total"
	}
	totals = append(totals,
		formatFloat(view.Totals.AmountLocal),
		formatFloat(view.Totals.AmountFunctional),
		formatFloat(view.Totals.AmountAlternate),
		"", "",
	)
	if err := writer.Write(totals); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// WriteKPICSV serialises the summary totals and adjusted-week buckets.
func WriteKPICSV(w io.Writer, summary portfolio.KPISummary) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"Documents", strconv.Itoa(summary.Count)},
		{"Total Functional", formatFloat(summary.AmountFunctional)},
		{"Overdue", formatFloat(summary.Overdue)},
		{"Within Term", formatFloat(summary.WithinTerm)},
		{"No Due Date", formatFloat(summary.NoDueDate)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	for _, bucket := range summary.Weeks {
		if err := writer.Write([]string{bucket.Label, formatFloat(bucket.Amount)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
