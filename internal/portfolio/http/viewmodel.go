package portfoliohttp

import (
	"time"

	"github.com/telaris-erp/telaris-reports/internal/portfolio"
)

// RowVM is one aggregate row as rendered by the drill tables.
type RowVM struct {
	Values        map[string]string `json:"values"`
	Count         int               `json:"count"`
	Local         float64           `json:"local"`
	Functional    float64           `json:"functional"`
	Alternate     float64           `json:"alternate"`
	Original      float64           `json:"original,omitempty"`
	Pending       float64           `json:"pending,omitempty"`
	Participation float64           `json:"participation"`
	PendingPct    float64           `json:"pending_pct"`
	ShowLevel     []bool            `json:"show_level"`
	FirstInGroup  bool              `json:"first_in_group"`
	GroupSize     int               `json:"group_size"`
}

// FacetVM drives one drill table.
type FacetVM struct {
	Facet     string      `json:"facet"`
	Schema    []string    `json:"schema"`
	Rows      []RowVM     `json:"rows"`
	Totals    TotalsVM    `json:"totals"`
	Selection SelectionVM `json:"selection"`
}

// TotalsVM is the facet footer line.
type TotalsVM struct {
	Count      int     `json:"count"`
	Local      float64 `json:"local"`
	Functional float64 `json:"functional"`
	Alternate  float64 `json:"alternate"`
}

// SelectionVM echoes the facet's own active selection so the UI can highlight
// the drilled path.
type SelectionVM struct {
	Active bool              `json:"active"`
	Column string            `json:"column,omitempty"`
	Values map[string]string `json:"values,omitempty"`
}

// WeekVM is one adjusted-week bucket.
type WeekVM struct {
	Offset int     `json:"offset"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// KPIVM carries the top-line totals.
type KPIVM struct {
	Count      int      `json:"count"`
	Functional float64  `json:"functional"`
	Overdue    float64  `json:"overdue"`
	WithinTerm float64  `json:"within_term"`
	NoDueDate  float64  `json:"no_due_date"`
	Weeks      []WeekVM `json:"weeks"`
}

// DashboardVM bundles everything one page load needs.
type DashboardVM struct {
	SnapshotID  string              `json:"snapshot_id"`
	RefreshedAt time.Time           `json:"refreshed_at"`
	Loading     bool                `json:"loading"`
	Filters     map[string][]string `json:"filters"`
	Facets      []FacetVM           `json:"facets"`
	KPI         KPIVM               `json:"kpi"`
}

func facetVM(view portfolio.FacetView, selection portfolio.Selection) FacetVM {
	schema := view.Facet.Schema()
	vm := FacetVM{
		Facet:  string(view.Facet),
		Schema: make([]string, len(schema)),
		Rows:   make([]RowVM, len(view.Rows)),
		Totals: TotalsVM{
			Count:      view.Totals.Count,
			Local:      view.Totals.AmountLocal,
			Functional: view.Totals.AmountFunctional,
			Alternate:  view.Totals.AmountAlternate,
		},
		Selection: selectionVM(selection),
	}
	for i, field := range schema {
		vm.Schema[i] = string(field)
	}
	for i, row := range view.Rows {
		values := make(map[string]string, len(row.Values))
		for field, value := range row.Values {
			values[string(field)] = value
		}
		vm.Rows[i] = RowVM{
			Values:        values,
			Count:         row.Count,
			Local:         row.AmountLocal,
			Functional:    row.AmountFunctional,
			Alternate:     row.AmountAlternate,
			Original:      row.AmountOriginal,
			Pending:       row.AmountPending,
			Participation: row.Participation,
			PendingPct:    row.PendingPct,
			ShowLevel:     row.ShowLevel,
			FirstInGroup:  row.FirstInGroup,
			GroupSize:     row.GroupSize,
		}
	}
	return vm
}

func selectionVM(sel portfolio.Selection) SelectionVM {
	if sel.Empty() {
		return SelectionVM{}
	}
	values := make(map[string]string, len(sel.Values))
	for field, value := range sel.Values {
		values[string(field)] = value
	}
	return SelectionVM{Active: true, Column: string(sel.Column), Values: values}
}

func kpiVM(summary portfolio.KPISummary) KPIVM {
	vm := KPIVM{
		Count:      summary.Count,
		Functional: summary.AmountFunctional,
		Overdue:    summary.Overdue,
		WithinTerm: summary.WithinTerm,
		NoDueDate:  summary.NoDueDate,
		Weeks:      make([]WeekVM, len(summary.Weeks)),
	}
	for i, bucket := range summary.Weeks {
		vm.Weeks[i] = WeekVM{Offset: bucket.Offset, Label: bucket.Label, Amount: bucket.Amount, Count: bucket.Count}
	}
	return vm
}

func filtersVM(filter portfolio.GlobalFilter) map[string][]string {
	out := make(map[string][]string)
	for _, field := range portfolio.GlobalFilterFields {
		if values := filter.Values(field); values != nil {
			out[string(field)] = values
		}
	}
	return out
}
