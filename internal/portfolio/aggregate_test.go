package portfolio

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAggregateCounterpartyScenario(t *testing.T) {
	records := []Record{
		{CounterpartyName: "Acme", Currency: "USD", AmountFunctional: 100},
		{CounterpartyName: "Acme", Currency: "PEN", AmountFunctional: 50},
	}
	view := Aggregate(FacetCounterparty, records)

	require.Len(t, view.Rows, 2)
	require.InDelta(t, 150, view.Totals.AmountFunctional, 1e-9)

	usd, pen := view.Rows[0], view.Rows[1]
	require.Equal(t, "USD", usd.Values[FieldCurrency])
	require.Equal(t, "PEN", pen.Values[FieldCurrency])
	require.InDelta(t, 100.0/150.0, usd.Participation, 1e-9)
	require.InDelta(t, 50.0/150.0, pen.Participation, 1e-9)

	require.True(t, usd.FirstInGroup)
	require.False(t, pen.FirstInGroup)
	require.Equal(t, 2, usd.GroupSize)
	require.Equal(t, 2, pen.GroupSize)

	// The counterparty label shows once, the second currency row reuses it.
	require.Equal(t, []bool{true, true}, usd.ShowLevel)
	require.Equal(t, []bool{false, true}, pen.ShowLevel)
}

func TestAggregateCounterpartyOrderedByDominantRow(t *testing.T) {
	// Hilados' single row (60) outranks both Acme rows (50, 40) even though
	// Acme's combined total is larger: the dominant-currency row decides.
	records := []Record{
		{CounterpartyName: "Acme", Currency: "USD", AmountFunctional: 50},
		{CounterpartyName: "Acme", Currency: "PEN", AmountFunctional: 40},
		{CounterpartyName: "Hilados SAC", Currency: "USD", AmountFunctional: 60},
	}
	view := Aggregate(FacetCounterparty, records)
	require.Equal(t, "Hilados SAC", view.Rows[0].Values[FieldCounterparty])
	require.Equal(t, "Acme", view.Rows[1].Values[FieldCounterparty])
	require.Equal(t, "USD", view.Rows[1].Values[FieldCurrency])
	require.Equal(t, "Acme", view.Rows[2].Values[FieldCounterparty])
	require.Equal(t, "PEN", view.Rows[2].Values[FieldCurrency])
}

func TestAggregateMotiveNestedOrdering(t *testing.T) {
	records := []Record{
		{Series: "F001", ResponsibleName: "Rojas", Service: "Dyeing", Currency: "USD", AmountFunctional: 100},
		{Series: "F001", ResponsibleName: "Rojas", Service: "Dyeing", Currency: "PEN", AmountFunctional: 40},
		{Series: "F001", ResponsibleName: "Quispe", Service: "Weaving", Currency: "USD", AmountFunctional: 30},
		{Series: "F002", ResponsibleName: "Rojas", Service: "Dyeing", Currency: "USD", AmountFunctional: 200},
	}
	view := Aggregate(FacetMotive, records)
	require.Len(t, view.Rows, 4)

	// F002 (200) outranks F001 (170); within F001, Rojas (140) before
	// Quispe (30); within a service, USD 100 before PEN 40.
	require.Equal(t, "F002", view.Rows[0].Values[FieldSeries])
	require.Equal(t, "F001", view.Rows[1].Values[FieldSeries])
	require.Equal(t, "Rojas", view.Rows[1].Values[FieldResponsible])
	require.Equal(t, "USD", view.Rows[1].Values[FieldCurrency])
	require.Equal(t, "PEN", view.Rows[2].Values[FieldCurrency])
	require.Equal(t, "Quispe", view.Rows[3].Values[FieldResponsible])
}

func TestAggregateMotiveCurrencyTieBreak(t *testing.T) {
	records := []Record{
		{Series: "F001", ResponsibleName: "Rojas", Service: "Dyeing", Currency: "USD", AmountFunctional: 50},
		{Series: "F001", ResponsibleName: "Rojas", Service: "Dyeing", Currency: "PEN", AmountFunctional: 50},
	}
	view := Aggregate(FacetMotive, records)
	require.Equal(t, "PEN", view.Rows[0].Values[FieldCurrency])
	require.Equal(t, "USD", view.Rows[1].Values[FieldCurrency])
}

func TestAggregateDetailOrdering(t *testing.T) {
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	records := []Record{
		{DueDate: due.AddDate(0, 0, 7), IssueDate: due, CounterpartyCode: "C01", Number: "0002"},
		{DueDate: due, IssueDate: due.AddDate(0, 0, -1), CounterpartyCode: "C02", Number: "0003"},
		{DueDate: due, IssueDate: due.AddDate(0, 0, -5), CounterpartyCode: "C01", Number: "0001"},
	}
	view := Aggregate(FacetDetail, records)
	require.Len(t, view.Rows, 3)
	require.Equal(t, "0001", view.Rows[0].Values[FieldNumber])
	require.Equal(t, "0003", view.Rows[1].Values[FieldNumber])
	require.Equal(t, "0002", view.Rows[2].Values[FieldNumber])
}

func TestAggregateConservation(t *testing.T) {
	records := []Record{
		{CounterpartyName: "Acme", Currency: "USD", AmountFunctional: 100.25, AmountLocal: 10},
		{CounterpartyName: "Acme", Currency: "USD", AmountFunctional: 12.50, AmountLocal: 4},
		{CounterpartyName: "Acme", Currency: "PEN", AmountFunctional: 50, AmountLocal: 3},
		{CounterpartyName: "Hilados SAC", Currency: "USD", AmountFunctional: 7.75, AmountLocal: 1},
	}
	var want float64
	for _, r := range records {
		want += r.AmountFunctional
	}
	view := Aggregate(FacetCounterparty, records)
	var got float64
	for _, row := range view.Rows {
		got += row.AmountFunctional
	}
	require.InDelta(t, want, got, 1e-9)
	require.InDelta(t, want, view.Totals.AmountFunctional, 1e-9)
}

func TestAggregateParticipationSumsToOne(t *testing.T) {
	records := []Record{
		{CounterpartyName: "Acme", Currency: "USD", AmountFunctional: 123.45},
		{CounterpartyName: "Acme", Currency: "PEN", AmountFunctional: 67.89},
		{CounterpartyName: "Hilados SAC", Currency: "USD", AmountFunctional: 10.66},
	}
	view := Aggregate(FacetCounterparty, records)
	var sum float64
	for _, row := range view.Rows {
		sum += row.Participation
	}
	require.InDelta(t, 1, sum, 1e-9)
}

func TestAggregateEmptyInput(t *testing.T) {
	view := Aggregate(FacetCounterparty, nil)
	require.Empty(t, view.Rows)
	require.Zero(t, view.Totals.AmountFunctional)
}

func TestAggregateZeroTotalParticipation(t *testing.T) {
	records := []Record{{CounterpartyName: "Acme", Currency: "USD", AmountFunctional: 0}}
	view := Aggregate(FacetCounterparty, records)
	require.Zero(t, view.Rows[0].Participation)
}

func TestAggregatePendingPercentage(t *testing.T) {
	due := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	records := []Record{
		{DueDate: due, Number: "0001", AmountOriginal: 200, PendingRatio: 0.5},
		{DueDate: due, Number: "0002", AmountOriginal: 100, PendingRatio: 1},
	}
	view := Aggregate(FacetDetail, records)
	require.InDelta(t, 100, view.Rows[0].AmountPending, 1e-9)
	require.InDelta(t, 0.5, view.Rows[0].PendingPct, 1e-9)
	require.InDelta(t, 1, view.Rows[1].PendingPct, 1e-9)
	require.InDelta(t, 200, view.Totals.AmountPending, 1e-9)
}

func TestAggregateOrderingStable(t *testing.T) {
	records := []Record{
		{CounterpartyName: "Acme", Currency: "USD", AmountFunctional: 100},
		{CounterpartyName: "Beta Textil", Currency: "USD", AmountFunctional: 100},
		{CounterpartyName: "Acme", Currency: "PEN", AmountFunctional: 50},
		{CounterpartyName: "Beta Textil", Currency: "PEN", AmountFunctional: 50},
	}
	first := Aggregate(FacetCounterparty, records)
	second := Aggregate(FacetCounterparty, records)
	require.Equal(t, first.Rows, second.Rows)
}

func TestSafeRatio(t *testing.T) {
	require.Zero(t, safeRatio(10, 0))
	require.InDelta(t, 0.5, safeRatio(1, 2), 1e-12)
	require.False(t, math.IsNaN(safeRatio(0, 0)))
}
