package portfolio

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	records []Record
	err     error
	calls   int
}

func (f *stubFetcher) FetchRecords(context.Context) ([]Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func acmeBaseline() []Record {
	return []Record{
		{AccountType: AccountReceivable, CounterpartyName: "Acme", Currency: "USD", Series: "F001", AmountFunctional: 100},
		{AccountType: AccountReceivable, CounterpartyName: "Acme", Currency: "PEN", Series: "F001", AmountFunctional: 50},
	}
}

func TestEngineRefreshReplacesBaseline(t *testing.T) {
	fetcher := &stubFetcher{records: acmeBaseline()}
	engine := NewEngine(fetcher, nil)

	require.Empty(t, engine.SnapshotID())
	require.NoError(t, engine.Refresh(context.Background()))
	require.NotEmpty(t, engine.SnapshotID())

	view, err := engine.View(FacetCounterparty)
	require.NoError(t, err)
	require.Len(t, view.Rows, 2)
}

func TestEngineRefreshFailureLeavesBaselineUntouched(t *testing.T) {
	fetcher := &stubFetcher{records: acmeBaseline()}
	engine := NewEngine(fetcher, nil)
	require.NoError(t, engine.Refresh(context.Background()))
	snapshot := engine.SnapshotID()

	fetcher.err = errors.New("connection reset")
	require.Error(t, engine.Refresh(context.Background()))

	require.Equal(t, snapshot, engine.SnapshotID())
	view, err := engine.View(FacetCounterparty)
	require.NoError(t, err)
	require.Len(t, view.Rows, 2)
}

func TestEngineInitialLoadFailureServesEmpty(t *testing.T) {
	engine := NewEngine(&stubFetcher{err: errors.New("boom")}, nil)
	require.Error(t, engine.Refresh(context.Background()))
	view, err := engine.View(FacetCounterparty)
	require.NoError(t, err)
	require.Empty(t, view.Rows)
}

func TestEngineSelectionToggleScenario(t *testing.T) {
	engine := NewEngine(&stubFetcher{records: acmeBaseline()}, nil)
	require.NoError(t, engine.Refresh(context.Background()))

	penCell, err := NewSelection(FacetCounterparty, FieldCurrency, map[Field]string{
		FieldCounterparty: "Acme",
		FieldCurrency:     "PEN",
	})
	require.NoError(t, err)

	// Selecting PEN restricts the sibling tables, never the counterparty
	// table itself.
	require.NoError(t, engine.Select(FacetCounterparty, penCell))
	own, err := engine.View(FacetCounterparty)
	require.NoError(t, err)
	require.Len(t, own.Rows, 2)

	motive, err := engine.View(FacetMotive)
	require.NoError(t, err)
	require.Len(t, motive.Rows, 1)
	require.Equal(t, "PEN", motive.Rows[0].Values[FieldCurrency])

	detail, err := engine.View(FacetDetail)
	require.NoError(t, err)
	require.Len(t, detail.Rows, 1)

	// Re-selecting the identical cell restores the unfiltered state.
	require.NoError(t, engine.Select(FacetCounterparty, penCell))
	require.True(t, engine.Selection(FacetCounterparty).Empty())
	motive, err = engine.View(FacetMotive)
	require.NoError(t, err)
	require.Len(t, motive.Rows, 2)

	// A third click re-applies the filter.
	require.NoError(t, engine.Select(FacetCounterparty, penCell))
	motive, err = engine.View(FacetMotive)
	require.NoError(t, err)
	require.Len(t, motive.Rows, 1)
}

func TestEngineGlobalFilterLifecycle(t *testing.T) {
	records := append(acmeBaseline(), Record{
		AccountType: AccountPayable, CounterpartyName: "Proveedor Andino", Currency: "USD", AmountFunctional: 30,
	})
	engine := NewEngine(&stubFetcher{records: records}, nil)
	require.NoError(t, engine.Refresh(context.Background()))

	// Default filter hides payables.
	view, err := engine.View(FacetCounterparty)
	require.NoError(t, err)
	require.Len(t, view.Rows, 2)

	require.NoError(t, engine.SetGlobalFilter(FieldAccountType, []string{string(AccountPayable)}))
	view, err = engine.View(FacetCounterparty)
	require.NoError(t, err)
	require.Len(t, view.Rows, 1)
	require.Equal(t, "Proveedor Andino", view.Rows[0].Values[FieldCounterparty])

	engine.ResetGlobalFilter()
	require.Equal(t, []string{string(AccountReceivable)}, engine.GlobalFilter().Values(FieldAccountType))
}

func TestEngineRejectsUnfilterableField(t *testing.T) {
	engine := NewEngine(&stubFetcher{}, nil)
	require.Error(t, engine.SetGlobalFilter(FieldExchangeRate, []string{"3.75"}))
}

func TestEngineKPIUsesAllSelections(t *testing.T) {
	engine := NewEngine(&stubFetcher{records: acmeBaseline()}, nil)
	require.NoError(t, engine.Refresh(context.Background()))

	penCell, err := NewSelection(FacetCounterparty, FieldCurrency, map[Field]string{
		FieldCounterparty: "Acme",
		FieldCurrency:     "PEN",
	})
	require.NoError(t, err)
	require.NoError(t, engine.Select(FacetCounterparty, penCell))

	// Unlike the counterparty table, KPI totals honour every selection.
	summary := engine.KPI()
	require.Equal(t, 1, summary.Count)
	require.InDelta(t, 50, summary.AmountFunctional, 1e-9)

	require.Len(t, engine.ExportRecords(), 1)
}

func TestEngineUnknownFacet(t *testing.T) {
	engine := NewEngine(&stubFetcher{}, nil)
	_, err := engine.View(Facet("bogus"))
	require.Error(t, err)
	require.Error(t, engine.Select(Facet("bogus"), Selection{}))
	require.Error(t, engine.ClearSelection(Facet("bogus")))
}
