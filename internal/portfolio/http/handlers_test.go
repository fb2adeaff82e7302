package portfoliohttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/telaris-erp/telaris-reports/internal/portfolio"
)

type staticFetcher struct {
	records []portfolio.Record
}

func (f staticFetcher) FetchRecords(context.Context) ([]portfolio.Record, error) {
	return f.records, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	records := []portfolio.Record{
		{AccountType: portfolio.AccountReceivable, CounterpartyName: "Acme", Currency: "USD", Series: "F001", AmountFunctional: 100},
		{AccountType: portfolio.AccountReceivable, CounterpartyName: "Acme", Currency: "PEN", Series: "F001", AmountFunctional: 50},
	}
	engine := portfolio.NewEngine(staticFetcher{records: records}, nil)
	require.NoError(t, engine.Refresh(context.Background()))

	r := chi.NewRouter()
	r.Route("/portfolio", NewHandler(nil, engine).MountRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleViewReturnsRows(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/portfolio/views/counterparty")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var vm FacetVM
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&vm))
	require.Equal(t, "counterparty", vm.Facet)
	require.Len(t, vm.Rows, 2)
	require.InDelta(t, 150, vm.Totals.Functional, 1e-9)
}

func TestHandleViewUnknownFacet(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/portfolio/views/bogus")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleSelectCrossFilters(t *testing.T) {
	srv := newTestServer(t)
	body := `{"facet":"counterparty","column":"currency","values":{"counterparty":"Acme","currency":"PEN"}}`
	resp, err := http.Post(srv.URL+"/portfolio/selections", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	motive, err := http.Get(srv.URL + "/portfolio/views/motive")
	require.NoError(t, err)
	defer motive.Body.Close()
	var motiveVM FacetVM
	require.NoError(t, json.NewDecoder(motive.Body).Decode(&motiveVM))
	require.Len(t, motiveVM.Rows, 1)
	require.Equal(t, "PEN", motiveVM.Rows[0].Values["currency"])

	// The drilled table keeps all of its own rows.
	own, err := http.Get(srv.URL + "/portfolio/views/counterparty")
	require.NoError(t, err)
	defer own.Body.Close()
	var ownVM FacetVM
	require.NoError(t, json.NewDecoder(own.Body).Decode(&ownVM))
	require.Len(t, ownVM.Rows, 2)
	require.True(t, ownVM.Selection.Active)
}

func TestHandleSelectValidation(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Post(srv.URL+"/portfolio/selections", "application/json",
		strings.NewReader(`{"facet":"bogus","column":"currency"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleFiltersLifecycle(t *testing.T) {
	srv := newTestServer(t)
	client := srv.Client()

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/portfolio/filters",
		strings.NewReader(`{"field":"currency","values":["USD"]}`))
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	view, err := http.Get(srv.URL + "/portfolio/views/counterparty")
	require.NoError(t, err)
	defer view.Body.Close()
	var vm FacetVM
	require.NoError(t, json.NewDecoder(view.Body).Decode(&vm))
	require.Len(t, vm.Rows, 1)

	del, err := http.NewRequest(http.MethodDelete, srv.URL+"/portfolio/filters", nil)
	require.NoError(t, err)
	resp2, err := client.Do(del)
	require.NoError(t, err)
	defer resp2.Body.Close()
	var filters map[string][]string
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&filters))
	require.Equal(t, []string{"receivable"}, filters["account_type"])
}

func TestHandleKPI(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/portfolio/kpi")
	require.NoError(t, err)
	defer resp.Body.Close()
	var vm KPIVM
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&vm))
	require.Equal(t, 2, vm.Count)
	require.InDelta(t, 150, vm.Functional, 1e-9)
}

func TestHandleCSVExport(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/portfolio/export.csv?facet=counterparty")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
}
