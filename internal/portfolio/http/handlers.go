// Package portfoliohttp exposes the portfolio report over HTTP.
package portfoliohttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/telaris-erp/telaris-reports/internal/platform/httpx"
	"github.com/telaris-erp/telaris-reports/internal/portfolio"
	"github.com/telaris-erp/telaris-reports/internal/portfolio/export"
)

// EngineService is the engine contract the handler consumes.
type EngineService interface {
	Refresh(ctx context.Context) error
	Loading() bool
	SnapshotID() string
	RefreshedAt() time.Time
	SetGlobalFilter(field portfolio.Field, values []string) error
	ResetGlobalFilter()
	GlobalFilter() portfolio.GlobalFilter
	Select(facet portfolio.Facet, candidate portfolio.Selection) error
	ClearSelection(facet portfolio.Facet) error
	Selection(facet portfolio.Facet) portfolio.Selection
	View(facet portfolio.Facet) (portfolio.FacetView, error)
	KPI() portfolio.KPISummary
}

// Handler coordinates HTTP requests for the portfolio report.
type Handler struct {
	logger   *slog.Logger
	engine   EngineService
	validate *validator.Validate
}

// NewHandler constructs the portfolio HTTP handler.
func NewHandler(logger *slog.Logger, engine EngineService) *Handler {
	return &Handler{
		logger:   logger,
		engine:   engine,
		validate: validator.New(),
	}
}

type selectionRequest struct {
	Facet  string            `json:"facet" validate:"required,oneof=motive counterparty detail"`
	Column string            `json:"column" validate:"required"`
	Values map[string]string `json:"values"`
}

type filterRequest struct {
	Field  string   `json:"field" validate:"required"`
	Values []string `json:"values" validate:"dive,max=200"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	vm := DashboardVM{
		SnapshotID:  h.engine.SnapshotID(),
		RefreshedAt: h.engine.RefreshedAt(),
		Loading:     h.engine.Loading(),
		Filters:     filtersVM(h.engine.GlobalFilter()),
		Facets:      make([]FacetVM, len(portfolio.Facets)),
	}

	g, _ := errgroup.WithContext(r.Context())
	for i, facet := range portfolio.Facets {
		i, facet := i, facet
		g.Go(func() error {
			view, err := h.engine.View(facet)
			if err != nil {
				return err
			}
			vm.Facets[i] = facetVM(view, h.engine.Selection(facet))
			return nil
		})
	}
	g.Go(func() error {
		vm.KPI = kpiVM(h.engine.KPI())
		return nil
	})
	if err := g.Wait(); err != nil {
		h.serverError(w, "assemble dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, vm)
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	facet := portfolio.Facet(chi.URLParam(r, "facet"))
	view, err := h.engine.View(facet)
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Unknown Facet", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, facetVM(view, h.engine.Selection(facet)))
}

func (h *Handler) handleKPI(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, kpiVM(h.engine.KPI()))
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	facet := portfolio.Facet(req.Facet)
	values := make(map[portfolio.Field]string, len(req.Values))
	for field, value := range req.Values {
		values[portfolio.Field(field)] = value
	}
	candidate, err := portfolio.NewSelection(facet, portfolio.Field(req.Column), values)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Selection", err.Error())
		return
	}
	if err := h.engine.Select(facet, candidate); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Selection", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, selectionVM(h.engine.Selection(facet)))
}

func (h *Handler) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	facet := portfolio.Facet(chi.URLParam(r, "facet"))
	if err := h.engine.ClearSelection(facet); err != nil {
		httpx.Problem(w, http.StatusNotFound, "Unknown Facet", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, SelectionVM{})
}

func (h *Handler) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.engine.SetGlobalFilter(portfolio.Field(req.Field), req.Values); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, filtersVM(h.engine.GlobalFilter()))
}

func (h *Handler) handleResetFilters(w http.ResponseWriter, r *http.Request) {
	h.engine.ResetGlobalFilter()
	httpx.JSON(w, http.StatusOK, filtersVM(h.engine.GlobalFilter()))
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if h.engine.Loading() {
		httpx.Problem(w, http.StatusConflict, "Refresh In Flight", "a baseline refresh is already running")
		return
	}
	if err := h.engine.Refresh(r.Context()); err != nil {
		h.serverError(w, "refresh baseline", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"snapshot_id": h.engine.SnapshotID()})
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	facet := portfolio.Facet(r.URL.Query().Get("facet"))
	if facet == "" {
		facet = portfolio.FacetDetail
	}
	view, err := h.engine.View(facet)
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Unknown Facet", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=portfolio-%s.csv", facet))
	if err := export.WriteFacetCSV(w, view); err != nil {
		h.log().Error("write csv", slog.Any("error", err))
	}
}

func (h *Handler) handleExcel(w http.ResponseWriter, r *http.Request) {
	views := make([]portfolio.FacetView, 0, len(portfolio.Facets))
	for _, facet := range portfolio.Facets {
		view, err := h.engine.View(facet)
		if err != nil {
			h.serverError(w, "assemble workbook", err)
			return
		}
		views = append(views, view)
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=portfolio.xlsx")
	if err := export.WriteWorkbook(w, views, h.engine.KPI()); err != nil {
		h.log().Error("write workbook", slog.Any("error", err))
	}
}

func (h *Handler) serverError(w http.ResponseWriter, action string, err error) {
	h.log().Error(action, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func (h *Handler) log() *slog.Logger {
	if h.logger != nil {
		return h.logger.With(slog.String("component", "portfolio_http"))
	}
	return slog.Default().With(slog.String("component", "portfolio_http"))
}
