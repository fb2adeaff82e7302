package portfoliohttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers portfolio report endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	exportLimiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/dashboard", h.handleDashboard)
	r.Get("/views/{facet}", h.handleView)
	r.Get("/kpi", h.handleKPI)
	r.Post("/selections", h.handleSelect)
	r.Delete("/selections/{facet}", h.handleClearSelection)
	r.Put("/filters", h.handleSetFilter)
	r.Delete("/filters", h.handleResetFilters)
	r.Post("/refresh", h.handleRefresh)
	r.Group(func(gr chi.Router) {
		gr.Use(exportLimiter)
		gr.Get("/export.csv", h.handleCSV)
		gr.Get("/export.xlsx", h.handleExcel)
	})
}
