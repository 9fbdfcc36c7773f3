package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"autosched-insights/internal/analyze"
	"autosched-insights/internal/config"
	"autosched-insights/internal/dataset"
	"autosched-insights/internal/model"
	"autosched-insights/pkg/httpx"
	"autosched-insights/pkg/utils"
)

const defaultPageLimit = 50

// Handler serves the dashboard API over the cached grouped datasets.
type Handler struct {
	Cfg    config.Config
	Cache  *DatasetCache
	Hub    *Hub
	Output *utils.OutputManager
}

func New(cfg config.Config, hub *Hub) *Handler {
	return &Handler{
		Cfg:    cfg,
		Cache:  NewDatasetCache(cfg, hub),
		Hub:    hub,
		Output: utils.NewOutputManager(cfg.ArtifactsDir),
	}
}

// source reads the data-source selector, defaulting to json.
func source(r *http.Request) string {
	if s := r.URL.Query().Get("source"); s != "" {
		return s
	}
	return "json"
}

// filter reads the dashboard filter fields from the query string.
func filter(r *http.Request) model.Filter {
	q := r.URL.Query()
	return model.Filter{
		Frequency:        q.Get("frequency"),
		Provider:         q.Get("provider"),
		Site:             q.Get("site"),
		Customer:         q.Get("customer"),
		Collection:       q.Get("collection"),
		Priority:         q.Get("priority"),
		CustomerSiteCode: q.Get("customer_site_code"),
	}
}

// table loads the selected source and applies the request's filters.
func (h *Handler) table(w http.ResponseWriter, r *http.Request) (*dataset.Table, bool) {
	t, err := h.Cache.Get(source(r))
	if err != nil {
		httpx.RespondError(w, http.StatusNotFound, err)
		return nil, false
	}
	return analyze.ApplyFilter(t, filter(r)), true
}

// GetSources lists the loadable grouped datasets
// @Summary List data sources
// @Description List the grouped datasets the dashboard can display, with their presence and row counts
// @Tags dashboard
// @Produce json
// @Success 200 {array} model.SourceInfo "Available sources"
// @Router /sources [get]
func (h *Handler) GetSources(w http.ResponseWriter, r *http.Request) {
	httpx.RespondJSON(w, http.StatusOK, h.Cache.SourceInfos())
}

// GetSummary returns the dashboard metric cards
// @Summary Summary metrics
// @Description Total configurations, records, and distinct providers/sites/customers for the selected source
// @Tags dashboard
// @Produce json
// @Param source query string false "Data source (json or parquet)" default(json)
// @Success 200 {object} model.Summary "Summary metrics"
// @Failure 404 {object} httpx.ErrorResponse "Grouped dataset not found"
// @Router /summary [get]
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	t, ok := h.table(w, r)
	if !ok {
		return
	}
	httpx.RespondJSON(w, http.StatusOK, analyze.Summarize(source(r), t))
}

// GetFilters returns the filter options for a source
// @Summary Filter options
// @Description Distinct values available for each dashboard filter of the selected source
// @Tags dashboard
// @Produce json
// @Param source query string false "Data source (json or parquet)" default(json)
// @Success 200 {object} model.FilterOptions "Filter options"
// @Failure 404 {object} httpx.ErrorResponse "Grouped dataset not found"
// @Router /filters [get]
func (h *Handler) GetFilters(w http.ResponseWriter, r *http.Request) {
	t, err := h.Cache.Get(source(r))
	if err != nil {
		httpx.RespondError(w, http.StatusNotFound, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, analyze.Options(t))
}

// GetChart returns one chart series
// @Summary Chart series
// @Description One renderable series for the named chart over the filtered source
// @Tags dashboard
// @Produce json
// @Param name path string true "Chart name" Enums(frequency-configs, frequency-records, top-sites, hourly, top-customers, start-times, time-categories)
// @Param source query string false "Data source (json or parquet)" default(json)
// @Success 200 {object} model.ChartSeries "Chart series"
// @Failure 400 {object} httpx.ErrorResponse "Unknown chart"
// @Failure 404 {object} httpx.ErrorResponse "Grouped dataset not found"
// @Router /charts/{name} [get]
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	t, ok := h.table(w, r)
	if !ok {
		return
	}

	var s model.ChartSeries
	name := mux.Vars(r)["name"]
	switch name {
	case "frequency-configs":
		s = analyze.FrequencyConfigSeries(t)
	case "frequency-records":
		s = analyze.FrequencyRecordSeries(t)
	case "top-sites":
		s = analyze.TopSitesSeries(t, 10)
	case "hourly":
		s = analyze.HourlySeries(t)
	case "top-customers":
		s = analyze.TopCustomersSeries(t, 8)
	case "start-times":
		s = analyze.TopStartTimesSeries(t, 10)
	case "time-categories":
		s = analyze.TimeCategorySeries(t)
	default:
		httpx.RespondErrorString(w, http.StatusBadRequest, fmt.Sprintf("unknown chart %q", name))
		return
	}
	httpx.RespondJSON(w, http.StatusOK, s)
}

// GetDurations returns scheduling window statistics
// @Summary Duration statistics
// @Description Min/max/mean scheduling window lengths in minutes over the filtered source
// @Tags dashboard
// @Produce json
// @Param source query string false "Data source (json or parquet)" default(json)
// @Success 200 {object} model.DurationStats "Duration statistics"
// @Failure 404 {object} httpx.ErrorResponse "Grouped dataset not found"
// @Router /durations [get]
func (h *Handler) GetDurations(w http.ResponseWriter, r *http.Request) {
	t, ok := h.table(w, r)
	if !ok {
		return
	}
	httpx.RespondJSON(w, http.StatusOK, analyze.DurationStats(analyze.Durations(t)))
}

// GetHeatmap returns the activity heatmap
// @Summary Activity heatmap
// @Description provider|site|customer rows by hour-of-day activity matrix over the filtered source
// @Tags dashboard
// @Produce json
// @Param source query string false "Data source (json or parquet)" default(json)
// @Success 200 {object} model.Heatmap "Activity heatmap"
// @Failure 404 {object} httpx.ErrorResponse "Grouped dataset not found"
// @Router /heatmap [get]
func (h *Handler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	t, ok := h.table(w, r)
	if !ok {
		return
	}
	httpx.RespondJSON(w, http.StatusOK, analyze.BuildHeatmap(t))
}

// GetConfigurations returns one page of grouped rows
// @Summary Configuration rows
// @Description One page of grouped configuration rows for the dashboard table, ordered by descending count
// @Tags dashboard
// @Produce json
// @Param source query string false "Data source (json or parquet)" default(json)
// @Param offset query int false "Row offset" default(0)
// @Param limit query int false "Page size" default(50)
// @Success 200 {object} model.ConfigurationsPage "Configuration rows"
// @Failure 404 {object} httpx.ErrorResponse "Grouped dataset not found"
// @Router /configurations [get]
func (h *Handler) GetConfigurations(w http.ResponseWriter, r *http.Request) {
	t, ok := h.table(w, r)
	if !ok {
		return
	}

	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", defaultPageLimit)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 500 {
		limit = defaultPageLimit
	}

	page := model.ConfigurationsPage{
		Header: t.Header,
		Total:  len(t.Rows),
		Offset: offset,
		Limit:  limit,
	}
	if offset < len(t.Rows) {
		end := offset + limit
		if end > len(t.Rows) {
			end = len(t.Rows)
		}
		page.Rows = t.Rows[offset:end]
	}
	httpx.RespondJSON(w, http.StatusOK, page)
}

// Health reports service liveness
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string "Service status"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httpx.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
