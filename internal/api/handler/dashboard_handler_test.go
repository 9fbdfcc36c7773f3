package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"autosched-insights/internal/config"
	"autosched-insights/internal/model"
	"autosched-insights/pkg/httpx"
)

const groupedFixture = `collection_frequency,provider,site,siteHierarchy_customer,customerCollection_earliestStartTime,customerCollection_expectedDeliveryTime,row_count
Daily,AA,JFK,acme,500,900,10
Daily,AA,LAX,acme,2300,100,5
Adhoc,BA,LHR,globex,1730,1930,3
`

// newTestServer serves the dashboard API over a grouped dataset written
// into a temp dir.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Load()
	cfg.CombinedJSONFile = filepath.Join(dir, "combined_all_data.csv")
	cfg.CombinedParquetFile = filepath.Join(dir, "combined_all_parquet_data.csv")
	cfg.ArtifactsDir = filepath.Join(dir, "artifacts")

	require.NoError(t, os.WriteFile(cfg.GroupedFile("json"), []byte(groupedFixture), 0644))

	h := New(cfg, nil)
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	api.HandleFunc("/sources", h.GetSources).Methods(http.MethodGet)
	api.HandleFunc("/summary", h.GetSummary).Methods(http.MethodGet)
	api.HandleFunc("/filters", h.GetFilters).Methods(http.MethodGet)
	api.HandleFunc("/charts/{name}", h.GetChart).Methods(http.MethodGet)
	api.HandleFunc("/durations", h.GetDurations).Methods(http.MethodGet)
	api.HandleFunc("/heatmap", h.GetHeatmap).Methods(http.MethodGet)
	api.HandleFunc("/configurations", h.GetConfigurations).Methods(http.MethodGet)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, srv *httptest.Server, path string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	var body map[string]string
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/v1/health", &body))
	require.Equal(t, "healthy", body["status"])
}

func TestGetSummary(t *testing.T) {
	srv := newTestServer(t)
	var s model.Summary
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/v1/summary", &s))
	require.Equal(t, "json", s.Source)
	require.Equal(t, 3, s.TotalConfigurations)
	require.Equal(t, int64(18), s.TotalRecords)
	require.Equal(t, 2, s.UniqueProviders)
}

func TestGetSummaryFiltered(t *testing.T) {
	srv := newTestServer(t)
	var s model.Summary
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/v1/summary?provider=AA", &s))
	require.Equal(t, 2, s.TotalConfigurations)
	require.Equal(t, int64(15), s.TotalRecords)
}

func TestGetSummaryMissingDataset(t *testing.T) {
	srv := newTestServer(t)
	var e httpx.ErrorResponse
	require.Equal(t, http.StatusNotFound, getJSON(t, srv, "/api/v1/summary?source=parquet", &e))
	require.Equal(t, "Not Found", e.Error)
}

func TestGetSummaryUnknownSource(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusNotFound, getJSON(t, srv, "/api/v1/summary?source=avro", nil))
}

func TestGetSources(t *testing.T) {
	srv := newTestServer(t)
	var infos []model.SourceInfo
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/v1/sources", &infos))
	require.Len(t, infos, 2)
	require.Equal(t, "json", infos[0].Source)
	require.True(t, infos[0].Present)
	require.Equal(t, 3, infos[0].Rows)
	require.Equal(t, "parquet", infos[1].Source)
	require.False(t, infos[1].Present)
}

func TestGetFilters(t *testing.T) {
	srv := newTestServer(t)
	var opts model.FilterOptions
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/v1/filters", &opts))
	require.Equal(t, []string{"Adhoc", "Daily"}, opts.Frequencies)
	require.Equal(t, []string{"AA", "BA"}, opts.Providers)
	require.Equal(t, []string{"JFK", "LAX", "LHR"}, opts.Sites)
}

func TestGetChart(t *testing.T) {
	srv := newTestServer(t)
	var s model.ChartSeries
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/v1/charts/frequency-records", &s))
	require.Equal(t, []string{"Adhoc", "Daily"}, s.Labels)
	require.Equal(t, []float64{3, 15}, s.Values)
}

func TestGetChartUnknownName(t *testing.T) {
	srv := newTestServer(t)
	var e httpx.ErrorResponse
	require.Equal(t, http.StatusBadRequest, getJSON(t, srv, "/api/v1/charts/sparkline", &e))
	require.Contains(t, e.Message, "sparkline")
}

func TestGetDurations(t *testing.T) {
	srv := newTestServer(t)
	var d model.DurationStats
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/v1/durations", &d))
	require.Equal(t, 3, d.Count)
	require.Equal(t, 120.0, d.MinMinutes)
	require.Equal(t, 240.0, d.MaxMinutes)
}

func TestGetHeatmap(t *testing.T) {
	srv := newTestServer(t)
	var hm model.Heatmap
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/v1/heatmap", &hm))
	require.Len(t, hm.Hours, 24)
	require.Len(t, hm.RowLabels, 3)
	require.Contains(t, hm.RowLabels, "AA|JFK|acme")
}

func TestGetConfigurationsPaging(t *testing.T) {
	srv := newTestServer(t)

	var page model.ConfigurationsPage
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/v1/configurations?offset=1&limit=1", &page))
	require.Equal(t, 3, page.Total)
	require.Equal(t, 1, page.Offset)
	require.Equal(t, 1, page.Limit)
	require.Len(t, page.Rows, 1)
	require.Equal(t, "LAX", page.Rows[0][2])

	// Offset past the end returns an empty page, not an error.
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/v1/configurations?offset=10", &page))
	require.Empty(t, page.Rows)
	require.Equal(t, 3, page.Total)
}

func TestCacheInvalidateReloads(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Load()
	cfg.CombinedJSONFile = filepath.Join(dir, "combined_all_data.csv")
	cfg.CombinedParquetFile = filepath.Join(dir, "combined_all_parquet_data.csv")

	path := cfg.GroupedFile("json")
	require.NoError(t, os.WriteFile(path, []byte(groupedFixture), 0644))

	cache := NewDatasetCache(cfg, nil)
	tb, err := cache.Get("json")
	require.NoError(t, err)
	require.Len(t, tb.Rows, 3)

	// A rewrite behind the cache's back is invisible until invalidation.
	shorter := "provider,site,row_count\nAA,JFK,1\n"
	require.NoError(t, os.WriteFile(path, []byte(shorter), 0644))
	tb, err = cache.Get("json")
	require.NoError(t, err)
	require.Len(t, tb.Rows, 3)

	cache.Invalidate("json")
	tb, err = cache.Get("json")
	require.NoError(t, err)
	require.Len(t, tb.Rows, 1)
}
