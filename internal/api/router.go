package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	_ "autosched-insights/docs"
	"autosched-insights/internal/api/handler"
	"autosched-insights/pkg/router"
)

// RegisterRoutes wires the dashboard API, Swagger UI and static dashboard
// page onto the router.
func RegisterRoutes(r *router.Router, h *handler.Handler, webDir string) {
	r.GET("/api/v1/sources", h.GetSources)
	r.GET("/api/v1/summary", h.GetSummary)
	r.GET("/api/v1/filters", h.GetFilters)
	r.GET("/api/v1/charts/{name}", h.GetChart)
	r.GET("/api/v1/durations", h.GetDurations)
	r.GET("/api/v1/heatmap", h.GetHeatmap)
	r.GET("/api/v1/configurations", h.GetConfigurations)
	r.POST("/api/v1/refresh", h.Refresh)
	r.GET("/api/v1/runs", h.ListRuns)
	r.GET("/api/v1/runs/{id}", h.GetRun)
	r.GET("/api/v1/artifacts", h.ListArtifacts)
	r.GET("/api/v1/artifacts/{name}", h.DownloadArtifact)
	r.GET("/api/v1/health", h.Health)
	r.GET("/api/v1/ws", h.Hub.HandleWebSocket)

	r.Mux().PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	if webDir != "" {
		r.Static("/", webDir)
	}
}
