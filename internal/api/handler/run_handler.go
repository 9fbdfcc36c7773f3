package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"

	"autosched-insights/internal/model"
	"autosched-insights/internal/pipeline"
	"autosched-insights/internal/store"
	"autosched-insights/pkg/httpx"
)

// Refresh reruns combine and group for a source
// @Summary Refresh a data source
// @Description Start an asynchronous combine+group run over the already-fetched files of a source, returning the run ID
// @Tags runs
// @Produce json
// @Param source query string false "Data source (json or parquet)" default(json)
// @Success 202 {object} map[string]string "Run accepted"
// @Failure 500 {object} httpx.ErrorResponse "Failed to record run"
// @Router /refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	src := source(r)
	run, err := pipeline.NewRun(model.RunKindRefresh, src)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}

	go func() {
		err := pipeline.Execute(context.Background(), h.Cfg, run)
		status := model.RunStatusCompleted
		if err != nil {
			status = model.RunStatusFailed
		} else {
			h.Cache.Invalidate(src)
		}
		h.Hub.Broadcast(Event{Event: "run", RunID: run.ID, Source: src, Status: status})
	}()

	httpx.RespondJSON(w, http.StatusAccepted, map[string]string{
		"run_id": run.ID,
		"source": src,
		"status": run.Status,
	})
}

// ListRuns returns recent pipeline runs
// @Summary List runs
// @Description Most recent pipeline runs, newest first
// @Tags runs
// @Produce json
// @Param limit query int false "Maximum runs returned" default(50)
// @Success 200 {array} model.Run "Recent runs"
// @Failure 500 {object} httpx.ErrorResponse "Failed to read runs"
// @Router /runs [get]
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := store.ListRuns(queryInt(r, "limit", 50))
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	httpx.RespondJSON(w, http.StatusOK, runs)
}

// GetRun returns one run with its stages
// @Summary Get run
// @Description One pipeline run with its per-stage status and counters
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} model.Run "Run details"
// @Failure 404 {object} httpx.ErrorResponse "Run not found"
// @Router /runs/{id} [get]
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := store.GetRun(mux.Vars(r)["id"])
	if err != nil {
		httpx.RespondErrorString(w, http.StatusNotFound, "run not found")
		return
	}
	httpx.RespondJSON(w, http.StatusOK, run)
}

// Artifact is one downloadable output file.
type Artifact struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	SizeBytes  int64     `json:"size_bytes"`
	URL        string    `json:"url"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ListArtifacts returns the generated output files
// @Summary List artifacts
// @Description Generated chart images and reports available for download
// @Tags artifacts
// @Produce json
// @Success 200 {array} handler.Artifact "Artifacts"
// @Router /artifacts [get]
func (h *Handler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	artifacts := []Artifact{}
	entries, err := os.ReadDir(h.Output.BaseOutputDir)
	if err != nil {
		// No artifacts generated yet is an empty list, not an error.
		httpx.RespondJSON(w, http.StatusOK, artifacts)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		artifacts = append(artifacts, Artifact{
			Name:       entry.Name(),
			Type:       h.Output.GetFileType(entry.Name()),
			SizeBytes:  info.Size(),
			URL:        h.Output.GetDownloadURL(entry.Name()),
			ModifiedAt: info.ModTime().UTC(),
		})
	}
	httpx.RespondJSON(w, http.StatusOK, artifacts)
}

// DownloadArtifact serves one output file
// @Summary Download artifact
// @Tags artifacts
// @Produce octet-stream
// @Param name path string true "Artifact file name"
// @Success 200 {file} file "Artifact contents"
// @Failure 404 {object} httpx.ErrorResponse "Artifact not found"
// @Router /artifacts/{name} [get]
func (h *Handler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(mux.Vars(r)["name"])
	path := filepath.Join(h.Output.BaseOutputDir, name)
	if _, err := os.Stat(path); err != nil {
		httpx.RespondErrorString(w, http.StatusNotFound, "artifact not found")
		return
	}
	http.ServeFile(w, r, path)
}
