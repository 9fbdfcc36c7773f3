package handler

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"autosched-insights/internal/config"
	"autosched-insights/internal/dataset"
	"autosched-insights/internal/model"
)

// Sources the dashboard can switch between.
var Sources = []string{"json", "parquet"}

// DatasetCache keeps the grouped datasets in memory and reloads them when
// the files change on disk, so a pipeline run behind the server's back is
// picked up without a restart.
type DatasetCache struct {
	cfg config.Config
	hub *Hub

	mu      sync.RWMutex
	tables  map[string]*dataset.Table
	modTime map[string]time.Time
}

func NewDatasetCache(cfg config.Config, hub *Hub) *DatasetCache {
	return &DatasetCache{
		cfg:     cfg,
		hub:     hub,
		tables:  make(map[string]*dataset.Table),
		modTime: make(map[string]time.Time),
	}
}

// Path returns the grouped artifact backing a source.
func (c *DatasetCache) Path(source string) string {
	return c.cfg.GroupedFile(source)
}

// Get returns the cached table for a source, loading it on first use.
func (c *DatasetCache) Get(source string) (*dataset.Table, error) {
	if !validSource(source) {
		return nil, fmt.Errorf("unknown source %q", source)
	}

	c.mu.RLock()
	t, ok := c.tables[source]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}
	return c.load(source)
}

// Invalidate drops a source so the next Get reloads it from disk.
func (c *DatasetCache) Invalidate(source string) {
	c.mu.Lock()
	delete(c.tables, source)
	delete(c.modTime, source)
	c.mu.Unlock()
}

// SourceInfos describes every loadable source for the selector endpoint.
func (c *DatasetCache) SourceInfos() []model.SourceInfo {
	infos := make([]model.SourceInfo, 0, len(Sources))
	for _, source := range Sources {
		info := model.SourceInfo{Source: source, Path: c.Path(source)}
		if st, err := os.Stat(info.Path); err == nil {
			info.Present = true
			info.ModifiedAt = st.ModTime().UTC()
			if t, err := c.Get(source); err == nil {
				info.Rows = len(t.Rows)
			}
		}
		infos = append(infos, info)
	}
	return infos
}

// Watch polls the grouped files and reloads any that changed, broadcasting
// a reload event so open dashboards refresh. Blocks until ctx is cancelled.
func (c *DatasetCache) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, source := range Sources {
				c.reloadIfChanged(source)
			}
		}
	}
}

func (c *DatasetCache) reloadIfChanged(source string) {
	st, err := os.Stat(c.Path(source))
	if err != nil {
		return
	}

	c.mu.RLock()
	_, loaded := c.tables[source]
	last := c.modTime[source]
	c.mu.RUnlock()
	if !loaded || !st.ModTime().After(last) {
		return
	}

	if _, err := c.load(source); err != nil {
		log.Printf("❌ Failed to reload %s dataset: %v", source, err)
		return
	}
	log.Printf("📊 Reloaded %s dataset after change on disk", source)
	if c.hub != nil {
		c.hub.Broadcast(Event{Event: "reload", Source: source})
	}
}

func (c *DatasetCache) load(source string) (*dataset.Table, error) {
	path := c.Path(source)
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("grouped dataset for %s not found at %s: %w", source, path, err)
	}
	t, err := dataset.ReadCSV(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.tables[source] = t
	c.modTime[source] = st.ModTime()
	c.mu.Unlock()
	return t, nil
}

func validSource(source string) bool {
	for _, s := range Sources {
		if s == source {
			return true
		}
	}
	return false
}
