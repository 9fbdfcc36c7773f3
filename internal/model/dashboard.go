package model

import "time"

// Summary holds the dashboard metric cards for one data source.
type Summary struct {
	Source              string `json:"source"`
	TotalConfigurations int    `json:"total_configurations"`
	TotalRecords        int64  `json:"total_records"`
	UniqueProviders     int    `json:"unique_providers"`
	UniqueSites         int    `json:"unique_sites"`
	UniqueCustomers     int    `json:"unique_customers"`
}

/// ChartSeries is one renderable series: parallel label and value slices.
type ChartSeries struct {
	Name   string    `json:"name"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Heatmap is an activity matrix: one row per provider|site|customer, one
// column per hour of day. Values are raw record counts; the client applies
// any visual scaling.
type Heatmap struct {
	RowLabels []string    `json:"row_labels"`
	Hours     []int       `json:"hours"`
	Values    [][]float64 `json:"values"`
}

// DurationStats summarizes scheduling window lengths in minutes.
type DurationStats struct {
	Count       int     `json:"count"`
	MinMinutes  float64 `json:"min_minutes"`
	MaxMinutes  float64 `json:"max_minutes"`
	MeanMinutes float64 `json:"mean_minutes"`
}

// FilterOptions lists the distinct values available for each dashboard
// filter, computed from the active data source.
type FilterOptions struct {
	Frequencies       []string `json:"frequencies"`
	Providers         []string `json:"providers"`
	Sites             []string `json:"sites"`
	Customers         []string `json:"customers"`
	Collections       []string `json:"collections"`
	Priorities        []string `json:"priorities"`
	CustomerSiteCodes []string `json:"customer_site_codes"`
}

// Filter narrows a dataset to rows matching every non-empty field.
type Filter struct {
	Frequency        string
	Provider         string
	Site             string
	Customer         string
	Collection       string
	Priority         string
	CustomerSiteCode string
}

// IsZero reports whether no filter field is set.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// SourceInfo describes one loadable grouped dataset.
type SourceInfo struct {
	Source     string    `json:"source"`
	Path       string    `json:"path"`
	Present    bool      `json:"present"`
	Rows       int       `json:"rows"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
}

// ConfigurationsPage is one page of grouped rows for the dashboard table.
type ConfigurationsPage struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
	Total  int        `json:"total"`
	Offset int        `json:"offset"`
	Limit  int        `json:"limit"`
}
