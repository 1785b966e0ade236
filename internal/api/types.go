package api

import (
	"github.com/launchdash/launchdash/internal/chart"
	"github.com/launchdash/launchdash/internal/query"
	"github.com/launchdash/launchdash/internal/ui"
)

// SitesResponse is the payload for GET /api/v1/sites.
type SitesResponse struct {
	Sites    []string    `json:"sites"`
	Bounds   query.Range `json:"payload_bounds"`
	Records  int         `json:"record_count"`
	Dropdown ui.Dropdown `json:"dropdown"`
	Slider   ui.Slider   `json:"slider"`
}

// PieResponse is the payload for GET /api/v1/pie.
type PieResponse struct {
	Selector string         `json:"selector"`
	Counts   map[string]int `json:"counts"`
	Total    int            `json:"total"`
	Figure   chart.Figure   `json:"figure"`
}

// ScatterResponse is the payload for GET /api/v1/scatter.
type ScatterResponse struct {
	Selector string        `json:"selector"`
	Range    query.Range   `json:"range"`
	Points   []query.Point `json:"points"`
	Figure   chart.Figure  `json:"figure"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
