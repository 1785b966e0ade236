package ui

import (
	"math"
	"strconv"

	"github.com/launchdash/launchdash/internal/dash"
	"github.com/launchdash/launchdash/internal/query"
)

// maxMarks bounds the number of labelled slider ticks.
const maxMarks = 50

// Option is one dropdown entry.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Dropdown is the site selector.
type Dropdown struct {
	ID          string   `json:"id"`
	Options     []Option `json:"options"`
	Value       string   `json:"value"`
	Placeholder string   `json:"placeholder"`
}

// Mark is a labelled slider tick.
type Mark struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Slider is the payload range selector.
type Slider struct {
	ID    string     `json:"id"`
	Min   float64    `json:"min"`
	Max   float64    `json:"max"`
	Step  float64    `json:"step"`
	Value [2]float64 `json:"value"`
	Marks []Mark     `json:"marks"`
}

// NewDropdown lists "All Sites" followed by every site, defaulting to all.
func NewDropdown(sites []string) Dropdown {
	opts := make([]Option, 0, len(sites)+1)
	opts = append(opts, Option{Label: "All Sites", Value: query.AllSites})
	for _, s := range sites {
		opts = append(opts, Option{Label: s, Value: s})
	}
	return Dropdown{
		ID:          dash.SiteDropdown,
		Options:     opts,
		Value:       query.AllSites,
		Placeholder: "Select a Launch Site here",
	}
}

// NewSlider builds a slider whose track spans [lo, hi] rounded outward to
// step, with the handles on lo and hi. A non-positive step falls back to 1000.
func NewSlider(lo, hi, step float64) Slider {
	if step <= 0 || math.IsNaN(step) {
		step = 1000
	}
	start := math.Floor(lo/step) * step
	end := math.Ceil(hi/step) * step
	if end <= start {
		end = start + step
	}

	every := step
	if n := (end - start) / step; n > maxMarks {
		every = step * math.Ceil(n/maxMarks)
	}
	var marks []Mark
	for i := 0; ; i++ {
		v := start + float64(i)*every
		if v > end {
			break
		}
		marks = append(marks, Mark{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)})
	}

	return Slider{
		ID:    dash.PayloadSlider,
		Min:   start,
		Max:   end,
		Step:  step,
		Value: [2]float64{lo, hi},
		Marks: marks,
	}
}
