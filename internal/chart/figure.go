// Package chart turns query results into figures and renders them as SVG or
// PNG with go-chart.
package chart

import (
	"fmt"

	"github.com/launchdash/launchdash/internal/query"
)

// Figure kinds.
const (
	KindPie     = "pie"
	KindScatter = "scatter"
)

// Palette assigns colors to pie slices and scatter series, in order.
var Palette = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// Figure is a render-ready chart description. Pie figures carry Slices,
// scatter figures carry Series.
type Figure struct {
	Kind   string        `json:"kind"`
	Title  string        `json:"title"`
	XAxis  string        `json:"x_axis,omitempty"`
	YAxis  string        `json:"y_axis,omitempty"`
	XRange *query.Range  `json:"x_range,omitempty"`
	Slices []query.Slice `json:"slices,omitempty"`
	Colors []string      `json:"colors,omitempty"`
	Series []Series      `json:"series,omitempty"`
}

// Series is one colored group of scatter points.
type Series struct {
	Name   string    `json:"name"`
	Color  string    `json:"color"`
	Points []XYPoint `json:"points"`
}

// XYPoint is a single plotted point.
type XYPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Empty reports whether the figure has nothing to draw.
func (f Figure) Empty() bool {
	switch f.Kind {
	case KindPie:
		for _, s := range f.Slices {
			if s.Count > 0 {
				return false
			}
		}
		return true
	default:
		for _, s := range f.Series {
			if len(s.Points) > 0 {
				return false
			}
		}
		return true
	}
}

// PieTitle returns the pie chart title for selector.
func PieTitle(selector string) string {
	if selector == query.AllSites {
		return "Total Success Launches By Site"
	}
	return fmt.Sprintf("Success and Failed Launches for Site %s", selector)
}

// ScatterTitle returns the scatter chart title for selector.
func ScatterTitle(selector string) string {
	if selector == query.AllSites {
		return "Correlation between Payload and Success for all Sites"
	}
	return fmt.Sprintf("Correlation between Payload and Success for %s", selector)
}

// PieFigure builds the success pie from an aggregation.
func PieFigure(agg query.Aggregation) Figure {
	f := Figure{
		Kind:   KindPie,
		Title:  PieTitle(agg.Selector),
		Slices: agg.Slices,
		Colors: colors(len(agg.Slices)),
	}
	if f.Slices == nil {
		f.Slices = []query.Slice{}
	}
	return f
}

// ScatterFigure builds the payload/outcome scatter. Points are grouped into one
// series per booster version category, in first-seen order. rng is the payload
// window the points were selected with and becomes the x-axis range.
func ScatterFigure(selector string, rng query.Range, points []query.Point) Figure {
	index := make(map[string]int)
	series := []Series{}
	for _, p := range points {
		i, ok := index[p.BoosterCategory]
		if !ok {
			i = len(series)
			index[p.BoosterCategory] = i
			series = append(series, Series{
				Name:  p.BoosterCategory,
				Color: Palette[i%len(Palette)],
			})
		}
		series[i].Points = append(series[i].Points, XYPoint{X: p.PayloadKg, Y: float64(p.Class)})
	}

	return Figure{
		Kind:   KindScatter,
		Title:  ScatterTitle(selector),
		XAxis:  "Payload Mass (kg)",
		YAxis:  "class",
		XRange: &rng,
		Series: series,
	}
}

func colors(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = Palette[i%len(Palette)]
	}
	return out
}
