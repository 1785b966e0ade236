package dash

import (
	"github.com/launchdash/launchdash/internal/chart"
	"github.com/launchdash/launchdash/internal/dataset"
	"github.com/launchdash/launchdash/internal/query"
)

// NewLaunchApp registers the pie and scatter callbacks over ds.
func NewLaunchApp(ds query.Source) *App {
	app := New()

	must(app.Register(SuccessPieChart, []string{SiteDropdown}, func(st State) (chart.Figure, error) {
		return chart.PieFigure(query.SuccessCounts(ds, st.Site)), nil
	}))
	must(app.Register(SuccessPayloadScatterChart, []string{SiteDropdown, PayloadSlider}, func(st State) (chart.Figure, error) {
		rng := st.Range()
		points, err := query.PayloadOutcome(ds, st.Site, rng)
		if err != nil {
			return chart.Figure{}, err
		}
		return chart.ScatterFigure(st.Site, rng, points), nil
	}))

	return app
}

// DefaultState is the state the page loads with: every site and the full
// observed payload range.
func DefaultState(ds *dataset.Dataset) State {
	lo, hi := ds.PayloadBounds()
	return State{Site: query.AllSites, Payload: [2]float64{lo, hi}}
}

// must panics on a registration error. The launch outputs are fixed, so a
// failure here is a programming error.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
