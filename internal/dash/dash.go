// Package dash wires dashboard controls to chart outputs.
//
// A Callback names one output component and the input components it reads.
// When an input changes, Trigger re-evaluates every callback that lists it;
// Initial evaluates them all. Callbacks are plain functions of the current
// input State and keep nothing between calls.
package dash

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/launchdash/launchdash/internal/chart"
	"github.com/launchdash/launchdash/internal/query"
)

// Component IDs used by the layout and the callback registry.
const (
	SiteDropdown               = "site-dropdown"
	PayloadSlider              = "payload-slider"
	SuccessPieChart            = "success-pie-chart"
	SuccessPayloadScatterChart = "success-payload-scatter-chart"
)

var (
	// ErrUnknownInput is returned when a state change names an input no
	// component provides.
	ErrUnknownInput = errors.New("unknown input component")

	// ErrDuplicateOutput is returned by Register when an output already has a
	// callback.
	ErrDuplicateOutput = errors.New("output already registered")
)

// State is the current value of every input component.
type State struct {
	Site    string     `json:"site-dropdown"`
	Payload [2]float64 `json:"payload-slider"`
}

// Range returns the payload slider value as a query.Range.
func (s State) Range() query.Range {
	return query.Range{Low: s.Payload[0], High: s.Payload[1]}
}

// Set updates the input named id from its JSON value.
func (s *State) Set(id string, raw json.RawMessage) error {
	switch id {
	case SiteDropdown:
		var site string
		if err := json.Unmarshal(raw, &site); err != nil {
			return fmt.Errorf("dash: %s: %w", id, err)
		}
		s.Site = site
	case PayloadSlider:
		var v []float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("dash: %s: %w", id, err)
		}
		if len(v) != 2 {
			return fmt.Errorf("dash: %s: want [low, high], got %d values", id, len(v))
		}
		s.Payload = [2]float64{v[0], v[1]}
	default:
		return fmt.Errorf("dash: %w %q", ErrUnknownInput, id)
	}
	return nil
}

// Func computes an output figure from the input state.
type Func func(State) (chart.Figure, error)

// Callback binds a function to its output and input components.
type Callback struct {
	Output string
	Inputs []string
	Fn     Func
}

// App is an ordered registry of callbacks.
type App struct {
	callbacks []Callback
}

// New returns an App without callbacks.
func New() *App {
	return &App{}
}

// Register adds a callback producing output from inputs.
func (a *App) Register(output string, inputs []string, fn Func) error {
	for _, cb := range a.callbacks {
		if cb.Output == output {
			return fmt.Errorf("dash: %w: %q", ErrDuplicateOutput, output)
		}
	}
	a.callbacks = append(a.callbacks, Callback{
		Output: output,
		Inputs: append([]string(nil), inputs...),
		Fn:     fn,
	})
	return nil
}

// Outputs returns the registered output IDs in registration order.
func (a *App) Outputs() []string {
	out := make([]string, len(a.callbacks))
	for i, cb := range a.callbacks {
		out[i] = cb.Output
	}
	return out
}

// Inputs returns every input ID any callback listens to, deduplicated, in
// registration order.
func (a *App) Inputs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, cb := range a.callbacks {
		for _, in := range cb.Inputs {
			if !seen[in] {
				seen[in] = true
				out = append(out, in)
			}
		}
	}
	return out
}

// Trigger evaluates the callbacks that depend on the changed input. The first
// callback error aborts evaluation.
func (a *App) Trigger(changed string, st State) (map[string]chart.Figure, error) {
	known := false
	out := make(map[string]chart.Figure)
	for _, cb := range a.callbacks {
		if !listens(cb, changed) {
			continue
		}
		known = true
		fig, err := cb.Fn(st)
		if err != nil {
			return nil, fmt.Errorf("dash: callback %s: %w", cb.Output, err)
		}
		out[cb.Output] = fig
	}
	if !known {
		return nil, fmt.Errorf("dash: %w %q", ErrUnknownInput, changed)
	}
	return out, nil
}

// Initial evaluates every callback, as on first page load.
func (a *App) Initial(st State) (map[string]chart.Figure, error) {
	out := make(map[string]chart.Figure, len(a.callbacks))
	for _, cb := range a.callbacks {
		fig, err := cb.Fn(st)
		if err != nil {
			return nil, fmt.Errorf("dash: callback %s: %w", cb.Output, err)
		}
		out[cb.Output] = fig
	}
	return out, nil
}

func listens(cb Callback, input string) bool {
	for _, in := range cb.Inputs {
		if in == input {
			return true
		}
	}
	return false
}
