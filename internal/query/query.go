// Package query derives the two chart views of the launch dataset: success
// counts for the pie chart and payload/outcome points for the scatter chart.
//
// Both queries are pure functions of (dataset, inputs). An unknown site is not
// an error; it simply matches nothing.
package query

import (
	"errors"
	"fmt"
	"math"

	"github.com/launchdash/launchdash/internal/dataset"
)

// AllSites is the selector value that matches every launch site.
const AllSites = "ALL"

// Slice labels used when a single site is selected.
const (
	LabelSuccess = "success"
	LabelFailure = "failure"
)

// ErrInvalidRange matches any *InvalidRangeError via errors.Is.
var ErrInvalidRange = errors.New("invalid payload range")

// Source is the read-only view of the dataset the queries need.
type Source interface {
	Filter(keep func(dataset.LaunchRecord) bool) []dataset.LaunchRecord
	Sites() []string
}

// Slice is one labelled count of an aggregation.
type Slice struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Aggregation is the result of SuccessCounts. Slices are ordered: sites in
// first-seen order for AllSites, success before failure otherwise.
type Aggregation struct {
	Selector string  `json:"selector"`
	Slices   []Slice `json:"slices"`
}

// Map returns the aggregation as label → count.
func (a Aggregation) Map() map[string]int {
	m := make(map[string]int, len(a.Slices))
	for _, s := range a.Slices {
		m[s.Label] = s.Count
	}
	return m
}

// Total returns the sum of all slice counts.
func (a Aggregation) Total() int {
	n := 0
	for _, s := range a.Slices {
		n += s.Count
	}
	return n
}

// Empty reports whether the aggregation has no slices.
func (a Aggregation) Empty() bool { return len(a.Slices) == 0 }

// SuccessCounts aggregates launch outcomes for the pie chart.
//
// For AllSites it returns the number of successful launches per site; every
// site appears, including those without a success. For a single site it
// returns the success and failure counts of that site's launches. A site with
// no launches yields an empty aggregation.
func SuccessCounts(src Source, selector string) Aggregation {
	agg := Aggregation{Selector: selector, Slices: []Slice{}}

	if selector == AllSites {
		counts := make(map[string]int)
		for _, r := range src.Filter(dataset.LaunchRecord.Success) {
			counts[r.Site]++
		}
		for _, site := range src.Sites() {
			agg.Slices = append(agg.Slices, Slice{Label: site, Count: counts[site]})
		}
		return agg
	}

	matched := src.Filter(func(r dataset.LaunchRecord) bool { return r.Site == selector })
	if len(matched) == 0 {
		return agg
	}

	var success, failure int
	for _, r := range matched {
		if r.Success() {
			success++
		} else {
			failure++
		}
	}
	agg.Slices = append(agg.Slices,
		Slice{Label: LabelSuccess, Count: success},
		Slice{Label: LabelFailure, Count: failure},
	)
	return agg
}

// Range is an inclusive payload mass interval in kilograms.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether kg lies within the range, bounds included.
func (r Range) Contains(kg float64) bool {
	return kg >= r.Low && kg <= r.High
}

// Validate returns an *InvalidRangeError if either bound is NaN or infinite,
// or if Low > High. Finite bounds outside the dataset's payload range are valid.
func (r Range) Validate() error {
	switch {
	case math.IsNaN(r.Low) || math.IsNaN(r.High):
		return &InvalidRangeError{Range: r, Reason: "bound is not a number"}
	case math.IsInf(r.Low, 0) || math.IsInf(r.High, 0):
		return &InvalidRangeError{Range: r, Reason: "bound is not finite"}
	case r.Low > r.High:
		return &InvalidRangeError{Range: r, Reason: "low exceeds high"}
	}
	return nil
}

// InvalidRangeError reports a payload range the scatter query refuses.
type InvalidRangeError struct {
	Range  Range
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid payload range [%g, %g]: %s", e.Range.Low, e.Range.High, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidRange) true for every InvalidRangeError.
func (e *InvalidRangeError) Is(target error) bool { return target == ErrInvalidRange }

// Point is one launch plotted on the scatter chart.
type Point struct {
	PayloadKg       float64 `json:"payload_kg"`
	Class           int     `json:"class"`
	BoosterCategory string  `json:"booster_category"`
	Site            string  `json:"site"`
}

// PayloadOutcome returns the launches whose payload lies within rng and, unless
// selector is AllSites, that were launched from selector. Source order is
// preserved. An empty result is valid.
func PayloadOutcome(src Source, selector string, rng Range) ([]Point, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	matched := src.Filter(func(r dataset.LaunchRecord) bool {
		if !rng.Contains(r.PayloadKg) {
			return false
		}
		return selector == AllSites || r.Site == selector
	})

	points := make([]Point, 0, len(matched))
	for _, r := range matched {
		points = append(points, Point{
			PayloadKg:       r.PayloadKg,
			Class:           r.Class,
			BoosterCategory: r.BoosterCategory,
			Site:            r.Site,
		})
	}
	return points, nil
}

// FullRange returns the range spanning every payload in ds.
func FullRange(ds *dataset.Dataset) Range {
	lo, hi := ds.PayloadBounds()
	return Range{Low: lo, High: hi}
}
