package query

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/launchdash/launchdash/internal/dataset"
)

// exampleDataset is the three-record dataset used throughout these tests.
func exampleDataset() *dataset.Dataset {
	return dataset.New([]dataset.LaunchRecord{
		{Site: "A", PayloadKg: 500, Class: 1, BoosterCategory: "v1.0"},
		{Site: "A", PayloadKg: 1500, Class: 0, BoosterCategory: "FT"},
		{Site: "B", PayloadKg: 2000, Class: 1, BoosterCategory: "FT"},
	})
}

func widerDataset() *dataset.Dataset {
	return dataset.New([]dataset.LaunchRecord{
		{Site: "CCAFS LC-40", PayloadKg: 0, Class: 0, BoosterCategory: "v1.0"},
		{Site: "CCAFS LC-40", PayloadKg: 525, Class: 0, BoosterCategory: "v1.0"},
		{Site: "VAFB SLC-4E", PayloadKg: 500, Class: 0, BoosterCategory: "v1.1"},
		{Site: "KSC LC-39A", PayloadKg: 2490, Class: 1, BoosterCategory: "FT"},
		{Site: "CCAFS SLC-40", PayloadKg: 9600, Class: 1, BoosterCategory: "B5"},
		{Site: "KSC LC-39A", PayloadKg: 5300, Class: 1, BoosterCategory: "B4"},
		{Site: "KSC LC-39A", PayloadKg: 3600, Class: 0, BoosterCategory: "FT"},
	})
}

// --- SuccessCounts ----------------------------------------------------------

func TestSuccessCounts_AllSites(t *testing.T) {
	got := SuccessCounts(exampleDataset(), AllSites).Map()
	want := map[string]int{"A": 1, "B": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SuccessCounts(ALL): got %v, want %v", got, want)
	}
}

func TestSuccessCounts_SingleSite(t *testing.T) {
	got := SuccessCounts(exampleDataset(), "A").Map()
	want := map[string]int{LabelSuccess: 1, LabelFailure: 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SuccessCounts(A): got %v, want %v", got, want)
	}
}

func TestSuccessCounts_SingleSiteOrder(t *testing.T) {
	agg := SuccessCounts(exampleDataset(), "B")
	if len(agg.Slices) != 2 {
		t.Fatalf("slices: got %d, want 2", len(agg.Slices))
	}
	if agg.Slices[0].Label != LabelSuccess || agg.Slices[1].Label != LabelFailure {
		t.Errorf("labels: got %q, %q", agg.Slices[0].Label, agg.Slices[1].Label)
	}
	if agg.Slices[0].Count != 1 || agg.Slices[1].Count != 0 {
		t.Errorf("counts: got %d, %d, want 1, 0", agg.Slices[0].Count, agg.Slices[1].Count)
	}
}

func TestSuccessCounts_UnknownSite(t *testing.T) {
	agg := SuccessCounts(exampleDataset(), "Z")
	if !agg.Empty() {
		t.Errorf("SuccessCounts(Z): got %v, want empty", agg.Slices)
	}
	if agg.Slices == nil {
		t.Error("Slices: got nil, want empty slice")
	}
}

func TestSuccessCounts_AllSitesKeysMatchSites(t *testing.T) {
	ds := widerDataset()
	agg := SuccessCounts(ds, AllSites)

	sites := ds.Sites()
	if len(agg.Slices) != len(sites) {
		t.Fatalf("slices: got %d, want %d", len(agg.Slices), len(sites))
	}
	for i, s := range sites {
		if agg.Slices[i].Label != s {
			t.Errorf("slice %d: got %q, want %q", i, agg.Slices[i].Label, s)
		}
	}
	// Sites with no successes are still present with a zero count.
	if got := agg.Map()["VAFB SLC-4E"]; got != 0 {
		t.Errorf("VAFB SLC-4E: got %d, want 0", got)
	}
	if got := agg.Map()["KSC LC-39A"]; got != 2 {
		t.Errorf("KSC LC-39A: got %d, want 2", got)
	}
}

func TestSuccessCounts_SumMatchesSiteRecords(t *testing.T) {
	ds := widerDataset()
	for _, site := range ds.Sites() {
		n := len(ds.Filter(func(r dataset.LaunchRecord) bool { return r.Site == site }))
		if got := SuccessCounts(ds, site).Total(); got != n {
			t.Errorf("%s: total %d, want %d", site, got, n)
		}
	}
}

func TestSuccessCounts_AllSitesSumIsSuccesses(t *testing.T) {
	ds := widerDataset()
	n := len(ds.Filter(dataset.LaunchRecord.Success))
	if got := SuccessCounts(ds, AllSites).Total(); got != n {
		t.Errorf("ALL total: got %d, want %d", got, n)
	}
}

func TestSuccessCounts_EmptyDataset(t *testing.T) {
	agg := SuccessCounts(dataset.New(nil), AllSites)
	if !agg.Empty() {
		t.Errorf("got %v, want empty", agg.Slices)
	}
}

func TestSuccessCounts_Idempotent(t *testing.T) {
	ds := widerDataset()
	for _, sel := range append(ds.Sites(), AllSites, "Z") {
		a := SuccessCounts(ds, sel)
		b := SuccessCounts(ds, sel)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s: results differ: %v vs %v", sel, a, b)
		}
	}
}

// --- PayloadOutcome ---------------------------------------------------------

func TestPayloadOutcome_Examples(t *testing.T) {
	ds := exampleDataset()

	pts, err := PayloadOutcome(ds, AllSites, Range{Low: 0, High: 1000})
	if err != nil {
		t.Fatalf("PayloadOutcome: %v", err)
	}
	want := []Point{{PayloadKg: 500, Class: 1, BoosterCategory: "v1.0", Site: "A"}}
	if !reflect.DeepEqual(pts, want) {
		t.Errorf("ALL [0,1000]: got %+v, want %+v", pts, want)
	}

	pts, err = PayloadOutcome(ds, "B", Range{Low: 0, High: 10000})
	if err != nil {
		t.Fatalf("PayloadOutcome: %v", err)
	}
	want = []Point{{PayloadKg: 2000, Class: 1, BoosterCategory: "FT", Site: "B"}}
	if !reflect.DeepEqual(pts, want) {
		t.Errorf("B [0,10000]: got %+v, want %+v", pts, want)
	}
}

func TestPayloadOutcome_UnknownSite(t *testing.T) {
	pts, err := PayloadOutcome(exampleDataset(), "Z", Range{Low: 0, High: 10000})
	if err != nil {
		t.Fatalf("PayloadOutcome: %v", err)
	}
	if len(pts) != 0 {
		t.Errorf("got %d points, want 0", len(pts))
	}
	if pts == nil {
		t.Error("points: got nil, want empty slice")
	}
}

func TestPayloadOutcome_InclusiveBounds(t *testing.T) {
	pts, err := PayloadOutcome(exampleDataset(), AllSites, Range{Low: 500, High: 1500})
	if err != nil {
		t.Fatalf("PayloadOutcome: %v", err)
	}
	if len(pts) != 2 {
		t.Errorf("got %d points, want 2", len(pts))
	}
}

func TestPayloadOutcome_FullRangeIsIdentity(t *testing.T) {
	ds := widerDataset()
	pts, err := PayloadOutcome(ds, AllSites, FullRange(ds))
	if err != nil {
		t.Fatalf("PayloadOutcome: %v", err)
	}
	recs := ds.Records()
	if len(pts) != len(recs) {
		t.Fatalf("got %d points, want %d", len(pts), len(recs))
	}
	for i, r := range recs {
		if pts[i].PayloadKg != r.PayloadKg || pts[i].Site != r.Site {
			t.Errorf("point %d: got %+v, want record %+v", i, pts[i], r)
		}
	}
}

func TestPayloadOutcome_MonotonicNarrowing(t *testing.T) {
	ds := widerDataset()
	full := FullRange(ds)
	ranges := []Range{{0, 0}, {0, 1000}, {500, 600}, {2000, 6000}, {9600, 9600}, {100, 9000}}

	for _, sel := range append(ds.Sites(), AllSites) {
		all, err := PayloadOutcome(ds, sel, full)
		if err != nil {
			t.Fatalf("%s full: %v", sel, err)
		}
		superset := make(map[Point]int)
		for _, p := range all {
			superset[p]++
		}
		for _, rng := range ranges {
			sub, err := PayloadOutcome(ds, sel, rng)
			if err != nil {
				t.Fatalf("%s %v: %v", sel, rng, err)
			}
			for _, p := range sub {
				if superset[p] == 0 {
					t.Errorf("%s %v: point %+v not in full-range result", sel, rng, p)
				}
			}
		}
	}
}

func TestPayloadOutcome_OutOfDatasetBounds(t *testing.T) {
	pts, err := PayloadOutcome(exampleDataset(), AllSites, Range{Low: 20000, High: 30000})
	if err != nil {
		t.Fatalf("PayloadOutcome: %v", err)
	}
	if len(pts) != 0 {
		t.Errorf("got %d points, want 0", len(pts))
	}
}

func TestPayloadOutcome_InvertedRange(t *testing.T) {
	_, err := PayloadOutcome(exampleDataset(), AllSites, Range{Low: 2000, High: 1000})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("got %v, want ErrInvalidRange", err)
	}
	var re *InvalidRangeError
	if !errors.As(err, &re) {
		t.Fatalf("error type: got %T, want *InvalidRangeError", err)
	}
	if re.Range.Low != 2000 || re.Range.High != 1000 {
		t.Errorf("Range: got %+v", re.Range)
	}
}

func TestPayloadOutcome_NaNBound(t *testing.T) {
	_, err := PayloadOutcome(exampleDataset(), AllSites, Range{Low: math.NaN(), High: 1000})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("got %v, want ErrInvalidRange", err)
	}
}

func TestPayloadOutcome_InfiniteBound(t *testing.T) {
	for _, rng := range []Range{
		{Low: math.Inf(-1), High: 1000},
		{Low: 0, High: math.Inf(1)},
	} {
		if _, err := PayloadOutcome(exampleDataset(), AllSites, rng); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("%v: got %v, want ErrInvalidRange", rng, err)
		}
	}
}

func TestPayloadOutcome_Idempotent(t *testing.T) {
	ds := widerDataset()
	rng := Range{Low: 400, High: 6000}
	a, _ := PayloadOutcome(ds, AllSites, rng)
	b, _ := PayloadOutcome(ds, AllSites, rng)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("results differ: %v vs %v", a, b)
	}
}
