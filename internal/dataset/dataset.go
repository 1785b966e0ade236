package dataset

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// CSV column headers the dataset is read from.
const (
	ColSite            = "Launch Site"
	ColPayload         = "Payload Mass (kg)"
	ColClass           = "class"
	ColBoosterCategory = "Booster Version Category"
)

// RequiredColumns lists the headers that must be present in the source CSV.
var RequiredColumns = []string{ColSite, ColPayload, ColClass, ColBoosterCategory}

var (
	// ErrMissingColumn is returned (wrapped in a LoadError) when a required
	// header is absent from the CSV.
	ErrMissingColumn = errors.New("missing required column")

	// ErrInvalidValue is returned (wrapped in a LoadError) when a payload or
	// class cell cannot be interpreted.
	ErrInvalidValue = errors.New("invalid value")

	// ErrUnknownColumn is returned by Column for a name that is not one of the
	// dataset's columns.
	ErrUnknownColumn = errors.New("unknown column")
)

// LoadError reports why the dataset could not be loaded. The dashboard cannot
// start without its dataset, so callers treat it as fatal.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("dataset: load %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LaunchRecord is one launch attempt.
type LaunchRecord struct {
	Site            string  `json:"site"`
	PayloadKg       float64 `json:"payload_kg"`
	Class           int     `json:"class"` // 1 = success, 0 = failure
	BoosterCategory string  `json:"booster_category"`
}

// Success reports whether the launch succeeded.
func (r LaunchRecord) Success() bool { return r.Class == 1 }

// Dataset is an immutable, ordered collection of launch records.
type Dataset struct {
	records    []LaunchRecord
	sites      []string
	minPayload float64
	maxPayload float64
}

// New builds a Dataset from records. The slice is copied; later changes to it
// are not observed by the Dataset.
func New(records []LaunchRecord) *Dataset {
	d := &Dataset{records: append([]LaunchRecord(nil), records...)}

	seen := make(map[string]bool)
	for i, r := range d.records {
		if !seen[r.Site] {
			seen[r.Site] = true
			d.sites = append(d.sites, r.Site)
		}
		if i == 0 || r.PayloadKg < d.minPayload {
			d.minPayload = r.PayloadKg
		}
		if i == 0 || r.PayloadKg > d.maxPayload {
			d.maxPayload = r.PayloadKg
		}
	}
	return d
}

// Load reads the CSV file at path. Any failure is returned as a *LoadError.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	ds, err := read(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return ds, nil
}

// Read parses CSV from r. Any failure is returned as a *LoadError with an
// empty Path.
func Read(r io.Reader) (*Dataset, error) {
	ds, err := read(r)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	return ds, nil
}

func read(r io.Reader) (*Dataset, error) {
	df := dataframe.ReadCSV(r,
		dataframe.DetectTypes(false),
		dataframe.WithTypes(map[string]series.Type{
			ColSite:            series.String,
			ColPayload:         series.Float,
			ColClass:           series.Float,
			ColBoosterCategory: series.String,
		}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read csv: %w", df.Err)
	}

	present := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		present[name] = true
	}
	for _, col := range RequiredColumns {
		if !present[col] {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, col)
		}
	}

	sites := df.Col(ColSite).Records()
	payloads := df.Col(ColPayload).Float()
	classes := df.Col(ColClass).Float()
	boosters := df.Col(ColBoosterCategory).Records()

	records := make([]LaunchRecord, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		// Line numbers are 1-based and the header occupies line 1.
		line := i + 2

		p := payloads[i]
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return nil, fmt.Errorf("line %d: %w: %s must be a non-negative number", line, ErrInvalidValue, ColPayload)
		}
		c := classes[i]
		if c != 0 && c != 1 {
			return nil, fmt.Errorf("line %d: %w: %s must be 0 or 1", line, ErrInvalidValue, ColClass)
		}

		records = append(records, LaunchRecord{
			Site:            strings.TrimSpace(sites[i]),
			PayloadKg:       p,
			Class:           int(c),
			BoosterCategory: strings.TrimSpace(boosters[i]),
		})
	}

	return New(records), nil
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Records returns a copy of all records in source order.
func (d *Dataset) Records() []LaunchRecord {
	return append([]LaunchRecord(nil), d.records...)
}

// Filter returns the records for which keep returns true, in source order.
func (d *Dataset) Filter(keep func(LaunchRecord) bool) []LaunchRecord {
	out := make([]LaunchRecord, 0, len(d.records))
	for _, r := range d.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Sites returns the distinct launch sites in first-seen order.
func (d *Dataset) Sites() []string {
	return append([]string(nil), d.sites...)
}

// HasSite reports whether any record was launched from site.
func (d *Dataset) HasSite(site string) bool {
	for _, s := range d.sites {
		if s == site {
			return true
		}
	}
	return false
}

// PayloadBounds returns the smallest and largest payload mass in the dataset.
// Both are zero for an empty dataset.
func (d *Dataset) PayloadBounds() (min, max float64) {
	return d.minPayload, d.maxPayload
}

// Column returns the values of the named CSV column rendered as strings, in
// record order.
func (d *Dataset) Column(name string) ([]string, error) {
	var get func(LaunchRecord) string
	switch name {
	case ColSite:
		get = func(r LaunchRecord) string { return r.Site }
	case ColPayload:
		get = func(r LaunchRecord) string { return strconv.FormatFloat(r.PayloadKg, 'f', -1, 64) }
	case ColClass:
		get = func(r LaunchRecord) string { return strconv.Itoa(r.Class) }
	case ColBoosterCategory:
		get = func(r LaunchRecord) string { return r.BoosterCategory }
	default:
		return nil, fmt.Errorf("dataset: %w %q", ErrUnknownColumn, name)
	}

	out := make([]string, len(d.records))
	for i, r := range d.records {
		out[i] = get(r)
	}
	return out, nil
}
