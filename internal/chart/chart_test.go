package chart

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/launchdash/launchdash/internal/query"
)

func samplePoints() []query.Point {
	return []query.Point{
		{PayloadKg: 500, Class: 0, BoosterCategory: "v1.1", Site: "A"},
		{PayloadKg: 2490, Class: 1, BoosterCategory: "FT", Site: "B"},
		{PayloadKg: 3600, Class: 0, BoosterCategory: "FT", Site: "B"},
		{PayloadKg: 9600, Class: 1, BoosterCategory: "B5", Site: "C"},
	}
}

// --- figures ----------------------------------------------------------------

func TestPieFigure_AllSitesTitle(t *testing.T) {
	f := PieFigure(query.Aggregation{Selector: query.AllSites, Slices: []query.Slice{{Label: "A", Count: 3}}})
	if f.Title != "Total Success Launches By Site" {
		t.Errorf("Title: got %q", f.Title)
	}
	if f.Kind != KindPie {
		t.Errorf("Kind: got %q, want pie", f.Kind)
	}
	if len(f.Colors) != 1 || f.Colors[0] != Palette[0] {
		t.Errorf("Colors: got %v", f.Colors)
	}
}

func TestPieFigure_SiteTitle(t *testing.T) {
	f := PieFigure(query.Aggregation{Selector: "KSC LC-39A"})
	if f.Title != "Success and Failed Launches for Site KSC LC-39A" {
		t.Errorf("Title: got %q", f.Title)
	}
	if f.Slices == nil {
		t.Error("Slices: got nil, want empty slice")
	}
	if !f.Empty() {
		t.Error("Empty: got false for a pie without slices")
	}
}

func TestPieFigure_ZeroCountsAreEmpty(t *testing.T) {
	f := PieFigure(query.Aggregation{Selector: query.AllSites, Slices: []query.Slice{{Label: "A"}, {Label: "B"}}})
	if !f.Empty() {
		t.Error("Empty: got false for all-zero slices")
	}
}

func TestScatterFigure_SeriesPerCategory(t *testing.T) {
	f := ScatterFigure(query.AllSites, query.Range{Low: 0, High: 10000}, samplePoints())

	if f.Title != "Correlation between Payload and Success for all Sites" {
		t.Errorf("Title: got %q", f.Title)
	}
	if len(f.Series) != 3 {
		t.Fatalf("Series: got %d, want 3", len(f.Series))
	}
	names := []string{f.Series[0].Name, f.Series[1].Name, f.Series[2].Name}
	if names[0] != "v1.1" || names[1] != "FT" || names[2] != "B5" {
		t.Errorf("series order: got %v, want [v1.1 FT B5]", names)
	}
	if len(f.Series[1].Points) != 2 {
		t.Errorf("FT points: got %d, want 2", len(f.Series[1].Points))
	}
	if p := f.Series[1].Points[0]; p.X != 2490 || p.Y != 1 {
		t.Errorf("FT point 0: got %+v", p)
	}
	if f.Series[0].Color == f.Series[1].Color {
		t.Error("series colors should differ")
	}
	if f.XRange == nil || f.XRange.High != 10000 {
		t.Errorf("XRange: got %+v", f.XRange)
	}
}

func TestScatterFigure_SiteTitle(t *testing.T) {
	f := ScatterFigure("VAFB SLC-4E", query.Range{}, nil)
	if f.Title != "Correlation between Payload and Success for VAFB SLC-4E" {
		t.Errorf("Title: got %q", f.Title)
	}
	if !f.Empty() {
		t.Error("Empty: got false for scatter without points")
	}
	if f.Series == nil {
		t.Error("Series: got nil, want empty slice")
	}
}

// --- rendering --------------------------------------------------------------

func TestRender_PieSVG(t *testing.T) {
	f := PieFigure(query.Aggregation{Selector: query.AllSites, Slices: []query.Slice{
		{Label: "CCAFS LC-40", Count: 7},
		{Label: "VAFB SLC-4E", Count: 0},
		{Label: "KSC LC-39A", Count: 10},
	}})
	svg, err := RenderSVG(f, 400, 300)
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(svg), "<svg") {
		t.Errorf("output does not start with <svg: %.60q", svg)
	}
	if !strings.Contains(svg, "KSC LC-39A (10)") {
		t.Error("expected slice label in SVG")
	}
	if strings.Contains(svg, "VAFB SLC-4E") {
		t.Error("zero-count slice should not be drawn")
	}
}

func TestRender_ScatterSVG(t *testing.T) {
	f := ScatterFigure(query.AllSites, query.Range{Low: 0, High: 10000}, samplePoints())
	svg, err := RenderSVG(f, 640, 420)
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(svg, "<svg") {
		t.Error("expected SVG output")
	}
	if strings.Contains(svg, "No data") {
		t.Error("scatter with points rendered as blank")
	}
}

func TestRender_SinglePointScatter(t *testing.T) {
	pts := samplePoints()[:1]
	f := ScatterFigure("A", query.Range{Low: 500, High: 500}, pts)
	if _, err := RenderSVG(f, 640, 420); err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
}

func TestRender_EmptyPieIsBlank(t *testing.T) {
	f := PieFigure(query.Aggregation{Selector: "Z", Slices: []query.Slice{}})
	svg, err := RenderSVG(f, 320, 200)
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(svg, "No data") {
		t.Error("expected blank placeholder for empty pie")
	}
	if !strings.Contains(svg, "Success and Failed Launches for Site Z") {
		t.Error("placeholder should carry the title")
	}
}

func TestRender_BlankEscapesTitle(t *testing.T) {
	f := PieFigure(query.Aggregation{Selector: "<script>"})
	svg, err := RenderSVG(f, 320, 200)
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if strings.Contains(svg, "<script>") {
		t.Error("title was not escaped")
	}
}

func TestRender_EmptyScatterPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, ScatterFigure(query.AllSites, query.Range{}, nil), PNG, 300, 200); err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 200 {
		t.Errorf("bounds: got %v, want 300x200", b)
	}
}

func TestRender_PiePNG(t *testing.T) {
	f := PieFigure(query.Aggregation{Selector: "A", Slices: []query.Slice{
		{Label: query.LabelSuccess, Count: 3},
		{Label: query.LabelFailure, Count: 1},
	}})
	var buf bytes.Buffer
	if err := Render(&buf, f, PNG, 400, 300); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
}

func TestRender_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, PieFigure(query.Aggregation{}), Format("gif"), 100, 100)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"svg": SVG, "PNG": PNG} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q): got %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("jpeg"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ParseFormat(jpeg): got %v, want ErrUnsupportedFormat", err)
	}
	if SVG.ContentType() != "image/svg+xml" || PNG.ContentType() != "image/png" {
		t.Error("unexpected content types")
	}
}
