package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/launchdash/launchdash/internal/chart"
	"github.com/launchdash/launchdash/internal/config"
	"github.com/launchdash/launchdash/internal/dataset"
	"github.com/launchdash/launchdash/internal/export"
	"github.com/launchdash/launchdash/internal/query"
	"github.com/launchdash/launchdash/internal/ui"
)

// Canvas size limits for chart endpoints.
const (
	minCanvas = 100
	maxCanvas = 4000
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler is the HTTP handler for /api/v1/* and /charts/* endpoints.
// The dataset is read-only, so handlers run concurrently without locking.
type Handler struct {
	ds       *dataset.Dataset
	settings func() config.UIConfig
	mux      *http.ServeMux
}

// New creates a Handler over ds and registers all routes. settings supplies
// the current slider step and default canvas size.
func New(ds *dataset.Dataset, settings func() config.UIConfig) http.Handler {
	h := &Handler{ds: ds, settings: settings, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/sites", h.sites)
	h.mux.HandleFunc("/api/v1/pie", h.pie)
	h.mux.HandleFunc("/api/v1/scatter", h.scatter)
	h.mux.HandleFunc("/api/v1/scatter.xlsx", h.scatterXLSX)
	h.mux.HandleFunc("/charts/", h.chartImage) // subtree, extracts {name}.{format}

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// sites returns GET /api/v1/sites: everything a client needs to draw controls.
func (h *Handler) sites(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sites := h.ds.Sites()
	lo, hi := h.ds.PayloadBounds()
	jsonResp(w, http.StatusOK, SitesResponse{
		Sites:    sites,
		Bounds:   query.Range{Low: lo, High: hi},
		Records:  h.ds.Len(),
		Dropdown: ui.NewDropdown(sites),
		Slider:   ui.NewSlider(lo, hi, h.settings().SliderStep),
	})
}

// pie returns GET /api/v1/pie?site=: success counts for the selector.
func (h *Handler) pie(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	agg := query.SuccessCounts(h.ds, selector(r))
	jsonResp(w, http.StatusOK, PieResponse{
		Selector: agg.Selector,
		Counts:   agg.Map(),
		Total:    agg.Total(),
		Figure:   chart.PieFigure(agg),
	})
}

// scatter returns GET /api/v1/scatter?site=&low=&high=: launches in range.
func (h *Handler) scatter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sel := selector(r)
	rng, points, err := h.scatterQuery(r, sel)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, ScatterResponse{
		Selector: sel,
		Range:    rng,
		Points:   points,
		Figure:   chart.ScatterFigure(sel, rng, points),
	})
}

// scatterXLSX returns GET /api/v1/scatter.xlsx: the scatter selection as a workbook.
func (h *Handler) scatterXLSX(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sel := selector(r)
	rng, points, err := h.scatterQuery(r, sel)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	rep := export.Report{
		Selector: sel,
		Range:    rng,
		Points:   points,
		Counts:   query.SuccessCounts(h.ds, sel),
	}
	if err := export.WriteXLSX(&buf, rep); err != nil {
		slog.Error("api: xlsx export failed", "selector", sel, "err", err)
		jsonErr(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="launches.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// chartImage returns GET /charts/{pie|scatter}.{svg|png}.
func (h *Handler) chartImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name, ext, ok := strings.Cut(strings.TrimPrefix(r.URL.Path, "/charts/"), ".")
	if !ok {
		jsonErr(w, http.StatusNotFound, "chart not found")
		return
	}
	format, err := chart.ParseFormat(ext)
	if err != nil {
		jsonErr(w, http.StatusNotFound, "chart not found")
		return
	}

	sel := selector(r)
	var fig chart.Figure
	switch name {
	case chart.KindPie:
		fig = chart.PieFigure(query.SuccessCounts(h.ds, sel))
	case chart.KindScatter:
		rng, points, err := h.scatterQuery(r, sel)
		if err != nil {
			jsonErr(w, http.StatusBadRequest, err.Error())
			return
		}
		fig = chart.ScatterFigure(sel, rng, points)
	default:
		jsonErr(w, http.StatusNotFound, "chart not found")
		return
	}

	cfg := h.settings()
	width, err := canvasParam(r, "width", cfg.ChartWidth)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	height, err := canvasParam(r, "height", cfg.ChartHeight)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, fig, format, width, height); err != nil {
		slog.Error("api: render chart failed", "chart", name, "format", format, "err", err)
		jsonErr(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// --- helpers ----------------------------------------------------------------

// scatterQuery parses low/high and runs the payload filter.
func (h *Handler) scatterQuery(r *http.Request, sel string) (query.Range, []query.Point, error) {
	rng := query.FullRange(h.ds)
	var err error
	if rng.Low, err = floatParam(r, "low", rng.Low); err != nil {
		return query.Range{}, nil, err
	}
	if rng.High, err = floatParam(r, "high", rng.High); err != nil {
		return query.Range{}, nil, err
	}
	points, err := query.PayloadOutcome(h.ds, sel, rng)
	if err != nil {
		return query.Range{}, nil, err
	}
	return rng, points, nil
}

// selector returns the site query parameter, defaulting to all sites.
func selector(r *http.Request) string {
	if s := strings.TrimSpace(r.URL.Query().Get("site")); s != "" {
		return s
	}
	return query.AllSites
}

func floatParam(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: not a number", name, raw)
	}
	if math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s %q: not finite", name, raw)
	}
	return v, nil
}

func canvasParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < minCanvas || v > maxCanvas {
		return 0, fmt.Errorf("invalid %s %q: want an integer in [%d, %d]", name, raw, minCanvas, maxCanvas)
	}
	return v, nil
}

// jsonResp encodes v before writing the status. An unencodable v yields a 500.
func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		slog.Error("api: encode response failed", "err", err)
		code = http.StatusInternalServerError
		buf.Reset()
		buf.WriteString(`{"error":"encode response failed"}` + "\n")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

