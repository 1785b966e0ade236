package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/yosssi/gohtml"

	"github.com/launchdash/launchdash/internal/chart"
	"github.com/launchdash/launchdash/internal/config"
	"github.com/launchdash/launchdash/internal/dash"
	"github.com/launchdash/launchdash/internal/dataset"
)

//go:embed templates/index.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// ChartView is one chart container with its pre-rendered SVG.
type ChartView struct {
	ID  string
	SVG template.HTML
}

// Page is the data the page template renders.
type Page struct {
	Title    string
	Dropdown Dropdown
	Slider   Slider
	Pie      ChartView
	Scatter  ChartView
	Width    int
	Height   int
}

// Layout renders the dashboard page for one dataset.
type Layout struct {
	ds       *dataset.Dataset
	app      *dash.App
	settings func() config.UIConfig
}

// New returns a Layout over ds. settings is called on every render.
func New(ds *dataset.Dataset, app *dash.App, settings func() config.UIConfig) *Layout {
	return &Layout{ds: ds, app: app, settings: settings}
}

// Page builds the page model, evaluating every callback for the default state.
func (l *Layout) Page() (Page, error) {
	cfg := l.settings()
	st := dash.DefaultState(l.ds)
	lo, hi := l.ds.PayloadBounds()

	p := Page{
		Title:    cfg.Title,
		Dropdown: NewDropdown(l.ds.Sites()),
		Slider:   NewSlider(lo, hi, cfg.SliderStep),
		Pie:      ChartView{ID: dash.SuccessPieChart},
		Scatter:  ChartView{ID: dash.SuccessPayloadScatterChart},
		Width:    cfg.ChartWidth,
		Height:   cfg.ChartHeight,
	}

	figs, err := l.app.Initial(st)
	if err != nil {
		return Page{}, fmt.Errorf("ui: initial outputs: %w", err)
	}
	for _, cv := range []*ChartView{&p.Pie, &p.Scatter} {
		svg, err := chart.RenderSVG(figs[cv.ID], cfg.ChartWidth, cfg.ChartHeight)
		if err != nil {
			return Page{}, fmt.Errorf("ui: render %s: %w", cv.ID, err)
		}
		// go-chart output; the only dynamic text in it comes from the dataset.
		cv.SVG = template.HTML(svg)
	}
	return p, nil
}

// Render writes the page HTML to w.
func (l *Layout) Render(w io.Writer) error {
	p, err := l.Page()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, p); err != nil {
		return fmt.Errorf("ui: execute template: %w", err)
	}
	out := buf.Bytes()
	if l.settings().PrettyHTML {
		out = gohtml.FormatBytes(out)
	}
	_, err = w.Write(out)
	return err
}

// ServeHTTP serves the page on GET /.
func (l *Layout) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var buf bytes.Buffer
	if err := l.Render(&buf); err != nil {
		slog.Error("ui: render page failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// Static serves the page's script under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
