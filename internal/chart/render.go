package chart

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format is an image output format.
type Format string

// Supported formats.
const (
	SVG Format = "svg"
	PNG Format = "png"
)

// ErrUnsupportedFormat is returned for formats other than SVG and PNG.
var ErrUnsupportedFormat = errors.New("unsupported chart format")

// Default canvas size in pixels.
const (
	DefaultWidth  = 640
	DefaultHeight = 420
)

// ParseFormat maps "svg" or "png" (any case) to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case SVG:
		return SVG, nil
	case PNG:
		return PNG, nil
	}
	return "", fmt.Errorf("chart: %w %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type of images in format f.
func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Render draws fig to w. Figures with nothing to plot, and figures go-chart
// refuses to draw, are rendered as a blank canvas carrying the title so the
// dashboard never shows a broken image.
func Render(w io.Writer, fig Figure, format Format, width, height int) error {
	provider, err := rendererFor(format)
	if err != nil {
		return err
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	if fig.Empty() {
		return renderBlank(w, fig.Title, format, width, height)
	}

	var buf bytes.Buffer
	switch fig.Kind {
	case KindPie:
		err = renderPie(&buf, fig, provider, width, height)
	case KindScatter:
		err = renderScatter(&buf, fig, provider, width, height)
	default:
		return fmt.Errorf("chart: unknown figure kind %q", fig.Kind)
	}
	if err != nil {
		slog.Warn("chart: render failed, drawing blank canvas", "kind", fig.Kind, "title", fig.Title, "err", err)
		return renderBlank(w, fig.Title, format, width, height)
	}

	_, err = buf.WriteTo(w)
	return err
}

// RenderSVG renders fig as an SVG document string.
func RenderSVG(fig Figure, width, height int) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, fig, SVG, width, height); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func rendererFor(f Format) (gochart.RendererProvider, error) {
	switch f {
	case SVG:
		return gochart.SVG, nil
	case PNG:
		return gochart.PNG, nil
	}
	return nil, fmt.Errorf("chart: %w %q", ErrUnsupportedFormat, string(f))
}

func renderPie(w io.Writer, fig Figure, provider gochart.RendererProvider, width, height int) error {
	values := make([]gochart.Value, 0, len(fig.Slices))
	for i, s := range fig.Slices {
		// Zero-count slices have no area; go-chart would still draw a label.
		if s.Count <= 0 {
			continue
		}
		c := Palette[i%len(Palette)]
		if i < len(fig.Colors) {
			c = fig.Colors[i]
		}
		values = append(values, gochart.Value{
			Label: fmt.Sprintf("%s (%d)", s.Label, s.Count),
			Value: float64(s.Count),
			Style: gochart.Style{
				FillColor:   hexColor(c),
				StrokeColor: drawing.ColorWhite,
			},
		})
	}

	pie := gochart.PieChart{
		Title:  fig.Title,
		Width:  width,
		Height: height,
		Values: values,
	}
	return pie.Render(provider, w)
}

// pointStyle draws points only, without connecting lines.
func pointStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

func renderScatter(w io.Writer, fig Figure, provider gochart.RendererProvider, width, height int) error {
	series := make([]gochart.Series, 0, len(fig.Series))
	lo, hi := 0.0, 0.0
	first := true
	for _, s := range fig.Series {
		if len(s.Points) == 0 {
			continue
		}
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for i, p := range s.Points {
			xs[i], ys[i] = p.X, p.Y
			if first || p.X < lo {
				lo = p.X
			}
			if first || p.X > hi {
				hi = p.X
			}
			first = false
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(hexColor(s.Color)),
		})
	}

	if fig.XRange != nil {
		lo, hi = fig.XRange.Low, fig.XRange.High
	}
	if hi <= lo {
		hi = lo + 1
	}

	c := gochart.Chart{
		Title:      fig.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:  fig.XAxis,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		YAxis: gochart.YAxis{
			Name:  fig.YAxis,
			Range: &gochart.ContinuousRange{Min: -0.25, Max: 1.25},
			Ticks: []gochart.Tick{{Value: 0, Label: "0"}, {Value: 1, Label: "1"}},
		},
		Series: series,
	}
	c.Elements = []gochart.Renderable{gochart.Legend(&c)}
	return c.Render(provider, w)
}

func renderBlank(w io.Writer, title string, format Format, width, height int) error {
	if format == PNG {
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
		return png.Encode(w, img)
	}

	_, err := fmt.Fprintf(w,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
			`<rect width="100%%" height="100%%" fill="#ffffff"/>`+
			`<text x="50%%" y="28" text-anchor="middle" font-family="sans-serif" font-size="16">%s</text>`+
			`<text x="50%%" y="50%%" text-anchor="middle" font-family="sans-serif" font-size="14" fill="#888888">No data</text>`+
			`</svg>`,
		width, height, width, height, html.EscapeString(title))
	return err
}

func hexColor(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}
