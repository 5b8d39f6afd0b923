package draw

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"ChartCast/pkg/chart"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format is an output encoding for a geometry snapshot.
type Format string

const (
	FormatJSON Format = "json"
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported encodings.
var ErrUnknownFormat = errors.New("draw: unknown format")

// ParseFormat normalises a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	default:
		return "application/json"
	}
}

// Dash pattern and stroke settings applied at draw time.
var (
	forecastDash  = []float64{6, 4}
	gridColor     = drawing.ColorFromHex("e5e7eb")
	textColor     = drawing.ColorFromHex("374151")
	strokeWidth   = 2.0
	labelFontSize = 9.0
	titleFontSize = 10.0
)

// Write encodes g to w in the requested format.
func Write(w io.Writer, g chart.Geometry, f Format) error {
	switch f {
	case FormatJSON:
		return json.NewEncoder(w).Encode(g)
	case FormatSVG:
		return rasterize(w, g, gochart.SVG)
	case FormatPNG:
		return rasterize(w, g, gochart.PNG)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

func rasterize(w io.Writer, g chart.Geometry, provider gochart.RendererProvider) error {
	width, height := px(g.Surface.Width), px(g.Surface.Height)
	if width <= 0 || height <= 0 {
		width, height = chart.DefaultWidth, chart.DefaultHeight
	}

	r, err := provider(width, height)
	if err != nil {
		return fmt.Errorf("new renderer: %w", err)
	}
	r.SetDPI(gochart.DefaultDPI)

	font, err := gochart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}
	r.SetFont(font)

	fillBackground(r, width, height)

	if !g.Empty() {
		drawValueAxis(r, g)
		drawCategoryAxis(r, g)
		strokePath(r, g.Historical, ParseColor(g.Style.LineColor, chart.DefaultLineColor), nil)
		strokePath(r, g.Forecast, ParseColor(g.Style.ForecastLineColor, chart.DefaultForecastLineColor), forecastDash)
	}
	drawAxisTitles(r, g, width, height)

	if err := r.Save(w); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

func fillBackground(r gochart.Renderer, width, height int) {
	r.SetFillColor(drawing.ColorWhite)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.LineTo(0, 0)
	r.Close()
	r.Fill()
	r.ResetStyle()
}

func drawValueAxis(r gochart.Renderer, g chart.Geometry) {
	left := px(g.Padding.X)
	right := px(g.Surface.Width - g.Padding.X)
	for _, tk := range g.ValueTicks {
		y := px(tk.Y)

		r.SetStrokeColor(gridColor)
		r.SetStrokeWidth(1)
		r.MoveTo(left, y)
		r.LineTo(right, y)
		r.Stroke()
		r.ResetStyle()

		r.SetFontColor(textColor)
		r.SetFontSize(labelFontSize)
		box := r.MeasureText(tk.Text)
		r.Text(tk.Text, left-box.Width()-4, y+box.Height()/2)
	}
}

func drawCategoryAxis(r gochart.Renderer, g chart.Geometry) {
	baseline := px(g.Surface.Height - g.Padding.Y)
	r.SetFontColor(textColor)
	r.SetFontSize(labelFontSize)
	for _, l := range g.CategoryLabels {
		box := r.MeasureText(l.Text)
		r.Text(l.Text, px(l.X)-box.Width()/2, baseline+box.Height()+6)
	}
}

func drawAxisTitles(r gochart.Renderer, g chart.Geometry, width, height int) {
	r.SetFontColor(textColor)
	r.SetFontSize(titleFontSize)
	if g.Style.YAxisLabel != "" {
		box := r.MeasureText(g.Style.YAxisLabel)
		r.Text(g.Style.YAxisLabel, 4, box.Height()+2)
	}
	if g.Style.XAxisLabel != "" {
		box := r.MeasureText(g.Style.XAxisLabel)
		r.Text(g.Style.XAxisLabel, width-box.Width()-4, height-4)
	}
}

func strokePath(r gochart.Renderer, p *chart.Path, color drawing.Color, dash []float64) {
	if p == nil || len(p.Commands) == 0 {
		return
	}
	r.SetStrokeColor(color)
	r.SetStrokeWidth(strokeWidth)
	if len(dash) > 0 {
		r.SetStrokeDashArray(dash)
	}
	for _, c := range p.Commands {
		switch c.Op {
		case chart.OpMoveTo:
			r.MoveTo(px(c.X), px(c.Y))
		default:
			r.LineTo(px(c.X), px(c.Y))
		}
	}
	r.Stroke()
	r.ResetStyle()
}

// ParseColor reads a "#rrggbb" token, falling back to def when s is empty.
func ParseColor(s, def string) drawing.Color {
	if strings.TrimSpace(s) == "" {
		s = def
	}
	return drawing.ColorFromHex(strings.TrimPrefix(strings.TrimSpace(s), "#"))
}

func px(v float64) int {
	return int(math.Round(v))
}
