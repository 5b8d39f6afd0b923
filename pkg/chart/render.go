package chart

import (
	"errors"
	"fmt"
)

// ErrPaddingTooLarge reports padding that leaves no room for the plot band.
var ErrPaddingTooLarge = errors.New("padding leaves no plot area")

// Defaults applied by Options.withDefaults.
const (
	DefaultWidth             = 600
	DefaultHeight            = 260
	DefaultPaddingX          = 40
	DefaultPaddingY          = 30
	DefaultLineColor         = "#2563eb"
	DefaultForecastLineColor = "#f59e0b"
)

// Options configures one render. Zero fields take the package defaults.
type Options struct {
	Width             float64 `json:"width" validate:"omitempty,gte=50,lte=4000"`
	Height            float64 `json:"height" validate:"omitempty,gte=50,lte=4000"`
	Padding           Padding `json:"padding"`
	PaddingFactor     float64 `json:"padding_factor" validate:"omitempty,gte=1,lte=10"`
	YAxisLabel        string  `json:"y_axis_label" validate:"max=64"`
	XAxisLabel        string  `json:"x_axis_label" validate:"max=64"`
	LineColor         string  `json:"line_color" validate:"omitempty,hexcolor"`
	ForecastLineColor string  `json:"forecast_line_color" validate:"omitempty,hexcolor"`
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	o.Padding.X = fitPadding(o.Padding.X, DefaultPaddingX, o.Width)
	o.Padding.Y = fitPadding(o.Padding.Y, DefaultPaddingY, o.Height)
	if o.PaddingFactor <= 0 {
		o.PaddingFactor = DefaultPaddingFactor
	}
	if o.LineColor == "" {
		o.LineColor = DefaultLineColor
	}
	if o.ForecastLineColor == "" {
		o.ForecastLineColor = DefaultForecastLineColor
	}
	return o
}

// fitPadding returns p when both insets fit inside size, the default when
// that fits instead, and a quarter of size otherwise.
func fitPadding(p, def, size float64) float64 {
	if p > 0 && 2*p < size {
		return p
	}
	if 2*def < size {
		return def
	}
	return size / 4
}

// CheckFit reports whether the requested padding leaves a plot band on the
// resolved surface. Render itself never fails and substitutes a fitting
// padding instead.
func (o Options) CheckFit() error {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	if o.Padding.X > 0 && 2*o.Padding.X >= w {
		return fmt.Errorf("%w: 2*padding.x=%g >= width=%g", ErrPaddingTooLarge, 2*o.Padding.X, w)
	}
	if o.Padding.Y > 0 && 2*o.Padding.Y >= h {
		return fmt.Errorf("%w: 2*padding.y=%g >= height=%g", ErrPaddingTooLarge, 2*o.Padding.Y, h)
	}
	return nil
}

// Render lays out a historical series and its forecast continuation.
//
// Both series are projected with one domain and one index space: forecast
// point i sits at global index len(historical)+i. The forecast path is only
// emitted when it has a historical anchor. Render never fails; an empty
// input yields a geometry with nothing to draw.
func Render(historical, forecast Series, opts Options) Geometry {
	opts = opts.withDefaults()

	combined := Combine(historical, forecast)
	surface := Surface{Width: opts.Width, Height: opts.Height}
	geo := Geometry{
		Surface:        surface,
		Padding:        opts.Padding,
		Domain:         ComputeDomain(combined, opts.PaddingFactor),
		ValueTicks:     []ValueTick{},
		CategoryLabels: []CategoryLabel{},
		Style: Style{
			YAxisLabel:        opts.YAxisLabel,
			XAxisLabel:        opts.XAxisLabel,
			LineColor:         opts.LineColor,
			ForecastLineColor: opts.ForecastLineColor,
		},
		PointCount: len(combined),
	}
	if len(combined) == 0 {
		return geo
	}

	proj := NewProjector(len(combined), geo.Domain, surface, opts.Padding)

	hist := make([]Coordinate, len(historical))
	for i, o := range historical {
		hist[i] = proj.Point(i, o.Value)
	}
	geo.Historical = BuildPath(hist)

	if len(hist) > 0 && len(forecast) > 0 {
		fc := make([]Coordinate, len(forecast))
		for i, o := range forecast {
			fc[i] = proj.Point(len(historical)+i, o.Value)
		}
		geo.Forecast = BuildForecastPath(hist[len(hist)-1], fc)
	}

	geo.ValueTicks = ValueAxisTicks(proj)
	geo.CategoryLabels = CategoryAxisLabels(combined, proj)
	return geo
}
