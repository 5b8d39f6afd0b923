package chart

// Observation is one point on the category axis.
type Observation struct {
	Label string  `json:"label" validate:"max=64"`
	Value float64 `json:"value"`
}

// Series is an ordered sequence of observations.
type Series []Observation

// Values returns the numeric values of s in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, o := range s {
		out[i] = o.Value
	}
	return out
}

// Domain is the value-axis range used for vertical scaling.
type Domain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Coordinate is a point in surface space (y grows downward).
type Coordinate struct {
	X float64 `json:"x" validate:"gte=0,lte=2000"`
	Y float64 `json:"y" validate:"gte=0,lte=2000"`
}

// Surface holds the drawing dimensions.
type Surface struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Padding is the inset of the plot band from each surface edge.
type Padding struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ValueTick is a value-axis tick projected to its vertical position.
type ValueTick struct {
	Value float64 `json:"value"`
	Y     float64 `json:"y"`
	Text  string  `json:"text"`
}

// CategoryLabel is a category-axis label projected to its horizontal position.
type CategoryLabel struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
}

// Style carries cosmetic options through to the drawing layer.
// None of it affects geometry.
type Style struct {
	YAxisLabel        string `json:"y_axis_label,omitempty"`
	XAxisLabel        string `json:"x_axis_label,omitempty"`
	LineColor         string `json:"line_color"`
	ForecastLineColor string `json:"forecast_line_color"`
}

// Geometry is a render-ready snapshot. Paths are nil when absent.
type Geometry struct {
	Surface        Surface         `json:"surface"`
	Padding        Padding         `json:"padding"`
	Domain         Domain          `json:"domain"`
	Historical     *Path           `json:"historical,omitempty"`
	Forecast       *Path           `json:"forecast,omitempty"`
	ValueTicks     []ValueTick     `json:"value_ticks"`
	CategoryLabels []CategoryLabel `json:"category_labels"`
	Style          Style           `json:"style"`
	PointCount     int             `json:"point_count"`
}

// Empty reports whether there is nothing to draw.
func (g Geometry) Empty() bool {
	return g.PointCount == 0
}
