package chart

// Projector maps (index, value) pairs onto the padded plot band.
//
// Total is the point count across the historical and forecast series
// together, so both share one horizontal scale. The same Projector must be
// used for every point of a render.
type Projector struct {
	Total   int
	Domain  Domain
	Surface Surface
	Padding Padding
}

// NewProjector binds the shared scale for one render pass.
func NewProjector(total int, domain Domain, surface Surface, padding Padding) Projector {
	return Projector{Total: total, Domain: domain, Surface: surface, Padding: padding}
}

// X returns the horizontal position of the point at index.
// A single-point series sits on the left padding line.
func (p Projector) X(index int) float64 {
	if p.Total <= 1 {
		return p.Padding.X
	}
	span := p.Surface.Width - 2*p.Padding.X
	return p.Padding.X + float64(index)/float64(p.Total-1)*span
}

// Y returns the vertical position of value. Values outside the domain are
// not clamped and may land outside the plot band.
func (p Projector) Y(value float64) float64 {
	max := p.Domain.Max
	if max == 0 {
		max = 1
	}
	span := p.Surface.Height - 2*p.Padding.Y
	return p.Surface.Height - p.Padding.Y - value/max*span
}

// Point projects one observation.
func (p Projector) Point(index int, value float64) Coordinate {
	return Coordinate{X: p.X(index), Y: p.Y(value)}
}

// Project is the unbound form of Projector.Point.
func Project(index int, value float64, total int, domain Domain, surface Surface, padding Padding) Coordinate {
	return NewProjector(total, domain, surface, padding).Point(index, value)
}
