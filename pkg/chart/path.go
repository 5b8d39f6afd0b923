package chart

import (
	"encoding/json"
	"strings"
)

// PathOp is a drawing command verb.
type PathOp string

const (
	OpMoveTo PathOp = "M"
	OpLineTo PathOp = "L"
)

// PathCommand is one move-to or line-to.
type PathCommand struct {
	Op PathOp  `json:"op"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Path is an unstyled polyline: a move-to followed by line-tos.
type Path struct {
	Commands []PathCommand
}

// BuildPath turns points into a polyline in input order.
// It returns nil for no points.
func BuildPath(points []Coordinate) *Path {
	if len(points) == 0 {
		return nil
	}
	cmds := make([]PathCommand, 0, len(points))
	for i, pt := range points {
		op := OpLineTo
		if i == 0 {
			op = OpMoveTo
		}
		cmds = append(cmds, PathCommand{Op: op, X: pt.X, Y: pt.Y})
	}
	return &Path{Commands: cmds}
}

// BuildForecastPath builds the forecast continuation anchored at the last
// historical coordinate, so both segments meet at the junction point.
// It returns nil when there are no forecast points.
func BuildForecastPath(lastHistorical Coordinate, forecast []Coordinate) *Path {
	if len(forecast) == 0 {
		return nil
	}
	points := make([]Coordinate, 0, len(forecast)+1)
	points = append(points, lastHistorical)
	points = append(points, forecast...)
	return BuildPath(points)
}

// Points returns the path vertices in order.
func (p *Path) Points() []Coordinate {
	if p == nil {
		return nil
	}
	out := make([]Coordinate, len(p.Commands))
	for i, c := range p.Commands {
		out[i] = Coordinate{X: c.X, Y: c.Y}
	}
	return out
}

// First returns the starting vertex.
func (p *Path) First() (Coordinate, bool) {
	if p == nil || len(p.Commands) == 0 {
		return Coordinate{}, false
	}
	c := p.Commands[0]
	return Coordinate{X: c.X, Y: c.Y}, true
}

// Last returns the final vertex.
func (p *Path) Last() (Coordinate, bool) {
	if p == nil || len(p.Commands) == 0 {
		return Coordinate{}, false
	}
	c := p.Commands[len(p.Commands)-1]
	return Coordinate{X: c.X, Y: c.Y}, true
}

// SVG renders the path as SVG path data, e.g. "M 40 200 L 170 120".
func (p *Path) SVG() string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	for i, c := range p.Commands {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(string(c.Op))
		b.WriteByte(' ')
		b.WriteString(formatNumber(c.X, 2))
		b.WriteByte(' ')
		b.WriteString(formatNumber(c.Y, 2))
	}
	return b.String()
}

type pathJSON struct {
	Commands []PathCommand `json:"commands"`
	D        string        `json:"d"`
}

// MarshalJSON includes the SVG path data next to the raw commands.
func (p *Path) MarshalJSON() ([]byte, error) {
	return json.Marshal(pathJSON{Commands: p.Commands, D: p.SVG()})
}

// UnmarshalJSON reads the commands back; the SVG string is derived.
func (p *Path) UnmarshalJSON(b []byte) error {
	var raw pathJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.Commands = raw.Commands
	return nil
}
