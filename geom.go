package netlist

import "math"

// Point is a micrometre-space coordinate.
type Point struct {
	X, Y float64
}

// Polygon is an optional micrometre-coordinate boundary attached to a
// Circuit, retained purely as an attribute (layout geometry proper is out
// of scope for this module, per spec).
type Polygon struct {
	Points []Point
}

// Transform is a complex affine placement transform: rotation (in units of
// 90 degrees) plus an optional mirroring, a magnification, and a
// micrometre translation. It mirrors the "rotation+magnification+
// translation" transform named for Device and SubCircuit placements.
type Transform struct {
	Rotation   int     // quarter turns, 0..3
	Mirrored   bool    // mirror about the x-axis before rotating
	Mag        float64 // magnification, 1.0 = identity
	DX, DY     float64 // translation, in micrometres
}

// Identity is the no-op transform.
var Identity = Transform{Mag: 1}

// Apply maps p through the transform.
func (t Transform) Apply(p Point) Point {
	x, y := p.X, p.Y
	if t.Mirrored {
		y = -y
	}
	m := t.Mag
	if m == 0 {
		m = 1
	}
	x *= m
	y *= m
	sin, cos := sincosQuarter(t.Rotation)
	rx := x*cos - y*sin
	ry := x*sin + y*cos
	return Point{X: rx + t.DX, Y: ry + t.DY}
}

// Concat returns the transform equivalent to applying t first, then outer
// (outer.Apply(t.Apply(p)) == t.Concat(outer).Apply(p)). This is used by
// Circuit.FlattenSubcircuit to premultiply a cloned device's placement by
// the subcircuit's own transform.
func (t Transform) Concat(outer Transform) Transform {
	origin := outer.Apply(t.Apply(Point{}))
	ux := outer.Apply(t.Apply(Point{X: 1}))
	sin, cos := ux.Y-origin.Y, ux.X-origin.X
	mag := math.Hypot(sin, cos)
	rot := t.Rotation + outer.Rotation
	if outer.Mirrored {
		// mirroring reverses the sense of t's rotation
		rot = outer.Rotation - t.Rotation
	}
	rot = ((rot % 4) + 4) % 4
	mirrored := t.Mirrored != outer.Mirrored
	m := t.Mag * outer.Mag
	if m == 0 {
		m = mag
	}
	return Transform{
		Rotation: rot,
		Mirrored: mirrored,
		Mag:      m,
		DX:       origin.X,
		DY:       origin.Y,
	}
}

func sincosQuarter(q int) (sin, cos float64) {
	switch ((q % 4) + 4) % 4 {
	case 0:
		return 0, 1
	case 1:
		return 1, 0
	case 2:
		return 0, -1
	default:
		return -1, 0
	}
}
