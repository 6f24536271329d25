package model

import "math"

// Position is a point in world units. Y is altitude and is ignored by all
// planar logic; it is carried so a rendering layer can mirror the value.
type Position struct {
	X, Y, Z float64
}

// Distance returns the straight-line distance between two points.
func (p Position) Distance(other Position) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	dz := p.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Lerp interpolates linearly between p and other. t=0 yields p, t=1 yields
// other.
func (p Position) Lerp(other Position, t float64) Position {
	return Position{
		X: p.X + (other.X-p.X)*t,
		Y: p.Y + (other.Y-p.Y)*t,
		Z: p.Z + (other.Z-p.Z)*t,
	}
}

// AngleTo returns the Y-axis bearing from p to other in radians. Coincident
// points report a bearing of zero.
func (p Position) AngleTo(other Position) float64 {
	dx := other.X - p.X
	dz := other.Z - p.Z
	length := math.Sqrt(dx*dx + dz*dz)
	if length == 0 {
		return 0
	}
	return math.Atan2(dx/length, dz/length)
}

// PerpendicularOffset returns the offset vector perpendicular (to the right)
// of the direction p->other, with the given magnitude. Used to separate the
// two lanes of a paired two-way road; the reversed direction produces the
// opposite world-side offset by construction.
func (p Position) PerpendicularOffset(other Position, offset float64) Position {
	dx := other.X - p.X
	dz := other.Z - p.Z
	length := math.Sqrt(dx*dx + dz*dz)
	if length == 0 {
		return Position{}
	}
	return Position{
		X: -dz / length * offset,
		Z: dx / length * offset,
	}
}
