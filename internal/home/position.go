package home

import "math"

// PositionEpsilon absorbs floating point noise when comparing positions.
const PositionEpsilon = 1e-10

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Equals compares two positions with an epsilon tolerance.
func (p Position) Equals(o Position) bool {
	return math.Abs(p.X-o.X) <= PositionEpsilon && math.Abs(p.Y-o.Y) <= PositionEpsilon
}

// DistanceTo returns the euclidean distance between two positions.
func (p Position) DistanceTo(o Position) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

func (p Position) inBounds(width, height float64) bool {
	return p.X >= 0 && p.X <= width && p.Y >= 0 && p.Y <= height
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
