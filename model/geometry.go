package model

import "math"

// Point is a position on the map plane in game units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) DistanceSquared(o Point) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return dx*dx + dy*dy
}

func (p Point) Distance(o Point) float64 {
	return math.Sqrt(p.DistanceSquared(o))
}

// IsCloser reports whether o lies strictly within dist of p.
func (p Point) IsCloser(dist float64, o Point) bool {
	return p.DistanceSquared(o) < dist*dist
}

// IsFurther reports whether o lies strictly beyond dist of p.
func (p Point) IsFurther(dist float64, o Point) bool {
	return p.DistanceSquared(o) > dist*dist
}

// Towards returns the point offset from p by dist in the direction of target.
// Coincident points yield p unchanged.
func (p Point) Towards(target Point, dist float64) Point {
	d := p.Distance(target)
	if d == 0 {
		return p
	}
	return Point{
		X: p.X + (target.X-p.X)/d*dist,
		Y: p.Y + (target.Y-p.Y)/d*dist,
	}
}

// Offset translates p by (dx, dy).
func (p Point) Offset(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}
