package model

// Point is a coordinate in diagram space. Used for connector waypoints
// and pinned floating endpoints.
type Point struct {
	X, Y float64
}

// Rect is the position and extent of an element. X and Y address the
// top-left corner in diagram space.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Center returns the midpoint of the rectangle. Detached connector
// endpoints are pinned here when their element is removed.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Union returns the smallest rectangle covering both r and o.
// Used to compute a group's bounding geometry from its members.
func (r Rect) Union(o Rect) Rect {
	x1 := min(r.X, o.X)
	y1 := min(r.Y, o.Y)
	x2 := max(r.X+r.Width, o.X+o.Width)
	y2 := max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
