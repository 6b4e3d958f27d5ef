// Package geometry implements the shape model of the drawing surface: the
// shape variants, coordinate transforms, hit testing and resize-handle math.
// It is pure and has no dependencies on the transport or editor layers.
package geometry

import "math"

// Point is a position in canvas coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance to q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Box is an axis-aligned bounding box. A normalized box has StartX<=EndX and
// StartY<=EndY; every mutation that moves geometry-defining points is
// followed by a box re-derivation so the box always contains the geometry.
type Box struct {
	StartX float64 `json:"startX"`
	StartY float64 `json:"startY"`
	EndX   float64 `json:"endX"`
	EndY   float64 `json:"endY"`
}

func (b Box) Width() float64  { return b.EndX - b.StartX }
func (b Box) Height() float64 { return b.EndY - b.StartY }

// Center returns the box midpoint.
func (b Box) Center() Point {
	return Point{X: (b.StartX + b.EndX) / 2, Y: (b.StartY + b.EndY) / 2}
}

// Normalized returns the box with start/end ordered on both axes.
func (b Box) Normalized() Box {
	if b.StartX > b.EndX {
		b.StartX, b.EndX = b.EndX, b.StartX
	}
	if b.StartY > b.EndY {
		b.StartY, b.EndY = b.EndY, b.StartY
	}
	return b
}

// Contains reports whether p lies inside the box, boundary inclusive.
func (b Box) Contains(p Point) bool {
	return p.X >= b.StartX && p.X <= b.EndX && p.Y >= b.StartY && p.Y <= b.EndY
}

func (b Box) translate(dx, dy float64) Box {
	return Box{StartX: b.StartX + dx, StartY: b.StartY + dy, EndX: b.EndX + dx, EndY: b.EndY + dy}
}

func (b Box) scaled(scale, panX, panY float64) Box {
	return Box{
		StartX: b.StartX*scale + panX,
		StartY: b.StartY*scale + panY,
		EndX:   b.EndX*scale + panX,
		EndY:   b.EndY*scale + panY,
	}
}

// BoxAround returns the minimal normalized box enclosing two points.
func BoxAround(a, b Point) Box {
	return Box{
		StartX: math.Min(a.X, b.X),
		StartY: math.Min(a.Y, b.Y),
		EndX:   math.Max(a.X, b.X),
		EndY:   math.Max(a.Y, b.Y),
	}
}

// BoxOf returns the minimal box enclosing all pts. An empty slice yields the
// zero box.
func BoxOf(pts ...Point) Box {
	if len(pts) == 0 {
		return Box{}
	}
	b := Box{StartX: pts[0].X, StartY: pts[0].Y, EndX: pts[0].X, EndY: pts[0].Y}
	for _, p := range pts[1:] {
		b.StartX = math.Min(b.StartX, p.X)
		b.StartY = math.Min(b.StartY, p.Y)
		b.EndX = math.Max(b.EndX, p.X)
		b.EndY = math.Max(b.EndY, p.Y)
	}
	return b
}
