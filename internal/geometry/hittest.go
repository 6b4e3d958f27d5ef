package geometry

// Bounding-box containment is a deliberate cheap approximation for the box
// variants; only Ellipse and Diamond test their actual outline region.

func (r *Rectangle) HitTest(p Point) bool { return r.Box.Contains(p) }
func (l *Line) HitTest(p Point) bool      { return l.Box.Contains(p) }
func (a *Arrow) HitTest(p Point) bool     { return a.Box.Contains(p) }
func (f *Freehand) HitTest(p Point) bool  { return f.Box.Contains(p) }
func (t *Text) HitTest(p Point) bool      { return t.Box.Contains(p) }

// HitTest checks the standard ellipse inequality against the box's center
// and semi-axes.
func (e *Ellipse) HitTest(p Point) bool {
	c := e.Box.Center()
	rx := e.Box.Width() / 2
	ry := e.Box.Height() / 2
	if rx == 0 || ry == 0 {
		return false
	}
	dx := (p.X - c.X) / rx
	dy := (p.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1
}

// HitTest checks containment in the convex quadrilateral formed by the four
// edge midpoints of the bounding box.
func (d *Diamond) HitTest(p Point) bool {
	c := d.Box.Center()
	quad := [4]Point{
		{c.X, d.Box.EndY},
		{d.Box.EndX, c.Y},
		{c.X, d.Box.StartY},
		{d.Box.StartX, c.Y},
	}
	return pointInConvexQuad(p, quad)
}

// pointInConvexQuad tests p against each edge with a cross product; p is
// inside iff all cross products share a sign (zero counts as either).
func pointInConvexQuad(p Point, quad [4]Point) bool {
	allNonNeg := true
	allNonPos := true
	for i := range quad {
		a := quad[i]
		b := quad[(i+1)%4]
		cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
		if cross < 0 {
			allNonNeg = false
		}
		if cross > 0 {
			allNonPos = false
		}
	}
	return allNonNeg || allNonPos
}
