package geometry

// HandleSize is the on-screen size of a resize handle in pixels. Handle hit
// areas are divided by the zoom scale so they keep a constant screen size.
const HandleSize = 8.0

// Handle names a resize anchor: the four box corners for box-based variants,
// or one of the three control points of a Line/Arrow.
type Handle string

const (
	HandleNone  Handle = ""
	HandleNW    Handle = "nw"
	HandleNE    Handle = "ne"
	HandleSE    Handle = "se"
	HandleSW    Handle = "sw"
	HandleStart Handle = "start"
	HandleMid   Handle = "mid"
	HandleEnd   Handle = "end"
)

type handleSpot struct {
	x, y float64
	h    Handle
}

// cornerHandles places the four corner handles around the box. The nw and sw
// handles sit one handle-size outside the start edges so the hit square
// [x, x+size] lands just outside the shape, mirroring the drawn handles.
func cornerHandles(b Box, size float64) [4]handleSpot {
	return [4]handleSpot{
		{b.StartX - size, b.StartY - size, HandleNW},
		{b.EndX, b.StartY - size, HandleNE},
		{b.EndX, b.EndY, HandleSE},
		{b.StartX - size, b.EndY, HandleSW},
	}
}

// ResizeHandleAt returns the handle under p for the given shape, or
// HandleNone. Line and Arrow expose their control points first, tested by
// distance, and fall back to the corner handles of their bounding box. The
// first matching handle in enumeration order wins.
func ResizeHandleAt(p Point, s Shape, scale float64) Handle {
	if scale == 0 {
		return HandleNone
	}
	size := HandleSize / scale

	if cp, ok := s.(interface{ ControlPoints() [3]Point }); ok {
		pts := cp.ControlPoints()
		for i, h := range []Handle{HandleStart, HandleMid, HandleEnd} {
			if p.Dist(pts[i]) <= size/2 {
				return h
			}
		}
	}

	for _, spot := range cornerHandles(s.Bounds(), size) {
		if p.X >= spot.x && p.X <= spot.x+size && p.Y >= spot.y && p.Y <= spot.y+size {
			return spot.h
		}
	}
	return HandleNone
}

// ResizeBox moves the two box edges owned by a corner handle by (dx, dy).
// Point handles and unrecognized handles leave the box unchanged. The result
// is deliberately not normalized; callers normalize when the gesture ends.
func ResizeBox(b Box, h Handle, dx, dy float64) Box {
	switch h {
	case HandleNW:
		b.StartX += dx
		b.StartY += dy
	case HandleNE:
		b.StartY += dy
		b.EndX += dx
	case HandleSE:
		b.EndX += dx
		b.EndY += dy
	case HandleSW:
		b.EndY += dy
		b.StartX += dx
	}
	return b
}

// MovePoint moves the single control point owned by a point handle by
// (dx, dy). Corner handles and unrecognized handles are no-ops.
func MovePoint(pts [3]Point, h Handle, dx, dy float64) [3]Point {
	switch h {
	case HandleStart:
		pts[0].X += dx
		pts[0].Y += dy
	case HandleMid:
		pts[1].X += dx
		pts[1].Y += dy
	case HandleEnd:
		pts[2].X += dx
		pts[2].Y += dy
	}
	return pts
}

// Remap maps p from its relative position within old onto the corresponding
// position within next. A degenerate old box (zero width or height)
// collapses the point onto next's origin.
func Remap(p Point, old, next Box) Point {
	ow, oh := old.Width(), old.Height()
	if ow == 0 || oh == 0 {
		return Point{X: next.StartX, Y: next.StartY}
	}
	relX := (p.X - old.StartX) / ow
	relY := (p.Y - old.StartY) / oh
	return Point{
		X: next.StartX + relX*next.Width(),
		Y: next.StartY + relY*next.Height(),
	}
}
