package geometry

import "github.com/google/uuid"

// Kind discriminates the shape variants. The string values are the wire tags.
type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindEllipse   Kind = "ellipse"
	KindDiamond   Kind = "diamond"
	KindLine      Kind = "line"
	KindArrow     Kind = "arrow"
	KindFreehand  Kind = "pencil"
	KindText      Kind = "text"
)

// Shape is one drawable primitive. Each variant is its own struct; operations
// that differ per variant are methods rather than type-tag switches.
//
// The shape identifier is assigned at creation and immutable for the shape's
// lifetime. Deletion is a soft flag; the store decides when a flagged shape
// is actually removed.
type Shape interface {
	ID() string
	Kind() Kind
	IsDeleted() bool
	SetDeleted(bool)

	// Bounds returns the current bounding box. For every variant the box
	// contains all geometry-defining points.
	Bounds() Box

	// Transform returns a copy with p' = p*scale + pan applied to every
	// coordinate field and point. Text additionally scales its font size.
	Transform(scale, panX, panY float64) Shape

	// HitTest reports whether p hits the shape. Box variants use inclusive
	// bounding-box containment; Ellipse and Diamond test their actual
	// outline region.
	HitTest(p Point) bool

	// Translate moves every coordinate of the shape by (dx, dy).
	Translate(dx, dy float64)

	// Clone returns a deep copy.
	Clone() Shape
}

// LinePoints are the three control points shared by Line and Arrow.
type LinePoints struct {
	SX float64 `json:"sX"`
	SY float64 `json:"sY"`
	MX float64 `json:"mX"`
	MY float64 `json:"mY"`
	EX float64 `json:"eX"`
	EY float64 `json:"eY"`
}

// ControlPoints returns the start, mid and end points in order.
func (l *LinePoints) ControlPoints() [3]Point {
	return [3]Point{{l.SX, l.SY}, {l.MX, l.MY}, {l.EX, l.EY}}
}

// SetControlPoints overwrites the start, mid and end points.
func (l *LinePoints) SetControlPoints(pts [3]Point) {
	l.SX, l.SY = pts[0].X, pts[0].Y
	l.MX, l.MY = pts[1].X, pts[1].Y
	l.EX, l.EY = pts[2].X, pts[2].Y
}

func (l LinePoints) translated(dx, dy float64) LinePoints {
	return LinePoints{SX: l.SX + dx, SY: l.SY + dy, MX: l.MX + dx, MY: l.MY + dy, EX: l.EX + dx, EY: l.EY + dy}
}

func (l LinePoints) scaled(scale, panX, panY float64) LinePoints {
	return LinePoints{
		SX: l.SX*scale + panX, SY: l.SY*scale + panY,
		MX: l.MX*scale + panX, MY: l.MY*scale + panY,
		EX: l.EX*scale + panX, EY: l.EY*scale + panY,
	}
}

// Rectangle is an axis-aligned rectangle with an optional rounded edge.
type Rectangle struct {
	ShapeID string `json:"id"`
	Deleted bool   `json:"isDeleted"`
	Options
	Box
	Edge EdgeStyle `json:"edgeType"`
}

// Ellipse is inscribed into its bounding box.
type Ellipse struct {
	ShapeID string `json:"id"`
	Deleted bool   `json:"isDeleted"`
	Options
	Box
}

// Diamond is the convex quadrilateral formed by the four edge midpoints of
// its bounding box.
type Diamond struct {
	ShapeID string `json:"id"`
	Deleted bool   `json:"isDeleted"`
	Options
	Box
	Edge EdgeStyle `json:"edgeType"`
}

// Line is a two-segment polyline through start, mid and end control points.
// The box is derived from the control points.
type Line struct {
	ShapeID string `json:"id"`
	Deleted bool   `json:"isDeleted"`
	Options
	Box
	LinePoints
}

// Arrow is a Line with an arrowhead at its end point.
type Arrow struct {
	ShapeID string `json:"id"`
	Deleted bool   `json:"isDeleted"`
	Options
	Box
	LinePoints
	Head Arrowhead `json:"arrowType"`
}

// Freehand is an append-only sequence of pointer samples. The box is derived
// as the min/max over all samples.
type Freehand struct {
	ShapeID string `json:"id"`
	Deleted bool   `json:"isDeleted"`
	Options
	Box
	Points [][2]float64 `json:"points"`
}

// Text is a multi-line text block anchored at an origin. The box is derived
// from measured text dimensions and tracks the origin.
type Text struct {
	ShapeID string `json:"id"`
	Deleted bool   `json:"isDeleted"`
	Options
	Box
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Content    string  `json:"text"`
	FontSize   float64 `json:"fontSize"`
	FontFamily string  `json:"fontFamily"`
	Color      string  `json:"color"`
	LineHeight float64 `json:"lineHeight"`
}

// NewID returns a fresh globally unique shape identifier.
func NewID() string { return uuid.NewString() }

func (r *Rectangle) ID() string        { return r.ShapeID }
func (r *Rectangle) Kind() Kind        { return KindRectangle }
func (r *Rectangle) IsDeleted() bool   { return r.Deleted }
func (r *Rectangle) SetDeleted(d bool) { r.Deleted = d }
func (r *Rectangle) Bounds() Box       { return r.Box }
func (r *Rectangle) Translate(dx, dy float64) {
	r.Box = r.Box.translate(dx, dy)
}
func (r *Rectangle) Clone() Shape { c := *r; return &c }
func (r *Rectangle) Transform(scale, panX, panY float64) Shape {
	c := *r
	c.Box = r.Box.scaled(scale, panX, panY)
	return &c
}

func (e *Ellipse) ID() string        { return e.ShapeID }
func (e *Ellipse) Kind() Kind        { return KindEllipse }
func (e *Ellipse) IsDeleted() bool   { return e.Deleted }
func (e *Ellipse) SetDeleted(d bool) { e.Deleted = d }
func (e *Ellipse) Bounds() Box       { return e.Box }
func (e *Ellipse) Translate(dx, dy float64) {
	e.Box = e.Box.translate(dx, dy)
}
func (e *Ellipse) Clone() Shape { c := *e; return &c }
func (e *Ellipse) Transform(scale, panX, panY float64) Shape {
	c := *e
	c.Box = e.Box.scaled(scale, panX, panY)
	return &c
}

func (d *Diamond) ID() string        { return d.ShapeID }
func (d *Diamond) Kind() Kind        { return KindDiamond }
func (d *Diamond) IsDeleted() bool   { return d.Deleted }
func (d *Diamond) SetDeleted(v bool) { d.Deleted = v }
func (d *Diamond) Bounds() Box       { return d.Box }
func (d *Diamond) Translate(dx, dy float64) {
	d.Box = d.Box.translate(dx, dy)
}
func (d *Diamond) Clone() Shape { c := *d; return &c }
func (d *Diamond) Transform(scale, panX, panY float64) Shape {
	c := *d
	c.Box = d.Box.scaled(scale, panX, panY)
	return &c
}

func (l *Line) ID() string        { return l.ShapeID }
func (l *Line) Kind() Kind        { return KindLine }
func (l *Line) IsDeleted() bool   { return l.Deleted }
func (l *Line) SetDeleted(d bool) { l.Deleted = d }
func (l *Line) Bounds() Box       { return l.Box }
func (l *Line) Translate(dx, dy float64) {
	l.Box = l.Box.translate(dx, dy)
	l.LinePoints = l.LinePoints.translated(dx, dy)
}
func (l *Line) Clone() Shape { c := *l; return &c }
func (l *Line) Transform(scale, panX, panY float64) Shape {
	c := *l
	c.Box = l.Box.scaled(scale, panX, panY)
	c.LinePoints = l.LinePoints.scaled(scale, panX, panY)
	return &c
}

// DeriveBounds recomputes the box as the min/max over the control points.
func (l *Line) DeriveBounds() {
	pts := l.ControlPoints()
	l.Box = BoxOf(pts[:]...)
}

func (a *Arrow) ID() string        { return a.ShapeID }
func (a *Arrow) Kind() Kind        { return KindArrow }
func (a *Arrow) IsDeleted() bool   { return a.Deleted }
func (a *Arrow) SetDeleted(d bool) { a.Deleted = d }
func (a *Arrow) Bounds() Box       { return a.Box }
func (a *Arrow) Translate(dx, dy float64) {
	a.Box = a.Box.translate(dx, dy)
	a.LinePoints = a.LinePoints.translated(dx, dy)
}
func (a *Arrow) Clone() Shape { c := *a; return &c }
func (a *Arrow) Transform(scale, panX, panY float64) Shape {
	c := *a
	c.Box = a.Box.scaled(scale, panX, panY)
	c.LinePoints = a.LinePoints.scaled(scale, panX, panY)
	return &c
}

// DeriveBounds recomputes the box as the min/max over the control points.
func (a *Arrow) DeriveBounds() {
	pts := a.ControlPoints()
	a.Box = BoxOf(pts[:]...)
}

func (f *Freehand) ID() string        { return f.ShapeID }
func (f *Freehand) Kind() Kind        { return KindFreehand }
func (f *Freehand) IsDeleted() bool   { return f.Deleted }
func (f *Freehand) SetDeleted(d bool) { f.Deleted = d }
func (f *Freehand) Bounds() Box       { return f.Box }
func (f *Freehand) Translate(dx, dy float64) {
	f.Box = f.Box.translate(dx, dy)
	for i := range f.Points {
		f.Points[i][0] += dx
		f.Points[i][1] += dy
	}
}
func (f *Freehand) Clone() Shape {
	c := *f
	c.Points = make([][2]float64, len(f.Points))
	copy(c.Points, f.Points)
	return &c
}
func (f *Freehand) Transform(scale, panX, panY float64) Shape {
	c := *f
	c.Box = f.Box.scaled(scale, panX, panY)
	c.Points = make([][2]float64, len(f.Points))
	for i, p := range f.Points {
		c.Points[i] = [2]float64{p[0]*scale + panX, p[1]*scale + panY}
	}
	return &c
}

// Append records one more pointer sample and re-derives the bounding box
// over all samples so far.
func (f *Freehand) Append(p Point) {
	f.Points = append(f.Points, [2]float64{p.X, p.Y})
	f.DeriveBounds()
}

// DeriveBounds recomputes the box as the min/max over all samples.
func (f *Freehand) DeriveBounds() {
	if len(f.Points) == 0 {
		return
	}
	b := Box{StartX: f.Points[0][0], StartY: f.Points[0][1], EndX: f.Points[0][0], EndY: f.Points[0][1]}
	for _, p := range f.Points[1:] {
		if p[0] < b.StartX {
			b.StartX = p[0]
		}
		if p[1] < b.StartY {
			b.StartY = p[1]
		}
		if p[0] > b.EndX {
			b.EndX = p[0]
		}
		if p[1] > b.EndY {
			b.EndY = p[1]
		}
	}
	f.Box = b
}

func (t *Text) ID() string        { return t.ShapeID }
func (t *Text) Kind() Kind        { return KindText }
func (t *Text) IsDeleted() bool   { return t.Deleted }
func (t *Text) SetDeleted(d bool) { t.Deleted = d }
func (t *Text) Bounds() Box       { return t.Box }
func (t *Text) Translate(dx, dy float64) {
	t.Box = t.Box.translate(dx, dy)
	t.X += dx
	t.Y += dy
}
func (t *Text) Clone() Shape { c := *t; return &c }
func (t *Text) Transform(scale, panX, panY float64) Shape {
	c := *t
	c.Box = t.Box.scaled(scale, panX, panY)
	c.X = t.X*scale + panX
	c.Y = t.Y*scale + panY
	c.FontSize = t.FontSize * scale
	return &c
}
