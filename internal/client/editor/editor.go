// Package editor is the pointer and keyboard interaction state machine. It
// turns raw input events into shape mutations, committing every change to
// the shape store and publishing it to the room. Exactly one state is active
// at a time; invalid input never raises an error, it clamps or no-ops.
package editor

import (
	"math"

	"livedraw/internal/client/store"
	"livedraw/internal/geometry"
)

// Tool selects what pointer input means.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolEraser    Tool = "eraser"
	ToolText      Tool = "text"
	ToolRectangle Tool = "rectangle"
	ToolEllipse   Tool = "ellipse"
	ToolDiamond   Tool = "diamond"
	ToolLine      Tool = "line"
	ToolArrow     Tool = "arrow"
	ToolFreehand  Tool = "pencil"
)

// State is the single active interaction mode.
type State string

const (
	StateIdle        State = "idle"
	StateDrawing     State = "drawing"
	StateDragging    State = "dragging"
	StateResizing    State = "resizing"
	StateErasing     State = "erasing"
	StateTextEditing State = "text-editing"
)

// Publisher propagates committed local mutations to the room. A nil
// publisher keeps the editor fully functional offline.
type Publisher interface {
	ShareShape(geometry.Shape) error
	ShareRemoval(geometry.Shape) error
}

// Style holds the attributes stamped onto newly drawn shapes.
type Style struct {
	Options    geometry.Options
	Edge       geometry.EdgeStyle
	Arrowhead  geometry.Arrowhead
	FontSize   float64
	FontFamily string
	FontColor  string
	LineHeight float64
}

// DefaultStyle matches the drawing surface's initial tool settings.
func DefaultStyle() Style {
	return Style{
		Options:    geometry.Options{Stroke: "#1e1e1e", Fill: "transparent", StrokeWidth: 1, FillStyle: geometry.FillHachure},
		Edge:       geometry.EdgeSharp,
		Arrowhead:  geometry.ArrowheadArrow,
		FontSize:   25,
		FontFamily: "Nunito",
		FontColor:  "#1e1e1e",
		LineHeight: 1.2,
	}
}

// Editor drives the interaction state machine against a shape store.
type Editor struct {
	store    *store.Store
	pub      Publisher
	measurer Measurer

	tool  Tool
	state State
	style Style
	scale float64

	selectedID string
	anchor     geometry.Point // pointer position at the start of the gesture
	dragStart  geometry.Point // pointer position at the last processed move
	handle     geometry.Handle
	current    geometry.Shape  // shape under construction while Drawing
	erased     map[string]bool // soft-deleted ids collected while Erasing

	text textState
}

// Option configures an Editor.
type Option func(*Editor)

// WithMeasurer installs real font metrics for text layout.
func WithMeasurer(m Measurer) Option {
	return func(e *Editor) { e.measurer = m }
}

// WithPublisher wires committed mutations into a room session.
func WithPublisher(p Publisher) Option {
	return func(e *Editor) { e.pub = p }
}

func New(st *store.Store, opts ...Option) *Editor {
	e := &Editor{
		store:    st,
		measurer: heuristicMeasurer{},
		tool:     ToolSelect,
		state:    StateIdle,
		style:    DefaultStyle(),
		scale:    1,
		erased:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the active interaction mode.
func (e *Editor) State() State { return e.state }

// Tool returns the active tool.
func (e *Editor) Tool() Tool { return e.tool }

// SelectedID returns the id of the selected shape, or "".
func (e *Editor) SelectedID() string { return e.selectedID }

// SetTool switches tools, abandoning any transient interaction state.
func (e *Editor) SetTool(t Tool) {
	if e.state == StateTextEditing {
		e.exitTextEditing()
	}
	e.tool = t
	e.state = StateIdle
	e.current = nil
	e.erased = make(map[string]bool)
}

// SetScale records the canvas zoom, which shrinks resize handles in canvas
// space so they keep constant screen size.
func (e *Editor) SetScale(scale float64) { e.scale = scale }

// SetStyle updates the attributes applied to newly drawn shapes.
func (e *Editor) SetStyle(s Style) { e.style = s }

// Style returns the current drawing attributes.
func (e *Editor) Style() Style { return e.style }

// PointerDown starts a gesture at p.
func (e *Editor) PointerDown(p geometry.Point) {
	switch e.tool {
	case ToolEraser:
		e.state = StateErasing
		e.selectedID = ""
		e.eraseAt(p)

	case ToolText:
		e.textPointerDown(p)

	case ToolSelect:
		// a handle hit on the selected shape wins over plain hit-testing
		if e.selectedID != "" {
			if shape, ok := e.store.Get(e.selectedID); ok {
				if h := geometry.ResizeHandleAt(p, shape, e.scale); h != geometry.HandleNone {
					e.state = StateResizing
					e.handle = h
					e.anchor = p
					e.dragStart = p
					return
				}
			}
		}
		if id := e.hitTopmost(p); id != "" {
			e.selectedID = id
			e.state = StateDragging
			e.dragStart = p
			return
		}
		e.selectedID = ""
		e.state = StateIdle

	default:
		e.startDrawing(p)
	}
}

// PointerMove advances the active gesture to p.
func (e *Editor) PointerMove(p geometry.Point) {
	switch e.state {
	case StateDrawing:
		e.continueDrawing(p)
	case StateDragging:
		e.dragTo(p)
	case StateResizing:
		e.resizeTo(p)
	case StateErasing:
		e.eraseAt(p)
	case StateTextEditing:
		e.textPointerMove(p)
	}
}

// PointerUp finishes the active gesture.
func (e *Editor) PointerUp() {
	switch e.state {
	case StateDrawing:
		e.finishDrawing()
	case StateResizing:
		e.finishResizing()
	case StateDragging:
		e.state = StateIdle
	case StateErasing:
		// erase promotes every soft delete to a hard delete
		for id := range e.erased {
			e.store.RemoveLocal(id)
		}
		e.erased = make(map[string]bool)
		e.state = StateIdle
	case StateTextEditing:
		e.textPointerUp()
	}
}

// hitTopmost hit-tests all shapes in reverse z-order so the last drawn shape
// wins on overlap.
func (e *Editor) hitTopmost(p geometry.Point) string {
	snap := e.store.Snapshot()
	for i := len(snap) - 1; i >= 0; i-- {
		if snap[i].HitTest(p) {
			return snap[i].ID()
		}
	}
	return ""
}

func (e *Editor) startDrawing(p geometry.Point) {
	id := geometry.NewID()
	box := geometry.Box{StartX: p.X, StartY: p.Y, EndX: p.X, EndY: p.Y}
	pts := geometry.LinePoints{SX: p.X, SY: p.Y, MX: p.X, MY: p.Y, EX: p.X, EY: p.Y}

	switch e.tool {
	case ToolRectangle:
		e.current = &geometry.Rectangle{ShapeID: id, Options: e.style.Options, Box: box, Edge: e.style.Edge}
	case ToolEllipse:
		e.current = &geometry.Ellipse{ShapeID: id, Options: e.style.Options, Box: box}
	case ToolDiamond:
		e.current = &geometry.Diamond{ShapeID: id, Options: e.style.Options, Box: box, Edge: e.style.Edge}
	case ToolLine:
		e.current = &geometry.Line{ShapeID: id, Options: e.style.Options, Box: box, LinePoints: pts}
	case ToolArrow:
		e.current = &geometry.Arrow{ShapeID: id, Options: e.style.Options, Box: box, LinePoints: pts, Head: e.style.Arrowhead}
	case ToolFreehand:
		f := &geometry.Freehand{ShapeID: id, Options: e.style.Options}
		f.Append(p)
		e.current = f
	default:
		return
	}

	e.state = StateDrawing
	e.anchor = p
	e.commit(e.current)
}

func (e *Editor) continueDrawing(p geometry.Point) {
	switch s := e.current.(type) {
	case *geometry.Rectangle:
		s.Box = geometry.BoxAround(e.anchor, p)
	case *geometry.Ellipse:
		s.Box = geometry.BoxAround(e.anchor, p)
	case *geometry.Diamond:
		s.Box = geometry.BoxAround(e.anchor, p)
	case *geometry.Line:
		s.LinePoints = lineBetween(e.anchor, p)
		s.DeriveBounds()
	case *geometry.Arrow:
		s.LinePoints = lineBetween(e.anchor, p)
		s.DeriveBounds()
	case *geometry.Freehand:
		s.Append(p)
	default:
		return
	}
	e.commit(e.current)
}

func (e *Editor) finishDrawing() {
	if e.current != nil {
		e.normalizeAfterResize(e.current)
		e.commit(e.current)
		e.selectedID = e.current.ID()
	}
	e.current = nil
	e.state = StateIdle
}

func lineBetween(anchor, p geometry.Point) geometry.LinePoints {
	return geometry.LinePoints{
		SX: anchor.X, SY: anchor.Y,
		MX: (anchor.X + p.X) / 2, MY: (anchor.Y + p.Y) / 2,
		EX: p.X, EY: p.Y,
	}
}

func (e *Editor) dragTo(p geometry.Point) {
	shape, ok := e.store.Get(e.selectedID)
	if !ok {
		return
	}
	shape.Translate(p.X-e.dragStart.X, p.Y-e.dragStart.Y)
	e.dragStart = p
	e.commit(shape)
}

func (e *Editor) resizeTo(p geometry.Point) {
	shape, ok := e.store.Get(e.selectedID)
	if !ok {
		return
	}
	dx, dy := p.X-e.dragStart.X, p.Y-e.dragStart.Y

	switch s := shape.(type) {
	case *geometry.Text:
		if !e.resizeText(s, dx, dy) {
			return
		}
	case *geometry.Line:
		resizeLinePoints(&s.LinePoints, &s.Box, e.handle, dx, dy)
	case *geometry.Arrow:
		resizeLinePoints(&s.LinePoints, &s.Box, e.handle, dx, dy)
	case *geometry.Freehand:
		next := geometry.ResizeBox(s.Box, e.handle, dx, dy)
		for i, pt := range s.Points {
			mapped := geometry.Remap(geometry.Point{X: pt[0], Y: pt[1]}, s.Box, next)
			s.Points[i] = [2]float64{mapped.X, mapped.Y}
		}
		s.Box = next
	case *geometry.Rectangle:
		s.Box = geometry.ResizeBox(s.Box, e.handle, dx, dy)
	case *geometry.Ellipse:
		s.Box = geometry.ResizeBox(s.Box, e.handle, dx, dy)
	case *geometry.Diamond:
		s.Box = geometry.ResizeBox(s.Box, e.handle, dx, dy)
	default:
		return
	}

	e.dragStart = p
	e.commit(shape)
}

// resizeLinePoints applies a resize gesture to a three-point shape: point
// handles move only their own control point, corner handles rescale all
// three by their relative position within the box.
func resizeLinePoints(pts *geometry.LinePoints, box *geometry.Box, h geometry.Handle, dx, dy float64) {
	switch h {
	case geometry.HandleStart, geometry.HandleMid, geometry.HandleEnd:
		moved := geometry.MovePoint(pts.ControlPoints(), h, dx, dy)
		pts.SetControlPoints(moved)
		*box = geometry.BoxOf(moved[0], moved[1], moved[2])
	default:
		next := geometry.ResizeBox(*box, h, dx, dy)
		cp := pts.ControlPoints()
		for i, p := range cp {
			cp[i] = geometry.Remap(p, *box, next)
		}
		pts.SetControlPoints(cp)
		*box = next
	}
}

func (e *Editor) finishResizing() {
	if shape, ok := e.store.Get(e.selectedID); ok {
		e.normalizeAfterResize(shape)
		e.commit(shape)
	}
	e.state = StateIdle
}

// normalizeAfterResize restores the start<=end box invariant: box variants
// sort their corners, three-point variants re-derive the box from their
// control points.
func (e *Editor) normalizeAfterResize(shape geometry.Shape) {
	switch s := shape.(type) {
	case *geometry.Rectangle:
		s.Box = s.Box.Normalized()
	case *geometry.Ellipse:
		s.Box = s.Box.Normalized()
	case *geometry.Diamond:
		s.Box = s.Box.Normalized()
	case *geometry.Freehand:
		s.DeriveBounds()
	case *geometry.Line:
		s.DeriveBounds()
	case *geometry.Arrow:
		s.DeriveBounds()
	}
}

func (e *Editor) eraseAt(p geometry.Point) {
	for _, shape := range e.store.Snapshot() {
		if e.erased[shape.ID()] || !shape.HitTest(p) {
			continue
		}
		e.erased[shape.ID()] = true
		shape.SetDeleted(true)
		e.store.ApplyLocal(shape)
		if e.pub != nil {
			e.pub.ShareRemoval(shape)
		}
	}
}

// commit writes the shape to the store and publishes it to the room.
func (e *Editor) commit(shape geometry.Shape) {
	e.store.ApplyLocal(shape)
	if e.pub != nil {
		e.pub.ShareShape(shape)
	}
}

// resizeText recomputes a text block's box and font size for a resize
// gesture. The target box is squared to the larger side, corner handles
// anchor the opposite corner, anything else anchors the center, and the
// font is rescaled to fit the padded box within [8,200]. Boxes below the
// minimum size reject the gesture.
func (e *Editor) resizeText(t *geometry.Text, dx, dy float64) bool {
	const (
		minWidth  = 60.0
		minHeight = 20.0
		padding   = 8.0
	)

	next := geometry.ResizeBox(t.Box, e.handle, dx, dy)
	width := math.Abs(next.EndX - next.StartX)
	height := math.Abs(next.EndY - next.StartY)
	if width < minWidth || height < minHeight {
		return false
	}
	side := math.Max(width, height)

	target := side - 2*padding
	fontSize := t.FontSize
	w, h := textMetrics(e.measurer, t.Content, fontSize, t.LineHeight, t.FontFamily)
	if w > 0 && h > 0 {
		if w > target || h > target {
			scale := math.Min(target/w, target/h)
			fontSize = math.Max(8, math.Round(fontSize*scale))
		} else {
			fontSize = math.Min(200, math.Round(fontSize*target/w))
			_, h = textMetrics(e.measurer, t.Content, fontSize, t.LineHeight, t.FontFamily)
			if h > target {
				fontSize = math.Max(8, math.Round(fontSize*target/h))
			}
		}
	}

	old := t.Box
	switch e.handle {
	case geometry.HandleNW:
		t.Box = geometry.Box{StartX: old.EndX - side, StartY: old.EndY - side, EndX: old.EndX, EndY: old.EndY}
	case geometry.HandleNE:
		t.Box = geometry.Box{StartX: old.StartX, StartY: old.EndY - side, EndX: old.StartX + side, EndY: old.EndY}
	case geometry.HandleSW:
		t.Box = geometry.Box{StartX: old.EndX - side, StartY: old.StartY, EndX: old.EndX, EndY: old.StartY + side}
	case geometry.HandleSE:
		t.Box = geometry.Box{StartX: old.StartX, StartY: old.StartY, EndX: old.StartX + side, EndY: old.StartY + side}
	default:
		c := old.Center()
		t.Box = geometry.Box{StartX: c.X - side/2, StartY: c.Y - side/2, EndX: c.X + side/2, EndY: c.Y + side/2}
	}
	t.FontSize = fontSize
	t.X = t.Box.StartX + padding
	t.Y = t.Box.StartY + padding
	return true
}
