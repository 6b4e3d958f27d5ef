package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livedraw/internal/client/store"
	"livedraw/internal/geometry"
)

type publishRecorder struct {
	shared  []geometry.Shape
	removed []geometry.Shape
}

func (r *publishRecorder) ShareShape(s geometry.Shape) error {
	r.shared = append(r.shared, s.Clone())
	return nil
}

func (r *publishRecorder) ShareRemoval(s geometry.Shape) error {
	r.removed = append(r.removed, s.Clone())
	return nil
}

func newTestEditor(t *testing.T) (*Editor, *store.Store, *publishRecorder) {
	t.Helper()
	st := store.New()
	rec := &publishRecorder{}
	return New(st, WithPublisher(rec)), st, rec
}

// selectAt clicks with the select tool and releases, leaving the hit shape
// selected and the editor idle.
func selectAt(e *Editor, p geometry.Point) {
	e.SetTool(ToolSelect)
	e.PointerDown(p)
	e.PointerUp()
}

func TestDrawRectangleNormalizesBox(t *testing.T) {
	e, st, _ := newTestEditor(t)
	e.SetTool(ToolRectangle)

	// drag up and to the left: the final box must still be start<=end
	e.PointerDown(geometry.Point{X: 50, Y: 50})
	assert.Equal(t, StateDrawing, e.State())
	e.PointerMove(geometry.Point{X: 10, Y: 20})
	e.PointerUp()

	require.Equal(t, 1, st.Len())
	rect := st.Snapshot()[0].(*geometry.Rectangle)
	assert.Equal(t, geometry.Box{StartX: 10, StartY: 20, EndX: 50, EndY: 50}, rect.Box)
	assert.Equal(t, StateIdle, e.State())
	assert.Equal(t, rect.ShapeID, e.SelectedID())
}

func TestDrawLineTracksMidpoint(t *testing.T) {
	e, st, _ := newTestEditor(t)
	e.SetTool(ToolLine)

	e.PointerDown(geometry.Point{X: 0, Y: 0})
	e.PointerMove(geometry.Point{X: 10, Y: 20})
	e.PointerUp()

	line := st.Snapshot()[0].(*geometry.Line)
	assert.Equal(t, geometry.LinePoints{SX: 0, SY: 0, MX: 5, MY: 10, EX: 10, EY: 20}, line.LinePoints)
	assert.Equal(t, geometry.Box{StartX: 0, StartY: 0, EndX: 10, EndY: 20}, line.Box)
}

func TestDrawFreehandAppendsSamples(t *testing.T) {
	e, st, _ := newTestEditor(t)
	e.SetTool(ToolFreehand)

	e.PointerDown(geometry.Point{X: 1, Y: 1})
	e.PointerMove(geometry.Point{X: 5, Y: 5})
	e.PointerMove(geometry.Point{X: 3, Y: 9})
	e.PointerUp()

	f := st.Snapshot()[0].(*geometry.Freehand)
	assert.Equal(t, [][2]float64{{1, 1}, {5, 5}, {3, 9}}, f.Points)
	assert.Equal(t, geometry.Box{StartX: 1, StartY: 1, EndX: 5, EndY: 9}, f.Box)
}

func TestDrawingPublishesEveryCommit(t *testing.T) {
	e, _, rec := newTestEditor(t)
	e.SetTool(ToolEllipse)

	e.PointerDown(geometry.Point{X: 0, Y: 0})
	e.PointerMove(geometry.Point{X: 10, Y: 10})
	e.PointerUp()

	// down, move and up each publish the current shape state
	require.Len(t, rec.shared, 3)
	last := rec.shared[2].(*geometry.Ellipse)
	assert.Equal(t, geometry.Box{StartX: 0, StartY: 0, EndX: 10, EndY: 10}, last.Box)
}

func TestSelectHitsTopmostShape(t *testing.T) {
	e, st, _ := newTestEditor(t)
	bottom := &geometry.Rectangle{ShapeID: geometry.NewID(), Box: geometry.Box{EndX: 20, EndY: 20}}
	top := &geometry.Rectangle{ShapeID: geometry.NewID(), Box: geometry.Box{StartX: 5, StartY: 5, EndX: 25, EndY: 25}}
	st.ApplyLocal(bottom)
	st.ApplyLocal(top)

	e.SetTool(ToolSelect)
	e.PointerDown(geometry.Point{X: 10, Y: 10})

	assert.Equal(t, top.ShapeID, e.SelectedID())
	assert.Equal(t, StateDragging, e.State())
}

func TestSelectMissDeselects(t *testing.T) {
	e, st, _ := newTestEditor(t)
	shape := &geometry.Rectangle{ShapeID: geometry.NewID(), Box: geometry.Box{EndX: 10, EndY: 10}}
	st.ApplyLocal(shape)

	selectAt(e, geometry.Point{X: 5, Y: 5})
	require.Equal(t, shape.ShapeID, e.SelectedID())

	e.PointerDown(geometry.Point{X: 100, Y: 100})
	assert.Empty(t, e.SelectedID())
	assert.Equal(t, StateIdle, e.State())
}

func TestDragTranslatesShape(t *testing.T) {
	e, st, rec := newTestEditor(t)
	shape := &geometry.Rectangle{ShapeID: geometry.NewID(), Box: geometry.Box{EndX: 10, EndY: 10}}
	st.ApplyLocal(shape)

	e.SetTool(ToolSelect)
	e.PointerDown(geometry.Point{X: 5, Y: 5})
	e.PointerMove(geometry.Point{X: 15, Y: 10})
	e.PointerUp()

	got, ok := st.Get(shape.ShapeID)
	require.True(t, ok)
	assert.Equal(t, geometry.Box{StartX: 10, StartY: 5, EndX: 20, EndY: 15}, got.(*geometry.Rectangle).Box)
	assert.NotEmpty(t, rec.shared)
}

func TestResizeHandleBeatsHitTest(t *testing.T) {
	e, st, _ := newTestEditor(t)
	shape := &geometry.Rectangle{ShapeID: geometry.NewID(), Box: geometry.Box{EndX: 10, EndY: 10}}
	st.ApplyLocal(shape)
	selectAt(e, geometry.Point{X: 5, Y: 5})

	// just outside the se corner, inside the handle's hit square
	e.PointerDown(geometry.Point{X: 12, Y: 12})
	assert.Equal(t, StateResizing, e.State())

	e.PointerMove(geometry.Point{X: 22, Y: 22})
	e.PointerUp()

	got, _ := st.Get(shape.ShapeID)
	assert.Equal(t, geometry.Box{StartX: 0, StartY: 0, EndX: 20, EndY: 20}, got.(*geometry.Rectangle).Box)
	assert.Equal(t, StateIdle, e.State())
}

func TestResizeLineStartHandleMovesOnlyStart(t *testing.T) {
	e, st, _ := newTestEditor(t)
	line := &geometry.Line{
		ShapeID:    geometry.NewID(),
		Box:        geometry.Box{StartX: 0, StartY: 0, EndX: 20, EndY: 20},
		LinePoints: geometry.LinePoints{SX: 0, SY: 20, MX: 10, MY: 0, EX: 20, EY: 20},
	}
	st.ApplyLocal(line)
	selectAt(e, geometry.Point{X: 10, Y: 10})

	e.PointerDown(geometry.Point{X: 0, Y: 20})
	require.Equal(t, StateResizing, e.State())
	e.PointerMove(geometry.Point{X: -4, Y: 22})
	e.PointerUp()

	got, _ := st.Get(line.ShapeID)
	pts := got.(*geometry.Line).LinePoints
	assert.Equal(t, geometry.LinePoints{SX: -4, SY: 22, MX: 10, MY: 0, EX: 20, EY: 20}, pts)
	assert.Equal(t, geometry.Box{StartX: -4, StartY: 0, EndX: 20, EndY: 22}, got.(*geometry.Line).Box)
}

func TestResizeLineCornerRemapsAllPoints(t *testing.T) {
	e, st, _ := newTestEditor(t)
	line := &geometry.Line{
		ShapeID:    geometry.NewID(),
		Box:        geometry.Box{StartX: 0, StartY: 0, EndX: 20, EndY: 20},
		LinePoints: geometry.LinePoints{SX: 0, SY: 20, MX: 10, MY: 0, EX: 20, EY: 20},
	}
	st.ApplyLocal(line)
	selectAt(e, geometry.Point{X: 10, Y: 10})

	// the ne handle square sits above and right of the box, away from any
	// control point
	e.PointerDown(geometry.Point{X: 24, Y: -4})
	require.Equal(t, StateResizing, e.State())
	e.PointerMove(geometry.Point{X: 34, Y: -4})
	e.PointerUp()

	got, _ := st.Get(line.ShapeID)
	pts := got.(*geometry.Line).LinePoints
	assert.Equal(t, geometry.LinePoints{SX: 0, SY: 20, MX: 15, MY: 0, EX: 30, EY: 20}, pts)
}

func TestResizeFreehandRemapsSamples(t *testing.T) {
	e, st, _ := newTestEditor(t)
	f := &geometry.Freehand{
		ShapeID: geometry.NewID(),
		Box:     geometry.Box{StartX: 0, StartY: 0, EndX: 10, EndY: 10},
		Points:  [][2]float64{{0, 0}, {5, 5}, {10, 10}},
	}
	st.ApplyLocal(f)
	selectAt(e, geometry.Point{X: 5, Y: 5})

	e.PointerDown(geometry.Point{X: 12, Y: 12})
	require.Equal(t, StateResizing, e.State())
	e.PointerMove(geometry.Point{X: 22, Y: 22})
	e.PointerUp()

	got, _ := st.Get(f.ShapeID)
	assert.Equal(t, [][2]float64{{0, 0}, {10, 10}, {20, 20}}, got.(*geometry.Freehand).Points)
}

func TestEraserSoftThenHardDeletes(t *testing.T) {
	e, st, rec := newTestEditor(t)
	a := &geometry.Rectangle{ShapeID: geometry.NewID(), Box: geometry.Box{EndX: 10, EndY: 10}}
	b := &geometry.Rectangle{ShapeID: geometry.NewID(), Box: geometry.Box{StartX: 50, StartY: 50, EndX: 60, EndY: 60}}
	st.ApplyLocal(a)
	st.ApplyLocal(b)

	e.SetTool(ToolEraser)
	e.PointerDown(geometry.Point{X: 5, Y: 5})

	// soft-deleted but still in the store until the gesture ends
	got, ok := st.Get(a.ShapeID)
	require.True(t, ok)
	assert.True(t, got.IsDeleted())
	require.Len(t, rec.removed, 1)

	e.PointerMove(geometry.Point{X: 55, Y: 55})
	e.PointerUp()

	assert.Equal(t, 0, st.Len())
	assert.Len(t, rec.removed, 2)
	assert.Equal(t, StateIdle, e.State())
}

func TestEraserSkipsAlreadyErased(t *testing.T) {
	e, _, rec := newTestEditor(t)
	a := &geometry.Rectangle{ShapeID: geometry.NewID(), Box: geometry.Box{EndX: 10, EndY: 10}}
	e.store.ApplyLocal(a)

	e.SetTool(ToolEraser)
	e.PointerDown(geometry.Point{X: 5, Y: 5})
	e.PointerMove(geometry.Point{X: 6, Y: 6})
	e.PointerMove(geometry.Point{X: 7, Y: 7})
	e.PointerUp()

	assert.Len(t, rec.removed, 1)
}

func TestSetToolResetsTransientState(t *testing.T) {
	e, _, _ := newTestEditor(t)
	e.SetTool(ToolRectangle)
	e.PointerDown(geometry.Point{X: 0, Y: 0})
	require.Equal(t, StateDrawing, e.State())

	e.SetTool(ToolSelect)
	assert.Equal(t, StateIdle, e.State())
}

func TestTextResizeRejectsBelowMinimumSize(t *testing.T) {
	e, st, _ := newTestEditor(t)
	txt := &geometry.Text{
		ShapeID:    geometry.NewID(),
		Box:        geometry.Box{StartX: 0, StartY: 0, EndX: 75, EndY: 30},
		Content:    "hello",
		FontSize:   25,
		FontFamily: "Nunito",
		LineHeight: 1.2,
	}
	st.ApplyLocal(txt)
	selectAt(e, geometry.Point{X: 10, Y: 10})

	e.PointerDown(geometry.Point{X: 77, Y: 32})
	require.Equal(t, StateResizing, e.State())

	// dragging the se corner far inward would shrink below 60x20
	e.PointerMove(geometry.Point{X: 40, Y: 10})
	e.PointerUp()

	got, _ := st.Get(txt.ShapeID)
	assert.Equal(t, geometry.Box{StartX: 0, StartY: 0, EndX: 75, EndY: 30}, got.(*geometry.Text).Box)
	assert.Equal(t, 25.0, got.(*geometry.Text).FontSize)
}

func TestTextResizeSquaresBoxAndRescalesFont(t *testing.T) {
	e, st, _ := newTestEditor(t)
	txt := &geometry.Text{
		ShapeID:    geometry.NewID(),
		Box:        geometry.Box{StartX: 0, StartY: 0, EndX: 75, EndY: 30},
		Content:    "hello",
		FontSize:   25,
		FontFamily: "Nunito",
		LineHeight: 1.2,
	}
	st.ApplyLocal(txt)
	selectAt(e, geometry.Point{X: 10, Y: 10})

	e.PointerDown(geometry.Point{X: 77, Y: 32})
	require.Equal(t, StateResizing, e.State())
	e.PointerMove(geometry.Point{X: 97, Y: 52})
	e.PointerUp()

	got, _ := st.Get(txt.ShapeID)
	resized := got.(*geometry.Text)
	// the box is squared to its larger side, anchored at the nw corner
	assert.Equal(t, geometry.Box{StartX: 0, StartY: 0, EndX: 95, EndY: 95}, resized.Box)
	assert.Equal(t, 26.0, resized.FontSize)
	assert.Equal(t, 8.0, resized.X)
	assert.Equal(t, 8.0, resized.Y)
}
