package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livedraw/internal/geometry"
	"livedraw/internal/protocol"
)

// startTyping creates an empty text shape at p with the text tool and leaves
// the editor in text editing.
func startTyping(t *testing.T, e *Editor, p geometry.Point) *geometry.Text {
	t.Helper()
	e.SetTool(ToolText)
	e.PointerDown(p)
	e.PointerUp()
	require.Equal(t, StateTextEditing, e.State())

	shape, ok := e.store.Get(e.SelectedID())
	require.True(t, ok)
	return shape.(*geometry.Text)
}

func editedText(t *testing.T, e *Editor) *geometry.Text {
	t.Helper()
	shape, ok := e.store.Get(e.SelectedID())
	require.True(t, ok)
	return shape.(*geometry.Text)
}

func TestTextToolCreatesEmptyShape(t *testing.T) {
	e, st, _ := newTestEditor(t)

	txt := startTyping(t, e, geometry.Point{X: 40, Y: 50})

	assert.Equal(t, 1, st.Len())
	assert.Empty(t, txt.Content)
	assert.Equal(t, 40.0, txt.X)
	assert.Equal(t, 50.0, txt.Y)
	assert.Equal(t, 25.0, txt.FontSize)
	assert.Equal(t, "Nunito", txt.FontFamily)
	assert.Equal(t, 0, e.Caret())
}

func TestTypingUpdatesContentAndBounds(t *testing.T) {
	e, _, rec := newTestEditor(t)
	startTyping(t, e, geometry.Point{X: 0, Y: 0})

	e.InsertText("hi")

	txt := editedText(t, e)
	assert.Equal(t, "hi", txt.Content)
	assert.Equal(t, 2, e.Caret())
	// heuristic metrics: 2 runes * 25 * 0.6 wide, one line of 25 * 1.2 high
	assert.Equal(t, 30.0, txt.Box.EndX)
	assert.Equal(t, 30.0, txt.Box.EndY)
	assert.NotEmpty(t, rec.shared)
}

func TestClickPlacesCaretByMeasuredWidth(t *testing.T) {
	e, _, _ := newTestEditor(t)
	startTyping(t, e, geometry.Point{X: 0, Y: 0})
	e.InsertText("hello")

	// each rune measures 15 wide; x=46 lands within the fourth rune
	e.PointerDown(geometry.Point{X: 46, Y: 5})
	e.PointerUp()

	assert.Equal(t, StateTextEditing, e.State())
	assert.Equal(t, 3, e.Caret())
	_, _, ok := e.Selection()
	assert.False(t, ok)
}

func TestDragSelectsRange(t *testing.T) {
	e, _, _ := newTestEditor(t)
	startTyping(t, e, geometry.Point{X: 0, Y: 0})
	e.InsertText("hello")

	e.PointerDown(geometry.Point{X: 1, Y: 5})
	e.PointerMove(geometry.Point{X: 46, Y: 5})
	e.PointerUp()

	start, end, ok := e.Selection()
	require.True(t, ok)
	assert.Equal(t, 0, start)
	assert.Equal(t, 3, end)
	assert.Equal(t, 3, e.Caret())
}

func TestCaretMovesAndClampsAtEdges(t *testing.T) {
	e, _, _ := newTestEditor(t)
	startTyping(t, e, geometry.Point{X: 0, Y: 0})
	e.InsertText("ab")

	e.CaretRight(false)
	assert.Equal(t, 2, e.Caret())
	e.CaretRight(false)
	assert.Equal(t, 2, e.Caret())

	e.CaretLeft(false)
	e.CaretLeft(false)
	e.CaretLeft(false)
	assert.Equal(t, 0, e.Caret())
}

func TestCaretUpDownPreserveColumnClipped(t *testing.T) {
	e, _, _ := newTestEditor(t)
	startTyping(t, e, geometry.Point{X: 0, Y: 0})
	e.InsertText("hello\nhi")

	// caret to line 0 column 4
	e.CaretLineStart(false)
	e.CaretUp(false)
	for i := 0; i < 4; i++ {
		e.CaretRight(false)
	}
	require.Equal(t, 4, e.Caret())

	// the next line only has two runes, the column clips
	e.CaretDown(false)
	assert.Equal(t, 8, e.Caret())

	e.CaretUp(false)
	assert.Equal(t, 2, e.Caret())

	// already on the first line: no-op
	e.CaretUp(false)
	assert.Equal(t, 2, e.Caret())
}

func TestLineStartAndEnd(t *testing.T) {
	e, _, _ := newTestEditor(t)
	startTyping(t, e, geometry.Point{X: 0, Y: 0})
	e.InsertText("hello\nworld")

	assert.Equal(t, 11, e.Caret())
	e.CaretLineStart(false)
	assert.Equal(t, 6, e.Caret())
	e.CaretLineEnd(false)
	assert.Equal(t, 11, e.Caret())
}

func TestShiftExtendsAndPlainCollapsesSelection(t *testing.T) {
	e, _, _ := newTestEditor(t)
	startTyping(t, e, geometry.Point{X: 0, Y: 0})
	e.InsertText("hello")
	e.CaretLineStart(false)

	e.CaretRight(true)
	e.CaretRight(true)
	start, end, ok := e.Selection()
	require.True(t, ok)
	assert.Equal(t, 0, start)
	assert.Equal(t, 2, end)
	assert.Equal(t, 2, e.Caret())

	// without shift the selection collapses to its near edge
	e.CaretLeft(false)
	assert.Equal(t, 0, e.Caret())
	_, _, ok = e.Selection()
	assert.False(t, ok)
}

func TestCaretRightCollapsesToFarEdge(t *testing.T) {
	e, _, _ := newTestEditor(t)
	startTyping(t, e, geometry.Point{X: 0, Y: 0})
	e.InsertText("hello")
	e.CaretLineStart(false)

	e.CaretRight(true)
	e.CaretRight(true)
	e.CaretRight(false)
	assert.Equal(t, 2, e.Caret())
}

func TestBackspaceRemovesSelectionOrPreviousRune(t *testing.T) {
	e, _, _ := newTestEditor(t)
	startTyping(t, e, geometry.Point{X: 0, Y: 0})
	e.InsertText("hello")

	e.Backspace()
	assert.Equal(t, "hell", editedText(t, e).Content)
	assert.Equal(t, 4, e.Caret())

	e.CaretLineStart(false)
	e.CaretRight(true)
	e.CaretRight(true)
	e.Backspace()
	assert.Equal(t, "ll", editedText(t, e).Content)
	assert.Equal(t, 0, e.Caret())
}

func TestBackspaceAtStartIsNoop(t *testing.T) {
	e, _, _ := newTestEditor(t)
	startTyping(t, e, geometry.Point{X: 0, Y: 0})
	e.InsertText("a")
	e.CaretLeft(false)

	e.Backspace()
	assert.Equal(t, "a", editedText(t, e).Content)
	assert.Equal(t, 0, e.Caret())
}

func TestDeleteForwardRemovesNextRune(t *testing.T) {
	e, _, _ := newTestEditor(t)
	startTyping(t, e, geometry.Point{X: 0, Y: 0})
	e.InsertText("hi")
	e.CaretLineStart(false)

	e.DeleteForward()
	assert.Equal(t, "i", editedText(t, e).Content)

	e.CaretRight(false)
	e.DeleteForward()
	assert.Equal(t, "i", editedText(t, e).Content)
}

func TestEnterInsertsNewline(t *testing.T) {
	e, _, _ := newTestEditor(t)
	startTyping(t, e, geometry.Point{X: 0, Y: 0})
	e.InsertText("ab")
	e.CaretLeft(false)

	e.InsertNewline()

	txt := editedText(t, e)
	assert.Equal(t, "a\nb", txt.Content)
	assert.Equal(t, 2, e.Caret())
	// two lines now: the box height doubles
	assert.Equal(t, 60.0, txt.Box.EndY)
}

func TestPrintableInputReplacesSelection(t *testing.T) {
	e, _, _ := newTestEditor(t)
	startTyping(t, e, geometry.Point{X: 0, Y: 0})
	e.InsertText("hello")

	// select "ell"
	e.CaretLineStart(false)
	e.CaretRight(false)
	e.CaretRight(true)
	e.CaretRight(true)
	e.CaretRight(true)

	e.InsertText("i")
	assert.Equal(t, "hio", editedText(t, e).Content)
	assert.Equal(t, 2, e.Caret())
}

func TestEscapeDiscardsEmptyText(t *testing.T) {
	e, st, rec := newTestEditor(t)
	startTyping(t, e, geometry.Point{X: 0, Y: 0})

	e.ExitTextEditing()

	assert.Equal(t, StateIdle, e.State())
	assert.Equal(t, 0, st.Len())
	assert.Len(t, rec.removed, 1)
	assert.Empty(t, e.SelectedID())
}

func TestEscapeKeepsNonEmptyText(t *testing.T) {
	e, st, _ := newTestEditor(t)
	txt := startTyping(t, e, geometry.Point{X: 0, Y: 0})
	e.InsertText("hi")

	e.ExitTextEditing()

	assert.Equal(t, StateIdle, e.State())
	assert.Equal(t, 1, st.Len())
	assert.Equal(t, txt.ShapeID, e.SelectedID())
	assert.Equal(t, -1, e.Caret())
}

func TestClickAttachesToExistingText(t *testing.T) {
	e, st, _ := newTestEditor(t)
	txt := &geometry.Text{
		ShapeID:    geometry.NewID(),
		Box:        geometry.Box{StartX: 0, StartY: 0, EndX: 75, EndY: 30},
		X:          0,
		Y:          0,
		Content:    "hello",
		FontSize:   25,
		FontFamily: "Nunito",
		LineHeight: 1.2,
	}
	st.ApplyLocal(txt)

	e.SetTool(ToolText)
	e.PointerDown(geometry.Point{X: 74, Y: 5})
	e.PointerUp()

	assert.Equal(t, StateTextEditing, e.State())
	assert.Equal(t, txt.ShapeID, e.SelectedID())
	assert.Equal(t, 4, e.Caret())
	assert.Equal(t, 1, st.Len())
}

func TestKeysOutsideEditingAreNoops(t *testing.T) {
	e, st, _ := newTestEditor(t)

	e.CaretLeft(false)
	e.CaretRight(true)
	e.Backspace()
	e.DeleteForward()
	e.InsertText("x")
	e.InsertNewline()
	e.ExitTextEditing()

	assert.Equal(t, StateIdle, e.State())
	assert.Equal(t, 0, st.Len())
}

func TestRemoteShrinkDuringEditingClampsCaret(t *testing.T) {
	e, st, _ := newTestEditor(t)
	startTyping(t, e, geometry.Point{X: 0, Y: 0})
	e.InsertText("hello world")
	require.Equal(t, 11, e.Caret())

	// a peer replaces the text while this client is still editing it
	remote := editedText(t, e)
	remote.Content = "a"
	st.ApplyRemote(remote, protocol.Now()+1000)

	// caret 11 is past the new end; delete-forward clamps to 1 and no-ops
	e.DeleteForward()
	assert.Equal(t, "a", editedText(t, e).Content)
	assert.Equal(t, 1, e.Caret())

	e.Backspace()
	assert.Equal(t, "", editedText(t, e).Content)
	assert.Equal(t, 0, e.Caret())
}

func TestRemoteShrinkDuringEditingClampsSelection(t *testing.T) {
	e, st, _ := newTestEditor(t)
	startTyping(t, e, geometry.Point{X: 0, Y: 0})
	e.InsertText("hello world")
	e.CaretLineStart(false)
	e.CaretLineEnd(true) // select all eleven runes

	remote := editedText(t, e)
	remote.Content = "hi"
	st.ApplyRemote(remote, protocol.Now()+1000)

	// the stale [0,11) selection clamps to [0,2) and is replaced
	e.InsertText("x")
	txt := editedText(t, e)
	assert.Equal(t, "x", txt.Content)
	assert.Equal(t, 1, e.Caret())
}
