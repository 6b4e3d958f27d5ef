package editor

import (
	"strings"

	"livedraw/internal/geometry"
)

// textState tracks the caret and selection while editing a text shape. The
// caret is a single flat rune index across all lines, newlines counted as one
// index each. selStart/selEnd of -1 mean no selection; selStart is the drag
// anchor and may sit after selEnd.
type textState struct {
	activeID  string
	caret     int
	selStart  int
	selEnd    int
	selecting bool
}

// Caret returns the flat rune index of the caret, or -1 when no text shape
// is being edited.
func (e *Editor) Caret() int {
	if e.state != StateTextEditing {
		return -1
	}
	return e.text.caret
}

// Selection returns the active selection as an ordered [start,end) rune
// range. ok is false when nothing is selected.
func (e *Editor) Selection() (start, end int, ok bool) {
	if e.state != StateTextEditing || !e.text.hasSelection() {
		return 0, 0, false
	}
	lo, hi := e.text.bounds()
	return lo, hi, true
}

func (t *textState) hasSelection() bool {
	return t.selStart >= 0 && t.selStart != t.selEnd
}

func (t *textState) bounds() (lo, hi int) {
	if t.selStart <= t.selEnd {
		return t.selStart, t.selEnd
	}
	return t.selEnd, t.selStart
}

func (t *textState) clearSelection() {
	t.selStart, t.selEnd = -1, -1
}

func (e *Editor) textPointerDown(p geometry.Point) {
	if t := e.hitText(p); t != nil {
		if e.state == StateTextEditing && t.ID() != e.text.activeID {
			e.exitTextEditing()
			if t = e.hitText(p); t == nil {
				return
			}
		}
		e.state = StateTextEditing
		e.selectedID = t.ID()
		e.text.activeID = t.ID()
		e.text.caret = e.caretFromPoint(t, p)
		e.text.selStart = e.text.caret
		e.text.selEnd = e.text.caret
		e.text.selecting = true
		return
	}

	if e.state == StateTextEditing {
		e.exitTextEditing()
	}

	t := &geometry.Text{
		ShapeID:    geometry.NewID(),
		Options:    e.style.Options,
		Box:        geometry.Box{StartX: p.X, StartY: p.Y, EndX: p.X, EndY: p.Y},
		X:          p.X,
		Y:          p.Y,
		FontSize:   e.style.FontSize,
		FontFamily: e.style.FontFamily,
		Color:      e.style.FontColor,
		LineHeight: e.style.LineHeight,
	}
	e.refreshTextBounds(t)
	e.commit(t)

	e.state = StateTextEditing
	e.selectedID = t.ShapeID
	e.text = textState{activeID: t.ShapeID, caret: 0, selStart: -1, selEnd: -1}
}

func (e *Editor) textPointerMove(p geometry.Point) {
	if !e.text.selecting {
		return
	}
	t, ok := e.activeText()
	if !ok {
		return
	}
	idx := e.caretFromPoint(t, p)
	e.text.caret = idx
	e.text.selEnd = idx
}

func (e *Editor) textPointerUp() {
	e.text.selecting = false
	if e.text.selStart == e.text.selEnd {
		e.text.clearSelection()
	}
}

// ExitTextEditing leaves text editing, which only the Escape key (or a tool
// switch) triggers. An empty text shape is discarded instead of kept.
func (e *Editor) ExitTextEditing() {
	if e.state == StateTextEditing {
		e.exitTextEditing()
	}
}

func (e *Editor) exitTextEditing() {
	if t, ok := e.activeText(); ok && t.Content == "" {
		t.SetDeleted(true)
		e.store.ApplyLocal(t)
		if e.pub != nil {
			e.pub.ShareRemoval(t)
		}
		e.store.RemoveLocal(t.ShapeID)
		if e.selectedID == t.ShapeID {
			e.selectedID = ""
		}
	}
	e.text = textState{}
	e.text.clearSelection()
	e.state = StateIdle
}

// CaretLeft moves the caret one rune back. Without shift an active selection
// collapses to its near edge instead; with shift the selection extends.
func (e *Editor) CaretLeft(shift bool) {
	t, ok := e.activeText()
	if !ok {
		return
	}
	if shift {
		e.extendSelectionTo(clampIndex(e.text.caret-1, t.Content))
		return
	}
	if e.text.hasSelection() {
		lo, _ := e.text.bounds()
		e.text.caret = lo
	} else {
		e.text.caret = clampIndex(e.text.caret-1, t.Content)
	}
	e.text.clearSelection()
}

// CaretRight moves the caret one rune forward, collapsing a selection to its
// far edge without shift.
func (e *Editor) CaretRight(shift bool) {
	t, ok := e.activeText()
	if !ok {
		return
	}
	if shift {
		e.extendSelectionTo(clampIndex(e.text.caret+1, t.Content))
		return
	}
	if e.text.hasSelection() {
		_, hi := e.text.bounds()
		e.text.caret = hi
	} else {
		e.text.caret = clampIndex(e.text.caret+1, t.Content)
	}
	e.text.clearSelection()
}

// CaretUp moves to the same column on the previous line, clipped to that
// line's length. On the first line it is a no-op.
func (e *Editor) CaretUp(shift bool) {
	e.caretToAdjacentLine(-1, shift)
}

// CaretDown moves to the same column on the next line, clipped to that
// line's length. On the last line it is a no-op.
func (e *Editor) CaretDown(shift bool) {
	e.caretToAdjacentLine(1, shift)
}

func (e *Editor) caretToAdjacentLine(delta int, shift bool) {
	t, ok := e.activeText()
	if !ok {
		return
	}
	line, col := lineColForIndex(t.Content, e.text.caret)
	target := line + delta
	lines := strings.Split(t.Content, "\n")
	if target < 0 || target >= len(lines) {
		return
	}
	idx := indexForLineCol(t.Content, target, col)
	if shift {
		e.extendSelectionTo(idx)
		return
	}
	e.text.caret = idx
	e.text.clearSelection()
}

// CaretLineStart moves the caret to the start of its current line.
func (e *Editor) CaretLineStart(shift bool) {
	t, ok := e.activeText()
	if !ok {
		return
	}
	line, _ := lineColForIndex(t.Content, e.text.caret)
	idx := indexForLineCol(t.Content, line, 0)
	if shift {
		e.extendSelectionTo(idx)
		return
	}
	e.text.caret = idx
	e.text.clearSelection()
}

// CaretLineEnd moves the caret to the end of its current line.
func (e *Editor) CaretLineEnd(shift bool) {
	t, ok := e.activeText()
	if !ok {
		return
	}
	line, _ := lineColForIndex(t.Content, e.text.caret)
	lines := strings.Split(t.Content, "\n")
	idx := indexForLineCol(t.Content, line, len([]rune(lines[line])))
	if shift {
		e.extendSelectionTo(idx)
		return
	}
	e.text.caret = idx
	e.text.clearSelection()
}

func (e *Editor) extendSelectionTo(idx int) {
	if e.text.selStart < 0 {
		e.text.selStart = e.text.caret
	}
	e.text.selEnd = idx
	e.text.caret = idx
}

// Backspace removes the selection if one exists, else the rune before the
// caret.
func (e *Editor) Backspace() {
	t, ok := e.activeText()
	if !ok {
		return
	}
	runes := []rune(t.Content)
	if e.text.hasSelection() {
		runes = e.cutSelection(runes)
	} else if e.text.caret > 0 {
		runes = append(runes[:e.text.caret-1], runes[e.text.caret:]...)
		e.text.caret--
	} else {
		return
	}
	e.setContent(t, runes)
}

// DeleteForward removes the selection if one exists, else the rune after the
// caret.
func (e *Editor) DeleteForward() {
	t, ok := e.activeText()
	if !ok {
		return
	}
	runes := []rune(t.Content)
	if e.text.hasSelection() {
		runes = e.cutSelection(runes)
	} else if e.text.caret < len(runes) {
		runes = append(runes[:e.text.caret], runes[e.text.caret+1:]...)
	} else {
		return
	}
	e.setContent(t, runes)
}

// InsertNewline inserts a line break at the caret, replacing the selection
// if present.
func (e *Editor) InsertNewline() {
	e.InsertText("\n")
}

// InsertText inserts printable input at the caret, replacing the selection
// if present.
func (e *Editor) InsertText(s string) {
	if s == "" {
		return
	}
	t, ok := e.activeText()
	if !ok {
		return
	}
	runes := []rune(t.Content)
	if e.text.hasSelection() {
		runes = e.cutSelection(runes)
	}
	ins := []rune(s)
	out := make([]rune, 0, len(runes)+len(ins))
	out = append(out, runes[:e.text.caret]...)
	out = append(out, ins...)
	out = append(out, runes[e.text.caret:]...)
	e.text.caret += len(ins)
	e.setContent(t, out)
}

// cutSelection removes the selected range and parks the caret at its start.
func (e *Editor) cutSelection(runes []rune) []rune {
	lo, hi := e.text.bounds()
	if lo < 0 {
		lo = 0
	}
	if hi > len(runes) {
		hi = len(runes)
	}
	e.text.caret = lo
	e.text.clearSelection()
	return append(runes[:lo], runes[hi:]...)
}

// setContent stores new content and re-derives the box from text metrics.
func (e *Editor) setContent(t *geometry.Text, runes []rune) {
	t.Content = string(runes)
	e.text.clearSelection()
	e.refreshTextBounds(t)
	e.commit(t)
}

func (e *Editor) refreshTextBounds(t *geometry.Text) {
	w, h := textMetrics(e.measurer, t.Content, t.FontSize, t.LineHeight, t.FontFamily)
	t.Box.EndX = t.Box.StartX + w
	t.Box.EndY = t.Box.StartY + h
}

func (e *Editor) activeText() (*geometry.Text, bool) {
	if e.state != StateTextEditing || e.text.activeID == "" {
		return nil, false
	}
	shape, ok := e.store.Get(e.text.activeID)
	if !ok {
		return nil, false
	}
	t, ok := shape.(*geometry.Text)
	if ok {
		e.syncTextState(t)
	}
	return t, ok
}

// syncTextState re-clamps the caret and selection against the current
// content. A peer's edit can shrink the text under an active editing session,
// leaving indices past the end. An equal clamped selection counts as no
// selection, so the range never needs explicit clearing here.
func (e *Editor) syncTextState(t *geometry.Text) {
	e.text.caret = clampIndex(e.text.caret, t.Content)
	if e.text.selStart >= 0 {
		e.text.selStart = clampIndex(e.text.selStart, t.Content)
		e.text.selEnd = clampIndex(e.text.selEnd, t.Content)
	}
}

// hitText returns the topmost text shape under p, or nil.
func (e *Editor) hitText(p geometry.Point) *geometry.Text {
	snap := e.store.Snapshot()
	for i := len(snap) - 1; i >= 0; i-- {
		if t, ok := snap[i].(*geometry.Text); ok && t.HitTest(p) {
			return t
		}
	}
	return nil
}

// caretFromPoint maps a pointer position to a flat rune index: the line is
// picked by vertical offset, the column is the last index whose cumulative
// measured width still fits left of the pointer.
func (e *Editor) caretFromPoint(t *geometry.Text, p geometry.Point) int {
	lines := strings.Split(t.Content, "\n")
	lineHeight := t.FontSize * t.LineHeight

	line := 0
	if lineHeight > 0 {
		line = int((p.Y - t.Y) / lineHeight)
	}
	if line < 0 {
		line = 0
	}
	if line >= len(lines) {
		line = len(lines) - 1
	}

	runes := []rune(lines[line])
	relX := p.X - t.X
	col := len(runes)
	for i := 1; i <= len(runes); i++ {
		if e.measurer.LineWidth(string(runes[:i]), t.FontSize, t.FontFamily) > relX {
			col = i - 1
			break
		}
	}
	return indexForLineCol(t.Content, line, col)
}

func clampIndex(idx int, content string) int {
	if idx < 0 {
		return 0
	}
	if n := len([]rune(content)); idx > n {
		return n
	}
	return idx
}

// lineColForIndex converts a flat rune index into a line number and column.
func lineColForIndex(content string, idx int) (line, col int) {
	idx = clampIndex(idx, content)
	for _, r := range []rune(content)[:idx] {
		if r == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return line, col
}

// indexForLineCol converts a line number and column back to a flat rune
// index, clipping the column to the line's length.
func indexForLineCol(content string, line, col int) int {
	lines := strings.Split(content, "\n")
	if line < 0 {
		line = 0
	}
	if line >= len(lines) {
		line = len(lines) - 1
	}
	idx := 0
	for i := 0; i < line; i++ {
		idx += len([]rune(lines[i])) + 1
	}
	n := len([]rune(lines[line]))
	if col > n {
		col = n
	}
	if col < 0 {
		col = 0
	}
	return idx + col
}
