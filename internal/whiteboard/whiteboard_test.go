package whiteboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkboard/internal/action"
	"inkboard/internal/board"
)

func newTestBoard() *Whiteboard {
	return New(Options{Width: 300, Height: 300, DPR: 1, Seed: 1})
}

func mustParse(t *testing.T, js string) action.Action {
	t.Helper()
	a, err := action.Parse([]byte(js))
	require.NoError(t, err)
	return a
}

func drain(w *Whiteboard) int {
	ticks := 0
	for w.Tick(16*time.Millisecond) && ticks < 10000 {
		ticks++
	}
	return ticks
}

func draw(w *Whiteboard, x1, y1, x2, y2 float64) {
	w.PointerDown(x1, y1)
	w.PointerMove((x1+x2)/2, (y1+y2)/2)
	w.PointerMove(x2, y2)
	w.PointerUp()
}

func TestTextOnlyActionCompletesImmediately(t *testing.T) {
	w := newTestBoard()
	done := 0
	res := w.ApplyAction(mustParse(t, `{"draw_shapes":[{"shape":"text","text":"Hi","x":50,"y":50}]}`), func(bool) { done++ })

	assert.Equal(t, 1, done)
	assert.Empty(t, res.Strokes)
	require.Len(t, w.Texts(), 1)
	assert.True(t, w.Texts()[0].Animating)
	assert.Equal(t, 1, w.UndoDepth())
	assert.False(t, w.InputDisabled())

	drain(w)
	assert.False(t, w.Texts()[0].Animating)
	assert.Equal(t, 1, done)
}

func TestEmptyActionStillTakesOneUndoStep(t *testing.T) {
	w := newTestBoard()
	called := false
	w.ApplyAction(action.Action{}, func(bool) { called = true })
	assert.True(t, called)
	assert.Equal(t, 1, w.UndoDepth())
}

func TestStrokesCommitWhenRevealFinishes(t *testing.T) {
	w := newTestBoard()
	done := 0
	res := w.ApplyAction(mustParse(t, `{"draw_shapes":[
		{"shape":"circle","x":30,"y":30,"size":10},
		{"shape":"line","x":10,"y":90,"x2":90,"y2":90}
	]}`), func(bool) { done++ })
	require.Len(t, res.Strokes, 2)

	assert.Empty(t, w.Strokes(), "nothing lands before the reveal ends")
	assert.True(t, w.Busy())
	assert.True(t, w.InputDisabled())
	assert.False(t, w.PointerDown(10, 10))

	w.Tick(16 * time.Millisecond)
	assert.NotEmpty(t, w.Frame().Preview)

	drain(w)
	assert.Equal(t, 1, done)
	assert.Len(t, w.Strokes(), 2)
	assert.False(t, w.Busy())
	assert.False(t, w.InputDisabled())
	assert.Empty(t, w.Frame().Preview)
	assert.Equal(t, 1, w.UndoDepth())

	require.True(t, w.Undo())
	assert.Empty(t, w.Strokes())
}

func TestNewActionCancelsReveal(t *testing.T) {
	w := newTestBoard()
	var first []bool
	second := 0
	w.ApplyAction(mustParse(t, `{"draw_shapes":[{"shape":"circle","x":50,"y":50,"size":30}]}`), func(ok bool) { first = append(first, ok) })
	w.Tick(16 * time.Millisecond)
	w.ApplyAction(mustParse(t, `{"draw_shapes":[{"shape":"point","x":10,"y":10}]}`), func(bool) { second++ })
	assert.Equal(t, []bool{false}, first, "the cancelled action hears about it at once")
	drain(w)

	assert.Equal(t, []bool{false}, first)
	assert.Equal(t, 1, second)
	require.Len(t, w.Strokes(), 1, "the cancelled circle never lands")
	assert.Len(t, w.Strokes()[0].Points, 2)
}

func TestUndoCancelsReveal(t *testing.T) {
	w := newTestBoard()
	var outcome []bool
	w.ApplyAction(mustParse(t, `{"draw_shapes":[{"shape":"circle","x":50,"y":50}]}`), func(ok bool) { outcome = append(outcome, ok) })
	w.Tick(16 * time.Millisecond)

	require.True(t, w.Undo())
	assert.Equal(t, []bool{false}, outcome)
	assert.False(t, w.Busy())
	assert.False(t, w.Tick(time.Second))
	assert.Equal(t, []bool{false}, outcome)
	assert.Empty(t, w.Strokes())
	assert.Empty(t, w.Frame().Preview)
}

func TestCancelReportsIncomplete(t *testing.T) {
	tests := []struct {
		name string
		stop func(w *Whiteboard)
	}{
		{"clear", func(w *Whiteboard) { w.Clear() }},
		{"mode", func(w *Whiteboard) { w.SetMode(board.ModeTicTacToe) }},
		{"cancel", func(w *Whiteboard) { w.Cancel() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestBoard()
			var outcome []bool
			w.ApplyAction(mustParse(t, `{"draw_shapes":[{"shape":"line","x":10,"y":10,"x2":90,"y2":90}]}`), func(ok bool) { outcome = append(outcome, ok) })
			tt.stop(w)
			drain(w)
			assert.Equal(t, []bool{false}, outcome)
			assert.Empty(t, w.Strokes())
		})
	}
}

func TestCallbackMayReenterWhiteboard(t *testing.T) {
	w := newTestBoard()
	depth := -1
	w.ApplyAction(mustParse(t, `{"draw_shapes":[{"shape":"point","x":10,"y":10}]}`), func(bool) { depth = w.UndoDepth() })
	w.Undo()
	assert.Equal(t, 0, depth)
}

func TestUndoDropsStrokeInProgress(t *testing.T) {
	w := newTestBoard()
	draw(w, 10, 10, 100, 10)

	require.True(t, w.PointerDown(20, 20))
	w.PointerMove(40, 40)
	require.True(t, w.Undo())
	assert.Equal(t, board.StateIdle, w.DrawState())

	_, ok := w.PointerUp()
	assert.False(t, ok, "the stroke begun before undo is discarded")
	assert.Empty(t, w.Strokes())
	assert.Nil(t, w.Frame().Active)
}

func TestUndoAfterSeveralOperations(t *testing.T) {
	w := newTestBoard()
	draw(w, 10, 10, 100, 10)
	w.ApplyAction(mustParse(t, `{"draw_shapes":[{"shape":"text","text":"abc","x":20,"y":20}]}`), nil)
	w.Tick(100 * time.Millisecond)
	draw(w, 10, 50, 100, 50)

	before := w.Texts()
	require.Len(t, before, 1)
	assert.True(t, before[0].Animating)

	draw(w, 10, 90, 100, 90)
	require.Len(t, w.Strokes(), 3)

	require.True(t, w.Undo())
	assert.Len(t, w.Strokes(), 2)
	texts := w.Texts()
	require.Len(t, texts, 1)
	assert.False(t, texts[0].Animating, "restored text is fully drawn")
	assert.Equal(t, 3, texts[0].CharIndex)
}

func TestTicTacToeMarkCell(t *testing.T) {
	w := newTestBoard()
	require.True(t, w.SetMode(board.ModeTicTacToe))
	w.ApplyAction(mustParse(t, `{"type":"mark_cell","position":4}`), nil)
	drain(w)

	strokes := w.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, action.AIColor, strokes[0].Color)

	var sx, sy float64
	pts := strokes[0].Points[:len(strokes[0].Points)-1]
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	assert.InDelta(t, 150, sx/float64(len(pts)), 1)
	assert.InDelta(t, 150, sy/float64(len(pts)), 1)
}

func TestSetModeResetsBoard(t *testing.T) {
	w := newTestBoard()
	draw(w, 10, 10, 50, 50)
	assert.False(t, w.SetMode(board.ModeFreeform))
	require.True(t, w.SetMode(board.ModeTicTacToe))
	assert.Empty(t, w.Strokes())
	assert.Zero(t, w.UndoDepth())
	assert.Equal(t, board.ModeTicTacToe, w.Frame().Mode)
}

func TestClearIsUndoable(t *testing.T) {
	w := newTestBoard()
	draw(w, 10, 10, 50, 50)
	w.Clear()
	assert.Empty(t, w.Strokes())
	require.True(t, w.Undo())
	assert.Len(t, w.Strokes(), 1)
}

func TestExternalInputDisable(t *testing.T) {
	w := newTestBoard()
	w.SetInputDisabled(true)
	assert.False(t, w.PointerDown(10, 10))
	w.ApplyAction(mustParse(t, `{"draw_shapes":[{"shape":"point","x":10,"y":10}]}`), nil)
	drain(w)
	assert.True(t, w.InputDisabled(), "finishing a reveal keeps the caller's switch")
	w.SetInputDisabled(false)
	assert.True(t, w.PointerDown(10, 10))
}

func TestActiveStrokeInFrame(t *testing.T) {
	w := New(Options{Width: 100, Height: 100, DPR: 2, Seed: 1})
	require.True(t, w.PointerDown(10, 20))
	f := w.Frame()
	require.NotNil(t, f.Active)
	assert.Equal(t, board.Point{X: 20, Y: 40}, f.Active.Points[0])
	assert.Equal(t, board.StateDrawing, w.DrawState())
}

func TestResizeKeepsOrigin(t *testing.T) {
	w := newTestBoard()
	w.SetOrigin(100, 50)
	w.Resize(200, 100, 2)
	require.True(t, w.PointerDown(110, 60))
	f := w.Frame()
	assert.Equal(t, board.Point{X: 20, Y: 20}, f.Active.Points[0])
	assert.Equal(t, 200.0, f.Width)
}

func TestCaptureIgnoresReveal(t *testing.T) {
	w := newTestBoard()
	empty, err := w.Capture()
	require.NoError(t, err)

	w.ApplyAction(mustParse(t, `{"draw_shapes":[{"shape":"circle","x":50,"y":50,"size":20}]}`), nil)
	w.Tick(200 * time.Millisecond)
	got, err := w.Capture()
	require.NoError(t, err)
	assert.Equal(t, empty, got)

	drain(w)
	got, err = w.Capture()
	require.NoError(t, err)
	assert.NotEqual(t, empty, got)
}

func TestVersionMoves(t *testing.T) {
	w := newTestBoard()
	v := w.Version()
	draw(w, 10, 10, 40, 40)
	assert.Greater(t, w.Version(), v)
}
