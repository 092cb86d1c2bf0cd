// Package whiteboard ties the board, input session, AI interpreter, stroke
// animator and renderer together for a single whiteboard instance.
package whiteboard

import (
	"image"
	"sync"
	"time"

	"inkboard/internal/action"
	"inkboard/internal/animate"
	"inkboard/internal/board"
	"inkboard/internal/render"
)

type Options struct {
	Width     float64 // CSS pixels
	Height    float64
	DPR       float64
	UndoLimit int
	Budget    animate.Budget
	Seed      int64
}

func (o Options) withDefaults() Options {
	if o.DPR <= 0 {
		o.DPR = 1
	}
	if o.UndoLimit <= 0 {
		o.UndoLimit = board.DefaultUndoLimit
	}
	if o.Budget == (animate.Budget{}) {
		o.Budget = animate.DefaultBudget()
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	return o
}

// Whiteboard is safe for concurrent use. Completion callbacks run after the
// internal lock is released, so they may call back into the whiteboard.
type Whiteboard struct {
	mu       sync.Mutex
	opts     Options
	board    *board.Board
	session  *board.Session
	interp   *action.Interpreter
	anim     *animate.Animator
	renderer *render.Renderer

	inputOff bool
	version  uint64
	pending  []func()
	// onDone belongs to the reveal in flight, if any.
	onDone func(completed bool)
}

func New(opts Options) *Whiteboard {
	opts = opts.withDefaults()
	b := board.New(opts.UndoLimit)
	return &Whiteboard{
		opts:     opts,
		board:    b,
		session:  board.NewSession(b, board.ViewportFor(opts.Width, opts.Height, opts.DPR)),
		interp:   action.NewInterpreter(opts.Seed),
		anim:     animate.New(opts.Budget),
		renderer: render.NewRenderer(),
	}
}

func (w *Whiteboard) Options() Options {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.opts
}

// Version increases on every visible change.
func (w *Whiteboard) Version() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.version
}

func (w *Whiteboard) Mode() board.Mode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.board.Mode()
}

func (w *Whiteboard) Strokes() []board.Stroke {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.board.Strokes()
}

func (w *Whiteboard) Texts() []board.TextElement {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.board.Texts()
}

func (w *Whiteboard) UndoDepth() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.board.UndoDepth()
}

// Resize changes the CSS size and pixel ratio. Existing strokes keep their
// canvas-space coordinates.
func (w *Whiteboard) Resize(cssWidth, cssHeight, dpr float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if dpr <= 0 {
		dpr = 1
	}
	w.opts.Width, w.opts.Height, w.opts.DPR = cssWidth, cssHeight, dpr
	vp := w.session.Viewport()
	next := board.ViewportFor(cssWidth, cssHeight, dpr)
	next.Left, next.Top = vp.Left, vp.Top
	w.session.SetViewport(next)
	w.version++
}

// SetOrigin moves the canvas's top-left corner in client coordinates.
func (w *Whiteboard) SetOrigin(left, top float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	vp := w.session.Viewport()
	vp.Left, vp.Top = left, top
	w.session.SetViewport(vp)
}

func (w *Whiteboard) SetTool(t board.Tool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.session.SetTool(t)
}

func (w *Whiteboard) Tool() board.Tool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.Tool()
}

func (w *Whiteboard) SetColor(c string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.session.SetColor(c)
}

func (w *Whiteboard) Color() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.Color()
}

// SetInputDisabled is the caller's switch. Input also stays off while AI
// strokes are being revealed.
func (w *Whiteboard) SetInputDisabled(disabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.inputOff = disabled
	w.syncInput()
}

func (w *Whiteboard) InputDisabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.Disabled()
}

func (w *Whiteboard) syncInput() {
	w.session.SetDisabled(w.inputOff || w.anim.Active())
}

func (w *Whiteboard) DrawState() board.DrawState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.State()
}

func (w *Whiteboard) PointerDown(x, y float64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	ok := w.session.PointerDown(x, y)
	if ok {
		w.version++
	}
	return ok
}

func (w *Whiteboard) PointerMove(x, y float64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	ok := w.session.PointerMove(x, y)
	if ok {
		w.version++
	}
	return ok
}

func (w *Whiteboard) PointerUp() (board.Stroke, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.session.PointerUp()
	w.version++
	return s, ok
}

func (w *Whiteboard) PointerLeave() (board.Stroke, bool) {
	return w.PointerUp()
}

// ApplyAction interprets a and starts revealing its strokes. The action's
// single undo snapshot is taken now, together with its text, so undo
// granularity does not depend on whether the reveal finishes. onDone is
// called exactly once: with true when the strokes land, or immediately
// when there are none to reveal; with false when a later action, Undo,
// Clear, SetMode or Cancel stops the reveal first.
func (w *Whiteboard) ApplyAction(a action.Action, onDone func(completed bool)) action.Result {
	w.mu.Lock()
	cancelled := w.cancelAnimation()
	vp := w.session.Viewport()
	res := w.interp.Interpret(a, vp.BackingWidth, vp.BackingHeight, w.board.Mode())
	w.board.CommitBatch(nil, res.Texts)
	w.version++

	if len(res.Strokes) == 0 {
		w.syncInput()
		w.mu.Unlock()
		notify(cancelled, false)
		notify(onDone, true)
		return res
	}

	w.onDone = onDone
	w.anim.Start(res.Strokes, func(strokes []board.Stroke) {
		w.board.AppendStrokes(strokes)
		if done := w.onDone; done != nil {
			w.pending = append(w.pending, func() { done(true) })
		}
		w.onDone = nil
	})
	w.syncInput()
	w.mu.Unlock()
	notify(cancelled, false)
	return res
}

func notify(fn func(bool), completed bool) {
	if fn != nil {
		fn(completed)
	}
}

// Busy reports whether AI strokes or text are still being revealed.
func (w *Whiteboard) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy()
}

func (w *Whiteboard) busy() bool {
	return w.anim.Active() || w.board.TextAnimating()
}

// Tick advances every running animation by delta and reports whether
// another tick is wanted.
func (w *Whiteboard) Tick(delta time.Duration) bool {
	w.mu.Lock()
	if !w.busy() {
		w.mu.Unlock()
		return false
	}
	deltaMS := float64(delta) / float64(time.Millisecond)
	if w.anim.Active() {
		if w.anim.Step(deltaMS) {
			w.syncInput()
		}
	}
	w.board.AdvanceText(deltaMS)
	w.version++
	more := w.busy()
	done := w.pending
	w.pending = nil
	w.mu.Unlock()

	for _, fn := range done {
		fn()
	}
	return more
}

// cancelAnimation stops the reveal and hands back its callback, which
// the caller runs with false once the lock is released.
func (w *Whiteboard) cancelAnimation() func(bool) {
	w.anim.Cancel()
	w.pending = nil
	done := w.onDone
	w.onDone = nil
	w.syncInput()
	return done
}

// Cancel stops any reveal in flight without touching the board.
func (w *Whiteboard) Cancel() {
	w.mu.Lock()
	cancelled := w.cancelAnimation()
	w.version++
	w.mu.Unlock()
	notify(cancelled, false)
}

func (w *Whiteboard) Undo() bool {
	w.mu.Lock()
	cancelled := w.cancelAnimation()
	w.session.Cancel()
	ok := w.board.Undo()
	if ok {
		w.version++
	}
	w.mu.Unlock()
	notify(cancelled, false)
	return ok
}

func (w *Whiteboard) Clear() {
	w.mu.Lock()
	cancelled := w.cancelAnimation()
	w.session.Cancel()
	w.board.Clear()
	w.version++
	w.mu.Unlock()
	notify(cancelled, false)
}

func (w *Whiteboard) SetMode(m board.Mode) bool {
	w.mu.Lock()
	cancelled := w.cancelAnimation()
	ok := w.board.SetMode(m)
	if ok {
		w.session.Cancel()
		w.version++
	}
	w.mu.Unlock()
	notify(cancelled, false)
	return ok
}

// Frame is the current render input.
func (w *Whiteboard) Frame() render.Frame {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frame()
}

func (w *Whiteboard) frame() render.Frame {
	f := render.Frame{
		Strokes: w.board.Strokes(),
		Preview: w.anim.Preview(),
		Texts:   w.board.Texts(),
		Mode:    w.board.Mode(),
		Width:   w.opts.Width,
		Height:  w.opts.Height,
		DPR:     w.opts.DPR,
	}
	if s, ok := w.session.Active(); ok {
		f.Active = &s
	}
	return f
}

func (w *Whiteboard) Renderer() *render.Renderer {
	return w.renderer
}

func (w *Whiteboard) Render() *image.RGBA {
	return w.renderer.Render(w.Frame())
}

// Capture returns the committed board as bare base64 PNG.
func (w *Whiteboard) Capture() (string, error) {
	return w.renderer.Capture(w.Frame())
}

// Snapshot is the image Capture would encode.
func (w *Whiteboard) Snapshot() (*image.RGBA, error) {
	return w.renderer.Snapshot(w.Frame())
}
