package board

// Viewport maps client (CSS) coordinates onto the canvas backing store.
type Viewport struct {
	Left, Top           float64
	CSSWidth, CSSHeight float64
	BackingWidth        float64
	BackingHeight       float64
}

// ViewportFor builds a viewport anchored at the origin for a canvas of the
// given CSS size and device pixel ratio.
func ViewportFor(cssWidth, cssHeight, dpr float64) Viewport {
	if dpr <= 0 {
		dpr = 1
	}
	return Viewport{
		CSSWidth:      cssWidth,
		CSSHeight:     cssHeight,
		BackingWidth:  cssWidth * dpr,
		BackingHeight: cssHeight * dpr,
	}
}

// ToCanvas fails for zero-sized viewports and for points outside the canvas.
func (v Viewport) ToCanvas(clientX, clientY float64) (Point, bool) {
	if v.CSSWidth <= 0 || v.CSSHeight <= 0 {
		return Point{}, false
	}
	x := clientX - v.Left
	y := clientY - v.Top
	if x < 0 || y < 0 || x > v.CSSWidth || y > v.CSSHeight {
		return Point{}, false
	}
	return Point{
		X: x * v.BackingWidth / v.CSSWidth,
		Y: y * v.BackingHeight / v.CSSHeight,
	}, true
}

type DrawState int

const (
	StateIdle DrawState = iota
	StateDrawing
)

func (s DrawState) String() string {
	if s == StateDrawing {
		return "drawing"
	}
	return "idle"
}

// Session turns pointer events into committed strokes on a board.
type Session struct {
	board    *Board
	viewport Viewport
	tool     Tool
	color    string
	disabled bool
	state    DrawState
	active   Stroke
}

func NewSession(b *Board, vp Viewport) *Session {
	return &Session{
		board:    b,
		viewport: vp,
		tool:     ToolPen,
		color:    "#111827",
	}
}

func (s *Session) SetViewport(vp Viewport) { s.viewport = vp }
func (s *Session) Viewport() Viewport      { return s.viewport }
func (s *Session) SetTool(t Tool)          { s.tool = t }
func (s *Session) Tool() Tool              { return s.tool }
func (s *Session) SetColor(c string)       { s.color = c }
func (s *Session) Color() string           { return s.color }
func (s *Session) State() DrawState        { return s.state }
func (s *Session) Disabled() bool          { return s.disabled }

// SetDisabled drops any stroke in progress when input is switched off.
func (s *Session) SetDisabled(disabled bool) {
	s.disabled = disabled
	if disabled {
		s.Cancel()
	}
}

// Active returns the stroke being drawn, if any.
func (s *Session) Active() (Stroke, bool) {
	if s.state != StateDrawing {
		return Stroke{}, false
	}
	return s.active.Clone(), true
}

func (s *Session) PointerDown(clientX, clientY float64) bool {
	if s.disabled {
		return false
	}
	p, ok := s.viewport.ToCanvas(clientX, clientY)
	if !ok {
		return false
	}
	s.state = StateDrawing
	s.active = Stroke{
		ID:     NewID(),
		Points: []Point{p},
		Tool:   s.tool,
		Color:  s.color,
	}
	return true
}

func (s *Session) PointerMove(clientX, clientY float64) bool {
	if s.disabled || s.state != StateDrawing {
		return false
	}
	p, ok := s.viewport.ToCanvas(clientX, clientY)
	if !ok {
		return false
	}
	s.active.Points = append(s.active.Points, p)
	return true
}

// PointerUp ends the stroke and commits it when it has at least one point.
func (s *Session) PointerUp() (Stroke, bool) {
	if s.disabled || s.state != StateDrawing {
		return Stroke{}, false
	}
	stroke := s.active
	s.state = StateIdle
	s.active = Stroke{}
	if len(stroke.Points) == 0 {
		return Stroke{}, false
	}
	s.board.CommitStroke(stroke)
	return stroke, true
}

func (s *Session) PointerLeave() (Stroke, bool) {
	return s.PointerUp()
}

// Cancel discards the stroke in progress without committing it.
func (s *Session) Cancel() {
	s.state = StateIdle
	s.active = Stroke{}
}
