package action

import (
	"math"
	"math/rand"

	"inkboard/internal/board"
)

const (
	// AIColor is the brand blue used for the model's own moves.
	AIColor      = "#3b82f6"
	defaultColor = "#111827"

	circleStep      = 0.1
	lineJitter      = 1.25
	lineSegmentPx   = 12.0
	defaultCircle   = 8.0
	defaultHeart    = 15.0
	defaultTextSize = 1.0
)

// Result is what one action adds to the board.
type Result struct {
	Strokes []board.Stroke
	Texts   []board.TextElement
}

func (r Result) Empty() bool {
	return len(r.Strokes) == 0 && len(r.Texts) == 0
}

// Interpreter converts actions into canvas-space primitives. The random
// source only drives line wobble.
type Interpreter struct {
	rng *rand.Rand
}

func NewInterpreter(seed int64) *Interpreter {
	return &Interpreter{rng: rand.New(rand.NewSource(seed))}
}

// Interpret never fails: commands it cannot use are skipped.
func (in *Interpreter) Interpret(a Action, width, height float64, mode board.Mode) Result {
	var res Result
	if width <= 0 || height <= 0 {
		return res
	}

	if a.Type == TypeMarkCell && mode == board.ModeTicTacToe && a.Position != nil {
		if s, ok := markCell(*a.Position, width, height); ok {
			res.Strokes = append(res.Strokes, s)
		}
	}

	for _, cmd := range a.DrawShapes {
		var build func(ShapeCommand, float64, float64) (board.Stroke, bool)
		switch normalizeShape(cmd.Shape) {
		case ShapeCircle:
			build = in.circle
		case ShapeHeart:
			build = in.heart
		case ShapeLine:
			build = in.line
		case ShapeRect:
			build = in.rect
		case ShapePath:
			build = in.path
		case ShapePoint:
			build = in.point
		case ShapeText:
			if t, ok := text(cmd); ok {
				res.Texts = append(res.Texts, t)
			}
		}
		if build == nil {
			continue
		}
		if s, ok := build(cmd, width, height); ok {
			res.Strokes = append(res.Strokes, s)
		}
	}
	return res
}

func pct(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

func toCanvas(x, y, width, height float64) board.Point {
	return board.Point{X: pct(x) * width / 100, Y: pct(y) * height / 100}
}

func sizePx(size *float64, def, width, height float64) float64 {
	v := def
	if size != nil && *size > 0 {
		v = *size
	}
	return pct(v) * math.Min(width, height) / 100
}

func newStroke(pts []board.Point, c string, filled bool) board.Stroke {
	if c == "" {
		c = defaultColor
	}
	return board.Stroke{
		ID:     board.NewID(),
		Points: pts,
		Tool:   board.ToolPen,
		Color:  c,
		Filled: filled,
	}
}

func circlePoints(center board.Point, r float64) []board.Point {
	var pts []board.Point
	for a := 0.0; a < 2*math.Pi; a += circleStep {
		pts = append(pts, board.Point{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)})
	}
	return append(pts, pts[0])
}

func (in *Interpreter) circle(cmd ShapeCommand, w, h float64) (board.Stroke, bool) {
	r := sizePx(cmd.Size, defaultCircle, w, h)
	if r <= 0 {
		return board.Stroke{}, false
	}
	return newStroke(circlePoints(toCanvas(cmd.X, cmd.Y, w, h), r), cmd.Color, cmd.Fill), true
}

func (in *Interpreter) heart(cmd ShapeCommand, w, h float64) (board.Stroke, bool) {
	size := sizePx(cmd.Size, defaultHeart, w, h)
	if size <= 0 {
		return board.Stroke{}, false
	}
	c := toCanvas(cmd.X, cmd.Y, w, h)
	return newStroke(heartOfSize(c.X, c.Y, size), cmd.Color, cmd.Fill), true
}

// line wobbles the interior points so it does not look ruler-straight.
func (in *Interpreter) line(cmd ShapeCommand, w, h float64) (board.Stroke, bool) {
	if cmd.X2 == nil || cmd.Y2 == nil {
		return board.Stroke{}, false
	}
	from := toCanvas(cmd.X, cmd.Y, w, h)
	to := toCanvas(*cmd.X2, *cmd.Y2, w, h)
	segments := int(from.Dist(to) / lineSegmentPx)
	if segments < 2 {
		segments = 2
	}
	pts := make([]board.Point, 0, segments+1)
	for i := 0; i <= segments; i++ {
		f := float64(i) / float64(segments)
		p := board.Point{X: from.X + (to.X-from.X)*f, Y: from.Y + (to.Y-from.Y)*f}
		if i > 0 && i < segments {
			p.X += (in.rng.Float64()*2 - 1) * lineJitter
			p.Y += (in.rng.Float64()*2 - 1) * lineJitter
		}
		pts = append(pts, p)
	}
	return newStroke(pts, cmd.Color, false), true
}

func (in *Interpreter) rect(cmd ShapeCommand, w, h float64) (board.Stroke, bool) {
	var a, b board.Point
	switch {
	case cmd.X2 != nil && cmd.Y2 != nil:
		a = toCanvas(cmd.X, cmd.Y, w, h)
		b = toCanvas(*cmd.X2, *cmd.Y2, w, h)
	case cmd.Size != nil:
		c := toCanvas(cmd.X, cmd.Y, w, h)
		half := sizePx(cmd.Size, 0, w, h) / 2
		a = board.Point{X: c.X - half, Y: c.Y - half}
		b = board.Point{X: c.X + half, Y: c.Y + half}
	default:
		return board.Stroke{}, false
	}
	if a.X == b.X || a.Y == b.Y {
		return board.Stroke{}, false
	}
	pts := []board.Point{a, {X: b.X, Y: a.Y}, b, {X: a.X, Y: b.Y}, a}
	return newStroke(pts, cmd.Color, cmd.Fill), true
}

// path keeps the caller's points, except that a filled heart-ish polygon is
// swapped for the real curve fitted to the same box.
func (in *Interpreter) path(cmd ShapeCommand, w, h float64) (board.Stroke, bool) {
	if len(cmd.Points) == 0 {
		return board.Stroke{}, false
	}
	pts := make([]board.Point, len(cmd.Points))
	for i, p := range cmd.Points {
		pts[i] = toCanvas(p.X, p.Y, w, h)
	}
	if cmd.Fill && LooksLikeHeartPolygon(pts) {
		minX, minY, maxX, maxY := bounds(pts)
		pts = heartInBox((minX+maxX)/2, (minY+maxY)/2, maxX-minX, maxY-minY)
	}
	return newStroke(pts, cmd.Color, cmd.Fill), true
}

func (in *Interpreter) point(cmd ShapeCommand, w, h float64) (board.Stroke, bool) {
	p := toCanvas(cmd.X, cmd.Y, w, h)
	return newStroke([]board.Point{p, {X: p.X + 1, Y: p.Y}}, cmd.Color, false), true
}

func text(cmd ShapeCommand) (board.TextElement, bool) {
	if cmd.Text == "" {
		return board.TextElement{}, false
	}
	size := defaultTextSize
	if cmd.Size != nil && *cmd.Size > 0 {
		size = math.Min(4, math.Max(0.5, *cmd.Size))
	}
	c := cmd.Color
	if c == "" {
		c = defaultColor
	}
	t := board.TextElement{
		ID:    board.NewID(),
		Text:  cmd.Text,
		X:     pct(cmd.X),
		Y:     pct(cmd.Y),
		Color: c,
		Size:  size,
		Style: board.ParseTextStyle(cmd.Style),
	}
	t.Seed()
	return t, true
}

// CellCenter returns the centre of cell 0-8 of a 3×3 grid.
func CellCenter(position int, width, height float64) (board.Point, bool) {
	if position < 0 || position > 8 {
		return board.Point{}, false
	}
	cw, ch := width/3, height/3
	col, row := position%3, position/3
	return board.Point{X: (float64(col) + 0.5) * cw, Y: (float64(row) + 0.5) * ch}, true
}

func markCell(position int, width, height float64) (board.Stroke, bool) {
	c, ok := CellCenter(position, width, height)
	if !ok {
		return board.Stroke{}, false
	}
	r := math.Min(width, height) / 3 * 0.3
	s := newStroke(circlePoints(c, r), AIColor, false)
	s.Tool = board.ToolMarker
	return s, true
}
