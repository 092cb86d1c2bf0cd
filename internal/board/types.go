// Package board holds the in-memory whiteboard model: strokes, animated
// text elements, the undo history and the pointer drawing session.
package board

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

type Tool int

const (
	ToolPen Tool = iota
	ToolHighlighter
	ToolMarker
	ToolEraser
)

func (t Tool) String() string {
	switch t {
	case ToolPen:
		return "pen"
	case ToolHighlighter:
		return "highlighter"
	case ToolMarker:
		return "marker"
	case ToolEraser:
		return "eraser"
	default:
		return "unknown"
	}
}

// Width is the stroke width in CSS pixels.
func (t Tool) Width() float64 {
	switch t {
	case ToolHighlighter:
		return 18
	case ToolMarker:
		return 8
	case ToolEraser:
		return 24
	default:
		return 3
	}
}

func (t Tool) Opacity() float64 {
	switch t {
	case ToolHighlighter:
		return 0.35
	case ToolMarker:
		return 0.85
	default:
		return 1
	}
}

func ParseTool(s string) (Tool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pen", "":
		return ToolPen, true
	case "highlighter":
		return ToolHighlighter, true
	case "marker":
		return ToolMarker, true
	case "eraser":
		return ToolEraser, true
	}
	return ToolPen, false
}

func (t Tool) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tool) UnmarshalText(b []byte) error {
	tool, ok := ParseTool(string(b))
	if !ok {
		return fmt.Errorf("unknown tool %q", string(b))
	}
	*t = tool
	return nil
}

// Stroke is an ordered run of points. Committed strokes are never mutated.
type Stroke struct {
	ID     string  `json:"id"`
	Points []Point `json:"points"`
	Tool   Tool    `json:"tool"`
	Color  string  `json:"color"`
	Filled bool    `json:"filled,omitempty"`
}

// Length is the polyline arc length.
func (s Stroke) Length() float64 {
	total := 0.0
	for i := 1; i < len(s.Points); i++ {
		total += s.Points[i-1].Dist(s.Points[i])
	}
	return total
}

func (s Stroke) Clone() Stroke {
	c := s
	c.Points = append([]Point(nil), s.Points...)
	return c
}

// Prefix returns a copy holding only the first n points.
func (s Stroke) Prefix(n int) Stroke {
	if n > len(s.Points) {
		n = len(s.Points)
	}
	if n < 0 {
		n = 0
	}
	c := s
	c.Points = append([]Point(nil), s.Points[:n]...)
	return c
}

// Drawable reports whether the stroke leaves a visible mark.
func (s Stroke) Drawable() bool {
	return len(s.Points) >= 2
}

type Mode int

const (
	ModeFreeform Mode = iota
	ModeTicTacToe
)

func (m Mode) String() string {
	if m == ModeTicTacToe {
		return "tictactoe"
	}
	return "freeform"
}

func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "freeform", "":
		return ModeFreeform, true
	case "tictactoe", "tic-tac-toe", "tic_tac_toe":
		return ModeTicTacToe, true
	}
	return ModeFreeform, false
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	mode, ok := ParseMode(string(b))
	if !ok {
		return fmt.Errorf("unknown mode %q", string(b))
	}
	*m = mode
	return nil
}

var namedColors = map[string]color.NRGBA{
	"black":  {0x11, 0x18, 0x27, 0xff},
	"white":  {0xff, 0xff, 0xff, 0xff},
	"red":    {0xef, 0x44, 0x44, 0xff},
	"blue":   {0x3b, 0x82, 0xf6, 0xff},
	"green":  {0x22, 0xc5, 0x5e, 0xff},
	"yellow": {0xea, 0xb3, 0x08, 0xff},
	"orange": {0xf9, 0x73, 0x16, 0xff},
	"purple": {0xa8, 0x55, 0xf7, 0xff},
	"pink":   {0xec, 0x48, 0x99, 0xff},
	"brown":  {0x92, 0x40, 0x0e, 0xff},
	"gray":   {0x6b, 0x72, 0x80, 0xff},
	"grey":   {0x6b, 0x72, 0x80, 0xff},
}

// DefaultColor is used when a color string cannot be parsed.
var DefaultColor = namedColors["black"]

// ParseColor accepts "#rgb", "#rrggbb" and a handful of color names.
func ParseColor(s string) color.NRGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return DefaultColor
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return DefaultColor
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
