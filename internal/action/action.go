// Package action decodes drawing actions produced by a language model and
// turns them into strokes and text elements on a board.
package action

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"inkboard/internal/errs"
)

type Shape string

const (
	ShapeCircle Shape = "circle"
	ShapeLine   Shape = "line"
	ShapeRect   Shape = "rect"
	ShapePath   Shape = "path"
	ShapePoint  Shape = "point"
	ShapeText   Shape = "text"
	ShapeHeart  Shape = "heart"
)

// TypeMarkCell is the legacy tic-tac-toe move.
const TypeMarkCell = "mark_cell"

// normalizeShape maps aliases onto known shapes and returns "" for the rest.
func normalizeShape(s Shape) Shape {
	switch strings.ToLower(strings.TrimSpace(string(s))) {
	case "circle", "ellipse":
		return ShapeCircle
	case "line":
		return ShapeLine
	case "rect", "rectangle", "square":
		return ShapeRect
	case "path", "polyline", "polygon":
		return ShapePath
	case "point", "dot":
		return ShapePoint
	case "text", "label":
		return ShapeText
	case "heart":
		return ShapeHeart
	default:
		return ""
	}
}

// PercentPoint is a position in percent of the canvas size. It decodes from
// either {"x":..,"y":..} or [x, y].
type PercentPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p *PercentPoint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var pair []float64
		if err := json.Unmarshal(data, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("point needs 2 coordinates, got %d", len(pair))
		}
		p.X, p.Y = pair[0], pair[1]
		return nil
	}
	type plain PercentPoint
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = PercentPoint(v)
	return nil
}

// ShapeCommand is one entry of draw_shapes. Coordinates are 0-100 percent.
type ShapeCommand struct {
	Shape  Shape          `json:"shape"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	X2     *float64       `json:"x2,omitempty"`
	Y2     *float64       `json:"y2,omitempty"`
	Size   *float64       `json:"size,omitempty"`
	Color  string         `json:"color,omitempty"`
	Text   string         `json:"text,omitempty"`
	Style  string         `json:"style,omitempty"`
	Points []PercentPoint `json:"points,omitempty"`
	Fill   bool           `json:"fill,omitempty"`
}

// Action is a whole model response: a legacy move and/or a batch of shapes.
type Action struct {
	Type       string         `json:"type,omitempty"`
	Position   *int           `json:"position,omitempty"`
	DrawShapes []ShapeCommand `json:"draw_shapes,omitempty"`
}

// UnmarshalJSON decodes shapes one by one so a single malformed command is
// dropped instead of failing the batch.
func (a *Action) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type       string            `json:"type"`
		Position   *int              `json:"position"`
		DrawShapes []json.RawMessage `json:"draw_shapes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Type = raw.Type
	a.Position = raw.Position
	a.DrawShapes = nil
	for _, msg := range raw.DrawShapes {
		var cmd ShapeCommand
		if err := json.Unmarshal(msg, &cmd); err != nil {
			continue
		}
		a.DrawShapes = append(a.DrawShapes, cmd)
	}
	return nil
}

// IsEmpty reports whether the action carries nothing to draw.
func (a Action) IsEmpty() bool {
	return a.Type == "" && len(a.DrawShapes) == 0
}

func Parse(data []byte) (Action, error) {
	var a Action
	if err := json.Unmarshal(data, &a); err != nil {
		return Action{}, fmt.Errorf("%w: %v", errs.ErrInvalidAction, err)
	}
	return a, nil
}

func MarkCell(position int) Action {
	return Action{Type: TypeMarkCell, Position: &position}
}
