package board

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// CharRevealMS is how long the ink takes to cover one character.
const CharRevealMS = 70.0

type TextStyle int

const (
	StyleHandwriting TextStyle = iota
	StyleBold
	StyleFancy
	StylePlayful
	StyleChalk
)

func (s TextStyle) String() string {
	switch s {
	case StyleBold:
		return "bold"
	case StyleFancy:
		return "fancy"
	case StylePlayful:
		return "playful"
	case StyleChalk:
		return "chalk"
	default:
		return "handwriting"
	}
}

// ParseTextStyle falls back to handwriting for anything it does not know.
func ParseTextStyle(s string) TextStyle {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bold":
		return StyleBold
	case "fancy":
		return StyleFancy
	case "playful":
		return StylePlayful
	case "chalk":
		return StyleChalk
	default:
		return StyleHandwriting
	}
}

func (s TextStyle) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *TextStyle) UnmarshalText(b []byte) error {
	*s = ParseTextStyle(string(b))
	return nil
}

// TextElement is positioned in percent of the canvas so it survives resizes.
type TextElement struct {
	ID    string    `json:"id"`
	Text  string    `json:"text"`
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
	Color string    `json:"color"`
	Size  float64   `json:"size"`
	Style TextStyle `json:"style"`

	CharIndex    int     `json:"char_index"`
	CharProgress float64 `json:"char_progress"`
	Animating    bool    `json:"animating"`
}

func (t TextElement) String() string {
	return fmt.Sprintf("text %q at (%.1f%%, %.1f%%)", t.Text, t.X, t.Y)
}

func (t TextElement) runeCount() int {
	return utf8.RuneCountInString(t.Text)
}

// Seed resets the element to the start of its reveal animation.
func (t *TextElement) Seed() {
	t.CharIndex = 0
	t.CharProgress = 0
	t.Animating = t.runeCount() > 0
}

// Finish marks the element fully drawn.
func (t *TextElement) Finish() {
	t.CharIndex = t.runeCount()
	t.CharProgress = 0
	t.Animating = false
}

// Advance moves the reveal forward and reports whether it is still running.
func (t *TextElement) Advance(deltaMS float64) bool {
	if !t.Animating {
		return false
	}
	if deltaMS > 0 {
		t.CharProgress += deltaMS / CharRevealMS
	}
	for t.CharProgress >= 1 {
		t.CharProgress--
		t.CharIndex++
	}
	if t.CharIndex >= t.runeCount() {
		t.Finish()
	}
	return t.Animating
}
