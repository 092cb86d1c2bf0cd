package main

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkboard/internal/board"
	"inkboard/internal/config"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) model {
	t.Helper()
	cfg := config.Default()
	cfg.SaveDirectory = t.TempDir()
	m := initialModel(cfg)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	return next.(model)
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func TestExtractActionJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare", `{"type":"mark_cell","position":4}`, `{"type":"mark_cell","position":4}`, true},
		{"fenced", "Here you go:\n```json\n{\"draw_shapes\": []}\n```\nEnjoy", `{"draw_shapes": []}`, true},
		{"prose", `I'll take the centre. {"type": "mark_cell", "position": 4} Your move!`, `{"type": "mark_cell", "position": 4}`, true},
		{"crlf", "{\r\n\"draw_shapes\": []\r\n}", "{\n\"draw_shapes\": []\n}", true},
		{"none", "no json here", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractActionJSON(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseActionText(t *testing.T) {
	a, err := parseActionText("```\n{\"type\": \"mark_cell\", \"position\": 8}\n```")
	require.NoError(t, err)
	require.NotNil(t, a.Position)
	assert.Equal(t, 8, *a.Position)

	_, err = parseActionText("nothing")
	assert.Error(t, err)
}

func TestCellGeometry(t *testing.T) {
	w, h := canvasSize(10, 5)
	assert.Equal(t, 40.0, w)
	assert.Equal(t, 40.0, h)

	w, h = canvasSize(0, -3)
	assert.Equal(t, float64(cellW), w)
	assert.Equal(t, float64(cellH), h)

	x, y := cellToClient(3, 2)
	assert.Equal(t, 14.0, x)
	assert.Equal(t, 20.0, y)
}

func TestRenderCellsWidth(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10*cellW, 3*cellH))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, 5*cellW, cellH/2), &image.Uniform{color.Black}, image.Point{}, draw.Src)

	lines := renderCells(img, 10, 3, 2, 1)
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.Equal(t, 10, lipgloss.Width(l))
	}
	assert.Contains(t, lines[1], "┼")
}

func TestRampCells(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3*cellW, cellH))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, cellW, cellH), &image.Uniform{color.Black}, image.Point{}, draw.Src)

	lines := drawCells(img, 3, 1, -1, -1, termenv.Ascii)
	require.Len(t, lines, 1)
	assert.Equal(t, "@  ", lines[0])
}

func TestKeyboardDrawing(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, runes(" "))
	require.True(t, m.penDown)
	for i := 0; i < 5; i++ {
		m, _ = update(t, m, runes("l"))
	}
	m, _ = update(t, m, runes(" "))
	assert.False(t, m.penDown)
	assert.Equal(t, 5, m.cursorX)

	strokes := m.wb.Strokes()
	require.Len(t, strokes, 1)
	assert.Len(t, strokes[0].Points, 6)

	m, _ = update(t, m, runes("u"))
	assert.Empty(t, m.wb.Strokes())
	m, _ = update(t, m, runes("u"))
	assert.Equal(t, "Nothing to undo", m.errorMessage)
}

func TestCursorStaysOnCanvas(t *testing.T) {
	m := newTestModel(t)
	for i := 0; i < 30; i++ {
		m, _ = update(t, m, runes("J"))
	}
	assert.Equal(t, m.canvasRows()-1, m.cursorY)
	m, _ = update(t, m, runes("h"))
	assert.Equal(t, 0, m.cursorX)
}

func TestToolColorAndMode(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, runes("4"))
	assert.Equal(t, board.ToolEraser, m.wb.Tool())
	m, _ = update(t, m, runes("c"))
	assert.Equal(t, palette[1], m.wb.Color())

	m, _ = update(t, m, runes("t"))
	assert.Equal(t, board.ModeTicTacToe, m.wb.Mode())
	m, _ = update(t, m, runes("t"))
	assert.Equal(t, board.ModeFreeform, m.wb.Mode())
}

func TestActionRevealsOverTicks(t *testing.T) {
	m := newTestModel(t)
	a, err := parseActionText(`{"draw_shapes": [{"shape": "line", "x": 10, "y": 10, "x2": 90, "y2": 90}]}`)
	require.NoError(t, err)

	m, cmd := update(t, m, actionMsg{action: a, source: "test"})
	require.NotNil(t, cmd)
	assert.True(t, m.ticking)
	assert.True(t, m.wb.Busy())
	assert.Empty(t, m.wb.Strokes())

	now := m.lastTick
	for i := 0; i < 200 && m.ticking; i++ {
		now = now.Add(50 * time.Millisecond)
		m, _ = update(t, m, tickMsg(now))
	}
	assert.False(t, m.ticking)
	assert.Len(t, m.wb.Strokes(), 1)
	assert.Equal(t, "AI drawing finished", m.successMessage)
}

func TestViewFitsTerminal(t *testing.T) {
	m := newTestModel(t)
	out := m.View()
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 20)
	for _, l := range lines[:m.canvasRows()] {
		assert.Equal(t, 40, lipgloss.Width(l))
	}

	m, _ = update(t, m, runes("?"))
	assert.Less(t, m.canvasRows(), 18)
	assert.Contains(t, m.View(), "highlighter")
}

func TestExportWithNothingDrawn(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, runes("e"))
	assert.Equal(t, "Nothing to export", m.errorMessage)
}
