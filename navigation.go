package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"inkboard/internal/board"
)

func (m *model) handleCursorMove(key string, speed int) tea.Cmd {
	switch key {
	case "h", "left", "H", "shift+left":
		m.cursorX -= speed
	case "l", "right", "L", "shift+right":
		m.cursorX += speed
	case "k", "up", "K", "shift+up":
		m.cursorY -= speed
	case "j", "down", "J", "shift+down":
		m.cursorY += speed
	}
	m.ensureCursorInBounds()
	if m.penDown {
		x, y := cellToClient(m.cursorX, m.cursorY)
		m.wb.PointerMove(x, y)
	}
	return nil
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

// togglePen lifts or lowers the keyboard pen at the cursor.
func (m *model) togglePen() {
	if m.penDown {
		m.wb.PointerUp()
		m.penDown = false
		return
	}
	x, y := cellToClient(m.cursorX, m.cursorY)
	m.penDown = m.wb.PointerDown(x, y)
	if !m.penDown && m.wb.InputDisabled() {
		m.errorMessage = "Input is disabled while the AI is drawing"
	}
}

func (m *model) ensureCursorInBounds() {
	if m.cursorX < 0 {
		m.cursorX = 0
	}
	if m.cursorY < 0 {
		m.cursorY = 0
	}
	if m.width > 0 && m.cursorX >= m.width {
		m.cursorX = m.width - 1
	}
	maxY := m.canvasRows() - 1
	if maxY < 0 {
		maxY = 0
	}
	if m.cursorY > maxY {
		m.cursorY = maxY
	}
}

func (m *model) canvasRows() int {
	rows := m.height - statusLines
	if m.showHelp {
		rows -= lipgloss.Height(m.help.FullHelpView(m.keys.FullHelp()))
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

// handleMouse maps terminal mouse events onto the whiteboard pointer.
func (m *model) handleMouse(msg tea.MouseMsg) {
	x, y := cellToClient(msg.X, msg.Y)
	switch msg.Type {
	case tea.MouseLeft:
		if m.wb.DrawState() == board.StateDrawing {
			m.wb.PointerMove(x, y)
			return
		}
		if !m.wb.PointerDown(x, y) && m.wb.InputDisabled() {
			m.errorMessage = "Input is disabled while the AI is drawing"
		}
	case tea.MouseMotion:
		m.wb.PointerMove(x, y)
	case tea.MouseRelease:
		m.wb.PointerUp()
	}
}
