package main

import "inkboard/internal/board"

func (m *model) undo() {
	m.penDown = false
	if !m.wb.Undo() {
		m.errorMessage = "Nothing to undo"
		return
	}
	m.successMessage = "Undone"
}

func (m *model) clearBoard() {
	m.penDown = false
	m.wb.Clear()
	m.successMessage = "Board cleared (u to undo)"
}

// toggleMode flips between freeform and tic-tac-toe. Switching starts a
// fresh board with no history.
func (m *model) toggleMode() {
	m.penDown = false
	next := board.ModeTicTacToe
	if m.wb.Mode() == board.ModeTicTacToe {
		next = board.ModeFreeform
	}
	m.wb.SetMode(next)
	m.successMessage = "Mode: " + next.String()
}

func (m *model) setTool(t board.Tool) {
	m.wb.SetTool(t)
	m.successMessage = "Tool: " + t.String()
}

func (m *model) nextColor() {
	m.colorIndex = (m.colorIndex + 1) % len(palette)
	m.wb.SetColor(palette[m.colorIndex])
	m.successMessage = "Color: " + palette[m.colorIndex]
}
