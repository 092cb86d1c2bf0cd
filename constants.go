package main

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

const (
	// Each terminal cell covers cellW×cellH CSS pixels; the upper and lower
	// halves become the two colors of a "▀" glyph.
	cellW = 4
	cellH = 8

	statusLines = 2
)

var palette = []string{"#111827", "#ef4444", "#3b82f6", "#22c55e", "#f59e0b", "#a855f7"}

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9fafb")).Background(lipgloss.Color("#374151")).Padding(0, 1)
	modeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#111827")).Background(lipgloss.Color("#93c5fd")).Bold(true).Padding(0, 1)
	busyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#3b82f6")).Padding(0, 1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
)

type keyMap struct {
	Pen         key.Binding
	Highlighter key.Binding
	Marker      key.Binding
	Eraser      key.Binding
	Color       key.Binding
	Move        key.Binding
	FastMove    key.Binding
	PenToggle   key.Binding
	Undo        key.Binding
	Clear       key.Binding
	Mode        key.Binding
	Paste       key.Binding
	Copy        key.Binding
	ExportPNG   key.Binding
	ExportPDF   key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Pen:         key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "pen")),
		Highlighter: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "highlighter")),
		Marker:      key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "marker")),
		Eraser:      key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "eraser")),
		Color:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "next color")),
		Move: key.NewBinding(
			key.WithKeys("h", "j", "k", "l", "left", "down", "up", "right"),
			key.WithHelp("h/j/k/l", "move pen"),
		),
		FastMove: key.NewBinding(
			key.WithKeys("H", "J", "K", "L", "shift+left", "shift+down", "shift+up", "shift+right"),
			key.WithHelp("H/J/K/L", "move pen 2x"),
		),
		PenToggle: key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "pen up/down")),
		Undo:      key.NewBinding(key.WithKeys("u", "ctrl+z"), key.WithHelp("u", "undo")),
		Clear:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
		Mode:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tic-tac-toe")),
		Paste:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "paste AI action")),
		Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy capture")),
		ExportPNG: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export PNG")),
		ExportPDF: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "export PDF")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.PenToggle, k.Color, k.Undo, k.Paste, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pen, k.Highlighter, k.Marker, k.Eraser, k.Color},
		{k.Move, k.FastMove, k.PenToggle},
		{k.Undo, k.Clear, k.Mode},
		{k.Paste, k.Copy, k.ExportPNG, k.ExportPDF},
		{k.Help, k.Quit},
	}
}
