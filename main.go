package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"inkboard/internal/board"
	"inkboard/internal/config"
	"inkboard/internal/whiteboard"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			if err := runServe(cfg, os.Args[2:]); err != nil {
				log.Fatal(err)
			}
			return
		case "browse":
			if err := runBrowse(); err != nil {
				log.Fatal(err)
			}
			return
		}
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "inkboard needs a terminal; run 'inkboard serve' for the HTTP server")
		os.Exit(1)
	}

	m := initialModel(cfg)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.ActionFile != "" {
		aw, err := newActionWatcher(cfg.ActionFile, 100*time.Millisecond, func(msg actionMsg) { p.Send(msg) })
		if err != nil {
			log.Printf("[WARN] not watching %s: %v", cfg.ActionFile, err)
		} else {
			go aw.Run(ctx)
		}
	}

	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

func initialModel(cfg *config.Config) model {
	wb := whiteboard.New(whiteboard.Options{
		Width:     cfg.Canvas.Width,
		Height:    cfg.Canvas.Height,
		DPR:       1,
		UndoLimit: cfg.UndoLimit,
		Budget:    cfg.Budget(),
	})
	wb.SetColor(palette[0])
	return model{
		wb:     wb,
		config: cfg,
		keys:   defaultKeyMap(),
		help:   help.New(),
		ai:     &aiState{},
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m *model) tick() tea.Cmd {
	return tea.Tick(m.config.TickInterval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// startTicking arms the animation clock unless it is already running.
func (m *model) startTicking() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	m.lastTick = time.Now()
	return m.tick()
}

func pasteAction() tea.Msg {
	text, err := readClipboardText()
	if err != nil {
		return errMsg{fmt.Errorf("clipboard: %w", err)}
	}
	a, err := parseActionText(text)
	if err != nil {
		return errMsg{err}
	}
	return actionMsg{action: a, source: "clipboard"}
}

func (m *model) resize() {
	cols, rows := m.width, m.canvasRows()
	w, h := canvasSize(cols, rows)
	m.wb.Resize(w, h, 1)
	m.ensureCursorInBounds()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case tickMsg:
		now := time.Time(msg)
		delta := now.Sub(m.lastTick)
		m.lastTick = now
		more := m.wb.Tick(delta)
		if m.ai.finished > 0 {
			m.ai.finished = 0
			m.successMessage = "AI drawing finished"
		}
		if more {
			return m, m.tick()
		}
		m.ticking = false
		return m, nil

	case actionMsg:
		if m.penDown {
			m.wb.PointerUp()
			m.penDown = false
		}
		ai := m.ai
		res := m.wb.ApplyAction(msg.action, func(completed bool) {
			if completed {
				ai.finished++
			}
		})
		if res.Empty() {
			m.errorMessage = "Action from " + msg.source + " drew nothing"
		} else {
			m.successMessage = fmt.Sprintf("Drawing %d strokes from %s", len(res.Strokes), msg.source)
		}
		return m, m.startTicking()

	case errMsg:
		m.errorMessage = msg.err.Error()
		return m, nil

	case tea.MouseMsg:
		if msg.Y >= m.canvasRows() {
			return m, nil
		}
		m.cursorX, m.cursorY = msg.X, msg.Y
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		m.errorMessage = ""
		m.successMessage = ""
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.resize()
	case key.Matches(msg, m.keys.Move), key.Matches(msg, m.keys.FastMove):
		return m, m.handleCursorMove(msg.String(), m.getMoveSpeed(msg.String()))
	case key.Matches(msg, m.keys.PenToggle):
		m.togglePen()
	case key.Matches(msg, m.keys.Pen):
		m.setTool(board.ToolPen)
	case key.Matches(msg, m.keys.Highlighter):
		m.setTool(board.ToolHighlighter)
	case key.Matches(msg, m.keys.Marker):
		m.setTool(board.ToolMarker)
	case key.Matches(msg, m.keys.Eraser):
		m.setTool(board.ToolEraser)
	case key.Matches(msg, m.keys.Color):
		m.nextColor()
	case key.Matches(msg, m.keys.Undo):
		m.undo()
	case key.Matches(msg, m.keys.Clear):
		m.clearBoard()
	case key.Matches(msg, m.keys.Mode):
		m.toggleMode()
	case key.Matches(msg, m.keys.Paste):
		return m, pasteAction
	case key.Matches(msg, m.keys.Copy):
		m.copyCapture()
	case key.Matches(msg, m.keys.ExportPNG):
		m.exportPNG()
	case key.Matches(msg, m.keys.ExportPDF):
		m.exportPDF()
	}
	return m, nil
}

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	rows := m.canvasRows()
	img := m.wb.Render()
	lines := drawCells(img, m.width, rows, m.cursorX, m.cursorY, lipgloss.ColorProfile())

	var b strings.Builder
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
	b.WriteString(m.statusBar())
	b.WriteString("\n")
	b.WriteString(m.messageLine())
	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	}
	return b.String()
}

func (m model) statusBar() string {
	mode := modeStyle.Render(m.wb.Mode().String())
	busy := ""
	if m.wb.Busy() {
		busy = busyStyle.Render("AI drawing")
	}
	pen := "up"
	if m.penDown || m.wb.DrawState() == board.StateDrawing {
		pen = "down"
	}
	info := fmt.Sprintf("%s  %s  pen %s  undo %d  (%d,%d)",
		m.wb.Tool(), m.wb.Color(), pen, m.wb.UndoDepth(), m.cursorX, m.cursorY)
	avail := m.width - lipgloss.Width(mode) - lipgloss.Width(busy) - 2
	if avail < 0 {
		avail = 0
	}
	info = runewidth.Truncate(info, avail, "…")
	bar := statusStyle.Width(avail + 2).Render(info)
	return lipgloss.JoinHorizontal(lipgloss.Top, mode, busy, bar)
}

func (m model) messageLine() string {
	switch {
	case m.errorMessage != "":
		return errorStyle.Render(runewidth.Truncate(m.errorMessage, m.width, "…"))
	case m.successMessage != "":
		return successStyle.Render(runewidth.Truncate(m.successMessage, m.width, "…"))
	case !m.showHelp:
		return m.help.ShortHelpView(m.keys.ShortHelp())
	}
	return ""
}
