package main

import (
	"time"

	"github.com/charmbracelet/bubbles/help"

	"inkboard/internal/action"
	"inkboard/internal/config"
	"inkboard/internal/whiteboard"
)

type model struct {
	width   int
	height  int
	cursorX int
	cursorY int
	penDown bool

	wb     *whiteboard.Whiteboard
	config *config.Config
	keys   keyMap
	help   help.Model

	showHelp       bool
	colorIndex     int
	ticking        bool
	lastTick       time.Time
	ai             *aiState
	errorMessage   string
	successMessage string
}

// aiState is shared by every copy of the model so completion callbacks
// fired from inside the whiteboard are seen by the next Update.
type aiState struct {
	finished int
}

type tickMsg time.Time

// actionMsg carries an AI action from the clipboard or the watched file.
type actionMsg struct {
	action action.Action
	source string
}

type errMsg struct{ err error }
