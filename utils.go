package main

import (
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"

	"inkboard/internal/action"
	"inkboard/internal/errs"
)

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func cleanClipboardText(text string) string {
	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' || r >= 32 {
			result.WriteRune(r)
		}
	}
	normalized := strings.ReplaceAll(result.String(), "\r\n", "\n")
	return strings.ReplaceAll(normalized, "\r", "\n")
}

// extractActionJSON pulls the JSON object out of an LLM reply, which may
// wrap it in a ``` fence or surround it with prose.
func extractActionJSON(text string) (string, bool) {
	text = cleanClipboardText(text)
	if i := strings.Index(text, "```"); i >= 0 {
		rest := text[i+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		text = rest
	}
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

func parseActionText(text string) (action.Action, error) {
	js, ok := extractActionJSON(text)
	if !ok {
		return action.Action{}, errs.ErrInvalidAction
	}
	return action.Parse([]byte(js))
}
