package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"

	"inkboard/internal/errs"
	"inkboard/internal/export"
)

func exportName(ext string) string {
	return fmt.Sprintf("inkboard-%s.%s", time.Now().Format("20060102-150405"), ext)
}

func (m *model) exportPNG() {
	path := m.config.GetSavePath(exportName("png"))
	if err := export.SavePNG(path, m.wb.Renderer(), m.wb.Frame()); err != nil {
		m.reportExportError(err)
		return
	}
	m.successMessage = "Saved " + path
}

func (m *model) exportPDF() {
	path := m.config.GetSavePath(exportName("pdf"))
	if err := export.SavePDF(path, m.wb.Frame()); err != nil {
		m.reportExportError(err)
		return
	}
	m.successMessage = "Saved " + path
}

func (m *model) reportExportError(err error) {
	if errors.Is(err, errs.ErrNothingToSave) {
		m.errorMessage = "Nothing to export"
		return
	}
	m.errorMessage = fmt.Sprintf("Export failed: %v", err)
}

// copyCapture puts the base64 PNG on the clipboard for pasting into an
// LLM request.
func (m *model) copyCapture() {
	b64, err := m.wb.Capture()
	if err != nil {
		m.errorMessage = fmt.Sprintf("Capture failed: %v", err)
		return
	}
	if err := clipboard.WriteAll(b64); err != nil {
		m.errorMessage = fmt.Sprintf("Clipboard: %v", err)
		return
	}
	m.successMessage = fmt.Sprintf("Copied capture (%d bytes base64)", len(b64))
}
