package main

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	halfBlock = "▀"
	// ramp runs from paper to full ink for terminals without color.
	ramp = " .:-=+*#%@"
)

// canvasSize is the CSS size of a drawing area of cols×rows cells.
func canvasSize(cols, rows int) (float64, float64) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return float64(cols * cellW), float64(rows * cellH)
}

// cellToClient maps a terminal cell to the client point at its centre.
func cellToClient(col, row int) (float64, float64) {
	return float64(col*cellW + cellW/2), float64(row*cellH + cellH/2)
}

// average returns the mean color of r as #rrggbb.
func average(img *image.RGBA, r image.Rectangle) string {
	cr, cg, cb := mean(img, r)
	return fmt.Sprintf("#%02x%02x%02x", cr, cg, cb)
}

func mean(img *image.RGBA, r image.Rectangle) (int, int, int) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return 0xff, 0xff, 0xff
	}
	var sr, sg, sb, n int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := img.PixOffset(x, y)
			sr += int(img.Pix[i])
			sg += int(img.Pix[i+1])
			sb += int(img.Pix[i+2])
			n++
		}
	}
	return sr / n, sg / n, sb / n
}

// drawCells picks half blocks when the terminal has colors and the ramp
// otherwise.
func drawCells(img *image.RGBA, cols, rows, cursorCol, cursorRow int, profile termenv.Profile) []string {
	if profile == termenv.Ascii {
		return rampCells(img, cols, rows, cursorCol, cursorRow)
	}
	return renderCells(img, cols, rows, cursorCol, cursorRow)
}

func rampCells(img *image.RGBA, cols, rows, cursorCol, cursorRow int) []string {
	lines := make([]string, rows)
	for row := 0; row < rows; row++ {
		var b strings.Builder
		for col := 0; col < cols; col++ {
			if col == cursorCol && row == cursorRow {
				b.WriteByte('+')
				continue
			}
			x0, y0 := col*cellW, row*cellH
			r, g, bl := mean(img, image.Rect(x0, y0, x0+cellW, y0+cellH))
			lum := (299*r + 587*g + 114*bl) / 1000
			i := (255 - lum) * (len(ramp) - 1) / 255
			b.WriteByte(ramp[i])
		}
		lines[row] = b.String()
	}
	return lines
}

type cell struct {
	fg, bg string
}

// renderCells turns a board bitmap rendered at one pixel per CSS pixel
// into terminal rows. Runs of identically colored cells share one style.
func renderCells(img *image.RGBA, cols, rows, cursorCol, cursorRow int) []string {
	lines := make([]string, rows)
	for row := 0; row < rows; row++ {
		var b strings.Builder
		var run cell
		runLen := 0
		flush := func() {
			if runLen == 0 {
				return
			}
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(run.fg)).Background(lipgloss.Color(run.bg))
			b.WriteString(style.Render(strings.Repeat(halfBlock, runLen)))
			runLen = 0
		}
		for col := 0; col < cols; col++ {
			x0, y0 := col*cellW, row*cellH
			c := cell{
				fg: average(img, image.Rect(x0, y0, x0+cellW, y0+cellH/2)),
				bg: average(img, image.Rect(x0, y0+cellH/2, x0+cellW, y0+cellH)),
			}
			if col == cursorCol && row == cursorRow {
				flush()
				b.WriteString(cursorStyle.Background(lipgloss.Color(c.bg)).Render("┼"))
				continue
			}
			if runLen > 0 && c != run {
				flush()
			}
			run = c
			runLen++
		}
		flush()
		lines[row] = b.String()
	}
	return lines
}
