// Package export writes a whiteboard frame to PNG or PDF files.
package export

import (
	"fmt"
	"io"

	"github.com/fogleman/gg"
	"github.com/jung-kurt/gofpdf"

	"inkboard/internal/board"
	"inkboard/internal/errs"
	"inkboard/internal/render"
)

func empty(f render.Frame) bool {
	return len(f.Strokes) == 0 && len(f.Texts) == 0
}

// SavePNG writes the committed board at logical size.
func SavePNG(path string, r *render.Renderer, f render.Frame) error {
	if empty(f) {
		return errs.ErrNothingToSave
	}
	img, err := r.Snapshot(f)
	if err != nil {
		return err
	}
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("save png: %w", err)
	}
	return nil
}

// SavePDF writes the committed board as vector paths on a page the size of
// the canvas, one point per CSS pixel.
func SavePDF(path string, f render.Frame) error {
	if empty(f) {
		return errs.ErrNothingToSave
	}
	pdf, err := buildPDF(f)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

func WritePDF(w io.Writer, f render.Frame) error {
	pdf, err := buildPDF(f)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

func buildPDF(f render.Frame) (*gofpdf.Fpdf, error) {
	if f.Width <= 0 || f.Height <= 0 {
		return nil, errs.ErrNoCanvas
	}
	dpr := f.DPR
	if dpr <= 0 {
		dpr = 1
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		OrientationStr: "P",
		Size:           gofpdf.SizeType{Wd: f.Width, Ht: f.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")

	if f.Mode == board.ModeTicTacToe {
		pdf.SetDrawColor(0xd1, 0xd5, 0xdb)
		pdf.SetLineWidth(3)
		for i := 1; i < 3; i++ {
			x := f.Width * float64(i) / 3
			y := f.Height * float64(i) / 3
			pdf.Line(x, 0, x, f.Height)
			pdf.Line(0, y, f.Width, y)
		}
	}

	for _, s := range f.Strokes {
		pdfStroke(pdf, s, dpr)
	}
	pdf.SetAlpha(1, "Normal")

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, t := range f.Texts {
		pdfText(pdf, tr, t, f.Width, f.Height)
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("build pdf: %w", err)
	}
	return pdf, nil
}

// pdfStroke has no destination-out, so erasers are painted white.
func pdfStroke(pdf *gofpdf.Fpdf, s board.Stroke, dpr float64) {
	if !s.Drawable() {
		return
	}
	c := board.ParseColor(s.Color)
	alpha := s.Tool.Opacity()
	if s.Tool == board.ToolEraser {
		c.R, c.G, c.B = 0xff, 0xff, 0xff
		alpha = 1
	}
	pdf.SetAlpha(alpha, "Normal")
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	pdf.SetLineWidth(s.Tool.Width())

	if s.Filled {
		pts := make([]gofpdf.PointType, len(s.Points))
		for i, p := range s.Points {
			pts[i] = gofpdf.PointType{X: p.X / dpr, Y: p.Y / dpr}
		}
		pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
		pdf.Polygon(pts, "DF")
		return
	}
	for i := 1; i < len(s.Points); i++ {
		a, b := s.Points[i-1], s.Points[i]
		pdf.Line(a.X/dpr, a.Y/dpr, b.X/dpr, b.Y/dpr)
	}
}

func pdfText(pdf *gofpdf.Fpdf, tr func(string) string, t board.TextElement, w, h float64) {
	family, style := "Helvetica", ""
	switch t.Style {
	case board.StyleBold:
		style = "B"
	case board.StyleFancy:
		family, style = "Times", "BI"
	case board.StyleHandwriting, board.StylePlayful:
		style = "I"
	case board.StyleChalk:
		family = "Courier"
	}
	size := t.Size
	if size <= 0 {
		size = 1
	}
	pt := render.BaseFontPx * size
	c := board.ParseColor(t.Color)
	pdf.SetFont(family, style, pt)
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))

	text := tr(t.Text)
	width := pdf.GetStringWidth(text)
	pdf.Text(t.X/100*w-width/2, t.Y/100*h+pt/3, text)
}
