package render

import (
	"math"

	"github.com/fogleman/gg"

	"inkboard/internal/board"
)

const penTipRadius = 2.5

// text draws t centred on its anchor. While animating, only the runes
// before CharIndex are shown whole; the current rune is clipped to its
// progress and a small pen tip bobs at the leading edge.
func (r *Renderer) text(dc *gg.Context, t board.TextElement, w, h, scale float64) {
	if t.Text == "" {
		return
	}
	size := t.Size
	if size <= 0 {
		size = 1
	}
	dc.SetFontFace(r.fonts.face(t.Style, BaseFontPx*size*scale))
	dc.SetColor(board.ParseColor(t.Color))

	total, _ := dc.MeasureString(t.Text)
	fh := dc.FontHeight()
	x := t.X/100*w - total/2
	baseline := t.Y/100*h + fh/3

	if !t.Animating {
		dc.DrawString(t.Text, x, baseline)
		return
	}

	for i, ch := range []rune(t.Text) {
		if i > t.CharIndex {
			break
		}
		s := string(ch)
		adv, _ := dc.MeasureString(s)
		if i < t.CharIndex {
			dc.DrawString(s, x, baseline)
			x += adv
			continue
		}
		if t.CharProgress > 0 {
			dc.DrawRectangle(x, baseline-fh*1.2, adv*t.CharProgress, fh*1.6)
			dc.Clip()
			dc.DrawString(s, x, baseline)
			dc.ResetClip()
		}
		wobble := math.Sin((float64(i)+t.CharProgress)*2*math.Pi) * fh * 0.12
		dc.DrawCircle(x+adv*t.CharProgress, baseline-fh*0.35+wobble, penTipRadius*scale)
		dc.Fill()
	}
}
