// Package render rasterises a whiteboard frame with fogleman/gg.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"github.com/fogleman/gg"

	"inkboard/internal/board"
)

var gridColor = color.NRGBA{0xd1, 0xd5, 0xdb, 0xff}

// Frame is everything the renderer needs. Stroke points are in canvas
// space (CSS size times DPR); text positions are percentages.
type Frame struct {
	Strokes []board.Stroke
	Active  *board.Stroke
	Preview []board.Stroke
	Texts   []board.TextElement
	Mode    board.Mode
	Width   float64
	Height  float64
	DPR     float64
}

func (f Frame) dpr() float64 {
	if f.DPR <= 0 {
		return 1
	}
	return f.DPR
}

// BackingSize is the pixel size of the on-screen bitmap.
func (f Frame) BackingSize() (int, int) {
	return pixels(f.Width, f.dpr()), pixels(f.Height, f.dpr())
}

func pixels(v, scale float64) int {
	if v <= 0 {
		return 0
	}
	return int(math.Ceil(v * scale))
}

// Renderer may be shared. Draws are serialised since truetype faces keep
// per-face glyph caches.
type Renderer struct {
	mu    sync.Mutex
	fonts *fontCache
}

func NewRenderer() *Renderer {
	return &Renderer{fonts: newFontCache()}
}

// Render draws the frame at device resolution.
func (r *Renderer) Render(f Frame) *image.RGBA {
	return r.draw(f, f.dpr())
}

// draw rasterises at scale output pixels per CSS pixel.
func (r *Renderer) draw(f Frame, scale float64) *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, h := pixels(f.Width, scale), pixels(f.Height, scale)
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	dc := gg.NewContextForRGBA(out)
	if f.Mode == board.ModeTicTacToe {
		drawGrid(dc, float64(w), float64(h), scale)
	}

	// Strokes go on their own layer so erasers can punch through ink
	// without painting over the background.
	ink := image.NewRGBA(out.Bounds())
	p := painter{ink: ink, inkDC: gg.NewContextForRGBA(ink), k: scale / f.dpr(), scale: scale}
	for _, s := range f.Strokes {
		p.stroke(s)
	}
	if f.Active != nil {
		p.stroke(*f.Active)
	}
	for _, s := range f.Preview {
		p.stroke(s)
	}
	draw.Draw(out, out.Bounds(), ink, image.Point{}, draw.Over)

	for _, t := range f.Texts {
		r.text(dc, t, float64(w), float64(h), scale)
	}
	return out
}

func drawGrid(dc *gg.Context, w, h, scale float64) {
	dc.SetColor(gridColor)
	dc.SetLineWidth(3 * scale)
	dc.SetLineCapRound()
	for i := 1; i < 3; i++ {
		x := w * float64(i) / 3
		y := h * float64(i) / 3
		dc.DrawLine(x, 0, x, h)
		dc.Stroke()
		dc.DrawLine(0, y, w, y)
		dc.Stroke()
	}
}

type painter struct {
	ink   *image.RGBA
	inkDC *gg.Context
	k     float64 // canvas space to output pixels
	scale float64 // CSS pixels to output pixels
}

func (p painter) trace(dc *gg.Context, s board.Stroke) {
	dc.NewSubPath()
	for i, pt := range s.Points {
		x, y := pt.X*p.k, pt.Y*p.k
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	if s.Filled {
		dc.ClosePath()
	}
}

func (p painter) stroke(s board.Stroke) {
	if !s.Drawable() {
		return
	}
	width := s.Tool.Width() * p.scale
	if s.Tool == board.ToolEraser {
		r := p.bounds(s, width).Intersect(p.ink.Bounds())
		if r.Empty() {
			return
		}
		mask := gg.NewContext(r.Dx(), r.Dy())
		mask.Translate(-float64(r.Min.X), -float64(r.Min.Y))
		mask.SetRGBA(0, 0, 0, 1)
		mask.SetLineWidth(width)
		mask.SetLineCapRound()
		mask.SetLineJoinRound()
		p.trace(mask, s)
		mask.Stroke()
		destinationOut(p.ink, mask.AsMask(), r.Min)
		return
	}

	c := board.ParseColor(s.Color)
	dc := p.inkDC
	dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(math.Round(s.Tool.Opacity()*255)))
	dc.SetLineWidth(width)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	p.trace(dc, s)
	if s.Filled {
		dc.FillPreserve()
	}
	dc.Stroke()
}

func (p painter) bounds(s board.Stroke, width float64) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, pt := range s.Points {
		minX = math.Min(minX, pt.X*p.k)
		minY = math.Min(minY, pt.Y*p.k)
		maxX = math.Max(maxX, pt.X*p.k)
		maxY = math.Max(maxY, pt.Y*p.k)
	}
	pad := width/2 + 2
	return image.Rect(
		int(math.Floor(minX-pad)), int(math.Floor(minY-pad)),
		int(math.Ceil(maxX+pad)), int(math.Ceil(maxY+pad)),
	)
}

// destinationOut scales premultiplied ink by the inverse mask alpha. The
// mask's origin sits at off in dst.
func destinationOut(dst *image.RGBA, mask *image.Alpha, off image.Point) {
	r := mask.Bounds().Add(off).Intersect(dst.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			a := uint32(mask.AlphaAt(x-off.X, y-off.Y).A)
			if a == 0 {
				continue
			}
			keep := 255 - a
			i := dst.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				dst.Pix[i+c] = uint8(uint32(dst.Pix[i+c]) * keep / 255)
			}
		}
	}
}
