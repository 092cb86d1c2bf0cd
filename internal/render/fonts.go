package render

import (
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"

	"inkboard/internal/board"
)

// BaseFontPx is the CSS pixel size of text at relative size 1.
const BaseFontPx = 28.0

var styleFonts = map[board.TextStyle][]byte{
	board.StyleHandwriting: goitalic.TTF,
	board.StyleBold:        gobold.TTF,
	board.StyleFancy:       gobolditalic.TTF,
	board.StylePlayful:     gomediumitalic.TTF,
	board.StyleChalk:       gomono.TTF,
}

type faceKey struct {
	style board.TextStyle
	size  int
}

// fontCache parses each font once and keeps faces per pixel size. It is
// only used under Renderer.mu.
type fontCache struct {
	fonts map[board.TextStyle]*truetype.Font
	faces map[faceKey]font.Face
}

func newFontCache() *fontCache {
	return &fontCache{
		fonts: make(map[board.TextStyle]*truetype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

func (c *fontCache) face(style board.TextStyle, px float64) font.Face {
	if px < 1 {
		px = 1
	}
	key := faceKey{style: style, size: int(px + 0.5)}
	if f, ok := c.faces[key]; ok {
		return f
	}
	ttf, ok := c.fonts[style]
	if !ok {
		parsed, err := truetype.Parse(styleFonts[style])
		if err != nil {
			return basicfont.Face7x13
		}
		ttf = parsed
		c.fonts[style] = ttf
	}
	f := truetype.NewFace(ttf, &truetype.Options{
		Size:    float64(key.size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	c.faces[key] = f
	return f
}
