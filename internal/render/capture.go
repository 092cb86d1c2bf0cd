package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"io"
	"strings"

	"inkboard/internal/board"
	"inkboard/internal/errs"
)

const dataURIPrefix = "data:image/png;base64,"

// Capture renders the committed board at logical size and returns the PNG
// as bare base64. Live and animating strokes are left out; text is drawn
// fully revealed.
func (r *Renderer) Capture(f Frame) (string, error) {
	img, err := r.Snapshot(f)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Snapshot is Capture without the encoding step.
func (r *Renderer) Snapshot(f Frame) (*image.RGBA, error) {
	if f.Width <= 0 || f.Height <= 0 {
		return nil, errs.ErrNoCanvas
	}
	f.Active = nil
	f.Preview = nil
	texts := make([]board.TextElement, len(f.Texts))
	for i, t := range f.Texts {
		t.Finish()
		texts[i] = t
	}
	f.Texts = texts
	return r.draw(f, 1), nil
}

func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// DataURI prefixes bare base64 PNG data for embedding.
func DataURI(b64 string) string {
	return dataURIPrefix + b64
}

// StripDataURI returns the payload after the first comma of a data URI,
// or s unchanged if it has none.
func StripDataURI(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[i+1:]
	}
	return s
}
