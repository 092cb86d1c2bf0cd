package board

// DefaultUndoLimit bounds the number of snapshots kept.
const DefaultUndoLimit = 50

// Snapshot pairs both element lists so they are always restored together.
type Snapshot struct {
	Strokes []Stroke
	Texts   []TextElement
}

func takeSnapshot(strokes []Stroke, texts []TextElement) Snapshot {
	return Snapshot{
		Strokes: cloneStrokes(strokes),
		Texts:   append([]TextElement(nil), texts...),
	}
}

// History is a capped stack of snapshots; the oldest entries fall off.
type History struct {
	limit int
	stack []Snapshot
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultUndoLimit
	}
	return &History{limit: limit}
}

func (h *History) Push(s Snapshot) {
	h.stack = append(h.stack, s)
	if over := len(h.stack) - h.limit; over > 0 {
		h.stack = append(h.stack[:0:0], h.stack[over:]...)
	}
}

func (h *History) Pop() (Snapshot, bool) {
	if len(h.stack) == 0 {
		return Snapshot{}, false
	}
	last := len(h.stack) - 1
	s := h.stack[last]
	h.stack = h.stack[:last]
	return s, true
}

func (h *History) Len() int {
	return len(h.stack)
}

func (h *History) Reset() {
	h.stack = nil
}

func cloneStrokes(in []Stroke) []Stroke {
	if in == nil {
		return nil
	}
	out := make([]Stroke, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
