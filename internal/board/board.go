package board

import "github.com/google/uuid"

// Board owns the committed strokes and texts of one whiteboard session.
// It is not safe for concurrent use; callers serialize access.
type Board struct {
	strokes []Stroke
	texts   []TextElement
	mode    Mode
	history *History
}

func New(undoLimit int) *Board {
	return &Board{
		strokes: make([]Stroke, 0),
		texts:   make([]TextElement, 0),
		mode:    ModeFreeform,
		history: NewHistory(undoLimit),
	}
}

func NewID() string {
	return uuid.NewString()
}

func (b *Board) Strokes() []Stroke {
	return cloneStrokes(b.strokes)
}

func (b *Board) Texts() []TextElement {
	return append([]TextElement(nil), b.texts...)
}

func (b *Board) Mode() Mode {
	return b.mode
}

func (b *Board) UndoDepth() int {
	return b.history.Len()
}

func (b *Board) IsEmpty() bool {
	return len(b.strokes) == 0 && len(b.texts) == 0
}

func (b *Board) PushSnapshot() {
	b.history.Push(takeSnapshot(b.strokes, b.texts))
}

// CommitStroke records a snapshot and appends a single stroke.
func (b *Board) CommitStroke(s Stroke) {
	b.PushSnapshot()
	b.appendStroke(s)
}

// CommitBatch appends any number of strokes and texts behind one snapshot,
// so an action with no shapes still yields exactly one undo step.
func (b *Board) CommitBatch(strokes []Stroke, texts []TextElement) {
	b.PushSnapshot()
	for _, s := range strokes {
		b.appendStroke(s)
	}
	b.texts = append(b.texts, texts...)
}

// AppendStrokes adds strokes without a snapshot. It is used to land strokes
// whose snapshot was already taken when their action began.
func (b *Board) AppendStrokes(strokes []Stroke) {
	for _, s := range strokes {
		b.appendStroke(s)
	}
}

func (b *Board) appendStroke(s Stroke) {
	s = s.Clone()
	if s.ID == "" {
		s.ID = NewID()
	}
	b.strokes = append(b.strokes, s)
}

// Undo restores the latest snapshot. Restored text is shown fully drawn.
func (b *Board) Undo() bool {
	snap, ok := b.history.Pop()
	if !ok {
		return false
	}
	b.strokes = snap.Strokes
	if b.strokes == nil {
		b.strokes = make([]Stroke, 0)
	}
	b.texts = make([]TextElement, len(snap.Texts))
	copy(b.texts, snap.Texts)
	b.FinishText()
	return true
}

func (b *Board) Clear() {
	b.PushSnapshot()
	b.strokes = make([]Stroke, 0)
	b.texts = make([]TextElement, 0)
}

// SetMode starts a fresh board in the given mode. History is dropped since
// snapshots from another game do not apply.
func (b *Board) SetMode(m Mode) bool {
	if m == b.mode {
		return false
	}
	b.mode = m
	b.strokes = make([]Stroke, 0)
	b.texts = make([]TextElement, 0)
	b.history.Reset()
	return true
}

// AdvanceText steps every animating text element.
func (b *Board) AdvanceText(deltaMS float64) bool {
	busy := false
	for i := range b.texts {
		if b.texts[i].Advance(deltaMS) {
			busy = true
		}
	}
	return busy
}

func (b *Board) TextAnimating() bool {
	for _, t := range b.texts {
		if t.Animating {
			return true
		}
	}
	return false
}

func (b *Board) FinishText() {
	for i := range b.texts {
		b.texts[i].Finish()
	}
}
