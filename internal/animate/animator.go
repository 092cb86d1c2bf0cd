// Package animate reveals AI strokes progressively so they appear to be
// drawn by hand.
package animate

import (
	"math"
	"time"

	"inkboard/internal/board"
)

// Budget shares Total across a batch of strokes by length.
type Budget struct {
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
	Pause time.Duration
}

func DefaultBudget() Budget {
	return Budget{
		Total: 1400 * time.Millisecond,
		Min:   220 * time.Millisecond,
		Max:   900 * time.Millisecond,
		Pause: 140 * time.Millisecond,
	}
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Entry is one queued stroke and how fast it is revealed.
type Entry struct {
	Stroke      board.Stroke
	Revealed    int
	AllocatedMS float64
	Rate        float64 // points per millisecond
}

func (e Entry) done() bool {
	return e.Revealed >= len(e.Stroke.Points)
}

// Plan allocates reveal time to each stroke in proportion to its arc length,
// clamped to [Min, Max]. The whole plan never exceeds Total plus one Pause
// per stroke; if clamping would overshoot, every share is scaled down.
func Plan(strokes []board.Stroke, b Budget) []Entry {
	n := len(strokes)
	if n == 0 {
		return nil
	}
	lengths := make([]float64, n)
	totalLen := 0.0
	for i, s := range strokes {
		lengths[i] = s.Length()
		totalLen += lengths[i]
	}

	entries := make([]Entry, n)
	sum := 0.0
	for i, s := range strokes {
		share := ms(b.Total) / float64(n)
		if totalLen > 0 {
			share = ms(b.Total) * lengths[i] / totalLen
		}
		share = math.Max(ms(b.Min), math.Min(ms(b.Max), share))
		entries[i] = Entry{Stroke: s.Clone(), AllocatedMS: share}
		sum += share
	}

	limit := ms(b.Total) + float64(n)*ms(b.Pause)
	if sum > limit {
		k := limit / sum
		for i := range entries {
			entries[i].AllocatedMS *= k
		}
	}
	for i := range entries {
		pts := float64(len(entries[i].Stroke.Points))
		if entries[i].AllocatedMS > 0 {
			entries[i].Rate = pts / entries[i].AllocatedMS
		} else {
			entries[i].Rate = pts
		}
	}
	return entries
}

// Animator steps through a queue of entries one stroke at a time.
type Animator struct {
	budget     Budget
	queue      []Entry
	current    int
	pauseMS    float64
	active     bool
	onComplete func([]board.Stroke)
}

func New(b Budget) *Animator {
	return &Animator{budget: b}
}

func (a *Animator) Budget() Budget { return a.budget }
func (a *Animator) Active() bool   { return a.active }

// Start replaces whatever was in flight. An empty batch completes at once.
func (a *Animator) Start(strokes []board.Stroke, onComplete func([]board.Stroke)) {
	a.Cancel()
	a.queue = Plan(strokes, a.budget)
	if len(a.queue) == 0 {
		if onComplete != nil {
			onComplete(nil)
		}
		return
	}
	a.onComplete = onComplete
	a.active = true
}

// Step advances the reveal by deltaMS and reports whether the queue drained
// during this step.
func (a *Animator) Step(deltaMS float64) bool {
	if !a.active {
		return false
	}
	if a.pauseMS > 0 {
		a.pauseMS -= deltaMS
		if a.pauseMS > 0 {
			return false
		}
		a.pauseMS = 0
		a.current++
		return false
	}

	e := &a.queue[a.current]
	step := int(math.Floor(deltaMS * e.Rate))
	if step < 1 {
		step = 1
	}
	e.Revealed += step
	if e.Revealed > len(e.Stroke.Points) {
		e.Revealed = len(e.Stroke.Points)
	}
	if !e.done() {
		return false
	}
	if a.current == len(a.queue)-1 {
		a.finish()
		return true
	}
	a.pauseMS = ms(a.budget.Pause)
	if a.pauseMS <= 0 {
		a.current++
	}
	return false
}

func (a *Animator) finish() {
	strokes := make([]board.Stroke, len(a.queue))
	for i, e := range a.queue {
		strokes[i] = e.Stroke
	}
	cb := a.onComplete
	a.reset()
	if cb != nil {
		cb(strokes)
	}
}

// Preview returns the revealed part of every stroke started so far.
func (a *Animator) Preview() []board.Stroke {
	if !a.active {
		return nil
	}
	out := make([]board.Stroke, 0, a.current+1)
	for i := 0; i <= a.current && i < len(a.queue); i++ {
		out = append(out, a.queue[i].Stroke.Prefix(a.queue[i].Revealed))
	}
	return out
}

// Cancel drops the queue; nothing is handed to the completion callback.
func (a *Animator) Cancel() {
	a.reset()
}

func (a *Animator) reset() {
	a.queue = nil
	a.current = 0
	a.pauseMS = 0
	a.active = false
	a.onComplete = nil
}
