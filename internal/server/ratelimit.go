package server

import (
	"sync"

	"golang.org/x/time/rate"
)

// limiter hands out one token bucket per board for AI action submissions.
type limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// newLimiter allows perMinute actions per board with the given burst. A
// non-positive rate disables limiting.
func newLimiter(perMinute float64, burst int) *limiter {
	r := rate.Inf
	if perMinute > 0 {
		r = rate.Limit(perMinute / 60.0)
	}
	if burst < 1 {
		burst = 1
	}
	return &limiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     r,
		burst:    burst,
	}
}

func (l *limiter) get(boardID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[boardID]
	if !ok {
		lim = rate.NewLimiter(l.rate, l.burst)
		l.limiters[boardID] = lim
	}
	return lim
}

func (l *limiter) allow(boardID string) bool {
	return l.get(boardID).Allow()
}

func (l *limiter) tokens(boardID string) float64 {
	return l.get(boardID).Tokens()
}

func (l *limiter) forget(boardID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limiters, boardID)
}
