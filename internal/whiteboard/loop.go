package whiteboard

import (
	"context"
	"sync"
	"time"
)

// Loop calls step on a fixed interval while step keeps asking for more,
// then sleeps until the next Kick. There is never more than one ticking
// goroutine per Loop.
type Loop struct {
	interval time.Duration
	step     func(time.Duration) bool
	kick     chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewLoop(interval time.Duration, step func(time.Duration) bool) *Loop {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &Loop{
		interval: interval,
		step:     step,
		kick:     make(chan struct{}, 1),
	}
}

// Start is a no-op if the loop is already running.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	go l.run(ctx, l.done)
}

// Stop cancels the loop and waits for the goroutine to exit.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Kick wakes the loop. Extra kicks while one is pending are dropped.
func (l *Loop) Kick() {
	select {
	case l.kick <- struct{}{}:
	default:
	}
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.kick:
		}
		if !l.spin(ctx) {
			return
		}
	}
}

// spin ticks until step reports idle. It returns false once ctx is done.
func (l *Loop) spin(ctx context.Context) bool {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return false
		case now := <-ticker.C:
			more := l.step(now.Sub(last))
			last = now
			if !more {
				return true
			}
		}
	}
}
