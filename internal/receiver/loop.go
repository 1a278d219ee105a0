package receiver

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the drain tick used when none is configured.
const DefaultInterval = 16 * time.Millisecond

// Loop is the single execution context for dispatch. Each tick runs the
// tasks posted since the last tick, then drains every drainer once. Nothing
// else calls Drain, so a receiver is never drained concurrently.
type Loop struct {
	interval time.Duration

	mu       sync.Mutex
	drainers []Drainer
	tasks    []func()
}

// NewLoop creates a Loop ticking every interval (DefaultInterval if <= 0).
func NewLoop(interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{interval: interval}
}

// Interval returns the tick interval.
func (l *Loop) Interval() time.Duration { return l.interval }

// Add registers a drainer. Drainers are visited in the order added.
func (l *Loop) Add(d Drainer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.drainers = append(l.drainers, d)
}

// Post schedules fn to run on the loop at the start of the next tick. It is
// safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tasks = append(l.tasks, fn)
}

// Tick runs one scheduling step and reports how many messages were drained.
func (l *Loop) Tick() int {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	drainers := make([]Drainer, len(l.drainers))
	copy(drainers, l.drainers)
	l.mu.Unlock()

	for _, fn := range tasks {
		fn()
	}

	drained := 0
	for _, d := range drainers {
		if _, ok := d.Drain(); ok {
			drained++
		}
	}
	return drained
}

// Run ticks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Tick()
		}
	}
}
