package clipboard

import (
	"sync"
	"time"
)

const DefaultDelay = 1500 * time.Millisecond

// Acknowledger holds the transient "copied" flag. Every Ack replaces the
// pending reset, so at most one reset is scheduled at any time.
type Acknowledger struct {
	mu      sync.Mutex
	delay   time.Duration
	copied  bool
	stopped bool
	timer   *time.Timer
	// generation guards against a timer that fired but lost the race to a
	// newer Ack or Stop.
	generation uint64
	onReset    func()
}

func NewAcknowledger(delay time.Duration, onReset func()) *Acknowledger {
	if delay <= 0 {
		delay = DefaultDelay
	}

	return &Acknowledger{
		delay:   delay,
		onReset: onReset,
	}
}

func (a *Acknowledger) Ack() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return
	}

	if a.timer != nil {
		a.timer.Stop()
	}

	a.copied = true
	a.generation++
	gen := a.generation
	a.timer = time.AfterFunc(a.delay, func() {
		a.reset(gen)
	})
}

func (a *Acknowledger) reset(gen uint64) {
	a.mu.Lock()
	if a.stopped || gen != a.generation {
		a.mu.Unlock()
		return
	}

	a.copied = false
	a.timer = nil
	onReset := a.onReset
	a.mu.Unlock()

	if onReset != nil {
		onReset()
	}
}

func (a *Acknowledger) Copied() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.copied
}

// Stop cancels the pending reset. The acknowledger is unusable afterwards.
func (a *Acknowledger) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}

	a.stopped = true
	a.copied = false
}
