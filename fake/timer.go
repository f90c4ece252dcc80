package fake

import (
	"sync"
	"time"

	"github.com/momentics/spws/api"
)

// Timer is a fake api.Timer. Start/Stop never actually schedule
// anything; tests drive timeout/stop-confirmation by calling
// FireTimeout / (Stop already posts EvTimerStopped synchronously, per
// the real Timer contract's "always followed by EvTimerStopped").
type Timer struct {
	mu      sync.Mutex
	running bool
	last    time.Duration
	post    func(api.Event)
}

func NewTimer() *Timer { return &Timer{} }

func (t *Timer) SetPost(f func(api.Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.post = f
}

// Start implements api.Timer.
func (t *Timer) Start(d time.Duration) {
	t.mu.Lock()
	t.running = true
	t.last = d
	t.mu.Unlock()
}

// Stop implements api.Timer.
func (t *Timer) Stop() {
	t.mu.Lock()
	t.running = false
	post := t.post
	t.mu.Unlock()
	if post != nil {
		post(api.Event{Type: api.EvTimerStopped})
	}
}

// Idle implements api.Timer.
func (t *Timer) Idle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.running
}

// LastDuration returns the duration passed to the most recent Start.
func (t *Timer) LastDuration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// FireTimeout posts EvTimerFired, simulating expiry of the armed timer.
func (t *Timer) FireTimeout() {
	t.mu.Lock()
	post := t.post
	t.mu.Unlock()
	if post != nil {
		post(api.Event{Type: api.EvTimerFired})
	}
}
