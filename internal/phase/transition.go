package phase

import (
	"sync"
	"time"

	"github.com/verte-zerg/onboard/internal/model"
)

// DefaultDelay is how long the interstitial waits before advancing itself.
const DefaultDelay = 3 * time.Second

// Scheduler runs f after d and returns a function that cancels it.
type Scheduler func(d time.Duration, f func()) (cancel func() bool)

// AfterFunc schedules with the runtime timer.
func AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Transition is one showing of the phase interstitial. It advances exactly
// once, on the timer or on user input, whichever comes first.
type Transition struct {
	Phase   ID
	Summary Summary

	delay     time.Duration
	schedule  Scheduler
	onAdvance func()

	mu     sync.Mutex
	cancel func() bool
	done   bool
}

// TransitionOption configures a Transition.
type TransitionOption func(*Transition)

// WithDelay overrides the auto-advance delay.
func WithDelay(d time.Duration) TransitionOption {
	return func(t *Transition) {
		if d > 0 {
			t.delay = d
		}
	}
}

// WithScheduler overrides timer scheduling.
func WithScheduler(s Scheduler) TransitionOption {
	return func(t *Transition) {
		t.schedule = s
	}
}

// NewTransition builds the interstitial for phase id from rec.
func NewTransition(id ID, rec model.WizardRecord, onAdvance func(), opts ...TransitionOption) *Transition {
	t := &Transition{
		Phase:     id,
		Summary:   Summarize(id, rec),
		delay:     DefaultDelay,
		schedule:  AfterFunc,
		onAdvance: onAdvance,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Delay returns the auto-advance delay.
func (t *Transition) Delay() time.Duration {
	return t.delay
}

// Start arms the auto-advance timer.
func (t *Transition) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done || t.cancel != nil {
		return
	}
	t.cancel = t.schedule(t.delay, func() {
		t.Advance()
	})
}

// Advance cancels the timer and fires the callback. Only the first call has
// any effect; it reports whether this call advanced.
func (t *Transition) Advance() bool {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return false
	}
	t.done = true
	if t.cancel != nil {
		t.cancel()
	}
	t.mu.Unlock()

	if t.onAdvance != nil {
		t.onAdvance()
	}
	return true
}

// HandleKey advances on Enter or Space.
func (t *Transition) HandleKey(key string) bool {
	switch key {
	case "enter", " ", "space":
		return t.Advance()
	default:
		return false
	}
}

// Stop cancels the timer without advancing, for teardown.
func (t *Transition) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = true
	if t.cancel != nil {
		t.cancel()
	}
}

// Done reports whether the transition has advanced or been stopped.
func (t *Transition) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
