// Package tracking reports onboarding funnel events. Calls are best effort:
// they run in the background, are never retried and never block the wizard.
package tracking

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/onboard/internal/model"
	"github.com/verte-zerg/onboard/internal/store"
)

// SessionKey is the local storage key holding the funnel session id.
const SessionKey = "onboarding_session_id"

const defaultTimeout = 5 * time.Second

// Poster delivers tracking events.
type Poster interface {
	Authenticated() bool
	Track(ctx context.Context, ev model.TrackEvent) error
}

// Tracker deduplicates visit events per session and posts them.
type Tracker struct {
	kv      store.KV
	poster  Poster
	log     *zap.Logger
	timeout time.Duration

	mu        sync.Mutex
	ids       *IDGenerator
	sessionID string
	visited   map[int]struct{}

	wg sync.WaitGroup
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithTimeout bounds each tracking call.
func WithTimeout(d time.Duration) Option {
	return func(t *Tracker) {
		t.timeout = d
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(g *IDGenerator) Option {
	return func(t *Tracker) {
		t.ids = g
	}
}

// New returns a Tracker and resolves its session id.
func New(kv store.KV, poster Poster, log *zap.Logger, opts ...Option) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tracker{
		kv:      kv,
		poster:  poster,
		log:     log,
		timeout: defaultTimeout,
		ids:     NewIDGenerator(),
		visited: map[int]struct{}{},
	}
	for _, opt := range opts {
		opt(t)
	}
	t.SessionID()
	return t
}

// SessionID returns the persisted session id, creating one if needed.
func (t *Tracker) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionIDLocked()
}

func (t *Tracker) sessionIDLocked() string {
	if t.sessionID != "" {
		return t.sessionID
	}
	if id, ok, err := t.kv.GetItem(SessionKey); err != nil {
		t.log.Warn("failed to read tracking session", zap.Error(err))
	} else if ok && id != "" {
		t.sessionID = id
		return id
	}
	t.sessionID = t.ids.Next()
	if err := t.kv.SetItem(SessionKey, t.sessionID); err != nil {
		t.log.Warn("failed to persist tracking session", zap.Error(err))
	}
	return t.sessionID
}

// TrackVisit reports the first visit of step in this session. It reports
// whether a call was dispatched.
func (t *Tracker) TrackVisit(step int) bool {
	if !t.poster.Authenticated() {
		return false
	}
	t.mu.Lock()
	if _, seen := t.visited[step]; seen {
		t.mu.Unlock()
		return false
	}
	t.visited[step] = struct{}{}
	id := t.sessionIDLocked()
	t.mu.Unlock()

	t.dispatch(model.TrackEvent{SessionID: id, StepNumber: step, Completed: false})
	return true
}

// TrackComplete reports that step was completed. Completions are not
// deduplicated.
func (t *Tracker) TrackComplete(step int) bool {
	if !t.poster.Authenticated() {
		return false
	}
	id := t.SessionID()
	t.dispatch(model.TrackEvent{SessionID: id, StepNumber: step, Completed: true})
	return true
}

// Clear forgets the session and its visits, then starts a fresh session.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.kv.RemoveItem(SessionKey); err != nil {
		t.log.Warn("failed to remove tracking session", zap.Error(err))
	}
	t.visited = map[int]struct{}{}
	t.sessionID = ""
	t.sessionIDLocked()
}

// Wait blocks until every dispatched call has finished.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

func (t *Tracker) dispatch(ev model.TrackEvent) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		if err := t.poster.Track(ctx, ev); err != nil {
			t.log.Warn("tracking call failed",
				zap.String("session_id", ev.SessionID),
				zap.Int("step", ev.StepNumber),
				zap.Bool("completed", ev.Completed),
				zap.Error(err))
		}
	}()
}
