package wizard

import (
	"strings"

	"go.uber.org/zap"

	"github.com/verte-zerg/onboard/internal/formstore"
	"github.com/verte-zerg/onboard/internal/store"
)

// ResetDoneKey marks, in session storage, that a requested reset already ran.
const ResetDoneKey = "onboarding_reset_done"

// Funnel receives step events.
type Funnel interface {
	TrackVisit(step int) bool
	TrackComplete(step int) bool
	Clear()
}

// AuthStatus is what the backend reports about the user at mount time.
type AuthStatus struct {
	Authenticated      bool
	SubscriptionActive bool
}

// Sequencer drives State through the transition functions, persisting the
// step counter and reporting visits and completions.
type Sequencer struct {
	mode    Mode
	form    *formstore.Store
	funnel  Funnel
	session store.KV
	log     *zap.Logger

	state         State
	authenticated bool
	// authChecked guards the paywall jump so it runs once per Sequencer.
	authChecked bool
}

// NewSequencer returns a Sequencer positioned at the persisted step.
func NewSequencer(mode Mode, form *formstore.Store, funnel Funnel, session store.KV, log *zap.Logger) *Sequencer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sequencer{
		mode:    mode,
		form:    form,
		funnel:  funnel,
		session: session,
		log:     log,
		state:   Resolve(form.Record().CurrentStep, mode),
	}
}

// State returns the current state.
func (s *Sequencer) State() State {
	return s.state
}

// Mode returns the wizard mode.
func (s *Sequencer) Mode() Mode {
	return s.mode
}

// Authenticated reports whether the sequencer considers the user signed in.
func (s *Sequencer) Authenticated() bool {
	return s.authenticated
}

func (s *Sequencer) context() Context {
	return Context{Mode: s.mode, Authenticated: s.authenticated}
}

// Mount applies the start-of-run transitions: a pending reset, then the
// one-time paywall jump for returning users.
func (s *Sequencer) Mount(status AuthStatus, reset bool) State {
	s.authenticated = status.Authenticated

	if reset && s.mode == ModeCreate && s.claimReset() {
		if err := s.form.Clear(); err != nil {
			s.log.Warn("failed to clear record on reset", zap.Error(err))
		}
		s.funnel.Clear()
		s.log.Info("onboarding reset")
		return s.enter(Resolve(FirstStep, s.mode))
	}

	next := Resolve(s.form.Record().CurrentStep, s.mode)
	if !s.authChecked {
		s.authChecked = true
		if s.mode == ModeCreate && status.Authenticated && !status.SubscriptionActive && hasBusinessData(s.form) {
			s.log.Info("returning user without subscription, jumping to paywall")
			next = Resolve(PaywallStep, s.mode)
		}
	}
	return s.enter(next)
}

func (s *Sequencer) claimReset() bool {
	if v, ok, err := s.session.GetItem(ResetDoneKey); err == nil && ok && v == "true" {
		return false
	}
	if err := s.session.SetItem(ResetDoneKey, "true"); err != nil {
		s.log.Warn("failed to record reset", zap.Error(err))
	}
	return true
}

func hasBusinessData(form *formstore.Store) bool {
	rec := form.Peek()
	return strings.TrimSpace(rec.BusinessName) != "" &&
		strings.TrimSpace(rec.Specialization) != "" &&
		strings.TrimSpace(rec.BusinessDescription) != ""
}

// Next advances. A step with missing required fields does not move and
// returns a *ValidationError.
func (s *Sequencer) Next() (State, error) {
	cur := s.state
	if cur.Kind == KindStep {
		if err := ValidateStep(cur.Step, s.form.Record()); err != nil {
			return cur, err
		}
	}
	next := NextState(cur, s.context())
	if next == cur {
		return cur, nil
	}
	if cur.Counted() && s.mode == ModeCreate {
		s.funnel.TrackComplete(cur.Step)
	}
	return s.enter(next), nil
}

// CompleteTransition is the phase overlay's advance callback.
func (s *Sequencer) CompleteTransition() State {
	if s.state.Kind != KindPhaseTransition {
		return s.state
	}
	return s.enter(CompleteTransitionState(s.state, s.context()))
}

// Back steps back.
func (s *Sequencer) Back() State {
	return s.enter(BackState(s.state, s.context()))
}

// ChooseAuth opens the signup or login overlay.
func (s *Sequencer) ChooseAuth(mode AuthMode) State {
	return s.enter(AuthState(s.state, mode))
}

// AuthSucceeded marks the user signed in and moves to the paywall.
func (s *Sequencer) AuthSucceeded() State {
	if s.state.Kind != KindAuth {
		return s.state
	}
	s.authenticated = true
	s.funnel.TrackComplete(AccountStep)
	return s.enter(Resolve(PaywallStep, s.mode))
}

// CancelAuth closes the account overlay.
func (s *Sequencer) CancelAuth() State {
	if s.state.Kind != KindAuth {
		return s.state
	}
	return s.enter(Resolve(AccountStep, s.mode))
}

// GoToStart leaves the fallback screen for the first step of the mode.
func (s *Sequencer) GoToStart() State {
	start := FirstStep
	if s.mode == ModeEdit {
		start = formstore.EditStartStep
	}
	return s.enter(Resolve(start, s.mode))
}

// Finish marks a successful checkout or update.
func (s *Sequencer) Finish() State {
	return s.enter(State{Kind: KindDone, Step: s.state.Step})
}

// Abort returns from a failed checkout to the paywall, or from a failed
// update to the last edit step, so the user can retry.
func (s *Sequencer) Abort() State {
	switch {
	case s.state.Kind == KindCheckout:
		return s.enter(Resolve(PaywallStep, s.mode))
	case s.state.Kind == KindDone && s.mode == ModeEdit:
		return s.enter(Resolve(EditLastStep, s.mode))
	default:
		return s.state
	}
}

func (s *Sequencer) enter(next State) State {
	prev := s.state
	s.state = next
	if !next.Counted() {
		if next != prev {
			s.log.Debug("wizard state", zap.Stringer("state", next))
		}
		return next
	}
	if err := s.form.SetStep(next.Step); err != nil {
		s.log.Warn("failed to persist step", zap.Int("step", next.Step), zap.Error(err))
	}
	if s.mode == ModeCreate {
		s.funnel.TrackVisit(next.Step)
	}
	s.log.Debug("wizard state", zap.Stringer("state", next))
	return next
}
