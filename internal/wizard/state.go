// Package wizard sequences the onboarding steps. States and transitions are
// plain values and functions; Sequencer adds persistence and funnel reporting.
package wizard

import (
	"fmt"

	"github.com/verte-zerg/onboard/internal/formstore"
	"github.com/verte-zerg/onboard/internal/phase"
)

// Mode selects between first-time onboarding and editing an existing profile.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Kind tags the active variant of State.
type Kind int

const (
	KindStep Kind = iota
	KindAuth
	KindPaywall
	KindPhaseTransition
	KindFallback
	KindCheckout
	KindCancelled
	KindDone
)

var kindNames = map[Kind]string{
	KindStep:            "step",
	KindAuth:            "auth",
	KindPaywall:         "paywall",
	KindPhaseTransition: "phase-transition",
	KindFallback:        "fallback",
	KindCheckout:        "checkout",
	KindCancelled:       "cancelled",
	KindDone:            "done",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// AuthMode picks the account overlay.
type AuthMode string

const (
	AuthSignup AuthMode = "signup"
	AuthLogin  AuthMode = "login"
)

// Fixed step numbers the sequencer branches on.
const (
	FirstStep    = 1
	ContactStep  = 14
	AccountStep  = 15
	PaywallStep  = 16
	CheckoutStep = 17
	EditLastStep = 13
)

// State is the wizard position. Step is the counter value underneath any
// overlay; Auth and Phase are set only for their kinds.
type State struct {
	Kind  Kind
	Step  int
	Auth  AuthMode
	Phase phase.ID
}

func (s State) String() string {
	switch s.Kind {
	case KindAuth:
		return fmt.Sprintf("auth(%s)", s.Auth)
	case KindPhaseTransition:
		return fmt.Sprintf("phase-transition(%s)", s.Phase)
	default:
		return fmt.Sprintf("%s(%d)", s.Kind, s.Step)
	}
}

// Counted reports whether the state is a screen on the step counter.
func (s State) Counted() bool {
	switch s.Kind {
	case KindStep, KindPaywall, KindCheckout:
		return true
	default:
		return false
	}
}

// Terminal reports whether the wizard has finished.
func (s State) Terminal() bool {
	return s.Kind == KindCancelled || s.Kind == KindDone
}

// Context carries what transitions depend on besides the state itself.
type Context struct {
	Mode          Mode
	Authenticated bool
}

// Resolve maps a counter value to the screen that renders it.
func Resolve(step int, mode Mode) State {
	if mode == ModeEdit {
		if step < formstore.EditStartStep || step > EditLastStep {
			return State{Kind: KindFallback, Step: step}
		}
		return State{Kind: KindStep, Step: step}
	}
	switch {
	case step == PaywallStep:
		return State{Kind: KindPaywall, Step: step}
	case step == CheckoutStep:
		return State{Kind: KindCheckout, Step: step}
	case step >= FirstStep && step <= AccountStep:
		return State{Kind: KindStep, Step: step}
	default:
		return State{Kind: KindFallback, Step: step}
	}
}

// NextState advances from s.
func NextState(s State, c Context) State {
	switch s.Kind {
	case KindStep:
		if c.Mode == ModeEdit {
			if s.Step >= EditLastStep {
				return State{Kind: KindDone, Step: s.Step}
			}
			return Resolve(s.Step+1, c.Mode)
		}
		if id, ok := phase.IsEnd(s.Step); ok {
			return State{Kind: KindPhaseTransition, Step: s.Step, Phase: id}
		}
		if s.Step == AccountStep {
			if c.Authenticated {
				return Resolve(PaywallStep, c.Mode)
			}
			return State{Kind: KindAuth, Step: s.Step, Auth: AuthSignup}
		}
		return Resolve(s.Step+1, c.Mode)
	case KindPaywall:
		return Resolve(CheckoutStep, c.Mode)
	case KindPhaseTransition:
		return CompleteTransitionState(s, c)
	default:
		return s
	}
}

// CompleteTransitionState performs the increment deferred by a phase overlay.
func CompleteTransitionState(s State, c Context) State {
	if s.Kind != KindPhaseTransition {
		return s
	}
	return Resolve(s.Step+1, c.Mode)
}

// BackState steps back from s. The counter never drops below FirstStep; in
// edit mode, leaving the first editable step cancels the wizard.
func BackState(s State, c Context) State {
	switch s.Kind {
	case KindStep:
		if c.Mode == ModeEdit && s.Step <= formstore.EditStartStep {
			return State{Kind: KindCancelled, Step: s.Step}
		}
		if s.Step <= FirstStep {
			return s
		}
		return Resolve(s.Step-1, c.Mode)
	case KindPaywall:
		return Resolve(AccountStep, c.Mode)
	case KindCheckout:
		return Resolve(PaywallStep, c.Mode)
	case KindPhaseTransition:
		return Resolve(s.Step, c.Mode)
	case KindAuth:
		return Resolve(AccountStep, c.Mode)
	default:
		return s
	}
}

// AuthState opens the account overlay from the account step.
func AuthState(s State, mode AuthMode) State {
	if s.Kind != KindStep && s.Kind != KindAuth {
		return s
	}
	if s.Step != AccountStep {
		return s
	}
	return State{Kind: KindAuth, Step: s.Step, Auth: mode}
}
