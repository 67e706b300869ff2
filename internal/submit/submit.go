// Package submit sends the collected answers to the backend and hands off to
// checkout or finishes an edit.
package submit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/verte-zerg/onboard/internal/api"
	"github.com/verte-zerg/onboard/internal/formstore"
	"github.com/verte-zerg/onboard/internal/model"
)

// Backend is the subset of the API client the orchestrator needs.
type Backend interface {
	SubmitBusiness(ctx context.Context, p model.BusinessPayload) error
	SubmitBranding(ctx context.Context, p model.BrandingPayload) error
	Plans(ctx context.Context) ([]model.Plan, error)
	CreateCheckout(ctx context.Context, req model.CheckoutRequest) (model.CheckoutSession, error)
	InvalidateProfile()
}

// Funnel is cleared once checkout is handed off.
type Funnel interface {
	Clear()
}

// PlanChoice is the plan the user picked on the paywall.
type PlanChoice string

const (
	Monthly   PlanChoice = "monthly"
	Quarterly PlanChoice = "quarterly"
	Yearly    PlanChoice = "yearly"
)

// Choices lists the paywall options in display order.
var Choices = []PlanChoice{Monthly, Quarterly, Yearly}

var intervals = map[PlanChoice]string{
	Monthly:   "month",
	Quarterly: "quarter",
	Yearly:    "year",
}

var (
	ErrMissingFields = errors.New("business name and niche are required")
	ErrNoPlans       = errors.New("no plans loaded")
	ErrUnknownPlan   = errors.New("unknown plan")
	ErrNoActivePlan  = errors.New("no active plan for interval")
)

// SyncError wraps a failed profile submission before checkout.
type SyncError struct {
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("failed to sync onboarding data: %v", e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// UpdateError wraps a failed profile submission in edit mode.
type UpdateError struct {
	Err error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("failed to update profile: %v", e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }

// URLs are where the checkout provider sends the user back.
type URLs struct {
	Success string
	Cancel  string
}

// Orchestrator runs sync, checkout and update.
type Orchestrator struct {
	backend    Backend
	form       *formstore.Store
	funnel     Funnel
	urls       URLs
	log        *zap.Logger
	onComplete func()

	group singleflight.Group
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithOnComplete sets the callback run after a successful update.
func WithOnComplete(fn func()) Option {
	return func(o *Orchestrator) {
		o.onComplete = fn
	}
}

// New returns an Orchestrator.
func New(backend Backend, form *formstore.Store, funnel Funnel, urls URLs, log *zap.Logger, opts ...Option) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	o := &Orchestrator{
		backend: backend,
		form:    form,
		funnel:  funnel,
		urls:    urls,
		log:     log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Sync submits the stored answers. It reads storage rather than the live
// record so it always sends what was last persisted.
func (o *Orchestrator) Sync(ctx context.Context) error {
	rec := o.form.Peek()
	if strings.TrimSpace(rec.BusinessName) == "" || strings.TrimSpace(rec.Specialization) == "" {
		return ErrMissingFields
	}
	if err := o.backend.SubmitBusiness(ctx, formstore.BusinessPayload(rec)); err != nil {
		o.log.Error("business submission failed", zap.Error(err))
		return &SyncError{Err: err}
	}
	if err := o.backend.SubmitBranding(ctx, formstore.BrandingPayload(rec)); err != nil {
		o.log.Error("branding submission failed", zap.Error(err))
		return &SyncError{Err: err}
	}
	o.log.Info("onboarding data synced")
	return nil
}

// Checkout syncs, resolves the plan and creates a checkout session,
// returning the URL to redirect to. Concurrent calls share one attempt.
func (o *Orchestrator) Checkout(ctx context.Context, choice PlanChoice) (string, error) {
	v, err, shared := o.group.Do("checkout", func() (any, error) {
		return o.checkout(ctx, choice)
	})
	if shared {
		o.log.Debug("checkout call coalesced")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (o *Orchestrator) checkout(ctx context.Context, choice PlanChoice) (string, error) {
	if err := o.Sync(ctx); err != nil {
		return "", err
	}
	plans, err := o.backend.Plans(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load plans: %w", err)
	}
	plan, err := ResolvePlan(choice, plans)
	if err != nil {
		return "", err
	}
	session, err := o.backend.CreateCheckout(ctx, model.CheckoutRequest{
		PlanID:     plan.ID,
		SuccessURL: o.urls.Success,
		CancelURL:  o.urls.Cancel,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	if err := o.form.MarkCompleted(); err != nil {
		o.log.Warn("failed to mark onboarding completed", zap.Error(err))
	}
	o.funnel.Clear()
	o.log.Info("checkout session created", zap.String("plan", plan.ID), zap.String("session", session.ID))
	return session.URL, nil
}

// Update submits the live answers in edit mode, then clears local state and
// runs the completion callback.
func (o *Orchestrator) Update(ctx context.Context) error {
	if err := o.backend.SubmitBusiness(ctx, o.form.BusinessPayload()); err != nil {
		o.log.Error("profile update failed", zap.Error(err))
		return &UpdateError{Err: err}
	}
	if err := o.backend.SubmitBranding(ctx, o.form.BrandingPayload()); err != nil {
		o.log.Error("profile update failed", zap.Error(err))
		return &UpdateError{Err: err}
	}
	o.backend.InvalidateProfile()
	if err := o.form.Clear(); err != nil {
		o.log.Warn("failed to clear onboarding record", zap.Error(err))
	}
	if o.onComplete != nil {
		o.onComplete()
	}
	return nil
}

// ResolvePlan finds the active plan whose interval matches choice.
func ResolvePlan(choice PlanChoice, plans []model.Plan) (model.Plan, error) {
	if len(plans) == 0 {
		return model.Plan{}, ErrNoPlans
	}
	interval, ok := intervals[choice]
	if !ok {
		return model.Plan{}, fmt.Errorf("%w: %q", ErrUnknownPlan, choice)
	}
	for _, p := range plans {
		if p.Active && p.Interval == interval {
			return p, nil
		}
	}
	return model.Plan{}, fmt.Errorf("%w: %s", ErrNoActivePlan, interval)
}

// Message turns an orchestrator error into the text shown to the user.
func Message(err error) string {
	var syncErr *SyncError
	var updateErr *UpdateError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingFields):
		return "Please fill in your business name and niche before checkout."
	case errors.Is(err, ErrNoPlans):
		return "Plans are not available yet. Please try again in a moment."
	case errors.Is(err, ErrUnknownPlan):
		return "That plan does not exist. Please pick another one."
	case errors.Is(err, ErrNoActivePlan):
		return "No active plan matches your choice. Please pick another one."
	case errors.Is(err, api.ErrUnauthenticated):
		return "Your session has expired. Please log in again."
	case errors.As(err, &syncErr):
		return "We could not save your answers. Nothing was charged, please try again."
	case errors.As(err, &updateErr):
		return "We could not update your profile. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}
