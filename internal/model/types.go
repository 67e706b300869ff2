// Package model defines shared data structures.
package model

// WizardRecord holds every answer collected by the onboarding wizard.
type WizardRecord struct {
	BusinessName        string   `json:"business_name"`
	BusinessPhone       string   `json:"business_phone"`
	BusinessWebsite     string   `json:"business_website"`
	InstagramHandle     string   `json:"instagram_handle"`
	Specialization      string   `json:"specialization"`
	BusinessDescription string   `json:"business_description"`
	BrandPersonality    []string `json:"brand_personality"`
	TargetAudience      string   `json:"target_audience"`
	TargetInterests     []string `json:"target_interests"`
	BusinessLocation    string   `json:"business_location"`
	MainCompetitors     string   `json:"main_competitors"`
	VoiceTone           string   `json:"voice_tone"`
	VisualStyle         []string `json:"visual_style"`
	Colors              []string `json:"colors"`
	Logo                string   `json:"logo"`
	CurrentStep         int      `json:"current_step"`
	CompletedAt         *int64   `json:"completed_at,omitempty"`
	ExpiresAt           int64    `json:"expires_at"`
}

// Audience is the structured value serialized into WizardRecord.TargetAudience.
type Audience struct {
	Gender      []string `json:"gender"`
	AgeRange    []string `json:"age_range"`
	IncomeLevel []string `json:"income_level"`
}

// BusinessPayload is the body of the step-1 profile submission.
type BusinessPayload struct {
	BusinessName        string `json:"business_name"`
	BusinessPhone       string `json:"business_phone"`
	BusinessWebsite     string `json:"business_website"`
	InstagramHandle     string `json:"instagram_handle"`
	Specialization      string `json:"specialization"`
	BusinessDescription string `json:"business_description"`
	TargetAudience      string `json:"target_audience"`
	TargetInterests     string `json:"target_interests"`
	BusinessLocation    string `json:"business_location"`
	MainCompetitors     string `json:"main_competitors"`
}

// BrandingPayload is the body of the step-2 profile submission.
type BrandingPayload struct {
	BrandPersonality string `json:"brand_personality"`
	VoiceTone        string `json:"voice_tone"`
	VisualStyle      string `json:"visual_style"`
	Logo             string `json:"logo"`
	Color1           string `json:"color_1"`
	Color2           string `json:"color_2"`
	Color3           string `json:"color_3"`
	Color4           string `json:"color_4"`
	Color5           string `json:"color_5"`
}

// Profile is the creator profile as returned by the backend.
type Profile struct {
	BusinessPayload
	BrandingPayload
}

// TrackEvent is a single funnel tracking call.
type TrackEvent struct {
	SessionID  string `json:"session_id"`
	StepNumber int    `json:"step_number"`
	Completed  bool   `json:"completed"`
}

// Plan is a backend subscription plan.
type Plan struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Interval   string `json:"interval"`
	PriceCents int64  `json:"price_cents"`
	Active     bool   `json:"active"`
}

// Subscription reports whether the authenticated user is paying.
type Subscription struct {
	Active bool   `json:"active"`
	PlanID string `json:"plan_id,omitempty"`
}

// Credentials are used for both signup and login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries the access token issued on signup or login.
type TokenResponse struct {
	Access string `json:"access"`
}

// CheckoutRequest asks the backend for a hosted checkout session.
type CheckoutRequest struct {
	PlanID     string `json:"plan_id"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

// CheckoutSession is the hosted checkout handoff.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// StepCount aggregates tracking events for a single step.
type StepCount struct {
	Step      int `json:"step"`
	Visited   int `json:"visited"`
	Completed int `json:"completed"`
}

// FunnelFilter narrows which tracking events are aggregated.
type FunnelFilter struct {
	SinceMs int64
}
