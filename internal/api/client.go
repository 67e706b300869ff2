// Package api is the HTTP JSON client for the postnow backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/verte-zerg/onboard/internal/model"
)

// Endpoint paths.
const (
	PathRegister     = "/api/v1/auth/register/"
	PathLogin        = "/api/v1/auth/login/"
	PathSubscription = "/api/v1/subscriptions/current/"
	PathPlans        = "/api/v1/subscriptions/plans/"
	PathCheckout     = "/api/v1/subscriptions/checkout/"
	PathProfile      = "/api/v1/creator-profile/"
	PathStep1        = "/api/v1/creator-profile/onboarding/step1/"
	PathStep2        = "/api/v1/creator-profile/onboarding/step2/"
	PathTrack        = "/api/v1/creator-profile/onboarding/track/"
	PathFunnel       = "/api/v1/admin/onboarding/funnel/"
)

const (
	// DefaultTimeout bounds every request unless overridden.
	DefaultTimeout  = 10 * time.Second
	profileCacheTTL = 5 * time.Minute
	maxErrorBody    = 4 << 10
)

// ErrUnauthenticated is returned for authenticated calls made without a token.
var ErrUnauthenticated = errors.New("not authenticated")

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger

	mu    sync.RWMutex
	token string

	profiles *expirable.LRU[string, model.Profile]
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithToken sets the initial access token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient returns a client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: DefaultTimeout},
		log:      zap.NewNop(),
		profiles: expirable.NewLRU[string, model.Profile](16, nil, profileCacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the access token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current access token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Authenticated reports whether a token is present.
func (c *Client) Authenticated() bool {
	return c.Token() != ""
}

// Register creates an account and stores the issued token.
func (c *Client) Register(ctx context.Context, creds model.Credentials) (string, error) {
	return c.authenticate(ctx, PathRegister, creds)
}

// Login authenticates and stores the issued token.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (string, error) {
	return c.authenticate(ctx, PathLogin, creds)
}

func (c *Client) authenticate(ctx context.Context, path string, creds model.Credentials) (string, error) {
	var resp model.TokenResponse
	if err := c.do(ctx, http.MethodPost, path, false, creds, &resp, nil); err != nil {
		return "", err
	}
	if resp.Access == "" {
		return "", fmt.Errorf("missing access token in response")
	}
	c.SetToken(resp.Access)
	return resp.Access, nil
}

// Subscription returns the caller's subscription state.
func (c *Client) Subscription(ctx context.Context) (model.Subscription, error) {
	var sub model.Subscription
	err := c.do(ctx, http.MethodGet, PathSubscription, true, nil, &sub, nil)
	return sub, err
}

// Plans lists the backend subscription plans.
func (c *Client) Plans(ctx context.Context) ([]model.Plan, error) {
	var plans []model.Plan
	err := c.do(ctx, http.MethodGet, PathPlans, false, nil, &plans, nil)
	return plans, err
}

// CreateCheckout opens a hosted checkout session. Each call carries a fresh
// idempotency key.
func (c *Client) CreateCheckout(ctx context.Context, req model.CheckoutRequest) (model.CheckoutSession, error) {
	var session model.CheckoutSession
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}
	if err := c.do(ctx, http.MethodPost, PathCheckout, true, req, &session, headers); err != nil {
		return model.CheckoutSession{}, err
	}
	if session.URL == "" {
		return model.CheckoutSession{}, fmt.Errorf("missing checkout url in response")
	}
	return session, nil
}

// Profile returns the creator profile, served from cache when fresh.
func (c *Client) Profile(ctx context.Context) (model.Profile, error) {
	key := c.Token()
	if key == "" {
		return model.Profile{}, ErrUnauthenticated
	}
	if p, ok := c.profiles.Get(key); ok {
		return p, nil
	}
	var p model.Profile
	if err := c.do(ctx, http.MethodGet, PathProfile, true, nil, &p, nil); err != nil {
		return model.Profile{}, err
	}
	c.profiles.Add(key, p)
	return p, nil
}

// InvalidateProfile drops the cached profile so the next read refetches.
func (c *Client) InvalidateProfile() {
	c.profiles.Purge()
}

// SubmitBusiness posts the step-1 profile payload.
func (c *Client) SubmitBusiness(ctx context.Context, p model.BusinessPayload) error {
	return c.do(ctx, http.MethodPost, PathStep1, true, p, nil, nil)
}

// SubmitBranding posts the step-2 profile payload.
func (c *Client) SubmitBranding(ctx context.Context, p model.BrandingPayload) error {
	return c.do(ctx, http.MethodPost, PathStep2, true, p, nil, nil)
}

// Track posts a funnel event. The response body is ignored.
func (c *Client) Track(ctx context.Context, ev model.TrackEvent) error {
	return c.do(ctx, http.MethodPost, PathTrack, true, ev, nil, nil)
}

// Funnel fetches per-step tracking aggregates from the admin endpoint.
// It requires a token.
func (c *Client) Funnel(ctx context.Context, filter model.FunnelFilter) ([]model.StepCount, error) {
	path := PathFunnel
	if filter.SinceMs > 0 {
		path += "?since_ms=" + strconv.FormatInt(filter.SinceMs, 10)
	}
	var counts []model.StepCount
	err := c.do(ctx, http.MethodGet, path, true, nil, &counts, nil)
	return counts, err
}

func (c *Client) do(ctx context.Context, method, path string, auth bool, body, out any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if auth {
		token := c.Token()
		if token == "" {
			return ErrUnauthenticated
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.log.Debug("api call", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
