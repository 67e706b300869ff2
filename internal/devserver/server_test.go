package devserver

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/verte-zerg/onboard/internal/api"
	"github.com/verte-zerg/onboard/internal/model"
	"github.com/verte-zerg/onboard/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*httptest.Server, *api.Client) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "devserver.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})

	srv := New(st, zaptest.NewLogger(t), WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, srv.Seed(context.Background()))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	srv.publicURL = ts.URL
	return ts, api.NewClient(ts.URL)
}

var creds = model.Credentials{Email: "Owner@Example.com", Password: "correct-horse"}

func TestRegisterAndLogin(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	token, err := client.Register(ctx, creds)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = client.Register(ctx, creds)
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusConflict, statusErr.StatusCode)

	_, err = client.Login(ctx, model.Credentials{Email: creds.Email, Password: "wrong-password"})
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)

	again, err := client.Login(ctx, model.Credentials{Email: "owner@example.com", Password: creds.Password})
	require.NoError(t, err)
	assert.NotEqual(t, token, again)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	_, client := newTestServer(t)
	_, err := client.Register(context.Background(), model.Credentials{Email: "a@b.c", Password: "short"})
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	_, client := newTestServer(t)
	client.SetToken("bogus")
	_, err := client.Subscription(context.Background())
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
}

func TestProfileRoundTrip(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()
	_, err := client.Register(ctx, creds)
	require.NoError(t, err)

	_, err = client.Profile(ctx)
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)

	require.NoError(t, client.SubmitBusiness(ctx, model.BusinessPayload{BusinessName: "Bloom", Specialization: "Flowers"}))
	require.NoError(t, client.SubmitBranding(ctx, model.BrandingPayload{VoiceTone: "Casual", Color1: "#112233"}))

	p, err := client.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bloom", p.BusinessName)
	assert.Equal(t, "#112233", p.Color1)

	err = client.SubmitBusiness(ctx, model.BusinessPayload{BusinessName: "Bloom"})
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
}

func TestCheckoutActivatesSubscription(t *testing.T) {
	ts, client := newTestServer(t)
	ctx := context.Background()
	_, err := client.Register(ctx, creds)
	require.NoError(t, err)

	plans, err := client.Plans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, len(DefaultPlans))

	session, err := client.CreateCheckout(ctx, model.CheckoutRequest{
		PlanID:     "plan_monthly",
		SuccessURL: "https://app.example/done",
		CancelURL:  "https://app.example/onboarding",
	})
	require.NoError(t, err)
	assert.Equal(t, ts.URL+"/checkout/"+session.ID, session.URL)

	sub, err := client.Subscription(ctx)
	require.NoError(t, err)
	assert.False(t, sub.Active)

	noFollow := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := noFollow.Get(session.URL + "?cancel=1")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "https://app.example/onboarding", resp.Header.Get("Location"))

	resp, err = noFollow.Get(session.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "https://app.example/done", resp.Header.Get("Location"))

	sub, err = client.Subscription(ctx)
	require.NoError(t, err)
	assert.True(t, sub.Active)
	assert.Equal(t, "plan_monthly", sub.PlanID)
}

func TestCheckoutRejectsInactivePlan(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()
	_, err := client.Register(ctx, creds)
	require.NoError(t, err)

	_, err = client.CreateCheckout(ctx, model.CheckoutRequest{PlanID: "plan_monthly_2023"})
	var statusErr *api.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
}

func TestCheckoutIdempotencyKey(t *testing.T) {
	ts, client := newTestServer(t)
	token, err := client.Register(context.Background(), creds)
	require.NoError(t, err)

	post := func() string {
		req, err := http.NewRequest(http.MethodPost, ts.URL+api.PathCheckout,
			bytes.NewBufferString(`{"plan_id":"plan_yearly","success_url":"","cancel_url":""}`))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "key-1")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer func() {
			_ = resp.Body.Close()
		}()
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return buf.String()
	}
	assert.JSONEq(t, post(), post())
}

func TestTrackAndFunnel(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()
	_, err := client.Register(ctx, creds)
	require.NoError(t, err)

	events := []model.TrackEvent{
		{SessionID: "ob_a", StepNumber: 1},
		{SessionID: "ob_a", StepNumber: 1, Completed: true},
		{SessionID: "ob_b", StepNumber: 1},
		{SessionID: "ob_a", StepNumber: 2},
	}
	for _, ev := range events {
		require.NoError(t, client.Track(ctx, ev))
	}
	require.Error(t, client.Track(ctx, model.TrackEvent{StepNumber: 1}))
	for _, step := range []int{0, 21, 2_000_000_000} {
		err := client.Track(ctx, model.TrackEvent{SessionID: "ob_c", StepNumber: step})
		var statusErr *api.StatusError
		require.ErrorAs(t, err, &statusErr, "step %d", step)
		assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	}

	counts, err := client.Funnel(ctx, model.FunnelFilter{})
	require.NoError(t, err)
	assert.Equal(t, []model.StepCount{
		{Step: 1, Visited: 2, Completed: 1},
		{Step: 2, Visited: 1, Completed: 0},
	}, counts)
}

func TestFunnelRequiresAuth(t *testing.T) {
	_, client := newTestServer(t)
	_, err := client.Funnel(context.Background(), model.FunnelFilter{})
	assert.ErrorIs(t, err, api.ErrUnauthenticated)

	client.SetToken("bogus")
	_, err = client.Funnel(context.Background(), model.FunnelFilter{})
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
}
