package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/onboard/internal/model"
)

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathLogin, r.URL.Path)
		var creds model.Credentials
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "a@example.test", creds.Email)
		_ = json.NewEncoder(w).Encode(model.TokenResponse{Access: "tok-1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	assert.False(t, c.Authenticated())
	token, err := c.Login(context.Background(), model.Credentials{Email: "a@example.test", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.True(t, c.Authenticated())
}

func TestAuthenticatedCallsRequireToken(t *testing.T) {
	c := NewClient("http://127.0.0.1:0")
	err := c.Track(context.Background(), model.TrackEvent{SessionID: "s", StepNumber: 1})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = c.Profile(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestBearerHeaderAndTrackBody(t *testing.T) {
	var got model.TrackEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathTrack, r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithToken("secret"))
	require.NoError(t, c.Track(context.Background(), model.TrackEvent{SessionID: "ob_1_2", StepNumber: 4, Completed: true}))
	assert.Equal(t, model.TrackEvent{SessionID: "ob_1_2", StepNumber: 4, Completed: true}, got)
}

func TestStatusErrorCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"nope"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithToken("t"))
	err := c.SubmitBusiness(context.Background(), model.BusinessPayload{BusinessName: "A"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Contains(t, se.Body, "nope")
}

func TestProfileIsCachedUntilInvalidated(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(model.Profile{
			BusinessPayload: model.BusinessPayload{BusinessName: "Acme"},
			BrandingPayload: model.BrandingPayload{Color1: "#111111"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithToken("t"))
	ctx := context.Background()
	p, err := c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Acme", p.BusinessName)
	assert.Equal(t, "#111111", p.Color1)
	_, err = c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	c.InvalidateProfile()
	_, err = c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCreateCheckoutSendsIdempotencyKey(t *testing.T) {
	var mu sync.Mutex
	keys := map[string]bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("Idempotency-Key")
		assert.NotEmpty(t, key)
		mu.Lock()
		keys[key] = true
		mu.Unlock()
		var req model.CheckoutRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(model.CheckoutSession{ID: "cs", URL: "https://pay.test/" + req.PlanID})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithToken("t"))
	for i := 0; i < 2; i++ {
		s, err := c.CreateCheckout(context.Background(), model.CheckoutRequest{PlanID: "p1"})
		require.NoError(t, err)
		assert.Equal(t, "https://pay.test/p1", s.URL)
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, keys, 2)
}

func TestCreateCheckoutRejectsMissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"cs"}`))
	}))
	defer srv.Close()
	c := NewClient(srv.URL, WithToken("t"))
	_, err := c.CreateCheckout(context.Background(), model.CheckoutRequest{PlanID: "p"})
	assert.Error(t, err)
}

func TestFunnelSendsTokenAndSince(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer admin", r.Header.Get("Authorization"))
		assert.Equal(t, PathFunnel, r.URL.Path)
		assert.Equal(t, "1700", r.URL.Query().Get("since_ms"))
		_, _ = w.Write([]byte(`[{"step":1,"visited":3,"completed":2}]`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Funnel(context.Background(), model.FunnelFilter{})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	c := NewClient(srv.URL, WithToken("admin"))
	counts, err := c.Funnel(context.Background(), model.FunnelFilter{SinceMs: 1700})
	require.NoError(t, err)
	assert.Equal(t, []model.StepCount{{Step: 1, Visited: 3, Completed: 2}}, counts)
}
