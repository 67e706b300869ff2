package submit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/verte-zerg/onboard/internal/api"
	"github.com/verte-zerg/onboard/internal/formstore"
	"github.com/verte-zerg/onboard/internal/model"
	"github.com/verte-zerg/onboard/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeBackend struct {
	mu          sync.Mutex
	business    []model.BusinessPayload
	branding    []model.BrandingPayload
	checkouts   []model.CheckoutRequest
	invalidated int
	plans       []model.Plan

	businessErr error
	brandingErr error
	gate        chan struct{}
	started     chan struct{}
}

func (f *fakeBackend) SubmitBusiness(_ context.Context, p model.BusinessPayload) error {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.business = append(f.business, p)
	return f.businessErr
}

func (f *fakeBackend) SubmitBranding(_ context.Context, p model.BrandingPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.branding = append(f.branding, p)
	return f.brandingErr
}

func (f *fakeBackend) Plans(context.Context) ([]model.Plan, error) {
	return f.plans, nil
}

func (f *fakeBackend) CreateCheckout(_ context.Context, req model.CheckoutRequest) (model.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkouts = append(f.checkouts, req)
	return model.CheckoutSession{ID: "cs_1", URL: "https://pay.example/cs_1"}, nil
}

func (f *fakeBackend) InvalidateProfile() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
}

type funnelCounter struct{ clears int }

func (f *funnelCounter) Clear() { f.clears++ }

var testPlans = []model.Plan{
	{ID: "p_month_old", Interval: "month", Active: false},
	{ID: "p_month", Interval: "month", Active: true},
	{ID: "p_year", Interval: "year", Active: true},
}

var testURLs = URLs{Success: "https://app.example/ok", Cancel: "https://app.example/onboarding"}

func newOrchestrator(t *testing.T, backend *fakeBackend, seed formstore.Patch) (*Orchestrator, *formstore.Store, *funnelCounter) {
	t.Helper()
	log := zaptest.NewLogger(t)
	form := formstore.New(store.NewMemory(), log)
	require.NoError(t, form.Save(seed))
	funnel := &funnelCounter{}
	return New(backend, form, funnel, testURLs, log), form, funnel
}

func validSeed() formstore.Patch {
	return formstore.Patch{
		BusinessName:   formstore.String("Bloom"),
		Specialization: formstore.String("Flowers"),
		Colors:         []string{"#FF0000"},
	}
}

func TestSyncRequiresFields(t *testing.T) {
	backend := &fakeBackend{}
	o, _, _ := newOrchestrator(t, backend, formstore.Patch{BusinessName: formstore.String("Bloom")})
	assert.ErrorIs(t, o.Sync(context.Background()), ErrMissingFields)
	assert.Empty(t, backend.business)
}

func TestSyncPostsBothPayloads(t *testing.T) {
	backend := &fakeBackend{}
	o, _, _ := newOrchestrator(t, backend, validSeed())
	require.NoError(t, o.Sync(context.Background()))
	require.Len(t, backend.business, 1)
	require.Len(t, backend.branding, 1)
	assert.Equal(t, "Bloom", backend.business[0].BusinessName)
	assert.Equal(t, "#FF0000", backend.branding[0].Color1)
	assert.Equal(t, formstore.DefaultColors[1], backend.branding[0].Color2)
}

func TestSyncReadsStorage(t *testing.T) {
	backend := &fakeBackend{}
	kv := store.NewMemory()
	form := formstore.New(kv, nil)
	require.NoError(t, form.Save(validSeed()))

	other := formstore.New(kv, nil)
	require.NoError(t, other.Save(formstore.Patch{BusinessName: formstore.String("Renamed")}))

	o := New(backend, form, &funnelCounter{}, testURLs, nil)
	require.NoError(t, o.Sync(context.Background()))
	assert.Equal(t, "Renamed", backend.business[0].BusinessName)
}

func TestCheckoutAbortsOnSyncFailure(t *testing.T) {
	backend := &fakeBackend{brandingErr: errors.New("boom"), plans: testPlans}
	o, form, funnel := newOrchestrator(t, backend, validSeed())

	url, err := o.Checkout(context.Background(), Monthly)
	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Empty(t, url)
	assert.Empty(t, backend.checkouts)
	assert.Nil(t, form.Record().CompletedAt)
	assert.Equal(t, 0, funnel.clears)
}

func TestCheckoutHappyPath(t *testing.T) {
	backend := &fakeBackend{plans: testPlans}
	o, form, funnel := newOrchestrator(t, backend, validSeed())

	url, err := o.Checkout(context.Background(), Monthly)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/cs_1", url)
	require.Len(t, backend.checkouts, 1)
	assert.Equal(t, model.CheckoutRequest{
		PlanID:     "p_month",
		SuccessURL: testURLs.Success,
		CancelURL:  testURLs.Cancel,
	}, backend.checkouts[0])
	assert.NotNil(t, form.Record().CompletedAt)
	assert.Equal(t, 1, funnel.clears)
}

func TestCheckoutPlanErrors(t *testing.T) {
	backend := &fakeBackend{}
	o, _, _ := newOrchestrator(t, backend, validSeed())
	_, err := o.Checkout(context.Background(), Monthly)
	assert.ErrorIs(t, err, ErrNoPlans)

	backend.plans = testPlans
	_, err = o.Checkout(context.Background(), Quarterly)
	assert.ErrorIs(t, err, ErrNoActivePlan)
	assert.Empty(t, backend.checkouts)
}

func TestCheckoutCoalescesConcurrentCalls(t *testing.T) {
	backend := &fakeBackend{
		plans:   testPlans,
		gate:    make(chan struct{}),
		started: make(chan struct{}, 2),
	}
	o, _, _ := newOrchestrator(t, backend, validSeed())

	var wg sync.WaitGroup
	urls := make([]string, 2)
	for i := range urls {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := o.Checkout(context.Background(), Yearly)
			assert.NoError(t, err)
			urls[i] = u
		}(i)
		if i == 0 {
			<-backend.started
		}
	}
	time.Sleep(50 * time.Millisecond)
	close(backend.gate)
	wg.Wait()

	assert.Len(t, backend.checkouts, 1)
	assert.Equal(t, urls[0], urls[1])
}

func TestUpdate(t *testing.T) {
	backend := &fakeBackend{}
	log := zaptest.NewLogger(t)
	form := formstore.New(store.NewMemory(), log)
	require.NoError(t, form.InitializeFromExternal(validSeed()))
	done := 0
	o := New(backend, form, &funnelCounter{}, testURLs, log, WithOnComplete(func() { done++ }))

	require.NoError(t, o.Update(context.Background()))
	assert.Equal(t, 1, done)
	assert.Equal(t, 1, backend.invalidated)
	assert.Empty(t, form.Record().BusinessName)
	require.Len(t, backend.business, 1)
	assert.Equal(t, "Bloom", backend.business[0].BusinessName)
}

func TestUpdateFailureKeepsRecord(t *testing.T) {
	backend := &fakeBackend{businessErr: errors.New("boom")}
	form := formstore.New(store.NewMemory(), nil)
	require.NoError(t, form.InitializeFromExternal(validSeed()))
	called := false
	o := New(backend, form, &funnelCounter{}, testURLs, nil, WithOnComplete(func() { called = true }))

	err := o.Update(context.Background())
	var updErr *UpdateError
	require.ErrorAs(t, err, &updErr)
	assert.False(t, called)
	assert.Equal(t, 0, backend.invalidated)
	assert.Equal(t, "Bloom", form.Record().BusinessName)
}

func TestResolvePlan(t *testing.T) {
	p, err := ResolvePlan(Yearly, testPlans)
	require.NoError(t, err)
	assert.Equal(t, "p_year", p.ID)

	_, err = ResolvePlan(Monthly, nil)
	assert.ErrorIs(t, err, ErrNoPlans)
	_, err = ResolvePlan("weekly", testPlans)
	assert.ErrorIs(t, err, ErrUnknownPlan)
	_, err = ResolvePlan(Quarterly, testPlans)
	assert.ErrorIs(t, err, ErrNoActivePlan)
}

func TestMessagesAreDistinct(t *testing.T) {
	errs := []error{
		ErrMissingFields,
		ErrNoPlans,
		ErrUnknownPlan,
		ErrNoActivePlan,
		&SyncError{Err: errors.New("x")},
		&UpdateError{Err: errors.New("x")},
		&SyncError{Err: api.ErrUnauthenticated},
		errors.New("other"),
	}
	seen := map[string]bool{}
	for _, err := range errs {
		msg := Message(err)
		assert.NotEmpty(t, msg)
		assert.False(t, seen[msg], "duplicate message %q", msg)
		seen[msg] = true
	}
	assert.Empty(t, Message(nil))
}
