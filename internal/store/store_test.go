package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/onboard/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "onboard.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestLocalRoundTrip(t *testing.T) {
	local := openTestStore(t).Local()

	if _, ok, err := local.GetItem("k"); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}
	if err := local.SetItem("k", "one"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := local.SetItem("k", "two"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := local.GetItem("k")
	if err != nil || !ok || v != "two" {
		t.Fatalf("expected two, got %q ok=%v err=%v", v, ok, err)
	}
	if err := local.RemoveItem("k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := local.GetItem("k"); ok {
		t.Fatalf("expected key removed")
	}
	if err := local.RemoveItem("k"); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
}

func TestLocalSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "onboard.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.Local().SetItem("onboarding_session_id", "ob_abc_def"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	st, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = st.Close() }()
	v, ok, err := st.Local().GetItem("onboarding_session_id")
	if err != nil || !ok || v != "ob_abc_def" {
		t.Fatalf("unexpected value after reopen: %q ok=%v err=%v", v, ok, err)
	}
}

func TestMemoryKV(t *testing.T) {
	m := NewMemory()
	if err := m.SetItem("a", "1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok, _ := m.GetItem("a"); !ok || v != "1" {
		t.Fatalf("unexpected value %q", v)
	}
	_ = m.RemoveItem("a")
	if _, ok, _ := m.GetItem("a"); ok {
		t.Fatalf("expected removal")
	}
}

func TestUsersAndTokens(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	id, err := st.CreateUser(ctx, "a@example.test", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := st.CreateUser(ctx, "a@example.test", "hash"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	u, err := st.UserByEmail(ctx, "a@example.test")
	if err != nil || u.ID != id {
		t.Fatalf("lookup user: %+v %v", u, err)
	}
	if _, err := st.UserByEmail(ctx, "nobody@example.test"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := st.CreateToken(ctx, "tok", id); err != nil {
		t.Fatalf("create token: %v", err)
	}
	got, err := st.UserIDForToken(ctx, "tok")
	if err != nil || got != id {
		t.Fatalf("token lookup: %d %v", got, err)
	}
}

func TestCheckoutActivatesSubscription(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := st.SeedPlans(ctx, []model.Plan{{ID: "p_month", Name: "Monthly", Interval: "month", PriceCents: 2900, Active: true}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	plans, err := st.ListPlans(ctx)
	if err != nil || len(plans) != 1 || !plans[0].Active {
		t.Fatalf("list plans: %+v %v", plans, err)
	}

	sub, err := st.Subscription(ctx, 7)
	if err != nil || sub.Active {
		t.Fatalf("expected inactive subscription, got %+v %v", sub, err)
	}
	if err := st.CreateCheckout(ctx, CheckoutRecord{ID: "cs_1", UserID: 7, PlanID: "p_month", SuccessURL: "s", CancelURL: "c"}); err != nil {
		t.Fatalf("create checkout: %v", err)
	}
	pending, err := st.Checkout(ctx, "cs_1")
	if err != nil || pending.Completed || pending.CancelURL != "c" {
		t.Fatalf("lookup checkout: %+v %v", pending, err)
	}
	rec, err := st.CompleteCheckout(ctx, "cs_1")
	if err != nil || !rec.Completed || rec.SuccessURL != "s" {
		t.Fatalf("complete checkout: %+v %v", rec, err)
	}
	sub, err = st.Subscription(ctx, 7)
	if err != nil || !sub.Active || sub.PlanID != "p_month" {
		t.Fatalf("expected active subscription, got %+v %v", sub, err)
	}
	if _, err := st.CompleteCheckout(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := st.Checkout(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProfileSections(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if _, _, err := st.Profile(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := st.SaveProfileSection(ctx, 1, "business", `{"business_name":"A"}`); err != nil {
		t.Fatalf("save business: %v", err)
	}
	if err := st.SaveProfileSection(ctx, 1, "branding", `{"voice_tone":"warm"}`); err != nil {
		t.Fatalf("save branding: %v", err)
	}
	if err := st.SaveProfileSection(ctx, 1, "bogus", `{}`); err == nil {
		t.Fatalf("expected unknown section error")
	}
	business, branding, err := st.Profile(ctx, 1)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if business != `{"business_name":"A"}` || branding != `{"voice_tone":"warm"}` {
		t.Fatalf("unexpected sections %q %q", business, branding)
	}
}

func TestStepCountsDistinctSessions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	events := []model.TrackEvent{
		{SessionID: "s1", StepNumber: 1},
		{SessionID: "s1", StepNumber: 1, Completed: true},
		{SessionID: "s1", StepNumber: 1, Completed: true},
		{SessionID: "s2", StepNumber: 1},
		{SessionID: "s1", StepNumber: 2},
	}
	for i, ev := range events {
		if err := st.InsertTrackEvent(ctx, 1, ev, int64(1000+i)); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	counts, err := st.StepCounts(ctx, model.FunnelFilter{})
	if err != nil {
		t.Fatalf("step counts: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected 2 steps, got %+v", counts)
	}
	if counts[0] != (model.StepCount{Step: 1, Visited: 2, Completed: 1}) {
		t.Fatalf("unexpected step 1 counts: %+v", counts[0])
	}
	if counts[1] != (model.StepCount{Step: 2, Visited: 1, Completed: 0}) {
		t.Fatalf("unexpected step 2 counts: %+v", counts[1])
	}

	recent, err := st.StepCounts(ctx, model.FunnelFilter{SinceMs: 1004})
	if err != nil || len(recent) != 1 || recent[0].Step != 2 {
		t.Fatalf("unexpected filtered counts: %+v %v", recent, err)
	}
}
