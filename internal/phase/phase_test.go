package phase

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/verte-zerg/onboard/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDefinitionsAreConsistent(t *testing.T) {
	require.NoError(t, ValidateDefinitions(Definitions, EndSteps))
	assert.Equal(t, 17, LastStep())
}

func TestValidateDefinitionsRejectsGap(t *testing.T) {
	defs := []Definition{
		{ID: Business, Steps: []int{1, 2}},
		{ID: Audience, Steps: []int{4, 5}},
	}
	err := ValidateDefinitions(defs, map[int]ID{2: Business})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected step 3")
}

func TestValidateDefinitionsRejectsWrongEnds(t *testing.T) {
	defs := []Definition{
		{ID: Business, Steps: []int{1, 2}},
		{ID: Audience, Steps: []int{3, 4}},
	}
	assert.Error(t, ValidateDefinitions(defs, map[int]ID{1: Business}))
	assert.Error(t, ValidateDefinitions(defs, map[int]ID{2: Business, 4: Audience}))
}

func TestForStep(t *testing.T) {
	cases := map[int]ID{1: Business, 4: Business, 5: Audience, 13: Brand, 17: Account}
	for step, want := range cases {
		def, ok := ForStep(step)
		require.True(t, ok, "step %d", step)
		assert.Equal(t, want, def.ID, "step %d", step)
	}
	_, ok := ForStep(18)
	assert.False(t, ok)
}

func TestIsEnd(t *testing.T) {
	id, ok := IsEnd(8)
	assert.True(t, ok)
	assert.Equal(t, Audience, id)
	_, ok = IsEnd(17)
	assert.False(t, ok)
}

func TestSummarizeBusiness(t *testing.T) {
	rec := model.WizardRecord{
		BusinessName:        "Bloom Studio",
		Specialization:      "Floral design",
		BusinessDescription: strings.Repeat("x", 200),
	}
	s := Summarize(Business, rec)
	assert.Equal(t, "Bloom Studio is taking shape", s.Title)
	require.Len(t, s.Details, 2)
	assert.Equal(t, "Niche: Floral design", s.Details[0])
	assert.True(t, strings.HasSuffix(s.Details[1], "…"))
	assert.Empty(t, s.Colors)
}

func TestSummarizeAudienceSkipsEmpty(t *testing.T) {
	rec := model.WizardRecord{
		TargetAudience:   `{"gender":["female"],"age_range":["18-24"],"income_level":[]}`,
		BusinessLocation: "Lisbon",
	}
	s := Summarize(Audience, rec)
	assert.Equal(t, []string{"Audience: Female aged 18-24", "Location: Lisbon"}, s.Details)
}

func TestSummarizeBrandIncludesColors(t *testing.T) {
	rec := model.WizardRecord{
		BrandPersonality: []string{"bold", "warm"},
		VoiceTone:        "friendly",
		VisualStyle:      []string{"minimal"},
		Colors:           []string{"#112233"},
	}
	s := Summarize(Brand, rec)
	assert.Equal(t, "Your brand identity is set", s.Title)
	assert.Len(t, s.Details, 3)
	assert.Equal(t, []string{"#112233"}, s.Colors)
}

func TestSummarizeEmptyRecord(t *testing.T) {
	s := Summarize(Audience, model.WizardRecord{})
	assert.NotEmpty(t, s.Title)
	assert.Empty(t, s.Details)
}

type manualScheduler struct {
	mu       sync.Mutex
	fire     func()
	delay    time.Duration
	canceled bool
}

func (m *manualScheduler) schedule(d time.Duration, f func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	m.fire = f
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.canceled = true
		return true
	}
}

func TestTransitionAdvancesOnTimer(t *testing.T) {
	sched := &manualScheduler{}
	calls := 0
	tr := NewTransition(Business, model.WizardRecord{}, func() { calls++ }, WithScheduler(sched.schedule))
	tr.Start()
	assert.Equal(t, DefaultDelay, sched.delay)

	sched.fire()
	assert.Equal(t, 1, calls)
	assert.True(t, tr.Done())
	assert.False(t, tr.Advance())
	assert.Equal(t, 1, calls)
}

func TestTransitionManualAdvanceCancelsTimer(t *testing.T) {
	sched := &manualScheduler{}
	calls := 0
	tr := NewTransition(Brand, model.WizardRecord{}, func() { calls++ },
		WithScheduler(sched.schedule), WithDelay(500*time.Millisecond))
	tr.Start()
	assert.Equal(t, 500*time.Millisecond, sched.delay)

	assert.False(t, tr.HandleKey("x"))
	assert.True(t, tr.HandleKey("enter"))
	assert.True(t, sched.canceled)

	sched.fire()
	assert.Equal(t, 1, calls)
}

func TestTransitionStopDoesNotAdvance(t *testing.T) {
	sched := &manualScheduler{}
	calls := 0
	tr := NewTransition(Audience, model.WizardRecord{}, func() { calls++ }, WithScheduler(sched.schedule))
	tr.Start()
	tr.Stop()
	assert.True(t, sched.canceled)

	sched.fire()
	assert.Equal(t, 0, calls)
}

func TestTransitionRealTimer(t *testing.T) {
	done := make(chan struct{})
	tr := NewTransition(Business, model.WizardRecord{}, func() { close(done) }, WithDelay(10*time.Millisecond))
	tr.Start()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("transition did not advance")
	}
}

func TestTransitionStopBeforeRealTimer(t *testing.T) {
	tr := NewTransition(Business, model.WizardRecord{}, func() { t.Error("advanced after stop") }, WithDelay(20*time.Millisecond))
	tr.Start()
	tr.Stop()
	time.Sleep(40 * time.Millisecond)
}
