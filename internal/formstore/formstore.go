// Package formstore keeps the onboarding answers in persistent storage with a
// time-to-live, sanitizing writes and degrading to defaults on bad reads.
package formstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/onboard/internal/model"
	"github.com/verte-zerg/onboard/internal/store"
)

const (
	// StorageKey is the local storage key holding the serialized record.
	StorageKey = "postnow_onboarding_data"
	// MaxRecordBytes caps the serialized record size.
	MaxRecordBytes = 50 * 1024
	// TTL is how long a record lives after its last write.
	TTL = 24 * time.Hour

	MinStep = 1
	MaxStep = 20
	// EditStartStep is where edit mode enters the wizard.
	EditStartStep = 2

	maxPersonality = 10
	maxInterests   = 20
	maxColors      = 10
)

var (
	// ErrRecordTooLarge is returned when a merged record would exceed MaxRecordBytes.
	ErrRecordTooLarge = errors.New("onboarding record exceeds storage limit")
	// ErrStepOutOfRange is returned for steps outside [MinStep, MaxStep].
	ErrStepOutOfRange = errors.New("step out of range")
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Store holds the live record and mirrors every accepted write to storage.
type Store struct {
	kv  store.KV
	log *zap.Logger
	now func() time.Time
	rec model.WizardRecord
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New builds a Store over kv and loads the persisted record.
func New(kv store.KV, log *zap.Logger, opts ...Option) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{kv: kv, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.Load()
	return s
}

// Defaults returns a fresh record expiring TTL after now.
func Defaults(now time.Time) model.WizardRecord {
	return model.WizardRecord{
		BrandPersonality: []string{},
		TargetInterests:  []string{},
		VisualStyle:      []string{},
		Colors:           []string{},
		CurrentStep:      MinStep,
		ExpiresAt:        now.Add(TTL).UnixMilli(),
	}
}

// Load re-reads the record from storage. Missing, corrupt, invalid and expired
// records all yield defaults; the last three are also deleted from storage.
func (s *Store) Load() model.WizardRecord {
	s.rec = s.read()
	return cloneRecord(s.rec)
}

// Peek reads the persisted record without touching the live copy.
func (s *Store) Peek() model.WizardRecord {
	return cloneRecord(s.read())
}

func (s *Store) read() model.WizardRecord {
	now := s.now()
	raw, ok, err := s.kv.GetItem(StorageKey)
	if err != nil {
		s.log.Warn("failed to read onboarding record", zap.Error(err))
		return Defaults(now)
	}
	if !ok {
		return Defaults(now)
	}
	var rec model.WizardRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.log.Warn("discarding corrupt onboarding record", zap.Error(err))
		s.discard()
		return Defaults(now)
	}
	if err := Validate(rec); err != nil {
		s.log.Warn("discarding invalid onboarding record", zap.Error(err))
		s.discard()
		return Defaults(now)
	}
	if now.UnixMilli() > rec.ExpiresAt {
		s.log.Info("discarding expired onboarding record", zap.Int64("expires_at", rec.ExpiresAt))
		s.discard()
		return Defaults(now)
	}
	return rec
}

func (s *Store) discard() {
	if err := s.kv.RemoveItem(StorageKey); err != nil {
		s.log.Warn("failed to remove onboarding record", zap.Error(err))
	}
}

// Record returns a copy of the live record.
func (s *Store) Record() model.WizardRecord {
	return cloneRecord(s.rec)
}

// Save sanitizes p, merges it into the live record, refreshes the expiry and
// persists the result. If the result is invalid, too large or cannot be
// written, neither storage nor the live record change.
func (s *Store) Save(p Patch) error {
	merged := cloneRecord(s.rec)
	sanitize(&p)
	p.apply(&merged)
	merged.ExpiresAt = s.now().Add(TTL).UnixMilli()
	if err := Validate(merged); err != nil {
		s.log.Warn("invalid onboarding record, write skipped", zap.Error(err))
		return err
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to encode onboarding record: %w", err)
	}
	if len(data) > MaxRecordBytes {
		s.log.Warn("onboarding record too large, write skipped", zap.Int("bytes", len(data)))
		return ErrRecordTooLarge
	}
	if err := s.kv.SetItem(StorageKey, string(data)); err != nil {
		s.log.Warn("failed to persist onboarding record", zap.Error(err))
		return fmt.Errorf("failed to persist onboarding record: %w", err)
	}
	s.rec = merged
	return nil
}

// SetStep persists the current step.
func (s *Store) SetStep(n int) error {
	if n < MinStep || n > MaxStep {
		return fmt.Errorf("%w: %d", ErrStepOutOfRange, n)
	}
	return s.Save(Patch{CurrentStep: &n})
}

// MarkCompleted stamps the completion time.
func (s *Store) MarkCompleted() error {
	at := s.now().UnixMilli()
	return s.Save(Patch{CompletedAt: &at})
}

// Clear deletes the persisted record and resets the live copy to defaults.
func (s *Store) Clear() error {
	s.rec = Defaults(s.now())
	if err := s.kv.RemoveItem(StorageKey); err != nil {
		return fmt.Errorf("failed to clear onboarding record: %w", err)
	}
	return nil
}

// InitializeFromExternal seeds the record from an existing profile for edit
// mode. The step is always forced to EditStartStep.
func (s *Store) InitializeFromExternal(p Patch) error {
	step := EditStartStep
	p.CurrentStep = &step
	return s.Save(p)
}

// BusinessPayload projects the live record into the step-1 submission.
func (s *Store) BusinessPayload() model.BusinessPayload {
	return BusinessPayload(s.rec)
}

// BrandingPayload projects the live record into the step-2 submission.
func (s *Store) BrandingPayload() model.BrandingPayload {
	return BrandingPayload(s.rec)
}

// Validate checks the schema invariants of a persisted record.
func Validate(rec model.WizardRecord) error {
	if rec.CurrentStep < MinStep || rec.CurrentStep > MaxStep {
		return fmt.Errorf("%w: current_step %d outside [%d, %d]", ErrStepOutOfRange, rec.CurrentStep, MinStep, MaxStep)
	}
	if len(rec.BrandPersonality) > maxPersonality {
		return fmt.Errorf("brand_personality has %d items (max %d)", len(rec.BrandPersonality), maxPersonality)
	}
	if len(rec.TargetInterests) > maxInterests {
		return fmt.Errorf("target_interests has %d items (max %d)", len(rec.TargetInterests), maxInterests)
	}
	if len(rec.Colors) > maxColors {
		return fmt.Errorf("colors has %d items (max %d)", len(rec.Colors), maxColors)
	}
	for i, c := range rec.Colors {
		if !hexColor.MatchString(c) {
			return fmt.Errorf("colors[%d] %q is not #RRGGBB", i, c)
		}
	}
	if rec.ExpiresAt <= 0 {
		return fmt.Errorf("expires_at missing")
	}
	return nil
}

// ValidColor reports whether c is a #RRGGBB color.
func ValidColor(c string) bool {
	return hexColor.MatchString(c)
}

func cloneRecord(rec model.WizardRecord) model.WizardRecord {
	out := rec
	out.BrandPersonality = cloneStrings(rec.BrandPersonality)
	out.TargetInterests = cloneStrings(rec.TargetInterests)
	out.VisualStyle = cloneStrings(rec.VisualStyle)
	out.Colors = cloneStrings(rec.Colors)
	if rec.CompletedAt != nil {
		at := *rec.CompletedAt
		out.CompletedAt = &at
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
