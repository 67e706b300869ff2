package formstore

import (
	"github.com/verte-zerg/onboard/internal/model"
)

// Patch is a partial update. Nil pointers and nil slices leave the field
// untouched; a non-nil empty slice clears it.
type Patch struct {
	BusinessName        *string
	BusinessPhone       *string
	BusinessWebsite     *string
	InstagramHandle     *string
	Specialization      *string
	BusinessDescription *string
	BrandPersonality    []string
	TargetAudience      *string
	TargetInterests     []string
	BusinessLocation    *string
	MainCompetitors     *string
	VoiceTone           *string
	VisualStyle         []string
	Colors              []string
	Logo                *string
	CurrentStep         *int
	CompletedAt         *int64
}

// String returns a pointer to s for building patches.
func String(s string) *string {
	return &s
}

// Per-field rune caps applied on save.
const (
	capShort  = 100
	capMedium = 200
	capLong   = 500
	capText   = 1000
	capNotes  = 2000
)

func sanitize(p *Patch) {
	p.BusinessName = truncated(p.BusinessName, capShort)
	p.BusinessPhone = truncated(p.BusinessPhone, capShort)
	p.InstagramHandle = truncated(p.InstagramHandle, capShort)
	p.VoiceTone = truncated(p.VoiceTone, capShort)
	p.BusinessWebsite = truncated(p.BusinessWebsite, capMedium)
	p.BusinessLocation = truncated(p.BusinessLocation, capMedium)
	p.Specialization = truncated(p.Specialization, capLong)
	p.BusinessDescription = truncated(p.BusinessDescription, capText)
	p.TargetAudience = truncated(p.TargetAudience, capText)
	p.MainCompetitors = truncated(p.MainCompetitors, capNotes)

	p.BrandPersonality = limit(p.BrandPersonality, maxPersonality)
	p.VisualStyle = limit(p.VisualStyle, maxPersonality)
	p.TargetInterests = limit(p.TargetInterests, maxInterests)
	if p.Colors != nil {
		valid := make([]string, 0, len(p.Colors))
		for _, c := range p.Colors {
			if ValidColor(c) {
				valid = append(valid, c)
			}
		}
		p.Colors = limit(valid, maxColors)
	}
}

// truncated returns s cut to max runes. The caller's string is never modified.
func truncated(s *string, max int) *string {
	if s == nil {
		return nil
	}
	runes := []rune(*s)
	if len(runes) <= max {
		return s
	}
	out := string(runes[:max])
	return &out
}

func limit(items []string, max int) []string {
	if items == nil {
		return nil
	}
	if len(items) > max {
		items = items[:max]
	}
	return cloneStrings(items)
}

func (p Patch) apply(rec *model.WizardRecord) {
	setString(&rec.BusinessName, p.BusinessName)
	setString(&rec.BusinessPhone, p.BusinessPhone)
	setString(&rec.BusinessWebsite, p.BusinessWebsite)
	setString(&rec.InstagramHandle, p.InstagramHandle)
	setString(&rec.Specialization, p.Specialization)
	setString(&rec.BusinessDescription, p.BusinessDescription)
	setString(&rec.TargetAudience, p.TargetAudience)
	setString(&rec.BusinessLocation, p.BusinessLocation)
	setString(&rec.MainCompetitors, p.MainCompetitors)
	setString(&rec.VoiceTone, p.VoiceTone)
	setString(&rec.Logo, p.Logo)
	if p.BrandPersonality != nil {
		rec.BrandPersonality = p.BrandPersonality
	}
	if p.TargetInterests != nil {
		rec.TargetInterests = p.TargetInterests
	}
	if p.VisualStyle != nil {
		rec.VisualStyle = p.VisualStyle
	}
	if p.Colors != nil {
		rec.Colors = p.Colors
	}
	if p.CurrentStep != nil {
		rec.CurrentStep = *p.CurrentStep
	}
	if p.CompletedAt != nil {
		at := *p.CompletedAt
		rec.CompletedAt = &at
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
