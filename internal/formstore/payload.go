package formstore

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/verte-zerg/onboard/internal/model"
)

// DefaultColors fill the color slots a record does not provide.
var DefaultColors = [5]string{"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFBE0B"}

const listSeparator = ", "

// BusinessPayload converts a record into the step-1 submission body.
func BusinessPayload(rec model.WizardRecord) model.BusinessPayload {
	return model.BusinessPayload{
		BusinessName:        rec.BusinessName,
		BusinessPhone:       rec.BusinessPhone,
		BusinessWebsite:     rec.BusinessWebsite,
		InstagramHandle:     rec.InstagramHandle,
		Specialization:      rec.Specialization,
		BusinessDescription: rec.BusinessDescription,
		TargetAudience:      AudienceSentence(rec.TargetAudience),
		TargetInterests:     strings.Join(rec.TargetInterests, listSeparator),
		BusinessLocation:    rec.BusinessLocation,
		MainCompetitors:     rec.MainCompetitors,
	}
}

// BrandingPayload converts a record into the step-2 submission body.
func BrandingPayload(rec model.WizardRecord) model.BrandingPayload {
	var slots [5]string
	for i := range slots {
		slots[i] = DefaultColors[i]
		if i < len(rec.Colors) && rec.Colors[i] != "" {
			slots[i] = rec.Colors[i]
		}
	}
	return model.BrandingPayload{
		BrandPersonality: strings.Join(rec.BrandPersonality, listSeparator),
		VoiceTone:        rec.VoiceTone,
		VisualStyle:      strings.Join(rec.VisualStyle, listSeparator),
		Logo:             rec.Logo,
		Color1:           slots[0],
		Color2:           slots[1],
		Color3:           slots[2],
		Color4:           slots[3],
		Color5:           slots[4],
	}
}

// ProfilePatch reverses the payload projections so an existing backend
// profile can seed edit mode.
func ProfilePatch(p model.Profile) Patch {
	var colors []string
	for _, c := range []string{p.Color1, p.Color2, p.Color3, p.Color4, p.Color5} {
		if c = strings.TrimSpace(c); c != "" {
			colors = append(colors, c)
		}
	}
	if colors == nil {
		colors = []string{}
	}
	return Patch{
		BusinessName:        String(p.BusinessName),
		BusinessPhone:       String(p.BusinessPhone),
		BusinessWebsite:     String(p.BusinessWebsite),
		InstagramHandle:     String(p.InstagramHandle),
		Specialization:      String(p.Specialization),
		BusinessDescription: String(p.BusinessDescription),
		TargetAudience:      String(p.TargetAudience),
		TargetInterests:     SplitList(p.TargetInterests),
		BusinessLocation:    String(p.BusinessLocation),
		MainCompetitors:     String(p.MainCompetitors),
		BrandPersonality:    SplitList(p.BrandPersonality),
		VoiceTone:           String(p.VoiceTone),
		VisualStyle:         SplitList(p.VisualStyle),
		Colors:              colors,
		Logo:                String(p.Logo),
	}
}

// SplitList splits a comma-joined list, dropping blanks. It never returns nil.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseAudience decodes the serialized audience object. Only a JSON object
// carrying at least one audience key counts; other text, JSON or not, is free text.
func ParseAudience(raw string) (model.Audience, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return model.Audience{}, false
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &keys); err != nil {
		return model.Audience{}, false
	}
	known := false
	for _, k := range []string{"gender", "age_range", "income_level"} {
		if _, ok := keys[k]; ok {
			known = true
		}
	}
	if !known {
		return model.Audience{}, false
	}
	var a model.Audience
	if err := json.Unmarshal([]byte(trimmed), &a); err != nil {
		return model.Audience{}, false
	}
	return a, true
}

// EncodeAudience serializes an audience object for storage in the record.
func EncodeAudience(a model.Audience) string {
	if a.Gender == nil {
		a.Gender = []string{}
	}
	if a.AgeRange == nil {
		a.AgeRange = []string{}
	}
	if a.IncomeLevel == nil {
		a.IncomeLevel = []string{}
	}
	data, err := json.Marshal(a)
	if err != nil {
		return ""
	}
	return string(data)
}

// AudienceSentence renders the serialized audience as readable text, e.g.
// "Female and Male aged 18-24 and 25-34, middle income". Text that is not an
// audience object is returned unchanged.
func AudienceSentence(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	a, ok := ParseAudience(raw)
	if !ok {
		return raw
	}
	if len(a.Gender) == 0 && len(a.AgeRange) == 0 && len(a.IncomeLevel) == 0 {
		return ""
	}
	genders := make([]string, len(a.Gender))
	for i, g := range a.Gender {
		genders[i] = capitalize(g)
	}
	subject := joinHuman(genders)
	if subject == "" {
		subject = "People"
	}
	if len(a.AgeRange) > 0 {
		subject += " aged " + joinHuman(a.AgeRange)
	}
	if len(a.IncomeLevel) > 0 {
		subject += ", " + joinHuman(a.IncomeLevel) + " income"
	}
	return subject
}

func joinHuman(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
