// Package phase defines the wizard phases and the interstitial shown when one
// of them is finished.
package phase

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/onboard/internal/formstore"
	"github.com/verte-zerg/onboard/internal/model"
)

// ID identifies a phase.
type ID string

const (
	Business ID = "business"
	Audience ID = "audience"
	Brand    ID = "brand"
	Account  ID = "account"
)

// Definition is the static configuration of one phase.
type Definition struct {
	ID        ID
	Name      string
	Steps     []int
	summarize func(model.WizardRecord) Summary
}

// Summary is what the interstitial shows for a completed phase.
type Summary struct {
	Title   string
	Details []string
	Colors  []string
}

const (
	maxDetails    = 3
	maxDetailRune = 80
)

// Definitions partition the wizard steps in order.
var Definitions = []Definition{
	{ID: Business, Name: "Your business", Steps: []int{1, 2, 3, 4}, summarize: summarizeBusiness},
	{ID: Audience, Name: "Your audience", Steps: []int{5, 6, 7, 8}, summarize: summarizeAudience},
	{ID: Brand, Name: "Your brand", Steps: []int{9, 10, 11, 12, 13}, summarize: summarizeBrand},
	{ID: Account, Name: "Your account", Steps: []int{14, 15, 16, 17}},
}

// EndSteps maps the last step of every phase but the final one to its phase.
var EndSteps = map[int]ID{
	4:  Business,
	8:  Audience,
	13: Brand,
}

// IsEnd reports whether step closes a phase that has an interstitial.
func IsEnd(step int) (ID, bool) {
	id, ok := EndSteps[step]
	return id, ok
}

// ForStep returns the phase containing step.
func ForStep(step int) (Definition, bool) {
	for _, def := range Definitions {
		for _, s := range def.Steps {
			if s == step {
				return def, true
			}
		}
	}
	return Definition{}, false
}

// Lookup returns the definition for id.
func Lookup(id ID) (Definition, bool) {
	for _, def := range Definitions {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}

// LastStep returns the highest step covered by any phase.
func LastStep() int {
	last := Definitions[len(Definitions)-1]
	return last.Steps[len(last.Steps)-1]
}

// ValidateDefinitions checks that defs cover 1..N contiguously and in order,
// and that ends names exactly the last step of every phase but the final one.
func ValidateDefinitions(defs []Definition, ends map[int]ID) error {
	if len(defs) == 0 {
		return fmt.Errorf("no phases defined")
	}
	next := 1
	want := map[int]ID{}
	for i, def := range defs {
		if len(def.Steps) == 0 {
			return fmt.Errorf("phase %s has no steps", def.ID)
		}
		for _, s := range def.Steps {
			if s != next {
				return fmt.Errorf("phase %s: expected step %d, got %d", def.ID, next, s)
			}
			next++
		}
		if i < len(defs)-1 {
			want[def.Steps[len(def.Steps)-1]] = def.ID
		}
	}
	if len(want) != len(ends) {
		return fmt.Errorf("expected %d phase end steps, got %d", len(want), len(ends))
	}
	steps := make([]int, 0, len(want))
	for s := range want {
		steps = append(steps, s)
	}
	sort.Ints(steps)
	for _, s := range steps {
		if ends[s] != want[s] {
			return fmt.Errorf("step %d should end phase %s, got %q", s, want[s], ends[s])
		}
	}
	return nil
}

// Summarize projects rec into the interstitial for phase id.
func Summarize(id ID, rec model.WizardRecord) Summary {
	def, ok := Lookup(id)
	if !ok || def.summarize == nil {
		return Summary{Title: "Nice work!"}
	}
	s := def.summarize(rec)
	if len(s.Details) > maxDetails {
		s.Details = s.Details[:maxDetails]
	}
	return s
}

func summarizeBusiness(rec model.WizardRecord) Summary {
	title := "Your business is taking shape"
	if rec.BusinessName != "" {
		title = fmt.Sprintf("%s is taking shape", rec.BusinessName)
	}
	return Summary{
		Title: title,
		Details: details(
			labeled("Niche", rec.Specialization),
			labeled("About", rec.BusinessDescription),
		),
	}
}

func summarizeAudience(rec model.WizardRecord) Summary {
	return Summary{
		Title: "We know who you're talking to",
		Details: details(
			labeled("Audience", formstore.AudienceSentence(rec.TargetAudience)),
			labeled("Interests", strings.Join(rec.TargetInterests, ", ")),
			labeled("Location", rec.BusinessLocation),
		),
	}
}

func summarizeBrand(rec model.WizardRecord) Summary {
	return Summary{
		Title: "Your brand identity is set",
		Details: details(
			labeled("Personality", strings.Join(rec.BrandPersonality, ", ")),
			labeled("Voice", rec.VoiceTone),
			labeled("Style", strings.Join(rec.VisualStyle, ", ")),
		),
		Colors: append([]string(nil), rec.Colors...),
	}
}

func labeled(label, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return label + ": " + ellipsize(value, maxDetailRune)
}

func details(lines ...string) []string {
	out := []string{}
	for _, line := range lines {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func ellipsize(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
