package wizard

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/onboard/internal/formstore"
	"github.com/verte-zerg/onboard/internal/model"
)

// FieldKind selects the input widget for a field.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldLongText
	FieldChoice
	FieldMulti
	FieldColors
	FieldAudience
)

// Record keys addressed by fields.
const (
	KeyBusinessName        = "business_name"
	KeyBusinessPhone       = "business_phone"
	KeyBusinessWebsite     = "business_website"
	KeyInstagramHandle     = "instagram_handle"
	KeySpecialization      = "specialization"
	KeyBusinessDescription = "business_description"
	KeyBrandPersonality    = "brand_personality"
	KeyTargetAudience      = "target_audience"
	KeyTargetInterests     = "target_interests"
	KeyBusinessLocation    = "business_location"
	KeyMainCompetitors     = "main_competitors"
	KeyVoiceTone           = "voice_tone"
	KeyVisualStyle         = "visual_style"
	KeyColors              = "colors"
	KeyLogo                = "logo"
)

// Field is one input on a screen.
type Field struct {
	Key         string
	Label       string
	Kind        FieldKind
	Options     []string
	Required    bool
	Max         int
	Placeholder string
}

// Screen describes what a step shows.
type Screen struct {
	Step   int
	Name   string
	Title  string
	Prompt string
	Fields []Field
}

// Audience choices, stored lowercase in the record.
var (
	GenderOptions = []string{"female", "male", "non-binary"}
	AgeOptions    = []string{"13-17", "18-24", "25-34", "35-44", "45-54", "55+"}
	IncomeOptions = []string{"low", "middle", "high"}
)

var screens = []Screen{
	{Step: 1, Name: "welcome", Title: "Welcome to PostNow",
		Prompt: "A few questions about your business and we will set up content that sounds like you."},
	{Step: 2, Name: "name", Title: "What is your business called?",
		Fields: []Field{{Key: KeyBusinessName, Label: "Business name", Kind: FieldText, Required: true, Max: 100, Placeholder: "Bloom Studio"}}},
	{Step: 3, Name: "specialization", Title: "What is your niche?",
		Fields: []Field{{Key: KeySpecialization, Label: "Niche", Kind: FieldText, Required: true, Max: 500, Placeholder: "Floral design for weddings"}}},
	{Step: 4, Name: "description", Title: "Describe your business",
		Fields: []Field{{Key: KeyBusinessDescription, Label: "Description", Kind: FieldLongText, Required: true, Max: 1000}}},
	{Step: 5, Name: "audience", Title: "Who is your audience?",
		Fields: []Field{{Key: KeyTargetAudience, Label: "Audience", Kind: FieldAudience}}},
	{Step: 6, Name: "interests", Title: "What are they interested in?",
		Fields: []Field{{Key: KeyTargetInterests, Label: "Interests", Kind: FieldMulti, Max: 20, Options: []string{
			"Fashion", "Beauty", "Fitness", "Food", "Travel", "Technology",
			"Wellness", "Parenting", "Finance", "Education", "Art", "Music",
		}}}},
	{Step: 7, Name: "location", Title: "Where are you based?",
		Fields: []Field{{Key: KeyBusinessLocation, Label: "Location", Kind: FieldText, Max: 200, Placeholder: "Lisbon, Portugal"}}},
	{Step: 8, Name: "competitors", Title: "Who inspires you?",
		Prompt: "Competitors or reference profiles, one per line or comma separated.",
		Fields: []Field{{Key: KeyMainCompetitors, Label: "References", Kind: FieldLongText, Max: 2000}}},
	{Step: 9, Name: "personality", Title: "How would you describe your brand?",
		Fields: []Field{{Key: KeyBrandPersonality, Label: "Personality", Kind: FieldMulti, Required: true, Max: 10, Options: []string{
			"Bold", "Friendly", "Professional", "Playful", "Elegant", "Innovative",
			"Trustworthy", "Warm", "Minimalist", "Authentic", "Energetic", "Sophisticated",
		}}}},
	{Step: 10, Name: "voice", Title: "Pick a voice tone",
		Fields: []Field{{Key: KeyVoiceTone, Label: "Voice tone", Kind: FieldChoice, Max: 100, Options: []string{
			"Casual", "Formal", "Inspirational", "Humorous", "Educational", "Empathetic",
		}}}},
	{Step: 11, Name: "visual-style", Title: "Which visual styles fit you?",
		Fields: []Field{{Key: KeyVisualStyle, Label: "Visual style", Kind: FieldMulti, Max: 10, Options: []string{
			"Minimal", "Vibrant", "Vintage", "Modern", "Organic", "Luxury", "Editorial",
		}}}},
	{Step: 12, Name: "colors", Title: "Choose your brand colors",
		Fields: []Field{{Key: KeyColors, Label: "Colors", Kind: FieldColors, Max: 10, Placeholder: "#FF6B6B"}}},
	{Step: 13, Name: "logo", Title: "Add your logo",
		Prompt: "Paste an image URL or a data URI. You can skip this.",
		Fields: []Field{{Key: KeyLogo, Label: "Logo", Kind: FieldText, Placeholder: "https://"}}},
	{Step: 14, Name: "contact", Title: "How can customers reach you?",
		Fields: []Field{
			{Key: KeyBusinessPhone, Label: "Phone", Kind: FieldText, Max: 100},
			{Key: KeyBusinessWebsite, Label: "Website", Kind: FieldText, Max: 200},
			{Key: KeyInstagramHandle, Label: "Instagram", Kind: FieldText, Max: 100, Placeholder: "@bloomstudio"},
		}},
	{Step: 15, Name: "account", Title: "Create your account",
		Prompt: "Sign up to save your profile, or log in if you already have an account."},
	{Step: 16, Name: "paywall", Title: "Choose your plan"},
	{Step: 17, Name: "checkout", Title: "Finishing up"},
}

// ScreenFor returns the screen for step.
func ScreenFor(step int) (Screen, bool) {
	for _, s := range screens {
		if s.Step == step {
			return s, true
		}
	}
	return Screen{}, false
}

// ValidationError lists the required fields a step is missing.
type ValidationError struct {
	Step    int
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %d: please fill in %s", e.Step, strings.Join(e.Missing, ", "))
}

// ValidateStep checks the required fields of step against rec.
func ValidateStep(step int, rec model.WizardRecord) error {
	screen, ok := ScreenFor(step)
	if !ok {
		return nil
	}
	var missing []string
	for _, f := range screen.Fields {
		if !f.Required {
			continue
		}
		if f.Kind == FieldMulti || f.Kind == FieldColors {
			if len(ListValue(rec, f.Key)) == 0 {
				missing = append(missing, f.Label)
			}
			continue
		}
		if strings.TrimSpace(TextValue(rec, f.Key)) == "" {
			missing = append(missing, f.Label)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Step: step, Missing: missing}
	}
	return nil
}

// TextValue reads a string field of rec by key.
func TextValue(rec model.WizardRecord, key string) string {
	if p := textField(&rec, key); p != nil {
		return *p
	}
	return ""
}

// ListValue reads a list field of rec by key.
func ListValue(rec model.WizardRecord, key string) []string {
	switch key {
	case KeyBrandPersonality:
		return rec.BrandPersonality
	case KeyTargetInterests:
		return rec.TargetInterests
	case KeyVisualStyle:
		return rec.VisualStyle
	case KeyColors:
		return rec.Colors
	}
	return nil
}

func textField(rec *model.WizardRecord, key string) *string {
	switch key {
	case KeyBusinessName:
		return &rec.BusinessName
	case KeyBusinessPhone:
		return &rec.BusinessPhone
	case KeyBusinessWebsite:
		return &rec.BusinessWebsite
	case KeyInstagramHandle:
		return &rec.InstagramHandle
	case KeySpecialization:
		return &rec.Specialization
	case KeyBusinessDescription:
		return &rec.BusinessDescription
	case KeyTargetAudience:
		return &rec.TargetAudience
	case KeyBusinessLocation:
		return &rec.BusinessLocation
	case KeyMainCompetitors:
		return &rec.MainCompetitors
	case KeyVoiceTone:
		return &rec.VoiceTone
	case KeyLogo:
		return &rec.Logo
	}
	return nil
}

// TextPatch builds a patch setting a string field.
func TextPatch(key, value string) formstore.Patch {
	var p formstore.Patch
	v := formstore.String(value)
	switch key {
	case KeyBusinessName:
		p.BusinessName = v
	case KeyBusinessPhone:
		p.BusinessPhone = v
	case KeyBusinessWebsite:
		p.BusinessWebsite = v
	case KeyInstagramHandle:
		p.InstagramHandle = v
	case KeySpecialization:
		p.Specialization = v
	case KeyBusinessDescription:
		p.BusinessDescription = v
	case KeyTargetAudience:
		p.TargetAudience = v
	case KeyBusinessLocation:
		p.BusinessLocation = v
	case KeyMainCompetitors:
		p.MainCompetitors = v
	case KeyVoiceTone:
		p.VoiceTone = v
	case KeyLogo:
		p.Logo = v
	}
	return p
}

// ListPatch builds a patch replacing a list field.
func ListPatch(key string, values []string) formstore.Patch {
	if values == nil {
		values = []string{}
	}
	var p formstore.Patch
	switch key {
	case KeyBrandPersonality:
		p.BrandPersonality = values
	case KeyTargetInterests:
		p.TargetInterests = values
	case KeyVisualStyle:
		p.VisualStyle = values
	case KeyColors:
		p.Colors = values
	}
	return p
}
