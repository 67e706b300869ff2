package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/onboard/internal/formstore"
	"github.com/verte-zerg/onboard/internal/model"
	"github.com/verte-zerg/onboard/internal/wizard"
)

// editor is one field widget on a step screen.
type editor interface {
	Focus() tea.Cmd
	Blur()
	// Update handles a key and reports whether it consumed it.
	Update(msg tea.KeyMsg) (tea.Cmd, bool)
	View(width int) string
	Patch() formstore.Patch
}

func newEditor(f wizard.Field, rec model.WizardRecord) editor {
	switch f.Kind {
	case wizard.FieldLongText:
		return newAreaEditor(f, wizard.TextValue(rec, f.Key))
	case wizard.FieldChoice:
		var selected []string
		if v := wizard.TextValue(rec, f.Key); v != "" {
			selected = []string{v}
		}
		return newListEditor(f, selected, false)
	case wizard.FieldMulti:
		return newListEditor(f, wizard.ListValue(rec, f.Key), true)
	case wizard.FieldColors:
		return newColorEditor(f, rec.Colors)
	case wizard.FieldAudience:
		return newAudienceEditor(rec.TargetAudience)
	default:
		return newTextEditor(f, wizard.TextValue(rec, f.Key))
	}
}

func fieldLabel(f wizard.Field) string {
	if f.Required {
		return f.Label + " *"
	}
	return f.Label
}

type textEditor struct {
	field wizard.Field
	input textinput.Model
}

func newTextEditor(f wizard.Field, value string) *textEditor {
	in := textinput.New()
	in.Prompt = "› "
	in.Placeholder = f.Placeholder
	if f.Max > 0 {
		in.CharLimit = f.Max
	}
	in.SetValue(value)
	return &textEditor{field: f, input: in}
}

func (e *textEditor) Focus() tea.Cmd { return e.input.Focus() }
func (e *textEditor) Blur()          { e.input.Blur() }

func (e *textEditor) Update(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.Type == tea.KeyEnter {
		return nil, false
	}
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return cmd, true
}

func (e *textEditor) View(width int) string {
	e.input.Width = width - 4
	return labelStyle.Render(fieldLabel(e.field)) + "\n" + e.input.View()
}

func (e *textEditor) Patch() formstore.Patch {
	return wizard.TextPatch(e.field.Key, e.input.Value())
}

var newlineKey = key.NewBinding(key.WithKeys("ctrl+j", "alt+enter"), key.WithHelp("ctrl+j", "new line"))

type areaEditor struct {
	field wizard.Field
	area  textarea.Model
}

func newAreaEditor(f wizard.Field, value string) *areaEditor {
	ta := textarea.New()
	ta.Placeholder = f.Placeholder
	ta.ShowLineNumbers = false
	ta.SetHeight(5)
	if f.Max > 0 {
		ta.CharLimit = f.Max
	}
	ta.KeyMap.InsertNewline = newlineKey
	ta.SetValue(value)
	return &areaEditor{field: f, area: ta}
}

func (e *areaEditor) Focus() tea.Cmd { return e.area.Focus() }
func (e *areaEditor) Blur()          { e.area.Blur() }

func (e *areaEditor) Update(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.Type == tea.KeyEnter {
		return nil, false
	}
	var cmd tea.Cmd
	e.area, cmd = e.area.Update(msg)
	return cmd, true
}

func (e *areaEditor) View(width int) string {
	e.area.SetWidth(width)
	counter := ""
	if e.field.Max > 0 {
		counter = mutedStyle.Render(fmt.Sprintf("  %d/%d", e.area.Length(), e.field.Max))
	}
	return labelStyle.Render(fieldLabel(e.field)) + counter + "\n" + e.area.View()
}

func (e *areaEditor) Patch() formstore.Patch {
	return wizard.TextPatch(e.field.Key, e.area.Value())
}

// listEditor picks one or many values from options, plus custom entries
// typed into the input row.
type listEditor struct {
	field    wizard.Field
	options  []string
	selected []string
	multi    bool
	cursor   int
	input    textinput.Model
	focused  bool
	hint     string
	accept   func(string) (string, bool)
	swatches bool
	noInput  bool
}

func newListEditor(f wizard.Field, selected []string, multi bool) *listEditor {
	in := textinput.New()
	in.Prompt = "+ "
	in.Placeholder = "add your own"
	in.CharLimit = 100
	e := &listEditor{
		field:    f,
		options:  append([]string(nil), f.Options...),
		selected: append([]string(nil), selected...),
		multi:    multi,
		input:    in,
		accept: func(s string) (string, bool) {
			s = strings.TrimSpace(s)
			return s, s != ""
		},
	}
	for _, s := range e.selected {
		if !e.hasOption(s) {
			e.options = append(e.options, s)
		}
	}
	return e
}

func newColorEditor(f wizard.Field, colors []string) *listEditor {
	e := newListEditor(f, colors, true)
	for _, c := range formstore.DefaultColors {
		if !e.hasOption(c) {
			e.options = append(e.options, c)
		}
	}
	e.swatches = true
	e.input.Placeholder = f.Placeholder
	e.input.CharLimit = 7
	e.accept = func(s string) (string, bool) {
		s = strings.ToUpper(strings.TrimSpace(s))
		return s, formstore.ValidColor(s)
	}
	return e
}

func (e *listEditor) hasOption(s string) bool {
	for _, o := range e.options {
		if strings.EqualFold(o, s) {
			return true
		}
	}
	return false
}

func (e *listEditor) isSelected(s string) bool {
	for _, v := range e.selected {
		if v == s {
			return true
		}
	}
	return false
}

func (e *listEditor) onInput() bool {
	return e.cursor == len(e.options)
}

func (e *listEditor) Focus() tea.Cmd {
	e.focused = true
	if e.onInput() {
		return e.input.Focus()
	}
	return nil
}

func (e *listEditor) Blur() {
	e.focused = false
	e.input.Blur()
}

func (e *listEditor) move(delta int) tea.Cmd {
	last := len(e.options)
	if e.noInput {
		last--
	}
	e.cursor += delta
	if e.cursor > last {
		e.cursor = last
	}
	if e.cursor < 0 {
		e.cursor = 0
	}
	if e.onInput() {
		return e.input.Focus()
	}
	e.input.Blur()
	return nil
}

func (e *listEditor) toggle(v string) {
	e.hint = ""
	if e.isSelected(v) {
		kept := e.selected[:0]
		for _, s := range e.selected {
			if s != v {
				kept = append(kept, s)
			}
		}
		e.selected = kept
		return
	}
	if !e.multi {
		e.selected = []string{v}
		return
	}
	if e.field.Max > 0 && len(e.selected) >= e.field.Max {
		e.hint = fmt.Sprintf("You can pick up to %d.", e.field.Max)
		return
	}
	e.selected = append(e.selected, v)
}

func (e *listEditor) Update(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "up":
		return e.move(-1), true
	case "down":
		return e.move(1), true
	}
	if e.onInput() {
		if msg.Type == tea.KeyEnter {
			raw := e.input.Value()
			if strings.TrimSpace(raw) == "" {
				return nil, false
			}
			v, ok := e.accept(raw)
			if !ok {
				e.hint = fmt.Sprintf("%q is not a valid value.", strings.TrimSpace(raw))
				return nil, true
			}
			if !e.hasOption(v) {
				e.options = append(e.options, v)
				e.cursor = len(e.options)
			}
			if !e.isSelected(v) {
				e.toggle(v)
			}
			e.input.SetValue("")
			return nil, true
		}
		var cmd tea.Cmd
		e.input, cmd = e.input.Update(msg)
		return cmd, true
	}
	switch msg.String() {
	case " ", "x":
		e.toggle(e.options[e.cursor])
		return nil, true
	}
	return nil, false
}

func (e *listEditor) View(width int) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(fieldLabel(e.field)))
	if e.multi && e.field.Max > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d/%d", len(e.selected), e.field.Max)))
	}
	b.WriteString("\n")
	for i, o := range e.options {
		mark := "( )"
		if e.multi {
			mark = "[ ]"
		}
		if e.isSelected(o) {
			mark = "(•)"
			if e.multi {
				mark = "[x]"
			}
		}
		line := mark + " " + o
		if e.swatches {
			line += " " + lipgloss.NewStyle().Background(lipgloss.Color(o)).Render("    ")
		}
		if e.focused && i == e.cursor {
			line = cursorStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	e.input.Width = width - 6
	prefix := "  "
	if e.focused && e.onInput() {
		prefix = cursorStyle.Render("> ")
	}
	b.WriteString(prefix + e.input.View())
	if e.hint != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(e.hint))
	}
	return b.String()
}

func (e *listEditor) values() []string {
	return append([]string{}, e.selected...)
}

func (e *listEditor) Patch() formstore.Patch {
	if e.field.Kind == wizard.FieldChoice {
		v := ""
		if len(e.selected) > 0 {
			v = e.selected[0]
		}
		return wizard.TextPatch(e.field.Key, v)
	}
	return wizard.ListPatch(e.field.Key, e.values())
}

// audienceEditor edits the three audience groups; left and right switch
// between them.
type audienceEditor struct {
	groups  []*listEditor
	current int
	// legacy holds free text that predates the structured audience.
	legacy string
}

func newAudienceEditor(raw string) *audienceEditor {
	a, ok := formstore.ParseAudience(raw)
	legacy := ""
	if !ok {
		legacy = raw
	}
	group := func(label string, options, selected []string) *listEditor {
		e := newListEditor(wizard.Field{Label: label, Kind: wizard.FieldMulti, Options: options}, selected, true)
		e.options = append([]string(nil), options...)
		e.selected = filterKnown(selected, options)
		e.noInput = true
		return e
	}
	return &audienceEditor{legacy: legacy, groups: []*listEditor{
		group("Gender", wizard.GenderOptions, a.Gender),
		group("Age", wizard.AgeOptions, a.AgeRange),
		group("Income", wizard.IncomeOptions, a.IncomeLevel),
	}}
}

func filterKnown(values, options []string) []string {
	var out []string
	for _, v := range values {
		for _, o := range options {
			if v == o {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

func (e *audienceEditor) Focus() tea.Cmd {
	return e.groups[e.current].Focus()
}

func (e *audienceEditor) Blur() {
	for _, g := range e.groups {
		g.Blur()
	}
}

func (e *audienceEditor) Update(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "left", "right":
		e.groups[e.current].Blur()
		if msg.String() == "left" {
			e.current = (e.current + len(e.groups) - 1) % len(e.groups)
		} else {
			e.current = (e.current + 1) % len(e.groups)
		}
		return e.groups[e.current].Focus(), true
	}
	return e.groups[e.current].Update(msg)
}

func (e *audienceEditor) View(width int) string {
	colWidth := width / len(e.groups)
	cols := make([]string, 0, len(e.groups))
	for _, g := range e.groups {
		cols = append(cols, lipgloss.NewStyle().Width(colWidth).Render(g.optionsView()))
	}
	out := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	if e.legacy != "" && e.empty() {
		return out + "\n\n" + mutedStyle.Render(e.legacy)
	}
	if s := formstore.AudienceSentence(e.encode()); s != "" {
		out += "\n\n" + mutedStyle.Render(s)
	}
	return out
}

func (e *audienceEditor) encode() string {
	return formstore.EncodeAudience(model.Audience{
		Gender:      e.groups[0].values(),
		AgeRange:    e.groups[1].values(),
		IncomeLevel: e.groups[2].values(),
	})
}

func (e *audienceEditor) empty() bool {
	for _, g := range e.groups {
		if len(g.selected) > 0 {
			return false
		}
	}
	return true
}

func (e *audienceEditor) Patch() formstore.Patch {
	if e.legacy != "" && e.empty() {
		return formstore.Patch{}
	}
	return wizard.TextPatch(wizard.KeyTargetAudience, e.encode())
}

// optionsView renders the group without the custom input row.
func (e *listEditor) optionsView() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(e.field.Label))
	for i, o := range e.options {
		mark := "[ ]"
		if e.isSelected(o) {
			mark = "[x]"
		}
		prefix := "  "
		if e.focused && i == e.cursor {
			prefix = cursorStyle.Render("> ")
		}
		b.WriteString("\n" + prefix + mark + " " + o)
	}
	return b.String()
}
