// Package tui provides the Bubble Tea onboarding wizard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/onboard/internal/formstore"
	"github.com/verte-zerg/onboard/internal/model"
	"github.com/verte-zerg/onboard/internal/phase"
	"github.com/verte-zerg/onboard/internal/submit"
	"github.com/verte-zerg/onboard/internal/wizard"
)

const (
	toastDuration  = 4 * time.Second
	requestTimeout = 30 * time.Second
	minPassword    = 8
)

// Accounts is the part of the backend the account and paywall screens use.
type Accounts interface {
	Register(ctx context.Context, creds model.Credentials) (string, error)
	Login(ctx context.Context, creds model.Credentials) (string, error)
	Plans(ctx context.Context) ([]model.Plan, error)
}

// Submitter runs checkout and profile updates.
type Submitter interface {
	Checkout(ctx context.Context, choice submit.PlanChoice) (string, error)
	Update(ctx context.Context) error
}

// Options wires the model.
type Options struct {
	Form            *formstore.Store
	Sequencer       *wizard.Sequencer
	Accounts        Accounts
	Submit          Submitter
	Log             *zap.Logger
	Status          wizard.AuthStatus
	Reset           bool
	TransitionDelay time.Duration
	// OnToken receives the access token after signup or login.
	OnToken func(string)
}

// Result is how the wizard ended.
type Result struct {
	State       wizard.State
	CheckoutURL string
}

type (
	transitionTickMsg struct{ id int }
	toastClearMsg     struct{ id int }
	authResultMsg     struct {
		token string
		err   error
	}
	plansMsg struct {
		plans []model.Plan
		err   error
	}
	checkoutMsg struct {
		url string
		err error
	}
	updateMsg struct{ err error }
)

// Model implements the Bubble Tea wizard UI.
type Model struct {
	opts Options
	form *formstore.Store
	seq  *wizard.Sequencer
	log  *zap.Logger

	width  int
	height int

	state   wizard.State
	editors []editor
	focus   int

	transition  *phase.Transition
	tickSeq     int
	pendingFire func()
	pendingCmd  tea.Cmd

	email    textinput.Model
	password textinput.Model
	authBusy bool

	plans       []model.Plan
	plansErr    error
	planCursor  int
	spinner     spinner.Model
	busy        bool
	checkoutURL string

	toast   string
	toastID int

	initCmd tea.Cmd
}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	toastStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF4D4F")).Padding(0, 1)
)

// NewModel mounts the sequencer and builds the first screen.
func NewModel(opts Options) *Model {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	m := &Model{
		opts: opts,
		form: opts.Form,
		seq:  opts.Sequencer,
		log:  opts.Log,
	}
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(labelStyle))

	st := m.seq.Mount(opts.Status, opts.Reset)
	if st.Kind == wizard.KindCheckout {
		// A checkout that was interrupted cannot resume; offer the plans again.
		st = m.seq.Abort()
	}
	m.initCmd = m.enter(st)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmd := m.initCmd
	m.initCmd = nil
	return cmd
}

// Result reports the final state and checkout URL.
func (m *Model) Result() Result {
	return Result{State: m.state, CheckoutURL: m.checkoutURL}
}

// State returns the current wizard state.
func (m *Model) State() wizard.State {
	return m.state
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			if err := m.commit(); err != nil {
				m.log.Warn("failed to save answers on quit", zap.Error(err))
			}
			m.stopTransition()
			return m, tea.Quit
		}
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		if m.state.Kind == wizard.KindPhaseTransition && msg.Action == tea.MouseActionPress && m.transition != nil {
			m.transition.Advance()
			return m, m.sync()
		}
		return m, nil
	case transitionTickMsg:
		if msg.id == m.tickSeq && m.pendingFire != nil {
			fire := m.pendingFire
			m.pendingFire = nil
			fire()
			return m, m.sync()
		}
		return m, nil
	case toastClearMsg:
		if msg.id == m.toastID {
			m.toast = ""
		}
		return m, nil
	case authResultMsg:
		return m, m.handleAuthResult(msg)
	case plansMsg:
		m.plans = msg.plans
		m.plansErr = msg.err
		if msg.err != nil {
			m.log.Warn("failed to load plans", zap.Error(msg.err))
		}
		return m, nil
	case checkoutMsg:
		return m, m.handleCheckout(msg)
	case updateMsg:
		return m, m.handleUpdate(msg)
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.state.Kind {
	case wizard.KindStep:
		return m.handleStepKey(msg)
	case wizard.KindPhaseTransition:
		if m.transition == nil {
			return nil
		}
		if msg.String() == "esc" {
			m.stopTransition()
			return m.enter(m.seq.Back())
		}
		if m.transition.HandleKey(msg.String()) {
			return m.sync()
		}
		return nil
	case wizard.KindAuth:
		return m.handleAuthKey(msg)
	case wizard.KindPaywall:
		return m.handlePaywallKey(msg)
	case wizard.KindFallback:
		switch msg.String() {
		case "enter":
			return m.enter(m.seq.GoToStart())
		case "q", "esc":
			return tea.Quit
		}
		return nil
	default:
		return nil
	}
}

func (m *Model) handleStepKey(msg tea.KeyMsg) tea.Cmd {
	if m.state.Step == wizard.AccountStep && m.seq.Mode() == wizard.ModeCreate && !m.seq.Authenticated() {
		switch msg.String() {
		case "s":
			return m.enter(m.seq.ChooseAuth(wizard.AuthSignup))
		case "l":
			return m.enter(m.seq.ChooseAuth(wizard.AuthLogin))
		}
	}
	switch msg.String() {
	case "tab":
		return m.cycleFocus(1)
	case "shift+tab":
		return m.cycleFocus(-1)
	case "esc":
		if err := m.commit(); err != nil {
			return m.showToast(err)
		}
		return m.enter(m.seq.Back())
	}
	if len(m.editors) > 0 {
		cmd, consumed := m.editors[m.focus].Update(msg)
		if consumed {
			return cmd
		}
	}
	if msg.Type != tea.KeyEnter {
		return nil
	}
	if err := m.commit(); err != nil {
		return m.showToast(err)
	}
	st, err := m.seq.Next()
	if err != nil {
		return m.showToast(err)
	}
	return m.enter(st)
}

func (m *Model) cycleFocus(delta int) tea.Cmd {
	if len(m.editors) < 2 {
		return nil
	}
	m.editors[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.editors)) % len(m.editors)
	return m.editors[m.focus].Focus()
}

// commit saves every editor on the current screen.
func (m *Model) commit() error {
	var errs []error
	for _, e := range m.editors {
		if err := m.form.Save(e.Patch()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Model) handleAuthKey(msg tea.KeyMsg) tea.Cmd {
	if m.authBusy {
		return nil
	}
	switch msg.String() {
	case "esc":
		return m.enter(m.seq.CancelAuth())
	case "ctrl+t":
		other := wizard.AuthLogin
		if m.state.Auth == wizard.AuthLogin {
			other = wizard.AuthSignup
		}
		m.state = m.seq.ChooseAuth(other)
		return nil
	case "tab", "shift+tab", "up", "down":
		if m.email.Focused() {
			m.email.Blur()
			return m.password.Focus()
		}
		m.password.Blur()
		return m.email.Focus()
	case "enter":
		if m.email.Focused() {
			m.email.Blur()
			return m.password.Focus()
		}
		return m.submitAuth()
	}
	var cmd tea.Cmd
	if m.email.Focused() {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return cmd
}

func (m *Model) submitAuth() tea.Cmd {
	creds := model.Credentials{
		Email:    strings.TrimSpace(m.email.Value()),
		Password: m.password.Value(),
	}
	if !strings.Contains(creds.Email, "@") {
		return m.showMessage("Please enter a valid email address.")
	}
	if m.state.Auth == wizard.AuthSignup && len([]rune(creds.Password)) < minPassword {
		return m.showMessage(fmt.Sprintf("Passwords need at least %d characters.", minPassword))
	}
	m.authBusy = true
	mode := m.state.Auth
	accounts := m.opts.Accounts
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var token string
		var err error
		if mode == wizard.AuthLogin {
			token, err = accounts.Login(ctx, creds)
		} else {
			token, err = accounts.Register(ctx, creds)
		}
		return authResultMsg{token: token, err: err}
	}
}

func (m *Model) handleAuthResult(msg authResultMsg) tea.Cmd {
	m.authBusy = false
	if m.state.Kind != wizard.KindAuth {
		return nil
	}
	if msg.err != nil {
		m.log.Warn("authentication failed", zap.String("mode", string(m.state.Auth)), zap.Error(msg.err))
		if m.state.Auth == wizard.AuthLogin {
			return m.showMessage("Email or password is incorrect.")
		}
		return m.showMessage("We could not create your account. Try logging in instead.")
	}
	if m.opts.OnToken != nil {
		m.opts.OnToken(msg.token)
	}
	return m.enter(m.seq.AuthSucceeded())
}

func (m *Model) handlePaywallKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.planCursor > 0 {
			m.planCursor--
		}
	case "down", "j":
		if m.planCursor < len(submit.Choices)-1 {
			m.planCursor++
		}
	case "r":
		if m.plansErr != nil {
			return m.loadPlans()
		}
	case "esc":
		return m.enter(m.seq.Back())
	case "enter":
		st, err := m.seq.Next()
		if err != nil {
			return m.showToast(err)
		}
		return m.enter(st)
	}
	return nil
}

func (m *Model) loadPlans() tea.Cmd {
	m.plansErr = nil
	accounts := m.opts.Accounts
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		plans, err := accounts.Plans(ctx)
		return plansMsg{plans: plans, err: err}
	}
}

func (m *Model) startCheckout() tea.Cmd {
	m.busy = true
	choice := submit.Choices[m.planCursor]
	sub := m.opts.Submit
	run := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		url, err := sub.Checkout(ctx, choice)
		return checkoutMsg{url: url, err: err}
	}
	return tea.Batch(m.spinner.Tick, run)
}

func (m *Model) handleCheckout(msg checkoutMsg) tea.Cmd {
	m.busy = false
	if m.state.Kind != wizard.KindCheckout {
		return nil
	}
	if msg.err != nil {
		m.log.Error("checkout failed", zap.Error(msg.err))
		toast := m.showMessage(submit.Message(msg.err))
		return tea.Batch(toast, m.enter(m.seq.Abort()))
	}
	m.checkoutURL = msg.url
	m.state = m.seq.Finish()
	return tea.Quit
}

func (m *Model) startUpdate() tea.Cmd {
	m.busy = true
	sub := m.opts.Submit
	run := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return updateMsg{err: sub.Update(ctx)}
	}
	return tea.Batch(m.spinner.Tick, run)
}

func (m *Model) handleUpdate(msg updateMsg) tea.Cmd {
	m.busy = false
	if msg.err != nil {
		m.log.Error("profile update failed", zap.Error(msg.err))
		toast := m.showMessage(submit.Message(msg.err))
		return tea.Batch(toast, m.enter(m.seq.Abort()))
	}
	return tea.Quit
}

// sync picks up a state change made by a callback, such as the phase
// overlay advancing.
func (m *Model) sync() tea.Cmd {
	if st := m.seq.State(); st != m.state {
		return m.enter(st)
	}
	return nil
}

// enter switches the screen to st and returns the commands it needs.
func (m *Model) enter(st wizard.State) tea.Cmd {
	prev := m.state
	m.state = st
	if st.Kind != wizard.KindPhaseTransition {
		m.stopTransition()
	}
	m.editors = nil
	m.focus = 0

	switch st.Kind {
	case wizard.KindStep:
		return m.buildEditors()
	case wizard.KindPhaseTransition:
		return m.startTransition(st)
	case wizard.KindAuth:
		return m.buildAuth()
	case wizard.KindPaywall:
		if m.plans == nil {
			return m.loadPlans()
		}
		return nil
	case wizard.KindCheckout:
		if prev.Kind == wizard.KindPaywall {
			return m.startCheckout()
		}
		return nil
	case wizard.KindDone:
		if m.seq.Mode() == wizard.ModeEdit && prev.Kind == wizard.KindStep {
			return m.startUpdate()
		}
		return tea.Quit
	case wizard.KindCancelled:
		return tea.Quit
	default:
		return nil
	}
}

func (m *Model) buildEditors() tea.Cmd {
	screen, ok := wizard.ScreenFor(m.state.Step)
	if !ok {
		return nil
	}
	rec := m.form.Record()
	for _, f := range screen.Fields {
		m.editors = append(m.editors, newEditor(f, rec))
	}
	if len(m.editors) == 0 {
		return nil
	}
	return m.editors[0].Focus()
}

func (m *Model) buildAuth() tea.Cmd {
	m.email = textinput.New()
	m.email.Prompt = "Email    › "
	m.email.Placeholder = "you@example.com"
	m.email.CharLimit = 254
	m.password = textinput.New()
	m.password.Prompt = "Password › "
	m.password.EchoMode = textinput.EchoPassword
	m.password.EchoCharacter = '•'
	m.password.CharLimit = 128
	return m.email.Focus()
}

func (m *Model) startTransition(st wizard.State) tea.Cmd {
	m.stopTransition()
	m.pendingCmd = nil
	sched := func(d time.Duration, f func()) func() bool {
		m.tickSeq++
		id := m.tickSeq
		m.pendingFire = f
		m.pendingCmd = tea.Tick(d, func(time.Time) tea.Msg {
			return transitionTickMsg{id: id}
		})
		return func() bool {
			if m.tickSeq != id || m.pendingFire == nil {
				return false
			}
			m.pendingFire = nil
			return true
		}
	}
	opts := []phase.TransitionOption{phase.WithScheduler(sched)}
	if m.opts.TransitionDelay > 0 {
		opts = append(opts, phase.WithDelay(m.opts.TransitionDelay))
	}
	m.transition = phase.NewTransition(st.Phase, m.form.Record(), func() {
		m.seq.CompleteTransition()
	}, opts...)
	m.transition.Start()
	cmd := m.pendingCmd
	m.pendingCmd = nil
	return cmd
}

func (m *Model) stopTransition() {
	if m.transition != nil {
		m.transition.Stop()
		m.transition = nil
	}
	m.pendingFire = nil
}

func (m *Model) showToast(err error) tea.Cmd {
	var verr *wizard.ValidationError
	switch {
	case errors.As(err, &verr):
		return m.showMessage("Please fill in " + strings.Join(verr.Missing, ", ") + ".")
	case errors.Is(err, formstore.ErrRecordTooLarge):
		return m.showMessage("Your answers are too long to save. Please shorten them.")
	default:
		m.log.Warn("wizard error", zap.Error(err))
		return m.showMessage("Something went wrong. Please try again.")
	}
}

func (m *Model) showMessage(text string) tea.Cmd {
	m.toastID++
	id := m.toastID
	m.toast = text
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastClearMsg{id: id}
	})
}

// View implements tea.Model.
func (m *Model) View() string {
	contentWidth := 60
	if m.width > 0 {
		contentWidth = int(float64(m.width) * 0.70)
	}
	if contentWidth < 1 {
		contentWidth = 1
	}
	body := m.renderBody(contentWidth)
	if m.toast != "" {
		body += "\n\n" + toastStyle.Render(m.toast)
	}
	content := lipgloss.NewStyle().Width(contentWidth).Render(body)
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	placed := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return placed + "\n" + footerLine
}

func (m *Model) renderBody(width int) string {
	switch m.state.Kind {
	case wizard.KindStep:
		return m.renderStep(width)
	case wizard.KindPhaseTransition:
		return m.renderTransition(width)
	case wizard.KindAuth:
		return m.renderAuth(width)
	case wizard.KindPaywall:
		return m.renderPaywall(width)
	case wizard.KindCheckout:
		return m.spinner.View() + " Preparing your checkout..."
	case wizard.KindDone:
		if m.busy {
			return m.spinner.View() + " Saving your profile..."
		}
		return titleStyle.Render("All set!")
	case wizard.KindFallback:
		return titleStyle.Render("This step does not exist") + "\n\n" +
			wrapText("Press enter to go back to the start, or q to quit.", mutedStyle, width)
	default:
		return ""
	}
}

func (m *Model) renderStep(width int) string {
	screen, ok := wizard.ScreenFor(m.state.Step)
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(wrapText(screen.Title, titleStyle, width))
	if screen.Prompt != "" {
		b.WriteString("\n\n")
		b.WriteString(wrapText(screen.Prompt, mutedStyle, width))
	}
	for i, e := range m.editors {
		b.WriteString("\n\n")
		view := e.View(width)
		if len(m.editors) > 1 && i == m.focus {
			view = cursorStyle.Render("▌") + " " + strings.ReplaceAll(view, "\n", "\n  ")
		}
		b.WriteString(view)
	}
	if m.state.Step == wizard.AccountStep && m.seq.Mode() == wizard.ModeCreate {
		b.WriteString("\n\n")
		if m.seq.Authenticated() {
			b.WriteString(mutedStyle.Render("You are signed in. Press enter to continue."))
		} else {
			b.WriteString(mutedStyle.Render("s sign up · l log in"))
		}
	}
	return b.String()
}

func (m *Model) renderTransition(width int) string {
	if m.transition == nil {
		return ""
	}
	sum := m.transition.Summary
	var b strings.Builder
	b.WriteString(wrapText(sum.Title, titleStyle, width))
	for _, d := range sum.Details {
		b.WriteString("\n\n")
		b.WriteString(wrapDetail(d, width))
	}
	if len(sum.Colors) > 0 {
		b.WriteString("\n\n")
		for _, c := range sum.Colors {
			b.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(c)).Render("    "))
			b.WriteString(" ")
		}
	}
	if def, ok := phase.Lookup(m.transition.Phase); ok {
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render(def.Name + " complete"))
	}
	return b.String()
}

func (m *Model) renderAuth(width int) string {
	title := "Create your account"
	toggle := "ctrl+t: I already have an account"
	if m.state.Auth == wizard.AuthLogin {
		title = "Welcome back"
		toggle = "ctrl+t: create a new account"
	}
	m.email.Width = width - 12
	m.password.Width = width - 12
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.email.View())
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")
	if m.authBusy {
		b.WriteString(mutedStyle.Render("Signing in..."))
	} else {
		b.WriteString(mutedStyle.Render(toggle))
	}
	return b.String()
}

func (m *Model) renderPaywall(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Choose your plan"))
	b.WriteString("\n\n")
	if m.plansErr != nil {
		b.WriteString(errorStyle.Render("Plans could not be loaded. Press r to retry."))
		b.WriteString("\n\n")
	}
	for i, choice := range submit.Choices {
		line := planLabel(choice, m.plans)
		if i == m.planCursor {
			line = cursorStyle.Render("> ") + valueStyle.Render(line)
		} else {
			line = "  " + mutedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(wrapText("You will finish payment in your browser.", mutedStyle, width))
	return b.String()
}

func planLabel(choice submit.PlanChoice, plans []model.Plan) string {
	name := strings.ToUpper(string(choice[:1])) + string(choice[1:])
	plan, err := submit.ResolvePlan(choice, plans)
	if err != nil {
		return name
	}
	return fmt.Sprintf("%s · %s", name, formatPrice(plan.PriceCents))
}

func formatPrice(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

func (m *Model) renderFooter() string {
	var segments []string
	switch {
	case m.state.Kind == wizard.KindFallback:
	case m.seq.Mode() == wizard.ModeEdit && m.state.Step > 0:
		segments = append(segments, fmt.Sprintf("Editing · step %d of %d", m.state.Step, wizard.EditLastStep))
	case m.state.Step > 0:
		progress := m.state.Step * 100 / wizard.CheckoutStep
		segments = append(segments, fmt.Sprintf("Step %d of %d · %d%%", m.state.Step, wizard.CheckoutStep, progress))
	}
	if def, ok := phase.ForStep(m.state.Step); ok {
		segments = append(segments, def.Name)
	}
	if help := m.keyHelp(); help != "" {
		segments = append(segments, help)
	}
	if len(segments) == 0 {
		return ""
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) keyHelp() string {
	switch m.state.Kind {
	case wizard.KindStep:
		help := "enter next · esc back"
		if len(m.editors) > 1 {
			help += " · tab field"
		}
		return help
	case wizard.KindPhaseTransition:
		return "enter continue"
	case wizard.KindAuth:
		return "enter submit · esc back"
	case wizard.KindPaywall:
		return "↑/↓ plan · enter checkout · esc back"
	case wizard.KindFallback:
		return "enter start over · q quit"
	default:
		return ""
	}
}
