// Package main provides the CLI entrypoint for onboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/onboard/internal/api"
	"github.com/verte-zerg/onboard/internal/config"
	"github.com/verte-zerg/onboard/internal/devserver"
	"github.com/verte-zerg/onboard/internal/formstore"
	"github.com/verte-zerg/onboard/internal/funnelui"
	"github.com/verte-zerg/onboard/internal/logging"
	"github.com/verte-zerg/onboard/internal/model"
	"github.com/verte-zerg/onboard/internal/phase"
	"github.com/verte-zerg/onboard/internal/stats"
	"github.com/verte-zerg/onboard/internal/store"
	"github.com/verte-zerg/onboard/internal/submit"
	"github.com/verte-zerg/onboard/internal/tracking"
	"github.com/verte-zerg/onboard/internal/tui"
	"github.com/verte-zerg/onboard/internal/wizard"
)

const (
	defaultAPIURL            = "http://localhost:8080"
	defaultTimeoutMs         = 10000
	defaultTransitionDelayMs = 3000
	defaultSuccessURL        = "http://localhost:8080/onboarding/success"
	defaultCancelURL         = "http://localhost:8080/onboarding/cancel"
	defaultDevAddr           = ":8080"
	dotenvPath               = ".env"

	// accessTokenKey is the local storage key holding the backend token.
	accessTokenKey = "postnow_access_token"
)

var (
	wizardEdit              bool
	wizardReset             bool
	wizardAPIURL            string
	wizardTimeoutMs         int
	wizardDebug             bool
	wizardTransitionDelayMs int
	wizardSuccessURL        string
	wizardCancelURL         string
	wizardOpenURL           bool

	clearLogout bool

	funnelRemote bool
	funnelPlain  bool
	funnelSince  string
	funnelDB     string
	funnelColor  bool

	devAddr      string
	devDB        string
	devPublicURL string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "onboard",
		Short:         "PostNow creator onboarding wizard",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runWizardCmd,
	}

	rootCmd.Flags().BoolVar(&wizardEdit, "edit", false, "edit an existing creator profile")
	rootCmd.Flags().BoolVar(&wizardReset, "reset", false, "discard saved answers and start over")
	rootCmd.Flags().StringVar(&wizardAPIURL, "api-url", defaultAPIURL, "backend base URL")
	rootCmd.Flags().IntVar(&wizardTimeoutMs, "timeout-ms", defaultTimeoutMs, "backend request timeout in milliseconds")
	rootCmd.Flags().BoolVar(&wizardDebug, "debug", false, "write debug records to the log file")
	rootCmd.Flags().IntVar(&wizardTransitionDelayMs, "transition-delay-ms", defaultTransitionDelayMs, "phase summary auto-advance delay in milliseconds")
	rootCmd.Flags().StringVar(&wizardSuccessURL, "success-url", defaultSuccessURL, "checkout success return URL")
	rootCmd.Flags().StringVar(&wizardCancelURL, "cancel-url", defaultCancelURL, "checkout cancel return URL")
	rootCmd.Flags().BoolVar(&wizardOpenURL, "open", true, "open the checkout URL in a browser")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newFunnelCmd())
	rootCmd.AddCommand(newDevServerCmd())

	return rootCmd
}

// loadSettings merges config file, environment and flags. Explicit flags win,
// then the environment, then the config file.
func loadSettings(cmd *cobra.Command) (config.FileConfig, config.Env, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, config.Env{}, fmt.Errorf("failed to load config: %w", err)
	}
	env, err := config.LoadEnv(dotenvPath)
	if err != nil {
		return config.FileConfig{}, config.Env{}, err
	}
	if cmd.Flags().Lookup("api-url") != nil {
		applyStringConfig(cmd, "api-url", &wizardAPIURL, fileCfg.API.BaseURL)
		if env.APIURL != "" {
			applyStringConfig(cmd, "api-url", &wizardAPIURL, &env.APIURL)
		}
	}
	if cmd.Flags().Lookup("timeout-ms") != nil {
		applyIntConfig(cmd, "timeout-ms", &wizardTimeoutMs, fileCfg.API.TimeoutMs)
	}
	return fileCfg, env, nil
}

func runWizardCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, env, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	applyIntConfig(cmd, "transition-delay-ms", &wizardTransitionDelayMs, fileCfg.Wizard.TransitionDelayMs)
	applyBoolConfig(cmd, "debug", &wizardDebug, fileCfg.Wizard.Debug)
	applyStringConfig(cmd, "success-url", &wizardSuccessURL, fileCfg.Checkout.SuccessURL)
	applyStringConfig(cmd, "cancel-url", &wizardCancelURL, fileCfg.Checkout.CancelURL)
	applyBoolConfig(cmd, "open", &wizardOpenURL, fileCfg.Checkout.OpenURL)
	if err := validateWizardFlags(); err != nil {
		return err
	}

	log, err := logging.New(config.DefaultLogPath(), wizardDebug)
	if err != nil {
		return err
	}
	defer func() {
		// Sync fails on some file descriptors; nothing to do about it here.
		_ = log.Sync()
	}()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	local := st.Local()

	client := api.NewClient(wizardAPIURL,
		api.WithToken(resolveToken(env, local)),
		api.WithLogger(log),
		api.WithHTTPClient(&http.Client{Timeout: time.Duration(wizardTimeoutMs) * time.Millisecond}),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	status := fetchStatus(ctx, client, local, log)

	mode := wizard.ModeCreate
	if wizardEdit {
		mode = wizard.ModeEdit
	}
	form := formstore.New(local, log)
	if mode == wizard.ModeEdit {
		if !status.Authenticated {
			return fmt.Errorf("editing a profile requires signing in; run onboard first or set %s", config.EnvAccessToken)
		}
		if err := seedFromProfile(ctx, client, form); err != nil {
			return err
		}
	}

	tracker := tracking.New(local, client, log)
	defer tracker.Wait()

	seq := wizard.NewSequencer(mode, form, tracker, store.NewMemory(), log)
	orch := submit.New(client, form, tracker, submit.URLs{Success: wizardSuccessURL, Cancel: wizardCancelURL}, log)

	m := tui.NewModel(tui.Options{
		Form:            form,
		Sequencer:       seq,
		Accounts:        client,
		Submit:          orch,
		Log:             log,
		Status:          status,
		Reset:           wizardReset,
		TransitionDelay: time.Duration(wizardTransitionDelayMs) * time.Millisecond,
		OnToken: func(token string) {
			if err := local.SetItem(accessTokenKey, token); err != nil {
				log.Warn("failed to persist access token", zap.Error(err))
			}
		},
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	res := m.Result()
	switch {
	case res.CheckoutURL != "":
		fmt.Fprintf(cmd.OutOrStdout(), "Continue to checkout: %s\n", res.CheckoutURL)
		if wizardOpenURL {
			if err := openURL(res.CheckoutURL); err != nil {
				log.Warn("failed to open checkout url", zap.Error(err))
				logErrf("could not open a browser: %v\n", err)
			}
		}
	case res.State.Kind == wizard.KindDone && mode == wizard.ModeEdit:
		fmt.Fprintln(cmd.OutOrStdout(), "Profile updated.")
	case res.State.Kind == wizard.KindCancelled:
		fmt.Fprintln(cmd.OutOrStdout(), "Edit cancelled. Your profile was not changed.")
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "Progress saved at step %d. Run onboard to continue.\n", form.Record().CurrentStep)
	}
	return nil
}

func resolveToken(env config.Env, local store.KV) string {
	if env.AccessToken != "" {
		return env.AccessToken
	}
	token, ok, err := local.GetItem(accessTokenKey)
	if err != nil || !ok {
		return ""
	}
	return token
}

// storedToken resolves the access token without keeping the wizard db open.
func storedToken(env config.Env) (string, error) {
	if env.AccessToken != "" {
		return env.AccessToken, nil
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return "", fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	return resolveToken(env, st.Local()), nil
}

// fetchStatus asks the backend whether the stored token is valid and the
// subscription active. A rejected token is forgotten.
func fetchStatus(ctx context.Context, client *api.Client, local store.KV, log *zap.Logger) wizard.AuthStatus {
	if !client.Authenticated() {
		return wizard.AuthStatus{}
	}
	sub, err := client.Subscription(ctx)
	var statusErr *api.StatusError
	switch {
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized:
		log.Info("stored access token rejected")
		client.SetToken("")
		if rerr := local.RemoveItem(accessTokenKey); rerr != nil {
			log.Warn("failed to forget access token", zap.Error(rerr))
		}
		return wizard.AuthStatus{}
	case err != nil:
		// Unknown subscription state never triggers the paywall jump.
		log.Warn("failed to load subscription", zap.Error(err))
		return wizard.AuthStatus{Authenticated: true, SubscriptionActive: true}
	}
	return wizard.AuthStatus{Authenticated: true, SubscriptionActive: sub.Active}
}

func seedFromProfile(ctx context.Context, client *api.Client, form *formstore.Store) error {
	profile, err := client.Profile(ctx)
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		profile = model.Profile{}
		err = nil
	}
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if err := form.Clear(); err != nil {
		return err
	}
	if err := form.InitializeFromExternal(formstore.ProfilePatch(profile)); err != nil {
		return fmt.Errorf("failed to load profile into the wizard: %w", err)
	}
	return nil
}

func openURL(url string) error {
	var name string
	switch runtime.GOOS {
	case "darwin":
		name = "open"
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		name = "xdg-open"
	}
	return exec.Command(name, url).Start()
}

func validateWizardFlags() error {
	if strings.TrimSpace(wizardAPIURL) == "" {
		return fmt.Errorf("--api-url must not be empty")
	}
	if wizardTimeoutMs <= 0 {
		return fmt.Errorf("--timeout-ms must be > 0")
	}
	if wizardTransitionDelayMs <= 0 {
		return fmt.Errorf("--transition-delay-ms must be > 0")
	}
	if wizardSuccessURL == "" || wizardCancelURL == "" {
		return fmt.Errorf("--success-url and --cancel-url must not be empty")
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show saved onboarding progress",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	local := st.Local()
	rec := formstore.New(local, nil).Peek()
	return writeStatus(cmd, rec, local)
}

func writeStatus(cmd *cobra.Command, rec model.WizardRecord, local store.KV) error {
	out := cmd.OutOrStdout()
	screen, _ := wizard.ScreenFor(rec.CurrentStep)
	stepName := screen.Name
	if stepName == "" {
		stepName = "unknown"
	}
	lines := []string{fmt.Sprintf("Step:       %d of %d (%s)", rec.CurrentStep, wizard.CheckoutStep, stepName)}
	if def, ok := phase.ForStep(rec.CurrentStep); ok {
		lines = append(lines, fmt.Sprintf("Phase:      %s", def.Name))
	}
	lines = append(lines, fmt.Sprintf("Business:   %s", orDash(rec.BusinessName)))
	lines = append(lines, fmt.Sprintf("Niche:      %s", orDash(rec.Specialization)))
	if s := formstore.AudienceSentence(rec.TargetAudience); s != "" {
		lines = append(lines, fmt.Sprintf("Audience:   %s", s))
	}
	if rec.CompletedAt != nil {
		lines = append(lines, fmt.Sprintf("Completed:  %s", time.UnixMilli(*rec.CompletedAt).Format(time.RFC3339)))
	}
	lines = append(lines, fmt.Sprintf("Expires:    %s", time.UnixMilli(rec.ExpiresAt).Format(time.RFC3339)))
	if id, ok, err := local.GetItem(tracking.SessionKey); err == nil && ok {
		lines = append(lines, fmt.Sprintf("Session:    %s", id))
	}
	if _, ok, err := local.GetItem(accessTokenKey); err == nil {
		signedIn := "no"
		if ok {
			signedIn = "yes"
		}
		lines = append(lines, fmt.Sprintf("Signed in:  %s", signedIn))
	}
	if _, err := fmt.Fprintln(out, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete saved onboarding answers",
		Args:  cobra.NoArgs,
		RunE:  runClearCmd,
	}
	cmd.Flags().BoolVar(&clearLogout, "logout", false, "also forget the stored access token")
	return cmd
}

func runClearCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	local := st.Local()
	if err := formstore.New(local, nil).Clear(); err != nil {
		return err
	}
	if err := local.RemoveItem(tracking.SessionKey); err != nil {
		return fmt.Errorf("failed to clear funnel session: %w", err)
	}
	if clearLogout {
		if err := local.RemoveItem(accessTokenKey); err != nil {
			return fmt.Errorf("failed to clear access token: %w", err)
		}
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), "Onboarding progress cleared."); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newFunnelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "funnel",
		Short: "Show the onboarding funnel report",
		Args:  cobra.NoArgs,
		RunE:  runFunnelCmd,
	}
	cmd.Flags().BoolVar(&funnelRemote, "remote", false, "read counts from the backend admin endpoint")
	cmd.Flags().StringVar(&wizardAPIURL, "api-url", defaultAPIURL, "backend base URL for --remote")
	cmd.Flags().IntVar(&wizardTimeoutMs, "timeout-ms", defaultTimeoutMs, "backend request timeout in milliseconds")
	cmd.Flags().BoolVar(&funnelPlain, "plain", false, "print the report instead of opening the TUI")
	cmd.Flags().BoolVar(&funnelColor, "color", false, "force colored bars in --plain output")
	cmd.Flags().StringVar(&funnelSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&funnelDB, "db", "", "devserver database path")
	return cmd
}

func runFunnelCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, env, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "db", &funnelDB, fileCfg.DevServer.DB)

	var filter model.FunnelFilter
	if funnelSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", funnelSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		filter.SinceMs = parsed.UnixMilli()
	}

	var source stats.CountSource
	var origin string
	if funnelRemote {
		token, err := storedToken(env)
		if err != nil {
			return err
		}
		if token == "" {
			return fmt.Errorf("--remote needs a token: sign in with the wizard or set %s", config.EnvAccessToken)
		}
		client := api.NewClient(wizardAPIURL,
			api.WithToken(token),
			api.WithHTTPClient(&http.Client{Timeout: time.Duration(wizardTimeoutMs) * time.Millisecond}))
		source = stats.CountSourceFunc(client.Funnel)
		origin = wizardAPIURL
	} else {
		path := funnelDB
		if path == "" {
			path = config.DefaultDevServerDBPath()
		}
		st, err := store.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
		source = st
		origin = path
	}

	names := stepNames()
	if funnelPlain {
		report, err := stats.BuildReport(cmd.Context(), source, filter, wizard.CheckoutStep)
		if err != nil {
			return fmt.Errorf("failed to build funnel report: %w", err)
		}
		return report.Render(cmd.OutOrStdout(), names, 0, funnelColor)
	}

	m := funnelui.NewModel(funnelui.Config{
		Source:   source,
		Filter:   filter,
		Names:    names,
		LastStep: wizard.CheckoutStep,
		Origin:   origin,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run funnel TUI: %w", err)
	}
	return nil
}

func stepNames() map[int]string {
	names := make(map[int]string, wizard.CheckoutStep)
	for step := wizard.FirstStep; step <= wizard.CheckoutStep; step++ {
		if screen, ok := wizard.ScreenFor(step); ok {
			names[step] = screen.Name
		}
	}
	return names
}

func newDevServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run a local backend for development",
		Args:  cobra.NoArgs,
		RunE:  runDevServerCmd,
	}
	cmd.Flags().StringVar(&devAddr, "addr", defaultDevAddr, "listen address")
	cmd.Flags().StringVar(&devDB, "db", "", "database path")
	cmd.Flags().StringVar(&devPublicURL, "public-url", "", "externally reachable base URL for checkout links")
	cmd.Flags().BoolVar(&wizardDebug, "debug", false, "log debug records")
	return cmd
}

func runDevServerCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "addr", &devAddr, fileCfg.DevServer.Addr)
	applyStringConfig(cmd, "db", &devDB, fileCfg.DevServer.DB)
	if devDB == "" {
		devDB = config.DefaultDevServerDBPath()
	}

	log, err := newConsoleLogger(wizardDebug)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	st, err := store.Open(devDB)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	var opts []devserver.Option
	if devPublicURL != "" {
		opts = append(opts, devserver.WithPublicURL(devPublicURL))
	}
	srv := devserver.New(st, log, opts...)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Seed(ctx); err != nil {
		return err
	}
	logErrf("devserver listening on %s (db %s)\n", devAddr, devDB)
	return srv.Run(ctx, devAddr)
}

// newConsoleLogger logs to stderr; the dev backend owns no terminal UI.
func newConsoleLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# onboard configuration
# Uncomment a value to enable it. CLI flags override config values;
# %s and %s override the [api] section.

[api]
# base-url = %q
# timeout-ms = %d

[wizard]
# transition-delay-ms = %d    # Phase summary auto-advance delay
# debug = false                # Write debug records to the log file

[checkout]
# success-url = %q
# cancel-url = %q
# open-url = true              # Open the checkout page in a browser

[devserver]
# addr = %q
# db = %q
`,
		config.EnvAPIURL,
		config.EnvAccessToken,
		defaultAPIURL,
		defaultTimeoutMs,
		defaultTransitionDelayMs,
		defaultSuccessURL,
		defaultCancelURL,
		defaultDevAddr,
		config.DefaultDevServerDBPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
