// Package main provides the CLI entrypoint for repwatch.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/repwatch/internal/client"
	"github.com/verte-zerg/repwatch/internal/config"
	"github.com/verte-zerg/repwatch/internal/lifecycle"
	"github.com/verte-zerg/repwatch/internal/model"
	"github.com/verte-zerg/repwatch/internal/poller"
	"github.com/verte-zerg/repwatch/internal/stats"
	"github.com/verte-zerg/repwatch/internal/statsui"
	"github.com/verte-zerg/repwatch/internal/tui"
)

const (
	defaultMode    = model.ModePushUp
	defaultTimeout = 5 * time.Second
)

var (
	backendURL     string
	backendTimeout time.Duration

	workoutMode        string
	workoutPoll        time.Duration
	workoutSummaryPoll time.Duration

	summaryHistory bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "repwatch",
		Short:         "Live workout telemetry client",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runLiveCmd,
	}

	rootCmd.PersistentFlags().StringVar(&backendURL, "url", client.DefaultBaseURL, "pose service base URL")
	rootCmd.PersistentFlags().DurationVar(&backendTimeout, "timeout", defaultTimeout, "per-request timeout")
	rootCmd.PersistentFlags().DurationVar(&workoutSummaryPoll, "summary-poll", poller.DefaultSummaryInterval, "session summary refresh interval")
	rootCmd.Flags().StringVar(&workoutMode, "mode", string(defaultMode), "initial exercise mode")
	rootCmd.Flags().DurationVar(&workoutPoll, "poll", poller.DefaultLiveInterval, "live telemetry refresh interval")

	rootCmd.AddCommand(newResultsCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newModesCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runLiveCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	cl, err := client.New(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return fmt.Errorf("invalid --url: %w", err)
	}

	ctrl := lifecycle.New(cl, cfg.Mode, cfg.Timeout)
	for _, res := range ctrl.Activate(context.Background()) {
		logResult(res)
	}

	var program *tea.Program
	p := poller.New(cl, cfg.Mode, poller.Options{
		LiveInterval:    cfg.PollInterval,
		SummaryInterval: cfg.SummaryInterval,
		RequestTimeout:  cfg.Timeout,
		OnLive: func(state model.DerivedLiveState) {
			program.Send(tui.LiveMsg(state))
		},
		OnSummary: func(view model.SummaryView) {
			program.Send(tui.SummaryMsg(view))
		},
	})
	view := tui.NewModel(cfg.Mode, p.Live(), workoutSwitcher{poller: p, ctrl: ctrl})
	program = tea.NewProgram(view, tea.WithAltScreen())

	runErr := runWithPoller(program, p)
	logResult(ctrl.Deactivate(context.Background()))
	if runErr != nil {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}
	return nil
}

// workoutSwitcher hands a selection to the poller and the controller
// together, so both see selections in the order they were made.
type workoutSwitcher struct {
	poller *poller.Poller
	ctrl   *lifecycle.Controller
}

func (w workoutSwitcher) Select(mode model.Mode) bool {
	w.poller.SetMode(mode)
	return w.ctrl.Select(mode)
}

func (w workoutSwitcher) Flush(ctx context.Context) lifecycle.Result {
	return w.ctrl.Flush(ctx)
}

// runWithPoller runs the program while p polls, and returns once both the
// program and the polling loops have stopped.
func runWithPoller(program *tea.Program, p *poller.Poller) error {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx)
	}()
	_, runErr := program.Run()
	cancel()
	if err := <-done; err != nil {
		logErrf("polling stopped: %v\n", err)
	}
	return runErr
}

func newResultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "results",
		Short: "Show workout results",
		Args:  cobra.NoArgs,
		RunE:  runResultsCmd,
	}
}

func runResultsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	cl, err := client.New(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return fmt.Errorf("invalid --url: %w", err)
	}

	var program *tea.Program
	p := poller.New(cl, cfg.Mode, poller.Options{
		SummaryInterval: cfg.SummaryInterval,
		RequestTimeout:  cfg.Timeout,
		OnSummary: func(view model.SummaryView) {
			program.Send(statsui.SummaryMsg(view))
		},
	})
	program = tea.NewProgram(statsui.NewModel(cl.BaseURL()), tea.WithAltScreen())
	if err := runWithPoller(program, p); err != nil {
		return fmt.Errorf("failed to run results TUI: %w", err)
	}
	return nil
}

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print a workout summary",
		Args:  cobra.NoArgs,
		RunE:  runSummaryCmd,
	}
	cmd.Flags().BoolVar(&summaryHistory, "history", false, "also list every session")
	return cmd
}

func runSummaryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	cl, err := client.New(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return fmt.Errorf("invalid --url: %w", err)
	}
	p := poller.New(cl, cfg.Mode, poller.Options{RequestTimeout: cfg.Timeout})
	view := p.RefreshSummary(context.Background())
	if view.Err != nil {
		return fmt.Errorf("failed to load sessions: %w", view.Err)
	}

	out := cmd.OutOrStdout()
	width := terminalWidth()
	if err := stats.RenderSummary(out, view, width); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !summaryHistory {
		return nil
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderHistory(out, view.Sessions, width); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// terminalWidth returns the stdout width, or 0 when stdout is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}

func newModesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List exercise modes",
		Args:  cobra.NoArgs,
		RunE:  runModesCmd,
	}
}

func runModesCmd(cmd *cobra.Command, _ []string) error {
	for i, mode := range model.Modes {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d  %s\n", i+1, mode); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
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

// resolveConfig merges flags, REPWATCH_* variables and the config file, in
// that order of precedence.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "url", &backendURL, fileCfg.Backend.URL)
	applyStringConfig(cmd, "mode", &workoutMode, fileCfg.Workout.Mode)
	if err := applyDurationConfig(cmd, "timeout", &backendTimeout, fileCfg.Backend.Timeout); err != nil {
		return model.Config{}, err
	}
	if err := applyDurationConfig(cmd, "poll", &workoutPoll, fileCfg.Workout.Poll); err != nil {
		return model.Config{}, err
	}
	if err := applyDurationConfig(cmd, "summary-poll", &workoutSummaryPoll, fileCfg.Workout.SummaryPoll); err != nil {
		return model.Config{}, err
	}

	mode, err := model.ParseMode(workoutMode)
	if err != nil {
		return model.Config{}, fmt.Errorf("--mode: %w", err)
	}
	cfg := model.Config{
		BaseURL:         strings.TrimSpace(backendURL),
		Mode:            mode,
		PollInterval:    workoutPoll,
		SummaryInterval: workoutSummaryPoll,
		Timeout:         backendTimeout,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	return f != nil && f.Changed
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) error {
	if value == nil {
		return nil
	}
	if flagChanged(cmd, name) {
		return nil
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(*value))
	if err != nil {
		return fmt.Errorf("invalid %s in config: %w", name, err)
	}
	*target = parsed
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# repwatch configuration
# Uncomment a value to enable it. REPWATCH_* variables override config values,
# CLI flags override both.

[backend]
# url = %q    # Pose service base URL
# timeout = %q            # Per-request timeout

[workout]
# mode = %q           # Initial mode: Push-Up, Curl, Squat or Plank
# poll = %q           # Live telemetry refresh interval
# summary-poll = %q     # Session summary refresh interval
`,
		client.DefaultBaseURL,
		defaultTimeout.String(),
		string(defaultMode),
		poller.DefaultLiveInterval.String(),
		poller.DefaultSummaryInterval.String(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("--url must not be empty")
	}
	if !cfg.Mode.Valid() {
		return fmt.Errorf("--mode must be one of Push-Up, Curl, Squat, Plank")
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("--poll must be > 0")
	}
	if cfg.SummaryInterval <= 0 {
		return fmt.Errorf("--summary-poll must be > 0")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	return nil
}

func logResult(res lifecycle.Result) {
	if res.Err == nil {
		return
	}
	if res.Mode != "" {
		logErrf("%s (%s) failed: %v\n", res.Signal, res.Mode, res.Err)
		return
	}
	logErrf("%s failed: %v\n", res.Signal, res.Err)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
