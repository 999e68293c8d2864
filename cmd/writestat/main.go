// Package main provides the CLI entrypoint for writestat.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/writestat/internal/config"
	"github.com/verte-zerg/writestat/internal/model"
	"github.com/verte-zerg/writestat/internal/stats"
	"github.com/verte-zerg/writestat/internal/statsui"
	"github.com/verte-zerg/writestat/internal/store"
	"github.com/verte-zerg/writestat/internal/textstats"
	"github.com/verte-zerg/writestat/internal/wordlist"
)

const (
	defaultTrendWindow = 5
	defaultLogLevel    = "info"
)

var (
	engineReadingWPM    int
	engineWordsPerPage  int
	engineMaxRunes      int
	engineAbbreviations string
	engineDebounceMs    int
	engineWindowMinutes int
	engineTickMs        int
	engineIdleTimeoutMs int

	analyzeStart int
	analyzeEnd   int

	watchLogLevel string

	historySince  string
	historyLast   int
	historyDoc    string
	historyWindow int
	historyTUI    bool
)

var headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "writestat",
		Short:         "Live writing statistics",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addEngineFlags(cmd *cobra.Command) {
	defaults := model.DefaultConfig()
	cmd.Flags().IntVar(&engineReadingWPM, "reading-wpm", defaults.AverageReadingWPM, "average reading speed in words per minute")
	cmd.Flags().IntVar(&engineWordsPerPage, "words-per-page", defaults.WordsPerPage, "words per page")
	cmd.Flags().IntVar(&engineMaxRunes, "max-runes", defaults.MaxAnalyzeRunes, "documents above this size get approximate metrics")
	cmd.Flags().StringVar(&engineAbbreviations, "abbreviations", config.DefaultAbbreviationsPath(), "abbreviation list, one per line")
}

func addSessionFlags(cmd *cobra.Command) {
	defaults := model.DefaultConfig()
	cmd.Flags().IntVar(&engineDebounceMs, "debounce-ms", int(defaults.DebounceInterval/time.Millisecond), "delay before recomputing after an edit")
	cmd.Flags().IntVar(&engineWindowMinutes, "wpm-window", int(defaults.WPMWindow/time.Minute), "rolling WPM window in minutes")
	cmd.Flags().IntVar(&engineTickMs, "tick-ms", int(defaults.TickInterval/time.Millisecond), "session clock interval")
	cmd.Flags().IntVar(&engineIdleTimeoutMs, "idle-timeout-ms", int(defaults.IdleTimeout/time.Millisecond), "quiet time after a save before typing counts as paused")
}

// loadEngineConfig merges the config file under the command's flags.
func loadEngineConfig(cmd *cobra.Command) (model.Config, map[string]struct{}, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "reading-wpm", &engineReadingWPM, fileCfg.Analysis.ReadingWPM)
	applyIntConfig(cmd, "words-per-page", &engineWordsPerPage, fileCfg.Analysis.WordsPerPage)
	applyIntConfig(cmd, "max-runes", &engineMaxRunes, fileCfg.Analysis.MaxRunes)
	applyStringConfig(cmd, "abbreviations", &engineAbbreviations, fileCfg.Analysis.Abbreviations)
	applyIntConfig(cmd, "debounce-ms", &engineDebounceMs, fileCfg.Session.DebounceMs)
	applyIntConfig(cmd, "wpm-window", &engineWindowMinutes, fileCfg.Session.WPMWindowMinutes)
	applyIntConfig(cmd, "tick-ms", &engineTickMs, fileCfg.Session.TickMs)
	applyIntConfig(cmd, "idle-timeout-ms", &engineIdleTimeoutMs, fileCfg.Session.IdleTimeoutMs)

	cfg := model.Config{
		AverageReadingWPM: engineReadingWPM,
		WordsPerPage:      engineWordsPerPage,
		MaxAnalyzeRunes:   engineMaxRunes,
		DebounceInterval:  time.Duration(engineDebounceMs) * time.Millisecond,
		WPMWindow:         time.Duration(engineWindowMinutes) * time.Minute,
		TickInterval:      time.Duration(engineTickMs) * time.Millisecond,
		IdleTimeout:       time.Duration(engineIdleTimeoutMs) * time.Millisecond,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, nil, err
	}

	abbrevs, err := wordlist.LoadAbbreviations(expandHome(engineAbbreviations), nil)
	if err != nil {
		return model.Config{}, nil, err
	}
	return cfg, abbrevs, nil
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Print document metrics for a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalyzeCmd,
	}
	addEngineFlags(cmd)
	cmd.Flags().IntVar(&analyzeStart, "start", 0, "selection start (rune offset)")
	cmd.Flags().IntVar(&analyzeEnd, "end", 0, "selection end (rune offset, exclusive)")
	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	// Session flags do not apply, so seed them with defaults before validation.
	defaults := model.DefaultConfig()
	engineDebounceMs = int(defaults.DebounceInterval / time.Millisecond)
	engineWindowMinutes = int(defaults.WPMWindow / time.Minute)
	engineTickMs = int(defaults.TickInterval / time.Millisecond)
	engineIdleTimeoutMs = int(defaults.IdleTimeout / time.Millisecond)

	cfg, abbrevs, err := loadEngineConfig(cmd)
	if err != nil {
		return err
	}

	name := "stdin"
	var data []byte
	if len(args) == 1 && args[0] != "-" {
		name = args[0]
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	snap := textstats.Snapshot{Text: string(data)}
	scope := "Document"
	if cmd.Flags().Changed("start") || cmd.Flags().Changed("end") {
		if analyzeStart < 0 || analyzeEnd < 0 {
			return fmt.Errorf("--start and --end must be >= 0")
		}
		snap.Selection = &textstats.Range{Start: analyzeStart, End: analyzeEnd}
		scope = fmt.Sprintf("Selection %d-%d", analyzeStart, analyzeEnd)
	}

	analyzer := textstats.New(textstats.Options{
		ReadingWPM:    cfg.AverageReadingWPM,
		WordsPerPage:  cfg.WordsPerPage,
		MaxRunes:      cfg.MaxAnalyzeRunes,
		Abbreviations: abbrevs,
	})
	metrics := analyzer.Analyze(snap)

	out := cmd.OutOrStdout()
	if err := writeHeading(out, fmt.Sprintf("%s · %s", name, scope)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderMetrics(out, metrics); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if metrics.Approximate {
		logErrf("document exceeds %d characters; only approximate metrics are shown\n", cfg.MaxAnalyzeRunes)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored writing sessions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N sessions")
	cmd.Flags().StringVar(&historyDoc, "doc", "", "only sessions for this document")
	cmd.Flags().IntVar(&historyWindow, "window", defaultTrendWindow, "moving average window for the WPM trend")
	cmd.Flags().BoolVarP(&historyTUI, "interactive", "i", false, "browse history in a TUI")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if historyWindow <= 0 {
		return fmt.Errorf("--window must be > 0")
	}
	doc := historyDoc
	if doc != "" {
		abs, err := filepath.Abs(expandHome(doc))
		if err != nil {
			return fmt.Errorf("failed to resolve --doc: %w", err)
		}
		doc = abs
	}

	cfg := model.HistoryConfig{
		Document: doc,
		Since:    sinceTime,
		Last:     historyLast,
		Window:   historyWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if historyTUI {
		program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run history TUI: %w", err)
		}
		return nil
	}

	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := writeHeading(out, "Writing history"); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := report.Render(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
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

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	defaults := model.DefaultConfig()
	return fmt.Sprintf(`# writestat configuration
# Uncomment a value to enable it. CLI flags override config values.

[analysis]
# reading-wpm = %d         # Average reading speed for reading time
# words-per-page = %d      # Words per page
# max-runes = %d      # Larger documents get approximate metrics
# abbreviations = %q

[session]
# debounce-ms = %d         # Delay before recomputing after an edit
# wpm-window-minutes = %d    # Rolling WPM window
# tick-ms = %d            # Session clock interval
# idle-timeout-ms = %d    # Quiet time before typing counts as paused
`,
		defaults.AverageReadingWPM,
		defaults.WordsPerPage,
		defaults.MaxAnalyzeRunes,
		config.DefaultAbbreviationsPath(),
		int(defaults.DebounceInterval/time.Millisecond),
		int(defaults.WPMWindow/time.Minute),
		int(defaults.TickInterval/time.Millisecond),
		int(defaults.IdleTimeout/time.Millisecond),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.AverageReadingWPM <= 0 {
		return fmt.Errorf("--reading-wpm must be > 0")
	}
	if cfg.WordsPerPage <= 0 {
		return fmt.Errorf("--words-per-page must be > 0")
	}
	if cfg.MaxAnalyzeRunes <= 0 {
		return fmt.Errorf("--max-runes must be > 0")
	}
	if cfg.DebounceInterval <= 0 {
		return fmt.Errorf("--debounce-ms must be > 0")
	}
	if cfg.WPMWindow <= 0 {
		return fmt.Errorf("--wpm-window must be > 0")
	}
	if cfg.TickInterval <= 0 {
		return fmt.Errorf("--tick-ms must be > 0")
	}
	if cfg.IdleTimeout <= 0 {
		return fmt.Errorf("--idle-timeout-ms must be > 0")
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// writeHeading styles the heading only when out is a terminal.
func writeHeading(out io.Writer, heading string) error {
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		heading = headingStyle.Render(heading)
	}
	_, err := fmt.Fprintln(out, heading)
	return err
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
