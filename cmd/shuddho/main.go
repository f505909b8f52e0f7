// Package main provides the CLI entrypoint for shuddho.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/shuddho/internal/analysis"
	"github.com/verte-zerg/shuddho/internal/config"
	"github.com/verte-zerg/shuddho/internal/learning"
	"github.com/verte-zerg/shuddho/internal/session"
	"github.com/verte-zerg/shuddho/internal/store"
)

const (
	defaultCurveWindow = 20
	defaultLogLevel    = "info"
	defaultReplaceMode = string(session.ModeSpan)
)

var (
	dbPath string

	checkPlain        bool
	checkOffline      bool
	checkModel        string
	checkBaseURL      string
	checkAPIKeyEnv    string
	checkTimeout      string
	checkMinInterval  string
	checkWritingStyle string
	checkReplaceMode  string
	checkUndoLimit    int
	checkConfusables  string

	learningHistoryLimit int

	logLevel string
	logFile  string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "shuddho [FILE]",
		Short:         "Bengali spelling and grammar assistant",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runCheckCmd(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath(), "path to the learning database")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", config.DefaultLogPath(), "log file used while a TUI is running")
	rootCmd.PersistentFlags().IntVar(&learningHistoryLimit, "history-limit", learning.DefaultHistoryLimit, "number of decisions kept in history")
	addCheckFlags(rootCmd)

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newIgnoreCmd())
	rootCmd.AddCommand(newVocabCmd())
	rootCmd.AddCommand(newCorrectionsCmd())
	rootCmd.AddCommand(newExportCmd())

	return rootCmd
}

func loadFileConfig(cmd *cobra.Command) (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	applyIntConfig(cmd, "history-limit", &learningHistoryLimit, fileCfg.Learning.HistoryLimit)
	return fileCfg, nil
}

// newLogger builds the process logger. toFile sends records to the log file
// so they do not corrupt a running TUI.
func newLogger(toFile bool) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	var out io.Writer = os.Stderr
	closer := func() {}
	if toFile {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closer = func() {
			if cerr := f.Close(); cerr != nil {
				// Best-effort close of the log file.
				_ = cerr
			}
		}
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, closer, nil
}

// learningEnv is an open database with the learning store loaded from it.
type learningEnv struct {
	store   *store.Store
	learner *learning.Store
	logger  *slog.Logger
}

func openLearning(ctx context.Context, logger *slog.Logger) (*learningEnv, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	learner := learning.New(st,
		learning.WithHistoryLimit(learningHistoryLimit),
		learning.WithLogger(logger),
	)
	learner.Load(ctx)
	return &learningEnv{store: st, learner: learner, logger: logger}, nil
}

func (e *learningEnv) Close(ctx context.Context) {
	if err := e.learner.Flush(ctx); err != nil {
		e.logger.Error("failed to flush learning data", "error", err)
	}
	if err := e.store.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
}

// withLearning runs fn against the loaded learning store. logToFile keeps
// log records off the terminal while a TUI is running.
func withLearning(cmd *cobra.Command, logToFile bool, fn func(ctx context.Context, env *learningEnv) error) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}
	logger, closeLog, err := newLogger(logToFile)
	if err != nil {
		return err
	}
	defer closeLog()
	ctx := cmd.Context()
	env, err := openLearning(ctx, logger)
	if err != nil {
		return err
	}
	defer env.Close(ctx)
	return fn(ctx, env)
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

func parseDurationFlag(name, value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s value: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("--%s must be >= 0", name)
	}
	return d, nil
}

func parseSince(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --since value: %w", err)
	}
	return &parsed, nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# shuddho configuration
# Uncomment a value to enable it. CLI flags override config values.

[analysis]
# model = %q              # Chat model name
# base-url = %q           # OpenAI-compatible endpoint
# api-key-env = %q        # Environment variable holding the API key
# timeout = %q            # Bound on one analysis call
# min-interval = "0s"     # Minimum spacing between analysis calls
# writing-style = ""      # Extra instruction appended to the prompt
# replace-mode = %q       # "span" replaces one occurrence, "text" every occurrence

[learning]
# history-limit = %d      # Decisions kept in history
# undo-limit = %d         # Undo steps kept per review
# confusables = %q        # Extra "wrong = right" table

[log]
# level = %q              # debug, info, warn or error
# file = %q               # Log file used while a TUI is running
`,
		analysis.DefaultModel,
		analysis.DefaultBaseURL,
		analysis.DefaultAPIKeyEnv,
		analysis.DefaultTimeout.String(),
		defaultReplaceMode,
		learning.DefaultHistoryLimit,
		session.DefaultUndoLimit,
		config.DefaultConfusablesPath(),
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
