package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/shuddho/internal/analysis"
	"github.com/verte-zerg/shuddho/internal/config"
	"github.com/verte-zerg/shuddho/internal/document"
	"github.com/verte-zerg/shuddho/internal/fallback"
	"github.com/verte-zerg/shuddho/internal/locate"
	"github.com/verte-zerg/shuddho/internal/model"
	"github.com/verte-zerg/shuddho/internal/session"
	"github.com/verte-zerg/shuddho/internal/tui"
	"github.com/verte-zerg/shuddho/internal/wordlist"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Review a document",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheckCmd,
	}
	addCheckFlags(cmd)
	return cmd
}

func addCheckFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&checkPlain, "plain", false, "run one analysis and print a report instead of the TUI")
	cmd.Flags().BoolVar(&checkOffline, "offline", false, "skip the model and use local suggestions only")
	cmd.Flags().StringVar(&checkModel, "model", analysis.DefaultModel, "chat model name")
	cmd.Flags().StringVar(&checkBaseURL, "base-url", analysis.DefaultBaseURL, "OpenAI-compatible endpoint")
	cmd.Flags().StringVar(&checkAPIKeyEnv, "api-key-env", analysis.DefaultAPIKeyEnv, "environment variable holding the API key")
	cmd.Flags().StringVar(&checkTimeout, "timeout", analysis.DefaultTimeout.String(), "bound on one analysis call")
	cmd.Flags().StringVar(&checkMinInterval, "min-interval", "0s", "minimum spacing between analysis calls")
	cmd.Flags().StringVar(&checkWritingStyle, "writing-style", "", "extra instruction appended to the prompt")
	cmd.Flags().StringVar(&checkReplaceMode, "replace-mode", defaultReplaceMode, "span or text")
	cmd.Flags().IntVar(&checkUndoLimit, "undo-limit", session.DefaultUndoLimit, "undo steps kept per review")
	cmd.Flags().StringVar(&checkConfusables, "confusables", "", "extra confusable table (wrong = right per line)")
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "model", &checkModel, fileCfg.Analysis.Model)
	applyStringConfig(cmd, "base-url", &checkBaseURL, fileCfg.Analysis.BaseURL)
	applyStringConfig(cmd, "api-key-env", &checkAPIKeyEnv, fileCfg.Analysis.APIKeyEnv)
	applyStringConfig(cmd, "timeout", &checkTimeout, fileCfg.Analysis.Timeout)
	applyStringConfig(cmd, "min-interval", &checkMinInterval, fileCfg.Analysis.MinInterval)
	applyStringConfig(cmd, "writing-style", &checkWritingStyle, fileCfg.Analysis.WritingStyle)
	applyStringConfig(cmd, "replace-mode", &checkReplaceMode, fileCfg.Analysis.ReplaceMode)
	applyIntConfig(cmd, "undo-limit", &checkUndoLimit, fileCfg.Learning.UndoLimit)
	applyStringConfig(cmd, "confusables", &checkConfusables, fileCfg.Learning.Confusables)

	mode, err := session.ParseReplaceMode(checkReplaceMode)
	if err != nil {
		return err
	}
	timeout, err := parseDurationFlag("timeout", checkTimeout)
	if err != nil {
		return err
	}
	minInterval, err := parseDurationFlag("min-interval", checkMinInterval)
	if err != nil {
		return err
	}
	if checkUndoLimit < 0 {
		return fmt.Errorf("--undo-limit must be >= 0")
	}

	plain := checkPlain || !stdoutIsTerminal()
	logger, closeLog, err := newLogger(!plain)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	env, err := openLearning(ctx, logger)
	if err != nil {
		return err
	}
	defer env.Close(ctx)

	confusables, err := loadConfusables(logger)
	if err != nil {
		return err
	}

	doc, err := document.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}

	var analyzer analysis.Analyzer
	if !checkOffline {
		client, err := analysis.New(analysis.Config{
			APIKey:       strings.TrimSpace(os.Getenv(checkAPIKeyEnv)),
			Model:        checkModel,
			BaseURL:      checkBaseURL,
			Timeout:      timeout,
			MinInterval:  minInterval,
			WritingStyle: checkWritingStyle,
			Logger:       logger,
		})
		switch {
		case errors.Is(err, analysis.ErrNoAPIKey):
			logger.Warn("no API key found, running offline", "env", checkAPIKeyEnv)
		case err != nil:
			return fmt.Errorf("failed to create analysis client: %w", err)
		default:
			analyzer = client
		}
	}

	locator := locate.New(env.learner)
	sess, err := session.New(session.Deps{
		Document: doc,
		Learner:  env.learner,
		Analyzer: analyzer,
		Locator:  locator,
		Fallback: fallback.New(env.learner, locator, fallback.WithConfusables(confusables)),
		Recorder: env.store,
		Logger:   logger,
	},
		session.WithReplaceMode(mode),
		session.WithUndoLimit(checkUndoLimit),
		session.WithAnalysisTimeout(timeout),
	)
	if err != nil {
		return err
	}

	if plain {
		outcome, err := sess.RunAnalysis(ctx)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		return writeCheckReport(cmd.OutOrStdout(), doc.Path(), sess.Status(), outcome)
	}

	changes, err := doc.Watch(ctx)
	if err != nil {
		logger.Warn("not watching document for external edits", "error", err)
	}
	m := tui.NewModel(ctx, sess, doc, changes, logger)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadConfusables reads the user confusable table. A missing file at the
// default location is not an error.
func loadConfusables(logger *slog.Logger) (map[string][]string, error) {
	path := checkConfusables
	explicit := path != ""
	if !explicit {
		path = config.DefaultConfusablesPath()
	}
	table, err := wordlist.LoadConfusables(path)
	if err != nil {
		if !explicit && isNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load confusables %s: %w", path, err)
	}
	logger.Debug("confusables loaded", "path", path, "entries", len(table))
	return table, nil
}

func writeCheckReport(w io.Writer, path, status string, outcome session.Outcome) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", path, status)
	if outcome.Failure != nil {
		fmt.Fprintf(&b, "model error: %v\n", outcome.Failure)
	}
	for i, e := range outcome.Errors {
		source := ""
		if e.Source == model.SourceLocal {
			source = " [local]"
		}
		fmt.Fprintf(&b, "\n%d. %s → %s  (%s, %.0f%%%s)\n", i+1, e.IncorrectWord,
			strings.Join(e.Suggestions, ", "), e.Kind, e.Confidence*100, source)
		if e.Reason != "" {
			fmt.Fprintf(&b, "   %s\n", e.Reason)
		}
		fmt.Fprintf(&b, "   …%s…\n", strings.ReplaceAll(e.Context, "\n", " "))
	}
	if resp := outcome.Response; resp != nil {
		writeList(&b, "Missing elements", resp.MissingElements)
		writeList(&b, "Formatting", resp.FormattingSuggestions)
		if resp.GeneralFeedback != "" {
			fmt.Fprintf(&b, "\nFeedback\n%s\n", resp.GeneralFeedback)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}
