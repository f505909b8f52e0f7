package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/shuddho/internal/model"
	"github.com/verte-zerg/shuddho/internal/stats"
	"github.com/verte-zerg/shuddho/internal/statsui"
)

var (
	statsPlain       bool
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsTop         int
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show learning stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the dashboard")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N decisions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsTop, "top", stats.DefaultTopPatterns, "number of patterns and words listed")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	since, err := parseSince(statsSince)
	if err != nil {
		return err
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}
	cfg := model.ReportConfig{
		Since:       since,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		TopPatterns: statsTop,
	}

	plain := statsPlain || !stdoutIsTerminal()
	return withLearning(cmd, !plain, func(ctx context.Context, env *learningEnv) error {
		if plain {
			report, err := stats.BuildReport(ctx, env.store, env.learner.Snapshot(), cfg)
			if err != nil {
				return fmt.Errorf("failed to build report: %w", err)
			}
			return writeStatsReport(cmd.OutOrStdout(), report, cfg.CurveWindow)
		}
		m := statsui.NewModel(ctx, env.learner, env.store, cfg)
		program := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	})
}

func writeStatsReport(w io.Writer, report stats.Report, window int) error {
	if err := stats.RenderSummary(w, report); err != nil {
		return err
	}
	if err := stats.RenderCurves(w, report, window); err != nil {
		return err
	}
	if err := stats.RenderPatternTable(w, report.Patterns); err != nil {
		return err
	}
	if len(report.Noisy) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return stats.RenderWordTable(w, report.Noisy)
}
