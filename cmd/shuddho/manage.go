package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/shuddho/internal/model"
	"github.com/verte-zerg/shuddho/internal/script"
	"github.com/verte-zerg/shuddho/internal/stats"
	"github.com/verte-zerg/shuddho/internal/wordlist"
)

const defaultImportLang = "bn"

var (
	importLang        string
	correctionsSearch string
	exportFormat      string
	exportOutput      string
)

func newIgnoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ignore",
		Short: "Manage ignored words",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List ignored words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLearning(cmd, false, func(_ context.Context, env *learningEnv) error {
				return writeLines(cmd.OutOrStdout(), env.learner.IgnoreWords())
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add WORD...",
		Short: "Ignore words",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLearning(cmd, false, func(ctx context.Context, env *learningEnv) error {
				n := env.learner.Ignore(ctx, normalizeWords(args)...)
				return reportCount(cmd.OutOrStdout(), "ignored", n)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove WORD...",
		Short: "Stop ignoring words",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLearning(cmd, false, func(ctx context.Context, env *learningEnv) error {
				n := 0
				for _, word := range normalizeWords(args) {
					if env.learner.Unignore(ctx, word) {
						n++
					}
				}
				return reportCount(cmd.OutOrStdout(), "removed", n)
			})
		},
	})
	cmd.AddCommand(newImportCmd("Ignore every word of a word list", func(ctx context.Context, env *learningEnv, words []string) int {
		return env.learner.Ignore(ctx, words...)
	}))
	return cmd
}

func newVocabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Manage the personal vocabulary",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List vocabulary words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLearning(cmd, false, func(_ context.Context, env *learningEnv) error {
				words := env.learner.Snapshot().AcceptedWords
				lines := make([]string, 0, len(words))
				for _, w := range words {
					lines = append(lines, fmt.Sprintf("%s\t%s\t%s", w.Word, w.Origin, w.Timestamp.Local().Format("2006-01-02")))
				}
				return writeLines(cmd.OutOrStdout(), lines)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add WORD...",
		Short: "Add words to the vocabulary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLearning(cmd, false, func(ctx context.Context, env *learningEnv) error {
				return reportCount(cmd.OutOrStdout(), "added", addVocabulary(ctx, env, normalizeWords(args)))
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove WORD...",
		Short: "Remove words from the vocabulary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLearning(cmd, false, func(ctx context.Context, env *learningEnv) error {
				n := 0
				for _, word := range normalizeWords(args) {
					if env.learner.RemoveAcceptedWord(ctx, word) {
						n++
					}
				}
				return reportCount(cmd.OutOrStdout(), "removed", n)
			})
		},
	})
	cmd.AddCommand(newImportCmd("Add every word of a word list to the vocabulary", addVocabulary))
	return cmd
}

func addVocabulary(ctx context.Context, env *learningEnv, words []string) int {
	n := 0
	for _, word := range words {
		if env.learner.AddAcceptedWord(ctx, word, "") {
			n++
		}
	}
	return n
}

// newImportCmd reads one word per line, keeps the words of --lang and hands
// them to add.
func newImportCmd(short string, add func(ctx context.Context, env *learningEnv, words []string) int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := wordlist.LoadWords(args[0])
			if err != nil {
				return fmt.Errorf("failed to load word list %s: %w", args[0], err)
			}
			kept := wordlist.Filter(words, wordlist.FilterForLang(importLang))
			if skipped := len(words) - len(kept); skipped > 0 {
				logErrf("skipped %d words not in %q\n", skipped, importLang)
			}
			return withLearning(cmd, false, func(ctx context.Context, env *learningEnv) error {
				return reportCount(cmd.OutOrStdout(), "imported", add(ctx, env, kept))
			})
		},
	}
	cmd.Flags().StringVar(&importLang, "lang", defaultImportLang, "keep only words of this language (bn, en or any)")
	return cmd
}

func newCorrectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corrections",
		Short: "Manage stored corrections",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored corrections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLearning(cmd, false, func(_ context.Context, env *learningEnv) error {
				query := script.Normalize(correctionsSearch)
				records := stats.SearchCorrections(env.learner.Snapshot().StoredCorrections, query)
				return stats.RenderCorrectionTable(cmd.OutOrStdout(), records)
			})
		},
	}
	list.Flags().StringVar(&correctionsSearch, "search", "", "only corrections containing this text")
	cmd.AddCommand(list)
	cmd.AddCommand(&cobra.Command{
		Use:   "delete INCORRECT CORRECT",
		Short: "Delete a stored correction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLearning(cmd, false, func(ctx context.Context, env *learningEnv) error {
				incorrect := script.Normalize(args[0])
				correct := script.Normalize(args[1])
				if !env.learner.DeleteCorrection(ctx, incorrect, correct) {
					return fmt.Errorf("no stored correction %s → %s", incorrect, correct)
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %s → %s\n", incorrect, correct)
				return err
			})
		},
	})
	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export learning data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLearning(cmd, false, func(_ context.Context, env *learningEnv) error {
				data, err := encodeState(env.learner.Snapshot(), exportFormat)
				if err != nil {
					return err
				}
				if exportOutput == "" || exportOutput == "-" {
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.MkdirAll(filepath.Dir(exportOutput), 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
				if err := os.WriteFile(exportOutput, data, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", exportOutput, err)
				}
				logErrf("Wrote %s\n", exportOutput)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&exportFormat, "format", "json", "output format (json or yaml)")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	return cmd
}

func encodeState(state model.LearningState, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "":
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		data, err := yaml.Marshal(state)
		if err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}

func normalizeWords(args []string) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if word := script.Normalize(strings.TrimSpace(arg)); word != "" {
			out = append(out, word)
		}
	}
	return out
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func reportCount(w io.Writer, verb string, n int) error {
	noun := "words"
	if n == 1 {
		noun = "word"
	}
	_, err := fmt.Fprintf(w, "%s %d %s\n", verb, n, noun)
	return err
}
