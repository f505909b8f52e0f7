// Package stats contains learning statistics and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/shuddho/internal/model"
)

const sparkChars = " .:-=+*#%@"

// AcceptRate counts accepted decisions in history.
func AcceptRate(history []model.HistoryEntry) (accepted, total int, rate float64) {
	for _, h := range history {
		if h.Accepted {
			accepted++
		}
	}
	total = len(history)
	if total > 0 {
		rate = float64(accepted) / float64(total)
	}
	return accepted, total, rate
}

// RunMetrics summarizes analysis runs.
type RunMetrics struct {
	Runs         int
	FallbackRuns int
	FailedRuns   int
	Errors       int
	Chars        int
	AvgErrors    float64
	AvgLatencyMs float64
}

// SummarizeRuns aggregates run counters.
func SummarizeRuns(runs []model.AnalysisRun) RunMetrics {
	m := RunMetrics{Runs: len(runs)}
	if len(runs) == 0 {
		return m
	}
	var latency int64
	for _, r := range runs {
		if r.Fallback {
			m.FallbackRuns++
		}
		if r.Failure != "" {
			m.FailedRuns++
		}
		m.Errors += r.Errors
		m.Chars += r.Chars
		latency += r.Duration().Milliseconds()
	}
	m.AvgErrors = float64(m.Errors) / float64(len(runs))
	m.AvgLatencyMs = float64(latency) / float64(len(runs))
	return m
}

// ErrorDensity returns errors per 1000 characters for each run.
func ErrorDensity(runs []model.AnalysisRun) []float64 {
	out := make([]float64, len(runs))
	for i, r := range runs {
		if r.Chars > 0 {
			out[i] = float64(r.Errors) * 1000 / float64(r.Chars)
		}
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints the headline numbers of a report.
func RenderSummary(w io.Writer, r Report) error {
	accepted, total, rate := AcceptRate(r.History)
	runs := SummarizeRuns(r.Runs)
	lines := []string{
		"Summary",
		fmt.Sprintf("Stored corrections: %d", len(r.State.StoredCorrections)),
		fmt.Sprintf("Vocabulary: %d", len(r.State.AcceptedWords)),
		fmt.Sprintf("Ignored words: %d", len(r.State.IgnoreWords)),
		fmt.Sprintf("Decisions: %d (%d accepted, %.1f%%)", total, accepted, rate*100),
		fmt.Sprintf("Analyses: %d (%d local fallback, %d failed)", runs.Runs, runs.FallbackRuns, runs.FailedRuns),
	}
	if runs.Runs > 0 {
		lines = append(lines,
			fmt.Sprintf("Avg errors per analysis: %.2f", runs.AvgErrors),
			fmt.Sprintf("Avg analysis time: %.0f ms", runs.AvgLatencyMs))
	}
	for _, line := range append(lines, "") {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints sparklines of error density and decision acceptance.
func RenderCurves(w io.Writer, r Report, window int) error {
	if len(r.Runs) == 0 && len(r.History) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Trends"); err != nil {
		return err
	}
	if len(r.Runs) > 0 {
		density := MovingAverage(ErrorDensity(r.Runs), window)
		last := density[len(density)-1]
		if _, err := fmt.Fprintf(w, "Errors/1k chars  %s  %.2f\n", Sparkline(density), last); err != nil {
			return err
		}
	}
	if len(r.History) > 0 {
		accepts := make([]float64, len(r.History))
		for i, h := range r.History {
			if h.Accepted {
				accepts[i] = 100
			}
		}
		accepts = MovingAverage(accepts, window)
		last := accepts[len(accepts)-1]
		if _, err := fmt.Fprintf(w, "Accepted %%       %s  %.1f%%\n", Sparkline(accepts), last); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderPatternTable prints the most frequent mistake patterns.
func RenderPatternTable(w io.Writer, patterns []model.MistakePattern) error {
	if len(patterns) == 0 {
		_, err := fmt.Fprintln(w, "No mistake patterns found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Frequent Mistakes"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(patterns))
	for _, p := range patterns {
		rows = append(rows, []string{p.Incorrect, p.Correct, fmt.Sprintf("%d", p.Frequency)})
	}
	return writeTable(w, []string{"Word", "Correction", "Count"}, rows, map[int]bool{2: true})
}

// RenderCorrectionTable prints stored corrections, most confident first.
func RenderCorrectionTable(w io.Writer, records []model.CorrectionRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No stored corrections found.")
		return err
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range SortCorrections(records) {
		accepted := ""
		if rec.AcceptedByUser {
			accepted = "yes"
		}
		rows = append(rows, []string{
			rec.Incorrect,
			rec.Correct,
			fmt.Sprintf("%.2f", rec.Confidence),
			fmt.Sprintf("%d", rec.UsageCount),
			accepted,
			rec.Timestamp.Local().Format("2006-01-02"),
		})
	}
	return writeTable(w, []string{"Word", "Correction", "Confidence", "Used", "Accepted", "Seen"}, rows, map[int]bool{2: true, 3: true})
}

// RenderWordTable prints per-word decision counts.
func RenderWordTable(w io.Writer, aggs []WordAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No decisions found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Often Declined"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, []string{
			agg.Word,
			fmt.Sprintf("%d", agg.Accepted),
			fmt.Sprintf("%d", agg.Declined),
			fmt.Sprintf("%.0f%%", agg.AcceptRate()*100),
		})
	}
	return writeTable(w, []string{"Word", "Accepted", "Declined", "Rate"}, rows, map[int]bool{1: true, 2: true, 3: true})
}

func writeTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool) error {
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
