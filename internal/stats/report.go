package stats

import (
	"context"

	"github.com/verte-zerg/shuddho/internal/model"
)

// DefaultTopPatterns is the number of patterns kept in a report.
const DefaultTopPatterns = 10

// RunLister lists recorded analysis runs.
type RunLister interface {
	ListAnalyses(ctx context.Context, cfg model.ReportConfig) ([]model.AnalysisRun, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	State    model.LearningState
	History  []model.HistoryEntry
	Runs     []model.AnalysisRun
	Patterns []model.MistakePattern
	Noisy    []WordAggregate
}

// BuildReport combines the learning state with recorded runs. Since and Last
// apply to both decisions and runs; a nil lister yields no runs.
func BuildReport(ctx context.Context, runs RunLister, state model.LearningState, cfg model.ReportConfig) (Report, error) {
	var list []model.AnalysisRun
	if runs != nil {
		var err error
		list, err = runs.ListAnalyses(ctx, cfg)
		if err != nil {
			return Report{}, err
		}
	}
	history := filterHistory(state.CorrectionHistory, cfg)
	top := cfg.TopPatterns
	if top <= 0 {
		top = DefaultTopPatterns
	}
	return Report{
		State:    state,
		History:  history,
		Runs:     list,
		Patterns: TopPatterns(state.MistakePatterns, top),
		Noisy:    SelectNoisyWords(WordAggregates(history), top),
	}, nil
}

func filterHistory(history []model.HistoryEntry, cfg model.ReportConfig) []model.HistoryEntry {
	out := make([]model.HistoryEntry, 0, len(history))
	for _, h := range history {
		if cfg.Since != nil && h.Timestamp.Before(*cfg.Since) {
			continue
		}
		out = append(out, h)
	}
	if cfg.Last > 0 && len(out) > cfg.Last {
		out = out[len(out)-cfg.Last:]
	}
	return out
}
