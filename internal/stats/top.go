package stats

import (
	"sort"
	"strings"

	"github.com/verte-zerg/shuddho/internal/model"
)

// TopPatterns returns the n most frequent mistake patterns.
func TopPatterns(patterns []model.MistakePattern, n int) []model.MistakePattern {
	if n <= 0 || len(patterns) == 0 {
		return nil
	}
	out := append([]model.MistakePattern(nil), patterns...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency == out[j].Frequency {
			return out[i].Incorrect < out[j].Incorrect
		}
		return out[i].Frequency > out[j].Frequency
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// SortCorrections orders records by confidence, then usage, then word.
func SortCorrections(records []model.CorrectionRecord) []model.CorrectionRecord {
	out := append([]model.CorrectionRecord(nil), records...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		if out[i].UsageCount != out[j].UsageCount {
			return out[i].UsageCount > out[j].UsageCount
		}
		return out[i].Incorrect < out[j].Incorrect
	})
	return out
}

// SearchCorrections keeps records whose incorrect or correct form contains
// query. An empty query keeps everything.
func SearchCorrections(records []model.CorrectionRecord, query string) []model.CorrectionRecord {
	query = strings.TrimSpace(query)
	if query == "" {
		return append([]model.CorrectionRecord(nil), records...)
	}
	var out []model.CorrectionRecord
	for _, rec := range records {
		if strings.Contains(rec.Incorrect, query) || strings.Contains(rec.Correct, query) {
			out = append(out, rec)
		}
	}
	return out
}
