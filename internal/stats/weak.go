package stats

import (
	"sort"

	"github.com/verte-zerg/shuddho/internal/model"
)

// WordAggregate counts decisions about one flagged word.
type WordAggregate struct {
	Word     string
	Accepted int
	Declined int
}

// AcceptRate returns the share of accepted decisions.
func (a WordAggregate) AcceptRate() float64 {
	total := a.Accepted + a.Declined
	if total == 0 {
		return 1.0
	}
	return float64(a.Accepted) / float64(total)
}

// WordAggregates groups history by flagged word in first-seen order.
func WordAggregates(history []model.HistoryEntry) []WordAggregate {
	index := map[string]int{}
	var out []WordAggregate
	for _, h := range history {
		i, ok := index[h.Word]
		if !ok {
			i = len(out)
			index[h.Word] = i
			out = append(out, WordAggregate{Word: h.Word})
		}
		if h.Accepted {
			out[i].Accepted++
		} else {
			out[i].Declined++
		}
	}
	return out
}

// SelectNoisyWords returns up to top words whose suggestions were declined,
// lowest acceptance first. These are candidates for the ignore list.
func SelectNoisyWords(aggs []WordAggregate, top int) []WordAggregate {
	candidates := make([]WordAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Declined > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai, aj := candidates[i].AcceptRate(), candidates[j].AcceptRate()
		if ai != aj {
			return ai < aj
		}
		if candidates[i].Declined != candidates[j].Declined {
			return candidates[i].Declined > candidates[j].Declined
		}
		return candidates[i].Word < candidates[j].Word
	})
	if top > 0 && top < len(candidates) {
		candidates = candidates[:top]
	}
	return candidates
}
