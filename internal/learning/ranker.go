package learning

import (
	"strings"

	"github.com/verte-zerg/shuddho/internal/model"
)

// RankSuggestions merges, in order, the best stored correction, personal
// vocabulary words related to word by substring, previously accepted
// replacements of word and the model suggestions. The result has no
// duplicates, never contains word itself and holds at most
// model.MaxSuggestions entries.
func (s *Store) RankSuggestions(word string, modelSuggestions []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, model.MaxSuggestions)
	seen := map[string]struct{}{word: {}}
	add := func(candidate string) {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			return
		}
		if _, ok := seen[candidate]; ok {
			return
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}

	if best, ok := s.bestCorrection(word); ok {
		add(best.Correct)
	}
	for _, w := range s.personalMatches(word) {
		add(w)
	}
	for i := len(s.history) - 1; i >= 0; i-- {
		entry := s.history[i]
		if entry.Accepted && entry.Word == word {
			add(entry.Suggestion)
		}
	}
	for _, m := range modelSuggestions {
		add(m)
	}

	if len(out) > model.MaxSuggestions {
		out = out[:model.MaxSuggestions]
	}
	return out
}

// personalMatches returns vocabulary words that contain word or are
// contained in it, in vocabulary order.
func (s *Store) personalMatches(word string) []string {
	needle := strings.ToLower(word)
	if needle == "" {
		return nil
	}
	var matches []string
	for _, entry := range s.vocabulary {
		candidate := strings.ToLower(entry.Word)
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
			matches = append(matches, entry.Word)
		}
	}
	return matches
}
