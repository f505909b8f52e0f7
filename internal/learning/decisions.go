package learning

import (
	"context"
	"strings"

	"github.com/verte-zerg/shuddho/internal/model"
)

// Action is a user decision about a spell error.
type Action string

const (
	ActionAccept Action = "accept"
	ActionIgnore Action = "ignore"
	ActionReject Action = "reject"
)

// Decision describes what the user did with one error. Suggestion is the
// chosen replacement; empty means the first suggestion of the error.
type Decision struct {
	Error      model.SpellError
	Action     Action
	Suggestion string
}

func (d Decision) chosen() string {
	if s := strings.TrimSpace(d.Suggestion); s != "" {
		return s
	}
	if len(d.Error.Suggestions) > 0 {
		return d.Error.Suggestions[0]
	}
	return d.Error.IncorrectWord
}

// RecordDecision applies a decision to history, patterns, vocabulary,
// stored corrections and the ignore list, then persists once.
func (s *Store) RecordDecision(ctx context.Context, d Decision) {
	word := d.Error.IncorrectWord
	if word == "" {
		return
	}
	chosen := d.chosen()
	source := d.Error.Source
	if source == "" {
		source = model.SourceAI
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	accepted := d.Action == ActionAccept
	s.appendHistory(model.HistoryEntry{
		Word:       word,
		Suggestion: chosen,
		Accepted:   accepted,
		Timestamp:  now,
		Source:     source,
	})
	s.bumpPattern(word, chosen)

	switch d.Action {
	case ActionAccept:
		s.addVocabulary(chosen, d.Error.Context, model.OriginSuggestion)
		for i := range s.corrections {
			rec := &s.corrections[i]
			if rec.Incorrect == word && rec.Correct == chosen {
				rec.AcceptedByUser = true
				rec.UsageCount++
				rec.Timestamp = now
			}
		}
	case ActionIgnore:
		s.addIgnore(word)
	}
	s.persist(ctx)
}
