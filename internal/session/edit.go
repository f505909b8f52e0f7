package session

import (
	"context"
	"strings"

	"github.com/verte-zerg/shuddho/internal/document"
	"github.com/verte-zerg/shuddho/internal/learning"
	"github.com/verte-zerg/shuddho/internal/model"
)

// AcceptSuggestion applies suggestion to the error with the given id. An
// empty suggestion means the first one. It reports false when the id is not
// an active error.
func (s *Session) AcceptSuggestion(ctx context.Context, id, suggestion string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.findLocked(id)
	if !ok {
		return false
	}
	suggestion = strings.TrimSpace(suggestion)
	if suggestion == "" {
		if len(e.Suggestions) == 0 {
			return false
		}
		suggestion = e.Suggestions[0]
	}

	s.pushLocked()
	if !s.applyLocked(e, suggestion) {
		s.popLocked()
		return false
	}
	s.learner.RecordDecision(ctx, learning.Decision{Error: e, Action: learning.ActionAccept, Suggestion: suggestion})
	s.selected = ""
	s.recomputeLocked()
	return true
}

func (s *Session) applyLocked(e model.SpellError, suggestion string) bool {
	if s.mode == ModeText {
		if _, err := s.doc.ReplaceOccurrences(e.IncorrectWord, suggestion); err != nil {
			s.logger.Warn("failed to replace occurrences", "word", e.IncorrectWord, "error", err)
			return false
		}
		text, err := s.doc.ReadText()
		if err != nil {
			s.logger.Warn("failed to read document", "error", err)
			return false
		}
		s.text = text
		s.rev++
		// Offsets of earlier resolutions no longer hold after a global replace.
		s.resolved = nil
		return true
	}

	runes := []rune(s.text)
	if e.Span.End > len(runes) || string(runes[e.Span.Start:e.Span.End]) != e.IncorrectWord {
		s.logger.Warn("error span is stale", "id", e.ID)
		return false
	}
	text, err := document.Splice(s.text, e.Span, suggestion)
	if err != nil {
		s.logger.Warn("failed to apply suggestion", "id", e.ID, "error", err)
		return false
	}
	if err := s.doc.WriteText(text); err != nil {
		s.logger.Warn("failed to write document", "error", err)
		return false
	}
	s.text = text
	s.rev++

	newLen := len([]rune(suggestion))
	delta := newLen - e.Span.Len()
	for i := range s.resolved {
		if s.resolved[i].Start >= e.Span.End {
			s.resolved[i].Start += delta
			s.resolved[i].End += delta
		}
	}
	s.resolved = append(s.resolved, model.Span{Start: e.Span.Start, End: e.Span.Start + newLen})
	return true
}

// DismissError ignores the error's word from now on, in this and later
// analyses.
func (s *Session) DismissError(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.findLocked(id)
	if !ok {
		return false
	}
	s.pushLocked()
	s.learner.RecordDecision(ctx, learning.Decision{Error: e, Action: learning.ActionIgnore})
	s.selected = ""
	s.recomputeLocked()
	return true
}

// RejectError leaves this occurrence unchanged without ignoring the word.
func (s *Session) RejectError(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.findLocked(id)
	if !ok {
		return false
	}
	s.pushLocked()
	s.resolved = append(s.resolved, e.Span)
	s.learner.RecordDecision(ctx, learning.Decision{Error: e, Action: learning.ActionReject})
	s.selected = ""
	s.recomputeLocked()
	return true
}

// Undo restores the text and ignore set from before the last edit.
func (s *Session) Undo(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return false
	}
	prev := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]

	if err := s.doc.WriteText(prev.text); err != nil {
		s.logger.Warn("failed to restore document", "error", err)
	}
	s.text = prev.text
	s.rev++
	s.learner.SetIgnored(ctx, prev.ignore)
	s.resolved = prev.resolved
	s.selected = ""
	s.recomputeLocked()
	return true
}

// IgnoreWord adds word to the ignore set as an undoable edit.
func (s *Session) IgnoreWord(ctx context.Context, word string) bool {
	word = strings.TrimSpace(word)
	s.mu.Lock()
	defer s.mu.Unlock()
	if word == "" || s.learner.IsIgnored(word) {
		return false
	}
	s.pushLocked()
	s.learner.Ignore(ctx, word)
	s.recomputeLocked()
	return true
}

// UnignoreWord removes word from the ignore set as an undoable edit.
func (s *Session) UnignoreWord(ctx context.Context, word string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.learner.IsIgnored(word) {
		return false
	}
	s.pushLocked()
	s.learner.Unignore(ctx, word)
	s.recomputeLocked()
	return true
}

// Reload picks up text changed outside the session. Undo history is dropped
// because it refers to the old text.
func (s *Session) Reload(_ context.Context) error {
	text, err := s.doc.ReadText()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
	s.rev++
	s.resolved = nil
	s.history = nil
	s.selected = ""
	s.recomputeLocked()
	return nil
}
