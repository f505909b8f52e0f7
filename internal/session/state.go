package session

import "github.com/verte-zerg/shuddho/internal/model"

// ActiveErrors returns the current errors minus those whose word is ignored.
func (s *Session) ActiveErrors() []model.SpellError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

// Select marks an active error as the one being inspected.
func (s *Session) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.findLocked(id); !ok {
		return false
	}
	s.selected = id
	return true
}

// Selected returns the inspected error, if any.
func (s *Session) Selected() (model.SpellError, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == "" {
		return model.SpellError{}, false
	}
	return s.findLocked(s.selected)
}

// ClearSelection closes the inspected error.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
}

// Text returns the session's view of the document text.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Response returns the last model response, nil before the first analysis
// or after a failed one.
func (s *Session) Response() *model.AnalysisResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.response
}

// Checking reports whether an analysis is running.
func (s *Session) Checking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checking
}

// Status returns the last status message.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// UsedFallback reports whether the current errors come from local checks.
func (s *Session) UsedFallback() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usedLocal
}

// UndoDepth returns the number of undoable edits.
func (s *Session) UndoDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// Mode returns the replace mode.
func (s *Session) Mode() ReplaceMode {
	return s.mode
}

// IgnoredWords returns the current ignore set.
func (s *Session) IgnoredWords() []string {
	return s.learner.IgnoreWords()
}
