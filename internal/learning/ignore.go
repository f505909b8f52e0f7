package learning

import (
	"context"
	"strings"
)

// IgnoreWords returns the ignore set in insertion order.
func (s *Store) IgnoreWords() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.ignore...)
}

// IsIgnored reports whether word is in the ignore set.
func (s *Store) IsIgnored(word string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexIgnored(word) >= 0
}

// Ignore adds words to the ignore set and returns how many were new.
func (s *Store) Ignore(ctx context.Context, words ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, w := range words {
		if s.addIgnore(w) {
			added++
		}
	}
	if added > 0 {
		s.persist(ctx)
	}
	return added
}

// Unignore removes word from the ignore set.
func (s *Store) Unignore(ctx context.Context, word string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexIgnored(word)
	if idx < 0 {
		return false
	}
	s.ignore = append(s.ignore[:idx], s.ignore[idx+1:]...)
	s.persist(ctx)
	return true
}

// SetIgnored replaces the ignore set.
func (s *Store) SetIgnored(ctx context.Context, words []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ignore = nil
	for _, w := range words {
		s.addIgnore(w)
	}
	s.persist(ctx)
}

func (s *Store) addIgnore(word string) bool {
	word = strings.TrimSpace(word)
	if word == "" || s.indexIgnored(word) >= 0 {
		return false
	}
	s.ignore = append(s.ignore, word)
	return true
}

func (s *Store) indexIgnored(word string) int {
	for i, w := range s.ignore {
		if w == word {
			return i
		}
	}
	return -1
}
