// Package learning persists user corrections, personal vocabulary, decision
// history, mistake patterns and the ignore list, and ranks suggestions with
// them.
package learning

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/shuddho/internal/model"
)

// BlobName is the name under which the learning state is persisted.
const BlobName = "bengaliSpellingLearning"

// DefaultHistoryLimit bounds the decision history.
const DefaultHistoryLimit = 5000

// Backend stores the serialized learning state.
type Backend interface {
	LoadBlob(ctx context.Context, name string) ([]byte, bool, error)
	SaveBlob(ctx context.Context, name string, data []byte) error
}

// Option configures a Store.
type Option func(*Store)

// WithHistoryLimit keeps at most n history entries. n <= 0 keeps the default.
func WithHistoryLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger used for degraded persistence.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store is the single writer of all persisted learning records. All methods
// are safe for concurrent use.
type Store struct {
	mu           sync.Mutex
	backend      Backend
	logger       *slog.Logger
	now          func() time.Time
	historyLimit int

	corrections []model.CorrectionRecord
	vocabulary  []model.AcceptedWord
	history     []model.HistoryEntry
	patterns    []model.MistakePattern
	ignore      []string
}

// New creates an empty store. A nil backend keeps everything in memory.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:      backend,
		logger:       slog.Default(),
		now:          time.Now,
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory state with the persisted one. It never fails:
// a missing or unreadable blob leaves an empty state.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.apply(model.LearningState{})
	if s.backend == nil {
		return
	}
	data, ok, err := s.backend.LoadBlob(ctx, BlobName)
	if err != nil {
		s.logger.Warn("failed to load learning data, starting empty", "error", err)
		return
	}
	if !ok {
		s.logger.Debug("no learning data stored yet")
		return
	}
	var state model.LearningState
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("learning data is corrupt, starting empty", "error", err)
		return
	}
	s.apply(state)
	s.logger.Debug("learning data loaded",
		"corrections", len(s.corrections),
		"vocabulary", len(s.vocabulary),
		"history", len(s.history))
}

// Flush persists the current state.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx)
}

func (s *Store) save(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	data, err := json.Marshal(s.state())
	if err != nil {
		return err
	}
	return s.backend.SaveBlob(ctx, BlobName, data)
}

// persist saves and logs failures; callers keep working in memory.
func (s *Store) persist(ctx context.Context) {
	if err := s.save(ctx); err != nil {
		s.logger.Warn("failed to save learning data", "error", err)
	}
}

func (s *Store) apply(state model.LearningState) {
	s.corrections = append([]model.CorrectionRecord(nil), state.StoredCorrections...)
	s.vocabulary = append([]model.AcceptedWord(nil), state.AcceptedWords...)
	s.history = append([]model.HistoryEntry(nil), state.CorrectionHistory...)
	s.patterns = append([]model.MistakePattern(nil), state.MistakePatterns...)
	s.ignore = nil
	for _, w := range state.IgnoreWords {
		s.addIgnore(w)
	}
	s.trimHistory()
}

func (s *Store) state() model.LearningState {
	return model.LearningState{
		StoredCorrections: append([]model.CorrectionRecord{}, s.corrections...),
		AcceptedWords:     append([]model.AcceptedWord{}, s.vocabulary...),
		CorrectionHistory: append([]model.HistoryEntry{}, s.history...),
		MistakePatterns:   append([]model.MistakePattern{}, s.patterns...),
		IgnoreWords:       append([]string{}, s.ignore...),
	}
}

// Snapshot returns a deep copy of the learning state.
func (s *Store) Snapshot() model.LearningState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

// Reset clears all learning data.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(model.LearningState{})
	s.persist(ctx)
}

// StoreCorrection records a suggested correction. Confidence only grows.
func (s *Store) StoreCorrection(ctx context.Context, incorrect, correct string, confidence float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.upsertCorrection(incorrect, correct, confidence) {
		return
	}
	s.persist(ctx)
}

// StoreCorrections records a batch of corrections with a single save.
func (s *Store) StoreCorrections(ctx context.Context, corrections []model.Correction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for _, c := range corrections {
		if s.upsertCorrection(c.Word, c.Suggestion, c.Confidence) {
			changed = true
		}
	}
	if changed {
		s.persist(ctx)
	}
}

func (s *Store) upsertCorrection(incorrect, correct string, confidence float64) bool {
	incorrect = strings.TrimSpace(incorrect)
	correct = strings.TrimSpace(correct)
	if incorrect == "" || correct == "" || incorrect == correct {
		return false
	}
	confidence = clamp01(confidence)
	now := s.now().UTC()
	for i := range s.corrections {
		rec := &s.corrections[i]
		if rec.Incorrect == incorrect && rec.Correct == correct {
			if confidence > rec.Confidence {
				rec.Confidence = confidence
			}
			rec.Timestamp = now
			return true
		}
	}
	s.corrections = append(s.corrections, model.CorrectionRecord{
		Incorrect:  incorrect,
		Correct:    correct,
		Confidence: confidence,
		Timestamp:  now,
	})
	return true
}

// BestCorrection returns the stored correction for word with the highest
// confidence; ties go to the most recently seen record.
func (s *Store) BestCorrection(word string) (model.CorrectionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bestCorrection(word)
}

func (s *Store) bestCorrection(word string) (model.CorrectionRecord, bool) {
	var best model.CorrectionRecord
	found := false
	for _, rec := range s.corrections {
		if rec.Incorrect != word {
			continue
		}
		if !found || rec.Confidence > best.Confidence ||
			(rec.Confidence == best.Confidence && rec.Timestamp.After(best.Timestamp)) {
			best = rec
			found = true
		}
	}
	return best, found
}

// DeleteCorrection removes one stored correction.
func (s *Store) DeleteCorrection(ctx context.Context, incorrect, correct string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.corrections {
		if rec.Incorrect == incorrect && rec.Correct == correct {
			s.corrections = append(s.corrections[:i], s.corrections[i+1:]...)
			s.persist(ctx)
			return true
		}
	}
	return false
}

// AddAcceptedWord adds a word to the personal vocabulary by hand.
func (s *Store) AddAcceptedWord(ctx context.Context, word, note string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.addVocabulary(word, note, model.OriginManual) {
		return false
	}
	s.persist(ctx)
	return true
}

// RemoveAcceptedWord removes a word from the personal vocabulary.
func (s *Store) RemoveAcceptedWord(ctx context.Context, word string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, entry := range s.vocabulary {
		if entry.Word == word {
			s.vocabulary = append(s.vocabulary[:i], s.vocabulary[i+1:]...)
			s.persist(ctx)
			return true
		}
	}
	return false
}

// addVocabulary inserts word or refreshes its timestamp.
func (s *Store) addVocabulary(word, note string, origin model.Origin) bool {
	word = strings.TrimSpace(word)
	if word == "" {
		return false
	}
	now := s.now().UTC()
	for i := range s.vocabulary {
		if s.vocabulary[i].Word == word {
			s.vocabulary[i].Timestamp = now
			return true
		}
	}
	s.vocabulary = append(s.vocabulary, model.AcceptedWord{
		Word:      word,
		Context:   note,
		Timestamp: now,
		Origin:    origin,
	})
	return true
}

func (s *Store) appendHistory(entry model.HistoryEntry) {
	s.history = append(s.history, entry)
	s.trimHistory()
}

func (s *Store) trimHistory() {
	if over := len(s.history) - s.historyLimit; over > 0 {
		s.history = append([]model.HistoryEntry(nil), s.history[over:]...)
	}
}

func (s *Store) bumpPattern(incorrect, correct string) {
	for i := range s.patterns {
		if s.patterns[i].Incorrect == incorrect {
			s.patterns[i].Frequency++
			return
		}
	}
	s.patterns = append(s.patterns, model.MistakePattern{
		Incorrect: incorrect,
		Correct:   correct,
		Frequency: 1,
	})
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
