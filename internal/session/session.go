// Package session coordinates one review of a document: running analyses,
// accepting, dismissing and rejecting errors, and undoing those edits.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/verte-zerg/shuddho/internal/analysis"
	"github.com/verte-zerg/shuddho/internal/fallback"
	"github.com/verte-zerg/shuddho/internal/learning"
	"github.com/verte-zerg/shuddho/internal/locate"
	"github.com/verte-zerg/shuddho/internal/model"
)

// DefaultUndoLimit bounds the undo history.
const DefaultUndoLimit = 100

// ErrAnalysisInFlight is returned when an analysis is requested while
// another one is still running.
var ErrAnalysisInFlight = errors.New("analysis already in progress")

var errOffline = errors.New("no analyzer configured")

// Status messages shown after an analysis.
const (
	StatusChecking      = "checking document..."
	StatusDone          = "analysis complete"
	StatusClean         = "no errors found"
	StatusFallback      = "analysis failed, showing local suggestions"
	StatusEmptyFallback = "no model corrections, showing local suggestions"
	StatusOffline       = "offline, showing local suggestions"
)

// ReplaceMode selects how an accepted suggestion is written back.
type ReplaceMode string

const (
	// ModeSpan replaces only the accepted span.
	ModeSpan ReplaceMode = "span"
	// ModeText replaces every whole-word occurrence of the incorrect word.
	ModeText ReplaceMode = "text"
)

// ParseReplaceMode validates a replace mode name.
func ParseReplaceMode(s string) (ReplaceMode, error) {
	switch ReplaceMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSpan, "":
		return ModeSpan, nil
	case ModeText:
		return ModeText, nil
	default:
		return "", fmt.Errorf("unknown replace mode %q (want span or text)", s)
	}
}

// Document is the host document the session edits.
type Document interface {
	ReadText() (string, error)
	WriteText(text string) error
	ReplaceOccurrences(old, replacement string) (int, error)
	HighlightSpans(spans []model.Span) error
}

// Learner records decisions and owns the ignore set.
type Learner interface {
	StoreCorrections(ctx context.Context, corrections []model.Correction)
	RecordDecision(ctx context.Context, d learning.Decision)
	IgnoreWords() []string
	IsIgnored(word string) bool
	Ignore(ctx context.Context, words ...string) int
	Unignore(ctx context.Context, word string) bool
	SetIgnored(ctx context.Context, words []string)
}

// RunRecorder stores finished analysis runs.
type RunRecorder interface {
	InsertAnalysis(ctx context.Context, run model.AnalysisRun) (int64, error)
}

// Deps are the collaborators of a Session. Analyzer and Recorder may be nil.
type Deps struct {
	Document Document
	Learner  Learner
	Analyzer analysis.Analyzer
	Locator  *locate.Locator
	Fallback *fallback.Checker
	Recorder RunRecorder
	Logger   *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithReplaceMode sets how accepted suggestions are applied.
func WithReplaceMode(mode ReplaceMode) Option {
	return func(s *Session) {
		if mode != "" {
			s.mode = mode
		}
	}
}

// WithUndoLimit bounds the undo history. n <= 0 keeps the default.
func WithUndoLimit(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.undoLimit = n
		}
	}
}

// WithAnalysisTimeout bounds each analysis call.
func WithAnalysisTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// Outcome summarizes one analysis pass.
type Outcome struct {
	Response *model.AnalysisResponse
	Errors   []model.SpellError
	Fallback bool
	Failure  error
}

type snapshot struct {
	text     string
	ignore   []string
	resolved []model.Span
}

// Session is safe for concurrent use; the remote call runs without holding
// the session lock.
type Session struct {
	doc       Document
	learner   Learner
	analyzer  analysis.Analyzer
	locator   *locate.Locator
	fallback  *fallback.Checker
	recorder  RunRecorder
	logger    *slog.Logger
	mode      ReplaceMode
	undoLimit int
	timeout   time.Duration
	inFlight  *semaphore.Weighted

	mu          sync.Mutex
	text        string
	rev         uint64
	corrections []model.Correction
	response    *model.AnalysisResponse
	usedLocal   bool
	errors      []model.SpellError
	resolved    []model.Span
	history     []snapshot
	selected    string
	checking    bool
	status      string
}

// New creates a session over the document's current text.
func New(deps Deps, opts ...Option) (*Session, error) {
	if deps.Document == nil {
		return nil, fmt.Errorf("session: document is required")
	}
	if deps.Learner == nil {
		return nil, fmt.Errorf("session: learner is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Locator == nil {
		deps.Locator = locate.New(nil)
	}
	if deps.Fallback == nil {
		deps.Fallback = fallback.New(nil, deps.Locator)
	}
	text, err := deps.Document.ReadText()
	if err != nil {
		return nil, fmt.Errorf("session: failed to read document: %w", err)
	}
	s := &Session{
		doc:       deps.Document,
		learner:   deps.Learner,
		analyzer:  deps.Analyzer,
		locator:   deps.Locator,
		fallback:  deps.Fallback,
		recorder:  deps.Recorder,
		logger:    deps.Logger,
		mode:      ModeSpan,
		undoLimit: DefaultUndoLimit,
		timeout:   analysis.DefaultTimeout,
		inFlight:  semaphore.NewWeighted(1),
		text:      text,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RunAnalysis analyzes the current document text. Only one analysis runs at
// a time; a concurrent call returns ErrAnalysisInFlight. Model failures and
// empty model output fall back to local suggestions and are reported in
// Outcome rather than as an error.
func (s *Session) RunAnalysis(ctx context.Context) (Outcome, error) {
	if !s.inFlight.TryAcquire(1) {
		return Outcome{}, ErrAnalysisInFlight
	}
	defer s.inFlight.Release(1)

	s.mu.Lock()
	text, err := s.doc.ReadText()
	if err != nil {
		s.mu.Unlock()
		return Outcome{}, fmt.Errorf("session: failed to read document: %w", err)
	}
	rev := s.rev
	s.checking = true
	s.status = StatusChecking
	s.selected = ""
	s.mu.Unlock()

	run := model.AnalysisRun{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Chars:     len([]rune(text)),
	}

	var resp *model.AnalysisResponse
	aerr := errOffline
	if s.analyzer != nil {
		run.Model = s.analyzer.Model()
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		resp, aerr = s.analyzer.Analyze(callCtx, text)
		cancel()
	}

	outcome := s.applyAnalysis(ctx, text, rev, resp, aerr)

	run.EndedAt = time.Now()
	run.Fallback = outcome.Fallback
	run.Errors = len(outcome.Errors)
	s.mu.Lock()
	run.Corrections = len(s.corrections)
	s.mu.Unlock()
	if outcome.Failure != nil {
		run.Failure = outcome.Failure.Error()
	}
	s.record(ctx, run)
	return outcome, nil
}

// applyAnalysis installs the result of analysing text. When the session text
// changed since rev was taken, the result is located against the current
// text instead and earlier resolutions are kept.
func (s *Session) applyAnalysis(ctx context.Context, text string, rev uint64, resp *model.AnalysisResponse, aerr error) Outcome {
	useLocal := aerr != nil || resp == nil || len(resp.SpellingCorrections) == 0
	if !useLocal {
		s.learner.StoreCorrections(ctx, resp.SpellingCorrections)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.checking = false
	if s.rev == rev {
		s.text = text
		s.resolved = nil
	} else {
		s.logger.Debug("document edited during analysis, locating against current text")
	}
	s.response = resp
	s.usedLocal = useLocal

	outcome := Outcome{Response: resp, Fallback: useLocal}
	switch {
	case !useLocal:
		s.corrections = append([]model.Correction(nil), resp.SpellingCorrections...)
		s.status = StatusDone
	case errors.Is(aerr, errOffline):
		s.corrections = s.fallback.Corrections(s.text)
		s.status = StatusOffline
	case aerr != nil:
		s.logger.Warn("analysis failed, using local suggestions", "error", aerr)
		s.corrections = s.fallback.Corrections(s.text)
		s.status = StatusFallback
		outcome.Failure = aerr
	default:
		s.corrections = s.fallback.Corrections(s.text)
		s.status = StatusEmptyFallback
	}
	s.recomputeLocked()
	outcome.Errors = s.activeLocked()
	if len(outcome.Errors) == 0 && outcome.Failure == nil {
		s.status = StatusClean
	}
	return outcome
}

func (s *Session) record(ctx context.Context, run model.AnalysisRun) {
	if s.recorder == nil {
		return
	}
	if _, err := s.recorder.InsertAnalysis(ctx, run); err != nil {
		s.logger.Warn("failed to record analysis run", "run_id", run.RunID, "error", err)
	}
}

// recomputeLocked re-derives errors for the current text from the last
// known corrections, skipping resolved spans.
func (s *Session) recomputeLocked() {
	corrections := s.corrections
	if s.usedLocal {
		corrections = s.fallback.Corrections(s.text)
		s.corrections = corrections
	}
	s.errors = s.locator.Locate(s.text, corrections, s.resolved...)
	if s.selected != "" {
		if _, ok := s.findLocked(s.selected); !ok {
			s.selected = ""
		}
	}
	active := s.activeLocked()
	spans := make([]model.Span, len(active))
	for i, e := range active {
		spans[i] = e.Span
	}
	if err := s.doc.HighlightSpans(spans); err != nil {
		s.logger.Warn("failed to highlight errors", "error", err)
	}
}

func (s *Session) activeLocked() []model.SpellError {
	ignored := map[string]struct{}{}
	for _, w := range s.learner.IgnoreWords() {
		ignored[w] = struct{}{}
	}
	active := make([]model.SpellError, 0, len(s.errors))
	for _, e := range s.errors {
		if _, ok := ignored[e.IncorrectWord]; ok {
			continue
		}
		active = append(active, e)
	}
	return active
}

func (s *Session) findLocked(id string) (model.SpellError, bool) {
	for _, e := range s.activeLocked() {
		if e.ID == id {
			return e, true
		}
	}
	return model.SpellError{}, false
}

func (s *Session) pushLocked() {
	s.history = append(s.history, snapshot{
		text:     s.text,
		ignore:   s.learner.IgnoreWords(),
		resolved: append([]model.Span(nil), s.resolved...),
	})
	if over := len(s.history) - s.undoLimit; over > 0 {
		s.history = append([]snapshot(nil), s.history[over:]...)
	}
}

func (s *Session) popLocked() {
	if len(s.history) > 0 {
		s.history = s.history[:len(s.history)-1]
	}
}
