// Package model defines shared data structures.
package model

import "time"

// Kind classifies a spell error.
type Kind string

const (
	KindSpelling   Kind = "spelling"
	KindGrammar    Kind = "grammar"
	KindFormatting Kind = "formatting"
)

// Source records where a correction came from.
type Source string

const (
	SourceAI    Source = "ai"
	SourceLocal Source = "local"
	SourceUser  Source = "user"
)

// Origin records how a word entered the accepted vocabulary.
type Origin string

const (
	OriginSuggestion Origin = "suggestion"
	OriginManual     Origin = "manual"
)

// MaxSuggestions caps every suggestion list shown for an error.
const MaxSuggestions = 10

// Span is a half-open range of rune offsets into a text.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the number of runes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether two spans share at least one rune.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Correction is one (word, suggestion, confidence) tuple returned by the
// model or produced by the local fallback.
type Correction struct {
	Word         string
	Suggestion   string
	Alternatives []string
	Confidence   float64
	Reason       string
	Kind         Kind
	Source       Source
}

// SpellError is a located, uniquely identified error in the current text.
type SpellError struct {
	ID            string
	IncorrectWord string
	Suggestions   []string
	Context       string
	Span          Span
	Kind          Kind
	Confidence    float64
	Reason        string
	Source        Source
}

// AnalysisResponse is the structured output of one model analysis.
type AnalysisResponse struct {
	SpellingCorrections   []Correction
	MissingElements       []string
	FormattingSuggestions []string
	GeneralFeedback       string
}

// AnalysisRun records one analysis pass.
type AnalysisRun struct {
	ID          int64
	RunID       string
	StartedAt   time.Time
	EndedAt     time.Time
	Model       string
	Chars       int
	Corrections int
	Errors      int
	Fallback    bool
	Failure     string
}

// Duration returns the wall time of the run.
func (r AnalysisRun) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// CorrectionRecord is a stored incorrect/correct pair.
type CorrectionRecord struct {
	Incorrect      string    `json:"incorrect" yaml:"incorrect"`
	Correct        string    `json:"correct" yaml:"correct"`
	Confidence     float64   `json:"confidence" yaml:"confidence"`
	Timestamp      time.Time `json:"timestamp" yaml:"timestamp"`
	AcceptedByUser bool      `json:"acceptedByUser" yaml:"accepted_by_user"`
	UsageCount     int       `json:"usageCount" yaml:"usage_count"`
}

// AcceptedWord is an entry of the personal vocabulary.
type AcceptedWord struct {
	Word      string    `json:"word" yaml:"word"`
	Context   string    `json:"context" yaml:"context"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Origin    Origin    `json:"origin" yaml:"origin"`
}

// HistoryEntry is one accept or reject decision.
type HistoryEntry struct {
	Word       string    `json:"word" yaml:"word"`
	Suggestion string    `json:"suggestion" yaml:"suggestion"`
	Accepted   bool      `json:"accepted" yaml:"accepted"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	Source     Source    `json:"source" yaml:"source"`
}

// MistakePattern counts how often a word was involved in a decision.
type MistakePattern struct {
	Incorrect string `json:"incorrect" yaml:"incorrect"`
	Correct   string `json:"correct" yaml:"correct"`
	Frequency int    `json:"frequency" yaml:"frequency"`
}

// LearningState is the persisted learning data.
type LearningState struct {
	StoredCorrections []CorrectionRecord `json:"storedCorrections" yaml:"stored_corrections"`
	AcceptedWords     []AcceptedWord     `json:"userAcceptedWords" yaml:"accepted_words"`
	CorrectionHistory []HistoryEntry     `json:"correctionHistory" yaml:"correction_history"`
	MistakePatterns   []MistakePattern   `json:"mistakePatterns" yaml:"mistake_patterns"`
	IgnoreWords       []string           `json:"ignoreWords" yaml:"ignore_words"`
}

// ReportConfig defines filters for the learning report.
type ReportConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
	TopPatterns int
}
