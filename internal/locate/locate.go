// Package locate maps model corrections onto exact, non-overlapping spans of
// the document text.
package locate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/shuddho/internal/model"
	"github.com/verte-zerg/shuddho/internal/script"
)

// DefaultContextRadius is the number of runes shown on each side of an error.
const DefaultContextRadius = 20

// Ranker turns raw model suggestions into the final suggestion list.
type Ranker interface {
	RankSuggestions(word string, modelSuggestions []string) []string
}

// Option configures a Locator.
type Option func(*Locator)

// WithContextRadius sets how many runes of context surround each error.
func WithContextRadius(n int) Option {
	return func(l *Locator) {
		if n >= 0 {
			l.radius = n
		}
	}
}

// Locator positions corrections in text.
type Locator struct {
	ranker Ranker
	radius int
}

// New returns a Locator. A nil ranker keeps the raw model suggestions.
func New(ranker Ranker, opts ...Option) *Locator {
	l := &Locator{ranker: ranker, radius: DefaultContextRadius}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate returns one error per whole-word occurrence of every correction.
// Higher-confidence corrections claim spans first; an occurrence that
// overlaps a claimed or excluded span is dropped. Errors are ordered by
// position.
func (l *Locator) Locate(text string, corrections []model.Correction, exclude ...model.Span) []model.SpellError {
	if text == "" || len(corrections) == 0 {
		return nil
	}
	runes := []rune(text)

	ordered := append([]model.Correction(nil), corrections...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Confidence > ordered[j].Confidence
	})

	claimed := append([]model.Span(nil), exclude...)
	var errs []model.SpellError
	for _, c := range ordered {
		word := script.Normalize(strings.TrimSpace(c.Word))
		suggestion := script.Normalize(strings.TrimSpace(c.Suggestion))
		if word == "" || word == suggestion {
			continue
		}
		spans := occurrences(runes, []rune(word))
		if len(spans) == 0 {
			continue
		}
		suggestions := l.suggestions(word, suggestion, c.Alternatives)
		kind := c.Kind
		if kind == "" {
			kind = model.KindSpelling
		}
		source := c.Source
		if source == "" {
			source = model.SourceAI
		}
		for _, span := range spans {
			if overlapsAny(span, claimed) {
				continue
			}
			claimed = append(claimed, span)
			errs = append(errs, model.SpellError{
				ID:            fmt.Sprintf("err-%s-%d", word, span.Start),
				IncorrectWord: word,
				Suggestions:   append([]string(nil), suggestions...),
				Context:       l.context(runes, span),
				Span:          span,
				Kind:          kind,
				Confidence:    c.Confidence,
				Reason:        c.Reason,
				Source:        source,
			})
		}
	}
	sort.SliceStable(errs, func(i, j int) bool {
		return errs[i].Span.Start < errs[j].Span.Start
	})
	return errs
}

func (l *Locator) suggestions(word, suggestion string, alternatives []string) []string {
	raw := make([]string, 0, 1+len(alternatives))
	if suggestion != "" {
		raw = append(raw, suggestion)
	}
	for _, alt := range alternatives {
		if alt = script.Normalize(strings.TrimSpace(alt)); alt != "" {
			raw = append(raw, alt)
		}
	}

	var ranked []string
	if l.ranker != nil {
		ranked = l.ranker.RankSuggestions(word, raw)
	} else {
		ranked = dedupe(raw, word)
	}
	if len(ranked) > model.MaxSuggestions {
		ranked = ranked[:model.MaxSuggestions]
	}
	if suggestion == "" {
		return ranked
	}
	for _, s := range ranked {
		if s == suggestion {
			return ranked
		}
	}
	// The model's own suggestion always survives the cap.
	if len(ranked) < model.MaxSuggestions {
		return append(ranked, suggestion)
	}
	ranked[len(ranked)-1] = suggestion
	return ranked
}

func (l *Locator) context(runes []rune, span model.Span) string {
	start := span.Start - l.radius
	if start < 0 {
		start = 0
	}
	end := span.End + l.radius
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[start:end])
}

// Occurrences returns the spans of every whole-word occurrence of word in text.
func Occurrences(text, word string) []model.Span {
	return occurrences([]rune(text), []rune(word))
}

func occurrences(runes, word []rune) []model.Span {
	n := len(word)
	if n == 0 || n > len(runes) {
		return nil
	}
	var spans []model.Span
	for i := 0; i+n <= len(runes); {
		if runes[i] == word[0] && equalRunes(runes[i:i+n], word) && script.IsBoundary(runes, i, i+n) {
			spans = append(spans, model.Span{Start: i, End: i + n})
			i += n
			continue
		}
		i++
	}
	return spans
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func overlapsAny(span model.Span, claimed []model.Span) bool {
	for _, c := range claimed {
		if span.Overlaps(c) {
			return true
		}
	}
	return false
}

func dedupe(values []string, skip string) []string {
	seen := map[string]struct{}{skip: {}}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
