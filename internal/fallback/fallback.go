// Package fallback finds likely errors without the remote model, from stored
// corrections and a table of commonly confused spellings.
package fallback

import (
	"github.com/verte-zerg/shuddho/internal/locate"
	"github.com/verte-zerg/shuddho/internal/model"
	"github.com/verte-zerg/shuddho/internal/script"
)

const (
	// StoredConfidence is used when a stored correction carries no confidence.
	StoredConfidence = 0.6
	// TableConfidence is assigned to confusable-table matches.
	TableConfidence = 0.7

	tableReason = "commonly confused spelling"
)

// CorrectionLookup returns the best stored correction for a word.
type CorrectionLookup interface {
	BestCorrection(word string) (model.CorrectionRecord, bool)
}

// Option configures a Checker.
type Option func(*Checker)

// WithConfusables adds entries to the built-in confusable table. Entries for
// an existing word replace it.
func WithConfusables(table map[string][]string) Option {
	return func(c *Checker) {
		for wrong, rights := range table {
			if len(rights) > 0 {
				c.table[script.Normalize(wrong)] = append([]string(nil), rights...)
			}
		}
	}
}

// Checker is the local fallback checker.
type Checker struct {
	lookup  CorrectionLookup
	locator *locate.Locator
	table   map[string][]string
}

// New returns a Checker. A nil lookup uses only the confusable table; a nil
// locator positions errors without ranking.
func New(lookup CorrectionLookup, locator *locate.Locator, opts ...Option) *Checker {
	if locator == nil {
		locator = locate.New(nil)
	}
	c := &Checker{
		lookup:  lookup,
		locator: locator,
		table:   make(map[string][]string, len(builtinConfusables)),
	}
	for wrong, rights := range builtinConfusables {
		c.table[script.Normalize(wrong)] = rights
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Corrections returns one correction per distinct flagged token of text.
func (c *Checker) Corrections(text string) []model.Correction {
	var out []model.Correction
	seen := map[string]struct{}{}
	for _, tok := range script.Tokens(script.Normalize(text)) {
		if _, ok := seen[tok.Text]; ok {
			continue
		}
		seen[tok.Text] = struct{}{}
		if corr, ok := c.check(tok.Text); ok {
			out = append(out, corr)
		}
	}
	return out
}

// Check returns positioned errors for text, which is expected in NFC.
func (c *Checker) Check(text string) []model.SpellError {
	return c.locator.Locate(text, c.Corrections(text))
}

func (c *Checker) check(word string) (model.Correction, bool) {
	if c.lookup != nil {
		if rec, ok := c.lookup.BestCorrection(word); ok && rec.Correct != word {
			confidence := rec.Confidence
			if confidence <= 0 {
				confidence = StoredConfidence
			}
			return model.Correction{
				Word:       word,
				Suggestion: rec.Correct,
				Confidence: confidence,
				Kind:       model.KindSpelling,
				Source:     model.SourceLocal,
			}, true
		}
	}
	rights, ok := c.table[word]
	if !ok || len(rights) == 0 {
		return model.Correction{}, false
	}
	return model.Correction{
		Word:         word,
		Suggestion:   rights[0],
		Alternatives: append([]string(nil), rights[1:]...),
		Confidence:   TableConfidence,
		Reason:       tableReason,
		Kind:         model.KindSpelling,
		Source:       model.SourceLocal,
	}, true
}
