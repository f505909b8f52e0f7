package fallback

import (
	"testing"

	"github.com/verte-zerg/shuddho/internal/model"
)

type mapLookup map[string]model.CorrectionRecord

func (m mapLookup) BestCorrection(word string) (model.CorrectionRecord, bool) {
	rec, ok := m[word]
	return rec, ok
}

func TestCheckConfusableTable(t *testing.T) {
	errs := New(nil, nil).Check("এটা সম্বব নয়")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %+v", errs)
	}
	got := errs[0]
	if got.IncorrectWord != "সম্বব" || got.Confidence != TableConfidence {
		t.Fatalf("unexpected error %+v", got)
	}
	if len(got.Suggestions) != 1 || got.Suggestions[0] != "সম্ভব" {
		t.Fatalf("unexpected suggestions %v", got.Suggestions)
	}
	if got.Source != model.SourceLocal || got.Kind != model.KindSpelling {
		t.Fatalf("unexpected source/kind %q/%q", got.Source, got.Kind)
	}
	if got.Span != (model.Span{Start: 4, End: 9}) {
		t.Fatalf("unexpected span %+v", got.Span)
	}
}

func TestCheckPrefersStoredCorrection(t *testing.T) {
	lookup := mapLookup{
		"সম্বব": {Incorrect: "সম্বব", Correct: "সম্ভবপর", Confidence: 0.95},
		"ভুলে":  {Incorrect: "ভুলে", Correct: "ভুল"},
	}
	corrs := New(lookup, nil).Corrections("সম্বব ভুলে সম্বব")
	if len(corrs) != 2 {
		t.Fatalf("expected one correction per distinct token, got %+v", corrs)
	}
	if corrs[0].Suggestion != "সম্ভবপর" || corrs[0].Confidence != 0.95 {
		t.Fatalf("expected stored correction, got %+v", corrs[0])
	}
	if corrs[1].Confidence != StoredConfidence {
		t.Fatalf("expected default stored confidence, got %v", corrs[1].Confidence)
	}
}

func TestCheckIgnoresCleanText(t *testing.T) {
	if errs := New(mapLookup{}, nil).Check("আমি ভাত খাই। hello"); len(errs) != 0 {
		t.Fatalf("expected no errors, got %+v", errs)
	}
	if errs := New(nil, nil).Check(""); len(errs) != 0 {
		t.Fatalf("expected no errors for empty text")
	}
}

func TestWithConfusablesExtendsTable(t *testing.T) {
	c := New(nil, nil, WithConfusables(map[string][]string{
		"ইমেল": {"ইমেইল", "ই-মেইল"},
		"খালি": nil,
	}))
	errs := c.Check("ইমেল খালি")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %+v", errs)
	}
	if len(errs[0].Suggestions) != 2 || errs[0].Suggestions[1] != "ই-মেইল" {
		t.Fatalf("unexpected suggestions %v", errs[0].Suggestions)
	}
}

func TestEveryOccurrenceIsLocated(t *testing.T) {
	errs := New(nil, nil).Check("সম্বব, সম্বব।")
	if len(errs) != 2 {
		t.Fatalf("expected both occurrences, got %+v", errs)
	}
}
