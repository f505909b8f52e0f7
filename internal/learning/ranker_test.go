package learning

import (
	"context"
	"fmt"
	"testing"

	"github.com/verte-zerg/shuddho/internal/model"
)

func TestRankSuggestionsOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(nil)
	s.StoreCorrection(ctx, "সম্বব", "সম্ভব", 0.9)
	s.AddAcceptedWord(ctx, "অসম্ববতা", "")
	s.RecordDecision(ctx, Decision{
		Error:      model.SpellError{IncorrectWord: "সম্বব"},
		Action:     ActionAccept,
		Suggestion: "সম্ভবত",
	})

	got := s.RankSuggestions("সম্বব", []string{"সম্ভব", "শম্বব"})
	want := []string{"সম্ভব", "অসম্ববতা", "সম্ভবত", "শম্বব"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %q, got %q (full %v)", i, want[i], got[i], got)
		}
	}
}

func TestRankSuggestionsCapAndUnique(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(nil)
	for i := 0; i < 8; i++ {
		s.AddAcceptedWord(ctx, fmt.Sprintf("ab%d", i), "")
	}
	suggestions := make([]string, 0, 12)
	for i := 0; i < 6; i++ {
		suggestions = append(suggestions, fmt.Sprintf("m%d", i), fmt.Sprintf("m%d", i))
	}
	got := s.RankSuggestions("ab", suggestions)
	if len(got) != model.MaxSuggestions {
		t.Fatalf("expected %d suggestions, got %d", model.MaxSuggestions, len(got))
	}
	seen := map[string]bool{}
	for _, g := range got {
		if seen[g] {
			t.Fatalf("duplicate suggestion %q in %v", g, got)
		}
		seen[g] = true
	}
}

func TestRankSuggestionsExcludesWordAndBlanks(t *testing.T) {
	s := newTestStore(nil)
	got := s.RankSuggestions("word", []string{"word", " ", "", "words"})
	if len(got) != 1 || got[0] != "words" {
		t.Fatalf("unexpected suggestions %v", got)
	}
}

func TestRankSuggestionsEmptyState(t *testing.T) {
	s := newTestStore(nil)
	if got := s.RankSuggestions("x", nil); len(got) != 0 {
		t.Fatalf("expected no suggestions, got %v", got)
	}
}
