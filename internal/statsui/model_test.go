package statsui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/shuddho/internal/learning"
	"github.com/verte-zerg/shuddho/internal/model"
)

func newTestModel(t *testing.T) (*Model, *learning.Store) {
	t.Helper()
	ctx := context.Background()
	store := learning.New(nil)
	store.StoreCorrection(ctx, "সম্বব", "সম্ভব", 0.9)
	store.StoreCorrection(ctx, "উজ্জল", "উজ্জ্বল", 0.5)
	store.AddAcceptedWord(ctx, "শুদ্ধ", "")
	m := NewModel(ctx, store, nil, model.ReportConfig{CurveWindow: 5})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, store
}

func press(m *Model, key string) {
	switch key {
	case "enter":
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	case "right":
		m.Update(tea.KeyMsg{Type: tea.KeyRight})
	default:
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	}
}

func TestOverviewShowsCounts(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()
	if !strings.Contains(view, "Corrections") || !strings.Contains(view, "Vocabulary") {
		t.Fatalf("expected summary cards in overview, got %q", view)
	}
}

func TestCorrectionsTabOrdersByConfidence(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "right")
	if m.activeTab != tabCorrections {
		t.Fatalf("expected corrections tab, got %d", m.activeTab)
	}
	if len(m.corrRows) != 2 || m.corrRows[0].Incorrect != "সম্বব" {
		t.Fatalf("unexpected rows %+v", m.corrRows)
	}
}

func TestSearchFiltersCorrections(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "right")
	press(m, "/")
	if !m.searchMode {
		t.Fatalf("expected search mode")
	}
	press(m, "উজ্জল")
	if len(m.corrRows) != 1 || m.corrRows[0].Correct != "উজ্জ্বল" {
		t.Fatalf("expected filtered rows, got %+v", m.corrRows)
	}
	press(m, "esc")
	if m.query != "" || len(m.corrRows) != 2 {
		t.Fatalf("expected search cleared, query=%q rows=%d", m.query, len(m.corrRows))
	}
}

func TestDeleteCorrection(t *testing.T) {
	m, store := newTestModel(t)
	press(m, "right")
	press(m, "x")
	state := store.Snapshot()
	if len(state.StoredCorrections) != 1 || state.StoredCorrections[0].Incorrect != "উজ্জল" {
		t.Fatalf("expected first row deleted, got %+v", state.StoredCorrections)
	}
	if len(m.corrRows) != 1 {
		t.Fatalf("expected table refreshed, got %d rows", len(m.corrRows))
	}
	if !strings.Contains(m.notice, "সম্বব") {
		t.Fatalf("unexpected notice %q", m.notice)
	}
}

func TestRemoveVocabularyWord(t *testing.T) {
	m, store := newTestModel(t)
	press(m, "right")
	press(m, "right")
	if m.activeTab != tabVocabulary || len(m.vocabRows) != 1 {
		t.Fatalf("unexpected vocabulary state tab=%d rows=%d", m.activeTab, len(m.vocabRows))
	}
	press(m, "x")
	if len(store.Snapshot().AcceptedWords) != 0 {
		t.Fatalf("expected vocabulary word removed")
	}
}

func TestSearchOnOverviewShowsNotice(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "/")
	if m.searchMode || m.notice == "" {
		t.Fatalf("expected notice instead of search on overview")
	}
}

func TestFilterFormValidates(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "f")
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[1].SetValue("-3")
	press(m, "enter")
	if !m.filterMode || m.filterError == "" {
		t.Fatalf("expected validation error")
	}
	m.filterInputs[1].SetValue("4")
	m.filterInputs[2].SetValue("10")
	press(m, "enter")
	if m.filterMode || m.cfg.Last != 4 || m.cfg.CurveWindow != 10 {
		t.Fatalf("expected filter applied, got %+v", m.cfg)
	}
}

func TestCurveWindowSteps(t *testing.T) {
	cases := []struct {
		in, next, prev int
	}{
		{1, 5, 1},
		{5, 10, 1},
		{7, 10, 5},
		{10, 15, 5},
	}
	for _, tc := range cases {
		if got := nextCurveWindow(tc.in); got != tc.next {
			t.Fatalf("next(%d)=%d, want %d", tc.in, got, tc.next)
		}
		if got := prevCurveWindow(tc.in); got != tc.prev {
			t.Fatalf("prev(%d)=%d, want %d", tc.in, got, tc.prev)
		}
	}
}
