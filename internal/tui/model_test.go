package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/shuddho/internal/document"
	"github.com/verte-zerg/shuddho/internal/learning"
	"github.com/verte-zerg/shuddho/internal/session"
)

func newTestModel(t *testing.T, text string) (*Model, *session.Session, *document.File) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	doc := document.New(text)
	s, err := session.New(session.Deps{
		Document: doc,
		Learner:  learning.New(nil, learning.WithLogger(logger)),
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	m := NewModel(context.Background(), s, doc, nil, logger)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	outcome, err := s.RunAnalysis(context.Background())
	m.Update(analysisDoneMsg{outcome: outcome, err: err})
	return m, s, doc
}

func press(m *Model, key string) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	return cmd
}

func TestModelAcceptAndUndo(t *testing.T) {
	m, s, doc := newTestModel(t, "এটা সম্বব নয়")
	if len(m.errors) != 1 {
		t.Fatalf("expected 1 error after analysis, got %d", len(m.errors))
	}
	if m.status != session.StatusOffline {
		t.Fatalf("unexpected status %q", m.status)
	}

	press(m, "1")
	if got := s.Text(); !strings.Contains(got, "সম্ভব") {
		t.Fatalf("expected suggestion applied, got %q", got)
	}
	if len(m.errors) != 0 || !m.dirty || m.undoDepth != 1 {
		t.Fatalf("unexpected state errors=%d dirty=%v undo=%d", len(m.errors), m.dirty, m.undoDepth)
	}

	press(m, "u")
	text, _ := doc.ReadText()
	if text != "এটা সম্বব নয়" || len(m.errors) != 1 {
		t.Fatalf("undo did not restore the text: %q", text)
	}
	if m.notice != "undone" {
		t.Fatalf("unexpected notice %q", m.notice)
	}
}

func TestModelDismissAndIgnoreEditor(t *testing.T) {
	m, s, _ := newTestModel(t, "সম্বব এবং উজ্জল")
	if len(m.errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(m.errors))
	}

	press(m, "d")
	if len(m.errors) != 1 {
		t.Fatalf("expected dismiss to hide the error, got %d", len(m.errors))
	}

	press(m, "i")
	if !m.ignoreMode {
		t.Fatalf("expected ignore editor to open")
	}
	m.ignore.SetValue("উজ্জল")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.errors) != 0 {
		t.Fatalf("expected ignored word to hide its error")
	}
	if words := s.IgnoredWords(); len(words) != 2 {
		t.Fatalf("unexpected ignore set %v", words)
	}
	if !strings.Contains(m.renderPanel(), "উজ্জল") {
		t.Fatalf("expected ignore list in panel")
	}

	m.ignore.SetValue("সম্বব")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.errors) != 1 {
		t.Fatalf("expected removing a word to bring its error back")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.ignoreMode {
		t.Fatalf("expected esc to close the editor")
	}
}

func TestModelHoldsEditsWhileChecking(t *testing.T) {
	m, s, doc := newTestModel(t, "এটা সম্বব নয়")
	m.checking = true

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	press(m, "1")
	press(m, "d")
	text, _ := doc.ReadText()
	if text != "এটা সম্বব নয়" || s.Text() != text {
		t.Fatalf("expected text unchanged while checking, got doc=%q session=%q", text, s.Text())
	}
	if m.notice != session.StatusChecking {
		t.Fatalf("unexpected notice %q", m.notice)
	}
	if s.UndoDepth() != 0 || len(s.IgnoredWords()) != 0 {
		t.Fatalf("expected no edits recorded, undo=%d ignored=%v", s.UndoDepth(), s.IgnoredWords())
	}

	press(m, "i")
	if m.ignoreMode {
		t.Fatalf("expected ignore editor to stay closed while checking")
	}

	m.checking = false
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := s.Text(); got != "এটা সম্ভব নয়" {
		t.Fatalf("expected accept after checking, got %q", got)
	}
}

func TestModelQuitAsksBeforeDroppingEdits(t *testing.T) {
	m, _, _ := newTestModel(t, "সম্বব")
	press(m, "1")
	if cmd := press(m, "q"); cmd != nil {
		t.Fatalf("expected first q to warn about unsaved edits")
	}
	if !strings.Contains(m.notice, "unsaved") {
		t.Fatalf("unexpected notice %q", m.notice)
	}
	cmd := press(m, "q")
	if cmd == nil {
		t.Fatalf("expected second q to quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
}

func TestModelViewShowsSelection(t *testing.T) {
	m, _, _ := newTestModel(t, "এটা সম্বব নয়")
	view := m.View()
	if !containsAll(view, []string{"untitled", "1/1", "1. সম্ভব", "Errors 1"}) {
		t.Fatalf("view missing expected parts:\n%s", view)
	}
	if m.selectedLine != 0 {
		t.Fatalf("expected selected error on the first line, got %d", m.selectedLine)
	}
}
