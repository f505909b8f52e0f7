package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/shuddho/internal/model"
)

func writeDoc(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	return path
}

func TestOpenNormalizesText(t *testing.T) {
	doc, err := Open(writeDoc(t, "\u0995\u09C7\u09BE"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	text, _ := doc.ReadText()
	if text != "\u0995\u09CB" {
		t.Fatalf("expected NFC text, got %q", text)
	}
	if doc.Dirty() {
		t.Fatalf("fresh document must not be dirty")
	}
}

func TestReplaceOccurrencesWholeWords(t *testing.T) {
	doc := New("সম্বব, অসম্বব আর সম্বব।")
	n, err := doc.ReplaceOccurrences("সম্বব", "সম্ভব")
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 replacements, got %d", n)
	}
	text, _ := doc.ReadText()
	if text != "সম্ভব, অসম্বব আর সম্ভব।" {
		t.Fatalf("unexpected text %q", text)
	}
	if !doc.Dirty() {
		t.Fatalf("expected dirty after replace")
	}
	if _, err := doc.ReplaceOccurrences("", "x"); err == nil {
		t.Fatalf("expected error for empty search text")
	}
}

func TestSplice(t *testing.T) {
	got, err := Splice("আমি সম্বব বলি", model.Span{Start: 4, End: 9}, "সম্ভব")
	if err != nil {
		t.Fatalf("splice: %v", err)
	}
	if got != "আমি সম্ভব বলি" {
		t.Fatalf("unexpected splice result %q", got)
	}
	if _, err := Splice("ab", model.Span{Start: 1, End: 5}, "x"); err == nil {
		t.Fatalf("expected range error")
	}
}

func TestHighlightSpansValidatesRange(t *testing.T) {
	doc := New("abc")
	if err := doc.HighlightSpans([]model.Span{{Start: 0, End: 2}}); err != nil {
		t.Fatalf("highlight: %v", err)
	}
	if len(doc.Highlights()) != 1 {
		t.Fatalf("expected one highlight")
	}
	if err := doc.HighlightSpans([]model.Span{{Start: 2, End: 9}}); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := writeDoc(t, "প্রথম")
	doc, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := doc.WriteText("দুই"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(path, []byte("বাইরের"), 0o600); err != nil {
		t.Fatalf("external write: %v", err)
	}
	if _, err := doc.Reload(); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if err := doc.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "দুই" {
		t.Fatalf("unexpected file contents %q", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected mode preserved, got %v", info.Mode().Perm())
	}

	if changed, err := doc.Reload(); err != nil || changed {
		t.Fatalf("expected no change after own save, changed=%v err=%v", changed, err)
	}
	if err := os.WriteFile(path, []byte("তিন"), 0o600); err != nil {
		t.Fatalf("external write: %v", err)
	}
	changed, err := doc.Reload()
	if err != nil || !changed {
		t.Fatalf("expected reload to pick up change, changed=%v err=%v", changed, err)
	}
	text, _ := doc.ReadText()
	if text != "তিন" {
		t.Fatalf("unexpected text after reload %q", text)
	}
}

func TestWatchReportsExternalWrites(t *testing.T) {
	path := writeDoc(t, "এক")
	doc, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := doc.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if err := os.WriteFile(path, []byte("দুই"), 0o600); err != nil {
		t.Fatalf("external write: %v", err)
	}
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected a change notification")
	}
	cancel()
	for range changes {
	}
}

func TestSaveWithoutPath(t *testing.T) {
	if err := New("x").Save(); err == nil {
		t.Fatalf("expected error saving in-memory document")
	}
}
