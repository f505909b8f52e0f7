// Package document provides a file-backed text document that the review
// session reads, edits and highlights.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/verte-zerg/shuddho/internal/locate"
	"github.com/verte-zerg/shuddho/internal/model"
	"github.com/verte-zerg/shuddho/internal/script"
)

// ErrConflict is returned by Reload when the file changed on disk while the
// buffer holds unsaved edits.
var ErrConflict = errors.New("document changed on disk with unsaved edits")

// File is an in-memory buffer of a text file. Text is kept in NFC.
type File struct {
	mu         sync.Mutex
	path       string
	text       string
	dirty      bool
	highlights []model.Span
}

// Open reads the file at path.
func Open(path string) (*File, error) {
	text, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return &File{path: path, text: text}, nil
}

// New returns an unsaved document holding text.
func New(text string) *File {
	return &File{text: script.Normalize(text)}
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return script.Normalize(string(data)), nil
}

// Path returns the backing file path, empty for in-memory documents.
func (f *File) Path() string {
	return f.path
}

// ReadText returns the current text.
func (f *File) ReadText() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, nil
}

// WriteText replaces the whole text.
func (f *File) WriteText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	text = script.Normalize(text)
	if text != f.text {
		f.text = text
		f.dirty = true
	}
	return nil
}

// ReplaceOccurrences replaces every whole-word occurrence of old with
// replacement and returns how many were replaced.
func (f *File) ReplaceOccurrences(old, replacement string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	old = script.Normalize(old)
	if old == "" {
		return 0, fmt.Errorf("replace: empty search text")
	}
	spans := locate.Occurrences(f.text, old)
	if len(spans) == 0 {
		return 0, nil
	}
	runes := []rune(f.text)
	repl := []rune(script.Normalize(replacement))
	// Right to left so earlier offsets stay valid.
	for i := len(spans) - 1; i >= 0; i-- {
		runes = splice(runes, spans[i], repl)
	}
	f.text = string(runes)
	f.dirty = true
	return len(spans), nil
}

// HighlightSpans records the spans currently flagged as errors.
func (f *File) HighlightSpans(spans []model.Span) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len([]rune(f.text))
	for _, s := range spans {
		if s.Start < 0 || s.End > n || s.Start > s.End {
			return fmt.Errorf("highlight span %d-%d out of range", s.Start, s.End)
		}
	}
	f.highlights = append([]model.Span(nil), spans...)
	return nil
}

// Highlights returns the last highlighted spans.
func (f *File) Highlights() []model.Span {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Span(nil), f.highlights...)
}

// Dirty reports whether the buffer has unsaved edits.
func (f *File) Dirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirty
}

// Save writes the buffer back to its file atomically.
func (f *File) Save() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.path == "" {
		return fmt.Errorf("document has no file path")
	}
	if err := writeFileAtomic(f.path, f.text); err != nil {
		return err
	}
	f.dirty = false
	return nil
}

// Reload re-reads the file. It reports whether the text changed and returns
// ErrConflict instead of discarding unsaved edits.
func (f *File) Reload() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.path == "" {
		return false, nil
	}
	text, err := readFile(f.path)
	if err != nil {
		return false, err
	}
	if text == f.text {
		return false, nil
	}
	if f.dirty {
		return false, ErrConflict
	}
	f.text = text
	f.highlights = nil
	return true, nil
}

// Splice returns text with span replaced by replacement. Offsets are runes.
func Splice(text string, span model.Span, replacement string) (string, error) {
	runes := []rune(text)
	if span.Start < 0 || span.End > len(runes) || span.Start > span.End {
		return "", fmt.Errorf("span %d-%d out of range", span.Start, span.End)
	}
	return string(splice(runes, span, []rune(replacement))), nil
}

func splice(runes []rune, span model.Span, repl []rune) []rune {
	out := make([]rune, 0, len(runes)-span.Len()+len(repl))
	out = append(out, runes[:span.Start]...)
	out = append(out, repl...)
	return append(out, runes[span.End:]...)
}

func writeFileAtomic(path, text string) error {
	info, statErr := os.Stat(path)
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".shuddho-*")
	if err != nil {
		return fmt.Errorf("failed to create temp document: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.WriteString(text); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close document: %w", err)
	}
	if statErr == nil {
		if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to keep document mode: %w", err)
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}
