package stats

import (
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Source", "Rate", "Runs"}
	rows := [][]string{
		{"ai", "97.50%", "12"},
		{"local", "8.00%", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Source   Rate Runs" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "ai     97.50%   12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "local   8.00%    3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableUsesDisplayWidth(t *testing.T) {
	lines := formatTable([]string{"Word", "Count"}, [][]string{
		{"চাকুরিজিবি", "3"},
		{"সম্বব", "12"},
		{"উজ্জ্বল", "1"},
	}, map[int]bool{1: true})
	if displayWidth("সম্বব") >= len([]rune("সম্বব")) {
		t.Fatalf("expected hasanta to take no cells")
	}
	want := runewidth.StringWidth(lines[0])
	for _, line := range lines[1:] {
		if got := runewidth.StringWidth(line); got != want {
			t.Fatalf("line %q has width %d, want %d", line, got, want)
		}
	}
}
