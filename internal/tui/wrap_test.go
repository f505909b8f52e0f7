package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/shuddho/internal/model"
)

func tonesOf(runes []styledRune) []tone {
	out := make([]tone, len(runes))
	for i, r := range runes {
		out[i] = r.tone
	}
	return out
}

func TestBuildStyledRunesMarksErrors(t *testing.T) {
	text := []rune("ab cd ef")
	errs := []model.SpellError{
		{ID: "e1", Span: model.Span{Start: 3, End: 5}, Kind: model.KindSpelling},
		{ID: "e2", Span: model.Span{Start: 6, End: 8}, Kind: model.KindGrammar},
	}

	runes := buildStyledRunes(text, errs, "")
	got := tonesOf(runes)
	want := []tone{toneText, toneText, toneText, toneSpelling, toneSpelling, toneText, toneGrammar, toneGrammar}
	if len(got) != len(want) {
		t.Fatalf("expected %d runes, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rune %d: expected tone %d, got %d", i, want[i], got[i])
		}
	}

	runes = buildStyledRunes(text, errs, "e2")
	if runes[6].tone != toneSelected || runes[3].tone != toneSpelling {
		t.Fatalf("expected selected error to use the selected tone")
	}
}

func TestBuildStyledRunesKeepsClusters(t *testing.T) {
	// ক + ি is one display cell.
	runes := buildStyledRunes([]rune("কি ক"), nil, "")
	if len(runes) != 3 {
		t.Fatalf("expected 3 clusters, got %d", len(runes))
	}
	if runes[0].s != "কি" || runes[0].width != 1 {
		t.Fatalf("unexpected cluster %q width %d", runes[0].s, runes[0].width)
	}
	if !runes[1].isSpace {
		t.Fatalf("expected a space cluster")
	}
}

func TestBuildStyledRunesNewlines(t *testing.T) {
	runes := buildStyledRunes([]rune("a\r\nb\tc"), nil, "")
	if len(runes) != 5 {
		t.Fatalf("expected 5 items, got %d", len(runes))
	}
	if !runes[1].isNewline {
		t.Fatalf("expected a newline item, got %+v", runes[1])
	}
	if !runes[3].isSpace || runes[3].s != " " {
		t.Fatalf("expected tab shown as a space, got %+v", runes[3])
	}
}

func TestWrapLinesBreaksAtSpaces(t *testing.T) {
	runes := buildStyledRunes([]rune("one two three"), nil, "")
	lines := wrapLines(runes, 8)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if plain(lines[0]) != "one two" || plain(lines[1]) != "three" {
		t.Fatalf("unexpected lines %q / %q", plain(lines[0]), plain(lines[1]))
	}
}

func TestWrapLinesHardBreaks(t *testing.T) {
	runes := buildStyledRunes([]rune("ab\n\ncd"), nil, "")
	lines := wrapLines(runes, 0)
	if len(lines) != 3 || plain(lines[1]) != "" || plain(lines[2]) != "cd" {
		t.Fatalf("unexpected lines %d", len(lines))
	}
	if out := wrapStyledRunes(runes, 0); strings.Count(out, "\n") != 2 {
		t.Fatalf("expected two newlines in %q", out)
	}
}

func TestWrapLinesSplitsLongWords(t *testing.T) {
	lines := wrapLines(buildStyledRunes([]rune("abcdefgh"), nil, ""), 3)
	if len(lines) != 3 || plain(lines[2]) != "gh" {
		t.Fatalf("unexpected lines %d", len(lines))
	}
}

func TestLineOfTone(t *testing.T) {
	text := []rune("one two three four")
	errs := []model.SpellError{{ID: "e", Span: model.Span{Start: 14, End: 18}}}
	lines := wrapLines(buildStyledRunes(text, errs, "e"), 8)
	if got := lineOfTone(lines, toneSelected); got != 2 {
		t.Fatalf("expected selected error on line 2, got %d", got)
	}
	if got := lineOfTone(lines, toneGrammar); got != -1 {
		t.Fatalf("expected -1 for missing tone, got %d", got)
	}
}

func TestRenderStyledRunesGroupsRuns(t *testing.T) {
	runes := buildStyledRunes([]rune("ab cd"), []model.SpellError{{ID: "e", Span: model.Span{Start: 3, End: 5}}}, "")
	want := textStyle.Render("ab ") + spellingStyle.Render("cd")
	if got := renderStyledRunes(runes); got != want {
		t.Fatalf("unexpected render %q, want %q", got, want)
	}
}

func plain(line []styledRune) string {
	var b strings.Builder
	for _, r := range line {
		b.WriteString(r.s)
	}
	return b.String()
}
