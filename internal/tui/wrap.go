package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/shuddho/internal/model"
	"github.com/verte-zerg/shuddho/internal/script"
)

type tone int

const (
	toneText tone = iota
	toneSpelling
	toneGrammar
	toneSelected
)

// styledRune is one display cluster: a base rune plus the zero-width runes
// that follow it, so escape codes never split a conjunct or vowel sign.
type styledRune struct {
	s         string
	tone      tone
	width     int
	isSpace   bool
	isNewline bool
}

func buildStyledRunes(text []rune, errs []model.SpellError, selected string) []styledRune {
	tones := make([]tone, len(text))
	for _, e := range errs {
		t := toneSpelling
		switch {
		case e.ID == selected:
			t = toneSelected
		case e.Kind == model.KindGrammar || e.Kind == model.KindFormatting:
			t = toneGrammar
		}
		for i := max(0, e.Span.Start); i < e.Span.End && i < len(text); i++ {
			tones[i] = t
		}
	}

	out := make([]styledRune, 0, len(text))
	for i := 0; i < len(text); {
		r := text[i]
		switch r {
		case '\r':
			i++
			continue
		case '\n':
			out = append(out, styledRune{tone: toneText, isNewline: true})
			i++
			continue
		case '\t':
			r = ' '
		}
		j := i + 1
		for j < len(text) && joinsCluster(text[j]) {
			j++
		}
		s := string(r)
		if j > i+1 {
			s += string(text[i+1 : j])
		}
		out = append(out, styledRune{
			s:       s,
			tone:    tones[i],
			width:   runewidth.StringWidth(s),
			isSpace: r == ' ',
		})
		i = j
	}
	return out
}

func joinsCluster(r rune) bool {
	if r == '\n' || r == '\r' || r == '\t' || r == ' ' {
		return false
	}
	return script.IsJoiner(r) || runewidth.RuneWidth(r) == 0
}

// renderStyledRunes renders runs of equal tone with a single style call.
func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for i := 0; i < len(runes); {
		j := i
		var run strings.Builder
		for j < len(runes) && runes[j].tone == runes[i].tone && !runes[j].isNewline {
			run.WriteString(runes[j].s)
			j++
		}
		if j == i {
			b.WriteRune('\n')
			i++
			continue
		}
		b.WriteString(styleFor(runes[i].tone).Render(run.String()))
		i = j
	}
	return b.String()
}

func wrapStyledRunes(runes []styledRune, width int) string {
	lines := wrapLines(runes, width)
	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = renderStyledRunes(line)
	}
	return strings.Join(rendered, "\n")
}

// wrapLines breaks runes into display lines at spaces, hard newlines and,
// for words wider than width, mid-word.
func wrapLines(runes []styledRune, width int) [][]styledRune {
	var lines [][]styledRune
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if item.isNewline {
			lines = append(lines, line)
			line = []styledRune{}
			lineWidth = 0
			lastSpaceIdx = -1
			i++
			continue
		}
		if width > 0 && lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				lines = append(lines, line[:lastSpaceIdx])
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				lines = append(lines, line)
				line = []styledRune{}
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	return append(lines, line)
}

// lineOfTone returns the first wrapped line holding a rune of tone t, or -1.
func lineOfTone(lines [][]styledRune, t tone) int {
	for i, line := range lines {
		for _, item := range line {
			if item.tone == t {
				return i
			}
		}
	}
	return -1
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
