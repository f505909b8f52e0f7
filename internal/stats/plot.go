package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/shuddho/internal/model"
)

// Bar is one labeled value of a bar chart.
type Bar struct {
	Label string
	Value float64
}

const (
	minBarWidth         = 10
	barSeparator        = " │ "
	barFill             = "█"
	terminalWidthBackup = 80
)

// PatternBars turns mistake patterns into bars labeled "wrong → right".
func PatternBars(patterns []model.MistakePattern) []Bar {
	bars := make([]Bar, 0, len(patterns))
	for _, p := range patterns {
		bars = append(bars, Bar{
			Label: p.Incorrect + " → " + p.Correct,
			Value: float64(p.Frequency),
		})
	}
	return bars
}

// RenderBars prints a horizontal bar chart scaled to the largest value.
// A width <= 0 uses the terminal width.
func RenderBars(w io.Writer, title string, bars []Bar, width int) error {
	if len(bars) == 0 {
		return nil
	}
	if width <= 0 {
		width = terminalWidth()
	}
	labelWidth := 0
	valueWidth := 0
	maxVal := 0.0
	for _, b := range bars {
		labelWidth = max(labelWidth, displayWidth(b.Label))
		valueWidth = max(valueWidth, len(formatValue(b.Value)))
		maxVal = math.Max(maxVal, b.Value)
	}
	area := BarWidthFor(width, labelWidth, valueWidth)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for _, b := range bars {
		n := 0
		if maxVal > 0 && b.Value > 0 {
			n = max(1, int(math.Round(b.Value/maxVal*float64(area))))
		}
		line := padCell(b.Label, labelWidth, false) + barSeparator +
			strings.Repeat(barFill, n) + " " + formatValue(b.Value)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// BarWidthFor returns how many cells the bars may use on a line of
// totalWidth after the label column and value.
func BarWidthFor(totalWidth, labelWidth, valueWidth int) int {
	width := totalWidth - labelWidth - displayWidth(barSeparator) - valueWidth - 1
	if width < minBarWidth {
		return minBarWidth
	}
	return width
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
