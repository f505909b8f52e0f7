// Package statsui provides the Bubble Tea learning dashboard.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/shuddho/internal/model"
	"github.com/verte-zerg/shuddho/internal/stats"
)

const (
	tabOverview = iota
	tabCorrections
	tabVocabulary
	tabPatterns
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Learning is the learning data the dashboard shows and edits.
type Learning interface {
	Snapshot() model.LearningState
	DeleteCorrection(ctx context.Context, incorrect, correct string) bool
	RemoveAcceptedWord(ctx context.Context, word string) bool
}

// Model implements the Bubble Tea learning dashboard.
type Model struct {
	ctx      context.Context
	learning Learning
	runs     stats.RunLister
	cfg      model.ReportConfig

	report stats.Report
	errMsg string
	notice string

	tabs       []string
	activeTab  int
	viewports  []viewport.Model
	corrTable  table.Model
	vocabTable table.Model
	corrRows   []model.CorrectionRecord
	vocabRows  []model.AcceptedWord

	width  int
	height int

	searchMode  bool
	searchInput textinput.Model
	query       string

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a dashboard model. runs may be nil.
func NewModel(ctx context.Context, learning Learning, runs stats.RunLister, cfg model.ReportConfig) *Model {
	m := &Model{
		ctx:      ctx,
		learning: learning,
		runs:     runs,
		cfg:      cfg,
		tabs:     []string{"Overview", "Corrections", "Vocabulary", "Patterns"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.corrTable = newTable(correctionColumns())
	m.vocabTable = newTable(vocabularyColumns())
	m.searchInput = newInput("Search: ")
	m.filterInputs = []textinput.Model{
		newInput("Since (YYYY-MM-DD): "),
		newInput("Last: "),
		newInput("Curve window: "),
	}
	m.setInputsFromConfig()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.searchMode {
			return m.updateSearch(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.renderTabContents()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.renderTabContents()
			return m, nil
		case "/":
			return m.startSearch()
		case "f":
			return m.startFilter()
		case "x":
			m.deleteSelected()
			return m, nil
		case "g", "home":
			if t := m.activeTable(); t != nil {
				t.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if t := m.activeTable(); t != nil {
				t.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if t := m.activeTable(); t != nil {
				var cmd tea.Cmd
				*t, cmd = t.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) activeTable() *table.Model {
	switch m.activeTab {
	case tabCorrections:
		return &m.corrTable
	case tabVocabulary:
		return &m.vocabTable
	default:
		return nil
	}
}

func newInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(1, lipgloss.Height(activeNavStyle.Render("X")))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.searchMode {
		footerHeight++
	}
	if !m.filterMode && (m.errMsg != "" || m.notice != "") {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) setInputsFromConfig() {
	if m.cfg.Since != nil {
		m.filterInputs[0].SetValue(m.cfg.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[0].SetValue("")
	}
	if m.cfg.Last > 0 {
		m.filterInputs[1].SetValue(strconv.Itoa(m.cfg.Last))
	} else {
		m.filterInputs[1].SetValue("")
	}
	m.filterInputs[2].SetValue(strconv.Itoa(m.cfg.CurveWindow))
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	for _, t := range []*table.Model{&m.corrTable, &m.vocabTable} {
		t.SetWidth(m.width)
		t.SetHeight(max(1, bodyHeight-1))
		adjustTableHeight(t, bodyHeight)
	}
	for i := range m.filterInputs {
		m.filterInputs[i].Width = max(10, m.width-lipgloss.Width(m.filterInputs[i].Prompt)-2)
	}
	m.searchInput.Width = max(10, m.width-lipgloss.Width(m.searchInput.Prompt)-2)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.activeTab = next
	m.corrTable.Blur()
	m.vocabTable.Blur()
	if t := m.activeTable(); t != nil {
		t.Focus()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: since=%s  last=%s  window=%d", since, last, m.cfg.CurveWindow)
	if m.query != "" {
		summary += "  search=" + m.query
	}
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Filter: f  Quit: q"
	if m.activeTable() != nil {
		help = "Nav: left/right  Move: up/down  Search: /  Delete: x  Filter: f  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	lines := []string{}
	if m.searchMode {
		lines = append(lines, m.searchInput.View())
	}
	lines = append(lines, m.renderHelp())
	switch {
	case m.errMsg != "":
		lines = append(lines, errorStyle.Render(m.errMsg))
	case m.notice != "":
		lines = append(lines, headerStyle.Render(m.notice))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	switch m.activeTab {
	case tabCorrections:
		if len(m.corrRows) == 0 {
			return fitLines(emptyMessage("No stored corrections found.", m.query), m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.corrTable.View()), m.width, height)
	case tabVocabulary:
		if len(m.vocabRows) == 0 {
			return fitLines(emptyMessage("No vocabulary words found.", m.query), m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.vocabTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func emptyMessage(msg, query string) string {
	if query == "" {
		return msg
	}
	return fmt.Sprintf("%s (search %q)", msg, query)
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(m.ctx, m.runs, m.learning.Snapshot(), m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	m.applyRows()
	m.renderTabContents()
}

// applyRows fills both tables from the report and the search query.
func (m *Model) applyRows() {
	records := stats.SortCorrections(stats.SearchCorrections(m.report.State.StoredCorrections, m.query))
	m.corrRows = records
	rows := make([]table.Row, 0, len(records))
	for _, rec := range records {
		accepted := ""
		if rec.AcceptedByUser {
			accepted = "yes"
		}
		rows = append(rows, table.Row{
			rec.Incorrect,
			rec.Correct,
			fmt.Sprintf("%.2f", rec.Confidence),
			strconv.Itoa(rec.UsageCount),
			accepted,
			rec.Timestamp.Local().Format("2006-01-02"),
		})
	}
	m.corrTable.SetRows(rows)

	m.vocabRows = m.vocabRows[:0]
	vocabRows := make([]table.Row, 0, len(m.report.State.AcceptedWords))
	for i := len(m.report.State.AcceptedWords) - 1; i >= 0; i-- {
		w := m.report.State.AcceptedWords[i]
		if m.query != "" && !strings.Contains(w.Word, m.query) {
			continue
		}
		m.vocabRows = append(m.vocabRows, w)
		vocabRows = append(vocabRows, table.Row{
			w.Word,
			string(w.Origin),
			w.Timestamp.Local().Format("2006-01-02"),
			strings.ReplaceAll(w.Context, "\n", " "),
		})
	}
	m.vocabTable.SetRows(vocabRows)
	clampCursor(&m.corrTable, len(rows))
	clampCursor(&m.vocabTable, len(vocabRows))
}

func clampCursor(t *table.Model, n int) {
	if t.Cursor() >= n {
		t.SetCursor(max(0, n-1))
	}
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 || m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, m.cfg.CurveWindow, width))
	m.viewports[tabPatterns].SetContent(renderPatterns(m.report.Patterns, width))
}

func renderOverview(report stats.Report, window, width int) string {
	summary := renderSummaryCards(report, width)
	var buf bytes.Buffer
	if err := stats.RenderCurves(&buf, report, window); err != nil {
		return fmt.Sprintf("Failed to render trends: %v", err)
	}
	if len(report.Noisy) > 0 {
		if err := stats.RenderWordTable(&buf, report.Noisy); err != nil {
			return fmt.Sprintf("Failed to render words: %v", err)
		}
	}
	return strings.TrimRight(summary+"\n\n"+buf.String(), "\n")
}

func renderSummaryCards(report stats.Report, width int) string {
	accepted, total, rate := stats.AcceptRate(report.History)
	runs := stats.SummarizeRuns(report.Runs)
	cards := []string{
		metricCard("Corrections", strconv.Itoa(len(report.State.StoredCorrections))),
		metricCard("Vocabulary", strconv.Itoa(len(report.State.AcceptedWords))),
		metricCard("Ignored", strconv.Itoa(len(report.State.IgnoreWords))),
		metricCard("Decisions", fmt.Sprintf("%d/%d", accepted, total)),
		metricCard("Accept rate", fmt.Sprintf("%.1f%%", rate*100)),
		metricCard("Analyses", fmt.Sprintf("%d (%d local)", runs.Runs, runs.FallbackRuns)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderPatterns(patterns []model.MistakePattern, width int) string {
	if len(patterns) == 0 {
		return "No mistake patterns found."
	}
	var buf bytes.Buffer
	if err := stats.RenderBars(&buf, "Frequent Mistakes", stats.PatternBars(patterns), width); err != nil {
		return fmt.Sprintf("Failed to render patterns: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) deleteSelected() {
	switch m.activeTab {
	case tabCorrections:
		i := m.corrTable.Cursor()
		if i < 0 || i >= len(m.corrRows) {
			return
		}
		rec := m.corrRows[i]
		if m.learning.DeleteCorrection(m.ctx, rec.Incorrect, rec.Correct) {
			m.notice = fmt.Sprintf("deleted %s → %s", rec.Incorrect, rec.Correct)
		}
	case tabVocabulary:
		i := m.vocabTable.Cursor()
		if i < 0 || i >= len(m.vocabRows) {
			return
		}
		word := m.vocabRows[i].Word
		if m.learning.RemoveAcceptedWord(m.ctx, word) {
			m.notice = fmt.Sprintf("removed %s", word)
		}
	default:
		return
	}
	m.refreshReport()
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(1),
	)
	t.SetStyles(tableStyles())
	return t
}

func correctionColumns() []table.Column {
	return []table.Column{
		{Title: "Word", Width: 18},
		{Title: "Correction", Width: 18},
		{Title: "Confidence", Width: 10},
		{Title: "Used", Width: 5},
		{Title: "Accepted", Width: 8},
		{Title: "Seen", Width: 10},
	}
}

func vocabularyColumns() []table.Column {
	return []table.Column{
		{Title: "Word", Width: 18},
		{Title: "Origin", Width: 10},
		{Title: "Added", Width: 10},
		{Title: "Context", Width: 40},
	}
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// adjustTableHeight grows or shrinks the table until its rendered view
// fills bodyHeight lines.
func adjustTableHeight(t *table.Model, bodyHeight int) {
	target := max(1, bodyHeight)
	for i := 0; i < 2; i++ {
		viewHeight := lipgloss.Height(t.View())
		if viewHeight == target {
			return
		}
		t.SetHeight(max(1, t.Height()+target-viewHeight))
	}
}

func (m *Model) startSearch() (tea.Model, tea.Cmd) {
	if m.activeTable() == nil {
		m.notice = "search works on the Corrections and Vocabulary tabs"
		return m, nil
	}
	m.searchMode = true
	m.searchInput.SetValue(m.query)
	m.updateLayout()
	return m, m.searchInput.Focus()
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searchMode = false
		m.searchInput.Blur()
		m.query = ""
		m.applyRows()
		m.updateLayout()
		return m, nil
	case tea.KeyEnter:
		m.searchMode = false
		m.searchInput.Blur()
		m.updateLayout()
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if q := strings.TrimSpace(m.searchInput.Value()); q != m.query {
		m.query = q
		m.applyRows()
	}
	return m, cmd
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	m.filterIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	sinceInput := strings.TrimSpace(m.filterInputs[0].Value())
	var since *time.Time
	if sinceInput != "" {
		parsed, err := time.ParseInLocation("2006-01-02", sinceInput, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}

	lastInput := strings.TrimSpace(m.filterInputs[1].Value())
	last := 0
	if lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}

	windowInput := strings.TrimSpace(m.filterInputs[2].Value())
	window := 1
	if windowInput != "" {
		parsed, err := strconv.Atoi(windowInput)
		if err != nil || parsed < 1 {
			return fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		window = parsed
	}

	m.cfg.Since = since
	m.cfg.Last = last
	m.cfg.CurveWindow = window
	return nil
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
