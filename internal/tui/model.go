// Package tui provides the Bubble Tea review interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/shuddho/internal/document"
	"github.com/verte-zerg/shuddho/internal/model"
	"github.com/verte-zerg/shuddho/internal/session"
)

const maxQuickPicks = 9

type analysisDoneMsg struct {
	outcome session.Outcome
	err     error
}

type docChangedMsg struct{}

// Model implements the Bubble Tea review UI.
type Model struct {
	ctx     context.Context
	session *session.Session
	doc     *document.File
	changes <-chan struct{}
	logger  *slog.Logger

	width  int
	height int

	body    viewport.Model
	spinner spinner.Model
	ignore  textinput.Model

	errors    []model.SpellError
	cursor    int
	response  *model.AnalysisResponse
	checking  bool
	fallback  bool
	status    string
	notice    string
	undoDepth int
	mode      session.ReplaceMode
	dirty     bool
	quitArmed bool

	ignoreMode   bool
	ignored      []string
	selectedLine int
}

var (
	textStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	spellingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Underline(true)
	grammarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Underline(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#101010")).Background(lipgloss.Color("#C89A3A"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	panelStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Padding(0, 1)
)

func styleFor(t tone) lipgloss.Style {
	switch t {
	case toneSpelling:
		return spellingStyle
	case toneGrammar:
		return grammarStyle
	case toneSelected:
		return selectedStyle
	default:
		return textStyle
	}
}

// NewModel constructs a review UI over an open session. changes may be nil
// when the document is not watched.
func NewModel(ctx context.Context, s *session.Session, doc *document.File, changes <-chan struct{}, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = grammarStyle.UnsetUnderline()

	input := textinput.New()
	input.Prompt = "Ignore word: "
	input.Placeholder = "type a word, enter to toggle"
	input.CharLimit = 64

	m := &Model{
		ctx:     ctx,
		session: s,
		doc:     doc,
		changes: changes,
		logger:  logger,
		body:    viewport.New(0, 0),
		spinner: sp,
		ignore:  input,
	}
	m.refresh()
	return m
}

// Init implements tea.Model. The first analysis starts immediately.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.startAnalysis(), m.waitForChange())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ignore.Width = max(10, msg.Width-lipgloss.Width(m.ignore.Prompt)-4)
		m.renderBody()
		return m, nil
	case spinner.TickMsg:
		if !m.checking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case analysisDoneMsg:
		return m, m.handleAnalysis(msg)
	case docChangedMsg:
		m.handleDocChange()
		return m, m.waitForChange()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.ignoreMode {
			return m.updateIgnore(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "q" {
		m.quitArmed = false
	}
	if m.checking && editsSession(key) {
		m.notice = session.StatusChecking
		return m, nil
	}
	switch key {
	case "q":
		if m.dirty && !m.quitArmed {
			m.quitArmed = true
			m.notice = "unsaved changes: press w to write or q again to quit"
			return m, nil
		}
		return m, tea.Quit
	case "r":
		return m, m.startAnalysis()
	case "down", "j", "tab":
		m.moveCursor(1)
	case "up", "k", "shift+tab":
		m.moveCursor(-1)
	case "enter":
		m.accept(0)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.accept(int(key[0] - '1'))
	case "d":
		if e, ok := m.current(); ok && m.session.DismissError(m.ctx, e.ID) {
			m.notice = fmt.Sprintf("ignoring %q from now on", e.IncorrectWord)
		}
	case "x":
		if e, ok := m.current(); ok && m.session.RejectError(m.ctx, e.ID) {
			m.notice = fmt.Sprintf("kept %q", e.IncorrectWord)
		}
	case "u":
		if m.session.Undo(m.ctx) {
			m.notice = "undone"
		} else {
			m.notice = "nothing to undo"
		}
	case "i":
		m.ignoreMode = true
		m.ignore.SetValue("")
		m.refresh()
		return m, m.ignore.Focus()
	case "w":
		m.save()
	case "pgdown", "pgup", "ctrl+d", "ctrl+u":
		var cmd tea.Cmd
		m.body, cmd = m.body.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
	m.refresh()
	return m, nil
}

// editsSession reports whether key changes the text or the ignore set. Those
// keys wait until the running analysis is done.
func editsSession(key string) bool {
	switch key {
	case "enter", "1", "2", "3", "4", "5", "6", "7", "8", "9", "d", "x", "u", "i":
		return true
	}
	return false
}

func (m *Model) updateIgnore(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.ignoreMode = false
		m.ignore.Blur()
		return m, nil
	case tea.KeyEnter:
		if m.checking {
			m.notice = session.StatusChecking
			return m, nil
		}
		word := strings.TrimSpace(m.ignore.Value())
		switch {
		case word == "":
		case m.session.UnignoreWord(m.ctx, word):
			m.notice = fmt.Sprintf("%q removed from the ignore list", word)
		case m.session.IgnoreWord(m.ctx, word):
			m.notice = fmt.Sprintf("%q added to the ignore list", word)
		}
		m.ignore.SetValue("")
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.ignore, cmd = m.ignore.Update(msg)
	return m, cmd
}

func (m *Model) startAnalysis() tea.Cmd {
	if m.checking {
		m.notice = session.ErrAnalysisInFlight.Error()
		return nil
	}
	m.checking = true
	m.status = session.StatusChecking
	ctx, s := m.ctx, m.session
	run := func() tea.Msg {
		outcome, err := s.RunAnalysis(ctx)
		return analysisDoneMsg{outcome: outcome, err: err}
	}
	return tea.Batch(m.spinner.Tick, run)
}

func (m *Model) handleAnalysis(msg analysisDoneMsg) tea.Cmd {
	m.checking = false
	switch {
	case errors.Is(msg.err, session.ErrAnalysisInFlight):
		m.notice = msg.err.Error()
	case msg.err != nil:
		m.logger.Error("analysis failed", "error", msg.err)
		m.notice = msg.err.Error()
	case msg.outcome.Failure != nil:
		m.notice = msg.outcome.Failure.Error()
	default:
		m.notice = ""
	}
	m.cursor = 0
	m.refresh()
	return nil
}

func (m *Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	changes := m.changes
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return docChangedMsg{}
	}
}

func (m *Model) handleDocChange() {
	changed, err := m.doc.Reload()
	switch {
	case errors.Is(err, document.ErrConflict):
		m.notice = "file changed on disk; keeping unsaved edits"
		return
	case err != nil:
		m.logger.Warn("failed to reload document", "error", err)
		m.notice = err.Error()
		return
	case !changed:
		return
	}
	if err := m.session.Reload(m.ctx); err != nil {
		m.logger.Warn("failed to reload session", "error", err)
		m.notice = err.Error()
		return
	}
	m.notice = "reloaded from disk, press r to check again"
	m.refresh()
}

func (m *Model) save() {
	if err := m.doc.Save(); err != nil {
		m.logger.Error("failed to save document", "path", m.doc.Path(), "error", err)
		m.notice = err.Error()
		return
	}
	m.notice = "written " + m.doc.Path()
}

func (m *Model) accept(idx int) {
	e, ok := m.current()
	if !ok || idx >= len(e.Suggestions) {
		return
	}
	suggestion := e.Suggestions[idx]
	if m.session.AcceptSuggestion(m.ctx, e.ID, suggestion) {
		m.notice = fmt.Sprintf("%s → %s", e.IncorrectWord, suggestion)
	}
}

func (m *Model) current() (model.SpellError, bool) {
	if m.cursor < 0 || m.cursor >= len(m.errors) {
		return model.SpellError{}, false
	}
	return m.errors[m.cursor], true
}

func (m *Model) moveCursor(delta int) {
	if len(m.errors) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(m.errors)) % len(m.errors)
}

// refresh pulls session state into the model and re-renders the body.
func (m *Model) refresh() {
	if m.session != nil {
		m.errors = m.session.ActiveErrors()
		m.response = m.session.Response()
		m.fallback = m.session.UsedFallback()
		m.undoDepth = m.session.UndoDepth()
		m.mode = m.session.Mode()
		if !m.checking {
			m.status = m.session.Status()
		}
	}
	if m.doc != nil {
		m.dirty = m.doc.Dirty()
	}
	if m.cursor >= len(m.errors) {
		m.cursor = max(0, len(m.errors)-1)
	}
	if e, ok := m.current(); ok && m.session != nil {
		m.session.Select(e.ID)
	}
	if m.ignoreMode && m.session != nil {
		m.ignored = m.session.IgnoredWords()
	}
	m.renderBody()
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.renderHeader()
	panel := m.renderPanel()
	footer := m.renderFooter()
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(panel) - lipgloss.Height(footer)
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	if m.body.Height != bodyHeight {
		m.body.Height = bodyHeight
		m.scrollToSelected()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.body.View(), panel, footer)
}

func (m *Model) contentWidth() int {
	return max(1, m.width-2)
}

func (m *Model) renderBody() {
	if m.session == nil || m.width == 0 {
		return
	}
	selected := ""
	if e, ok := m.current(); ok {
		selected = e.ID
	}
	runes := buildStyledRunes([]rune(m.session.Text()), m.errors, selected)
	lines := wrapLines(runes, m.contentWidth())
	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = renderStyledRunes(line)
	}
	m.body.Width = m.width
	m.body.SetContent(strings.Join(rendered, "\n"))
	m.selectedLine = lineOfTone(lines, toneSelected)
	m.scrollToSelected()
}

func (m *Model) scrollToSelected() {
	line := m.selectedLine
	if line < 0 || m.body.Height <= 0 {
		return
	}
	if line < m.body.YOffset || line >= m.body.YOffset+m.body.Height {
		m.body.SetYOffset(max(0, line-m.body.Height/3))
	}
}

func (m *Model) renderHeader() string {
	name := "untitled"
	if m.doc != nil && m.doc.Path() != "" {
		name = m.doc.Path()
	}
	if m.dirty {
		name += " [modified]"
	}
	status := m.status
	if m.checking {
		status = m.spinner.View() + " " + session.StatusChecking
	}
	return titleStyle.Render(name) + "  " + mutedStyle.Render(status)
}

func (m *Model) renderPanel() string {
	width := max(10, m.width-4)
	if m.ignoreMode {
		lines := []string{m.ignore.View()}
		if len(m.ignored) > 0 {
			lines = append(lines, mutedStyle.Render("Ignored: "+strings.Join(m.ignored, ", ")))
		} else {
			lines = append(lines, mutedStyle.Render("No ignored words."))
		}
		lines = append(lines, mutedStyle.Render("enter: add/remove  esc: close"))
		return panelStyle.Width(width).Render(strings.Join(lines, "\n"))
	}
	lines := m.renderErrorDetails()
	lines = append(lines, m.renderFeedback()...)
	if len(lines) == 0 {
		return ""
	}
	return panelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderErrorDetails() []string {
	e, ok := m.current()
	if !ok {
		return nil
	}
	head := fmt.Sprintf("%d/%d  %s", m.cursor+1, len(m.errors), spellingStyle.Render(e.IncorrectWord))
	meta := fmt.Sprintf("%s · %s · %.0f%%", e.Kind, e.Source, e.Confidence*100)
	lines := []string{head + "  " + mutedStyle.Render(meta)}
	picks := make([]string, 0, len(e.Suggestions))
	for i, s := range e.Suggestions {
		if i >= maxQuickPicks {
			break
		}
		picks = append(picks, fmt.Sprintf("%d. %s", i+1, s))
	}
	if len(picks) > 0 {
		lines = append(lines, strings.Join(picks, "   "))
	}
	if e.Reason != "" {
		lines = append(lines, mutedStyle.Render(e.Reason))
	}
	if e.Context != "" {
		lines = append(lines, mutedStyle.Render("… "+strings.ReplaceAll(e.Context, "\n", " ")+" …"))
	}
	return lines
}

func (m *Model) renderFeedback() []string {
	if m.response == nil {
		return nil
	}
	var lines []string
	for _, s := range m.response.MissingElements {
		lines = append(lines, grammarStyle.UnsetUnderline().Render("missing: ")+s)
	}
	for _, s := range m.response.FormattingSuggestions {
		lines = append(lines, grammarStyle.UnsetUnderline().Render("format: ")+s)
	}
	if fb := strings.TrimSpace(m.response.GeneralFeedback); fb != "" {
		lines = append(lines, mutedStyle.Render(fb))
	}
	return lines
}

func (m *Model) renderFooter() string {
	segments := []string{fmt.Sprintf("Errors %d", len(m.errors))}
	if m.fallback {
		segments = append(segments, "local")
	}
	segments = append(segments, fmt.Sprintf("Undo %d", m.undoDepth))
	if m.mode != "" {
		segments = append(segments, "Mode "+string(m.mode))
	}
	segments = append(segments, "r check  enter/1-9 accept  d dismiss  x keep  u undo  i ignore  w write  q quit")
	footer := footerStyle.Render(strings.Join(segments, "  "))
	if m.notice != "" {
		footer = mutedStyle.Render(m.notice) + "\n" + footer
	}
	return footer
}
