// Package tui renders a result set session as an interactive terminal widget.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kailas-cloud/pollsearch/internal/domain/record"
	"github.com/kailas-cloud/pollsearch/internal/domain/search/request"
	"github.com/kailas-cloud/pollsearch/internal/usecase/resultset"
)

// Widget is the session the model drives.
type Widget interface {
	SelectScope(ctx context.Context, scope string) (resultset.View, error)
	Search(term string) resultset.View
	ChangeSort(key string) (resultset.View, error)
	SelectPage(n int) (resultset.View, error)
	Next() (resultset.View, error)
	Prev() (resultset.View, error)
	View() resultset.View
}

// Scope is one selectable poll.
type Scope struct {
	ID    string
	Title string
}

func (s Scope) label() string {
	if s.Title != "" {
		return s.Title
	}
	return s.ID
}

// scopeLoadedMsg carries the result of an asynchronous scope selection.
type scopeLoadedMsg struct {
	scope string
	view  resultset.View
	err   error
}

// Model is the Bubble Tea model of the poll results widget.
type Model struct {
	widget Widget
	ctx    context.Context
	keys   KeyMap
	styles Styles

	scopes      []Scope
	scopeIdx    int
	sortOptions []string
	sortIdx     int

	input   textinput.Model
	spinner spinner.Model
	help    help.Model

	view resultset.View
	err  error

	width int
}

// Option configures a Model.
type Option func(*Model)

// WithStyles overrides the default styles.
func WithStyles(s Styles) Option {
	return func(m *Model) { m.styles = s }
}

// WithKeyMap overrides the default key bindings.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) { m.keys = k }
}

// NewModel creates the widget over w. scopes are cycled with tab; sortOptions
// (preset names) with s. The first scope is selected on Init.
func NewModel(ctx context.Context, w Widget, scopes []Scope, sortOptions []string, opts ...Option) Model {
	in := textinput.New()
	in.Placeholder = "Search polls"
	in.Prompt = "🔍 "
	in.CharLimit = request.MaxTermLength

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		widget:      w,
		ctx:         ctx,
		keys:        DefaultKeyMap(),
		styles:      DefaultStyles(),
		scopes:      scopes,
		sortOptions: sortOptions,
		input:       in,
		spinner:     sp,
		help:        help.New(),
		view:        w.View(),
		width:       80,
	}
	for _, o := range opts {
		o(&m)
	}
	m.view.Loading = len(scopes) > 0
	for i, name := range sortOptions {
		if name == m.view.Sort {
			m.sortIdx = i
		}
	}
	return m
}

// Init selects the first scope.
func (m Model) Init() tea.Cmd {
	if len(m.scopes) == 0 {
		return nil
	}
	return m.load(0)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case scopeLoadedMsg:
		m.view = msg.view
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.view.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

// updateInput feeds keys to the search box and searches on every change.
func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Blur) {
		m.input.Blur()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.view = m.widget.Search(m.input.Value())
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Focus):
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.NextScope):
		cmd := m.cycleScope(1)
		return m, cmd
	case key.Matches(msg, m.keys.PrevScope):
		cmd := m.cycleScope(-1)
		return m, cmd
	case key.Matches(msg, m.keys.Sort):
		m.cycleSort()
		return m, nil
	case key.Matches(msg, m.keys.NextPage):
		m.apply(m.widget.Next())
		return m, nil
	case key.Matches(msg, m.keys.PrevPage):
		m.apply(m.widget.Prev())
		return m, nil
	case key.Matches(msg, m.keys.FirstPage):
		m.apply(m.widget.SelectPage(1))
		return m, nil
	}

	if n, err := strconv.Atoi(msg.String()); err == nil && n > 0 {
		m.apply(m.widget.SelectPage(n))
	}
	return m, nil
}

func (m *Model) apply(v resultset.View, err error) {
	m.err = err
	if err == nil {
		m.view = v
	}
}

func (m *Model) cycleScope(delta int) tea.Cmd {
	if len(m.scopes) == 0 {
		return nil
	}
	idx := (m.scopeIdx + delta + len(m.scopes)) % len(m.scopes)
	return m.selectScope(idx)
}

// selectScope marks the widget loading and fetches in a command.
func (m *Model) selectScope(idx int) tea.Cmd {
	m.scopeIdx = idx
	m.view.Loading = true
	m.err = nil
	return m.load(idx)
}

func (m Model) load(idx int) tea.Cmd {
	w, ctx, scope := m.widget, m.ctx, m.scopes[idx].ID
	fetch := func() tea.Msg {
		v, err := w.SelectScope(ctx, scope)
		return scopeLoadedMsg{scope: scope, view: v, err: err}
	}
	return tea.Batch(m.spinner.Tick, fetch)
}

func (m *Model) cycleSort() {
	if len(m.sortOptions) == 0 {
		return
	}
	m.sortIdx = (m.sortIdx + 1) % len(m.sortOptions)
	m.apply(m.widget.ChangeSort(m.sortOptions[m.sortIdx]))
}

// View renders the widget.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Poll results"))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("  ")
	b.WriteString(m.styles.Muted.Render("sort: " + m.view.Sort))
	b.WriteString("\n\n")

	switch {
	case m.view.Loading:
		b.WriteString(m.spinner.View() + " Loading…\n")
	case !m.view.Selected():
		b.WriteString(m.styles.Muted.Render("No poll selected") + "\n")
	case m.view.NoResults():
		b.WriteString(m.styles.Muted.Render("No results") + "\n")
	default:
		for _, r := range m.view.Records {
			b.WriteString(m.renderRecord(r))
			b.WriteString("\n")
		}
		if nav := m.renderPages(); nav != "" {
			b.WriteString("\n" + nav + "\n")
		}
		if m.view.PlayAllURL != "" {
			b.WriteString(m.styles.Muted.Render("Play all: "+m.view.PlayAllURL) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString(m.styles.Error.Render("Error: "+m.err.Error()) + "\n")
	}

	b.WriteString(m.styles.Help.Render(m.help.ShortHelpView(m.keys.help())))
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(m.scopes))
	for i, s := range m.scopes {
		style := m.styles.Tab
		if i == m.scopeIdx {
			style = m.styles.ActiveTab
		}
		tabs[i] = style.Render(s.label())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderRecord(r record.Record) string {
	title, _ := r.Get("Title").Text()
	band, _ := r.Get("BandName").Text()
	line := title
	if band != "" {
		line += " · " + band
	}
	if header, ok := r.Get("Header").Text(); ok && header != "" {
		line = m.styles.Header.Render("["+header+"]") + " " + line
	}
	return m.styles.Record.Render(line)
}

func (m Model) renderPages() string {
	p := m.view.Page
	if !p.ShowNavigation {
		return ""
	}
	parts := make([]string, 0, len(p.Pages)+3)
	if p.ShowPrev {
		parts = append(parts, m.styles.PageLink.Render("‹ prev"))
	}
	for _, n := range p.Pages {
		if n == p.CurrentPage {
			parts = append(parts, m.styles.ActivePage.Render(strconv.Itoa(n)))
			continue
		}
		parts = append(parts, m.styles.PageLink.Render(strconv.Itoa(n)))
	}
	if p.ShowMorePages {
		parts = append(parts, m.styles.PageLink.Render("…"))
	}
	if p.ShowNext {
		parts = append(parts, m.styles.PageLink.Render("next ›"))
	}
	return fmt.Sprintf("%s  %s", strings.Join(parts, " "),
		m.styles.Muted.Render(fmt.Sprintf("(%d results)", p.TotalItems)))
}
