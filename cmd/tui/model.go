// Package tui is an interactive playground for the faq matcher.
// Type a question and every faq entry is scored against it.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Laisky/laisky-support-bot/library/faq"
)

// Ranker scores every faq entry for a question
type Ranker interface {
	Rank(ctx context.Context, question string) ([]faq.Scored, faq.LoadResult)
	Threshold() float64
}

// rankMsg result of one ranking, query is kept to drop stale results
type rankMsg struct {
	query  string
	scored []faq.Scored
	loaded faq.LoadResult
}

type keyMap struct {
	Enter key.Binding
	Clear key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "score"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// Model is the bubbletea model of the playground
type Model struct {
	ctx    context.Context
	ranker Ranker

	input   textinput.Model
	spinner spinner.Model
	running bool

	query  string
	scored []faq.Scored
	loaded faq.LoadResult

	width    int
	quitting bool
}

// NewModel creates a new playground over ranker
func NewModel(ctx context.Context, ranker Ranker) Model {
	input := textinput.New()
	input.Placeholder = "трекер не устанавливается"
	input.Focus()
	input.CharLimit = 512
	input.Width = 60
	input.Prompt = "❓ "
	input.PromptStyle = inputLabelStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = bestStyle

	return Model{
		ctx:     ctx,
		ranker:  ranker,
		input:   input,
		spinner: sp,
	}
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) rank(query string) tea.Cmd {
	return func() tea.Msg {
		scored, loaded := m.ranker.Rank(m.ctx, query)
		return rankMsg{query: query, scored: scored, loaded: loaded}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Clear):
			m.input.SetValue("")
			m.query = ""
			m.scored = nil
			return m, nil
		case key.Matches(msg, keys.Enter):
			m.query = strings.TrimSpace(m.input.Value())
			m.running = true
			return m, tea.Batch(m.rank(m.query), m.spinner.Tick)
		}

	case rankMsg:
		if msg.query != m.query {
			return m, nil
		}
		m.running = false
		m.scored = msg.scored
		m.loaded = msg.loaded
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// best index of the candidate BestMatch would choose, -1 if none
func best(scored []faq.Scored) int {
	idx := -1
	var top float64
	for i, sc := range scored {
		if sc.Score > top {
			idx, top = i, sc.Score
		}
	}

	return idx
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return subtitleStyle.Render("bye 👋\n")
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("FAQ playground") + "\n")
	sb.WriteString(m.input.View() + "\n\n")

	switch {
	case m.running:
		sb.WriteString(m.spinner.View() + " scoring...\n")
	case m.query == "" && m.scored == nil:
		sb.WriteString(subtitleStyle.Render("type a question and press enter") + "\n")
	default:
		sb.WriteString(m.renderResults())
	}

	sb.WriteString(helpStyle.Render("enter: score • esc: clear • ctrl+c: quit"))
	return boxStyle.Render(sb.String())
}

func (m Model) renderResults() string {
	var sb strings.Builder
	threshold := m.ranker.Threshold()

	status := fmt.Sprintf("source %s, %d entries, threshold %.2f", m.loaded.Status, len(m.loaded.Entries), threshold)
	if m.loaded.Status.Degraded() {
		sb.WriteString(errorStyle.Render(status) + "\n")
		if m.loaded.Err != nil {
			sb.WriteString(errorStyle.Render(m.loaded.Err.Error()) + "\n")
		}
		return sb.String()
	}
	sb.WriteString(subtitleStyle.Render(status) + "\n\n")

	if len(faq.Normalize(m.query)) == 0 {
		sb.WriteString(bestStyle.Render("no tokens longer than 2 characters, nothing to match") + "\n")
	}

	top := best(m.scored)
	for i, sc := range m.scored {
		line := fmt.Sprintf("%.4f  %s", sc.Score, sc.Entry.Question)
		switch {
		case i == top && sc.Score > threshold:
			line = matchStyle.Render("✅ " + line)
		case i == top:
			line = bestStyle.Render("➖ " + line)
		case sc.Score == 0:
			line = zeroStyle.Render("   " + line)
		default:
			line = candidateStyle.Render("   " + line)
		}
		sb.WriteString(line + "\n")
	}

	if top >= 0 && m.scored[top].Score > threshold {
		answer := lipgloss.NewStyle().Width(max(m.width-8, 40)).Render(m.scored[top].Entry.Answer)
		sb.WriteString("\n" + inputLabelStyle.Render("answer") + "\n" + answer + "\n")
	} else {
		sb.WriteString("\n" + bestStyle.Render("no answer, the bot would offer to contact an admin") + "\n")
	}

	return sb.String()
}
