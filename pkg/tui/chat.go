package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mikeboe/research-assistant/pkg/render"
	"github.com/mikeboe/research-assistant/pkg/research"
	"github.com/mikeboe/research-assistant/pkg/session"
)

// Researcher answers one query given the prior turns.
type Researcher interface {
	Run(ctx context.Context, query string, history []research.Turn) (research.Outcome, error)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

type researchDoneMsg struct {
	query   string
	outcome research.Outcome
	err     error
}

// Model is a terminal chat over a single conversation history.
type Model struct {
	ctx        context.Context
	researcher Researcher
	history    *session.History

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	busy bool
	err  error
}

func New(ctx context.Context, researcher Researcher, history *session.History) Model {
	input := textinput.New()
	input.Placeholder = "What can i help you research?"
	input.Prompt = "> "
	input.Focus()

	return Model{
		ctx:        ctx,
		researcher: researcher,
		history:    history,
		input:      input,
		viewport:   viewport.New(80, 20),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 3)
		m.input.Width = max(msg.Width-4, 10)
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlL:
			if !m.busy {
				m.history.Clear()
				m.err = nil
				m.refresh()
			}
			return m, nil
		case tea.KeyEnter:
			query := strings.TrimSpace(m.input.Value())
			if m.busy || query == "" {
				return m, nil
			}
			m.busy = true
			m.err = nil
			m.input.Reset()
			return m, tea.Batch(m.spinner.Tick, m.research(query))
		}

	case researchDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.history.Append(research.UserTurn(msg.query), research.AssistantTurn(msg.outcome))
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// research runs the query off the update loop. History is read here and
// only written when the result message arrives.
func (m Model) research(query string) tea.Cmd {
	turns := m.history.Turns()
	return func() tea.Msg {
		outcome, err := m.researcher.Run(m.ctx, query, turns)
		return researchDoneMsg{query: query, outcome: outcome, err: err}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

func (m Model) transcript() string {
	turns := m.history.Turns()
	if len(turns) == 0 {
		return helpStyle.Render("Ask a research question to get started.")
	}
	parts := make([]string, 0, len(turns))
	for _, t := range turns {
		parts = append(parts, render.Turn(t))
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🔍 AI Research Assistant") + "\n")
	b.WriteString(m.viewport.View() + "\n")

	switch {
	case m.busy:
		b.WriteString(m.spinner.View() + " Researching... This may take a moment.\n")
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	default:
		b.WriteString(helpStyle.Render("enter: send • ctrl+l: clear history • esc: quit") + "\n")
	}
	b.WriteString(m.input.View())
	return b.String()
}

// Run starts the chat program and blocks until the user quits.
func Run(ctx context.Context, researcher Researcher, history *session.History) error {
	_, err := tea.NewProgram(New(ctx, researcher, history), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
