// Package tui is a local chat REPL over the ledger interpreter, used to
// exercise the exact same router and storage the webhook transport runs.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/granabot/granabot/internal/model"
	"github.com/granabot/granabot/internal/router"
)

var (
	userStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	faintStyle = lipgloss.NewStyle().Faint(true)
)

// collector implements service.Messenger by buffering replies.
type collector struct {
	replies []string
}

func (c *collector) Reply(_ context.Context, _ string, text string) error {
	c.replies = append(c.replies, text)
	return nil
}

type repliesMsg []string

// Model is the bubbletea model for the chat REPL.
type Model struct {
	router         *router.Router
	viewport       viewport.Model
	input          textinput.Model
	conversationID string
	sender         string
	transcript     []string
	ready          bool
}

// NewModel creates the chat REPL bound to a conversation and sender
// identity.
func NewModel(r *router.Router, conversationID, sender string) Model {
	input := textinput.New()
	input.Placeholder = `ex.: "mercado 54,90", "listar gastos paiol", "apagar #1"`
	input.Focus()
	input.CharLimit = 500

	return Model{
		router:         r,
		input:          input,
		conversationID: conversationID,
		sender:         sender,
		transcript: []string{
			faintStyle.Render("granabot — caderno de gastos (ctrl+c para sair)"),
		},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		inputHeight := 3
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-inputHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - inputHeight
		}
		m.input.Width = msg.Width - 4
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.transcript = append(m.transcript, userStyle.Render("você: ")+text)
			m.input.Reset()
			m.refresh()
			return m, m.send(text)
		}

	case repliesMsg:
		for _, reply := range msg {
			m.transcript = append(m.transcript, botStyle.Render("bot: ")+reply)
		}
		m.refresh()
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// send runs the message through the interpreter off the UI loop.
func (m Model) send(text string) tea.Cmd {
	r := m.router
	msg := model.Message{
		ConversationID: m.conversationID,
		Sender:         m.sender,
		Text:           text,
	}
	return func() tea.Msg {
		out := &collector{}
		r.Handle(context.Background(), msg, out)
		return repliesMsg(out.replies)
	}
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.transcript, "\n"))
	m.viewport.GotoBottom()
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "carregando…"
	}
	return m.viewport.View() + "\n\n" + m.input.View()
}

// Run starts the REPL and blocks until the user quits.
func Run(r *router.Router, conversationID, sender string) error {
	program := tea.NewProgram(NewModel(r, conversationID, sender), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
