// Package ui provides the terminal chat client using Bubble Tea.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stratos/todochat/internal/conversation"
	"github.com/stratos/todochat/internal/types"
)

type state int

const (
	stateIdle state = iota
	stateWaiting
)

// Model is the Bubble Tea model for the chat client.
type Model struct {
	textInput textinput.Model
	spinner   spinner.Model
	viewport  viewport.Model
	styles    Styles

	state    state
	messages []chatMessage
	history  *conversation.History
	client   *ChatClient
	width    int
	height   int
	ready    bool
	quitting bool
}

// chatMessage represents a rendered entry in the transcript.
type chatMessage struct {
	role    string // "user", "assistant", "system", "step"
	content string
	step    *types.ToolStep
}

// replyMsg carries the server response back into the update loop.
type replyMsg struct {
	resp types.ChatResponse
	err  error
}

// NewModel creates a new chat client model.
func NewModel(client *ChatClient, history *conversation.History) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about your todos... (e.g., 'list my open tasks')"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 80

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#2DD4BF"))

	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.DefaultKeyMap()

	if history == nil {
		history = conversation.NewHistory(50, 3)
	}

	return Model{
		textInput: ti,
		spinner:   s,
		viewport:  vp,
		styles:    DefaultStyles(),
		state:     stateIdle,
		messages:  make([]chatMessage, 0),
		history:   history,
		client:    client,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}

func (m Model) headerHeight() int {
	banner := m.styles.BannerTitle.Render(Banner())
	return lipgloss.Height(banner) + 2
}

func (m Model) footerHeight() int {
	// 1 blank line + 1 prompt/input line + 1 newline + 1 help bar = 4
	return 4
}

// updateViewport rebuilds the viewport content and scrolls to the bottom.
func (m *Model) updateViewport() {
	var b strings.Builder

	for _, msg := range m.messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}

	if m.state == stateWaiting {
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), m.styles.StatusText.Render("thinking...")))
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// sendCmd posts the current transcript to the server.
func (m Model) sendCmd() tea.Cmd {
	req := types.ChatRequest{
		Messages:    m.history.Messages(),
		ToolContext: m.history.ToolContext(),
		ToolHistory: m.history.ToolResults(),
	}
	client := m.client
	return func() tea.Msg {
		resp, err := client.Send(context.Background(), req)
		return replyMsg{resp: resp, err: err}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEnter:
			if m.state != stateIdle {
				return m, nil
			}

			input := strings.TrimSpace(m.textInput.Value())
			if input == "" {
				return m, nil
			}

			if cmd, handled := m.handleCommand(input); handled {
				m.updateViewport()
				return m, cmd
			}

			m.messages = append(m.messages, chatMessage{role: "user", content: input})
			m.history.AddMessage(types.Message{Role: types.RoleUser, Content: input})

			m.textInput.SetValue("")
			m.state = stateWaiting
			m.updateViewport()

			return m, tea.Batch(m.sendCmd(), m.spinner.Tick)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10

		vpWidth := msg.Width
		vpHeight := msg.Height - m.headerHeight() - m.footerHeight()
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(vpWidth, vpHeight)
			m.viewport.KeyMap = viewport.DefaultKeyMap()
		} else {
			m.viewport.Width = vpWidth
			m.viewport.Height = vpHeight
		}

		m.ready = true
		m.updateViewport()

	case replyMsg:
		m.state = stateIdle
		m.applyReply(msg)
		m.updateViewport()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if m.state == stateWaiting {
			m.updateViewport()
		}
	}

	if m.state == stateIdle {
		var tiCmd tea.Cmd
		m.textInput, tiCmd = m.textInput.Update(msg)
		cmds = append(cmds, tiCmd)
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

// applyReply folds a server response into the transcript and history.
func (m *Model) applyReply(msg replyMsg) {
	if msg.err != nil {
		var reauth *ErrReauth
		if errors.As(msg.err, &reauth) {
			m.messages = append(m.messages, chatMessage{role: "system", content: reauth.Message})
			return
		}
		m.messages = append(m.messages, chatMessage{role: "system", content: "Error: " + msg.err.Error()})
		return
	}

	for i := range msg.resp.ToolSteps {
		step := msg.resp.ToolSteps[i]
		m.messages = append(m.messages, chatMessage{role: "step", step: &step})
	}
	m.history.AddToolSteps(msg.resp.ToolSteps)

	if msg.resp.Reply != "" {
		m.messages = append(m.messages, chatMessage{role: "assistant", content: msg.resp.Reply})
		m.history.AddMessage(types.Message{Role: types.RoleModel, Content: msg.resp.Reply})
	}
}

// handleCommand processes client-side commands. The second return reports
// whether the input was consumed.
func (m *Model) handleCommand(input string) (tea.Cmd, bool) {
	switch strings.ToLower(input) {
	case "exit", "quit", "q":
		m.quitting = true
		return tea.Quit, true

	case "clear":
		m.messages = make([]chatMessage, 0)
		m.history.Clear()
		m.textInput.SetValue("")
		return nil, true

	case "help", "?":
		m.messages = append(m.messages, chatMessage{
			role: "system",
			content: `Available commands:
  help, ?     Show this help
  clear       Clear chat history
  exit, quit  Exit the client

Example messages:
  "list all my todos"
  "create a todo called buy milk"
  "toggle the milk task"`,
		})
		m.textInput.SetValue("")
		return nil, true
	}

	return nil, false
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return m.styles.SystemMessage.Render("Goodbye!\n")
	}

	if !m.ready {
		return "Connecting..."
	}

	var b strings.Builder

	b.WriteString(m.styles.BannerTitle.Render(Banner()))
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	b.WriteString(m.styles.Prompt.Render("> "))
	if m.state == stateIdle {
		b.WriteString(m.textInput.View())
	} else {
		b.WriteString(m.styles.StatusText.Render("(waiting for reply...)"))
	}
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())

	return m.styles.App.Render(b.String())
}

// renderMessage renders a single transcript entry.
func (m Model) renderMessage(msg chatMessage) string {
	switch msg.role {
	case "user":
		return m.styles.UserMessage.Render("You: " + msg.content)

	case "assistant":
		return m.styles.AssistantMessage.Render("Assistant: " + msg.content)

	case "system":
		return m.styles.SystemMessage.Render(msg.content)

	case "step":
		if msg.step != nil {
			return m.renderStep(msg.step)
		}
	}
	return ""
}

// renderStep renders one executed tool step.
func (m Model) renderStep(step *types.ToolStep) string {
	var b strings.Builder

	b.WriteString(m.styles.StepName.Render("Tool: " + step.Name))

	if len(step.Args) > 0 {
		args := make([]string, 0, len(step.Args))
		for k, v := range step.Args {
			args = append(args, fmt.Sprintf("%s=%v", k, v))
		}
		b.WriteString(" ")
		b.WriteString(m.styles.StepParams.Render("(" + strings.Join(args, ", ") + ")"))
	}
	b.WriteString("\n")

	result := string(step.Result)
	if len(result) > 300 {
		result = result[:300] + "..."
	}
	for _, line := range strings.Split(result, "\n") {
		if line != "" {
			b.WriteString(m.styles.StepResult.Render("  | " + line))
			b.WriteString("\n")
		}
	}

	return m.styles.StepBox.Render(b.String())
}

// renderHelpBar renders the bottom help bar.
func (m Model) renderHelpBar() string {
	help := []string{
		m.styles.HelpKey.Render("enter") + m.styles.HelpValue.Render(" send"),
		m.styles.HelpKey.Render("ctrl+c") + m.styles.HelpValue.Render(" quit"),
		m.styles.HelpKey.Render("help") + m.styles.HelpValue.Render(" commands"),
	}
	return m.styles.HelpBar.Render(strings.Join(help, "  |  "))
}
