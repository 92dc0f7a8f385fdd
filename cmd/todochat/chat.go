package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/stratos/todochat/internal/conversation"
	"github.com/stratos/todochat/internal/ui"
)

var (
	chatServerURL string
	chatToken     string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the terminal chat client",
	Long: `Start an interactive terminal chat session against a running
todochat server.

The token is the same bearer token the todo gateway expects; it is
forwarded with every tool call.

Examples:
  todochat chat
  todochat chat --server http://localhost:8080 --token $TOKEN`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatServerURL, "server", "http://localhost:8080", "Chat server base URL")
	chatCmd.Flags().StringVar(&chatToken, "token", "", "Bearer token for the todo gateway")
}

func runChat() error {
	token := chatToken
	if token == "" {
		token = os.Getenv("TODOCHAT_TOKEN")
	}

	client := ui.NewChatClient(chatServerURL, token)
	history := conversation.NewHistory(
		cfg.Conversation.MessageWindow*10,
		cfg.Conversation.HistoryWindow,
	)

	model := ui.NewModel(client, history)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run UI: %w", err)
	}
	return nil
}
