package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/stratos/todochat/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show effective configuration",
	Long: `Show the effective configuration after merging defaults, the
config file, and TODOCHAT_* environment variables.

Examples:
  todochat config
  todochat config --config config.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		printConfig()
	},
}

func printConfig() {
	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#2DD4BF")).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#9CA3AF")).
		Width(24)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F9FAFB"))

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	fmt.Println(headerStyle.Render("todochat Configuration"))
	fmt.Println()

	fmt.Printf("%s %s\n", keyStyle.Render("Server address:"), valueStyle.Render(cfg.Server.Addr))
	fmt.Printf("%s %s\n", keyStyle.Render("Gateway URL:"), valueStyle.Render(cfg.Gateway.BaseURL))
	fmt.Printf("%s %s\n", keyStyle.Render("Gateway timeout:"), valueStyle.Render(cfg.Gateway.Timeout.String()))
	fmt.Printf("%s %s\n", keyStyle.Render("Model:"), valueStyle.Render(cfg.LLM.Model))
	fmt.Printf("%s %s\n", keyStyle.Render("Grounding:"), valueStyle.Render(cfg.LLM.Grounding))
	fmt.Printf("%s %d\n", keyStyle.Render("Max tool rounds:"), cfg.LLM.MaxRounds)
	fmt.Printf("%s %d\n", keyStyle.Render("Message window:"), cfg.Conversation.MessageWindow)
	fmt.Printf("%s %d\n", keyStyle.Render("Tool history window:"), cfg.Conversation.HistoryWindow)
	if cfg.Intent.RulesPath != "" {
		fmt.Printf("%s %s\n", keyStyle.Render("Intent rules:"), valueStyle.Render(cfg.Intent.RulesPath))
	}

	fmt.Println()
	if config.APIKey() != "" {
		fmt.Printf("%s %s\n", keyStyle.Render("GEMINI_API_KEY:"), valueStyle.Render("set"))
	} else {
		fmt.Printf("%s %s\n", keyStyle.Render("GEMINI_API_KEY:"), dimStyle.Render("not set"))
	}
}
