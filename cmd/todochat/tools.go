package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/stratos/todochat/internal/gateway"
)

var toolsToken string

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the gateway's tools",
	Long: `Fetch the tool catalog from the todo gateway and print it.

This is the same catalog the model is grounded with, after schema
sanitization.

Examples:
  todochat tools --token $TOKEN
  todochat tools --token $TOKEN --verbose`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTools(cmd.Context())
	},
}

func init() {
	toolsCmd.Flags().StringVar(&toolsToken, "token", "", "Bearer token for the todo gateway")
}

func runTools(ctx context.Context) error {
	token := toolsToken
	if token == "" {
		token = os.Getenv("TODOCHAT_TOKEN")
	}

	client := gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.Timeout, logger)

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	catalog, err := client.Schema(fetchCtx, token)
	if err != nil {
		return fmt.Errorf("fetch schema: %w", err)
	}

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#2DD4BF")).
		Bold(true)

	toolStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FBBF24")).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#9CA3AF"))

	paramStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#60A5FA"))

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	fmt.Println(headerStyle.Render("Available Tools"))
	if catalog.Version != "" {
		fmt.Println(dimStyle.Render("  schema version " + catalog.Version))
	}
	fmt.Println()

	for _, method := range catalog.Methods {
		fmt.Printf("  %s\n", toolStyle.Render("◆ "+method.Name))
		if method.Description != "" {
			fmt.Printf("    %s\n", descStyle.Render(method.Description))
		}

		if len(method.Params) > 0 && verbose {
			fmt.Println("    Parameters:")
			names := make([]string, 0, len(method.Params))
			for name := range method.Params {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("      %s\n", paramStyle.Render(name))
				if frag, ok := method.Params[name].(map[string]any); ok {
					if desc, ok := frag["description"].(string); ok && desc != "" {
						fmt.Printf("        %s\n", descStyle.Render(desc))
					}
				}
			}
		}
		fmt.Println()
	}

	if !verbose {
		fmt.Println(dimStyle.Render("  Use --verbose for parameter details"))
	}
	return nil
}
