package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stratos/todochat/internal/config"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "todochat",
	Short: "LLM chat front end for your todo list",
	Long: `
  ████████╗ ██████╗ ██████╗  ██████╗  ██████╗██╗  ██╗
  ╚══██╔══╝██╔═══██╗██╔══██╗██╔═══██╗██╔════╝██║  ██║
     ██║   ██║   ██║██║  ██║██║   ██║██║     ███████║
     ██║   ██║   ██║██║  ██║██║   ██║██║     ██╔══██║
     ██║   ╚██████╔╝██████╔╝╚██████╔╝╚██████╗██║  ██║
     ╚═╝    ╚═════╝ ╚═════╝  ╚═════╝  ╚═════╝╚═╝  ╚═╝

  Chat with your todo list in natural language. The server mediates
  between your messages, a generative model, and the todo gateway's
  JSON-RPC tools.

Usage:
  todochat serve               Run the chat server
  todochat chat                Start the terminal chat client
  todochat tools               List the gateway's tools
  todochat config              Show effective configuration
  todochat version             Show version info

Examples:
  todochat serve --addr :8080
  todochat chat --server http://localhost:8080 --token $TOKEN
  todochat tools --token $TOKEN`,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	Execute()
}
