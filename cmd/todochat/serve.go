package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/stratos/todochat/internal/config"
	"github.com/stratos/todochat/internal/gateway"
	"github.com/stratos/todochat/internal/intent"
	"github.com/stratos/todochat/internal/llm"
	"github.com/stratos/todochat/internal/orchestrator"
	"github.com/stratos/todochat/internal/server"
	"go.uber.org/zap"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat server",
	Long: `Run the HTTP chat server.

The server exposes POST /chat and GET /healthz. It needs GEMINI_API_KEY
in the environment to reach the model; without it, /chat returns an
error but the process still starts.

Examples:
  todochat serve
  todochat serve --addr :9090 --config config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}

func runServe(ctx context.Context) error {
	defer logger.Sync()

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	engine, err := buildEngine(ctx)
	if err != nil {
		return err
	}

	srv := server.New(engine, config.APIKey() != "", logger).WithRunTimeout(cfg.LLM.Timeout)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// buildEngine wires the orchestrator from configuration. A missing API key is
// tolerated here; the server rejects chat requests until one is provided.
func buildEngine(ctx context.Context) (*orchestrator.Orchestrator, error) {
	gw := gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.Timeout, logger)

	var invoker llm.Invoker
	if apiKey := config.APIKey(); apiKey != "" {
		gemini, err := llm.NewGemini(ctx, apiKey, cfg.LLM.Model, logger)
		if err != nil {
			return nil, fmt.Errorf("create model client: %w", err)
		}
		switch cfg.LLM.Grounding {
		case llm.GroundingPrompt:
			invoker = llm.NewPromptInvoker(gemini, logger)
		default:
			invoker = llm.NewNativeInvoker(gemini, logger)
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set, chat requests will be rejected")
		invoker = unavailableInvoker{}
	}

	rules := intent.DefaultRules()
	if cfg.Intent.RulesPath != "" {
		loaded, err := intent.LoadRules(cfg.Intent.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("load intent rules: %w", err)
		}
		rules = loaded
	}
	router, err := intent.NewRouter(rules)
	if err != nil {
		return nil, err
	}

	return orchestrator.New(gw, invoker, router, orchestrator.Config{
		MaxRounds:     cfg.LLM.MaxRounds,
		MessageWindow: cfg.Conversation.MessageWindow,
		HistoryWindow: cfg.Conversation.HistoryWindow,
	}, logger)
}

// unavailableInvoker stands in when no API key is configured so the engine
// can still be constructed.
type unavailableInvoker struct{}

func (unavailableInvoker) Generate(ctx context.Context, req llm.Request) (llm.Result, error) {
	return llm.Result{}, errors.New("model client not configured")
}
