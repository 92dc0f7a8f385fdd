// Package orchestrator implements the core engine that drives one chat turn:
// deterministic intent short-circuit, schema-grounded model invocation, a
// bounded tool-call loop against the gateway, and reply synthesis.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stratos/todochat/internal/gateway"
	"github.com/stratos/todochat/internal/intent"
	"github.com/stratos/todochat/internal/llm"
	"github.com/stratos/todochat/internal/schema"
	"github.com/stratos/todochat/internal/types"
	"github.com/stratos/todochat/internal/validator"
	"go.uber.org/zap"
)

const (
	defaultMaxRounds     = 4
	defaultMessageWindow = 5
	defaultHistoryWindow = 3
)

// Gateway is the tool-dispatch capability the engine is written against. The
// concrete wire shape lives entirely behind it.
type Gateway interface {
	Invoke(ctx context.Context, token, method string, params map[string]any) (json.RawMessage, error)
	Schema(ctx context.Context, token string) (schema.Catalog, error)
}

// Request is one orchestration run's input.
type Request struct {
	Messages    []types.Message
	Token       string
	ToolContext json.RawMessage
	ToolHistory []json.RawMessage
}

// Outcome is the result of a completed run.
type Outcome struct {
	Reply     string
	ToolSteps []types.ToolStep
}

// Config tunes the loop. Zero values fall back to defaults.
type Config struct {
	MaxRounds     int
	MessageWindow int
	HistoryWindow int
}

// Orchestrator holds only injected collaborators; it is stateless across
// requests and safe for concurrent use.
type Orchestrator struct {
	gateway       Gateway
	invoker       llm.Invoker
	router        *intent.Router
	sanitizer     *validator.InputValidator
	maxRounds     int
	messageWindow int
	historyWindow int
	logger        *zap.Logger
}

// New creates an orchestrator. gateway and invoker are required; a nil router
// disables the deterministic pre-pass.
func New(gw Gateway, invoker llm.Invoker, router *intent.Router, cfg Config, logger *zap.Logger) (*Orchestrator, error) {
	if gw == nil {
		return nil, errors.New("orchestrator: gateway is required")
	}
	if invoker == nil {
		return nil, errors.New("orchestrator: invoker is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = defaultMaxRounds
	}
	if cfg.MessageWindow <= 0 {
		cfg.MessageWindow = defaultMessageWindow
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = defaultHistoryWindow
	}
	return &Orchestrator{
		gateway:       gw,
		invoker:       invoker,
		router:        router,
		sanitizer:     validator.NewInputValidator(),
		maxRounds:     cfg.MaxRounds,
		messageWindow: cfg.MessageWindow,
		historyWindow: cfg.HistoryWindow,
		logger:        logger,
	}, nil
}

// Run executes one orchestration run. Every entity it creates lives exactly
// as long as the run. The only error it returns is *gateway.AuthError; all
// other failures degrade into the reply.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Outcome, error) {
	window := types.Window(req.Messages, o.messageWindow)
	history := req.ToolHistory
	if len(history) > o.historyWindow {
		history = history[len(history)-o.historyWindow:]
	}

	// Deterministic pre-pass: recognize unambiguous intents without paying
	// for a model call. The message is whitespace-normalized first so rules
	// match on words, not on the user's spacing.
	if o.router != nil {
		message := o.sanitizer.Sanitize(types.LastUserMessage(window))
		if plan, ok := o.router.Match(message); ok {
			o.logger.Info("intent router short-circuit", zap.String("method", plan.Call.Method))
			step, err := o.dispatch(ctx, req.Token, plan.Call)
			if err != nil {
				return Outcome{}, err
			}
			return Outcome{Reply: plan.Reply, ToolSteps: []types.ToolStep{step}}, nil
		}
	}

	// Schema fetch fails soft: grounding degrades, the run continues.
	catalog, err := o.gateway.Schema(ctx, req.Token)
	if err != nil {
		var authErr *gateway.AuthError
		if errors.As(err, &authErr) {
			return Outcome{}, err
		}
		o.logger.Warn("schema fetch failed, continuing ungrounded", zap.Error(err))
		catalog = schema.Catalog{}
	}

	turns := llm.TurnsFromMessages(window)
	seen := make(map[string]struct{})
	var steps []types.ToolStep
	var text string

	for round := 0; round < o.maxRounds; round++ {
		result, err := o.invoker.Generate(ctx, llm.Request{
			Turns:       turns,
			Catalog:     catalog,
			ToolContext: req.ToolContext,
			ToolHistory: history,
		})
		if err != nil {
			o.logger.Warn("model invocation failed", zap.Int("round", round), zap.Error(err))
			break
		}

		if result.Kind == llm.KindText {
			text = result.Text
			break
		}

		call := &types.ToolCall{
			Method: catalog.Resolve(result.Name),
			Params: result.Args,
		}
		fp := fingerprint(call)
		if _, dup := seen[fp]; dup {
			// The model re-requested an identical action after seeing its
			// result; stop instead of looping.
			o.logger.Info("duplicate tool call, ending loop", zap.String("method", call.Method))
			break
		}
		seen[fp] = struct{}{}

		step, err := o.dispatch(ctx, req.Token, call)
		if err != nil {
			return Outcome{}, err
		}
		steps = append(steps, step)
		turns = append(turns,
			llm.Turn{Role: types.RoleModel, Call: call},
			llm.Turn{Role: types.RoleTool, Call: call, Result: step.Result},
		)
	}

	text = StripFences(text)
	if strings.TrimSpace(text) == "" {
		if len(steps) > 0 {
			text = Summarize(steps[len(steps)-1].Result)
		} else {
			fallbackText, fallbackSteps, err := o.fallback(ctx, req, window)
			if err != nil {
				return Outcome{}, err
			}
			text = fallbackText
			steps = fallbackSteps
		}
	}

	return Outcome{Reply: text, ToolSteps: steps}, nil
}

// fallback applies the keyword heuristics when the loop produced nothing.
func (o *Orchestrator) fallback(ctx context.Context, req Request, window []types.Message) (string, []types.ToolStep, error) {
	plan := intent.Fallback(joinedText(window), req.ToolContext)
	if plan == nil {
		return intent.NoResponseReply, nil, nil
	}

	o.logger.Info("keyword fallback", zap.String("method", plan.Call.Method))
	step, err := o.dispatch(ctx, req.Token, plan.Call)
	if err != nil {
		return "", nil, err
	}
	return plan.Reply, []types.ToolStep{step}, nil
}

// dispatch invokes one resolved call. Rejected credentials short-circuit the
// run; any other failure is folded into the step result as ordinary data for
// the model or heuristics to react to.
func (o *Orchestrator) dispatch(ctx context.Context, token string, call *types.ToolCall) (types.ToolStep, error) {
	raw, err := o.gateway.Invoke(ctx, token, call.Method, call.Params)
	if err != nil {
		var authErr *gateway.AuthError
		if errors.As(err, &authErr) {
			return types.ToolStep{}, err
		}
		o.logger.Warn("tool dispatch failed", zap.String("method", call.Method), zap.Error(err))
		raw, _ = json.Marshal(map[string]string{"error": err.Error()})
	}
	o.logger.Debug("tool dispatched", zap.String("method", call.Method))
	return types.ToolStep{Name: call.Method, Args: call.Params, Result: raw}, nil
}

// fingerprint derives the canonical dedupe key for a call. Go's map
// marshaling sorts keys, so identical argument sets collide regardless of
// insertion order.
func fingerprint(call *types.ToolCall) string {
	args, err := json.Marshal(call.Params)
	if err != nil {
		args = []byte("{}")
	}
	return fmt.Sprintf("%s(%s)", call.Method, args)
}

func joinedText(messages []types.Message) string {
	var sb strings.Builder
	for i, m := range messages {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(m.Content)
	}
	return sb.String()
}
