package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/stratos/todochat/internal/types"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// jsonObjectRegexp grabs the outermost brace-delimited span of the reply,
// tolerating code fences and prose around it.
var jsonObjectRegexp = regexp.MustCompile(`(?s)\{.*\}`)

// PromptInvoker grounds the model through the system prompt: the catalog and
// recent tool history are serialized into one instruction message, and the
// model is asked to emit a fenced JSON object when it wants to act.
type PromptInvoker struct {
	gemini *Gemini
	logger *zap.Logger
}

// NewPromptInvoker creates a system-prompt-grounded invoker.
func NewPromptInvoker(gemini *Gemini, logger *zap.Logger) *PromptInvoker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromptInvoker{gemini: gemini, logger: logger}
}

// Generate runs one model invocation. The reply is inspected for a tool_call
// JSON object; anything else is text. An unparseable object is "no tool
// call", never an error.
func (p *PromptInvoker) Generate(ctx context.Context, req Request) (Result, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: BuildSystemPrompt(req)}},
		},
	}

	resp, err := p.gemini.generate(ctx, promptContents(req), config)
	if err != nil {
		return Result{}, err
	}

	text := responseText(resp)
	if call, ok := ParseToolCall(text); ok {
		p.logger.Debug("parsed tool call from reply", zap.String("method", call.Method))
		return Result{Kind: KindFunctionCall, Name: call.Method, Args: call.Params}, nil
	}
	return Result{Kind: KindText, Text: text}, nil
}

// BuildSystemPrompt serializes the catalog and conversation context into the
// grounding instruction.
func BuildSystemPrompt(req Request) string {
	catalogJSON, err := json.Marshal(req.Catalog)
	if err != nil {
		catalogJSON = []byte("{}")
	}
	contextJSON := []byte("null")
	if len(req.ToolContext) > 0 {
		contextJSON = req.ToolContext
	}

	var sb strings.Builder
	sb.WriteString("You are an assistant with tool access to an MCP JSON-RPC server.\n\n")
	fmt.Fprintf(&sb, "Schema: %s\n", catalogJSON)
	fmt.Fprintf(&sb, "Recent tool context (may be stale): %s\n\n", contextJSON)
	sb.WriteString(`GUIDELINES
- Prefer calling tools to obtain fresh state when the user clearly intends to manage todos (list/show/find/describe/toggle/update/delete).
- If intent is unclear, respond conversationally without forcing a tool call.
- Do not fabricate data when a tool can verify; use history/toolContext only as hints.
- When you decide to call a tool, respond ONLY with: {"tool_call": {"method": "<method>", "params": { ... }}}.

EXAMPLES
User: list all todos
Assistant: {"tool_call":{"method":"todos.list","params":{}}}

User: describe hey task
Assistant: {"tool_call":{"method":"todos.findByTitle","params":{"query":"hey","exact":false}}}

User: toggle hey
Assistant: {"tool_call":{"method":"todos.findByTitle","params":{"query":"hey","exact":true}}}
`)
	return sb.String()
}

// ParseToolCall looks for a {"tool_call":{...}} object in the model's reply.
// The boolean is false for anything that is not one; parse failures fall
// through to the caller's heuristics instead of raising.
func ParseToolCall(text string) (*types.ToolCall, bool) {
	match := jsonObjectRegexp.FindString(text)
	if match == "" {
		return nil, false
	}

	var parsed struct {
		ToolCall *types.ToolCall `json:"tool_call"`
	}
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		return nil, false
	}
	if parsed.ToolCall == nil || parsed.ToolCall.Method == "" {
		return nil, false
	}
	if parsed.ToolCall.Params == nil {
		parsed.ToolCall.Params = map[string]any{}
	}
	return parsed.ToolCall, true
}

// promptContents renders the transcript for the text-grounded strategy. Tool
// turns become user-attributed result notes; a trailing note carries the
// bounded tool history the caller supplied.
func promptContents(req Request) []*genai.Content {
	var contents []*genai.Content
	for _, turn := range req.Turns {
		switch turn.Role {
		case types.RoleModel:
			text := turn.Content
			if turn.Call != nil {
				callJSON, _ := json.Marshal(map[string]any{"tool_call": turn.Call})
				text = string(callJSON)
			}
			contents = append(contents, textContent(genai.RoleModel, text))
		case types.RoleTool:
			name := "tool"
			if turn.Call != nil {
				name = turn.Call.Method
			}
			contents = append(contents, textContent(genai.RoleUser,
				fmt.Sprintf("Tool result for %s: %s", name, turn.Result)))
		default:
			contents = append(contents, textContent(genai.RoleUser, turn.Content))
		}
	}

	if len(req.ToolHistory) > 0 {
		historyJSON, err := json.Marshal(req.ToolHistory)
		if err == nil {
			contents = append(contents, textContent(genai.RoleUser,
				fmt.Sprintf("Recent tool results: %s", historyJSON)))
		}
	}
	return contents
}

func textContent(role string, text string) *genai.Content {
	return &genai.Content{Role: role, Parts: []*genai.Part{{Text: text}}}
}
