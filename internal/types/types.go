// Package types defines shared data structures for the todochat orchestrator.
package types

import "encoding/json"

// Conversation roles. The gateway result of a tool dispatch is fed back into
// the transcript under RoleTool so the model can condition on it.
const (
	RoleUser  = "user"
	RoleModel = "model"
	RoleTool  = "tool"
)

// Message is a single conversational turn. Insertion order is conversational
// order; the orchestrator windows the tail, never reorders.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolCall is a request to invoke a named gateway operation.
type ToolCall struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params"`
}

// ToolStep records one executed dispatch, in dispatch order.
type ToolStep struct {
	Name   string          `json:"name"`
	Args   map[string]any  `json:"args"`
	Result json.RawMessage `json:"result"`
}

// ChatRequest is the body of POST /chat. ToolContext and ToolHistory are the
// caller-supplied continuation hints; the engine itself keeps no session
// state between requests.
type ChatRequest struct {
	Messages    []Message         `json:"messages"`
	Token       string            `json:"token,omitempty"`
	ToolContext json.RawMessage   `json:"toolContext,omitempty"`
	ToolHistory []json.RawMessage `json:"toolHistory,omitempty"`
}

// ChatResponse is the success body of POST /chat.
type ChatResponse struct {
	Reply     string     `json:"reply"`
	ToolSteps []ToolStep `json:"toolSteps"`
}

// ReauthResponse is returned with status 401 when the gateway rejects the
// caller's credential mid-run. It carries the attempted call for diagnostics.
type ReauthResponse struct {
	Message    string          `json:"message"`
	ToolCall   *ToolCall       `json:"tool_call,omitempty"`
	ToolResult json.RawMessage `json:"tool_result,omitempty"`
}

// ErrorResponse is the generic JSON error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// LastUserMessage returns the content of the most recent user turn, or "".
func LastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// Window returns the trailing n messages, order preserved. Older turns are
// silently dropped; that is the contract, not an error.
func Window(messages []Message, n int) []Message {
	if n <= 0 || len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}
