// Package llm wraps the generative model behind a uniform invoker capability:
// given a transcript and a tool catalog, produce either free text or a
// structured function-call request. Two grounding strategies implement the
// same contract: one serializes the catalog into a system prompt and parses
// fenced JSON out of the reply, the other declares the catalog through the
// provider's native function-calling mechanism.
package llm

import (
	"context"
	"encoding/json"

	"github.com/stratos/todochat/internal/schema"
	"github.com/stratos/todochat/internal/types"
)

// Grounding strategy names, as they appear in configuration.
const (
	GroundingPrompt = "prompt"
	GroundingNative = "native"
)

// Kind discriminates the two possible invoker outcomes.
type Kind int

const (
	// KindText is a plain natural-language reply (possibly empty).
	KindText Kind = iota
	// KindFunctionCall is a structured request to invoke a tool.
	KindFunctionCall
)

// Result is the discriminated outcome of one model invocation.
type Result struct {
	Kind Kind
	Text string
	Name string
	Args map[string]any
}

// Turn is one transcript entry handed to the model. Tool turns carry the
// dispatched call and its raw result; model turns that requested a call carry
// the call so providers with native function calling can replay it.
type Turn struct {
	Role    string
	Content string
	Call    *types.ToolCall
	Result  json.RawMessage
}

// Request is the full grounding context for one invocation.
type Request struct {
	Turns       []Turn
	Catalog     schema.Catalog
	ToolContext json.RawMessage
	ToolHistory []json.RawMessage
}

// Invoker produces a Result from a transcript. Implementations must not
// return an error merely because the provider's response is missing a text or
// function-call path; absence of both is an empty-text result.
type Invoker interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

// TurnsFromMessages converts inbound chat messages into transcript turns.
func TurnsFromMessages(messages []types.Message) []Turn {
	turns := make([]Turn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}
