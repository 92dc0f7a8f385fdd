// Package conversation keeps client-side chat state between requests: a
// bounded message transcript and the recent tool results the engine wants
// echoed back on the next turn.
package conversation

import (
	"encoding/json"
	"sync"

	"github.com/stratos/todochat/internal/types"
)

type History struct {
	messages    []types.Message
	toolResults []json.RawMessage
	maxMessages int
	maxResults  int
	mu          sync.RWMutex
}

func NewHistory(maxMessages, maxResults int) *History {
	if maxMessages <= 0 {
		maxMessages = 50
	}
	if maxResults <= 0 {
		maxResults = 3
	}
	return &History{
		messages:    make([]types.Message, 0),
		maxMessages: maxMessages,
		maxResults:  maxResults,
	}
}

func (h *History) AddMessage(msg types.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, msg)

	if len(h.messages) > h.maxMessages {
		h.messages = h.messages[len(h.messages)-h.maxMessages:]
	}
}

// AddToolSteps records executed steps from a reply so the next request can
// carry their results forward. The most recent result doubles as the tool
// context for single-result heuristics.
func (h *History) AddToolSteps(steps []types.ToolStep) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range steps {
		h.toolResults = append(h.toolResults, s.Result)
	}
	if len(h.toolResults) > h.maxResults {
		h.toolResults = h.toolResults[len(h.toolResults)-h.maxResults:]
	}
}

func (h *History) Messages() []types.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]types.Message, len(h.messages))
	copy(result, h.messages)
	return result
}

func (h *History) ToolResults() []json.RawMessage {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]json.RawMessage, len(h.toolResults))
	copy(result, h.toolResults)
	return result
}

// ToolContext returns the most recent tool result, or nil when none exists.
func (h *History) ToolContext() json.RawMessage {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.toolResults) == 0 {
		return nil
	}
	return h.toolResults[len(h.toolResults)-1]
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = make([]types.Message, 0)
	h.toolResults = nil
}
