package conversation

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stratos/todochat/internal/types"
)

func TestHistory_MessageWindow(t *testing.T) {
	h := NewHistory(3, 3)
	for i := 0; i < 5; i++ {
		h.AddMessage(types.Message{Role: types.RoleUser, Content: fmt.Sprintf("m%d", i)})
	}

	msgs := h.Messages()
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	if msgs[0].Content != "m2" || msgs[2].Content != "m4" {
		t.Errorf("unexpected window: %+v", msgs)
	}
}

func TestHistory_ToolResults(t *testing.T) {
	h := NewHistory(10, 2)
	h.AddToolSteps([]types.ToolStep{
		{Name: "todos.list", Result: json.RawMessage(`[1]`)},
		{Name: "todos.toggle", Result: json.RawMessage(`{"id":1}`)},
		{Name: "todos.list", Result: json.RawMessage(`[2]`)},
	})

	results := h.ToolResults()
	if len(results) != 2 {
		t.Fatalf("len = %d, want 2", len(results))
	}
	if string(h.ToolContext()) != `[2]` {
		t.Errorf("tool context = %s", h.ToolContext())
	}
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(10, 3)
	h.AddMessage(types.Message{Role: types.RoleUser, Content: "x"})
	h.AddToolSteps([]types.ToolStep{{Name: "todos.list", Result: json.RawMessage(`[]`)}})
	h.Clear()

	if len(h.Messages()) != 0 || h.ToolContext() != nil {
		t.Error("clear did not reset state")
	}
}

func TestHistory_CopiesAreIndependent(t *testing.T) {
	h := NewHistory(10, 3)
	h.AddMessage(types.Message{Role: types.RoleUser, Content: "original"})

	msgs := h.Messages()
	msgs[0].Content = "mutated"

	if h.Messages()[0].Content != "original" {
		t.Error("returned slice must not alias internal state")
	}
}
