package orchestrator

import (
	"encoding/json"
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "hello there", "hello there"},
		{"fenced json", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced no language", "```\ndone\n```", "done"},
		{"unterminated fence", "```json\n{\"a\":1}", `{"a":1}`},
		{"inner fences preserved", "```\nuse ``` to fence\n```", "use ``` to fence"},
		{"nested fences", "```\n```json\n{\"a\":1}\n```", `{"a":1}`},
		{"doubly wrapped", "```\n```json\n{\"a\":1}\n```\n```", `{"a":1}`},
		{"inner indentation kept", "```\n  indented\n```", "  indented"},
		{"surrounding whitespace", "  \n```\nx\n```\n  ", "x"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripFences(tt.input)
			if got != tt.expected {
				t.Errorf("StripFences(%q) = %q, want %q", tt.input, got, tt.expected)
			}
			if again := StripFences(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestSummarize_TodoList(t *testing.T) {
	raw := json.RawMessage(`[
		{"id":1,"title":"Buy milk","completed":true},
		{"id":2,"title":"Pay rent","completed":false}
	]`)
	want := "1. Buy milk (done)\n2. Pay rent"
	if got := Summarize(raw); got != want {
		t.Errorf("Summarize = %q, want %q", got, want)
	}
}

func TestSummarize_WrappedList(t *testing.T) {
	raw := json.RawMessage(`{"result":[{"id":7,"title":"Walk dog","done":true}]}`)
	want := "7. Walk dog (done)"
	if got := Summarize(raw); got != want {
		t.Errorf("Summarize = %q, want %q", got, want)
	}
}

func TestSummarize_EmptyList(t *testing.T) {
	if got := Summarize(json.RawMessage(`[]`)); got != "No todos yet." {
		t.Errorf("Summarize = %q", got)
	}
}

func TestSummarize_SingleRecord(t *testing.T) {
	raw := json.RawMessage(`{"title":"Buy milk","id":3,"completed":false}`)
	want := "completed: false, id: 3, title: Buy milk"
	if got := Summarize(raw); got != want {
		t.Errorf("Summarize = %q, want %q", got, want)
	}
}

func TestSummarize_Passthrough(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"json string", `"all done"`, "all done"},
		{"number", `42`, "42"},
		{"empty", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(json.RawMessage(tt.raw)); got != tt.expected {
				t.Errorf("Summarize(%s) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestSummarize_ListWithoutTitles(t *testing.T) {
	raw := json.RawMessage(`[{"id":1},{"id":2}]`)
	want := "1. id: 1\n2. id: 2"
	if got := Summarize(raw); got != want {
		t.Errorf("Summarize = %q, want %q", got, want)
	}
}
