package orchestrator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// StripFences removes markdown code fences wrapping model output, peeling
// one layer at a time until a fixpoint is reached. Text without a
// surrounding fence passes through unchanged, fence characters inside a line
// are left alone, and inner content keeps its whitespace.
func StripFences(text string) string {
	for {
		next := stripFenceLayer(text)
		if next == text {
			return text
		}
		text = next
	}
}

// stripFenceLayer removes one surrounding fence, or returns its input
// unchanged when there is none.
func stripFenceLayer(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return text
	}
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// Summarize renders a raw tool result as user-facing text. Lists of records
// become numbered todo lines, a single record becomes a sorted key-value
// line, and anything else passes through verbatim.
func Summarize(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err == nil {
		return summarizeList(list)
	}

	var record map[string]any
	if err := json.Unmarshal(raw, &record); err == nil {
		if inner, ok := record["result"]; ok && len(record) <= 2 {
			nested, err := json.Marshal(inner)
			if err == nil {
				return Summarize(nested)
			}
		}
		return summarizeRecord(record)
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return string(raw)
}

func summarizeList(items []map[string]any) string {
	if len(items) == 0 {
		return "No todos yet."
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		title, hasTitle := item["title"].(string)
		if !hasTitle {
			return summarizeFallbackList(items)
		}
		line := fmt.Sprintf("%v. %s", item["id"], title)
		if done, ok := item["completed"].(bool); ok && done {
			line += " (done)"
		} else if done, ok := item["done"].(bool); ok && done {
			line += " (done)"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// summarizeFallbackList keeps the output deterministic for heterogeneous
// lists that lack titles.
func summarizeFallbackList(items []map[string]any) string {
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, summarizeRecord(item)))
	}
	return strings.Join(lines, "\n")
}

func summarizeRecord(record map[string]any) string {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, record[k]))
	}
	return strings.Join(parts, ", ")
}
