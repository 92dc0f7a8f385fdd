package intent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/stratos/todochat/internal/types"
)

// NoResponseReply is the literal last-resort message when no heuristic fires.
const NoResponseReply = "I could not get a response from the model."

// titleRegexp is the best-effort extraction of a todo title from phrasings
// like `create a todo called "pay rent"` or `create task to water plants`.
var titleRegexp = regexp.MustCompile(`(?i)create\s+(?:a\s+)?(?:todo|task)\s+(?:called\s+|named\s+|to\s+)?"?([^"\n]+)"?`)

const defaultTitle = "New task"

// Fallback applies the narrow keyword heuristics, in priority order, when the
// loop ended with neither model text nor an executed tool. input is the
// joined windowed conversation text; toolContext is the caller's last tool
// result, used only for the single-result toggle shortcut. A nil plan means
// the caller should return NoResponseReply.
func Fallback(input string, toolContext json.RawMessage) *Plan {
	lower := strings.ToLower(input)

	if plan := toggleSingleResult(lower, toolContext); plan != nil {
		return plan
	}

	hasSubject := strings.Contains(lower, "todo") || strings.Contains(lower, "task")
	if strings.Contains(lower, "list") && hasSubject {
		return &Plan{
			Call:  &types.ToolCall{Method: "todos.list", Params: map[string]any{}},
			Reply: "Listed your todos.",
		}
	}
	if strings.Contains(lower, "create") && hasSubject {
		title := ExtractTitle(input)
		return &Plan{
			Call:  &types.ToolCall{Method: "todos.create", Params: map[string]any{"title": title}},
			Reply: fmt.Sprintf("Created todo: %s", title),
		}
	}
	return nil
}

// toggleSingleResult fires when the previous tool call returned exactly one
// item and the user is asking to toggle it.
func toggleSingleResult(lower string, toolContext json.RawMessage) *Plan {
	if !strings.Contains(lower, "toggle") {
		return nil
	}
	items, ok := contextItems(toolContext)
	if !ok || len(items) != 1 {
		return nil
	}
	id, ok := items[0]["id"]
	if !ok {
		return nil
	}
	return &Plan{
		Call:  &types.ToolCall{Method: "todos.toggle", Params: map[string]any{"id": id}},
		Reply: fmt.Sprintf("Toggled todo id %v.", id),
	}
}

// contextItems pulls the item list out of the caller's tool context, which
// may be the bare list or wrapped in a result field.
func contextItems(toolContext json.RawMessage) ([]map[string]any, bool) {
	if len(toolContext) == 0 {
		return nil, false
	}

	var wrapped struct {
		Result []map[string]any `json:"result"`
	}
	if err := json.Unmarshal(toolContext, &wrapped); err == nil && wrapped.Result != nil {
		return wrapped.Result, true
	}

	var bare []map[string]any
	if err := json.Unmarshal(toolContext, &bare); err == nil {
		return bare, true
	}
	return nil, false
}

// ExtractTitle pulls a quoted or clause-delimited title from a create
// phrasing, defaulting to "New task".
func ExtractTitle(input string) string {
	match := titleRegexp.FindStringSubmatch(input)
	if match == nil {
		return defaultTitle
	}
	title := strings.TrimSpace(strings.Trim(match[1], `"`))
	if title == "" {
		return defaultTitle
	}
	return title
}
