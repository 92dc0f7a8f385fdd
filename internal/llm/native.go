package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/stratos/todochat/internal/schema"
	"github.com/stratos/todochat/internal/types"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// NativeInvoker grounds the model through Gemini's own function-calling
// mechanism: the catalog is declared as first-class callable functions and
// the model's structured call is used instead of JSON-in-text.
type NativeInvoker struct {
	gemini *Gemini
	logger *zap.Logger
}

// NewNativeInvoker creates a function-calling-grounded invoker.
func NewNativeInvoker(gemini *Gemini, logger *zap.Logger) *NativeInvoker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NativeInvoker{gemini: gemini, logger: logger}
}

// Generate runs one model invocation with the catalog declared as functions.
func (n *NativeInvoker) Generate(ctx context.Context, req Request) (Result, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: BuildSystemPrompt(req)}},
		},
	}
	if tools := declareTools(req.Catalog); tools != nil {
		config.Tools = tools
		config.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeAuto,
			},
		}
	}

	resp, err := n.gemini.generate(ctx, nativeContents(req.Turns), config)
	if err != nil {
		return Result{}, err
	}

	if call := responseFunctionCall(resp); call != nil {
		n.logger.Debug("model requested function call", zap.String("name", call.Name))
		args := call.Args
		if args == nil {
			args = map[string]any{}
		}
		return Result{Kind: KindFunctionCall, Name: call.Name, Args: args}, nil
	}
	return Result{Kind: KindText, Text: responseText(resp)}, nil
}

// declareTools converts the catalog into Gemini function declarations.
func declareTools(catalog schema.Catalog) []*genai.Tool {
	if len(catalog.Methods) == 0 {
		return nil
	}

	declarations := make([]*genai.FunctionDeclaration, 0, len(catalog.Methods))
	for _, method := range catalog.Methods {
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        method.Name,
			Description: method.Description,
			Parameters:  parametersSchema(method.Params),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: declarations}}
}

// parametersSchema builds the object schema for a method's parameters. The
// gateway marks required parameters with a boolean inside each fragment;
// those markers are lifted into the object-level required list.
func parametersSchema(params map[string]any) *genai.Schema {
	obj := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: map[string]*genai.Schema{},
	}
	for name, fragment := range params {
		fragMap, ok := schema.Sanitize(fragment).(map[string]any)
		if !ok {
			continue
		}
		if required, _ := fragMap["required"].(bool); required {
			obj.Required = append(obj.Required, name)
		}
		obj.Properties[name] = toGeminiSchema(fragMap)
	}
	return obj
}

// toGeminiSchema recursively converts a sanitized JSON-Schema fragment to the
// SDK's schema type. Type unions like ["string","null"] collapse to the first
// non-null member.
func toGeminiSchema(fragment map[string]any) *genai.Schema {
	out := &genai.Schema{}

	switch t := fragment["type"].(type) {
	case string:
		out.Type = genai.Type(strings.ToUpper(t))
	case []any:
		for _, alt := range t {
			if s, ok := alt.(string); ok && s != "null" {
				out.Type = genai.Type(strings.ToUpper(s))
				break
			}
		}
	}

	if desc, ok := fragment["description"].(string); ok {
		out.Description = desc
	}
	if format, ok := fragment["format"].(string); ok {
		out.Format = format
	}
	if enum, ok := fragment["enum"].([]any); ok {
		for _, e := range enum {
			if s, ok := e.(string); ok {
				out.Enum = append(out.Enum, s)
			}
		}
	}
	if props, ok := fragment["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if pm, ok := p.(map[string]any); ok {
				out.Properties[name] = toGeminiSchema(pm)
			}
		}
	}
	if required, ok := fragment["required"].([]any); ok {
		for _, r := range required {
			if s, ok := r.(string); ok {
				out.Required = append(out.Required, s)
			}
		}
	}
	if items, ok := fragment["items"].(map[string]any); ok {
		out.Items = toGeminiSchema(items)
	}
	return out
}

// nativeContents renders the transcript with native call/response parts.
func nativeContents(turns []Turn) []*genai.Content {
	var contents []*genai.Content
	for _, turn := range turns {
		switch turn.Role {
		case types.RoleModel:
			if turn.Call != nil {
				contents = append(contents, &genai.Content{
					Role: genai.RoleModel,
					Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{
						Name: turn.Call.Method,
						Args: turn.Call.Params,
					}}},
				})
				continue
			}
			contents = append(contents, textContent(genai.RoleModel, turn.Content))
		case types.RoleTool:
			name := "tool"
			if turn.Call != nil {
				name = turn.Call.Method
			}
			contents = append(contents, &genai.Content{
				Role: genai.RoleUser,
				Parts: []*genai.Part{{FunctionResponse: &genai.FunctionResponse{
					Name:     name,
					Response: functionResponseBody(turn.Result),
				}}},
			})
		default:
			contents = append(contents, textContent(genai.RoleUser, turn.Content))
		}
	}
	return contents
}

// functionResponseBody shapes a raw tool result into the object Gemini
// expects. Non-object results are wrapped under a "result" key.
func functionResponseBody(raw json.RawMessage) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj
	}
	var anyVal any
	if err := json.Unmarshal(raw, &anyVal); err == nil {
		return map[string]any{"result": anyVal}
	}
	return map[string]any{"result": string(raw)}
}
