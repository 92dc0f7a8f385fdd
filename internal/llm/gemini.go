package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

// Gemini is the shared client both grounding strategies run on.
type Gemini struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGemini creates a Gemini client. The API key is required; model defaults
// to gemini-2.0-flash.
func NewGemini(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Gemini{client: client, model: model, logger: logger}, nil
}

func (g *Gemini) generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}
	return resp, nil
}

// responseText extracts the reply text: the SDK accessor first, then a manual
// walk through candidates and parts. A response with neither yields "".
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	if text := resp.Text(); text != "" {
		return text
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}

// responseFunctionCall extracts the first function call, if any, trying the
// SDK accessor before walking candidates. Nil means the result is text.
func responseFunctionCall(resp *genai.GenerateContentResponse) *genai.FunctionCall {
	if resp == nil {
		return nil
	}
	if calls := resp.FunctionCalls(); len(calls) > 0 {
		return calls[0]
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.FunctionCall != nil {
				return part.FunctionCall
			}
		}
	}
	return nil
}
