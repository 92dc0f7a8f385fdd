// Package gateway implements the JSON-RPC client for the todo tool gateway.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stratos/todochat/internal/schema"
	"github.com/stratos/todochat/internal/types"
	"go.uber.org/zap"
)

// invalidCredentialsDetail is the structural marker the gateway puts in the
// response body when the bearer token is missing or rejected.
const invalidCredentialsDetail = "Invalid authentication credentials"

// schemaMethod is the gateway operation that returns the tool catalog.
const schemaMethod = "mcp.schema"

// AuthError reports that the gateway rejected the caller's credential. It
// carries the attempted call and the raw body for the 401 response.
type AuthError struct {
	Call *types.ToolCall
	Raw  json.RawMessage
}

func (e *AuthError) Error() string {
	if e.Call != nil {
		return fmt.Sprintf("gateway rejected credentials during %s", e.Call.Method)
	}
	return "gateway rejected credentials"
}

// Client talks JSON-RPC 2.0 over HTTP POST to the tool gateway. It holds no
// per-request state and is safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a gateway client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type rpcRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      string         `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
}

// Invoke dispatches a named operation with arguments and returns the raw
// structured result. When the response carries a JSON-RPC result field, the
// result is unwrapped; anything else (error envelopes included) is passed
// through whole so callers can react to whatever shape came back. A rejected
// credential is the one shape that is not passed through: it becomes an
// *AuthError so the orchestration run can short-circuit.
func (c *Client) Invoke(ctx context.Context, token, method string, params map[string]any) (json.RawMessage, error) {
	if params == nil {
		params = map[string]any{}
	}
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      "tool",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/mcp", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}

	if detail, ok := envelope["detail"]; ok {
		var s string
		if json.Unmarshal(detail, &s) == nil && s == invalidCredentialsDetail {
			c.logger.Warn("gateway rejected credentials", zap.String("method", method))
			raw, _ := json.Marshal(envelope)
			return nil, &AuthError{
				Call: &types.ToolCall{Method: method, Params: params},
				Raw:  raw,
			}
		}
	}

	if result, ok := envelope["result"]; ok {
		return result, nil
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("re-encode gateway response: %w", err)
	}
	return raw, nil
}

// Schema fetches the current tool catalog. Callers are expected to fetch once
// per orchestration run; the catalog is never cached here because the gateway
// may evolve between runs.
func (c *Client) Schema(ctx context.Context, token string) (schema.Catalog, error) {
	raw, err := c.Invoke(ctx, token, schemaMethod, map[string]any{})
	if err != nil {
		return schema.Catalog{}, err
	}

	var catalog schema.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return schema.Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}

	for i := range catalog.Methods {
		catalog.Methods[i].Params = schema.SanitizeParams(catalog.Methods[i].Params)
	}

	c.logger.Debug("fetched tool catalog",
		zap.String("version", catalog.Version),
		zap.Int("methods", len(catalog.Methods)))
	return catalog, nil
}
