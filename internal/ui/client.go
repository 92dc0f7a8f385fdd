package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stratos/todochat/internal/types"
)

// ChatClient talks to a running todochat server from the terminal UI.
type ChatClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewChatClient(baseURL, token string) *ChatClient {
	return &ChatClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 150 * time.Second},
	}
}

// ErrReauth reports that the server asked the user to log in again.
type ErrReauth struct {
	Message string
}

func (e *ErrReauth) Error() string { return e.Message }

// Send posts one chat turn and decodes the reply.
func (c *ChatClient) Send(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return types.ChatResponse{}, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return types.ChatResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return types.ChatResponse{}, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out types.ChatResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return types.ChatResponse{}, fmt.Errorf("decode response: %w", err)
		}
		return out, nil

	case http.StatusUnauthorized:
		var reauth types.ReauthResponse
		if err := json.NewDecoder(resp.Body).Decode(&reauth); err == nil && reauth.Message != "" {
			return types.ChatResponse{}, &ErrReauth{Message: reauth.Message}
		}
		return types.ChatResponse{}, &ErrReauth{Message: "Authentication required."}

	default:
		var errResp types.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return types.ChatResponse{}, fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Error)
		}
		return types.ChatResponse{}, fmt.Errorf("server error: status %d", resp.StatusCode)
	}
}
