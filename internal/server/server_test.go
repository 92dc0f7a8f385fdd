package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stratos/todochat/internal/gateway"
	"github.com/stratos/todochat/internal/orchestrator"
	"github.com/stratos/todochat/internal/types"
	"go.uber.org/zap"
)

type stubEngine struct {
	outcome orchestrator.Outcome
	err     error
	lastReq orchestrator.Request
}

func (s *stubEngine) Run(ctx context.Context, req orchestrator.Request) (orchestrator.Outcome, error) {
	s.lastReq = req
	return s.outcome, s.err
}

func postChat(t *testing.T, handler http.Handler, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(data))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func validBody() types.ChatRequest {
	return types.ChatRequest{
		Messages: []types.Message{{Role: types.RoleUser, Content: "list my todos"}},
	}
}

func TestHandleChat_Success(t *testing.T) {
	engine := &stubEngine{outcome: orchestrator.Outcome{
		Reply: "1. Buy milk",
		ToolSteps: []types.ToolStep{
			{Name: "todos.list", Args: map[string]any{}, Result: json.RawMessage(`[{"id":1}]`)},
		},
	}}
	srv := New(engine, true, zap.NewNop())

	rec := postChat(t, srv.Handler(), validBody(), "tok123")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp types.ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Reply != "1. Buy milk" || len(resp.ToolSteps) != 1 {
		t.Errorf("resp = %+v", resp)
	}
	if engine.lastReq.Token != "tok123" {
		t.Errorf("token = %q", engine.lastReq.Token)
	}
}

func TestHandleChat_MissingAPIKey(t *testing.T) {
	srv := New(&stubEngine{}, false, zap.NewNop())
	rec := postChat(t, srv.Handler(), validBody(), "tok")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp types.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Error == "" {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestHandleChat_MissingToken(t *testing.T) {
	srv := New(&stubEngine{}, true, zap.NewNop())
	rec := postChat(t, srv.Handler(), validBody(), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandleChat_BodyTokenFallback(t *testing.T) {
	engine := &stubEngine{outcome: orchestrator.Outcome{Reply: "ok"}}
	srv := New(engine, true, zap.NewNop())

	body := validBody()
	body.Token = "body-token"
	rec := postChat(t, srv.Handler(), body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if engine.lastReq.Token != "body-token" {
		t.Errorf("token = %q", engine.lastReq.Token)
	}
}

func TestHandleChat_AuthErrorBecomesReauth(t *testing.T) {
	engine := &stubEngine{err: &gateway.AuthError{
		Call: &types.ToolCall{Method: "todos.list", Params: map[string]any{}},
		Raw:  json.RawMessage(`{"detail":"Invalid authentication credentials"}`),
	}}
	srv := New(engine, true, zap.NewNop())

	rec := postChat(t, srv.Handler(), validBody(), "expired")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp types.ReauthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Message != "Please login again to use tools." {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.ToolCall == nil || resp.ToolCall.Method != "todos.list" {
		t.Errorf("tool call = %+v", resp.ToolCall)
	}
}

func TestHandleChat_BadRequests(t *testing.T) {
	srv := New(&stubEngine{}, true, zap.NewNop())
	handler := srv.Handler()

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Authorization", "Bearer tok")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("no messages", func(t *testing.T) {
		rec := postChat(t, handler, types.ChatRequest{}, "tok")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestHealthz(t *testing.T) {
	srv := New(&stubEngine{}, true, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
