package ui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stratos/todochat/internal/conversation"
	"github.com/stratos/todochat/internal/types"
)

func TestChatClient_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token")
		}
		json.NewEncoder(w).Encode(types.ChatResponse{Reply: "1. Buy milk"})
	}))
	defer srv.Close()

	client := NewChatClient(srv.URL, "tok")
	resp, err := client.Send(context.Background(), types.ChatRequest{
		Messages: []types.Message{{Role: types.RoleUser, Content: "list"}},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Reply != "1. Buy milk" {
		t.Errorf("reply = %q", resp.Reply)
	}
}

func TestChatClient_Reauth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(types.ReauthResponse{Message: "Please login again to use tools."})
	}))
	defer srv.Close()

	client := NewChatClient(srv.URL, "expired")
	_, err := client.Send(context.Background(), types.ChatRequest{})

	var reauth *ErrReauth
	if !errors.As(err, &reauth) {
		t.Fatalf("err = %v, want ErrReauth", err)
	}
	if reauth.Message != "Please login again to use tools." {
		t.Errorf("message = %q", reauth.Message)
	}
}

func TestChatClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(types.ErrorResponse{Error: "boom"})
	}))
	defer srv.Close()

	client := NewChatClient(srv.URL, "tok")
	if _, err := client.Send(context.Background(), types.ChatRequest{}); err == nil {
		t.Error("expected error")
	}
}

func TestApplyReply(t *testing.T) {
	m := NewModel(nil, conversation.NewHistory(10, 3))

	m.applyReply(replyMsg{resp: types.ChatResponse{
		Reply: "Done.",
		ToolSteps: []types.ToolStep{
			{Name: "todos.toggle", Result: json.RawMessage(`{"id":1}`)},
		},
	}})

	if len(m.messages) != 2 {
		t.Fatalf("messages = %d, want 2 (step + assistant)", len(m.messages))
	}
	if m.messages[0].role != "step" || m.messages[1].content != "Done." {
		t.Errorf("transcript = %+v", m.messages)
	}
	if string(m.history.ToolContext()) != `{"id":1}` {
		t.Errorf("tool context = %s", m.history.ToolContext())
	}
}

func TestApplyReply_Reauth(t *testing.T) {
	m := NewModel(nil, conversation.NewHistory(10, 3))
	m.applyReply(replyMsg{err: &ErrReauth{Message: "Please login again to use tools."}})

	if len(m.messages) != 1 || m.messages[0].role != "system" {
		t.Fatalf("transcript = %+v", m.messages)
	}
}

func TestHandleCommand(t *testing.T) {
	m := NewModel(nil, conversation.NewHistory(10, 3))
	m.messages = append(m.messages, chatMessage{role: "user", content: "x"})
	m.history.AddMessage(types.Message{Role: types.RoleUser, Content: "x"})

	if _, handled := m.handleCommand("clear"); !handled {
		t.Fatal("clear not handled")
	}
	if len(m.messages) != 0 || len(m.history.Messages()) != 0 {
		t.Error("clear did not reset state")
	}

	if _, handled := m.handleCommand("list my todos"); handled {
		t.Error("ordinary input must not be consumed as a command")
	}
}

func TestBannerAndStyles(t *testing.T) {
	if Banner() == "" {
		t.Error("empty banner")
	}
	if rendered := DefaultStyles().BannerTitle.Render(Banner()); rendered == "" {
		t.Error("banner render failed")
	}
}
