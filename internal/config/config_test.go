package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
	if cfg.LLM.Grounding != "native" || cfg.LLM.MaxRounds != 4 {
		t.Errorf("llm defaults = %+v", cfg.LLM)
	}
	if cfg.Conversation.MessageWindow != 5 || cfg.Conversation.HistoryWindow != 3 {
		t.Errorf("conversation defaults = %+v", cfg.Conversation)
	}
	if cfg.LLM.Timeout != 120*time.Second {
		t.Errorf("llm.timeout = %v", cfg.LLM.Timeout)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `server:
  addr: ":9090"
llm:
  grounding: prompt
  max_rounds: 2
gateway:
  base_url: http://gateway:8000
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
	if cfg.LLM.Grounding != "prompt" || cfg.LLM.MaxRounds != 2 {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.Gateway.BaseURL != "http://gateway:8000" {
		t.Errorf("gateway.base_url = %q", cfg.Gateway.BaseURL)
	}
	// Untouched keys keep their defaults.
	if cfg.LLM.Model != "gemini-2.0-flash" {
		t.Errorf("llm.model = %q", cfg.LLM.Model)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TODOCHAT_SERVER_ADDR", ":7070")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad grounding", "llm:\n  grounding: magic\n"},
		{"bad rounds", "llm:\n  max_rounds: 0\n"},
		{"missing gateway", "gateway:\n  base_url: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	if APIKey() != "test-key" {
		t.Errorf("APIKey = %q", APIKey())
	}
}
