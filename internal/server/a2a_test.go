package server

import (
	"context"
	"strings"
	"testing"

	"github.com/ethanolivertroy/saa-tui/internal/grc"
	"github.com/ethanolivertroy/saa-tui/internal/llm"
)

func TestValidate(t *testing.T) {
	cat, err := grc.Default()
	if err != nil {
		t.Fatal(err)
	}
	ok := llm.Config{Provider: llm.ProviderOllama, Model: "llama3.2", OllamaURL: "http://localhost:11434"}

	tests := []struct {
		name    string
		cfg     A2AConfig
		wantErr string
	}{
		{"valid", A2AConfig{Port: DefaultPort, Catalog: cat, LLMConfig: ok}, ""},
		{"zero port", A2AConfig{Catalog: cat, LLMConfig: ok}, "invalid port"},
		{"port too high", A2AConfig{Port: 70000, Catalog: cat, LLMConfig: ok}, "invalid port"},
		{"no catalogue", A2AConfig{Port: DefaultPort, LLMConfig: ok}, "catalogue"},
		{"bad llm", A2AConfig{Port: DefaultPort, Catalog: cat, LLMConfig: llm.Config{Provider: "nope"}}, "invalid LLM config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"", "http://localhost:8001"},
		{"0.0.0.0", "http://localhost:8001"},
		{"127.0.0.1", "http://127.0.0.1:8001"},
	}
	for _, tt := range tests {
		cfg := A2AConfig{Host: tt.host, Port: DefaultPort}
		if got := cfg.baseURL(); got != tt.want {
			t.Errorf("baseURL(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
	if got := (A2AConfig{Port: 9000}).launcherArgs(); strings.Join(got, " ") != "--port 9000" {
		t.Errorf("launcherArgs() = %v", got)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	err := RunA2AServer(context.Background(), A2AConfig{})
	if err == nil {
		t.Fatal("RunA2AServer() should fail without a port")
	}
}
