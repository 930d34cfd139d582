package config_test

import (
	"strings"
	"testing"

	"github.com/nail-agent/nail/internal/config"
)

func TestValidate_RejectsMissingDataPaths(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader(`
environment:
  transport: mock
`))
	if err == nil {
		t.Fatal("expected an error when data paths are missing")
	}
	if !strings.Contains(err.Error(), "ngram_model_path") {
		t.Errorf("error should mention ngram_model_path, got: %v", err)
	}
	if !strings.Contains(err.Error(), "fasttext_model_path") {
		t.Errorf("error should mention fasttext_model_path, got: %v", err)
	}
}

func TestValidate_TextenvRequiresURL(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader(`
environment:
  transport: textenv
data:
  ngram_model_path: "./data/lm.trie"
  fasttext_model_path: "./data/validity.bin"
`))
	if err == nil {
		t.Fatal("expected an error when textenv transport has no URL")
	}
	if !strings.Contains(err.Error(), "environment.url") {
		t.Errorf("error should mention environment.url, got: %v", err)
	}
}

func TestValidate_MockTransportNeedsNoURL(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader(`
environment:
  transport: mock
data:
  ngram_model_path: "./data/lm.trie"
  fasttext_model_path: "./data/validity.bin"
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RejectsUnknownTransport(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader(`
environment:
  transport: bogus
data:
  ngram_model_path: "./data/lm.trie"
  fasttext_model_path: "./data/validity.bin"
`))
	if err == nil {
		t.Fatal("expected an error for an unrecognised transport")
	}
	if !strings.Contains(err.Error(), "environment.transport") {
		t.Errorf("error should mention environment.transport, got: %v", err)
	}
}

func TestValidate_RejectsNegativeStepBudget(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader(`
data:
  ngram_model_path: "./data/lm.trie"
  fasttext_model_path: "./data/validity.bin"
agent:
  step_budget: -1
`))
	if err == nil {
		t.Fatal("expected an error for a negative step budget")
	}
}

func TestValidate_MCPStreamableHTTPRequiresListenAddr(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader(`
data:
  ngram_model_path: "./data/lm.trie"
  fasttext_model_path: "./data/validity.bin"
mcp:
  enabled: true
  transport: streamable-http
`))
	if err == nil {
		t.Fatal("expected an error for a streamable-http introspection server without a listen address")
	}
	if !strings.Contains(err.Error(), "listen_addr is required") {
		t.Errorf("error should mention the missing listen_addr, got: %v", err)
	}
}

func TestValidate_MCPDisabledSkipsValidation(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader(`
environment:
  url: "ws://localhost:9000/play"
data:
  ngram_model_path: "./data/lm.trie"
  fasttext_model_path: "./data/validity.bin"
mcp:
  enabled: false
`))
	if err != nil {
		t.Fatalf("unexpected error when mcp is disabled: %v", err)
	}
}

func TestValidate_MCPDefaultsTransportToStdioWhenEnabled(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(`
environment:
  url: "ws://localhost:9000/play"
data:
  ngram_model_path: "./data/lm.trie"
  fasttext_model_path: "./data/validity.bin"
mcp:
  enabled: true
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MCP.Transport != "stdio" {
		t.Errorf("mcp.transport = %q, want stdio default", cfg.MCP.Transport)
	}
}

func TestValidate_MultipleErrorsAreJoined(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader(`
environment:
  transport: textenv
agent:
  step_budget: -5
`))
	if err == nil {
		t.Fatal("expected errors, got nil")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "environment.url") {
		t.Errorf("expected environment.url error, got: %v", errStr)
	}
	if !strings.Contains(errStr, "step_budget") {
		t.Errorf("expected step_budget error, got: %v", errStr)
	}
}
