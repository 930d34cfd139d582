package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// validTransports lists the recognised environment transports.
var validTransports = []string{"textenv", "mock"}

// The recognised MCP server transports.
const (
	mcpTransportStdio          = "stdio"
	mcpTransportStreamableHTTP = "streamable-http"
)

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Environment.Transport == "" {
		cfg.Environment.Transport = "textenv"
	}
	if cfg.Data.NgramOrder == 0 {
		cfg.Data.NgramOrder = 5
	}
	if cfg.Agent.StepBudget == 0 {
		cfg.Agent.StepBudget = 300
	}
	if cfg.Agent.LogDir == "" {
		cfg.Agent.LogDir = "./nail_logs"
	}
	if cfg.MCP.Enabled && cfg.MCP.Transport == "" {
		cfg.MCP.Transport = mcpTransportStdio
	}
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !validLogLevels[cfg.Server.LogLevel] {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if !contains(validTransports, cfg.Environment.Transport) {
		errs = append(errs, fmt.Errorf("environment.transport %q is invalid; valid values: %v", cfg.Environment.Transport, validTransports))
	}
	if cfg.Environment.Transport == "textenv" && cfg.Environment.URL == "" {
		errs = append(errs, errors.New("environment.url is required when environment.transport is textenv"))
	}

	if cfg.Data.NgramModelPath == "" {
		errs = append(errs, errors.New("data.ngram_model_path is required"))
	}
	if cfg.Data.FastTextModelPath == "" {
		errs = append(errs, errors.New("data.fasttext_model_path is required"))
	}
	if cfg.Agent.StepBudget < 0 {
		errs = append(errs, fmt.Errorf("agent.step_budget %d must be non-negative", cfg.Agent.StepBudget))
	}

	if cfg.Memory.PostgresDSN != "" && cfg.Memory.EmbeddingDimensions <= 0 {
		slog.Warn("memory.postgres_dsn is configured but memory.embedding_dimensions is not set; the location pre-filter will refuse to start")
	}

	if cfg.MCP.Enabled {
		if cfg.MCP.Transport != mcpTransportStdio && cfg.MCP.Transport != mcpTransportStreamableHTTP {
			errs = append(errs, fmt.Errorf("mcp.transport %q is invalid; valid values: stdio, streamable-http", cfg.MCP.Transport))
		}
		if cfg.MCP.Transport == mcpTransportStreamableHTTP && cfg.MCP.ListenAddr == "" {
			errs = append(errs, errors.New("mcp.listen_addr is required when mcp.transport is streamable-http"))
		}
	}

	return errors.Join(errs...)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
