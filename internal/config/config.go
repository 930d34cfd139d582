// Package config provides the configuration schema, loader, and
// validation for the nail interactive-fiction agent.
package config

// Config is the root configuration structure for nail. It is
// typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Environment EnvironmentConfig `yaml:"environment"`
	Data        DataConfig        `yaml:"data"`
	Agent       AgentConfig       `yaml:"agent"`
	Memory      MemoryConfig      `yaml:"memory"`
	MCP         MCPConfig         `yaml:"mcp"`
}

// ServerConfig holds network and logging settings for the optional
// health/metrics/MCP server.
type ServerConfig struct {
	// ListenAddr is the TCP address the health/metrics server listens
	// on when --serve is passed (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity. Valid values: "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`
}

// EnvironmentConfig selects and configures the game environment
// transport (internal/engine).
type EnvironmentConfig struct {
	// Transport selects the environment implementation. Valid values:
	// "textenv" (WebSocket) or "mock" (in-memory, tests only).
	Transport string `yaml:"transport"`

	// URL is the WebSocket endpoint used when Transport is "textenv".
	URL string `yaml:"url"`

	// GamePath is the path to the game file handed to the host process
	// behind the WebSocket endpoint (a .z5/.z8/.gblorb ROM, typically).
	GamePath string `yaml:"game_path"`
}

// DataConfig locates the trained artefacts the agent's native
// bindings load: the n-gram language model and the fastText validity
// classifier, plus the calibration and vocabulary tables in
// internal/affordance.
type DataConfig struct {
	// Dir is the root directory every relative path below is resolved
	// against.
	Dir string `yaml:"dir"`

	// NgramModelPath is the n-gram trie model path (a ".utrie"
	// companion file must exist alongside it).
	NgramModelPath string `yaml:"ngram_model_path"`

	// NgramPad is the padding token the n-gram model was trained with.
	NgramPad string `yaml:"ngram_pad"`

	// NgramOrder is the n-gram order used for conditional log-prob
	// queries.
	NgramOrder int `yaml:"ngram_order"`

	// FastTextModelPath is the trained validity classifier model path.
	FastTextModelPath string `yaml:"fasttext_model_path"`

	// CalibrationPath is the tab-separated calibration-threshold table produced
	// by an offline grid search (see internal/affordance).
	CalibrationPath string `yaml:"calibration_path"`
}

// AgentConfig controls the arbiter's run loop.
type AgentConfig struct {
	// StepBudget is the maximum number of environment steps the
	// arbiter will take before stopping, per playthrough.
	StepBudget int `yaml:"step_budget"`

	// Seed seeds every random source in the agent (module tie-breaks,
	// idler sampling, promotion choices), for reproducible runs.
	Seed int64 `yaml:"seed"`

	// LogDir is the directory the knowledge-graph snapshot file is
	// written to after a run.
	LogDir string `yaml:"log_dir"`
}

// MemoryConfig holds settings for the optional pgvector-backed
// location-embedding pre-filter (internal/kgstore/postgres).
type MemoryConfig struct {
	// PostgresDSN is the PostgreSQL connection string. Leave empty to
	// disable the pre-filter entirely.
	PostgresDSN string `yaml:"postgres_dsn"`

	// EmbeddingDimensions is the vector dimension used for the
	// embeddings column.
	EmbeddingDimensions int `yaml:"embedding_dimensions"`
}

// MCPConfig controls whether and how the optional
// knowledge_graph_snapshot introspection tool (internal/mcpintrospect)
// is exposed. It is only consulted when the agent is started with
// --serve.
type MCPConfig struct {
	// Enabled starts the introspection server alongside the agent.
	Enabled bool `yaml:"enabled"`

	// Transport selects how the introspection server is exposed. Valid
	// values: "stdio", "streamable-http".
	Transport string `yaml:"transport"`

	// ListenAddr is the HTTP address the introspection server listens
	// on when Transport is "streamable-http". Ignored for stdio.
	ListenAddr string `yaml:"listen_addr"`
}
