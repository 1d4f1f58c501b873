package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete Orion configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Server    ServerConfig    `json:"server" mapstructure:"server"`
	Security  SecurityConfig  `json:"security" mapstructure:"security"`
	Retrieval RetrievalConfig `json:"retrieval" mapstructure:"retrieval"`
	LLM       LLMConfig       `json:"llm" mapstructure:"llm"`
	Storage   StorageConfig   `json:"storage" mapstructure:"storage"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Addr string `json:"addr" mapstructure:"addr"`
}

// SecurityConfig contains security gate configuration
type SecurityConfig struct {
	MaxQueriesPerMinute int    `json:"maxQueriesPerMinute" mapstructure:"maxQueriesPerMinute"`
	MaxQueriesPerHour   int    `json:"maxQueriesPerHour" mapstructure:"maxQueriesPerHour"`
	MaxResponseTokens   int    `json:"maxResponseTokens" mapstructure:"maxResponseTokens"`
	RateLimitEnabled    bool   `json:"rateLimitEnabled" mapstructure:"rateLimitEnabled"`
	PatternsFile        string `json:"patternsFile" mapstructure:"patternsFile"`
}

// RetrievalConfig contains retrieval and context assembly configuration
type RetrievalConfig struct {
	TopK             int `json:"topK" mapstructure:"topK"`
	MaxContextChunks int `json:"maxContextChunks" mapstructure:"maxContextChunks"`
	MaxSources       int `json:"maxSources" mapstructure:"maxSources"`
}

// LLMConfig contains text-generation client configuration.
// The API key is read from the OPENAI_API_KEY environment variable, never
// from the config file.
type LLMConfig struct {
	BaseURL      string  `json:"baseUrl" mapstructure:"baseUrl"`
	Model        string  `json:"model" mapstructure:"model"`
	Temperature  float64 `json:"temperature" mapstructure:"temperature"`
	MaxTokens    int     `json:"maxTokens" mapstructure:"maxTokens"`
	HistoryTurns int     `json:"historyTurns" mapstructure:"historyTurns"`
}

// StorageConfig contains summary store configuration
type StorageConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			Addr: ":8080",
		},
		Security: SecurityConfig{
			MaxQueriesPerMinute: 10,
			MaxQueriesPerHour:   100,
			MaxResponseTokens:   2000,
			RateLimitEnabled:    true,
		},
		Retrieval: RetrievalConfig{
			TopK:             10,
			MaxContextChunks: 8,
			MaxSources:       5,
		},
		LLM: LLMConfig{
			BaseURL:      "https://api.openai.com/v1",
			Model:        "gpt-5.1",
			Temperature:  0.7,
			MaxTokens:    4000,
			HistoryTurns: 5,
		},
		Storage: StorageConfig{
			Path: filepath.Join("data", "orion.db"),
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <dir>/orion.json, falling back to
// defaults when no config file exists.
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("orion")
	v.SetConfigType("json")
	v.AddConfigPath(dir)

	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("security.maxQueriesPerMinute", defaults.Security.MaxQueriesPerMinute)
	v.SetDefault("security.maxQueriesPerHour", defaults.Security.MaxQueriesPerHour)
	v.SetDefault("security.maxResponseTokens", defaults.Security.MaxResponseTokens)
	v.SetDefault("security.rateLimitEnabled", defaults.Security.RateLimitEnabled)
	v.SetDefault("retrieval.topK", defaults.Retrieval.TopK)
	v.SetDefault("retrieval.maxContextChunks", defaults.Retrieval.MaxContextChunks)
	v.SetDefault("retrieval.maxSources", defaults.Retrieval.MaxSources)
	v.SetDefault("llm.baseUrl", defaults.LLM.BaseURL)
	v.SetDefault("llm.model", defaults.LLM.Model)
	v.SetDefault("llm.temperature", defaults.LLM.Temperature)
	v.SetDefault("llm.maxTokens", defaults.LLM.MaxTokens)
	v.SetDefault("llm.historyTurns", defaults.LLM.HistoryTurns)
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to <dir>/orion.json
func (c *Config) Save(dir string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "orion.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Security.MaxQueriesPerMinute <= 0 {
		return &ConfigError{Field: "security.maxQueriesPerMinute", Message: "must be positive"}
	}
	if c.Security.MaxQueriesPerHour <= 0 {
		return &ConfigError{Field: "security.maxQueriesPerHour", Message: "must be positive"}
	}
	if c.Security.MaxResponseTokens <= 0 {
		return &ConfigError{Field: "security.maxResponseTokens", Message: "must be positive"}
	}
	if c.Retrieval.TopK <= 0 {
		return &ConfigError{Field: "retrieval.topK", Message: "must be positive"}
	}
	if c.Retrieval.MaxContextChunks <= 0 {
		return &ConfigError{Field: "retrieval.maxContextChunks", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
