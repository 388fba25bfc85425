package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the NeuroHub processes
type Config struct {
	General  GeneralConfig  `mapstructure:"general"`
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Agents   AgentsConfig   `mapstructure:"agents"`
	Tools    ToolsConfig    `mapstructure:"tools"`
	MCP      MCPConfig      `mapstructure:"mcp"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	LogLevel       string        `mapstructure:"log_level"`
	LogPretty      bool          `mapstructure:"log_pretty"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ServerConfig contains the REST API listener settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// ToolsConfig points the tool functions at the REST API.
type ToolsConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func (t ToolsConfig) Validate() error {
	if strings.TrimSpace(t.BaseURL) == "" {
		return fmt.Errorf("tools.base_url is required")
	}
	return nil
}

// MCPConfig controls the tool protocol server.
type MCPConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Transport string `mapstructure:"transport"`
}

func (m MCPConfig) Addr() string { return fmt.Sprintf("%s:%d", m.Host, m.Port) }

func (m MCPConfig) Validate() error {
	switch m.Transport {
	case "sse", "stdio":
	default:
		return fmt.Errorf("mcp.transport must be sse or stdio, got %q", m.Transport)
	}
	if m.Transport == "sse" && m.Port <= 0 {
		return fmt.Errorf("mcp.port must be > 0")
	}
	return nil
}

// AuthConfig carries the shared secret used between the router and agent servers.
// An empty secret disables service tokens and card signatures.
type AuthConfig struct {
	ServiceSecret string        `mapstructure:"service_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
}

// PipelineConfig bounds the signal analysis refinement loop.
type PipelineConfig struct {
	MaxIterations int `mapstructure:"max_iterations"`
}

func (p PipelineConfig) Normalize() PipelineConfig {
	if p.MaxIterations <= 0 {
		p.MaxIterations = 10
	}
	return p
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.log_pretty", false)
	v.SetDefault("general.request_timeout", 30*time.Second)

	v.SetDefault("server.address", ":8080")

	v.SetDefault("storage.postgres.url", "")
	v.SetDefault("storage.postgres.host", "localhost")
	v.SetDefault("storage.postgres.port", "5432")
	v.SetDefault("storage.postgres.user", "neurohub")
	v.SetDefault("storage.postgres.password", "")
	v.SetDefault("storage.postgres.dbname", "neurohub")
	v.SetDefault("storage.postgres.sslmode", "disable")
	v.SetDefault("storage.postgres.timeout", 10*time.Second)
	v.SetDefault("storage.redis.host", "")
	v.SetDefault("storage.redis.port", "6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.timeout", 5*time.Second)
	v.SetDefault("storage.redis.session_ttl", 24*time.Hour)

	v.SetDefault("llm.default_provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.providers.openai.type", "openai")
	v.SetDefault("llm.providers.openai.api_key", "")
	v.SetDefault("llm.providers.openai.base_url", "")
	v.SetDefault("llm.providers.openai.timeout", 60*time.Second)
	v.SetDefault("llm.providers.anthropic.type", "anthropic")
	v.SetDefault("llm.providers.anthropic.api_key", "")
	v.SetDefault("llm.providers.anthropic.base_url", "")
	v.SetDefault("llm.providers.anthropic.timeout", 60*time.Second)
	_ = v.BindEnv("llm.providers.openai.api_key", "NEUROHUB_LLM_PROVIDERS_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("llm.providers.anthropic.api_key", "NEUROHUB_LLM_PROVIDERS_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")

	v.SetDefault("agents.definitions_file", "")
	v.SetDefault("agents.host", "0.0.0.0")
	for name, port := range DefaultAgentPorts {
		v.SetDefault("agents.ports."+name, port)
		v.SetDefault("agents.endpoints."+name, "")
	}
	v.SetDefault("agents.probe_timeout", 30*time.Second)
	v.SetDefault("agents.invoke_timeout", 120*time.Second)

	v.SetDefault("tools.base_url", "http://localhost:8080/api")
	v.SetDefault("tools.timeout", 30*time.Second)
	_ = v.BindEnv("tools.base_url", "NEUROHUB_TOOLS_BASE_URL", "NEUROHUB_BASE_URL")

	v.SetDefault("mcp.host", "0.0.0.0")
	v.SetDefault("mcp.port", 8001)
	v.SetDefault("mcp.transport", "sse")

	v.SetDefault("auth.service_secret", "")
	v.SetDefault("auth.token_ttl", 5*time.Minute)

	v.SetDefault("pipeline.max_iterations", 10)
}

// Load reads configuration from an optional JSON file and NEUROHUB_* env vars.
// A missing config file is not an error; defaults cover every key.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	setDefaults(v)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if exe, err := os.Executable(); err == nil {
			exeDir := filepath.Dir(exe)
			v.AddConfigPath(exeDir)
			v.AddConfigPath(filepath.Join(exeDir, "..", "config"))
		}
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("NEUROHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Agents = cfg.Agents.Normalize()
	cfg.Pipeline = cfg.Pipeline.Normalize()
	cfg.LLM = cfg.LLM.Normalize()

	if err := cfg.Storage.Postgres.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.Redis.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Tools.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.MCP.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.LLM.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig is Load for process entry points: a broken configuration is fatal.
func LoadConfig(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	return cfg
}
