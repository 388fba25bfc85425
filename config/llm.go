package config

import (
	"fmt"
	"strings"
	"time"
)

// LLMConfig contains LLM provider configurations
type LLMConfig struct {
	Providers       map[string]LLMProvider `mapstructure:"providers"`
	DefaultProvider string                 `mapstructure:"default_provider"`
	Model           string                 `mapstructure:"model"`
	Temperature     float64                `mapstructure:"temperature"`
	MaxTokens       int                    `mapstructure:"max_tokens"`
}

// LLMProvider represents a single LLM provider configuration
type LLMProvider struct {
	Type    string        `mapstructure:"type"` // openai, anthropic
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func (c LLMConfig) Normalize() LLMConfig {
	c.DefaultProvider = strings.ToLower(strings.TrimSpace(c.DefaultProvider))
	if c.DefaultProvider == "" {
		c.DefaultProvider = "openai"
	}
	if strings.TrimSpace(c.Model) == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.Temperature < 0 {
		c.Temperature = 0
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 2048
	}
	return c
}

func (c LLMConfig) Validate() error {
	if _, ok := c.Providers[c.DefaultProvider]; !ok {
		return fmt.Errorf("llm.default_provider %q has no entry under llm.providers", c.DefaultProvider)
	}
	if c.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be <= 2")
	}
	return nil
}

// Provider returns the default provider configuration.
func (c LLMConfig) Provider() LLMProvider {
	p := c.Providers[c.DefaultProvider]
	if p.Type == "" {
		p.Type = c.DefaultProvider
	}
	return p
}
