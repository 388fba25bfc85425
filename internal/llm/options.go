package llm

import "time"

// Options configure a provider model.
type Options struct {
	Name        string
	Temperature float64
	MaxTokens   int64
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
}
