package helper

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const (
	DefaultLLMBaseURL = "https://openrouter.ai/api/v1"
	DefaultLLMModel   = "qwen/qwen-2.5-72b-instruct"
)

// LLMConfiguration holds the settings for the OpenAI compatible answer endpoint
type LLMConfiguration struct {
	BaseURL string
	APIKey  string
	Model   string
}

// NewLLMConfiguration reads the answer generation settings from the environment.
// OPENROUTER_API_KEY is required, base URL and model fall back to OpenRouter defaults.
func NewLLMConfiguration() (*LLMConfiguration, error) {
	_ = godotenv.Load()

	config := &LLMConfiguration{
		BaseURL: envOr("EVENTRAG_LLM_BASE_URL", DefaultLLMBaseURL),
		APIKey:  os.Getenv("OPENROUTER_API_KEY"),
		Model:   envOr("EVENTRAG_LLM_MODEL", DefaultLLMModel),
	}

	if config.APIKey == "" {
		return nil, NewError("llm configuration", fmt.Errorf("OPENROUTER_API_KEY must be set"))
	}

	return config, nil
}
