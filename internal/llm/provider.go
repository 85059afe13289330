// Package llm builds the language model behind the SA&A assessor agent
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/adk/model"
)

// Supported providers
const (
	ProviderGemini = "gemini"
	ProviderVertex = "vertex"
	ProviderOllama = "ollama"
)

const (
	defaultGeminiModel = "gemini-2.0-flash"
	defaultOllamaModel = "llama3.2"
	defaultOllamaURL   = "http://localhost:11434"
)

// ErrUnknownProvider is returned for a provider name outside the supported set
var ErrUnknownProvider = errors.New("unknown LLM provider")

// Config holds LLM configuration
type Config struct {
	Provider       string // gemini, vertex or ollama
	Model          string
	APIKey         string // GEMINI_API_KEY
	VertexProject  string
	VertexLocation string
	OllamaURL      string
}

// ConfigFromEnv creates a Config from environment variables
func ConfigFromEnv() Config {
	provider := os.Getenv("LLM_PROVIDER")
	if provider == "" {
		provider = ProviderGemini
	}

	modelName := os.Getenv("LLM_MODEL")
	if modelName == "" {
		modelName = DefaultModel(provider)
	}

	ollamaURL := os.Getenv("OLLAMA_URL")
	if ollamaURL == "" {
		ollamaURL = defaultOllamaURL
	}

	return Config{
		Provider:       provider,
		Model:          modelName,
		APIKey:         os.Getenv("GEMINI_API_KEY"),
		VertexProject:  os.Getenv("VERTEX_PROJECT"),
		VertexLocation: os.Getenv("VERTEX_LOCATION"),
		OllamaURL:      ollamaURL,
	}
}

// DefaultModel returns the model used when LLM_MODEL is unset
func DefaultModel(provider string) string {
	if provider == ProviderOllama {
		return defaultOllamaModel
	}
	return defaultGeminiModel
}

// NewModel creates an ADK-compatible model based on the config
func NewModel(ctx context.Context, cfg Config) (model.LLM, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ProviderVertex:
		return NewVertexModel(ctx, cfg)
	case ProviderOllama:
		return NewOllamaModel(ctx, cfg)
	default:
		return NewGeminiModel(ctx, cfg)
	}
}

// Validate checks the config has what the selected provider needs
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, "":
		if c.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable is required for Gemini provider")
		}
	case ProviderVertex:
		if c.VertexProject == "" {
			return fmt.Errorf("VERTEX_PROJECT is required for Vertex AI provider")
		}
		if c.VertexLocation == "" {
			return fmt.Errorf("VERTEX_LOCATION is required for Vertex AI provider")
		}
	case ProviderOllama:
		if c.OllamaURL == "" {
			return fmt.Errorf("OLLAMA_URL is required for Ollama provider")
		}
	default:
		return fmt.Errorf("%w: %s (supported: gemini, vertex, ollama)", ErrUnknownProvider, c.Provider)
	}
	return nil
}

// Describe returns a short provider/model label for logs and banners
func (c Config) Describe() string {
	provider := c.Provider
	if provider == "" {
		provider = ProviderGemini
	}
	m := c.Model
	if m == "" {
		m = DefaultModel(provider)
	}
	return provider + "/" + m
}
