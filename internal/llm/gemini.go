package llm

import (
	"context"
	"fmt"

	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"
)

// NewGeminiModel creates a Gemini model authenticated by API key
func NewGeminiModel(ctx context.Context, cfg Config) (model.LLM, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
	}
	return newGenAIModel(ctx, cfg.Model, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
}

// NewVertexModel creates a Gemini model on the Vertex AI backend. Credentials
// come from Application Default Credentials.
func NewVertexModel(ctx context.Context, cfg Config) (model.LLM, error) {
	if cfg.VertexProject == "" || cfg.VertexLocation == "" {
		return nil, fmt.Errorf("VERTEX_PROJECT and VERTEX_LOCATION are required for Vertex AI provider")
	}
	return newGenAIModel(ctx, cfg.Model, &genai.ClientConfig{
		Project:  cfg.VertexProject,
		Location: cfg.VertexLocation,
		Backend:  genai.BackendVertexAI,
	})
}

func newGenAIModel(ctx context.Context, name string, cc *genai.ClientConfig) (model.LLM, error) {
	if name == "" {
		name = defaultGeminiModel
	}
	m, err := gemini.NewModel(ctx, name, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s model %s: %w", backendName(cc.Backend), name, err)
	}
	return m, nil
}

func backendName(b genai.Backend) string {
	if b == genai.BackendVertexAI {
		return "Vertex AI"
	}
	return "Gemini"
}
