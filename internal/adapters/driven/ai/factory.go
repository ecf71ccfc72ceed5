package ai

import (
	"fmt"

	"github.com/juralis/juralis-core/internal/core/ports/driven"
)

// Provider names accepted by the factory.
const (
	ProviderOpenAI  = "openai"
	ProviderMistral = "mistral"
	ProviderOllama  = "ollama"
)

const mistralBaseURL = "https://api.mistral.ai/v1"

// EmbeddingSettings configures an embedding provider. Empty Provider
// means the capability is not configured and the system runs degraded.
type EmbeddingSettings struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// LLMSettings configures an LLM provider.
type LLMSettings struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// NewEmbeddingService builds the configured embedding provider.
// Returns (nil, nil) when no provider is configured.
func NewEmbeddingService(s EmbeddingSettings) (driven.EmbeddingService, error) {
	switch s.Provider {
	case "":
		return nil, nil
	case ProviderOpenAI:
		return NewOpenAIEmbedding(s.APIKey, s.Model, s.BaseURL)
	case ProviderMistral:
		baseURL := s.BaseURL
		if baseURL == "" {
			baseURL = mistralBaseURL
		}
		return NewOpenAIEmbedding(s.APIKey, s.Model, baseURL)
	case ProviderOllama:
		return NewOllamaEmbedding(s.BaseURL, s.Model)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", s.Provider)
	}
}

// NewLLMService builds the configured LLM provider.
// Returns (nil, nil) when no provider is configured.
func NewLLMService(s LLMSettings) (driven.LLMService, error) {
	switch s.Provider {
	case "":
		return nil, nil
	case ProviderOpenAI:
		return NewOpenAILLM(s.APIKey, s.Model, s.BaseURL)
	case ProviderMistral:
		baseURL := s.BaseURL
		if baseURL == "" {
			baseURL = mistralBaseURL
		}
		return NewOpenAILLM(s.APIKey, s.Model, baseURL)
	case ProviderOllama:
		// Ollama exposes an OpenAI-compatible chat API under /v1.
		baseURL := s.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return NewOpenAILLM("ollama", s.Model, baseURL+"/v1")
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", s.Provider)
	}
}
