package llm

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/syedkumailraza2/buildboard/internal/config"
)

// ErrNotConfigured is returned when a provider has no API key or no
// reachable model.
var ErrNotConfigured = errors.New("provider not configured")

// Provider is the interface for upstream text generators.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	IsConfigured() bool
}

// CreateProvider creates a provider from the generation config. The provider
// is returned even when unconfigured so callers can report the missing key.
func CreateProvider(gen config.Generation) Provider {
	switch strings.ToLower(gen.Provider) {
	case "genai":
		p := NewGenAIProvider(gen.Model, gen.APIKeyEnv)
		log.Printf("Using Gemini SDK with model: %s", gen.Model)
		return p
	case "ollama":
		log.Printf("Using Ollama with model: %s", gen.OllamaModel)
		return NewOllamaProvider(gen.OllamaModel, gen.OllamaURL)
	default:
		log.Printf("Using Gemini with model: %s", gen.Model)
		return NewGeminiProvider(gen.Model, gen.BaseURL, gen.APIKeyEnv)
	}
}

// redactKey hides the key query parameter of a URL before it is logged.
func redactKey(u string) string {
	i := strings.Index(u, "key=")
	if i == -1 {
		return u
	}
	end := strings.IndexByte(u[i:], '&')
	if end == -1 {
		return u[:i] + "key=***"
	}
	return u[:i] + "key=***" + u[i+end:]
}
