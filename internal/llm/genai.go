package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"google.golang.org/genai"
)

// GenAIProvider calls Gemini through the official Go SDK.
type GenAIProvider struct {
	Model  string
	APIKey string

	mu     sync.Mutex
	client *genai.Client
}

// NewGenAIProvider creates an SDK-backed provider reading its key from apiKeyEnv.
func NewGenAIProvider(model, apiKeyEnv string) *GenAIProvider {
	return &GenAIProvider{
		Model:  model,
		APIKey: os.Getenv(apiKeyEnv),
	}
}

// IsConfigured checks if the API key is set.
func (g *GenAIProvider) IsConfigured() bool {
	return g.APIKey != ""
}

// ensureClient creates the SDK client on first use. A failed attempt is not cached,
// so the next request tries again.
func (g *GenAIProvider) ensureClient() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return nil
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  g.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return err
	}
	g.client = client
	return nil
}

// Generate sends a prompt through the SDK. As with the REST provider, an empty
// answer is replaced by the serialized response.
func (g *GenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if g.APIKey == "" {
		return "", ErrNotConfigured
	}
	if err := g.ensureClient(); err != nil {
		return "", fmt.Errorf("creating genai client: %w", err)
	}

	result, err := g.client.Models.GenerateContent(ctx, g.Model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("genai API error: %w", err)
	}

	if text := result.Text(); text != "" {
		return text, nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshaling response: %w", err)
	}
	return string(data), nil
}
