package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaProvider generates ideas with a local Ollama model. A daemon that is
// down or a model that has not been pulled counts as not configured.
type OllamaProvider struct {
	Model   string
	BaseURL string
	client  *http.Client
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(model, baseURL string) *OllamaProvider {
	return &OllamaProvider{
		Model:   model,
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type ollamaTags struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// IsConfigured reports whether the daemon answers and lists the model.
func (o *OllamaProvider) IsConfigured() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return o.hasModel(ctx) == nil
}

// hasModel returns ErrNotConfigured when the model is not available locally.
func (o *OllamaProvider) hasModel(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", o.BaseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: ollama unreachable at %s", ErrNotConfigured, o.BaseURL)
	}
	defer resp.Body.Close()

	var tags ollamaTags
	if resp.StatusCode != http.StatusOK || json.NewDecoder(resp.Body).Decode(&tags) != nil {
		return fmt.Errorf("%w: ollama returned no model list", ErrNotConfigured)
	}

	base := strings.SplitN(o.Model, ":", 2)[0]
	for _, m := range tags.Models {
		if m.Name == o.Model || strings.SplitN(m.Name, ":", 2)[0] == base {
			return nil
		}
	}
	return fmt.Errorf("%w: ollama model %q is not pulled", ErrNotConfigured, o.Model)
}

// Generate asks the model for JSON output and returns it verbatim.
func (o *OllamaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	data, err := json.Marshal(ollamaGenerateRequest{
		Model:  o.Model,
		Prompt: prompt,
		Format: "json",
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.BaseURL+"/api/generate", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("ollama API error: %w", err)
		}
		return "", fmt.Errorf("%w: ollama unreachable: %v", ErrNotConfigured, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var result ollamaGenerateResponse
	decodeErr := json.Unmarshal(body, &result)

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: ollama model %q is not pulled", ErrNotConfigured, o.Model)
	}
	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && result.Error != "" {
			return "", fmt.Errorf("ollama API returned %d: %s", resp.StatusCode, result.Error)
		}
		return "", fmt.Errorf("ollama API returned %d: %s", resp.StatusCode, string(body))
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decoding response: %w", decodeErr)
	}
	return result.Response, nil
}
