package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// DefaultGeminiBaseURL is the public generative-language endpoint.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1"

// GeminiProvider calls the generateContent REST endpoint directly.
type GeminiProvider struct {
	Model   string
	BaseURL string
	APIKey  string
	client  *http.Client
}

// NewGeminiProvider creates a Gemini provider reading its key from apiKeyEnv.
func NewGeminiProvider(model, baseURL, apiKeyEnv string) *GeminiProvider {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	return &GeminiProvider{
		Model:   model,
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  os.Getenv(apiKeyEnv),
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// IsConfigured checks if the API key is set.
func (g *GeminiProvider) IsConfigured() bool {
	return g.APIKey != ""
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate sends a prompt to Gemini and returns the first candidate's text.
// When the response has no candidate text, the whole body is returned as
// compact JSON so the caller still sees what came back.
func (g *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if g.APIKey == "" {
		return "", ErrNotConfigured
	}

	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.BaseURL, url.PathEscape(g.Model), url.QueryEscape(g.APIKey))

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = redactKey(ue.URL)
		}
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("gemini API returned %d for %s", resp.StatusCode, redactKey(endpoint))
	}

	if !json.Valid(respBody) {
		return "", fmt.Errorf("decoding response: invalid JSON body (status %d)", resp.StatusCode)
	}

	// Bodies of an unexpected shape fall through to the compact copy below.
	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err == nil {
		if text := candidateText(result); text != "" {
			return text, nil
		}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, respBody); err != nil {
		return "", fmt.Errorf("compacting response: %w", err)
	}
	return compact.String(), nil
}

func candidateText(r geminiResponse) string {
	if len(r.Candidates) == 0 {
		return ""
	}
	c := r.Candidates[0].Content
	if c == nil || len(c.Parts) == 0 {
		return ""
	}
	return c.Parts[0].Text
}
