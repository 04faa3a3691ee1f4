package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/syedkumailraza2/buildboard/internal/idea"
)

// Payload is what a relay round-trip yields.
type Payload struct {
	// Text is the model output, or a readable rendering of the relay reply.
	Text string
	// Value is set when the relay reply already carried a JSON object or
	// array in its text/output field; it needs no extraction.
	Value any
}

// ServerError is a non-2xx reply from the relay.
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return "server error: " + e.Body
}

// Client posts prompts to a relay endpoint.
type Client struct {
	URL    string
	client *http.Client
}

// NewClient creates a relay client. A zero timeout waits indefinitely.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		URL:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch sends a prompt to the relay. The reply's "text" field is preferred,
// then "output", then the whole reply rendered as indented JSON.
func (c *Client) Fetch(ctx context.Context, prompt string) (Payload, error) {
	data, err := json.Marshal(GenerateRequest{Prompt: prompt})
	if err != nil {
		return Payload{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.URL, bytes.NewReader(data))
	if err != nil {
		return Payload{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Payload{}, fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Payload{}, fmt.Errorf("reading relay response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Payload{}, &ServerError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var reply any
	if err := json.Unmarshal(body, &reply); err != nil {
		return Payload{}, fmt.Errorf("decoding relay response: %w", err)
	}

	if m, ok := reply.(map[string]any); ok {
		// Raw field bytes keep the relay's key order when re-indented.
		var fields map[string]json.RawMessage
		_ = json.Unmarshal(body, &fields)
		for _, key := range []string{"text", "output"} {
			if v := m[key]; idea.Truthy(v) {
				return payloadFrom(v, fields[key]), nil
			}
		}
	}
	return Payload{Text: indent(body, reply)}, nil
}

func payloadFrom(v any, raw json.RawMessage) Payload {
	switch x := v.(type) {
	case string:
		return Payload{Text: x}
	case map[string]any, []any:
		return Payload{Text: indent(raw, x), Value: x}
	default:
		data, _ := json.Marshal(x)
		return Payload{Text: string(data)}
	}
}

// indent renders raw JSON with two-space indentation, preserving key order.
// v is the decoded form, used only if raw cannot be indented.
func indent(raw []byte, v any) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err == nil {
		return strings.TrimSpace(buf.String())
	}
	buf.Reset()
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimRight(buf.String(), "\n")
}
