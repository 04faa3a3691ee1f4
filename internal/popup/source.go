package popup

import (
	"context"

	"github.com/syedkumailraza2/buildboard/internal/llm"
	"github.com/syedkumailraza2/buildboard/internal/relay"
)

// ProviderSource calls an upstream provider in-process, skipping the HTTP hop
// to a relay.
type ProviderSource struct {
	Provider llm.Provider
}

// Fetch implements Source.
func (s ProviderSource) Fetch(ctx context.Context, prompt string) (relay.Payload, error) {
	text, err := s.Provider.Generate(ctx, prompt)
	if err != nil {
		return relay.Payload{}, err
	}
	return relay.Payload{Text: text}, nil
}
