// Package llm wraps the external text-generation dependency behind a uniform
// completion contract. The orchestrator and chat service consume only the
// Client interface; provider selection happens at construction time.
package llm

import (
	"context"
	"fmt"

	"github.com/lhyssy/AI-Agent-code-web/internal/config"
)

// Message is one entry of an ordered prompt history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the text-completion gateway contract. Failures are reported as
// *errors.CompletionError, possibly after a single credential-refresh retry.
type Client interface {
	// Complete turns an ordered prompt history into a single text response.
	Complete(ctx context.Context, messages []Message) (string, error)

	// CompleteCode is the low-temperature variant used for code generation.
	CompleteCode(ctx context.Context, messages []Message) (string, error)
}

// New constructs a Client for the configured provider. The mock provider is
// an explicit opt-in for environments lacking live credentials; it is never
// substituted silently.
func New(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case config.ProviderErnie:
		return NewErnieClient(cfg), nil
	case config.ProviderMock:
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
