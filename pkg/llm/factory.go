package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/apperrors"
)

// Provider names accepted by the factory.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ProviderConfig is the server-level provider selection.
// The API key is supplied per call because it comes from the user's session.
type ProviderConfig struct {
	Provider  string
	Endpoint  string
	Model     string
	MaxTokens int
}

// LLMClientFactory is the interface for creating LLM clients.
// Use this interface for dependency injection and testing.
type LLMClientFactory interface {
	Create(apiKey string) (LLMClient, error)
}

// ClientFactory creates LLM clients for the configured provider.
type ClientFactory struct {
	cfg    ProviderConfig
	logger *zap.Logger
}

// NewClientFactory creates a new factory.
func NewClientFactory(cfg ProviderConfig, logger *zap.Logger) *ClientFactory {
	return &ClientFactory{cfg: cfg, logger: logger}
}

// Create returns a client authenticated with apiKey.
// An empty key fails with apperrors.ErrMissingAPIKey before any network call.
func (f *ClientFactory) Create(apiKey string) (LLMClient, error) {
	if apiKey == "" {
		return nil, apperrors.ErrMissingAPIKey
	}

	cfg := &Config{
		Endpoint:  f.cfg.Endpoint,
		Model:     f.cfg.Model,
		APIKey:    apiKey,
		MaxTokens: f.cfg.MaxTokens,
	}

	switch f.cfg.Provider {
	case ProviderOpenAI, "":
		return NewClient(cfg, f.logger)
	case ProviderAnthropic:
		return NewAnthropicClient(cfg, f.logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", f.cfg.Provider)
	}
}

// Provider returns the configured provider name.
func (f *ClientFactory) Provider() string {
	if f.cfg.Provider == "" {
		return ProviderOpenAI
	}
	return f.cfg.Provider
}

var _ LLMClientFactory = (*ClientFactory)(nil)
