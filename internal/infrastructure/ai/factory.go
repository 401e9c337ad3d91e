package ai

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pbooth01/cli2ansible/internal/domain"
	"github.com/pbooth01/cli2ansible/internal/ports"
)

const (
	defaultOpenAIEndpoint    = "https://api.openai.com/v1/chat/completions"
	defaultAnthropicEndpoint = "https://api.anthropic.com/v1/messages"
)

// Factory builds cleaners from configuration.
type Factory struct {
	httpClient *http.Client
}

// NewFactory returns a factory with a shared 60s-timeout HTTP client.
func NewFactory() *Factory {
	return &Factory{
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// ForSettings returns the configured cleaner, or (nil, nil) when no provider
// is configured so callers can treat cleaning as an optional capability.
func (f *Factory) ForSettings(settings domain.CleanerSettings) (ports.Cleaner, error) {
	switch strings.ToLower(settings.Provider) {
	case "":
		return nil, nil
	case "openai":
		if settings.Endpoint == "" {
			settings.Endpoint = defaultOpenAIEndpoint
		}
		return newHTTPCleaner("openai", settings, f.httpClient, openaiAdapter()), nil
	case "anthropic":
		if settings.Endpoint == "" {
			settings.Endpoint = defaultAnthropicEndpoint
		}
		return newHTTPCleaner("anthropic", settings, f.httpClient, anthropicAdapter()), nil
	default:
		return nil, fmt.Errorf("unsupported cleaner provider: %s", settings.Provider)
	}
}
