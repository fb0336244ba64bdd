package factory

import (
	"fmt"
	"strings"
	"time"

	"linguist/internal/adapters/llm/ollama"
	"linguist/internal/adapters/llm/openrouter"
	"linguist/internal/domain"
	"linguist/internal/ports"
)

// FromProvider builds the adapter for a stored provider record. A zero
// timeout keeps the client default.
func FromProvider(p *domain.Provider, timeout time.Duration) (ports.Provider, error) {
	switch strings.ToLower(p.Type) {
	case domain.ProviderOllama:
		return ollama.New(p.BaseURL, p.Model).SetTimeout(timeout), nil
	case domain.ProviderOpenRouter:
		c, err := openrouter.New(p.APIKey, p.BaseURL, p.Model)
		if err != nil {
			return nil, err
		}
		return c.SetTimeout(timeout), nil
	}
	return nil, fmt.Errorf("provider %d: unsupported type %q", p.ID, p.Type)
}
