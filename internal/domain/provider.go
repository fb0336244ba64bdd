package domain

import (
	"fmt"
	"strings"
	"time"
)

// Provider types understood by the llm factory.
const (
	ProviderOllama     = "ollama"
	ProviderOpenRouter = "openrouter"
)

// Provider is a stored machine translation backend. BaseURL and Model may
// be empty; the adapters fill in their defaults.
type Provider struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	BaseURL    string    `json:"base_url"`
	Model      string    `json:"model"`
	APIKey     string    `json:"api_key"`
	OptionsRaw string    `json:"options_json"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Label is the "id:name" form used in logs and health reports.
func (p *Provider) Label() string { return fmt.Sprintf("%d:%s", p.ID, p.Name) }

// MaskedKey hides all but the last four characters of the API key.
func (p *Provider) MaskedKey() string {
	switch n := len(p.APIKey); {
	case n == 0:
		return ""
	case n <= 4:
		return "****"
	default:
		return "****" + p.APIKey[n-4:]
	}
}

// SupportedProvider reports whether typ names a provider type.
func SupportedProvider(typ string) bool {
	switch strings.ToLower(typ) {
	case ProviderOllama, ProviderOpenRouter:
		return true
	}
	return false
}

// ProviderModel is a cached entry of a provider's model list.
type ProviderModel struct {
	ID         int64     `json:"id"`
	ProviderID int64     `json:"provider_id"`
	Name       string    `json:"name"`
	UpdatedAt  time.Time `json:"updated_at"`
}
