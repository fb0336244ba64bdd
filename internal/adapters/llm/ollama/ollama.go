// Package ollama configures the HTTP client for a local Ollama server.
package ollama

import (
	"linguist/internal/adapters/llm/httpclient"
	"linguist/internal/domain"
)

// New returns a client for the Ollama chat API. An empty baseURL means
// the default local endpoint.
func New(baseURL, model string) *httpclient.Client {
	if baseURL == "" {
		baseURL = httpclient.DefaultOllamaURL
	}
	return httpclient.New(domain.ProviderOllama, "", baseURL, model)
}
