// Package openrouter configures the HTTP client for the OpenRouter API.
package openrouter

import (
	"errors"

	"linguist/internal/adapters/llm/httpclient"
	"linguist/internal/domain"
)

var ErrMissingAPIKey = errors.New("openrouter: api key is required")

func New(apiKey, baseURL, model string) (*httpclient.Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = httpclient.DefaultOpenRouterURL
	}
	return httpclient.New(domain.ProviderOpenRouter, apiKey, baseURL, model), nil
}
