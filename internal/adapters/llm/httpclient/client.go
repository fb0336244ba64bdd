// Package httpclient talks to chat-completion style LLM endpoints over
// resty. Provider specific packages only pick defaults.
package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"linguist/internal/domain"
	xlog "linguist/internal/log"
	"linguist/internal/ports"
)

const (
	DefaultOllamaURL     = "http://localhost:11434"
	DefaultOpenRouterURL = "https://openrouter.ai"
	DefaultTimeout       = 20 * time.Second
)

type Client struct {
	ProviderType string
	APIKey       string
	BaseURL      string
	Model        string
	http         *resty.Client
	logger       zerolog.Logger
}

func New(providerType, apiKey, baseURL, model string) *Client {
	logger := xlog.WithComponent("llm").With().Str("provider", strings.ToLower(providerType)).Logger()
	c := resty.New().SetTimeout(DefaultTimeout)
	c.OnAfterResponse(func(_ *resty.Client, r *resty.Response) error {
		logger.Debug().
			Str("event", "llm.response").
			Str("method", r.Request.Method).
			Str("url", r.Request.URL).
			Int("status", r.StatusCode()).
			Dur("duration", r.Time()).
			Msg("provider response")
		return nil
	})
	return &Client{
		ProviderType: strings.ToLower(providerType),
		APIKey:       apiKey,
		BaseURL:      baseURL,
		Model:        model,
		http:         c,
		logger:       logger,
	}
}

// SetTimeout overrides the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) *Client {
	if d > 0 {
		c.http.SetTimeout(d)
	}
	return c
}

func (c *Client) Translate(ctx context.Context, seg ports.Segment, p ports.TranslateParams) (ports.TranslateResult, error) {
	switch c.ProviderType {
	case domain.ProviderOpenRouter:
		return c.translateOpenRouter(ctx, p)
	case domain.ProviderOllama:
		return c.translateOllama(ctx, p)
	default:
		return ports.TranslateResult{}, fmt.Errorf("unsupported provider: %s", c.ProviderType)
	}
}

// request starts a call whose reply is always decoded as JSON; endpoints
// behind proxies often omit or mislabel the Content-Type.
func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx).ForceContentType("application/json")
}

func (c *Client) ListModels(ctx context.Context) ([]ports.ModelInfo, error) {
	switch c.ProviderType {
	case domain.ProviderOllama:
		url := strings.TrimRight(c.base(), "/") + "/api/tags"
		var resp struct {
			Models []struct {
				Name string `json:"name"`
			} `json:"models"`
		}
		r, err := c.request(ctx).SetResult(&resp).Get(url)
		if err != nil {
			return nil, fmt.Errorf("ollama list models: %w", err)
		}
		if r.IsError() {
			return nil, fmt.Errorf("ollama list models: %s; body: %s", r.Status(), abbreviate(r.String(), 500))
		}
		if resp.Models == nil {
			return nil, fmt.Errorf("ollama list models: no models in reply: %s", abbreviate(r.String(), 500))
		}
		out := make([]ports.ModelInfo, 0, len(resp.Models))
		for _, m := range resp.Models {
			out = append(out, ports.ModelInfo{Name: m.Name})
		}
		return out, nil
	case domain.ProviderOpenRouter:
		var resp struct {
			Data []struct {
				ID            string `json:"id"`
				Name          string `json:"name"`
				ContextLength int    `json:"context_length"`
			} `json:"data"`
		}
		r, err := c.request(ctx).
			SetAuthToken(c.APIKey).
			SetResult(&resp).
			Get(openRouterURL(c.base(), "/models"))
		if err != nil {
			return nil, fmt.Errorf("openrouter list models: %w", err)
		}
		if r.IsError() {
			return nil, fmt.Errorf("openrouter list models: %s; body: %s", r.Status(), abbreviate(r.String(), 500))
		}
		if resp.Data == nil {
			return nil, fmt.Errorf("openrouter list models: no data in reply: %s", abbreviate(r.String(), 500))
		}
		out := make([]ports.ModelInfo, 0, len(resp.Data))
		for _, d := range resp.Data {
			label := d.Name
			if label == "" {
				label = d.ID
			}
			out = append(out, ports.ModelInfo{Name: d.ID, Description: label, ContextTokens: d.ContextLength})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", c.ProviderType)
	}
}

func (c *Client) Test(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}

func (c *Client) base() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.ProviderType == domain.ProviderOpenRouter {
		return DefaultOpenRouterURL
	}
	return DefaultOllamaURL
}

func (c *Client) model(p ports.TranslateParams) string {
	if p.Model != "" {
		return p.Model
	}
	return c.Model
}

func messages(p ports.TranslateParams) []map[string]string {
	return []map[string]string{
		{"role": "system", "content": p.SystemPrompt},
		{"role": "user", "content": p.UserPrompt},
	}
}

func (c *Client) translateOpenRouter(ctx context.Context, p ports.TranslateParams) (ports.TranslateResult, error) {
	url := openRouterURL(c.base(), "/chat/completions")
	body := map[string]any{
		"model":           c.model(p),
		"messages":        messages(p),
		"temperature":     p.Temperature,
		"response_format": responseSchema(p.PluralForms),
	}
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	post := func() (*resty.Response, error) {
		return c.request(ctx).
			SetAuthToken(c.APIKey).
			SetHeader("HTTP-Referer", "https://github.com/nomacs/nomacs").
			SetHeader("X-Title", "linguist").
			SetHeader("Content-Type", "application/json").
			SetBody(body).SetResult(&resp).
			Post(url)
	}
	rr, err := post()
	if err != nil {
		return ports.TranslateResult{}, err
	}
	// Some models reject json_schema; json_object is the widely supported
	// fallback.
	if rr.StatusCode() == http.StatusBadRequest {
		c.logger.Debug().Str("event", "llm.schema_fallback").Msg("json_schema rejected, retrying with json_object")
		body["response_format"] = map[string]string{"type": "json_object"}
		if rr, err = post(); err != nil {
			return ports.TranslateResult{}, err
		}
	}
	if rr.IsError() {
		return ports.TranslateResult{}, fmt.Errorf("openrouter translate: %s; body: %s", rr.Status(), abbreviate(rr.String(), 500))
	}
	if len(resp.Choices) == 0 {
		return ports.TranslateResult{}, fmt.Errorf("no choices returned")
	}
	return parseResult(resp.Choices[0].Message.Content, p.PluralForms)
}

func (c *Client) translateOllama(ctx context.Context, p ports.TranslateParams) (ports.TranslateResult, error) {
	url := strings.TrimRight(c.base(), "/") + "/api/chat"
	body := map[string]any{
		"model":    c.model(p),
		"messages": messages(p),
		"stream":   false,
		"format":   "json",
		"options":  map[string]any{"temperature": p.Temperature},
	}
	var resp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	rr, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).SetResult(&resp).
		Post(url)
	if err != nil {
		return ports.TranslateResult{}, err
	}
	if rr.IsError() {
		return ports.TranslateResult{}, fmt.Errorf("ollama translate: %s; body: %s", rr.Status(), abbreviate(rr.String(), 500))
	}
	if resp.Message.Content == "" {
		return ports.TranslateResult{}, fmt.Errorf("ollama translate: empty message in reply: %s", abbreviate(rr.String(), 500))
	}
	return parseResult(resp.Message.Content, p.PluralForms)
}

func responseSchema(pluralForms int) map[string]any {
	props := map[string]any{"translation": map[string]any{"type": "string"}}
	required := []string{"translation"}
	if pluralForms > 0 {
		props = map[string]any{"forms": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string"},
			"minItems": pluralForms,
			"maxItems": pluralForms,
		}}
		required = []string{"forms"}
	}
	return map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name":   "translation",
			"strict": true,
			"schema": map[string]any{
				"type":                 "object",
				"properties":           props,
				"required":             required,
				"additionalProperties": false,
			},
		},
	}
}

func parseResult(content string, pluralForms int) (ports.TranslateResult, error) {
	content = strings.TrimSpace(content)
	if pluralForms > 0 {
		forms, err := extractForms(content)
		if err != nil {
			return ports.TranslateResult{}, err
		}
		if len(forms) != pluralForms {
			return ports.TranslateResult{}, fmt.Errorf("failed to parse translation JSON: got %d forms, want %d", len(forms), pluralForms)
		}
		return ports.TranslateResult{Translation: forms[0], Forms: forms, Raw: content}, nil
	}
	tr, err := extractTranslation(content)
	if err != nil {
		return ports.TranslateResult{}, err
	}
	return ports.TranslateResult{Translation: tr, Raw: content}, nil
}

// openRouterURL builds an API URL whether or not base already carries the
// /api/v1 prefix.
func openRouterURL(base, tail string) string {
	b := strings.TrimRight(base, "/")
	if idx := strings.Index(b, "/api/v1"); idx >= 0 {
		return b[:idx+len("/api/v1")] + tail
	}
	return b + "/api/v1" + tail
}
