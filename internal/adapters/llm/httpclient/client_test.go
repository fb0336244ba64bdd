package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguist/internal/domain"
	"linguist/internal/ports"
)

func TestOllamaTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama3", body["model"])
		assert.Equal(t, false, body["stream"])
		assert.Equal(t, "json", body["format"])
		_, _ = w.Write([]byte(`{"message": {"content": "{\"translation\": \"Отвори __PH_0__\"}"}}`))
	}))
	defer srv.Close()

	c := New(domain.ProviderOllama, "", srv.URL, "llama3")
	res, err := c.Translate(context.Background(), ports.Segment{Text: "Open __PH_0__"}, ports.TranslateParams{})
	require.NoError(t, err)
	assert.Equal(t, "Отвори __PH_0__", res.Translation)
}

func TestOllamaListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models": [{"name": "llama3:8b"}, {"name": "qwen2"}]}`))
	}))
	defer srv.Close()

	models, err := New(domain.ProviderOllama, "", srv.URL+"/", "").ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []ports.ModelInfo{{Name: "llama3:8b"}, {Name: "qwen2"}}, models)
}

func TestOpenRouterFallsBackToJSONObject(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var body struct {
			Model          string         `json:"model"`
			ResponseFormat map[string]any `json:"response_format"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "openai/gpt-4o-mini", body.Model)
		if calls.Add(1) == 1 {
			assert.Equal(t, "json_schema", body.ResponseFormat["type"])
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": "json_schema unsupported"}`))
			return
		}
		assert.Equal(t, "json_object", body.ResponseFormat["type"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "{\"forms\": [\"a\", \"b\", \"c\"]}"}}]}`))
	}))
	defer srv.Close()

	c := New(domain.ProviderOpenRouter, "sk-test", srv.URL+"/api/v1", "openai/gpt-4o-mini")
	res, err := c.Translate(context.Background(), ports.Segment{}, ports.TranslateParams{PluralForms: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, res.Forms)
	assert.Equal(t, "a", res.Translation)
	assert.EqualValues(t, 2, calls.Load())
}

func TestOpenRouterErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/models":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": "bad key"}`))
		default:
			_, _ = w.Write([]byte(`{"choices": []}`))
		}
	}))
	defer srv.Close()

	c := New(domain.ProviderOpenRouter, "sk-bad", srv.URL, "m")
	err := c.Test(context.Background())
	assert.ErrorContains(t, err, "401")

	_, err = c.Translate(context.Background(), ports.Segment{}, ports.TranslateParams{})
	assert.ErrorContains(t, err, "no choices returned")
}

func TestOpenRouterListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"data": [{"id": "openai/gpt-4o", "name": "OpenAI: GPT-4o", "context_length": 128000}, {"id": "x/y"}]}`))
	}))
	defer srv.Close()

	models, err := New(domain.ProviderOpenRouter, "k", srv.URL, "").ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []ports.ModelInfo{
		{Name: "openai/gpt-4o", Description: "OpenAI: GPT-4o", ContextTokens: 128000},
		{Name: "x/y", Description: "x/y"},
	}, models)
}

// Ollama replies below carry no Content-Type; the client decodes them as
// JSON regardless.
func TestListModelsRejectsUndecodableReplies(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		body     string
		want     string
	}{
		{name: "ollama html", provider: domain.ProviderOllama, body: "<html>proxy login</html>", want: "ollama list models"},
		{name: "ollama no models", provider: domain.ProviderOllama, body: `{"status": "ok"}`, want: "no models in reply"},
		{name: "openrouter html", provider: domain.ProviderOpenRouter, body: "<html>maintenance</html>", want: "openrouter list models"},
		{name: "openrouter no data", provider: domain.ProviderOpenRouter, body: `{}`, want: "no data in reply"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(tt.provider, "k", srv.URL, "")
			_, err := c.ListModels(context.Background())
			assert.ErrorContains(t, err, tt.want)
			assert.Error(t, c.Test(context.Background()))
		})
	}
}

func TestOllamaListModelsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models": []}`))
	}))
	defer srv.Close()

	models, err := New(domain.ProviderOllama, "", srv.URL, "").ListModels(context.Background())
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestOllamaTranslateEmptyMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"done": true}`))
	}))
	defer srv.Close()

	_, err := New(domain.ProviderOllama, "", srv.URL, "m").Translate(context.Background(), ports.Segment{}, ports.TranslateParams{})
	assert.ErrorContains(t, err, "empty message")
}

func TestUnsupportedProvider(t *testing.T) {
	_, err := New("deepl", "", "", "").Translate(context.Background(), ports.Segment{}, ports.TranslateParams{})
	assert.ErrorContains(t, err, "unsupported provider")
}

func TestOpenRouterURL(t *testing.T) {
	assert.Equal(t, "https://openrouter.ai/api/v1/models", openRouterURL("https://openrouter.ai/", "/models"))
	assert.Equal(t, "https://proxy/api/v1/models", openRouterURL("https://proxy/api/v1/chat", "/models"))
}

func TestExtractTranslation(t *testing.T) {
	tests := map[string]string{
		`{"translation": "Отвори"}`:                     "Отвори",
		"```json\n{\"translation\": \"Затвори\"}\n```":  "Затвори",
		`Sure! {"translation": "Ред\nдва"} hope it helps`: "Ред\nдва",
		"Translation: Сачувај":                          "Сачувај",
		"Сачувај":                                       "Сачувај",
	}
	for in, want := range tests {
		got, err := extractTranslation(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := extractTranslation(`{"something": "else"}`)
	assert.ErrorContains(t, err, "failed to parse translation JSON")
}

func TestParseResultChecksFormCount(t *testing.T) {
	_, err := parseResult(`{"forms": ["a", "b"]}`, 3)
	assert.ErrorContains(t, err, "got 2 forms, want 3")
}
