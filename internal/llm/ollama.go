package llm

import (
	"context"
	"net/http"
)

// ollamaBackend talks to POST /api/chat on a local Ollama server.
type ollamaBackend struct {
	http     *http.Client
	endpoint string
	model    string
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  ollamaOptions   `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
}

func (b *ollamaBackend) generate(ctx context.Context, p prompt) (string, string, error) {
	body := ollamaChatRequest{
		Model:   b.model,
		Options: ollamaOptions{Temperature: p.temperature, NumPredict: p.maxTokens},
	}
	if p.system != "" {
		body.Messages = append(body.Messages, ollamaMessage{Role: "system", Content: p.system})
	}
	body.Messages = append(body.Messages, ollamaMessage{Role: "user", Content: p.user})
	if p.json {
		body.Format = "json"
	}

	var resp ollamaChatResponse
	if err := doJSON(ctx, b.http, ProviderOllama, b.endpoint+"/api/chat", nil, body, &resp); err != nil {
		return "", "", err
	}
	return resp.Message.Content, resp.Model, nil
}

func (b *ollamaBackend) ping(ctx context.Context) error {
	return doJSON(ctx, b.http, ProviderOllama, b.endpoint+"/api/tags", nil, nil, nil)
}
