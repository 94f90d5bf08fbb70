package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// geminiBackend calls the Gemini generateContent REST endpoint.
type geminiBackend struct {
	http     *http.Client
	endpoint string
	model    string
	apiKey   string
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	ModelVersion string `json:"modelVersion"`
}

func (b *geminiBackend) modelURL(suffix string) string {
	return fmt.Sprintf("%s/v1beta/models/%s%s", b.endpoint, url.PathEscape(b.model), suffix)
}

func (b *geminiBackend) header() (http.Header, error) {
	if b.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return http.Header{"X-Goog-Api-Key": {b.apiKey}}, nil
}

func (b *geminiBackend) generate(ctx context.Context, p prompt) (string, string, error) {
	header, err := b.header()
	if err != nil {
		return "", "", err
	}

	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: p.user}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     p.temperature,
			MaxOutputTokens: p.maxTokens,
		},
	}
	if p.system != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: p.system}}}
	}
	if p.json {
		body.GenerationConfig.ResponseMIMEType = "application/json"
	}

	var resp geminiResponse
	if err := doJSON(ctx, b.http, ProviderGemini, b.modelURL(":generateContent"), header, body, &resp); err != nil {
		return "", "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", "", fmt.Errorf("%w: gemini returned no candidates", ErrInvalidOutput)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	model := resp.ModelVersion
	if model == "" {
		model = b.model
	}
	return text.String(), model, nil
}

func (b *geminiBackend) ping(ctx context.Context) error {
	header, err := b.header()
	if err != nil {
		return err
	}
	return doJSON(ctx, b.http, ProviderGemini, b.modelURL(""), header, nil, nil)
}
