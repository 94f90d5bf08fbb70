package intelligence

import (
	"context"
	"strings"

	"github.com/alexanderramin/dayplanner/internal/llm"
)

// TranscriptCorrector cleans up dictated text. It never fails: when the
// model is unavailable or returns nothing the raw input comes back.
type TranscriptCorrector interface {
	Correct(ctx context.Context, raw string) string
}

type transcriptCorrector struct {
	client llm.LLMClient
}

func NewTranscriptCorrector(client llm.LLMClient) TranscriptCorrector {
	return &transcriptCorrector{client: client}
}

func (c *transcriptCorrector) Correct(ctx context.Context, raw string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}
	resp, err := c.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskCorrectTranscript,
		SystemPrompt: correctTranscriptSystemPrompt,
		UserPrompt:   raw,
	})
	if err != nil {
		return raw
	}
	text := llm.CleanText(resp.Text)
	if text == "" {
		return raw
	}
	return text
}
