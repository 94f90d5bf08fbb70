package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// GenerateRequest holds the parameters for an LLM generation call.
type GenerateRequest struct {
	Task         TaskType
	SystemPrompt string
	UserPrompt   string
	Temperature  *float64 // nil uses task default
	MaxTokens    *int     // nil uses task default

	// JSON asks the provider to constrain its reply to a JSON document.
	JSON bool
}

// GenerateResponse holds the result of an LLM generation call.
type GenerateResponse struct {
	Text      string
	Model     string
	LatencyMs int64
}

// LLMClient provides access to a language model for text generation.
type LLMClient interface {
	// Generate sends a prompt and returns the raw text response.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Available checks whether the provider is reachable.
	Available(ctx context.Context) bool
}

// prompt is one resolved generation call as a backend sees it.
type prompt struct {
	system      string
	user        string
	temperature float64
	maxTokens   int
	json        bool
}

// backend speaks one provider's wire format.
type backend interface {
	generate(ctx context.Context, p prompt) (text, model string, err error)
	ping(ctx context.Context) error
}

// client owns retries, timeouts and observation. Everything
// provider-specific lives in the backend.
type client struct {
	cfg      LLMConfig
	backend  backend
	observer Observer
}

// NewClient returns an LLMClient for cfg.Provider. A hosted provider
// without an API key yields a client whose calls fail with
// ErrMissingAPIKey.
func NewClient(cfg LLMConfig, observer Observer) LLMClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	if cfg.Provider == "" {
		cfg.Provider = ProviderOllama
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")

	hc := &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	}
	var b backend
	switch cfg.Provider {
	case ProviderGemini:
		b = &geminiBackend{http: hc, endpoint: cfg.Endpoint, model: cfg.Model, apiKey: cfg.APIKey}
	default:
		b = &ollamaBackend{http: hc, endpoint: cfg.Endpoint, model: cfg.Model}
	}
	return &client{cfg: cfg, backend: b, observer: observer}
}

// NewOllamaClient is NewClient pinned to a local Ollama server.
func NewOllamaClient(cfg LLMConfig, observer Observer) LLMClient {
	cfg.Provider = ProviderOllama
	return NewClient(cfg, observer)
}

func (c *client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if !c.cfg.Enabled {
		return nil, ErrDisabled
	}
	p := c.resolve(req)
	timeout := time.Duration(c.cfg.TaskTimeout(req.Task)) * time.Millisecond
	start := time.Now()

	var lastErr error
	made := 0
	for made < 1+c.cfg.MaxRetries {
		made++
		text, model, err := c.attempt(ctx, timeout, p)
		if err == nil {
			latency := time.Since(start).Milliseconds()
			c.observe(req.Task, latency, made, nil)
			return &GenerateResponse{Text: text, Model: model, LatencyMs: latency}, nil
		}
		lastErr = err
		if ctx.Err() != nil || permanent(err) {
			break
		}
	}

	finalErr := classify(ctx, lastErr)
	c.observe(req.Task, time.Since(start).Milliseconds(), made, finalErr)
	return nil, finalErr
}

// resolve fills per-task defaults into the request.
func (c *client) resolve(req GenerateRequest) prompt {
	tc := c.cfg.Tasks[req.Task]
	p := prompt{
		system:      req.SystemPrompt,
		user:        req.UserPrompt,
		temperature: tc.Temperature,
		maxTokens:   tc.MaxTokens,
		json:        req.JSON,
	}
	if req.Temperature != nil {
		p.temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		p.maxTokens = *req.MaxTokens
	}
	return p
}

// attempt runs one call under its own deadline so a slow first try can
// still be retried.
func (c *client) attempt(ctx context.Context, timeout time.Duration, p prompt) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.backend.generate(ctx, p)
}

func (c *client) observe(task TaskType, latency int64, attempts int, err error) {
	c.observer.OnCallComplete(LLMCallEvent{
		Task:      task,
		Provider:  c.cfg.Provider,
		Model:     c.cfg.Model,
		LatencyMs: latency,
		Attempts:  attempts,
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
}

func (c *client) Available(ctx context.Context) bool {
	if !c.cfg.Enabled {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.backend.ping(ctx) == nil
}

// permanent errors are not worth another attempt.
func permanent(err error) bool {
	return errors.Is(err, ErrMissingAPIKey) || errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrInvalidOutput)
}

func classify(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil, errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case permanent(err):
		return err
	case isConnectionError(err):
		return ErrUnavailable
	default:
		return fmt.Errorf("%w: %v", ErrRetryExhausted, err)
	}
}

func isConnectionError(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrMissingAPIKey):
		return "MISSING_API_KEY"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	case errors.Is(err, ErrRetryExhausted):
		return "RETRY_EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}
