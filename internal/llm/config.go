package llm

import (
	"os"
	"strconv"
	"strings"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskExtractTasks      TaskType = "extract_tasks"
	TaskCorrectTranscript TaskType = "correct_transcript"
)

// Provider names a model backend.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderGemini Provider = "gemini"
)

// providerDefaults are the endpoint and model used until overridden.
var providerDefaults = map[Provider]struct{ endpoint, model string }{
	ProviderOllama: {"http://localhost:11434", "llama3.2"},
	ProviderGemini: {"https://generativelanguage.googleapis.com", "gemini-2.5-flash"},
}

// ParseProvider accepts a provider name in any case.
func ParseProvider(s string) (Provider, bool) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	_, ok := providerDefaults[p]
	return p, ok
}

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Enabled    bool
	LogCalls   bool
	Provider   Provider
	Endpoint   string
	Model      string
	APIKey     string
	TimeoutMs  int
	MaxRetries int
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig returns a disabled Ollama configuration.
func DefaultConfig() LLMConfig {
	d := providerDefaults[ProviderOllama]
	return LLMConfig{
		Provider:   ProviderOllama,
		Endpoint:   d.endpoint,
		Model:      d.model,
		TimeoutMs:  10000,
		MaxRetries: 1,
		Tasks: map[TaskType]TaskConfig{
			TaskExtractTasks:      {Temperature: 0.2, MaxTokens: 512, TimeoutMs: 15000},
			TaskCorrectTranscript: {Temperature: 0.1, MaxTokens: 256, TimeoutMs: 8000},
		},
	}
}

// WithProvider switches provider. Endpoint and model follow along unless
// they were changed from the old provider's defaults.
func (c LLMConfig) WithProvider(p Provider) LLMConfig {
	old, next := providerDefaults[c.Provider], providerDefaults[p]
	if c.Endpoint == "" || c.Endpoint == old.endpoint {
		c.Endpoint = next.endpoint
	}
	if c.Model == "" || c.Model == old.model {
		c.Model = next.model
	}
	c.Provider = p
	return c
}

// LoadConfig is DefaultConfig with the environment applied.
func LoadConfig() LLMConfig {
	return ApplyEnv(DefaultConfig())
}

// ApplyEnv overlays DAYPLANNER_LLM_* environment variables onto cfg.
// Unparsable values are ignored. GEMINI_API_KEY is read when no
// DAYPLANNER_LLM_API_KEY is set.
func ApplyEnv(cfg LLMConfig) LLMConfig {
	cfg.Tasks = cloneTasks(cfg.Tasks)

	if v := os.Getenv("DAYPLANNER_LLM_PROVIDER"); v != "" {
		if p, ok := ParseProvider(v); ok {
			cfg = cfg.WithProvider(p)
		}
	}
	if v := os.Getenv("DAYPLANNER_LLM_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = b
		}
	}
	if v := os.Getenv("DAYPLANNER_LLM_LOG_CALLS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogCalls = b
		}
	}
	if v := os.Getenv("DAYPLANNER_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("DAYPLANNER_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("DAYPLANNER_LLM_API_KEY"); v != "" {
		cfg.APIKey = v
	} else if v := os.Getenv("GEMINI_API_KEY"); v != "" && cfg.APIKey == "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("DAYPLANNER_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("DAYPLANNER_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}

	for task, name := range map[TaskType]string{
		TaskExtractTasks:      "DAYPLANNER_LLM_EXTRACT_TIMEOUT_MS",
		TaskCorrectTranscript: "DAYPLANNER_LLM_CORRECT_TIMEOUT_MS",
	} {
		if n, err := strconv.Atoi(os.Getenv(name)); err == nil && n > 0 {
			tc := cfg.Tasks[task]
			tc.TimeoutMs = n
			cfg.Tasks[task] = tc
		}
	}
	return cfg
}

// TaskTimeout is the per-task timeout in milliseconds, falling back to
// the global one.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func cloneTasks(in map[TaskType]TaskConfig) map[TaskType]TaskConfig {
	out := make(map[TaskType]TaskConfig, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
