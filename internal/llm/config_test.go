package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 15000, cfg.TaskTimeout(TaskExtractTasks))
	assert.Equal(t, 10000, cfg.TaskTimeout("unknown"))
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DAYPLANNER_LLM_ENABLED", "true")
	t.Setenv("DAYPLANNER_LLM_MODEL", "qwen2.5")
	t.Setenv("DAYPLANNER_LLM_TIMEOUT_MS", "9000")
	t.Setenv("DAYPLANNER_LLM_EXTRACT_TIMEOUT_MS", "20000")

	cfg := LoadConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "qwen2.5", cfg.Model)
	assert.Equal(t, 9000, cfg.TimeoutMs)
	assert.Equal(t, 20000, cfg.TaskTimeout(TaskExtractTasks))
	assert.Equal(t, 8000, cfg.TaskTimeout(TaskCorrectTranscript))
}

func TestLoadConfig_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("DAYPLANNER_LLM_ENABLED", "maybe")
	t.Setenv("DAYPLANNER_LLM_EXTRACT_TIMEOUT_MS", "not-a-number")
	t.Setenv("DAYPLANNER_LLM_MAX_RETRIES", "-2")

	cfg := LoadConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, 15000, cfg.TaskTimeout(TaskExtractTasks))
	assert.Equal(t, 1, cfg.MaxRetries)
}

func TestApplyEnv_DoesNotMutateBase(t *testing.T) {
	t.Setenv("DAYPLANNER_LLM_CORRECT_TIMEOUT_MS", "1234")
	base := DefaultConfig()

	_ = ApplyEnv(base)

	assert.Equal(t, 8000, base.Tasks[TaskCorrectTranscript].TimeoutMs)
}

func TestWithProvider_FollowsDefaults(t *testing.T) {
	cfg := DefaultConfig().WithProvider(ProviderGemini)
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.Endpoint)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model)

	custom := DefaultConfig()
	custom.Model = "qwen2.5"
	custom = custom.WithProvider(ProviderGemini)
	assert.Equal(t, "qwen2.5", custom.Model, "explicit model survives")
}

func TestLoadConfig_ProviderAndKey(t *testing.T) {
	t.Setenv("DAYPLANNER_LLM_PROVIDER", "Gemini")
	t.Setenv("DAYPLANNER_LLM_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "from-gemini-var")

	cfg := LoadConfig()

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "from-gemini-var", cfg.APIKey)

	t.Setenv("DAYPLANNER_LLM_API_KEY", "primary")
	assert.Equal(t, "primary", LoadConfig().APIKey)
}

func TestParseProvider(t *testing.T) {
	p, ok := ParseProvider(" OLLAMA ")
	assert.True(t, ok)
	assert.Equal(t, ProviderOllama, p)

	_, ok = ParseProvider("openai")
	assert.False(t, ok)
}
