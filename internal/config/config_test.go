package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"ENVIRONMENT", "PORT", "LLM_PROVIDER", "LLM_MODEL", "OPENAI_API_KEY", "OPEN_API_KEY",
	"GEMINI_API_KEY", "OLLAMA_HOST", "RESPONSE_PROFILE", "RANGE_POLICY", "PROVIDER_TIMEOUT",
	"VISUAL_SCHEMA_VERSION", "SENTRY_DSN", "LANGFUSE_ENABLED", "LANGFUSE_HOST",
	"LANGFUSE_PUBLIC_KEY", "LANGFUSE_SECRET_KEY", "LOG_FILE", "LOG_MAX_SIZE_MB",
	"LOG_MAX_BACKUPS", "LOG_MAX_AGE_DAYS", "CONFIG_FILE",
}

// clearEnv blanks every config key for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "gpt-4.1-mini", cfg.LLMModel)
	assert.Equal(t, "base", cfg.ResponseProfile)
	assert.Equal(t, "reject", cfg.RangePolicy)
	assert.Equal(t, 30*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 1, cfg.VisualSchemaVersion)
	assert.False(t, cfg.LangfuseEnabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("RESPONSE_PROFILE", "VISUAL")
	t.Setenv("RANGE_POLICY", "clamp")
	t.Setenv("PROVIDER_TIMEOUT", "5s")
	t.Setenv("VISUAL_SCHEMA_VERSION", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLMModel)
	assert.Equal(t, "visual", cfg.ResponseProfile)
	assert.Equal(t, "clamp", cfg.RangePolicy)
	assert.Equal(t, 5*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 2, cfg.VisualSchemaVersion)
	assert.NoError(t, cfg.Validate())
}

func TestLegacyAPIKeyAlias(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPEN_API_KEY", "legacy")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.OpenAIAPIKey)

	t.Setenv("OPENAI_API_KEY", "current")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "current", cfg.OpenAIAPIKey)
}

func TestLoadInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROVIDER_TIMEOUT", "soon")
	_, err := Load()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("VISUAL_SCHEMA_VERSION", "two")
	_, err = Load()
	assert.Error(t, err)
}

func TestYAMLOverlay(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "transform.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm_provider: ollama
llm_model: mistral
response_profile: melody
visual_schema_version: 3
port: 9090
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.LLMProvider)
	assert.Equal(t, "mistral", cfg.LLMModel)
	assert.Equal(t, "melody", cfg.ResponseProfile)
	assert.Equal(t, 3, cfg.VisualSchemaVersion)
	assert.Equal(t, "7000", cfg.Port, "environment wins over the file")
	assert.Equal(t, path, cfg.ConfigFile)
	assert.NoError(t, cfg.Validate())
}

func TestYAMLOverlayLangfuse(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "transform.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
langfuse_enabled: true
langfuse_host: https://langfuse.example.org
langfuse_public_key: pk-file
langfuse_secret_key: sk-file
`), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.LangfuseEnabled)
	assert.Equal(t, "https://langfuse.example.org", cfg.LangfuseHost)
	assert.Equal(t, "pk-file", cfg.LangfusePublicKey)
	assert.Equal(t, "sk-file", cfg.LangfuseSecretKey)
}

func TestYAMLOverlayErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm_provider: [unclosed"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	_, err = Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			LLMProvider:         "openai",
			LLMModel:            "gpt-5.1-mini",
			OpenAIAPIKey:        "sk",
			ResponseProfile:     "base",
			RangePolicy:         "reject",
			ProviderTimeout:     time.Second,
			VisualSchemaVersion: 1,
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing openai key", func(c *Config) { c.OpenAIAPIKey = "" }},
		{"missing gemini key", func(c *Config) { c.LLMProvider = "gemini" }},
		{"unknown provider", func(c *Config) { c.LLMProvider = "bard" }},
		{"empty model", func(c *Config) { c.LLMModel = "" }},
		{"unknown profile", func(c *Config) { c.ResponseProfile = "poster" }},
		{"unknown policy", func(c *Config) { c.RangePolicy = "ignore" }},
		{"zero timeout", func(c *Config) { c.ProviderTimeout = 0 }},
		{"zero version", func(c *Config) { c.VisualSchemaVersion = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}

	ollama := valid()
	ollama.LLMProvider = "ollama"
	ollama.OpenAIAPIKey = ""
	assert.NoError(t, ollama.Validate(), "ollama needs no credential")
}
