package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
// Note: This is a stateless service - no database or auth secrets needed
type Config struct {
	// Environment
	Environment string
	Port        string

	// LLM provider selection
	LLMProvider string // openai, gemini or ollama
	LLMModel    string

	// LLM API Keys
	OpenAIAPIKey string // OpenAI API key for GPT models
	GeminiAPIKey string // Google Gemini API key
	OllamaHost   string // Ollama server URL, empty uses OLLAMA_HOST or the library default

	// Transform behaviour
	ResponseProfile     string        // base, melody or visual
	RangePolicy         string        // reject, clamp or passthrough
	ProviderTimeout     time.Duration // bound on one provider call
	VisualSchemaVersion int           // reported as "version" in visual responses

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse

	// Log file rotation, disabled when LogFile is empty
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	// ConfigFile is the optional YAML overlay that was read
	ConfigFile string
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Defaults honor temperature and top_p
var defaultModels = map[string]string{
	ProviderOpenAI: "gpt-4.1-mini",
	ProviderGemini: "gemini-2.5-flash",
	ProviderOllama: "llama3.1",
}

// source resolves a key from the environment first, then the YAML overlay
type source struct {
	file map[string]string
}

// Load reads the configuration from the environment. When CONFIG_FILE names a YAML file its
// keys act as defaults; the environment always wins.
func Load() (*Config, error) {
	src := source{}
	path := os.Getenv("CONFIG_FILE")
	if path != "" {
		file, err := readOverlay(path)
		if err != nil {
			return nil, err
		}
		src.file = file
	}

	provider := strings.ToLower(src.get("LLM_PROVIDER", ProviderOpenAI))

	timeout, err := time.ParseDuration(src.get("PROVIDER_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_TIMEOUT: %w", err)
	}
	visualVersion, err := src.getInt("VISUAL_SCHEMA_VERSION", 1)
	if err != nil {
		return nil, err
	}
	maxSize, err := src.getInt("LOG_MAX_SIZE_MB", 100)
	if err != nil {
		return nil, err
	}
	maxBackups, err := src.getInt("LOG_MAX_BACKUPS", 3)
	if err != nil {
		return nil, err
	}
	maxAge, err := src.getInt("LOG_MAX_AGE_DAYS", 28)
	if err != nil {
		return nil, err
	}

	return &Config{
		Environment:         src.get("ENVIRONMENT", "development"),
		Port:                src.get("PORT", "8080"),
		LLMProvider:         provider,
		LLMModel:            src.get("LLM_MODEL", defaultModels[provider]),
		OpenAIAPIKey:        src.get("OPENAI_API_KEY", src.get("OPEN_API_KEY", "")),
		GeminiAPIKey:        src.get("GEMINI_API_KEY", ""),
		OllamaHost:          src.get("OLLAMA_HOST", ""),
		ResponseProfile:     strings.ToLower(src.get("RESPONSE_PROFILE", "base")),
		RangePolicy:         strings.ToLower(src.get("RANGE_POLICY", "reject")),
		ProviderTimeout:     timeout,
		VisualSchemaVersion: visualVersion,
		SentryDSN:           src.get("SENTRY_DSN", ""),
		LangfusePublicKey:   src.get("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey:   src.get("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:        src.get("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:     src.get("LANGFUSE_ENABLED", "false") == "true",
		LogFile:             src.get("LOG_FILE", ""),
		LogMaxSizeMB:        maxSize,
		LogMaxBackups:       maxBackups,
		LogMaxAgeDays:       maxAge,
		ConfigFile:          path,
	}, nil
}

// Validate fails fast on settings the service cannot run with
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q (allowed: openai, gemini, ollama)", c.LLMProvider)
	}

	if c.LLMModel == "" {
		return fmt.Errorf("LLM_MODEL is required")
	}

	switch c.ResponseProfile {
	case "base", "melody", "visual":
	default:
		return fmt.Errorf("unknown RESPONSE_PROFILE %q (allowed: base, melody, visual)", c.ResponseProfile)
	}

	switch c.RangePolicy {
	case "reject", "clamp", "passthrough":
	default:
		return fmt.Errorf("unknown RANGE_POLICY %q (allowed: reject, clamp, passthrough)", c.RangePolicy)
	}

	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive, got %s", c.ProviderTimeout)
	}
	if c.VisualSchemaVersion < 1 {
		return fmt.Errorf("VISUAL_SCHEMA_VERSION must be at least 1, got %d", c.VisualSchemaVersion)
	}

	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// readOverlay reads a flat YAML mapping. Keys are matched case-insensitively against the
// environment variable names, e.g. "llm_provider: gemini".
func readOverlay(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		values[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return values, nil
}

func (s source) get(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value, ok := s.file[key]; ok && value != "" {
		return value
	}
	return defaultValue
}

func (s source) getInt(key string, defaultValue int) (int, error) {
	raw := s.get(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
