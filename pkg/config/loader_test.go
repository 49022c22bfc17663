package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	ConfigPathEnv, "PORT", "DATA_DIR", "LLM_PROVIDER", "GOOGLE_API_KEY", "GOOGLE_MODEL",
	"GROQ_API_KEY", "GROQ_MODEL", "GROQ_BASE_URL", "PROMPT_MODE", "MAX_HISTORY",
	"MAX_OUTPUT_TOKENS", "CHAT_TIMEOUT", "DATABASE_URL", "REDIS_URL", "RATE_LIMIT", "RATE_WINDOW",
	"RATE_SWEEP_INTERVAL", "USAGE_TIMEOUT", "LOG_LEVEL", "ALLOW_ORIGINS",
}

// clearConfigEnv blanks every key Load reads; t.Setenv restores them afterwards.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "summit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "google", cfg.LLMProvider)
	assert.Equal(t, "gemini-2.0-flash-lite", cfg.GoogleModel)
	assert.Equal(t, "compressed", cfg.PromptMode)
	assert.Equal(t, 10, cfg.MaxHistory)
	assert.Equal(t, 1500, cfg.MaxOutputTokens)
	assert.Equal(t, time.Minute, cfg.ChatTimeout)
	assert.Equal(t, 10, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateWindow)
	assert.Equal(t, 5*time.Minute, cfg.RateSweepInterval)
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.Empty(t, cfg.GoogleAPIKey)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoad_Env(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("LLM_PROVIDER", "Groq")
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("RATE_LIMIT", "25")
	t.Setenv("RATE_WINDOW", "30s")
	t.Setenv("PROMPT_MODE", "FULL")
	t.Setenv("ALLOW_ORIGINS", "https://summit.example,https://app.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "groq", cfg.LLMProvider)
	assert.Equal(t, "gsk-test", cfg.GroqAPIKey)
	assert.Equal(t, 25, cfg.RateLimit)
	assert.Equal(t, 30*time.Second, cfg.RateWindow)
	assert.Equal(t, "full", cfg.PromptMode)
	assert.Equal(t, []string{"https://summit.example", "https://app.example"}, cfg.AllowOrigins)
}

func TestLoad_EmptyEnvKeepsDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("GOOGLE_MODEL", "  ")
	t.Setenv("ALLOW_ORIGINS", " , ")
	t.Setenv("SUMMIT_UNRELATED_SETTING", "x")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "google", cfg.LLMProvider)
	assert.Equal(t, "gemini-2.0-flash-lite", cfg.GoogleModel)
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
}

func TestEnvValue(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		wantKey   string
		wantValue any
	}{
		{"Known key lower-cased", "GROQ_MODEL", "llama", "groq_model", "llama"},
		{"Trimmed", "PORT", " 8080 ", "port", "8080"},
		{"Empty skipped", "PORT", "", "", nil},
		{"Unknown skipped", "HOME", "/root", "", nil},
		{"Origins split", "ALLOW_ORIGINS", "https://a.example, https://b.example,", "allow_origins", []string{"https://a.example", "https://b.example"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, value := envValue(tt.key, tt.value)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfigFile(t, `
port: "9090"
data_dir: /srv/summit
max_history: 6
usage_timeout: 2s
log_level: debug
`)
	t.Setenv(ConfigPathEnv, path)
	t.Setenv("MAX_HISTORY", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/srv/summit", cfg.DataDir)
	assert.Equal(t, 8, cfg.MaxHistory, "env overrides the file")
	assert.Equal(t, 2*time.Second, cfg.UsageTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_MissingFile(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv(ConfigPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.ErrorIs(t, err, ErrLoadConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"Empty port", func(c *Config) { c.Port = " " }},
		{"Unknown provider", func(c *Config) { c.LLMProvider = "openai" }},
		{"Unknown prompt mode", func(c *Config) { c.PromptMode = "tiny" }},
		{"Zero history", func(c *Config) { c.MaxHistory = 0 }},
		{"Zero output tokens", func(c *Config) { c.MaxOutputTokens = 0 }},
		{"Zero rate limit", func(c *Config) { c.RateLimit = 0 }},
		{"Zero window", func(c *Config) { c.RateWindow = 0 }},
	}

	require.NoError(t, New().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, (&Config{LogLevel: in}).SlogLevel(), in)
	}
}
