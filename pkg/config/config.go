package config

import (
	"log/slog"
	"strings"
	"time"
)

type Config struct {
	Port    string `koanf:"port"`
	DataDir string `koanf:"data_dir"`

	// LLMProvider selects the chat model: google or groq.
	LLMProvider  string `koanf:"llm_provider"`
	GoogleAPIKey string `koanf:"google_api_key"`
	GoogleModel  string `koanf:"google_model"`
	GroqAPIKey   string `koanf:"groq_api_key"`
	GroqModel    string `koanf:"groq_model"`
	GroqBaseURL  string `koanf:"groq_base_url"`

	// PromptMode is compressed or full.
	PromptMode      string `koanf:"prompt_mode"`
	MaxHistory      int    `koanf:"max_history"`
	MaxOutputTokens int    `koanf:"max_output_tokens"`

	// ChatTimeout caps one streamed reply end to end.
	ChatTimeout time.Duration `koanf:"chat_timeout"`

	// DatabaseURL and RedisURL are optional. Without them usage is not
	// persisted and rate limiting stays in memory.
	DatabaseURL string `koanf:"database_url"`
	RedisURL    string `koanf:"redis_url"`

	RateLimit         int           `koanf:"rate_limit"`
	RateWindow        time.Duration `koanf:"rate_window"`
	RateSweepInterval time.Duration `koanf:"rate_sweep_interval"`
	UsageTimeout      time.Duration `koanf:"usage_timeout"`

	LogLevel     string   `koanf:"log_level"`
	AllowOrigins []string `koanf:"allow_origins"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		Port:              "3000",
		DataDir:           "data",
		LLMProvider:       "google",
		GoogleModel:       "gemini-2.0-flash-lite",
		GroqModel:         "llama-3.3-70b-specdec",
		GroqBaseURL:       "https://api.groq.com/openai/v1",
		PromptMode:        "compressed",
		MaxHistory:        10,
		MaxOutputTokens:   1500,
		ChatTimeout:       60 * time.Second,
		RateLimit:         10,
		RateWindow:        60 * time.Second,
		RateSweepInterval: 5 * time.Minute,
		UsageTimeout:      5 * time.Second,
		LogLevel:          "info",
		AllowOrigins:      []string{"*"},
	}
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
