package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnv names the optional YAML config file.
const ConfigPathEnv = "SUMMIT_CONFIG"

// Load layers, from low to high precedence:
//  1. defaults (New)
//  2. the YAML file named by SUMMIT_CONFIG, if set
//  3. environment variables, lower-cased (GOOGLE_API_KEY -> google_api_key)
//
// A .env file in the working directory is read first and never overrides
// variables that are already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to read .env file", "error", err)
	}

	k := koanf.New(".")

	if path := os.Getenv(ConfigPathEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.ProviderWithValue("", ".", envValue)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	cfg.PromptMode = strings.ToLower(strings.TrimSpace(cfg.PromptMode))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKeys holds the koanf keys of Config. Only these are read from the
// environment.
var envKeys = func() map[string]struct{} {
	keys := make(map[string]struct{})
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("koanf"); tag != "" {
			keys[tag] = struct{}{}
		}
	}
	return keys
}()

// envValue maps GOOGLE_API_KEY to google_api_key. Unknown and empty variables
// are skipped so they never shadow a default, and list settings are split on
// commas.
func envValue(key, value string) (string, any) {
	key = strings.ToLower(key)
	if _, ok := envKeys[key]; !ok {
		return "", nil
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if key == "allow_origins" {
		var origins []string
		for _, o := range strings.Split(value, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) == 0 {
			return "", nil
		}
		return key, origins
	}
	return key, value
}

// Validate rejects settings the server cannot run with. Missing API keys and
// store URLs are allowed.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Port) == "":
		return fmt.Errorf("%w: port must not be empty", ErrInvalidConfig)
	case c.LLMProvider != "google" && c.LLMProvider != "groq":
		return fmt.Errorf("%w: llm_provider must be google or groq, got %q", ErrInvalidConfig, c.LLMProvider)
	case c.PromptMode != "compressed" && c.PromptMode != "full":
		return fmt.Errorf("%w: prompt_mode must be compressed or full, got %q", ErrInvalidConfig, c.PromptMode)
	case c.MaxHistory <= 0:
		return fmt.Errorf("%w: max_history must be positive", ErrInvalidConfig)
	case c.MaxOutputTokens <= 0:
		return fmt.Errorf("%w: max_output_tokens must be positive", ErrInvalidConfig)
	case c.RateLimit <= 0:
		return fmt.Errorf("%w: rate_limit must be positive", ErrInvalidConfig)
	case c.RateWindow <= 0:
		return fmt.Errorf("%w: rate_window must be positive", ErrInvalidConfig)
	}
	return nil
}
