package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"agrosnap-server/internal/platform/errors"
)

const defaultConfigPath = "config.yaml"

// Loader layers defaults, an optional YAML file, a .env file and the process
// environment, in that order.
type Loader struct {
	useDotEnv bool
	path      string
	lookupEnv func(string) (string, bool)
}

// NewLoader creates a loader that reads CONFIG_PATH (or config.yaml) and the process environment.
func NewLoader() *Loader {
	return &Loader{
		useDotEnv: true,
		lookupEnv: os.LookupEnv,
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath overrides the YAML file location.
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// WithEnv overrides the environment lookup (useful for tests).
func (l *Loader) WithEnv(lookup func(string) (string, bool)) *Loader {
	if lookup != nil {
		l.lookupEnv = lookup
	}
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config   *Config
	Path     string
	Warnings []string
}

// Load builds the runtime configuration.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		// A missing .env is the normal case outside local development.
		_ = godotenv.Load()
	}

	cfg := DefaultConfig()

	path := l.resolvePath()
	loadedFrom := "defaults"
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.KindConfig, "config.load", fmt.Sprintf("parse %s", path), err)
		}
		loadedFrom = path
	case os.IsNotExist(err):
	default:
		return nil, errors.Wrap(errors.KindConfig, "config.load", fmt.Sprintf("read %s", path), err)
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := l.validate(cfg); err != nil {
		return nil, err
	}

	return &Result{
		Config:   cfg,
		Path:     loadedFrom,
		Warnings: warnings(cfg),
	}, nil
}

func (l *Loader) resolvePath() string {
	if l.path != "" {
		return l.path
	}
	if p, ok := l.lookupEnv("CONFIG_PATH"); ok && p != "" {
		return p
	}
	return defaultConfigPath
}

func (l *Loader) env(key string) (string, bool) {
	v, ok := l.lookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (l *Loader) applyEnv(cfg *Config) error {
	if v, ok := l.env("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.KindConfig, "config.env", "PORT must be a number", err)
		}
		cfg.Server.Port = port
	}
	if v, ok := l.env("PUBLIC_DIR"); ok {
		cfg.Server.PublicDir = v
	}
	if v, ok := l.env("ERROR_MODE"); ok {
		cfg.Server.ErrorMode = strings.ToLower(v)
	}
	if v, ok := l.env("LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := l.env("VISION_PROVIDER"); ok {
		cfg.Vision.Provider = strings.ToLower(v)
	}
	if v, ok := l.env("VISION_MODEL"); ok {
		cfg.Vision.ModelName = v
	}
	if v, ok := l.env("VISION_MAPPER"); ok {
		cfg.Vision.Mapper = strings.ToLower(v)
	}

	keyVar := "GOOGLE_API_KEY"
	if cfg.Vision.Provider == ProviderOpenAI {
		keyVar = "OPENAI_API_KEY"
	}
	if v, ok := l.env(keyVar); ok {
		cfg.Vision.APIKey = v
	}
	if v, ok := l.env("DATA_GOV_IN_API_KEY"); ok {
		cfg.Market.APIKey = v
	}
	return nil
}

func (l *Loader) validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return errors.New(errors.KindConfig, "config.validate", fmt.Sprintf("invalid server port %d", cfg.Server.Port))
	}
	if cfg.Server.BodyLimit <= 0 {
		return errors.New(errors.KindConfig, "config.validate", "server.body_limit must be positive")
	}
	switch cfg.Server.ErrorMode {
	case ErrorModeLegacy, ErrorModeDetailed:
	default:
		return errors.New(errors.KindConfig, "config.validate", fmt.Sprintf("unknown error mode %q", cfg.Server.ErrorMode))
	}
	switch cfg.Vision.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return errors.New(errors.KindConfig, "config.validate", fmt.Sprintf("unknown vision provider %q", cfg.Vision.Provider))
	}
	switch cfg.Vision.Mapper {
	case MapperPlaceholder, MapperStructured:
	default:
		return errors.New(errors.KindConfig, "config.validate", fmt.Sprintf("unknown vision mapper %q", cfg.Vision.Mapper))
	}
	if cfg.Vision.ModelName == "" {
		return errors.New(errors.KindConfig, "config.validate", "vision.model_name is required")
	}
	if cfg.Market.BaseURL == "" || cfg.Market.ResourceID == "" {
		return errors.New(errors.KindConfig, "config.validate", "market.url and market.resource_id are required")
	}
	if cfg.Market.Limit < 0 {
		return errors.New(errors.KindConfig, "config.validate", "market.limit must not be negative")
	}
	return nil
}

// Missing credentials do not stop the server; the calls that need them fail at request time.
func warnings(cfg *Config) []string {
	var out []string
	if cfg.Vision.APIKey == "" {
		out = append(out, fmt.Sprintf("vision provider %s has no API key configured", cfg.Vision.Provider))
	}
	if cfg.Market.APIKey == "" {
		out = append(out, "DATA_GOV_IN_API_KEY is not set")
	}
	return out
}
