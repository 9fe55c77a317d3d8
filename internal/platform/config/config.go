package config

import (
	"time"
)

// Config is built once at startup and handed to every service. Nothing
// mutates it after Loader.Load returns.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Log           LogConfig           `yaml:"log"`
	Vision        VisionConfig        `yaml:"vision"`
	Market        MarketConfig        `yaml:"market"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type ServerConfig struct {
	IP              string        `yaml:"ip"`
	Port            int           `yaml:"port"`
	PublicDir       string        `yaml:"public_dir"`
	BodyLimit       int64         `yaml:"body_limit"`
	ErrorMode       string        `yaml:"error_mode"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"log_level"`
	Dir    string `yaml:"log_dir"`
	File   string `yaml:"log_file"`
	Format string `yaml:"log_format"`
}

// VisionConfig selects the AI provider used for image analysis and translation.
type VisionConfig struct {
	Provider    string        `yaml:"provider"`
	ModelName   string        `yaml:"model_name"`
	BaseURL     string        `yaml:"url"`
	APIKey      string        `yaml:"api_key"`
	Mapper      string        `yaml:"mapper"`
	MIMEType    string        `yaml:"mime_type"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// MarketConfig points at the data.gov.in commodity price resource.
type MarketConfig struct {
	BaseURL    string        `yaml:"url"`
	ResourceID string        `yaml:"resource_id"`
	APIKey     string        `yaml:"api_key"`
	Format     string        `yaml:"format"`
	Limit      int           `yaml:"limit"`
	Timeout    time.Duration `yaml:"timeout"`
}

type ObservabilityConfig struct {
	Enabled        bool   `yaml:"enabled"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
	MetricsPath    string `yaml:"metrics_path"`
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	MapperPlaceholder = "placeholder"
	MapperStructured  = "structured"

	ErrorModeLegacy   = "legacy"
	ErrorModeDetailed = "detailed"
)
