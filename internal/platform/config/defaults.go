package config

import "time"

const (
	DefaultPort       = 3000
	DefaultBodyLimit  = 10 * 1024 * 1024
	DefaultResourceID = "9ef84268-d588-465a-a308-a864a43d0070"
)

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:              "0.0.0.0",
			Port:            DefaultPort,
			PublicDir:       "public",
			BodyLimit:       DefaultBodyLimit,
			ErrorMode:       ErrorModeLegacy,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "INFO",
			Dir:    "data/logs",
			File:   "server.log",
			Format: "text",
		},
		Vision: VisionConfig{
			Provider:  ProviderGemini,
			ModelName: "gemini-1.5-flash",
			Mapper:    MapperPlaceholder,
			MIMEType:  "image/jpeg",
		},
		Market: MarketConfig{
			BaseURL:    "https://api.data.gov.in",
			ResourceID: DefaultResourceID,
			Format:     "json",
			Limit:      10,
		},
		Observability: ObservabilityConfig{
			Enabled:        false,
			MetricsEnabled: true,
			MetricsPath:    "/metrics",
		},
	}
}
