package config

// ServerConfig contains HTTP service configuration
type ServerConfig struct {
	Port           int      `yaml:"port" validate:"gte=0"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
	DisableMetrics bool     `yaml:"disableMetrics"`
}

// APIConfig contains Stride API client configuration
type APIConfig struct {
	BaseURL      string `yaml:"baseURL" validate:"omitempty,url"`
	TimeoutMS    int    `yaml:"timeoutMS" validate:"gte=0"`
	DefaultLimit int    `yaml:"defaultLimit" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server ServerConfig `yaml:"server"`
	API    APIConfig    `yaml:"api"`
}
