package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/openbus-tools/stride/strideapi"
)

// Config is the global application configuration
var Config AppConfig

// LoadAppConfig loads and validates the application configuration. It reads
// config.yml when present (a missing file just means defaults), applies
// STRIDE_* environment overrides (including any .env file in the working
// directory) and fills in defaults.
func LoadAppConfig() error {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	var cfg AppConfig

	paths := []string{"config.yml", "config.yaml"}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return err
		}
		break
	}

	if err := applyEnv(&cfg); err != nil {
		return err
	}

	v := validator.New()
	if err := v.Struct(cfg.Server); err != nil {
		return err
	}
	if err := v.Struct(cfg.API); err != nil {
		return err
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = strideapi.DefaultBaseURL
	}
	if cfg.API.TimeoutMS == 0 {
		cfg.API.TimeoutMS = 30000
	}
	if cfg.API.DefaultLimit == 0 {
		cfg.API.DefaultLimit = 1000
	}

	Config = cfg
	return nil
}

func applyEnv(cfg *AppConfig) error {
	if v := os.Getenv("STRIDE_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("STRIDE_TIMEOUT_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return errors.New("invalid STRIDE_TIMEOUT_MS: " + v)
		}
		cfg.API.TimeoutMS = ms
	}
	if v := os.Getenv("STRIDE_DEFAULT_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return errors.New("invalid STRIDE_DEFAULT_LIMIT: " + v)
		}
		cfg.API.DefaultLimit = n
	}
	if v := os.Getenv("STRIDE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			return errors.New("invalid STRIDE_PORT: " + v)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("STRIDE_DISABLE_METRICS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New("invalid STRIDE_DISABLE_METRICS: " + v)
		}
		cfg.Server.DisableMetrics = b
	}
	if v := os.Getenv("STRIDE_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}
	return nil
}
