package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort        = 2333
	defaultEnv         = "development"
	defaultBaseDomain  = "localhost"
	defaultProtocol    = "http"
	defaultUploadsDir  = "uploads"
	defaultUploadsBase = "/uploads"
	defaultWikiTimeout = 15
)

// Load reads the YAML config file, applies environment overrides and fills
// defaults. A missing file is not an error; env vars and defaults apply.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to env/defaults
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required (config %s or DSN env)", path)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := envString("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			cfg.Port = p
		}
	}
	if v := envString("DSN"); v != "" {
		cfg.DSN = v
	}
	if v := envString("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := envString("ENV"); v != "" {
		cfg.Env = v
	}
	if v := envString("BASE_DOMAIN"); v != "" {
		cfg.BaseDomain = v
	}
	if v := envString("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := envString("WIKI_FARM_API"); v != "" {
		cfg.Wiki.FarmAPI = v
	}
	if v := envString("WIKI_ADMIN_TOKEN"); v != "" {
		cfg.Wiki.AdminToken = v
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.BaseDomain == "" {
		cfg.BaseDomain = defaultBaseDomain
	}
	if cfg.Protocol == "" {
		if cfg.IsDev() {
			cfg.Protocol = defaultProtocol
		} else {
			cfg.Protocol = "https"
		}
	}
	if cfg.Uploads.Dir == "" {
		cfg.Uploads.Dir = defaultUploadsDir
	}
	if cfg.Uploads.PublicBase == "" {
		cfg.Uploads.PublicBase = defaultUploadsBase
	}
	if cfg.Wiki.TimeoutSeconds <= 0 {
		cfg.Wiki.TimeoutSeconds = defaultWikiTimeout
	}
	// Strip a scheme accidentally included in base_domain.
	cfg.BaseDomain = strings.TrimPrefix(strings.TrimPrefix(cfg.BaseDomain, "https://"), "http://")
}

func envString(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
