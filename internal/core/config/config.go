package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level application config.
type Config struct {
	Server ServerConfig `koanf:"server"`
	Auth   AuthConfig   `koanf:"auth"`
	Store  StoreConfig  `koanf:"store"`
}

type ServerConfig struct {
	Port    int    `koanf:"port"`
	Host    string `koanf:"host"`
	Mode    string `koanf:"mode"` // debug | release
	LogPath string `koanf:"log_path"`
}

// AuthConfig carries the token-derivation constants. The salts and the
// privileged login are a compatibility contract with existing clients:
// changing them invalidates every token in circulation.
type AuthConfig struct {
	UserSalt   string `koanf:"user_salt"`
	AdminSalt  string `koanf:"admin_salt"`
	AdminLogin string `koanf:"admin_login"`
}

type StoreConfig struct {
	// InterestsPath optionally points at a YAML file mapping client id to
	// interest tags. Empty means the built-in seed data.
	InterestsPath string `koanf:"interests_path"`
	CacheTTL      string `koanf:"cache_ttl"`
}

// CacheTTLDuration parses the score-cache TTL.
func (c StoreConfig) CacheTTLDuration() (time.Duration, error) {
	return time.ParseDuration(c.CacheTTL)
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if c.Auth.UserSalt == "" {
		return fmt.Errorf("auth.user_salt is required")
	}
	if c.Auth.AdminSalt == "" {
		return fmt.Errorf("auth.admin_salt is required")
	}
	if strings.TrimSpace(c.Auth.AdminLogin) == "" {
		return fmt.Errorf("auth.admin_login is required")
	}

	ttl, err := c.Store.CacheTTLDuration()
	if err != nil {
		return fmt.Errorf("invalid store.cache_ttl %q: %w", c.Store.CacheTTL, err)
	}
	if ttl <= 0 {
		return fmt.Errorf("store.cache_ttl must be > 0")
	}
	if c.Store.InterestsPath != "" {
		if _, err := os.Stat(c.Store.InterestsPath); err != nil {
			return fmt.Errorf("store.interests_path %q is not accessible: %w", c.Store.InterestsPath, err)
		}
	}

	return nil
}

// Load parses config from defaults, an optional YAML file and env vars, then
// validates it. An empty configPath means built-in defaults plus env only.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":          8080,
		"server.host":          "0.0.0.0",
		"server.mode":          "release",
		"server.log_path":      "",
		"auth.user_salt":       "Otus",
		"auth.admin_salt":      "42",
		"auth.admin_login":     "admin",
		"store.interests_path": "",
		"store.cache_ttl":      "1h",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("SCORING_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "SCORING_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
