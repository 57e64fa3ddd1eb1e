package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Heatmap   HeatmapConfig   `yaml:"heatmap"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// TailscaleConfig controls the embedded tsnet listener. When disabled the
// server listens on Server.Host:Server.Port and every request is attributed
// to the dev user.
type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// HeatmapConfig tunes the query surface of the heatmap engine.
type HeatmapConfig struct {
	DefaultWindowDays int   `yaml:"default_window_days"`
	Windows           []int `yaml:"windows"`
	CacheSize         int   `yaml:"cache_size"`
}

// AllowsWindow reports whether days is one of the configured windows.
func (h HeatmapConfig) AllowsWindow(days int) bool {
	return slices.Contains(h.Windows, days)
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Default returns a Config with every optional field at its default.
func Default() *Config {
	return &Config{
		Tailscale: TailscaleConfig{
			Hostname: "musclemap",
			StateDir: "tsnet-state",
		},
		Heatmap: HeatmapConfig{
			DefaultWindowDays: 30,
			Windows:           []int{7, 30, 90},
			CacheSize:         256,
		},
	}
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix MUSCLEMAP_ and underscore-separated paths:
//
//	MUSCLEMAP_SERVER_HOST, MUSCLEMAP_SERVER_PORT,
//	MUSCLEMAP_DB_HOST, MUSCLEMAP_DB_PORT, MUSCLEMAP_DB_NAME,
//	MUSCLEMAP_DB_USER, MUSCLEMAP_DB_PASSWORD, MUSCLEMAP_DB_SSLMODE,
//	MUSCLEMAP_AUTH_API_KEY,
//	MUSCLEMAP_TAILSCALE_ENABLED, MUSCLEMAP_TAILSCALE_HOSTNAME, MUSCLEMAP_TAILSCALE_STATE_DIR,
//	MUSCLEMAP_HEATMAP_DEFAULT_WINDOW_DAYS, MUSCLEMAP_HEATMAP_WINDOWS (comma separated),
//	MUSCLEMAP_HEATMAP_CACHE_SIZE
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MUSCLEMAP_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("MUSCLEMAP_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MUSCLEMAP_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("MUSCLEMAP_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("MUSCLEMAP_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("MUSCLEMAP_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("MUSCLEMAP_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("MUSCLEMAP_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("MUSCLEMAP_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("MUSCLEMAP_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	if v := os.Getenv("MUSCLEMAP_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("MUSCLEMAP_TAILSCALE_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
	if v := os.Getenv("MUSCLEMAP_HEATMAP_DEFAULT_WINDOW_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Heatmap.DefaultWindowDays = n
		}
	}
	if v := os.Getenv("MUSCLEMAP_HEATMAP_WINDOWS"); v != "" {
		if windows, err := parseWindows(v); err == nil {
			cfg.Heatmap.Windows = windows
		}
	}
	if v := os.Getenv("MUSCLEMAP_HEATMAP_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Heatmap.CacheSize = n
		}
	}
}

func parseWindows(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("parsing window %q: %w", part, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if len(c.Heatmap.Windows) == 0 {
		return fmt.Errorf("heatmap.windows must not be empty")
	}
	for _, w := range c.Heatmap.Windows {
		if w <= 0 {
			return fmt.Errorf("heatmap.windows: %d is not a positive day count", w)
		}
	}
	if !c.Heatmap.AllowsWindow(c.Heatmap.DefaultWindowDays) {
		return fmt.Errorf("heatmap.default_window_days %d is not one of heatmap.windows %v",
			c.Heatmap.DefaultWindowDays, c.Heatmap.Windows)
	}
	if c.Heatmap.CacheSize <= 0 {
		return fmt.Errorf("heatmap.cache_size must be positive")
	}
	return nil
}
