package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/layoutview/internal/server"
	"github.com/matzehuels/layoutview/pkg/cache"
	errs "github.com/matzehuels/layoutview/pkg/errors"
)

// configEnv names a config file that replaces the XDG default.
const configEnv = "LAYOUTVIEW_CONFIG"

// Cache backends selectable in the config file and with --cache.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendNone  = "none"
)

// Config is the optional TOML configuration file.
//
//	[server]
//	addr = ":8080"
//	max_upload_mb = 100
//	form_memory_mb = 2
//	allowed_origins = ["http://localhost:3000"]
//	upload_dir = "/var/tmp/layoutview"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "72h"
//
//	[log]
//	level = "debug"
type Config struct {
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures "layoutview serve".
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	MaxUploadMB    int64    `toml:"max_upload_mb"`
	FormMemoryMB   int64    `toml:"form_memory_mb"`
	AllowedOrigins []string `toml:"allowed_origins"`
	UploadDir      string   `toml:"upload_dir"`
}

// CacheConfig selects and configures the snapshot cache.
type CacheConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
	TTL      string `toml:"ttl"`
}

// LogConfig sets the default log level. --verbose overrides it.
type LogConfig struct {
	Level string `toml:"level"`
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			MaxUploadMB:  server.DefaultMaxUploadBytes >> 20,
			FormMemoryMB: server.DefaultFormMemoryBytes >> 20,
		},
		Cache: CacheConfig{Backend: backendFile},
		Log:   LogConfig{Level: "info"},
	}
}

// configPath returns $LAYOUTVIEW_CONFIG, or config.toml in the XDG config
// directory (~/.config/layoutview/).
func configPath() (string, error) {
	if p := os.Getenv(configEnv); p != "" {
		return p, nil
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads the config file at path over the defaults. A missing
// file yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidPath, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case backendFile, backendRedis, backendNone:
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown cache backend %q (must be file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.Backend == backendRedis && c.Cache.RedisURL == "" {
		return errs.New(errs.ErrCodeInvalidInput, "cache backend redis needs redis_url")
	}
	if _, err := c.cacheTTL(); err != nil {
		return err
	}
	if _, err := c.logLevel(); err != nil {
		return err
	}
	return nil
}

// cacheTTL parses [cache] ttl. Empty means cache.TTLDesign.
func (c Config) cacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return cache.TTLDesign, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d < 0 {
		return 0, errs.New(errs.ErrCodeInvalidInput, "invalid cache ttl %q", c.Cache.TTL)
	}
	return d, nil
}

func (c Config) logLevel() (log.Level, error) {
	if c.Log.Level == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil {
		return log.InfoLevel, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid log level %q", c.Log.Level)
	}
	return level, nil
}

// serverConfig converts [server] to a server.Config. Zero values fall
// back to the server defaults.
func (c Config) serverConfig(logger *log.Logger) server.Config {
	return server.Config{
		Addr:            c.Server.Addr,
		MaxUploadBytes:  c.Server.MaxUploadMB << 20,
		FormMemoryBytes: c.Server.FormMemoryMB << 20,
		AllowedOrigins:  c.Server.AllowedOrigins,
		UploadDir:       c.Server.UploadDir,
		Logger:          logger,
	}
}
