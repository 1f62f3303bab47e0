// Package config loads the scormlens configuration file.
//
// The file is TOML and every key is optional:
//
//	[cache]
//	backend = "redis"            # file, redis or none
//	dir = "/var/cache/scormlens" # file backend only
//	redis_url = "redis://localhost:6379/0"
//	prefix = "staging:"
//
//	[limits]
//	max_uncompressed_bytes = 2147483648
//	max_upload_bytes = 536870912
//
//	[http]
//	timeout = "60s"
//	attempts = 3
//
//	[api]
//	listen = ":8080"
//	read_timeout = "30s"
//
// Unknown keys are rejected so typos do not silently fall back to defaults.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/scormlens/pkg/errors"
)

// AppName names the configuration and cache directories.
const AppName = "scormlens"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the decoded configuration file.
type Config struct {
	Cache  Cache  `toml:"cache"`
	Limits Limits `toml:"limits"`
	HTTP   HTTP   `toml:"http"`
	API    API    `toml:"api"`
}

// Cache selects and configures the result cache.
type Cache struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir,omitempty"`
	RedisURL string `toml:"redis_url,omitempty"`
	// Prefix scopes every key, so several deployments can share one Redis.
	Prefix string `toml:"prefix,omitempty"`
}

// Limits bounds the size of accepted packages.
type Limits struct {
	MaxUncompressedBytes int64 `toml:"max_uncompressed_bytes"`
	MaxUploadBytes       int64 `toml:"max_upload_bytes"`
}

// HTTP configures package downloads.
type HTTP struct {
	Timeout  Duration `toml:"timeout"`
	Attempts int      `toml:"attempts"`
}

// API configures the HTTP server.
type API struct {
	Listen      string   `toml:"listen"`
	ReadTimeout Duration `toml:"read_timeout"`
	// AllowPrivateURLs lets URL analyses download from loopback, private
	// and link-local addresses. Off by default.
	AllowPrivateURLs bool `toml:"allow_private_urls"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Defaults.
const (
	DefaultMaxUncompressedBytes = 2 << 30
	DefaultMaxUploadBytes       = 512 << 20
	DefaultHTTPTimeout          = 60 * time.Second
	DefaultHTTPAttempts         = 3
	DefaultListen               = ":8080"
	DefaultReadTimeout          = 30 * time.Second
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Cache: Cache{Backend: BackendFile},
		Limits: Limits{
			MaxUncompressedBytes: DefaultMaxUncompressedBytes,
			MaxUploadBytes:       DefaultMaxUploadBytes,
		},
		HTTP: HTTP{
			Timeout:  Duration{DefaultHTTPTimeout},
			Attempts: DefaultHTTPAttempts,
		},
		API: API{
			Listen:      DefaultListen,
			ReadTimeout: Duration{DefaultReadTimeout},
		},
	}
}

// Load reads the file at path over the defaults. A missing file is an
// error; use [LoadDefault] for the optional default location.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDefault reads the file at [DefaultPath] if it exists and returns the
// defaults otherwise. The returned path is empty when no file was read.
func LoadDefault() (Config, string, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), "", nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend: invalid value %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Limits.MaxUncompressedBytes < 0 || c.Limits.MaxUploadBytes < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "limits cannot be negative")
	}
	if c.HTTP.Timeout.Duration < 0 || c.HTTP.Attempts < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "http.timeout and http.attempts cannot be negative")
	}
	return nil
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// DefaultPath returns the configuration file location using the XDG
// standard (~/.config/scormlens/config.toml).
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the file cache directory: Cache.Dir when set, otherwise
// the XDG cache location (~/.cache/scormlens/).
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
