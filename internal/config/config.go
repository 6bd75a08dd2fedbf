// Package config loads the svz configuration file.
//
// The file is TOML. Lookup order: the path given with --config, then
// $XDG_CONFIG_HOME/svz/config.toml, then ~/.config/svz/config.toml. A
// missing file is not an error; every setting has a default and command
// line flags override the file.
//
//	[parse]
//	parser = "treesitter"
//
//	[render]
//	accent_color = "#336699"
//	formats = ["dot", "svg"]
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
//
//	[neo4j]
//	uri = "neo4j://localhost:7687"
//	user = "neo4j"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	svzerrors "github.com/matzehuels/svz/pkg/errors"
	"github.com/matzehuels/svz/pkg/pipeline"
)

const (
	appName  = "svz"
	fileName = "config.toml"

	// EnvNeo4jPassword overrides neo4j.password so it can stay out of the file.
	EnvNeo4jPassword = "SVZ_NEO4J_PASSWORD"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the complete configuration.
type Config struct {
	Parse  ParseConfig  `toml:"parse"`
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Neo4j  Neo4jConfig  `toml:"neo4j"`
	Server ServerConfig `toml:"server"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

// ParseConfig selects the extractor.
type ParseConfig struct {
	Parser string `toml:"parser"`
}

// RenderConfig holds DOT and artifact defaults.
type RenderConfig struct {
	AccentColor string   `toml:"accent_color"`
	NoColor     bool     `toml:"no_color"`
	Formats     []string `toml:"formats"`
	Scale       float64  `toml:"scale"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	TTL      string `toml:"ttl"`
	Prefix   string `toml:"prefix"`
}

// Neo4jConfig holds connection settings for `svz export neo4j`.
type Neo4jConfig struct {
	URI       string `toml:"uri"`
	User      string `toml:"user"`
	Password  string `toml:"password"`
	BatchSize int    `toml:"batch_size"`
}

// ServerConfig configures `svz serve`.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Parse: ParseConfig{Parser: pipeline.DefaultParser},
		Render: RenderConfig{
			Formats: []string{pipeline.FormatDOT},
			Scale:   pipeline.DefaultScale,
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     pipeline.DefaultTTL.String(),
		},
		Neo4j: Neo4jConfig{
			URI:  "neo4j://localhost:7687",
			User: "neo4j",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 8 << 20,
		},
	}
}

// Load reads the configuration file at path, or the default location when
// path is empty. An explicit path that does not exist is an error; a missing
// default file is not.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, cfg.finish()
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if explicit {
			return nil, svzerrors.Wrap(svzerrors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, cfg.finish()
	case err != nil:
		return nil, svzerrors.Wrap(svzerrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, svzerrors.New(svzerrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.Path = path
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish applies environment overrides and validates.
func (c *Config) finish() error {
	if pw := os.Getenv(EnvNeo4jPassword); pw != "" {
		c.Neo4j.Password = pw
	}
	return c.Validate()
}

// Validate checks every section and returns a coded error for the first
// problem found.
func (c *Config) Validate() error {
	if err := pipeline.ValidateParser(c.Parse.Parser); err != nil {
		return err
	}
	opts := pipeline.Options{
		Parser:      c.Parse.Parser,
		Formats:     c.Render.Formats,
		AccentColor: c.Render.AccentColor,
		NoColor:     c.Render.NoColor,
		Scale:       c.Render.Scale,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return svzerrors.New(svzerrors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	default:
		return svzerrors.New(svzerrors.ErrCodeInvalidConfig, "cache.backend must be one of: file, redis, none (got %q)", c.Cache.Backend)
	}
	if _, err := c.Cache.TTLDuration(); err != nil {
		return err
	}

	if c.Neo4j.BatchSize < 0 {
		return svzerrors.New(svzerrors.ErrCodeInvalidConfig, "neo4j.batch_size must not be negative")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return svzerrors.New(svzerrors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive")
	}
	return nil
}

// TTLDuration parses the ttl setting. An empty value means no expiry.
func (c CacheConfig) TTLDuration() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d < 0 {
		return 0, svzerrors.New(svzerrors.ErrCodeInvalidConfig, "cache.ttl: invalid duration %q", c.TTL)
	}
	return d, nil
}

// CacheDir returns the configured file cache directory, or the XDG default
// (~/.cache/svz).
func (c CacheConfig) CacheDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// DefaultPath returns the default config file location using the XDG
// standard (~/.config/svz/config.toml).
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}
