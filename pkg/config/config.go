// Package config loads scraper configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v2"

	"github.com/planningalerts-scrapers/horizon-xml/pkg/store"
	"github.com/planningalerts-scrapers/horizon-xml/pkg/tenant"
)

// Log configures logging output.
type Log struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Config is the full scraper configuration.
type Config struct {
	// Period applies to tenants without a fixed period.
	Period   string `yaml:"period"`
	PageSize int    `yaml:"page_size"`

	AllowBlanks       bool `yaml:"allow_blanks"`
	IncludeCommentURL bool `yaml:"include_comment_url"`

	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`

	Log   Log          `yaml:"log"`
	Store store.Config `yaml:"store"`

	// MetricsAddr serves /metrics while scraping when set.
	MetricsAddr string `yaml:"metrics_addr"`

	Tenants map[string]tenant.Config `yaml:"tenants"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Period:    "thisweek",
		PageSize:  500,
		UserAgent: "horizon-xml/1.0 (+https://www.planningalerts.org.au)",
		Timeout:   60 * time.Second,
		Log: Log{
			Level: "info",
		},
		Store: store.DefaultConfig(),
	}
}

// Load reads path (a missing file is not an error), fills unset values from
// Default and applies environment overrides.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := mergo.Merge(&cfg, Default()); err != nil {
		return Config{}, fmt.Errorf("apply defaults: %w", err)
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("MORPH_PERIOD", &cfg.Period)
	str("USER_AGENT", &cfg.UserAgent)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("METRICS_ADDR", &cfg.MetricsAddr)
	str("HORIZON_STORE_DRIVER", &cfg.Store.Driver)
	str("HORIZON_SQLITE_PATH", &cfg.Store.SQLitePath)
	str("MONGO_URI", &cfg.Store.MongoURI)
	str("REDIS_URL", &cfg.Store.RedisAddr)

	if v, ok := lookup("HORIZON_PAGE_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("HORIZON_PAGE_SIZE must be a positive integer (got %q)", v)
		}
		cfg.PageSize = n
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"HORIZON_ALLOW_BLANKS", &cfg.AllowBlanks},
		{"LOG_PRETTY", &cfg.Log.Pretty},
	}
	for _, b := range bools {
		if v, ok := lookup(b.key); ok && v != "" {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", b.key, err)
			}
			*b.dst = parsed
		}
	}
	return nil
}

// Validate checks values Load cannot repair.
func (c Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be > 0 (got %d)", c.PageSize)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required")
	}
	return nil
}
