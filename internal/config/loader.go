package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".urlup.yml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .urlup.yml configuration file.
// All fields are pointers so that an absent key can be told apart from
// an explicit zero; only present keys override defaults.
//
// Durations use fixed units: timeout is in seconds, retry_delay and
// rate_limit are in milliseconds.
type File struct {
	Timeout            *int     `yaml:"timeout,omitempty"`
	Concurrency        *int     `yaml:"concurrency,omitempty"`
	Recursive          *bool    `yaml:"recursive,omitempty"`
	IncludeExtensions  []string `yaml:"include_extensions,omitempty"`
	RetryAttempts      *int     `yaml:"retry_attempts,omitempty"`
	RetryDelay         *int     `yaml:"retry_delay,omitempty"`
	RateLimit          *int     `yaml:"rate_limit,omitempty"`
	AllowTimeout       *bool    `yaml:"allow_timeout,omitempty"`
	AllowedStatusCodes []int    `yaml:"allowed_status_codes,omitempty"`
	Allowlist          []string `yaml:"allowlist,omitempty"`
	ExcludePatterns    []string `yaml:"exclude_patterns,omitempty"`
	UseHEAD            *bool    `yaml:"use_head,omitempty"`
	UserAgent          *string  `yaml:"user_agent,omitempty"`
	Proxy              *string  `yaml:"proxy,omitempty"`
	Insecure           *bool    `yaml:"insecure,omitempty"`
	FailureThreshold   *float64 `yaml:"failure_threshold,omitempty"`
	Format             *string  `yaml:"format,omitempty"`
	Quiet              *bool    `yaml:"quiet,omitempty"`
	NoProgress         *bool    `yaml:"no_progress,omitempty"`
	Cache              *bool    `yaml:"cache,omitempty"`
	CacheMaxAge        *string  `yaml:"cache_max_age,omitempty"`
}

// LoadConfigFile loads configuration from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers
// should handle this error based on whether the config file path was
// explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	return &f, nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .urlup.yml in the current directory
//  3. Look for .urlup.yml in the user's home directory
//
// Returns the path to the configuration file if found, or empty string
// if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Apply copies every present file value onto the config. CLI flags are
// applied after this, so precedence is defaults, then file, then flags.
func (f *File) Apply(c *Config) error {
	if f.Timeout != nil {
		c.Timeout = time.Duration(*f.Timeout) * time.Second
	}
	if f.Concurrency != nil {
		c.Concurrency = *f.Concurrency
	}
	if f.Recursive != nil {
		c.Recursive = *f.Recursive
	}
	if len(f.IncludeExtensions) > 0 {
		c.IncludeExtensions = f.IncludeExtensions
	}
	if f.RetryAttempts != nil {
		c.RetryAttempts = *f.RetryAttempts
	}
	if f.RetryDelay != nil {
		c.RetryDelay = time.Duration(*f.RetryDelay) * time.Millisecond
	}
	if f.RateLimit != nil {
		c.RateLimitDelay = time.Duration(*f.RateLimit) * time.Millisecond
	}
	if f.AllowTimeout != nil {
		c.AllowTimeout = *f.AllowTimeout
	}
	if len(f.AllowedStatusCodes) > 0 {
		c.AllowedStatusCodes = f.AllowedStatusCodes
	}
	if len(f.Allowlist) > 0 {
		c.AllowlistSubstrings = f.Allowlist
	}
	if len(f.ExcludePatterns) > 0 {
		c.ExcludePatterns = f.ExcludePatterns
	}
	if f.UseHEAD != nil {
		c.UseHEAD = *f.UseHEAD
	}
	if f.UserAgent != nil {
		c.UserAgent = *f.UserAgent
	}
	if f.Proxy != nil {
		c.Proxy = *f.Proxy
	}
	if f.Insecure != nil {
		c.Insecure = *f.Insecure
	}
	if f.FailureThreshold != nil {
		c.FailureThreshold = *f.FailureThreshold
	}
	if f.Format != nil {
		c.Format = *f.Format
	}
	if f.Quiet != nil {
		c.Quiet = *f.Quiet
	}
	if f.NoProgress != nil {
		c.NoProgress = *f.NoProgress
	}
	if f.Cache != nil {
		c.CacheEnabled = *f.Cache
	}
	if f.CacheMaxAge != nil {
		age, err := time.ParseDuration(*f.CacheMaxAge)
		if err != nil {
			return fmt.Errorf("invalid cache_max_age: %w", err)
		}
		c.CacheMaxAge = age
	}
	return nil
}
