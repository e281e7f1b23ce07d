package config

import (
	"errors"
	"runtime"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// This test ensures that defaults are documented through tests and that changes
// to defaults are intentional (tests will fail if defaults change unexpectedly).
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	// Verify each default value explicitly
	// This serves as living documentation of the defaults
	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("default Concurrency is NumCPU", func(t *testing.T) {
		t.Parallel()
		if cfg.Concurrency != runtime.NumCPU() {
			t.Errorf("expected Concurrency to be %d, got %d", runtime.NumCPU(), cfg.Concurrency)
		}
	})

	t.Run("default RetryAttempts is 0", func(t *testing.T) {
		t.Parallel()
		if cfg.RetryAttempts != 0 {
			t.Errorf("expected RetryAttempts to be 0, got %d", cfg.RetryAttempts)
		}
	})

	t.Run("default RetryDelay is 1 second", func(t *testing.T) {
		t.Parallel()
		if cfg.RetryDelay != time.Second {
			t.Errorf("expected RetryDelay to be 1s, got %v", cfg.RetryDelay)
		}
	})

	t.Run("default RateLimitDelay is 0", func(t *testing.T) {
		t.Parallel()
		if cfg.RateLimitDelay != 0 {
			t.Errorf("expected RateLimitDelay to be 0, got %v", cfg.RateLimitDelay)
		}
	})

	t.Run("default FailureThreshold is 0", func(t *testing.T) {
		t.Parallel()
		if cfg.FailureThreshold != 0 {
			t.Errorf("expected FailureThreshold to be 0, got %v", cfg.FailureThreshold)
		}
	})

	t.Run("default Format is text", func(t *testing.T) {
		t.Parallel()
		if cfg.Format != FormatText {
			t.Errorf("expected Format to be %q, got %q", FormatText, cfg.Format)
		}
	})

	t.Run("default UseHEAD is false", func(t *testing.T) {
		t.Parallel()
		if cfg.UseHEAD {
			t.Error("expected UseHEAD to be false")
		}
	})

	t.Run("default CacheEnabled is false", func(t *testing.T) {
		t.Parallel()
		if cfg.CacheEnabled {
			t.Error("expected CacheEnabled to be false")
		}
	})

	t.Run("default CacheMaxAge is 24 hours", func(t *testing.T) {
		t.Parallel()
		if cfg.CacheMaxAge != 24*time.Hour {
			t.Errorf("expected CacheMaxAge to be 24h, got %v", cfg.CacheMaxAge)
		}
	})

	t.Run("default CacheDir is non-empty", func(t *testing.T) {
		t.Parallel()
		if cfg.CacheDir == "" {
			t.Error("expected CacheDir to be set")
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	// validConfig returns a minimal valid configuration.
	// Tests can modify specific fields to test validation rules.
	validConfig := func() *Config {
		return &Config{
			Files:       []string{"README.md"},
			Timeout:     30 * time.Second,
			Concurrency: 4,
			Format:      FormatText,
		}
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("empty files returns ErrNoFiles", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Files = nil

		err := cfg.Validate()
		if !errors.Is(err, ErrNoFiles) {
			t.Errorf("expected ErrNoFiles, got %v", err)
		}
	})

	t.Run("zero timeout returns ErrInvalidTimeout", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Timeout = 0

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("timeout above 24 hours returns ErrInvalidTimeout", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Timeout = 25 * time.Hour

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("timeout of exactly 24 hours is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Timeout = MaxTimeout

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("zero concurrency returns ErrInvalidConcurrency", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Concurrency = 0

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidConcurrency) {
			t.Errorf("expected ErrInvalidConcurrency, got %v", err)
		}
	})

	t.Run("concurrency above 1000 returns ErrInvalidConcurrency", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Concurrency = 1001

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidConcurrency) {
			t.Errorf("expected ErrInvalidConcurrency, got %v", err)
		}
	})

	t.Run("concurrency of exactly 1000 is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Concurrency = MaxConcurrency

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("negative retry attempts returns ErrInvalidRetryAttempts", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.RetryAttempts = -1

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidRetryAttempts) {
			t.Errorf("expected ErrInvalidRetryAttempts, got %v", err)
		}
	})

	t.Run("retry attempts above 20 returns ErrInvalidRetryAttempts", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.RetryAttempts = 21

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidRetryAttempts) {
			t.Errorf("expected ErrInvalidRetryAttempts, got %v", err)
		}
	})

	t.Run("negative retry delay returns ErrInvalidRetryDelay", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.RetryDelay = -1 * time.Second

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidRetryDelay) {
			t.Errorf("expected ErrInvalidRetryDelay, got %v", err)
		}
	})

	t.Run("negative rate limit returns ErrInvalidRateLimit", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.RateLimitDelay = -1 * time.Millisecond

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidRateLimit) {
			t.Errorf("expected ErrInvalidRateLimit, got %v", err)
		}
	})

	t.Run("status code below 100 returns ErrInvalidStatusCode", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.AllowedStatusCodes = []int{200, 99}

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidStatusCode) {
			t.Errorf("expected ErrInvalidStatusCode, got %v", err)
		}
	})

	t.Run("status code above 599 returns ErrInvalidStatusCode", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.AllowedStatusCodes = []int{600}

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidStatusCode) {
			t.Errorf("expected ErrInvalidStatusCode, got %v", err)
		}
	})

	t.Run("status codes 100 and 599 are valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.AllowedStatusCodes = []int{100, 599}

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("negative threshold returns ErrInvalidThreshold", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.FailureThreshold = -0.1

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidThreshold) {
			t.Errorf("expected ErrInvalidThreshold, got %v", err)
		}
	})

	t.Run("threshold above 100 returns ErrInvalidThreshold", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.FailureThreshold = 100.5

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidThreshold) {
			t.Errorf("expected ErrInvalidThreshold, got %v", err)
		}
	})

	t.Run("threshold of exactly 100 is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.FailureThreshold = 100

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("unknown format returns ErrInvalidFormat", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Format = "xml"

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("expected ErrInvalidFormat, got %v", err)
		}
	})

	t.Run("all known formats are valid", func(t *testing.T) {
		t.Parallel()
		for _, format := range Formats {
			cfg := validConfig()
			cfg.Format = format

			if err := cfg.Validate(); err != nil {
				t.Errorf("expected format %q to be valid, got %v", format, err)
			}
		}
	})

	t.Run("http proxy is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Proxy = "http://proxy.example.com:8080"

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("socks5 proxy is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Proxy = "socks5://127.0.0.1:9050"

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("proxy with unsupported scheme returns ErrInvalidProxy", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Proxy = "ftp://proxy.example.com:21"

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidProxy) {
			t.Errorf("expected ErrInvalidProxy, got %v", err)
		}
	})

	t.Run("proxy without host returns ErrInvalidProxy", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Proxy = "http://"

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidProxy) {
			t.Errorf("expected ErrInvalidProxy, got %v", err)
		}
	})

	t.Run("cache enabled with zero max age returns ErrInvalidCacheAge", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.CacheEnabled = true
		cfg.CacheMaxAge = 0

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidCacheAge) {
			t.Errorf("expected ErrInvalidCacheAge, got %v", err)
		}
	})

	t.Run("cache disabled ignores max age", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.CacheEnabled = false
		cfg.CacheMaxAge = 0

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("invalid exclude pattern returns error", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.ExcludePatterns = []string{"[unclosed"}

		if err := cfg.Validate(); err == nil {
			t.Error("expected error for invalid exclude pattern")
		}
	})

	t.Run("valid exclude patterns return nil", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.ExcludePatterns = []string{`^https?://localhost`, `\.internal\.`}

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestCompileExcludePatterns tests exclude pattern compilation.
func TestCompileExcludePatterns(t *testing.T) {
	t.Parallel()

	t.Run("no patterns returns nil slice", func(t *testing.T) {
		t.Parallel()

		cfg := &Config{}
		compiled, err := cfg.CompileExcludePatterns()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if compiled != nil {
			t.Errorf("expected nil, got %v", compiled)
		}
	})

	t.Run("compiles all patterns in order", func(t *testing.T) {
		t.Parallel()

		cfg := &Config{
			ExcludePatterns: []string{`^https?://localhost`, `example\.com`},
		}
		compiled, err := cfg.CompileExcludePatterns()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(compiled) != 2 {
			t.Fatalf("expected 2 compiled patterns, got %d", len(compiled))
		}
		if !compiled[0].MatchString("http://localhost:8080/health") {
			t.Error("expected first pattern to match localhost URL")
		}
		if !compiled[1].MatchString("https://example.com/page") {
			t.Error("expected second pattern to match example.com URL")
		}
	})

	t.Run("invalid pattern reports which pattern failed", func(t *testing.T) {
		t.Parallel()

		cfg := &Config{
			ExcludePatterns: []string{`valid`, `[unclosed`},
		}
		_, err := cfg.CompileExcludePatterns()
		if err == nil {
			t.Fatal("expected error for invalid pattern")
		}
	})
}

// TestXDGCacheDir tests the XDG cache directory function.
func TestXDGCacheDir(t *testing.T) {
	t.Parallel()

	t.Run("returns non-empty path ending in urlup", func(t *testing.T) {
		t.Parallel()

		dir := XDGCacheDir()
		if dir == "" {
			t.Error("expected non-empty XDG cache dir")
		}
	})
}
