package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nao1215/urlup/internal/aggregate"
	"github.com/nao1215/urlup/internal/cache"
	"github.com/nao1215/urlup/internal/config"
	"github.com/nao1215/urlup/internal/discovery"
	"github.com/nao1215/urlup/internal/log"
	"github.com/nao1215/urlup/internal/model"
	"github.com/nao1215/urlup/internal/report"
	"github.com/nao1215/urlup/internal/validator"
	"github.com/spf13/cobra"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file|directory]...",
		Short: "Find URLs in files and verify they respond",
		Long: `Check scans the given files for URLs and verifies that each unique
URL responds over HTTP.

Every textual occurrence is recorded with its file and line, duplicate
URLs are checked exactly once, and broken links are reported at the
location where they first appear.

Examples:
  # Check a single file
  urlup check README.md

  # Check all markdown files under docs/
  urlup check --recursive --include md docs/

  # Tolerate flaky hosts: retry twice, accept 403, allow 5% breakage
  urlup check --retry 2 --allow-status 403 --failure-threshold 5 README.md

  # Machine-readable report for tooling
  urlup check --format json README.md

  # Route through a local Tor proxy
  urlup check --proxy socks5://127.0.0.1:9050 README.md

Configuration file (.urlup.yml) example:
  timeout: 10
  retry_attempts: 2
  allowed_status_codes:
    - 403
  exclude_patterns:
    - ^https://internal\.`,
		Args: cobra.ArbitraryArgs,
		RunE: runCheckCmd,
	}

	addCheckFlags(cmd)

	return cmd
}

// addCheckFlags registers the check flags. The root command calls this
// too so that "urlup FILE..." works without naming the subcommand.
func addCheckFlags(cmd *cobra.Command) {
	// File collection flags
	cmd.Flags().BoolP("recursive", "r", false,
		"Recursively scan directory arguments")
	cmd.Flags().StringSlice("include", nil,
		"Only scan files with these extensions (e.g. md,html,txt)")

	// Request flags
	cmd.Flags().IntP("timeout", "t", int(config.DefaultTimeout/time.Second),
		"Timeout in seconds for each request")
	cmd.Flags().Int("concurrency", 0,
		"Number of concurrent requests (default: CPU count)")
	cmd.Flags().Bool("head", false,
		"Issue HEAD requests instead of GET")
	cmd.Flags().String("user-agent", "",
		`User-Agent header sent with every request (default "urlup/<version>")`)
	cmd.Flags().String("proxy", "",
		"Route requests through a proxy URL (http, https, or socks5)")
	cmd.Flags().Bool("insecure", false,
		"Skip TLS certificate verification")

	// Retry and pacing flags
	cmd.Flags().Int("retry", config.DefaultRetryAttempts,
		"Retry attempts for transient failures (timeouts, connection errors, 5xx)")
	cmd.Flags().Int("retry-delay", int(config.DefaultRetryDelay/time.Millisecond),
		"Base delay in milliseconds between retries, doubling on each attempt")
	cmd.Flags().Int("rate-limit", int(config.DefaultRateLimitDelay/time.Millisecond),
		"Minimum delay in milliseconds between any two requests")

	// Outcome interpretation flags
	cmd.Flags().Bool("allow-timeout", false,
		"Treat request timeouts as success")
	cmd.Flags().IntSlice("allow-status", nil,
		"Status codes to accept besides 2xx (e.g. 403,429)")
	cmd.Flags().StringSlice("allowlist", nil,
		"Skip URLs containing any of these substrings")
	cmd.Flags().StringArray("exclude-pattern", nil,
		"Skip URLs matching this regular expression (repeatable)")
	cmd.Flags().Float64("failure-threshold", config.DefaultFailureThreshold,
		"Percentage of broken URLs tolerated before the run fails")

	// Output flags
	cmd.Flags().String("format", config.FormatText,
		"Report format: text, json, minimal, or markdown")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to a file instead of stdout")
	cmd.Flags().BoolP("quiet", "q", false,
		"Only print issues")
	cmd.Flags().Bool("no-progress", false,
		"Disable the progress display")

	// Cache flags
	cmd.Flags().Bool("cache", false,
		"Reuse recent successful results instead of re-checking")
	cmd.Flags().Duration("cache-max-age", config.DefaultCacheMaxAge,
		"How long cached successes stay fresh")
	cmd.Flags().String("cache-dir", "",
		"Directory for the result cache (default: XDG cache directory)")

	// Configuration file flags
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .urlup.yml in current or home directory)")
	cmd.Flags().Bool("no-config", false,
		"Skip configuration file loading")
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	// Build config from the config file and flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential redaction
	logger := log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle interrupt signals. On the first signal the run context is
	// cancelled; validation stops at the next attempt boundary and the
	// partial report is still written.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCheck(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the config file and command flags.
// Precedence is defaults, then config file values, then flags the user
// actually set.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.NoConfig, err = cmd.Flags().GetBool("no-config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load the configuration file unless told not to.
	// If the user explicitly specified a config file path, error if not
	// found. If no path was specified, a missing default file is fine.
	if !cfg.NoConfig {
		explicitConfigPath := cfg.ConfigFilePath != ""
		configPath := config.FindConfigFile(cfg.ConfigFilePath)

		switch {
		case configPath != "":
			file, err := config.LoadConfigFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
			if err := file.Apply(cfg); err != nil {
				return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
			}
		case explicitConfigPath:
			return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent()
	}

	// Positional arguments are the files and directories to scan
	cfg.Files = args

	return cfg, nil
}

// applyFlags copies values from flags the user actually set onto the
// config. Unset flags never clobber config file values.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("recursive") {
		if cfg.Recursive, err = flags.GetBool("recursive"); err != nil {
			return err
		}
	}
	if flags.Changed("include") {
		if cfg.IncludeExtensions, err = flags.GetStringSlice("include"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		seconds, err := flags.GetInt("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = time.Duration(seconds) * time.Second
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return err
		}
	}
	if flags.Changed("head") {
		if cfg.UseHEAD, err = flags.GetBool("head"); err != nil {
			return err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return err
		}
	}
	if flags.Changed("proxy") {
		if cfg.Proxy, err = flags.GetString("proxy"); err != nil {
			return err
		}
	}
	if flags.Changed("insecure") {
		if cfg.Insecure, err = flags.GetBool("insecure"); err != nil {
			return err
		}
	}
	if flags.Changed("retry") {
		if cfg.RetryAttempts, err = flags.GetInt("retry"); err != nil {
			return err
		}
	}
	if flags.Changed("retry-delay") {
		ms, err := flags.GetInt("retry-delay")
		if err != nil {
			return err
		}
		cfg.RetryDelay = time.Duration(ms) * time.Millisecond
	}
	if flags.Changed("rate-limit") {
		ms, err := flags.GetInt("rate-limit")
		if err != nil {
			return err
		}
		cfg.RateLimitDelay = time.Duration(ms) * time.Millisecond
	}
	if flags.Changed("allow-timeout") {
		if cfg.AllowTimeout, err = flags.GetBool("allow-timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("allow-status") {
		if cfg.AllowedStatusCodes, err = flags.GetIntSlice("allow-status"); err != nil {
			return err
		}
	}
	if flags.Changed("allowlist") {
		if cfg.AllowlistSubstrings, err = flags.GetStringSlice("allowlist"); err != nil {
			return err
		}
	}
	if flags.Changed("exclude-pattern") {
		if cfg.ExcludePatterns, err = flags.GetStringArray("exclude-pattern"); err != nil {
			return err
		}
	}
	if flags.Changed("failure-threshold") {
		if cfg.FailureThreshold, err = flags.GetFloat64("failure-threshold"); err != nil {
			return err
		}
	}
	if flags.Changed("format") {
		if cfg.Format, err = flags.GetString("format"); err != nil {
			return err
		}
	}
	if flags.Changed("output") {
		if cfg.Output, err = flags.GetString("output"); err != nil {
			return err
		}
	}
	if flags.Changed("quiet") {
		if cfg.Quiet, err = flags.GetBool("quiet"); err != nil {
			return err
		}
	}
	if flags.Changed("no-progress") {
		if cfg.NoProgress, err = flags.GetBool("no-progress"); err != nil {
			return err
		}
	}
	if flags.Changed("cache") {
		if cfg.CacheEnabled, err = flags.GetBool("cache"); err != nil {
			return err
		}
	}
	if flags.Changed("cache-max-age") {
		if cfg.CacheMaxAge, err = flags.GetDuration("cache-max-age"); err != nil {
			return err
		}
	}
	if flags.Changed("cache-dir") {
		if cfg.CacheDir, err = flags.GetString("cache-dir"); err != nil {
			return err
		}
	}

	return nil
}

// runCheck executes the discovery, validation, and reporting pipeline.
func runCheck(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	start := time.Now()

	files, err := discovery.ExpandPaths(cfg.Files, cfg.Recursive, cfg.IncludeExtensions)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files to scan under %s (check --include and the given paths)",
			strings.Join(cfg.Files, ", "))
	}

	logger.Debug("starting check",
		"files", len(files),
		"concurrency", cfg.Concurrency,
		"format", cfg.Format,
	)

	finder := discovery.NewFinder(discovery.NewExtractor())
	occurrences, fileErrors, scanned := finder.FindFiles(ctx, files)
	distinct := model.Dedup(occurrences)

	logger.Debug("discovery complete",
		"scanned", scanned,
		"occurrences", len(occurrences),
		"unique", len(distinct),
	)

	opts := []validator.Option{validator.WithLogger(logger)}

	if cfg.CacheEnabled {
		store, err := cache.Open(cfg.CacheDir, cache.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer store.Close()

		// Entries outside the freshness window can never be served
		// again, so drop them while the store is open anyway.
		if removed, err := store.Prune(ctx, cfg.CacheMaxAge); err == nil && removed > 0 {
			logger.Debug("cache pruned", "removed", removed, "dir", cfg.CacheDir)
		}

		opts = append(opts, validator.WithCache(cache.NewView(store, cfg.CacheMaxAge, logger)))
	}

	var tracker *validator.Tracker
	var progressDone chan struct{}
	if showProgress(cfg) {
		tracker = validator.NewTracker(0)
		progressDone = make(chan struct{})
		go func() {
			defer close(progressDone)
			renderProgress(os.Stderr, tracker)
		}()
		opts = append(opts, validator.WithProgress(tracker))
	}

	v, err := validator.New(cfg, opts...)
	if err != nil {
		return err
	}

	outcomes, runErr := v.Validate(ctx, distinct)
	if tracker != nil {
		tracker.Close()
		<-progressDone
	}
	// A signal during discovery never reaches Validate as an error;
	// the report must still say the run was cut short.
	if runErr == nil && ctx.Err() != nil {
		runErr = ctx.Err()
	}

	rep := aggregate.BuildReport(aggregate.Run{
		Distinct:     distinct,
		Outcomes:     outcomes,
		FilesScanned: scanned,
		FileErrors:   fileErrors,
		Threshold:    cfg.FailureThreshold,
		Partial:      runErr != nil,
		CheckedAt:    start,
		Duration:     time.Since(start),
	})

	if err := writeReport(cfg, rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if runErr != nil {
		return fmt.Errorf("validation interrupted: %w", runErr)
	}
	if rep.Verdict == model.VerdictFail {
		return errCheckFailed
	}
	return nil
}

// showProgress reports whether the progress line should be rendered.
// Progress goes to stderr only when a human is plausibly watching:
// quiet mode, the explicit flag, and a non-terminal stderr all
// suppress it.
func showProgress(cfg *config.Config) bool {
	if cfg.Quiet || cfg.NoProgress {
		return false
	}
	return isTerminal(os.Stderr)
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// renderProgress drains tracker events onto w, redrawing a single line
// in place. It returns after the tracker is closed, leaving the line
// cleared so whatever prints next starts at column zero.
func renderProgress(w io.Writer, tracker *validator.Tracker) {
	rendered := false
	for ev := range tracker.Events() {
		fmt.Fprintf(w, "\rChecking URLs... %d/%d", ev.Done, ev.Total)
		rendered = true
	}
	if rendered {
		fmt.Fprint(w, "\r\033[K")
	}
}

// writeReport renders the report in the configured format to stdout or
// the configured output file.
func writeReport(cfg *config.Config, rep *model.Report) error {
	// Determine output destination
	var output *os.File
	if cfg.Output != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.Output)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	writer, err := newReportWriter(cfg, output)
	if err != nil {
		return err
	}

	_, err = writer.Write(rep)
	return err
}

// newReportWriter selects the writer for the configured format.
// Config validation already rejected unknown formats; hitting the
// default branch means a missed case after adding a format.
func newReportWriter(cfg *config.Config, output io.Writer) (report.Writer, error) {
	switch cfg.Format {
	case config.FormatText:
		return report.NewTextWriter(output,
			report.WithQuiet(cfg.Quiet),
			report.WithVerbose(cfg.Verbose),
		), nil
	case config.FormatJSON:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint()), nil
	case config.FormatMinimal:
		return report.NewMinimalWriter(output), nil
	case config.FormatMarkdown:
		return report.NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("unknown report format: %q", cfg.Format)
	}
}
