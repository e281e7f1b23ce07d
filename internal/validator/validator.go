package validator

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nao1215/urlup/internal/config"
	"github.com/nao1215/urlup/internal/model"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Batch sizing bounds. Dividing the unique count by the worker count
// lands between these, biasing small runs toward small batches and
// capping per-worker memory on very large runs. Tuning constants, not
// correctness requirements; adjustable via WithBatchBounds.
const (
	defaultMinBatchSize = 2
	defaultMaxBatchSize = 100
)

// maxDrainBytes bounds how much of a response body is read before the
// connection goes back to the pool. Draining a little lets the
// transport reuse the connection; reading everything would download
// each page just to learn its status code.
const maxDrainBytes = 32 * 1024

// Cache serves outcomes recorded by a previous run. Fresh returns a
// stored outcome when one exists and is recent enough; Put records a
// new outcome. Implementations log their own failures; a broken cache
// must never fail a run.
type Cache interface {
	Fresh(ctx context.Context, url string) (model.Outcome, bool)
	Put(ctx context.Context, outcome model.Outcome)
}

// Validator dispatches HTTP checks for distinct URLs under a
// concurrency bound, a shared rate limiter, and a retry policy.
// Construct with New; the zero value is not usable.
type Validator struct {
	client   *http.Client
	limiter  *rate.Limiter
	filter   *Filter
	cache    Cache
	progress Reporter
	logger   *slog.Logger

	concurrency   int
	retryAttempts int
	retryDelay    time.Duration
	allowTimeout  bool
	allowedStatus map[int]struct{}
	useHEAD       bool
	userAgent     string
	minBatchSize  int
	maxBatchSize  int
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithProgress sets a progress reporter. Default is no reporting.
func WithProgress(r Reporter) Option {
	return func(v *Validator) {
		v.progress = r
	}
}

// WithCache sets a result cache. Default is no caching.
func WithCache(c Cache) Option {
	return func(v *Validator) {
		v.cache = c
	}
}

// WithHTTPClient replaces the HTTP client built from the
// configuration. Tests use this to point the engine at a stub
// transport.
func WithHTTPClient(client *http.Client) Option {
	return func(v *Validator) {
		v.client = client
	}
}

// WithBatchBounds overrides the batch sizing bounds.
func WithBatchBounds(minSize, maxSize int) Option {
	return func(v *Validator) {
		v.minBatchSize = minSize
		v.maxBatchSize = maxSize
	}
}

// New creates a Validator from a validated configuration.
//
// Construction fails fast on contract violations from the caller:
// non-positive concurrency, inverted batch bounds, or exclude patterns
// that do not compile. Silently clamping these would hide caller bugs.
func New(cfg *config.Config, opts ...Option) (*Validator, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Concurrency <= 0 {
		return nil, ErrInvalidConcurrency
	}

	excludes, err := cfg.CompileExcludePatterns()
	if err != nil {
		return nil, err
	}

	v := &Validator{
		filter:        NewFilter(excludes, cfg.AllowlistSubstrings),
		limiter:       newLimiter(cfg.RateLimitDelay),
		concurrency:   cfg.Concurrency,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
		allowTimeout:  cfg.AllowTimeout,
		allowedStatus: make(map[int]struct{}, len(cfg.AllowedStatusCodes)),
		useHEAD:       cfg.UseHEAD,
		userAgent:     cfg.UserAgent,
		minBatchSize:  defaultMinBatchSize,
		maxBatchSize:  defaultMaxBatchSize,
	}
	for _, code := range cfg.AllowedStatusCodes {
		v.allowedStatus[code] = struct{}{}
	}

	for _, opt := range opts {
		opt(v)
	}

	if v.minBatchSize <= 0 || v.maxBatchSize < v.minBatchSize {
		return nil, ErrInvalidBatchBounds
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	if v.client == nil {
		client, err := NewHTTPClient(cfg)
		if err != nil {
			return nil, err
		}
		v.client = client
	}

	return v, nil
}

// Validate produces exactly one terminal Outcome per distinct URL.
// Outcomes are returned in input order. Excluded and allowlisted URLs
// are settled without network traffic and without consuming
// rate-limiter tokens.
//
// On cancellation the returned error is the context error and the
// outcomes cover completed URLs only, so the caller can still build a
// partial report.
func (v *Validator) Validate(ctx context.Context, urls []model.DistinctURL) ([]model.Outcome, error) {
	results := make([]*model.Outcome, len(urls))

	// Settle exclusions and allowlist hits before any dispatch.
	pending := make([]int, 0, len(urls))
	for i, u := range urls {
		if outcome, ok := v.filter.Classify(u.URL); ok {
			results[i] = &outcome
			continue
		}
		pending = append(pending, i)
	}

	total := len(pending)
	batch := v.batchSize(total)
	v.logger.Debug("starting validation",
		"unique", len(urls),
		"dispatched", total,
		"concurrency", v.concurrency,
		"batch_size", batch,
	)
	if v.progress != nil {
		v.progress.Start(total)
	}

	var (
		mu   sync.Mutex
		done atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)

	for start := 0; start < len(pending); start += batch {
		chunk := pending[start:min(start+batch, len(pending))]
		g.Go(func() error {
			for _, i := range chunk {
				// Check for cancellation before starting
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				outcome, err := v.checkOne(gctx, urls[i])
				if err != nil {
					// Only cancellation reaches here; per-URL failures
					// are outcomes, not errors.
					return err
				}

				mu.Lock()
				results[i] = &outcome
				mu.Unlock()

				if v.progress != nil {
					v.progress.Update(int(done.Add(1)), total)
				}
			}
			return nil
		})
	}

	err := g.Wait()

	outcomes := make([]model.Outcome, 0, len(urls))
	for _, r := range results {
		if r != nil {
			outcomes = append(outcomes, *r)
		}
	}

	if v.progress != nil {
		v.progress.Finish(int(done.Load()), total)
	}

	if err != nil {
		v.logger.Warn("validation interrupted",
			"completed", len(outcomes),
			"unique", len(urls),
		)
		return outcomes, err
	}

	v.logger.Debug("validation complete",
		"unique", len(urls),
		"checked", total,
	)
	return outcomes, nil
}

// checkOne produces the terminal outcome for a single URL: cache
// lookup, then up to 1+retryAttempts requests with backoff between
// them. A non-nil error means the run was cancelled and no outcome
// exists for this URL.
func (v *Validator) checkOne(ctx context.Context, u model.DistinctURL) (model.Outcome, error) {
	if v.cache != nil {
		if cached, ok := v.cache.Fresh(ctx, u.URL); ok {
			cached.Cached = true
			return cached, nil
		}
	}

	method := http.MethodGet
	if v.useHEAD {
		method = http.MethodHead
	}

	req, err := http.NewRequestWithContext(ctx, method, u.URL, nil)
	if err != nil {
		// The HTTP layer rejects the URL string itself. No request can
		// ever be issued, so this is permanent and consumes no tokens.
		return model.Outcome{
			URL:    u.URL,
			Class:  model.ClassConnectionError,
			Detail: errDetail(err),
		}, nil
	}
	if v.userAgent != "" {
		req.Header.Set("User-Agent", v.userAgent)
	}

	var outcome model.Outcome
	start := time.Now()

	for attempt := 0; ; attempt++ {
		// Each attempt consumes a fresh rate-limiter token.
		if err := v.limiter.Wait(ctx); err != nil {
			return model.Outcome{}, err
		}

		current, err := v.attempt(ctx, u.URL, req)
		if err != nil {
			return model.Outcome{}, err
		}
		current.Attempts = attempt + 1
		outcome = current

		if !transient(outcome) || attempt >= v.retryAttempts {
			break
		}
		if err := sleep(ctx, backoffDelay(v.retryDelay, attempt)); err != nil {
			return model.Outcome{}, err
		}
	}
	outcome.Duration = time.Since(start)

	if v.cache != nil && outcome.Class == model.ClassSuccess && !outcome.TimedOut {
		v.cache.Put(ctx, outcome)
	}
	return outcome, nil
}

// attempt issues one request and classifies the result. The rawURL is
// recorded verbatim in the outcome; req.URL may differ from it after
// parsing. A non-nil error means the run was cancelled mid-request.
func (v *Validator) attempt(ctx context.Context, rawURL string, req *http.Request) (model.Outcome, error) {
	resp, err := v.client.Do(req.Clone(ctx))
	if err != nil {
		if ctx.Err() != nil {
			return model.Outcome{}, ctx.Err()
		}

		if isTimeout(err) {
			class := model.ClassTimeout
			if v.allowTimeout {
				class = model.ClassSuccess
			}
			return model.Outcome{
				URL:      rawURL,
				Class:    class,
				Detail:   errDetail(err),
				TimedOut: true,
			}, nil
		}

		return model.Outcome{
			URL:    rawURL,
			Class:  model.ClassConnectionError,
			Detail: errDetail(err),
		}, nil
	}
	defer resp.Body.Close() //nolint:errcheck // Best-effort close after drain

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes)) //nolint:errcheck // Drain is best-effort

	if _, ok := v.allowedStatus[resp.StatusCode]; ok {
		return model.Outcome{
			URL:        rawURL,
			Class:      model.ClassSuccess,
			StatusCode: resp.StatusCode,
		}, nil
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return model.Outcome{
			URL:        rawURL,
			Class:      model.ClassSuccess,
			StatusCode: resp.StatusCode,
		}, nil
	}

	return model.Outcome{
		URL:        rawURL,
		Class:      model.ClassHTTPError,
		StatusCode: resp.StatusCode,
	}, nil
}

// batchSize derives the per-worker batch from the number of URLs to
// dispatch, clamped to the configured bounds.
func (v *Validator) batchSize(unique int) int {
	size := unique / v.concurrency
	if size < v.minBatchSize {
		return v.minBatchSize
	}
	if size > v.maxBatchSize {
		return v.maxBatchSize
	}
	return size
}
