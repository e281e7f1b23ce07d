package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/urlup/internal/model"
)

// View adapts a Store to the lookup contract the validation engine
// expects: a fixed freshness window, and failures that log and miss
// instead of propagating. A broken cache must never fail a run.
type View struct {
	store  *Store
	maxAge time.Duration
	logger *slog.Logger
}

// NewView creates a View over the store with the given freshness
// window. A nil logger falls back to slog.Default().
func NewView(store *Store, maxAge time.Duration, logger *slog.Logger) *View {
	if logger == nil {
		logger = slog.Default()
	}
	return &View{
		store:  store,
		maxAge: maxAge,
		logger: logger,
	}
}

// Fresh returns the cached outcome for a URL when one exists within
// the freshness window. Lookup errors are logged and reported as a
// miss.
func (v *View) Fresh(ctx context.Context, url string) (model.Outcome, bool) {
	outcome, ok, err := v.store.Get(ctx, url, v.maxAge)
	if err != nil {
		v.logger.Warn("cache lookup failed",
			slog.String("url", url),
			slog.String("error", err.Error()))
		return model.Outcome{}, false
	}
	return outcome, ok
}

// Put records an outcome. Store errors are logged and dropped.
func (v *View) Put(ctx context.Context, outcome model.Outcome) {
	if err := v.store.Put(ctx, outcome); err != nil {
		v.logger.Warn("cache store failed",
			slog.String("url", outcome.URL),
			slog.String("error", err.Error()))
	}
}
