package translate

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/doctrans/internal/chunker"
)

// Result is the translation outcome for one chunk.
type Result struct {
	Index      int
	Text       string
	Provider   string
	Translated bool
	Err        error
	At         time.Time
}

// Engine drives an ordered provider chain. Chunks are preferentially served
// by whichever provider last succeeded, but each chunk may fail over
// independently through the rest of the chain.
type Engine struct {
	providers []Provider
	timeout   time.Duration
	workers   int
	log       *slog.Logger

	// Index of the provider that served the last successful call.
	preferred atomic.Int32
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithTimeout sets the per-call provider timeout.
func WithTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithWorkers bounds the number of concurrent translation calls.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func NewEngine(providers []Provider, log *slog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		providers: providers,
		timeout:   30 * time.Second,
		workers:   4,
		log:       log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProviderCount reports how many providers the chain holds.
func (e *Engine) ProviderCount() int {
	return len(e.providers)
}

// Providers returns the configured provider names in fallback order.
func (e *Engine) Providers() []string {
	names := make([]string, len(e.providers))
	for i, p := range e.providers {
		names[i] = p.Name()
	}
	return names
}

// Translate runs one text through the provider chain, starting at the
// preferred provider and retrying once on each following provider before
// surfacing the failure. It returns the translated text and the name of the
// provider that served it.
func (e *Engine) Translate(ctx context.Context, text, source, target string) (string, string, error) {
	if len(e.providers) == 0 {
		return "", "", &ProviderError{Provider: "none", Message: "no providers configured"}
	}
	start := int(e.preferred.Load())
	var lastErr error

	for off := 0; off < len(e.providers); off++ {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		idx := (start + off) % len(e.providers)
		p := e.providers[idx]

		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		out, err := p.Translate(callCtx, text, source, target)
		cancel()

		if err == nil {
			e.preferred.Store(int32(idx))
			return out, p.Name(), nil
		}
		lastErr = err
		e.log.Warn("provider failed, trying next", "provider", p.Name(), "error", err)
	}
	return "", "", lastErr
}

// TranslateChunks translates independent chunks concurrently, bounded by the
// worker pool, and returns results in original chunk order. A chunk whose
// providers all fail keeps its original text with Translated=false. A
// cancelled context aborts the whole batch: partial results are discarded
// and the context error is returned.
func (e *Engine) TranslateChunks(ctx context.Context, chunks []chunker.Chunk, source, target string) ([]Result, error) {
	results := make([]Result, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range chunks {
		c := chunks[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if c.Text == "" {
				// Empty chunks retain vertical spacing; no network call.
				results[c.Index] = Result{Index: c.Index, Translated: true, At: time.Now()}
				return nil
			}
			out, provider, err := e.Translate(gctx, c.Text, source, target)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				// All providers failed for this chunk: substitute the
				// original text and flag it; never fail the batch.
				e.log.Error("chunk untranslated, keeping original", "chunk", c.Index, "error", err)
				results[c.Index] = Result{Index: c.Index, Text: c.Text, Err: err, At: time.Now()}
				return nil
			}
			results[c.Index] = Result{Index: c.Index, Text: out, Provider: provider, Translated: true, At: time.Now()}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
