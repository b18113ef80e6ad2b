// Package translate holds the pluggable machine-translation providers and
// the engine that drives them with ordered fallback and a bounded worker
// pool. One network call per chunk; nothing is cached across runs.
package translate

import (
	"context"
	"fmt"
)

// Provider is a single machine-translation backend.
// source is a language code or "auto"; target is always a concrete code.
type Provider interface {
	Name() string
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// ProviderError is a network, quota or parse failure from one provider.
// Any ProviderError hands the chunk to the next provider in the chain; the
// status code is kept for the report.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }
