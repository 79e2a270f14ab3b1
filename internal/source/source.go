// Package source contains the lead discovery adapters. Each adapter knows one
// public source's access pattern and result shape and emits normalized
// candidates; everything downstream of Discover is source-agnostic.
package source

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/queencity-ops/leadgen-cli/internal/model"
)

// Configuration-class failures. Adapters that hit one return zero candidates
// and log why; the pipeline treats them as an empty source, not a failure.
var (
	// ErrNoCredentials means the adapter needs a credential pair it wasn't given.
	ErrNoCredentials = eris.New("source: credentials required")

	// ErrNoTargets means the adapter has an empty target list configured.
	ErrNoTargets = eris.New("source: no targets configured")

	// ErrAuthChallenge means a login hit a verification challenge that wasn't
	// resolved within the manual-intervention window.
	ErrAuthChallenge = eris.New("source: login verification challenge not cleared")
)

// Source discovers candidate leads from one upstream. Implementations process
// their targets in configured order, serialize requests against their host,
// and swallow per-target failures: Discover only errors when the whole source
// is unusable for the run.
type Source interface {
	// Name returns the unique adapter identifier (e.g. "reddit", "facebook").
	Name() string

	// Discover fetches the source's configured targets and returns matching
	// candidates.
	Discover(ctx context.Context) ([]model.Candidate, error)
}

// Registry maps adapter names to implementations, preserving registration
// order for deterministic iteration.
type Registry struct {
	sources map[string]Source
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds a source to the registry.
func (r *Registry) Register(s Source) {
	name := s.Name()
	r.sources[name] = s
	r.order = append(r.order, name)
}

// Get returns a source by name.
func (r *Registry) Get(name string) (Source, error) {
	s, ok := r.sources[name]
	if !ok {
		return nil, eris.Errorf("source: unknown adapter %q", name)
	}
	return s, nil
}

// Select returns the named sources, or all of them when names is empty.
func (r *Registry) Select(names []string) ([]Source, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	result := make([]Source, 0, len(names))
	for _, name := range names {
		s, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, nil
}

// All returns all sources in registration order.
func (r *Registry) All() []Source {
	result := make([]Source, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.sources[name])
	}
	return result
}

// AllNames returns registered adapter names in registration order.
func (r *Registry) AllNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
