// Package models defines the contracts of external generative and
// embedding models, and the registry binding model names to them.
//
// The engine never dispatches on concrete model types: it looks a name
// up in a Registry populated at startup and gets a capability
// descriptor (modality + invoke function + resource limits).
package models

import (
	"context"
	"sort"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	xe "github.com/ANUcybernetics/trajectory-tracer/pkg/errors"
)

// Generator is one generative model: text-to-image, image-to-text, or
// text-to-text. Generate may be slow and resource-bound; it honours ctx.
//
// The returned Output's modality must equal Modality().
// Determinism for a fixed (input, seed) is assumed, not enforced.
type Generator interface {
	Modality() domain.Modality
	Generate(ctx context.Context, input domain.Output, seed int) (domain.Output, error)
}

// Embedder computes a fixed-length vector over one invocation output.
type Embedder interface {
	Embed(ctx context.Context, content domain.Output) ([]float32, error)
}

// Capacity limits concurrent use of a model.
//
// Each model is a logically singleton, expensive-to-load resource.
// Slots is the number of concurrent invocations allowed (worker slots);
// RatePerSecond, when positive, additionally rate-limits invocations.
type Capacity struct {
	Slots         int
	RatePerSecond float64
}

func (c Capacity) withDefaults() Capacity {
	if c.Slots <= 0 {
		c.Slots = 1
	}
	return c
}

type GeneratorEntry struct {
	Generator Generator
	Capacity  Capacity
}

type EmbedderEntry struct {
	Embedder Embedder
	Capacity Capacity
}

// Registry maps model names to their capabilities.
//
// Populate it at startup; lookups during an experiment are read-only
// and safe for concurrent use.
type Registry struct {
	generators map[string]GeneratorEntry
	embedders  map[string]EmbedderEntry
}

func NewRegistry() *Registry {
	return &Registry{
		generators: map[string]GeneratorEntry{},
		embedders:  map[string]EmbedderEntry{},
	}
}

func (r *Registry) AddGenerator(name string, gen Generator, capacity Capacity) error {
	if _, ok := r.generators[name]; ok {
		return xe.New("generator registered twice: " + name)
	}
	r.generators[name] = GeneratorEntry{Generator: gen, Capacity: capacity.withDefaults()}
	return nil
}

func (r *Registry) AddEmbedder(name string, emb Embedder, capacity Capacity) error {
	if _, ok := r.embedders[name]; ok {
		return xe.New("embedder registered twice: " + name)
	}
	r.embedders[name] = EmbedderEntry{Embedder: emb, Capacity: capacity.withDefaults()}
	return nil
}

func (r *Registry) Generator(name string) (GeneratorEntry, bool) {
	e, ok := r.generators[name]
	return e, ok
}

func (r *Registry) Embedder(name string) (EmbedderEntry, bool) {
	e, ok := r.embedders[name]
	return e, ok
}

// OutputModality is the static lookup for the modality a model emits.
func (r *Registry) OutputModality(name string) (domain.Modality, bool) {
	e, ok := r.generators[name]
	if !ok {
		return "", false
	}
	return e.Generator.Modality(), true
}

func (r *Registry) GeneratorNames() []string {
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) EmbedderNames() []string {
	names := make([]string, 0, len(r.embedders))
	for name := range r.embedders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
