// Package registry maps component identifiers to factories.
//
// A Registry is an explicit object passed by reference into the pipeline
// assembler; there is no hidden process-global table. Each component declares
// its parameter schema at registration time, so configurations can be checked
// against the accepted parameter set before anything is instantiated.
//
// Registration is expected at startup, before pipelines are assembled.
// Registering afterwards is safe but has no effect on pipelines that were
// already assembled.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kgelab/embark/dataset"
	"github.com/kgelab/embark/model"
)

// Category groups components by their role in a pipeline.
type Category string

const (
	CategoryDataset         Category = "dataset"
	CategoryModel           Category = "model"
	CategoryOptimizer       Category = "optimizer"
	CategoryLoss            Category = "loss"
	CategoryNegativeSampler Category = "negative_sampler"
	CategoryRegularizer     Category = "regularizer"
	CategoryEvaluator       Category = "evaluator"
	CategoryTrainingLoop    Category = "training_loop"
	CategoryStopper         Category = "stopper"
)

// UnknownComponentError indicates a lookup of an unregistered component.
type UnknownComponentError struct {
	Category Category
	Name     string
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("unknown %s component %q", e.Category, e.Name)
}

// BuildContext carries the already-assembled collaborators a factory may
// depend on. Which fields are populated depends on the category: model
// factories see Dataset, optimizer factories additionally see Model.
type BuildContext struct {
	Dataset dataset.Dataset
	Model   model.Model

	// Seed is the run-level random seed; factories derive their own stream
	// from it unless a kwarg overrides it.
	Seed int64
}

// Factory instantiates a component from validated parameters. The returned
// value's concrete type depends on the category; the assembler type-asserts
// it into the category's interface.
type Factory func(bc BuildContext, p Params) (any, error)

// Entry couples a component's parameter schema with its factory.
type Entry struct {
	Schema Schema
	New    Factory
}

// Registry is a read-mostly (category, name) → Entry table.
// Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[Category]map[string]Entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[Category]map[string]Entry)}
}

// Register adds a component. Identifiers are case-sensitive; registering a
// duplicate (category, name) is an error.
func (r *Registry) Register(cat Category, name string, e Entry) error {
	if e.New == nil {
		return fmt.Errorf("component %s/%s has no factory", cat, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	byName, ok := r.entries[cat]
	if !ok {
		byName = make(map[string]Entry)
		r.entries[cat] = byName
	}
	if _, dup := byName[name]; dup {
		return fmt.Errorf("component %s/%s already registered", cat, name)
	}
	byName[name] = e
	return nil
}

// MustRegister is Register that panics on error, for startup wiring.
func (r *Registry) MustRegister(cat Category, name string, e Entry) {
	if err := r.Register(cat, name, e); err != nil {
		panic(err)
	}
}

// Lookup returns the entry for (category, name), or an
// *UnknownComponentError when absent.
func (r *Registry) Lookup(cat Category, name string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[cat][name]
	if !ok {
		return Entry{}, &UnknownComponentError{Category: cat, Name: name}
	}
	return e, nil
}

// Names lists the registered identifiers of a category, sorted.
func (r *Registry) Names(cat Category) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.entries[cat]))
	for name := range r.entries[cat] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
