// Package registry holds the Helper Registry: the pair of (variables,
// functions) mappings seeded with a fixed library of built-in comparators,
// hook functions, and generators, then augmented with user-supplied
// entries. Built-ins are registered first; user entries may override them.
package registry

import (
	"log/slog"

	"github.com/kfusac/httpspec/internal/httperrors"
)

// Registry is immutable once built: load-time construction followed by
// read-only use during execution.
type Registry struct {
	Vars        map[string]any
	Funcs       map[string]Func
	comparators map[string]ComparatorFunc
}

// New builds a Registry from the fixed built-in library. Call Extend to
// layer in user-supplied variables/functions discovered by the host
// (confcustom-equivalent explicit registration, per the core's design: the
// core only depends on the resulting mappings, not on how they were
// discovered).
func New() *Registry {
	return &Registry{
		Vars:        map[string]any{},
		Funcs:       builtinFuncs(),
		comparators: builtinComparators(),
	}
}

// Extend layers user-supplied variables and functions over the current
// registry. User entries win on name collision, logged at warn level to
// flag unintentional shadowing of a built-in.
func (r *Registry) Extend(vars map[string]any, funcs map[string]Func) {
	for name, value := range vars {
		if _, exists := r.Vars[name]; exists {
			slog.Warn("helper variable overrides built-in", "name", name)
		}
		r.Vars[name] = value
	}
	for name, fn := range funcs {
		if _, exists := r.Funcs[name]; exists {
			slog.Warn("helper function overrides built-in", "name", name)
		}
		r.Funcs[name] = fn
	}
}

// RegisterComparator adds or overrides a comparator under its uniform name.
// User registries may supply custom comparators beyond the built-in table.
func (r *Registry) RegisterComparator(uniformName string, fn ComparatorFunc) {
	r.comparators[uniformName] = fn
}

// Comparator looks up a comparator by its uniform name (already resolved
// through UniformComparator by the caller).
func (r *Registry) Comparator(uniformName string) (ComparatorFunc, error) {
	fn, ok := r.comparators[uniformName]
	if !ok {
		return nil, httperrors.NewFunctionNotFound("comparator not found: %s", uniformName)
	}
	return fn, nil
}
