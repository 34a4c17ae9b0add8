// Package subst implements the Data Substituter: a recursive walk over
// arbitrary decoded data (scalars, sequences, mappings) that resolves the
// expr mini-language against a variable mapping and a function registry.
package subst

import (
	"fmt"
	"strings"

	"github.com/kfusac/httpspec/internal/expr"
	"github.com/kfusac/httpspec/internal/httperrors"
	"github.com/kfusac/httpspec/internal/ordered"
)

// CSVLoader loads a CSV file into a list of header-keyed rows. It backs the
// parameterize/P built-in, which bypasses the function registry.
type CSVLoader func(path string, extraArgs []any, extraKwargs map[string]any) (any, error)

// Funcs is the function mapping: name -> callable. Callables receive
// positional args and keyword args already resolved against vars/funcs.
type Funcs map[string]func(args []any, kwargs map[string]any) (any, error)

// Resolver carries the two mappings content is resolved against, plus the
// parameterize hook.
type Resolver struct {
	Vars    *ordered.Map
	Funcs   Funcs
	LoadCSV CSVLoader
}

// New builds a Resolver. loadCSV may be nil if parameterize() is never used
// by the caller's documents.
func New(vars *ordered.Map, funcs Funcs, loadCSV CSVLoader) *Resolver {
	return &Resolver{Vars: vars, Funcs: funcs, LoadCSV: loadCSV}
}

// ParseData recursively substitutes content against the resolver's mappings.
// nil, numbers, and booleans pass through unchanged; sequences are mapped
// element-wise; mappings are rebuilt substituting both keys and values;
// strings go through function substitution then variable substitution.
func (r *Resolver) ParseData(content any) (any, error) {
	switch v := content.(type) {
	case nil, bool, int, int64, float64:
		return v, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			parsed, err := r.ParseData(item)
			if err != nil {
				return nil, err
			}
			out[i] = parsed
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			pk, err := r.ParseData(k)
			if err != nil {
				return nil, err
			}
			pv, err := r.ParseData(val)
			if err != nil {
				return nil, err
			}
			keyStr, ok := pk.(string)
			if !ok {
				keyStr = fmt.Sprintf("%v", pk)
			}
			out[keyStr] = pv
		}
		return out, nil
	case string:
		trimmed := strings.TrimSpace(v)
		afterFuncs, err := r.parseStringFunctions(trimmed)
		if err != nil {
			return nil, err
		}
		if s, ok := afterFuncs.(string); ok {
			return r.parseStringVariables(s)
		}
		return afterFuncs, nil
	default:
		return v, nil
	}
}

// parseStringFunctions resolves every ${name(args)} literal left to right.
// If the whole string equals a single call literal, the raw return value
// (preserving type) is returned. Otherwise each call's string form replaces
// only the first remaining occurrence of that literal.
func (r *Resolver) parseStringFunctions(content string) (any, error) {
	calls := expr.ExtractFunctions(content)

	var result any = content
	for _, callLiteral := range calls {
		meta, err := expr.ParseFunction(callLiteral)
		if err != nil {
			return nil, err
		}

		resolvedArgs := make([]any, len(meta.Args))
		for i, a := range meta.Args {
			pa, err := r.ParseData(a)
			if err != nil {
				return nil, err
			}
			resolvedArgs[i] = pa
		}

		resolvedKwargs := make(map[string]any, len(meta.Kwargs))
		for k, a := range meta.Kwargs {
			pa, err := r.ParseData(a)
			if err != nil {
				return nil, err
			}
			resolvedKwargs[k] = pa
		}

		var evalValue any
		if meta.FuncName == "parameterize" || meta.FuncName == "P" {
			if r.LoadCSV == nil {
				return nil, httperrors.NewFunctionNotFound("parameterize: no CSV loader configured")
			}
			evalValue, err = r.LoadCSV(firstStringArg(resolvedArgs), resolvedArgs, resolvedKwargs)
			if err != nil {
				return nil, err
			}
		} else {
			fn, ok := r.Funcs[meta.FuncName]
			if !ok {
				return nil, httperrors.NewFunctionNotFound("%s is not found.", meta.FuncName)
			}
			evalValue, err = fn(resolvedArgs, resolvedKwargs)
			if err != nil {
				return nil, err
			}
		}

		funcContent := "${" + callLiteral + "}"
		currentStr, stillString := result.(string)
		if !stillString {
			// A previous call already widened the type; subsequent literals
			// in the same original string cannot be spliced positionally.
			continue
		}
		if funcContent == currentStr {
			result = evalValue
		} else {
			result = strings.Replace(currentStr, funcContent, stringify(evalValue), 1)
		}
	}

	return result, nil
}

// parseStringVariables resolves every $name reference left to right,
// replacing only the first remaining occurrence of each per iteration.
func (r *Resolver) parseStringVariables(content string) (any, error) {
	names := expr.ExtractVariables(content)

	var result any = content
	for _, name := range names {
		value, ok := r.Vars.Get(name)
		if !ok {
			return nil, httperrors.NewVariableNotFound("%s is not found.", name)
		}

		currentStr, stillString := result.(string)
		if !stillString {
			continue
		}

		ref := "$" + name
		if ref == currentStr {
			result = value
		} else {
			result = strings.Replace(currentStr, ref, stringify(value), 1)
		}
	}

	return result, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

func firstStringArg(args []any) string {
	if len(args) == 0 {
		return ""
	}
	if s, ok := args[0].(string); ok {
		return s
	}
	return fmt.Sprintf("%v", args[0])
}
