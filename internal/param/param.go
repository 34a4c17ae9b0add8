// Package param implements the Parameter Expander: cartesian-product
// expansion of a parameter declaration list, supporting inline lists, the
// built-in parameterize(csv_path) data source, and user-supplied generator
// functions.
package param

import (
	"strings"

	"github.com/kfusac/httpspec/internal/httperrors"
	"github.com/kfusac/httpspec/internal/subst"
)

// Declaration is a single parameter entry: {"username-password": [...]}
// or {"app_version": "${gen_app_version()}"}. Name may contain "-" to
// declare tuple destructuring.
type Declaration struct {
	Name    string
	Content any
}

// Expand computes the cartesian product of all declarations. Empty input
// yields an empty list; a single declaration yields its own expansion
// unchanged.
func Expand(declarations []Declaration, resolver *subst.Resolver) ([]map[string]any, error) {
	if len(declarations) == 0 {
		return []map[string]any{}, nil
	}

	perParam := make([][]map[string]any, 0, len(declarations))
	for _, decl := range declarations {
		names := strings.Split(decl.Name, "-")

		rows, err := expandOne(decl, names, resolver)
		if err != nil {
			return nil, err
		}
		perParam = append(perParam, rows)
	}

	if len(perParam) == 1 {
		return perParam[0], nil
	}

	return cartesianProduct(perParam), nil
}

func expandOne(decl Declaration, names []string, resolver *subst.Resolver) ([]map[string]any, error) {
	if list, ok := decl.Content.([]any); ok {
		rows := make([]map[string]any, 0, len(list))
		for _, item := range list {
			var parts []any
			if seq, ok := item.([]any); ok {
				parts = seq
			} else {
				parts = []any{item}
			}
			rows = append(rows, zip(names, parts))
		}
		return rows, nil
	}

	resolved, err := resolver.ParseData(decl.Content)
	if err != nil {
		return nil, err
	}

	resolvedList, ok := resolved.([]any)
	if !ok {
		return nil, httperrors.NewParamError("parameter %q did not resolve to a sequence of mappings", decl.Name)
	}

	rows := make([]map[string]any, 0, len(resolvedList))
	for _, item := range resolvedList {
		row, ok := item.(map[string]any)
		if !ok {
			return nil, httperrors.NewParamError("parameter %q: expected mapping elements, got %T", decl.Name, item)
		}
		projected := make(map[string]any, len(names))
		for _, n := range names {
			projected[n] = row[n]
		}
		rows = append(rows, projected)
	}
	return rows, nil
}

func zip(names []string, values []any) map[string]any {
	out := make(map[string]any, len(names))
	for i, n := range names {
		if i < len(values) {
			out[n] = values[i]
		}
	}
	return out
}

// cartesianProduct unions one mapping from each per-parameter list into a
// single mapping per output row. Name collisions resolve last-wins, in the
// order the declarations were given.
func cartesianProduct(lists [][]map[string]any) []map[string]any {
	result := []map[string]any{{}}
	for _, list := range lists {
		var next []map[string]any
		for _, acc := range result {
			for _, item := range list {
				merged := make(map[string]any, len(acc)+len(item))
				for k, v := range acc {
					merged[k] = v
				}
				for k, v := range item {
					merged[k] = v
				}
				next = append(next, merged)
			}
		}
		result = next
	}
	return result
}
