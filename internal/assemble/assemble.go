// Package assemble implements the Test File Assembler: it turns a decoded
// test/suite document (a list of single-key "config"/"test" blocks) into a
// flat Document of {Config, Teststeps}, resolving "api:"/"suite:"
// references against the Definition Store and merging validators/extractors
// per the def-then-ref precedence rule.
package assemble

import (
	"fmt"
	"log/slog"

	"github.com/kfusac/httpspec/internal/expr"
	"github.com/kfusac/httpspec/internal/httperrors"
	"github.com/kfusac/httpspec/internal/store"
	"github.com/kfusac/httpspec/internal/validate"
)

// maxSuiteDepth bounds nested "suite:" recursion so a reference cycle fails
// fast with a ParamError instead of recursing forever.
const maxSuiteDepth = 64

// Document is the assembled, reference-free shape of a test/suite file.
type Document struct {
	Config    map[string]any
	Teststeps []map[string]any
}

// AssembleTestFile walks the decoded block list, merging "config" blocks
// and resolving each "test" block's "api"/"suite" reference (if any)
// against st.
func AssembleTestFile(items []map[string]any, st *store.Store) (*Document, error) {
	doc := &Document{Config: map[string]any{}, Teststeps: []map[string]any{}}

	for _, item := range items {
		if len(item) != 1 {
			return nil, httperrors.NewFileFormatError("testcase block must have exactly one key, got %d", len(item))
		}

		var key string
		var block map[string]any
		for k, v := range item {
			key = k
			asMap, ok := v.(map[string]any)
			if !ok {
				return nil, httperrors.NewFileFormatError("testcase block %q must be a mapping", k)
			}
			block = asMap
		}

		switch key {
		case "config":
			for k, v := range block {
				doc.Config[k] = v
			}
		case "test":
			steps, err := resolveTestBlock(block, st, 0)
			if err != nil {
				return nil, err
			}
			doc.Teststeps = append(doc.Teststeps, steps...)
		default:
			slog.Warn("unexpected block key, expected config or test", "key", key)
		}
	}

	return doc, nil
}

// resolveTestBlock expands a single "test" entry into zero or more
// teststeps: an "api" reference extends one definition into one step; a
// "suite" reference recursively expands another assembled document's
// teststeps (each itself possibly carrying its own "api" reference); a
// plain block with neither passes through unchanged.
func resolveTestBlock(block map[string]any, st *store.Store, depth int) ([]map[string]any, error) {
	if depth > maxSuiteDepth {
		return nil, httperrors.NewParamError("suite reference recursion exceeded max depth (%d); likely a reference cycle", maxSuiteDepth)
	}

	if refCall, ok := stringField(block, "api"); ok {
		extended, err := extendAPIDefinition(block, refCall, st)
		if err != nil {
			return nil, err
		}
		return []map[string]any{extended}, nil
	}

	if refCall, ok := stringField(block, "suite"); ok {
		return expandSuiteReference(refCall, st, depth)
	}

	return []map[string]any{normalizeStep(block)}, nil
}

// normalizeStep brings a plain (neither "api" nor "suite") step's
// validate/extract lists into the same []map[string]any shape extendBlock
// produces for api-extended steps, so every teststep the runner sees has a
// uniform shape regardless of whether it decoded straight off disk (where
// YAML/JSON decoding yields []any) or was rebuilt by extendBlock.
func normalizeStep(block map[string]any) map[string]any {
	out := make(map[string]any, len(block))
	for k, v := range block {
		out[k] = v
	}

	out["validate"] = blockList(out, "validate", "validators")
	delete(out, "validators")

	out["extract"] = blockList(out, "extract", "extractors", "extract_binds")
	delete(out, "extractors")
	delete(out, "extract_binds")

	return out
}

func stringField(block map[string]any, key string) (string, bool) {
	v, ok := block[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// extendAPIDefinition resolves an "api:" call, renames the definition's
// placeholder variables ($username, ...) to the caller's supplied
// arguments, then extends the caller's block with the renamed definition
// per _extend_block semantics (the definition's fields win on key
// collision; validate/extract merge rather than overwrite). The resolved
// step no longer carries the "api" key.
func extendAPIDefinition(block map[string]any, refCall string, st *store.Store) (map[string]any, error) {
	def, err := st.GetAPI(mustFuncName(refCall))
	if err != nil {
		return nil, err
	}

	renamed, err := renameByCallArgs(refCall, def.FuncName, def.Args, def.Raw)
	if err != nil {
		return nil, err
	}

	extended, err := extendBlock(block, renamed)
	if err != nil {
		return nil, err
	}
	delete(extended, "api")
	return extended, nil
}

// expandSuiteReference resolves a "suite:" call, renames its definition's
// placeholders the same way extendAPIDefinition does, then recursively
// resolves every resulting teststep (each may itself carry an "api" or
// nested "suite" reference).
func expandSuiteReference(refCall string, st *store.Store, depth int) ([]map[string]any, error) {
	def, err := st.GetTestcase(mustFuncName(refCall))
	if err != nil {
		return nil, err
	}

	renamed, err := renameByCallArgs(refCall, def.FuncName, def.Args, map[string]any{
		"teststeps": copyStepList(def.Teststeps),
	})
	if err != nil {
		return nil, err
	}

	rawSteps, _ := renamed["teststeps"].([]any)
	var out []map[string]any
	for _, raw := range rawSteps {
		step, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		resolved, err := resolveTestBlock(step, st, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved...)
	}
	return out, nil
}

func copyStepList(steps []map[string]any) []any {
	out := make([]any, len(steps))
	for i, s := range steps {
		out[i] = deepCopyAny(s)
	}
	return out
}

func mustFuncName(refCall string) string {
	meta, err := expr.ParseFunction(refCall)
	if err != nil {
		return refCall
	}
	return meta.FuncName
}

// renameByCallArgs computes the def_arg -> call_arg mapping and applies it
// as a literal substring substitution over content, mirroring
// parser.substitute_variables: each occurrence of a definition placeholder
// string is replaced by the corresponding call argument (or, when the
// whole string equals the placeholder, replaced with the call argument's
// native type).
func renameByCallArgs(refCall, funcName string, defArgs []string, content map[string]any) (map[string]any, error) {
	meta, err := expr.ParseFunction(refCall)
	if err != nil {
		return nil, err
	}

	if len(meta.Args) != len(defArgs) {
		return nil, httperrors.NewParamError(
			"%s: call args number is not equal to defined args number!\ndefined args: %v\nreference args: %v",
			funcName, defArgs, meta.Args)
	}

	var mapping []argMapping
	for i, defArg := range defArgs {
		callArg := meta.Args[i]
		if fmt.Sprintf("%v", callArg) == defArg {
			continue
		}
		mapping = append(mapping, argMapping{name: defArg, value: callArg})
	}

	if len(mapping) == 0 {
		return deepCopyAny(content).(map[string]any), nil
	}

	out := substituteVariables(content, mapping)
	return out.(map[string]any), nil
}

// argMapping is one definition-placeholder -> caller-argument binding.
// Kept as an ordered slice (rather than a map) so substitution order
// matches the original's insertion-ordered dict iteration exactly.
type argMapping struct {
	name  string
	value any
}

// substituteVariables ports parser.substitute_variables: a plain literal
// replacement (not the regex substituter in internal/subst), used only to
// rename a definition's own declared placeholders to the caller's actual
// argument names/values.
func substituteVariables(content any, mapping []argMapping) any {
	switch v := content.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			newKey, _ := substituteVariables(k, mapping).(string)
			out[newKey] = substituteVariables(val, mapping)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = substituteVariables(item, mapping)
		}
		return out
	case string:
		for _, m := range mapping {
			if v == m.name {
				return m.value
			}
			v = replaceAll(v, m.name, fmt.Sprintf("%v", m.value))
		}
		return v
	default:
		return v
	}
}

func replaceAll(s, old, new string) string {
	if old == "" {
		return s
	}
	result := ""
	for {
		idx := indexOf(s, old)
		if idx < 0 {
			return result + s
		}
		result += s[:idx] + new
		s = s[idx+len(old):]
	}
}

func indexOf(s, sub string) int {
	n, m := len(s), len(sub)
	if m == 0 || m > n {
		if m == 0 {
			return 0
		}
		return -1
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return i
		}
	}
	return -1
}

// extendBlock merges def into ref per _extend_block: def's values win for
// plain (non-list) fields, since the original mutates ref_block via
// ref_block.update(def_block). validate/extract are excluded from that
// overwrite and merged separately below, where the referencing step wins
// on key/name collision instead.
func extendBlock(ref, def map[string]any) (map[string]any, error) {
	defValidators := blockList(def, "validate", "validators")
	refValidators := blockList(ref, "validate", "validators")

	defExtractors := blockList(def, "extract", "extractors", "extract_binds")
	refExtractors := blockList(ref, "extract", "extractors", "extract_binds")

	merged := make(map[string]any, len(ref)+len(def))
	for k, v := range ref {
		merged[k] = v
	}
	for k, v := range def {
		merged[k] = v
	}

	mergedValidators, err := mergeValidators(defValidators, refValidators)
	if err != nil {
		return nil, err
	}
	merged["validate"] = mergedValidators
	delete(merged, "validators")

	merged["extract"] = mergeExtractors(defExtractors, refExtractors)
	delete(merged, "extractors")
	delete(merged, "extract_binds")

	return merged, nil
}

func blockList(block map[string]any, keys ...string) []map[string]any {
	for _, k := range keys {
		if raw, ok := block[k]; ok {
			if list, ok := raw.([]any); ok {
				out := make([]map[string]any, 0, len(list))
				for _, item := range list {
					if m, ok := item.(map[string]any); ok {
						out = append(out, m)
					}
				}
				return out
			}
		}
	}
	return nil
}

// mergeValidators merges def_validators with ref_validators, keyed by
// (check, comparator); ref entries win on collision. Order follows def
// first, then any ref-only additions, matching
// _convert_validators_to_mapping/_merge_validator.
func mergeValidators(defValidators, refValidators []map[string]any) ([]map[string]any, error) {
	if len(defValidators) == 0 {
		return refValidators, nil
	}
	if len(refValidators) == 0 {
		return defValidators, nil
	}

	order := []string{}
	byKey := map[string]*validate.Validator{}

	for _, raw := range defValidators {
		v, err := validate.Parse(raw)
		if err != nil {
			return nil, err
		}
		key := v.Key()
		if _, exists := byKey[key]; !exists {
			order = append(order, key)
		}
		byKey[key] = v
	}
	for _, raw := range refValidators {
		v, err := validate.Parse(raw)
		if err != nil {
			return nil, err
		}
		key := v.Key()
		if _, exists := byKey[key]; !exists {
			order = append(order, key)
		}
		byKey[key] = v
	}

	out := make([]map[string]any, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key].ToMap())
	}
	return out, nil
}

// mergeExtractors merges def_extractors with ref_extractors, keyed by
// variable name; ref entries win on collision, insertion order preserved
// (def first, then new ref-only names), matching _merge_extractor.
func mergeExtractors(defExtractors, refExtractors []map[string]any) []map[string]any {
	if len(defExtractors) == 0 {
		return refExtractors
	}
	if len(refExtractors) == 0 {
		return defExtractors
	}

	order := []string{}
	byName := map[string]any{}

	collect := func(extractors []map[string]any) {
		for _, e := range extractors {
			if len(e) != 1 {
				slog.Warn("incorrect extractor, expected exactly one key", "extractor", e)
				continue
			}
			for name, value := range e {
				if _, exists := byName[name]; !exists {
					order = append(order, name)
				}
				byName[name] = value
			}
		}
	}
	collect(defExtractors)
	collect(refExtractors)

	out := make([]map[string]any, 0, len(order))
	for _, name := range order {
		out = append(out, map[string]any{name: byName[name]})
	}
	return out
}

func deepCopyAny(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopyAny(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = deepCopyAny(item)
		}
		return out
	default:
		return v
	}
}
