// Package expr tokenizes and interprets the embedded mini-language found
// inside string scalars of test documents: variable references ($name) and
// function calls (${name(args)}). It is pure — no I/O, no evaluation of
// variables/functions against a mapping; that is internal/subst's job.
package expr

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kfusac/httpspec/internal/httperrors"
)

// variablePattern matches a $ followed by one or more word characters.
// Greedy over \w+ so "$user" never partially matches inside "$userid".
var variablePattern = regexp.MustCompile(`\$([\w_]+)`)

// functionPattern matches ${name(args)}; args is restricted to the
// character class the original grammar allows: $, word chars, ., -, /,
// space, =, and comma. Nested ${...} is not supported.
var functionPattern = regexp.MustCompile(`\$\{([\w_]+\([\$\w.\-/_ =,]*\))\}`)

// functionCallPattern anchors a single extracted call literal, splitting it
// into its name and argument-list text.
var functionCallPattern = regexp.MustCompile(`^([\w_]+)\(([\$\w.\-/_ =,]*)\)$`)

// FunctionMeta is the parsed shape of a function call literal:
// name(arg1, arg2, kw=val, ...).
type FunctionMeta struct {
	FuncName string
	Args     []any
	Kwargs   map[string]any
}

// ExtractVariables returns every $name reference found in content, in
// left-to-right order, without the leading $.
func ExtractVariables(content string) []string {
	matches := variablePattern.FindAllStringSubmatch(content, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// ExtractFunctions returns every ${name(args)} call literal found in
// content, in left-to-right order, with the outer ${ } stripped (i.e. just
// "name(args)").
func ExtractFunctions(content string) []string {
	matches := functionPattern.FindAllStringSubmatch(content, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// ParseFunction parses a "name(args)" literal into its FunctionMeta. Returns
// FunctionNotFound if the literal does not match the call grammar.
func ParseFunction(content string) (*FunctionMeta, error) {
	m := functionCallPattern.FindStringSubmatch(content)
	if m == nil {
		return nil, httperrors.NewFunctionNotFound("%s not found!", content)
	}

	meta := &FunctionMeta{
		FuncName: m[1],
		Args:     []any{},
		Kwargs:   map[string]any{},
	}

	argsStr := strings.TrimSpace(m[2])
	if argsStr == "" {
		return meta, nil
	}

	for _, arg := range strings.Split(argsStr, ",") {
		arg = strings.TrimSpace(arg)
		if idx := strings.Index(arg, "="); idx >= 0 {
			key := strings.TrimSpace(arg[:idx])
			val := strings.TrimSpace(arg[idx+1:])
			meta.Kwargs[key] = ParseStringValue(val)
		} else {
			meta.Args = append(meta.Args, ParseStringValue(arg))
		}
	}

	return meta, nil
}

// ParseStringValue attempts to coerce s to an int64, float64, bool, or nil
// literal. On failure it returns s unchanged. Strings beginning with $ are
// never coerced — they remain references to be resolved later.
func ParseStringValue(s string) any {
	if strings.HasPrefix(s, "$") {
		return s
	}

	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null", "None":
		return nil
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	return s
}
