// Package execctx implements the Execution Context: two-tier variable
// scope (suite-level and step-level) plus the helper registry, request
// resolution by deep merge, and validator evaluation against a response.
package execctx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kfusac/httpspec/internal/expr"
	"github.com/kfusac/httpspec/internal/httperrors"
	"github.com/kfusac/httpspec/internal/ordered"
	"github.com/kfusac/httpspec/internal/registry"
	"github.com/kfusac/httpspec/internal/subst"
	"github.com/kfusac/httpspec/internal/validate"
)

// Level selects which scope update_context_variables/get_parsed_request
// targets.
type Level int

const (
	Suite Level = iota
	Step
)

// Response is the external HTTP collaborator's output surface: the core
// only needs to extract fields by path and read status/headers/body.
type Response interface {
	ExtractField(path string) (any, error)
	StatusCode() int
	Headers() http.Header
	Body() []byte
}

// Context holds suite_vars, step_vars, the shared helper registry, the
// suite-level request skeleton, and the evaluated validators accumulated
// across the case's steps.
type Context struct {
	suiteVars           *ordered.Map
	stepVars            *ordered.Map
	registry            *registry.Registry
	suiteRequest        map[string]any
	evaluatedValidators []*validate.Validator
	loadCSV             subst.CSVLoader
}

// New constructs a Context from an initial variable mapping and the shared
// registry. step_vars is initialized as a deep copy of suite_vars.
func New(initialVars *ordered.Map, reg *registry.Registry, loadCSV subst.CSVLoader) *Context {
	if initialVars == nil {
		initialVars = ordered.New()
	}
	return &Context{
		suiteVars: initialVars,
		stepVars:  initialVars.Clone(),
		registry:  reg,
		loadCSV:   loadCSV,
	}
}

func (c *Context) resolver() *subst.Resolver {
	funcs := make(subst.Funcs, len(c.registry.Funcs))
	for name, fn := range c.registry.Funcs {
		fn := fn
		funcs[name] = func(args []any, kwargs map[string]any) (any, error) {
			return fn(args, kwargs)
		}
	}
	vars := c.stepVars.Clone()
	for name, v := range c.registry.Vars {
		if _, exists := vars.Get(name); !exists {
			vars.Set(name, v)
		}
	}
	return subst.New(vars, funcs, c.loadCSV)
}

// UpdateContextVariables resolves each entry's value against the current
// step_vars (so later bindings may reference earlier ones), then writes
// into step_vars always, and into suite_vars iff level == Suite.
func (c *Context) UpdateContextVariables(entries *ordered.Map, level Level) error {
	for _, name := range entries.Keys() {
		raw, _ := entries.Get(name)
		resolved, err := c.resolver().ParseData(raw)
		if err != nil {
			return err
		}
		c.stepVars.Set(name, resolved)
		if level == Suite {
			c.suiteVars.Set(name, resolved)
		}
	}
	return nil
}

// EvalContent delegates to the Data Substituter against step_vars and the
// registry's functions.
func (c *Context) EvalContent(content any) (any, error) {
	return c.resolver().ParseData(content)
}

// GetParsedRequest resolves a request mapping. At suite level, request is
// deep-copied into suiteRequest and returned unparsed — suite requests are
// parsed lazily by the step. At step level, request is deep-merged over a
// copy of suiteRequest and the result is evaluated.
func (c *Context) GetParsedRequest(request map[string]any, level Level) (map[string]any, error) {
	if level == Suite {
		c.suiteRequest = cloneMap(request)
		return c.suiteRequest, nil
	}

	merged := deepMergeDict(cloneMap(c.suiteRequest), request)
	evaluated, err := c.EvalContent(merged)
	if err != nil {
		return nil, err
	}
	out, ok := evaluated.(map[string]any)
	if !ok {
		return nil, httperrors.NewParamError("resolved request is not a mapping: %T", evaluated)
	}
	return out, nil
}

// UpdateTestcaseRuntimeVariables writes extracted bindings into both
// suite_vars and step_vars.
func (c *Context) UpdateTestcaseRuntimeVariables(extracted map[string]any) {
	for name, value := range extracted {
		c.suiteVars.Set(name, value)
		c.stepVars.Set(name, value)
	}
}

// ResetStepVars re-derives step_vars from suite_vars at the start of a new
// step, per the spec's "step_vars resets from suite_vars at each step
// boundary" invariant.
func (c *Context) ResetStepVars() {
	c.stepVars = c.suiteVars.Clone()
}

// EvaluatedValidators returns every validator's final canonical dict
// accumulated across Validate calls.
func (c *Context) EvaluatedValidators() []*validate.Validator {
	return c.evaluatedValidators
}

// Validate evaluates each validator against resp, accumulating outcomes.
// Every failure is collected before returning; if any failed, a single
// ValidationFailure aggregating every mismatch message is returned.
func (c *Context) Validate(validators []map[string]any, resp Response) error {
	if len(validators) == 0 {
		return nil
	}

	var failures []string
	for _, raw := range validators {
		v, err := validate.Parse(raw)
		if err != nil {
			return err
		}

		if err := c.evalCheckItem(v, resp); err != nil {
			return err
		}

		if err := c.doValidation(v); err != nil {
			var paramErr *httperrors.ParamError
			if errors.As(err, &paramErr) {
				return err
			}
			failures = append(failures, err.Error())
		}
		c.evaluatedValidators = append(c.evaluatedValidators, v)
	}

	if len(failures) > 0 {
		return &httperrors.ValidationFailure{Failures: failures}
	}
	return nil
}

// evalCheckItem resolves v.Check (variable/function/mapping/sequence
// reference resolves via EvalContent; otherwise it is a field path asked of
// resp) and v.Expect (always resolved via EvalContent), storing CheckValue.
func (c *Context) evalCheckItem(v *validate.Validator, resp Response) error {
	switch check := v.Check.(type) {
	case map[string]any, []any:
		resolved, err := c.EvalContent(check)
		if err != nil {
			return err
		}
		v.CheckValue = resolved
	case string:
		if len(expr.ExtractVariables(check)) > 0 || len(expr.ExtractFunctions(check)) > 0 {
			resolved, err := c.EvalContent(check)
			if err != nil {
				return err
			}
			v.CheckValue = resolved
		} else {
			value, err := resp.ExtractField(check)
			if err != nil {
				return &httperrors.ExtractFailure{Msg: err.Error()}
			}
			v.CheckValue = value
		}
	default:
		v.CheckValue = check
	}

	expectValue, err := c.EvalContent(v.Expect)
	if err != nil {
		return err
	}
	v.Expect = expectValue
	v.CheckResult = validate.Unchecked
	return nil
}

// doValidation runs the comparator, enforcing the null-operand policy
// (null is only comparable with equals).
func (c *Context) doValidation(v *validate.Validator) error {
	comparator := registry.UniformComparator(v.Comparator)

	if (v.CheckValue == nil || v.Expect == nil) && comparator != "equals" {
		return httperrors.NewParamError("null value can only be compared with comparator: eq/equals/==/is")
	}

	fn, err := c.registry.Comparator(comparator)
	if err != nil {
		return err
	}

	v.CheckResult = validate.Pass
	if cmpErr := fn(v.CheckValue, v.Expect); cmpErr != nil {
		v.CheckResult = validate.Fail
		return fmt.Errorf("%v %s %v (%T)\n%v", v.Check, comparator, v.Expect, v.Expect, cmpErr)
	}
	return nil
}
