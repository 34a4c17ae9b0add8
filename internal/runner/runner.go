// Package runner is the driver: it ties the Definition Store, Test File
// Assembler, Parameter Expander, Execution Context, and HTTP collaborator
// together into an end-to-end run of one or many test documents. None of
// this is part of the core per spec.md §1 ("the runner/driver... is out of
// scope, an external collaborator"); it is the one concrete wiring this
// repository ships so the module is runnable.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kfusac/httpspec/internal/assemble"
	"github.com/kfusac/httpspec/internal/docload"
	"github.com/kfusac/httpspec/internal/execctx"
	"github.com/kfusac/httpspec/internal/httperrors"
	"github.com/kfusac/httpspec/internal/httpclient"
	"github.com/kfusac/httpspec/internal/ordered"
	"github.com/kfusac/httpspec/internal/param"
	"github.com/kfusac/httpspec/internal/registry"
	"github.com/kfusac/httpspec/internal/store"
	"github.com/kfusac/httpspec/internal/subst"
)

// StepReport is the outcome of one executed teststep.
type StepReport struct {
	Name    string
	Request map[string]any
	Status  int
	Err     error
}

// Passed reports whether the step completed without error.
func (s StepReport) Passed() bool { return s.Err == nil }

// CaseReport is the outcome of one expanded parameter row's run through a
// document's teststeps.
type CaseReport struct {
	Name  string
	Steps []StepReport
}

// Passed reports whether every step in the case passed.
func (c CaseReport) Passed() bool {
	for _, s := range c.Steps {
		if !s.Passed() {
			return false
		}
	}
	return true
}

// Runner holds the read-only, shareable collaborators a run needs: the
// Definition Store, the Helper Registry, and the HTTP client.
type Runner struct {
	Store    *store.Store
	Registry *registry.Registry
	Client   *httpclient.Client
}

// New builds a Runner from its collaborators.
func New(st *store.Store, reg *registry.Registry, client *httpclient.Client) *Runner {
	return &Runner{Store: st, Registry: reg, Client: client}
}

// RunDocument expands the document's parameter declarations (if any, via
// config.parameters) and runs one CaseReport per resulting row, each with
// its own Execution Context. Per spec.md §5, distinct cases may execute in
// parallel since the Store/Registry are read-only; RunDocument does so
// using a goroutine per row.
func (r *Runner) RunDocument(ctx context.Context, doc *assemble.Document) ([]CaseReport, error) {
	rows, err := r.expandParameters(doc.Config)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		rows = []map[string]any{{}}
	}

	reports := make([]CaseReport, len(rows))
	var wg sync.WaitGroup
	for i, row := range rows {
		wg.Add(1)
		go func(i int, row map[string]any) {
			defer wg.Done()
			reports[i] = r.runCase(ctx, doc, row)
		}(i, row)
	}
	wg.Wait()

	return reports, nil
}

func (r *Runner) expandParameters(config map[string]any) ([]map[string]any, error) {
	raw, ok := config["parameters"].([]any)
	if !ok || len(raw) == 0 {
		return nil, nil
	}

	declarations := make([]param.Declaration, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok || len(m) != 1 {
			return nil, httperrors.NewParamError("invalid parameter declaration: %v", item)
		}
		for name, content := range m {
			declarations = append(declarations, param.Declaration{Name: name, Content: content})
		}
	}

	loadCSV := func(path string, _ []any, _ map[string]any) (any, error) {
		rows, err := docload.LoadCSVFile(path)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(rows))
		for i, row := range rows {
			out[i] = row
		}
		return out, nil
	}
	resolver := subst.New(ordered.New(), adaptFuncs(r.Registry), loadCSV)
	return param.Expand(declarations, resolver)
}

func (r *Runner) runCase(ctx context.Context, doc *assemble.Document, paramRow map[string]any) CaseReport {
	name, _ := doc.Config["name"].(string)

	initial := ordered.New()
	for k, v := range paramRow {
		initial.Set(k, v)
	}

	ec := execctx.New(initial, r.Registry, nil)

	if declared, ok := doc.Config["variables"]; ok {
		entries, err := toOrderedEntries(declared)
		if err != nil {
			return CaseReport{Name: name, Steps: []StepReport{{Err: err}}}
		}
		if err := ec.UpdateContextVariables(entries, execctx.Suite); err != nil {
			return CaseReport{Name: name, Steps: []StepReport{{Err: err}}}
		}
	}

	if suiteRequest, ok := doc.Config["request"].(map[string]any); ok {
		if _, err := ec.GetParsedRequest(suiteRequest, execctx.Suite); err != nil {
			return CaseReport{Name: name, Steps: []StepReport{{Err: err}}}
		}
	}

	report := CaseReport{Name: name}
	for _, step := range doc.Teststeps {
		stepReport := r.runStep(ctx, ec, step)
		report.Steps = append(report.Steps, stepReport)
		if stepReport.Err != nil {
			slog.Error("step failed", "case", name, "step", stepReport.Name, "err", stepReport.Err)
			break
		}
		slog.Debug("step passed", "case", name, "step", stepReport.Name, "status", stepReport.Status)
	}
	return report
}

func (r *Runner) runStep(ctx context.Context, ec *execctx.Context, step map[string]any) StepReport {
	stepName, _ := step["name"].(string)
	ec.ResetStepVars()

	if variables, ok := step["variables"]; ok {
		entries, err := toOrderedEntries(variables)
		if err != nil {
			return StepReport{Name: stepName, Err: err}
		}
		if err := ec.UpdateContextVariables(entries, execctx.Step); err != nil {
			return StepReport{Name: stepName, Err: err}
		}
	}

	if err := runHooks(ec, step["setup_hooks"]); err != nil {
		return StepReport{Name: stepName, Err: &httperrors.SetupHooksFailure{Msg: err.Error()}}
	}

	rawRequest, _ := step["request"].(map[string]any)
	request, err := ec.GetParsedRequest(rawRequest, execctx.Step)
	if err != nil {
		return StepReport{Name: stepName, Err: err}
	}

	resp, err := r.sendRequest(ctx, request)
	if err != nil {
		return StepReport{Name: stepName, Request: request, Err: err}
	}

	if extractors, ok := step["extract"].([]map[string]any); ok {
		extracted, err := extractValues(ec, extractors, resp)
		if err != nil {
			return StepReport{Name: stepName, Request: request, Status: resp.StatusCode(), Err: &httperrors.ExtractFailure{Msg: err.Error()}}
		}
		ec.UpdateTestcaseRuntimeVariables(extracted)
	}

	var validators []map[string]any
	if raw, ok := step["validate"].([]map[string]any); ok {
		validators = raw
	}
	if err := ec.Validate(validators, resp); err != nil {
		return StepReport{Name: stepName, Request: request, Status: resp.StatusCode(), Err: err}
	}

	if err := runHooks(ec, step["teardown_hooks"]); err != nil {
		return StepReport{Name: stepName, Request: request, Status: resp.StatusCode(), Err: &httperrors.TeardownHooksFailure{Msg: err.Error()}}
	}

	return StepReport{Name: stepName, Request: request, Status: resp.StatusCode()}
}

func (r *Runner) sendRequest(ctx context.Context, request map[string]any) (*httpclient.Response, error) {
	url, _ := request["url"].(string)
	method, _ := request["method"].(string)
	if method == "" {
		method = "GET"
	}

	headers := map[string]string{}
	if raw, ok := request["headers"].(map[string]any); ok {
		for k, v := range raw {
			headers[k] = fmt.Sprintf("%v", v)
		}
	}

	query := map[string]string{}
	if raw, ok := request["params"].(map[string]any); ok {
		for k, v := range raw {
			query[k] = fmt.Sprintf("%v", v)
		}
	}

	var body any
	if raw, ok := request["json"]; ok {
		body = raw
	} else if raw, ok := request["body"]; ok {
		body = raw
	}

	return r.Client.Do(ctx, method, url, headers, query, body)
}

func extractValues(ec *execctx.Context, extractors []map[string]any, resp *httpclient.Response) (map[string]any, error) {
	out := map[string]any{}
	for _, e := range extractors {
		for name, path := range e {
			pathStr, ok := path.(string)
			if !ok {
				out[name] = path
				continue
			}
			value, err := resp.ExtractField(pathStr)
			if err != nil {
				return nil, err
			}
			out[name] = value
		}
	}
	return out, nil
}

func runHooks(ec *execctx.Context, raw any) error {
	hooks, ok := raw.([]any)
	if !ok {
		return nil
	}
	for _, hook := range hooks {
		if _, err := ec.EvalContent(hook); err != nil {
			return err
		}
	}
	return nil
}

func toOrderedEntries(raw any) (*ordered.Map, error) {
	switch v := raw.(type) {
	case []any:
		pairs := make([]map[string]any, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, httperrors.NewParamError("invalid variable declaration: %v", item)
			}
			pairs = append(pairs, m)
		}
		return ordered.FromPairList(pairs)
	case map[string]any:
		m := ordered.New()
		for k, val := range v {
			m.Set(k, val)
		}
		return m, nil
	default:
		return nil, httperrors.NewParamError("invalid variables block: %v", raw)
	}
}

func adaptFuncs(reg *registry.Registry) subst.Funcs {
	funcs := make(subst.Funcs, len(reg.Funcs))
	for name, fn := range reg.Funcs {
		fn := fn
		funcs[name] = func(args []any, kwargs map[string]any) (any, error) {
			return fn(args, kwargs)
		}
	}
	return funcs
}
