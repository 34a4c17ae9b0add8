package runner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kfusac/httpspec/internal/assemble"
	"github.com/kfusac/httpspec/internal/docload"
	"github.com/kfusac/httpspec/internal/httpclient"
	"github.com/kfusac/httpspec/internal/registry"
	"github.com/kfusac/httpspec/internal/store"
)

func newTestRunner(client *httpclient.Client) *Runner {
	return New(store.New(), registry.New(), client)
}

func TestRunDocumentSingleCaseExtractsAndValidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "abc123"})
	}))
	defer srv.Close()

	r := newTestRunner(httpclient.New(httpclient.DefaultConfig()))

	doc := &assemble.Document{
		Config: map[string]any{"name": "login flow"},
		Teststeps: []map[string]any{
			{
				"name":    "login",
				"request": map[string]any{"method": "GET", "url": srv.URL},
				"extract": []map[string]any{{"token": "content.token"}},
				"validate": []map[string]any{
					{"check": "status_code", "comparator": "equals", "expect": 200},
				},
			},
		},
	}

	reports, err := r.RunDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected 1 case report, got %d", len(reports))
	}
	if !reports[0].Passed() {
		t.Fatalf("expected case to pass, got %+v", reports[0])
	}
}

func TestRunDocumentValidationFailureIsReportedNotReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := newTestRunner(httpclient.New(httpclient.DefaultConfig()))

	doc := &assemble.Document{
		Config: map[string]any{"name": "expect 200 but get 404"},
		Teststeps: []map[string]any{
			{
				"name":    "call",
				"request": map[string]any{"method": "GET", "url": srv.URL},
				"validate": []map[string]any{
					{"check": "status_code", "comparator": "equals", "expect": 200},
				},
			},
		},
	}

	reports, err := r.RunDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected top-level error: %v", err)
	}
	if reports[0].Passed() {
		t.Fatal("expected case to fail validation")
	}
	if reports[0].Steps[0].Err == nil {
		t.Fatal("expected the failing step to carry a validation error")
	}
}

func TestRunDocumentExpandsParametersIntoMultipleCases(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := newTestRunner(httpclient.New(httpclient.DefaultConfig()))

	doc := &assemble.Document{
		Config: map[string]any{
			"name": "parameterized",
			"parameters": []any{
				map[string]any{"username-password": []any{
					[]any{"test1", "111111"},
					[]any{"test2", "222222"},
				}},
			},
		},
		Teststeps: []map[string]any{
			{
				"name":    "call",
				"request": map[string]any{"method": "GET", "url": srv.URL},
			},
		},
	}

	reports, err := r.RunDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 expanded cases, got %d", len(reports))
	}
	for _, rep := range reports {
		if !rep.Passed() {
			t.Fatalf("expected every expanded case to pass, got %+v", rep)
		}
	}
}

// TestRunDocumentDecodedPlainStepValidatesAndExtracts drives a plain test
// step (neither "api" nor "suite") through the real docload -> assemble ->
// runner path, so validate/extract come off the wire as []any the way
// yaml.v3/encoding/json actually decode them, instead of being hand-built as
// []map[string]any in Go.
func TestRunDocumentDecodedPlainStepValidatesAndExtracts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "abc123"})
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "smoke.yaml")
	content := `
- config:
    name: decoded smoke test
- test:
    name: login
    request:
      method: GET
      url: ` + srv.URL + `
    extract:
      - token: content.token
    validate:
      - check: status_code
        comparator: equals
        expect: 200
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	items, err := docload.LoadBlockList(path)
	if err != nil {
		t.Fatalf("unexpected error loading fixture: %v", err)
	}

	st := store.New()
	doc, err := assemble.AssembleTestFile(items, st)
	if err != nil {
		t.Fatalf("unexpected error assembling document: %v", err)
	}

	r := newTestRunner(httpclient.New(httpclient.DefaultConfig()))
	reports, err := r.RunDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected 1 case report, got %d", len(reports))
	}
	if !reports[0].Passed() {
		t.Fatalf("expected decoded plain step to validate successfully, got %+v", reports[0])
	}
	if len(reports[0].Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(reports[0].Steps))
	}
}

// TestRunDocumentDecodedPlainStepValidationFailureIsCaught guards against
// the decoded validate list silently becoming a no-op (every step "passing"
// because there was nothing left to check, rather than because the check
// actually ran and matched).
func TestRunDocumentDecodedPlainStepValidationFailureIsCaught(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "smoke.yaml")
	content := `
- config:
    name: decoded smoke test expecting failure
- test:
    name: call
    request:
      method: GET
      url: ` + srv.URL + `
    validate:
      - check: status_code
        comparator: equals
        expect: 200
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	items, err := docload.LoadBlockList(path)
	if err != nil {
		t.Fatalf("unexpected error loading fixture: %v", err)
	}

	st := store.New()
	doc, err := assemble.AssembleTestFile(items, st)
	if err != nil {
		t.Fatalf("unexpected error assembling document: %v", err)
	}

	r := newTestRunner(httpclient.New(httpclient.DefaultConfig()))
	reports, err := r.RunDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reports[0].Passed() {
		t.Fatal("expected the decoded step's status_code validator to actually run and fail against a 404")
	}
}

// TestRunDocumentSuiteVariablesAreResolvedNotSplicedLiterally guards against
// config.variables being pre-seeded raw: a suite variable built from a
// function call and from an earlier suite variable must actually be
// evaluated before a step substitutes it, not spliced into the request as
// its own unevaluated source text.
func TestRunDocumentSuiteVariablesAreResolvedNotSplicedLiterally(t *testing.T) {
	var sawHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawHeader = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := newTestRunner(httpclient.New(httpclient.DefaultConfig()))

	doc := &assemble.Document{
		Config: map[string]any{
			"name": "suite vars resolve",
			"variables": []any{
				map[string]any{"prefix": "Bearer"},
				map[string]any{"token": "${gen_uuid()}"},
				map[string]any{"auth": "$prefix $token"},
			},
		},
		Teststeps: []map[string]any{
			{
				"name": "call",
				"request": map[string]any{
					"method":  "GET",
					"url":     srv.URL,
					"headers": map[string]any{"Authorization": "$auth"},
				},
			},
		},
	}

	reports, err := r.RunDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reports[0].Passed() {
		t.Fatalf("expected case to pass, got %+v", reports[0])
	}
	if sawHeader == "" || sawHeader == "Bearer $token" || sawHeader == "$prefix $token" {
		t.Fatalf("expected suite variables to be fully resolved before use, got %q", sawHeader)
	}
	if !strings.HasPrefix(sawHeader, "Bearer ") {
		t.Fatalf("expected resolved auth header to start with %q, got %q", "Bearer ", sawHeader)
	}
}

func TestRunDocumentDeepMergesSuiteRequestSkeleton(t *testing.T) {
	var sawAuth, sawCustom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		sawCustom = r.Header.Get("X-Custom")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := newTestRunner(httpclient.New(httpclient.DefaultConfig()))

	doc := &assemble.Document{
		Config: map[string]any{
			"name": "merged headers",
			"request": map[string]any{
				"headers": map[string]any{"Authorization": "Bearer shared"},
			},
		},
		Teststeps: []map[string]any{
			{
				"name": "call",
				"request": map[string]any{
					"method":  "GET",
					"url":     srv.URL,
					"headers": map[string]any{"X-Custom": "1"},
				},
			},
		},
	}

	if _, err := r.RunDocument(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sawAuth != "Bearer shared" {
		t.Fatalf("expected suite-level Authorization header to survive the merge, got %q", sawAuth)
	}
	if sawCustom != "1" {
		t.Fatalf("expected step-level X-Custom header to survive the merge, got %q", sawCustom)
	}
}
