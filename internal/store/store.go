// Package store implements the Definition Store: catalogs of API and
// testcase/suite definitions keyed by the func_name parsed out of their
// "def" signature (e.g. "api_login()", "suite_checkout(username)").
package store

import (
	"fmt"
	"log/slog"

	"github.com/kfusac/httpspec/internal/expr"
	"github.com/kfusac/httpspec/internal/httperrors"
)

// ApiDefinition is one `def-api` catalog entry.
type ApiDefinition struct {
	FuncName string
	Args     []string
	Request  map[string]any
	Validate []map[string]any
	Extract  []map[string]any
	Raw      map[string]any
}

// TestcaseDefinition is one `def-testcase` (suite) catalog entry.
type TestcaseDefinition struct {
	FuncName  string
	Args      []string
	Config    map[string]any
	Teststeps []map[string]any
}

// Store holds the two definition catalogs, built once at load time and
// read-only afterward.
type Store struct {
	apis      map[string]*ApiDefinition
	testcases map[string]*TestcaseDefinition
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		apis:      map[string]*ApiDefinition{},
		testcases: map[string]*TestcaseDefinition{},
	}
}

// RegisterAPI adds or overwrites an API definition. A duplicate func_name
// is logged at warn level and the later registration wins, matching
// load_api_folder's duplicate-overwrite behavior.
func (s *Store) RegisterAPI(def *ApiDefinition) {
	if _, exists := s.apis[def.FuncName]; exists {
		slog.Warn("API definition duplicated", "func_name", def.FuncName)
	}
	s.apis[def.FuncName] = def
}

// RegisterTestcase adds or overwrites a testcase/suite definition.
func (s *Store) RegisterTestcase(def *TestcaseDefinition) {
	if _, exists := s.testcases[def.FuncName]; exists {
		slog.Warn("testcase definition duplicated", "func_name", def.FuncName)
	}
	s.testcases[def.FuncName] = def
}

// GetAPI looks up an API definition by func_name.
func (s *Store) GetAPI(funcName string) (*ApiDefinition, error) {
	def, ok := s.apis[funcName]
	if !ok {
		return nil, httperrors.NewApiNotFound("%s not found!", funcName)
	}
	return def, nil
}

// GetTestcase looks up a testcase/suite definition by func_name.
func (s *Store) GetTestcase(funcName string) (*TestcaseDefinition, error) {
	def, ok := s.testcases[funcName]
	if !ok {
		return nil, httperrors.NewTestcaseNotFound("%s not found!", funcName)
	}
	return def, nil
}

// ParseDefSignature splits a "def" string such as "api_login()" or
// "suite_checkout($username, $password)" into its func_name and declared
// argument placeholders. It reuses the same call-literal grammar
// (internal/expr.ParseFunction) the assembler uses at call sites, since the
// original parser applies `parse_function` uniformly to both definition
// signatures and reference calls.
func ParseDefSignature(sig string) (funcName string, args []string, err error) {
	meta, err := expr.ParseFunction(sig)
	if err != nil {
		return "", nil, httperrors.NewParamError("invalid def signature: %s", sig)
	}

	args = make([]string, len(meta.Args))
	for i, a := range meta.Args {
		args[i] = fmt.Sprintf("%v", a)
	}
	return meta.FuncName, args, nil
}
