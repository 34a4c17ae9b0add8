// Package httperrors defines the two error families used across httpspec:
// failures mark a step/case as failed without aborting the run; errors abort
// loading or execution of the affected case.
package httperrors

import (
	"fmt"
	"strings"
)

// FileFormatError signals a malformed test/api/suite document.
type FileFormatError struct{ Msg string }

func (e *FileFormatError) Error() string { return e.Msg }

// FileNotFound signals a missing file on disk.
type FileNotFound struct{ Msg string }

func (e *FileNotFound) Error() string { return e.Msg }

// ParamError signals an invalid argument shape (validator, function call,
// parameter declaration, etc.).
type ParamError struct{ Msg string }

func (e *ParamError) Error() string { return e.Msg }

// FunctionNotFound signals a function literal that cannot be resolved
// against the registry nor parsed as a call.
type FunctionNotFound struct{ Msg string }

func (e *FunctionNotFound) Error() string { return e.Msg }

// VariableNotFound signals a `$name` reference missing from the current
// variable mapping.
type VariableNotFound struct{ Msg string }

func (e *VariableNotFound) Error() string { return e.Msg }

// ApiNotFound signals an `api:` reference whose func_name has no definition.
type ApiNotFound struct{ Msg string }

func (e *ApiNotFound) Error() string { return e.Msg }

// TestcaseNotFound signals a `suite:` reference whose func_name has no
// definition.
type TestcaseNotFound struct{ Msg string }

func (e *TestcaseNotFound) Error() string { return e.Msg }

// ValidationFailure aggregates every failed validator from one step. The
// message enumerates each mismatch so a report can show them all at once.
type ValidationFailure struct {
	Failures []string
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("validation failed: %d check(s) did not pass:\n%s", len(e.Failures), strings.Join(e.Failures, "\n"))
}

// ExtractFailure marks a failed value extraction from a response.
type ExtractFailure struct{ Msg string }

func (e *ExtractFailure) Error() string { return e.Msg }

// SetupHooksFailure marks a failed setup hook.
type SetupHooksFailure struct{ Msg string }

func (e *SetupHooksFailure) Error() string { return e.Msg }

// TeardownHooksFailure marks a failed teardown hook.
type TeardownHooksFailure struct{ Msg string }

func (e *TeardownHooksFailure) Error() string { return e.Msg }

func NewFileFormatError(format string, args ...any) error {
	return &FileFormatError{Msg: fmt.Sprintf(format, args...)}
}

func NewFileNotFound(format string, args ...any) error {
	return &FileNotFound{Msg: fmt.Sprintf(format, args...)}
}

func NewParamError(format string, args ...any) error {
	return &ParamError{Msg: fmt.Sprintf(format, args...)}
}

func NewFunctionNotFound(format string, args ...any) error {
	return &FunctionNotFound{Msg: fmt.Sprintf(format, args...)}
}

func NewVariableNotFound(format string, args ...any) error {
	return &VariableNotFound{Msg: fmt.Sprintf(format, args...)}
}

func NewApiNotFound(format string, args ...any) error {
	return &ApiNotFound{Msg: fmt.Sprintf(format, args...)}
}

func NewTestcaseNotFound(format string, args ...any) error {
	return &TestcaseNotFound{Msg: fmt.Sprintf(format, args...)}
}
