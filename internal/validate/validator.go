// Package validate normalizes the two accepted validator document shapes
// into a canonical form and tracks per-check outcomes.
package validate

import (
	"encoding/json"

	"github.com/kfusac/httpspec/internal/httperrors"
)

// CheckResult is the outcome of evaluating one validator.
type CheckResult string

const (
	Unchecked CheckResult = "unchecked"
	Pass      CheckResult = "pass"
	Fail      CheckResult = "fail"
)

// Validator is the canonical {check, comparator, expect} form, plus the
// resolved check_value and final check_result recorded during evaluation.
type Validator struct {
	Check       any
	Comparator  string
	Expect      any
	CheckValue  any
	CheckResult CheckResult
}

// Parse accepts either of the two document shapes and returns the canonical
// form. Shape 1: {check, comparator?, expect|expected}. Shape 2: a
// single-key mapping {comparator: [check, expect]}.
func Parse(raw map[string]any) (*Validator, error) {
	if check, hasCheck := raw["check"]; hasCheck && len(raw) > 1 {
		var expect any
		var hasExpect bool
		if v, ok := raw["expect"]; ok {
			expect, hasExpect = v, true
		} else if v, ok := raw["expected"]; ok {
			expect, hasExpect = v, true
		}
		if !hasExpect {
			return nil, httperrors.NewParamError("invalid validator: %v", raw)
		}

		comparator := "eq"
		if c, ok := raw["comparator"].(string); ok && c != "" {
			comparator = c
		}

		return &Validator{
			Check:       check,
			Comparator:  comparator,
			Expect:      expect,
			CheckResult: Unchecked,
		}, nil
	}

	if len(raw) == 1 {
		for comparator, compareValues := range raw {
			pair, ok := compareValues.([]any)
			if !ok || len(pair) != 2 {
				return nil, httperrors.NewParamError("invalid validator: %v", raw)
			}
			return &Validator{
				Check:       pair[0],
				Comparator:  comparator,
				Expect:      pair[1],
				CheckResult: Unchecked,
			}, nil
		}
	}

	return nil, httperrors.NewParamError("invalid validator: %v", raw)
}

// Key returns the (check, comparator) identity used to merge validator
// lists. Non-hashable check values (maps/slices) are serialized to JSON so
// they can act as a map key.
func (v *Validator) Key() string {
	switch v.Check.(type) {
	case map[string]any, []any:
		b, err := json.Marshal(v.Check)
		if err != nil {
			return v.Comparator
		}
		return string(b) + "\x00" + v.Comparator
	default:
		return jsonScalar(v.Check) + "\x00" + v.Comparator
	}
}

func jsonScalar(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// ToMap renders the canonical form back into a single-key-free map, the
// shape 1 document form — used when a caller needs to re-serialize.
func (v *Validator) ToMap() map[string]any {
	return map[string]any{
		"check":      v.Check,
		"comparator": v.Comparator,
		"expect":     v.Expect,
	}
}
