package registry

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/kfusac/httpspec/internal/httperrors"
)

// ComparatorFunc asserts a relationship between a resolved check value and
// an expected value. It returns an error (wrapping the original
// AssertionError/TypeError semantics from the source) on mismatch.
type ComparatorFunc func(checkValue, expectValue any) error

func builtinComparators() map[string]ComparatorFunc {
	return map[string]ComparatorFunc{
		"equals":                        cmpEquals,
		"not_equals":                    cmpNotEquals,
		"less_than":                     numCompare(func(a, b float64) bool { return a < b }),
		"less_than_or_equals":           numCompare(func(a, b float64) bool { return a <= b }),
		"greater_than":                  numCompare(func(a, b float64) bool { return a > b }),
		"greater_than_or_equals":        numCompare(func(a, b float64) bool { return a >= b }),
		"string_equals":                 cmpStringEquals,
		"length_equals":                 lenCompare(func(a, b int) bool { return a == b }),
		"length_less_than":              lenCompare(func(a, b int) bool { return a < b }),
		"length_less_than_or_equals":    lenCompare(func(a, b int) bool { return a <= b }),
		"length_greater_than":           lenCompare(func(a, b int) bool { return a > b }),
		"length_greater_than_or_equals": lenCompare(func(a, b int) bool { return a >= b }),
		"contains":                      cmpContains,
		"contains_by":                   cmpContainsBy,
		"type_match":                    cmpTypeMatch,
		"regex_match":                   cmpRegexMatch,
		"startswith":                    cmpStartsWith,
		"endswith":                      cmpEndsWith,
	}
}

func cmpEquals(check, expect any) error {
	if looseEqual(check, expect) {
		return nil
	}
	return fail(check, expect, "equals")
}

func cmpNotEquals(check, expect any) error {
	if !looseEqual(check, expect) {
		return nil
	}
	return fail(check, expect, "not_equals")
}

func cmpStringEquals(check, expect any) error {
	if fmt.Sprintf("%v", check) == fmt.Sprintf("%v", expect) {
		return nil
	}
	return fail(check, expect, "string_equals")
}

func numCompare(ok func(a, b float64) bool) ComparatorFunc {
	return func(check, expect any) error {
		a, aOk := toFloat64(check)
		b, bOk := toFloat64(expect)
		if !aOk || !bOk {
			return &httperrors.ParamError{Msg: fmt.Sprintf("cannot numerically compare %v (%T) and %v (%T)", check, check, expect, expect)}
		}
		if ok(a, b) {
			return nil
		}
		return fail(check, expect, "numeric comparison")
	}
}

func lenCompare(ok func(a, b int) bool) ComparatorFunc {
	return func(check, expect any) error {
		expectLen, isInt := toInt(expect)
		if !isInt {
			return &httperrors.ParamError{Msg: fmt.Sprintf("length comparator expects an int, got %v (%T)", expect, expect)}
		}
		checkLen, err := length(check)
		if err != nil {
			return err
		}
		if ok(checkLen, expectLen) {
			return nil
		}
		return fail(check, expect, "length comparison")
	}
}

func cmpContains(check, expect any) error {
	switch c := check.(type) {
	case string:
		s := fmt.Sprintf("%v", expect)
		if strings.Contains(c, s) {
			return nil
		}
	case []any:
		for _, item := range c {
			if looseEqual(item, expect) {
				return nil
			}
		}
	default:
		return &httperrors.ParamError{Msg: fmt.Sprintf("contains: check value must be sequence/string, got %T", check)}
	}
	return fail(check, expect, "contains")
}

func cmpContainsBy(check, expect any) error {
	return cmpContains(expect, check)
}

func cmpTypeMatch(check, expect any) error {
	wantName, ok := expect.(string)
	if !ok {
		return &httperrors.ParamError{Msg: "type_match expects a type name string"}
	}
	gotName := typeName(check)
	if gotName == wantName {
		return nil
	}
	return fail(check, expect, "type_match")
}

func cmpRegexMatch(check, expect any) error {
	pattern, ok := expect.(string)
	if !ok {
		return &httperrors.ParamError{Msg: "regex_match expects a string pattern"}
	}
	s, ok := check.(string)
	if !ok {
		return &httperrors.ParamError{Msg: "regex_match expects a string check value"}
	}
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return &httperrors.ParamError{Msg: fmt.Sprintf("invalid regex %q: %v", pattern, err)}
	}
	if re.MatchString(s) {
		return nil
	}
	return fail(check, expect, "regex_match")
}

func cmpStartsWith(check, expect any) error {
	if strings.HasPrefix(fmt.Sprintf("%v", check), fmt.Sprintf("%v", expect)) {
		return nil
	}
	return fail(check, expect, "startswith")
}

func cmpEndsWith(check, expect any) error {
	if strings.HasSuffix(fmt.Sprintf("%v", check), fmt.Sprintf("%v", expect)) {
		return nil
	}
	return fail(check, expect, "endswith")
}

func fail(check, expect any, comparator string) error {
	return fmt.Errorf("%v (%T) %s %v (%T)", check, check, comparator, expect, expect)
}

func looseEqual(a, b any) bool {
	af, aIsNum := toFloat64(a)
	bf, bIsNum := toFloat64(b)
	if aIsNum && bIsNum {
		return af == bf
	}
	return reflect.DeepEqual(a, b)
}

func toFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	default:
		return 0, false
	}
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t == float64(int(t)) {
			return int(t), true
		}
	}
	return 0, false
}

func length(v any) (int, error) {
	switch t := v.(type) {
	case string:
		return len(t), nil
	case []any:
		return len(t), nil
	case map[string]any:
		return len(t), nil
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
			return rv.Len(), nil
		}
		return 0, &httperrors.ParamError{Msg: fmt.Sprintf("cannot take length of %T", v)}
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "NoneType"
	case string:
		return "str"
	case bool:
		return "bool"
	case int, int64:
		return "int"
	case float64, float32:
		return "float"
	case []any:
		return "list"
	case map[string]any:
		return "dict"
	default:
		return fmt.Sprintf("%T", v)
	}
}
