package validate

import "testing"

func TestParseShape1Default(t *testing.T) {
	v, err := Parse(map[string]any{"check": "status_code", "expect": 200})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Comparator != "eq" || v.Check != "status_code" || v.Expect != 200 {
		t.Fatalf("unexpected validator: %+v", v)
	}
}

func TestParseShape2(t *testing.T) {
	v, err := Parse(map[string]any{"eq": []any{"status_code", 200}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Check != "status_code" || v.Comparator != "eq" || v.Expect != 200 {
		t.Fatalf("unexpected validator: %+v", v)
	}
}

func TestParseRoundTripIdentity(t *testing.T) {
	v, err := Parse(map[string]any{"eq": []any{"status_code", 200}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reparsed, err := Parse(v.ToMap())
	if err != nil {
		t.Fatalf("unexpected error on reparse: %v", err)
	}
	if reparsed.Check != v.Check || reparsed.Comparator != v.Comparator || reparsed.Expect != v.Expect {
		t.Fatalf("reparse not identity: %+v vs %+v", reparsed, v)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse(map[string]any{"check": "x"}); err == nil {
		t.Fatalf("expected ParamError for missing expect")
	}
	if _, err := Parse(map[string]any{"eq": []any{"only one"}}); err == nil {
		t.Fatalf("expected ParamError for wrong-length pair")
	}
}
