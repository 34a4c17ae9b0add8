package expr

import "testing"

func TestExtractVariables(t *testing.T) {
	cases := []struct {
		content string
		want    []string
	}{
		{"$variable", []string{"variable"}},
		{"/blog/$postid", []string{"postid"}},
		{"/$var1/$var2", []string{"var1", "var2"}},
		{"abc", nil},
		{"$user and $userid", []string{"user", "userid"}},
	}

	for _, c := range cases {
		got := ExtractVariables(c.content)
		if len(got) != len(c.want) {
			t.Fatalf("ExtractVariables(%q) = %v, want %v", c.content, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("ExtractVariables(%q)[%d] = %q, want %q", c.content, i, got[i], c.want[i])
			}
		}
	}
}

func TestExtractFunctions(t *testing.T) {
	cases := []struct {
		content string
		want    []string
	}{
		{"${func(5)}", []string{"func(5)"}},
		{"${func(a=1, b=2)}", []string{"func(a=1, b=2)"}},
		{"/api/1000?_t=${get_timestamp()}", []string{"get_timestamp()"}},
		{"/api/${add(1, 2)}", []string{"add(1, 2)"}},
		{"/api/${add(1 ,2)}?_t=${get_timestamp()}", []string{"add(1 ,2)", "get_timestamp()"}},
	}

	for _, c := range cases {
		got := ExtractFunctions(c.content)
		if len(got) != len(c.want) {
			t.Fatalf("ExtractFunctions(%q) = %v, want %v", c.content, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("ExtractFunctions(%q)[%d] = %q, want %q", c.content, i, got[i], c.want[i])
			}
		}
	}
}

func TestParseFunction(t *testing.T) {
	meta, err := ParseFunction("func()")
	if err != nil || meta.FuncName != "func" || len(meta.Args) != 0 {
		t.Fatalf("unexpected result for func(): %+v, err=%v", meta, err)
	}

	meta, err = ParseFunction("func(1, 2, a=3, b=4)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meta.Args) != 2 || meta.Args[0] != int64(1) || meta.Args[1] != int64(2) {
		t.Fatalf("unexpected args: %+v", meta.Args)
	}
	if meta.Kwargs["a"] != int64(3) || meta.Kwargs["b"] != int64(4) {
		t.Fatalf("unexpected kwargs: %+v", meta.Kwargs)
	}

	if _, err := ParseFunction("not a call"); err == nil {
		t.Fatalf("expected FunctionNotFound for malformed call")
	}
}

func TestParseStringValue(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{"123", int64(123)},
		{"12.2", 12.2},
		{"abc", "abc"},
		{"$var", "$var"},
		{"true", true},
		{"false", false},
		{"null", nil},
	}

	for _, c := range cases {
		got := ParseStringValue(c.in)
		if got != c.want {
			t.Fatalf("ParseStringValue(%q) = %#v, want %#v", c.in, got, c.want)
		}
	}
}
