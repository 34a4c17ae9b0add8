package param

import (
	"testing"

	"github.com/kfusac/httpspec/internal/ordered"
	"github.com/kfusac/httpspec/internal/subst"
)

func TestExpandEmpty(t *testing.T) {
	r := subst.New(ordered.New(), subst.Funcs{}, nil)
	got, err := Expand(nil, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestExpandSingleInlineList(t *testing.T) {
	r := subst.New(ordered.New(), subst.Funcs{}, nil)
	decls := []Declaration{
		{Name: "user_agent", Content: []any{"a", "b", "c"}},
	}
	got, err := Expand(decls, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
}

func TestExpandCartesianProduct(t *testing.T) {
	r := subst.New(ordered.New(), subst.Funcs{}, nil)
	decls := []Declaration{
		{Name: "user_agent", Content: []any{"a", "b", "c"}},
		{Name: "username-password", Content: []any{
			[]any{"u1", "p1"},
			[]any{"u2", "p2"},
		}},
	}
	got, err := Expand(decls, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("expected 6 rows (3*2), got %d", len(got))
	}
	first := got[0]
	if first["user_agent"] != "a" || first["username"] != "u1" || first["password"] != "p1" {
		t.Fatalf("unexpected first row: %+v", first)
	}
}
