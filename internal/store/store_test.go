package store

import "testing"

func TestParseDefSignatureNoArgs(t *testing.T) {
	name, args, err := ParseDefSignature("api_login()")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "api_login" || len(args) != 0 {
		t.Fatalf("unexpected result: %q %v", name, args)
	}
}

func TestParseDefSignatureWithArgs(t *testing.T) {
	name, args, err := ParseDefSignature("suite_checkout($username, $password)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "suite_checkout" || len(args) != 2 || args[0] != "$username" || args[1] != "$password" {
		t.Fatalf("unexpected result: %q %v", name, args)
	}
}

func TestParseDefSignatureInvalid(t *testing.T) {
	if _, _, err := ParseDefSignature("not a signature"); err == nil {
		t.Fatal("expected an error for a malformed signature")
	}
}

func TestRegisterAndGetAPI(t *testing.T) {
	s := New()
	s.RegisterAPI(&ApiDefinition{FuncName: "api_login", Request: map[string]any{"method": "POST"}})

	def, err := s.GetAPI("api_login")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.Request["method"] != "POST" {
		t.Fatalf("unexpected definition: %+v", def)
	}
}

func TestGetAPINotFound(t *testing.T) {
	s := New()
	if _, err := s.GetAPI("missing"); err == nil {
		t.Fatal("expected ApiNotFound error")
	}
}

func TestRegisterAPIDuplicateOverwrites(t *testing.T) {
	s := New()
	s.RegisterAPI(&ApiDefinition{FuncName: "api_login", Request: map[string]any{"method": "GET"}})
	s.RegisterAPI(&ApiDefinition{FuncName: "api_login", Request: map[string]any{"method": "POST"}})

	def, _ := s.GetAPI("api_login")
	if def.Request["method"] != "POST" {
		t.Fatalf("expected later registration to win, got %+v", def)
	}
}

func TestGetTestcaseNotFound(t *testing.T) {
	s := New()
	if _, err := s.GetTestcase("missing"); err == nil {
		t.Fatal("expected TestcaseNotFound error")
	}
}
