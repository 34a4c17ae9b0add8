package store

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
}

func TestLoadAPIFolderRegistersByFuncName(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "login.yaml", `
- api:
    def: api_login($username, $password)
    request:
      method: POST
      url: /login
      json:
        username: $username
        password: $password
    validate:
      - check: status_code
        comparator: equals
        expect: 200
`)

	st := New()
	if err := LoadAPIFolder(dir, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	def, err := st.GetAPI("api_login")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(def.Args) != 2 || def.Args[0] != "$username" || def.Args[1] != "$password" {
		t.Fatalf("unexpected args: %+v", def.Args)
	}
	if len(def.Validate) != 1 {
		t.Fatalf("expected 1 validator, got %d", len(def.Validate))
	}
	if _, hasDef := def.Raw["def"]; hasDef {
		t.Fatal("expected \"def\" key stripped from Raw")
	}
}

func TestLoadTestFolderSeparatesReusableSuitesFromRunnableCases(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "suite_checkout.yaml", `
- config:
    def: suite_checkout($username)
    name: checkout flow
- test:
    name: add to cart
    request:
      method: POST
      url: /cart
`)
	writeFixture(t, dir, "smoke.yaml", `
- config:
    name: smoke test
- test:
    name: ping
    request:
      method: GET
      url: /ping
`)

	st := New()
	runnable, err := LoadTestFolder(dir, st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	suite, err := st.GetTestcase("suite_checkout")
	if err != nil {
		t.Fatalf("expected suite_checkout registered: %v", err)
	}
	if len(suite.Args) != 1 || suite.Args[0] != "$username" {
		t.Fatalf("unexpected args: %+v", suite.Args)
	}
	if len(suite.Teststeps) != 1 {
		t.Fatalf("expected 1 teststep, got %d", len(suite.Teststeps))
	}

	if len(runnable) != 1 {
		t.Fatalf("expected 1 runnable standalone case, got %d", len(runnable))
	}
	for _, items := range runnable {
		if len(items) != 2 {
			t.Fatalf("expected 2 raw blocks (config+test), got %d", len(items))
		}
	}
}
