// Command httpspec is the CLI entrypoint: it wires the Definition Store,
// Helper Registry, resty-backed HTTP client, and runner together, either to
// execute test files directly (`run`) or to serve them behind the optional
// trigger API (`serve`).
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kfusac/httpspec/internal/assemble"
	"github.com/kfusac/httpspec/internal/config"
	"github.com/kfusac/httpspec/internal/docload"
	"github.com/kfusac/httpspec/internal/httpclient"
	"github.com/kfusac/httpspec/internal/registry"
	"github.com/kfusac/httpspec/internal/runner"
	"github.com/kfusac/httpspec/internal/server"
	"github.com/kfusac/httpspec/internal/store"
)

// settingsFile is the optional HTTP client override file httpspec looks for
// in the current working directory: a "http_client" block of the same
// fields internal/config.HTTPClientConfig decodes, letting an operator
// override timeout/retry behavior without recompiling.
const settingsFile = "httpspec.config.yaml"

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "run":
		if len(os.Args) != 3 {
			usage()
		}
		if err := runCommand(os.Args[2]); err != nil {
			log.Fatalf("run failed: %v", err)
		}
	case "serve":
		if len(os.Args) != 4 {
			usage()
		}
		if err := serveCommand(os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("serve failed: %v", err)
		}
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: httpspec run <path>")
	fmt.Fprintln(os.Stderr, "       httpspec serve <flows-dir> <addr>")
	os.Exit(2)
}

// newRunner first mirrors the optional .env file in the working directory
// into the process environment, so it is loaded before anything runs.
func newRunner() (*runner.Runner, error) {
	if _, err := docload.LoadEnvFile(".env"); err != nil {
		return nil, err
	}
	clientCfg, err := loadHTTPClientConfig()
	if err != nil {
		return nil, err
	}
	return runner.New(store.New(), registry.New(), httpclient.New(clientCfg.ToClientConfig())), nil
}

// loadHTTPClientConfig reads settingsFile from the working directory if
// present; otherwise it returns the struct-tag defaults unchanged.
func loadHTTPClientConfig() (*config.HTTPClientConfig, error) {
	if _, err := os.Stat(settingsFile); err != nil {
		return config.Default()
	}

	raw, err := docload.LoadFile(settingsFile)
	if err != nil {
		return nil, err
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected a top-level mapping", settingsFile)
	}

	httpBlock, _ := doc["http_client"].(map[string]any)
	return config.FromMap(httpBlock)
}

// runCommand loads api/ and suite/ definitions (if present under path),
// then assembles and executes every runnable test document: path itself if
// it is a single file, or every standalone document discovered under it.
func runCommand(path string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	var runnable map[string][]map[string]any
	if info.IsDir() {
		runnable, err = loadProject(path, r.Store)
		if err != nil {
			return err
		}
	} else {
		items, err := docload.LoadBlockList(path)
		if err != nil {
			return err
		}
		runnable = map[string][]map[string]any{path: items}
	}

	allPassed := true
	for name, items := range runnable {
		doc, err := assemble.AssembleTestFile(items, r.Store)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		reports, err := r.RunDocument(context.Background(), doc)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		for _, rep := range reports {
			status := "PASS"
			if !rep.Passed() {
				status, allPassed = "FAIL", false
			}
			fmt.Printf("[%s] %s :: %s\n", status, name, rep.Name)
			for _, step := range rep.Steps {
				stepStatus := "ok"
				if step.Err != nil {
					stepStatus = step.Err.Error()
				}
				fmt.Printf("    - %s: %s\n", step.Name, stepStatus)
			}
		}
	}

	if !allPassed {
		os.Exit(1)
	}
	return nil
}

// loadProject registers api/ and suite/ definitions into st, returning every
// standalone (non-reusable) document discovered under root — suite/ files
// without a "def" signature, plus every other .yml/.yaml/.json file found
// anywhere under root outside api/ and suite/.
func loadProject(root string, st *store.Store) (map[string][]map[string]any, error) {
	runnable := map[string][]map[string]any{}

	apiDir := filepath.Join(root, "api")
	if isDir(apiDir) {
		if err := store.LoadAPIFolder(apiDir, st); err != nil {
			return nil, err
		}
	}

	suiteDir := filepath.Join(root, "suite")
	if isDir(suiteDir) {
		standalone, err := store.LoadTestFolder(suiteDir, st)
		if err != nil {
			return nil, err
		}
		for name, items := range standalone {
			runnable[name] = items
		}
	}

	files, err := docload.LoadFolderFiles(root)
	if err != nil {
		return nil, err
	}
	for _, path := range files {
		if strings.HasPrefix(path, apiDir) || strings.HasPrefix(path, suiteDir) {
			continue
		}
		items, err := docload.LoadBlockList(path)
		if err != nil {
			return nil, err
		}
		runnable[path] = items
	}

	return runnable, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func serveCommand(flowsDir, addr string) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	r, err := newRunner()
	if err != nil {
		return err
	}
	s := server.New(r)
	return s.Start(context.Background(), addr, flowsDir)
}
