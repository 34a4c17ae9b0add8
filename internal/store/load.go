package store

import (
	"github.com/kfusac/httpspec/internal/docload"
	"github.com/kfusac/httpspec/internal/httperrors"
)

// LoadAPIFolder walks apiFolderPath for single-key `{"api": {"def": ..., ...}}`
// documents and registers one ApiDefinition per file entry, keyed by the
// func_name parsed out of its "def" signature. Mirrors loader.py's
// load_api_folder.
func LoadAPIFolder(apiFolderPath string, st *Store) error {
	files, err := docload.LoadFolderFiles(apiFolderPath)
	if err != nil {
		return err
	}

	for _, path := range files {
		items, err := docload.LoadBlockList(path)
		if err != nil {
			return err
		}

		for _, item := range items {
			block, ok := item["api"].(map[string]any)
			if !ok {
				return httperrors.NewFileFormatError("%s: expected a top-level list of \"api\" blocks", path)
			}

			def, ok := block["def"].(string)
			if !ok {
				return httperrors.NewFileFormatError("%s: api block missing \"def\" signature", path)
			}

			funcName, args, err := ParseDefSignature(def)
			if err != nil {
				return err
			}

			request, _ := block["request"].(map[string]any)
			st.RegisterAPI(&ApiDefinition{
				FuncName: funcName,
				Args:     args,
				Request:  request,
				Validate: blockList(block, "validate"),
				Extract:  blockList(block, "extract", "extract_binds"),
				Raw:      withoutKey(block, "def"),
			})
		}
	}

	return nil
}

// LoadTestFolder walks testFolderPath for test/suite documents. A file whose
// "config" block carries a "def" signature is a reusable suite, registered
// into st under its func_name; a file without one is a standalone runnable
// case, returned keyed by file path for the caller to assemble and run
// directly. Mirrors loader.py's load_test_folder.
func LoadTestFolder(testFolderPath string, st *Store) (map[string][]map[string]any, error) {
	files, err := docload.LoadFolderFiles(testFolderPath)
	if err != nil {
		return nil, err
	}

	runnable := map[string][]map[string]any{}

	for _, path := range files {
		items, err := docload.LoadBlockList(path)
		if err != nil {
			return nil, err
		}

		var config map[string]any
		var teststeps []map[string]any
		for _, item := range items {
			if block, ok := item["config"].(map[string]any); ok {
				config = block
				continue
			}
			if block, ok := item["test"].(map[string]any); ok {
				teststeps = append(teststeps, block)
			}
		}

		def, hasDef := config["def"].(string)
		if !hasDef {
			runnable[path] = items
			continue
		}

		funcName, args, err := ParseDefSignature(def)
		if err != nil {
			return nil, err
		}

		st.RegisterTestcase(&TestcaseDefinition{
			FuncName:  funcName,
			Args:      args,
			Config:    withoutKey(config, "def"),
			Teststeps: teststeps,
		})
	}

	return runnable, nil
}

func blockList(block map[string]any, keys ...string) []map[string]any {
	for _, k := range keys {
		raw, ok := block[k].([]any)
		if !ok {
			continue
		}
		out := make([]map[string]any, 0, len(raw))
		for _, item := range raw {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func withoutKey(m map[string]any, key string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k == key {
			continue
		}
		out[k] = v
	}
	return out
}
