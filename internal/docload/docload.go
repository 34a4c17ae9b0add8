// Package docload decodes the on-disk document formats the core consumes:
// YAML/JSON test, API, and suite files, CSV parameter data, and .env
// environment files. The core itself never touches the filesystem; this
// package is the concrete edge that does.
package docload

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kfusac/httpspec/internal/httperrors"
)

// LoadFile dispatches on file extension: .json via encoding/json, .yaml/.yml
// via yaml.v3, .csv via encoding/csv (returned as []any of row mappings so
// it composes with the other loaders' return shape). Any other extension
// yields an empty list rather than an error, per the loader's "skip unknown
// files" folder-walk convention.
func LoadFile(path string) (any, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, httperrors.NewFileNotFound("%s does not exist.", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSONFile(path)
	case ".yaml", ".yml":
		return loadYAMLFile(path)
	case ".csv":
		rows, err := LoadCSVFile(path)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(rows))
		for i, row := range rows {
			out[i] = row
		}
		return out, nil
	default:
		return []any{}, nil
	}
}

func loadYAMLFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, httperrors.NewFileNotFound("%s does not exist.", path)
	}

	var content any
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, httperrors.NewFileFormatError("YAML file format error: %s (%v)", path, err)
	}
	if err := checkFormat(path, content); err != nil {
		return nil, err
	}
	return normalizeYAML(content), nil
}

func loadJSONFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, httperrors.NewFileNotFound("%s does not exist.", path)
	}

	var content any
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, httperrors.NewFileFormatError("JSON file format error: %s (%v)", path, err)
	}
	if err := checkFormat(path, content); err != nil {
		return nil, err
	}
	return content, nil
}

func checkFormat(path string, content any) error {
	switch v := content.(type) {
	case nil:
		return httperrors.NewFileFormatError("testcase file content is empty: %s", path)
	case []any:
		if len(v) == 0 {
			return httperrors.NewFileFormatError("testcase file content is empty: %s", path)
		}
	case map[string]any:
		if len(v) == 0 {
			return httperrors.NewFileFormatError("testcase file content is empty: %s", path)
		}
	default:
		return httperrors.NewFileFormatError("testcase file content must be a mapping or sequence: %s", path)
	}
	return nil
}

// normalizeYAML recursively converts yaml.v3's map[string]interface{}
// decoding (already string-keyed, unlike yaml.v2's map[interface{}]interface{})
// into plain map[string]any/[]any so downstream packages never special-case
// the decoder's output type.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeYAML(item)
		}
		return out
	default:
		return v
	}
}

// LoadCSVFile reads a header-row CSV file into a slice of header-keyed
// mappings, per spec.md §6.
func LoadCSVFile(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, httperrors.NewFileNotFound("%s does not exist.", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, httperrors.NewFileFormatError("CSV file format error: %s (%v)", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]map[string]any, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadEnvFile reads KEY=VALUE or KEY:VALUE lines (one per line) from path
// and mirrors them into the process environment via os.Setenv, per
// spec.md §6's init-once requirement. A missing file returns an empty,
// non-error mapping — the .env file is optional.
func LoadEnvFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	vars := map[string]string{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		var key, value string
		if idx := strings.Index(line, "="); idx >= 0 {
			key, value = line[:idx], line[idx+1:]
		} else if idx := strings.Index(line, ":"); idx >= 0 {
			key, value = line[:idx], line[idx+1:]
		} else {
			return nil, httperrors.NewFileFormatError(".env format error: %s", line)
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		vars[key] = value
		if err := os.Setenv(key, value); err != nil {
			return nil, err
		}
	}
	return vars, nil
}

// LoadBlockList loads path and asserts its content is a top-level list of
// single-key mappings — the shape every test/suite/api document document
// takes (a sequence of "config"/"test"/"api" blocks).
func LoadBlockList(path string) ([]map[string]any, error) {
	raw, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, httperrors.NewFileFormatError("%s: expected a top-level list of blocks", path)
	}

	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, httperrors.NewFileFormatError("%s: each block must be a mapping", path)
		}
		out = append(out, m)
	}
	return out, nil
}

// LoadFolderFiles walks folderPath recursively, returning every file whose
// extension is .yml/.yaml/.json, sorted by directory walk order.
func LoadFolderFiles(folderPath string) ([]string, error) {
	if _, err := os.Stat(folderPath); err != nil {
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(folderPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yml", ".yaml", ".json":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
