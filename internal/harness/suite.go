package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// suiteSchema closes the CUE suite structure. Definitions are closed, so a
// misspelled field fails unification.
const suiteSchema = `
#Case: {
	name:    string
	input:   string
	expect?: string
	error?:  "syntax"
}

#Suite: {
	name:        string
	description: string
	cases: [...#Case]
}
`

// LoadSuite reads a suite file. The extension selects the format:
// .yaml and .yml are decoded strictly, .cue is compiled and checked
// against the suite schema. Returns an error if the file doesn't exist,
// is malformed, contains unknown fields, or is missing required fields.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	var suite *Suite
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		suite, err = decodeYAML(data)
	case ".cue":
		suite, err = decodeCUE(path, data)
	default:
		return nil, fmt.Errorf("unsupported suite format %q", ext)
	}
	if err != nil {
		return nil, err
	}

	if err := validateSuite(suite); err != nil {
		return nil, fmt.Errorf("invalid suite %s: %w", path, err)
	}
	return suite, nil
}

// FindSuiteFiles returns the suite files directly inside dir, sorted by name.
func FindSuiteFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read suites directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".cue":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func decodeYAML(data []byte) (*Suite, error) {
	var suite Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &suite, nil
}

func decodeCUE(path string, data []byte) (*Suite, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(suiteSchema, cue.Filename("suite-schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling suite schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %w", err)
	}

	suiteVal := value.LookupPath(cue.ParsePath("suite"))
	if !suiteVal.Exists() {
		return nil, fmt.Errorf("failed to parse CUE: no top-level suite field")
	}

	unified := schema.LookupPath(cue.ParsePath("#Suite")).Unify(suiteVal)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("failed to validate CUE suite: %w", err)
	}

	var suite Suite
	if err := unified.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to decode CUE suite: %w", err)
	}
	return &suite, nil
}

// validateSuite checks that required fields are present and valid.
func validateSuite(s *Suite) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate name %q", i, c.Name)
		}
		seen[c.Name] = true

		switch {
		case c.Expect != nil && c.Error != "":
			return fmt.Errorf("cases[%d] %s: expect and error are mutually exclusive", i, c.Name)
		case c.Expect == nil && c.Error == "":
			return fmt.Errorf("cases[%d] %s: one of expect or error is required", i, c.Name)
		case c.Error != "" && c.Error != ExpectSyntaxError:
			return fmt.Errorf("cases[%d] %s: error must be %q, got %q", i, c.Name, ExpectSyntaxError, c.Error)
		}
	}

	return nil
}
