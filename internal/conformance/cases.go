package conformance

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eelloooii/json-response-standard/pkg/response"
)

//go:embed cases.yaml
var defaultCases []byte

// Case is one invocation of the builder and its expected outcome. Nil
// Data, Status or Message mean the argument is omitted.
type Case struct {
	Name    string `yaml:"name"`
	Policy  string `yaml:"policy,omitempty"`
	Data    any    `yaml:"data,omitempty"`
	Status  any    `yaml:"status,omitempty"`
	Message any    `yaml:"message,omitempty"`
	Expect  Expect `yaml:"expect"`
}

type Expect struct {
	Status         *int        `yaml:"status,omitempty"`
	Message        *string     `yaml:"message,omitempty"`
	Data           any         `yaml:"data,omitempty"`
	Paths          []PathCheck `yaml:"paths,omitempty"`
	Exact          string      `yaml:"exact,omitempty"`
	OutputContains []string    `yaml:"output_contains,omitempty"`
	RoundTrip      bool        `yaml:"round_trip,omitempty"`

	Error    string `yaml:"error,omitempty"`
	Contains string `yaml:"contains,omitempty"`
}

// PathCheck compares a dotted path inside data (list indexes are numbers).
type PathCheck struct {
	Path   string `yaml:"path"`
	Equals any    `yaml:"equals"`
}

func (e Expect) wantsError() bool {
	return e.Error != ""
}

func (e Expect) hasSuccessChecks() bool {
	return e.Status != nil || e.Message != nil || e.Data != nil || len(e.Paths) > 0 ||
		e.Exact != "" || len(e.OutputContains) > 0 || e.RoundTrip
}

// AppliesTo reports whether the case runs against a binding with policy p.
func (c Case) AppliesTo(p response.Policy) bool {
	return c.Policy == "" || response.Policy(c.Policy) == p
}

type caseFile struct {
	Cases []Case `yaml:"cases"`
}

// DefaultCases returns the embedded suite.
func DefaultCases() ([]Case, error) {
	return LoadCases(bytes.NewReader(defaultCases))
}

func LoadCasesFile(path string) ([]Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cases: %w", err)
	}
	defer f.Close()
	return LoadCases(f)
}

// LoadCases decodes a case file. Unknown keys are rejected.
func LoadCases(r io.Reader) ([]Case, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file caseFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode cases: %w", err)
	}
	if len(file.Cases) == 0 {
		return nil, fmt.Errorf("case file has no cases")
	}

	seen := make(map[string]struct{}, len(file.Cases))
	for i, c := range file.Cases {
		if c.Name == "" {
			return nil, fmt.Errorf("case %d: missing name", i)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("case %q: duplicate name", c.Name)
		}
		seen[c.Name] = struct{}{}

		if c.Policy != "" {
			if _, err := response.ParsePolicy(c.Policy); err != nil {
				return nil, fmt.Errorf("case %q: %w", c.Name, err)
			}
		}
		if c.Expect.wantsError() && c.Expect.hasSuccessChecks() {
			return nil, fmt.Errorf("case %q: expect either an error or output checks, not both", c.Name)
		}
	}
	return file.Cases, nil
}
