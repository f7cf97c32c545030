package main

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// PIDFile is the content of pids.yaml.
type PIDFile struct {
	// Standard is assumed for parameters that do not name one.
	Standard   string   `yaml:"standard"`
	Parameters []PIDDef `yaml:"parameters"`
}

// PIDDef is one parameter.
type PIDDef struct {
	Name     string `yaml:"name"`
	PID      uint16 `yaml:"pid"`
	Standard string `yaml:"standard"`
}

var pidNamePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// LoadPIDFile reads and validates a PID YAML file.
func LoadPIDFile(path string) (*PIDFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePIDFile(data)
}

// ParsePIDFile decodes and validates PID YAML.
func ParsePIDFile(data []byte) (*PIDFile, error) {
	var f PIDFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if f.Standard == "" {
		return nil, errors.New("standard must be set")
	}
	if len(f.Parameters) == 0 {
		return nil, errors.New("no parameters")
	}

	seen := make(map[uint16]string, len(f.Parameters))
	for _, p := range f.Parameters {
		if !pidNamePattern.MatchString(p.Name) {
			return nil, fmt.Errorf("parameter name %q must be upper snake case", p.Name)
		}
		if p.PID == 0 {
			return nil, fmt.Errorf("parameter %s has no pid", p.Name)
		}
		if other, dup := seen[p.PID]; dup {
			return nil, fmt.Errorf("pid 0x%04X used by %s and %s", p.PID, other, p.Name)
		}
		seen[p.PID] = p.Name
	}
	return &f, nil
}
