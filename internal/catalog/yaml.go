package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/slaguard/internal/domain"
)

// File is the on-disk layout of a rule file.
type File struct {
	Rules []domain.RuleSpec `yaml:"rules"`
}

// Parse decodes and validates a YAML rule file. Unknown fields, unknown
// condition or action tags and duplicate ids are rejected; every rule error
// is a *domain.ConfigurationError.
func Parse(r io.Reader) ([]*domain.Rule, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing rule file: %w", err)
	}

	seen := make(map[string]bool, len(f.Rules))
	out := make([]*domain.Rule, 0, len(f.Rules))
	for i, spec := range f.Rules {
		if seen[spec.ID] {
			return nil, &domain.ConfigurationError{RuleID: spec.ID, Field: fmt.Sprintf("rules[%d].id", i), Message: "duplicate rule id"}
		}
		seen[spec.ID] = true
		rule, err := spec.ToRule()
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, nil
}

func LoadFile(path string) ([]*domain.Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rule file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Export writes rules as a YAML rule file that Parse accepts.
func Export(w io.Writer, rules []*domain.Rule) error {
	f := File{Rules: make([]domain.RuleSpec, 0, len(rules))}
	for _, r := range rules {
		f.Rules = append(f.Rules, domain.SpecFromRule(r))
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encoding rules: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding rules: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
