package mapping

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ReviewFile is the YAML document used to review and pin a mapping.
type ReviewFile struct {
	Version   string        `yaml:"version"`
	Source    string        `yaml:"source,omitempty"`
	Signature string        `yaml:"signature,omitempty"`
	Fields    []ReviewField `yaml:"fields"`
}

// ReviewField is one target entry of a review file.
type ReviewField struct {
	Target     string   `yaml:"target"`
	Source     string   `yaml:"source"`
	Confidence int      `yaml:"confidence,omitempty"`
	Reason     string   `yaml:"reason,omitempty"`
	Candidates []string `yaml:"candidates,omitempty"`
}

// LoadFile loads and parses a YAML review file from the given path.
func LoadFile(path string) (*ReviewFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a ReviewFile.
func Parse(data []byte) (*ReviewFile, error) {
	var rf ReviewFile

	err := yaml.Unmarshal(data, &rf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}

	if err := applyDefaults(&rf); err != nil {
		return nil, err
	}

	return &rf, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(rf *ReviewFile) error {
	if rf.Version == "" {
		rf.Version = "1"
	}

	for i := range rf.Fields {
		f := &rf.Fields[i]
		if f.Target == "" {
			return fmt.Errorf("mapping entry %d has no target", i+1)
		}

		if f.Source == "" {
			continue
		}

		if f.Reason == "" {
			f.Reason = ReasonManual.String()
			f.Confidence = 100
		}

		if _, err := ParseReason(f.Reason); err != nil {
			return fmt.Errorf("mapping entry %s: %w", f.Target, err)
		}
	}

	return nil
}

// Mapping converts the review file into a FieldMapping, in file order.
// Entries with an empty source are skipped.
func (rf *ReviewFile) Mapping() FieldMapping {
	var m FieldMapping

	for _, f := range rf.Fields {
		reason, _ := ParseReason(f.Reason)
		m = m.With(f.Target, Assignment{Source: f.Source, Confidence: f.Confidence, Reason: reason})
	}

	return m
}

// NewReviewFile lists every schema target with its current assignment.
// Unmapped targets get an empty source and the candidates given for them.
func NewReviewFile(schema Schema, m FieldMapping, candidates map[string][]string) *ReviewFile {
	rf := &ReviewFile{Version: "1"}

	for _, target := range schema {
		entry := ReviewField{Target: target}
		if a, ok := m.Get(target); ok {
			entry.Source = a.Source
			entry.Confidence = a.Confidence
			entry.Reason = a.Reason.String()
		} else {
			entry.Candidates = candidates[target]
		}

		rf.Fields = append(rf.Fields, entry)
	}

	return rf
}

// Marshal serializes a ReviewFile to YAML.
func Marshal(rf *ReviewFile) ([]byte, error) {
	return yaml.Marshal(rf)
}

// WriteFile writes a ReviewFile to the given path.
func WriteFile(rf *ReviewFile, path string) error {
	data, err := Marshal(rf)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write mapping file %s: %w", path, err)
	}

	return nil
}
