// Package rules bundles every cleaning table and loads versioned overrides from YAML.
package rules

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/superawat/Gate-QA/internal/classifier"
	"github.com/superawat/Gate-QA/internal/sanitizer"
	"github.com/superawat/Gate-QA/internal/tags"
)

// BuiltinVersion identifies the compiled-in tables.
const BuiltinVersion = "builtin"

// Set is the complete table set used by one run.
type Set struct {
	Version     string
	Tags        tags.Rules
	Branches    classifier.Tables
	Attribution []string
}

// Default returns the compiled-in tables.
func Default() Set {
	return Set{
		Version:     BuiltinVersion,
		Tags:        tags.DefaultRules(),
		Branches:    classifier.DefaultTables(),
		Attribution: append([]string(nil), sanitizer.DefaultAttributionNames...),
	}
}

// file is the on-disk shape. Omitted or empty lists keep the built-in table.
type file struct {
	Version        string            `yaml:"version"`
	Blocklist      []string          `yaml:"blocklist"`
	Renames        map[string]string `yaml:"renames"`
	GateMarker     string            `yaml:"gate_marker"`
	ForeignCodes   []string          `yaml:"foreign_codes"`
	ForeignInfixes []string          `yaml:"foreign_infixes"`
	TargetInfixes  []string          `yaml:"target_infixes"`
	Attribution    []string          `yaml:"attribution"`
}

// ErrMissingVersion is returned for rule files without a version.
var ErrMissingVersion = errors.New("rules file has no version")

// Load returns the built-in set when path is empty, otherwise the built-in set
// overlaid with the file's tables.
func Load(path string) (Set, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read rules file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse overlays YAML rule data on the built-in set and validates the result.
func Parse(data []byte) (Set, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Set{}, fmt.Errorf("parse rules: %w", err)
	}
	if f.Version == "" {
		return Set{}, ErrMissingVersion
	}

	set := Default()
	set.Version = f.Version

	if len(f.Blocklist) > 0 {
		set.Tags.Blocklist = f.Blocklist
	}
	if len(f.Renames) > 0 {
		set.Tags.Renames = f.Renames
	}
	if f.GateMarker != "" {
		set.Branches.GateMarker = f.GateMarker
	}
	if len(f.ForeignCodes) > 0 {
		set.Branches.ForeignCodes = f.ForeignCodes
	}
	if len(f.ForeignInfixes) > 0 {
		set.Branches.ForeignInfixes = f.ForeignInfixes
	}
	if len(f.TargetInfixes) > 0 {
		set.Branches.TargetInfixes = f.TargetInfixes
	}
	if len(f.Attribution) > 0 {
		set.Attribution = f.Attribution
	}

	if err := set.Validate(); err != nil {
		return Set{}, err
	}
	return set, nil
}

// Validate checks the set produces stable output across runs.
func (s Set) Validate() error {
	if err := s.Tags.Validate(); err != nil {
		return fmt.Errorf("tag rules: %w", err)
	}
	if s.Branches.GateMarker == "" {
		return errors.New("branch rules: empty gate marker")
	}
	return nil
}
