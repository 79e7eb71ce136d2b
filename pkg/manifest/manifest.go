// Package manifest models .pre-commit-hooks.yaml, the file a hook
// repository publishes to declare its hook ids and their defaults.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the manifest file name at a hook repository's root.
const FileName = ".pre-commit-hooks.yaml"

// Hook is one hook definition as published by a hook repository.
type Hook struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Entry       string `yaml:"entry" json:"entry"`
	Language    string `yaml:"language,omitempty" json:"language,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	Files        string   `yaml:"files,omitempty" json:"files,omitempty"`
	Exclude      string   `yaml:"exclude,omitempty" json:"exclude,omitempty"`
	Types        []string `yaml:"types,omitempty" json:"types,omitempty"`
	TypesOr      []string `yaml:"types_or,omitempty" json:"types_or,omitempty"`
	ExcludeTypes []string `yaml:"exclude_types,omitempty" json:"exclude_types,omitempty"`

	Args                   []string `yaml:"args,omitempty" json:"args,omitempty"`
	Stages                 []string `yaml:"stages,omitempty" json:"stages,omitempty"`
	AdditionalDependencies []string `yaml:"additional_dependencies,omitempty" json:"additional_dependencies,omitempty"`
	LanguageVersion        string   `yaml:"language_version,omitempty" json:"language_version,omitempty"`
	MinimumVersion         string   `yaml:"minimum_pre_commit_version,omitempty" json:"minimum_pre_commit_version,omitempty"`

	AlwaysRun     bool  `yaml:"always_run,omitempty" json:"always_run,omitempty"`
	FailFast      bool  `yaml:"fail_fast,omitempty" json:"fail_fast,omitempty"`
	PassFilenames *bool `yaml:"pass_filenames,omitempty" json:"pass_filenames,omitempty"`
	RequireSerial bool  `yaml:"require_serial,omitempty" json:"require_serial,omitempty"`
	Verbose       bool  `yaml:"verbose,omitempty" json:"verbose,omitempty"`
}

// Manifest is the ordered list of hooks a repository publishes.
type Manifest []Hook

// IDs returns the hook ids in manifest order.
func (m Manifest) IDs() []string {
	ids := make([]string, len(m))
	for i, h := range m {
		ids[i] = h.ID
	}
	return ids
}

// ByID returns the hook declaring id.
func (m Manifest) ByID(id string) (Hook, bool) {
	for _, h := range m {
		if h.ID == id {
			return h, true
		}
	}
	return Hook{}, false
}

// Parse strictly decodes manifest bytes.
func Parse(data []byte) (Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("manifest is empty")
		}
		return nil, err
	}
	return m, nil
}

// Load reads and strictly decodes the manifest at path.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}
