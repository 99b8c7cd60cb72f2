// Package config holds the hypervisor settings tree and decides which managed
// services have enough configuration to run.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Section is a flat group of related settings, e.g. identity or rabbitmq.
type Section map[string]string

// Tree is the nested settings mapping: section name -> key -> value. It is
// read-only here; only the external configuration store mutates it.
type Tree map[string]Section

// Load reads a settings tree from a YAML file. Scalar values of any YAML type
// are coerced to strings so the tree keeps its section -> key -> string shape.
func Load(path string) (Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}
	var raw map[string]map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	tree := Tree{}
	for name, section := range raw {
		tree[name] = Section{}
		for key, value := range section {
			if value == nil {
				tree[name][key] = ""
				continue
			}
			tree[name][key] = fmt.Sprintf("%v", value)
		}
	}
	return tree, nil
}

// LoadOrEmpty is Load for the default settings location: a file that does not
// exist yet is an empty tree, not an error. Nothing has been configured, and
// incompleteness is data here.
func LoadOrEmpty(path string) (Tree, error) {
	tree, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Tree{}, nil
	}
	return tree, err
}

// Get returns the value at section/key, or the empty string if either is absent.
func (t Tree) Get(section, key string) string {
	return t[section][key]
}

// GetDefault is Get with a fallback for absent or empty values.
func (t Tree) GetDefault(section, key, fallback string) string {
	if v := t.Get(section, key); v != "" {
		return v
	}
	return fallback
}

// CheckConfigPresent reports whether a dotted path resolves to a non-empty
// value. A bare section name checks that the section exists with at least one
// key; "section.key" checks that the key exists with a non-empty value.
func CheckConfigPresent(path string, cfg Tree) bool {
	section, key, pointLookup := strings.Cut(path, ".")
	sec, ok := cfg[section]
	if !ok {
		return false
	}
	if !pointLookup {
		return len(sec) > 0
	}
	return sec[key] != ""
}
