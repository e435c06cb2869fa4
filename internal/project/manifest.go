package project

import (
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Manifest is a generic view over a parsed structured-config document,
// so analyzers can query manifests without re-reading or re-parsing.
type Manifest struct {
	doc map[string]any
}

// Bounded allow-list of structured config files parsed at snapshot
// build time, keyed by filename with its decode function.
var manifestParsers = map[string]func([]byte) (map[string]any, error){
	"package.json":   parseJSONDoc,
	"composer.json":  parseJSONDoc,
	"Cargo.toml":     parseTOMLDoc,
	"pyproject.toml": parseTOMLDoc,
	"pubspec.yaml":   parseYAMLDoc,
}

func (s *Snapshot) parseManifests() {
	for name, parse := range manifestParsers {
		if !s.fileSet[name] {
			continue
		}
		data, err := s.ReadFile(name)
		if err != nil {
			s.Warnings = append(s.Warnings, fmt.Sprintf("unreadable: %s: %v", name, err))
			continue
		}
		doc, err := parse(data)
		if err != nil {
			s.Warnings = append(s.Warnings, fmt.Sprintf("unparsable manifest: %s: %v", name, err))
			continue
		}
		s.Manifests[name] = &Manifest{doc: doc}
	}
}

func parseJSONDoc(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func parseTOMLDoc(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func parseYAMLDoc(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// String looks up a nested string value by key path.
func (m *Manifest) String(path ...string) (string, bool) {
	v, ok := m.lookup(path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Map looks up a nested object by key path.
func (m *Manifest) Map(path ...string) (map[string]any, bool) {
	v, ok := m.lookup(path)
	if !ok {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}

// Has reports whether the key path resolves to any value.
func (m *Manifest) Has(path ...string) bool {
	_, ok := m.lookup(path)
	return ok
}

func (m *Manifest) lookup(path []string) (any, bool) {
	if m == nil {
		return nil, false
	}
	var cur any = m.doc
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
