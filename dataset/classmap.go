package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
)

// UnknownLabel is returned for class indices missing from a ClassMap
const UnknownLabel = "Unknown"

// ClassEntry binds a class name to its output index. In JSON it is the
// two-element array [name, index].
type ClassEntry struct {
	Name  string `yaml:"name" msgpack:"name"`
	Index int    `yaml:"index" msgpack:"index"`
}

func (e ClassEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Name, e.Index})
}

func (e *ClassEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("class entry must be a [name, index] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("class entry must have 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.Name); err != nil {
		return fmt.Errorf("class name: %w", err)
	}
	if err := json.Unmarshal(pair[1], &e.Index); err != nil {
		return fmt.Errorf("class index: %w", err)
	}
	return nil
}

// ClassMap is the ordered list of classes a model was trained on
type ClassMap []ClassEntry

// NewClassMap assigns indices 0..n-1 to names in the given order
func NewClassMap(names ...string) ClassMap {
	m := make(ClassMap, len(names))
	for i, name := range names {
		m[i] = ClassEntry{Name: name, Index: i}
	}
	return m
}

// Label returns the class name for a predicted index, or UnknownLabel.
// The first matching entry wins.
func (m ClassMap) Label(index int) string {
	for _, e := range m {
		if e.Index == index {
			return e.Name
		}
	}
	return UnknownLabel
}

// HasIndex reports whether some class uses index
func (m ClassMap) HasIndex(index int) bool {
	return slices.ContainsFunc(m, func(e ClassEntry) bool { return e.Index == index })
}

// Index returns the index assigned to a class name
func (m ClassMap) Index(name string) (int, bool) {
	for _, e := range m {
		if e.Name == name {
			return e.Index, true
		}
	}
	return 0, false
}

// NumClasses returns the width of a one-hot label, max index + 1
func (m ClassMap) NumClasses() int {
	n := 0
	for _, e := range m {
		n = max(n, e.Index+1)
	}
	return n
}

// Names returns class names ordered by index
func (m ClassMap) Names() []string {
	sorted := slices.Clone(m)
	slices.SortStableFunc(sorted, func(a, b ClassEntry) int { return a.Index - b.Index })

	names := make([]string, len(sorted))
	for i, e := range sorted {
		names[i] = e.Name
	}
	return names
}

// Validate rejects negative indices and duplicated names or indices
func (m ClassMap) Validate() error {
	names := make(map[string]bool, len(m))
	indices := make(map[int]bool, len(m))
	for _, e := range m {
		if e.Index < 0 {
			return fmt.Errorf("class %q has negative index %d", e.Name, e.Index)
		}
		if names[e.Name] {
			return fmt.Errorf("duplicate class name %q", e.Name)
		}
		if indices[e.Index] {
			return fmt.Errorf("duplicate class index %d", e.Index)
		}
		names[e.Name] = true
		indices[e.Index] = true
	}
	return nil
}

// LoadClassMap reads a class-map.json file
func LoadClassMap(path string) (ClassMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read class map: %w", err)
	}

	var m ClassMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse class map %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Save writes the class map as JSON
func (m ClassMap) Save(path string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
