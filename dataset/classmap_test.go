package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassMapReadsPairForm(t *testing.T) {
	var m ClassMap
	require.NoError(t, json.Unmarshal([]byte(`[["Corvus corax",0],["Passer domesticus",1]]`), &m))

	assert.Equal(t, ClassMap{{Name: "Corvus corax", Index: 0}, {Name: "Passer domesticus", Index: 1}}, m)
	assert.Equal(t, "Passer domesticus", m.Label(1))
	assert.Equal(t, UnknownLabel, m.Label(2))
	assert.Equal(t, UnknownLabel, m.Label(-1))

	idx, ok := m.Index("Corvus corax")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
	_, ok = m.Index("Pica pica")
	assert.False(t, ok)
}

func TestClassMapWritesPairForm(t *testing.T) {
	data, err := json.Marshal(NewClassMap("crow", "sparrow"))
	require.NoError(t, err)
	assert.JSONEq(t, `[["crow",0],["sparrow",1]]`, string(data))
}

func TestClassMapRejectsMalformedEntries(t *testing.T) {
	for _, input := range []string{
		`[["crow"]]`,
		`[["crow",0,1]]`,
		`[[0,"crow"]]`,
		`[{"name":"crow","index":0}]`,
	} {
		var m ClassMap
		assert.Error(t, json.Unmarshal([]byte(input), &m), input)
	}
}

func TestClassMapOrdering(t *testing.T) {
	m := ClassMap{{Name: "b", Index: 2}, {Name: "a", Index: 0}, {Name: "c", Index: 1}}
	assert.Equal(t, []string{"a", "c", "b"}, m.Names())
	assert.Equal(t, 3, m.NumClasses())
	assert.True(t, m.HasIndex(2))
	assert.False(t, m.HasIndex(3))
}

func TestClassMapValidate(t *testing.T) {
	assert.NoError(t, NewClassMap("a", "b").Validate())
	assert.Error(t, ClassMap{{Name: "a", Index: 0}, {Name: "a", Index: 1}}.Validate())
	assert.Error(t, ClassMap{{Name: "a", Index: 0}, {Name: "b", Index: 0}}.Validate())
	assert.Error(t, ClassMap{{Name: "a", Index: -1}}.Validate())
}

func TestClassMapFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "class-map.json")
	original := NewClassMap("crow", "sparrow", "owl")
	require.NoError(t, original.Save(path))

	loaded, err := LoadClassMap(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)

	require.NoError(t, os.WriteFile(path, []byte(`[["a",0],["b",0]]`), 0o644))
	_, err = LoadClassMap(path)
	assert.Error(t, err)

	_, err = LoadClassMap(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
