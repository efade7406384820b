package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMappings(t *testing.T) {
	m := DefaultMappings()
	assert.Same(t, m, DefaultMappings())

	assert.Equal(t, "Río de la Plata", m.Region("Rio de La Plata"))
	assert.Equal(t, "Barents Sea", m.Region("Barentsz Sea"))
	assert.Equal(t, "North Sea", m.Region("North Sea"))

	assert.Equal(t, "Manta net", m.SamplingMethod("Manta Net"))
	assert.Equal(t, "pieces/10 min", m.Unit("pieces/10min"))
	assert.Equal(t, ">=200", m.ConcentrationRange(">200"))
	assert.Equal(t, "0-0.0005", m.ConcentrationRange("0"))

	assert.True(t, m.Dropped("DOI"))
	assert.True(t, m.Dropped("Standardized Nurdle  Amount"))
	assert.False(t, m.Dropped("Ocean"))

	assert.Equal(t, "Latitude", m.HeaderRenames()["Latitude (degree)"])
}

func TestMappingsAreIsolatedFromCallers(t *testing.T) {
	tables := MappingTables{Region: map[string]string{"A": "B"}}
	m := NewMappings(tables)
	tables.Region["A"] = "C"
	assert.Equal(t, "B", m.Region("A"))

	renames := DefaultMappings().HeaderRenames()
	renames["Latitude (degree)"] = "lat"
	assert.Equal(t, "Latitude", DefaultMappings().HeaderRenames()["Latitude (degree)"])
}

func TestLoadMappingsMergesOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.yaml")
	doc := "region:\n  \"Mar del Plata\": \"Argentine Sea\"\nunit:\n  \"pieces/10min\": \"pieces per 10 minutes\"\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	m, err := LoadMappings(path)
	require.NoError(t, err)
	assert.Equal(t, "Argentine Sea", m.Region("Mar del Plata"))
	assert.Equal(t, "Barents Sea", m.Region("Barentsz Sea"))
	assert.Equal(t, "pieces per 10 minutes", m.Unit("pieces/10min"))
	assert.True(t, m.Dropped("DOI"))

	// defaults untouched
	assert.Equal(t, "pieces/10 min", DefaultMappings().Unit("pieces/10min"))
}

func TestLoadMappingsErrors(t *testing.T) {
	_, err := LoadMappings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("region: [1, 2"), 0o644))
	_, err = LoadMappings(bad)
	assert.Error(t, err)
}
