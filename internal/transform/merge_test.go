package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/ods14/pkg/models"
)

func TestOuterJoinKeepsEveryRow(t *testing.T) {
	micro := []Observation{
		{Latitude: f64(1), Longitude: f64(1), Ocean: str("Pacific")},
		{Latitude: f64(2), Longitude: f64(2)},
		{Latitude: nil, Longitude: f64(3)},
	}
	species := []SpeciesObservation{
		{Latitude: f64(1), Longitude: f64(1)},
		{Latitude: f64(1), Longitude: f64(1)},
		{Latitude: f64(9), Longitude: f64(9)},
		{Latitude: nil, Longitude: f64(3)},
	}

	rows := OuterJoin(micro, species)
	// 2 matched pairs, 2 micro-only, 2 species-only.
	require.Len(t, rows, 6)

	assert.Same(t, &micro[0], rows[0].Micro)
	assert.Same(t, &species[0], rows[0].Species)
	assert.Same(t, &species[1], rows[1].Species)
	assert.Same(t, &micro[1], rows[2].Micro)
	assert.Nil(t, rows[2].Species)
	assert.Same(t, &micro[2], rows[3].Micro)
	assert.Nil(t, rows[3].Species, "rows without a position never match")
	assert.Same(t, &species[2], rows[4].Species)
	assert.Nil(t, rows[4].Micro)
	assert.Equal(t, 9.0, *rows[4].Latitude)
	assert.Same(t, &species[3], rows[5].Species)
}

func TestOuterJoinCountProperty(t *testing.T) {
	micro := []Observation{
		{Latitude: f64(1), Longitude: f64(1)},
		{Latitude: f64(1), Longitude: f64(1)},
		{Latitude: f64(5), Longitude: f64(5)},
	}
	species := []SpeciesObservation{
		{Latitude: f64(1), Longitude: f64(1)},
		{Latitude: f64(6), Longitude: f64(6)},
	}
	rows := OuterJoin(micro, species)

	var both, microOnly, speciesOnly int
	for _, r := range rows {
		switch {
		case r.Micro != nil && r.Species != nil:
			both++
		case r.Micro != nil:
			microOnly++
		default:
			speciesOnly++
		}
	}
	assert.Equal(t, 2, both)
	assert.Equal(t, 1, microOnly)
	assert.Equal(t, 1, speciesOnly)
	assert.Len(t, rows, both+microOnly+speciesOnly)
}

func TestOuterJoinSuffixesSharedExtras(t *testing.T) {
	micro := []Observation{
		{Latitude: f64(1), Longitude: f64(1), Extra: map[string]string{"Source": "noaa", "Sample ID": "a"}},
	}
	species := []SpeciesObservation{
		{Latitude: f64(1), Longitude: f64(1), Extra: map[string]string{"Source": "obis"}},
		{Latitude: f64(2), Longitude: f64(2), Extra: map[string]string{"Source": "gbif", "Taxon": "x"}},
	}
	rows := OuterJoin(micro, species)
	require.Len(t, rows, 2)

	assert.Equal(t, map[string]string{"Source_micro": "noaa", "Source_species": "obis", "Sample ID": "a"}, rows[0].Extra)
	assert.Equal(t, map[string]string{"Source_species": "gbif", "Taxon": "x"}, rows[1].Extra)
	assert.Equal(t, []string{"Sample ID", "Source_micro", "Source_species", "Taxon"}, ExtraColumns(rows))
}

func TestMergedTableCarriesExtras(t *testing.T) {
	micro := []Observation{
		{Latitude: f64(1), Longitude: f64(1), Ocean: str("Pacific Ocean"), Extra: map[string]string{"Source": "noaa", "Sample ID": "a"}},
	}
	species := []SpeciesObservation{
		{Latitude: f64(1), Longitude: f64(1), Extra: map[string]string{"Source": "obis"}},
		{Latitude: f64(2), Longitude: f64(2), Extra: map[string]string{"Source": "gbif", "Taxon": "x"}},
	}
	b := &Bundle{Merged: OuterJoin(micro, species)}

	td := b.MergedTable()
	assert.Equal(t, models.MergedObservations, td.Schema.Name)
	cols := td.Schema.ColumnNames()
	n := len(mergedColumns)
	require.Len(t, cols, n+4)
	assert.Equal(t, []string{"Sample ID", "Source_micro", "Source_species", "Taxon"}, cols[n:])

	require.Len(t, td.Rows, 2)
	assert.Equal(t, "Pacific Ocean", td.Rows[0][2])
	assert.Equal(t, []any{"a", "noaa", "obis", nil}, td.Rows[0][n:])
	assert.Nil(t, td.Rows[1][2])
	assert.Equal(t, []any{nil, nil, "gbif", "x"}, td.Rows[1][n:])
	for _, row := range td.Rows {
		assert.Len(t, row, len(cols))
	}

	export := b.ExportTables()
	assert.Equal(t, models.MergedObservations, export[len(export)-1].Schema.Name)
	assert.Len(t, export, len(models.StarSchema)+1)
}
