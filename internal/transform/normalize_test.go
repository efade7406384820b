package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/ods14/internal/config"
	"github.com/BartekS5/ods14/pkg/models"
)

func TestNormalizeTextFields(t *testing.T) {
	r := microRow(" 10.5 ", "-20", "  Atlantic Ocean ", "Rio de La Plata ")
	r[models.ColMarineSetting] = "NaN"
	r[models.ColSamplingMethod] = " manta NET"
	r[models.ColUnit] = "pieces/10min"
	r[models.ColConcRange] = ">200"
	r[models.ColConcText] = "very HIGH"
	r[models.ColOrganization] = "None"
	r[models.ColDate] = "04-25-1972"
	r[models.ColMeasurement] = "0.25"
	r[models.ColWaterSampleDepth] = "n/a"

	obs, stats, err := NewNormalizer(nil, nil).Microplastics(microTable(r))
	require.NoError(t, err)
	require.Len(t, obs, 1)
	o := obs[0]

	assert.Equal(t, 10.5, *o.Latitude)
	assert.Equal(t, -20.0, *o.Longitude)
	assert.Equal(t, "Atlantic Ocean", *o.Ocean)
	assert.Equal(t, "Río de la Plata", *o.Region)
	assert.Nil(t, o.MarineSetting)
	assert.Equal(t, "Manta net", *o.SamplingMethod)
	assert.Equal(t, "pieces/10 min", *o.Unit)
	assert.Equal(t, ">=200", *o.ConcRange)
	assert.Equal(t, "Very High", *o.ConcText)
	assert.Nil(t, o.Organization)
	assert.Equal(t, int64(19720425), DateKey(*o.Date))
	assert.Equal(t, 0.25, *o.Measurement)
	assert.Nil(t, o.WaterSampleDepth)

	assert.Equal(t, 1, stats.Rows)
	assert.Zero(t, stats.BadDates)
	assert.Zero(t, stats.MissingPosition)
}

func TestNormalizeSamplingMethodVariantsShareOneRow(t *testing.T) {
	a := microRow("1", "1", "Pacific", "")
	a[models.ColSamplingMethod] = "MANTA NET"
	b := microRow("2", "2", "Pacific", "")
	b[models.ColSamplingMethod] = " manta net "

	bundle, err := Run(nil, microTable(a, b), speciesTable())
	require.NoError(t, err)

	require.Equal(t, 1, bundle.Dimensions.Method.Len())
	id, ok := bundle.Dimensions.Method.ID("Manta net")
	require.True(t, ok)
	assert.Equal(t, id, *bundle.MicroplasticsFact[0].MethodID)
	assert.Equal(t, id, *bundle.MicroplasticsFact[1].MethodID)
}

func TestNormalizeBadCellsDegradeToNull(t *testing.T) {
	r := microRow("north", "", "Pacific", "")
	r[models.ColDate] = "someday"
	r[models.ColMeasurement] = "lots"

	obs, stats, err := NewNormalizer(nil, nil).Microplastics(microTable(r))
	require.NoError(t, err)
	assert.Nil(t, obs[0].Latitude)
	assert.Nil(t, obs[0].Longitude)
	assert.Nil(t, obs[0].Date)
	assert.Nil(t, obs[0].Measurement)
	assert.Equal(t, 1, stats.BadDates)
	assert.Equal(t, 1, stats.BadMeasurements)
	assert.Equal(t, 1, stats.MissingPosition)
}

func TestNormalizeMissingColumn(t *testing.T) {
	tbl := microTable(microRow("1", "1", "", ""))
	tbl.Columns = tbl.Columns[1:]

	_, _, err := NewNormalizer(nil, nil).Microplastics(tbl)
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), models.ColLatitude)

	_, err = NewNormalizer(nil, nil).Species(&models.Table{Columns: []string{"Latitude", "Longitude"}})
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestNormalizeHeaderRenamesAndExtras(t *testing.T) {
	tbl := microTable()
	tbl.Columns[0] = "Latitude (degree)"
	tbl.Columns = append(tbl.Columns, "DOI", "Sample ID")
	r := microRow("", "5", "Indian", "")
	delete(r, models.ColLatitude)
	r["Latitude (degree)"] = "7.5"
	r["DOI"] = "10.1/x"
	r["Sample ID"] = "S-1"
	tbl.Rows = []models.Record{r}

	obs, _, err := NewNormalizer(nil, nil).Microplastics(tbl)
	require.NoError(t, err)
	assert.Equal(t, 7.5, *obs[0].Latitude)
	assert.Equal(t, map[string]string{"Sample ID": "S-1"}, obs[0].Extra)

	assert.Equal(t, "Latitude (degree)", tbl.Columns[0], "input table must not change")
}

func TestNormalizeUsesInjectedMappings(t *testing.T) {
	m := config.NewMappings(config.MappingTables{
		Region: map[string]string{"Gulf of Maine": "Gulf Of Maine"},
	})
	obs, _, err := NewNormalizer(m, nil).Microplastics(microTable(microRow("1", "1", "Atlantic", "Gulf of Maine")))
	require.NoError(t, err)
	assert.Equal(t, "Gulf Of Maine", *obs[0].Region)
}

func TestNormalizeSpecies(t *testing.T) {
	obs, err := NewNormalizer(nil, nil).Species(speciesTable(
		speciesRow("1.5", "2.5", "17.0"),
		speciesRow("3", "4", ""),
	))
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, int64(17), *obs[0].SpeciesCount)
	assert.Nil(t, obs[1].SpeciesCount)
	assert.Equal(t, 3.0, *obs[1].Latitude)
}
