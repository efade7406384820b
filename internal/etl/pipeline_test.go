package etl

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v12/parquet/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/BartekS5/ods14/internal/config"
	"github.com/BartekS5/ods14/internal/extract"
	"github.com/BartekS5/ods14/internal/load"
	"github.com/BartekS5/ods14/internal/metrics"
	"github.com/BartekS5/ods14/internal/report"
	"github.com/BartekS5/ods14/internal/transform"
	"github.com/BartekS5/ods14/pkg/models"
)

func fixtureExtractor() *extract.CSVExtractor {
	return extract.NewCSVExtractor(
		filepath.Join("testdata", "microplastics.csv"),
		filepath.Join("testdata", "species.csv"),
		"utf-8", config.DefaultMappings().HeaderRenames(), nil)
}

type recordingLoader struct {
	tables []models.TableData
	err    error
}

func (l *recordingLoader) Load(_ context.Context, tables []models.TableData) error {
	l.tables = tables
	return l.err
}

func TestPipelineEndToEnd(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "e2e.db"))
	require.NoError(t, err)
	defer db.Close()
	d, err := load.DialectFor("sqlite")
	require.NoError(t, err)
	require.NoError(t, load.CreateSchema(ctx, db, d, true))

	rec, err := metrics.New()
	require.NoError(t, err)
	p := NewPipeline(fixtureExtractor(), transform.New(nil), load.NewSQLLoader(db, d, 2), false)
	p.Metrics = rec
	p.ParquetDir = filepath.Join(t.TempDir(), "parquet")

	b, err := p.Run(ctx)
	require.NoError(t, err)

	// The two MANTA NET spellings share one method row.
	id, ok := b.Dimensions.Method.ID("Manta net")
	require.True(t, ok)
	assert.Equal(t, id, *b.MicroplasticsFact[0].MethodID)
	assert.Equal(t, id, *b.MicroplasticsFact[1].MethodID)
	// Both date spellings map to one key.
	assert.Equal(t, int64(19720425), *b.MicroplasticsFact[0].DateID)
	assert.Equal(t, int64(19720425), *b.MicroplasticsFact[1].DateID)
	assert.Nil(t, b.MicroplasticsFact[3].DateID)

	// Micro row 1 matches two species rows, rows 3 and 4 one each; one
	// species row matches nothing.
	assert.Equal(t, 4, b.Stats.Matched)
	assert.Equal(t, 7, b.Stats.MergedRows)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM fact_microplastics WHERE region_id IS NULL`).Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM fact_species`).Scan(&n))
	assert.Equal(t, 7, n)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM dim_region WHERE region = 'Unknown'`).Scan(&n))
	assert.Equal(t, 3, n, "two ocean placeholders and the global one")

	var region string
	require.NoError(t, db.QueryRow(`SELECT r.region FROM fact_microplastics m JOIN dim_region r ON r.region_id = m.region_id WHERE m.unique_id = 4`).Scan(&region))
	assert.Equal(t, "Río de la Plata", region)

	results, err := report.NewRunner(db, d, 2).Run(ctx, nil, report.Range{})
	require.NoError(t, err)
	assert.Len(t, results, len(report.Catalog))

	assert.FileExists(t, filepath.Join(p.ParquetDir, "fact_microplastics.parquet"))
	pf, err := file.OpenParquetFile(filepath.Join(p.ParquetDir, models.MergedObservations+".parquet"), false)
	require.NoError(t, err)
	defer pf.Close()
	assert.EqualValues(t, 7, pf.NumRows())
	assert.GreaterOrEqual(t, pf.MetaData().Schema.ColumnIndexByName("Source"), 0)
	assert.NoError(t, rec.WriteTextfile(filepath.Join(t.TempDir(), "run.prom")))
}

func TestPipelineDryRunSkipsLoad(t *testing.T) {
	l := &recordingLoader{}
	b, err := NewPipeline(fixtureExtractor(), nil, l, true).Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, l.tables)
	assert.Len(t, b.MicroplasticsFact, 5)
}

func TestPipelineErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewPipeline(fixtureExtractor(), nil, &recordingLoader{err: boom}, false).Run(context.Background())
	require.ErrorIs(t, err, boom)

	ext := extract.NewCSVExtractor(filepath.Join("testdata", "species.csv"), filepath.Join("testdata", "species.csv"), "", nil, nil)
	_, err = NewPipeline(ext, nil, &recordingLoader{}, false).Run(context.Background())
	require.ErrorIs(t, err, transform.ErrMissingColumn)
}

func TestValidator(t *testing.T) {
	micro := &models.Table{Columns: models.MicroplasticsColumns, Rows: []models.Record{
		{models.ColLatitude: "1", models.ColLongitude: "2", models.ColOcean: "Indian"},
	}}
	species := &models.Table{Columns: models.SpeciesColumns}
	bundle := func() []models.TableData {
		b, err := transform.Run(nil, micro, species)
		require.NoError(t, err)
		return b.Tables()
	}
	v := NewValidator()
	require.NoError(t, v.Validate(bundle()))

	last := func(tables []models.TableData, name string) []any {
		for _, td := range tables {
			if td.Schema.Name == name {
				return td.Rows[len(td.Rows)-1]
			}
		}
		t.Fatalf("no table %s", name)
		return nil
	}

	tables := bundle()
	last(tables, models.FactMicro)[2] = nil
	err := v.Validate(tables)
	require.ErrorIs(t, err, ErrIntegrity)
	assert.Contains(t, err.Error(), "region_id is NULL")

	tables = bundle()
	last(tables, models.FactMicro)[0] = int64(99)
	err = v.Validate(tables)
	require.ErrorIs(t, err, ErrIntegrity)
	assert.Contains(t, err.Error(), "location_id=99")

	tables = bundle()
	tables[1].Rows = append(tables[1].Rows, []any{int64(1), "Southern"})
	assert.ErrorIs(t, v.Validate(tables), ErrIntegrity)

	tables = bundle()
	tables = append(tables[len(tables)-2:], tables[:len(tables)-2]...)
	err = v.Validate(tables)
	require.ErrorIs(t, err, ErrIntegrity)
	assert.Contains(t, err.Error(), "loads before")
}
