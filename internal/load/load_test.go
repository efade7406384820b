package load

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow/go/v12/parquet/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/BartekS5/ods14/pkg/models"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "ods14.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func mustSchema(t *testing.T, name string) models.TableSchema {
	s, ok := models.Schema(name)
	require.True(t, ok, name)
	return s
}

func sampleTables(t *testing.T) []models.TableData {
	day := time.Date(1972, 4, 25, 0, 0, 0, 0, time.UTC)
	return []models.TableData{
		{Schema: mustSchema(t, models.DimLocation), Rows: [][]any{{int64(1), 10.0, 20.0}, {int64(2), -5.0, 100.0}}},
		{Schema: mustSchema(t, models.DimOcean), Rows: [][]any{{int64(1), "Pacific"}}},
		{Schema: mustSchema(t, models.DimRegion), Rows: [][]any{{int64(1), "Coral Triangle", "Pacific"}, {int64(2), "Unknown", nil}}},
		{Schema: mustSchema(t, models.DimDate), Rows: [][]any{{int64(19720425), day, int64(1972), int64(4), int64(25)}}},
		{Schema: mustSchema(t, models.FactMicro), Rows: [][]any{
			{int64(1), int64(1), int64(1), nil, nil, nil, nil, int64(19720425), nil, 0.5, nil},
			{int64(2), nil, int64(2), nil, nil, nil, nil, nil, nil, nil, 3.0},
		}},
		{Schema: mustSchema(t, models.FactSpecies), Rows: [][]any{{int64(1), int64(12)}, {nil, nil}}},
	}
}

func TestDialectFor(t *testing.T) {
	for in, want := range map[string]string{
		"sqlserver": "sqlserver", "MSSQL": "sqlserver", "pgx": "postgres",
		"postgres": "postgres", "mysql": "mysql", "sqlite3": "sqlite",
	} {
		d, err := DialectFor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, d.Name, in)
	}
	_, err := DialectFor("oracle")
	require.ErrorIs(t, err, ErrUnknownDialect)
}

func TestCreateTableSQL(t *testing.T) {
	d, _ := DialectFor("sqlserver")
	ddl := CreateTableSQL(d, mustSchema(t, models.FactSpecies))
	assert.Contains(t, ddl, "CREATE TABLE [fact_species]")
	assert.Contains(t, ddl, "[species_id] INT IDENTITY(1,1) PRIMARY KEY")
	assert.Contains(t, ddl, "FOREIGN KEY ([location_id]) REFERENCES [dim_location]([location_id])")
	assert.Equal(t, []string{"CREATE INDEX [idx_fact_species_location_id] ON [fact_species] ([location_id])"},
		CreateIndexSQL(d, mustSchema(t, models.FactSpecies)))

	pg, _ := DialectFor("postgres")
	ddl = CreateTableSQL(pg, mustSchema(t, models.DimRegion))
	assert.Contains(t, ddl, `"region_id" INTEGER NOT NULL PRIMARY KEY`)
	assert.Contains(t, ddl, `"region" VARCHAR(255)`)
}

func TestSchemaStatementsDropChildrenFirst(t *testing.T) {
	d, _ := DialectFor("mysql")
	stmts := SchemaStatements(d, true)
	assert.Equal(t, "DROP TABLE IF EXISTS `fact_species`", stmts[0])
	assert.Equal(t, "DROP TABLE IF EXISTS `dim_location`", stmts[len(models.StarSchema)-1])
	assert.True(t, strings.HasPrefix(stmts[len(models.StarSchema)], "CREATE TABLE `dim_location`"))
	assert.Len(t, SchemaStatements(d, false), len(models.StarSchema)+2)
}

func TestLoadIntoSQLite(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	d, _ := DialectFor("sqlite")
	require.NoError(t, CreateSchema(ctx, db, d, false))
	require.NoError(t, CreateSchema(ctx, db, d, true), "reset recreates")

	l := NewSQLLoader(db, d, 1)
	require.NoError(t, l.Load(ctx, sampleTables(t)))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM fact_microplastics`).Scan(&n))
	assert.Equal(t, 2, n)

	var fullDate string
	require.NoError(t, db.QueryRow(`SELECT full_date FROM dim_date WHERE date_id = 19720425`).Scan(&fullDate))
	assert.Equal(t, "1972-04-25", fullDate)

	var ocean sql.NullString
	require.NoError(t, db.QueryRow(`SELECT ocean FROM dim_region WHERE region_id = 2`).Scan(&ocean))
	assert.False(t, ocean.Valid)

	var ids []int64
	rows, err := db.Query(`SELECT species_id FROM fact_species ORDER BY species_id`)
	require.NoError(t, err)
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestLoadRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	d, _ := DialectFor("sqlite")
	require.NoError(t, CreateSchema(ctx, db, d, false))

	tables := sampleTables(t)
	// Duplicate primary key in the ocean dimension.
	tables[1].Rows = append(tables[1].Rows, []any{int64(1), "Atlantic"})

	err := NewSQLLoader(db, d, 100).Load(ctx, tables)
	var te *TableError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, models.DimOcean, te.Table)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM dim_location`).Scan(&n))
	assert.Zero(t, n)
}

func TestInsertStatementBatching(t *testing.T) {
	d, _ := DialectFor("sqlserver")
	l := NewSQLLoader(nil, d, 5000)
	assert.Equal(t, 181, l.rowsPerStatement(11))
	assert.Equal(t, 1000, NewSQLLoader(nil, d, 0).rowsPerStatement(2))

	q, args, err := l.insertStatement("dim_ocean", []string{"ocean_id", "ocean"}, [][]any{{int64(1), "A"}, {int64(2), "B"}})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO [dim_ocean] ([ocean_id], [ocean]) VALUES (@p1, @p2), (@p3, @p4)", q)
	assert.Len(t, args, 4)

	_, _, err = l.insertStatement("dim_ocean", []string{"ocean_id", "ocean"}, [][]any{{int64(1)}})
	require.Error(t, err)
}

func TestWriteParquet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "parquet")
	paths, err := WriteParquet(dir, sampleTables(t))
	require.NoError(t, err)
	require.Len(t, paths, 6)

	r, err := file.OpenParquetFile(filepath.Join(dir, "fact_microplastics.parquet"), false)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, int64(2), r.NumRows())
	assert.Equal(t, 11, r.MetaData().Schema.NumColumns())

	s := ArrowSchema(mustSchema(t, models.DimDate))
	assert.Equal(t, "utf8", s.Field(1).Type.Name())
}

func TestBuildRecord(t *testing.T) {
	s := ArrowSchema(mustSchema(t, models.DimOcean))
	rec, err := buildRecord(s, [][]any{{int64(1), "Pacific Ocean"}, {int64(2), nil}})
	require.NoError(t, err)
	defer rec.Release()
	assert.EqualValues(t, 2, rec.NumRows())
	assert.EqualValues(t, 2, rec.NumCols())
	assert.True(t, rec.Column(1).IsNull(1))

	_, err = buildRecord(s, [][]any{{int64(1)}})
	assert.ErrorContains(t, err, "row 0 has 1 values, want 2")
}
