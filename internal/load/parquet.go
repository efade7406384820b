package load

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet"
	"github.com/apache/arrow/go/v12/parquet/compress"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"

	"github.com/BartekS5/ods14/pkg/logger"
	"github.com/BartekS5/ods14/pkg/models"
)

func arrowType(t models.ColumnType) arrow.DataType {
	switch t {
	case models.TypeInt:
		return arrow.PrimitiveTypes.Int64
	case models.TypeFloat:
		return arrow.PrimitiveTypes.Float64
	default:
		// Dates are written as ISO text.
		return arrow.BinaryTypes.String
	}
}

// ArrowSchema derives the Arrow schema of a star schema table.
func ArrowSchema(s models.TableSchema) *arrow.Schema {
	fields := make([]arrow.Field, len(s.Columns))
	for i, c := range s.Columns {
		fields[i] = arrow.Field{Name: c.Name, Type: arrowType(c.Type), Nullable: c.Name != s.PrimaryKey}
	}
	return arrow.NewSchema(fields, nil)
}

// WriteParquet writes every table to dir/<table>.parquet with Snappy
// compression and returns the written paths.
func WriteParquet(dir string, tables []models.TableData) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("parquet dir: %w", err)
	}
	paths := make([]string, 0, len(tables))
	for _, td := range tables {
		p := filepath.Join(dir, td.Schema.Name+".parquet")
		if err := writeParquetFile(p, td); err != nil {
			return paths, &TableError{Table: td.Schema.Name, Op: "parquet", Err: err}
		}
		logger.Infof("Wrote %d rows to %s", len(td.Rows), p)
		paths = append(paths, p)
	}
	return paths, nil
}

func writeParquetFile(path string, td models.TableData) (err error) {
	schema := ArrowSchema(td.Schema)
	rec, err := buildRecord(schema, td.Rows)
	if err != nil {
		return err
	}
	defer rec.Release()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	w, err := pqarrow.NewFileWriter(schema, f, props, pqarrow.DefaultWriterProps())
	if err != nil {
		f.Close()
		return err
	}
	// Closing the writer closes f.
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	return w.Write(rec)
}

func buildRecord(schema *arrow.Schema, rows [][]any) (arrow.Record, error) {
	mem := memory.NewGoAllocator()
	builders := make([]array.Builder, len(schema.Fields()))
	for i, f := range schema.Fields() {
		builders[i] = array.NewBuilder(mem, f.Type)
		defer builders[i].Release()
	}

	for r, row := range rows {
		if len(row) != len(builders) {
			return nil, fmt.Errorf("row %d has %d values, want %d", r, len(row), len(builders))
		}
		for i, v := range row {
			if err := appendValue(builders[i], v); err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", r, schema.Field(i).Name, err)
			}
		}
	}

	cols := make([]arrow.Array, len(builders))
	for i, b := range builders {
		cols[i] = b.NewArray()
		defer cols[i].Release()
	}
	return array.NewRecord(schema, cols, int64(len(rows))), nil
}

func appendValue(b array.Builder, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}
	switch b := b.(type) {
	case *array.Int64Builder:
		switch n := v.(type) {
		case int64:
			b.Append(n)
		case int:
			b.Append(int64(n))
		default:
			return fmt.Errorf("unexpected %T for int64 column", v)
		}
	case *array.Float64Builder:
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("unexpected %T for float64 column", v)
		}
		b.Append(f)
	case *array.StringBuilder:
		switch s := v.(type) {
		case string:
			b.Append(s)
		case time.Time:
			b.Append(s.Format(time.DateOnly))
		default:
			b.Append(fmt.Sprint(v))
		}
	default:
		return fmt.Errorf("unsupported builder %T", b)
	}
	return nil
}
