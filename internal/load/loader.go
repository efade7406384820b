package load

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/BartekS5/ods14/pkg/logger"
	"github.com/BartekS5/ods14/pkg/models"
)

// TableError reports the table and step at which a load aborted.
type TableError struct {
	Table string
	Op    string
	Err   error
}

func (e *TableError) Error() string {
	return fmt.Sprintf("load %s: %s: %v", e.Table, e.Op, e.Err)
}

func (e *TableError) Unwrap() error { return e.Err }

// SQLLoader appends star schema tables to a relational store.
type SQLLoader struct {
	DB        *sql.DB
	Dialect   Dialect
	BatchSize int
}

// NewSQLLoader returns a loader writing through db.
func NewSQLLoader(db *sql.DB, d Dialect, batchSize int) *SQLLoader {
	return &SQLLoader{DB: db, Dialect: d, BatchSize: batchSize}
}

// Load writes tables in the order given inside one transaction. Any failure
// rolls back every table.
func (l *SQLLoader) Load(ctx context.Context, tables []models.TableData) error {
	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, td := range tables {
		n, err := l.insertTable(ctx, tx, td)
		if err != nil {
			return err
		}
		logger.Infof("Loaded %d rows into %s", n, td.Schema.Name)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// rowsPerStatement keeps one INSERT under the dialect's parameter limit.
func (l *SQLLoader) rowsPerStatement(cols int) int {
	n := l.BatchSize
	if n <= 0 {
		n = 1000
	}
	if cols > 0 && l.Dialect.MaxParams > 0 {
		n = min(n, l.Dialect.MaxParams/cols)
	}
	return max(n, 1)
}

func (l *SQLLoader) insertTable(ctx context.Context, tx *sql.Tx, td models.TableData) (int, error) {
	cols := td.Schema.ColumnNames()
	per := l.rowsPerStatement(len(cols))
	for start := 0; start < len(td.Rows); start += per {
		end := min(start+per, len(td.Rows))
		query, args, err := l.insertStatement(td.Schema.Name, cols, td.Rows[start:end])
		if err != nil {
			return start, &TableError{Table: td.Schema.Name, Op: "build", Err: err}
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return start, &TableError{Table: td.Schema.Name, Op: fmt.Sprintf("insert rows %d-%d", start+1, end), Err: err}
		}
	}
	return len(td.Rows), nil
}

func (l *SQLLoader) insertStatement(table string, cols []string, rows [][]any) (string, []any, error) {
	d := l.Dialect
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = d.Quote(c)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", d.Quote(table), strings.Join(quoted, ", "))
	args := make([]any, 0, len(rows)*len(cols))
	ph := make([]string, len(cols))
	for i, row := range rows {
		if len(row) != len(cols) {
			return "", nil, fmt.Errorf("row has %d values, want %d", len(row), len(cols))
		}
		for j, v := range row {
			args = append(args, d.Value(v))
			ph[j] = d.Placeholder(len(args))
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(" + strings.Join(ph, ", ") + ")")
	}
	return b.String(), args, nil
}
