package load

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/BartekS5/ods14/pkg/logger"
	"github.com/BartekS5/ods14/pkg/models"
)

// CreateTableSQL renders the CREATE TABLE statement for s.
func CreateTableSQL(d Dialect, s models.TableSchema) string {
	var defs []string
	if s.AutoKey {
		defs = append(defs, d.Quote(s.PrimaryKey)+" "+d.autoKey)
	}
	for _, c := range s.Columns {
		def := d.Quote(c.Name) + " " + d.columnType(c)
		if c.Name == s.PrimaryKey {
			def += " NOT NULL PRIMARY KEY"
		}
		defs = append(defs, def)
	}
	for _, c := range s.Columns {
		if c.References == "" {
			continue
		}
		parent, ok := models.Schema(c.References)
		if !ok {
			continue
		}
		defs = append(defs, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)",
			d.Quote(c.Name), d.Quote(parent.Name), d.Quote(parent.PrimaryKey)))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n    %s\n)", d.Quote(s.Name), strings.Join(defs, ",\n    "))
}

// CreateIndexSQL renders the secondary index statements for s.
func CreateIndexSQL(d Dialect, s models.TableSchema) []string {
	out := make([]string, 0, len(s.Index))
	for _, col := range s.Index {
		name := fmt.Sprintf("idx_%s_%s", s.Name, col)
		out = append(out, fmt.Sprintf("CREATE INDEX %s ON %s (%s)", d.Quote(name), d.Quote(s.Name), d.Quote(col)))
	}
	return out
}

// SchemaStatements returns the DDL for the whole star schema. With reset,
// existing tables are dropped first, facts before dimensions.
func SchemaStatements(d Dialect, reset bool) []string {
	var stmts []string
	if reset {
		for _, s := range slices.Backward(models.StarSchema) {
			stmts = append(stmts, d.dropTable(d.Quote(s.Name)))
		}
	}
	for _, s := range models.StarSchema {
		stmts = append(stmts, CreateTableSQL(d, s))
		stmts = append(stmts, CreateIndexSQL(d, s)...)
	}
	return stmts
}

// CreateSchema executes the star schema DDL against db.
func CreateSchema(ctx context.Context, db *sql.DB, d Dialect, reset bool) error {
	for _, stmt := range SchemaStatements(d, reset) {
		logger.Debugf("DDL: %s", stmt)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema: %w\n%s", err, stmt)
		}
	}
	logger.Infof("Schema created (%d tables, dialect %s, reset=%v)", len(models.StarSchema), d.Name, reset)
	return nil
}
