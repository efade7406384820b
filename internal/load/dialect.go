// Package load persists star schema tables: DDL, transactional batched
// inserts per SQL dialect, and Parquet export.
package load

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BartekS5/ods14/pkg/models"
)

// ErrUnknownDialect is returned for a driver name with no dialect.
var ErrUnknownDialect = errors.New("unknown SQL dialect")

// Dialect captures what differs between the supported databases.
type Dialect struct {
	Name string
	// Driver is the database/sql driver name.
	Driver string
	// MaxParams bounds the bind parameters of one statement.
	MaxParams int

	placeholder func(n int) string
	quote       func(name string) string
	types       map[models.ColumnType]string
	stringType  func(size int) string
	autoKey     string
	dropTable   func(quoted string) string
	dateValue   func(t time.Time) any
}

// Placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) Placeholder(n int) string { return d.placeholder(n) }

// Quote quotes an identifier.
func (d Dialect) Quote(name string) string { return d.quote(name) }

// Value converts a row value into what the driver expects.
func (d Dialect) Value(v any) any {
	if t, ok := v.(time.Time); ok {
		return d.dateValue(t)
	}
	return v
}

func (d Dialect) columnType(c models.Column) string {
	if c.Type == models.TypeString {
		size := c.Size
		if size <= 0 {
			size = 255
		}
		return d.stringType(size)
	}
	return d.types[c.Type]
}

func sameTime(t time.Time) any { return t }

var dialects = map[string]Dialect{
	"sqlserver": {
		Name: "sqlserver", Driver: "sqlserver", MaxParams: 2000,
		placeholder: func(n int) string { return fmt.Sprintf("@p%d", n) },
		quote:       func(s string) string { return "[" + s + "]" },
		types: map[models.ColumnType]string{
			models.TypeInt: "INT", models.TypeFloat: "FLOAT", models.TypeDate: "DATE",
		},
		stringType: func(n int) string { return fmt.Sprintf("NVARCHAR(%d)", n) },
		autoKey:    "INT IDENTITY(1,1) PRIMARY KEY",
		dropTable: func(q string) string {
			return fmt.Sprintf("IF OBJECT_ID('%s', 'U') IS NOT NULL DROP TABLE %s", strings.Trim(q, "[]"), q)
		},
		dateValue: sameTime,
	},
	"postgres": {
		Name: "postgres", Driver: "pgx", MaxParams: 65535,
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		quote:       func(s string) string { return `"` + s + `"` },
		types: map[models.ColumnType]string{
			models.TypeInt: "INTEGER", models.TypeFloat: "DOUBLE PRECISION", models.TypeDate: "DATE",
		},
		stringType: func(n int) string { return fmt.Sprintf("VARCHAR(%d)", n) },
		autoKey:    "SERIAL PRIMARY KEY",
		dropTable:  func(q string) string { return "DROP TABLE IF EXISTS " + q + " CASCADE" },
		dateValue:  sameTime,
	},
	"mysql": {
		Name: "mysql", Driver: "mysql", MaxParams: 65535,
		placeholder: func(int) string { return "?" },
		quote:       func(s string) string { return "`" + s + "`" },
		types: map[models.ColumnType]string{
			models.TypeInt: "INT", models.TypeFloat: "DOUBLE", models.TypeDate: "DATE",
		},
		stringType: func(n int) string { return fmt.Sprintf("VARCHAR(%d)", n) },
		autoKey:    "INT AUTO_INCREMENT PRIMARY KEY",
		dropTable:  func(q string) string { return "DROP TABLE IF EXISTS " + q },
		dateValue:  func(t time.Time) any { return t.Format(time.DateOnly) },
	},
	"sqlite": {
		Name: "sqlite", Driver: "sqlite", MaxParams: 999,
		placeholder: func(int) string { return "?" },
		quote:       func(s string) string { return `"` + s + `"` },
		types: map[models.ColumnType]string{
			models.TypeInt: "INTEGER", models.TypeFloat: "REAL", models.TypeDate: "TEXT",
		},
		stringType: func(int) string { return "TEXT" },
		autoKey:    "INTEGER PRIMARY KEY AUTOINCREMENT",
		dropTable:  func(q string) string { return "DROP TABLE IF EXISTS " + q },
		dateValue:  func(t time.Time) any { return t.Format(time.DateOnly) },
	},
}

// DialectFor returns the dialect for a configured driver name. "mssql",
// "pgx" and "sqlite3" are accepted as aliases.
func DialectFor(name string) (Dialect, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "mssql":
		name = "sqlserver"
	case "pgx", "postgresql":
		name = "postgres"
	case "sqlite3":
		name = "sqlite"
	default:
		name = n
	}
	d, ok := dialects[name]
	if !ok {
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
	return d, nil
}
