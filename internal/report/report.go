// Package report runs the analytical queries over the loaded star schema.
package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BartekS5/ods14/internal/load"
)

// ErrUnknownReport is returned when a requested report name is not in the catalog.
var ErrUnknownReport = errors.New("unknown report")

// Range bounds sample dates as [Start, End). Nil ends are open.
type Range struct {
	Start *time.Time
	End   *time.Time
}

// Result is one report's table.
type Result struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Report is one entry of the catalog.
type Report struct {
	Name        string
	Description string
	run         func(ctx context.Context, q Querier, d load.Dialect, rng Range) (*Result, error)
}

// Run executes the report.
func (r Report) Run(ctx context.Context, q Querier, d load.Dialect, rng Range) (*Result, error) {
	res, err := r.run(ctx, q, d, rng)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", r.Name, err)
	}
	res.Name = r.Name
	return res, nil
}

// Catalog lists every report in output order.
var Catalog = []Report{
	{Name: "species_micro_by_region", Description: "Average species count and microplastics per region", run: speciesMicroByRegion},
	{Name: "correlation_overall", Description: "Pearson r between species count and microplastics", run: correlationOverall},
	{Name: "species_by_concentration_class", Description: "Average species count per concentration class", run: speciesByConcentrationClass},
	{Name: "depth_bins", Description: "Species and microplastics by water sample depth band", run: depthBins},
	{Name: "critical_zones_high_high", Description: "Locations in the top half of both species and microplastics within their region", run: criticalZones(1)},
	{Name: "critical_zones_low_high", Description: "Locations in the bottom half of species and top half of microplastics within their region", run: criticalZones(2)},
	{Name: "region_hotspots", Description: "Region averages ranked by z-score", run: regionHotspots},
	{Name: "paired_observations", Description: "Species and microplastics pairs with location context", run: pairedObservations},
	{Name: "method_effects", Description: "Microplastics and species by sampling method", run: methodEffects},
	{Name: "concentration_by_region", Description: "Concentration class matrix by region", run: concentrationByRegion},
}

// Lookup returns the named reports in catalog order. No names selects all.
func Lookup(names ...string) ([]Report, error) {
	if len(names) == 0 {
		return Catalog, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		found := false
		for _, r := range Catalog {
			if r.Name == n {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrUnknownReport, n)
		}
		want[n] = true
	}
	var out []Report
	for _, r := range Catalog {
		if want[r.Name] {
			out = append(out, r)
		}
	}
	return out, nil
}

// query accumulates bind arguments for one statement.
type query struct {
	d    load.Dialect
	args []any
}

func (q *query) arg(v any) string {
	q.args = append(q.args, q.d.Value(v))
	return q.d.Placeholder(len(q.args))
}

// dateFilter renders the WHERE clause for rng against dim_date alias d.
func (q *query) dateFilter(rng Range) string {
	var conds []string
	if rng.Start != nil {
		conds = append(conds, "d.full_date >= "+q.arg(*rng.Start))
	}
	if rng.End != nil {
		conds = append(conds, "d.full_date < "+q.arg(*rng.End))
	}
	if len(conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(conds, " AND ")
}

// fetch runs a query and returns its rows with []byte values as strings.
func fetch(ctx context.Context, q Querier, stmt string, args ...any) (*Result, error) {
	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	res := &Result{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, vals)
	}
	return res, rows.Err()
}
