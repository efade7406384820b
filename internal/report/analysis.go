package report

import (
	"cmp"
	"context"
	"slices"
	"strconv"

	"github.com/montanaflynn/stats"

	"github.com/BartekS5/ods14/internal/load"
)

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func floatOrNil(f float64, ok bool) any {
	if !ok {
		return nil
	}
	return f
}

// nullableKey groups rows on a possibly-NULL text column.
type nullableKey struct {
	value string
	valid bool
}

func keyOf(v any) nullableKey {
	switch s := v.(type) {
	case nil:
		return nullableKey{}
	case string:
		return nullableKey{value: s, valid: true}
	default:
		f, ok := toFloat(v)
		if ok {
			return nullableKey{value: strconv.FormatFloat(f, 'f', -1, 64), valid: true}
		}
		return nullableKey{}
	}
}

func (k nullableKey) any() any {
	if !k.valid {
		return nil
	}
	return k.value
}

// compareKeys orders NULL first, then by text.
func compareKeys(a, b nullableKey) int {
	if a.valid != b.valid {
		if !a.valid {
			return -1
		}
		return 1
	}
	return cmp.Compare(a.value, b.value)
}

// pearson returns r for paired samples, false when undefined.
func pearson(xs, ys []float64) (float64, bool) {
	if len(xs) < 2 {
		return 0, false
	}
	sx, _ := stats.StandardDeviationSample(xs)
	sy, _ := stats.StandardDeviationSample(ys)
	if sx == 0 || sy == 0 {
		return 0, false
	}
	r, err := stats.Correlation(xs, ys)
	if err != nil {
		return 0, false
	}
	return r, true
}

func correlationOverall(ctx context.Context, db Querier, d load.Dialect, rng Range) (*Result, error) {
	base, err := pairedRows(ctx, db, d, rng)
	if err != nil {
		return nil, err
	}
	var xs, ys []float64
	for _, row := range base.Rows {
		x, okx := toFloat(row[2])
		y, oky := toFloat(row[3])
		if okx && oky {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	r, ok := pearson(xs, ys)
	return &Result{
		Columns: []string{"pearson_r", "n_pairs"},
		Rows:    [][]any{{floatOrNil(r, ok), int64(len(xs))}},
	}, nil
}

type locationAvg struct {
	region      nullableKey
	locationID  any
	species     float64
	hasSpecies  bool
	micro       float64
	hasMicro    bool
	speciesHalf int
	microHalf   int
}

// assignHalves splits group into NTILE(2) halves by value descending. NULLs
// sort last; ties keep location order.
func assignHalves(group []*locationAvg, value func(*locationAvg) (float64, bool), set func(*locationAvg, int)) {
	sorted := slices.Clone(group)
	slices.SortStableFunc(sorted, func(a, b *locationAvg) int {
		va, oka := value(a)
		vb, okb := value(b)
		switch {
		case oka && okb:
			return cmp.Compare(vb, va)
		case oka:
			return -1
		case okb:
			return 1
		}
		return 0
	})
	top := (len(sorted) + 1) / 2
	for i, l := range sorted {
		if i < top {
			set(l, 1)
		} else {
			set(l, 2)
		}
	}
}

func criticalZones(speciesHalf int) func(context.Context, Querier, load.Dialect, Range) (*Result, error) {
	return func(ctx context.Context, db Querier, d load.Dialect, rng Range) (*Result, error) {
		base, err := locationAverages(ctx, db, d, rng)
		if err != nil {
			return nil, err
		}

		var all []*locationAvg
		byRegion := make(map[nullableKey][]*locationAvg)
		for _, row := range base.Rows {
			l := &locationAvg{region: keyOf(row[0]), locationID: row[1]}
			l.species, l.hasSpecies = toFloat(row[2])
			l.micro, l.hasMicro = toFloat(row[3])
			all = append(all, l)
			byRegion[l.region] = append(byRegion[l.region], l)
		}
		byLocation := func(a, b *locationAvg) int {
			x, _ := toFloat(a.locationID)
			y, _ := toFloat(b.locationID)
			return cmp.Compare(x, y)
		}
		for _, group := range byRegion {
			slices.SortFunc(group, byLocation)
			assignHalves(group,
				func(l *locationAvg) (float64, bool) { return l.species, l.hasSpecies },
				func(l *locationAvg, h int) { l.speciesHalf = h })
			assignHalves(group,
				func(l *locationAvg) (float64, bool) { return l.micro, l.hasMicro },
				func(l *locationAvg, h int) { l.microHalf = h })
		}

		var hits []*locationAvg
		for _, l := range all {
			if l.speciesHalf == speciesHalf && l.microHalf == 1 {
				hits = append(hits, l)
			}
		}
		slices.SortStableFunc(hits, func(a, b *locationAvg) int {
			return cmp.Or(
				compareKeys(a.region, b.region),
				cmp.Compare(b.micro, a.micro),
				cmp.Compare(b.species, a.species),
			)
		})

		res := &Result{Columns: []string{"region", "location_id", "species_avg", "micro_avg"}}
		for _, l := range hits {
			res.Rows = append(res.Rows, []any{
				l.region.any(), l.locationID,
				floatOrNil(l.species, l.hasSpecies), floatOrNil(l.micro, l.hasMicro),
			})
		}
		return res, nil
	}
}

// zScores standardizes the present values; absent ones stay absent.
func zScores(vals []float64, present []bool) []any {
	var sample []float64
	for i, v := range vals {
		if present[i] {
			sample = append(sample, v)
		}
	}
	out := make([]any, len(vals))
	if len(sample) < 2 {
		return out
	}
	mean, _ := stats.Mean(sample)
	sd, _ := stats.StandardDeviationSample(sample)
	if sd == 0 {
		return out
	}
	for i, v := range vals {
		if present[i] {
			out[i] = (v - mean) / sd
		}
	}
	return out
}

func regionHotspots(ctx context.Context, db Querier, d load.Dialect, rng Range) (*Result, error) {
	base, err := regionAverages(ctx, db, d, rng)
	if err != nil {
		return nil, err
	}
	n := len(base.Rows)
	species, micro := make([]float64, n), make([]float64, n)
	hasSpecies, hasMicro := make([]bool, n), make([]bool, n)
	for i, row := range base.Rows {
		species[i], hasSpecies[i] = toFloat(row[1])
		micro[i], hasMicro[i] = toFloat(row[2])
	}
	zs, zm := zScores(species, hasSpecies), zScores(micro, hasMicro)

	res := &Result{Columns: []string{"region", "avg_species", "avg_micro", "z_species", "z_micro"}}
	for i, row := range base.Rows {
		res.Rows = append(res.Rows, []any{
			keyOf(row[0]).any(),
			floatOrNil(species[i], hasSpecies[i]),
			floatOrNil(micro[i], hasMicro[i]),
			zs[i], zm[i],
		})
	}
	slices.SortStableFunc(res.Rows, func(a, b []any) int {
		return cmp.Or(compareDesc(a[4], b[4]), compareDesc(a[3], b[3]))
	})
	return res, nil
}

// compareDesc orders floats descending with NULLs last.
func compareDesc(a, b any) int {
	x, okx := toFloat(a)
	y, oky := toFloat(b)
	switch {
	case okx && oky:
		return cmp.Compare(y, x)
	case okx:
		return -1
	case oky:
		return 1
	}
	return 0
}

type methodGroup struct {
	name     any
	methodID any
	micro    []float64
	species  []float64
	n        int64
}

func methodEffects(ctx context.Context, db Querier, d load.Dialect, rng Range) (*Result, error) {
	base, err := methodRows(ctx, db, d, rng)
	if err != nil {
		return nil, err
	}
	var order []nullableKey
	groups := make(map[nullableKey]*methodGroup)
	for _, row := range base.Rows {
		k := keyOf(row[1])
		g, ok := groups[k]
		if !ok {
			g = &methodGroup{name: row[0], methodID: row[1]}
			groups[k] = g
			order = append(order, k)
		}
		g.n++
		if v, ok := toFloat(row[2]); ok {
			g.micro = append(g.micro, v)
		}
		if v, ok := toFloat(row[3]); ok {
			g.species = append(g.species, v)
		}
	}

	res := &Result{Columns: []string{"sampling_method", "method_id", "avg_microplastics", "sd_microplastics", "avg_species_count", "n_samples"}}
	for _, k := range order {
		g := groups[k]
		var avgMicro, sdMicro, avgSpecies any
		if len(g.micro) > 0 {
			m, _ := stats.Mean(g.micro)
			avgMicro = m
		}
		if len(g.micro) > 1 {
			sd, _ := stats.StandardDeviationSample(g.micro)
			sdMicro = sd
		}
		if len(g.species) > 0 {
			m, _ := stats.Mean(g.species)
			avgSpecies = m
		}
		res.Rows = append(res.Rows, []any{g.name, g.methodID, avgMicro, sdMicro, avgSpecies, g.n})
	}
	slices.SortStableFunc(res.Rows, func(a, b []any) int { return compareDesc(a[2], b[2]) })
	return res, nil
}
