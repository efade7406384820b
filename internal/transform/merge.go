package transform

import "slices"

// Suffixes added to extra columns present on both sides of the merge.
const (
	MicroSuffix   = "_micro"
	SpeciesSuffix = "_species"
)

// MergedRow is one row of the position-keyed outer join. Micro is nil for
// species-only rows and Species is nil for microplastics-only rows.
type MergedRow struct {
	Latitude  *float64
	Longitude *float64
	Micro     *Observation
	Species   *SpeciesObservation

	// Extra holds both sides' surviving extra columns, suffixed where the
	// two sources share a column name.
	Extra map[string]string
}

// MarineSetting returns the row's marine setting, nil for species-only rows.
func (r MergedRow) MarineSetting() *string {
	if r.Micro == nil {
		return nil
	}
	return r.Micro.MarineSetting
}

// SpeciesCount returns the row's species count, nil for microplastics-only rows.
func (r MergedRow) SpeciesCount() *int64 {
	if r.Species == nil {
		return nil
	}
	return r.Species.SpeciesCount
}

// OuterJoin joins micro and species on (latitude, longitude). Each
// microplastics row is emitted in input order, once per matching species row
// or once alone; species rows that matched nothing follow in input order.
// Rows missing either coordinate never match.
func OuterJoin(micro []Observation, species []SpeciesObservation) []MergedRow {
	bySpot := make(map[LatLon][]int)
	for i, s := range species {
		if p, ok := position(s.Latitude, s.Longitude); ok {
			bySpot[p] = append(bySpot[p], i)
		}
	}
	shared := sharedExtraColumns(micro, species)

	out := make([]MergedRow, 0, len(micro)+len(species))
	matched := make([]bool, len(species))
	for i := range micro {
		m := &micro[i]
		p, ok := position(m.Latitude, m.Longitude)
		hits := bySpot[p]
		if !ok || len(hits) == 0 {
			out = append(out, MergedRow{
				Latitude:  m.Latitude,
				Longitude: m.Longitude,
				Micro:     m,
				Extra:     mergeExtra(m.Extra, nil, shared),
			})
			continue
		}
		for _, j := range hits {
			matched[j] = true
			s := &species[j]
			out = append(out, MergedRow{
				Latitude:  m.Latitude,
				Longitude: m.Longitude,
				Micro:     m,
				Species:   s,
				Extra:     mergeExtra(m.Extra, s.Extra, shared),
			})
		}
	}
	for j := range species {
		if matched[j] {
			continue
		}
		s := &species[j]
		out = append(out, MergedRow{
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			Species:   s,
			Extra:     mergeExtra(nil, s.Extra, shared),
		})
	}
	return out
}

// sharedExtraColumns returns the extra column names carried by both sources.
// Collisions are decided per column, not per row, so a column keeps one name
// across the whole relation.
func sharedExtraColumns(micro []Observation, species []SpeciesObservation) map[string]bool {
	left := make(map[string]bool)
	for _, m := range micro {
		for k := range m.Extra {
			left[k] = true
		}
	}
	shared := make(map[string]bool)
	for _, s := range species {
		for k := range s.Extra {
			if left[k] {
				shared[k] = true
			}
		}
	}
	return shared
}

func mergeExtra(micro, species map[string]string, shared map[string]bool) map[string]string {
	if len(micro)+len(species) == 0 {
		return nil
	}
	out := make(map[string]string, len(micro)+len(species))
	for k, v := range micro {
		if shared[k] {
			k += MicroSuffix
		}
		out[k] = v
	}
	for k, v := range species {
		if shared[k] {
			k += SpeciesSuffix
		}
		out[k] = v
	}
	return out
}

// ExtraColumns lists the extra column names of a merged relation, sorted.
func ExtraColumns(rows []MergedRow) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range rows {
		for k := range r.Extra {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	slices.Sort(cols)
	return cols
}
