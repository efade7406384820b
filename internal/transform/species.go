package transform

// ProjectSpecies pins every merged row's species count to its location.
// Rows without a species count are kept.
func ProjectSpecies(merged []MergedRow, loc *Dimension[LatLon]) []SpeciesFact {
	facts := make([]SpeciesFact, len(merged))
	for i, r := range merged {
		var id *int64
		if p, ok := position(r.Latitude, r.Longitude); ok {
			id = loc.Ref(&p)
		}
		facts[i] = SpeciesFact{LocationID: id, SpeciesCount: r.SpeciesCount()}
	}
	return facts
}
