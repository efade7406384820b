package transform

// ResolveStats counts how each microplastics row's keys were resolved.
type ResolveStats struct {
	// RegionRules counts rows per region ladder rule.
	RegionRules map[string]int
	// Misses counts non-null natural keys with no dimension row, per
	// dimension table. Non-zero values mean the build and resolve passes
	// disagree.
	Misses map[string]int
}

// ResolveMicroplastics builds one fact row per observation, looking every
// dimension up independently. Null natural keys give null foreign keys;
// region goes through ladder.
func ResolveMicroplastics(obs []Observation, dims *Dimensions, ladder []RegionRule) ([]MicroplasticsFact, ResolveStats) {
	stats := ResolveStats{RegionRules: make(map[string]int), Misses: make(map[string]int)}
	regions := NewRegionIndex(dims.Region)

	miss := func(table string, present bool, id *int64) *int64 {
		if present && id == nil {
			stats.Misses[table]++
		}
		return id
	}

	facts := make([]MicroplasticsFact, len(obs))
	for i, o := range obs {
		_, hasPos := position(o.Latitude, o.Longitude)
		regionID, rule := regions.Resolve(ladder, o.Ocean, o.Region)
		stats.RegionRules[rule]++

		facts[i] = MicroplasticsFact{
			LocationID:       miss("location", hasPos, dims.LocationRef(o.Latitude, o.Longitude)),
			OceanID:          miss("ocean", o.Ocean != nil, dims.Ocean.Ref(o.Ocean)),
			RegionID:         regionID,
			MarineSettingID:  miss("marine_setting", o.MarineSetting != nil, dims.MarineSetting.Ref(o.MarineSetting)),
			MethodID:         miss("sampling_method", o.SamplingMethod != nil, dims.Method.Ref(o.SamplingMethod)),
			UnitID:           miss("unit", o.Unit != nil, dims.Unit.Ref(o.Unit)),
			ConcentrationID:  miss("concentration_class", o.ConcRange != nil && o.ConcText != nil, dims.ConcentrationRef(o.ConcRange, o.ConcText)),
			DateID:           miss("date", o.Date != nil, dims.DateRef(o.Date)),
			OrganizationID:   miss("organization", o.Organization != nil, dims.Organization.Ref(o.Organization)),
			Measurement:      o.Measurement,
			WaterSampleDepth: o.WaterSampleDepth,
		}
	}
	return facts, stats
}
