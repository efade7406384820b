package transform

// RegionIndex holds the lookups the region fallback rules match against.
type RegionIndex struct {
	exact   map[RegionKey]int64
	byName  map[string]int64 // lowest key per region name
	unknown map[string]int64 // ocean placeholder per ocean
	global  int64            // 0 when absent
}

// NewRegionIndex indexes a built Region dimension.
func NewRegionIndex(d *Dimension[RegionKey]) *RegionIndex {
	idx := &RegionIndex{
		exact:   make(map[RegionKey]int64, d.Len()),
		byName:  make(map[string]int64),
		unknown: make(map[string]int64),
	}
	d.Each(func(id int64, k RegionKey) {
		idx.exact[k] = id
		if _, ok := idx.byName[k.Region]; !ok {
			idx.byName[k.Region] = id
		}
		if k.Region == UnknownRegion {
			if k.Ocean == "" {
				idx.global = id
			} else {
				idx.unknown[k.Ocean] = id
			}
		}
	})
	return idx
}

// RegionRule is one rung of the region fallback ladder.
type RegionRule struct {
	Name  string
	Match func(idx *RegionIndex, ocean, region *string) (int64, bool)
}

// Region rule names, also used as metric labels.
const (
	RuleExact         = "exact"
	RuleRegionOnly    = "region_only"
	RuleOceanUnknown  = "ocean_unknown"
	RuleGlobalUnknown = "global_unknown"
	RuleUnresolved    = "unresolved"
)

var (
	// ExactRegion matches the (ocean, region) pair.
	ExactRegion = RegionRule{Name: RuleExact, Match: func(idx *RegionIndex, ocean, region *string) (int64, bool) {
		if region == nil {
			return 0, false
		}
		id, ok := idx.exact[regionKey(ocean, *region)]
		return id, ok
	}}

	// RegionOnly matches the region name under any ocean, preferring the
	// first-seen row.
	RegionOnly = RegionRule{Name: RuleRegionOnly, Match: func(idx *RegionIndex, _, region *string) (int64, bool) {
		if region == nil {
			return 0, false
		}
		id, ok := idx.byName[*region]
		return id, ok
	}}

	// OceanUnknown falls back to the ocean's placeholder row.
	OceanUnknown = RegionRule{Name: RuleOceanUnknown, Match: func(idx *RegionIndex, ocean, _ *string) (int64, bool) {
		if ocean == nil {
			return 0, false
		}
		id, ok := idx.unknown[*ocean]
		return id, ok
	}}

	// GlobalUnknown falls back to the placeholder with no ocean.
	GlobalUnknown = RegionRule{Name: RuleGlobalUnknown, Match: func(idx *RegionIndex, _, _ *string) (int64, bool) {
		return idx.global, idx.global != 0
	}}
)

// DefaultRegionLadder is the full fallback order.
func DefaultRegionLadder() []RegionRule {
	return []RegionRule{ExactRegion, RegionOnly, OceanUnknown, GlobalUnknown}
}

// Resolve walks ladder and returns the first matching key with the rule that
// produced it. A nil key comes back with RuleUnresolved.
func (idx *RegionIndex) Resolve(ladder []RegionRule, ocean, region *string) (*int64, string) {
	for _, rule := range ladder {
		if id, ok := rule.Match(idx, ocean, region); ok {
			return &id, rule.Name
		}
	}
	return nil, RuleUnresolved
}
