package transform

import (
	"slices"
	"time"
)

// Dimensions is the full set of dimension tables built from one batch.
type Dimensions struct {
	Location      *Dimension[LatLon]
	Ocean         *Dimension[string]
	Region        *Dimension[RegionKey]
	MarineSetting *Dimension[string]
	Method        *Dimension[string]
	Unit          *Dimension[string]
	Concentration *Dimension[ConcentrationKey]
	Organization  *Dimension[string]

	// Dates is sorted by calendar date. Its keys are YYYYMMDD, not dense.
	Dates []DateRow

	dateIDs map[int64]struct{}
}

// BuildDimensions derives every dimension. Location and Marine Setting come
// from the merged relation; the rest from the cleaned microplastics rows.
func BuildDimensions(obs []Observation, merged []MergedRow) *Dimensions {
	d := &Dimensions{
		Location:      NewDimension[LatLon](),
		Ocean:         NewDimension[string](),
		Region:        NewDimension[RegionKey](),
		MarineSetting: NewDimension[string](),
		Method:        NewDimension[string](),
		Unit:          NewDimension[string](),
		Concentration: NewDimension[ConcentrationKey](),
		Organization:  NewDimension[string](),
	}

	for _, r := range merged {
		if p, ok := position(r.Latitude, r.Longitude); ok {
			d.Location.Add(p)
		}
		addString(d.MarineSetting, r.MarineSetting())
	}

	for _, o := range obs {
		addString(d.Ocean, o.Ocean)
		addString(d.Method, o.SamplingMethod)
		addString(d.Unit, o.Unit)
		addString(d.Organization, o.Organization)
		if o.ConcRange != nil && o.ConcText != nil {
			d.Concentration.Add(ConcentrationKey{Range: *o.ConcRange, Text: *o.ConcText})
		}
		if o.Region != nil {
			d.Region.Add(regionKey(o.Ocean, *o.Region))
		}
	}

	// Placeholders follow the genuine regions: one per ocean, then global.
	d.Ocean.Each(func(_ int64, ocean string) {
		d.Region.Add(RegionKey{Ocean: ocean, Region: UnknownRegion})
	})
	d.Region.Add(RegionKey{Region: UnknownRegion})

	d.Dates, d.dateIDs = buildDates(obs)
	return d
}

func addString(d *Dimension[string], s *string) {
	if s != nil {
		d.Add(*s)
	}
}

func regionKey(ocean *string, region string) RegionKey {
	k := RegionKey{Region: region}
	if ocean != nil {
		k.Ocean = *ocean
	}
	return k
}

func buildDates(obs []Observation) ([]DateRow, map[int64]struct{}) {
	ids := make(map[int64]struct{})
	var rows []DateRow
	for _, o := range obs {
		if o.Date == nil {
			continue
		}
		id := DateKey(*o.Date)
		if _, ok := ids[id]; ok {
			continue
		}
		ids[id] = struct{}{}
		rows = append(rows, newDateRow(*o.Date))
	}
	slices.SortFunc(rows, func(a, b DateRow) int { return a.FullDate.Compare(b.FullDate) })
	return rows, ids
}

func newDateRow(t time.Time) DateRow {
	y, m, day := t.Date()
	return DateRow{
		ID:       DateKey(t),
		FullDate: time.Date(y, m, day, 0, 0, 0, 0, time.UTC),
		Year:     y,
		Month:    int(m),
		Day:      day,
	}
}

// DateRef returns the date key for t when the date dimension holds it.
func (d *Dimensions) DateRef(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	id := DateKey(*t)
	if _, ok := d.dateIDs[id]; !ok {
		return nil
	}
	return &id
}

// LocationRef resolves a nullable position against the Location dimension.
func (d *Dimensions) LocationRef(lat, lon *float64) *int64 {
	p, ok := position(lat, lon)
	if !ok {
		return nil
	}
	return d.Location.Ref(&p)
}

// ConcentrationRef resolves a (range, text) pair; either side nil yields nil.
func (d *Dimensions) ConcentrationRef(rng, text *string) *int64 {
	if rng == nil || text == nil {
		return nil
	}
	k := ConcentrationKey{Range: *rng, Text: *text}
	return d.Concentration.Ref(&k)
}
