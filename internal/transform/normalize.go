package transform

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/BartekS5/ods14/internal/config"
	"github.com/BartekS5/ods14/pkg/models"
	"github.com/BartekS5/ods14/pkg/utils"
)

// NormalizeStats counts values that degraded to null during normalization.
type NormalizeStats struct {
	Rows            int
	BadDates        int // non-blank dates no parser accepted
	BadMeasurements int
	MissingPosition int
}

// Normalizer cleans raw extract rows into typed observations.
type Normalizer struct {
	mappings *config.Mappings
	parsers  []DateParser
}

// NewNormalizer returns a Normalizer using m for synonyms and parsers for
// sample dates. Nil arguments select the defaults.
func NewNormalizer(m *config.Mappings, parsers []DateParser) *Normalizer {
	if m == nil {
		m = config.DefaultMappings()
	}
	if len(parsers) == 0 {
		parsers = DefaultDateParsers()
	}
	return &Normalizer{mappings: m, parsers: parsers}
}

// columnIndex resolves canonical column names to the raw header carrying them.
type columnIndex map[string]string

func (n *Normalizer) index(t *models.Table) columnIndex {
	renames := n.mappings.HeaderRenames()
	idx := make(columnIndex, len(t.Columns))
	for _, raw := range t.Columns {
		name := strings.TrimSpace(raw)
		if to, ok := renames[name]; ok {
			name = to
		}
		if _, dup := idx[name]; !dup {
			idx[name] = raw
		}
	}
	return idx
}

func (idx columnIndex) require(table string, cols []string) error {
	for _, c := range cols {
		if _, ok := idx[c]; !ok {
			return fmt.Errorf("%w: %q in %s extract", ErrMissingColumn, c, table)
		}
	}
	return nil
}

func (idx columnIndex) get(r models.Record, col string) string {
	return r[idx[col]]
}

// extras copies the row's non-star, non-excluded columns.
func (n *Normalizer) extras(idx columnIndex, star map[string]struct{}, r models.Record) map[string]string {
	var out map[string]string
	for name, raw := range idx {
		if _, ok := star[name]; ok || n.mappings.Dropped(name) {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[name] = r[raw]
	}
	return out
}

func columnSet(cols []string) map[string]struct{} {
	s := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		s[c] = struct{}{}
	}
	return s
}

var (
	microStar   = columnSet(models.MicroplasticsColumns)
	speciesStar = columnSet(models.SpeciesColumns)
)

// Microplastics cleans the microplastics extract. The result has one
// observation per input row; t is not modified.
func (n *Normalizer) Microplastics(t *models.Table) ([]Observation, NormalizeStats, error) {
	var stats NormalizeStats
	idx := n.index(t)
	if err := idx.require("microplastics", models.MicroplasticsColumns); err != nil {
		return nil, stats, err
	}

	title := cases.Title(language.Und)
	out := make([]Observation, len(t.Rows))
	for i, r := range t.Rows {
		o := Observation{
			Latitude:         utils.ParseFloat(idx.get(r, models.ColLatitude)),
			Longitude:        utils.ParseFloat(idx.get(r, models.ColLongitude)),
			Ocean:            utils.NullableString(idx.get(r, models.ColOcean)),
			Region:           mapped(idx.get(r, models.ColRegion), nil, n.mappings.Region),
			MarineSetting:    utils.NullableString(idx.get(r, models.ColMarineSetting)),
			SamplingMethod:   mapped(idx.get(r, models.ColSamplingMethod), title.String, n.mappings.SamplingMethod),
			Unit:             mapped(idx.get(r, models.ColUnit), nil, n.mappings.Unit),
			ConcRange:        mapped(idx.get(r, models.ColConcRange), nil, n.mappings.ConcentrationRange),
			ConcText:         mapped(idx.get(r, models.ColConcText), title.String, nil),
			Organization:     utils.NullableString(idx.get(r, models.ColOrganization)),
			Date:             ParseDate(idx.get(r, models.ColDate), n.parsers),
			Measurement:      utils.ParseFloat(idx.get(r, models.ColMeasurement)),
			WaterSampleDepth: utils.ParseFloat(idx.get(r, models.ColWaterSampleDepth)),
			Extra:            n.extras(idx, microStar, r),
		}
		if o.Date == nil && !utils.IsNullToken(idx.get(r, models.ColDate)) {
			stats.BadDates++
		}
		if o.Measurement == nil && !utils.IsNullToken(idx.get(r, models.ColMeasurement)) {
			stats.BadMeasurements++
		}
		if _, ok := position(o.Latitude, o.Longitude); !ok {
			stats.MissingPosition++
		}
		out[i] = o
	}
	stats.Rows = len(out)
	return out, stats, nil
}

// Species cleans the species richness extract; t is not modified.
func (n *Normalizer) Species(t *models.Table) ([]SpeciesObservation, error) {
	idx := n.index(t)
	if err := idx.require("species", models.SpeciesColumns); err != nil {
		return nil, err
	}
	out := make([]SpeciesObservation, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = SpeciesObservation{
			Latitude:     utils.ParseFloat(idx.get(r, models.ColLatitude)),
			Longitude:    utils.ParseFloat(idx.get(r, models.ColLongitude)),
			SpeciesCount: utils.ParseInt(idx.get(r, models.ColSpeciesCount)),
			Extra:        n.extras(idx, speciesStar, r),
		}
	}
	return out, nil
}

// mapped trims s, applies the optional case fold and then the synonym lookup.
// Null tokens yield nil.
func mapped(s string, fold func(string) string, synonym func(string) string) *string {
	v := utils.NullableString(s)
	if v == nil {
		return nil
	}
	out := *v
	if fold != nil {
		out = fold(out)
	}
	if synonym != nil {
		out = synonym(out)
	}
	return &out
}
