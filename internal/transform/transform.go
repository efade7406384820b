// Package transform turns the raw microplastics and species extracts into
// star schema tables: field cleanup, the position outer join, dimension
// building with surrogate keys, and fact resolution.
package transform

import (
	"errors"

	"github.com/BartekS5/ods14/internal/config"
	"github.com/BartekS5/ods14/pkg/models"
	"github.com/BartekS5/ods14/pkg/utils"
)

// ErrMissingColumn is returned when an extract lacks a required column.
var ErrMissingColumn = errors.New("required column missing")

// Stats summarises one transform run.
type Stats struct {
	Normalize  NormalizeStats
	Resolve    ResolveStats
	MicroRows  int
	Species    int
	MergedRows int
	Matched    int // merged rows carrying both sides
}

// Bundle is the transform output: dimensions plus both fact tables.
type Bundle struct {
	Dimensions        *Dimensions
	MicroplasticsFact []MicroplasticsFact
	SpeciesFact       []SpeciesFact
	Merged            []MergedRow
	Stats             Stats
}

// Transformer runs the transform with a fixed set of mappings and rules.
type Transformer struct {
	mappings *config.Mappings
	parsers  []DateParser
	ladder   []RegionRule
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithDateParsers replaces the sample date parser chain.
func WithDateParsers(p ...DateParser) Option {
	return func(t *Transformer) { t.parsers = p }
}

// WithRegionLadder replaces the region fallback rules.
func WithRegionLadder(rules ...RegionRule) Option {
	return func(t *Transformer) { t.ladder = rules }
}

// New returns a Transformer. A nil m selects the embedded mappings.
func New(m *config.Mappings, opts ...Option) *Transformer {
	t := &Transformer{mappings: m}
	for _, opt := range opts {
		opt(t)
	}
	if t.mappings == nil {
		t.mappings = config.DefaultMappings()
	}
	if len(t.parsers) == 0 {
		t.parsers = DefaultDateParsers()
	}
	if len(t.ladder) == 0 {
		t.ladder = DefaultRegionLadder()
	}
	return t
}

// Run transforms the two raw extracts. Only a missing required column fails
// the call; bad cells become nulls. The inputs are not modified.
func (t *Transformer) Run(micro, species *models.Table) (*Bundle, error) {
	n := NewNormalizer(t.mappings, t.parsers)
	obs, nstats, err := n.Microplastics(micro)
	if err != nil {
		return nil, err
	}
	sobs, err := n.Species(species)
	if err != nil {
		return nil, err
	}

	merged := OuterJoin(obs, sobs)
	dims := BuildDimensions(obs, merged)
	facts, rstats := ResolveMicroplastics(obs, dims, t.ladder)

	b := &Bundle{
		Dimensions:        dims,
		MicroplasticsFact: facts,
		SpeciesFact:       ProjectSpecies(merged, dims.Location),
		Merged:            merged,
		Stats: Stats{
			Normalize:  nstats,
			Resolve:    rstats,
			MicroRows:  len(obs),
			Species:    len(sobs),
			MergedRows: len(merged),
		},
	}
	for _, r := range merged {
		if r.Micro != nil && r.Species != nil {
			b.Stats.Matched++
		}
	}
	return b, nil
}

// Run transforms with the given mappings and default rules.
func Run(m *config.Mappings, micro, species *models.Table) (*Bundle, error) {
	return New(m).Run(micro, species)
}

// Tables flattens the bundle into load-ready tables, in load order.
func (b *Bundle) Tables() []models.TableData {
	d := b.Dimensions
	out := make([]models.TableData, 0, len(models.StarSchema))
	for _, s := range models.StarSchema {
		td := models.TableData{Schema: s}
		switch s.Name {
		case models.DimLocation:
			d.Location.Each(func(id int64, k LatLon) {
				td.Rows = append(td.Rows, []any{id, k.Lat, k.Lon})
			})
		case models.DimOcean:
			td.Rows = namedRows(d.Ocean)
		case models.DimRegion:
			d.Region.Each(func(id int64, k RegionKey) {
				var ocean any
				if k.Ocean != "" {
					ocean = k.Ocean
				}
				td.Rows = append(td.Rows, []any{id, k.Region, ocean})
			})
		case models.DimMarineSetting:
			td.Rows = namedRows(d.MarineSetting)
		case models.DimSampling:
			td.Rows = namedRows(d.Method)
		case models.DimUnit:
			td.Rows = namedRows(d.Unit)
		case models.DimConcentration:
			d.Concentration.Each(func(id int64, k ConcentrationKey) {
				td.Rows = append(td.Rows, []any{id, k.Range, k.Text})
			})
		case models.DimDate:
			for _, r := range d.Dates {
				td.Rows = append(td.Rows, []any{r.ID, r.FullDate, int64(r.Year), int64(r.Month), int64(r.Day)})
			}
		case models.DimOrganization:
			td.Rows = namedRows(d.Organization)
		case models.FactMicro:
			for _, f := range b.MicroplasticsFact {
				td.Rows = append(td.Rows, []any{
					utils.Deref(f.LocationID), utils.Deref(f.OceanID), utils.Deref(f.RegionID),
					utils.Deref(f.MarineSettingID), utils.Deref(f.MethodID), utils.Deref(f.UnitID),
					utils.Deref(f.ConcentrationID), utils.Deref(f.DateID), utils.Deref(f.OrganizationID),
					utils.Deref(f.Measurement), utils.Deref(f.WaterSampleDepth),
				})
			}
		case models.FactSpecies:
			for _, f := range b.SpeciesFact {
				td.Rows = append(td.Rows, []any{utils.Deref(f.LocationID), utils.Deref(f.SpeciesCount)})
			}
		}
		out = append(out, td)
	}
	return out
}

func namedRows(d *Dimension[string]) [][]any {
	rows := make([][]any, 0, d.Len())
	d.Each(func(id int64, name string) {
		rows = append(rows, []any{id, name})
	})
	return rows
}

// mergedColumns are the fixed leading columns of MergedTable.
var mergedColumns = []models.Column{
	{Name: "latitude", Type: models.TypeFloat},
	{Name: "longitude", Type: models.TypeFloat},
	{Name: "ocean", Type: models.TypeString},
	{Name: "region", Type: models.TypeString},
	{Name: "marine_setting", Type: models.TypeString},
	{Name: "sampling_method", Type: models.TypeString},
	{Name: "unit", Type: models.TypeString},
	{Name: "concentration_range", Type: models.TypeString},
	{Name: "concentration_text", Type: models.TypeString},
	{Name: "organization", Type: models.TypeString},
	{Name: "sample_date", Type: models.TypeDate},
	{Name: "measurement", Type: models.TypeFloat},
	{Name: "water_sample_depth", Type: models.TypeFloat},
	{Name: "species_count", Type: models.TypeInt},
}

// MergedTable flattens the outer join: the cleaned fields of both sides
// followed by the surviving extra columns in sorted order, suffixed where
// both sources carried them.
func (b *Bundle) MergedTable() models.TableData {
	extras := ExtraColumns(b.Merged)
	cols := append([]models.Column(nil), mergedColumns...)
	for _, name := range extras {
		cols = append(cols, models.Column{Name: name, Type: models.TypeString})
	}
	td := models.TableData{Schema: models.TableSchema{Name: models.MergedObservations, Columns: cols}}

	for _, r := range b.Merged {
		o := r.Micro
		if o == nil {
			o = &Observation{}
		}
		row := []any{
			utils.Deref(r.Latitude), utils.Deref(r.Longitude),
			utils.Deref(o.Ocean), utils.Deref(o.Region), utils.Deref(o.MarineSetting),
			utils.Deref(o.SamplingMethod), utils.Deref(o.Unit), utils.Deref(o.ConcRange),
			utils.Deref(o.ConcText), utils.Deref(o.Organization), utils.Deref(o.Date),
			utils.Deref(o.Measurement), utils.Deref(o.WaterSampleDepth),
			utils.Deref(r.SpeciesCount()),
		}
		for _, name := range extras {
			if v, ok := r.Extra[name]; ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		td.Rows = append(td.Rows, row)
	}
	return td
}

// ExportTables is Tables plus the merged relation, for file exports.
func (b *Bundle) ExportTables() []models.TableData {
	return append(b.Tables(), b.MergedTable())
}
