package config

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed mappings.yaml
var defaultMappingsYAML []byte

// MappingTables is the decoded form of a mappings YAML document.
type MappingTables struct {
	HeaderRenames      map[string]string `yaml:"header_renames"`
	Region             map[string]string `yaml:"region"`
	SamplingMethod     map[string]string `yaml:"sampling_method"`
	Unit               map[string]string `yaml:"unit"`
	ConcentrationRange map[string]string `yaml:"concentration_range"`
	DropColumns        []string          `yaml:"drop_columns"`
}

// Mappings is an immutable set of synonym tables. Build one with NewMappings,
// DefaultMappings or LoadMappings; lookups never modify it.
type Mappings struct {
	headerRenames map[string]string
	region        map[string]string
	sampling      map[string]string
	unit          map[string]string
	concRange     map[string]string
	drop          map[string]struct{}
}

// NewMappings copies t into a Mappings value.
func NewMappings(t MappingTables) *Mappings {
	m := &Mappings{
		headerRenames: maps.Clone(t.HeaderRenames),
		region:        maps.Clone(t.Region),
		sampling:      maps.Clone(t.SamplingMethod),
		unit:          maps.Clone(t.Unit),
		concRange:     maps.Clone(t.ConcentrationRange),
		drop:          make(map[string]struct{}, len(t.DropColumns)),
	}
	for _, c := range t.DropColumns {
		m.drop[c] = struct{}{}
	}
	return m
}

var (
	defaultOnce     sync.Once
	defaultMappings *Mappings
	defaultTables   MappingTables
)

// DefaultMappings returns the embedded synonym tables, decoded once.
func DefaultMappings() *Mappings {
	defaultOnce.Do(func() {
		if err := yaml.Unmarshal(defaultMappingsYAML, &defaultTables); err != nil {
			panic(fmt.Sprintf("config: embedded mappings.yaml: %v", err))
		}
		defaultMappings = NewMappings(defaultTables)
	})
	return defaultMappings
}

// LoadMappings reads a YAML override file and merges it over the defaults:
// map entries are added or replaced, a non-empty drop_columns list replaces
// the default list. An empty path returns the defaults.
func LoadMappings(path string) (*Mappings, error) {
	base := DefaultMappings()
	if path == "" {
		return base, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mappings file '%s': %w", path, err)
	}
	var override MappingTables
	if err := yaml.Unmarshal(b, &override); err != nil {
		return nil, fmt.Errorf("failed to parse mappings file '%s': %w", path, err)
	}

	merged := MappingTables{
		HeaderRenames:      merge(defaultTables.HeaderRenames, override.HeaderRenames),
		Region:             merge(defaultTables.Region, override.Region),
		SamplingMethod:     merge(defaultTables.SamplingMethod, override.SamplingMethod),
		Unit:               merge(defaultTables.Unit, override.Unit),
		ConcentrationRange: merge(defaultTables.ConcentrationRange, override.ConcentrationRange),
		DropColumns:        defaultTables.DropColumns,
	}
	if len(override.DropColumns) > 0 {
		merged.DropColumns = override.DropColumns
	}
	return NewMappings(merged), nil
}

func merge(base, over map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(over))
	maps.Copy(out, base)
	maps.Copy(out, over)
	return out
}

func lookup(m map[string]string, s string) string {
	if v, ok := m[s]; ok {
		return v
	}
	return s
}

// Region returns the canonical region name for s.
func (m *Mappings) Region(s string) string { return lookup(m.region, s) }

// SamplingMethod returns the canonical sampling method for an already
// title-cased s.
func (m *Mappings) SamplingMethod(s string) string { return lookup(m.sampling, s) }

// Unit returns the canonical unit notation for s.
func (m *Mappings) Unit(s string) string { return lookup(m.unit, s) }

// ConcentrationRange returns the canonical class range notation for s.
func (m *Mappings) ConcentrationRange(s string) string { return lookup(m.concRange, s) }

// Dropped reports whether col is in the exclusion list.
func (m *Mappings) Dropped(col string) bool {
	_, ok := m.drop[col]
	return ok
}

// HeaderRenames returns a copy of the raw header rename table.
func (m *Mappings) HeaderRenames() map[string]string { return maps.Clone(m.headerRenames) }
