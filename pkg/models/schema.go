package models

// ColumnType is the logical type of a star schema column. Dialects map it to
// their own SQL type names.
type ColumnType string

const (
	TypeInt    ColumnType = "int"
	TypeFloat  ColumnType = "float"
	TypeString ColumnType = "string"
	TypeDate   ColumnType = "date"
)

// Column describes one column of a star schema table.
type Column struct {
	Name       string     `json:"name"`
	Type       ColumnType `json:"type"`
	Size       int        `json:"size,omitempty"` // varchar length for strings
	References string     `json:"references,omitempty"`
}

// TableSchema describes one star schema table. PrimaryKey names the surrogate
// key column; AutoKey marks it as database generated (fact tables), in which
// case it is not part of Columns.
type TableSchema struct {
	Name       string   `json:"name"`
	PrimaryKey string   `json:"primaryKey"`
	AutoKey    bool     `json:"autoKey,omitempty"`
	Columns    []Column `json:"columns"`
	Index      []string `json:"index,omitempty"`
}

// ColumnNames returns the insertable column names in declaration order.
func (s TableSchema) ColumnNames() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// Table names of the star schema.
const (
	DimLocation      = "dim_location"
	DimOcean         = "dim_ocean"
	DimRegion        = "dim_region"
	DimMarineSetting = "dim_marine_setting"
	DimSampling      = "dim_sampling_method"
	DimUnit          = "dim_unit"
	DimConcentration = "dim_concentration_class"
	DimDate          = "dim_date"
	DimOrganization  = "dim_organization"
	FactMicro        = "fact_microplastics"
	FactSpecies      = "fact_species"

	// MergedObservations is the position outer join exported alongside the
	// star schema. It is never loaded into the relational store.
	MergedObservations = "merged_observations"
)

// StarSchema lists every table in load order: dimensions before the facts
// that reference them.
var StarSchema = []TableSchema{
	{
		Name: DimLocation, PrimaryKey: "location_id",
		Columns: []Column{
			{Name: "location_id", Type: TypeInt},
			{Name: "latitude", Type: TypeFloat},
			{Name: "longitude", Type: TypeFloat},
		},
	},
	{
		Name: DimOcean, PrimaryKey: "ocean_id",
		Columns: []Column{
			{Name: "ocean_id", Type: TypeInt},
			{Name: "ocean", Type: TypeString, Size: 255},
		},
	},
	{
		Name: DimRegion, PrimaryKey: "region_id",
		Columns: []Column{
			{Name: "region_id", Type: TypeInt},
			{Name: "region", Type: TypeString, Size: 255},
			{Name: "ocean", Type: TypeString, Size: 255},
		},
	},
	{
		Name: DimMarineSetting, PrimaryKey: "marine_setting_id",
		Columns: []Column{
			{Name: "marine_setting_id", Type: TypeInt},
			{Name: "marine_setting", Type: TypeString, Size: 255},
		},
	},
	{
		Name: DimSampling, PrimaryKey: "method_id",
		Columns: []Column{
			{Name: "method_id", Type: TypeInt},
			{Name: "sampling_method", Type: TypeString, Size: 255},
		},
	},
	{
		Name: DimUnit, PrimaryKey: "unit_id",
		Columns: []Column{
			{Name: "unit_id", Type: TypeInt},
			{Name: "unit", Type: TypeString, Size: 255},
		},
	},
	{
		Name: DimConcentration, PrimaryKey: "concentration_id",
		Columns: []Column{
			{Name: "concentration_id", Type: TypeInt},
			{Name: "concentration_class_range", Type: TypeString, Size: 64},
			{Name: "concentration_class_text", Type: TypeString, Size: 255},
		},
	},
	{
		Name: DimDate, PrimaryKey: "date_id",
		Columns: []Column{
			{Name: "date_id", Type: TypeInt},
			{Name: "full_date", Type: TypeDate},
			{Name: "year", Type: TypeInt},
			{Name: "month", Type: TypeInt},
			{Name: "day", Type: TypeInt},
		},
	},
	{
		Name: DimOrganization, PrimaryKey: "organization_id",
		Columns: []Column{
			{Name: "organization_id", Type: TypeInt},
			{Name: "organization", Type: TypeString, Size: 255},
		},
	},
	{
		Name: FactMicro, PrimaryKey: "unique_id", AutoKey: true,
		Columns: []Column{
			{Name: "location_id", Type: TypeInt, References: DimLocation},
			{Name: "ocean_id", Type: TypeInt, References: DimOcean},
			{Name: "region_id", Type: TypeInt, References: DimRegion},
			{Name: "marine_setting_id", Type: TypeInt, References: DimMarineSetting},
			{Name: "method_id", Type: TypeInt, References: DimSampling},
			{Name: "unit_id", Type: TypeInt, References: DimUnit},
			{Name: "concentration_id", Type: TypeInt, References: DimConcentration},
			{Name: "date_id", Type: TypeInt, References: DimDate},
			{Name: "organization_id", Type: TypeInt, References: DimOrganization},
			{Name: "measurement", Type: TypeFloat},
			{Name: "water_sample_depth", Type: TypeFloat},
		},
		Index: []string{"location_id"},
	},
	{
		Name: FactSpecies, PrimaryKey: "species_id", AutoKey: true,
		Columns: []Column{
			{Name: "location_id", Type: TypeInt, References: DimLocation},
			{Name: "species_count", Type: TypeInt},
		},
		Index: []string{"location_id"},
	},
}

// Schema returns the table schema by name.
func Schema(name string) (TableSchema, bool) {
	for _, s := range StarSchema {
		if s.Name == name {
			return s, true
		}
	}
	return TableSchema{}, false
}

// TableData is one star schema table ready for loading. Row values line up
// with Schema.Columns and are int64, float64, string, time.Time or nil.
type TableData struct {
	Schema TableSchema
	Rows   [][]any
}
