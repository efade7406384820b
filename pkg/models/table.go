// Package models holds the data shapes shared across the extract, transform
// and load stages: the raw tabular extract and the star schema table layout.
package models

// Raw column names of the microplastics extract after header renames.
const (
	ColLatitude         = "Latitude"
	ColLongitude        = "Longitude"
	ColOcean            = "Ocean"
	ColRegion           = "Region"
	ColMarineSetting    = "Marine Setting"
	ColSamplingMethod   = "Sampling Method"
	ColUnit             = "Unit"
	ColConcRange        = "Concentration class range"
	ColConcText         = "Concentration class text"
	ColOrganization     = "ORGANIZATION"
	ColDate             = "Date (MM-DD-YYYY)"
	ColMeasurement      = "Microplastics measurement"
	ColWaterSampleDepth = "Water Sample Depth"
	ColSpeciesCount     = "Species Count"
)

// MicroplasticsColumns are the columns the transform requires in the
// microplastics extract.
var MicroplasticsColumns = []string{
	ColLatitude, ColLongitude, ColOcean, ColRegion, ColMarineSetting,
	ColSamplingMethod, ColUnit, ColConcRange, ColConcText, ColOrganization,
	ColDate, ColMeasurement, ColWaterSampleDepth,
}

// SpeciesColumns are the columns the transform requires in the species extract.
var SpeciesColumns = []string{ColLatitude, ColLongitude, ColSpeciesCount}

// Record is one raw row keyed by column name. Values are the untouched cell
// text; an absent key and an empty string both mean "no value".
type Record map[string]string

// Table is an ordered-column raw extract.
type Table struct {
	Name    string
	Columns []string
	Rows    []Record
}

// Rename renames columns in place, both in the header and in every row.
func (t *Table) Rename(renames map[string]string) {
	if len(renames) == 0 {
		return
	}
	for i, c := range t.Columns {
		if to, ok := renames[c]; ok && to != "" {
			t.Columns[i] = to
		}
	}
	for _, r := range t.Rows {
		for from, to := range renames {
			if v, ok := r[from]; ok && to != "" && from != to {
				r[to] = v
				delete(r, from)
			}
		}
	}
}
