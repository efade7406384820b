package transform

import (
	"github.com/BartekS5/ods14/pkg/models"
)

func microTable(rows ...models.Record) *models.Table {
	return &models.Table{
		Name:    "microplastics",
		Columns: append([]string(nil), models.MicroplasticsColumns...),
		Rows:    rows,
	}
}

func speciesTable(rows ...models.Record) *models.Table {
	return &models.Table{
		Name:    "species",
		Columns: append([]string(nil), models.SpeciesColumns...),
		Rows:    rows,
	}
}

func microRow(lat, lon, ocean, region string) models.Record {
	return models.Record{
		models.ColLatitude:  lat,
		models.ColLongitude: lon,
		models.ColOcean:     ocean,
		models.ColRegion:    region,
	}
}

func speciesRow(lat, lon, count string) models.Record {
	return models.Record{
		models.ColLatitude:     lat,
		models.ColLongitude:    lon,
		models.ColSpeciesCount: count,
	}
}

func str(s string) *string { return &s }

func f64(v float64) *float64 { return &v }
