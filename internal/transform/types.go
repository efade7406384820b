package transform

import "time"

// Observation is one cleaned microplastics record. Nil means "no value".
type Observation struct {
	Latitude         *float64
	Longitude        *float64
	Ocean            *string
	Region           *string
	MarineSetting    *string
	SamplingMethod   *string
	Unit             *string
	ConcRange        *string
	ConcText         *string
	Organization     *string
	Date             *time.Time
	Measurement      *float64
	WaterSampleDepth *float64

	// Extra carries source columns outside the star schema that survived the
	// exclusion list.
	Extra map[string]string
}

// SpeciesObservation is one species richness record.
type SpeciesObservation struct {
	Latitude     *float64
	Longitude    *float64
	SpeciesCount *int64
	Extra        map[string]string
}

// LatLon is the Location natural key.
type LatLon struct {
	Lat float64
	Lon float64
}

func position(lat, lon *float64) (LatLon, bool) {
	if lat == nil || lon == nil {
		return LatLon{}, false
	}
	return LatLon{Lat: *lat, Lon: *lon}, true
}

// RegionKey is the Region natural key. An empty Ocean stands for a region
// recorded without an ocean; normalized values are never empty strings.
type RegionKey struct {
	Ocean  string
	Region string
}

// ConcentrationKey is the Concentration Class natural key.
type ConcentrationKey struct {
	Range string
	Text  string
}

// UnknownRegion names the placeholder region rows.
const UnknownRegion = "Unknown"

// DateRow is one Date dimension row.
type DateRow struct {
	ID       int64
	FullDate time.Time
	Year     int
	Month    int
	Day      int
}

// MicroplasticsFact is one resolved microplastics measurement.
type MicroplasticsFact struct {
	LocationID       *int64
	OceanID          *int64
	RegionID         *int64
	MarineSettingID  *int64
	MethodID         *int64
	UnitID           *int64
	ConcentrationID  *int64
	DateID           *int64
	OrganizationID   *int64
	Measurement      *float64
	WaterSampleDepth *float64
}

// SpeciesFact is one species count pinned to a location.
type SpeciesFact struct {
	LocationID   *int64
	SpeciesCount *int64
}
