package report

import (
	"context"
	"fmt"

	"github.com/BartekS5/ods14/internal/load"
)

// Averages multiply by 1.0 so integer columns average as floats everywhere.

const pairedJoin = `FROM fact_species s
JOIN fact_microplastics m ON m.location_id = s.location_id
LEFT JOIN dim_region r ON m.region_id = r.region_id
LEFT JOIN dim_date d ON m.date_id = d.date_id
%s`

func speciesMicroByRegion(ctx context.Context, db Querier, d load.Dialect, rng Range) (*Result, error) {
	q := &query{d: d}
	stmt := fmt.Sprintf(`SELECT region,
  COUNT(*) AS locations,
  AVG(avg_species_count) AS region_avg_species,
  AVG(avg_microplastics) AS region_avg_microplastics
FROM (
  SELECT r.region AS region, s.location_id AS location_id,
    AVG(1.0 * s.species_count) AS avg_species_count,
    AVG(m.measurement) AS avg_microplastics
  `+pairedJoin+`
  GROUP BY r.region, s.location_id
) paired
GROUP BY region
ORDER BY region`, q.dateFilter(rng))
	return fetch(ctx, db, stmt, q.args...)
}

func speciesByConcentrationClass(ctx context.Context, db Querier, d load.Dialect, rng Range) (*Result, error) {
	q := &query{d: d}
	stmt := fmt.Sprintf(`SELECT c.concentration_class_text AS class_text,
  c.concentration_class_range AS class_range,
  AVG(1.0 * s.species_count) AS avg_species_count,
  COUNT(*) AS n_samples
FROM fact_species s
JOIN fact_microplastics m ON m.location_id = s.location_id
JOIN dim_concentration_class c ON m.concentration_id = c.concentration_id
LEFT JOIN dim_date d ON m.date_id = d.date_id
%s
GROUP BY c.concentration_class_text, c.concentration_class_range
ORDER BY avg_species_count DESC, class_text`, q.dateFilter(rng))
	return fetch(ctx, db, stmt, q.args...)
}

func depthBins(ctx context.Context, db Querier, d load.Dialect, rng Range) (*Result, error) {
	q := &query{d: d}
	stmt := fmt.Sprintf(`SELECT depth_band,
  AVG(species_count) AS avg_species_count,
  AVG(measurement) AS avg_microplastics,
  COUNT(*) AS n_samples
FROM (
  SELECT
    CASE
      WHEN m.water_sample_depth IS NULL THEN 'Unknown'
      WHEN m.water_sample_depth < 5 THEN '0-5m'
      WHEN m.water_sample_depth < 20 THEN '5-20m'
      WHEN m.water_sample_depth < 50 THEN '20-50m'
      WHEN m.water_sample_depth < 200 THEN '50-200m'
      ELSE '200m+'
    END AS depth_band,
    1.0 * s.species_count AS species_count,
    m.measurement AS measurement
  `+pairedJoin+`
) banded
GROUP BY depth_band
ORDER BY CASE depth_band
  WHEN 'Unknown' THEN 0
  WHEN '0-5m' THEN 1
  WHEN '5-20m' THEN 2
  WHEN '20-50m' THEN 3
  WHEN '50-200m' THEN 4
  ELSE 5
END`, q.dateFilter(rng))
	return fetch(ctx, db, stmt, q.args...)
}

func pairedObservations(ctx context.Context, db Querier, d load.Dialect, rng Range) (*Result, error) {
	q := &query{d: d}
	stmt := fmt.Sprintf(`SELECT r.region, o.ocean, s.location_id, s.species_count,
  m.measurement, m.water_sample_depth, l.latitude, l.longitude, d.full_date
FROM fact_species s
JOIN fact_microplastics m ON m.location_id = s.location_id
LEFT JOIN dim_region r ON m.region_id = r.region_id
LEFT JOIN dim_ocean o ON m.ocean_id = o.ocean_id
LEFT JOIN dim_location l ON s.location_id = l.location_id
LEFT JOIN dim_date d ON m.date_id = d.date_id
%s
ORDER BY s.location_id, m.unique_id, s.species_id`, q.dateFilter(rng))
	return fetch(ctx, db, stmt, q.args...)
}

func concentrationByRegion(ctx context.Context, db Querier, d load.Dialect, rng Range) (*Result, error) {
	q := &query{d: d}
	stmt := fmt.Sprintf(`SELECT r.region, c.concentration_class_text AS class_text,
  COUNT(*) AS n_samples,
  AVG(m.measurement) AS avg_measurement,
  AVG(1.0 * s.species_count) AS avg_species_count
FROM fact_microplastics m
LEFT JOIN fact_species s ON s.location_id = m.location_id
LEFT JOIN dim_region r ON m.region_id = r.region_id
LEFT JOIN dim_concentration_class c ON m.concentration_id = c.concentration_id
LEFT JOIN dim_date d ON m.date_id = d.date_id
%s
GROUP BY r.region, c.concentration_class_text
ORDER BY r.region, avg_measurement DESC`, q.dateFilter(rng))
	return fetch(ctx, db, stmt, q.args...)
}

// pairedRows returns (region, location_id, species_count, measurement) for
// every species/microplastics pair sharing a location.
func pairedRows(ctx context.Context, db Querier, d load.Dialect, rng Range) (*Result, error) {
	q := &query{d: d}
	stmt := fmt.Sprintf(`SELECT r.region, s.location_id, s.species_count, m.measurement
`+pairedJoin, q.dateFilter(rng))
	return fetch(ctx, db, stmt, q.args...)
}

// locationAverages returns per (region, location) averages of the pairs.
func locationAverages(ctx context.Context, db Querier, d load.Dialect, rng Range) (*Result, error) {
	q := &query{d: d}
	stmt := fmt.Sprintf(`SELECT r.region, s.location_id,
  AVG(1.0 * s.species_count) AS species_avg,
  AVG(m.measurement) AS micro_avg
`+pairedJoin+`
GROUP BY r.region, s.location_id`, q.dateFilter(rng))
	return fetch(ctx, db, stmt, q.args...)
}

// regionAverages returns per-region averages of the pairs.
func regionAverages(ctx context.Context, db Querier, d load.Dialect, rng Range) (*Result, error) {
	q := &query{d: d}
	stmt := fmt.Sprintf(`SELECT r.region,
  AVG(1.0 * s.species_count) AS avg_species,
  AVG(m.measurement) AS avg_micro
`+pairedJoin+`
GROUP BY r.region`, q.dateFilter(rng))
	return fetch(ctx, db, stmt, q.args...)
}

// methodRows returns every microplastics row with its method and any
// species count at the same location.
func methodRows(ctx context.Context, db Querier, d load.Dialect, rng Range) (*Result, error) {
	q := &query{d: d}
	stmt := fmt.Sprintf(`SELECT sm.sampling_method, m.method_id, m.measurement, s.species_count
FROM fact_microplastics m
LEFT JOIN fact_species s ON s.location_id = m.location_id
LEFT JOIN dim_sampling_method sm ON m.method_id = sm.method_id
LEFT JOIN dim_date d ON m.date_id = d.date_id
%s`, q.dateFilter(rng))
	return fetch(ctx, db, stmt, q.args...)
}
