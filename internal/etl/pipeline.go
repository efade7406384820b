package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/BartekS5/ods14/internal/load"
	"github.com/BartekS5/ods14/internal/metrics"
	"github.com/BartekS5/ods14/internal/transform"
	"github.com/BartekS5/ods14/pkg/logger"
	"github.com/BartekS5/ods14/pkg/models"
)

// Pipeline runs extract, transform, validate and load once.
type Pipeline struct {
	Extractor   Extractor
	Transformer *transform.Transformer
	Validator   *Validator
	Loader      Loader
	Metrics     *metrics.Recorder
	// ParquetDir, when set, receives a Parquet copy of every table.
	ParquetDir string
	DryRun     bool
}

// NewPipeline creates a pipeline with dry-run support.
func NewPipeline(ext Extractor, tr *transform.Transformer, loader Loader, dryRun bool) *Pipeline {
	return &Pipeline{
		Extractor:   ext,
		Transformer: tr,
		Validator:   NewValidator(),
		Loader:      loader,
		DryRun:      dryRun,
	}
}

// Run executes the pipeline and returns the transform bundle.
func (p *Pipeline) Run(ctx context.Context) (*transform.Bundle, error) {
	logger.Infof("Starting pipeline. DryRun: %v", p.DryRun)
	startTime := time.Now()

	var micro, species *models.Table
	err := p.Metrics.Time("extract", func() (err error) {
		micro, species, err = p.Extractor.Extract(ctx)
		return err
	})
	if err != nil {
		logger.Errorf("Extraction failed: %v", err)
		return nil, fmt.Errorf("extract: %w", err)
	}
	p.Metrics.Rows("extract", "microplastics", len(micro.Rows))
	p.Metrics.Rows("extract", "species", len(species.Rows))

	tr := p.Transformer
	if tr == nil {
		tr = transform.New(nil)
	}
	var bundle *transform.Bundle
	err = p.Metrics.Time("transform", func() (err error) {
		bundle, err = tr.Run(micro, species)
		return err
	})
	if err != nil {
		logger.Errorf("Transform failed: %v", err)
		return nil, fmt.Errorf("transform: %w", err)
	}
	p.report(bundle)

	tables := bundle.Tables()
	if p.Validator != nil {
		if err := p.Metrics.Time("validate", func() error { return p.Validator.Validate(tables) }); err != nil {
			logger.Errorf("Validation failed: %v", err)
			return bundle, err
		}
	}

	if p.ParquetDir != "" {
		err := p.Metrics.Time("parquet", func() error {
			_, err := load.WriteParquet(p.ParquetDir, bundle.ExportTables())
			return err
		})
		if err != nil {
			return bundle, fmt.Errorf("parquet export: %w", err)
		}
	}

	if p.DryRun {
		for _, td := range tables {
			logger.Infof("[DRY RUN] Would load %d rows into %s", len(td.Rows), td.Schema.Name)
		}
	} else {
		if err := p.Metrics.Time("load", func() error { return p.Loader.Load(ctx, tables) }); err != nil {
			logger.Errorf("Loading failed: %v", err)
			return bundle, fmt.Errorf("load: %w", err)
		}
		for _, td := range tables {
			p.Metrics.Rows("load", td.Schema.Name, len(td.Rows))
		}
	}

	logger.Infof("Pipeline finished successfully in %s.", time.Since(startTime).Round(time.Millisecond))
	return bundle, nil
}

// report logs and records the transform counts.
func (p *Pipeline) report(b *transform.Bundle) {
	s := b.Stats
	logger.Infof("Transform: %d microplastics rows, %d species rows, %d merged (%d matched)",
		s.MicroRows, s.Species, s.MergedRows, s.Matched)
	if s.Normalize.BadDates > 0 || s.Normalize.BadMeasurements > 0 || s.Normalize.MissingPosition > 0 {
		logger.Warnf("Normalize: %d unparseable dates, %d unparseable measurements, %d rows without position",
			s.Normalize.BadDates, s.Normalize.BadMeasurements, s.Normalize.MissingPosition)
	}
	d := b.Dimensions
	logger.Infof("Dimensions: location=%d ocean=%d region=%d marine_setting=%d method=%d unit=%d concentration=%d date=%d organization=%d",
		d.Location.Len(), d.Ocean.Len(), d.Region.Len(), d.MarineSetting.Len(), d.Method.Len(),
		d.Unit.Len(), d.Concentration.Len(), len(d.Dates), d.Organization.Len())

	for _, rule := range []string{transform.RuleExact, transform.RuleRegionOnly, transform.RuleOceanUnknown, transform.RuleGlobalUnknown, transform.RuleUnresolved} {
		n := s.Resolve.RegionRules[rule]
		p.Metrics.RegionRule(rule, n)
		if n > 0 {
			logger.Debugf("Region rule %s: %d rows", rule, n)
		}
	}
	for table, n := range s.Resolve.Misses {
		logger.Warnf("Resolve: %d %s keys had no dimension row", n, table)
	}

	p.Metrics.Rows("normalize", "bad_dates", s.Normalize.BadDates)
	p.Metrics.Rows("merge", "rows", s.MergedRows)
	p.Metrics.Rows("merge", "matched", s.Matched)
}
