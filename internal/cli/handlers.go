package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/BartekS5/ods14/internal/config"
	"github.com/BartekS5/ods14/internal/etl"
	"github.com/BartekS5/ods14/internal/extract"
	"github.com/BartekS5/ods14/internal/load"
	"github.com/BartekS5/ods14/internal/metrics"
	"github.com/BartekS5/ods14/internal/report"
	"github.com/BartekS5/ods14/internal/transform"
	"github.com/BartekS5/ods14/pkg/database"
	"github.com/BartekS5/ods14/pkg/logger"
)

const reportCollection = "report_rows"

func loadConfig(g *GlobalOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(g.ConfigFile)
	if err != nil {
		return nil, err
	}
	if cfg.LogFile != "" {
		lvl := logger.INFO
		if cfg.Debug || g.Debug {
			lvl = logger.DEBUG
		}
		if err := logger.InitLogger(cfg.LogFile, lvl); err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
	} else if cfg.Debug {
		logger.SetLevel(logger.DEBUG)
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config) (*sql.DB, load.Dialect, error) {
	d, err := load.DialectFor(cfg.Driver)
	if err != nil {
		return nil, load.Dialect{}, err
	}
	if err := cfg.RequireDSN(); err != nil {
		return nil, load.Dialect{}, err
	}
	db, err := database.ConnectSQL(ctx, d.Driver, cfg.DSN)
	if err != nil {
		return nil, load.Dialect{}, err
	}
	return db, d, nil
}

func s3Options(cfg *config.Config) extract.S3Options {
	return extract.S3Options{
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		PathStyle:       cfg.S3PathStyle,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	}
}

func newExtractor(cfg *config.Config, m *config.Mappings) *extract.CSVExtractor {
	opener := extract.NewOpener(s3Options(cfg))
	return extract.NewCSVExtractor(cfg.MicroplasticsPath, cfg.SpeciesPath, cfg.InputEncoding, m.HeaderRenames(), opener)
}

func mappingsFile(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	return cfg.MappingsFile
}

func runETL(ctx context.Context, g *GlobalOptions, opts *ETLOptions) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	defer logger.Close()

	m, err := config.LoadMappings(mappingsFile(opts.MappingsFile, cfg))
	if err != nil {
		return err
	}

	rec, err := metrics.New()
	if err != nil {
		return err
	}

	var loader etl.Loader
	if !opts.DryRun {
		db, d, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		batch := cfg.BatchSize
		if opts.BatchSize > 0 {
			batch = opts.BatchSize
		}
		loader = load.NewSQLLoader(db, d, batch)
	}

	pipeline := etl.NewPipeline(newExtractor(cfg, m), transform.New(m), loader, opts.DryRun)
	pipeline.Metrics = rec
	pipeline.ParquetDir = opts.ParquetDir
	if pipeline.ParquetDir == "" {
		pipeline.ParquetDir = cfg.ParquetDir
	}

	_, runErr := pipeline.Run(ctx)

	if cfg.MetricsFile != "" {
		if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warnf("Could not write metrics to %s: %v", cfg.MetricsFile, err)
		}
	}
	return runErr
}

func runSchemaCreate(ctx context.Context, g *GlobalOptions, opts *SchemaOptions) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	defer logger.Close()

	db, d, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := load.CreateSchema(ctx, db, d, opts.Reset); err != nil {
		return err
	}
	logger.Infof("Star schema created on %s (reset=%v).", d.Name, opts.Reset)
	return nil
}

// parseRange reads the --start/--end flags. Either may be empty.
func parseRange(start, end string) (report.Range, error) {
	var rng report.Range
	parse := func(flag, s string) (*time.Time, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s %q: want YYYY-MM-DD", flag, s)
		}
		return &t, nil
	}

	var err error
	if rng.Start, err = parse("start", start); err != nil {
		return rng, err
	}
	if rng.End, err = parse("end", end); err != nil {
		return rng, err
	}
	if rng.Start != nil && rng.End != nil && !rng.Start.Before(*rng.End) {
		return rng, fmt.Errorf("empty date range: --start %s is not before --end %s", start, end)
	}
	return rng, nil
}

func runReports(ctx context.Context, g *GlobalOptions, opts *ReportOptions) error {
	rng, err := parseRange(opts.Start, opts.End)
	if err != nil {
		return err
	}
	// Fail on a bad name before connecting anywhere.
	if _, err := report.Lookup(opts.Names...); err != nil {
		return err
	}

	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	defer logger.Close()

	db, d, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	results, err := report.NewRunner(db, d, 0).Run(ctx, opts.Names, rng)
	if err != nil {
		return err
	}

	var archive report.Archiver
	if cfg.MongoURI != "" && !opts.NoArchive {
		client, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return err
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}()
		archive = report.NewMongoArchive(client, cfg.MongoDatabase, reportCollection)
	}

	outDir := opts.OutDir
	if outDir == "" {
		outDir = cfg.ReportsDir
	}
	runID := uuid.NewString()
	if err := report.Publish(ctx, outDir, runID, results, archive); err != nil {
		return err
	}
	logger.Infof("Report run %s finished: %d reports written to %s", runID, len(results), outDir)
	return nil
}

func listReports(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range report.Catalog {
		fmt.Fprintf(tw, "%s\t%s\n", r.Name, r.Description)
	}
	tw.Flush()
}

func runExport(ctx context.Context, g *GlobalOptions, opts *ExportOptions) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	defer logger.Close()

	dir := opts.Dir
	if dir == "" {
		dir = cfg.ParquetDir
	}
	if dir == "" {
		return fmt.Errorf("no output directory: pass --dir or set ODS14_PARQUET_DIR")
	}

	m, err := config.LoadMappings(mappingsFile(opts.MappingsFile, cfg))
	if err != nil {
		return err
	}
	micro, species, err := newExtractor(cfg, m).Extract(ctx)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	bundle, err := transform.New(m).Run(micro, species)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	paths, err := load.WriteParquet(dir, bundle.ExportTables())
	if err != nil {
		return err
	}
	logger.Infof("Wrote %d Parquet files to %s", len(paths), dir)
	return nil
}
