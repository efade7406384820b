package cli

import (
	"github.com/spf13/cobra"
)

type ETLOptions struct {
	DryRun       bool
	ParquetDir   string
	MappingsFile string
	BatchSize    int
}

func NewETLCmd(g *GlobalOptions) *cobra.Command {
	opts := &ETLOptions{}

	cmd := &cobra.Command{
		Use:   "etl",
		Short: "Extract, transform and load both datasets",
		RunE: func(c *cobra.Command, args []string) error {
			return runETL(c.Context(), g, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Transform and validate without writing to the database")
	cmd.Flags().StringVar(&opts.ParquetDir, "parquet-dir", "", "Also write every table as Parquet into this directory")
	cmd.Flags().StringVarP(&opts.MappingsFile, "mappings", "m", "", "Synonym tables overriding the built-in mappings")
	cmd.Flags().IntVarP(&opts.BatchSize, "batch-size", "b", 0, "Rows per INSERT statement")
	return cmd
}

type SchemaOptions struct {
	Reset bool
}

func NewSchemaCmd(g *GlobalOptions) *cobra.Command {
	opts := &SchemaOptions{}

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Star schema DDL",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create the dimension and fact tables",
		RunE: func(c *cobra.Command, args []string) error {
			return runSchemaCreate(c.Context(), g, opts)
		},
	}
	create.Flags().BoolVar(&opts.Reset, "reset", false, "Drop existing tables first")

	cmd.AddCommand(create)
	return cmd
}

type ReportOptions struct {
	Names     []string
	Start     string
	End       string
	OutDir    string
	NoArchive bool
}

func NewReportCmd(g *GlobalOptions) *cobra.Command {
	opts := &ReportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run analytical reports against the loaded star schema",
		RunE: func(c *cobra.Command, args []string) error {
			return runReports(c.Context(), g, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Names, "name", "n", nil, "Reports to run (default: all)")
	cmd.Flags().StringVar(&opts.Start, "start", "", "Earliest sample date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.End, "end", "", "Latest sample date, exclusive (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "", "CSV output directory (default: reports_dir)")
	cmd.Flags().BoolVar(&opts.NoArchive, "no-archive", false, "Skip the MongoDB archive even when configured")

	list := &cobra.Command{
		Use:   "list",
		Short: "List the available reports",
		Run: func(c *cobra.Command, args []string) {
			listReports(c.OutOrStdout())
		},
	}
	cmd.AddCommand(list)
	return cmd
}

type ExportOptions struct {
	Dir          string
	MappingsFile string
}

func NewExportCmd(g *GlobalOptions) *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Transform both datasets and write the star schema as Parquet only",
		RunE: func(c *cobra.Command, args []string) error {
			return runExport(c.Context(), g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Dir, "dir", "d", "", "Output directory (default: parquet_dir)")
	cmd.Flags().StringVarP(&opts.MappingsFile, "mappings", "m", "", "Synonym tables overriding the built-in mappings")
	return cmd
}
