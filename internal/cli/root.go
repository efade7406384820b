// Package cli wires the ods14 commands with Cobra.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/BartekS5/ods14/pkg/logger"
)

// GlobalOptions are shared by every sub-command.
type GlobalOptions struct {
	ConfigFile string
	Debug      bool
}

func NewRootCmd() *cobra.Command {
	g := &GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "ods14",
		Short: "ods14 - marine microplastics and species richness star schema",
		Long: `ods14 extracts the marine microplastics and species richness datasets,
builds a star schema (nine dimensions, two facts), loads it into a relational
store and runs the analytical reports over it.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init()
			if g.Debug {
				logger.SetLevel(logger.DEBUG)
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.ConfigFile, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&g.Debug, "debug", false, "Verbose logging")

	rootCmd.AddCommand(
		NewETLCmd(g),
		NewSchemaCmd(g),
		NewReportCmd(g),
		NewExportCmd(g),
	)

	return rootCmd
}
