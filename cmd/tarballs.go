package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/shipyard/internal/pipeline"
	"github.com/papapumpkin/shipyard/internal/ui"
)

var tarballsCmd = &cobra.Command{
	Use:   "tarballs",
	Short: "Produce one distributable archive per top-level package",
	Long: "Purges stale version markers and the distribution directory, re-validates\n" +
		"the environment, rebuilds dependency packages from scratch, then archives\n" +
		"every top-level package. A failure on any package aborts; partial artifact\n" +
		"sets are invalid.",
	RunE: runTarballs,
}

func init() {
	rootCmd.AddCommand(tarballsCmd)
}

func runTarballs(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	printer := ui.New()

	m, err := loadManifest(&cfg)
	if err != nil {
		printer.Error(err.Error())
		return err
	}

	runner := newRunner(&cfg)
	packager := newPackager(&cfg, m, runner, printer)

	ctx := cmd.Context()
	pipe, closeJournal := newPipeline(ctx, &cfg, printer)
	defer closeJournal()

	return pipe.Execute(ctx, "tarballs", []pipeline.Stage{
		{Name: "package artifacts", Run: packager.Package},
	})
}
