package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/shipyard/internal/pipeline"
	"github.com/papapumpkin/shipyard/internal/ui"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create the isolated build environment (idempotent)",
	RunE:  runProvision,
}

func init() {
	provisionCmd.Flags().String("toolset", "", "override the pinned toolset version")
	rootCmd.AddCommand(provisionCmd)
}

func runProvision(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	printer := ui.New()

	if v, _ := cmd.Flags().GetString("toolset"); v != "" {
		cfg.ToolsetVersion = v
	}

	m, err := loadManifest(&cfg)
	if err != nil {
		printer.Error(err.Error())
		return err
	}

	runner := newRunner(&cfg)
	prov := newProvisioner(&cfg, m, runner)

	ctx := cmd.Context()
	pipe, closeJournal := newPipeline(ctx, &cfg, printer)
	defer closeJournal()

	return pipe.Execute(ctx, "provision", []pipeline.Stage{
		{Name: "provision environment", Run: func(ctx context.Context) error {
			created, err := prov.Ensure(ctx)
			if err != nil {
				return err
			}
			if !created {
				printer.Skip("provisioning", "sandbox already present")
			}
			return nil
		}},
	})
}
