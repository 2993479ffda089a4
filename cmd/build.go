package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/shipyard/internal/pipeline"
	"github.com/papapumpkin/shipyard/internal/pkgbuild"
	"github.com/papapumpkin/shipyard/internal/ui"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build packages in declared dependency order",
}

var buildDepsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Build the shared dependency packages",
	RunE:  runBuildDeps,
}

var buildLeavesCmd = &cobra.Command{
	Use:   "leaves",
	Short: "Build the backend, worker, and frontend packages",
	RunE:  runBuildLeaves,
}

func init() {
	buildLeavesCmd.Flags().String("mode", string(pkgbuild.ModeDevelop), "build mode: develop or package")

	buildCmd.AddCommand(buildDepsCmd)
	buildCmd.AddCommand(buildLeavesCmd)
	rootCmd.AddCommand(buildCmd)
}

func runBuildDeps(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	printer := ui.New()

	m, err := loadManifest(&cfg)
	if err != nil {
		printer.Error(err.Error())
		return err
	}

	runner := newRunner(&cfg)
	prov := newProvisioner(&cfg, m, runner)
	builder := newBuilder(&cfg, m, runner, printer)

	ctx := cmd.Context()
	pipe, closeJournal := newPipeline(ctx, &cfg, printer)
	defer closeJournal()

	return pipe.Execute(ctx, "build-deps", []pipeline.Stage{
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
		{Name: "build dependency packages", Run: builder.BuildDependencies},
	})
}

func runBuildLeaves(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	printer := ui.New()

	modeFlag, _ := cmd.Flags().GetString("mode")
	mode := pkgbuild.Mode(modeFlag)
	if mode != pkgbuild.ModeDevelop && mode != pkgbuild.ModePackage {
		return fmt.Errorf("unknown build mode %q", modeFlag)
	}

	m, err := loadManifest(&cfg)
	if err != nil {
		printer.Error(err.Error())
		return err
	}

	runner := newRunner(&cfg)
	builder := newBuilder(&cfg, m, runner, printer)

	ctx := cmd.Context()
	pipe, closeJournal := newPipeline(ctx, &cfg, printer)
	defer closeJournal()

	return pipe.Execute(ctx, "build-leaves", []pipeline.Stage{
		{Name: "build leaf packages (" + string(mode) + ")", Run: func(ctx context.Context) error {
			return builder.BuildLeaves(ctx, mode)
		}},
	})
}
