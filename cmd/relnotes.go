package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/shipyard/internal/gitx"
	"github.com/papapumpkin/shipyard/internal/pipeline"
	"github.com/papapumpkin/shipyard/internal/relnotes"
	"github.com/papapumpkin/shipyard/internal/ui"
)

var relnotesCmd = &cobra.Command{
	Use:   "relnotes",
	Short: "Generate the draft release notes from change fragments",
	Long: "Skips generation entirely when the generated changelog index is already\n" +
		"staged for commit, so repeated invocations never duplicate entries.\n" +
		"Nothing is committed; committing the notes is up to the operator.",
	RunE: runRelnotes,
}

func init() {
	relnotesCmd.Flags().Bool("force", false, "regenerate even if the changelog index is already staged")
	rootCmd.AddCommand(relnotesCmd)
}

func runRelnotes(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	printer := ui.New()

	force, _ := cmd.Flags().GetBool("force")
	runner := newRunner(&cfg)
	gen := &relnotes.Generator{
		Runner:    runner,
		Git:       &gitx.Client{Runner: runner, Dir: "."},
		Tool:      cfg.RelnotesTool,
		Dir:       ".",
		IndexFile: cfg.RelnotesIndex,
		Force:     force,
	}

	ctx := cmd.Context()
	pipe, closeJournal := newPipeline(ctx, &cfg, printer)
	defer closeJournal()

	return pipe.Execute(ctx, "relnotes", []pipeline.Stage{
		{Name: "generate release notes", Run: func(ctx context.Context) error {
			outcome, err := gen.Generate(ctx)
			if err != nil {
				return err
			}
			switch outcome {
			case relnotes.OutcomeStaged:
				printer.Skip("release notes", "generated index already staged")
			case relnotes.OutcomeEmpty:
				printer.Skip("release notes", "no pending changes")
			case relnotes.OutcomeToolMissing:
				printer.Skip("release notes", cfg.RelnotesTool+" not installed")
			case relnotes.OutcomeGenerated:
				printer.Info("release notes written; review and commit them")
			}
			return nil
		}},
	})
}
