package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/shipyard/internal/gitx"
	"github.com/papapumpkin/shipyard/internal/pipeline"
	"github.com/papapumpkin/shipyard/internal/release"
	"github.com/papapumpkin/shipyard/internal/ui"
)

var releaseCmd = &cobra.Command{
	Use:   "release <version>",
	Short: "Tag the version and publish its documentation",
	Long: "Validates preconditions, creates and pushes a signed annotated tag, then\n" +
		"builds and publishes the documentation into the sibling docs repository.\n" +
		"Progress is persisted per version; re-running after a partial failure\n" +
		"resumes without repeating irreversible steps.",
	Args: cobra.ExactArgs(1),
	RunE: runRelease,
}

func init() {
	releaseCmd.Flags().String("date", "", "release date (UTC, YYYY-MM-DD; default today)")
	rootCmd.AddCommand(releaseCmd)
}

func runRelease(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	printer := ui.New()

	date, _ := cmd.Flags().GetString("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	runner := newRunner(&cfg)
	pub := &release.Publisher{
		Runner:       runner,
		Tagger:       &gitx.Client{Runner: runner, Dir: "."},
		Docs:         &gitx.Client{Runner: runner, Dir: cfg.DocsRepoDir},
		Version:      args[0],
		Date:         date,
		Remote:       cfg.GitRemote,
		DocsRepoDir:  cfg.DocsRepoDir,
		DocsBuildCmd: splitCmd(cfg.DocsBuildCmd),
		DocsOutDir:   cfg.DocsOutDir,
		StateDir:     releaseStateDir(&cfg),
		Printer:      printer,
	}

	ctx := cmd.Context()
	pipe, closeJournal := newPipeline(ctx, &cfg, printer)
	defer closeJournal()

	return pipe.Execute(ctx, "release "+args[0], []pipeline.Stage{
		{Name: "publish release", Run: pub.Publish},
	})
}
