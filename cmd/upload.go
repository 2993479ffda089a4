package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/shipyard/internal/pipeline"
	"github.com/papapumpkin/shipyard/internal/release"
	"github.com/papapumpkin/shipyard/internal/ui"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <version>",
	Short: "Upload the externally-built artifacts for a tagged version, signed",
	Long: "Run this after the external build of the pushed tag has completed.\n" +
		"Stale local copies for the version are discarded, fresh artifacts are\n" +
		"fetched, and everything is uploaded with cryptographic signing. This step\n" +
		"is deliberately a separate invocation from `shipyard release` and is\n" +
		"never retried automatically.",
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	printer := ui.New()

	up := &release.Uploader{
		Runner:          newRunner(&cfg),
		Version:         args[0],
		DistDir:         cfg.DistDir,
		FetchCmd:        splitCmd(cfg.FetchCmd),
		UploadTool:      cfg.UploadTool,
		SigningIdentity: cfg.SigningIdentity,
		StateDir:        releaseStateDir(&cfg),
		Printer:         printer,
	}

	ctx := cmd.Context()
	pipe, closeJournal := newPipeline(ctx, &cfg, printer)
	defer closeJournal()

	return pipe.Execute(ctx, "upload "+args[0], []pipeline.Stage{
		{Name: "upload signed artifacts", Run: up.Upload},
	})
}
