package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/shipyard/internal/artifact"
	"github.com/papapumpkin/shipyard/internal/config"
	"github.com/papapumpkin/shipyard/internal/env"
	"github.com/papapumpkin/shipyard/internal/exec"
	"github.com/papapumpkin/shipyard/internal/history"
	"github.com/papapumpkin/shipyard/internal/manifest"
	"github.com/papapumpkin/shipyard/internal/pipeline"
	"github.com/papapumpkin/shipyard/internal/pkgbuild"
	"github.com/papapumpkin/shipyard/internal/ui"
)

// loadConfig loads viper config and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) config.Config {
	cfg := config.Load()
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Verbose = true
	}
	return cfg
}

func newRunner(cfg *config.Config) exec.Runner {
	return &exec.CLIRunner{Verbose: cfg.Verbose}
}

func loadManifest(cfg *config.Config) (*manifest.Manifest, error) {
	return manifest.Load(cfg.ManifestPath)
}

func newProvisioner(cfg *config.Config, m *manifest.Manifest, runner exec.Runner) *env.Provisioner {
	return &env.Provisioner{
		Runner:       runner,
		Sandbox:      cfg.SandboxDir,
		Toolset:      cfg.ToolsetVersion,
		EnvTool:      cfg.EnvTool,
		Requirements: m.Project.Requirements,
	}
}

func newBuilder(cfg *config.Config, m *manifest.Manifest, runner exec.Runner, printer *ui.Printer) *pkgbuild.Builder {
	return &pkgbuild.Builder{
		Runner:   runner,
		Manifest: m,
		Sandbox:  cfg.SandboxDir,
		DistDir:  cfg.DistDir,
		Printer:  printer,
	}
}

func newPackager(cfg *config.Config, m *manifest.Manifest, runner exec.Runner, printer *ui.Printer) *artifact.Packager {
	return &artifact.Packager{
		Runner:      runner,
		Manifest:    m,
		Provisioner: newProvisioner(cfg, m, runner),
		Builder:     newBuilder(cfg, m, runner, printer),
		DistDir:     cfg.DistDir,
		Printer:     printer,
	}
}

// newPipeline opens the run journal and wires the pipeline lock. A journal
// that fails to open degrades to an unjournaled run with a warning.
func newPipeline(ctx context.Context, cfg *config.Config, printer *ui.Printer) (*pipeline.Pipeline, func()) {
	p := &pipeline.Pipeline{
		Printer:  printer,
		LockPath: filepath.Join(filepath.Dir(cfg.SandboxDir), "pipeline.lock"),
	}

	if err := os.MkdirAll(filepath.Dir(cfg.HistoryDB), 0755); err != nil {
		printer.Warn(err.Error())
		return p, func() {}
	}
	store, err := history.Open(ctx, cfg.HistoryDB)
	if err != nil {
		printer.Warn(err.Error())
		return p, func() {}
	}
	p.History = store
	return p, func() { store.Close() }
}

// releaseStateDir is where per-version release progress is persisted,
// alongside the sandbox and run journal.
func releaseStateDir(cfg *config.Config) string {
	return filepath.Dir(cfg.SandboxDir)
}

// splitCmd turns a whitespace-separated config command line into argv.
func splitCmd(s string) []string {
	return strings.Fields(s)
}
