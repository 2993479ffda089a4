package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/shipyard/internal/manifest"
	"github.com/papapumpkin/shipyard/internal/pkgbuild"
	"github.com/papapumpkin/shipyard/internal/ui"
	"github.com/papapumpkin/shipyard/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild packages in develop mode as their sources change",
	Long: "Watches every declared package directory and re-runs the changed\n" +
		"package's build in the sandbox. Dependency packages must already be\n" +
		"built. Stop with Ctrl-C.",
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	printer := ui.New()

	m, err := loadManifest(&cfg)
	if err != nil {
		printer.Error(err.Error())
		return err
	}

	runner := newRunner(&cfg)
	builder := newBuilder(&cfg, m, runner, printer)
	if !builder.DependenciesBuilt() {
		printer.Error(pkgbuild.ErrDependenciesNotBuilt.Error())
		return pkgbuild.ErrDependenciesNotBuilt
	}

	w, err := watch.NewWatcher(m.Packages)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	printer.Info("watching package directories; Ctrl-C to stop")
	for {
		select {
		case <-ctx.Done():
			return nil
		case change := <-w.Changes:
			pkg, ok := m.ByName(change.Package)
			if !ok {
				continue
			}
			if err := rebuildOne(ctx, builder, pkg); err != nil {
				// Keep watching; the next save gets another chance.
				printer.Error(err.Error())
			}
		}
	}
}

// rebuildOne rebuilds a single package in develop mode.
func rebuildOne(ctx context.Context, builder *pkgbuild.Builder, pkg manifest.Package) error {
	return builder.BuildOne(ctx, pkg, pkgbuild.ModeDevelop)
}
