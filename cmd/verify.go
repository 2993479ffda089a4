package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/shipyard/internal/manifest"
	"github.com/papapumpkin/shipyard/internal/ui"
	"github.com/papapumpkin/shipyard/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [package...]",
	Short: "Run every codebase's checks and aggregate the results",
	Long: "Runs the declared check command of each named package (default: all\n" +
		"packages that declare one). All checks run to completion even when an\n" +
		"earlier one fails; the command fails if any check failed.",
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	printer := ui.New()

	m, err := loadManifest(&cfg)
	if err != nil {
		printer.Error(err.Error())
		return err
	}

	pkgs := m.Checkable()
	if len(args) > 0 {
		pkgs = make([]manifest.Package, 0, len(args))
		for _, name := range args {
			pkg, ok := m.ByName(name)
			if !ok {
				return fmt.Errorf("unknown package %q", name)
			}
			if len(pkg.Check) == 0 {
				return fmt.Errorf("package %q declares no check command", name)
			}
			pkgs = append(pkgs, pkg)
		}
	}

	results, err := verify.Run(cmd.Context(), newRunner(&cfg), pkgs)
	for _, r := range results {
		printer.CheckResult(r.Package, r.Passed())
	}
	return err
}
