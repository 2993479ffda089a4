package cmd

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/shipyard/internal/release"
	"github.com/papapumpkin/shipyard/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the declared package set and any in-flight releases",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().Bool("json", false, "output status as JSON to stdout")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	printer := ui.New()

	m, err := loadManifest(&cfg)
	if err != nil {
		printer.Error(err.Error())
		return err
	}

	states, err := loadReleaseStates(releaseStateDir(&cfg))
	if err != nil {
		printer.Error(err.Error())
		return err
	}

	if jsonFlag, _ := cmd.Flags().GetBool("json"); jsonFlag {
		return writeStatusJSON(m.Project.Name, states)
	}

	rows := make([]ui.PackageRow, 0, len(m.Packages))
	for _, p := range m.Packages {
		rows = append(rows, ui.PackageRow{
			Name: p.Name,
			Dir:  p.Dir,
			Role: string(p.Role),
			Kind: string(p.Kind),
		})
	}
	printer.PackageTable(rows)

	for _, st := range states {
		printer.ReleaseState(st.Version, string(st.Step), st.UpdatedAt)
	}
	return nil
}

// loadReleaseStates reads every persisted release-*.toml in the state dir.
func loadReleaseStates(dir string) ([]*release.State, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var states []*release.State
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "release-") || !strings.HasSuffix(name, ".toml") {
			continue
		}
		version := strings.TrimSuffix(strings.TrimPrefix(name, "release-"), ".toml")
		st, err := release.LoadState(dir, version)
		if err != nil {
			return nil, err
		}
		states = append(states, st)
	}
	return states, nil
}

// statusJSON is the structured representation of status for --json output.
type statusJSON struct {
	Project  string              `json:"project"`
	Releases []statusReleaseJSON `json:"releases,omitempty"`
}

type statusReleaseJSON struct {
	Version   string    `json:"version"`
	Step      string    `json:"step"`
	UpdatedAt time.Time `json:"updated_at"`
}

func writeStatusJSON(project string, states []*release.State) error {
	out := statusJSON{Project: project}
	for _, st := range states {
		out.Releases = append(out.Releases, statusReleaseJSON{
			Version:   st.Version,
			Step:      string(st.Step),
			UpdatedAt: st.UpdatedAt,
		})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
