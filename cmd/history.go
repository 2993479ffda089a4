package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/shipyard/internal/history"
	"github.com/papapumpkin/shipyard/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent pipeline runs from the journal",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 10, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	printer := ui.New()

	ctx := cmd.Context()
	store, err := history.Open(ctx, cfg.HistoryDB)
	if err != nil {
		printer.Error(err.Error())
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.RecentRuns(ctx, limit)
	if err != nil {
		printer.Error(err.Error())
		return err
	}

	rows := make([]ui.RunRow, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, ui.RunRow{
			ID:        r.ID,
			Command:   r.Command,
			Outcome:   r.Outcome,
			StartedAt: r.StartedAt,
			Duration:  r.Duration(),
		})
	}
	printer.RunTable(rows)
	return nil
}
