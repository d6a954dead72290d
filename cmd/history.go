package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielhalim/logbook/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past submission runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := history.DefaultPath()
		if err != nil {
			return err
		}
		store, err := history.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		runs, err := store.Recent(ctx, historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}

		for _, r := range runs {
			mode := "create"
			if r.EditMode {
				mode = "edit"
			}
			if r.DryRun {
				mode += ", dry-run"
			}
			fmt.Printf("#%d  %s  %s (%s)\n", r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.CSVPath, mode)
			fmt.Printf("    %d active, %d OFF, %d failed\n", r.ActiveSubmitted, r.OffSubmitted, r.Failed)

			if r.Failed > 0 {
				failures, err := store.Failures(ctx, r.ID)
				if err != nil {
					return err
				}
				for _, f := range failures {
					fmt.Printf("    ✘ %s: %s\n", f.Date, f.Reason)
				}
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "How many runs to show")
}
