package cmd

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/danielhalim/logbook/internal/credentials"
	"github.com/danielhalim/logbook/internal/logbook"
	"github.com/danielhalim/logbook/internal/notify"
	"github.com/danielhalim/logbook/internal/runlog"
	"github.com/danielhalim/logbook/internal/ui"
)

// tuiCmd opens the interactive submission console.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive submission console",
	RunE: func(cmd *cobra.Command, args []string) error {
		initial := ui.Request{
			ClockIn:  cfg.Submission.DefaultClockIn,
			ClockOut: cfg.Submission.DefaultClockOut,
			DryRun:   cfg.Submission.DryRun,
		}
		if store, err := credentials.DefaultStore(); err == nil {
			if creds, err := store.Load(); err == nil {
				initial.CSVPath = creds.CSVPath
			}
		}

		run := func(ctx context.Context, req ui.Request, sink func(runlog.Line)) (*logbook.Report, error) {
			// the console renders the log; keep it off stdout
			log, err := runlog.New(nil, cfg.LogFile)
			if err != nil {
				log = runlog.Discard()
			}
			defer log.Close()
			log.SetSink(sink)

			report, err := executeRun(ctx, req, log)
			if err == nil && cfg.Notify {
				_ = notify.Done(notify.FormatRunResult(report.ActiveSubmitted, report.OffSubmitted, len(report.Failures)))
			}
			if err == nil && req.CSVPath != "" {
				rememberCSVPath(req.CSVPath)
			}
			return report, err
		}

		p := tea.NewProgram(ui.New(run, initial), tea.WithAltScreen(), tea.WithOutput(os.Stderr))
		_, err := p.Run()
		return err
	},
}

// rememberCSVPath stores the last used csv path so the next session
// starts pre-filled.
func rememberCSVPath(path string) {
	store, err := credentials.DefaultStore()
	if err != nil {
		return
	}
	creds, err := store.Load()
	if err != nil {
		creds = &credentials.Credentials{}
	}
	if creds.CSVPath == path {
		return
	}
	creds.CSVPath = path
	_ = store.Save(*creds)
}
