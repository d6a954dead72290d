package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielhalim/logbook/internal/dateutil"
	"github.com/danielhalim/logbook/internal/history"
	"github.com/danielhalim/logbook/internal/logbook"
	"github.com/danielhalim/logbook/internal/notify"
	"github.com/danielhalim/logbook/internal/portal"
	"github.com/danielhalim/logbook/internal/runlog"
	"github.com/danielhalim/logbook/internal/session"
	"github.com/danielhalim/logbook/internal/ui"
)

var (
	submitCSV      string
	submitEdit     bool
	submitDryRun   bool
	submitClockIn  string
	submitClockOut string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit the logbook from a CSV file",
	Long:  "Reads activities from the CSV, logs in, plans one entry for every\nday of each touched month (weekends and unlisted days become OFF)\nand submits them in order. Failed dates are reported at the end and\nnever stop the remaining dates.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		log := newLogger()
		defer log.Close()

		req := ui.Request{
			CSVPath:  submitCSV,
			ClockIn:  submitClockIn,
			ClockOut: submitClockOut,
			Edit:     submitEdit,
			DryRun:   submitDryRun || cfg.Submission.DryRun,
		}
		if req.CSVPath == "" {
			if creds, err := resolveCredentials(); err == nil {
				req.CSVPath = creds.CSVPath
			}
		}
		if req.CSVPath == "" {
			return fmt.Errorf("no CSV file: pass --csv or store one with the tui")
		}

		report, err := executeRun(ctx, req, log)
		if err != nil {
			return err
		}

		log.Infof("%s", report.Summary())
		if cfg.Notify {
			_ = notify.Done(notify.FormatRunResult(report.ActiveSubmitted, report.OffSubmitted, len(report.Failures)))
		}
		if n := len(report.Failures); n > 0 {
			lines := make([]string, 0, n)
			for _, f := range report.Failures {
				lines = append(lines, fmt.Sprintf("%s: %v", f.Date, f.Err))
			}
			fmt.Fprintln(os.Stderr, runlog.Indent(strings.Join(lines, "\n")))
			return fmt.Errorf("%d entries failed", n)
		}
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVarP(&submitCSV, "csv", "f", "", "CSV file with the activities")
	submitCmd.Flags().BoolVar(&submitEdit, "edit", false, "Update existing entries instead of creating duplicates")
	submitCmd.Flags().BoolVar(&submitDryRun, "dry-run", false, "Plan and log everything without touching the portal")
	submitCmd.Flags().StringVar(&submitClockIn, "clock-in", "", "Default clock-in time (e.g. \"09:00 am\")")
	submitCmd.Flags().StringVar(&submitClockOut, "clock-out", "", "Default clock-out time")
}

// executeRun is the whole submission pipeline: read the CSV, obtain a
// session, build the plan, run it and record the outcome. The tui
// reuses it with a log sink attached.
func executeRun(ctx context.Context, req ui.Request, log *runlog.Logger) (*logbook.Report, error) {
	started := time.Now()

	f, err := os.Open(req.CSVPath)
	if err != nil {
		return nil, fmt.Errorf("opening csv: %w", err)
	}
	rows, err := logbook.ReadSource(f)
	f.Close()
	if err != nil {
		return nil, err
	}
	log.Infof("read %d rows from %s", len(rows), req.CSVPath)

	var (
		sess   *session.Session
		client portal.Client
	)
	if req.DryRun {
		log.Infof("dry run, skipping login")
		sess = dryRunSession(rows)
		client = portal.NewSimulated()
	} else {
		creds, err := resolveCredentials()
		if err != nil {
			return nil, err
		}
		neg := session.NewPlaywrightNegotiator(session.Options{
			DashboardURL: cfg.Portal.DashboardURL,
			Headless:     cfg.Portal.Headless,
			SlowMoMs:     cfg.Portal.SlowMoMs,
		}, log)
		defer neg.Close()

		sess, err = neg.Negotiate(ctx, creds.Email, creds.Password)
		if err != nil {
			return nil, err
		}
		client = portal.NewHTTPClient(cfg.Portal.BaseURL)
	}

	defaults := logbook.Defaults{
		ClockIn:  cfg.Submission.DefaultClockIn,
		ClockOut: cfg.Submission.DefaultClockOut,
	}
	if req.ClockIn != "" {
		defaults.ClockIn = req.ClockIn
	}
	if req.ClockOut != "" {
		defaults.ClockOut = req.ClockOut
	}

	plan, err := logbook.BuildPlan(rows, sess, defaults, cfg.Submission.MinActiveDays)
	if err != nil {
		return nil, err
	}
	log.Infof("planned %d entries (%d active days) across %d month(s)",
		plan.TotalEntries(), plan.ActiveDays, len(plan.Months))

	report := logbook.NewRunner(client, log).Run(ctx, plan, sess, req.Edit)

	recordRun(ctx, req, started, report, log)
	return report, nil
}

// dryRunSession fabricates month headers so planning works offline.
func dryRunSession(rows []logbook.Row) *session.Session {
	headers := map[string]string{}
	for _, r := range rows {
		if t, err := dateutil.ParseDate(r.Date); err == nil {
			key := dateutil.MonthKey(t)
			headers[key] = "dry-" + key
		}
	}
	return &session.Session{Cookie: "dry-run", MonthHeaders: headers}
}

// recordRun appends the outcome to the local history; failure to do so
// only warns, the submission already happened.
func recordRun(ctx context.Context, req ui.Request, started time.Time, report *logbook.Report, log *runlog.Logger) {
	path, err := history.DefaultPath()
	if err != nil {
		log.Warnf("history unavailable: %v", err)
		return
	}
	store, err := history.Open(path)
	if err != nil {
		log.Warnf("history unavailable: %v", err)
		return
	}
	defer store.Close()

	failures := make([]history.Failure, 0, len(report.Failures))
	for _, f := range report.Failures {
		failures = append(failures, history.Failure{Date: f.Date, Reason: f.Err.Error()})
	}
	_, err = store.Record(ctx, history.Run{
		StartedAt:       started,
		CSVPath:         req.CSVPath,
		EditMode:        req.Edit,
		DryRun:          req.DryRun,
		ActiveSubmitted: report.ActiveSubmitted,
		OffSubmitted:    report.OffSubmitted,
	}, failures)
	if err != nil {
		log.Warnf("recording run: %v", err)
	}
}
