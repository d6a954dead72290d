package logbook

import (
	"context"
	"fmt"

	"github.com/danielhalim/logbook/internal/portal"
	"github.com/danielhalim/logbook/internal/runlog"
	"github.com/danielhalim/logbook/internal/session"
)

// Failure records one date whose submission was rejected.
type Failure struct {
	Date string
	Err  error
}

// Report summarizes one run. Per-entry failures are collected here and
// never abort the run.
type Report struct {
	ActiveSubmitted int
	OffSubmitted    int
	Failures        []Failure
	EditMode        bool
}

func (r *Report) Summary() string {
	return fmt.Sprintf("%d active and %d OFF entries submitted, %d failed",
		r.ActiveSubmitted, r.OffSubmitted, len(r.Failures))
}

// Runner submits a plan to the portal, strictly sequentially, one date
// at a time. In edit mode it looks up existing record IDs once per
// month so resubmission updates instead of duplicating.
type Runner struct {
	Client portal.Client
	Log    *runlog.Logger
}

func NewRunner(client portal.Client, log *runlog.Logger) *Runner {
	if log == nil {
		log = runlog.Discard()
	}
	return &Runner{Client: client, Log: log}
}

func (r *Runner) Run(ctx context.Context, plan *Plan, sess *session.Session, edit bool) *Report {
	report := &Report{EditMode: edit}
	r.Log.Infof("edit mode: %v", edit)

	for _, mp := range plan.Months {
		existing := map[string]string{}
		if edit {
			m, err := r.Client.FetchExisting(ctx, mp.HeaderID, sess.Cookie)
			if err != nil {
				// Degrades to "no existing entries"; the portal will
				// create records for the nil-ID sentinel.
				r.Log.Warnf("%s %d: %v", mp.Month, mp.Year, err)
			} else {
				existing = m
			}
		}

		for _, e := range mp.Active {
			if id, ok := existing[e.Date]; ok && id != "" {
				e.RemoteID = id
			}
			if err := r.Client.Submit(ctx, e, sess.Cookie); err != nil {
				r.Log.Errorf("failed %s: %v", e.Date, err)
				report.Failures = append(report.Failures, Failure{Date: e.Date, Err: err})
				continue
			}
			r.Log.Successf("%s submitted", e.Date)
			report.ActiveSubmitted++
		}

		for _, e := range mp.Off {
			if id, ok := existing[e.Date]; ok && id != "" {
				e.RemoteID = id
			}
			if err := r.Client.Submit(ctx, e, sess.Cookie); err != nil {
				r.Log.Errorf("failed OFF for %s: %v", e.Date, err)
				report.Failures = append(report.Failures, Failure{Date: e.Date, Err: err})
				continue
			}
			r.Log.Successf("OFF submitted for %s", e.Date)
			report.OffSubmitted++
		}
	}

	return report
}
