package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danielhalim/logbook/internal/credentials"
	"github.com/danielhalim/logbook/internal/session"
)

var loginSave bool

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the portal and show the available months",
	Long:  "Drives the SSO login in a browser, hands off to the activity portal\nand prints the logbook months it found. Useful to verify credentials\nbefore a submission run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		log := newLogger()
		defer log.Close()

		creds, err := resolveCredentials()
		if err != nil {
			return err
		}

		neg := session.NewPlaywrightNegotiator(session.Options{
			DashboardURL: cfg.Portal.DashboardURL,
			Headless:     cfg.Portal.Headless,
			SlowMoMs:     cfg.Portal.SlowMoMs,
		}, log)
		defer neg.Close()

		sess, err := neg.Negotiate(ctx, creds.Email, creds.Password)
		if err != nil {
			return err
		}

		log.Successf("logged in as %s", creds.Email)
		if len(sess.MonthHeaders) == 0 {
			log.Warnf("no logbook months found")
		}

		months := make([]string, 0, len(sess.MonthHeaders))
		for m := range sess.MonthHeaders {
			months = append(months, m)
		}
		sort.Strings(months)
		for _, m := range months {
			fmt.Printf("  %-10s %s\n", m, sess.MonthHeaders[m])
		}

		if loginSave {
			store, err := credentials.DefaultStore()
			if err != nil {
				return err
			}
			// keep a previously stored csv path
			saved := creds
			if prev, err := store.Load(); err == nil && saved.CSVPath == "" {
				saved.CSVPath = prev.CSVPath
			}
			if err := store.Save(saved); err != nil {
				return err
			}
			log.Successf("credentials saved")
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().BoolVar(&loginSave, "save", false, "Store the credentials for later runs")
}
