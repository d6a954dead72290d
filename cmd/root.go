package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielhalim/logbook/internal/config"
	"github.com/danielhalim/logbook/internal/credentials"
	"github.com/danielhalim/logbook/internal/runlog"
	"github.com/danielhalim/logbook/internal/version"
)

var (
	cfg config.Config

	flagEmail    string
	flagPassword string
)

var rootCmd = &cobra.Command{
	Use:   "logbook",
	Short: "Automated internship logbook submission",
	Long:  "Fills the enrichment activity logbook from a CSV file:\nlogs in through the university SSO, reconciles every day of the\ntouched months, and submits active and OFF entries one by one.",
}

func Execute() error {
	// set here so build metadata injected by main is visible
	rootCmd.Version = version.GetVersion()
	return rootCmd.Execute()
}

func init() {
	cfg, _ = config.Load()

	rootCmd.PersistentFlags().StringVar(&flagEmail, "email", "", "University email (overrides stored credentials)")
	rootCmd.PersistentFlags().StringVar(&flagPassword, "password", "", "Password (overrides stored credentials)")

	rootCmd.AddCommand(loginCmd, submitCmd, templateCmd, historyCmd, tuiCmd)
}

func newLogger() *runlog.Logger {
	log, err := runlog.New(os.Stdout, cfg.LogFile)
	if err != nil {
		// keep going with console-only output
		fmt.Fprintf(os.Stderr, "run log file unavailable: %v\n", err)
		log, _ = runlog.New(os.Stdout, "")
	}
	return log
}

// resolveCredentials merges flags, environment and the stored
// credential file, in that order of preference.
func resolveCredentials() (credentials.Credentials, error) {
	creds := credentials.Credentials{
		Email:    flagEmail,
		Password: flagPassword,
	}
	if creds.Email == "" {
		creds.Email = os.Getenv("LOGBOOK_EMAIL")
	}
	if creds.Password == "" {
		creds.Password = os.Getenv("LOGBOOK_PASSWORD")
	}

	store, err := credentials.DefaultStore()
	if err == nil {
		if stored, err := store.Load(); err == nil {
			if creds.Email == "" {
				creds.Email = stored.Email
			}
			if creds.Password == "" {
				creds.Password = stored.Password
			}
			creds.CSVPath = stored.CSVPath
		}
	}

	if creds.Email == "" || creds.Password == "" {
		return creds, fmt.Errorf("no credentials: pass --email/--password, set LOGBOOK_EMAIL/LOGBOOK_PASSWORD, or run `logbook login --save`")
	}
	return creds, nil
}
