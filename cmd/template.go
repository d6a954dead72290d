package cmd

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var templateOut string

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write an example CSV to fill in",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Create(templateOut)
		if err != nil {
			return err
		}
		defer f.Close()

		// BOM so spreadsheet apps open it as UTF-8
		if _, err := f.WriteString("\uFEFF"); err != nil {
			return err
		}

		w := csv.NewWriter(f)
		records := [][]string{
			{"date", "activity", "clockin", "clockout"},
			{"2025-06-02", "Onboarding and environment setup", "09:00 am", "06:00 pm"},
			{"2025-06-03", "Implemented login flow", "", ""},
			{"2025-06-04", "OFF", "", ""},
		}
		for _, rec := range records {
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}

		fmt.Printf("Wrote %s. Leave clockin/clockout empty to use the configured defaults;\nset activity to OFF for days without work. Weekends are always OFF.\n", templateOut)
		return nil
	},
}

func init() {
	templateCmd.Flags().StringVarP(&templateOut, "out", "o", "logbook_template.csv", "Output file")
}
