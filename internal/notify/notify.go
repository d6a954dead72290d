package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

func Info(title, message string) error {
	return beeep.Notify(title, message, "")
}

func Done(message string) error {
	return beeep.Alert("Logbook", message, "")
}

// FormatRunResult builds the notification for a finished submission run.
func FormatRunResult(active, off, failed int) string {
	if failed > 0 {
		return fmt.Sprintf("Submitted %d active and %d OFF entries, %d failed. Check the run log.", active, off, failed)
	}
	return fmt.Sprintf("Submitted %d active and %d OFF entries.", active, off)
}
