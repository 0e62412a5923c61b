package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cuebird/cuebird/internal/compose"
	"github.com/cuebird/cuebird/internal/container"
	"github.com/cuebird/cuebird/internal/service"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent reading sessions",
	Long: `List recent reading sessions from the history database, newest first.

Example:
  cuebird history
  cuebird history --limit 5`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Maximum number of sessions to show (0 for all)")
}

func runHistory(_ *cobra.Command, _ []string) error {
	if historyLimit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", historyLimit)
	}

	store, err := container.Resolve[service.SessionStore](compose.Desktop(cfg), service.CapSessionStore)
	if err != nil {
		return fmt.Errorf("session history unavailable: %w", err)
	}

	sessions, err := store.Recent(historyLimit)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No reading sessions recorded yet.")
		return nil
	}

	for _, s := range sessions {
		status := "unfinished"
		if !s.EndedAt.IsZero() {
			status = fmt.Sprintf("%3.0f%% in %s at %.0f wpm",
				s.Progress*100, s.Duration.Round(time.Second), s.AvgWPM)
		}
		fmt.Printf("%-30s %s  %s\n", humanize.Time(s.StartedAt), status, s.FilePath)
	}
	return nil
}
