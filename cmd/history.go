package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kamusis/cjval/internal/config"
	"github.com/kamusis/cjval/internal/history"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent verdicts from the history log",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of most recent entries to show (0 = all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'cjval init' first.", err)
	}
	if cfg.HistoryFile == "" {
		printSkip(cmd.OutOrStdout(), "", "history_file not set in cjval.yaml (or CJVAL_HISTORY_FILE)")
		return nil
	}
	entries, err := history.Load(cfg.HistoryFile)
	if err != nil {
		return err
	}
	showHistory(cmd.OutOrStdout(), entries, flagHistoryLimit)
	return nil
}

// showHistory prints the last limit entries, oldest first, then a tally.
func showHistory(w io.Writer, entries []history.Entry, limit int) {
	printSection(w, "Validation History")
	if len(entries) == 0 {
		printInfo(w, "", "no entries yet")
		return
	}

	shown := entries
	if limit > 0 && len(shown) > limit {
		shown = shown[len(shown)-limit:]
	}
	for _, e := range shown {
		msg := fmt.Sprintf("%s  version %s", e.Time, e.Version)
		if e.Valid {
			printOK(w, e.Source, msg)
			continue
		}
		printErr(w, e.Source, fmt.Sprintf("%s  %d schema error(s), %d finding(s)", msg, e.StructuralErrors, e.Findings))
	}

	var valid int
	for _, e := range entries {
		if e.Valid {
			valid++
		}
	}
	printSection(w, "Summary")
	printInfo(w, "", fmt.Sprintf("%d of %d recorded validation(s) passed", valid, len(entries)))
}
