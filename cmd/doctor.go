package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamusis/cjval/internal/config"
	"github.com/kamusis/cjval/internal/history"
	"github.com/kamusis/cjval/internal/report"
	"github.com/kamusis/cjval/internal/rules"
	"github.com/kamusis/cjval/internal/schemas"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that cjval's embedded schemas, configuration and history log are usable.
Run this command when something seems wrong, or before filing a bug report.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	if !doctor(cmd.OutOrStdout(), cmd.ErrOrStderr()) {
		return fmt.Errorf("doctor found issues")
	}
	return nil
}

// doctor prints every check to w and reports whether all of them passed.
func doctor(w, errW io.Writer) bool {
	allOK := true
	failD := func(format string, args ...any) {
		printErr(errW, "", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection(w, "cjval doctor")
	fmt.Fprintln(w)

	// ── Check 1: embedded schemas compile ────────────────────────────────────
	fmt.Fprintln(w, "[ Schemas ]")
	if catalog, err := schemas.Default(); err != nil {
		failD("%v — this binary is broken, reinstall cjval", err)
	} else {
		for _, v := range catalog.Versions() {
			printOK(w, v.String(), "compiled")
		}
	}
	fmt.Fprintln(w)

	// ── Check 2: cjval.yaml is valid ─────────────────────────────────────────
	fmt.Fprintln(w, "[ cjval.yaml ]")
	cfg, loadErr := config.Load()
	if loadErr != nil {
		failD("cannot load config: %v", loadErr)
	} else {
		if cfgPath, err := config.ConfigPath(); err == nil {
			if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
				printSkip(w, "", fmt.Sprintf("%s not found — using defaults (run 'cjval init' to create it)", cfgPath))
			} else {
				printOK(w, "", fmt.Sprintf("valid YAML: %s", cfgPath))
			}
		}
		if _, err := report.ParseFormat(cfg.Format); err != nil {
			failD("%v", err)
		}
		if _, err := rules.Default().Without(cfg.DisabledRules...); err != nil {
			failD("disabled_rules: %v", err)
		}
		if !cfg.TypeCheckEnabled() {
			printWarn(w, "", "require_cityjson_type is off — non-CityJSON documents reach the schema")
		}
	}
	fmt.Fprintln(w)

	// ── Check 3: history log is writable ─────────────────────────────────────
	fmt.Fprintln(w, "[ History ]")
	switch {
	case loadErr != nil:
		printWarn(w, "", "skipped (cjval.yaml not loaded)")
	case cfg.HistoryFile == "":
		printSkip(w, "", "history_file not set")
	default:
		if err := history.Probe(cfg.HistoryFile, historyLockTimeout); err != nil {
			failD("%v", err)
		} else {
			printOK(w, "", fmt.Sprintf("writable: %s", cfg.HistoryFile))
		}
	}
	fmt.Fprintln(w)

	// ── Check 4: terminal colour ─────────────────────────────────────────────
	fmt.Fprintln(w, "[ Terminal ]")
	if colorEnabled(os.Stdout) {
		printOK(w, "", "stdout is a terminal — verdicts are coloured")
	} else {
		printInfo(w, "", "stdout is not a terminal (or NO_COLOR is set) — plain output")
	}
	fmt.Fprintln(w)

	// ── Summary ──────────────────────────────────────────────────────────────
	fmt.Fprintln(w, "===================")
	if allOK {
		fmt.Fprintln(w, "✓  All checks passed. cjval is ready to use.")
	} else {
		fmt.Fprintln(errW, "✗  One or more checks failed. See details above.")
	}
	return allOK
}
