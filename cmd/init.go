package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamusis/cjval/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default ~/.cjval/cjval.yaml and .env template",
	Long: `Create ~/.cjval/ with a default cjval.yaml and an .env template.

Existing files are left untouched; run again any time to restore missing ones.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	// ── 1. Resolve ~/.cjval directory ─────────────────────────────────────────
	dir, err := config.CjvalDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	// ── 2. Create ~/.cjval/ if it doesn't exist ───────────────────────────────
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	printOK(w, "", fmt.Sprintf("cjval directory ready: %s", dir))

	// ── 3. Write cjval.yaml if missing ────────────────────────────────────────
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.Save(config.DefaultConfig()); err != nil {
			return err
		}
		printOK(w, "", fmt.Sprintf("wrote %s", cfgPath))
	} else if err != nil {
		return fmt.Errorf("cannot stat %s: %w", cfgPath, err)
	} else {
		printSkip(w, "", fmt.Sprintf("%s already exists", cfgPath))
	}

	// ── 4. Write .env template if missing ─────────────────────────────────────
	envPath, err := config.DotEnvPath()
	if err != nil {
		return err
	}
	created, err := config.EnsureDotEnvTemplate()
	if err != nil {
		return err
	}
	if created {
		printOK(w, "", fmt.Sprintf("wrote %s", envPath))
	} else {
		printSkip(w, "", fmt.Sprintf("%s already exists", envPath))
	}
	return nil
}
