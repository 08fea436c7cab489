package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamusis/cjval/internal/config"
	"github.com/kamusis/cjval/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the semantic rules and whether they are enabled",
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}
	w := cmd.OutOrStdout()

	disabled := map[string]bool{}
	for _, n := range cfg.DisabledRules {
		disabled[n] = true
	}

	reg := rules.Default()
	printBullet(w, "Semantic rules:")
	for _, name := range reg.Names() {
		c, _ := reg.Get(name)
		if disabled[name] {
			printMiss(w, name, c.Description()+" (disabled in config)")
			continue
		}
		printOK(w, name, c.Description())
	}
	for _, n := range cfg.DisabledRules {
		if _, ok := reg.Get(n); !ok {
			printWarn(w, n, "disabled in config but no such rule")
		}
	}
	return nil
}
