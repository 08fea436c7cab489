package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamusis/cjval/internal/schemas"
)

var flagSchemasShow string

var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "List the embedded CityJSON schemas",
	Long: `List the CityJSON versions cjval carries a JSON Schema for.

With --show <version> the raw schema text is printed instead.`,
	Args: cobra.NoArgs,
	RunE: runSchemas,
}

func init() {
	schemasCmd.Flags().StringVar(&flagSchemasShow, "show", "", "Print the embedded schema for this version (e.g. 1.1)")
	rootCmd.AddCommand(schemasCmd)
}

func runSchemas(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	catalog, err := schemas.Default()
	if err != nil {
		return err
	}

	if flagSchemasShow != "" {
		for _, v := range catalog.Versions() {
			if v.String() == flagSchemasShow {
				src, err := schemas.Source(v)
				if err != nil {
					return err
				}
				_, err = w.Write(src)
				return err
			}
		}
		return fmt.Errorf("no embedded schema for version %q", flagSchemasShow)
	}

	printBullet(w, "Embedded schemas (JSON Schema draft-07):")
	for _, v := range catalog.Versions() {
		printOK(w, v.String(), schemas.ResourceURL(v))
	}
	return nil
}
