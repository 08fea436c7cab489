package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes returned by the cjval binary.
const (
	exitValid   = 0
	exitInvalid = 1
	exitFatal   = 2
)

var rootCmd = &cobra.Command{
	Use:   "cjval [file|dir]...",
	Short: "cjval — CityJSON schema and semantic validator",
	Long: `cjval validates CityJSON files against the bundled JSON Schema for their
declared version (1.0 or 1.1) and runs semantic checks the schema cannot express,
such as duplicate vertices.

Directories are searched for *.json files. Exit status is 0 when every
document is valid, 1 when any document is invalid and 2 on a fatal error.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true, // don't print usage on operational errors
	SilenceErrors: true, // Execute prints errors itself
	RunE:          runRoot,
}

func init() {
	bindValidateFlags(rootCmd)
}

func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	return runValidate(cmd, args)
}

// exitError carries a process exit code through cobra's error return.
// A nil err means the reason was already printed.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitValid
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitFatal
}

// Execute is called by main.go.
func Execute() {
	err := rootCmd.Execute()
	var ee *exitError
	if err != nil && !(errors.As(err, &ee) && ee.err == nil) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode(err))
}
