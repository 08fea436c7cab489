package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/kamusis/cjval/internal/config"
	"github.com/kamusis/cjval/internal/history"
	"github.com/kamusis/cjval/internal/pipeline"
	"github.com/kamusis/cjval/internal/report"
	"github.com/kamusis/cjval/internal/rules"
	"github.com/kamusis/cjval/internal/schemas"
)

var (
	flagFormat       string
	flagDisableRules []string
	flagNoTypeCheck  bool
	flagMaxBytes     int64
	flagVerbose      bool
)

// historyLockTimeout bounds how long we wait for another cjval writing the log.
const historyLockTimeout = 5 * time.Second

var validateCmd = &cobra.Command{
	Use:   "validate <file|dir>...",
	Short: "Validate CityJSON files (the default action)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func init() {
	bindValidateFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)
}

func bindValidateFlags(c *cobra.Command) {
	c.Flags().StringVarP(&flagFormat, "format", "f", "", "Output format: text, json or yaml (default from config, else text)")
	c.Flags().StringSliceVar(&flagDisableRules, "disable-rule", nil, "Semantic rule to skip (repeatable)")
	c.Flags().BoolVar(&flagNoTypeCheck, "no-type-check", false, "Do not reject documents whose \"type\" is not \"CityJSON\"")
	c.Flags().Int64Var(&flagMaxBytes, "max-bytes", 0, "Maximum document size in bytes (0 = config/default, negative = unlimited)")
	c.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log pipeline stages to stderr")
}

// validateOptions is the effective configuration after merging
// config file, environment and flags.
type validateOptions struct {
	format        report.Format
	disabledRules []string
	typeCheck     bool
	maxBytes      int64
	verbose       bool
	historyFile   string
	color         bool
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return &exitError{code: exitFatal, err: fmt.Errorf("cannot load config: %w", err)}
	}
	opts, err := resolveOptions(cmd, cfg)
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	opts.color = opts.format == report.FormatText && colorEnabled(cmd.OutOrStdout())
	return validatePaths(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, args)
}

// resolveOptions applies flag > environment > config file > default.
func resolveOptions(cmd *cobra.Command, cfg *config.Config) (validateOptions, error) {
	opts := validateOptions{
		disabledRules: append([]string{}, cfg.DisabledRules...),
		typeCheck:     cfg.TypeCheckEnabled(),
		maxBytes:      effectiveMaxBytes(cfg.MaxDocumentBytes),
		verbose:       flagVerbose,
		historyFile:   cfg.HistoryFile,
	}

	format := cfg.Format
	if cmd.Flags().Changed("format") {
		format = flagFormat
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		return opts, err
	}
	opts.format = f

	opts.disabledRules = append(opts.disabledRules, flagDisableRules...)
	if flagNoTypeCheck {
		opts.typeCheck = false
	}
	if cmd.Flags().Changed("max-bytes") {
		opts.maxBytes = effectiveMaxBytes(flagMaxBytes)
	}
	return opts, nil
}

// effectiveMaxBytes maps the configured bound: 0 is the default, negative is none.
func effectiveMaxBytes(n int64) int64 {
	switch {
	case n == 0:
		return pipeline.DefaultMaxDocumentBytes
	case n < 0:
		return 0
	default:
		return n
	}
}

// validatePaths validates every document named by args and renders the
// reports to out. Per-document fatal errors go to errOut and do not stop
// the remaining documents.
func validatePaths(out, errOut io.Writer, opts validateOptions, args []string) error {
	logger := newLogger(errOut, opts.verbose)

	catalog, err := schemas.Default()
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	registry, err := rules.Default().Without(dedupe(opts.disabledRules)...)
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	p := pipeline.New(catalog, registry,
		pipeline.WithLogger(logger),
		pipeline.WithMaxDocumentBytes(opts.maxBytes),
		pipeline.WithRequireCityJSONType(opts.typeCheck),
	)

	paths, err := pipeline.Discover(args)
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	if len(paths) == 0 {
		return &exitError{code: exitFatal, err: fmt.Errorf("no CityJSON files found in %v", args)}
	}

	var (
		reports []*report.Report
		failed  int
		invalid int
	)
	for _, path := range paths {
		r, err := p.ValidateFile(path)
		if err != nil {
			printErr(errOut, path, err.Error())
			failed++
			continue
		}
		if !r.Valid {
			invalid++
		}
		reports = append(reports, r)
	}

	if len(reports) > 0 {
		if err := report.Render(out, opts.format, opts.color, reports...); err != nil {
			return &exitError{code: exitFatal, err: fmt.Errorf("cannot write report: %w", err)}
		}
	}
	if opts.format == report.FormatText && len(paths) > 1 {
		printSection(out, "Summary")
		printInfo(out, "", fmt.Sprintf("%d document(s): %d valid, %d invalid, %d failed",
			len(paths), len(reports)-invalid, invalid, failed))
	}

	recordHistory(errOut, logger, opts.historyFile, reports)

	switch {
	case failed > 0:
		return &exitError{code: exitFatal}
	case invalid > 0:
		return &exitError{code: exitInvalid}
	}
	return nil
}

// recordHistory appends the verdicts to the history log, if one is configured.
// Failures are warnings: the validation itself already happened.
func recordHistory(errOut io.Writer, logger log.Logger, path string, reports []*report.Report) {
	if path == "" || len(reports) == 0 {
		return
	}
	now := time.Now()
	entries := make([]history.Entry, 0, len(reports))
	for _, r := range reports {
		entries = append(entries, history.EntryFor(r, now))
	}
	if err := history.Append(path, historyLockTimeout, entries...); err != nil {
		printWarn(errOut, "", fmt.Sprintf("cannot record history: %v", err))
		return
	}
	level.Debug(logger).Log("msg", "history recorded", "file", path, "entries", len(entries))
}

func dedupe(names []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// colorEnabled reports whether w is an interactive terminal that accepts ANSI colour.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isTerminal(f.Fd())
}
