package cmd

import (
	"fmt"
	"io"
)

// ── Unified output helpers ────────────────────────────────────────────────────
// All commands use these functions to ensure consistent icon usage and
// indentation throughout cjval's CLI output. Reports themselves are written
// by internal/report; these helpers cover everything around them.
//
// Icon semantics:
//   ✓  success / present
//   ✗  error / failure          (callers pass stderr)
//   ⚠  warning
//   ○  skipped / not applicable
//   -  disabled / missing
//   ~  neutral info

// printSection prints a top-level section header, e.g. "=== Summary ===".
func printSection(w io.Writer, title string) {
	fmt.Fprintf(w, "\n=== %s ===\n", title)
}

// printBullet prints a grouped-section bullet, e.g. "● Embedded schemas:".
func printBullet(w io.Writer, title string) {
	fmt.Fprintf(w, "\n● %s\n", title)
}

// printLine writes "  <icon>  msg" or "  <icon>  [name] msg".
func printLine(w io.Writer, icon, name, msg string) {
	if name == "" {
		fmt.Fprintf(w, "  %s  %s\n", icon, msg)
	} else {
		fmt.Fprintf(w, "  %s  [%s] %s\n", icon, name, msg)
	}
}

// printOK prints a success line.
//
//	name = "" → "  ✓  msg"
//	name set  → "  ✓  [name] msg"
func printOK(w io.Writer, name, msg string) { printLine(w, "✓", name, msg) }

// printErr prints an error line; pass stderr as w.
func printErr(w io.Writer, name, msg string) { printLine(w, "✗", name, msg) }

// printWarn prints a warning line.
func printWarn(w io.Writer, name, msg string) { printLine(w, "⚠", name, msg) }

// printSkip prints a skipped / not-applicable line.
func printSkip(w io.Writer, name, msg string) { printLine(w, "○", name, msg) }

// printMiss prints a disabled / missing line.
func printMiss(w io.Writer, name, msg string) { printLine(w, "-", name, msg) }

// printInfo prints a neutral informational line.
func printInfo(w io.Writer, name, msg string) { printLine(w, "~", name, msg) }
