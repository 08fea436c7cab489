package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kamusis/cjval/internal/rules"
)

// Format selects how reports are written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "text", "json" or "yaml" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

const (
	ansiGreen = "\x1b[32m"
	ansiReset = "\x1b[0m"
)

// Render writes reports to w. JSON output is one object for a single report
// and an array otherwise; YAML output is one document per report. color only
// affects text output.
func Render(w io.Writer, f Format, color bool, reports ...*Report) error {
	switch f {
	case FormatText, "":
		for i, r := range reports {
			if len(reports) > 1 {
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "=== %s ===\n", r.Source)
			}
			if err := writeText(w, r, color); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if len(reports) == 1 {
			return enc.Encode(reports[0])
		}
		if reports == nil {
			reports = []*Report{}
		}
		return enc.Encode(reports)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, r := range reports {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

func writeText(w io.Writer, r *Report, color bool) error {
	var sb strings.Builder
	if r.VersionSupported {
		fmt.Fprintf(&sb, "version %s\n", r.Version)
	} else {
		sb.WriteString("VERSION NOT SUPPORTED\n")
	}

	for _, e := range r.StructuralErrors {
		fmt.Fprintf(&sb, "Validation error: %s\n", e.Message)
		fmt.Fprintf(&sb, "Instance path: %s\n", e.Pointer())
	}

	for _, rr := range r.Rules {
		if rr.Error != "" {
			fmt.Fprintf(&sb, "Rule %s could not run: %s\n", rr.Rule, rr.Error)
			continue
		}
		for _, f := range rr.Findings {
			writeFinding(&sb, f)
		}
	}

	if r.Valid {
		if color {
			fmt.Fprintf(&sb, "%svalid 👍%s\n", ansiGreen, ansiReset)
		} else {
			sb.WriteString("valid 👍\n")
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeFinding(sb *strings.Builder, f rules.Finding) {
	switch d := f.Details.(type) {
	case rules.DuplicateVertex:
		sb.WriteString("Duplicate Vertex Error\n")
		fmt.Fprintf(sb, "  L indices : vertices[%d] == vertices[%d]\n", d.FirstIndex, d.DuplicateIndex)
		fmt.Fprintf(sb, "  L vertex  : [%s]\n", strings.Join(d.Coordinates[:], ", "))
	default:
		fmt.Fprintf(sb, "Rule %s: %s\n", f.Rule, f.Message)
	}
}
