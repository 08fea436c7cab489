package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kamusis/cjval/internal/history"
	"github.com/kamusis/cjval/internal/pipeline"
	"github.com/kamusis/cjval/internal/report"
)

const validDoc = `{
  "type": "CityJSON",
  "version": "1.1",
  "transform": { "scale": [0.001, 0.001, 0.001], "translate": [0, 0, 0] },
  "CityObjects": {},
  "vertices": [[0, 0, 0], [1, 2, 3]]
}`

const duplicateDoc = `{
  "type": "CityJSON",
  "version": "1.1",
  "transform": { "scale": [1, 1, 1], "translate": [0, 0, 0] },
  "CityObjects": {},
  "vertices": [[0, 0, 0], [5, 5, 5], [0, 0, 0]]
}`

func writeDoc(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func textOptions() validateOptions {
	return validateOptions{
		format:    report.FormatText,
		typeCheck: true,
		maxBytes:  pipeline.DefaultMaxDocumentBytes,
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, exitValid},
		{&exitError{code: exitInvalid}, exitInvalid},
		{&exitError{code: exitFatal, err: errors.New("boom")}, exitFatal},
		{errors.New("cobra usage error"), exitFatal},
	}
	for _, c := range cases {
		if got := exitCode(c.err); got != c.want {
			t.Fatalf("exitCode(%v)=%d want %d", c.err, got, c.want)
		}
	}
}

func TestValidatePaths_Valid(t *testing.T) {
	p := writeDoc(t, t.TempDir(), "ok.json", validDoc)

	var out, errOut bytes.Buffer
	if err := validatePaths(&out, &errOut, textOptions(), []string{p}); err != nil {
		t.Fatalf("validatePaths unexpected error: %v (stderr %q)", err, errOut.String())
	}
	if !strings.Contains(out.String(), "valid 👍") {
		t.Fatalf("expected verdict line, got:\n%s", out.String())
	}
}

func TestValidatePaths_InvalidExitsOne(t *testing.T) {
	p := writeDoc(t, t.TempDir(), "dup.json", duplicateDoc)

	var out, errOut bytes.Buffer
	err := validatePaths(&out, &errOut, textOptions(), []string{p})
	if got := exitCode(err); got != exitInvalid {
		t.Fatalf("exit code %d want %d (err %v)", got, exitInvalid, err)
	}
	if !strings.Contains(out.String(), "vertices[0] == vertices[2]") {
		t.Fatalf("expected duplicate finding, got:\n%s", out.String())
	}
}

func TestValidatePaths_DisabledRuleMakesDuplicatesPass(t *testing.T) {
	p := writeDoc(t, t.TempDir(), "dup.json", duplicateDoc)
	opts := textOptions()
	opts.disabledRules = []string{"no_duplicate_vertices", "no_duplicate_vertices"}

	var out, errOut bytes.Buffer
	if err := validatePaths(&out, &errOut, opts, []string{p}); err != nil {
		t.Fatalf("validatePaths unexpected error: %v", err)
	}
}

func TestValidatePaths_UnknownRuleIsFatal(t *testing.T) {
	p := writeDoc(t, t.TempDir(), "ok.json", validDoc)
	opts := textOptions()
	opts.disabledRules = []string{"no_such_rule"}

	var out, errOut bytes.Buffer
	err := validatePaths(&out, &errOut, opts, []string{p})
	if got := exitCode(err); got != exitFatal {
		t.Fatalf("exit code %d want %d", got, exitFatal)
	}
}

func TestValidatePaths_FatalDoesNotStopOtherFiles(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a_broken.json", `{"type": "CityJSON",`)
	writeDoc(t, dir, "b_ok.json", validDoc)

	var out, errOut bytes.Buffer
	err := validatePaths(&out, &errOut, textOptions(), []string{dir})
	if got := exitCode(err); got != exitFatal {
		t.Fatalf("exit code %d want %d", got, exitFatal)
	}
	if !strings.Contains(errOut.String(), "a_broken.json") {
		t.Fatalf("expected parse failure on stderr, got %q", errOut.String())
	}
	if !strings.Contains(out.String(), "valid 👍") {
		t.Fatalf("expected report for remaining file, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "=== Summary ===") {
		t.Fatalf("expected summary for multiple files, got:\n%s", out.String())
	}
}

func TestValidatePaths_NoFiles(t *testing.T) {
	var out, errOut bytes.Buffer
	err := validatePaths(&out, &errOut, textOptions(), []string{t.TempDir()})
	if got := exitCode(err); got != exitFatal {
		t.Fatalf("exit code %d want %d", got, exitFatal)
	}
}

func TestValidatePaths_JSONFormat(t *testing.T) {
	p := writeDoc(t, t.TempDir(), "dup.json", duplicateDoc)
	opts := textOptions()
	opts.format = report.FormatJSON

	var out, errOut bytes.Buffer
	_ = validatePaths(&out, &errOut, opts, []string{p})

	var got report.Report
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not a JSON report: %v\n%s", err, out.String())
	}
	if got.Valid || got.Version != "1.1" || len(got.Rules) != 1 || got.Rules[0].Passed {
		t.Fatalf("unexpected report: %+v", got)
	}
	if strings.Contains(out.String(), "Summary") {
		t.Fatalf("machine output must not carry the text summary")
	}
}

func TestValidatePaths_RecordsHistory(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "ok.json", validDoc)
	writeDoc(t, dir, "dup.json", duplicateDoc)
	opts := textOptions()
	opts.historyFile = filepath.Join(dir, "log", "history.jsonl")

	var out, errOut bytes.Buffer
	_ = validatePaths(&out, &errOut, opts, []string{dir})

	entries, err := history.Load(opts.historyFile)
	if err != nil {
		t.Fatalf("history.Load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(entries))
	}
	// Discover sorts, so dup.json comes first.
	if entries[0].Valid || !entries[1].Valid {
		t.Fatalf("unexpected verdicts: %+v", entries)
	}
}

func TestEffectiveMaxBytes(t *testing.T) {
	cases := []struct {
		in, want int64
	}{
		{0, pipeline.DefaultMaxDocumentBytes},
		{-1, 0},
		{1024, 1024},
	}
	for _, c := range cases {
		if got := effectiveMaxBytes(c.in); got != c.want {
			t.Fatalf("effectiveMaxBytes(%d)=%d want %d", c.in, got, c.want)
		}
	}
}

func TestDedupe(t *testing.T) {
	got := dedupe([]string{"a", "", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("dedupe=%v want %v", got, want)
	}
}

func TestColorEnabled_NonFile(t *testing.T) {
	if colorEnabled(&bytes.Buffer{}) {
		t.Fatalf("a buffer is never a terminal")
	}
}
