package config

import (
	"os"
	"path/filepath"
	"testing"
)

// withHome points HOME at a fresh temp dir and returns ~/.cjval inside it.
func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return filepath.Join(home, ".cjval")
}

func TestLoadDotEnv_NotExist(t *testing.T) {
	withHome(t)

	m, err := LoadDotEnv()
	if err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if len(m) != 0 {
		t.Fatalf("expected empty map, got %v", m)
	}
}

func TestLoadDotEnv_ParsesKeyValue(t *testing.T) {
	dir := withHome(t)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	body := "# comment\nA=1\n  B = two\n=skipped\nnoequals\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	m, err := LoadDotEnv()
	if err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if m["A"] != "1" || m["B"] != "two" {
		t.Fatalf("unexpected map: %v", m)
	}
	if len(m) != 2 {
		t.Fatalf("expected 2 keys, got %v", m)
	}
}

func TestGetConfigValue_EnvOverridesDotEnv(t *testing.T) {
	dir := withHome(t)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("K=fromdotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	v, err := GetConfigValue("K")
	if err != nil {
		t.Fatalf("GetConfigValue: %v", err)
	}
	if v != "fromdotenv" {
		t.Fatalf("expected dotenv value, got %q", v)
	}

	t.Setenv("K", "fromenv")
	v, err = GetConfigValue("K")
	if err != nil {
		t.Fatalf("GetConfigValue: %v", err)
	}
	if v != "fromenv" {
		t.Fatalf("expected env override, got %q", v)
	}
}

func TestEnsureDotEnvTemplate_DoesNotOverwrite(t *testing.T) {
	dir := withHome(t)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(dir, ".env")
	if err := os.WriteFile(p, []byte("CJVAL_FORMAT=json\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	created, err := EnsureDotEnvTemplate()
	if err != nil {
		t.Fatalf("EnsureDotEnvTemplate: %v", err)
	}
	if created {
		t.Fatalf("expected existing file to be kept")
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "CJVAL_FORMAT=json\n" {
		t.Fatalf("template overwrote existing file: %q", string(b))
	}
}

func TestEnsureDotEnvTemplate_CreatesWhenMissing(t *testing.T) {
	dir := withHome(t)

	created, err := EnsureDotEnvTemplate()
	if err != nil {
		t.Fatalf("EnsureDotEnvTemplate: %v", err)
	}
	if !created {
		t.Fatalf("expected a new template")
	}
	m, err := LoadDotEnv()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m["CJVAL_FORMAT"]; !ok {
		t.Fatalf("template missing CJVAL_FORMAT: %v (dir %s)", m, dir)
	}
}

func TestParseDotEnvLine(t *testing.T) {
	cases := []struct {
		in     string
		key    string
		value  string
		wantOK bool
	}{
		{"CJVAL_FORMAT=json", "CJVAL_FORMAT", "json", true},
		{"export CJVAL_FORMAT=yaml", "CJVAL_FORMAT", "yaml", true},
		{`CJVAL_HISTORY_FILE="~/logs/cjval history.jsonl"`, "CJVAL_HISTORY_FILE", "~/logs/cjval history.jsonl", true},
		{`A="tab\there"`, "A", "tab\there", true},
		{`B='no $expansion \n'`, "B", `no $expansion \n`, true},
		{"C=text # default", "C", "text", true},
		{`D="keep # this"`, "D", "keep # this", true},
		{"E=", "E", "", true},
		{"  # comment", "", "", false},
		{"", "", "", false},
		{"=value", "", "", false},
		{"noequals", "", "", false},
	}
	for _, c := range cases {
		k, v, ok := parseDotEnvLine(c.in)
		if ok != c.wantOK || k != c.key || v != c.value {
			t.Fatalf("parseDotEnvLine(%q)=(%q,%q,%v) want (%q,%q,%v)", c.in, k, v, ok, c.key, c.value, c.wantOK)
		}
	}
}
