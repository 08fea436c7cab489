package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the in-memory representation of ~/.cjval/cjval.yaml.
type Config struct {
	// Format is the default output format: text, json or yaml.
	Format string `yaml:"format,omitempty"`
	// DisabledRules names semantic rules that are not run.
	DisabledRules []string `yaml:"disabled_rules,omitempty"`
	// RequireCityJSONType rejects documents whose "type" is not "CityJSON".
	// Nil means the default (true).
	RequireCityJSONType *bool `yaml:"require_cityjson_type,omitempty"`
	// MaxDocumentBytes bounds the size of one document; 0 uses the default
	// and a negative value disables the bound.
	MaxDocumentBytes int64 `yaml:"max_document_bytes,omitempty"`
	// HistoryFile, when set, receives one JSON line per validated document.
	HistoryFile string `yaml:"history_file,omitempty"`
}

// CjvalDir returns the absolute path to ~/.cjval/.
func CjvalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".cjval"), nil
}

// ConfigPath returns the absolute path to ~/.cjval/cjval.yaml.
func ConfigPath() (string, error) {
	dir, err := CjvalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cjval.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the Config written by cjval init.
func DefaultConfig() *Config {
	on := true
	return &Config{
		Format:              "text",
		RequireCityJSONType: &on,
	}
}

// TypeCheckEnabled reports whether the "type": "CityJSON" pre-check runs.
func (c *Config) TypeCheckEnabled() bool {
	return c.RequireCityJSONType == nil || *c.RequireCityJSONType
}

// Load reads and parses ~/.cjval/cjval.yaml. A missing file yields the
// defaults; environment overrides from ApplyEnv are applied on top.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	// Expand ~ in HistoryFile at load time.
	cfg.HistoryFile, err = ExpandPath(cfg.HistoryFile)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CJVAL_* values (process env, then ~/.cjval/.env).
func (c *Config) ApplyEnv() error {
	format, err := GetConfigValue("CJVAL_FORMAT")
	if err != nil {
		return err
	}
	if format != "" {
		c.Format = format
	}
	hist, err := GetConfigValue("CJVAL_HISTORY_FILE")
	if err != nil {
		return err
	}
	if hist != "" {
		c.HistoryFile = hist
	}
	return nil
}

// Save marshals cfg and writes it to ~/.cjval/cjval.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
