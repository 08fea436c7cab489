// Package history keeps an append-only JSONL log of validation verdicts
// that several cjval processes may write to at once.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/kamusis/cjval/internal/report"
)

// Entry is one line of the log.
type Entry struct {
	Time             string `json:"time"`
	Source           string `json:"source"`
	Version          string `json:"version"`
	Valid            bool   `json:"valid"`
	StructuralErrors int    `json:"structural_errors"`
	Findings         int    `json:"findings"`
}

// EntryFor summarises r as a log entry stamped with now.
func EntryFor(r *report.Report, now time.Time) Entry {
	source := r.Source
	if abs, err := filepath.Abs(source); err == nil && source != "" {
		source = abs
	}
	return Entry{
		Time:             now.UTC().Format(time.RFC3339),
		Source:           source,
		Version:          r.Version,
		Valid:            r.Valid,
		StructuralErrors: len(r.StructuralErrors),
		Findings:         r.FindingCount(),
	}
}

// Append writes entries to the log at path under an exclusive lock on
// path+".lock", waiting up to timeout for other writers.
func Append(path string, timeout time.Duration, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create history dir for %s: %w", path, err)
	}
	unlock, err := acquireLock(path+".lock", timeout)
	if err != nil {
		return err
	}
	defer unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("cannot open history file %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	for _, e := range entries {
		line, err := json.Marshal(e)
		if err != nil {
			_ = f.Close()
			return err
		}
		if _, err := bw.Write(line); err != nil {
			_ = f.Close()
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("cannot write history file %s: %w", path, err)
	}
	return f.Close()
}

// Load reads every entry from the log at path. A missing log is empty.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("cannot open history file %s: %w", path, err)
	}
	defer f.Close()

	var out []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("invalid history JSONL %s: %w", path, err)
		}
		out = append(out, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read history file %s: %w", path, err)
	}
	return out, nil
}

// acquireLock polls for the file lock until timeout elapses.
func acquireLock(lockPath string, timeout time.Duration) (func(), error) {
	l := flock.New(lockPath)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return nil, fmt.Errorf("cannot acquire history lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("history file is locked by another process (lock: %s)", lockPath)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// Probe checks that path can be locked and opened for appending, without
// writing anything.
func Probe(path string, timeout time.Duration) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create history dir for %s: %w", path, err)
	}
	unlock, err := acquireLock(path+".lock", timeout)
	if err != nil {
		return err
	}
	defer unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("cannot open history file %s: %w", path, err)
	}
	return f.Close()
}
