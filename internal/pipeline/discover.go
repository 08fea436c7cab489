package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Discover expands paths into the list of documents to validate. Files are
// kept as given; directories are walked for *.json files, skipping hidden
// entries. Directory results are sorted and the whole list is deduplicated.
func Discover(paths []string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	add := func(p string) {
		key := filepath.Clean(p)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, p)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %v", ErrRead, p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}

		var found []string
		walkFn := func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != p && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if strings.EqualFold(filepath.Ext(d.Name()), ".json") {
				found = append(found, path)
			}
			return nil
		}
		if err := filepath.WalkDir(p, walkFn); err != nil {
			return nil, fmt.Errorf("cannot scan %s: %w", p, err)
		}
		sort.Strings(found)
		for _, f := range found {
			add(f)
		}
	}
	return out, nil
}
