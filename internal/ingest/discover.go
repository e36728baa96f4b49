package ingest

import (
	"fmt"
	"path/filepath"
	"sort"
)

// Patterns matched by Discover. The second is a subset of the first and is
// kept for parity with devices that export emdata_*.csv files.
var Patterns = []string{"*.csv", "emdata_*.csv"}

// Discover returns the CSV files in dir, sorted lexicographically.
func Discover(dir string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range Patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("globbing %s: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDataFound, dir)
	}

	sort.Strings(files)
	return files, nil
}
