// Package wordsrc loads dictionary source lists for the CLI host: plain
// word-list files on disk and the shared word corpus in BigQuery. The
// core never touches these; it receives parsed lists only.
package wordsrc

import (
	"fmt"
	"os"

	"github.com/hugolynch/crossroads/pkg/dict"
)

// Files parses each path into its own list, preserving per-source
// identity so the dictionary's dedup keeps the best rating across
// sources.
func Files(paths ...string) ([]dict.List, error) {
	lists := make([]dict.List, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open word list: %w", err)
		}
		list, err := dict.Parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		lists = append(lists, list)
	}
	return lists, nil
}
