package dataset

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

var shardRegexp = regexp.MustCompile(`(?i)\.(csv|txt)$`)

// DiscoverShards returns the paths of table files beneath root, sorted.
func DiscoverShards(root string) ([]string, error) {
	entries := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if shardRegexp.MatchString(d.Name()) {
			entries = append(entries, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover shards: %w", err)
	}
	sort.Strings(entries)
	return entries, nil
}

// Resolve expands path into the table files to read: the file itself, or
// every shard beneath a directory.
func Resolve(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("resolve dataset: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	shards, err := DiscoverShards(path)
	if err != nil {
		return nil, err
	}
	if len(shards) == 0 {
		return nil, fmt.Errorf("no shards under %s: %w", path, ErrEmpty)
	}
	return shards, nil
}
