package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Walk discovers the files with the given extension directly under root, in
// name order. Corpus directories are flat; subdirectories are not descended.
func Walk(root, ext string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var files []string
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		files = append(files, filepath.Join(root, entry.Name()))
	}

	log.Info().Int("count", len(files)).Str("root", root).Str("ext", ext).Msg("Discovered files")
	return files, nil
}
