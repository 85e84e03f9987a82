package glossary

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lotsawa/internal/segment"
	"lotsawa/internal/textutil"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS glossary_entries (
	ordinal   INTEGER PRIMARY KEY,
	segmented TEXT NOT NULL,
	headword  TEXT NOT NULL,
	entry_id  TEXT NOT NULL,
	senses    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS glossary_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// LoadOrBuild returns the glossary index, reading the cache when one exists
// and otherwise building from source and writing the cache. A present cache
// is trusted as-is; staleness is never checked, so after editing the source
// run a glossary rebuild.
func LoadOrBuild(ctx context.Context, sourcePath, cachePath string, seg segment.Segmenter) (*Index, error) {
	if _, err := os.Stat(cachePath); err == nil {
		return loadCache(cachePath)
	}

	ix, err := Build(ctx, sourcePath, seg)
	if err != nil {
		return nil, err
	}
	if err := saveCache(cachePath, sourcePath, ix); err != nil {
		return nil, err
	}
	return ix, nil
}

// saveCache writes the index and its source fingerprint to a fresh cache.
func saveCache(cachePath, sourcePath string, ix *Index) error {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", cachePath)
	if err != nil {
		return fmt.Errorf("open glossary cache: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(cacheSchema); err != nil {
		return fmt.Errorf("create glossary cache schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin glossary cache transaction: %w", err)
	}
	defer tx.Rollback()

	for ordinal, form := range ix.forms {
		e := ix.byForm[form]
		senses, err := json.Marshal(e.Senses)
		if err != nil {
			return fmt.Errorf("marshal senses for entry %s: %w", e.ID, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO glossary_entries (ordinal, segmented, headword, entry_id, senses) VALUES (?, ?, ?, ?, ?)`,
			ordinal, form, e.Headword, e.ID, string(senses),
		); err != nil {
			return fmt.Errorf("insert cache entry %s: %w", e.ID, err)
		}
	}

	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("fingerprint glossary source: %w", err)
	}
	meta := map[string]string{
		"source_path": sourcePath,
		"source_hash": textutil.Hash(string(source)),
		"built_at":    time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.Exec(`INSERT INTO glossary_meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("insert cache metadata: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit glossary cache: %w", err)
	}

	log.Info().Str("path", cachePath).Int("entries", ix.Len()).Msg("Glossary cache written")
	return nil
}

// loadCache reads the index back in ordinal order.
func loadCache(cachePath string) (*Index, error) {
	db, err := sql.Open("sqlite", cachePath)
	if err != nil {
		return nil, fmt.Errorf("open glossary cache: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT segmented, headword, entry_id, senses FROM glossary_entries ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("read glossary cache: %w", err)
	}
	defer rows.Close()

	ix := newIndex()
	for rows.Next() {
		var form, senses string
		e := &Entry{}
		if err := rows.Scan(&form, &e.Headword, &e.ID, &senses); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		if err := json.Unmarshal([]byte(senses), &e.Senses); err != nil {
			return nil, fmt.Errorf("unmarshal senses for entry %s: %w", e.ID, err)
		}
		ix.add(form, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read glossary cache: %w", err)
	}

	log.Info().Str("path", cachePath).Int("entries", ix.Len()).Msg("Glossary cache loaded")
	return ix, nil
}

// CacheStatus describes the on-disk glossary cache.
type CacheStatus struct {
	Entries         int
	BuiltAt         string
	SourcePath      string
	SourceUnchanged bool
}

// Stat reads the cache metadata and reports whether the recorded source
// fingerprint still matches the source file. The answer is informational; a
// stale cache keeps being served until it is rebuilt.
func Stat(cachePath, sourcePath string) (*CacheStatus, error) {
	if _, err := os.Stat(cachePath); err != nil {
		return nil, fmt.Errorf("stat glossary cache: %w", err)
	}

	db, err := sql.Open("sqlite", cachePath)
	if err != nil {
		return nil, fmt.Errorf("open glossary cache: %w", err)
	}
	defer db.Close()

	st := &CacheStatus{}
	if err := db.QueryRow(`SELECT COUNT(*) FROM glossary_entries`).Scan(&st.Entries); err != nil {
		return nil, fmt.Errorf("count cache entries: %w", err)
	}

	meta := make(map[string]string)
	rows, err := db.Query(`SELECT key, value FROM glossary_meta`)
	if err != nil {
		return nil, fmt.Errorf("read cache metadata: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan cache metadata: %w", err)
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read cache metadata: %w", err)
	}

	st.BuiltAt = meta["built_at"]
	st.SourcePath = meta["source_path"]
	if source, err := os.ReadFile(sourcePath); err == nil {
		st.SourceUnchanged = textutil.Hash(string(source)) == meta["source_hash"]
	}
	return st, nil
}
