package harvest

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure Go SQLite driver

	akerr "akaidoo/internal/errors"
	"akaidoo/internal/logging"
	"akaidoo/internal/scanner"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS file_stats (
	path       TEXT PRIMARY KEY,
	mtime_ns   INTEGER NOT NULL,
	size       INTEGER NOT NULL,
	stats_json TEXT NOT NULL
);
`

// Cache persists per-file model stats keyed by path plus mtime and size,
// so repeated harvests skip re-parsing unchanged files.
type Cache struct {
	db     *sql.DB
	logger *logging.Logger
}

// OpenCache opens or creates the stats database at path.
func OpenCache(path string, logger *logging.Logger) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, akerr.New(akerr.CacheUnavailable, "cannot create cache directory", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, akerr.New(akerr.CacheUnavailable, "cannot open stats cache", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, akerr.New(akerr.CacheUnavailable, "cannot configure stats cache", err)
		}
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, akerr.New(akerr.CacheUnavailable, "cannot initialize stats cache schema", err)
	}

	return &Cache{db: db, logger: logger}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached stats for path when mtime and size still match.
func (c *Cache) Get(path string, mtimeNs, size int64) (map[string]scanner.ModelStats, bool, error) {
	var cachedMtime, cachedSize int64
	var statsJSON string
	err := c.db.QueryRow(`
		SELECT mtime_ns, size, stats_json FROM file_stats WHERE path = ?
	`, path).Scan(&cachedMtime, &cachedSize, &statsJSON)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("stats cache lookup failed: %w", err)
	}
	if cachedMtime != mtimeNs || cachedSize != size {
		return nil, false, nil
	}

	var stats map[string]scanner.ModelStats
	if err := json.Unmarshal([]byte(statsJSON), &stats); err != nil {
		// A corrupt row is treated as a miss and overwritten on Put.
		c.logger.Warn("discarding corrupt stats cache entry", logging.F("path", path))
		return nil, false, nil
	}
	return stats, true, nil
}

// Put stores the stats for path.
func (c *Cache) Put(path string, mtimeNs, size int64, stats map[string]scanner.ModelStats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	_, err = c.db.Exec(`
		INSERT OR REPLACE INTO file_stats (path, mtime_ns, size, stats_json)
		VALUES (?, ?, ?, ?)
	`, path, mtimeNs, size, string(statsJSON))
	if err != nil {
		return fmt.Errorf("stats cache write failed: %w", err)
	}
	return nil
}
