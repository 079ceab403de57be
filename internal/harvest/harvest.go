// Package harvest aggregates model relevance stats across many files and
// proposes models for auto-expansion. Each file scan is a pure function,
// so files fan out over a bounded worker pool.
package harvest

import (
	"context"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/google/uuid"

	"akaidoo/internal/logging"
	"akaidoo/internal/scanner"
)

// Stats accumulates per-model stats across files.
type Stats map[string]*scanner.ModelStats

// add merges one file's stats into the aggregate.
func (s Stats) add(fileStats map[string]scanner.ModelStats) {
	for name, st := range fileStats {
		agg := s[name]
		if agg == nil {
			agg = &scanner.ModelStats{}
			s[name] = agg
		}
		agg.FieldCount += st.FieldCount
		agg.MethodCount += st.MethodCount
		agg.LineCount += st.LineCount
	}
}

// Result is the outcome of one harvest run.
type Result struct {
	RunID        string
	Stats        Stats
	FilesScanned int
	CacheHits    int
	Failed       []string // files that did not parse; excluded from scoring
}

// AutoExpand returns the model names whose score reaches threshold,
// sorted for stable output.
func (r *Result) AutoExpand(threshold int) []string {
	var names []string
	for name, st := range r.Stats {
		if st.Score() >= threshold {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Harvester scans model files and aggregates their stats.
type Harvester struct {
	logger  *logging.Logger
	cache   *Cache // optional
	workers int
}

// New creates a Harvester. cache may be nil to disable caching; workers
// <= 0 picks a bound from GOMAXPROCS.
func New(logger *logging.Logger, cache *Cache, workers int) *Harvester {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
		if workers > 8 {
			workers = 8
		}
	}
	return &Harvester{logger: logger, cache: cache, workers: workers}
}

// Run scans files and returns the aggregated stats. A file that fails to
// read or parse is recorded and skipped, never aborting the run.
func (h *Harvester) Run(ctx context.Context, files []string) (*Result, error) {
	result := &Result{
		RunID: uuid.NewString(),
		Stats: Stats{},
	}
	h.logger.Debug("harvest started",
		logging.F("runId", result.RunID),
		logging.F("files", len(files)),
		logging.F("workers", h.workers),
	)

	var mu sync.Mutex
	var wg sync.WaitGroup
	jobs := make(chan string)

	for i := 0; i < h.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				fileStats, fromCache, err := h.scanFile(ctx, path)
				mu.Lock()
				if err != nil {
					result.Failed = append(result.Failed, path)
				} else {
					result.Stats.add(fileStats)
					result.FilesScanned++
					if fromCache {
						result.CacheHits++
					}
				}
				mu.Unlock()
			}
		}()
	}

	for _, path := range files {
		jobs <- path
	}
	close(jobs)
	wg.Wait()

	sort.Strings(result.Failed)
	for _, path := range result.Failed {
		h.logger.Warn("file skipped by harvest", logging.F("path", path))
	}
	h.logger.Debug("harvest finished",
		logging.F("runId", result.RunID),
		logging.F("models", len(result.Stats)),
		logging.F("cacheHits", result.CacheHits),
	)
	return result, nil
}

func (h *Harvester) scanFile(ctx context.Context, path string) (map[string]scanner.ModelStats, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, err
	}
	mtimeNs := info.ModTime().UnixNano()
	size := info.Size()

	if h.cache != nil {
		if stats, ok, err := h.cache.Get(path, mtimeNs, size); err == nil && ok {
			return stats, true, nil
		}
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	scan, err := scanner.ScanSource(ctx, source)
	if err != nil {
		return nil, false, err
	}

	fileStats := make(map[string]scanner.ModelStats, len(scan.Stats))
	for name, st := range scan.Stats {
		fileStats[name] = *st
	}

	if h.cache != nil {
		if err := h.cache.Put(path, mtimeNs, size, fileStats); err != nil {
			h.logger.Warn("stats cache write failed", logging.F("path", path))
		}
	}
	return fileStats, false, nil
}
