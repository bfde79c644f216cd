package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/orgburn/internal/source"
	"github.com/theirongolddev/orgburn/internal/store"

	log "github.com/sirupsen/logrus"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
}

// LoadWithCache discovers exports, diffs them against the cache, parses only
// changed files and returns the combined records in file order. A file is
// unchanged when its mtime, size and extraction time zone all match.
func LoadWithCache(paths []string, loc *time.Location, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	if loc == nil {
		loc = time.Local
	}
	files, err := Discover(paths)
	if err != nil {
		return nil, err
	}

	result := &CachedLoadResult{LoadResult: LoadResult{TotalFiles: len(files)}}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	zone := loc.String()
	current := make(map[string]store.FileInfo, len(files))
	var toReparse []source.DiscoveredFile
	unchanged := make(map[string]struct{})

	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			toReparse = append(toReparse, f)
			continue
		}
		fi := store.FileInfo{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size(), Zone: zone}
		current[f.Path] = fi

		if cached, ok := tracked[f.Path]; ok && cached == fi {
			unchanged[f.Path] = struct{}{}
		} else {
			toReparse = append(toReparse, f)
		}
	}

	result.CacheHits = len(unchanged)
	result.Reparsed = len(toReparse)

	byPath := make(map[string]source.ParseResult, len(files))

	if len(unchanged) > 0 {
		cached, err := cache.LoadRecords()
		if err != nil {
			return nil, fmt.Errorf("loading cached records: %w", err)
		}
		for path := range unchanged {
			byPath[path] = source.ParseResult{Records: cached[path]}
		}
	}

	parsed := parseAll(toReparse, loc, result.CacheHits, result.TotalFiles, progressFn)
	for i, pr := range parsed {
		path := toReparse[i].Path
		byPath[path] = pr
		if pr.Err != nil {
			continue
		}
		fi, ok := current[path]
		if !ok {
			continue
		}
		if err := cache.SaveRecords(path, pr.Shape.String(), pr.Records, fi); err != nil {
			log.WithError(err).WithField("file", path).Warn("caching records failed")
		}
	}

	for _, f := range files {
		result.collect(byPath[f.Path])
	}
	return result, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "orgburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "orgburn")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "records.db")
}
