package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/theirongolddev/orgburn/internal/model"
	"github.com/theirongolddev/orgburn/internal/source"
)

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Records     []model.UsageRecord
	TotalFiles  int
	ParsedFiles int
	EmptyFiles  int // well-formed exports that yielded no records
	FileErrors  int
	Errors      []error
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Discover resolves export paths into files, dropping duplicates and keeping
// the order paths were given in.
func Discover(paths []string) ([]source.DiscoveredFile, error) {
	seen := make(map[string]struct{})
	var files []source.DiscoveredFile
	for _, p := range paths {
		found, err := source.ScanPath(p)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", p, err)
		}
		for _, f := range found {
			if _, ok := seen[f.Path]; ok {
				continue
			}
			seen[f.Path] = struct{}{}
			files = append(files, f)
		}
	}
	return files, nil
}

// Load discovers and parses every export under paths. Files parse in a
// bounded worker pool and records concatenate in file order.
func Load(paths []string, loc *time.Location, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := Discover(paths)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{TotalFiles: len(files)}
	for _, pr := range parseAll(files, loc, 0, len(files), progressFn) {
		result.collect(pr)
	}
	return result, nil
}

func (r *LoadResult) collect(pr source.ParseResult) {
	if pr.Err != nil {
		r.FileErrors++
		r.Errors = append(r.Errors, pr.Err)
		return
	}
	r.ParsedFiles++
	if len(pr.Records) == 0 {
		r.EmptyFiles++
		return
	}
	r.Records = append(r.Records, pr.Records...)
}

// parseAll parses files in parallel. Results are indexed like files. done is
// the number of files already accounted for before this batch, for progress.
func parseAll(files []source.DiscoveredFile, loc *time.Location, done, total int, progressFn ProgressFunc) []source.ParseResult {
	results := make([]source.ParseResult, len(files))
	if len(files) == 0 {
		return results
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx], loc)
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n)+done, total)
				}
			}
		}()
	}

	wg.Wait()
	return results
}
