package cache

import (
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/huykn/tagged-cache/types"
)

// Invalidator removes entries by tag from a Table. It keeps no state between
// calls and never holds a lock across batches.
type Invalidator struct {
	table           Table
	batchSize       int
	scanConcurrency int
	yield           func()
}

// InvalidationResult summarizes one InvalidateByTags call.
type InvalidationResult struct {
	Matched  int
	Removed  int
	Batches  int
	Duration time.Duration
}

// NewInvalidator creates an Invalidator over table. Non-positive batchSize
// and scanConcurrency fall back to DefaultBatchSize and GOMAXPROCS.
func NewInvalidator(table Table, batchSize, scanConcurrency int) *Invalidator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if scanConcurrency <= 0 {
		scanConcurrency = runtime.GOMAXPROCS(0)
	}
	return &Invalidator{
		table:           table,
		batchSize:       batchSize,
		scanConcurrency: scanConcurrency,
		yield:           runtime.Gosched,
	}
}

// InvalidateByTags removes every entry whose tags intersect tags.
//
// Matching entries are collected from a per-segment snapshot, then removed
// batchSize keys at a time with a yield between batches. Entries written
// after their segment was scanned survive. An empty tags matches nothing.
func (inv *Invalidator) InvalidateByTags(tags []string) InvalidationResult {
	start := time.Now()
	if len(tags) == 0 {
		return InvalidationResult{Duration: time.Since(start)}
	}

	candidates := inv.plan(types.TagSet(tags))

	result := InvalidationResult{Matched: len(candidates)}
	for len(candidates) > 0 {
		n := min(inv.batchSize, len(candidates))
		result.Removed += inv.table.RemoveCandidates(candidates[:n])
		result.Batches++
		candidates = candidates[n:]

		inv.yield()
	}

	result.Duration = time.Since(start)
	return result
}

// plan scans the table segments in parallel and returns every record whose
// tags intersect set.
func (inv *Invalidator) plan(set map[string]struct{}) []Candidate {
	segments := inv.table.Segments()
	found := make([][]Candidate, segments)

	var g errgroup.Group
	g.SetLimit(inv.scanConcurrency)

	for i := 0; i < segments; i++ {
		g.Go(func() error {
			inv.table.ScanSegment(i, func(key string, tags []string, version uint64) {
				if types.MatchesAny(tags, set) {
					found[i] = append(found[i], Candidate{Key: key, Version: version})
				}
			})
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, f := range found {
		total += len(f)
	}

	candidates := make([]Candidate, 0, total)
	for _, f := range found {
		candidates = append(candidates, f...)
	}
	return candidates
}
