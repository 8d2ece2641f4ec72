package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/timegrain/timegrain/internal/core/model"
	"github.com/timegrain/timegrain/internal/util"
)

// Fetcher retrieves raw events for a set of buckets concurrently, bounded by
// a fixed-size pool. A failed bucket degrades to an empty result plus a
// warning; it never aborts sibling fetches.
type Fetcher struct {
	source      BucketSource
	concurrency int
}

// NewFetcher creates a Fetcher over the given source with the given pool
// size (minimum 1).
func NewFetcher(src BucketSource, concurrency int) *Fetcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Fetcher{source: src, concurrency: concurrency}
}

// FetchAll fetches every bucket's events for [startMs, endMs) and joins the
// results before returning. The returned map has an entry for every
// requested bucket; failed buckets map to nil and contribute a FetchFailed
// warning. Warnings come out in the request's bucket order so results are
// reproducible.
func (f *Fetcher) FetchAll(ctx context.Context, bucketIDs []string, startMs, endMs int64) (map[string][]model.RawEvent, []model.Warning) {
	start := time.Now()
	util.LogDebug(fmt.Sprintf("Start concurrent fetch of %d buckets, concurrency: %d", len(bucketIDs), f.concurrency))

	var mu sync.Mutex
	events := make(map[string][]model.RawEvent, len(bucketIDs))
	errs := make(map[string]error, len(bucketIDs))

	// The group only bounds concurrency; per-bucket errors are absorbed
	// into the result, so the closures never return one and no sibling is
	// cancelled.
	g := new(errgroup.Group)
	g.SetLimit(f.concurrency)

	for _, id := range bucketIDs {
		bucketID := id
		g.Go(func() error {
			fetchStart := time.Now()
			evs, err := f.source.Events(ctx, bucketID, startMs, endMs)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				util.LogWarn(fmt.Sprintf("Fetch failed for bucket %s after %v: %v", bucketID, time.Since(fetchStart), err))
				errs[bucketID] = err
				events[bucketID] = nil
				return nil
			}
			util.LogDebug(fmt.Sprintf("Fetched %d events from bucket %s in %v", len(evs), bucketID, time.Since(fetchStart)))
			events[bucketID] = evs
			return nil
		})
	}
	g.Wait()

	var warnings []model.Warning
	for _, id := range bucketIDs {
		if err := errs[id]; err != nil {
			warnings = append(warnings, model.FetchFailedWarning(id, err))
		}
	}

	util.LogDebug(fmt.Sprintf("Concurrent fetch finished in %v, %d bucket(s) failed", time.Since(start), len(warnings)))
	return events, warnings
}
