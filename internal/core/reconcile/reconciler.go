// Package reconcile wires the pipeline stages into the reconciliation
// engine: fetch, normalize, consolidate, coalesce, intersect, assemble.
// One call is a pure function of (time window, bucket contents); no state
// survives between calls.
package reconcile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/timegrain/timegrain/internal/core/afk"
	"github.com/timegrain/timegrain/internal/core/coalesce"
	"github.com/timegrain/timegrain/internal/core/config"
	"github.com/timegrain/timegrain/internal/core/intersect"
	"github.com/timegrain/timegrain/internal/core/model"
	"github.com/timegrain/timegrain/internal/core/normalize"
	"github.com/timegrain/timegrain/internal/core/timeline"
	"github.com/timegrain/timegrain/internal/data/source"
	"github.com/timegrain/timegrain/internal/util"
)

// Window is the UTC time range one run covers, in Unix milliseconds.
type Window struct {
	StartMs int64
	EndMs   int64
}

// Result is one run's reconciled timeline plus the recoverable conditions
// absorbed along the way. A run with warnings still produced a timeline,
// just a degraded one.
type Result struct {
	Events   []model.OutputEvent `json:"events"`
	Warnings []model.Warning     `json:"warnings,omitempty"`
}

// Reconciler runs the engine against one event store.
type Reconciler struct {
	cfg config.Config
	src source.BucketSource
}

// New creates a Reconciler. The configuration is validated on each run, not
// here, so a Reconciler built early with a bad config still fails loudly.
func New(cfg config.Config, src source.BucketSource) *Reconciler {
	return &Reconciler{cfg: cfg, src: src}
}

// Reconcile produces the timeline for one window over the resolved buckets.
// Only configuration problems return an error; bucket and record failures
// degrade into warnings on the result.
func (r *Reconciler) Reconcile(ctx context.Context, window Window, buckets source.ResolvedBuckets) (*Result, error) {
	runStart := time.Now()

	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}
	if window.StartMs >= window.EndMs {
		return nil, &config.ConfigurationError{
			Reason: fmt.Sprintf("window start %s must precede end %s",
				util.FormatMs(window.StartMs), util.FormatMs(window.EndMs)),
		}
	}

	util.LogInfo(fmt.Sprintf("Reconciling %s .. %s", util.FormatMs(window.StartMs), util.FormatMs(window.EndMs)))

	// Phase 1: fetch all buckets concurrently and join. Concurrency ends
	// here; every later phase is single-threaded and deterministic.
	fetchStart := time.Now()
	fetchCtx := ctx
	if r.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, r.cfg.FetchTimeout)
		defer cancel()
	}
	fetcher := source.NewFetcher(r.src, r.cfg.FetchConcurrency())
	raw, warnings := fetcher.FetchAll(fetchCtx, buckets.IDs(), window.StartMs, window.EndMs)
	util.LogDebug(fmt.Sprintf("Phase 1 - Fetch duration: %v", time.Since(fetchStart)))

	// Phase 2: normalize each bucket per its kind. Malformed records are
	// skipped and surface as warnings in a fixed bucket order.
	normStart := time.Now()
	norm := normalize.New(r.cfg)

	windowEvents, skipped := norm.NormalizeBucket(buckets.Window, model.BucketWindow, raw[buckets.Window])
	if skipped > 0 {
		warnings = append(warnings, model.MalformedEventsWarning(buckets.Window, skipped))
	}

	afkEvents, skipped := norm.NormalizeBucket(buckets.AFK, model.BucketAFK, raw[buckets.AFK])
	if skipped > 0 {
		warnings = append(warnings, model.MalformedEventsWarning(buckets.AFK, skipped))
	}

	webEvents := make(map[string][]model.NormalizedEvent, len(buckets.Web))
	for _, name := range sortedBrowserNames(buckets.Web) {
		bucketID := buckets.Web[name]
		events, skipped := norm.NormalizeBucket(bucketID, model.BucketWeb, raw[bucketID])
		if skipped > 0 {
			warnings = append(warnings, model.MalformedEventsWarning(bucketID, skipped))
		}
		webEvents[name] = events
	}
	util.LogDebug(fmt.Sprintf("Phase 2 - Normalize duration: %v (window=%d afk=%d web buckets=%d)",
		time.Since(normStart), len(windowEvents), len(afkEvents), len(webEvents)))

	// Phase 3: consolidate AFK polls into maximal status runs.
	consolidateStart := time.Now()
	states := afk.Consolidate(afkEvents)
	periods := afk.ActivePeriods(states)
	util.LogDebug(fmt.Sprintf("Phase 3 - Consolidate duration: %v (%d states, %d active periods)",
		time.Since(consolidateStart), len(states), len(periods)))

	// Phase 4: attach browser tabs to browser window events.
	coalesceStart := time.Now()
	activities := coalesce.New(r.cfg).Coalesce(windowEvents, webEvents)
	util.LogDebug(fmt.Sprintf("Phase 4 - Coalesce duration: %v", time.Since(coalesceStart)))

	// Phase 5: clip activities to presence.
	intersectStart := time.Now()
	if len(periods) == 0 && len(activities) > 0 {
		util.LogWarn(fmt.Sprintf("No active periods in window; policy %q applies to %d activity event(s)",
			r.cfg.EmptyActivePolicy, len(activities)))
	}
	clipped := intersect.Intersect(activities, periods, r.cfg.EmptyActivePolicy)
	util.LogDebug(fmt.Sprintf("Phase 5 - Intersect duration: %v (%d -> %d events)",
		time.Since(intersectStart), len(activities), len(clipped)))

	// Phase 6: assemble the final ordered timeline.
	assembleStart := time.Now()
	events := timeline.New(r.cfg.IncludeAFK, r.cfg.AFKAppName).Assemble(clipped, states)
	util.LogDebug(fmt.Sprintf("Phase 6 - Assemble duration: %v (%d timeline entries)",
		time.Since(assembleStart), len(events)))

	util.LogInfo(fmt.Sprintf("Reconciliation finished in %v: %d entries, %d warning(s)",
		time.Since(runStart), len(events), len(warnings)))

	return &Result{Events: events, Warnings: warnings}, nil
}

func sortedBrowserNames(web map[string]string) []string {
	names := make([]string, 0, len(web))
	for name := range web {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
