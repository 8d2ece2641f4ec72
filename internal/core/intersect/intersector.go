// Package intersect clips activity events to the portions of time the user
// was actually present.
package intersect

import (
	"sort"

	"github.com/timegrain/timegrain/internal/core/config"
	"github.com/timegrain/timegrain/internal/core/model"
)

// Intersect clips every activity event to its overlaps with the active
// periods, splitting events that straddle inactive gaps. Each output
// interval is a sub-interval of both an input activity and some active
// period; zero-duration activities emit nothing.
//
// When no active period exists at all the behavior is the caller's explicit
// choice: DropAll discards every activity, KeepAll returns them unfiltered.
func Intersect(activities []model.NormalizedEvent, periods []model.ActivePeriod, policy config.EmptyActivePolicy) []model.NormalizedEvent {
	if len(periods) == 0 {
		if policy == config.KeepAll {
			out := make([]model.NormalizedEvent, len(activities))
			copy(out, activities)
			return out
		}
		return nil
	}

	sorted := make([]model.ActivePeriod, len(periods))
	copy(sorted, periods)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var out []model.NormalizedEvent
	for _, act := range activities {
		aStart, aEnd := act.Start, act.End()
		if aEnd <= aStart {
			continue
		}
		// Periods are sorted, so scanning can stop at the first period
		// starting at or after the activity's end. Daily bucket sizes are
		// small enough that a linear scan beats an interval tree.
		for _, p := range sorted {
			if p.End <= aStart {
				continue
			}
			if p.Start >= aEnd {
				break
			}
			clipped := act
			clipped.Start = max64(aStart, p.Start)
			clipped.DurationMs = min64(aEnd, p.End) - clipped.Start
			out = append(out, clipped)
		}
	}
	return out
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
