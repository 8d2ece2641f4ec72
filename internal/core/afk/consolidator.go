// Package afk collapses noisy idle/away status polls into maximal runs of
// identical status.
package afk

import (
	"sort"

	"github.com/timegrain/timegrain/internal/core/model"
)

// Consolidate merges consecutive AFK events sharing the same status into one
// interval per true state, sorted ascending by start.
//
// The consolidated end is the last event's own end, not the sum of the run's
// durations: high-frequency watchers poll with overlap, and summing would
// inflate the interval.
func Consolidate(events []model.NormalizedEvent) []model.ConsolidatedState {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]model.NormalizedEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	// Runs are grouped by the mapped active/inactive state, not the raw
	// status string: distinct strings mapping to the same state must not
	// split a run, or consolidating already-consolidated output would
	// merge differently.
	var states []model.ConsolidatedState
	runStatus := stateOf(sorted[0])
	runStart := sorted[0].Start
	runEnd := sorted[0].End()

	for _, ev := range sorted[1:] {
		status := stateOf(ev)
		if status == runStatus {
			runEnd = ev.End()
			continue
		}
		states = append(states, model.ConsolidatedState{Start: runStart, End: runEnd, Status: runStatus})
		runStatus = status
		runStart = ev.Start
		runEnd = ev.End()
	}
	states = append(states, model.ConsolidatedState{Start: runStart, End: runEnd, Status: runStatus})

	return states
}

// ActivePeriods extracts the active states with nonzero width. A state with
// start == end has no time to contribute and is excluded.
func ActivePeriods(states []model.ConsolidatedState) []model.ActivePeriod {
	var periods []model.ActivePeriod
	for _, s := range states {
		if s.Status == model.StateActive && s.End > s.Start {
			periods = append(periods, model.ActivePeriod{Start: s.Start, End: s.End})
		}
	}
	return periods
}

// stateOf maps the watcher's status string (stored in the title by the
// normalizer) onto presence. Anything other than an explicit not-afk is
// treated as inactive.
func stateOf(e model.NormalizedEvent) model.StateStatus {
	if model.StringOrEmpty(e.Title) == model.StatusNotAFK {
		return model.StateActive
	}
	return model.StateInactive
}
