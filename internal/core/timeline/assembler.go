// Package timeline assembles the final reconciled timeline from the
// independently produced event sets.
package timeline

import (
	"sort"

	"github.com/timegrain/timegrain/internal/core/model"
)

// Assembler concatenates clipped activity events with (optionally) the
// consolidated AFK states and emits one chronologically ordered timeline.
type Assembler struct {
	includeAFK bool
	afkAppName string
}

// New creates an Assembler. When includeAFK is set, idle/active states are
// emitted as first-class timeline entries under the sentinel app name.
func New(includeAFK bool, afkAppName string) *Assembler {
	return &Assembler{includeAFK: includeAFK, afkAppName: afkAppName}
}

// Assemble merges the inputs and sorts by start ascending. The sort is
// stable and ties fall back to insertion order (activities before AFK
// states), so identical input yields byte-identical output across runs.
// Entries with end <= start never reach the output.
func (a *Assembler) Assemble(activities []model.NormalizedEvent, states []model.ConsolidatedState) []model.OutputEvent {
	out := make([]model.OutputEvent, 0, len(activities)+len(states))

	for _, ev := range activities {
		if ev.DurationMs <= 0 {
			continue
		}
		out = append(out, model.OutputEvent{
			Start:   ev.Start,
			End:     ev.End(),
			App:     ev.App,
			Title:   ev.Title,
			URL:     ev.URL,
			Browser: ev.Browser,
		})
	}

	if a.includeAFK {
		for _, s := range states {
			if s.End <= s.Start {
				continue
			}
			app := a.afkAppName
			title := statusTitle(s.Status)
			out = append(out, model.OutputEvent{
				Start: s.Start,
				End:   s.End,
				App:   &app,
				Title: &title,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// statusTitle renders a consolidated status in the idle watcher's own
// vocabulary, so downstream consumers see the familiar afk/not-afk labels.
func statusTitle(s model.StateStatus) string {
	if s == model.StateActive {
		return model.StatusNotAFK
	}
	return model.StatusAFK
}
