package formatter

import (
	"fmt"
	"sort"

	"github.com/timegrain/timegrain/internal/core/model"
	"github.com/timegrain/timegrain/internal/core/reconcile"
	"github.com/timegrain/timegrain/internal/util"
)

// SummaryFormatter prints per-app totals instead of the raw timeline.
type SummaryFormatter struct{}

func NewSummaryFormatter() *SummaryFormatter {
	return &SummaryFormatter{}
}

type appSummary struct {
	app     string
	entries int
	totalMs int64
}

func (f *SummaryFormatter) Format(result *reconcile.Result) error {
	byApp := make(map[string]*appSummary)
	var grandTotal int64

	for _, ev := range result.Events {
		app := model.StringOrEmpty(ev.App)
		if app == "" {
			app = "(unknown)"
		}
		s, ok := byApp[app]
		if !ok {
			s = &appSummary{app: app}
			byApp[app] = s
		}
		s.entries++
		s.totalMs += ev.End - ev.Start
		grandTotal += ev.End - ev.Start
	}

	summaries := make([]*appSummary, 0, len(byApp))
	for _, s := range byApp {
		summaries = append(summaries, s)
	}
	// Longest total first; app name breaks ties so output is stable.
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].totalMs != summaries[j].totalMs {
			return summaries[i].totalMs > summaries[j].totalMs
		}
		return summaries[i].app < summaries[j].app
	})

	fmt.Printf("%d timeline entries, %s total\n\n", len(result.Events), util.FormatDurationMs(grandTotal))
	for _, s := range summaries {
		fmt.Printf("  %-30s %8s  (%d entries)\n", s.app, util.FormatDurationMs(s.totalMs), s.entries)
	}
	if len(result.Warnings) > 0 {
		fmt.Printf("\n%d warning(s):\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
	return nil
}
