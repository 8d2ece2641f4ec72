// Package coalesce attaches browser tab events to the window-focus events
// they were active under, using a bounded backward time-join.
package coalesce

import (
	"sort"
	"strings"

	"github.com/timegrain/timegrain/internal/core/config"
	"github.com/timegrain/timegrain/internal/core/model"
)

// Coalescer enriches browser window events with the tab (url/title) active
// at their start time. Non-browser window events pass through untouched.
type Coalescer struct {
	toleranceMs   int64
	titlePriority config.TitlePriority
	browsers      []config.BrowserConfig
}

// New creates a Coalescer from the run configuration.
func New(cfg config.Config) *Coalescer {
	return &Coalescer{
		toleranceMs:   cfg.ToleranceMs,
		titlePriority: cfg.TitlePriority,
		browsers:      cfg.Browsers,
	}
}

// Coalesce joins window events against tab events, keyed by browser name.
//
// For each window event of a configured browser app the backward-nearest tab
// event (largest start <= window start) is the only candidate; it is valid
// when its interval reaches into the window event or ended at most the
// tolerance before it. An invalid candidate is discarded, never replaced by
// an older one. Matched events take the tab's URL (falling back to the
// window's own, normally nil) and, when the title priority says so, the
// tab's title. Every browser window event is tagged with its browser name
// whether or not a tab matched.
func (c *Coalescer) Coalesce(windowEvents []model.NormalizedEvent, webEvents map[string][]model.NormalizedEvent) []model.NormalizedEvent {
	// Stable sort keeps fetch order as the tie-break for equal starts, so
	// repeated runs resolve ties identically.
	sortedWeb := make(map[string][]model.NormalizedEvent, len(webEvents))
	for name, events := range webEvents {
		s := make([]model.NormalizedEvent, len(events))
		copy(s, events)
		sort.SliceStable(s, func(i, j int) bool { return s[i].Start < s[j].Start })
		sortedWeb[name] = s
	}

	out := make([]model.NormalizedEvent, 0, len(windowEvents))
	for _, win := range windowEvents {
		browser := c.browserFor(win.App)
		if browser == nil {
			out = append(out, win)
			continue
		}

		enriched := win
		enriched.Browser = &browser.Name

		if tab, ok := c.match(sortedWeb[browser.Name], win.Start); ok {
			if tab.URL != nil {
				enriched.URL = tab.URL
			}
			if c.titlePriority == config.TitleWeb && tab.Title != nil {
				enriched.Title = tab.Title
			}
		}
		out = append(out, enriched)
	}
	return out
}

// match finds the backward-nearest tab event for time t and validates it.
// web must be sorted ascending by start.
func (c *Coalescer) match(web []model.NormalizedEvent, t int64) (model.NormalizedEvent, bool) {
	idx := sort.Search(len(web), func(i int) bool { return web[i].Start > t }) - 1
	if idx < 0 {
		return model.NormalizedEvent{}, false
	}
	cand := web[idx]
	if cand.End()+c.toleranceMs < t {
		return model.NormalizedEvent{}, false
	}
	return cand, true
}

// browserFor matches a window app name against the configured browsers,
// case-insensitively. Nil app never matches.
func (c *Coalescer) browserFor(app *string) *config.BrowserConfig {
	if app == nil {
		return nil
	}
	for i := range c.browsers {
		for _, name := range c.browsers[i].AppNames {
			if strings.EqualFold(name, *app) {
				return &c.browsers[i]
			}
		}
	}
	return nil
}
