package coalesce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timegrain/timegrain/internal/core/config"
	"github.com/timegrain/timegrain/internal/core/model"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.ToleranceMs = 1000
	cfg.Browsers = []config.BrowserConfig{
		{Name: "chrome", AppNames: []string{"Google Chrome"}, BucketPrefix: "aw-watcher-web-chrome"},
	}
	return cfg
}

func windowEvent(start, durationMs int64, app, title string) model.NormalizedEvent {
	return model.NormalizedEvent{Start: start, DurationMs: durationMs, App: &app, Title: &title}
}

func webEvent(start, durationMs int64, url, title string) model.NormalizedEvent {
	return model.NormalizedEvent{Start: start, DurationMs: durationMs, URL: &url, Title: &title}
}

func TestCoalesceMatchesOverlappingTab(t *testing.T) {
	c := New(testConfig())

	windows := []model.NormalizedEvent{windowEvent(1000, 5000, "Google Chrome", "Chrome")}
	web := map[string][]model.NormalizedEvent{
		"chrome": {webEvent(500, 10_000, "https://example.com", "Example")},
	}

	out := c.Coalesce(windows, web)

	require.Len(t, out, 1)
	assert.Equal(t, "https://example.com", model.StringOrEmpty(out[0].URL))
	assert.Equal(t, "chrome", model.StringOrEmpty(out[0].Browser))
	// Default title priority keeps the window's own title.
	assert.Equal(t, "Chrome", model.StringOrEmpty(out[0].Title))
}

func TestCoalesceToleranceBoundary(t *testing.T) {
	tests := []struct {
		name      string
		webStart  int64
		webDurMs  int64
		wantMatch bool
	}{
		// Window starts at 10_000, tolerance is 1000.
		{name: "tab ends exactly tolerance before start", webStart: 4000, webDurMs: 5000, wantMatch: true},
		{name: "tab ends one ms further back", webStart: 4000, webDurMs: 4999, wantMatch: false},
		{name: "tab still open at window start", webStart: 9000, webDurMs: 5000, wantMatch: true},
		{name: "tab starts after window start", webStart: 11_000, webDurMs: 5000, wantMatch: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(testConfig())
			windows := []model.NormalizedEvent{windowEvent(10_000, 5000, "Google Chrome", "Chrome")}
			web := map[string][]model.NormalizedEvent{
				"chrome": {webEvent(tt.webStart, tt.webDurMs, "https://example.com", "Example")},
			}

			out := c.Coalesce(windows, web)

			require.Len(t, out, 1)
			if tt.wantMatch {
				assert.Equal(t, "https://example.com", model.StringOrEmpty(out[0].URL))
			} else {
				assert.Nil(t, out[0].URL)
			}
			// Tagged with the browser either way.
			assert.Equal(t, "chrome", model.StringOrEmpty(out[0].Browser))
		})
	}
}

func TestCoalesceBackwardNearestOnly(t *testing.T) {
	// The nearest candidate is stale; an older overlapping tab must not be
	// used as a fallback.
	c := New(testConfig())
	windows := []model.NormalizedEvent{windowEvent(100_000, 5000, "Google Chrome", "Chrome")}
	web := map[string][]model.NormalizedEvent{
		"chrome": {
			webEvent(0, 200_000, "https://long-lived.example", "Long"),
			webEvent(50_000, 1000, "https://stale.example", "Stale"),
		},
	}

	out := c.Coalesce(windows, web)

	require.Len(t, out, 1)
	assert.Nil(t, out[0].URL)
}

func TestCoalesceTitlePriorityWeb(t *testing.T) {
	cfg := testConfig()
	cfg.TitlePriority = config.TitleWeb
	c := New(cfg)

	windows := []model.NormalizedEvent{windowEvent(1000, 5000, "Google Chrome", "Chrome")}
	web := map[string][]model.NormalizedEvent{
		"chrome": {webEvent(500, 10_000, "https://example.com", "Example Tab")},
	}

	out := c.Coalesce(windows, web)

	require.Len(t, out, 1)
	assert.Equal(t, "Example Tab", model.StringOrEmpty(out[0].Title))
}

func TestCoalesceNonBrowserBypasses(t *testing.T) {
	c := New(testConfig())

	windows := []model.NormalizedEvent{windowEvent(1000, 5000, "editor", "main.go")}
	web := map[string][]model.NormalizedEvent{
		"chrome": {webEvent(500, 10_000, "https://example.com", "Example")},
	}

	out := c.Coalesce(windows, web)

	require.Len(t, out, 1)
	assert.Equal(t, windows[0], out[0])
	assert.Nil(t, out[0].Browser)
}

func TestCoalesceCaseInsensitiveAppMatch(t *testing.T) {
	c := New(testConfig())

	windows := []model.NormalizedEvent{windowEvent(1000, 5000, "google chrome", "Chrome")}
	out := c.Coalesce(windows, nil)

	require.Len(t, out, 1)
	assert.Equal(t, "chrome", model.StringOrEmpty(out[0].Browser))
}

func TestCoalesceEqualStartTieBreakIsDeterministic(t *testing.T) {
	c := New(testConfig())
	windows := []model.NormalizedEvent{windowEvent(1000, 5000, "Google Chrome", "Chrome")}
	web := map[string][]model.NormalizedEvent{
		"chrome": {
			webEvent(1000, 5000, "https://first.example", "First"),
			webEvent(1000, 5000, "https://second.example", "Second"),
		},
	}

	first := c.Coalesce(windows, web)
	for i := 0; i < 10; i++ {
		again := c.Coalesce(windows, web)
		assert.Equal(t, first, again)
	}
	// Stable sort keeps fetch order, so the later of the tied pair wins.
	assert.Equal(t, "https://second.example", model.StringOrEmpty(first[0].URL))
}

func TestCoalesceNilAppBypasses(t *testing.T) {
	c := New(testConfig())

	windows := []model.NormalizedEvent{{Start: 1000, DurationMs: 5000}}
	out := c.Coalesce(windows, nil)

	require.Len(t, out, 1)
	assert.Nil(t, out[0].Browser)
}
