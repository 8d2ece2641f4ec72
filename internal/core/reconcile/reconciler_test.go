package reconcile

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timegrain/timegrain/internal/core/config"
	"github.com/timegrain/timegrain/internal/core/model"
	"github.com/timegrain/timegrain/internal/data/source"
)

// baseMs is 2026-08-22T10:00:00Z.
const baseMs = int64(1787392800000)

func ts(offsetSec int64) string {
	return time.UnixMilli(baseMs + offsetSec*1000).UTC().Format(time.RFC3339)
}

// stubSource serves canned per-bucket events without a real HTTP server.
type stubSource struct {
	buckets map[string][]model.RawEvent
	failing map[string]error
	calls   int32
}

func (s *stubSource) ListBuckets(ctx context.Context) ([]source.BucketInfo, error) {
	return nil, nil
}

func (s *stubSource) Events(ctx context.Context, bucketID string, startMs, endMs int64) ([]model.RawEvent, error) {
	atomic.AddInt32(&s.calls, 1)
	if err, ok := s.failing[bucketID]; ok {
		return nil, err
	}
	return s.buckets[bucketID], nil
}

func testBuckets() source.ResolvedBuckets {
	return source.ResolvedBuckets{
		Window: "aw-watcher-window_test",
		AFK:    "aw-watcher-afk_test",
		Web:    map[string]string{"chrome": "aw-watcher-web-chrome_test"},
	}
}

// fixtureSource covers one active-afk-active cycle with a browser event, a
// plain editor event, and an event straddling the afk boundary.
func fixtureSource() *stubSource {
	return &stubSource{
		buckets: map[string][]model.RawEvent{
			"aw-watcher-afk_test": {
				{Timestamp: ts(0), Duration: 600, Data: map[string]any{"status": "not-afk"}},
				{Timestamp: ts(600), Duration: 300, Data: map[string]any{"status": "afk"}},
				{Timestamp: ts(900), Duration: 600, Data: map[string]any{"status": "not-afk"}},
			},
			"aw-watcher-window_test": {
				{Timestamp: ts(10), Duration: 60, Data: map[string]any{"app": "Google Chrome", "title": "browser"}},
				{Timestamp: ts(70), Duration: 120, Data: map[string]any{"app": "editor", "title": "main.go"}},
				{Timestamp: ts(540), Duration: 120, Data: map[string]any{"app": "editor", "title": "straddles idle"}},
			},
			"aw-watcher-web-chrome_test": {
				{Timestamp: ts(5), Duration: 120, Data: map[string]any{"url": "https://example.com", "title": "Example"}},
			},
		},
	}
}

func testWindow() Window {
	return Window{StartMs: baseMs, EndMs: baseMs + 3600_000}
}

func TestReconcileEndToEnd(t *testing.T) {
	r := New(config.Default(), fixtureSource())

	result, err := r.Reconcile(context.Background(), testWindow(), testBuckets())

	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	require.Len(t, result.Events, 6)

	// Three consolidated afk states plus three activity events, ordered by
	// start.
	assert.Equal(t, "SystemActivity", model.StringOrEmpty(result.Events[0].App))
	assert.Equal(t, "not-afk", model.StringOrEmpty(result.Events[0].Title))
	assert.Equal(t, baseMs, result.Events[0].Start)
	assert.Equal(t, baseMs+600_000, result.Events[0].End)

	chrome := result.Events[1]
	assert.Equal(t, "Google Chrome", model.StringOrEmpty(chrome.App))
	assert.Equal(t, "https://example.com", model.StringOrEmpty(chrome.URL))
	assert.Equal(t, "chrome", model.StringOrEmpty(chrome.Browser))
	// Default title priority keeps the window title over the tab's.
	assert.Equal(t, "browser", model.StringOrEmpty(chrome.Title))

	// The straddling editor event is clipped at the start of the idle run.
	straddler := result.Events[3]
	assert.Equal(t, "straddles idle", model.StringOrEmpty(straddler.Title))
	assert.Equal(t, baseMs+540_000, straddler.Start)
	assert.Equal(t, baseMs+600_000, straddler.End)

	idle := result.Events[4]
	assert.Equal(t, "afk", model.StringOrEmpty(idle.Title))
	assert.Equal(t, baseMs+600_000, idle.Start)
}

func TestReconcileDeterministic(t *testing.T) {
	r := New(config.Default(), fixtureSource())

	first, err := r.Reconcile(context.Background(), testWindow(), testBuckets())
	require.NoError(t, err)
	second, err := r.Reconcile(context.Background(), testWindow(), testBuckets())
	require.NoError(t, err)

	a, err := sonic.Marshal(first)
	require.NoError(t, err)
	b, err := sonic.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestReconcileFetchOrderDoesNotMatter(t *testing.T) {
	// Same bucket contents, delivered in reverse order: the output bytes
	// must match the in-order run exactly.
	reversed := fixtureSource()
	for id, events := range reversed.buckets {
		flipped := make([]model.RawEvent, len(events))
		for i, ev := range events {
			flipped[len(events)-1-i] = ev
		}
		reversed.buckets[id] = flipped
	}

	ordered, err := New(config.Default(), fixtureSource()).Reconcile(context.Background(), testWindow(), testBuckets())
	require.NoError(t, err)
	outOfOrder, err := New(config.Default(), reversed).Reconcile(context.Background(), testWindow(), testBuckets())
	require.NoError(t, err)

	a, err := sonic.Marshal(ordered)
	require.NoError(t, err)
	b, err := sonic.Marshal(outOfOrder)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestReconcileDegradedWebBucket(t *testing.T) {
	src := fixtureSource()
	src.failing = map[string]error{
		"aw-watcher-web-chrome_test": errors.New("store unreachable"),
	}
	r := New(config.Default(), src)

	result, err := r.Reconcile(context.Background(), testWindow(), testBuckets())

	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, model.WarnFetchFailed, result.Warnings[0].Kind)
	assert.Equal(t, "aw-watcher-web-chrome_test", result.Warnings[0].BucketID)

	// The timeline is still produced; the browser event just lacks its URL.
	require.Len(t, result.Events, 6)
	assert.Nil(t, result.Events[1].URL)
}

func TestReconcileMalformedEventsWarn(t *testing.T) {
	src := fixtureSource()
	src.buckets["aw-watcher-window_test"] = append(src.buckets["aw-watcher-window_test"],
		model.RawEvent{Timestamp: "not a timestamp", Duration: 5, Data: map[string]any{"app": "ghost"}},
		model.RawEvent{Timestamp: ts(300), Duration: -1, Data: map[string]any{"app": "ghost"}},
	)
	r := New(config.Default(), src)

	result, err := r.Reconcile(context.Background(), testWindow(), testBuckets())

	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, model.WarnMalformedEvent, result.Warnings[0].Kind)
	assert.Equal(t, "aw-watcher-window_test", result.Warnings[0].BucketID)
	assert.Equal(t, 2, result.Warnings[0].Count)
	require.Len(t, result.Events, 6)
}

func TestReconcileExcludeAFK(t *testing.T) {
	cfg := config.Default()
	cfg.IncludeAFK = false
	r := New(cfg, fixtureSource())

	result, err := r.Reconcile(context.Background(), testWindow(), testBuckets())

	require.NoError(t, err)
	require.Len(t, result.Events, 3)
	for _, e := range result.Events {
		assert.NotEqual(t, cfg.AFKAppName, model.StringOrEmpty(e.App))
	}
}

func TestReconcileInvalidConfigFailsBeforeFetch(t *testing.T) {
	cfg := config.Default()
	cfg.ToleranceMs = -1
	src := fixtureSource()
	r := New(cfg, src)

	_, err := r.Reconcile(context.Background(), testWindow(), testBuckets())

	require.Error(t, err)
	var cfgErr *config.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Zero(t, atomic.LoadInt32(&src.calls))
}

func TestReconcileInvalidWindow(t *testing.T) {
	r := New(config.Default(), fixtureSource())

	_, err := r.Reconcile(context.Background(), Window{StartMs: baseMs, EndMs: baseMs}, testBuckets())

	require.Error(t, err)
	var cfgErr *config.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}
