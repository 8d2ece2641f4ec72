// Package config holds the reconciliation engine's per-run configuration.
// Everything is an explicit struct passed into the engine; there is no
// ambient process-wide state, so runs are reentrant and independently
// testable.
package config

import (
	"fmt"
	"time"
)

// TitlePriority selects which title wins when a window event is enriched
// with a matching browser tab.
type TitlePriority string

const (
	// TitleWindow keeps the window's own title (default).
	TitleWindow TitlePriority = "window"
	// TitleWeb prefers the matched tab's title.
	TitleWeb TitlePriority = "web"
)

// EmptyActivePolicy decides what happens to activity events when a run has
// no active (not-afk) periods at all. The upstream sources disagree on this,
// so the caller must choose explicitly.
type EmptyActivePolicy string

const (
	// DropAll discards every activity event when no active period exists.
	DropAll EmptyActivePolicy = "drop_all"
	// KeepAll passes activity events through unfiltered.
	KeepAll EmptyActivePolicy = "keep_all"
)

// BrowserConfig binds one browser to its window app names and the prefix of
// the web bucket carrying its tab events.
type BrowserConfig struct {
	Name         string   `yaml:"name"`
	AppNames     []string `yaml:"app_names"`
	BucketPrefix string   `yaml:"bucket_prefix"`
}

// Config is the full set of knobs one reconciliation run consumes.
type Config struct {
	// ToleranceMs bounds the backward time-join between window and tab
	// events: a tab event older than this is never matched.
	ToleranceMs int64 `yaml:"tolerance_ms"`

	// MinDurationMs drops window/web events shorter than this. Never
	// applied to AFK events; a short not-afk blip is still a real state
	// transition.
	MinDurationMs int64 `yaml:"min_duration_ms"`

	// AFKAppName is the sentinel substituted for AFK events' app field.
	AFKAppName string `yaml:"afk_app_name"`

	TitlePriority     TitlePriority     `yaml:"title_priority"`
	EmptyActivePolicy EmptyActivePolicy `yaml:"empty_active_policy"`

	// IncludeAFK adds the consolidated idle/active states to the output
	// timeline as first-class entries.
	IncludeAFK bool `yaml:"include_afk"`

	// Bucket resolution: the event store names buckets per host, so roles
	// are matched by ID prefix against the store's bucket list.
	WindowBucketPrefix string          `yaml:"window_bucket_prefix"`
	AFKBucketPrefix    string          `yaml:"afk_bucket_prefix"`
	Browsers           []BrowserConfig `yaml:"browsers"`

	// MaxConcurrentFetches caps the fetch pool. 0 means auto:
	// min(2 + number of browser buckets, 10).
	MaxConcurrentFetches int `yaml:"max_concurrent_fetches"`

	// FetchTimeout is the overall deadline for the fetch stage. A bucket
	// that misses it degrades to empty; siblings are unaffected. 0 means
	// no deadline.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// Default returns the configuration used when the caller specifies nothing.
func Default() Config {
	return Config{
		ToleranceMs:        1000,
		MinDurationMs:      0,
		AFKAppName:         "SystemActivity",
		TitlePriority:      TitleWindow,
		EmptyActivePolicy:  DropAll,
		IncludeAFK:         true,
		WindowBucketPrefix: "aw-watcher-window",
		AFKBucketPrefix:    "aw-watcher-afk",
		Browsers: []BrowserConfig{
			{Name: "chrome", AppNames: []string{"Google Chrome", "Chromium", "chrome.exe"}, BucketPrefix: "aw-watcher-web-chrome"},
			{Name: "firefox", AppNames: []string{"Firefox", "firefox.exe"}, BucketPrefix: "aw-watcher-web-firefox"},
		},
		FetchTimeout: 30 * time.Second,
	}
}

// ConfigurationError is the only fatal error class of the engine: no fetch
// is attempted once one is detected, since no partial result could be
// meaningful.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

func errorf(format string, args ...interface{}) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the configuration before any fetch is attempted.
func (c Config) Validate() error {
	if c.ToleranceMs < 0 {
		return errorf("tolerance_ms must be >= 0, got %d", c.ToleranceMs)
	}
	if c.MinDurationMs < 0 {
		return errorf("min_duration_ms must be >= 0, got %d", c.MinDurationMs)
	}
	if c.AFKAppName == "" {
		return errorf("afk_app_name must not be empty")
	}
	switch c.TitlePriority {
	case TitleWindow, TitleWeb:
	default:
		return errorf("title_priority must be %q or %q, got %q", TitleWindow, TitleWeb, c.TitlePriority)
	}
	switch c.EmptyActivePolicy {
	case DropAll, KeepAll:
	default:
		return errorf("empty_active_policy must be %q or %q, got %q", DropAll, KeepAll, c.EmptyActivePolicy)
	}
	if c.WindowBucketPrefix == "" || c.AFKBucketPrefix == "" {
		return errorf("window and afk bucket prefixes must not be empty")
	}
	if c.MaxConcurrentFetches < 0 {
		return errorf("max_concurrent_fetches must be >= 0, got %d", c.MaxConcurrentFetches)
	}
	if c.FetchTimeout < 0 {
		return errorf("fetch_timeout must be >= 0, got %v", c.FetchTimeout)
	}
	for i, b := range c.Browsers {
		if b.Name == "" {
			return errorf("browsers[%d]: name must not be empty", i)
		}
		if len(b.AppNames) == 0 {
			return errorf("browser %q: app_names must not be empty", b.Name)
		}
		if b.BucketPrefix == "" {
			return errorf("browser %q: bucket_prefix must not be empty", b.Name)
		}
	}
	return nil
}

// FetchConcurrency resolves the effective fetch pool size.
func (c Config) FetchConcurrency() int {
	n := c.MaxConcurrentFetches
	if n == 0 {
		n = 2 + len(c.Browsers)
	}
	if n > 10 {
		n = 10
	}
	return n
}
