package model

import (
	"time"
)

// BucketKind identifies the sensor family a bucket belongs to.
type BucketKind string

const (
	// BucketWindow holds window-focus events (app + title per focus change).
	BucketWindow BucketKind = "window"
	// BucketAFK holds idle/away status events ("afk" / "not-afk").
	BucketAFK BucketKind = "afk"
	// BucketWeb holds browser tab events (url + title per active tab).
	BucketWeb BucketKind = "web"
)

// AFK status strings as reported by the idle watcher.
const (
	StatusAFK    = "afk"
	StatusNotAFK = "not-afk"
)

// Bucket describes one named telemetry stream and its role in a run.
type Bucket struct {
	ID   string     `json:"id"`
	Kind BucketKind `json:"kind"`
}

// RawEvent is one record as returned by the event store, before any
// validation. Timestamp stays a string so the normalizer is the single
// place malformed records are detected and counted.
type RawEvent struct {
	Timestamp string         `json:"timestamp"`
	Duration  float64        `json:"duration"` // seconds, as on the wire
	Data      map[string]any `json:"data"`
}

// NormalizedEvent is the uniform shape all bucket kinds normalize into.
// Nil pointer fields mean the source did not report the value.
type NormalizedEvent struct {
	Start      int64 // Unix milliseconds, UTC
	DurationMs int64 // always >= 0
	App        *string
	Title      *string
	URL        *string
	Browser    *string
}

// End returns the exclusive end of the event's interval in Unix milliseconds.
func (e NormalizedEvent) End() int64 {
	return e.Start + e.DurationMs
}

// StateStatus is the consolidated presence status of an interval.
type StateStatus string

const (
	StateActive   StateStatus = "active"
	StateInactive StateStatus = "inactive"
)

// ConsolidatedState is a maximal run of identical AFK status.
type ConsolidatedState struct {
	Start  int64 // Unix milliseconds, UTC
	End    int64
	Status StateStatus
}

// ActivePeriod is a ConsolidatedState with active status; kept as its own
// type so the intersector's contract reads in domain terms.
type ActivePeriod struct {
	Start int64
	End   int64
}

// OutputEvent is one entry of the reconciled timeline.
type OutputEvent struct {
	Start   int64   `json:"start"` // Unix milliseconds, UTC
	End     int64   `json:"end"`
	App     *string `json:"app"`
	Title   *string `json:"title"`
	URL     *string `json:"url"`
	Browser *string `json:"browser,omitempty"`
}

// StartTime returns the event start as a UTC time.Time.
func (e OutputEvent) StartTime() time.Time {
	return time.UnixMilli(e.Start).UTC()
}

// EndTime returns the event end as a UTC time.Time.
func (e OutputEvent) EndTime() time.Time {
	return time.UnixMilli(e.End).UTC()
}

// StringPtr returns a pointer to s. Helper for building events from literals.
func StringPtr(s string) *string {
	return &s
}

// StringOrEmpty dereferences s, mapping nil to "".
func StringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
